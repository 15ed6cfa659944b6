package domain

import (
	"strings"
	"time"
)

// Product is the catalog projection carried by cart and pending-action
// payloads. The catalog itself is owned by the backend; this layer never
// mutates products.
type Product struct {
	ID        string
	Name      string
	UnitPrice int64
	ImageRef  string
}

// CartLine is a single cart entry. One line exists per product within a
// container; adding an existing product increments Quantity instead of
// appending a duplicate line.
type CartLine struct {
	ProductID string
	Name      string
	UnitPrice int64
	Quantity  int
	ImageRef  string
	AddedAt   time.Time
	UpdatedAt time.Time
}

// LineTotal returns quantity times unit price in minor currency units.
func (l CartLine) LineTotal() int64 {
	if l.Quantity <= 0 || l.UnitPrice <= 0 {
		return 0
	}
	return l.UnitPrice * int64(l.Quantity)
}

// Cart holds the persistent cart lines and the separate ephemeral buy-now
// container for a single user. Totals are always derived, never stored.
type Cart struct {
	UserID    string
	Items     []CartLine
	BuyNow    []CartLine
	UpdatedAt time.Time
}

// ItemCount sums the quantities of the persistent cart lines.
func (c Cart) ItemCount() int {
	total := 0
	for _, line := range c.Items {
		if line.Quantity > 0 {
			total += line.Quantity
		}
	}
	return total
}

// Subtotal sums line totals of the persistent cart.
func (c Cart) Subtotal() int64 {
	var total int64
	for _, line := range c.Items {
		total += line.LineTotal()
	}
	return total
}

// BuyNowTotal sums line totals of the buy-now container.
func (c Cart) BuyNowTotal() int64 {
	var total int64
	for _, line := range c.BuyNow {
		total += line.LineTotal()
	}
	return total
}

// PendingKind discriminates the deferred commerce intent recorded while the
// user was unauthenticated.
type PendingKind string

const (
	// PendingCart replays as an add-to-cart followed by cart navigation.
	PendingCart PendingKind = "cart"
	// PendingBuyNow replays as a buy-now followed by checkout navigation.
	PendingBuyNow PendingKind = "buyNow"
)

// Valid reports whether the kind is one of the two known intents.
func (k PendingKind) Valid() bool {
	return k == PendingCart || k == PendingBuyNow
}

// PendingAction is the armed state of the pending-action slot: the product
// the user acted on before authenticating, plus the requested quantity.
type PendingAction struct {
	Kind     PendingKind
	Product  Product
	Quantity int
	ArmedAt  time.Time
}

// User is the authenticated identity as reported by the backend auth
// subsystem.
type User struct {
	ID          string
	Email       string
	DisplayName string
}

// SessionSnapshot is a point-in-time view of the session state consumed by
// the route guard and the HTTP surface. IsAdmin is a routing hint only; the
// data layer enforces real authorization.
type SessionSnapshot struct {
	User              *User
	IsAuthenticated   bool
	IsAdmin           bool
	Loading           bool
	AdminCheckLoading bool
}

// Address is the postal address block stored on a profile.
type Address struct {
	Street     string
	City       string
	State      string
	PostalCode string
	Country    string
}

// UserProfile mirrors the backend profile record. The backend remains the
// source of truth; cached copies follow last-fetch-wins.
type UserProfile struct {
	ID          string
	Name        string
	Email       string
	PhoneNumber string
	Role        string
	Address     Address
	ImageRef    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsAdminRole reports whether the profile role marks the user as admin.
func (p UserProfile) IsAdminRole() bool {
	return strings.EqualFold(strings.TrimSpace(p.Role), "admin")
}

// OrderItem is a purchased line captured on an order record.
type OrderItem struct {
	ID        string
	Name      string
	Quantity  int
	UnitPrice int64
	ImageRef  string
}

// Order is a historical order with its nested line items, newest first in
// any listing.
type Order struct {
	ID         string
	UserID     string
	Items      []OrderItem
	TotalPrice int64
	Status     string
	CreatedAt  time.Time
}

// Total sums the order line totals.
func (o Order) Total() int64 {
	var total int64
	for _, item := range o.Items {
		if item.Quantity > 0 && item.UnitPrice > 0 {
			total += item.UnitPrice * int64(item.Quantity)
		}
	}
	return total
}
