package localstore

import (
	"time"

	"github.com/lumen-gear/storefront/internal/domain"
)

type cartLineDocument struct {
	ProductID string    `json:"productId"`
	Name      string    `json:"name"`
	UnitPrice int64     `json:"unitPrice"`
	Quantity  int       `json:"quantity"`
	ImageRef  string    `json:"imageRef,omitempty"`
	AddedAt   time.Time `json:"addedAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type cartDocument struct {
	UserID    string             `json:"userId"`
	Items     []cartLineDocument `json:"items"`
	BuyNow    []cartLineDocument `json:"buyNow,omitempty"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

type addressDocument struct {
	Street     string `json:"street,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	Country    string `json:"country,omitempty"`
}

type profileDocument struct {
	ID          string          `json:"id"`
	Name        string          `json:"name,omitempty"`
	Email       string          `json:"email"`
	PhoneNumber string          `json:"phoneNumber,omitempty"`
	Role        string          `json:"role,omitempty"`
	Address     addressDocument `json:"address"`
	ImageRef    string          `json:"imageRef,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

type orderItemDocument struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unitPrice"`
	ImageRef  string `json:"imageRef,omitempty"`
}

type orderDocument struct {
	ID         string              `json:"id"`
	UserID     string              `json:"userId"`
	Items      []orderItemDocument `json:"items"`
	TotalPrice int64               `json:"totalPrice"`
	Status     string              `json:"status"`
	CreatedAt  time.Time           `json:"createdAt"`
}

func cartToDocument(cart domain.Cart) cartDocument {
	return cartDocument{
		UserID:    cart.UserID,
		Items:     linesToDocuments(cart.Items),
		BuyNow:    linesToDocuments(cart.BuyNow),
		UpdatedAt: cart.UpdatedAt.UTC(),
	}
}

func cartFromDocument(doc cartDocument) domain.Cart {
	return domain.Cart{
		UserID:    doc.UserID,
		Items:     linesFromDocuments(doc.Items),
		BuyNow:    linesFromDocuments(doc.BuyNow),
		UpdatedAt: doc.UpdatedAt,
	}
}

func linesToDocuments(lines []domain.CartLine) []cartLineDocument {
	if len(lines) == 0 {
		return nil
	}
	docs := make([]cartLineDocument, 0, len(lines))
	for _, line := range lines {
		docs = append(docs, cartLineDocument{
			ProductID: line.ProductID,
			Name:      line.Name,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
			ImageRef:  line.ImageRef,
			AddedAt:   line.AddedAt.UTC(),
			UpdatedAt: line.UpdatedAt.UTC(),
		})
	}
	return docs
}

func linesFromDocuments(docs []cartLineDocument) []domain.CartLine {
	if len(docs) == 0 {
		return nil
	}
	lines := make([]domain.CartLine, 0, len(docs))
	for _, doc := range docs {
		lines = append(lines, domain.CartLine{
			ProductID: doc.ProductID,
			Name:      doc.Name,
			UnitPrice: doc.UnitPrice,
			Quantity:  doc.Quantity,
			ImageRef:  doc.ImageRef,
			AddedAt:   doc.AddedAt,
			UpdatedAt: doc.UpdatedAt,
		})
	}
	return lines
}

func profileToDocument(profile domain.UserProfile) profileDocument {
	return profileDocument{
		ID:          profile.ID,
		Name:        profile.Name,
		Email:       profile.Email,
		PhoneNumber: profile.PhoneNumber,
		Role:        profile.Role,
		Address:     addressDocument(profile.Address),
		ImageRef:    profile.ImageRef,
		CreatedAt:   profile.CreatedAt.UTC(),
		UpdatedAt:   profile.UpdatedAt.UTC(),
	}
}

func profileFromDocument(doc profileDocument) domain.UserProfile {
	return domain.UserProfile{
		ID:          doc.ID,
		Name:        doc.Name,
		Email:       doc.Email,
		PhoneNumber: doc.PhoneNumber,
		Role:        doc.Role,
		Address:     domain.Address(doc.Address),
		ImageRef:    doc.ImageRef,
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
	}
}

func orderToDocument(order domain.Order) orderDocument {
	items := make([]orderItemDocument, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, orderItemDocument{
			ID:        item.ID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			ImageRef:  item.ImageRef,
		})
	}
	return orderDocument{
		ID:         order.ID,
		UserID:     order.UserID,
		Items:      items,
		TotalPrice: order.TotalPrice,
		Status:     order.Status,
		CreatedAt:  order.CreatedAt.UTC(),
	}
}

func orderFromDocument(doc orderDocument) domain.Order {
	items := make([]domain.OrderItem, 0, len(doc.Items))
	for _, item := range doc.Items {
		items = append(items, domain.OrderItem{
			ID:        item.ID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			ImageRef:  item.ImageRef,
		})
	}
	return domain.Order{
		ID:         doc.ID,
		UserID:     doc.UserID,
		Items:      items,
		TotalPrice: doc.TotalPrice,
		Status:     doc.Status,
		CreatedAt:  doc.CreatedAt,
	}
}
