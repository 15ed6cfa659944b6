package data

import (
	"time"

	"github.com/lumen-gear/storefront/internal/domain"
)

type addressDocument struct {
	Street     string `firestore:"street,omitempty"`
	City       string `firestore:"city,omitempty"`
	State      string `firestore:"state,omitempty"`
	PostalCode string `firestore:"postalCode,omitempty"`
	Country    string `firestore:"country,omitempty"`
}

type profileDocument struct {
	Name        string          `firestore:"name,omitempty"`
	Email       string          `firestore:"email"`
	PhoneNumber string          `firestore:"phoneNumber,omitempty"`
	Role        string          `firestore:"role,omitempty"`
	Address     addressDocument `firestore:"address,omitempty"`
	ImageRef    string          `firestore:"imageRef,omitempty"`
	CreatedAt   time.Time       `firestore:"createdAt"`
	UpdatedAt   time.Time       `firestore:"updatedAt"`
}

type orderItemDocument struct {
	ID        string `firestore:"id"`
	Name      string `firestore:"name"`
	Quantity  int    `firestore:"quantity"`
	UnitPrice int64  `firestore:"unitPrice"`
	ImageRef  string `firestore:"imageRef,omitempty"`
}

type orderDocument struct {
	UserID     string              `firestore:"userId"`
	Items      []orderItemDocument `firestore:"items"`
	TotalPrice int64               `firestore:"totalPrice"`
	Status     string              `firestore:"status"`
	CreatedAt  time.Time           `firestore:"createdAt"`
}

func profileToDocument(profile domain.UserProfile) profileDocument {
	return profileDocument{
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

func profileFromDocument(id string, doc profileDocument) domain.UserProfile {
	return domain.UserProfile{
		ID:          id,
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
		UserID:     order.UserID,
		Items:      items,
		TotalPrice: order.TotalPrice,
		Status:     order.Status,
		CreatedAt:  order.CreatedAt.UTC(),
	}
}

func orderFromDocument(id string, doc orderDocument) domain.Order {
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
		ID:         id,
		UserID:     doc.UserID,
		Items:      items,
		TotalPrice: doc.TotalPrice,
		Status:     doc.Status,
		CreatedAt:  doc.CreatedAt,
	}
}
