package notification

import (
	"time"

	"servicedesk/internal/domain"
)

// OrderSnapshot carries everything the notification path needs about an order
// at the moment of a transition, so workers never re-read mutable rows.
type OrderSnapshot struct {
	OrderID      uint
	OrderNumber  string
	Status       string
	TotalAmount  float64
	PausedReason *string
	CreatedAt    time.Time
	FinishedAt   *time.Time
	PaidAt       *time.Time
	CompanyID    int
	CompanyName  string
	StoreName    string
	Client       domain.Client
	Items        []domain.OrderItem
}

// TemplateContextFrom maps a snapshot to the variables exposed to templates.
func TemplateContextFrom(snap OrderSnapshot) TemplateContext {
	return TemplateContext{
		ClientName:   snap.Client.Name,
		OrderNumber:  snap.OrderNumber,
		StoreName:    snap.StoreName,
		CompanyName:  snap.CompanyName,
		Status:       snap.Status,
		TotalAmount:  snap.TotalAmount,
		PausedReason: snap.PausedReason,
		Items:        snap.Items,
	}
}
