package domain

import "time"

type Order struct {
	ID           uint
	StoreID      int
	ClientID     int
	CreatedByID  int
	OrderNumber  string
	Status       string
	TotalAmount  float64
	PausedReason *string
	WhatsappSent bool
	EmailSent    bool
	CreatedAt    time.Time
	FinishedAt   *time.Time
	PaidAt       *time.Time
	UpdatedAt    time.Time
}

const (
	OrderStatusReceived   = "RECEIVED"
	OrderStatusInProgress = "IN_PROGRESS"
	OrderStatusPaused     = "PAUSED"
	OrderStatusFinished   = "FINISHED"
	OrderStatusPaid       = "PAID"
)

// ValidOrderStatus reports whether s is one of the five lifecycle values.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusReceived, OrderStatusInProgress, OrderStatusPaused,
		OrderStatusFinished, OrderStatusPaid:
		return true
	}
	return false
}

// OrderStatusLabel returns the human-readable label used in client-facing
// messages and receipts.
func OrderStatusLabel(s string) string {
	switch s {
	case OrderStatusReceived:
		return "Recebida"
	case OrderStatusInProgress:
		return "Em andamento"
	case OrderStatusPaused:
		return "Pausada"
	case OrderStatusFinished:
		return "Finalizada"
	case OrderStatusPaid:
		return "Paga"
	}
	return s
}

// IsTerminal reports whether the order accepts no further transitions.
func (o *Order) IsTerminal() bool {
	return o.Status == OrderStatusPaid
}

// ApplyTransition mutates the order for a requested status change and returns
// the previous status. Side effects depend only on the target status:
// timestamps are stamped on first entry only, pausedReason survives only while
// the order is PAUSED, and re-entering the current status never re-stamps.
// Callers must have validated newStatus and rejected PAID sources already.
func (o *Order) ApplyTransition(newStatus string, reason *string, now time.Time) (previous string) {
	previous = o.Status
	o.Status = newStatus

	if newStatus == OrderStatusPaused {
		o.PausedReason = reason
	} else {
		o.PausedReason = nil
	}

	if newStatus == OrderStatusFinished && o.FinishedAt == nil {
		t := now
		o.FinishedAt = &t
	}

	if newStatus == OrderStatusPaid {
		if o.PaidAt == nil {
			t := now
			o.PaidAt = &t
		}
		// Paying an order that was never marked finished backfills finishedAt.
		if o.FinishedAt == nil {
			t := now
			o.FinishedAt = &t
		}
	}

	return previous
}
