package dto

import "time"

// TransitionRequest is the closed shape accepted by the status endpoint.
type TransitionRequest struct {
	Status       string  `json:"status"`
	PausedReason *string `json:"pausedReason,omitempty"`
}

type OrderItemDTO struct {
	ID          uint    `json:"id"`
	ServiceName string  `json:"serviceName"`
	Description *string `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
}

type OrderResponse struct {
	TraceID      string         `json:"traceId"`
	ID           uint           `json:"id"`
	OrderNumber  string         `json:"orderNumber"`
	Status       string         `json:"status"`
	TotalAmount  float64        `json:"totalAmount"`
	PausedReason *string        `json:"pausedReason,omitempty"`
	Items        []OrderItemDTO `json:"items"`
	CreatedAt    time.Time      `json:"createdAt"`
	FinishedAt   *time.Time     `json:"finishedAt,omitempty"`
	PaidAt       *time.Time     `json:"paidAt,omitempty"`
}

type ErrorResponse struct {
	TraceID   string    `json:"traceId"`
	Status    int       `json:"status"`
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}
