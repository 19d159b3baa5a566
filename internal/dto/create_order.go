package dto

type CreateOrderRequest struct {
	StoreID     int                    `json:"storeId"`
	ClientID    int                    `json:"clientId"`
	CreatedByID int                    `json:"createdById"`
	Items       []CreateOrderItemInput `json:"items"`
}

type CreateOrderItemInput struct {
	ServiceName string  `json:"serviceName"`
	Description *string `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
}
