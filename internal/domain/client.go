package domain

import "time"

type Client struct {
	ID        int
	StoreID   int
	Name      string
	Phone     string
	Email     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasEmail reports whether the client can receive email notifications.
func (c Client) HasEmail() bool {
	return c.Email != nil && *c.Email != ""
}

// HasPhone reports whether the client can receive WhatsApp notifications.
func (c Client) HasPhone() bool {
	return c.Phone != ""
}
