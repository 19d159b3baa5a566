package domain

import "time"

// ChannelConfig is a company's identity on the external messaging provider.
// Exactly one per company; created once by the setup operation and only
// updated afterwards.
type ChannelConfig struct {
	ID           int
	CompanyID    int
	InstanceName string
	APIKey       string
	APIURL       string
	IsConnected  bool
	PhoneNumber  *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Connection states as seen by callers of the channel endpoints.
const (
	ConnectionDisconnected = "DISCONNECTED"
	ConnectionConnecting   = "CONNECTING"
	ConnectionConnected    = "CONNECTED"
)

// MessageTemplate is tenant-configurable notification text for one trigger
// status. Default templates are seeded at setup and cannot be deleted, only
// deactivated.
type MessageTemplate struct {
	ID              int
	ChannelConfigID int
	TriggerStatus   string
	Content         string
	IsActive        bool
	IsDefault       bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Message log statuses.
const (
	MessageStatusSent    = "SENT"
	MessageStatusFailed  = "FAILED"
	MessageStatusPending = "PENDING"
)

// MessageLog is one append-only row per dispatch attempt. Retried dispatches
// create new rows; rows are never updated.
type MessageLog struct {
	ID              string
	ChannelConfigID int
	Destination     string
	Message         string
	Status          string
	ErrorText       *string
	OrderNumber     *string
	CreatedAt       time.Time
}
