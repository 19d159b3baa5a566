package dto

// Dispatch channels.
type DispatchChannel string

const (
	ChannelWhatsApp DispatchChannel = "WHATSAPP"
	ChannelEmail    DispatchChannel = "EMAIL"
)

// Idempotency guards. A guarded intent is executed only when the matching
// order flag flips from false to true in the same write.
type DispatchGuard string

const (
	GuardNone     DispatchGuard = "NONE"
	GuardWhatsApp DispatchGuard = "WHATSAPP_SENT"
	GuardEmail    DispatchGuard = "EMAIL_SENT"
)

// DispatchIntent is one decided-but-not-yet-executed notification.
type DispatchIntent struct {
	Channel       DispatchChannel
	NeedsDocument bool
	Guard         DispatchGuard
}

type DispatchStatus string

const (
	DispatchSent   DispatchStatus = "SENT"
	DispatchFailed DispatchStatus = "FAILED"
)

type DispatchResult struct {
	Status DispatchStatus
	Error  string
}
