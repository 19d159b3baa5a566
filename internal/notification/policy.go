package notification

import (
	"servicedesk/internal/domain"
	"servicedesk/internal/dto"
)

// Decide maps an order-status transition to its dispatch intents. It is a
// pure function: no I/O, no clock.
//
// The PAID notification is deliberately never guarded: payment is a one-time
// terminal transition and its receipt must go out even when the FINISHED
// notice already consumed the whatsappSent flag. Only FINISHED is guarded,
// so touching the ready state twice before payment does not re-notify.
func Decide(previous, newStatus string, client domain.Client) []dto.DispatchIntent {
	var intents []dto.DispatchIntent

	if client.HasPhone() {
		switch newStatus {
		case domain.OrderStatusPaid:
			intents = append(intents, dto.DispatchIntent{
				Channel:       dto.ChannelWhatsApp,
				NeedsDocument: true,
				Guard:         dto.GuardNone,
			})
		case domain.OrderStatusFinished:
			intents = append(intents, dto.DispatchIntent{
				Channel: dto.ChannelWhatsApp,
				Guard:   dto.GuardWhatsApp,
			})
		case domain.OrderStatusReceived, domain.OrderStatusInProgress, domain.OrderStatusPaused:
			// Pause/resume cycles legitimately notify every time.
			intents = append(intents, dto.DispatchIntent{
				Channel: dto.ChannelWhatsApp,
				Guard:   dto.GuardNone,
			})
		}
	}

	if newStatus == domain.OrderStatusFinished && client.HasEmail() {
		intents = append(intents, dto.DispatchIntent{
			Channel: dto.ChannelEmail,
			Guard:   dto.GuardEmail,
		})
	}

	return intents
}
