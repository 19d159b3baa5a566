package notification

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"servicedesk/internal/domain"
	"servicedesk/internal/dto"
)

// ChannelClient is the per-tenant messaging provider surface the dispatcher
// needs. A value is constructed from one tenant's ChannelConfig and never
// shared across tenants.
type ChannelClient interface {
	SendText(ctx context.Context, number, text string) error
	SendDocument(ctx context.Context, number, mediaBase64, filename, caption string) error
}

// EmailSender delivers the secondary email channel.
type EmailSender interface {
	Send(ctx context.Context, to, subject, html string) error
}

// MessageLogRepository appends audit rows. One row per attempt.
type MessageLogRepository interface {
	Insert(ctx context.Context, log domain.MessageLog) error
}

// Dispatcher sends rendered messages over a tenant channel and records every
// attempt in the message log. Text and document sends are mutually exclusive
// per call.
type Dispatcher struct {
	logs        MessageLogRepository
	countryCode string
	logger      *zap.Logger
}

func NewDispatcher(logs MessageLogRepository, countryCode string, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		logs:        logs,
		countryCode: countryCode,
		logger:      logger,
	}
}

var nonDigits = regexp.MustCompile(`\D`)

// NormalizeDestination strips everything but digits and guarantees the
// country-code prefix appears exactly once. A number already carrying the
// prefix is left alone; distinguishing it from a local number that merely
// starts with the same digits is out of reach without carrier data.
func NormalizeDestination(raw, countryCode string) string {
	digits := nonDigits.ReplaceAllString(raw, "")
	if digits == "" {
		return digits
	}
	if !strings.HasPrefix(digits, countryCode) {
		digits = countryCode + digits
	}
	return digits
}

// SendText delivers a plain text message. A tenant without channel
// credentials yields FAILED without a log row or a network call.
func (d *Dispatcher) SendText(ctx context.Context, client ChannelClient, cfg domain.ChannelConfig, destination, message string, orderNumber *string) dto.DispatchResult {
	if !channelConfigured(cfg) {
		return dto.DispatchResult{Status: dto.DispatchFailed, Error: "channel not configured"}
	}

	number := NormalizeDestination(destination, d.countryCode)
	err := client.SendText(ctx, number, message)
	return d.record(ctx, cfg.ID, number, message, orderNumber, err)
}

// SendDocument delivers a base64 document through the provider's media send.
func (d *Dispatcher) SendDocument(ctx context.Context, client ChannelClient, cfg domain.ChannelConfig, destination, mediaBase64, filename, caption string, orderNumber *string) dto.DispatchResult {
	if !channelConfigured(cfg) {
		return dto.DispatchResult{Status: dto.DispatchFailed, Error: "channel not configured"}
	}

	number := NormalizeDestination(destination, d.countryCode)
	err := client.SendDocument(ctx, number, mediaBase64, filename, caption)
	return d.record(ctx, cfg.ID, number, "[documento] "+filename, orderNumber, err)
}

// SendEmail delivers the email channel and records the attempt against the
// same audit log.
func (d *Dispatcher) SendEmail(ctx context.Context, sender EmailSender, cfg domain.ChannelConfig, to, subject, html string, orderNumber *string) dto.DispatchResult {
	err := sender.Send(ctx, to, subject, html)
	return d.record(ctx, cfg.ID, to, "[email] "+subject, orderNumber, err)
}

// RecordFailure appends a FAILED row for an attempt that never reached the
// provider, such as a document that could not be rendered.
func (d *Dispatcher) RecordFailure(ctx context.Context, cfgID int, destination, message string, cause error, orderNumber *string) {
	errText := cause.Error()
	d.append(ctx, domain.MessageLog{
		ID:              uuid.New().String(),
		ChannelConfigID: cfgID,
		Destination:     destination,
		Message:         message,
		Status:          domain.MessageStatusFailed,
		ErrorText:       &errText,
		OrderNumber:     orderNumber,
		CreatedAt:       time.Now().UTC(),
	})
}

func (d *Dispatcher) record(ctx context.Context, cfgID int, destination, message string, orderNumber *string, sendErr error) dto.DispatchResult {
	log := domain.MessageLog{
		ID:              uuid.New().String(),
		ChannelConfigID: cfgID,
		Destination:     destination,
		Message:         message,
		Status:          domain.MessageStatusSent,
		OrderNumber:     orderNumber,
		CreatedAt:       time.Now().UTC(),
	}

	result := dto.DispatchResult{Status: dto.DispatchSent}
	if sendErr != nil {
		errText := sendErr.Error()
		log.Status = domain.MessageStatusFailed
		log.ErrorText = &errText
		result = dto.DispatchResult{Status: dto.DispatchFailed, Error: errText}
	}

	d.append(ctx, log)
	return result
}

func (d *Dispatcher) append(ctx context.Context, log domain.MessageLog) {
	if err := d.logs.Insert(ctx, log); err != nil {
		// The audit row is best effort; losing it must not fail the dispatch path.
		d.logger.Error("appending message log", zap.Error(err), zap.String("destination", log.Destination))
	}
}

func channelConfigured(cfg domain.ChannelConfig) bool {
	return cfg.InstanceName != "" && cfg.APIKey != "" && cfg.APIURL != ""
}
