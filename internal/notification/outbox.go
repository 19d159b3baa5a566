package notification

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"servicedesk/internal/domain"
	"servicedesk/internal/dto"
	apperrors "servicedesk/internal/errors"
)

// Job is one transition's pending notification work.
type Job struct {
	PreviousStatus string
	NewStatus      string
	Snapshot       OrderSnapshot
}

// OrderFlagRepository flips idempotency flags atomically: the update only
// takes effect when the flag was still false, and the return value reports
// whether this caller won.
type OrderFlagRepository interface {
	MarkWhatsappSent(ctx context.Context, orderID uint) (bool, error)
	MarkEmailSent(ctx context.Context, orderID uint) (bool, error)
}

// ChannelConfigSource resolves a company's channel identity.
type ChannelConfigSource interface {
	FindByCompanyID(ctx context.Context, companyID int) (*domain.ChannelConfig, error)
}

// TemplateSource resolves the active template for a trigger status.
type TemplateSource interface {
	FindActive(ctx context.Context, channelConfigID int, triggerStatus string) (*domain.MessageTemplate, error)
}

// ClientFactory builds a provider client from one tenant's config.
type ClientFactory func(cfg domain.ChannelConfig) ChannelClient

// Outbox decouples notification dispatch from the transition request: the
// handler enqueues, workers deliver. A provider outage can therefore never
// block or fail an order operation.
type Outbox struct {
	jobs       chan Job
	wg         sync.WaitGroup
	flags      OrderFlagRepository
	configs    ChannelConfigSource
	templates  TemplateSource
	dispatcher *Dispatcher
	newClient  ClientFactory
	email      EmailSender
	logger     *zap.Logger
}

func NewOutbox(
	queueSize int,
	flags OrderFlagRepository,
	configs ChannelConfigSource,
	templates TemplateSource,
	dispatcher *Dispatcher,
	newClient ClientFactory,
	email EmailSender,
	logger *zap.Logger,
) *Outbox {
	return &Outbox{
		jobs:       make(chan Job, queueSize),
		flags:      flags,
		configs:    configs,
		templates:  templates,
		dispatcher: dispatcher,
		newClient:  newClient,
		email:      email,
		logger:     logger,
	}
}

// Start launches the worker pool. Workers drain the queue until Close.
func (o *Outbox) Start(ctx context.Context, workers int) {
	for i := 0; i < workers; i++ {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			for job := range o.jobs {
				o.process(ctx, job)
			}
		}()
	}
}

// Close stops accepting jobs and waits for in-flight work.
func (o *Outbox) Close() {
	close(o.jobs)
	o.wg.Wait()
}

// Enqueue hands a job to the workers without blocking the caller. A full
// queue drops the job with a warning; the transition has already been
// persisted and must not wait.
func (o *Outbox) Enqueue(job Job) bool {
	select {
	case o.jobs <- job:
		return true
	default:
		o.logger.Warn("outbox queue full, dropping notification",
			zap.String("orderNumber", job.Snapshot.OrderNumber),
			zap.String("newStatus", job.NewStatus),
		)
		return false
	}
}

func (o *Outbox) process(ctx context.Context, job Job) {
	snap := job.Snapshot
	logger := o.logger.With(
		zap.String("orderNumber", snap.OrderNumber),
		zap.String("newStatus", job.NewStatus),
	)

	intents := Decide(job.PreviousStatus, job.NewStatus, snap.Client)
	if len(intents) == 0 {
		return
	}

	cfg, err := o.configs.FindByCompanyID(ctx, snap.CompanyID)
	if err != nil {
		if _, ok := apperrors.IsNotFoundError(err); ok {
			logger.Warn("no channel configured for company", zap.Int("companyId", snap.CompanyID))
		} else {
			logger.Error("loading channel config", zap.Error(err))
		}
		return
	}

	message := Render(o.resolveTemplate(ctx, cfg.ID, job.NewStatus), TemplateContextFrom(snap))

	for _, intent := range intents {
		if won := o.consultGuard(ctx, intent.Guard, snap.OrderID, logger); !won {
			logger.Info("notification already sent, skipping", zap.String("channel", string(intent.Channel)))
			continue
		}

		switch intent.Channel {
		case dto.ChannelWhatsApp:
			o.dispatchWhatsApp(ctx, *cfg, intent, snap, message, logger)
		case dto.ChannelEmail:
			o.dispatchEmail(ctx, *cfg, snap, message, logger)
		}
	}
}

// consultGuard reports whether the dispatch may proceed. Guard errors fail
// closed: a flag we could not flip is treated as already sent.
func (o *Outbox) consultGuard(ctx context.Context, guard dto.DispatchGuard, orderID uint, logger *zap.Logger) bool {
	var (
		won bool
		err error
	)
	switch guard {
	case dto.GuardNone:
		return true
	case dto.GuardWhatsApp:
		won, err = o.flags.MarkWhatsappSent(ctx, orderID)
	case dto.GuardEmail:
		won, err = o.flags.MarkEmailSent(ctx, orderID)
	}
	if err != nil {
		logger.Error("consulting idempotency flag", zap.Error(err), zap.String("guard", string(guard)))
		return false
	}
	return won
}

func (o *Outbox) dispatchWhatsApp(ctx context.Context, cfg domain.ChannelConfig, intent dto.DispatchIntent, snap OrderSnapshot, message string, logger *zap.Logger) {
	client := o.newClient(cfg)
	orderNumber := snap.OrderNumber

	var result dto.DispatchResult
	if intent.NeedsDocument {
		pdfBytes, err := RenderReceipt(snap)
		if err != nil {
			// The transition already succeeded; the failed attempt only lands
			// in the audit log.
			logger.Error("rendering receipt", zap.Error(err))
			o.dispatcher.RecordFailure(ctx, cfg.ID, snap.Client.Phone, "[documento] "+ReceiptFilename(orderNumber), err, &orderNumber)
			return
		}
		result = o.dispatcher.SendDocument(ctx, client, cfg, snap.Client.Phone,
			EncodeReceipt(pdfBytes), ReceiptFilename(orderNumber), message, &orderNumber)
	} else {
		result = o.dispatcher.SendText(ctx, client, cfg, snap.Client.Phone, message, &orderNumber)
	}

	if result.Status == dto.DispatchFailed {
		logger.Warn("whatsapp dispatch failed", zap.String("error", result.Error))
	}
}

func (o *Outbox) dispatchEmail(ctx context.Context, cfg domain.ChannelConfig, snap OrderSnapshot, message string, logger *zap.Logger) {
	orderNumber := snap.OrderNumber
	subject := "Sua ordem de serviço " + orderNumber + " está pronta"
	html := strings.ReplaceAll(message, "\n", "<br>")

	result := o.dispatcher.SendEmail(ctx, o.email, cfg, *snap.Client.Email, subject, html, &orderNumber)
	if result.Status == dto.DispatchFailed {
		logger.Warn("email dispatch failed", zap.String("error", result.Error))
	}
}

func (o *Outbox) resolveTemplate(ctx context.Context, channelConfigID int, status string) string {
	tmpl, err := o.templates.FindActive(ctx, channelConfigID, status)
	if err != nil {
		if _, ok := apperrors.IsNotFoundError(err); !ok {
			o.logger.Error("loading message template", zap.Error(err))
		}
		return DefaultTemplate(status)
	}
	return tmpl.Content
}
