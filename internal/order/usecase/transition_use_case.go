package usecase

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"servicedesk/internal/domain"
	"servicedesk/internal/dto"
	apperrors "servicedesk/internal/errors"
	"servicedesk/internal/notification"
)

type OrderRepository interface {
	FindByID(ctx context.Context, id uint) (*domain.Order, error)
	UpdateTransition(ctx context.Context, order *domain.Order) error
}

type OrderItemRepository interface {
	ListByOrderID(ctx context.Context, orderID uint) ([]domain.OrderItem, error)
}

type ClientRepository interface {
	FindByID(ctx context.Context, id int) (*domain.Client, error)
}

type StoreRepository interface {
	FindByID(ctx context.Context, id int) (*domain.Store, error)
}

// NotificationOutbox receives the transition's pending notification work.
// Enqueue never blocks; a false return means the job was dropped.
type NotificationOutbox interface {
	Enqueue(job notification.Job) bool
}

type TransitionResult struct {
	Order domain.Order
	Items []domain.OrderItem
}

// TransitionUseCase is the order lifecycle state machine: it validates a
// requested status change, derives its side effects, persists the order and
// hands notification work to the outbox. The caller's response depends only
// on the persisted order state, never on notification outcomes.
type TransitionUseCase struct {
	orders  OrderRepository
	items   OrderItemRepository
	clients ClientRepository
	stores  StoreRepository
	outbox  NotificationOutbox
	logger  *zap.Logger
	nowFunc func() time.Time
}

func NewTransitionUseCase(
	orders OrderRepository,
	items OrderItemRepository,
	clients ClientRepository,
	stores StoreRepository,
	outbox NotificationOutbox,
	logger *zap.Logger,
) *TransitionUseCase {
	return &TransitionUseCase{
		orders:  orders,
		items:   items,
		clients: clients,
		stores:  stores,
		outbox:  outbox,
		logger:  logger,
		nowFunc: time.Now,
	}
}

func (uc *TransitionUseCase) Transition(ctx context.Context, orderID uint, req dto.TransitionRequest) (*TransitionResult, error) {
	uc.logger.Info("transition requested",
		zap.Uint("orderId", orderID),
		zap.String("newStatus", req.Status),
	)

	if !domain.ValidOrderStatus(req.Status) {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("invalid status %q", req.Status),
			apperrors.ValidationDetail{
				Field:   "status",
				Message: "status must be one of RECEIVED, IN_PROGRESS, PAUSED, FINISHED, PAID",
			},
		)
	}

	order, err := uc.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.IsTerminal() {
		return nil, apperrors.NewTerminalStateError(
			fmt.Sprintf("order %s is PAID and accepts no further transitions", order.OrderNumber),
		)
	}

	previous := order.ApplyTransition(req.Status, req.PausedReason, uc.nowFunc().UTC())

	if err := uc.orders.UpdateTransition(ctx, order); err != nil {
		return nil, err
	}

	uc.logger.Info("transition persisted",
		zap.Uint("orderId", orderID),
		zap.String("orderNumber", order.OrderNumber),
		zap.String("previousStatus", previous),
		zap.String("newStatus", order.Status),
	)

	items := uc.enqueueNotification(ctx, previous, order)

	return &TransitionResult{Order: *order, Items: items}, nil
}

// enqueueNotification assembles the snapshot and enqueues the dispatch work.
// Every failure here is swallowed: the transition has already been persisted
// and the caller's response must not depend on the notification path.
func (uc *TransitionUseCase) enqueueNotification(ctx context.Context, previous string, order *domain.Order) []domain.OrderItem {
	items, err := uc.items.ListByOrderID(ctx, order.ID)
	if err != nil {
		uc.logger.Error("loading order items for notification", zap.Uint("orderId", order.ID), zap.Error(err))
		items = nil
	}

	client, err := uc.clients.FindByID(ctx, order.ClientID)
	if err != nil {
		uc.logger.Error("loading client for notification", zap.Uint("orderId", order.ID), zap.Error(err))
		return items
	}

	store, err := uc.stores.FindByID(ctx, order.StoreID)
	if err != nil {
		uc.logger.Error("loading store for notification", zap.Uint("orderId", order.ID), zap.Error(err))
		return items
	}

	uc.outbox.Enqueue(notification.Job{
		PreviousStatus: previous,
		NewStatus:      order.Status,
		Snapshot: notification.OrderSnapshot{
			OrderID:      order.ID,
			OrderNumber:  order.OrderNumber,
			Status:       order.Status,
			TotalAmount:  order.TotalAmount,
			PausedReason: order.PausedReason,
			CreatedAt:    order.CreatedAt,
			FinishedAt:   order.FinishedAt,
			PaidAt:       order.PaidAt,
			CompanyID:    store.CompanyID,
			CompanyName:  store.CompanyName,
			StoreName:    store.Name,
			Client:       *client,
			Items:        items,
		},
	})

	return items
}
