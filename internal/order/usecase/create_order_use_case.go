package usecase

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"servicedesk/internal/domain"
	"servicedesk/internal/dto"
	apperrors "servicedesk/internal/errors"
)

type TransactionManager interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

type OrderWriteRepository interface {
	Insert(ctx context.Context, tx *sql.Tx, order domain.Order) (uint, error)
	CountByStore(ctx context.Context, tx *sql.Tx, storeID int) (int, error)
}

type OrderItemWriteRepository interface {
	Insert(ctx context.Context, tx *sql.Tx, item domain.OrderItem) (uint, error)
}

// CreateOrderUseCase opens orders in RECEIVED with a generated per-store
// order number like OS2501-0007 (OS + yymm + sequence).
type CreateOrderUseCase struct {
	db      TransactionManager
	orders  OrderWriteRepository
	items   OrderItemWriteRepository
	clients ClientRepository
	stores  StoreRepository
	logger  *zap.Logger
	nowFunc func() time.Time
}

func NewCreateOrderUseCase(
	db TransactionManager,
	orders OrderWriteRepository,
	items OrderItemWriteRepository,
	clients ClientRepository,
	stores StoreRepository,
	logger *zap.Logger,
) *CreateOrderUseCase {
	return &CreateOrderUseCase{
		db:      db,
		orders:  orders,
		items:   items,
		clients: clients,
		stores:  stores,
		logger:  logger,
		nowFunc: time.Now,
	}
}

func (uc *CreateOrderUseCase) CreateOrder(ctx context.Context, req dto.CreateOrderRequest) (*TransitionResult, error) {
	store, err := uc.stores.FindByID(ctx, req.StoreID)
	if err != nil {
		return nil, err
	}

	client, err := uc.clients.FindByID(ctx, req.ClientID)
	if err != nil {
		return nil, err
	}
	if client.StoreID != store.ID {
		return nil, apperrors.NewConflictError(
			fmt.Sprintf("client %d does not belong to store %d", client.ID, store.ID),
		)
	}

	now := uc.nowFunc().UTC()

	txCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := uc.db.BeginTx(txCtx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	sequence, err := uc.orders.CountByStore(txCtx, tx, store.ID)
	if err != nil {
		return nil, err
	}

	order := domain.Order{
		StoreID:     store.ID,
		ClientID:    client.ID,
		CreatedByID: req.CreatedByID,
		OrderNumber: fmt.Sprintf("OS%s-%04d", now.Format("0601"), sequence+1),
		Status:      domain.OrderStatusReceived,
		CreatedAt:   now,
	}

	items := make([]domain.OrderItem, len(req.Items))
	for i, input := range req.Items {
		items[i] = domain.OrderItem{
			ServiceName: input.ServiceName,
			Description: input.Description,
			Price:       input.Price,
			Quantity:    input.Quantity,
		}
	}
	order.TotalAmount = domain.OrderTotal(items)

	orderID, err := uc.orders.Insert(txCtx, tx, order)
	if err != nil {
		return nil, err
	}
	order.ID = orderID

	for i := range items {
		items[i].OrderID = orderID
		itemID, err := uc.items.Insert(txCtx, tx, items[i])
		if err != nil {
			return nil, err
		}
		items[i].ID = itemID
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing order creation: %w", err)
	}

	uc.logger.Info("order created",
		zap.Uint("orderId", order.ID),
		zap.String("orderNumber", order.OrderNumber),
		zap.Int("storeId", store.ID),
		zap.Float64("totalAmount", order.TotalAmount),
	)

	return &TransitionResult{Order: order, Items: items}, nil
}
