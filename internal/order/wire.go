package order

import (
	"database/sql"

	"go.uber.org/zap"

	"servicedesk/internal/notification"
	"servicedesk/internal/order/controller"
	orderrepo "servicedesk/internal/order/repository"
	"servicedesk/internal/order/usecase"
)

func NewModule(db *sql.DB, outbox *notification.Outbox, logger *zap.Logger) *controller.OrderController {
	orderRepo := orderrepo.NewMySQLOrderRepository(db)
	itemRepo := orderrepo.NewMySQLOrderItemRepository(db)
	clientRepo := orderrepo.NewMySQLClientRepository(db)
	storeRepo := orderrepo.NewMySQLStoreRepository(db)

	transitionUC := usecase.NewTransitionUseCase(orderRepo, itemRepo, clientRepo, storeRepo, outbox, logger)
	createUC := usecase.NewCreateOrderUseCase(db, orderRepo, itemRepo, clientRepo, storeRepo, logger)

	return controller.NewOrderController(transitionUC, createUC, logger)
}
