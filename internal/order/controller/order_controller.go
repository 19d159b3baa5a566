package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"servicedesk/internal/domain"
	"servicedesk/internal/dto"
	apperrors "servicedesk/internal/errors"
	"servicedesk/internal/order/usecase"
)

type TransitionUseCase interface {
	Transition(ctx context.Context, orderID uint, req dto.TransitionRequest) (*usecase.TransitionResult, error)
}

type CreateOrderUseCase interface {
	CreateOrder(ctx context.Context, req dto.CreateOrderRequest) (*usecase.TransitionResult, error)
}

type OrderController struct {
	transitions TransitionUseCase
	creator     CreateOrderUseCase
	logger      *zap.Logger
}

func NewOrderController(transitions TransitionUseCase, creator CreateOrderUseCase, logger *zap.Logger) *OrderController {
	return &OrderController{
		transitions: transitions,
		creator:     creator,
		logger:      logger,
	}
}

// UpdateStatus handles PATCH /orders/{orderId}/status. The response code
// reflects only the persisted order state; notification outcomes never
// change it.
func (c *OrderController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	orderIDStr := chi.URLParam(r, "orderId")
	orderID, err := strconv.ParseUint(orderIDStr, 10, 64)
	if err != nil || orderID == 0 {
		logger.Warn("invalid orderId in path", zap.String("orderId", orderIDStr))
		c.writeValidationError(w, traceID, "invalid orderId", apperrors.ValidationDetail{
			Field:   "orderId",
			Message: "orderId must be a positive integer",
		})
		return
	}

	var req dto.TransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, traceID, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	if validationErr := validateTransitionRequest(req); validationErr != nil {
		ve, _ := apperrors.IsValidationError(validationErr)
		c.writeValidationError(w, traceID, ve.Message, ve.Details...)
		return
	}

	result, err := c.transitions.Transition(r.Context(), uint(orderID), req)
	if err != nil {
		c.handleUseCaseError(w, traceID, err, logger)
		return
	}

	c.writeOrderResponse(w, http.StatusOK, traceID, result)
}

// Create handles POST /orders.
func (c *OrderController) Create(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req dto.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, traceID, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	if validationErr := validateCreateOrderRequest(req); validationErr != nil {
		ve, _ := apperrors.IsValidationError(validationErr)
		c.writeValidationError(w, traceID, ve.Message, ve.Details...)
		return
	}

	result, err := c.creator.CreateOrder(r.Context(), req)
	if err != nil {
		c.handleUseCaseError(w, traceID, err, logger)
		return
	}

	c.writeOrderResponse(w, http.StatusCreated, traceID, result)
}

func validateTransitionRequest(req dto.TransitionRequest) error {
	var details []apperrors.ValidationDetail

	if req.Status == "" {
		details = append(details, apperrors.ValidationDetail{
			Field:   "status",
			Message: "status is required",
		})
	} else if !domain.ValidOrderStatus(req.Status) {
		details = append(details, apperrors.ValidationDetail{
			Field:   "status",
			Message: "status must be one of RECEIVED, IN_PROGRESS, PAUSED, FINISHED, PAID",
		})
	}

	if req.PausedReason != nil && len(*req.PausedReason) > 500 {
		details = append(details, apperrors.ValidationDetail{
			Field:   "pausedReason",
			Message: "pausedReason exceeds maximum of 500 characters",
		})
	}

	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}
	return nil
}

func validateCreateOrderRequest(req dto.CreateOrderRequest) error {
	var details []apperrors.ValidationDetail

	if req.StoreID <= 0 {
		details = append(details, apperrors.ValidationDetail{
			Field:   "storeId",
			Message: "storeId must be a positive integer",
		})
	}
	if req.ClientID <= 0 {
		details = append(details, apperrors.ValidationDetail{
			Field:   "clientId",
			Message: "clientId must be a positive integer",
		})
	}
	if req.CreatedByID <= 0 {
		details = append(details, apperrors.ValidationDetail{
			Field:   "createdById",
			Message: "createdById must be a positive integer",
		})
	}
	if len(req.Items) == 0 {
		details = append(details, apperrors.ValidationDetail{
			Field:   "items",
			Message: "items must not be empty",
		})
	}

	for idx, item := range req.Items {
		if item.ServiceName == "" {
			details = append(details, apperrors.ValidationDetail{
				Field:   "items[" + strconv.Itoa(idx) + "].serviceName",
				Message: "serviceName is required",
			})
		}
		if item.Quantity < 1 {
			details = append(details, apperrors.ValidationDetail{
				Field:   "items[" + strconv.Itoa(idx) + "].quantity",
				Message: "quantity must be at least 1",
			})
		}
		if item.Price < 0 {
			details = append(details, apperrors.ValidationDetail{
				Field:   "items[" + strconv.Itoa(idx) + "].price",
				Message: "price must be non-negative",
			})
		}
	}

	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}
	return nil
}

func (c *OrderController) handleUseCaseError(w http.ResponseWriter, traceID string, err error, logger *zap.Logger) {
	if ve, ok := apperrors.IsValidationError(err); ok {
		c.writeValidationError(w, traceID, ve.Message, ve.Details...)
		return
	}
	if _, ok := apperrors.IsNotFoundError(err); ok {
		c.writeError(w, traceID, http.StatusNotFound, "NOT_FOUND", err.Error())
		return
	}
	if _, ok := apperrors.IsTerminalStateError(err); ok {
		c.writeError(w, traceID, http.StatusConflict, "TERMINAL_STATE", err.Error())
		return
	}
	if _, ok := apperrors.IsConflictError(err); ok {
		c.writeError(w, traceID, http.StatusConflict, "CONFLICT", err.Error())
		return
	}

	logger.Error("unexpected error", zap.Error(err))
	c.writeError(w, traceID, http.StatusInternalServerError, "INTERNAL_ERROR", "an unexpected error occurred")
}

func (c *OrderController) writeOrderResponse(w http.ResponseWriter, status int, traceID string, result *usecase.TransitionResult) {
	items := make([]dto.OrderItemDTO, len(result.Items))
	for i, item := range result.Items {
		items[i] = dto.OrderItemDTO{
			ID:          item.ID,
			ServiceName: item.ServiceName,
			Description: item.Description,
			Price:       item.Price,
			Quantity:    item.Quantity,
		}
	}

	order := result.Order
	c.writeJSON(w, status, dto.OrderResponse{
		TraceID:      traceID,
		ID:           order.ID,
		OrderNumber:  order.OrderNumber,
		Status:       order.Status,
		TotalAmount:  order.TotalAmount,
		PausedReason: order.PausedReason,
		Items:        items,
		CreatedAt:    order.CreatedAt,
		FinishedAt:   order.FinishedAt,
		PaidAt:       order.PaidAt,
	})
}

type validationErrorResponse struct {
	Error   string                       `json:"error"`
	Message string                       `json:"message"`
	Details []apperrors.ValidationDetail `json:"details"`
}

func (c *OrderController) writeValidationError(w http.ResponseWriter, traceID string, message string, details ...apperrors.ValidationDetail) {
	c.writeJSON(w, http.StatusBadRequest, validationErrorResponse{
		Error:   "VALIDATION_ERROR",
		Message: message,
		Details: details,
	})
}

func (c *OrderController) writeError(w http.ResponseWriter, traceID string, status int, code, message string) {
	c.writeJSON(w, status, dto.ErrorResponse{
		TraceID:   traceID,
		Status:    status,
		Code:      code,
		Message:   message,
		Timestamp: time.Now().UTC(),
	})
}

func (c *OrderController) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		c.logger.Error("encoding response", zap.Error(err))
	}
}
