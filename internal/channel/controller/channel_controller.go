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

	"servicedesk/internal/channel/usecase"
	"servicedesk/internal/domain"
	"servicedesk/internal/dto"
	apperrors "servicedesk/internal/errors"
)

type ConnectionUseCase interface {
	Setup(ctx context.Context, companyID int, req dto.ChannelSetupRequest) (*domain.ChannelConfig, error)
	EnsureConnected(ctx context.Context, companyID int) (*usecase.ConnectionStatus, error)
	GetPairingCode(ctx context.Context, companyID int) (string, error)
	PollStatus(ctx context.Context, companyID int) (*usecase.ConnectionStatus, error)
	Disconnect(ctx context.Context, companyID int) error
}

type MessageLogUseCase interface {
	ListRecent(ctx context.Context, companyID, limit int) ([]domain.MessageLog, error)
}

type ChannelController struct {
	connections ConnectionUseCase
	messages    MessageLogUseCase
	logger      *zap.Logger
}

func NewChannelController(connections ConnectionUseCase, messages MessageLogUseCase, logger *zap.Logger) *ChannelController {
	return &ChannelController{
		connections: connections,
		messages:    messages,
		logger:      logger,
	}
}

func (c *ChannelController) Setup(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	companyID, ok := c.parseCompanyID(w, r, traceID)
	if !ok {
		return
	}

	var req dto.ChannelSetupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, traceID, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	if err := validateSetupRequest(req); err != nil {
		ve, _ := apperrors.IsValidationError(err)
		c.writeValidationError(w, traceID, ve.Message, ve.Details...)
		return
	}

	cfg, err := c.connections.Setup(r.Context(), companyID, req)
	if err != nil {
		c.handleUseCaseError(w, traceID, err, logger)
		return
	}

	c.writeJSON(w, http.StatusCreated, map[string]interface{}{
		"traceId":      traceID,
		"id":           cfg.ID,
		"companyId":    cfg.CompanyID,
		"instanceName": cfg.InstanceName,
		"isConnected":  cfg.IsConnected,
	})
}

func (c *ChannelController) Connect(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	companyID, ok := c.parseCompanyID(w, r, traceID)
	if !ok {
		return
	}

	status, err := c.connections.EnsureConnected(r.Context(), companyID)
	if err != nil {
		c.handleUseCaseError(w, traceID, err, logger)
		return
	}

	c.writeStatus(w, traceID, status)
}

func (c *ChannelController) PairingCode(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	companyID, ok := c.parseCompanyID(w, r, traceID)
	if !ok {
		return
	}

	code, err := c.connections.GetPairingCode(r.Context(), companyID)
	if err != nil {
		c.handleUseCaseError(w, traceID, err, logger)
		return
	}

	c.writeJSON(w, http.StatusOK, map[string]string{
		"traceId":     traceID,
		"pairingCode": code,
	})
}

func (c *ChannelController) Status(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	companyID, ok := c.parseCompanyID(w, r, traceID)
	if !ok {
		return
	}

	status, err := c.connections.PollStatus(r.Context(), companyID)
	if err != nil {
		c.handleUseCaseError(w, traceID, err, logger)
		return
	}

	c.writeStatus(w, traceID, status)
}

func (c *ChannelController) Disconnect(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	companyID, ok := c.parseCompanyID(w, r, traceID)
	if !ok {
		return
	}

	if err := c.connections.Disconnect(r.Context(), companyID); err != nil {
		c.handleUseCaseError(w, traceID, err, logger)
		return
	}

	c.writeJSON(w, http.StatusOK, map[string]string{
		"traceId": traceID,
		"state":   domain.ConnectionDisconnected,
	})
}

func (c *ChannelController) Messages(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	companyID, ok := c.parseCompanyID(w, r, traceID)
	if !ok {
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 500 {
			c.writeValidationError(w, traceID, "invalid limit", apperrors.ValidationDetail{
				Field:   "limit",
				Message: "limit must be an integer between 1 and 500",
			})
			return
		}
		limit = parsed
	}

	logs, err := c.messages.ListRecent(r.Context(), companyID, limit)
	if err != nil {
		c.handleUseCaseError(w, traceID, err, logger)
		return
	}

	c.writeJSON(w, http.StatusOK, map[string]interface{}{
		"traceId":  traceID,
		"messages": logs,
	})
}

func (c *ChannelController) parseCompanyID(w http.ResponseWriter, r *http.Request, traceID string) (int, bool) {
	raw := chi.URLParam(r, "companyId")
	companyID, err := strconv.Atoi(raw)
	if err != nil || companyID <= 0 {
		c.writeValidationError(w, traceID, "invalid companyId", apperrors.ValidationDetail{
			Field:   "companyId",
			Message: "companyId must be a positive integer",
		})
		return 0, false
	}
	return companyID, true
}

func validateSetupRequest(req dto.ChannelSetupRequest) error {
	var details []apperrors.ValidationDetail

	if req.InstanceName == "" {
		details = append(details, apperrors.ValidationDetail{
			Field:   "instanceName",
			Message: "instanceName is required",
		})
	}
	if req.APIKey == "" {
		details = append(details, apperrors.ValidationDetail{
			Field:   "apiKey",
			Message: "apiKey is required",
		})
	}
	if req.APIURL == "" {
		details = append(details, apperrors.ValidationDetail{
			Field:   "apiUrl",
			Message: "apiUrl is required",
		})
	}

	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}
	return nil
}

func (c *ChannelController) writeStatus(w http.ResponseWriter, traceID string, status *usecase.ConnectionStatus) {
	c.writeJSON(w, http.StatusOK, dto.ChannelStatusResponse{
		TraceID:     traceID,
		State:       status.State,
		PhoneNumber: status.PhoneNumber,
		PairingCode: status.PairingCode,
	})
}

func (c *ChannelController) handleUseCaseError(w http.ResponseWriter, traceID string, err error, logger *zap.Logger) {
	if _, ok := apperrors.IsNotFoundError(err); ok {
		c.writeError(w, traceID, http.StatusNotFound, "NOT_FOUND", err.Error())
		return
	}
	if _, ok := apperrors.IsConflictError(err); ok {
		c.writeError(w, traceID, http.StatusConflict, "CONFLICT", err.Error())
		return
	}

	logger.Error("unexpected error", zap.Error(err))
	c.writeError(w, traceID, http.StatusInternalServerError, "INTERNAL_ERROR", "an unexpected error occurred")
}

type validationErrorResponse struct {
	Error   string                       `json:"error"`
	Message string                       `json:"message"`
	Details []apperrors.ValidationDetail `json:"details"`
}

func (c *ChannelController) writeValidationError(w http.ResponseWriter, traceID string, message string, details ...apperrors.ValidationDetail) {
	c.writeJSON(w, http.StatusBadRequest, validationErrorResponse{
		Error:   "VALIDATION_ERROR",
		Message: message,
		Details: details,
	})
}

func (c *ChannelController) writeError(w http.ResponseWriter, traceID string, status int, code, message string) {
	c.writeJSON(w, status, dto.ErrorResponse{
		TraceID:   traceID,
		Status:    status,
		Code:      code,
		Message:   message,
		Timestamp: time.Now().UTC(),
	})
}

func (c *ChannelController) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		c.logger.Error("encoding response", zap.Error(err))
	}
}
