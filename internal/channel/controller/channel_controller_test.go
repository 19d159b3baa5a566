package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"servicedesk/internal/channel/usecase"
	"servicedesk/internal/domain"
	"servicedesk/internal/dto"
	apperrors "servicedesk/internal/errors"
)

type mockConnectionUseCase struct {
	SetupFunc           func(ctx context.Context, companyID int, req dto.ChannelSetupRequest) (*domain.ChannelConfig, error)
	EnsureConnectedFunc func(ctx context.Context, companyID int) (*usecase.ConnectionStatus, error)
	GetPairingCodeFunc  func(ctx context.Context, companyID int) (string, error)
	PollStatusFunc      func(ctx context.Context, companyID int) (*usecase.ConnectionStatus, error)
	DisconnectFunc      func(ctx context.Context, companyID int) error
}

func (m *mockConnectionUseCase) Setup(ctx context.Context, companyID int, req dto.ChannelSetupRequest) (*domain.ChannelConfig, error) {
	if m.SetupFunc != nil {
		return m.SetupFunc(ctx, companyID, req)
	}
	return &domain.ChannelConfig{ID: 1, CompanyID: companyID, InstanceName: req.InstanceName}, nil
}

func (m *mockConnectionUseCase) EnsureConnected(ctx context.Context, companyID int) (*usecase.ConnectionStatus, error) {
	if m.EnsureConnectedFunc != nil {
		return m.EnsureConnectedFunc(ctx, companyID)
	}
	return &usecase.ConnectionStatus{State: domain.ConnectionConnecting}, nil
}

func (m *mockConnectionUseCase) GetPairingCode(ctx context.Context, companyID int) (string, error) {
	if m.GetPairingCodeFunc != nil {
		return m.GetPairingCodeFunc(ctx, companyID)
	}
	return "base64-code", nil
}

func (m *mockConnectionUseCase) PollStatus(ctx context.Context, companyID int) (*usecase.ConnectionStatus, error) {
	if m.PollStatusFunc != nil {
		return m.PollStatusFunc(ctx, companyID)
	}
	return &usecase.ConnectionStatus{State: domain.ConnectionConnecting}, nil
}

func (m *mockConnectionUseCase) Disconnect(ctx context.Context, companyID int) error {
	if m.DisconnectFunc != nil {
		return m.DisconnectFunc(ctx, companyID)
	}
	return nil
}

type mockMessageLogUseCase struct {
	ListRecentFunc func(ctx context.Context, companyID, limit int) ([]domain.MessageLog, error)
}

func (m *mockMessageLogUseCase) ListRecent(ctx context.Context, companyID, limit int) ([]domain.MessageLog, error) {
	if m.ListRecentFunc != nil {
		return m.ListRecentFunc(ctx, companyID, limit)
	}
	return []domain.MessageLog{}, nil
}

func channelRouter(c *ChannelController) *chi.Mux {
	r := chi.NewRouter()
	r.Route("/companies/{companyId}/channel", func(r chi.Router) {
		r.Post("/", c.Setup)
		r.Post("/connect", c.Connect)
		r.Get("/pairing-code", c.PairingCode)
		r.Get("/status", c.Status)
		r.Delete("/connection", c.Disconnect)
		r.Get("/messages", c.Messages)
	})
	return r
}

func doRequest(t *testing.T, c *ChannelController, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	channelRouter(c).ServeHTTP(rec, req)
	return rec
}

func newChannelController(connections ConnectionUseCase, messages MessageLogUseCase) *ChannelController {
	if connections == nil {
		connections = &mockConnectionUseCase{}
	}
	if messages == nil {
		messages = &mockMessageLogUseCase{}
	}
	return NewChannelController(connections, messages, zap.NewNop())
}

func TestSetup_Created(t *testing.T) {
	c := newChannelController(nil, nil)

	rec := doRequest(t, c, http.MethodPost, "/companies/1/channel",
		`{"instanceName":"tecfix","apiKey":"secret","apiUrl":"http://provider.local"}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), "tecfix")
}

func TestSetup_MissingFields(t *testing.T) {
	c := newChannelController(nil, nil)

	rec := doRequest(t, c, http.MethodPost, "/companies/1/channel", `{}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Details []apperrors.ValidationDetail `json:"details"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Details, 3)
}

func TestSetup_DuplicateConflicts(t *testing.T) {
	connections := &mockConnectionUseCase{
		SetupFunc: func(ctx context.Context, companyID int, req dto.ChannelSetupRequest) (*domain.ChannelConfig, error) {
			return nil, apperrors.NewConflictError("channel already configured for company")
		},
	}
	c := newChannelController(connections, nil)

	rec := doRequest(t, c, http.MethodPost, "/companies/1/channel",
		`{"instanceName":"tecfix","apiKey":"secret","apiUrl":"http://provider.local"}`)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "CONFLICT")
}

func TestConnect_ReturnsPairingCode(t *testing.T) {
	connections := &mockConnectionUseCase{
		EnsureConnectedFunc: func(ctx context.Context, companyID int) (*usecase.ConnectionStatus, error) {
			code := "base64-code"
			return &usecase.ConnectionStatus{State: domain.ConnectionConnecting, PairingCode: &code}, nil
		},
	}
	c := newChannelController(connections, nil)

	rec := doRequest(t, c, http.MethodPost, "/companies/1/channel/connect", "")

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp dto.ChannelStatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, domain.ConnectionConnecting, resp.State)
	require.NotNil(t, resp.PairingCode)
	assert.Equal(t, "base64-code", *resp.PairingCode)
}

func TestConnect_NoConfigIs404(t *testing.T) {
	connections := &mockConnectionUseCase{
		EnsureConnectedFunc: func(ctx context.Context, companyID int) (*usecase.ConnectionStatus, error) {
			return nil, apperrors.NewNotFoundError("channel config not found")
		},
	}
	c := newChannelController(connections, nil)

	rec := doRequest(t, c, http.MethodPost, "/companies/1/channel/connect", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStatus_Connected(t *testing.T) {
	connections := &mockConnectionUseCase{
		PollStatusFunc: func(ctx context.Context, companyID int) (*usecase.ConnectionStatus, error) {
			phone := "5511988887777"
			return &usecase.ConnectionStatus{State: domain.ConnectionConnected, PhoneNumber: &phone}, nil
		},
	}
	c := newChannelController(connections, nil)

	rec := doRequest(t, c, http.MethodGet, "/companies/1/channel/status", "")

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp dto.ChannelStatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, domain.ConnectionConnected, resp.State)
	assert.Equal(t, "5511988887777", *resp.PhoneNumber)
}

func TestDisconnect_ReportsDisconnected(t *testing.T) {
	c := newChannelController(nil, nil)

	rec := doRequest(t, c, http.MethodDelete, "/companies/1/channel/connection", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), domain.ConnectionDisconnected)
}

func TestMessages_DefaultLimit(t *testing.T) {
	var gotLimit int
	messages := &mockMessageLogUseCase{
		ListRecentFunc: func(ctx context.Context, companyID, limit int) ([]domain.MessageLog, error) {
			gotLimit = limit
			return []domain.MessageLog{}, nil
		},
	}
	c := newChannelController(nil, messages)

	rec := doRequest(t, c, http.MethodGet, "/companies/1/channel/messages", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 50, gotLimit)
}

func TestMessages_LimitBounds(t *testing.T) {
	c := newChannelController(nil, nil)

	for _, limit := range []string{"0", "501", "abc"} {
		rec := doRequest(t, c, http.MethodGet, "/companies/1/channel/messages?limit="+limit, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, limit)
	}
}

func TestInvalidCompanyIDRejectedEverywhere(t *testing.T) {
	c := newChannelController(nil, nil)

	rec := doRequest(t, c, http.MethodGet, "/companies/abc/channel/status", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "companyId")
}
