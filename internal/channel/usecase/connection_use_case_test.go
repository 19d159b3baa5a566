package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"servicedesk/internal/channel/provider"
	"servicedesk/internal/domain"
	"servicedesk/internal/dto"
	apperrors "servicedesk/internal/errors"
)

type mockProviderClient struct {
	CreateInstanceFunc     func(ctx context.Context) (*provider.PairingCode, error)
	GetPairingCodeFunc     func(ctx context.Context) (*provider.PairingCode, error)
	GetConnectionStateFunc func(ctx context.Context) (*provider.ConnectionState, error)
	LogoutFunc             func(ctx context.Context) error

	creates int
	logouts int
}

func (m *mockProviderClient) CreateInstance(ctx context.Context) (*provider.PairingCode, error) {
	m.creates++
	if m.CreateInstanceFunc != nil {
		return m.CreateInstanceFunc(ctx)
	}
	return nil, nil
}

func (m *mockProviderClient) GetPairingCode(ctx context.Context) (*provider.PairingCode, error) {
	if m.GetPairingCodeFunc != nil {
		return m.GetPairingCodeFunc(ctx)
	}
	return &provider.PairingCode{Code: "base64-code"}, nil
}

func (m *mockProviderClient) GetConnectionState(ctx context.Context) (*provider.ConnectionState, error) {
	if m.GetConnectionStateFunc != nil {
		return m.GetConnectionStateFunc(ctx)
	}
	return &provider.ConnectionState{State: "close"}, nil
}

func (m *mockProviderClient) Logout(ctx context.Context) error {
	m.logouts++
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx)
	}
	return nil
}

type mockChannelConfigRepository struct {
	FindByCompanyIDFunc  func(ctx context.Context, companyID int) (*domain.ChannelConfig, error)
	InsertFunc           func(ctx context.Context, cfg domain.ChannelConfig) (int, error)
	UpdateConnectionFunc func(ctx context.Context, id int, isConnected bool, phoneNumber *string) error

	lastConnected *bool
	lastPhone     *string
}

func (m *mockChannelConfigRepository) FindByCompanyID(ctx context.Context, companyID int) (*domain.ChannelConfig, error) {
	if m.FindByCompanyIDFunc != nil {
		return m.FindByCompanyIDFunc(ctx, companyID)
	}
	return &domain.ChannelConfig{
		ID:           1,
		CompanyID:    companyID,
		InstanceName: "tecfix",
		APIKey:       "secret",
		APIURL:       "http://provider.local",
	}, nil
}

func (m *mockChannelConfigRepository) Insert(ctx context.Context, cfg domain.ChannelConfig) (int, error) {
	if m.InsertFunc != nil {
		return m.InsertFunc(ctx, cfg)
	}
	return 1, nil
}

func (m *mockChannelConfigRepository) UpdateConnection(ctx context.Context, id int, isConnected bool, phoneNumber *string) error {
	m.lastConnected = &isConnected
	m.lastPhone = phoneNumber
	if m.UpdateConnectionFunc != nil {
		return m.UpdateConnectionFunc(ctx, id, isConnected, phoneNumber)
	}
	return nil
}

type mockMessageTemplateRepository struct {
	SeedDefaultsFunc func(ctx context.Context, channelConfigID int) error

	seeded []int
}

func (m *mockMessageTemplateRepository) SeedDefaults(ctx context.Context, channelConfigID int) error {
	m.seeded = append(m.seeded, channelConfigID)
	if m.SeedDefaultsFunc != nil {
		return m.SeedDefaultsFunc(ctx, channelConfigID)
	}
	return nil
}

func strPtr(s string) *string {
	return &s
}

func newConnectionFixture(client *mockProviderClient) (*ConnectionUseCase, *mockChannelConfigRepository, *mockMessageTemplateRepository) {
	configs := &mockChannelConfigRepository{}
	templates := &mockMessageTemplateRepository{}
	uc := NewConnectionUseCase(configs, templates,
		func(cfg domain.ChannelConfig) ProviderClient { return client },
		zap.NewNop())
	return uc, configs, templates
}

func TestSetup_InsertsConfigAndSeedsTemplates(t *testing.T) {
	uc, _, templates := newConnectionFixture(&mockProviderClient{})

	cfg, err := uc.Setup(context.Background(), 1, dto.ChannelSetupRequest{
		InstanceName: "tecfix",
		APIKey:       "secret",
		APIURL:       "http://provider.local",
	})

	require.NoError(t, err)
	assert.Equal(t, 1, cfg.ID)
	assert.Equal(t, "tecfix", cfg.InstanceName)
	assert.Equal(t, []int{1}, templates.seeded)
}

func TestSetup_DuplicateCompanyConflicts(t *testing.T) {
	uc, configs, templates := newConnectionFixture(&mockProviderClient{})
	configs.InsertFunc = func(ctx context.Context, cfg domain.ChannelConfig) (int, error) {
		return 0, apperrors.NewConflictError("channel already configured for company")
	}

	_, err := uc.Setup(context.Background(), 1, dto.ChannelSetupRequest{InstanceName: "tecfix"})

	_, ok := apperrors.IsConflictError(err)
	assert.True(t, ok)
	assert.Empty(t, templates.seeded)
}

func TestSetup_SeedFailureDoesNotFailSetup(t *testing.T) {
	uc, _, templates := newConnectionFixture(&mockProviderClient{})
	templates.SeedDefaultsFunc = func(ctx context.Context, channelConfigID int) error {
		return errors.New("connection reset")
	}

	cfg, err := uc.Setup(context.Background(), 1, dto.ChannelSetupRequest{InstanceName: "tecfix"})

	require.NoError(t, err)
	assert.Equal(t, 1, cfg.ID)
}

func TestEnsureConnected_OpenInstancePersistsConnected(t *testing.T) {
	client := &mockProviderClient{
		GetConnectionStateFunc: func(ctx context.Context) (*provider.ConnectionState, error) {
			return &provider.ConnectionState{State: "open", PairedAddress: strPtr("5511988887777")}, nil
		},
	}
	uc, configs, _ := newConnectionFixture(client)

	status, err := uc.EnsureConnected(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, domain.ConnectionConnected, status.State)
	assert.Equal(t, "5511988887777", *status.PhoneNumber)
	assert.Zero(t, client.creates, "an open instance is never recreated")
	require.NotNil(t, configs.lastConnected)
	assert.True(t, *configs.lastConnected)
	assert.Equal(t, "5511988887777", *configs.lastPhone)
}

func TestEnsureConnected_MissingInstanceCreatedWithPairingCode(t *testing.T) {
	client := &mockProviderClient{
		GetConnectionStateFunc: func(ctx context.Context) (*provider.ConnectionState, error) {
			return nil, provider.ErrInstanceNotFound
		},
		CreateInstanceFunc: func(ctx context.Context) (*provider.PairingCode, error) {
			return &provider.PairingCode{Code: "base64-code"}, nil
		},
	}
	uc, configs, _ := newConnectionFixture(client)

	status, err := uc.EnsureConnected(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, 1, client.creates)
	assert.Equal(t, domain.ConnectionConnecting, status.State)
	require.NotNil(t, status.PairingCode)
	assert.Equal(t, "base64-code", *status.PairingCode)
	require.NotNil(t, configs.lastConnected)
	assert.False(t, *configs.lastConnected)
}

func TestEnsureConnected_ClosedInstanceReportsConnecting(t *testing.T) {
	uc, configs, _ := newConnectionFixture(&mockProviderClient{})

	status, err := uc.EnsureConnected(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, domain.ConnectionConnecting, status.State)
	assert.Nil(t, configs.lastConnected, "a connecting instance changes nothing locally")
}

func TestEnsureConnected_NoConfig(t *testing.T) {
	uc, configs, _ := newConnectionFixture(&mockProviderClient{})
	configs.FindByCompanyIDFunc = func(ctx context.Context, companyID int) (*domain.ChannelConfig, error) {
		return nil, apperrors.NewNotFoundError("channel config not found")
	}

	_, err := uc.EnsureConnected(context.Background(), 1)

	_, ok := apperrors.IsNotFoundError(err)
	assert.True(t, ok)
}

func TestGetPairingCode_Direct(t *testing.T) {
	uc, _, _ := newConnectionFixture(&mockProviderClient{})

	code, err := uc.GetPairingCode(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, "base64-code", code)
}

func TestGetPairingCode_RecreatesForgottenInstance(t *testing.T) {
	calls := 0
	client := &mockProviderClient{
		GetPairingCodeFunc: func(ctx context.Context) (*provider.PairingCode, error) {
			calls++
			if calls == 1 {
				return nil, provider.ErrInstanceNotFound
			}
			return &provider.PairingCode{Code: "retry-code"}, nil
		},
	}
	uc, _, _ := newConnectionFixture(client)

	code, err := uc.GetPairingCode(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, 1, client.creates)
	assert.Equal(t, "retry-code", code)
	assert.Equal(t, 2, calls)
}

func TestGetPairingCode_CreateReturnsCodeShortCircuitsRetry(t *testing.T) {
	client := &mockProviderClient{
		GetPairingCodeFunc: func(ctx context.Context) (*provider.PairingCode, error) {
			return nil, provider.ErrInstanceNotFound
		},
		CreateInstanceFunc: func(ctx context.Context) (*provider.PairingCode, error) {
			return &provider.PairingCode{Code: "fresh-code"}, nil
		},
	}
	uc, _, _ := newConnectionFixture(client)

	code, err := uc.GetPairingCode(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, "fresh-code", code)
}

func TestPollStatus_MissingInstanceIsDisconnected(t *testing.T) {
	client := &mockProviderClient{
		GetConnectionStateFunc: func(ctx context.Context) (*provider.ConnectionState, error) {
			return nil, provider.ErrInstanceNotFound
		},
	}
	uc, _, _ := newConnectionFixture(client)

	status, err := uc.PollStatus(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, domain.ConnectionDisconnected, status.State)
	assert.Zero(t, client.creates, "polling never creates instances")
}

func TestPollStatus_OpenReconcilesLocalState(t *testing.T) {
	client := &mockProviderClient{
		GetConnectionStateFunc: func(ctx context.Context) (*provider.ConnectionState, error) {
			return &provider.ConnectionState{State: "open", PairedAddress: strPtr("5511988887777")}, nil
		},
	}
	uc, configs, _ := newConnectionFixture(client)

	status, err := uc.PollStatus(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, domain.ConnectionConnected, status.State)
	require.NotNil(t, configs.lastConnected)
	assert.True(t, *configs.lastConnected)
}

func TestDisconnect_PersistsEvenWhenLogoutFails(t *testing.T) {
	client := &mockProviderClient{
		LogoutFunc: func(ctx context.Context) error {
			return errors.New("provider unreachable")
		},
	}
	uc, configs, _ := newConnectionFixture(client)

	err := uc.Disconnect(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, 1, client.logouts)
	require.NotNil(t, configs.lastConnected)
	assert.False(t, *configs.lastConnected)
	assert.Nil(t, configs.lastPhone)
}
