package usecase

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"servicedesk/internal/channel/provider"
	"servicedesk/internal/domain"
	"servicedesk/internal/dto"
	apperrors "servicedesk/internal/errors"
)

// ProviderClient is the per-tenant slice of the provider the connection
// manager uses.
type ProviderClient interface {
	CreateInstance(ctx context.Context) (*provider.PairingCode, error)
	GetPairingCode(ctx context.Context) (*provider.PairingCode, error)
	GetConnectionState(ctx context.Context) (*provider.ConnectionState, error)
	Logout(ctx context.Context) error
}

// ProviderFactory builds a provider client from one tenant's config, keeping
// credentials strictly tenant-scoped.
type ProviderFactory func(cfg domain.ChannelConfig) ProviderClient

type ChannelConfigRepository interface {
	FindByCompanyID(ctx context.Context, companyID int) (*domain.ChannelConfig, error)
	Insert(ctx context.Context, cfg domain.ChannelConfig) (int, error)
	UpdateConnection(ctx context.Context, id int, isConnected bool, phoneNumber *string) error
}

type MessageTemplateRepository interface {
	SeedDefaults(ctx context.Context, channelConfigID int) error
}

// ConnectionStatus is the caller-facing view of one tenant's channel.
type ConnectionStatus struct {
	State       string
	PhoneNumber *string
	PairingCode *string
}

// ConnectionUseCase owns the lifecycle of a tenant's messaging-channel
// instance: setup, pairing, polling and disconnect.
type ConnectionUseCase struct {
	configs     ChannelConfigRepository
	templates   MessageTemplateRepository
	newProvider ProviderFactory
	logger      *zap.Logger
}

func NewConnectionUseCase(
	configs ChannelConfigRepository,
	templates MessageTemplateRepository,
	newProvider ProviderFactory,
	logger *zap.Logger,
) *ConnectionUseCase {
	return &ConnectionUseCase{
		configs:     configs,
		templates:   templates,
		newProvider: newProvider,
		logger:      logger,
	}
}

// Setup creates the company's channel config once and seeds the default
// templates. A second setup for the same company is a conflict.
func (uc *ConnectionUseCase) Setup(ctx context.Context, companyID int, req dto.ChannelSetupRequest) (*domain.ChannelConfig, error) {
	cfg := domain.ChannelConfig{
		CompanyID:    companyID,
		InstanceName: req.InstanceName,
		APIKey:       req.APIKey,
		APIURL:       req.APIURL,
	}

	id, err := uc.configs.Insert(ctx, cfg)
	if err != nil {
		return nil, err
	}
	cfg.ID = id

	if err := uc.templates.SeedDefaults(ctx, id); err != nil {
		// The config row exists; templates fall back to the built-ins until
		// seeding is repaired.
		uc.logger.Error("seeding default templates", zap.Int("companyId", companyID), zap.Error(err))
	}

	uc.logger.Info("channel config created", zap.Int("companyId", companyID), zap.String("instance", req.InstanceName))
	return &cfg, nil
}

// EnsureConnected reconciles local state with the provider. Already-open
// instances persist CONNECTED and return immediately; a missing instance is
// created, and a pairing code returned by creation short-circuits any further
// connect call.
func (uc *ConnectionUseCase) EnsureConnected(ctx context.Context, companyID int) (*ConnectionStatus, error) {
	cfg, err := uc.configs.FindByCompanyID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	client := uc.newProvider(*cfg)

	state, err := client.GetConnectionState(ctx)
	if errors.Is(err, provider.ErrInstanceNotFound) {
		code, err := client.CreateInstance(ctx)
		if err != nil {
			return nil, apperrors.NewInternalError("creating channel instance", err)
		}
		if err := uc.configs.UpdateConnection(ctx, cfg.ID, false, nil); err != nil {
			return nil, err
		}
		status := &ConnectionStatus{State: domain.ConnectionConnecting}
		if code != nil {
			status.PairingCode = &code.Code
		}
		return status, nil
	}
	if err != nil {
		return nil, apperrors.NewInternalError("querying channel state", err)
	}

	if state.Open() {
		if err := uc.configs.UpdateConnection(ctx, cfg.ID, true, state.PairedAddress); err != nil {
			return nil, err
		}
		return &ConnectionStatus{State: domain.ConnectionConnected, PhoneNumber: state.PairedAddress}, nil
	}

	return &ConnectionStatus{State: domain.ConnectionConnecting}, nil
}

// GetPairingCode requests a scannable code. A provider that forgot the
// instance gets it recreated, then one retry before the error surfaces.
func (uc *ConnectionUseCase) GetPairingCode(ctx context.Context, companyID int) (string, error) {
	cfg, err := uc.configs.FindByCompanyID(ctx, companyID)
	if err != nil {
		return "", err
	}
	client := uc.newProvider(*cfg)

	code, err := client.GetPairingCode(ctx)
	if errors.Is(err, provider.ErrInstanceNotFound) {
		created, createErr := client.CreateInstance(ctx)
		if createErr != nil {
			return "", apperrors.NewInternalError("recreating channel instance", createErr)
		}
		if created != nil {
			return created.Code, nil
		}
		code, err = client.GetPairingCode(ctx)
	}
	if err != nil {
		return "", apperrors.NewInternalError("requesting pairing code", err)
	}

	return code.Code, nil
}

// PollStatus performs a single state check for the caller-driven polling
// loop. The caller bounds retries; this never retains a timer.
func (uc *ConnectionUseCase) PollStatus(ctx context.Context, companyID int) (*ConnectionStatus, error) {
	cfg, err := uc.configs.FindByCompanyID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	client := uc.newProvider(*cfg)

	state, err := client.GetConnectionState(ctx)
	if errors.Is(err, provider.ErrInstanceNotFound) {
		return &ConnectionStatus{State: domain.ConnectionDisconnected}, nil
	}
	if err != nil {
		return nil, apperrors.NewInternalError("querying channel state", err)
	}

	if state.Open() {
		if err := uc.configs.UpdateConnection(ctx, cfg.ID, true, state.PairedAddress); err != nil {
			return nil, err
		}
		return &ConnectionStatus{State: domain.ConnectionConnected, PhoneNumber: state.PairedAddress}, nil
	}

	return &ConnectionStatus{State: domain.ConnectionConnecting}, nil
}

// Disconnect requests provider logout and then persists DISCONNECTED no
// matter what: locally assuming the channel is gone is the safe default.
func (uc *ConnectionUseCase) Disconnect(ctx context.Context, companyID int) error {
	cfg, err := uc.configs.FindByCompanyID(ctx, companyID)
	if err != nil {
		return err
	}
	client := uc.newProvider(*cfg)

	if err := client.Logout(ctx); err != nil {
		uc.logger.Warn("provider logout failed, persisting disconnect anyway",
			zap.Int("companyId", companyID), zap.Error(err))
	}

	return uc.configs.UpdateConnection(ctx, cfg.ID, false, nil)
}
