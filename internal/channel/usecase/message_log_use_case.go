package usecase

import (
	"context"

	"servicedesk/internal/domain"
)

type MessageLogRepository interface {
	ListByChannelConfig(ctx context.Context, channelConfigID, limit int) ([]domain.MessageLog, error)
}

// MessageLogUseCase exposes the audit trail: messaging failures are invisible
// in transition responses and only discoverable here.
type MessageLogUseCase struct {
	configs ChannelConfigRepository
	logs    MessageLogRepository
}

func NewMessageLogUseCase(configs ChannelConfigRepository, logs MessageLogRepository) *MessageLogUseCase {
	return &MessageLogUseCase{configs: configs, logs: logs}
}

func (uc *MessageLogUseCase) ListRecent(ctx context.Context, companyID, limit int) ([]domain.MessageLog, error) {
	cfg, err := uc.configs.FindByCompanyID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return uc.logs.ListByChannelConfig(ctx, cfg.ID, limit)
}
