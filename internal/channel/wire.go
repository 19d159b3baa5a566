package channel

import (
	"database/sql"

	"go.uber.org/zap"

	"servicedesk/internal/channel/controller"
	"servicedesk/internal/channel/provider"
	channelrepo "servicedesk/internal/channel/repository"
	"servicedesk/internal/channel/usecase"
	"servicedesk/internal/config"
	"servicedesk/internal/domain"
)

func NewModule(db *sql.DB, cfg *config.Config, logger *zap.Logger) *controller.ChannelController {
	configRepo := channelrepo.NewMySQLChannelConfigRepository(db)
	templateRepo := channelrepo.NewMySQLMessageTemplateRepository(db)
	logRepo := channelrepo.NewMySQLMessageLogRepository(db)

	newProvider := func(channelCfg domain.ChannelConfig) usecase.ProviderClient {
		return provider.NewClient(channelCfg, cfg.Channel.HTTPTimeout)
	}

	connectionUC := usecase.NewConnectionUseCase(configRepo, templateRepo, newProvider, logger)
	messagesUC := usecase.NewMessageLogUseCase(configRepo, logRepo)

	return controller.NewChannelController(connectionUC, messagesUC, logger)
}
