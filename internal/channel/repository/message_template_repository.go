package repository

import (
	"context"
	"database/sql"
	"fmt"

	"servicedesk/internal/domain"
	apperrors "servicedesk/internal/errors"
	"servicedesk/internal/notification"
)

type MySQLMessageTemplateRepository struct {
	db *sql.DB
}

func NewMySQLMessageTemplateRepository(db *sql.DB) *MySQLMessageTemplateRepository {
	return &MySQLMessageTemplateRepository{db: db}
}

// FindActive returns the template consulted at dispatch time. Several rows
// may be active for the same status; the lowest id wins deterministically.
func (r *MySQLMessageTemplateRepository) FindActive(ctx context.Context, channelConfigID int, triggerStatus string) (*domain.MessageTemplate, error) {
	query := `
		SELECT id, channelConfigId, triggerStatus, content, isActive, isDefault,
		       createdAt, updatedAt
		FROM MessageTemplates
		WHERE channelConfigId = ? AND triggerStatus = ? AND isActive = 1
		ORDER BY id ASC
		LIMIT 1
	`

	var tmpl domain.MessageTemplate
	err := r.db.QueryRowContext(ctx, query, channelConfigID, triggerStatus).Scan(
		&tmpl.ID, &tmpl.ChannelConfigID, &tmpl.TriggerStatus, &tmpl.Content,
		&tmpl.IsActive, &tmpl.IsDefault, &tmpl.CreatedAt, &tmpl.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("no active template for status %s", triggerStatus))
	}
	if err != nil {
		return nil, fmt.Errorf("querying message template: %w", err)
	}

	return &tmpl, nil
}

// SeedDefaults inserts the built-in template for every lifecycle status.
// Called once at channel setup so a tenant always has a full set.
func (r *MySQLMessageTemplateRepository) SeedDefaults(ctx context.Context, channelConfigID int) error {
	query := `
		INSERT INTO MessageTemplates (channelConfigId, triggerStatus, content, isActive, isDefault)
		VALUES (?, ?, ?, 1, 1)
	`

	statuses := []string{
		domain.OrderStatusReceived,
		domain.OrderStatusInProgress,
		domain.OrderStatusPaused,
		domain.OrderStatusFinished,
		domain.OrderStatusPaid,
	}

	for _, status := range statuses {
		if _, err := r.db.ExecContext(ctx, query, channelConfigID, status, notification.DefaultTemplate(status)); err != nil {
			return fmt.Errorf("seeding default template for %s: %w", status, err)
		}
	}
	return nil
}
