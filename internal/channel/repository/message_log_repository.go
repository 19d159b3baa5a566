package repository

import (
	"context"
	"database/sql"
	"fmt"

	"servicedesk/internal/domain"
)

type MySQLMessageLogRepository struct {
	db *sql.DB
}

func NewMySQLMessageLogRepository(db *sql.DB) *MySQLMessageLogRepository {
	return &MySQLMessageLogRepository{db: db}
}

// Insert appends one attempt. Rows are never updated or deleted.
func (r *MySQLMessageLogRepository) Insert(ctx context.Context, log domain.MessageLog) error {
	query := `
		INSERT INTO MessageLogs (id, channelConfigId, destination, message, status, errorText, orderNumber, createdAt)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		log.ID, log.ChannelConfigID, log.Destination, log.Message,
		log.Status, log.ErrorText, log.OrderNumber, log.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting message log: %w", err)
	}
	return nil
}

// ListByChannelConfig returns the most recent attempts for a tenant, newest
// first.
func (r *MySQLMessageLogRepository) ListByChannelConfig(ctx context.Context, channelConfigID, limit int) ([]domain.MessageLog, error) {
	query := `
		SELECT id, channelConfigId, destination, message, status, errorText, orderNumber, createdAt
		FROM MessageLogs
		WHERE channelConfigId = ?
		ORDER BY createdAt DESC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, channelConfigID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying message logs: %w", err)
	}
	defer rows.Close()

	var logs []domain.MessageLog
	for rows.Next() {
		var log domain.MessageLog
		if err := rows.Scan(
			&log.ID, &log.ChannelConfigID, &log.Destination, &log.Message,
			&log.Status, &log.ErrorText, &log.OrderNumber, &log.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning message log: %w", err)
		}
		logs = append(logs, log)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating message logs: %w", err)
	}

	return logs, nil
}
