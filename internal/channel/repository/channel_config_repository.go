package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"servicedesk/internal/domain"
	apperrors "servicedesk/internal/errors"
)

type MySQLChannelConfigRepository struct {
	db *sql.DB
}

func NewMySQLChannelConfigRepository(db *sql.DB) *MySQLChannelConfigRepository {
	return &MySQLChannelConfigRepository{db: db}
}

func (r *MySQLChannelConfigRepository) FindByCompanyID(ctx context.Context, companyID int) (*domain.ChannelConfig, error) {
	query := `
		SELECT id, companyId, instanceName, apiKey, apiUrl, isConnected, phoneNumber,
		       createdAt, updatedAt
		FROM ChannelConfigs
		WHERE companyId = ?
	`

	var cfg domain.ChannelConfig
	err := r.db.QueryRowContext(ctx, query, companyID).Scan(
		&cfg.ID, &cfg.CompanyID, &cfg.InstanceName, &cfg.APIKey, &cfg.APIURL,
		&cfg.IsConnected, &cfg.PhoneNumber, &cfg.CreatedAt, &cfg.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("channel config for company %d not found", companyID))
	}
	if err != nil {
		return nil, fmt.Errorf("querying channel config: %w", err)
	}

	return &cfg, nil
}

// Insert creates the company's channel identity. The companyId unique index
// enforces one config per company; a duplicate surfaces as a conflict.
func (r *MySQLChannelConfigRepository) Insert(ctx context.Context, cfg domain.ChannelConfig) (int, error) {
	query := `
		INSERT INTO ChannelConfigs (companyId, instanceName, apiKey, apiUrl, isConnected)
		VALUES (?, ?, ?, ?, 0)
	`

	result, err := r.db.ExecContext(ctx, query, cfg.CompanyID, cfg.InstanceName, cfg.APIKey, cfg.APIURL)
	if err != nil {
		if isDuplicateKeyError(err) {
			return 0, apperrors.NewConflictError(fmt.Sprintf("company %d already has a channel config", cfg.CompanyID))
		}
		return 0, fmt.Errorf("inserting channel config: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting inserted channel config id: %w", err)
	}
	return int(id), nil
}

func (r *MySQLChannelConfigRepository) UpdateConnection(ctx context.Context, id int, isConnected bool, phoneNumber *string) error {
	query := `UPDATE ChannelConfigs SET isConnected = ?, phoneNumber = ? WHERE id = ?`

	if _, err := r.db.ExecContext(ctx, query, isConnected, phoneNumber, id); err != nil {
		return fmt.Errorf("updating channel connection state: %w", err)
	}
	return nil
}

func isDuplicateKeyError(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	return false
}
