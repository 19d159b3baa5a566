package repository

import (
	"context"
	"database/sql"
	"fmt"

	"servicedesk/internal/domain"
	apperrors "servicedesk/internal/errors"
)

type MySQLStoreRepository struct {
	db *sql.DB
}

func NewMySQLStoreRepository(db *sql.DB) *MySQLStoreRepository {
	return &MySQLStoreRepository{db: db}
}

func (r *MySQLStoreRepository) FindByID(ctx context.Context, id int) (*domain.Store, error) {
	query := `
		SELECT s.id, s.companyId, s.name, c.name
		FROM Stores s
		JOIN Companies c ON c.id = s.companyId
		WHERE s.id = ?
	`

	var store domain.Store
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&store.ID, &store.CompanyID, &store.Name, &store.CompanyName,
	)

	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("store with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying store by id: %w", err)
	}

	return &store, nil
}
