package repository

import (
	"context"
	"database/sql"
	"fmt"

	"servicedesk/internal/domain"
	apperrors "servicedesk/internal/errors"
)

type MySQLClientRepository struct {
	db *sql.DB
}

func NewMySQLClientRepository(db *sql.DB) *MySQLClientRepository {
	return &MySQLClientRepository{db: db}
}

func (r *MySQLClientRepository) FindByID(ctx context.Context, id int) (*domain.Client, error) {
	query := `
		SELECT id, storeId, name, phone, email, createdAt, updatedAt
		FROM Clients
		WHERE id = ?
	`

	var client domain.Client
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&client.ID, &client.StoreID, &client.Name, &client.Phone,
		&client.Email, &client.CreatedAt, &client.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("client with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying client by id: %w", err)
	}

	return &client, nil
}
