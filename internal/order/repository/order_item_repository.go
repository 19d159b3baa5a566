package repository

import (
	"context"
	"database/sql"
	"fmt"

	"servicedesk/internal/domain"
)

type MySQLOrderItemRepository struct {
	db *sql.DB
}

func NewMySQLOrderItemRepository(db *sql.DB) *MySQLOrderItemRepository {
	return &MySQLOrderItemRepository{db: db}
}

func (r *MySQLOrderItemRepository) ListByOrderID(ctx context.Context, orderID uint) ([]domain.OrderItem, error) {
	query := `
		SELECT id, orderId, serviceName, description, price, quantity
		FROM OrderItems
		WHERE orderId = ?
		ORDER BY id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("querying order items: %w", err)
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(
			&item.ID, &item.OrderID, &item.ServiceName,
			&item.Description, &item.Price, &item.Quantity,
		); err != nil {
			return nil, fmt.Errorf("scanning order item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating order items: %w", err)
	}

	return items, nil
}

func (r *MySQLOrderItemRepository) Insert(ctx context.Context, tx *sql.Tx, item domain.OrderItem) (uint, error) {
	query := `
		INSERT INTO OrderItems (orderId, serviceName, description, price, quantity)
		VALUES (?, ?, ?, ?, ?)
	`

	result, err := tx.ExecContext(ctx, query,
		item.OrderID, item.ServiceName, item.Description, item.Price, item.Quantity,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting order item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting inserted order item id: %w", err)
	}
	return uint(id), nil
}
