package repository

import (
	"context"
	"database/sql"
	"fmt"

	"servicedesk/internal/domain"
	apperrors "servicedesk/internal/errors"
)

type MySQLOrderRepository struct {
	db *sql.DB
}

func NewMySQLOrderRepository(db *sql.DB) *MySQLOrderRepository {
	return &MySQLOrderRepository{db: db}
}

func (r *MySQLOrderRepository) FindByID(ctx context.Context, id uint) (*domain.Order, error) {
	query := `
		SELECT id, storeId, clientId, createdById, orderNumber, status, totalAmount,
		       pausedReason, whatsappSent, emailSent, createdAt, finishedAt, paidAt, updatedAt
		FROM Orders
		WHERE id = ?
	`

	var order domain.Order
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&order.ID, &order.StoreID, &order.ClientID, &order.CreatedByID,
		&order.OrderNumber, &order.Status, &order.TotalAmount, &order.PausedReason,
		&order.WhatsappSent, &order.EmailSent, &order.CreatedAt,
		&order.FinishedAt, &order.PaidAt, &order.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("order with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying order by id: %w", err)
	}

	return &order, nil
}

// UpdateTransition persists the fields a transition derives. Rows affected is
// not inspected: re-entering the current status is a legitimate write that
// MySQL may report as zero changed rows.
func (r *MySQLOrderRepository) UpdateTransition(ctx context.Context, order *domain.Order) error {
	query := `
		UPDATE Orders
		SET status = ?, pausedReason = ?, finishedAt = ?, paidAt = ?
		WHERE id = ?
	`

	_, err := r.db.ExecContext(ctx, query,
		order.Status, order.PausedReason, order.FinishedAt, order.PaidAt, order.ID,
	)
	if err != nil {
		return fmt.Errorf("updating order transition: %w", err)
	}
	return nil
}

// MarkWhatsappSent flips the flag atomically: the write only takes effect
// when the flag was still false, so at most one concurrent caller wins.
func (r *MySQLOrderRepository) MarkWhatsappSent(ctx context.Context, id uint) (bool, error) {
	query := `UPDATE Orders SET whatsappSent = 1 WHERE id = ? AND whatsappSent = 0`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("marking whatsapp sent: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("getting rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// MarkEmailSent is the email counterpart of MarkWhatsappSent.
func (r *MySQLOrderRepository) MarkEmailSent(ctx context.Context, id uint) (bool, error) {
	query := `UPDATE Orders SET emailSent = 1 WHERE id = ? AND emailSent = 0`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("marking email sent: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("getting rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// Insert creates an order inside the caller's transaction.
func (r *MySQLOrderRepository) Insert(ctx context.Context, tx *sql.Tx, order domain.Order) (uint, error) {
	query := `
		INSERT INTO Orders (storeId, clientId, createdById, orderNumber, status, totalAmount)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := tx.ExecContext(ctx, query,
		order.StoreID, order.ClientID, order.CreatedByID,
		order.OrderNumber, order.Status, order.TotalAmount,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting order: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting inserted order id: %w", err)
	}
	return uint(id), nil
}

// CountByStore returns how many orders a store holds, inside the caller's
// transaction. Feeds the per-store order-number sequence.
func (r *MySQLOrderRepository) CountByStore(ctx context.Context, tx *sql.Tx, storeID int) (int, error) {
	var count int
	err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM Orders WHERE storeId = ? FOR UPDATE`, storeID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting store orders: %w", err)
	}
	return count, nil
}
