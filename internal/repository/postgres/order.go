package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"dispatch/internal/domain"
	"dispatch/internal/repository"
)

// OrderRepository is a PostgreSQL implementation of repository.OrderRepository.
type OrderRepository struct {
	q Querier
}

// NewOrderRepository creates a new PostgreSQL order repository.
func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{q: db}
}

// NewOrderRepositoryWithTx creates an order repository using a transaction.
func NewOrderRepositoryWithTx(tx *sql.Tx) *OrderRepository {
	return &OrderRepository{q: tx}
}

const orderColumns = `id, customer_name, customer_phone, street, city, zip, note, is_paid, items_count, created_at`

// GetByID retrieves an order by ID.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := scanOrder(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return order, nil
}

// GetByIDs retrieves orders for an explicit id set.
func (r *OrderRepository) GetByIDs(ctx context.Context, ids []string) ([]*domain.Order, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = ANY($1)`

	rows, err := r.q.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

// UpdateAddress updates an order's delivery address fields.
func (r *OrderRepository) UpdateAddress(ctx context.Context, id, street, city, zip string) error {
	query := `UPDATE orders SET street = $1, city = $2, zip = $3 WHERE id = $4`

	result, err := r.q.ExecContext(ctx, query, street, city, zip, id)
	if err != nil {
		return err
	}

	return requireRowsAffected(result)
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var order domain.Order
	var note sql.NullString

	if err := row.Scan(
		&order.ID,
		&order.CustomerName,
		&order.CustomerPhone,
		&order.Street,
		&order.City,
		&order.Zip,
		&note,
		&order.IsPaid,
		&order.ItemsCount,
		&order.CreatedAt,
	); err != nil {
		return nil, err
	}

	if note.Valid {
		order.Note = note.String
	}

	return &order, nil
}
