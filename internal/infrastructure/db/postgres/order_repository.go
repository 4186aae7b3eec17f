package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/keralahub/culturalhub/internal/core/domain"
)

const orderColumns = `id, event_id, user_id, quantity, unit_price, total_amount, currency,
	customer_name, customer_email, customer_phone, payment_intent_id, status, created_at, updated_at`

// OrderRepository implements ports.OrderRepository against orders and tickets.
type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// CreateWithTickets reserves tickets atomically: the event row is locked,
// availability re-checked, decremented, and the order plus ticket rows
// inserted — all in one transaction.
func (r *OrderRepository) CreateWithTickets(ctx context.Context, order *domain.Order, tickets []*domain.Ticket) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var available int
	err = tx.QueryRowContext(ctx,
		`SELECT available_tickets FROM events WHERE id = $1 FOR UPDATE`, order.EventID,
	).Scan(&available)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrEventNotFound
		}
		return fmt.Errorf("lock event: %w", err)
	}
	if available < order.Quantity {
		return fmt.Errorf("%w: only %d tickets available", domain.ErrTicketsUnavailable, available)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE events SET available_tickets = available_tickets - $2, updated_at = $3 WHERE id = $1`,
		order.EventID, order.Quantity, time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("decrement availability: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO orders (`+orderColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		order.ID, order.EventID, order.UserID, order.Quantity, order.UnitPrice, order.TotalAmount, order.Currency,
		order.CustomerName, order.CustomerEmail, order.CustomerPhone, order.PaymentIntentID, string(order.Status),
		order.CreatedAt, order.UpdatedAt,
	); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for _, t := range tickets {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO tickets (id, order_id, event_id, code, status, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			t.ID, t.OrderID, t.EventID, t.Code, string(t.Status), t.CreatedAt,
		); err != nil {
			return fmt.Errorf("insert ticket: %w", err)
		}
	}

	return tx.Commit()
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	return r.findBy(ctx, "id", id)
}

func (r *OrderRepository) FindByPaymentIntent(ctx context.Context, paymentIntentID string) (*domain.Order, error) {
	return r.findBy(ctx, "payment_intent_id", paymentIntentID)
}

func (r *OrderRepository) findBy(ctx context.Context, column, value string) (*domain.Order, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE `+column+` = $1`, value)

	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("find order: %w", err)
	}
	return o, nil
}

// MarkPaid transitions the order to paid and activates its tickets.
func (r *OrderRepository) MarkPaid(ctx context.Context, orderID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`UPDATE orders SET status = $2, updated_at = $3 WHERE id = $1 AND status = $4`,
		orderID, string(domain.OrderPaid), time.Now().UTC(), string(domain.OrderPending),
	)
	if err != nil {
		return fmt.Errorf("mark paid: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrOrderNotFound
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE tickets SET status = $2 WHERE order_id = $1`,
		orderID, string(domain.TicketActive),
	); err != nil {
		return fmt.Errorf("activate tickets: %w", err)
	}

	return tx.Commit()
}

// Cancel transitions the order to cancelled, cancels its tickets and
// restores the event's availability.
func (r *OrderRepository) Cancel(ctx context.Context, orderID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var (
		eventID  string
		quantity int
	)
	err = tx.QueryRowContext(ctx,
		`UPDATE orders SET status = $2, updated_at = $3 WHERE id = $1 AND status = $4
		 RETURNING event_id, quantity`,
		orderID, string(domain.OrderCancelled), time.Now().UTC(), string(domain.OrderPending),
	).Scan(&eventID, &quantity)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrOrderNotFound
		}
		return fmt.Errorf("cancel order: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE tickets SET status = $2 WHERE order_id = $1`,
		orderID, string(domain.TicketCancelled),
	); err != nil {
		return fmt.Errorf("cancel tickets: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE events SET available_tickets = available_tickets + $2, updated_at = $3 WHERE id = $1`,
		eventID, quantity, time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("restore availability: %w", err)
	}

	return tx.Commit()
}

func (r *OrderRepository) SetPaymentIntent(ctx context.Context, orderID, paymentIntentID string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE orders SET payment_intent_id = $2, updated_at = $3 WHERE id = $1`,
		orderID, paymentIntentID, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("set payment intent: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Order, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var items []*domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		items = append(items, o)
	}
	return items, rows.Err()
}

func (r *OrderRepository) ListTicketsByUser(ctx context.Context, userID string) ([]*domain.Ticket, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT t.id, t.order_id, t.event_id, t.code, t.status, t.created_at
		 FROM tickets t JOIN orders o ON o.id = t.order_id
		 WHERE o.user_id = $1 ORDER BY t.created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	defer rows.Close()

	var items []*domain.Ticket
	for rows.Next() {
		var (
			t      domain.Ticket
			status string
		)
		if err := rows.Scan(&t.ID, &t.OrderID, &t.EventID, &t.Code, &status, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ticket: %w", err)
		}
		t.Status = domain.TicketStatus(status)
		items = append(items, &t)
	}
	return items, rows.Err()
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var (
		o      domain.Order
		status string
	)
	err := row.Scan(
		&o.ID, &o.EventID, &o.UserID, &o.Quantity, &o.UnitPrice, &o.TotalAmount, &o.Currency,
		&o.CustomerName, &o.CustomerEmail, &o.CustomerPhone, &o.PaymentIntentID, &status,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	o.Status = domain.OrderStatus(status)
	return &o, nil
}
