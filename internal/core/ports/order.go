package ports

import (
	"context"
	"time"

	"github.com/keralahub/culturalhub/internal/core/domain"
)

// OrderRepository persists orders and their tickets.
type OrderRepository interface {
	// CreateWithTickets inserts the order plus its ticket rows and decrements
	// the event's availability in a single transaction. Returns
	// domain.ErrTicketsUnavailable when fewer than order.Quantity tickets
	// remain, domain.ErrEventNotFound when the event row is missing.
	CreateWithTickets(ctx context.Context, order *domain.Order, tickets []*domain.Ticket) error
	// FindByID returns domain.ErrOrderNotFound when no row exists.
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	FindByPaymentIntent(ctx context.Context, paymentIntentID string) (*domain.Order, error)
	// MarkPaid transitions the order to paid and activates its tickets.
	MarkPaid(ctx context.Context, orderID string) error
	// Cancel transitions the order to cancelled, cancels its tickets and
	// restores the event's availability.
	Cancel(ctx context.Context, orderID string) error
	ListByUser(ctx context.Context, userID string) ([]*domain.Order, error)
	ListTicketsByUser(ctx context.Context, userID string) ([]*domain.Ticket, error)
	SetPaymentIntent(ctx context.Context, orderID, paymentIntentID string) error
}

// PaymentIntent is the provider's handle for a pending payment.
type PaymentIntent struct {
	ID           string
	ClientSecret string
}

// PaymentProvider creates payment intents with an external processor.
type PaymentProvider interface {
	CreateIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (*PaymentIntent, error)
}

// CreateIntentInput is the payment-intent endpoint's request DTO. The
// client-computed totals are revalidated against server-side arithmetic.
type CreateIntentInput struct {
	EventID       string
	Quantity      int
	UnitPrice     int64
	TotalAmount   int64
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	UserID        string // empty for guest checkout
}

// CreateIntentResult is returned to the browser to complete payment.
// EventCategory labels the orders-created metric; it is not serialized.
type CreateIntentResult struct {
	ClientSecret    string
	PaymentIntentID string
	OrderID         string
	EventCategory   string
}

// PaymentEventInput is a provider webhook event handed to the finalizer.
type PaymentEventInput struct {
	EventID         string // provider's event id, used for dedup
	Type            string // "payment_intent.succeeded" | "payment_intent.payment_failed"
	PaymentIntentID string
	ReceivedAt      time.Time
}

// PaymentService owns the checkout and payment-finalization flow.
type PaymentService interface {
	CreateIntent(ctx context.Context, in CreateIntentInput) (*CreateIntentResult, error)
	// ProcessEvent applies one provider webhook event: marks the order paid
	// or cancelled. Duplicate events are skipped.
	ProcessEvent(ctx context.Context, in PaymentEventInput) error
	ListOrders(ctx context.Context, userID string) ([]*domain.Order, error)
	ListTickets(ctx context.Context, userID string) ([]*domain.Ticket, error)
}
