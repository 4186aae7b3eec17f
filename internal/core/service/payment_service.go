package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/keralahub/culturalhub/internal/core/domain"
	"github.com/keralahub/culturalhub/internal/core/ports"
)

// DedupChecker abstracts the webhook idempotency store (Redis). Providers
// redeliver events, so every event id is checked before processing.
type DedupChecker interface {
	IsDuplicate(ctx context.Context, eventID string) (bool, error)
	Mark(ctx context.Context, eventID string) error
}

// PaymentService owns checkout: intent creation, order/ticket rows and
// webhook-driven finalization.
type PaymentService struct {
	events   ports.EventRepository
	orders   ports.OrderRepository
	provider ports.PaymentProvider
	dedup    DedupChecker
	log      zerolog.Logger
}

func NewPaymentService(
	events ports.EventRepository,
	orders ports.OrderRepository,
	provider ports.PaymentProvider,
	dedup DedupChecker,
	log zerolog.Logger,
) *PaymentService {
	return &PaymentService{events: events, orders: orders, provider: provider, dedup: dedup, log: log}
}

// CreateIntent validates the requested purchase against the event row,
// reserves the tickets in one transaction and asks the payment provider for
// an intent. The client-supplied totals are checked against server-side
// arithmetic rather than trusted.
func (s *PaymentService) CreateIntent(ctx context.Context, in ports.CreateIntentInput) (*ports.CreateIntentResult, error) {
	if in.Quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive")
	}

	event, err := s.events.FindByID(ctx, in.EventID)
	if err != nil {
		return nil, err
	}
	if !event.Published {
		return nil, domain.ErrEventNotPublished
	}
	if event.AvailableTickets < in.Quantity {
		return nil, fmt.Errorf("%w: only %d tickets available", domain.ErrTicketsUnavailable, event.AvailableTickets)
	}
	if in.UnitPrice != event.UnitPrice || in.TotalAmount != event.UnitPrice*int64(in.Quantity) {
		return nil, domain.ErrAmountMismatch
	}

	now := time.Now().UTC()
	order := &domain.Order{
		ID:            uuid.NewString(),
		EventID:       event.ID,
		UserID:        in.UserID,
		Quantity:      in.Quantity,
		UnitPrice:     event.UnitPrice,
		TotalAmount:   event.UnitPrice * int64(in.Quantity),
		Currency:      event.Currency,
		CustomerName:  in.CustomerName,
		CustomerEmail: in.CustomerEmail,
		CustomerPhone: in.CustomerPhone,
		Status:        domain.OrderPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	tickets := make([]*domain.Ticket, 0, in.Quantity)
	for i := 0; i < in.Quantity; i++ {
		tickets = append(tickets, &domain.Ticket{
			ID:        uuid.NewString(),
			OrderID:   order.ID,
			EventID:   event.ID,
			Code:      generateTicketCode(),
			Status:    domain.TicketReserved,
			CreatedAt: now,
		})
	}

	// The repository re-checks availability under a row lock; a concurrent
	// purchase can still fail here even though the check above passed.
	if err := s.orders.CreateWithTickets(ctx, order, tickets); err != nil {
		return nil, err
	}

	intent, err := s.provider.CreateIntent(ctx, order.TotalAmount, order.Currency, map[string]string{
		"order_id": order.ID,
		"event_id": event.ID,
	})
	if err != nil {
		// Release the reservation so the seats go back on sale.
		if cancelErr := s.orders.Cancel(ctx, order.ID); cancelErr != nil {
			s.log.Error().Err(cancelErr).Str("order_id", order.ID).Msg("failed to cancel order after provider error")
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrPaymentProvider, err)
	}

	if err := s.orders.SetPaymentIntent(ctx, order.ID, intent.ID); err != nil {
		return nil, fmt.Errorf("record payment intent: %w", err)
	}

	s.log.Info().
		Str("order_id", order.ID).
		Str("event_id", event.ID).
		Int("quantity", in.Quantity).
		Int64("amount", order.TotalAmount).
		Msg("payment intent created")

	return &ports.CreateIntentResult{
		ClientSecret:    intent.ClientSecret,
		PaymentIntentID: intent.ID,
		OrderID:         order.ID,
		EventCategory:   event.Category,
	}, nil
}

// ProcessEvent applies one provider webhook event: duplicates are skipped,
// succeeded intents mark the order paid and activate its tickets, failed
// intents cancel the order and restore availability.
func (s *PaymentService) ProcessEvent(ctx context.Context, in ports.PaymentEventInput) error {
	isDup, err := s.dedup.IsDuplicate(ctx, in.EventID)
	if err != nil {
		s.log.Warn().Err(err).Str("provider_event", in.EventID).Msg("dedup check failed, processing anyway")
	} else if isDup {
		s.log.Debug().Str("provider_event", in.EventID).Msg("duplicate payment event skipped")
		return nil
	}

	order, err := s.orders.FindByPaymentIntent(ctx, in.PaymentIntentID)
	if err != nil {
		return fmt.Errorf("process payment event: %w", err)
	}

	var next domain.OrderStatus
	switch in.Type {
	case "payment_intent.succeeded":
		next = domain.OrderPaid
	case "payment_intent.payment_failed":
		next = domain.OrderCancelled
	default:
		s.log.Debug().Str("type", in.Type).Msg("ignoring unhandled payment event type")
		return nil
	}

	if !order.Status.CanTransitionTo(next) {
		// Terminal orders stay put; a late or repeated event is not an error.
		s.log.Debug().
			Str("order_id", order.ID).
			Str("status", string(order.Status)).
			Str("next", string(next)).
			Msg("order already finalized, skipping")
		return nil
	}

	switch next {
	case domain.OrderPaid:
		if err := s.orders.MarkPaid(ctx, order.ID); err != nil {
			return fmt.Errorf("mark order paid: %w", err)
		}
	case domain.OrderCancelled:
		if err := s.orders.Cancel(ctx, order.ID); err != nil {
			return fmt.Errorf("cancel order: %w", err)
		}
	}

	// Marked only after the transition is durable; a failed transition must
	// stay replayable on redelivery.
	if markErr := s.dedup.Mark(ctx, in.EventID); markErr != nil {
		s.log.Warn().Err(markErr).Str("provider_event", in.EventID).Msg("failed to set dedup key")
	}

	s.log.Info().
		Str("order_id", order.ID).
		Str("status", string(next)).
		Str("provider_event", in.EventID).
		Msg("payment event processed")

	return nil
}

func (s *PaymentService) ListOrders(ctx context.Context, userID string) ([]*domain.Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

func (s *PaymentService) ListTickets(ctx context.Context, userID string) ([]*domain.Ticket, error) {
	return s.orders.ListTicketsByUser(ctx, userID)
}

// generateTicketCode returns a unique ticket code in the format KCH-XXXXXXXX.
func generateTicketCode() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		// fallback: use current nanoseconds
		return fmt.Sprintf("KCH-%08X", time.Now().UnixNano()&0xFFFFFFFF)
	}
	return fmt.Sprintf("KCH-%08X", b)
}
