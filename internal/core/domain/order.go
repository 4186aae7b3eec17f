package domain

import "time"

// OrderStatus is the lifecycle state of a ticket order.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderPaid      OrderStatus = "paid"
	OrderCancelled OrderStatus = "cancelled"
)

// validOrderTransitions defines the allowed state machine transitions.
var validOrderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending: {OrderPaid, OrderCancelled},
}

// CanTransitionTo reports whether a transition from the current status is valid.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range validOrderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// TicketStatus is the lifecycle state of a single ticket.
type TicketStatus string

const (
	TicketReserved  TicketStatus = "reserved"
	TicketActive    TicketStatus = "active"
	TicketCancelled TicketStatus = "cancelled"
)

// Order groups the tickets purchased in one payment.
type Order struct {
	ID              string      `json:"id"`
	EventID         string      `json:"event_id"`
	UserID          string      `json:"user_id,omitempty"` // empty for guest checkout
	Quantity        int         `json:"quantity"`
	UnitPrice       int64       `json:"unit_price"`
	TotalAmount     int64       `json:"total_amount"`
	Currency        string      `json:"currency"`
	CustomerName    string      `json:"customer_name"`
	CustomerEmail   string      `json:"customer_email"`
	CustomerPhone   string      `json:"customer_phone,omitempty"`
	PaymentIntentID string      `json:"payment_intent_id,omitempty"`
	Status          OrderStatus `json:"status"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// Ticket is a single admission, always owned by an order.
type Ticket struct {
	ID        string       `json:"id"`
	OrderID   string       `json:"order_id"`
	EventID   string       `json:"event_id"`
	Code      string       `json:"code"` // printed on the ticket, KCH-XXXXXXXX
	Status    TicketStatus `json:"status"`
	CreatedAt time.Time    `json:"created_at"`
}
