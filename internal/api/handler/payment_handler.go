package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/keralahub/culturalhub/internal/api/metrics"
	"github.com/keralahub/culturalhub/internal/core/ports"
	"github.com/keralahub/culturalhub/internal/infrastructure/payments"
)

const webhookSignatureHeader = "X-Webhook-Signature"

// WebhookVerifier validates a raw webhook body against its signature header.
type WebhookVerifier interface {
	VerifySignature(body []byte, signature string) bool
}

// EventQueue hands a verified webhook event to the asynchronous finalizer.
type EventQueue interface {
	Enqueue(event ports.PaymentEventInput)
}

// PaymentHandler fronts the checkout intent endpoint and the provider
// webhook.
type PaymentHandler struct {
	service  ports.PaymentService
	verifier WebhookVerifier
	queue    EventQueue
}

func NewPaymentHandler(service ports.PaymentService, verifier WebhookVerifier, queue EventQueue) *PaymentHandler {
	return &PaymentHandler{service: service, verifier: verifier, queue: queue}
}

type createIntentRequest struct {
	EventID       string `json:"event_id" validate:"required"`
	Quantity      int    `json:"quantity" validate:"gt=0"`
	UnitPrice     int64  `json:"unit_price" validate:"gt=0"`
	TotalAmount   int64  `json:"total_amount" validate:"gt=0"`
	CustomerName  string `json:"customer_name" validate:"required"`
	CustomerEmail string `json:"customer_email" validate:"required,email"`
	CustomerPhone string `json:"customer_phone"`
}

type createIntentResponse struct {
	ClientSecret    string `json:"client_secret"`
	PaymentIntentID string `json:"payment_intent_id"`
	OrderID         string `json:"order_id"`
}

// CreateIntent reserves tickets and opens a payment intent with the
// processor. Every failure on this path is reported as HTTP 400 with the
// error message in the envelope so the checkout page can surface it
// directly.
//
// @Summary      Create a payment intent
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        body  body      createIntentRequest  true  "Checkout details"
// @Success      200   {object}  createIntentResponse
// @Failure      400   {object}  map[string]string
// @Router       /v1/payments/intent [post]
func (h *PaymentHandler) CreateIntent(c echo.Context) error {
	var req createIntentRequest
	if err := c.Bind(&req); err != nil {
		metrics.PaymentIntentsTotal.WithLabelValues("invalid").Inc()
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		metrics.PaymentIntentsTotal.WithLabelValues("invalid").Inc()
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	result, err := h.service.CreateIntent(c.Request().Context(), ports.CreateIntentInput{
		EventID:       req.EventID,
		Quantity:      req.Quantity,
		UnitPrice:     req.UnitPrice,
		TotalAmount:   req.TotalAmount,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		UserID:        userIDFrom(c),
	})
	if err != nil {
		metrics.PaymentIntentsTotal.WithLabelValues("failure").Inc()
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	metrics.PaymentIntentsTotal.WithLabelValues("success").Inc()
	metrics.OrdersCreatedTotal.WithLabelValues(result.EventCategory).Inc()

	return c.JSON(http.StatusOK, createIntentResponse{
		ClientSecret:    result.ClientSecret,
		PaymentIntentID: result.PaymentIntentID,
		OrderID:         result.OrderID,
	})
}

// Webhook accepts provider payment events. The body is verified against the
// signature header, parsed and enqueued; finalization happens on the worker
// pool, so the provider gets its 202 without waiting on the database.
//
// @Summary      Payment provider webhook
// @Tags         payments
// @Accept       json
// @Param        X-Webhook-Signature  header  string  true  "HMAC-SHA256 of the body"
// @Success      202
// @Failure      400  {object}  map[string]string
// @Router       /v1/payments/webhook [post]
func (h *PaymentHandler) Webhook(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "cannot read body")
	}

	if !h.verifier.VerifySignature(body, c.Request().Header.Get(webhookSignatureHeader)) {
		metrics.PaymentEventsErrorsTotal.WithLabelValues("bad_signature").Inc()
		return echo.NewHTTPError(http.StatusBadRequest, "invalid signature")
	}

	var evt payments.WebhookEvent
	if err := json.Unmarshal(body, &evt); err != nil {
		metrics.PaymentEventsErrorsTotal.WithLabelValues("bad_payload").Inc()
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if evt.ID == "" || evt.Data.Object.ID == "" {
		metrics.PaymentEventsErrorsTotal.WithLabelValues("bad_payload").Inc()
		return echo.NewHTTPError(http.StatusBadRequest, "missing event or intent id")
	}

	h.queue.Enqueue(ports.PaymentEventInput{
		EventID:         evt.ID,
		Type:            evt.Type,
		PaymentIntentID: evt.Data.Object.ID,
		ReceivedAt:      time.Now().UTC(),
	})

	return c.NoContent(http.StatusAccepted)
}

// ListOrders returns the caller's orders.
//
// @Summary      List my orders
// @Tags         payments
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  domain.Order
// @Router       /v1/me/orders [get]
func (h *PaymentHandler) ListOrders(c echo.Context) error {
	orders, err := h.service.ListOrders(c.Request().Context(), userIDFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, orders)
}

// ListTickets returns the caller's tickets.
//
// @Summary      List my tickets
// @Tags         payments
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  domain.Ticket
// @Router       /v1/me/tickets [get]
func (h *PaymentHandler) ListTickets(c echo.Context) error {
	tickets, err := h.service.ListTickets(c.Request().Context(), userIDFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tickets)
}
