package handler

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/keralahub/culturalhub/internal/core/domain"
	"github.com/keralahub/culturalhub/internal/core/ports"
)

type stubPaymentService struct {
	createFn func(ctx context.Context, in ports.CreateIntentInput) (*ports.CreateIntentResult, error)
}

func (s *stubPaymentService) CreateIntent(ctx context.Context, in ports.CreateIntentInput) (*ports.CreateIntentResult, error) {
	return s.createFn(ctx, in)
}

func (s *stubPaymentService) ProcessEvent(ctx context.Context, in ports.PaymentEventInput) error {
	return nil
}

func (s *stubPaymentService) ListOrders(ctx context.Context, userID string) ([]*domain.Order, error) {
	return nil, nil
}

func (s *stubPaymentService) ListTickets(ctx context.Context, userID string) ([]*domain.Ticket, error) {
	return nil, nil
}

type hmacVerifier struct {
	secret string
}

func (v hmacVerifier) VerifySignature(body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(v.secret))
	mac.Write(body)
	return hmac.Equal([]byte(hex.EncodeToString(mac.Sum(nil))), []byte(signature))
}

type recordingQueue struct {
	events []ports.PaymentEventInput
}

func (q *recordingQueue) Enqueue(event ports.PaymentEventInput) {
	q.events = append(q.events, event)
}

func newPaymentContext(t *testing.T, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

const validIntentBody = `{
	"event_id": "evt-1",
	"quantity": 2,
	"unit_price": 50000,
	"total_amount": 100000,
	"customer_name": "Anand",
	"customer_email": "anand@example.com"
}`

func TestPaymentHandler_CreateIntent_Success(t *testing.T) {
	svc := &stubPaymentService{
		createFn: func(ctx context.Context, in ports.CreateIntentInput) (*ports.CreateIntentResult, error) {
			if in.Quantity != 2 || in.TotalAmount != 100000 {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &ports.CreateIntentResult{ClientSecret: "cs_1", PaymentIntentID: "pi_1", OrderID: "ord-1"}, nil
		},
	}
	h := NewPaymentHandler(svc, hmacVerifier{secret: "whsec"}, &recordingQueue{})

	c, rec := newPaymentContext(t, http.MethodPost, "/v1/payments/intent", validIntentBody)
	if err := h.CreateIntent(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]string
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["client_secret"] != "cs_1" || resp["order_id"] != "ord-1" {
		t.Fatalf("unexpected response: %v", resp)
	}
}

// Every failure on the intent path must surface as HTTP 400 with the message
// in the error envelope, whatever the underlying cause.
func TestPaymentHandler_CreateIntent_AllFailuresAre400(t *testing.T) {
	causes := []error{
		fmt.Errorf("%w: only 2 tickets available", domain.ErrTicketsUnavailable),
		domain.ErrAmountMismatch,
		domain.ErrEventNotFound,
		domain.ErrEventNotPublished,
		fmt.Errorf("%w: processor 502", domain.ErrPaymentProvider),
	}

	for _, cause := range causes {
		svc := &stubPaymentService{
			createFn: func(ctx context.Context, in ports.CreateIntentInput) (*ports.CreateIntentResult, error) {
				return nil, cause
			},
		}
		h := NewPaymentHandler(svc, hmacVerifier{secret: "whsec"}, &recordingQueue{})

		c, rec := newPaymentContext(t, http.MethodPost, "/v1/payments/intent", validIntentBody)
		if err := h.CreateIntent(c); err != nil {
			t.Fatalf("%v: handler error: %v", cause, err)
		}
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%v: expected 400, got %d", cause, rec.Code)
		}

		var resp map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("invalid json: %v", err)
		}
		if resp["error"] == "" {
			t.Fatalf("%v: error message missing from envelope", cause)
		}
	}
}

func TestPaymentHandler_CreateIntent_ValidationFailures400(t *testing.T) {
	svc := &stubPaymentService{
		createFn: func(ctx context.Context, in ports.CreateIntentInput) (*ports.CreateIntentResult, error) {
			t.Fatalf("service must not be called on invalid input")
			return nil, nil
		},
	}
	h := NewPaymentHandler(svc, hmacVerifier{secret: "whsec"}, &recordingQueue{})

	bodies := []string{
		`not json`,
		`{"event_id":"evt-1","quantity":0,"unit_price":1,"total_amount":1,"customer_name":"A","customer_email":"a@b.c"}`,
		`{"event_id":"evt-1","quantity":1,"unit_price":1,"total_amount":1,"customer_name":"A","customer_email":"nonsense"}`,
	}
	for _, body := range bodies {
		c, rec := newPaymentContext(t, http.MethodPost, "/v1/payments/intent", body)
		if err := h.CreateIntent(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for %q, got %d", body, rec.Code)
		}
	}
}

func webhookBody(id, typ, intentID string) string {
	return fmt.Sprintf(`{"id":%q,"type":%q,"data":{"object":{"id":%q}}}`, id, typ, intentID)
}

func signBody(secret, body string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(body))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestPaymentHandler_Webhook_ValidEventEnqueued(t *testing.T) {
	queue := &recordingQueue{}
	h := NewPaymentHandler(&stubPaymentService{}, hmacVerifier{secret: "whsec"}, queue)

	body := webhookBody("we_1", "payment_intent.succeeded", "pi_1")
	c, rec := newPaymentContext(t, http.MethodPost, "/v1/payments/webhook", body)
	c.Request().Header.Set(webhookSignatureHeader, signBody("whsec", body))

	if err := h.Webhook(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	if len(queue.events) != 1 {
		t.Fatalf("expected one enqueued event, got %d", len(queue.events))
	}
	evt := queue.events[0]
	if evt.EventID != "we_1" || evt.PaymentIntentID != "pi_1" || evt.Type != "payment_intent.succeeded" {
		t.Fatalf("unexpected event: %+v", evt)
	}
}

func TestPaymentHandler_Webhook_BadSignatureRejected(t *testing.T) {
	queue := &recordingQueue{}
	h := NewPaymentHandler(&stubPaymentService{}, hmacVerifier{secret: "whsec"}, queue)

	body := webhookBody("we_1", "payment_intent.succeeded", "pi_1")
	c, _ := newPaymentContext(t, http.MethodPost, "/v1/payments/webhook", body)
	c.Request().Header.Set(webhookSignatureHeader, "deadbeef")

	err := h.Webhook(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad signature, got %v", err)
	}
	if len(queue.events) != 0 {
		t.Fatalf("unverified events must never be enqueued")
	}
}

func TestPaymentHandler_Webhook_MissingIDsRejected(t *testing.T) {
	queue := &recordingQueue{}
	h := NewPaymentHandler(&stubPaymentService{}, hmacVerifier{secret: "whsec"}, queue)

	body := `{"type":"payment_intent.succeeded","data":{"object":{}}}`
	c, _ := newPaymentContext(t, http.MethodPost, "/v1/payments/webhook", body)
	c.Request().Header.Set(webhookSignatureHeader, signBody("whsec", body))

	err := h.Webhook(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing ids, got %v", err)
	}
	if len(queue.events) != 0 {
		t.Fatalf("malformed events must not be enqueued")
	}
}
