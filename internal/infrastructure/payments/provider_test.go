package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestProvider_CreateIntent_SendsFormAndParsesResponse(t *testing.T) {
	var gotAuth, gotAmount, gotCurrency, gotOrderID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/payment_intents" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		user, _, _ := r.BasicAuth()
		gotAuth = user
		_ = r.ParseForm()
		gotAmount = r.PostForm.Get("amount")
		gotCurrency = r.PostForm.Get("currency")
		gotOrderID = r.PostForm.Get("metadata[order_id]")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"pi_1","client_secret":"pi_1_secret"}`))
	}))
	defer srv.Close()

	p := NewProvider(Config{BaseURL: srv.URL, SecretKey: "sk_test"})
	intent, err := p.CreateIntent(context.Background(), 100000, "inr", map[string]string{"order_id": "ord-1"})
	if err != nil {
		t.Fatalf("create intent: %v", err)
	}
	if intent.ID != "pi_1" || intent.ClientSecret != "pi_1_secret" {
		t.Fatalf("unexpected intent: %+v", intent)
	}
	if gotAuth != "sk_test" {
		t.Fatalf("expected basic auth with the secret key, got %q", gotAuth)
	}
	if gotAmount != "100000" || gotCurrency != "inr" || gotOrderID != "ord-1" {
		t.Fatalf("unexpected form: amount=%s currency=%s order=%s", gotAmount, gotCurrency, gotOrderID)
	}
}

func TestProvider_CreateIntent_RetriesServerErrors(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"id":"pi_2","client_secret":"pi_2_secret"}`))
	}))
	defer srv.Close()

	p := NewProvider(Config{BaseURL: srv.URL, SecretKey: "sk_test"})
	intent, err := p.CreateIntent(context.Background(), 50000, "inr", nil)
	if err != nil {
		t.Fatalf("create intent: %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
	if intent.ID != "pi_2" {
		t.Fatalf("unexpected intent: %+v", intent)
	}
}

func TestProvider_CreateIntent_ClientErrorIsTerminal(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = w.Write([]byte(`{"error":{"message":"card declined"}}`))
	}))
	defer srv.Close()

	p := NewProvider(Config{BaseURL: srv.URL, SecretKey: "sk_test"})
	_, err := p.CreateIntent(context.Background(), 50000, "inr", nil)
	if err == nil || !strings.Contains(err.Error(), "card declined") {
		t.Fatalf("expected provider rejection, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("4xx must not be retried, got %d attempts", attempts)
	}
}

func TestProvider_VerifySignature(t *testing.T) {
	p := NewProvider(Config{WebhookSecret: "whsec"})
	body := []byte(`{"id":"we_1"}`)

	mac := hmac.New(sha256.New, []byte("whsec"))
	mac.Write(body)
	good := hex.EncodeToString(mac.Sum(nil))

	if !p.VerifySignature(body, good) {
		t.Fatalf("valid signature rejected")
	}
	if p.VerifySignature(body, "deadbeef") {
		t.Fatalf("forged signature accepted")
	}
	if p.VerifySignature([]byte(`tampered`), good) {
		t.Fatalf("tampered body accepted")
	}
}
