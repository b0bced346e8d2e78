package payment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testProvider(baseURL string) *ProviderClient {
	return NewProviderClient(baseURL, "sk_test_123", "whsec_test", time.Second, 5*time.Minute, nil)
}

func TestCreateSession(t *testing.T) {
	var got CreateSessionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/checkout/sessions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sk_test_123" {
			t.Errorf("missing bearer auth")
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_ = json.NewEncoder(w).Encode(Session{ID: "cs_456", URL: "https://pay.example.com/cs_456"})
	}))
	defer srv.Close()

	s, err := testProvider(srv.URL).CreateSession(context.Background(), CreateSessionRequest{
		Amount:   1020000,
		Currency: "mxn",
		Metadata: map[string]string{MetaBookingID: "b-1", MetaConfirmationCode: "GLOBO-20260915-ABCDEF"},
		Methods:  []string{"card", "oxxo"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.ID != "cs_456" || s.URL == "" {
		t.Fatalf("unexpected session %+v", s)
	}
	if got.Amount != 1020000 || got.Metadata[MetaBookingID] != "b-1" {
		t.Fatalf("unexpected request payload %+v", got)
	}
}

func TestCreateSession_ProviderRejects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"amount_too_small"}`, http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	_, err := testProvider(srv.URL).CreateSession(context.Background(), CreateSessionRequest{Amount: 1, Currency: "mxn"})
	if !errors.Is(err, ErrProvider) {
		t.Fatalf("expected ErrProvider, got %v", err)
	}
}

func TestCreateSession_Unconfigured(t *testing.T) {
	c := NewProviderClient("", "", "whsec", time.Second, 0, nil)
	if _, err := c.CreateSession(context.Background(), CreateSessionRequest{}); !errors.Is(err, ErrProvider) {
		t.Fatalf("expected ErrProvider, got %v", err)
	}
}

func eventBody(t *testing.T, typ, session string) []byte {
	t.Helper()
	ev := Event{ID: "evt-1", Type: typ}
	ev.Data.SessionID = session
	raw, err := json.Marshal(ev)
	if err != nil {
		t.Fatal(err)
	}
	return raw
}

func TestVerifyAndParseEvent(t *testing.T) {
	c := testProvider("")
	now := time.Now()
	body := eventBody(t, EventPaymentSucceeded, "cs_123")

	ev, err := c.VerifyAndParseEvent(body, SignPayload("whsec_test", now, body), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev.Type != EventPaymentSucceeded || ev.Data.SessionID != "cs_123" {
		t.Fatalf("unexpected event %+v", ev)
	}
}

func TestVerifyAndParseEvent_WrongSecret(t *testing.T) {
	c := testProvider("")
	now := time.Now()
	body := eventBody(t, EventPaymentSucceeded, "cs_123")

	_, err := c.VerifyAndParseEvent(body, SignPayload("whsec_other", now, body), now)
	if !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestVerifyAndParseEvent_TamperedBody(t *testing.T) {
	c := testProvider("")
	now := time.Now()
	body := eventBody(t, EventPaymentSucceeded, "cs_123")
	sig := SignPayload("whsec_test", now, body)

	tampered := eventBody(t, EventPaymentSucceeded, "cs_999")
	if _, err := c.VerifyAndParseEvent(tampered, sig, now); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestVerifyAndParseEvent_StaleTimestamp(t *testing.T) {
	c := testProvider("")
	now := time.Now()
	body := eventBody(t, EventPaymentSucceeded, "cs_123")

	stale := now.Add(-10 * time.Minute)
	if _, err := c.VerifyAndParseEvent(body, SignPayload("whsec_test", stale, body), now); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature for stale timestamp, got %v", err)
	}
}

func TestVerifyAndParseEvent_MissingHeader(t *testing.T) {
	c := testProvider("")
	body := eventBody(t, EventPaymentSucceeded, "cs_123")
	if _, err := c.VerifyAndParseEvent(body, "", time.Now()); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestVerifyAndParseEvent_MalformedBody(t *testing.T) {
	c := testProvider("")
	now := time.Now()
	body := []byte("{not json")
	_, err := c.VerifyAndParseEvent(body, SignPayload("whsec_test", now, body), now)
	if !errors.Is(err, ErrMalformedEvent) {
		t.Fatalf("expected ErrMalformedEvent, got %v", err)
	}
}
