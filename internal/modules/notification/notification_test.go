package notification

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type mockSender struct {
	sent []Request
	err  error
}

func (m *mockSender) Send(ctx context.Context, req Request) error {
	m.sent = append(m.sent, req)
	return m.err
}

func TestDispatch_SendsAll(t *testing.T) {
	sender := &mockSender{}
	d := NewDispatcher(sender, nil)
	d.Dispatch(context.Background(), []Request{
		{Kind: KindCustomer, To: "a@example.com", TemplateID: "booking-confirmation"},
		{Kind: KindStaff, To: "ops@example.com", TemplateID: "staff-new-booking"},
	})
	if len(sender.sent) != 2 {
		t.Fatalf("expected 2 sends, got %d", len(sender.sent))
	}
}

func TestDispatch_SwallowsSendFailures(t *testing.T) {
	sender := &mockSender{err: errors.New("smtp relay on fire")}
	var logged int
	d := NewDispatcher(sender, func(string, ...interface{}) { logged++ })
	d.Dispatch(context.Background(), []Request{
		{Kind: KindCustomer, To: "a@example.com", TemplateID: "booking-confirmation"},
	})
	if logged == 0 {
		t.Fatal("expected failure to be logged")
	}
}

func TestDispatch_SkipsEmptyRecipient(t *testing.T) {
	sender := &mockSender{}
	d := NewDispatcher(sender, nil)
	d.Dispatch(context.Background(), []Request{{Kind: KindCustomer, TemplateID: "booking-confirmation"}})
	if len(sender.sent) != 0 {
		t.Fatalf("expected no sends for empty recipient, got %d", len(sender.sent))
	}
}

func TestClient_Send(t *testing.T) {
	var got sendPayload
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		if r.URL.Path != "/v1/send" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key-123", "reservas@globobook.mx", time.Second)
	err := c.Send(context.Background(), Request{
		Kind:       KindCustomer,
		To:         "maria@example.com",
		TemplateID: "booking-confirmation",
		Data:       map[string]interface{}{"confirmation_code": "GLOBO-20260915-ABCDEF"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if auth != "Bearer key-123" {
		t.Fatalf("missing bearer auth, got %q", auth)
	}
	if got.To != "maria@example.com" || got.From != "reservas@globobook.mx" || got.TemplateID != "booking-confirmation" {
		t.Fatalf("unexpected payload %+v", got)
	}
}

func TestClient_SendProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key-123", "reservas@globobook.mx", time.Second)
	err := c.Send(context.Background(), Request{To: "maria@example.com", TemplateID: "x"})
	if err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}
