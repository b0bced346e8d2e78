package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"globobook/internal/modules/notification"
)

func webhookRouter(t *testing.T, ledger *fakeLedger, sender notification.Sender) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	verifier := testProvider("")
	svc := newTestService(ledger)
	dispatcher := notification.NewDispatcher(sender, func(string, ...interface{}) {})
	h := NewHandler(verifier, svc, dispatcher, func(string, ...interface{}) {})

	r := gin.New()
	h.RegisterPublicRoutes(r.Group("/api/v1"))
	return r
}

func postWebhook(r *gin.Engine, body []byte, sig string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/webhook", bytes.NewReader(body))
	req.Header.Set("Signature", sig)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type mockWebhookSender struct{ sent int }

func (m *mockWebhookSender) Send(ctx context.Context, req notification.Request) error {
	m.sent++
	return nil
}

func TestWebhook_BadSignatureRejected(t *testing.T) {
	r := webhookRouter(t, newFakeLedger(), nil)
	body := eventBody(t, EventPaymentSucceeded, "cs_123")

	w := postWebhook(r, body, "t=123,v1=deadbeef")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestWebhook_UnknownBookingStillAcks(t *testing.T) {
	r := webhookRouter(t, newFakeLedger(), nil)
	body := eventBody(t, EventPaymentSucceeded, "cs_unknown")
	now := time.Now()

	w := postWebhook(r, body, SignPayload("whsec_test", now, body))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 ack for unknown booking, got %d", w.Code)
	}
	var resp WebhookResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if !resp.Received || resp.Outcome != string(OutcomeNotFound) {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestWebhook_SuccessTransitionsAndNotifies(t *testing.T) {
	ledger := newFakeLedger(pendingBooking())
	sender := &mockWebhookSender{}
	r := webhookRouter(t, ledger, sender)
	body := eventBody(t, EventPaymentSucceeded, "cs_123")

	w := postWebhook(r, body, SignPayload("whsec_test", time.Now(), body))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got := ledger.bookings["b-1"].Status; got != "paid" {
		t.Fatalf("booking status = %s", got)
	}
	if sender.sent != 2 {
		t.Fatalf("expected 2 notifications dispatched, got %d", sender.sent)
	}

	// Redelivery acks without sending again.
	w = postWebhook(r, body, SignPayload("whsec_test", time.Now(), body))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 on redelivery, got %d", w.Code)
	}
	if sender.sent != 2 {
		t.Fatalf("redelivery must not re-send notifications, got %d", sender.sent)
	}
}
