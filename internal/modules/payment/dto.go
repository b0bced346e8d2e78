package payment

import (
	"globobook/internal/domain"
	"globobook/internal/modules/notification"
)

// Event types delivered by the provider's webhook.
const (
	EventPaymentSucceeded = "payment.succeeded"
	EventPaymentFailed    = "payment.failed"
	EventSessionExpired   = "session.expired"
)

// Event is the verified, parsed webhook payload.
type Event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		SessionID     string            `json:"session_id"`
		FailureReason string            `json:"failure_reason,omitempty"`
		Metadata      map[string]string `json:"metadata,omitempty"`
	} `json:"data"`
}

// Metadata keys attached to the checkout session at creation time.
// They are the only channel the webhook has to find the booking again.
const (
	MetaBookingID        = "booking_id"
	MetaConfirmationCode = "confirmation_code"
)

type CreateSessionRequest struct {
	Amount      int64             `json:"amount"` // minor units
	Currency    string            `json:"currency"`
	Description string            `json:"description,omitempty"`
	Metadata    map[string]string `json:"metadata"`
	SuccessURL  string            `json:"success_url,omitempty"`
	CancelURL   string            `json:"cancel_url,omitempty"`
	Methods     []string          `json:"payment_method_types,omitempty"`
}

// Session is the provider's checkout handle: an opaque reference plus
// the URL the customer is redirected to.
type Session struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type Outcome string

const (
	OutcomePaid             Outcome = "paid"
	OutcomeFailed           Outcome = "failed"
	OutcomeExpired          Outcome = "expired"
	OutcomeNotFound         Outcome = "not_found"
	OutcomeAlreadyProcessed Outcome = "already_processed"
	OutcomeStateMismatch    Outcome = "state_mismatch"
	OutcomeIgnored          Outcome = "ignored"
)

// ReconciliationResult reports what the event did to the ledger.
// Notifications are declarative: nothing has been sent yet when
// Reconcile returns.
type ReconciliationResult struct {
	Outcome       Outcome
	Booking       *domain.Booking
	Notifications []notification.Request
}

type WebhookResponse struct {
	Received bool   `json:"received"`
	Outcome  string `json:"outcome"`
}
