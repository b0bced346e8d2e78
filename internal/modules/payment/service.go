package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"globobook/internal/domain"
	"globobook/internal/modules/notification"
	"globobook/internal/repository"
)

// Templates names the email templates reconciliation outcomes map to.
type Templates struct {
	Confirmation string
	Failed       string
	StaffAlert   string
}

// Service applies verified payment events to the booking ledger
// exactly once. It holds no state between calls; atomicity lives in
// the storage layer's conditional updates.
type Service struct {
	finder      bookingFinder
	transitions bookingTransitioner
	cache       statusCache
	templates   Templates
	staffEmail  string
	loggerf     func(format string, args ...interface{})
}

func NewService(finder bookingFinder, transitions bookingTransitioner, cache statusCache, templates Templates, staffEmail string, loggerf func(format string, args ...interface{})) *Service {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Service{
		finder:      finder,
		transitions: transitions,
		cache:       cache,
		templates:   templates,
		staffEmail:  staffEmail,
		loggerf:     loggerf,
	}
}

// Reconcile advances the booking the event refers to. Unknown event
// types and missing bookings are reported in the result, never as
// errors: the webhook must still acknowledge receipt.
func (s *Service) Reconcile(ctx context.Context, ev *Event) (*ReconciliationResult, error) {
	if ev == nil {
		return &ReconciliationResult{Outcome: OutcomeIgnored}, nil
	}

	var target domain.BookingStatus
	switch ev.Type {
	case EventPaymentSucceeded:
		target = domain.BookingPaid
	case EventPaymentFailed:
		target = domain.BookingFailed
	case EventSessionExpired:
		target = domain.BookingExpired
	default:
		s.loggerf("level=info msg=ignoring unrecognized event event_id=%s type=%s", ev.ID, ev.Type)
		return &ReconciliationResult{Outcome: OutcomeIgnored}, nil
	}

	b, err := s.locate(ctx, ev)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.loggerf("level=warn msg=no booking for payment event event_id=%s type=%s session=%s", ev.ID, ev.Type, ev.Data.SessionID)
			return &ReconciliationResult{Outcome: OutcomeNotFound}, nil
		}
		return nil, fmt.Errorf("booking lookup: %w", err)
	}

	applied, err := s.apply(ctx, b, ev, target)
	if err != nil {
		return nil, err
	}
	if applied {
		_ = s.cacheInvalidate(ctx, b)
		b.Status = target
		res := &ReconciliationResult{Booking: b}
		switch target {
		case domain.BookingPaid:
			res.Outcome = OutcomePaid
			res.Notifications = s.paidNotifications(b)
		case domain.BookingFailed:
			res.Outcome = OutcomeFailed
			res.Notifications = s.failedNotifications(b)
		case domain.BookingExpired:
			res.Outcome = OutcomeExpired
		}
		s.loggerf("level=info msg=booking transitioned booking_id=%s code=%s event_id=%s status=%s", b.ID, b.ConfirmationCode, ev.ID, target)
		return res, nil
	}

	// The conditional update did not fire: re-read to tell the
	// idempotent duplicate apart from a genuine state conflict.
	current, err := s.finder.GetByID(ctx, b.ID)
	if err != nil {
		return nil, fmt.Errorf("booking re-read: %w", err)
	}
	if current.Status == target {
		s.loggerf("level=info msg=duplicate payment event skipped booking_id=%s event_id=%s status=%s", b.ID, ev.ID, current.Status)
		return &ReconciliationResult{Outcome: OutcomeAlreadyProcessed, Booking: current}, nil
	}
	// Anomaly policy: a success event against a FAILED/EXPIRED booking
	// means money moved after we gave up. Loud log, acknowledged receipt.
	s.loggerf("level=error msg=payment event conflicts with booking state booking_id=%s event_id=%s event_type=%s status=%s",
		b.ID, ev.ID, ev.Type, current.Status)
	return &ReconciliationResult{Outcome: OutcomeStateMismatch, Booking: current}, nil
}

// locate prefers the payment reference and falls back to the metadata
// the session was tagged with at creation time.
func (s *Service) locate(ctx context.Context, ev *Event) (*domain.Booking, error) {
	if ref := ev.Data.SessionID; ref != "" {
		b, err := s.finder.GetByPaymentReference(ctx, ref)
		if err == nil || !errors.Is(err, repository.ErrNotFound) {
			return b, err
		}
	}
	if id := ev.Data.Metadata[MetaBookingID]; id != "" {
		b, err := s.finder.GetByID(ctx, id)
		if err == nil || !errors.Is(err, repository.ErrNotFound) {
			return b, err
		}
	}
	if code := ev.Data.Metadata[MetaConfirmationCode]; code != "" {
		return s.finder.GetByConfirmationCode(ctx, code)
	}
	return nil, repository.ErrNotFound
}

func (s *Service) apply(ctx context.Context, b *domain.Booking, ev *Event, target domain.BookingStatus) (bool, error) {
	switch target {
	case domain.BookingPaid:
		return s.transitions.MarkPaid(ctx, b.ID, time.Now().UTC())
	case domain.BookingFailed:
		reason := ev.Data.FailureReason
		if reason == "" {
			reason = "payment failed"
		}
		return s.transitions.MarkFailed(ctx, b.ID, reason)
	case domain.BookingExpired:
		return s.transitions.MarkExpired(ctx, b.ID)
	}
	return false, nil
}

func (s *Service) cacheInvalidate(ctx context.Context, b *domain.Booking) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Invalidate(ctx, b.ID, b.ConfirmationCode)
}

func (s *Service) paidNotifications(b *domain.Booking) []notification.Request {
	data := bookingTemplateData(b)
	reqs := []notification.Request{{
		Kind:       notification.KindCustomer,
		To:         b.ContactEmail,
		TemplateID: s.templates.Confirmation,
		Data:       data,
	}}
	if s.staffEmail != "" {
		reqs = append(reqs, notification.Request{
			Kind:       notification.KindStaff,
			To:         s.staffEmail,
			TemplateID: s.templates.StaffAlert,
			Data:       data,
		})
	}
	return reqs
}

func (s *Service) failedNotifications(b *domain.Booking) []notification.Request {
	return []notification.Request{{
		Kind:       notification.KindCustomer,
		To:         b.ContactEmail,
		TemplateID: s.templates.Failed,
		Data:       bookingTemplateData(b),
	}}
}

func bookingTemplateData(b *domain.Booking) map[string]interface{} {
	return map[string]interface{}{
		"confirmation_code": b.ConfirmationCode,
		"contact_name":      b.ContactName,
		"flight_date":       b.FlightDate.Format("2006-01-02"),
		"passengers":        b.Adults + b.Children,
		"total_amount":      b.TotalAmount,
		"currency":          b.Currency,
	}
}
