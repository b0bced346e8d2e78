package booking

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"globobook/internal/config"
	"globobook/internal/domain"
	"globobook/internal/modules/payment"
	"globobook/internal/pkg/confirmation"
	"globobook/internal/pricing"
	"globobook/internal/repository"
)

const codeRetries = 5

type Service struct {
	bookings BookingRepository
	payments PaymentSessions
	cache    StatusCache
	cfg      *config.Config
	entropy  io.Reader
	loggerf  func(format string, args ...interface{})
}

func NewService(bookings BookingRepository, payments PaymentSessions, cache StatusCache, cfg *config.Config, loggerf func(format string, args ...interface{})) *Service {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Service{
		bookings: bookings,
		payments: payments,
		cache:    cache,
		cfg:      cfg,
		entropy:  rand.Reader,
		loggerf:  loggerf,
	}
}

// Create validates the input, computes the trusted total server-side,
// persists a PENDING record and requests a checkout session tagged with
// the booking id and confirmation code. A session failure marks the
// record FAILED so no pending row ever points at a session that does
// not exist.
func (s *Service) Create(ctx context.Context, req CreateBookingRequest) (*CreateBookingResponse, error) {
	flightDate, err := time.Parse("2006-01-02", req.FlightDate)
	if err != nil {
		return nil, fmt.Errorf("%w: flight_date must be YYYY-MM-DD", ErrValidation)
	}
	today := time.Now().UTC().Truncate(24 * time.Hour)
	if flightDate.Before(today) {
		return nil, fmt.Errorf("%w: flight_date is in the past", ErrValidation)
	}

	total, err := pricing.ComputeTotal(
		pricing.Counts{Adults: req.Adults, Children: req.Children},
		req.Addons,
		s.cfg.Prices,
	)
	if err != nil {
		if errors.Is(err, pricing.ErrUnknownAddon) {
			return nil, fmt.Errorf("%w: addon not offered", ErrUnknownAddon)
		}
		return nil, fmt.Errorf("%w: at least one passenger is required", ErrValidation)
	}

	addonsRaw, _ := json.Marshal(req.Addons)
	b := &domain.Booking{
		ID:           uuid.NewString(),
		Adults:       req.Adults,
		Children:     req.Children,
		Addons:       string(addonsRaw),
		FlightDate:   flightDate,
		ContactName:  strings.TrimSpace(req.Contact.Name),
		ContactEmail: strings.TrimSpace(strings.ToLower(req.Contact.Email)),
		ContactPhone: strings.TrimSpace(req.Contact.Phone),
		TotalAmount:  total,
		Currency:     s.cfg.Currency,
		Status:       domain.BookingPending,
	}

	if err := s.persistWithFreshCode(ctx, b, flightDate); err != nil {
		return nil, err
	}

	session, err := s.payments.CreateSession(ctx, payment.CreateSessionRequest{
		Amount:      total,
		Currency:    s.cfg.Currency,
		Description: fmt.Sprintf("Balloon flight %s (%d passengers)", flightDate.Format("2006-01-02"), req.Adults+req.Children),
		Metadata: map[string]string{
			payment.MetaBookingID:        b.ID,
			payment.MetaConfirmationCode: b.ConfirmationCode,
		},
		SuccessURL: s.cfg.SuccessURL,
		CancelURL:  s.cfg.CancelURL,
		Methods:    s.paymentMethods(),
	})
	if err != nil {
		s.loggerf("level=error msg=payment session creation failed booking_id=%s err=%v", b.ID, err)
		if _, ferr := s.bookings.MarkFailed(ctx, b.ID, fmt.Sprintf("session creation failed: %v", err)); ferr != nil {
			s.loggerf("level=error msg=failed to mark booking failed booking_id=%s err=%v", b.ID, ferr)
		}
		return nil, fmt.Errorf("%w: %v", ErrPaymentProvider, err)
	}

	if err := s.bookings.SetPaymentReference(ctx, b.ID, session.ID); err != nil {
		// The session exists but we could not record it; the webhook
		// can still find the booking through the session metadata.
		s.loggerf("level=error msg=failed to store payment reference booking_id=%s session=%s err=%v", b.ID, session.ID, err)
		return nil, fmt.Errorf("%w: storing payment reference: %v", ErrPersistence, err)
	}

	s.loggerf("level=info msg=booking created booking_id=%s code=%s total=%d session=%s", b.ID, b.ConfirmationCode, total, session.ID)
	return &CreateBookingResponse{
		BookingID:        b.ID,
		ConfirmationCode: b.ConfirmationCode,
		TotalAmount:      total,
		Currency:         s.cfg.Currency,
		PaymentURL:       session.URL,
	}, nil
}

// persistWithFreshCode retries on confirmation-code collisions; the
// unique index on the column is the collision detector.
func (s *Service) persistWithFreshCode(ctx context.Context, b *domain.Booking, flightDate time.Time) error {
	for attempt := 0; attempt < codeRetries; attempt++ {
		code, err := confirmation.Generate(s.cfg.CodePrefix, flightDate, s.entropy)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		b.ConfirmationCode = code
		err = s.bookings.Create(ctx, b)
		if err == nil {
			return nil
		}
		if isUniqueViolation(err) {
			s.loggerf("level=warn msg=confirmation code collision attempt=%d code=%s", attempt, code)
			continue
		}
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return fmt.Errorf("%w: could not allocate a unique confirmation code", ErrPersistence)
}

func (s *Service) paymentMethods() []string {
	methods := []string{"card"}
	if s.cfg.EnableOXXO {
		methods = append(methods, "oxxo")
	}
	return methods
}

// Get resolves a booking by id or confirmation code, serving the UI
// polling path through the cache when one is configured.
func (s *Service) Get(ctx context.Context, idOrCode string) (*BookingView, error) {
	if s.cache != nil {
		if b, ok := s.cache.Get(ctx, idOrCode); ok {
			return toView(b), nil
		}
	}

	var b *domain.Booking
	var err error
	if _, perr := uuid.Parse(idOrCode); perr == nil {
		b, err = s.bookings.GetByID(ctx, idOrCode)
	} else {
		b, err = s.bookings.GetByConfirmationCode(ctx, strings.ToUpper(strings.TrimSpace(idOrCode)))
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if s.cache != nil {
		if cerr := s.cache.Set(ctx, b); cerr != nil {
			s.loggerf("level=warn msg=cache set failed booking_id=%s err=%v", b.ID, cerr)
		}
	}
	return toView(b), nil
}

// CheckIn moves PAID to CHECKED_IN when a staff member scans the code.
// A repeated scan returns the current record instead of an error.
func (s *Service) CheckIn(ctx context.Context, code string) (*BookingView, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	b, err := s.bookings.GetByConfirmationCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if b.Status == domain.BookingCheckedIn {
		return toView(b), nil
	}
	if b.Status != domain.BookingPaid {
		return nil, fmt.Errorf("%w: status is %s", ErrInvalidState, b.Status)
	}

	applied, err := s.bookings.CheckIn(ctx, b.ID, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !applied {
		// Lost a race: re-read and decide again.
		current, err := s.bookings.GetByConfirmationCode(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		if current.Status == domain.BookingCheckedIn {
			return toView(current), nil
		}
		return nil, fmt.Errorf("%w: status is %s", ErrInvalidState, current.Status)
	}

	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, b.ID, b.ConfirmationCode)
	}
	b.Status = domain.BookingCheckedIn
	s.loggerf("level=info msg=booking checked in booking_id=%s code=%s", b.ID, code)
	return toView(b), nil
}

// ExpirePending sweeps PENDING bookings older than the configured
// window. The provider never expires sessions on our schedule, so this
// is service policy, run from cmd/expire.
func (s *Service) ExpirePending(ctx context.Context) (int64, error) {
	cutoff := time.Now().UTC().Add(-s.cfg.PendingTTL)
	n, err := s.bookings.ExpirePendingBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if n > 0 {
		s.loggerf("level=info msg=expired stale pending bookings count=%d cutoff=%s", n, cutoff.Format(time.RFC3339))
	}
	return n, nil
}

func toView(b *domain.Booking) *BookingView {
	return &BookingView{
		BookingID:        b.ID,
		ConfirmationCode: b.ConfirmationCode,
		Status:           string(b.Status),
		FlightDate:       b.FlightDate.Format("2006-01-02"),
		Adults:           b.Adults,
		Children:         b.Children,
		TotalAmount:      b.TotalAmount,
		Currency:         b.Currency,
		ContactName:      b.ContactName,
	}
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	// modernc sqlite reports constraint violations by message only.
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
