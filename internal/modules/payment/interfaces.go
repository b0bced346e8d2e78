package payment

import (
	"context"
	"time"

	"globobook/internal/domain"
)

type bookingFinder interface {
	GetByPaymentReference(ctx context.Context, ref string) (*domain.Booking, error)
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	GetByConfirmationCode(ctx context.Context, code string) (*domain.Booking, error)
}

// bookingTransitioner is the conditional-update contract: every method
// applies its transition only when the record is still in the expected
// source state and reports whether a row actually changed.
type bookingTransitioner interface {
	MarkPaid(ctx context.Context, id string, paidAt time.Time) (bool, error)
	MarkFailed(ctx context.Context, id, reason string) (bool, error)
	MarkExpired(ctx context.Context, id string) (bool, error)
}

type statusCache interface {
	Invalidate(ctx context.Context, idOrCodes ...string) error
}

type eventVerifier interface {
	VerifyAndParseEvent(rawBody []byte, sigHeader string, now time.Time) (*Event, error)
}
