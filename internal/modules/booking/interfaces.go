package booking

import (
	"context"
	"time"

	"globobook/internal/domain"
	"globobook/internal/modules/payment"
)

type BookingRepository interface {
	Create(ctx context.Context, b *domain.Booking) error
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	GetByConfirmationCode(ctx context.Context, code string) (*domain.Booking, error)
	SetPaymentReference(ctx context.Context, id, ref string) error
	MarkFailed(ctx context.Context, id, reason string) (bool, error)
	CheckIn(ctx context.Context, id string, at time.Time) (bool, error)
	ExpirePendingBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type PaymentSessions interface {
	CreateSession(ctx context.Context, req payment.CreateSessionRequest) (*payment.Session, error)
}

type StatusCache interface {
	Get(ctx context.Context, idOrCode string) (*domain.Booking, bool)
	Set(ctx context.Context, b *domain.Booking) error
	Invalidate(ctx context.Context, idOrCodes ...string) error
}
