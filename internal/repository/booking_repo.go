package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"globobook/internal/domain"
)

var ErrNotFound = errors.New("record not found")

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *BookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	return r.getOne(ctx, "id = ?", id)
}

func (r *BookingRepository) GetByConfirmationCode(ctx context.Context, code string) (*domain.Booking, error) {
	return r.getOne(ctx, "confirmation_code = ?", code)
}

func (r *BookingRepository) GetByPaymentReference(ctx context.Context, ref string) (*domain.Booking, error) {
	return r.getOne(ctx, "payment_reference = ?", ref)
}

func (r *BookingRepository) getOne(ctx context.Context, query string, arg string) (*domain.Booking, error) {
	var b domain.Booking
	if err := r.db.WithContext(ctx).Where(query, arg).First(&b).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r *BookingRepository) SetPaymentReference(ctx context.Context, id, ref string) error {
	res := r.db.WithContext(ctx).
		Model(&domain.Booking{}).
		Where("id = ? AND (payment_reference = '' OR payment_reference IS NULL)", id).
		Update("payment_reference", ref)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkPaid applies the PENDING -> PAID transition as a single
// conditional update. The returned bool is false when another delivery
// already moved the record out of PENDING; the caller decides whether
// that is an idempotent skip or an anomaly.
func (r *BookingRepository) MarkPaid(ctx context.Context, id string, paidAt time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&domain.Booking{}).
		Where("id = ? AND status = ?", id, domain.BookingPending).
		Updates(map[string]interface{}{
			"status":  domain.BookingPaid,
			"paid_at": paidAt,
		})
	return res.RowsAffected > 0, res.Error
}

func (r *BookingRepository) MarkFailed(ctx context.Context, id, reason string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&domain.Booking{}).
		Where("id = ? AND status = ?", id, domain.BookingPending).
		Updates(map[string]interface{}{
			"status":         domain.BookingFailed,
			"failure_reason": reason,
		})
	return res.RowsAffected > 0, res.Error
}

func (r *BookingRepository) MarkExpired(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&domain.Booking{}).
		Where("id = ? AND status = ?", id, domain.BookingPending).
		Update("status", domain.BookingExpired)
	return res.RowsAffected > 0, res.Error
}

// CheckIn applies PAID -> CHECKED_IN with the same conditional-update
// contract as MarkPaid.
func (r *BookingRepository) CheckIn(ctx context.Context, id string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&domain.Booking{}).
		Where("id = ? AND status = ?", id, domain.BookingPaid).
		Updates(map[string]interface{}{
			"status":        domain.BookingCheckedIn,
			"checked_in_at": at,
		})
	return res.RowsAffected > 0, res.Error
}

// ExpirePendingBefore sweeps PENDING rows created before the cutoff.
func (r *BookingRepository) ExpirePendingBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&domain.Booking{}).
		Where("status = ? AND created_at < ?", domain.BookingPending, cutoff).
		Update("status", domain.BookingExpired)
	return res.RowsAffected, res.Error
}
