package domain

import "time"

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingPaid      BookingStatus = "paid"
	BookingCheckedIn BookingStatus = "checked_in"
	BookingFailed    BookingStatus = "failed"
	BookingExpired   BookingStatus = "expired"
)

// Booking is the unit of business state. The record is owned by the
// ledger; the payment provider owns the session it references and its
// status is the source of truth this record converges to.
type Booking struct {
	ID               string        `gorm:"primaryKey;type:varchar(36)" json:"id"`
	ConfirmationCode string        `gorm:"uniqueIndex;type:varchar(24);not null" json:"confirmation_code"`
	Adults           int           `gorm:"not null" json:"adults"`
	Children         int           `gorm:"not null" json:"children"`
	Addons           string        `gorm:"type:text" json:"addons"` // JSON array of addon names
	FlightDate       time.Time     `gorm:"not null;index" json:"flight_date"`
	ContactName      string        `gorm:"type:varchar(120)" json:"contact_name"`
	ContactEmail     string        `gorm:"type:varchar(254);not null" json:"contact_email"`
	ContactPhone     string        `gorm:"type:varchar(32)" json:"contact_phone,omitempty"`
	TotalAmount      int64         `gorm:"not null" json:"total_amount"` // centavos, server-computed only
	Currency         string        `gorm:"type:varchar(3);not null" json:"currency"`
	PaymentReference string        `gorm:"index;type:varchar(128)" json:"payment_reference,omitempty"`
	Status           BookingStatus `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	FailureReason    string        `gorm:"type:text" json:"failure_reason,omitempty"`
	PaidAt           *time.Time    `json:"paid_at,omitempty"`
	CheckedInAt      *time.Time    `json:"checked_in_at,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

func (Booking) TableName() string { return "bookings" }
