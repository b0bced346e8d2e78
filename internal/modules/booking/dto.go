package booking

type ContactInput struct {
	Name  string `json:"name" binding:"required" validate:"required,max=120"`
	Email string `json:"email" binding:"required,email" validate:"required,email"`
	Phone string `json:"phone" validate:"max=32"`
}

type CreateBookingRequest struct {
	Adults     int          `json:"adults" validate:"gte=0"`
	Children   int          `json:"children" validate:"gte=0"`
	Addons     []string     `json:"addons" validate:"max=10,dive,min=1,max=64"`
	FlightDate string       `json:"flight_date" binding:"required" validate:"required,datetime=2006-01-02"`
	Contact    ContactInput `json:"contact" binding:"required"`
}

type CreateBookingResponse struct {
	BookingID        string `json:"booking_id"`
	ConfirmationCode string `json:"confirmation_code"`
	TotalAmount      int64  `json:"total_amount"`
	Currency         string `json:"currency"`
	PaymentURL       string `json:"payment_url"`
}

// BookingView is the UI-facing projection; it never echoes contact
// details beyond the name.
type BookingView struct {
	BookingID        string `json:"booking_id"`
	ConfirmationCode string `json:"confirmation_code"`
	Status           string `json:"status"`
	FlightDate       string `json:"flight_date"`
	Adults           int    `json:"adults"`
	Children         int    `json:"children"`
	TotalAmount      int64  `json:"total_amount"`
	Currency         string `json:"currency"`
	ContactName      string `json:"contact_name"`
}
