package booking

import (
	"time"

	"courtslot/internal/conflict"
	"courtslot/internal/interval"
)

type Booking struct {
	ID              int64      `db:"id" json:"id"`
	ConsumerID      string     `db:"consumer_id" json:"consumer_id"`
	Status          Status     `db:"status" json:"status"`
	TotalPrice      int64      `db:"total_price" json:"total_price"`
	DepositAmount   int64      `db:"deposit_amount" json:"deposit_amount"`
	RefundAmount    int64      `db:"refund_amount" json:"refund_amount"`
	PaymentDeadline *time.Time `db:"payment_deadline" json:"payment_deadline,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	LastModified    time.Time  `db:"last_modified" json:"last_modified"`
}

// RemainingBalance never goes negative; a refunded deposit cannot exceed
// what was paid.
func (b *Booking) RemainingBalance() int64 {
	balance := b.TotalPrice - b.DepositAmount - b.RefundAmount
	if balance < 0 {
		return 0
	}
	return balance
}

// Detail is one concrete resource+date+interval claim of a booking.
type Detail struct {
	ID         int64              `db:"id" json:"id"`
	BookingID  int64              `db:"booking_id" json:"booking_id"`
	ResourceID int64              `db:"resource_id" json:"resource_id"`
	Date       interval.Date      `db:"date" json:"date"`
	Start      interval.TimeOfDay `db:"start_minute" json:"start"`
	End        interval.TimeOfDay `db:"end_minute" json:"end"`
	Price      int64              `db:"price" json:"price"`
}

func (d Detail) Span() interval.Span {
	return interval.Span{Start: d.Start, End: d.End}
}

func (d Detail) Claim() conflict.Claim {
	return conflict.Claim{ResourceID: d.ResourceID, Date: d.Date, Span: d.Span()}
}

func (d Detail) StartsAt() time.Time { return d.Date.At(d.Start) }
func (d Detail) EndsAt() time.Time   { return d.Date.At(d.End) }

type BookingWithDetails struct {
	Booking
	Details []Detail `json:"details"`
}

// EarliestStart and LatestEnd anchor the cancellation window and the
// automatic completion point.
func (b *BookingWithDetails) EarliestStart() time.Time {
	var earliest time.Time
	for i, d := range b.Details {
		if s := d.StartsAt(); i == 0 || s.Before(earliest) {
			earliest = s
		}
	}
	return earliest
}

func (b *BookingWithDetails) LatestEnd() time.Time {
	var latest time.Time
	for _, d := range b.Details {
		if e := d.EndsAt(); e.After(latest) {
			latest = e
		}
	}
	return latest
}

func (b *BookingWithDetails) Claims() []conflict.Claim {
	claims := make([]conflict.Claim, len(b.Details))
	for i, d := range b.Details {
		claims[i] = d.Claim()
	}
	return claims
}

type SlotRequest struct {
	ResourceID int64  `json:"resource_id" binding:"required"`
	Date       string `json:"date" binding:"required,civildate"`
	Start      string `json:"start" binding:"required,hhmm"`
	End        string `json:"end" binding:"required,hhmm"`
}

type CreateBookingRequest struct {
	Slots []SlotRequest `json:"slots" binding:"required,min=1,dive"`
}

type ConfirmDepositRequest struct {
	Amount int64 `json:"amount" binding:"required,min=1"`
}

type CancelBookingRequest struct {
	Reason string `json:"reason" binding:"required"`
	// RFC3339; defaults to the current time when omitted.
	RequestedAt string `json:"requested_at"`
}

type ListFilters struct {
	ConsumerID string
	ResourceID int64
	Status     Status
	From       interval.Date
	To         interval.Date
	Page       int
	PageSize   int
}
