package refund

import "time"

// CancellationRecord is written once per cancellation and never mutated.
type CancellationRecord struct {
	ID            int64     `db:"id" json:"id"`
	BookingID     int64     `db:"booking_id" json:"booking_id"`
	Reason        string    `db:"reason" json:"reason"`
	RequestedAt   time.Time `db:"requested_at" json:"requested_at"`
	RefundAmount  int64     `db:"refund_amount" json:"refund_amount"`
	PenaltyAmount int64     `db:"penalty_amount" json:"penalty_amount"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}
