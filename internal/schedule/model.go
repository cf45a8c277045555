package schedule

import (
	"time"

	"courtslot/internal/interval"
)

// RecurringAvailability is an owner-declared weekly window, independent of
// any concrete date or booking.
type RecurringAvailability struct {
	ID        int64              `db:"id" json:"id"`
	OwnerID   string             `db:"owner_id" json:"owner_id"`
	Weekday   int                `db:"weekday" json:"weekday"`
	Start     interval.TimeOfDay `db:"start_minute" json:"start"`
	End       interval.TimeOfDay `db:"end_minute" json:"end"`
	CreatedAt time.Time          `db:"created_at" json:"created_at"`
}

func (a RecurringAvailability) Span() interval.Span {
	return interval.Span{Start: a.Start, End: a.End}
}

// ResolvedWindow is one concrete date's availability window produced by
// resolving the weekly declarations over a date range.
type ResolvedWindow struct {
	Date interval.Date `json:"date"`
	Span interval.Span `json:"span"`
}

type AddAvailabilityRequest struct {
	Weekday int    `json:"weekday" binding:"min=0,max=6"`
	Start   string `json:"start" binding:"required,hhmm"`
	End     string `json:"end" binding:"required,hhmm"`
}
