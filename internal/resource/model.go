package resource

import (
	"time"

	"courtslot/internal/interval"
)

const (
	StatusActive      = "active"
	StatusInactive    = "inactive"
	StatusMaintenance = "maintenance"

	KindCourt = "court"
	KindCoach = "coach"

	// SchedulingFixedHours resources open per weekly operating hours;
	// SchedulingRecurring resources open per the owner's declared
	// recurring availability windows.
	SchedulingFixedHours = "fixed_hours"
	SchedulingRecurring  = "recurring"
)

const (
	MinSlotDurationMinutes = 5
	MaxSlotDurationMinutes = 480
)

type Resource struct {
	ID                      int64     `db:"id" json:"id"`
	OwnerID                 string    `db:"owner_id" json:"owner_id"`
	Name                    string    `db:"name" json:"name"`
	Kind                    string    `db:"kind" json:"kind"`
	SlotDurationMinutes     int       `db:"slot_duration_minutes" json:"slot_duration_minutes"`
	PricePerSlot            int64     `db:"price_per_slot" json:"price_per_slot"`
	MinDepositPercent       int       `db:"min_deposit_percent" json:"min_deposit_percent"`
	CancellationWindowHours int       `db:"cancellation_window_hours" json:"cancellation_window_hours"`
	Scheduling              string    `db:"scheduling" json:"scheduling"`
	Status                  string    `db:"status" json:"status"`
	CreatedAt               time.Time `db:"created_at" json:"created_at"`
}

// Bookable reports whether new bookings may target the resource at all.
func (r *Resource) Bookable() bool {
	return r.Status == StatusActive
}

type OperatingHours struct {
	ID         int64               `db:"id" json:"id"`
	ResourceID int64               `db:"resource_id" json:"resource_id"`
	Weekday    int                 `db:"weekday" json:"weekday"`
	Open       interval.TimeOfDay  `db:"open_minute" json:"open"`
	Close      interval.TimeOfDay  `db:"close_minute" json:"close"`
}

func (h OperatingHours) Span() interval.Span {
	return interval.Span{Start: h.Open, End: h.Close}
}

type ResourceWithHours struct {
	Resource
	Hours []OperatingHours `json:"operating_hours"`
}

type HoursRequest struct {
	Weekday int    `json:"weekday" binding:"min=0,max=6"`
	Open    string `json:"open" binding:"required,hhmm"`
	Close   string `json:"close" binding:"required,hhmm"`
}

type CreateResourceRequest struct {
	Name                    string         `json:"name" binding:"required"`
	Kind                    string         `json:"kind" binding:"required,oneof=court coach"`
	SlotDurationMinutes     int            `json:"slot_duration_minutes" binding:"required,min=5,max=480"`
	PricePerSlot            int64          `json:"price_per_slot" binding:"required,min=0"`
	MinDepositPercent       int            `json:"min_deposit_percent" binding:"min=0,max=100"`
	CancellationWindowHours int            `json:"cancellation_window_hours" binding:"min=0"`
	Scheduling              string         `json:"scheduling" binding:"required,oneof=fixed_hours recurring"`
	Hours                   []HoursRequest `json:"operating_hours"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active inactive maintenance"`
}

type ReplaceHoursRequest struct {
	Hours []HoursRequest `json:"operating_hours" binding:"required"`
}
