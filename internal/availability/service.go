// Package availability computes the open-slot view of a resource. The view
// is derived, never persisted: the conflict guard is authoritative at write
// time, so reads tolerate the bounded staleness of the redis cache.
package availability

import (
	"context"
	"errors"
	"fmt"

	"courtslot/internal/booking"
	"courtslot/internal/interval"
	"courtslot/internal/resource"
	"courtslot/internal/schedule"
)

var ErrInvalidRange = errors.New("invalid date range")

// MaxRangeDays caps one availability query.
const MaxRangeDays = 62

// DaySlots is one date's open slots, ordered and non-overlapping, each an
// exact multiple of the resource's slot duration.
type DaySlots struct {
	Date  interval.Date   `json:"date"`
	Slots []interval.Span `json:"slots"`
}

// DetailSource is the slice of the booking repository the calculator needs.
type DetailSource interface {
	ActiveDetailsForResource(ctx context.Context, resourceID int64, from, to interval.Date) ([]booking.Detail, error)
}

type Service interface {
	// OpenSlots returns the open slots per date in [from, to]. The kind
	// filter is a pass-through: a mismatch yields zero availability.
	OpenSlots(ctx context.Context, resourceID int64, from, to interval.Date, kind string) ([]DaySlots, error)
}

type service struct {
	resourceRepo resource.Repository
	scheduleSvc  schedule.Service
	details      DetailSource
	cache        *Cache
}

func NewService(resourceRepo resource.Repository, scheduleSvc schedule.Service, details DetailSource, cache *Cache) Service {
	return &service{
		resourceRepo: resourceRepo,
		scheduleSvc:  scheduleSvc,
		details:      details,
		cache:        cache,
	}
}

func (s *service) OpenSlots(ctx context.Context, resourceID int64, from, to interval.Date, kind string) ([]DaySlots, error) {
	if from.After(to) {
		return nil, fmt.Errorf("%w: from %s after to %s", ErrInvalidRange, from, to)
	}
	if len(interval.DatesBetween(from, to)) > MaxRangeDays {
		return nil, fmt.Errorf("%w: more than %d days", ErrInvalidRange, MaxRangeDays)
	}

	res, err := s.resourceRepo.GetResourceByID(ctx, resourceID)
	if err != nil {
		return nil, err
	}

	if kind != "" && kind != res.Kind {
		return []DaySlots{}, nil
	}
	if !res.Bookable() {
		return []DaySlots{}, nil
	}

	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, resourceID, from, to); ok {
			return cached, nil
		}
	}

	days, err := s.compute(ctx, res, from, to)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Set(ctx, resourceID, from, to, days)
	}
	return days, nil
}

func (s *service) compute(ctx context.Context, res *resource.Resource, from, to interval.Date) ([]DaySlots, error) {
	claimed, err := s.details.ActiveDetailsForResource(ctx, res.ID, from, to)
	if err != nil {
		return nil, err
	}

	claimedByDate := make(map[interval.Date][]interval.Span)
	for _, d := range claimed {
		claimedByDate[d.Date] = append(claimedByDate[d.Date], d.Span())
	}

	windowsByWeekday, err := s.weekdayWindows(ctx, res)
	if err != nil {
		return nil, err
	}

	days := make([]DaySlots, 0, len(interval.DatesBetween(from, to)))
	for _, date := range interval.DatesBetween(from, to) {
		var candidates []interval.Span
		for _, w := range windowsByWeekday[int(date.Weekday())] {
			candidates = append(candidates, interval.Partition(w, res.SlotDurationMinutes)...)
		}

		open := interval.Remaining(candidates, claimedByDate[date])
		if len(open) > 0 {
			days = append(days, DaySlots{Date: date, Slots: open})
		}
	}
	return days, nil
}

func (s *service) weekdayWindows(ctx context.Context, res *resource.Resource) (map[int][]interval.Span, error) {
	windows := make(map[int][]interval.Span)

	if res.Scheduling == resource.SchedulingRecurring {
		declared, err := s.scheduleSvc.ListByOwner(ctx, res.OwnerID)
		if err != nil {
			return nil, err
		}
		for _, a := range declared {
			windows[a.Weekday] = append(windows[a.Weekday], a.Span())
		}
	} else {
		hours, err := s.resourceRepo.GetOperatingHours(ctx, res.ID)
		if err != nil {
			return nil, err
		}
		for _, h := range hours {
			windows[h.Weekday] = append(windows[h.Weekday], h.Span())
		}
	}
	for wd, spans := range windows {
		windows[wd] = interval.Merge(spans)
	}
	return windows, nil
}
