package schedule

import (
	"context"
	"errors"
	"fmt"

	"courtslot/internal/interval"
)

var ErrInvalidWindow = errors.New("invalid availability window")

type Service interface {
	Add(ctx context.Context, ownerID string, req AddAvailabilityRequest) (*RecurringAvailability, error)
	Remove(ctx context.Context, id int64, ownerID string) error
	ListByOwner(ctx context.Context, ownerID string) ([]RecurringAvailability, error)
	// Resolve maps each date in [from, to] to its weekday and emits the
	// owner's declared windows, overlaps merged.
	Resolve(ctx context.Context, ownerID string, from, to interval.Date) ([]ResolvedWindow, error)
	// WindowsForWeekday returns the merged declared spans for one weekday.
	WindowsForWeekday(ctx context.Context, ownerID string, weekday int) ([]interval.Span, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Add(ctx context.Context, ownerID string, req AddAvailabilityRequest) (*RecurringAvailability, error) {
	if req.Weekday < 0 || req.Weekday > 6 {
		return nil, fmt.Errorf("%w: weekday %d out of range", ErrInvalidWindow, req.Weekday)
	}

	start, err := interval.ParseTimeOfDay(req.Start)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWindow, err)
	}
	end, err := interval.ParseTimeOfDay(req.End)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWindow, err)
	}
	if start >= end {
		return nil, fmt.Errorf("%w: start %s must precede end %s", ErrInvalidWindow, req.Start, req.End)
	}

	return s.repo.Add(ctx, &RecurringAvailability{
		OwnerID: ownerID,
		Weekday: req.Weekday,
		Start:   start,
		End:     end,
	})
}

func (s *service) Remove(ctx context.Context, id int64, ownerID string) error {
	return s.repo.Remove(ctx, id, ownerID)
}

func (s *service) ListByOwner(ctx context.Context, ownerID string) ([]RecurringAvailability, error) {
	return s.repo.GetByOwner(ctx, ownerID)
}

func (s *service) Resolve(ctx context.Context, ownerID string, from, to interval.Date) ([]ResolvedWindow, error) {
	declared, err := s.repo.GetByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	byWeekday := make(map[int][]interval.Span)
	for _, a := range declared {
		byWeekday[a.Weekday] = append(byWeekday[a.Weekday], a.Span())
	}
	for wd, spans := range byWeekday {
		byWeekday[wd] = interval.Merge(spans)
	}

	var resolved []ResolvedWindow
	for _, date := range interval.DatesBetween(from, to) {
		for _, span := range byWeekday[int(date.Weekday())] {
			resolved = append(resolved, ResolvedWindow{Date: date, Span: span})
		}
	}
	return resolved, nil
}

func (s *service) WindowsForWeekday(ctx context.Context, ownerID string, weekday int) ([]interval.Span, error) {
	declared, err := s.repo.GetByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	var spans []interval.Span
	for _, a := range declared {
		if a.Weekday == weekday {
			spans = append(spans, a.Span())
		}
	}
	return interval.Merge(spans), nil
}
