package resource

import (
	"context"
	"errors"
	"fmt"

	"courtslot/internal/interval"
)

var ErrInvalidResource = errors.New("invalid resource")

type Service interface {
	Create(ctx context.Context, ownerID string, req CreateResourceRequest) (*ResourceWithHours, error)
	Get(ctx context.Context, id int64) (*ResourceWithHours, error)
	List(ctx context.Context) ([]Resource, error)
	// UpdateStatus also handles soft retirement: resources referenced by
	// bookings are never deleted, only set inactive.
	UpdateStatus(ctx context.Context, id int64, status string) (*Resource, error)
	ReplaceHours(ctx context.Context, id int64, req ReplaceHoursRequest) ([]OperatingHours, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func parseHours(reqs []HoursRequest) ([]OperatingHours, error) {
	seen := make(map[int]bool, len(reqs))
	hours := make([]OperatingHours, 0, len(reqs))
	for _, h := range reqs {
		if h.Weekday < 0 || h.Weekday > 6 {
			return nil, fmt.Errorf("%w: weekday %d out of range", ErrInvalidResource, h.Weekday)
		}
		if seen[h.Weekday] {
			return nil, fmt.Errorf("%w: duplicate hours for weekday %d", ErrInvalidResource, h.Weekday)
		}
		seen[h.Weekday] = true

		open, err := interval.ParseTimeOfDay(h.Open)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidResource, err)
		}
		closeAt, err := interval.ParseTimeOfDay(h.Close)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidResource, err)
		}
		if open >= closeAt {
			return nil, fmt.Errorf("%w: open %s must precede close %s", ErrInvalidResource, h.Open, h.Close)
		}

		hours = append(hours, OperatingHours{Weekday: h.Weekday, Open: open, Close: closeAt})
	}
	return hours, nil
}

func (s *service) Create(ctx context.Context, ownerID string, req CreateResourceRequest) (*ResourceWithHours, error) {
	if req.SlotDurationMinutes < MinSlotDurationMinutes || req.SlotDurationMinutes > MaxSlotDurationMinutes {
		return nil, fmt.Errorf("%w: slot duration %d out of range", ErrInvalidResource, req.SlotDurationMinutes)
	}
	if req.Scheduling == SchedulingFixedHours && len(req.Hours) == 0 {
		return nil, fmt.Errorf("%w: fixed-hours resources need operating hours", ErrInvalidResource)
	}

	hours, err := parseHours(req.Hours)
	if err != nil {
		return nil, err
	}

	// Hours windows must be divisible into whole slots somewhere; an
	// opening shorter than one slot can never be booked.
	for _, h := range hours {
		if h.Span().Minutes() < req.SlotDurationMinutes {
			return nil, fmt.Errorf("%w: weekday %d window shorter than one slot", ErrInvalidResource, h.Weekday)
		}
	}

	res := &Resource{
		OwnerID:                 ownerID,
		Name:                    req.Name,
		Kind:                    req.Kind,
		SlotDurationMinutes:     req.SlotDurationMinutes,
		PricePerSlot:            req.PricePerSlot,
		MinDepositPercent:       req.MinDepositPercent,
		CancellationWindowHours: req.CancellationWindowHours,
		Scheduling:              req.Scheduling,
		Status:                  StatusActive,
	}

	created, err := s.repo.CreateResource(ctx, res, hours)
	if err != nil {
		return nil, err
	}

	stored, err := s.repo.GetOperatingHours(ctx, created.ID)
	if err != nil {
		return nil, err
	}

	return &ResourceWithHours{Resource: *created, Hours: stored}, nil
}

func (s *service) Get(ctx context.Context, id int64) (*ResourceWithHours, error) {
	res, err := s.repo.GetResourceByID(ctx, id)
	if err != nil {
		return nil, err
	}

	hours, err := s.repo.GetOperatingHours(ctx, id)
	if err != nil {
		return nil, err
	}

	return &ResourceWithHours{Resource: *res, Hours: hours}, nil
}

func (s *service) List(ctx context.Context) ([]Resource, error) {
	return s.repo.GetAllResources(ctx)
}

func (s *service) UpdateStatus(ctx context.Context, id int64, status string) (*Resource, error) {
	switch status {
	case StatusActive, StatusInactive, StatusMaintenance:
	default:
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidResource, status)
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}

	return s.repo.GetResourceByID(ctx, id)
}

func (s *service) ReplaceHours(ctx context.Context, id int64, req ReplaceHoursRequest) ([]OperatingHours, error) {
	res, err := s.repo.GetResourceByID(ctx, id)
	if err != nil {
		return nil, err
	}

	hours, err := parseHours(req.Hours)
	if err != nil {
		return nil, err
	}
	for _, h := range hours {
		if h.Span().Minutes() < res.SlotDurationMinutes {
			return nil, fmt.Errorf("%w: weekday %d window shorter than one slot", ErrInvalidResource, h.Weekday)
		}
	}

	return s.repo.ReplaceOperatingHours(ctx, id, hours)
}
