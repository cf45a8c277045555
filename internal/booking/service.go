package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"courtslot/internal/conflict"
	"courtslot/internal/interval"
	"courtslot/internal/logger"
	"courtslot/internal/metrics"
	"courtslot/internal/refund"
	"courtslot/internal/resource"
	"courtslot/internal/schedule"
)

// Invalidator lets the service bump the availability read cache after a
// mutation without importing the availability package.
type Invalidator interface {
	Invalidate(ctx context.Context, resourceID int64)
}

type Service interface {
	Create(ctx context.Context, consumerID string, req CreateBookingRequest) (*BookingWithDetails, error)
	ConfirmDeposit(ctx context.Context, id int64, amount int64) (*Booking, error)
	MarkPaymentFailed(ctx context.Context, id int64) (*Booking, error)
	Confirm(ctx context.Context, id int64) (*Booking, error)
	Complete(ctx context.Context, id int64) (*Booking, error)
	Cancel(ctx context.Context, id int64, consumerID, reason string, requestedAt time.Time) (*refund.CancellationRecord, error)
	MarkNoShow(ctx context.Context, id int64) (*Booking, error)
	Get(ctx context.Context, id int64) (*BookingWithDetails, error)
	List(ctx context.Context, filters ListFilters) ([]Booking, int, error)

	// Start seeds the conflict guard from persisted bookings and re-arms
	// expiry and completion timers. Close disarms everything.
	Start(ctx context.Context) error
	Close()
}

type service struct {
	repo         Repository
	resourceRepo resource.Repository
	scheduleSvc  schedule.Service
	guard        *conflict.Guard
	invalidator  Invalidator

	paymentDeadline time.Duration
	now             func() time.Time

	mu     sync.Mutex
	timers map[int64]*time.Timer
}

func NewService(
	repo Repository,
	resourceRepo resource.Repository,
	scheduleSvc schedule.Service,
	guard *conflict.Guard,
	invalidator Invalidator,
	paymentDeadline time.Duration,
) Service {
	return &service{
		repo:            repo,
		resourceRepo:    resourceRepo,
		scheduleSvc:     scheduleSvc,
		guard:           guard,
		invalidator:     invalidator,
		paymentDeadline: paymentDeadline,
		now:             time.Now,
		timers:          make(map[int64]*time.Timer),
	}
}

// validateSlot turns one requested tuple into a priced detail, checking the
// resource, the slot grid and the date's base windows.
func (s *service) validateSlot(ctx context.Context, req SlotRequest, resources map[int64]*resource.Resource) (*Detail, error) {
	res, ok := resources[req.ResourceID]
	if !ok {
		var err error
		res, err = s.resourceRepo.GetResourceByID(ctx, req.ResourceID)
		if err != nil {
			return nil, err
		}
		resources[req.ResourceID] = res
	}

	if !res.Bookable() {
		return nil, fmt.Errorf("%w: resource %d is %s", ErrInvalidRequest, res.ID, res.Status)
	}

	date, err := interval.ParseDate(req.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	start, err := interval.ParseTimeOfDay(req.Start)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	end, err := interval.ParseTimeOfDay(req.End)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	span, err := interval.NewSpan(start, end)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	if !date.At(start).After(s.now()) {
		return nil, fmt.Errorf("%w: slot %s %s is in the past", ErrInvalidRequest, date, span)
	}

	windows, err := s.baseWindows(ctx, res, date)
	if err != nil {
		return nil, err
	}

	aligned := false
	for _, w := range windows {
		if span.AlignedWithin(w, res.SlotDurationMinutes) {
			aligned = true
			break
		}
	}
	if !aligned {
		return nil, fmt.Errorf("%w: slot %s %s does not align with resource %d schedule",
			ErrInvalidRequest, date, span, res.ID)
	}

	slots := int64(span.Minutes() / res.SlotDurationMinutes)
	return &Detail{
		ResourceID: res.ID,
		Date:       date,
		Start:      start,
		End:        end,
		Price:      slots * res.PricePerSlot,
	}, nil
}

// baseWindows returns the bookable windows for one date: fixed operating
// hours, or the owner's merged recurring windows for owner-scheduled
// resources.
func (s *service) baseWindows(ctx context.Context, res *resource.Resource, date interval.Date) ([]interval.Span, error) {
	weekday := int(date.Weekday())

	if res.Scheduling == resource.SchedulingRecurring {
		return s.scheduleSvc.WindowsForWeekday(ctx, res.OwnerID, weekday)
	}

	hours, err := s.resourceRepo.GetOperatingHours(ctx, res.ID)
	if err != nil {
		return nil, err
	}

	var windows []interval.Span
	for _, h := range hours {
		if h.Weekday == weekday {
			windows = append(windows, h.Span())
		}
	}
	return interval.Merge(windows), nil
}

func (s *service) Create(ctx context.Context, consumerID string, req CreateBookingRequest) (*BookingWithDetails, error) {
	resources := make(map[int64]*resource.Resource)
	details := make([]Detail, 0, len(req.Slots))
	var totalPrice int64

	for _, slot := range req.Slots {
		d, err := s.validateSlot(ctx, slot, resources)
		if err != nil {
			return nil, err
		}
		details = append(details, *d)
		totalPrice += d.Price
	}

	claims := make([]conflict.Claim, len(details))
	for i, d := range details {
		claims[i] = d.Claim()
	}

	// All-or-nothing: either every tuple is reserved here or the request
	// fails without touching the database.
	if err := s.guard.TryReserve(claims); err != nil {
		metrics.RecordConflict()
		return nil, err
	}

	deadline := s.now().Add(s.paymentDeadline)
	created, err := s.repo.CreateBooking(ctx, &Booking{
		ConsumerID:      consumerID,
		Status:          StatusPendingPayment,
		TotalPrice:      totalPrice,
		PaymentDeadline: &deadline,
	}, details)
	if err != nil {
		s.guard.Release(claims)
		return nil, err
	}

	s.armExpiry(created.ID, deadline)
	s.invalidateResources(ctx, created.Details)
	metrics.RecordBookingCreated()

	return created, nil
}

// minimumDeposit sums each detail's share of the deposit floor, so a booking
// spanning resources with different policies honors all of them.
func (s *service) minimumDeposit(ctx context.Context, details []Detail) (int64, error) {
	var minimum int64
	percents := make(map[int64]int64)
	for _, d := range details {
		pct, ok := percents[d.ResourceID]
		if !ok {
			res, err := s.resourceRepo.GetResourceByID(ctx, d.ResourceID)
			if err != nil {
				return 0, err
			}
			pct = int64(res.MinDepositPercent)
			percents[d.ResourceID] = pct
		}
		minimum += (d.Price*pct + 99) / 100
	}
	return minimum, nil
}

func (s *service) ConfirmDeposit(ctx context.Context, id int64, amount int64) (*Booking, error) {
	b, err := s.repo.GetBookingWithDetails(ctx, id)
	if err != nil {
		return nil, err
	}

	if b.Status != StatusPendingPayment {
		if b.Status == StatusExpired {
			return nil, fmt.Errorf("%w: booking %d already expired", ErrExpired, id)
		}
		return nil, fmt.Errorf("%w: cannot deposit from %s", ErrInvalidTransition, b.Status)
	}

	if b.PaymentDeadline != nil && s.now().After(*b.PaymentDeadline) {
		// The deadline elapsed before the timer fired; expire now and
		// report the deposit as too late.
		s.expire(context.WithoutCancel(ctx), id)
		return nil, fmt.Errorf("%w: deadline was %s", ErrExpired, b.PaymentDeadline.Format(time.RFC3339))
	}

	minimum, err := s.minimumDeposit(ctx, b.Details)
	if err != nil {
		return nil, err
	}
	if amount < minimum {
		return nil, fmt.Errorf("%w: deposit %d below minimum %d", ErrPolicyViolation, amount, minimum)
	}

	if err := s.repo.ConfirmDeposit(ctx, id, amount); err != nil {
		if errors.Is(err, errStateConflict) {
			// Lost the race against the expiry timer or a cancellation.
			return nil, s.transitionLost(ctx, id, StatusDeposited)
		}
		return nil, err
	}

	s.disarm(id)
	s.armCompletion(id, b.LatestEnd())
	metrics.RecordTransition(string(StatusDeposited))

	return s.repo.GetBookingByID(ctx, id)
}

func (s *service) MarkPaymentFailed(ctx context.Context, id int64) (*Booking, error) {
	b, err := s.repo.GetBookingWithDetails(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateStatus(ctx, id, StatusPendingPayment, StatusPaymentFailed); err != nil {
		if errors.Is(err, errStateConflict) {
			return nil, s.transitionLost(ctx, id, StatusPaymentFailed)
		}
		return nil, err
	}

	s.disarm(id)
	s.guard.Release(b.Claims())
	s.invalidateResources(ctx, b.Details)
	metrics.RecordTransition(string(StatusPaymentFailed))

	return s.repo.GetBookingByID(ctx, id)
}

func (s *service) Confirm(ctx context.Context, id int64) (*Booking, error) {
	if err := s.repo.UpdateStatus(ctx, id, StatusDeposited, StatusConfirmed); err != nil {
		if errors.Is(err, errStateConflict) {
			return nil, s.transitionLost(ctx, id, StatusConfirmed)
		}
		return nil, err
	}

	metrics.RecordTransition(string(StatusConfirmed))
	return s.repo.GetBookingByID(ctx, id)
}

func (s *service) Complete(ctx context.Context, id int64) (*Booking, error) {
	b, err := s.repo.GetBookingWithDetails(ctx, id)
	if err != nil {
		return nil, err
	}

	// Re-running completion is a no-op, not an error.
	if b.Status == StatusCompleted {
		return &b.Booking, nil
	}

	if !b.Status.CanTransitionTo(StatusCompleted) {
		return nil, fmt.Errorf("%w: cannot complete from %s", ErrInvalidTransition, b.Status)
	}

	if s.now().Before(b.LatestEnd()) {
		return nil, fmt.Errorf("%w: booking runs until %s", ErrPolicyViolation, b.LatestEnd().Format(time.RFC3339))
	}

	if err := s.repo.UpdateStatus(ctx, id, b.Status, StatusCompleted); err != nil {
		if errors.Is(err, errStateConflict) {
			return nil, s.transitionLost(ctx, id, StatusCompleted)
		}
		return nil, err
	}

	s.disarm(id)
	s.guard.Release(b.Claims())
	metrics.RecordTransition(string(StatusCompleted))

	return s.repo.GetBookingByID(ctx, id)
}

func (s *service) Cancel(ctx context.Context, id int64, consumerID, reason string, requestedAt time.Time) (*refund.CancellationRecord, error) {
	b, err := s.repo.GetBookingWithDetails(ctx, id)
	if err != nil {
		return nil, err
	}

	// Empty consumerID means an administrative cancellation.
	if consumerID != "" && b.ConsumerID != consumerID {
		return nil, ErrBookingNotFound
	}

	if b.Status.Terminal() {
		return nil, fmt.Errorf("%w: cannot cancel from %s", ErrInvalidTransition, b.Status)
	}

	window, err := s.cancellationWindow(ctx, b.Details)
	if err != nil {
		return nil, err
	}

	outcome := refund.Evaluate(b.DepositAmount, window, b.EarliestStart(), requestedAt)

	rec, err := s.repo.CancelWithRecord(ctx, id, b.Status, &refund.CancellationRecord{
		BookingID:     id,
		Reason:        reason,
		RequestedAt:   requestedAt,
		RefundAmount:  outcome.RefundAmount,
		PenaltyAmount: outcome.PenaltyAmount,
	})
	if err != nil {
		if errors.Is(err, errStateConflict) {
			return nil, s.transitionLost(ctx, id, StatusCancelled)
		}
		return nil, err
	}

	s.disarm(id)
	s.guard.Release(b.Claims())
	s.invalidateResources(ctx, b.Details)
	metrics.RecordTransition(string(StatusCancelled))
	metrics.RecordRefund(outcome.Kind())

	return rec, nil
}

// cancellationWindow takes the strictest window among the booking's
// resources.
func (s *service) cancellationWindow(ctx context.Context, details []Detail) (int, error) {
	window := 0
	seen := make(map[int64]bool)
	for _, d := range details {
		if seen[d.ResourceID] {
			continue
		}
		seen[d.ResourceID] = true
		res, err := s.resourceRepo.GetResourceByID(ctx, d.ResourceID)
		if err != nil {
			return 0, err
		}
		if res.CancellationWindowHours > window {
			window = res.CancellationWindowHours
		}
	}
	return window, nil
}

func (s *service) MarkNoShow(ctx context.Context, id int64) (*Booking, error) {
	b, err := s.repo.GetBookingWithDetails(ctx, id)
	if err != nil {
		return nil, err
	}

	if b.Status != StatusConfirmed {
		return nil, fmt.Errorf("%w: no-show requires a confirmed booking, got %s", ErrInvalidTransition, b.Status)
	}

	if s.now().Before(b.EarliestStart()) {
		return nil, fmt.Errorf("%w: booking has not started yet", ErrPolicyViolation)
	}

	if err := s.repo.UpdateStatus(ctx, id, StatusConfirmed, StatusNoShow); err != nil {
		if errors.Is(err, errStateConflict) {
			return nil, s.transitionLost(ctx, id, StatusNoShow)
		}
		return nil, err
	}

	s.disarm(id)
	s.guard.Release(b.Claims())
	metrics.RecordTransition(string(StatusNoShow))

	return s.repo.GetBookingByID(ctx, id)
}

func (s *service) Get(ctx context.Context, id int64) (*BookingWithDetails, error) {
	return s.repo.GetBookingWithDetails(ctx, id)
}

func (s *service) List(ctx context.Context, filters ListFilters) ([]Booking, int, error) {
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize < 1 || filters.PageSize > 100 {
		filters.PageSize = 20
	}
	return s.repo.List(ctx, filters)
}

// transitionLost builds the definitive error for an operation that lost a
// state race: the booking moved on, nothing was mutated.
func (s *service) transitionLost(ctx context.Context, id int64, wanted Status) error {
	current, err := s.repo.GetBookingByID(ctx, id)
	if err != nil {
		return err
	}
	if wanted == StatusDeposited && current.Status == StatusExpired {
		return fmt.Errorf("%w: booking %d expired", ErrExpired, id)
	}
	return fmt.Errorf("%w: booking %d is now %s", ErrInvalidTransition, id, current.Status)
}

// expire is the timer path for a pending booking whose deadline elapsed. A
// concurrent ConfirmDeposit wins or loses on the conditional update alone.
func (s *service) expire(ctx context.Context, id int64) {
	b, err := s.repo.GetBookingWithDetails(ctx, id)
	if err != nil {
		logger.Error("expiry lookup failed", "booking_id", id, "error", err)
		return
	}
	if b.Status != StatusPendingPayment {
		return
	}

	if err := s.repo.UpdateStatus(ctx, id, StatusPendingPayment, StatusExpired); err != nil {
		if !errors.Is(err, errStateConflict) {
			logger.Error("expiry transition failed", "booking_id", id, "error", err)
		}
		return
	}

	s.disarm(id)
	s.guard.Release(b.Claims())
	s.invalidateResources(ctx, b.Details)
	metrics.RecordTransition(string(StatusExpired))
	logger.Info("booking expired", "booking_id", id)
}

// complete is the timer path once the last interval has ended.
func (s *service) complete(ctx context.Context, id int64) {
	if _, err := s.Complete(ctx, id); err != nil &&
		!errors.Is(err, ErrInvalidTransition) && !errors.Is(err, ErrBookingNotFound) {
		logger.Error("automatic completion failed", "booking_id", id, "error", err)
	}
}

func (s *service) armExpiry(id int64, deadline time.Time) {
	s.armAt(id, deadline, func() { s.expire(context.Background(), id) })
}

func (s *service) armCompletion(id int64, end time.Time) {
	s.armAt(id, end, func() { s.complete(context.Background(), id) })
}

func (s *service) armAt(id int64, at time.Time, fire func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.timers[id]; ok {
		old.Stop()
	}
	s.timers[id] = time.AfterFunc(at.Sub(s.now()), fire)
	metrics.ActiveExpiryTimers.Set(float64(len(s.timers)))
}

func (s *service) disarm(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.timers[id]; ok {
		t.Stop()
		delete(s.timers, id)
	}
	metrics.ActiveExpiryTimers.Set(float64(len(s.timers)))
}

func (s *service) Start(ctx context.Context) error {
	today := interval.DateOf(s.now())
	held, err := s.repo.HeldDetails(ctx, today)
	if err != nil {
		return fmt.Errorf("failed to load held details: %w", err)
	}

	claims := make([]conflict.Claim, len(held))
	for i, d := range held {
		claims[i] = d.Claim()
	}
	if err := s.guard.Restore(claims); err != nil {
		return fmt.Errorf("failed to seed conflict guard: %w", err)
	}
	logger.Info("conflict guard seeded", "claims", len(claims))

	pending, err := s.repo.BookingsInStatus(ctx, StatusPendingPayment)
	if err != nil {
		return err
	}
	for _, b := range pending {
		if b.PaymentDeadline == nil {
			continue
		}
		s.armExpiry(b.ID, *b.PaymentDeadline)
	}

	inFlight, err := s.repo.BookingsInStatus(ctx, StatusDeposited, StatusConfirmed)
	if err != nil {
		return err
	}
	for _, b := range inFlight {
		details, err := s.repo.GetDetails(ctx, b.ID)
		if err != nil {
			return err
		}
		withDetails := BookingWithDetails{Booking: b, Details: details}
		s.armCompletion(b.ID, withDetails.LatestEnd())
	}

	logger.Info("booking timers armed", "pending", len(pending), "in_flight", len(inFlight))
	return nil
}

func (s *service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
	metrics.ActiveExpiryTimers.Set(0)
}

func (s *service) invalidateResources(ctx context.Context, details []Detail) {
	if s.invalidator == nil {
		return
	}
	seen := make(map[int64]bool)
	for _, d := range details {
		if !seen[d.ResourceID] {
			seen[d.ResourceID] = true
			s.invalidator.Invalidate(ctx, d.ResourceID)
		}
	}
}
