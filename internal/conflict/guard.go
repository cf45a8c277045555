// Package conflict enforces at-most-one active claim per resource, date and
// interval. It is the single serialization point for booking creation; the
// availability view reads around it and tolerates bounded staleness.
package conflict

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"courtslot/internal/interval"
)

// Claim is one (resource, date, interval) tuple a booking wants to hold.
type Claim struct {
	ResourceID int64         `json:"resource_id"`
	Date       interval.Date `json:"date"`
	Span       interval.Span `json:"span"`
}

func (c Claim) String() string {
	return fmt.Sprintf("resource %d %s %s", c.ResourceID, c.Date, c.Span)
}

// ConflictError reports which requested claims were already held. The whole
// request is rejected; nothing is reserved.
type ConflictError struct {
	Conflicts []Claim
}

func (e *ConflictError) Error() string {
	parts := make([]string, len(e.Conflicts))
	for i, c := range e.Conflicts {
		parts[i] = c.String()
	}
	return "interval already claimed: " + strings.Join(parts, "; ")
}

type dayKey struct {
	resourceID int64
	date       interval.Date
}

type dayState struct {
	mu     sync.Mutex
	claims []interval.Span
}

// Guard holds all currently claimed intervals in memory. Each
// (resource, date) pair has its own mutex; multi-day reservations take the
// mutexes in a fixed order so concurrent calls cannot deadlock.
type Guard struct {
	mu   sync.Mutex
	days map[dayKey]*dayState
}

func NewGuard() *Guard {
	return &Guard{days: make(map[dayKey]*dayState)}
}

func (g *Guard) day(k dayKey) *dayState {
	g.mu.Lock()
	defer g.mu.Unlock()
	d, ok := g.days[k]
	if !ok {
		d = &dayState{}
		g.days[k] = d
	}
	return d
}

type lockedDay struct {
	key   dayKey
	state *dayState
	spans []interval.Span
}

// lockDays groups the claims per (resource, date), then locks every touched
// day in sorted key order. The caller must invoke the returned unlock.
func (g *Guard) lockDays(claims []Claim) ([]lockedDay, func()) {
	grouped := make(map[dayKey][]interval.Span)
	for _, c := range claims {
		k := dayKey{resourceID: c.ResourceID, date: c.Date}
		grouped[k] = append(grouped[k], c.Span)
	}

	keys := make([]dayKey, 0, len(grouped))
	for k := range grouped {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].resourceID != keys[j].resourceID {
			return keys[i].resourceID < keys[j].resourceID
		}
		return keys[i].date < keys[j].date
	})

	days := make([]lockedDay, 0, len(keys))
	for _, k := range keys {
		d := g.day(k)
		d.mu.Lock()
		days = append(days, lockedDay{key: k, state: d, spans: grouped[k]})
	}

	unlock := func() {
		for i := len(days) - 1; i >= 0; i-- {
			days[i].state.mu.Unlock()
		}
	}
	return days, unlock
}

// TryReserve atomically claims every tuple or none of them. Overlaps with
// already-held claims, and overlaps between tuples of the same request, fail
// the whole request with *ConflictError. It never blocks waiting for a claim
// to free up.
func (g *Guard) TryReserve(claims []Claim) error {
	if len(claims) == 0 {
		return nil
	}

	days, unlock := g.lockDays(claims)
	defer unlock()

	var conflicts []Claim
	for _, day := range days {
		for i, s := range day.spans {
			blocked := false
			for _, h := range day.state.claims {
				if s.Overlaps(h) {
					blocked = true
					break
				}
			}
			if !blocked {
				for _, prev := range day.spans[:i] {
					if s.Overlaps(prev) {
						blocked = true
						break
					}
				}
			}
			if blocked {
				conflicts = append(conflicts, Claim{ResourceID: day.key.resourceID, Date: day.key.date, Span: s})
			}
		}
	}

	if len(conflicts) > 0 {
		return &ConflictError{Conflicts: conflicts}
	}

	for _, day := range days {
		day.state.claims = append(day.state.claims, day.spans...)
	}
	return nil
}

// Release frees the given claims. Releasing a claim that is not held is a
// no-op; cancellation and expiry may race on the same booking.
func (g *Guard) Release(claims []Claim) {
	if len(claims) == 0 {
		return
	}

	days, unlock := g.lockDays(claims)
	defer unlock()

	for _, day := range days {
		kept := day.state.claims[:0]
		for _, h := range day.state.claims {
			released := false
			for _, s := range day.spans {
				if h == s {
					released = true
					break
				}
			}
			if !released {
				kept = append(kept, h)
			}
		}
		day.state.claims = kept
	}
}

// Restore seeds the guard from persisted active bookings at startup.
func (g *Guard) Restore(claims []Claim) error {
	return g.TryReserve(claims)
}

// Held returns the claimed spans for one resource and date, sorted by start.
func (g *Guard) Held(resourceID int64, date interval.Date) []interval.Span {
	d := g.day(dayKey{resourceID: resourceID, date: date})
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]interval.Span, len(d.claims))
	copy(out, d.claims)
	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}
