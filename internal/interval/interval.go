package interval

import (
	"fmt"
	"sort"
	"time"
)

const (
	DateFormat = "2006-01-02"
	TimeFormat = "15:04"
)

// Date is a civil calendar date (YYYY-MM-DD) with no time zone attached.
// Lexicographic order matches chronological order.
type Date string

func ParseDate(s string) (Date, error) {
	if _, err := time.Parse(DateFormat, s); err != nil {
		return "", fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return Date(s), nil
}

func DateOf(t time.Time) Date {
	return Date(t.UTC().Format(DateFormat))
}

func (d Date) String() string { return string(d) }

func (d Date) Time() time.Time {
	t, _ := time.ParseInLocation(DateFormat, string(d), time.UTC)
	return t
}

func (d Date) Weekday() time.Weekday { return d.Time().Weekday() }

// At combines the date with a time of day, in UTC.
func (d Date) At(t TimeOfDay) time.Time {
	return d.Time().Add(time.Duration(t) * time.Minute)
}

func (d Date) AddDays(n int) Date {
	return Date(d.Time().AddDate(0, 0, n).Format(DateFormat))
}

func (d Date) Before(other Date) bool { return d < other }
func (d Date) After(other Date) bool  { return d > other }

// DatesBetween returns every date from from through to, inclusive.
// An inverted range yields nil.
func DatesBetween(from, to Date) []Date {
	var dates []Date
	for d := from; !d.After(to); d = d.AddDays(1) {
		dates = append(dates, d)
	}
	return dates
}

// TimeOfDay is minutes since midnight. The wire format is "15:04".
type TimeOfDay int

func ParseTimeOfDay(s string) (TimeOfDay, error) {
	// "24:00" is a legal close time but outside time.Parse's range.
	if s == "24:00" {
		return TimeOfDay(24 * 60), nil
	}
	t, err := time.Parse(TimeFormat, s)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM", s)
	}
	return TimeOfDay(t.Hour()*60 + t.Minute()), nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

func (t TimeOfDay) Valid() bool { return t >= 0 && t <= 24*60 }

// TimeOfDay marshals as "15:04" on the wire.
func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("invalid time %s: expected quoted HH:MM", s)
	}
	parsed, err := ParseTimeOfDay(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Span is a half-open [Start, End) interval within a single day.
type Span struct {
	Start TimeOfDay `json:"start"`
	End   TimeOfDay `json:"end"`
}

func NewSpan(start, end TimeOfDay) (Span, error) {
	s := Span{Start: start, End: end}
	if !s.IsValid() {
		return Span{}, fmt.Errorf("invalid span %s-%s", start, end)
	}
	return s, nil
}

func (s Span) IsValid() bool {
	return s.Start.Valid() && s.End.Valid() && s.Start < s.End
}

func (s Span) Minutes() int { return int(s.End - s.Start) }

func (s Span) Overlaps(other Span) bool {
	return s.Start < other.End && other.Start < s.End
}

func (s Span) ContainedIn(window Span) bool {
	return s.Start >= window.Start && s.End <= window.End
}

// AlignedWithin reports whether the span sits on the slot grid that
// partitions window into slotMinutes-sized slots.
func (s Span) AlignedWithin(window Span, slotMinutes int) bool {
	if slotMinutes <= 0 || !s.ContainedIn(window) {
		return false
	}
	return int(s.Start-window.Start)%slotMinutes == 0 && s.Minutes()%slotMinutes == 0
}

func (s Span) String() string {
	return s.Start.String() + "-" + s.End.String()
}

// Merge collapses overlapping and adjacent spans into a minimal sorted set.
func Merge(spans []Span) []Span {
	if len(spans) == 0 {
		return nil
	}
	sorted := make([]Span, len(spans))
	copy(sorted, spans)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	merged := []Span{sorted[0]}
	for _, s := range sorted[1:] {
		last := &merged[len(merged)-1]
		if s.Start <= last.End {
			if s.End > last.End {
				last.End = s.End
			}
			continue
		}
		merged = append(merged, s)
	}
	return merged
}

// Partition splits window into consecutive slotMinutes-sized spans. A
// trailing remainder shorter than one slot is dropped.
func Partition(window Span, slotMinutes int) []Span {
	if slotMinutes <= 0 || !window.IsValid() {
		return nil
	}
	var slots []Span
	for start := window.Start; int(start)+slotMinutes <= int(window.End); start += TimeOfDay(slotMinutes) {
		slots = append(slots, Span{Start: start, End: start + TimeOfDay(slotMinutes)})
	}
	return slots
}

// Remaining returns the candidates that do not overlap any claimed span.
// A candidate straddling a claim boundary is excluded in full.
func Remaining(candidates, claimed []Span) []Span {
	var open []Span
	for _, c := range candidates {
		blocked := false
		for _, cl := range claimed {
			if c.Overlaps(cl) {
				blocked = true
				break
			}
		}
		if !blocked {
			open = append(open, c)
		}
	}
	return open
}
