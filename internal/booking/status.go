package booking

// Status is the single authoritative lifecycle state of a booking. Any
// numeric or display-specific code lives in presentation layers, not here.
type Status string

const (
	StatusPendingPayment Status = "pending_payment"
	StatusDeposited      Status = "deposited"
	StatusConfirmed      Status = "confirmed"
	StatusCompleted      Status = "completed"
	StatusCancelled      Status = "cancelled"
	StatusExpired        Status = "expired"
	StatusPaymentFailed  Status = "payment_failed"
	StatusNoShow         Status = "no_show"
)

// transitions is the one transition table. Terminal states have no entry.
var transitions = map[Status][]Status{
	StatusPendingPayment: {StatusDeposited, StatusPaymentFailed, StatusExpired, StatusCancelled},
	StatusDeposited:      {StatusConfirmed, StatusCompleted, StatusCancelled},
	StatusConfirmed:      {StatusCompleted, StatusCancelled, StatusNoShow},
}

// ActiveStatuses mark bookings whose details block availability.
// A pending booking already holds its reservation; if it did not block the
// read view, the view and the conflict guard would disagree.
var ActiveStatuses = []Status{StatusPendingPayment, StatusDeposited, StatusConfirmed, StatusCompleted}

// HoldStatuses mark bookings whose claims the conflict guard must hold.
var HoldStatuses = []Status{StatusPendingPayment, StatusDeposited, StatusConfirmed}

func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusPendingPayment, StatusDeposited, StatusConfirmed, StatusCompleted,
		StatusCancelled, StatusExpired, StatusPaymentFailed, StatusNoShow:
		return Status(s), true
	}
	return "", false
}

func (s Status) Terminal() bool {
	_, ok := transitions[s]
	return !ok
}

func (s Status) CanTransitionTo(to Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

func (s Status) Active() bool {
	for _, a := range ActiveStatuses {
		if s == a {
			return true
		}
	}
	return false
}
