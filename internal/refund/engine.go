// Package refund decides the monetary outcome of a cancellation. The policy
// is evaluated exactly once, at cancellation time, and the outcome is
// recorded immutably; later policy changes never rewrite past cancellations.
package refund

import "time"

const (
	OutcomeFullRefund = "full_refund"
	OutcomeForfeited  = "forfeited"
)

type Outcome struct {
	RefundAmount  int64 `json:"refund_amount"`
	PenaltyAmount int64 `json:"penalty_amount"`
}

func (o Outcome) Kind() string {
	if o.RefundAmount > 0 {
		return OutcomeFullRefund
	}
	return OutcomeForfeited
}

// Evaluate applies the cancellation window: a request at or before
// earliestStart minus windowHours refunds the full deposit; any later
// request forfeits it. The boundary itself still refunds.
func Evaluate(depositAmount int64, windowHours int, earliestStart, requestedAt time.Time) Outcome {
	cutoff := earliestStart.Add(-time.Duration(windowHours) * time.Hour)
	if !requestedAt.After(cutoff) {
		return Outcome{RefundAmount: depositAmount, PenaltyAmount: 0}
	}
	return Outcome{RefundAmount: 0, PenaltyAmount: depositAmount}
}
