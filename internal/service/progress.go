package service

import (
	"github.com/shopspring/decimal"

	"github.com/nestegg/backend/internal/model"
	"github.com/nestegg/backend/pkg/datetime"
	"github.com/nestegg/backend/pkg/money"
)

var oneHundred = decimal.NewFromInt(100)

// GoalProgress is the derived view of a goal's standing. It is computed on
// every read and never persisted, so it can never drift from the ledger.
type GoalProgress struct {
	Remaining               decimal.Decimal `json:"remaining"`
	PercentComplete         decimal.Decimal `json:"percentComplete"`
	DaysLeft                int             `json:"daysLeft"`
	PeriodsLeft             int             `json:"periodsLeft"`
	RecommendedContribution decimal.Decimal `json:"recommendedContribution"`
	IsDue                   bool            `json:"isDue"`
}

// NextDueDate returns the next contribution date for the given cadence,
// counted from the reference date. Callers pass today: the clock restarts from
// the moment of the triggering action, not from the previous due date.
func NextDueDate(from datetime.Date, freq model.Frequency) datetime.Date {
	return from.AddDays(freq.PeriodDays())
}

// ComputeProgress derives the goal's progress as of the given day.
// Pure and deterministic: same goal and same day always yield the same result.
func ComputeProgress(goal *model.Goal, today datetime.Date) GoalProgress {
	remaining := money.RoundCents(goal.TargetAmount.Sub(goal.SavedAmount))
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}

	var percent decimal.Decimal
	if goal.TargetAmount.LessThanOrEqual(decimal.Zero) {
		percent = oneHundred
	} else {
		percent = money.RoundCents(goal.SavedAmount.Div(goal.TargetAmount).Mul(oneHundred))
		if percent.GreaterThan(oneHundred) {
			percent = oneHundred
		}
	}

	daysLeft := today.DaysUntil(goal.TargetDate)
	if daysLeft < 0 {
		daysLeft = 0
	}

	period := goal.Frequency.PeriodDays()
	periodsLeft := 0
	if daysLeft > 0 {
		periodsLeft = (daysLeft + period - 1) / period
	}

	recommended := remaining
	if periodsLeft > 0 {
		recommended = money.RoundCents(remaining.Div(decimal.NewFromInt(int64(periodsLeft))))
	}

	isDue := goal.NextDueDate != nil && !goal.NextDueDate.After(today)

	return GoalProgress{
		Remaining:               remaining,
		PercentComplete:         percent,
		DaysLeft:                daysLeft,
		PeriodsLeft:             periodsLeft,
		RecommendedContribution: recommended,
		IsDue:                   isDue,
	}
}
