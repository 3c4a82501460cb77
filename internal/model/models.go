package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nestegg/backend/pkg/datetime"
)

type User struct {
	ID                     uuid.UUID `db:"id" json:"id"`
	Email                  string    `db:"email" json:"email"`
	PasswordHash           *string   `db:"password_hash" json:"-"`
	FullName               string    `db:"full_name" json:"fullName"`
	EmailNotifications     bool      `db:"email_notifications" json:"emailNotifications"`
	DashboardNotifications bool      `db:"dashboard_notifications" json:"dashboardNotifications"`
	CreatedAt              time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt              time.Time `db:"updated_at" json:"updatedAt"`
}

// Frequency is the contribution cadence of a savings goal.
type Frequency string

const (
	FrequencyWeekly   Frequency = "weekly"
	FrequencyBiweekly Frequency = "bi-weekly"
	FrequencyMonthly  Frequency = "monthly"
)

// Frequencies lists the user-selectable cadences in display order.
var Frequencies = []Frequency{FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly}

// IsValid reports whether f is one of the supported cadences.
func (f Frequency) IsValid() bool {
	switch f {
	case FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly:
		return true
	}
	return false
}

// PeriodDays maps a cadence to the approximate number of days between
// contributions. Monthly is a fixed 30 days, not calendar-month aware, so the
// same day counts feed both scheduling and the amortization math.
func (f Frequency) PeriodDays() int {
	switch f {
	case FrequencyWeekly:
		return 7
	case FrequencyBiweekly:
		return 14
	case FrequencyMonthly:
		return 30
	default:
		return 30
	}
}

// Goal is one savings target owned by a user.
// SavedAmount always equals the sum of the goal's deposits; the two are only
// ever written together inside one transaction.
type Goal struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	UserID       uuid.UUID       `db:"user_id" json:"userId"`
	Name         string          `db:"name" json:"name"`
	TargetAmount decimal.Decimal `db:"target_amount" json:"targetAmount"`
	TargetDate   datetime.Date   `db:"target_date" json:"targetDate"`
	Frequency    Frequency       `db:"frequency" json:"frequency"`
	SavedAmount  decimal.Decimal `db:"saved_amount" json:"savedAmount"`
	NextDueDate  *datetime.Date  `db:"next_due_date" json:"nextDueDate,omitempty"`
	CompletedAt  *time.Time      `db:"completed_at" json:"completedAt,omitempty"`
	CreatedAt    time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updatedAt"`
}

// IsCompleted reports whether the goal has reached its terminal state.
func (g *Goal) IsCompleted() bool {
	return g.CompletedAt != nil
}

// Deposit is one immutable ledger entry toward a goal.
type Deposit struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	GoalID    uuid.UUID       `db:"goal_id" json:"goalId"`
	Amount    decimal.Decimal `db:"amount" json:"amount"`
	Note      string          `db:"note" json:"note"`
	CreatedAt time.Time       `db:"created_at" json:"createdAt"`
}

// NotificationType identifies what kind of event a notification records.
type NotificationType string

const (
	NotificationPaymentDue    NotificationType = "payment_due"
	NotificationMilestone     NotificationType = "milestone"
	NotificationGoalCompleted NotificationType = "goal_completed"
)

type Notification struct {
	ID        uuid.UUID        `db:"id" json:"id"`
	UserID    uuid.UUID        `db:"user_id" json:"userId"`
	Type      NotificationType `db:"type" json:"type"`
	Title     string           `db:"title" json:"title"`
	Message   string           `db:"message" json:"message"`
	GoalID    *uuid.UUID       `db:"goal_id" json:"goalId,omitempty"`
	IsRead    bool             `db:"is_read" json:"isRead"`
	CreatedAt time.Time        `db:"created_at" json:"createdAt"`
}
