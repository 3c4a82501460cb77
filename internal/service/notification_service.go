package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nestegg/backend/internal/logger"
	"github.com/nestegg/backend/internal/model"
	"github.com/nestegg/backend/pkg/datetime"
	"github.com/nestegg/backend/pkg/money"
)

// paymentDueWatchDays are the exact days-until-due values that produce a
// reminder. Overdue goals do not re-fire; the day-zero reminder already
// covered them.
var paymentDueWatchDays = []int{7, 2, 1, 0}

// milestonePercents are the celebrated progress marks. 100 is absent on
// purpose: full funding is the completion transition, not a milestone.
var milestonePercents = []int{25, 50, 75}

// NotificationRepositoryInterface defines the contract for notification data access.
type NotificationRepositoryInterface interface {
	Create(ctx context.Context, n *model.Notification) error
	List(ctx context.Context, userID uuid.UUID, limit int, unreadOnly bool) ([]model.Notification, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
}

// GoalReader is the read-only slice of goal storage the detectors need.
type GoalReader interface {
	ListActive(ctx context.Context, userID uuid.UUID) ([]model.Goal, error)
	ListAllActive(ctx context.Context) ([]model.Goal, error)
}

// UserReader resolves notification preferences.
type UserReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
}

// EmailSender delivers a single message. Implementations must not panic;
// errors are logged and swallowed by the caller.
type EmailSender interface {
	Send(to, subject, body string) error
}

// NotificationService detects goal events and records them as dashboard
// notifications and best-effort emails. Every detector is idempotent: it
// deduplicates against the user's full notification history, read and unread,
// so re-running a check never produces duplicates.
type NotificationService struct {
	repo   NotificationRepositoryInterface
	goals  GoalReader
	users  UserReader
	mailer EmailSender
	today  func() datetime.Date
}

func NewNotificationService(repo NotificationRepositoryInterface, goals GoalReader, users UserReader, mailer EmailSender) *NotificationService {
	return &NotificationService{
		repo:   repo,
		goals:  goals,
		users:  users,
		mailer: mailer,
		today:  datetime.Today,
	}
}

// List returns the user's notifications.
func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, limit int, unreadOnly bool) ([]model.Notification, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.repo.List(ctx, userID, limit, unreadOnly)
}

func (s *NotificationService) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	return s.repo.MarkRead(ctx, id, userID)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllRead(ctx, userID)
}

// CheckUser runs the payment-due and milestone detectors over the user's
// active goals. The dashboard calls this on load; the cron sweep calls it for
// every user. Returns the number of notifications created.
func (s *NotificationService) CheckUser(ctx context.Context, userID uuid.UUID) (int, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("loading user %s: %w", userID, err)
	}
	if !user.DashboardNotifications {
		return 0, nil
	}

	goals, err := s.goals.ListActive(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("listing goals for %s: %w", userID, err)
	}

	return s.checkGoals(ctx, user, goals)
}

// RunDailySweep runs the detectors for every user with active goals. Redundant
// with the dashboard-load check on purpose; both paths deduplicate the same way.
func (s *NotificationService) RunDailySweep(ctx context.Context) (int, error) {
	goals, err := s.goals.ListAllActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing active goals: %w", err)
	}

	byUser := make(map[uuid.UUID][]model.Goal)
	for _, g := range goals {
		byUser[g.UserID] = append(byUser[g.UserID], g)
	}

	created := 0
	for userID, userGoals := range byUser {
		user, err := s.users.GetByID(ctx, userID)
		if err != nil {
			logger.Error("reminder sweep: loading user failed", "user_id", userID, "error", err)
			continue
		}
		if !user.DashboardNotifications {
			continue
		}
		n, err := s.checkGoals(ctx, user, userGoals)
		if err != nil {
			logger.Error("reminder sweep: goal check failed", "user_id", userID, "error", err)
			continue
		}
		created += n
	}
	return created, nil
}

func (s *NotificationService) checkGoals(ctx context.Context, user *model.User, goals []model.Goal) (int, error) {
	// One history load serves every dedup check in this run.
	history, err := s.repo.List(ctx, user.ID, 0, false)
	if err != nil {
		return 0, fmt.Errorf("loading notification history: %w", err)
	}

	created := 0
	for i := range goals {
		goal := &goals[i]
		if n := s.checkPaymentDue(ctx, user, goal, history); n != nil {
			history = append(history, *n)
			created++
		}
		if n := s.checkMilestone(ctx, user, goal, history); n != nil {
			history = append(history, *n)
			created++
		}
	}
	return created, nil
}

// checkPaymentDue fires a reminder when the goal's due date is exactly 7, 2,
// 1 or 0 days away and no reminder with the same day phrase exists yet.
func (s *NotificationService) checkPaymentDue(ctx context.Context, user *model.User, goal *model.Goal, history []model.Notification) *model.Notification {
	if goal.NextDueDate == nil {
		return nil
	}

	days := s.today().DaysUntil(*goal.NextDueDate)
	watched := false
	for _, d := range paymentDueWatchDays {
		if days == d {
			watched = true
			break
		}
	}
	if !watched {
		return nil
	}

	phrase := duePhrase(days)
	for _, n := range history {
		if n.Type == model.NotificationPaymentDue && sameGoal(n.GoalID, goal.ID) && strings.Contains(n.Message, phrase) {
			return nil
		}
	}

	n := &model.Notification{
		UserID:  user.ID,
		Type:    model.NotificationPaymentDue,
		Title:   "Payment Due Soon",
		Message: fmt.Sprintf("Your %s contribution for '%s' is %s.", goal.Frequency, goal.Name, phrase),
		GoalID:  &goal.ID,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		logger.Error("creating payment-due notification failed", "goal_id", goal.ID, "error", err)
		return nil
	}

	s.sendEmail(user, n.Title, n.Message)
	return n
}

// checkMilestone fires when progress sits inside a one-point band above a
// milestone mark. At most one milestone notification per goal per check.
func (s *NotificationService) checkMilestone(ctx context.Context, user *model.User, goal *model.Goal, history []model.Notification) *model.Notification {
	percent := ComputeProgress(goal, s.today()).PercentComplete

	for _, m := range milestonePercents {
		mark := decimal.NewFromInt(int64(m))
		if percent.LessThan(mark) || percent.GreaterThanOrEqual(mark.Add(decimal.NewFromInt(1))) {
			continue
		}

		phrase := fmt.Sprintf("%d%%", m)
		duplicate := false
		for _, n := range history {
			if n.Type == model.NotificationMilestone && sameGoal(n.GoalID, goal.ID) && strings.Contains(n.Message, phrase) {
				duplicate = true
				break
			}
		}
		if duplicate {
			return nil
		}

		n := &model.Notification{
			UserID:  user.ID,
			Type:    model.NotificationMilestone,
			Title:   "Milestone Reached",
			Message: fmt.Sprintf("You have saved %s of your goal '%s'. Keep it up!", phrase, goal.Name),
			GoalID:  &goal.ID,
		}
		if err := s.repo.Create(ctx, n); err != nil {
			logger.Error("creating milestone notification failed", "goal_id", goal.ID, "error", err)
			return nil
		}

		s.sendEmail(user, n.Title, n.Message)
		return n
	}
	return nil
}

// MilestoneReached implements GoalEventNotifier for the deposit path.
func (s *NotificationService) MilestoneReached(ctx context.Context, goal *model.Goal) {
	user, err := s.users.GetByID(ctx, goal.UserID)
	if err != nil {
		logger.Error("milestone event: loading user failed", "user_id", goal.UserID, "error", err)
		return
	}
	if !user.DashboardNotifications {
		return
	}

	history, err := s.repo.List(ctx, user.ID, 0, false)
	if err != nil {
		logger.Error("milestone event: loading history failed", "user_id", user.ID, "error", err)
		return
	}
	s.checkMilestone(ctx, user, goal, history)
}

// GoalCompleted implements GoalEventNotifier. The orchestrator only calls
// this for the request that performed the completion transition, so no
// history dedup is needed.
func (s *NotificationService) GoalCompleted(ctx context.Context, goal *model.Goal) {
	user, err := s.users.GetByID(ctx, goal.UserID)
	if err != nil {
		logger.Error("completion event: loading user failed", "user_id", goal.UserID, "error", err)
		return
	}

	message := fmt.Sprintf("Congratulations! You reached your goal '%s' (%s saved).", goal.Name, money.Format(goal.SavedAmount))
	if user.DashboardNotifications {
		n := &model.Notification{
			UserID:  user.ID,
			Type:    model.NotificationGoalCompleted,
			Title:   "Goal Completed",
			Message: message,
			GoalID:  &goal.ID,
		}
		if err := s.repo.Create(ctx, n); err != nil {
			logger.Error("creating completion notification failed", "goal_id", goal.ID, "error", err)
		}
	}

	s.sendEmail(user, "Goal Completed", message)
}

// sendEmail is best-effort: failures are logged and never propagated.
func (s *NotificationService) sendEmail(user *model.User, subject, body string) {
	if s.mailer == nil || !user.EmailNotifications {
		return
	}
	if err := s.mailer.Send(user.Email, subject, body); err != nil {
		logger.Warn("sending notification email failed", "user_id", user.ID, "error", err)
	}
}

func duePhrase(days int) string {
	switch days {
	case 0:
		return "due today"
	case 1:
		return "due in 1 day"
	default:
		return fmt.Sprintf("due in %d days", days)
	}
}

func sameGoal(id *uuid.UUID, goalID uuid.UUID) bool {
	return id != nil && *id == goalID
}
