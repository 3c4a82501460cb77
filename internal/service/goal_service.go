package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nestegg/backend/internal/model"
	"github.com/nestegg/backend/pkg/datetime"
	"github.com/nestegg/backend/pkg/money"
)

// Service-level errors for goal lifecycle operations.
var (
	ErrGoalNameRequired = errors.New("goal name is required")
	ErrInvalidTarget    = errors.New("target amount must be greater than zero")
	ErrInvalidDate      = errors.New("target date must be in the future")
	ErrInvalidFrequency = errors.New("invalid frequency")
	ErrInvalidAmount    = errors.New("amount must be greater than zero")
	ErrGoalCompleted    = errors.New("goal is already completed")
	ErrNothingDue       = errors.New("no contribution is due")
)

// Default ledger notes, matching what the dashboard displays.
const (
	noteInitialDeposit = "Initial lump sum"
	noteDefaultDeposit = "Lump sum deposit"
)

// GoalRepositoryInterface defines the contract for goal data access.
type GoalRepositoryInterface interface {
	Create(ctx context.Context, goal *model.Goal, initialNote string) error
	GetByID(ctx context.Context, id, userID uuid.UUID) (*model.Goal, error)
	ListActive(ctx context.Context, userID uuid.UUID) ([]model.Goal, error)
	ListCompleted(ctx context.Context, userID uuid.UUID, limit int) ([]model.Goal, error)
	Update(ctx context.Context, goal *model.Goal) error
	Delete(ctx context.Context, id, userID uuid.UUID) error
	AddDeposit(ctx context.Context, id, userID uuid.UUID, amount decimal.Decimal, note string, nextDue datetime.Date) (*model.Deposit, error)
	ListDeposits(ctx context.Context, goalID, userID uuid.UUID, limit int) ([]model.Deposit, error)
	MarkCompleted(ctx context.Context, id, userID uuid.UUID) (bool, error)
}

// GoalEventNotifier receives lifecycle events from the orchestrator.
// Implementations are best-effort: they log their own failures and never
// block the money path.
type GoalEventNotifier interface {
	GoalCompleted(ctx context.Context, goal *model.Goal)
	MilestoneReached(ctx context.Context, goal *model.Goal)
}

// GoalService orchestrates the goal lifecycle: creation, deposits, scheduling
// and completion. All writes go through the repository in owner scope.
type GoalService struct {
	repo     GoalRepositoryInterface
	notifier GoalEventNotifier
	today    func() datetime.Date
}

func NewGoalService(repo GoalRepositoryInterface, notifier GoalEventNotifier) *GoalService {
	return &GoalService{
		repo:     repo,
		notifier: notifier,
		today:    datetime.Today,
	}
}

// GoalWithProgress pairs a stored goal with its derived progress view.
type GoalWithProgress struct {
	model.Goal
	Progress GoalProgress `json:"progress"`
}

type CreateGoalInput struct {
	Name          string          `json:"name"`
	TargetAmount  decimal.Decimal `json:"targetAmount"`
	TargetDate    datetime.Date   `json:"targetDate"`
	Frequency     model.Frequency `json:"frequency"`
	InitialAmount decimal.Decimal `json:"initialAmount"`
}

// Create validates the input and persists a new goal. A positive initial
// amount becomes the first ledger entry; an initial amount that already covers
// the target completes the goal immediately.
func (s *GoalService) Create(ctx context.Context, userID uuid.UUID, input CreateGoalInput) (*GoalWithProgress, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrGoalNameRequired
	}
	if input.TargetAmount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidTarget
	}
	today := s.today()
	if !input.TargetDate.After(today) {
		return nil, ErrInvalidDate
	}
	if !input.Frequency.IsValid() {
		return nil, ErrInvalidFrequency
	}
	if input.InitialAmount.IsNegative() {
		return nil, ErrInvalidAmount
	}

	nextDue := NextDueDate(today, input.Frequency)
	goal := &model.Goal{
		UserID:       userID,
		Name:         name,
		TargetAmount: money.RoundCents(input.TargetAmount),
		TargetDate:   input.TargetDate,
		Frequency:    input.Frequency,
		SavedAmount:  money.RoundCents(input.InitialAmount),
		NextDueDate:  &nextDue,
	}

	if err := s.repo.Create(ctx, goal, noteInitialDeposit); err != nil {
		return nil, fmt.Errorf("creating goal: %w", err)
	}

	s.settleAfterDeposit(ctx, goal)

	progress := ComputeProgress(goal, today)
	return &GoalWithProgress{Goal: *goal, Progress: progress}, nil
}

// Deposit appends a contribution to the goal's ledger and advances the due
// date from today. Completion and milestone events fire after the write.
func (s *GoalService) Deposit(ctx context.Context, userID, goalID uuid.UUID, amount decimal.Decimal, note string) (*GoalWithProgress, *model.Deposit, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, nil, ErrInvalidAmount
	}
	amount = money.RoundCents(amount)

	goal, err := s.repo.GetByID(ctx, goalID, userID)
	if err != nil {
		return nil, nil, err
	}
	if goal.IsCompleted() {
		return nil, nil, ErrGoalCompleted
	}

	note = strings.TrimSpace(note)
	if note == "" {
		note = noteDefaultDeposit
	}

	today := s.today()
	nextDue := NextDueDate(today, goal.Frequency)
	deposit, err := s.repo.AddDeposit(ctx, goalID, userID, amount, note, nextDue)
	if err != nil {
		return nil, nil, err
	}

	goal.SavedAmount = money.RoundCents(goal.SavedAmount.Add(amount))
	goal.NextDueDate = &nextDue

	s.settleAfterDeposit(ctx, goal)

	progress := ComputeProgress(goal, today)
	return &GoalWithProgress{Goal: *goal, Progress: progress}, deposit, nil
}

// AutoContribute deposits the recommended contribution, but only when one is
// actually due. Callers treat ErrNothingDue as a report, not a failure.
func (s *GoalService) AutoContribute(ctx context.Context, userID, goalID uuid.UUID) (*GoalWithProgress, *model.Deposit, error) {
	goal, err := s.repo.GetByID(ctx, goalID, userID)
	if err != nil {
		return nil, nil, err
	}
	if goal.IsCompleted() {
		return nil, nil, ErrGoalCompleted
	}

	progress := ComputeProgress(goal, s.today())
	if !progress.IsDue || !progress.RecommendedContribution.GreaterThan(decimal.Zero) {
		return nil, nil, ErrNothingDue
	}

	note := fmt.Sprintf("Scheduled %s contribution", goal.Frequency)
	return s.Deposit(ctx, userID, goalID, progress.RecommendedContribution, note)
}

// SkipPeriod pushes the due date one period out from today without touching
// the ledger.
func (s *GoalService) SkipPeriod(ctx context.Context, userID, goalID uuid.UUID) (*GoalWithProgress, error) {
	goal, err := s.repo.GetByID(ctx, goalID, userID)
	if err != nil {
		return nil, err
	}
	if goal.IsCompleted() {
		return nil, ErrGoalCompleted
	}

	today := s.today()
	nextDue := NextDueDate(today, goal.Frequency)
	goal.NextDueDate = &nextDue
	if err := s.repo.Update(ctx, goal); err != nil {
		return nil, err
	}

	progress := ComputeProgress(goal, today)
	return &GoalWithProgress{Goal: *goal, Progress: progress}, nil
}

type UpdateGoalInput struct {
	Name         *string          `json:"name"`
	TargetAmount *decimal.Decimal `json:"targetAmount"`
	TargetDate   *datetime.Date   `json:"targetDate"`
	Frequency    *model.Frequency `json:"frequency"`
}

// Update edits the goal's plan. The ledger and saved amount are never touched
// here; the due date restarts from today under the (possibly new) cadence.
func (s *GoalService) Update(ctx context.Context, userID, goalID uuid.UUID, input UpdateGoalInput) (*GoalWithProgress, error) {
	goal, err := s.repo.GetByID(ctx, goalID, userID)
	if err != nil {
		return nil, err
	}
	if goal.IsCompleted() {
		return nil, ErrGoalCompleted
	}

	today := s.today()
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrGoalNameRequired
		}
		goal.Name = name
	}
	if input.TargetAmount != nil {
		if input.TargetAmount.LessThanOrEqual(decimal.Zero) {
			return nil, ErrInvalidTarget
		}
		goal.TargetAmount = money.RoundCents(*input.TargetAmount)
	}
	if input.TargetDate != nil {
		if !input.TargetDate.After(today) {
			return nil, ErrInvalidDate
		}
		goal.TargetDate = *input.TargetDate
	}
	if input.Frequency != nil {
		if !input.Frequency.IsValid() {
			return nil, ErrInvalidFrequency
		}
		goal.Frequency = *input.Frequency
	}

	nextDue := NextDueDate(today, goal.Frequency)
	goal.NextDueDate = &nextDue

	if err := s.repo.Update(ctx, goal); err != nil {
		return nil, err
	}

	// Lowering the target can complete the goal without a new deposit.
	s.settleAfterDeposit(ctx, goal)

	progress := ComputeProgress(goal, today)
	return &GoalWithProgress{Goal: *goal, Progress: progress}, nil
}

// Delete removes the goal and, by cascade, its deposit ledger.
func (s *GoalService) Delete(ctx context.Context, userID, goalID uuid.UUID) error {
	return s.repo.Delete(ctx, goalID, userID)
}

// Get returns a single goal with derived progress.
func (s *GoalService) Get(ctx context.Context, userID, goalID uuid.UUID) (*GoalWithProgress, error) {
	goal, err := s.repo.GetByID(ctx, goalID, userID)
	if err != nil {
		return nil, err
	}
	progress := ComputeProgress(goal, s.today())
	return &GoalWithProgress{Goal: *goal, Progress: progress}, nil
}

// ListWithProgress returns the user's active goals with derived progress.
func (s *GoalService) ListWithProgress(ctx context.Context, userID uuid.UUID) ([]GoalWithProgress, error) {
	goals, err := s.repo.ListActive(ctx, userID)
	if err != nil {
		return nil, err
	}

	today := s.today()
	result := make([]GoalWithProgress, 0, len(goals))
	for i := range goals {
		result = append(result, GoalWithProgress{
			Goal:     goals[i],
			Progress: ComputeProgress(&goals[i], today),
		})
	}
	return result, nil
}

// ListCompleted returns the user's completed goals, most recent first.
func (s *GoalService) ListCompleted(ctx context.Context, userID uuid.UUID, limit int) ([]model.Goal, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.ListCompleted(ctx, userID, limit)
}

// ListDeposits returns the goal's ledger, newest first.
func (s *GoalService) ListDeposits(ctx context.Context, userID, goalID uuid.UUID, limit int) ([]model.Deposit, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.repo.ListDeposits(ctx, goalID, userID, limit)
}

// settleAfterDeposit runs the post-write event checks: the completion
// transition first, milestones only when the goal stays active. MarkCompleted
// is guarded in SQL, so concurrent settles produce at most one completion
// event.
func (s *GoalService) settleAfterDeposit(ctx context.Context, goal *model.Goal) {
	if goal.SavedAmount.GreaterThanOrEqual(goal.TargetAmount) {
		done, err := s.repo.MarkCompleted(ctx, goal.ID, goal.UserID)
		if err != nil || !done {
			return
		}
		now := time.Now().UTC()
		goal.CompletedAt = &now
		if s.notifier != nil {
			s.notifier.GoalCompleted(ctx, goal)
		}
		return
	}
	if s.notifier != nil && goal.SavedAmount.GreaterThan(decimal.Zero) {
		s.notifier.MilestoneReached(ctx, goal)
	}
}
