package handler

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nestegg/backend/internal/model"
	"github.com/nestegg/backend/internal/service"
)

// Service interfaces consumed by the handlers. Declared here so handler tests
// can substitute mocks without touching the service layer.

type UserServiceInterface interface {
	Register(ctx context.Context, input service.RegisterInput) (*service.AuthResponse, error)
	Login(ctx context.Context, input service.LoginInput) (*service.AuthResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	UpdateSettings(ctx context.Context, userID uuid.UUID, input service.UpdateSettingsInput) (*model.User, error)
}

type GoalServiceInterface interface {
	Create(ctx context.Context, userID uuid.UUID, input service.CreateGoalInput) (*service.GoalWithProgress, error)
	Get(ctx context.Context, userID, goalID uuid.UUID) (*service.GoalWithProgress, error)
	ListWithProgress(ctx context.Context, userID uuid.UUID) ([]service.GoalWithProgress, error)
	ListCompleted(ctx context.Context, userID uuid.UUID, limit int) ([]model.Goal, error)
	Update(ctx context.Context, userID, goalID uuid.UUID, input service.UpdateGoalInput) (*service.GoalWithProgress, error)
	Delete(ctx context.Context, userID, goalID uuid.UUID) error
	Deposit(ctx context.Context, userID, goalID uuid.UUID, amount decimal.Decimal, note string) (*service.GoalWithProgress, *model.Deposit, error)
	AutoContribute(ctx context.Context, userID, goalID uuid.UUID) (*service.GoalWithProgress, *model.Deposit, error)
	SkipPeriod(ctx context.Context, userID, goalID uuid.UUID) (*service.GoalWithProgress, error)
	ListDeposits(ctx context.Context, userID, goalID uuid.UUID, limit int) ([]model.Deposit, error)
}

type NotificationServiceInterface interface {
	List(ctx context.Context, userID uuid.UUID, limit int, unreadOnly bool) ([]model.Notification, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
	CheckUser(ctx context.Context, userID uuid.UUID) (int, error)
}

type AdvisorServiceInterface interface {
	Chat(ctx context.Context, userID uuid.UUID, input service.ChatInput) (*service.ChatResponse, error)
	ConfirmGoal(ctx context.Context, userID uuid.UUID, proposal service.ProposedGoal) (*service.GoalWithProgress, error)
}
