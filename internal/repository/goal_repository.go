package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/nestegg/backend/internal/apperror"
	"github.com/nestegg/backend/internal/model"
	"github.com/nestegg/backend/pkg/datetime"
)

var ErrGoalNotFound = apperror.NotFound("goal")

type GoalRepository struct {
	db *sqlx.DB
}

func NewGoalRepository(db *sqlx.DB) *GoalRepository {
	return &GoalRepository{db: db}
}

// Create inserts the goal and, when goal.SavedAmount is positive, the initial
// deposit ledger row in the same transaction so the sum invariant holds from
// the first write.
func (r *GoalRepository) Create(ctx context.Context, goal *model.Goal, initialNote string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	goal.ID = uuid.New()
	query := `
		INSERT INTO savings_goals (id, user_id, name, target_amount, target_date, frequency, saved_amount, next_due_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING created_at, updated_at`
	err = tx.QueryRowxContext(ctx, query,
		goal.ID, goal.UserID, goal.Name, goal.TargetAmount,
		goal.TargetDate, goal.Frequency, goal.SavedAmount, goal.NextDueDate,
	).Scan(&goal.CreatedAt, &goal.UpdatedAt)
	if err != nil {
		return err
	}

	if goal.SavedAmount.GreaterThan(decimal.Zero) {
		depositQuery := `
			INSERT INTO goal_deposits (id, goal_id, amount, note, created_at)
			VALUES ($1, $2, $3, $4, NOW())`
		if _, err := tx.ExecContext(ctx, depositQuery, uuid.New(), goal.ID, goal.SavedAmount, initialNote); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *GoalRepository) GetByID(ctx context.Context, id, userID uuid.UUID) (*model.Goal, error) {
	var goal model.Goal
	query := `SELECT * FROM savings_goals WHERE id = $1 AND user_id = $2`
	err := r.db.GetContext(ctx, &goal, query, id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrGoalNotFound
	}
	return &goal, err
}

func (r *GoalRepository) ListActive(ctx context.Context, userID uuid.UUID) ([]model.Goal, error) {
	var goals []model.Goal
	query := `SELECT * FROM savings_goals WHERE user_id = $1 AND completed_at IS NULL ORDER BY target_date ASC, created_at DESC`
	err := r.db.SelectContext(ctx, &goals, query, userID)
	return goals, err
}

func (r *GoalRepository) ListCompleted(ctx context.Context, userID uuid.UUID, limit int) ([]model.Goal, error) {
	var goals []model.Goal
	query := `SELECT * FROM savings_goals WHERE user_id = $1 AND completed_at IS NOT NULL ORDER BY completed_at DESC LIMIT $2`
	err := r.db.SelectContext(ctx, &goals, query, userID, limit)
	return goals, err
}

// ListAllActive returns every user's active goals, for the daily reminder sweep.
func (r *GoalRepository) ListAllActive(ctx context.Context) ([]model.Goal, error) {
	var goals []model.Goal
	query := `SELECT * FROM savings_goals WHERE completed_at IS NULL ORDER BY user_id, target_date ASC`
	err := r.db.SelectContext(ctx, &goals, query)
	return goals, err
}

// Update writes the editable fields only. SavedAmount and the deposit ledger
// are never touched here.
func (r *GoalRepository) Update(ctx context.Context, goal *model.Goal) error {
	query := `
		UPDATE savings_goals
		SET name = $2, target_amount = $3, target_date = $4, frequency = $5, next_due_date = $6, updated_at = NOW()
		WHERE id = $1 AND user_id = $7
		RETURNING updated_at`
	err := r.db.QueryRowxContext(ctx, query,
		goal.ID, goal.Name, goal.TargetAmount, goal.TargetDate,
		goal.Frequency, goal.NextDueDate, goal.UserID,
	).Scan(&goal.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrGoalNotFound
	}
	return err
}

func (r *GoalRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	query := `DELETE FROM savings_goals WHERE id = $1 AND user_id = $2`
	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrGoalNotFound
	}
	return nil
}

// AddDeposit appends a ledger row and applies the matching relative increment
// to saved_amount in one transaction. nextDue is written alongside because a
// deposit always resets the contribution clock.
func (r *GoalRepository) AddDeposit(ctx context.Context, id, userID uuid.UUID, amount decimal.Decimal, note string, nextDue datetime.Date) (*model.Deposit, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	query := `
		UPDATE savings_goals
		SET saved_amount = saved_amount + $3, next_due_date = $4, updated_at = NOW()
		WHERE id = $1 AND user_id = $2`
	result, err := tx.ExecContext(ctx, query, id, userID, amount, nextDue)
	if err != nil {
		return nil, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, ErrGoalNotFound
	}

	deposit := &model.Deposit{
		ID:     uuid.New(),
		GoalID: id,
		Amount: amount,
		Note:   note,
	}
	depositQuery := `
		INSERT INTO goal_deposits (id, goal_id, amount, note, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING created_at`
	if err := tx.QueryRowxContext(ctx, depositQuery, deposit.ID, deposit.GoalID, deposit.Amount, deposit.Note).Scan(&deposit.CreatedAt); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return deposit, nil
}

func (r *GoalRepository) ListDeposits(ctx context.Context, goalID, userID uuid.UUID, limit int) ([]model.Deposit, error) {
	var deposits []model.Deposit
	query := `
		SELECT d.* FROM goal_deposits d
		JOIN savings_goals g ON g.id = d.goal_id
		WHERE d.goal_id = $1 AND g.user_id = $2
		ORDER BY d.created_at DESC
		LIMIT $3`
	err := r.db.SelectContext(ctx, &deposits, query, goalID, userID, limit)
	return deposits, err
}

// MarkCompleted flips the goal into its terminal state. The guard makes the
// call idempotent and refuses goals that have not actually reached the target.
// Returns true only for the call that performed the transition.
func (r *GoalRepository) MarkCompleted(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	query := `
		UPDATE savings_goals
		SET completed_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND user_id = $2 AND completed_at IS NULL AND saved_amount >= target_amount`
	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}
