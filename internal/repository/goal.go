package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/daedal-bit/yearplan/internal/model"
)

var (
	ErrGoalNotFound = errors.New("goal not found")
)

type GoalRepository interface {
	Create(goal *model.Goal) error
	ByID(userID string, goalID int64) (*model.Goal, error)
	Goals(userID string) ([]*model.Goal, error)
	Completed(userID string) ([]*model.Goal, error)
	Update(goal *model.Goal) error
	Delete(userID string, goalID int64) error
}

type goalRepository struct {
	db *sqlx.DB
}

func NewGoalRepository(db *sqlx.DB) GoalRepository {
	return &goalRepository{db: db}
}

func (r *goalRepository) Create(goal *model.Goal) error {
	// RETURNING works on both drivers; pgx has no LastInsertId.
	query := `INSERT INTO goals (user_id, text, task_type, target, start_value, start_date, end_date, is_completed, completed_at, completed_value, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	          RETURNING id`

	return r.db.QueryRow(query,
		goal.UserID,
		goal.Text,
		goal.TaskType,
		goal.Target,
		goal.StartValue,
		goal.StartDate,
		goal.EndDate,
		goal.IsCompleted,
		goal.CompletedAt,
		goal.CompletedValue,
		goal.CreatedAt,
		goal.UpdatedAt,
	).Scan(&goal.ID)
}

func (r *goalRepository) ByID(userID string, goalID int64) (*model.Goal, error) {
	goal := &model.Goal{}
	query := `SELECT * FROM goals WHERE id = $1 AND user_id = $2`

	err := r.db.Get(goal, query, goalID, userID)
	if err == sql.ErrNoRows {
		return nil, ErrGoalNotFound
	}

	return goal, err
}

func (r *goalRepository) Goals(userID string) ([]*model.Goal, error) {
	var goals []*model.Goal
	query := `SELECT * FROM goals WHERE user_id = $1 ORDER BY id ASC`

	err := r.db.Select(&goals, query, userID)
	if err != nil {
		return nil, err
	}

	return goals, nil
}

func (r *goalRepository) Completed(userID string) ([]*model.Goal, error) {
	var goals []*model.Goal
	query := `SELECT * FROM goals WHERE user_id = $1 AND is_completed = TRUE ORDER BY completed_at DESC`

	err := r.db.Select(&goals, query, userID)
	if err != nil {
		return nil, err
	}

	return goals, nil
}

func (r *goalRepository) Update(goal *model.Goal) error {
	query := `UPDATE goals
	          SET text = $1, target = $2, start_value = $3, start_date = $4, end_date = $5,
	              is_completed = $6, completed_at = $7, completed_value = $8, updated_at = $9
	          WHERE id = $10 AND user_id = $11`

	result, err := r.db.Exec(query,
		goal.Text,
		goal.Target,
		goal.StartValue,
		goal.StartDate,
		goal.EndDate,
		goal.IsCompleted,
		goal.CompletedAt,
		goal.CompletedValue,
		time.Now(),
		goal.ID,
		goal.UserID,
	)

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

func (r *goalRepository) Delete(userID string, goalID int64) error {
	query := `DELETE FROM goals WHERE id = $1 AND user_id = $2`
	result, err := r.db.Exec(query, goalID, userID)

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
