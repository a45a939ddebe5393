package repository

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/daedal-bit/yearplan/internal/model"
)

var (
	ErrEventNotFound = errors.New("event not found")
)

type EventRepository interface {
	Create(event *model.Event) error
	ByID(eventID int64) (*model.Event, error)
	// ByGoal returns the goal's full event log in insertion order.
	ByGoal(goalID int64) ([]model.Event, error)
	Update(event *model.Event) error
	Delete(eventID int64) error
}

type eventRepository struct {
	db *sqlx.DB
}

func NewEventRepository(db *sqlx.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Create(event *model.Event) error {
	// RETURNING works on both drivers; pgx has no LastInsertId.
	query := `INSERT INTO events (goal_id, action, value, ts) VALUES ($1, $2, $3, $4) RETURNING id`

	return r.db.QueryRow(query, event.GoalID, event.Action, event.Value, event.TS).Scan(&event.ID)
}

func (r *eventRepository) ByID(eventID int64) (*model.Event, error) {
	event := &model.Event{}
	query := `SELECT * FROM events WHERE id = $1`

	err := r.db.Get(event, query, eventID)
	if err == sql.ErrNoRows {
		return nil, ErrEventNotFound
	}

	return event, err
}

func (r *eventRepository) ByGoal(goalID int64) ([]model.Event, error) {
	var events []model.Event
	query := `SELECT * FROM events WHERE goal_id = $1 ORDER BY id ASC`

	err := r.db.Select(&events, query, goalID)
	if err != nil {
		return nil, err
	}

	return events, nil
}

func (r *eventRepository) Update(event *model.Event) error {
	query := `UPDATE events SET action = $1, value = $2, ts = $3 WHERE id = $4`

	result, err := r.db.Exec(query, event.Action, event.Value, event.TS, event.ID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrEventNotFound
	}

	return nil
}

func (r *eventRepository) Delete(eventID int64) error {
	query := `DELETE FROM events WHERE id = $1`
	result, err := r.db.Exec(query, eventID)

	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrEventNotFound
	}

	return nil
}
