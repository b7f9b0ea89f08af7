package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/twinzy/goals/internal/model"
	"github.com/twinzy/goals/internal/validation"
)

const (
	userColumns = `id, uid, name, email, photo_url`
	goalColumns = `id, user_id, title, description, category, deadline, progress, is_completed, created_at`
)

// sqlStorage keeps users and goals in a relational database through sqlx.
// It follows the same fail-soft policy as the mongo backend.
type sqlStorage struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewSQLStorage(db *sqlx.DB) Storage {
	return &sqlStorage{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (s *sqlStorage) Name() string {
	return "sql"
}

func (s *sqlStorage) Close(ctx context.Context) error {
	return s.db.Close()
}

func (s *sqlStorage) User(ctx context.Context, id string) (*model.User, error) {
	return s.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (s *sqlStorage) UserByUID(ctx context.Context, uid string) (*model.User, error) {
	return s.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE uid = $1`, uid)
}

func (s *sqlStorage) getUser(ctx context.Context, query, arg string) (*model.User, error) {
	user := &model.User{}
	err := s.db.GetContext(ctx, user, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		slog.Error("failed to get user", "error", err, "key", arg)
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *sqlStorage) CreateUser(ctx context.Context, newUser *model.NewUser) (*model.User, error) {
	user := &model.User{
		ID:       uuid.New().String(),
		UID:      newUser.UID,
		Name:     newUser.Name,
		Email:    newUser.Email,
		PhotoURL: newUser.PhotoURL,
	}

	query := `INSERT INTO users (id, uid, name, email, photo_url, created_at) VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := s.db.ExecContext(ctx, query, user.ID, user.UID, user.Name, user.Email, user.PhotoURL, s.now())
	if err != nil {
		slog.Error("failed to insert user", "error", err, "uid", user.UID)
		// Unique constraint violation (works for both SQLite and PostgreSQL)
		errStr := err.Error()
		if strings.Contains(errStr, "UNIQUE constraint failed") || strings.Contains(errStr, "duplicate key value") {
			err = errors.Join(ErrDuplicateUser, err)
		}
		return nil, &CreationError{Entity: "user", Err: err}
	}

	return user, nil
}

func (s *sqlStorage) Goals(ctx context.Context, userID string) ([]*model.Goal, error) {
	goals := []*model.Goal{}
	query := `SELECT ` + goalColumns + ` FROM goals WHERE user_id = $1 ORDER BY created_at DESC, id DESC`

	err := s.db.SelectContext(ctx, &goals, query, userID)
	if err != nil {
		slog.Error("failed to select goals", "error", err, "user_id", userID)
		return []*model.Goal{}, nil
	}
	return goals, nil
}

func (s *sqlStorage) Goal(ctx context.Context, id string) (*model.Goal, error) {
	goal := &model.Goal{}
	query := `SELECT ` + goalColumns + ` FROM goals WHERE id = $1`

	err := s.db.GetContext(ctx, goal, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrGoalNotFound
	}
	if err != nil {
		slog.Error("failed to get goal", "error", err, "goal_id", id)
		return nil, ErrGoalNotFound
	}
	return goal, nil
}

func (s *sqlStorage) CreateGoal(ctx context.Context, newGoal *model.NewGoal) (*model.Goal, error) {
	now := s.now()
	goal := &model.Goal{
		ID:          uuid.New().String(),
		UserID:      newGoal.UserID,
		Title:       newGoal.Title,
		Description: newGoal.Description,
		Category:    newGoal.Category,
		Deadline:    newGoal.Deadline,
		Progress:    newGoal.Progress,
		IsCompleted: newGoal.IsCompleted,
		CreatedAt:   now,
	}

	query := `INSERT INTO goals (id, user_id, title, description, category, deadline, progress, is_completed, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := s.db.ExecContext(ctx, query,
		goal.ID,
		goal.UserID,
		goal.Title,
		goal.Description,
		goal.Category,
		goal.Deadline,
		goal.Progress,
		goal.IsCompleted,
		goal.CreatedAt,
		now,
	)
	if err != nil {
		slog.Error("failed to insert goal", "error", err, "user_id", goal.UserID)
		return nil, &CreationError{Entity: "goal", Err: err}
	}

	return goal, nil
}

func (s *sqlStorage) UpdateGoal(ctx context.Context, id string, update *model.GoalUpdate) (*model.Goal, error) {
	err := validation.CheckGoalUpdate(update)
	if err != nil {
		slog.Warn("rejected goal update", "error", err, "goal_id", id)
		return nil, ErrGoalNotFound
	}

	if update.IsEmpty() {
		return s.Goal(ctx, id)
	}

	query, args := goalUpdateQuery(id, update, s.now())
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		slog.Error("failed to update goal", "error", err, "goal_id", id)
		return nil, ErrGoalNotFound
	}

	rows, err := result.RowsAffected()
	if err != nil {
		slog.Error("failed to read affected rows", "error", err, "goal_id", id)
		return nil, ErrGoalNotFound
	}
	if rows == 0 {
		return nil, ErrGoalNotFound
	}

	return s.Goal(ctx, id)
}

// goalUpdateQuery builds an UPDATE touching only the supplied columns.
func goalUpdateQuery(id string, update *model.GoalUpdate, now time.Time) (string, []any) {
	var sets []string
	var args []any

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if update.Title != nil {
		add("title", *update.Title)
	}
	if update.Description != nil {
		add("description", *update.Description)
	}
	if update.Category != nil {
		add("category", *update.Category)
	}
	if update.ClearDeadline {
		add("deadline", nil)
	} else if update.Deadline != nil {
		add("deadline", *update.Deadline)
	}
	if update.Progress != nil {
		add("progress", *update.Progress)
	}
	if update.IsCompleted != nil {
		add("is_completed", *update.IsCompleted)
	}
	add("updated_at", now)

	args = append(args, id)
	query := fmt.Sprintf("UPDATE goals SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))
	return query, args
}

func (s *sqlStorage) DeleteGoal(ctx context.Context, id string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM goals WHERE id = $1`, id)
	if err != nil {
		slog.Error("failed to delete goal", "error", err, "goal_id", id)
		return false, nil
	}

	rows, err := result.RowsAffected()
	if err != nil {
		slog.Error("failed to read affected rows", "error", err, "goal_id", id)
		return false, nil
	}
	return rows > 0, nil
}

func (s *sqlStorage) GoalStatistics(ctx context.Context, userID string) (model.GoalStatistics, error) {
	var counts struct {
		Total      int `db:"total"`
		Completed  int `db:"completed"`
		InProgress int `db:"in_progress"`
	}

	query := `SELECT
	            COUNT(*) AS total,
	            COALESCE(SUM(CASE WHEN is_completed THEN 1 ELSE 0 END), 0) AS completed,
	            COALESCE(SUM(CASE WHEN NOT is_completed AND progress > 0 THEN 1 ELSE 0 END), 0) AS in_progress
	          FROM goals WHERE user_id = $1`

	err := s.db.GetContext(ctx, &counts, query, userID)
	if err != nil {
		slog.Error("failed to count goals", "error", err, "user_id", userID)
		return model.GoalStatistics{}, nil
	}
	return model.NewGoalStatistics(counts.Total, counts.Completed, counts.InProgress), nil
}

func (s *sqlStorage) GoalCategories(ctx context.Context, userID string) ([]model.CategoryCount, error) {
	categories := []model.CategoryCount{}
	query := `SELECT category, COUNT(*) AS count FROM goals WHERE user_id = $1
	          GROUP BY category ORDER BY count DESC, category ASC`

	err := s.db.SelectContext(ctx, &categories, query, userID)
	if err != nil {
		slog.Error("failed to group goal categories", "error", err, "user_id", userID)
		return []model.CategoryCount{}, nil
	}
	return categories, nil
}
