package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/twinzy/goals/internal/model"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrGoalNotFound  = errors.New("goal not found")
	ErrDuplicateUser = errors.New("user uid or email already exists")
)

// Storage is the contract every backend satisfies. Lookups report absence
// with ErrUserNotFound/ErrGoalNotFound, and creates report failure with a
// *CreationError. The mongo and sql backends never leak a raw driver error
// from read, update, delete or aggregate calls.
type Storage interface {
	User(ctx context.Context, id string) (*model.User, error)
	UserByUID(ctx context.Context, uid string) (*model.User, error)
	CreateUser(ctx context.Context, user *model.NewUser) (*model.User, error)

	Goals(ctx context.Context, userID string) ([]*model.Goal, error)
	Goal(ctx context.Context, id string) (*model.Goal, error)
	CreateGoal(ctx context.Context, goal *model.NewGoal) (*model.Goal, error)
	UpdateGoal(ctx context.Context, id string, update *model.GoalUpdate) (*model.Goal, error)
	DeleteGoal(ctx context.Context, id string) (bool, error)

	GoalStatistics(ctx context.Context, userID string) (model.GoalStatistics, error)
	GoalCategories(ctx context.Context, userID string) ([]model.CategoryCount, error)

	// Name identifies the backend in logs and health checks.
	Name() string
	Close(ctx context.Context) error
}

// CreationError is returned when a record could not be persisted.
type CreationError struct {
	Entity string
	Err    error
}

func (e *CreationError) Error() string {
	return fmt.Sprintf("failed to create %s: %v", e.Entity, e.Err)
}

func (e *CreationError) Unwrap() error {
	return e.Err
}
