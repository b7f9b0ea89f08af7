package service

import (
	"context"
	"log/slog"

	"github.com/twinzy/goals/internal/model"
	"github.com/twinzy/goals/internal/repository"
	"github.com/twinzy/goals/internal/validation"
)

// GoalService turns request payloads into storage calls. Goals are keyed to
// the owner's uid; there is no check that a matching user record exists.
type GoalService struct {
	storage repository.Storage
}

func NewGoalService(storage repository.Storage) *GoalService {
	return &GoalService{storage: storage}
}

func (s *GoalService) Create(ctx context.Context, payload map[string]any) (*model.Goal, error) {
	newGoal, err := validation.Goal(payload)
	if err != nil {
		return nil, err
	}

	goal, err := s.storage.CreateGoal(ctx, newGoal)
	if err != nil {
		return nil, err
	}

	slog.Debug("goal created", "goal_id", goal.ID, "user_id", goal.UserID)
	return goal, nil
}

func (s *GoalService) Goals(ctx context.Context, userID string) ([]*model.Goal, error) {
	return s.storage.Goals(ctx, userID)
}

func (s *GoalService) ByID(ctx context.Context, id string) (*model.Goal, error) {
	return s.storage.Goal(ctx, id)
}

// Update applies the fields present in payload and returns the stored record.
func (s *GoalService) Update(ctx context.Context, id string, payload map[string]any) (*model.Goal, error) {
	update, err := validation.GoalUpdate(payload)
	if err != nil {
		return nil, err
	}
	return s.storage.UpdateGoal(ctx, id, update)
}

// Delete reports whether a goal was removed.
func (s *GoalService) Delete(ctx context.Context, id string) (bool, error) {
	return s.storage.DeleteGoal(ctx, id)
}

func (s *GoalService) Statistics(ctx context.Context, userID string) (model.GoalStatistics, error) {
	return s.storage.GoalStatistics(ctx, userID)
}

func (s *GoalService) Categories(ctx context.Context, userID string) ([]model.CategoryCount, error) {
	return s.storage.GoalCategories(ctx, userID)
}
