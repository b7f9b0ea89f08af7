package repository

import (
	"context"
	"log/slog"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/twinzy/goals/internal/model"
	"github.com/twinzy/goals/internal/validation"
)

// memoryStorage is a volatile development fallback. Ids are stringified
// counters starting at 1.
type memoryStorage struct {
	mu         sync.RWMutex
	users      map[string]*model.User
	usersByUID map[string]*model.User
	goals      map[string]*model.Goal
	nextUserID int
	nextGoalID int
	now        func() time.Time
}

func NewMemoryStorage() Storage {
	return &memoryStorage{
		users:      make(map[string]*model.User),
		usersByUID: make(map[string]*model.User),
		goals:      make(map[string]*model.Goal),
		nextUserID: 1,
		nextGoalID: 1,
		now:        time.Now,
	}
}

func (s *memoryStorage) Name() string {
	return "memory"
}

func (s *memoryStorage) Close(ctx context.Context) error {
	return nil
}

func (s *memoryStorage) User(ctx context.Context, id string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (s *memoryStorage) UserByUID(ctx context.Context, uid string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.usersByUID[uid]
	if !ok {
		return nil, ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (s *memoryStorage) CreateUser(ctx context.Context, newUser *model.NewUser) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.usersByUID[newUser.UID]; ok {
		return nil, &CreationError{Entity: "user", Err: ErrDuplicateUser}
	}
	for _, existing := range s.users {
		if existing.Email == newUser.Email {
			return nil, &CreationError{Entity: "user", Err: ErrDuplicateUser}
		}
	}

	id := strconv.Itoa(s.nextUserID)
	s.nextUserID++

	user := &model.User{
		ID:       id,
		UID:      newUser.UID,
		Name:     newUser.Name,
		Email:    newUser.Email,
		PhotoURL: newUser.PhotoURL,
	}
	s.users[id] = user
	s.usersByUID[user.UID] = user

	copied := *user
	return &copied, nil
}

func (s *memoryStorage) Goals(ctx context.Context, userID string) ([]*model.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.userGoals(userID), nil
}

// userGoals returns copies of a user's goals, most recent first.
// Callers must hold s.mu.
func (s *memoryStorage) userGoals(userID string) []*model.Goal {
	goals := []*model.Goal{}
	for _, goal := range s.goals {
		if goal.UserID == userID {
			goals = append(goals, cloneGoal(goal))
		}
	}

	sort.Slice(goals, func(i, j int) bool {
		if !goals[i].CreatedAt.Equal(goals[j].CreatedAt) {
			return goals[i].CreatedAt.After(goals[j].CreatedAt)
		}
		a, _ := strconv.Atoi(goals[i].ID)
		b, _ := strconv.Atoi(goals[j].ID)
		return a > b
	})

	return goals
}

func (s *memoryStorage) Goal(ctx context.Context, id string) (*model.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	goal, ok := s.goals[id]
	if !ok {
		return nil, ErrGoalNotFound
	}
	return cloneGoal(goal), nil
}

func (s *memoryStorage) CreateGoal(ctx context.Context, newGoal *model.NewGoal) (*model.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := strconv.Itoa(s.nextGoalID)
	s.nextGoalID++

	goal := &model.Goal{
		ID:          id,
		UserID:      newGoal.UserID,
		Title:       newGoal.Title,
		Description: newGoal.Description,
		Category:    newGoal.Category,
		Deadline:    cloneTime(newGoal.Deadline),
		Progress:    newGoal.Progress,
		IsCompleted: newGoal.IsCompleted,
		CreatedAt:   s.now(),
	}
	s.goals[id] = goal

	return cloneGoal(goal), nil
}

func (s *memoryStorage) UpdateGoal(ctx context.Context, id string, update *model.GoalUpdate) (*model.Goal, error) {
	err := validation.CheckGoalUpdate(update)
	if err != nil {
		slog.Warn("rejected goal update", "error", err, "goal_id", id)
		return nil, ErrGoalNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	goal, ok := s.goals[id]
	if !ok {
		return nil, ErrGoalNotFound
	}

	updated := cloneGoal(goal)
	update.Apply(updated)
	s.goals[id] = updated

	return cloneGoal(updated), nil
}

func (s *memoryStorage) DeleteGoal(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.goals[id]; !ok {
		return false, nil
	}
	delete(s.goals, id)
	return true, nil
}

func (s *memoryStorage) GoalStatistics(ctx context.Context, userID string) (model.GoalStatistics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total, completed, inProgress int
	for _, goal := range s.goals {
		if goal.UserID != userID {
			continue
		}
		total++
		if goal.IsCompleted {
			completed++
		}
		if goal.IsInProgress() {
			inProgress++
		}
	}

	return model.NewGoalStatistics(total, completed, inProgress), nil
}

func (s *memoryStorage) GoalCategories(ctx context.Context, userID string) ([]model.CategoryCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int)
	for _, goal := range s.goals {
		if goal.UserID == userID {
			counts[goal.Category]++
		}
	}

	categories := make([]model.CategoryCount, 0, len(counts))
	for category, count := range counts {
		categories = append(categories, model.CategoryCount{Category: category, Count: count})
	}
	sortCategories(categories)

	return categories, nil
}

// cloneGoal copies a goal including its deadline so callers never share
// memory with the stored record.
func cloneGoal(goal *model.Goal) *model.Goal {
	copied := *goal
	copied.Deadline = cloneTime(goal.Deadline)
	return &copied
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	copied := *t
	return &copied
}

// sortCategories orders by count descending, then by name.
func sortCategories(categories []model.CategoryCount) {
	sort.Slice(categories, func(i, j int) bool {
		if categories[i].Count != categories[j].Count {
			return categories[i].Count > categories[j].Count
		}
		return categories[i].Category < categories[j].Category
	})
}
