package validation

import (
	"strings"

	"github.com/twinzy/goals/internal/model"
)

// Goal validates a goal creation payload.
func Goal(payload map[string]any) (*model.NewGoal, error) {
	verr := &Error{}

	goal := &model.NewGoal{
		UserID:   requiredString(payload, "userId", verr),
		Title:    requiredString(payload, "title", verr),
		Category: requiredString(payload, "category", verr),
	}
	goal.Description, _ = optionalString(payload, "description", verr)
	goal.Deadline, _ = deadline(payload, "deadline", verr)
	goal.Progress, _ = optionalInt(payload, "progress", verr)
	goal.IsCompleted, _ = optionalBool(payload, "isCompleted", verr)

	if err := verr.err(); err != nil {
		return nil, err
	}
	return goal, nil
}

// GoalUpdate validates a partial update. Only fields present in the payload
// are set; id, userId and createdAt are ignored.
func GoalUpdate(payload map[string]any) (*model.GoalUpdate, error) {
	verr := &Error{}
	update := &model.GoalUpdate{}

	if _, ok := payload["title"]; ok {
		title := requiredString(payload, "title", verr)
		update.Title = &title
	}
	if _, ok := payload["category"]; ok {
		category := requiredString(payload, "category", verr)
		update.Category = &category
	}
	if description, ok := optionalString(payload, "description", verr); ok {
		update.Description = &description
	}
	if d, present := deadline(payload, "deadline", verr); present {
		if d == nil {
			update.ClearDeadline = true
		} else {
			update.Deadline = d
		}
	}
	if progress, ok := optionalInt(payload, "progress", verr); ok {
		update.Progress = &progress
	}
	if completed, ok := optionalBool(payload, "isCompleted", verr); ok {
		update.IsCompleted = &completed
	}

	if err := verr.err(); err != nil {
		return nil, err
	}
	return update, nil
}

// CheckGoalUpdate re-applies the schema constraints to an already typed update.
func CheckGoalUpdate(update *model.GoalUpdate) error {
	if update == nil {
		return nil
	}
	verr := &Error{}
	if update.Title != nil && strings.TrimSpace(*update.Title) == "" {
		verr.add("title", "is required")
	}
	if update.Category != nil && strings.TrimSpace(*update.Category) == "" {
		verr.add("category", "is required")
	}
	return verr.err()
}
