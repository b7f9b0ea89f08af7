package model

import (
	"time"
)

type Goal struct {
	ID          string     `json:"id" db:"id"`
	UserID      string     `json:"userId" db:"user_id"`
	Title       string     `json:"title" db:"title"`
	Description string     `json:"description" db:"description"`
	Category    string     `json:"category" db:"category"`
	Deadline    *time.Time `json:"deadline" db:"deadline"`
	Progress    int        `json:"progress" db:"progress"`
	IsCompleted bool       `json:"isCompleted" db:"is_completed"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
}

// NewGoal is a validated goal creation record.
type NewGoal struct {
	UserID      string
	Title       string
	Description string
	Category    string
	Deadline    *time.Time
	Progress    int
	IsCompleted bool
}

// GoalUpdate carries the fields of a partial update. Nil pointers are left
// untouched; ClearDeadline resets the deadline to null.
type GoalUpdate struct {
	Title         *string
	Description   *string
	Category      *string
	Deadline      *time.Time
	ClearDeadline bool
	Progress      *int
	IsCompleted   *bool
}

// IsEmpty reports whether the update changes nothing.
func (u *GoalUpdate) IsEmpty() bool {
	return u == nil || (u.Title == nil && u.Description == nil && u.Category == nil &&
		u.Deadline == nil && !u.ClearDeadline && u.Progress == nil && u.IsCompleted == nil)
}

// Apply merges the update onto goal in place.
func (u *GoalUpdate) Apply(goal *Goal) {
	if u == nil {
		return
	}
	if u.Title != nil {
		goal.Title = *u.Title
	}
	if u.Description != nil {
		goal.Description = *u.Description
	}
	if u.Category != nil {
		goal.Category = *u.Category
	}
	if u.ClearDeadline {
		goal.Deadline = nil
	} else if u.Deadline != nil {
		d := *u.Deadline
		goal.Deadline = &d
	}
	if u.Progress != nil {
		goal.Progress = *u.Progress
	}
	if u.IsCompleted != nil {
		goal.IsCompleted = *u.IsCompleted
	}
}
