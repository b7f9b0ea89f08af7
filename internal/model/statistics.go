package model

import "math"

type GoalStatistics struct {
	TotalGoals      int `json:"totalGoals"`
	CompletedGoals  int `json:"completedGoals"`
	InProgressGoals int `json:"inProgressGoals"`
	CompletionRate  int `json:"completionRate"`
}

type CategoryCount struct {
	Category string `json:"category" db:"category" bson:"category"`
	Count    int    `json:"count" db:"count" bson:"count"`
}

// NewGoalStatistics derives the completion rate from the raw counts.
// The rate is 0 when there are no goals.
func NewGoalStatistics(total, completed, inProgress int) GoalStatistics {
	stats := GoalStatistics{
		TotalGoals:      total,
		CompletedGoals:  completed,
		InProgressGoals: inProgress,
	}
	if total > 0 {
		stats.CompletionRate = int(math.Round(float64(completed) / float64(total) * 100))
	}
	return stats
}

// IsInProgress reports whether a goal counts towards InProgressGoals.
func (g *Goal) IsInProgress() bool {
	return !g.IsCompleted && g.Progress > 0
}
