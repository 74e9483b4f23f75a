package fitness

import (
	"errors"
	"time"
)

var ErrPlanNotFound = errors.New("workout plan not found")

type WorkoutPlan struct {
	ID                 int           `json:"id"`
	Name               string        `json:"name"`
	Description        string        `json:"description,omitempty"`
	DurationWeeks      int           `json:"durationWeeks"`
	TargetMuscleGroups []MuscleGroup `json:"targetMuscleGroups"`
	DifficultyLevel    int           `json:"difficultyLevel"`
	CreatedAt          time.Time     `json:"createdAt"`
	CreatedBy          int           `json:"createdBy"`
	// ids of the workouts attached to the plan, no duplicates
	Workouts []int `json:"workouts"`
}

func (p *WorkoutPlan) clone() *WorkoutPlan {
	cloned := *p
	cloned.TargetMuscleGroups = cloneMuscleGroups(p.TargetMuscleGroups)
	cloned.Workouts = make([]int, len(p.Workouts))
	copy(cloned.Workouts, p.Workouts)
	return &cloned
}

type WorkoutPlanParams struct {
	Name               string
	Description        string
	DurationWeeks      int
	TargetMuscleGroups []MuscleGroup
	DifficultyLevel    int
}
