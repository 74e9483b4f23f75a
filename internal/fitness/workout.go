package fitness

import (
	"errors"
	"time"
)

var ErrWorkoutNotFound = errors.New("workout not found")

type Workout struct {
	ID              int             `json:"id"`
	Title           string          `json:"title"`
	Description     string          `json:"description,omitempty"`
	Category        WorkoutCategory `json:"category"`
	DurationMinutes int             `json:"durationMinutes"`
	CaloriesBurned  *int            `json:"caloriesBurned,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UserID          int             `json:"userId,omitempty"`
}

func (w *Workout) clone() *Workout {
	cloned := *w
	cloned.CaloriesBurned = clonePtr(w.CaloriesBurned)
	return &cloned
}

// ExerciseSet is a single set within a workout. A set records either
// reps and weight or duration and distance, depending on the exercise.
type ExerciseSet struct {
	ID              int      `json:"id"`
	ExerciseID      int      `json:"exerciseId"`
	Reps            *int     `json:"reps,omitempty"`
	Weight          *float64 `json:"weight,omitempty"`
	DurationSeconds *int     `json:"durationSeconds,omitempty"`
	Distance        *float64 `json:"distance,omitempty"`
	Notes           string   `json:"notes,omitempty"`
}

func (es *ExerciseSet) clone() *ExerciseSet {
	cloned := *es
	cloned.Reps = clonePtr(es.Reps)
	cloned.Weight = clonePtr(es.Weight)
	cloned.DurationSeconds = clonePtr(es.DurationSeconds)
	cloned.Distance = clonePtr(es.Distance)
	return &cloned
}

// WorkoutDetail is a workout together with its exercise sets.
type WorkoutDetail struct {
	Workout
	ExerciseSets []ExerciseSet `json:"exerciseSets"`
}

type ExerciseSetParams struct {
	ExerciseID      int
	Reps            *int
	Weight          *float64
	DurationSeconds *int
	Distance        *float64
	Notes           string
}

type WorkoutParams struct {
	Title           string
	Description     string
	Category        WorkoutCategory
	DurationMinutes int
	CaloriesBurned  *int
	Notes           string
	ExerciseSets    []ExerciseSetParams
}

// WorkoutFilter narrows down the workouts listing. Zero values mean
// no filtering on that dimension. Date filters compare calendar dates
// of the workout creation time.
type WorkoutFilter struct {
	FromDate     *time.Time
	ToDate       *time.Time
	Categories   []WorkoutCategory
	MinDuration  int
	MaxDuration  int
	MuscleGroups []MuscleGroup
}
