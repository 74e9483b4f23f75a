package fitness

import (
	"errors"
	"time"
)

var (
	ErrProgressLogNotFound = errors.New("progress log not found")
	ErrStatsNotFound       = errors.New("user stats not found")
)

// UserStats accumulates per user workout totals and body measurements.
// Totals only ever grow, deleting a workout does not rewind them.
type UserStats struct {
	UserID              int        `json:"userId"`
	Weight              *float64   `json:"weight,omitempty"`
	Height              *float64   `json:"height,omitempty"`
	BodyFatPercentage   *float64   `json:"bodyFatPercentage,omitempty"`
	TotalWorkouts       int        `json:"totalWorkouts"`
	TotalWorkoutMinutes int        `json:"totalWorkoutMinutes"`
	StreakDays          int        `json:"streakDays"`
	LastWorkoutDate     *time.Time `json:"lastWorkoutDate,omitempty"`
	LastUpdated         time.Time  `json:"lastUpdated"`
}

func (us *UserStats) clone() *UserStats {
	cloned := *us
	cloned.Weight = clonePtr(us.Weight)
	cloned.Height = clonePtr(us.Height)
	cloned.BodyFatPercentage = clonePtr(us.BodyFatPercentage)
	cloned.LastWorkoutDate = clonePtr(us.LastWorkoutDate)
	return &cloned
}

type ProgressLog struct {
	ID                int                `json:"id"`
	UserID            int                `json:"userId"`
	LogDate           time.Time          `json:"logDate"`
	Weight            *float64           `json:"weight,omitempty"`
	BodyFatPercentage *float64           `json:"bodyFatPercentage,omitempty"`
	Notes             string             `json:"notes,omitempty"`
	Measurements      map[string]float64 `json:"measurements,omitempty"`
	CreatedAt         time.Time          `json:"createdAt"`
}

func (pl *ProgressLog) clone() *ProgressLog {
	cloned := *pl
	cloned.Weight = clonePtr(pl.Weight)
	cloned.BodyFatPercentage = clonePtr(pl.BodyFatPercentage)
	if pl.Measurements != nil {
		cloned.Measurements = make(map[string]float64, len(pl.Measurements))
		for k, v := range pl.Measurements {
			cloned.Measurements[k] = v
		}
	}
	return &cloned
}

type ProgressLogParams struct {
	LogDate           time.Time
	Weight            *float64
	BodyFatPercentage *float64
	Notes             string
	Measurements      map[string]float64
}

// Streak is the workout streak view derived from the user stats.
type Streak struct {
	StreakDays      int        `json:"streakDays"`
	LastWorkoutDate *time.Time `json:"lastWorkoutDate,omitempty"`
}
