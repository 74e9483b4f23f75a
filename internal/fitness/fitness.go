// Package fitness holds the domain model of the fitness tracker and the
// in-memory store all HTTP handlers work against.
package fitness

import "time"

type WorkoutCategory string

const (
	WorkoutCategoryStrength WorkoutCategory = "strength"
	WorkoutCategoryCardio   WorkoutCategory = "cardio"
	WorkoutCategoryMobility WorkoutCategory = "mobility"
	WorkoutCategoryHIIT     WorkoutCategory = "hiit"
	WorkoutCategoryYoga     WorkoutCategory = "yoga"
	WorkoutCategoryCrossfit WorkoutCategory = "crossfit"
)

func (wc WorkoutCategory) IsValid() bool {
	switch wc {
	case WorkoutCategoryStrength,
		WorkoutCategoryCardio,
		WorkoutCategoryMobility,
		WorkoutCategoryHIIT,
		WorkoutCategoryYoga,
		WorkoutCategoryCrossfit:
		return true
	default:
		return false
	}
}

type MuscleGroup string

const (
	MuscleGroupChest     MuscleGroup = "chest"
	MuscleGroupBack      MuscleGroup = "back"
	MuscleGroupLegs      MuscleGroup = "legs"
	MuscleGroupShoulders MuscleGroup = "shoulders"
	MuscleGroupArms      MuscleGroup = "arms"
	MuscleGroupCore      MuscleGroup = "core"
	MuscleGroupFullBody  MuscleGroup = "full_body"
)

func (mg MuscleGroup) IsValid() bool {
	switch mg {
	case MuscleGroupChest,
		MuscleGroupBack,
		MuscleGroupLegs,
		MuscleGroupShoulders,
		MuscleGroupArms,
		MuscleGroupCore,
		MuscleGroupFullBody:
		return true
	default:
		return false
	}
}

// DateOnly normalizes a timestamp to the midnight UTC of its civil date.
// Log dates and date range filters compare on that level.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneMuscleGroups(groups []MuscleGroup) []MuscleGroup {
	cloned := make([]MuscleGroup, len(groups))
	copy(cloned, groups)
	return cloned
}
