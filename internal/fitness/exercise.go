package fitness

import "errors"

var (
	ErrExerciseNotFound = errors.New("exercise not found")
	ErrExerciseInUse    = errors.New("exercise is in use")
)

type Exercise struct {
	ID              int           `json:"id"`
	Name            string        `json:"name"`
	Description     string        `json:"description,omitempty"`
	MuscleGroups    []MuscleGroup `json:"muscleGroups"`
	EquipmentNeeded string        `json:"equipmentNeeded,omitempty"`
	// id of the user who added the exercise, 0 for built-in ones
	CreatedBy int `json:"createdBy,omitempty"`
}

func (e *Exercise) clone() *Exercise {
	cloned := *e
	cloned.MuscleGroups = cloneMuscleGroups(e.MuscleGroups)
	return &cloned
}

// ExerciseParams carries the caller provided exercise fields, used both
// when adding a new exercise and when replacing an existing one.
type ExerciseParams struct {
	Name            string
	Description     string
	MuscleGroups    []MuscleGroup
	EquipmentNeeded string
}
