package fitness

import (
	"context"
	"sort"

	"github.com/justuscbyok/fitnesstracker/internal/telemetry/tracing"
)

func (s *Store) CreateExercise(ctx context.Context, createdBy int, params ExerciseParams) (exercise *Exercise, err error) {
	_, span := tracing.GlobalTracer.Start(ctx, "store.createExercise")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	s.mutex.Lock()
	defer s.mutex.Unlock()

	newExercise := &Exercise{
		ID:              s.nextExerciseID,
		Name:            params.Name,
		Description:     params.Description,
		MuscleGroups:    cloneMuscleGroups(params.MuscleGroups),
		EquipmentNeeded: params.EquipmentNeeded,
		CreatedBy:       createdBy,
	}

	s.exercises[newExercise.ID] = newExercise
	s.nextExerciseID++

	return newExercise.clone(), nil
}

func (s *Store) GetExercise(ctx context.Context, id int) (*Exercise, error) {
	_, span := tracing.GlobalTracer.Start(ctx, "store.getExercise")
	defer span.End()

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	exercise, ok := s.exercises[id]
	if !ok {
		return nil, ErrExerciseNotFound
	}
	return exercise.clone(), nil
}

func (s *Store) ListExercises(ctx context.Context) ([]Exercise, error) {
	_, span := tracing.GlobalTracer.Start(ctx, "store.listExercises")
	defer span.End()

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	exercises := make([]Exercise, 0, len(s.exercises))
	for _, exercise := range s.exercises {
		exercises = append(exercises, *exercise.clone())
	}
	sort.Slice(exercises, func(i, j int) bool {
		return exercises[i].ID < exercises[j].ID
	})

	return exercises, nil
}

// UpdateExercise replaces all caller provided fields of the exercise.
// The original creator is preserved.
func (s *Store) UpdateExercise(ctx context.Context, id int, params ExerciseParams) (exercise *Exercise, err error) {
	_, span := tracing.GlobalTracer.Start(ctx, "store.updateExercise")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	s.mutex.Lock()
	defer s.mutex.Unlock()

	current, ok := s.exercises[id]
	if !ok {
		return nil, ErrExerciseNotFound
	}

	current.Name = params.Name
	current.Description = params.Description
	current.MuscleGroups = cloneMuscleGroups(params.MuscleGroups)
	current.EquipmentNeeded = params.EquipmentNeeded

	return current.clone(), nil
}

// DeleteExercise removes the exercise unless any exercise set still
// references it, in which case ErrExerciseInUse is returned.
func (s *Store) DeleteExercise(ctx context.Context, id int) (err error) {
	_, span := tracing.GlobalTracer.Start(ctx, "store.deleteExercise")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, ok := s.exercises[id]; !ok {
		return ErrExerciseNotFound
	}

	for _, set := range s.sets {
		if set.ExerciseID == id {
			return ErrExerciseInUse
		}
	}

	delete(s.exercises, id)
	return nil
}
