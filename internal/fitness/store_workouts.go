package fitness

import (
	"context"
	"sort"
	"time"

	"github.com/justuscbyok/fitnesstracker/internal/telemetry/tracing"
)

// CreateWorkout adds a workout with its exercise sets, owned by the
// given user, and bumps the owner's stats. Every set has to reference
// an existing exercise, otherwise nothing is written at all.
func (s *Store) CreateWorkout(ctx context.Context, ownerID int, params WorkoutParams) (detail *WorkoutDetail, err error) {
	_, span := tracing.GlobalTracer.Start(ctx, "store.createWorkout")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, setParams := range params.ExerciseSets {
		if _, ok := s.exercises[setParams.ExerciseID]; !ok {
			return nil, ErrExerciseNotFound
		}
	}

	now := s.now()
	workout := &Workout{
		ID:              s.nextWorkoutID,
		Title:           params.Title,
		Description:     params.Description,
		Category:        params.Category,
		DurationMinutes: params.DurationMinutes,
		CaloriesBurned:  clonePtr(params.CaloriesBurned),
		Notes:           params.Notes,
		CreatedAt:       now,
		UserID:          ownerID,
	}

	s.workouts[workout.ID] = workout
	s.workoutSets[workout.ID] = []int{}
	s.nextWorkoutID++

	for _, setParams := range params.ExerciseSets {
		s.addExerciseSet(workout.ID, setParams)
	}

	s.applyWorkoutToStats(ownerID, params.DurationMinutes, now)

	return s.workoutDetail(workout), nil
}

// addExerciseSet must be called with the write lock held.
func (s *Store) addExerciseSet(workoutID int, params ExerciseSetParams) {
	set := &ExerciseSet{
		ID:              s.nextSetID,
		ExerciseID:      params.ExerciseID,
		Reps:            clonePtr(params.Reps),
		Weight:          clonePtr(params.Weight),
		DurationSeconds: clonePtr(params.DurationSeconds),
		Distance:        clonePtr(params.Distance),
		Notes:           params.Notes,
	}
	s.sets[set.ID] = set
	s.workoutSets[workoutID] = append(s.workoutSets[workoutID], set.ID)
	s.nextSetID++
}

// applyWorkoutToStats must be called with the write lock held.
// The streak grows with every recorded workout, regardless of the day.
func (s *Store) applyWorkoutToStats(userID, durationMinutes int, now time.Time) {
	stats, ok := s.stats[userID]
	if !ok {
		return
	}

	stats.TotalWorkouts++
	stats.TotalWorkoutMinutes += durationMinutes
	workoutDate := DateOnly(now)
	stats.LastWorkoutDate = &workoutDate
	stats.StreakDays++
	stats.LastUpdated = now
}

// workoutDetail must be called with the lock held.
func (s *Store) workoutDetail(workout *Workout) *WorkoutDetail {
	setIDs := s.workoutSets[workout.ID]
	sets := make([]ExerciseSet, 0, len(setIDs))
	for _, setID := range setIDs {
		if set, ok := s.sets[setID]; ok {
			sets = append(sets, *set.clone())
		}
	}
	return &WorkoutDetail{
		Workout:      *workout.clone(),
		ExerciseSets: sets,
	}
}

func (s *Store) GetWorkout(ctx context.Context, id int) (*WorkoutDetail, error) {
	_, span := tracing.GlobalTracer.Start(ctx, "store.getWorkout")
	defer span.End()

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	workout, ok := s.workouts[id]
	if !ok {
		return nil, ErrWorkoutNotFound
	}
	return s.workoutDetail(workout), nil
}

// ListWorkouts returns all workouts matching the filter, ordered by id.
func (s *Store) ListWorkouts(ctx context.Context, filter WorkoutFilter) ([]Workout, error) {
	_, span := tracing.GlobalTracer.Start(ctx, "store.listWorkouts")
	defer span.End()

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	workouts := make([]Workout, 0, len(s.workouts))
	for _, workout := range s.workouts {
		if !s.workoutMatches(workout, filter) {
			continue
		}
		workouts = append(workouts, *workout.clone())
	}
	sort.Slice(workouts, func(i, j int) bool {
		return workouts[i].ID < workouts[j].ID
	})

	return workouts, nil
}

// workoutMatches must be called with the lock held.
func (s *Store) workoutMatches(workout *Workout, filter WorkoutFilter) bool {
	workoutDate := DateOnly(workout.CreatedAt)
	if filter.FromDate != nil && workoutDate.Before(*filter.FromDate) {
		return false
	}
	if filter.ToDate != nil && workoutDate.After(*filter.ToDate) {
		return false
	}

	if len(filter.Categories) > 0 {
		matched := false
		for _, category := range filter.Categories {
			if workout.Category == category {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	if filter.MinDuration > 0 && workout.DurationMinutes < filter.MinDuration {
		return false
	}
	if filter.MaxDuration > 0 && workout.DurationMinutes > filter.MaxDuration {
		return false
	}

	if len(filter.MuscleGroups) > 0 && !s.workoutTargetsMuscleGroups(workout.ID, filter.MuscleGroups) {
		return false
	}

	return true
}

// workoutTargetsMuscleGroups must be called with the lock held. It
// reports whether any exercise referenced by the workout's sets targets
// one of the given muscle groups.
func (s *Store) workoutTargetsMuscleGroups(workoutID int, groups []MuscleGroup) bool {
	for _, setID := range s.workoutSets[workoutID] {
		set, ok := s.sets[setID]
		if !ok {
			continue
		}
		exercise, ok := s.exercises[set.ExerciseID]
		if !ok {
			continue
		}
		for _, wanted := range groups {
			for _, mg := range exercise.MuscleGroups {
				if mg == wanted {
					return true
				}
			}
		}
	}
	return false
}

func (s *Store) ListUserWorkouts(ctx context.Context, userID int) ([]Workout, error) {
	_, span := tracing.GlobalTracer.Start(ctx, "store.listUserWorkouts")
	defer span.End()

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	workouts := make([]Workout, 0)
	for _, workout := range s.workouts {
		if workout.UserID == userID {
			workouts = append(workouts, *workout.clone())
		}
	}
	sort.Slice(workouts, func(i, j int) bool {
		return workouts[i].ID < workouts[j].ID
	})

	return workouts, nil
}

// UpdateWorkout replaces the workout fields, keeping the creation time
// and the owner. Exercise sets are destroyed and recreated only when
// the params carry at least one set, otherwise the old sets stay.
func (s *Store) UpdateWorkout(ctx context.Context, id int, params WorkoutParams) (detail *WorkoutDetail, err error) {
	_, span := tracing.GlobalTracer.Start(ctx, "store.updateWorkout")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	s.mutex.Lock()
	defer s.mutex.Unlock()

	workout, ok := s.workouts[id]
	if !ok {
		return nil, ErrWorkoutNotFound
	}

	// check set references before touching anything
	for _, setParams := range params.ExerciseSets {
		if _, ok := s.exercises[setParams.ExerciseID]; !ok {
			return nil, ErrExerciseNotFound
		}
	}

	workout.Title = params.Title
	workout.Description = params.Description
	workout.Category = params.Category
	workout.DurationMinutes = params.DurationMinutes
	workout.CaloriesBurned = clonePtr(params.CaloriesBurned)
	workout.Notes = params.Notes

	if len(params.ExerciseSets) > 0 {
		for _, setID := range s.workoutSets[id] {
			delete(s.sets, setID)
		}
		s.workoutSets[id] = []int{}
		for _, setParams := range params.ExerciseSets {
			s.addExerciseSet(id, setParams)
		}
	}

	return s.workoutDetail(workout), nil
}

// DeleteWorkout removes the workout together with its exercise sets.
// Plans referencing the workout keep the stale id, and the owner stats
// are not rewound.
func (s *Store) DeleteWorkout(ctx context.Context, id int) (err error) {
	_, span := tracing.GlobalTracer.Start(ctx, "store.deleteWorkout")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, ok := s.workouts[id]; !ok {
		return ErrWorkoutNotFound
	}

	for _, setID := range s.workoutSets[id] {
		delete(s.sets, setID)
	}
	delete(s.workoutSets, id)
	delete(s.workouts, id)

	return nil
}
