package fitness

import (
	"context"
	"sort"

	"github.com/justuscbyok/fitnesstracker/internal/telemetry/tracing"
)

// CreatePlan adds a new workout plan. Plans always start with no
// attached workouts, those are added one by one afterwards.
func (s *Store) CreatePlan(ctx context.Context, createdBy int, params WorkoutPlanParams) (plan *WorkoutPlan, err error) {
	_, span := tracing.GlobalTracer.Start(ctx, "store.createPlan")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	s.mutex.Lock()
	defer s.mutex.Unlock()

	newPlan := &WorkoutPlan{
		ID:                 s.nextPlanID,
		Name:               params.Name,
		Description:        params.Description,
		DurationWeeks:      params.DurationWeeks,
		TargetMuscleGroups: cloneMuscleGroups(params.TargetMuscleGroups),
		DifficultyLevel:    params.DifficultyLevel,
		CreatedAt:          s.now(),
		CreatedBy:          createdBy,
		Workouts:           []int{},
	}

	s.plans[newPlan.ID] = newPlan
	s.nextPlanID++

	return newPlan.clone(), nil
}

func (s *Store) GetPlan(ctx context.Context, id int) (*WorkoutPlan, error) {
	_, span := tracing.GlobalTracer.Start(ctx, "store.getPlan")
	defer span.End()

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	plan, ok := s.plans[id]
	if !ok {
		return nil, ErrPlanNotFound
	}
	return plan.clone(), nil
}

func (s *Store) ListPlans(ctx context.Context) ([]WorkoutPlan, error) {
	_, span := tracing.GlobalTracer.Start(ctx, "store.listPlans")
	defer span.End()

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	plans := make([]WorkoutPlan, 0, len(s.plans))
	for _, plan := range s.plans {
		plans = append(plans, *plan.clone())
	}
	sort.Slice(plans, func(i, j int) bool {
		return plans[i].ID < plans[j].ID
	})

	return plans, nil
}

func (s *Store) ListUserPlans(ctx context.Context, createdBy int) ([]WorkoutPlan, error) {
	_, span := tracing.GlobalTracer.Start(ctx, "store.listUserPlans")
	defer span.End()

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	plans := make([]WorkoutPlan, 0)
	for _, plan := range s.plans {
		if plan.CreatedBy == createdBy {
			plans = append(plans, *plan.clone())
		}
	}
	sort.Slice(plans, func(i, j int) bool {
		return plans[i].ID < plans[j].ID
	})

	return plans, nil
}

// UpdatePlan replaces the plan fields. Creation time, creator and the
// attached workouts are preserved.
func (s *Store) UpdatePlan(ctx context.Context, id int, params WorkoutPlanParams) (plan *WorkoutPlan, err error) {
	_, span := tracing.GlobalTracer.Start(ctx, "store.updatePlan")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	s.mutex.Lock()
	defer s.mutex.Unlock()

	current, ok := s.plans[id]
	if !ok {
		return nil, ErrPlanNotFound
	}

	current.Name = params.Name
	current.Description = params.Description
	current.DurationWeeks = params.DurationWeeks
	current.TargetMuscleGroups = cloneMuscleGroups(params.TargetMuscleGroups)
	current.DifficultyLevel = params.DifficultyLevel

	return current.clone(), nil
}

func (s *Store) DeletePlan(ctx context.Context, id int) (err error) {
	_, span := tracing.GlobalTracer.Start(ctx, "store.deletePlan")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, ok := s.plans[id]; !ok {
		return ErrPlanNotFound
	}

	delete(s.plans, id)
	return nil
}

// AddWorkoutToPlan attaches the workout to the plan. The workout has
// to exist. Adding an already attached workout changes nothing.
func (s *Store) AddWorkoutToPlan(ctx context.Context, planID, workoutID int) (plan *WorkoutPlan, err error) {
	_, span := tracing.GlobalTracer.Start(ctx, "store.addWorkoutToPlan")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	s.mutex.Lock()
	defer s.mutex.Unlock()

	current, ok := s.plans[planID]
	if !ok {
		return nil, ErrPlanNotFound
	}
	if _, ok := s.workouts[workoutID]; !ok {
		return nil, ErrWorkoutNotFound
	}

	attached := false
	for _, id := range current.Workouts {
		if id == workoutID {
			attached = true
			break
		}
	}
	if !attached {
		current.Workouts = append(current.Workouts, workoutID)
	}

	return current.clone(), nil
}

// RemoveWorkoutFromPlan detaches the workout from the plan. Removing a
// workout that is not attached changes nothing. The workout itself is
// not required to exist anymore, stale ids can be removed too.
func (s *Store) RemoveWorkoutFromPlan(ctx context.Context, planID, workoutID int) (plan *WorkoutPlan, err error) {
	_, span := tracing.GlobalTracer.Start(ctx, "store.removeWorkoutFromPlan")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	s.mutex.Lock()
	defer s.mutex.Unlock()

	current, ok := s.plans[planID]
	if !ok {
		return nil, ErrPlanNotFound
	}

	for i, id := range current.Workouts {
		if id == workoutID {
			current.Workouts = append(current.Workouts[:i], current.Workouts[i+1:]...)
			break
		}
	}

	return current.clone(), nil
}
