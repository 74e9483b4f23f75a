package fitness

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStoreWithSampleData(t *testing.T) {
	ctx := context.Background()
	store := NewStoreWithSampleData()

	users, err := store.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	exercises, err := store.ListExercises(ctx)
	require.NoError(t, err)
	assert.Len(t, exercises, 5)

	workouts, err := store.ListWorkouts(ctx, WorkoutFilter{})
	require.NoError(t, err)
	assert.Len(t, workouts, 3)

	plans, err := store.ListPlans(ctx)
	require.NoError(t, err)
	assert.Len(t, plans, 2)

	// id counters continue right above the seeded entities
	user, err := store.CreateUser(ctx, CreateUserParams{
		Email: "new@example.com", Username: "newuser", PasswordHash: "h",
	})
	require.NoError(t, err)
	assert.Equal(t, 3, user.ID)

	exercise, err := store.CreateExercise(ctx, user.ID, ExerciseParams{
		Name: "Pullups", MuscleGroups: []MuscleGroup{MuscleGroupBack},
	})
	require.NoError(t, err)
	assert.Equal(t, 6, exercise.ID)

	workout, err := store.CreateWorkout(ctx, user.ID, WorkoutParams{
		Title: "Back Day", Category: WorkoutCategoryStrength, DurationMinutes: 40,
		ExerciseSets: []ExerciseSetParams{{ExerciseID: exercise.ID, Reps: intp(10)}},
	})
	require.NoError(t, err)
	assert.Equal(t, 4, workout.ID)
	assert.Equal(t, 5, workout.ExerciseSets[0].ID)
}

func TestStore_InstancesAreIndependent(t *testing.T) {
	ctx := context.Background()
	first := NewStore()
	second := NewStore()

	_, err := first.CreateUser(ctx, CreateUserParams{
		Email: "alex@example.com", Username: "alex", PasswordHash: "h",
	})
	require.NoError(t, err)

	users, err := second.ListUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)

	// the same username is free in the other instance
	_, err = second.CreateUser(ctx, CreateUserParams{
		Email: "alex@example.com", Username: "alex", PasswordHash: "h",
	})
	require.NoError(t, err)
}

func TestStore_ReturnedValuesAreCopies(t *testing.T) {
	ctx := context.Background()
	store := NewStoreWithSampleData()

	exercise, err := store.GetExercise(ctx, 1)
	require.NoError(t, err)
	exercise.Name = "Tampered"
	exercise.MuscleGroups[0] = MuscleGroupLegs

	fresh, err := store.GetExercise(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Barbell Bench Press", fresh.Name)
	assert.Equal(t, MuscleGroupChest, fresh.MuscleGroups[0])

	plan, err := store.GetPlan(ctx, 1)
	require.NoError(t, err)
	plan.Workouts[0] = 555

	freshPlan, err := store.GetPlan(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, freshPlan.Workouts)

	stats, err := store.GetUserStats(ctx, 1)
	require.NoError(t, err)
	*stats.Weight = 999

	freshStats, err := store.GetUserStats(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 180.0, *freshStats.Weight)

	log, err := store.GetProgressLog(ctx, 1)
	require.NoError(t, err)
	log.Measurements["chest"] = 999

	freshLog, err := store.GetProgressLog(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 42.0, freshLog.Measurements["chest"])
}

func TestStore_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	const workers = 20

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(i int) {
			defer wg.Done()

			user, err := store.CreateUser(ctx, CreateUserParams{
				Email:        fmt.Sprintf("user%d@example.com", i),
				Username:     fmt.Sprintf("user%d", i),
				FullName:     gofakeit.Name(),
				PasswordHash: "h",
			})
			assert.NoError(t, err)

			exercise, err := store.CreateExercise(ctx, user.ID, ExerciseParams{
				Name:         fmt.Sprintf("exercise %d", i),
				MuscleGroups: []MuscleGroup{MuscleGroupCore},
			})
			assert.NoError(t, err)

			_, err = store.CreateWorkout(ctx, user.ID, WorkoutParams{
				Title:           fmt.Sprintf("workout %d", i),
				Category:        WorkoutCategoryHIIT,
				DurationMinutes: 15,
				ExerciseSets:    []ExerciseSetParams{{ExerciseID: exercise.ID, Reps: intp(10)}},
			})
			assert.NoError(t, err)

			_, err = store.ListWorkouts(ctx, WorkoutFilter{})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	users, err := store.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, workers)

	workouts, err := store.ListWorkouts(ctx, WorkoutFilter{})
	require.NoError(t, err)
	assert.Len(t, workouts, workers)

	// every id handed out exactly once
	seen := make(map[int]bool)
	for _, workout := range workouts {
		assert.False(t, seen[workout.ID])
		seen[workout.ID] = true
	}

	for _, user := range users {
		stats, err := store.GetUserStats(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, stats.TotalWorkouts)
		assert.Equal(t, 15, stats.TotalWorkoutMinutes)
	}
}
