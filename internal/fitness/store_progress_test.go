package fitness

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_GetUserStats(t *testing.T) {
	ctx := context.Background()
	store := NewStoreWithSampleData()

	stats, err := store.GetUserStats(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 15, stats.TotalWorkouts)
	assert.Equal(t, 750, stats.TotalWorkoutMinutes)
	assert.Equal(t, 3, stats.StreakDays)
	require.NotNil(t, stats.Weight)
	assert.Equal(t, 180.0, *stats.Weight)

	_, err = store.GetUserStats(ctx, 555)
	assert.ErrorIs(t, err, ErrStatsNotFound)
}

func TestStore_CreateProgressLog(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	user, err := store.CreateUser(ctx, CreateUserParams{
		Email: "alex@example.com", Username: "alex", PasswordHash: "h",
	})
	require.NoError(t, err)

	logDate := time.Date(2024, 5, 10, 15, 42, 11, 0, time.UTC)
	log, err := store.CreateProgressLog(ctx, user.ID, ProgressLogParams{
		LogDate: logDate,
		Weight:  floatp(180),
		Notes:   "first weigh-in",
		Measurements: map[string]float64{
			"chest": 41.5,
			"waist": 33,
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, log.ID)
	assert.Equal(t, user.ID, log.UserID)
	assert.False(t, log.CreatedAt.IsZero())

	// the log date is kept date-only
	assert.Equal(t, time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC), log.LogDate)

	// weight flows into the stats, body fat stays untouched
	stats, err := store.GetUserStats(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, stats.Weight)
	assert.Equal(t, 180.0, *stats.Weight)
	assert.Nil(t, stats.BodyFatPercentage)

	// a later log without weight does not erase the known weight
	_, err = store.CreateProgressLog(ctx, user.ID, ProgressLogParams{
		LogDate:           logDate.AddDate(0, 0, 7),
		BodyFatPercentage: floatp(17.5),
	})
	require.NoError(t, err)

	stats, err = store.GetUserStats(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, stats.Weight)
	assert.Equal(t, 180.0, *stats.Weight)
	require.NotNil(t, stats.BodyFatPercentage)
	assert.Equal(t, 17.5, *stats.BodyFatPercentage)
}

func TestStore_ListUserProgressLogs(t *testing.T) {
	ctx := context.Background()
	store := NewStoreWithSampleData()

	logs, err := store.ListUserProgressLogs(ctx, 1)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, 1, logs[0].ID)
	assert.Equal(t, "Feeling stronger this week", logs[0].Notes)

	logs, err = store.ListUserProgressLogs(ctx, 555)
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestStore_GetAndDeleteProgressLog(t *testing.T) {
	ctx := context.Background()
	store := NewStoreWithSampleData()

	log, err := store.GetProgressLog(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, log.UserID)
	assert.Equal(t, 22.0, log.Measurements["thighs"])

	statsBefore, err := store.GetUserStats(ctx, 2)
	require.NoError(t, err)

	require.NoError(t, store.DeleteProgressLog(ctx, 2))
	_, err = store.GetProgressLog(ctx, 2)
	assert.ErrorIs(t, err, ErrProgressLogNotFound)

	// stats synced from the log earlier keep their values
	statsAfter, err := store.GetUserStats(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, statsBefore.Weight, statsAfter.Weight)
	assert.Equal(t, statsBefore.BodyFatPercentage, statsAfter.BodyFatPercentage)

	assert.ErrorIs(t, store.DeleteProgressLog(ctx, 2), ErrProgressLogNotFound)
}
