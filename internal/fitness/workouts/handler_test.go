package workouts_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/justuscbyok/fitnesstracker/internal/auth"
	"github.com/justuscbyok/fitnesstracker/internal/fitness"
	"github.com/justuscbyok/fitnesstracker/internal/fitness/workouts"
	"github.com/justuscbyok/fitnesstracker/internal/telemetry/metrics"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func setupWorkoutsRouterForTests(t *testing.T, store *fitness.Store) (*mux.Router, *metrics.Manager) {
	t.Helper()
	r := mux.NewRouter()
	metricsManager := metrics.NewTestManager()
	workouts.NewHandler(store, metricsManager).SetupRoutes(r)
	return r, metricsManager
}

func newAuthedRequest(user *fitness.User, method, target string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != nil {
		req = req.WithContext(auth.ContextWithUser(req.Context(), user))
	}
	return req
}

func sampleDataUser(t *testing.T, store *fitness.Store, id int) *fitness.User {
	t.Helper()
	user, err := store.GetUser(context.Background(), id)
	require.NoError(t, err)
	return user
}

func TestNewWorkoutsHandler(t *testing.T) {
	mainRouter := mux.NewRouter()
	handler := workouts.NewHandler(fitness.NewStore(), metrics.NewTestManager())
	handler.SetupRoutes(mainRouter)
	require.NotNil(t, handler)
	require.NotNil(t, mainRouter)

	for caseName, route := range map[string]struct {
		name   string
		path   string
		method string
	}{
		"my-workouts": {
			name:   "my-workouts",
			path:   "/workouts/my",
			method: "GET",
		},
		"workouts-by-category": {
			name:   "workouts-by-category",
			path:   "/workouts/category/cardio",
			method: "GET",
		},
		"list-workouts": {
			name:   "list-workouts",
			path:   "/workouts",
			method: "GET",
		},
		"new-workout": {
			name:   "new-workout",
			path:   "/workouts",
			method: "POST",
		},
		"new-workout-options": {
			name:   "new-workout",
			path:   "/workouts",
			method: "OPTIONS",
		},
		"get-workout": {
			name:   "get-workout",
			path:   "/workouts/1",
			method: "GET",
		},
		"update-workout": {
			name:   "update-workout",
			path:   "/workouts/1",
			method: "PUT",
		},
		"delete-workout": {
			name:   "delete-workout",
			path:   "/workouts/1",
			method: "DELETE",
		},
	} {
		t.Run(caseName, func(t *testing.T) {
			req, err := http.NewRequest(route.method, route.path, nil)
			require.NoError(t, err)

			routeMatch := &mux.RouteMatch{}
			route := mainRouter.Get(route.name)
			require.NotNil(t, route)
			isMatch := route.Match(req, routeMatch)
			assert.True(t, isMatch, caseName)
		})
	}
}

func TestWorkoutsHandler_Add(t *testing.T) {
	store := fitness.NewStoreWithSampleData()
	r, metricsManager := setupWorkoutsRouterForTests(t, store)
	johndoe := sampleDataUser(t, store, 1)

	workoutJson, err := json.Marshal(map[string]any{
		"title":           "Leg Day",
		"description":     "Squats and deadlifts",
		"category":        "strength",
		"durationMinutes": 40,
		"caloriesBurned":  280,
		"exerciseSets": []map[string]any{
			{"exerciseId": 2, "reps": 8, "weight": 185.0},
			{"exerciseId": 3, "reps": 5, "weight": 225.0, "notes": "New PR"},
		},
	})
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, newAuthedRequest(johndoe, "POST", "/workouts", bytes.NewReader(workoutJson)))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var created fitness.WorkoutDetail
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	assert.Equal(t, 4, created.ID)
	assert.Equal(t, "Leg Day", created.Title)
	assert.Equal(t, fitness.WorkoutCategoryStrength, created.Category)
	assert.Equal(t, johndoe.ID, created.UserID)
	assert.False(t, created.CreatedAt.IsZero())

	// sets are materialized in input order, with their own ids
	require.Len(t, created.ExerciseSets, 2)
	assert.Equal(t, 2, created.ExerciseSets[0].ExerciseID)
	assert.Equal(t, 3, created.ExerciseSets[1].ExerciseID)
	assert.NotZero(t, created.ExerciseSets[0].ID)
	assert.NotZero(t, created.ExerciseSets[1].ID)
	require.NotNil(t, created.ExerciseSets[1].Reps)
	assert.Equal(t, 5, *created.ExerciseSets[1].Reps)
	assert.Equal(t, "New PR", created.ExerciseSets[1].Notes)

	assert.InDelta(t, 1, testutil.ToFloat64(metricsManager.CounterWorkouts), 0.001)
}

func TestWorkoutsHandler_Add_UnknownExerciseRef(t *testing.T) {
	store := fitness.NewStoreWithSampleData()
	r, metricsManager := setupWorkoutsRouterForTests(t, store)
	johndoe := sampleDataUser(t, store, 1)

	workoutJson, err := json.Marshal(map[string]any{
		"title":           "Leg Day",
		"category":        "strength",
		"durationMinutes": 40,
		"exerciseSets": []map[string]any{
			{"exerciseId": 99, "reps": 8},
		},
	})
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, newAuthedRequest(johndoe, "POST", "/workouts", bytes.NewReader(workoutJson)))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "error, a set references an unknown exercise", strings.TrimSpace(rr.Body.String()))
	assert.InDelta(t, 0, testutil.ToFloat64(metricsManager.CounterWorkouts), 0.001)
}

func TestWorkoutsHandler_Add_InvalidParams(t *testing.T) {
	store := fitness.NewStoreWithSampleData()
	r, _ := setupWorkoutsRouterForTests(t, store)
	johndoe := sampleDataUser(t, store, 1)

	for caseName, tc := range map[string]struct {
		body    map[string]any
		wantErr string
	}{
		"empty-title": {
			body:    map[string]any{"category": "strength", "durationMinutes": 40},
			wantErr: "error, workout title empty",
		},
		"zero-duration": {
			body:    map[string]any{"title": "Leg Day", "category": "strength", "durationMinutes": 0},
			wantErr: "error, workout duration must be positive",
		},
		"unknown-category": {
			body:    map[string]any{"title": "Pool Time", "category": "swimming", "durationMinutes": 30},
			wantErr: "error, unknown workout category: swimming",
		},
	} {
		t.Run(caseName, func(t *testing.T) {
			bodyJson, err := json.Marshal(tc.body)
			require.NoError(t, err)

			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, newAuthedRequest(johndoe, "POST", "/workouts", bytes.NewReader(bodyJson)))
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, tc.wantErr, strings.TrimSpace(rr.Body.String()))
		})
	}
}

func TestWorkoutsHandler_Get(t *testing.T) {
	store := fitness.NewStoreWithSampleData()
	r, _ := setupWorkoutsRouterForTests(t, store)
	johndoe := sampleDataUser(t, store, 1)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, newAuthedRequest(johndoe, "GET", "/workouts/2", nil))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var detail fitness.WorkoutDetail
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &detail))
	assert.Equal(t, 2, detail.ID)
	assert.Equal(t, "Chest Day", detail.Title)
	require.Len(t, detail.ExerciseSets, 1)
	assert.Equal(t, 1, detail.ExerciseSets[0].ExerciseID)

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, newAuthedRequest(johndoe, "GET", "/workouts/99", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "workout not found", strings.TrimSpace(rr.Body.String()))

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, newAuthedRequest(johndoe, "GET", "/workouts/nan", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "error, id NaN", strings.TrimSpace(rr.Body.String()))
}

func TestWorkoutsHandler_List(t *testing.T) {
	store := fitness.NewStoreWithSampleData()
	r, _ := setupWorkoutsRouterForTests(t, store)
	johndoe := sampleDataUser(t, store, 1)

	listWorkouts := func(t *testing.T, query string) ([]fitness.Workout, *httptest.ResponseRecorder) {
		t.Helper()
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, newAuthedRequest(johndoe, "GET", "/workouts"+query, nil))
		if rr.Code != http.StatusOK {
			return nil, rr
		}
		var listed []fitness.Workout
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &listed))
		return listed, rr
	}

	workoutIDs := func(listed []fitness.Workout) []int {
		ids := make([]int, 0, len(listed))
		for _, workout := range listed {
			ids = append(ids, workout.ID)
		}
		return ids
	}

	all, _ := listWorkouts(t, "")
	assert.Len(t, all, 3)

	cardio, _ := listWorkouts(t, "?category=cardio")
	assert.Equal(t, []int{1}, workoutIDs(cardio))

	longOnes, _ := listWorkouts(t, "?min_duration=45")
	assert.Equal(t, []int{2, 3}, workoutIDs(longOnes))

	shortOnes, _ := listWorkouts(t, "?max_duration=45")
	assert.Equal(t, []int{1, 2}, workoutIDs(shortOnes))

	// workouts touch a muscle group through their sets' exercises
	core, _ := listWorkouts(t, "?muscle_group=core")
	assert.Equal(t, []int{1, 3}, workoutIDs(core))

	chest, _ := listWorkouts(t, "?muscle_group=chest")
	assert.Equal(t, []int{2}, workoutIDs(chest))

	// sample workouts are created "now", so a wide date range catches them all
	inRange, _ := listWorkouts(t, "?from_date=2000-01-01&to_date=2100-01-01")
	assert.Len(t, inRange, 3)

	longGone, _ := listWorkouts(t, "?to_date=2000-01-01")
	assert.Empty(t, longGone)

	for caseName, tc := range map[string]struct {
		query   string
		wantErr string
	}{
		"bad-from-date": {
			query:   "?from_date=13-01-2020",
			wantErr: "error, invalid from_date: 13-01-2020",
		},
		"bad-to-date": {
			query:   "?to_date=yesterday",
			wantErr: "error, invalid to_date: yesterday",
		},
		"bad-category": {
			query:   "?category=swimming",
			wantErr: "error, unknown workout category: swimming",
		},
		"bad-min-duration": {
			query:   "?min_duration=minus",
			wantErr: "error, invalid min_duration: minus",
		},
		"negative-max-duration": {
			query:   "?max_duration=-5",
			wantErr: "error, invalid max_duration: -5",
		},
		"bad-muscle-group": {
			query:   "?muscle_group=belly",
			wantErr: "error, unknown muscle group: belly",
		},
	} {
		t.Run(caseName, func(t *testing.T) {
			_, rr := listWorkouts(t, tc.query)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, tc.wantErr, strings.TrimSpace(rr.Body.String()))
		})
	}
}

func TestWorkoutsHandler_ListMy(t *testing.T) {
	store := fitness.NewStoreWithSampleData()
	r, _ := setupWorkoutsRouterForTests(t, store)
	johndoe := sampleDataUser(t, store, 1)
	janedoe := sampleDataUser(t, store, 2)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, newAuthedRequest(johndoe, "GET", "/workouts/my", nil))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var johnsWorkouts []fitness.Workout
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &johnsWorkouts))
	require.Len(t, johnsWorkouts, 1)
	assert.Equal(t, 2, johnsWorkouts[0].ID)

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, newAuthedRequest(janedoe, "GET", "/workouts/my", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var janesWorkouts []fitness.Workout
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &janesWorkouts))
	assert.Len(t, janesWorkouts, 2)

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, newAuthedRequest(janedoe, "GET", "/workouts/my?category=mobility", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var janesMobility []fitness.Workout
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &janesMobility))
	require.Len(t, janesMobility, 1)
	assert.Equal(t, 3, janesMobility[0].ID)

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, newAuthedRequest(janedoe, "GET", "/workouts/my?category=swimming", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, newAuthedRequest(nil, "GET", "/workouts/my", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestWorkoutsHandler_ListByCategory(t *testing.T) {
	store := fitness.NewStoreWithSampleData()
	r, _ := setupWorkoutsRouterForTests(t, store)
	johndoe := sampleDataUser(t, store, 1)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, newAuthedRequest(johndoe, "GET", "/workouts/category/mobility", nil))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var listed []fitness.Workout
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, 3, listed[0].ID)

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, newAuthedRequest(johndoe, "GET", "/workouts/category/swimming", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "error, unknown workout category: swimming", strings.TrimSpace(rr.Body.String()))
}

func TestWorkoutsHandler_Update(t *testing.T) {
	store := fitness.NewStoreWithSampleData()
	r, _ := setupWorkoutsRouterForTests(t, store)
	johndoe := sampleDataUser(t, store, 1)
	janedoe := sampleDataUser(t, store, 2)

	updateJson, err := json.Marshal(map[string]any{
		"title":           "Chest And Back Day",
		"category":        "strength",
		"durationMinutes": 50,
	})
	require.NoError(t, err)

	// workout 2 belongs to johndoe
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, newAuthedRequest(janedoe, "PUT", "/workouts/2", bytes.NewReader(updateJson)))
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, "not allowed to modify this workout", strings.TrimSpace(rr.Body.String()))

	// no sets in the update leaves the old ones in place
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, newAuthedRequest(johndoe, "PUT", "/workouts/2", bytes.NewReader(updateJson)))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var updated fitness.WorkoutDetail
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &updated))
	assert.Equal(t, "Chest And Back Day", updated.Title)
	assert.Equal(t, 50, updated.DurationMinutes)
	assert.Equal(t, johndoe.ID, updated.UserID)
	require.Len(t, updated.ExerciseSets, 1)
	oldSetID := updated.ExerciseSets[0].ID

	// sets in the update replace the whole old list
	updateWithSetsJson, err := json.Marshal(map[string]any{
		"title":           "Chest And Back Day",
		"category":        "strength",
		"durationMinutes": 50,
		"exerciseSets": []map[string]any{
			{"exerciseId": 1, "reps": 12, "weight": 115.0},
			{"exerciseId": 3, "reps": 8, "weight": 185.0},
		},
	})
	require.NoError(t, err)

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, newAuthedRequest(johndoe, "PUT", "/workouts/2", bytes.NewReader(updateWithSetsJson)))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &updated))
	require.Len(t, updated.ExerciseSets, 2)
	for _, set := range updated.ExerciseSets {
		assert.NotEqual(t, oldSetID, set.ID)
	}

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, newAuthedRequest(johndoe, "PUT", "/workouts/99", bytes.NewReader(updateJson)))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestWorkoutsHandler_Delete(t *testing.T) {
	store := fitness.NewStoreWithSampleData()
	r, _ := setupWorkoutsRouterForTests(t, store)
	johndoe := sampleDataUser(t, store, 1)
	janedoe := sampleDataUser(t, store, 2)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, newAuthedRequest(janedoe, "DELETE", "/workouts/2", nil))
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, newAuthedRequest(johndoe, "DELETE", "/workouts/2", nil))
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, newAuthedRequest(johndoe, "GET", "/workouts/2", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, newAuthedRequest(johndoe, "DELETE", "/workouts/99", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
