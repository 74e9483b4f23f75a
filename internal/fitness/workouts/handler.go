package workouts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/justuscbyok/fitnesstracker/internal/auth"
	"github.com/justuscbyok/fitnesstracker/internal/fitness"
	"github.com/justuscbyok/fitnesstracker/internal/telemetry/metrics"
	"github.com/justuscbyok/fitnesstracker/internal/telemetry/tracing"
	"github.com/justuscbyok/fitnesstracker/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=workouts_mocks_test.go -package=workouts_test

type workoutsRepo interface {
	CreateWorkout(ctx context.Context, ownerID int, params fitness.WorkoutParams) (*fitness.WorkoutDetail, error)
	GetWorkout(ctx context.Context, id int) (*fitness.WorkoutDetail, error)
	ListWorkouts(ctx context.Context, filter fitness.WorkoutFilter) ([]fitness.Workout, error)
	ListUserWorkouts(ctx context.Context, userID int) ([]fitness.Workout, error)
	UpdateWorkout(ctx context.Context, id int, params fitness.WorkoutParams) (*fitness.WorkoutDetail, error)
	DeleteWorkout(ctx context.Context, id int) error
}

// dateLayout is what the from_date and to_date query params use.
const dateLayout = "2006-01-02"

type Handler struct {
	repo    workoutsRepo
	metrics *metrics.Manager
}

func NewHandler(repo workoutsRepo, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		repo:    repo,
		metrics: metricsManager,
	}
}

func (handler *Handler) SetupRoutes(mainRouter *mux.Router) {
	workoutsRouter := mainRouter.PathPrefix("/workouts").Subrouter()
	// fixed-path routes have to come before the catch-all {id} ones
	workoutsRouter.HandleFunc("/my", handler.handleListMy).Methods("GET", "OPTIONS").Name("my-workouts")
	workoutsRouter.HandleFunc("/category/{category}", handler.handleListByCategory).
		Methods("GET", "OPTIONS").Name("workouts-by-category")
	workoutsRouter.HandleFunc("", handler.handleList).Methods("GET", "OPTIONS").Name("list-workouts")
	workoutsRouter.HandleFunc("", handler.handleAdd).Methods("POST", "OPTIONS").Name("new-workout")
	workoutsRouter.HandleFunc("/{id}", handler.handleGet).Methods("GET", "OPTIONS").Name("get-workout")
	workoutsRouter.HandleFunc("/{id}", handler.handleUpdate).Methods("PUT", "OPTIONS").Name("update-workout")
	workoutsRouter.HandleFunc("/{id}", handler.handleDelete).Methods("DELETE", "OPTIONS").Name("delete-workout")
}

type exerciseSetRequest struct {
	ExerciseID      int      `json:"exerciseId"`
	Reps            *int     `json:"reps"`
	Weight          *float64 `json:"weight"`
	DurationSeconds *int     `json:"durationSeconds"`
	Distance        *float64 `json:"distance"`
	Notes           string   `json:"notes"`
}

type workoutRequest struct {
	Title           string               `json:"title"`
	Description     string               `json:"description"`
	Category        string               `json:"category"`
	DurationMinutes int                  `json:"durationMinutes"`
	CaloriesBurned  *int                 `json:"caloriesBurned"`
	Notes           string               `json:"notes"`
	ExerciseSets    []exerciseSetRequest `json:"exerciseSets"`
}

func (req *workoutRequest) toParams() (fitness.WorkoutParams, error) {
	if req.Title == "" {
		return fitness.WorkoutParams{}, errors.New("error, workout title empty")
	}
	if req.DurationMinutes <= 0 {
		return fitness.WorkoutParams{}, errors.New("error, workout duration must be positive")
	}
	category := fitness.WorkoutCategory(req.Category)
	if !category.IsValid() {
		return fitness.WorkoutParams{}, fmt.Errorf("error, unknown workout category: %s", req.Category)
	}

	sets := make([]fitness.ExerciseSetParams, 0, len(req.ExerciseSets))
	for _, set := range req.ExerciseSets {
		sets = append(sets, fitness.ExerciseSetParams{
			ExerciseID:      set.ExerciseID,
			Reps:            set.Reps,
			Weight:          set.Weight,
			DurationSeconds: set.DurationSeconds,
			Distance:        set.Distance,
			Notes:           set.Notes,
		})
	}

	return fitness.WorkoutParams{
		Title:           req.Title,
		Description:     req.Description,
		Category:        category,
		DurationMinutes: req.DurationMinutes,
		CaloriesBurned:  req.CaloriesBurned,
		Notes:           req.Notes,
		ExerciseSets:    sets,
	}, nil
}

func (handler *Handler) handleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.new")
	defer span.End()

	user, ok := auth.UserFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	var req workoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("new workout, unmarshal json params: %s", err)
		http.Error(w, "add workout failed", http.StatusBadRequest)
		return
	}

	params, err := req.toParams()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	workout, err := handler.repo.CreateWorkout(ctx, user.ID, params)
	if err != nil {
		if errors.Is(err, fitness.ErrExerciseNotFound) {
			http.Error(w, "error, a set references an unknown exercise", http.StatusBadRequest)
			return
		}
		log.Errorf("failed to add new workout [%s] for user %d: %s", params.Title, user.ID, err)
		http.Error(w, "error, failed to add new workout", http.StatusInternalServerError)
		return
	}

	handler.metrics.CounterWorkouts.Inc()
	log.Debugf("new workout added: [%d] %s, %d sets", workout.ID, workout.Title, len(workout.ExerciseSets))

	workoutJson, err := json.Marshal(workout)
	if err != nil {
		log.Errorf("failed to marshal new workout: %s", err)
		http.Error(w, "error, failed to add new workout", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, workoutJson, http.StatusCreated)
}

func (handler *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.get")
	defer span.End()

	id, err := workoutIDFromRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	workout, err := handler.repo.GetWorkout(ctx, id)
	if err != nil {
		if errors.Is(err, fitness.ErrWorkoutNotFound) {
			http.Error(w, "workout not found", http.StatusNotFound)
			return
		}
		log.Errorf("get workout %d: %s", id, err)
		http.Error(w, "failed to get workout", http.StatusInternalServerError)
		return
	}

	workoutJson, err := json.Marshal(workout)
	if err != nil {
		log.Errorf("get workout, marshal: %s", err)
		http.Error(w, "failed to get workout", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, workoutJson)
}

func (handler *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.list")
	defer span.End()

	filter, err := workoutFilterFromQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	workouts, err := handler.repo.ListWorkouts(ctx, filter)
	if err != nil {
		log.Errorf("list workouts: %s", err)
		http.Error(w, "failed to list workouts", http.StatusInternalServerError)
		return
	}

	handler.writeWorkouts(w, workouts)
}

func (handler *Handler) handleListMy(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.listMy")
	defer span.End()

	user, ok := auth.UserFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	var category fitness.WorkoutCategory
	if categoryParam := r.URL.Query().Get("category"); categoryParam != "" {
		category = fitness.WorkoutCategory(categoryParam)
		if !category.IsValid() {
			http.Error(w, fmt.Sprintf("error, unknown workout category: %s", categoryParam), http.StatusBadRequest)
			return
		}
	}

	workouts, err := handler.repo.ListUserWorkouts(ctx, user.ID)
	if err != nil {
		log.Errorf("list workouts for user %d: %s", user.ID, err)
		http.Error(w, "failed to list workouts", http.StatusInternalServerError)
		return
	}

	if category != "" {
		filtered := make([]fitness.Workout, 0, len(workouts))
		for _, workout := range workouts {
			if workout.Category == category {
				filtered = append(filtered, workout)
			}
		}
		workouts = filtered
	}

	handler.writeWorkouts(w, workouts)
}

func (handler *Handler) handleListByCategory(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.listByCategory")
	defer span.End()

	category := fitness.WorkoutCategory(mux.Vars(r)["category"])
	if !category.IsValid() {
		http.Error(w, fmt.Sprintf("error, unknown workout category: %s", category), http.StatusBadRequest)
		return
	}

	workouts, err := handler.repo.ListWorkouts(ctx, fitness.WorkoutFilter{
		Categories: []fitness.WorkoutCategory{category},
	})
	if err != nil {
		log.Errorf("list workouts by category %s: %s", category, err)
		http.Error(w, "failed to list workouts", http.StatusInternalServerError)
		return
	}

	handler.writeWorkouts(w, workouts)
}

func (handler *Handler) writeWorkouts(w http.ResponseWriter, workouts []fitness.Workout) {
	workoutsJson, err := json.Marshal(workouts)
	if err != nil {
		log.Errorf("list workouts, marshal: %s", err)
		http.Error(w, "failed to list workouts", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, workoutsJson)
}

func (handler *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.update")
	defer span.End()

	user, ok := auth.UserFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	id, err := workoutIDFromRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var req workoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("update workout, unmarshal json params: %s", err)
		http.Error(w, "update workout failed", http.StatusBadRequest)
		return
	}

	params, err := req.toParams()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if !handler.callerOwnsWorkout(ctx, w, id, user) {
		return
	}

	workout, err := handler.repo.UpdateWorkout(ctx, id, params)
	if err != nil {
		switch {
		case errors.Is(err, fitness.ErrWorkoutNotFound):
			http.Error(w, "workout not found", http.StatusNotFound)
		case errors.Is(err, fitness.ErrExerciseNotFound):
			http.Error(w, "error, a set references an unknown exercise", http.StatusBadRequest)
		default:
			log.Errorf("update workout %d: %s", id, err)
			http.Error(w, "update workout failed", http.StatusInternalServerError)
		}
		return
	}

	workoutJson, err := json.Marshal(workout)
	if err != nil {
		log.Errorf("update workout, marshal: %s", err)
		http.Error(w, "update workout failed", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, workoutJson)
}

func (handler *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.delete")
	defer span.End()

	user, ok := auth.UserFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	id, err := workoutIDFromRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if !handler.callerOwnsWorkout(ctx, w, id, user) {
		return
	}

	if err := handler.repo.DeleteWorkout(ctx, id); err != nil {
		if errors.Is(err, fitness.ErrWorkoutNotFound) {
			http.Error(w, "workout not found", http.StatusNotFound)
			return
		}
		log.Errorf("delete workout %d: %s", id, err)
		http.Error(w, "delete workout failed", http.StatusInternalServerError)
		return
	}

	log.Debugf("workout %d deleted by user %d", id, user.ID)
	w.WriteHeader(http.StatusNoContent)
}

// callerOwnsWorkout answers whether the workout belongs to the caller
// and writes the error response when not. The ownership match is
// strict, workouts without an owner cannot be modified by anybody.
func (handler *Handler) callerOwnsWorkout(ctx context.Context, w http.ResponseWriter, id int, user *fitness.User) bool {
	workout, err := handler.repo.GetWorkout(ctx, id)
	if err != nil {
		if errors.Is(err, fitness.ErrWorkoutNotFound) {
			http.Error(w, "workout not found", http.StatusNotFound)
			return false
		}
		log.Errorf("get workout %d: %s", id, err)
		http.Error(w, "failed to get workout", http.StatusInternalServerError)
		return false
	}

	if workout.UserID != user.ID {
		http.Error(w, "not allowed to modify this workout", http.StatusForbidden)
		return false
	}
	return true
}

func workoutFilterFromQuery(r *http.Request) (fitness.WorkoutFilter, error) {
	var filter fitness.WorkoutFilter
	query := r.URL.Query()

	if fromParam := query.Get("from_date"); fromParam != "" {
		from, err := time.Parse(dateLayout, fromParam)
		if err != nil {
			return fitness.WorkoutFilter{}, fmt.Errorf("error, invalid from_date: %s", fromParam)
		}
		filter.FromDate = &from
	}
	if toParam := query.Get("to_date"); toParam != "" {
		to, err := time.Parse(dateLayout, toParam)
		if err != nil {
			return fitness.WorkoutFilter{}, fmt.Errorf("error, invalid to_date: %s", toParam)
		}
		filter.ToDate = &to
	}

	if categoryParam := query.Get("category"); categoryParam != "" {
		category := fitness.WorkoutCategory(categoryParam)
		if !category.IsValid() {
			return fitness.WorkoutFilter{}, fmt.Errorf("error, unknown workout category: %s", categoryParam)
		}
		filter.Categories = []fitness.WorkoutCategory{category}
	}

	if minParam := query.Get("min_duration"); minParam != "" {
		minDuration, err := strconv.Atoi(minParam)
		if err != nil || minDuration < 0 {
			return fitness.WorkoutFilter{}, fmt.Errorf("error, invalid min_duration: %s", minParam)
		}
		filter.MinDuration = minDuration
	}
	if maxParam := query.Get("max_duration"); maxParam != "" {
		maxDuration, err := strconv.Atoi(maxParam)
		if err != nil || maxDuration < 0 {
			return fitness.WorkoutFilter{}, fmt.Errorf("error, invalid max_duration: %s", maxParam)
		}
		filter.MaxDuration = maxDuration
	}

	if mgParam := query.Get("muscle_group"); mgParam != "" {
		muscleGroup := fitness.MuscleGroup(mgParam)
		if !muscleGroup.IsValid() {
			return fitness.WorkoutFilter{}, fmt.Errorf("error, unknown muscle group: %s", mgParam)
		}
		filter.MuscleGroups = []fitness.MuscleGroup{muscleGroup}
	}

	return filter, nil
}

func workoutIDFromRequest(r *http.Request) (int, error) {
	idStr := mux.Vars(r)["id"]
	if idStr == "" {
		return 0, errors.New("error, id empty")
	}
	id, err := strconv.Atoi(idStr)
	if err != nil {
		return 0, errors.New("error, id NaN")
	}
	return id, nil
}
