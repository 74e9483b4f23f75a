package plans

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/justuscbyok/fitnesstracker/internal/auth"
	"github.com/justuscbyok/fitnesstracker/internal/fitness"
	"github.com/justuscbyok/fitnesstracker/internal/telemetry/tracing"
	"github.com/justuscbyok/fitnesstracker/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=plans_mocks_test.go -package=plans_test

type plansRepo interface {
	CreatePlan(ctx context.Context, createdBy int, params fitness.WorkoutPlanParams) (*fitness.WorkoutPlan, error)
	GetPlan(ctx context.Context, id int) (*fitness.WorkoutPlan, error)
	ListPlans(ctx context.Context) ([]fitness.WorkoutPlan, error)
	ListUserPlans(ctx context.Context, createdBy int) ([]fitness.WorkoutPlan, error)
	UpdatePlan(ctx context.Context, id int, params fitness.WorkoutPlanParams) (*fitness.WorkoutPlan, error)
	DeletePlan(ctx context.Context, id int) error
	AddWorkoutToPlan(ctx context.Context, planID, workoutID int) (*fitness.WorkoutPlan, error)
	RemoveWorkoutFromPlan(ctx context.Context, planID, workoutID int) (*fitness.WorkoutPlan, error)
}

type Handler struct {
	repo plansRepo
}

func NewHandler(repo plansRepo) *Handler {
	return &Handler{
		repo: repo,
	}
}

func (handler *Handler) SetupRoutes(mainRouter *mux.Router) {
	plansRouter := mainRouter.PathPrefix("/workout-plans").Subrouter()
	plansRouter.HandleFunc("/my", handler.handleListMy).Methods("GET", "OPTIONS").Name("my-workout-plans")
	plansRouter.HandleFunc("", handler.handleList).Methods("GET", "OPTIONS").Name("list-workout-plans")
	plansRouter.HandleFunc("", handler.handleAdd).Methods("POST", "OPTIONS").Name("new-workout-plan")
	plansRouter.HandleFunc("/{id}", handler.handleGet).Methods("GET", "OPTIONS").Name("get-workout-plan")
	plansRouter.HandleFunc("/{id}", handler.handleUpdate).Methods("PUT", "OPTIONS").Name("update-workout-plan")
	plansRouter.HandleFunc("/{id}", handler.handleDelete).Methods("DELETE", "OPTIONS").Name("delete-workout-plan")
	plansRouter.HandleFunc("/{id}/workouts/{workoutID}", handler.handleAddWorkout).
		Methods("POST", "OPTIONS").Name("add-workout-to-plan")
	plansRouter.HandleFunc("/{id}/workouts/{workoutID}", handler.handleRemoveWorkout).
		Methods("DELETE", "OPTIONS").Name("remove-workout-from-plan")
}

type planRequest struct {
	Name               string   `json:"name"`
	Description        string   `json:"description"`
	DurationWeeks      int      `json:"durationWeeks"`
	TargetMuscleGroups []string `json:"targetMuscleGroups"`
	DifficultyLevel    int      `json:"difficultyLevel"`
}

func (req *planRequest) toParams() (fitness.WorkoutPlanParams, error) {
	if req.Name == "" {
		return fitness.WorkoutPlanParams{}, errors.New("error, plan name empty")
	}
	if req.DurationWeeks <= 0 {
		return fitness.WorkoutPlanParams{}, errors.New("error, plan duration must be positive")
	}
	if req.DifficultyLevel < 1 || req.DifficultyLevel > 5 {
		return fitness.WorkoutPlanParams{}, errors.New("error, difficulty level must be between 1 and 5")
	}
	muscleGroups := make([]fitness.MuscleGroup, 0, len(req.TargetMuscleGroups))
	for _, mg := range req.TargetMuscleGroups {
		muscleGroup := fitness.MuscleGroup(mg)
		if !muscleGroup.IsValid() {
			return fitness.WorkoutPlanParams{}, fmt.Errorf("error, unknown muscle group: %s", mg)
		}
		muscleGroups = append(muscleGroups, muscleGroup)
	}
	return fitness.WorkoutPlanParams{
		Name:               req.Name,
		Description:        req.Description,
		DurationWeeks:      req.DurationWeeks,
		TargetMuscleGroups: muscleGroups,
		DifficultyLevel:    req.DifficultyLevel,
	}, nil
}

func (handler *Handler) handleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.plans.new")
	defer span.End()

	user, ok := auth.UserFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	var req planRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("new workout plan, unmarshal json params: %s", err)
		http.Error(w, "add workout plan failed", http.StatusBadRequest)
		return
	}

	params, err := req.toParams()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	plan, err := handler.repo.CreatePlan(ctx, user.ID, params)
	if err != nil {
		log.Errorf("failed to add new workout plan [%s]: %s", params.Name, err)
		http.Error(w, "error, failed to add new workout plan", http.StatusInternalServerError)
		return
	}

	log.Debugf("new workout plan added: [%d] %s", plan.ID, plan.Name)
	handler.writePlan(w, plan, http.StatusCreated)
}

func (handler *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.plans.get")
	defer span.End()

	id, err := planIDFromRequest(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	plan, err := handler.repo.GetPlan(ctx, id)
	if err != nil {
		if errors.Is(err, fitness.ErrPlanNotFound) {
			http.Error(w, "workout plan not found", http.StatusNotFound)
			return
		}
		log.Errorf("get workout plan %d: %s", id, err)
		http.Error(w, "failed to get workout plan", http.StatusInternalServerError)
		return
	}

	handler.writePlan(w, plan, http.StatusOK)
}

func (handler *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.plans.list")
	defer span.End()

	plans, err := handler.repo.ListPlans(ctx)
	if err != nil {
		log.Errorf("list workout plans: %s", err)
		http.Error(w, "failed to list workout plans", http.StatusInternalServerError)
		return
	}

	handler.writePlans(w, plans)
}

func (handler *Handler) handleListMy(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.plans.listMy")
	defer span.End()

	user, ok := auth.UserFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	plans, err := handler.repo.ListUserPlans(ctx, user.ID)
	if err != nil {
		log.Errorf("list workout plans for user %d: %s", user.ID, err)
		http.Error(w, "failed to list workout plans", http.StatusInternalServerError)
		return
	}

	handler.writePlans(w, plans)
}

func (handler *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.plans.update")
	defer span.End()

	user, ok := auth.UserFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	id, err := planIDFromRequest(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var req planRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("update workout plan, unmarshal json params: %s", err)
		http.Error(w, "update workout plan failed", http.StatusBadRequest)
		return
	}

	params, err := req.toParams()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if !handler.callerOwnsPlan(ctx, w, id, user) {
		return
	}

	plan, err := handler.repo.UpdatePlan(ctx, id, params)
	if err != nil {
		if errors.Is(err, fitness.ErrPlanNotFound) {
			http.Error(w, "workout plan not found", http.StatusNotFound)
			return
		}
		log.Errorf("update workout plan %d: %s", id, err)
		http.Error(w, "update workout plan failed", http.StatusInternalServerError)
		return
	}

	handler.writePlan(w, plan, http.StatusOK)
}

func (handler *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.plans.delete")
	defer span.End()

	user, ok := auth.UserFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	id, err := planIDFromRequest(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if !handler.callerOwnsPlan(ctx, w, id, user) {
		return
	}

	if err := handler.repo.DeletePlan(ctx, id); err != nil {
		if errors.Is(err, fitness.ErrPlanNotFound) {
			http.Error(w, "workout plan not found", http.StatusNotFound)
			return
		}
		log.Errorf("delete workout plan %d: %s", id, err)
		http.Error(w, "delete workout plan failed", http.StatusInternalServerError)
		return
	}

	log.Debugf("workout plan %d deleted by user %d", id, user.ID)
	w.WriteHeader(http.StatusNoContent)
}

func (handler *Handler) handleAddWorkout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.plans.addWorkout")
	defer span.End()

	user, ok := auth.UserFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	planID, err := planIDFromRequest(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	workoutID, err := planIDFromRequest(r, "workoutID")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if !handler.callerOwnsPlan(ctx, w, planID, user) {
		return
	}

	plan, err := handler.repo.AddWorkoutToPlan(ctx, planID, workoutID)
	if err != nil {
		switch {
		case errors.Is(err, fitness.ErrPlanNotFound):
			http.Error(w, "workout plan not found", http.StatusNotFound)
		case errors.Is(err, fitness.ErrWorkoutNotFound):
			http.Error(w, "workout not found", http.StatusNotFound)
		default:
			log.Errorf("add workout %d to plan %d: %s", workoutID, planID, err)
			http.Error(w, "add workout to plan failed", http.StatusInternalServerError)
		}
		return
	}

	log.Debugf("workout %d added to plan %d", workoutID, planID)
	handler.writePlan(w, plan, http.StatusOK)
}

func (handler *Handler) handleRemoveWorkout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.plans.removeWorkout")
	defer span.End()

	user, ok := auth.UserFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	planID, err := planIDFromRequest(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	workoutID, err := planIDFromRequest(r, "workoutID")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if !handler.callerOwnsPlan(ctx, w, planID, user) {
		return
	}

	// removing a workout that is not on the plan (or gone entirely) is
	// not an error, the plan simply stays as it is
	plan, err := handler.repo.RemoveWorkoutFromPlan(ctx, planID, workoutID)
	if err != nil {
		if errors.Is(err, fitness.ErrPlanNotFound) {
			http.Error(w, "workout plan not found", http.StatusNotFound)
			return
		}
		log.Errorf("remove workout %d from plan %d: %s", workoutID, planID, err)
		http.Error(w, "remove workout from plan failed", http.StatusInternalServerError)
		return
	}

	log.Debugf("workout %d removed from plan %d", workoutID, planID)
	handler.writePlan(w, plan, http.StatusOK)
}

// callerOwnsPlan answers whether the plan belongs to the caller and
// writes the error response when not.
func (handler *Handler) callerOwnsPlan(ctx context.Context, w http.ResponseWriter, id int, user *fitness.User) bool {
	plan, err := handler.repo.GetPlan(ctx, id)
	if err != nil {
		if errors.Is(err, fitness.ErrPlanNotFound) {
			http.Error(w, "workout plan not found", http.StatusNotFound)
			return false
		}
		log.Errorf("get workout plan %d: %s", id, err)
		http.Error(w, "failed to get workout plan", http.StatusInternalServerError)
		return false
	}

	if plan.CreatedBy != user.ID {
		http.Error(w, "not allowed to modify this workout plan", http.StatusForbidden)
		return false
	}
	return true
}

func (handler *Handler) writePlan(w http.ResponseWriter, plan *fitness.WorkoutPlan, statusCode int) {
	planJson, err := json.Marshal(plan)
	if err != nil {
		log.Errorf("marshal workout plan: %s", err)
		http.Error(w, "failed to marshal workout plan", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, planJson, statusCode)
}

func (handler *Handler) writePlans(w http.ResponseWriter, plans []fitness.WorkoutPlan) {
	plansJson, err := json.Marshal(plans)
	if err != nil {
		log.Errorf("marshal workout plans: %s", err)
		http.Error(w, "failed to marshal workout plans", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, plansJson)
}

func planIDFromRequest(r *http.Request, varName string) (int, error) {
	idStr := mux.Vars(r)[varName]
	if idStr == "" {
		return 0, fmt.Errorf("error, %s empty", varName)
	}
	id, err := strconv.Atoi(idStr)
	if err != nil {
		return 0, fmt.Errorf("error, %s NaN", varName)
	}
	return id, nil
}
