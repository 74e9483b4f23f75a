package exercises

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

//go:generate mockgen -source=$GOFILE -destination=exercises_mocks_test.go -package=exercises_test

type exercisesRepo interface {
	CreateExercise(ctx context.Context, createdBy int, params fitness.ExerciseParams) (*fitness.Exercise, error)
	GetExercise(ctx context.Context, id int) (*fitness.Exercise, error)
	ListExercises(ctx context.Context) ([]fitness.Exercise, error)
	UpdateExercise(ctx context.Context, id int, params fitness.ExerciseParams) (*fitness.Exercise, error)
	DeleteExercise(ctx context.Context, id int) error
}

type Handler struct {
	repo exercisesRepo
}

func NewHandler(repo exercisesRepo) *Handler {
	return &Handler{
		repo: repo,
	}
}

func (handler *Handler) SetupRoutes(mainRouter *mux.Router) {
	exercisesRouter := mainRouter.PathPrefix("/exercises").Subrouter()
	// the muscle-group route has to come before the catch-all {id} one
	exercisesRouter.HandleFunc("/muscle-group/{muscleGroup}", handler.handleListByMuscleGroup).
		Methods("GET", "OPTIONS").Name("exercises-by-muscle-group")
	exercisesRouter.HandleFunc("", handler.handleList).Methods("GET", "OPTIONS").Name("list-exercises")
	exercisesRouter.HandleFunc("", handler.handleAdd).Methods("POST", "OPTIONS").Name("new-exercise")
	exercisesRouter.HandleFunc("/{id}", handler.handleGet).Methods("GET", "OPTIONS").Name("get-exercise")
	exercisesRouter.HandleFunc("/{id}", handler.handleUpdate).Methods("PUT", "OPTIONS").Name("update-exercise")
	exercisesRouter.HandleFunc("/{id}", handler.handleDelete).Methods("DELETE", "OPTIONS").Name("delete-exercise")
}

type exerciseRequest struct {
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	MuscleGroups    []string `json:"muscleGroups"`
	EquipmentNeeded string   `json:"equipmentNeeded"`
}

func (req *exerciseRequest) toParams() (fitness.ExerciseParams, error) {
	if req.Name == "" {
		return fitness.ExerciseParams{}, errors.New("error, exercise name empty")
	}
	muscleGroups := make([]fitness.MuscleGroup, 0, len(req.MuscleGroups))
	for _, mg := range req.MuscleGroups {
		muscleGroup := fitness.MuscleGroup(mg)
		if !muscleGroup.IsValid() {
			return fitness.ExerciseParams{}, fmt.Errorf("error, unknown muscle group: %s", mg)
		}
		muscleGroups = append(muscleGroups, muscleGroup)
	}
	return fitness.ExerciseParams{
		Name:            req.Name,
		Description:     req.Description,
		MuscleGroups:    muscleGroups,
		EquipmentNeeded: req.EquipmentNeeded,
	}, nil
}

func (handler *Handler) handleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.new")
	defer span.End()

	user, ok := auth.UserFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	var req exerciseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("new exercise, unmarshal json params: %s", err)
		http.Error(w, "add exercise failed", http.StatusBadRequest)
		return
	}

	params, err := req.toParams()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	exercise, err := handler.repo.CreateExercise(ctx, user.ID, params)
	if err != nil {
		log.Errorf("failed to add new exercise [%s]: %s", params.Name, err)
		http.Error(w, "error, failed to add new exercise", http.StatusInternalServerError)
		return
	}

	log.Debugf("new exercise added: [%d] %s", exercise.ID, exercise.Name)

	exerciseJson, err := json.Marshal(exercise)
	if err != nil {
		log.Errorf("failed to marshal new exercise: %s", err)
		http.Error(w, "error, failed to add new exercise", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, exerciseJson, http.StatusCreated)
}

func (handler *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.get")
	defer span.End()

	id, err := exerciseIDFromRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	exercise, err := handler.repo.GetExercise(ctx, id)
	if err != nil {
		if errors.Is(err, fitness.ErrExerciseNotFound) {
			http.Error(w, "exercise not found", http.StatusNotFound)
			return
		}
		log.Errorf("get exercise %d: %s", id, err)
		http.Error(w, "failed to get exercise", http.StatusInternalServerError)
		return
	}

	exerciseJson, err := json.Marshal(exercise)
	if err != nil {
		log.Errorf("failed to marshal exercise: %s", err)
		http.Error(w, "failed to get exercise", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, exerciseJson)
}

func (handler *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.list")
	defer span.End()

	var filterGroup *fitness.MuscleGroup
	if mg := r.URL.Query().Get("muscle_group"); mg != "" {
		muscleGroup := fitness.MuscleGroup(mg)
		if !muscleGroup.IsValid() {
			http.Error(w, fmt.Sprintf("error, unknown muscle group: %s", mg), http.StatusBadRequest)
			return
		}
		filterGroup = &muscleGroup
	}

	handler.writeExercises(ctx, w, filterGroup)
}

func (handler *Handler) handleListByMuscleGroup(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.listByMuscleGroup")
	defer span.End()

	muscleGroup := fitness.MuscleGroup(mux.Vars(r)["muscleGroup"])
	if !muscleGroup.IsValid() {
		http.Error(w, fmt.Sprintf("error, unknown muscle group: %s", muscleGroup), http.StatusBadRequest)
		return
	}

	handler.writeExercises(ctx, w, &muscleGroup)
}

func (handler *Handler) writeExercises(ctx context.Context, w http.ResponseWriter, muscleGroup *fitness.MuscleGroup) {
	exercises, err := handler.repo.ListExercises(ctx)
	if err != nil {
		log.Errorf("list exercises: %s", err)
		http.Error(w, "failed to list exercises", http.StatusInternalServerError)
		return
	}

	if muscleGroup != nil {
		filtered := make([]fitness.Exercise, 0, len(exercises))
		for _, exercise := range exercises {
			for _, mg := range exercise.MuscleGroups {
				if mg == *muscleGroup {
					filtered = append(filtered, exercise)
					break
				}
			}
		}
		exercises = filtered
	}

	exercisesJson, err := json.Marshal(exercises)
	if err != nil {
		log.Errorf("list exercises, marshal: %s", err)
		http.Error(w, "failed to list exercises", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, exercisesJson)
}

func (handler *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.update")
	defer span.End()

	user, ok := auth.UserFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	id, err := exerciseIDFromRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var req exerciseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("update exercise, unmarshal json params: %s", err)
		http.Error(w, "update exercise failed", http.StatusBadRequest)
		return
	}

	params, err := req.toParams()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if !handler.callerMayModify(ctx, w, id, user) {
		return
	}

	exercise, err := handler.repo.UpdateExercise(ctx, id, params)
	if err != nil {
		if errors.Is(err, fitness.ErrExerciseNotFound) {
			http.Error(w, "exercise not found", http.StatusNotFound)
			return
		}
		log.Errorf("update exercise %d: %s", id, err)
		http.Error(w, "update exercise failed", http.StatusInternalServerError)
		return
	}

	exerciseJson, err := json.Marshal(exercise)
	if err != nil {
		log.Errorf("update exercise, marshal: %s", err)
		http.Error(w, "update exercise failed", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, exerciseJson)
}

func (handler *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.delete")
	defer span.End()

	user, ok := auth.UserFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	id, err := exerciseIDFromRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if !handler.callerMayModify(ctx, w, id, user) {
		return
	}

	if err := handler.repo.DeleteExercise(ctx, id); err != nil {
		switch {
		case errors.Is(err, fitness.ErrExerciseNotFound):
			http.Error(w, "exercise not found", http.StatusNotFound)
		case errors.Is(err, fitness.ErrExerciseInUse):
			http.Error(w, "exercise is used in one or more workout sets", http.StatusBadRequest)
		default:
			log.Errorf("delete exercise %d: %s", id, err)
			http.Error(w, "delete exercise failed", http.StatusInternalServerError)
		}
		return
	}

	log.Debugf("exercise %d deleted by user %d", id, user.ID)
	w.WriteHeader(http.StatusNoContent)
}

// callerMayModify answers whether the caller can touch the exercise and
// writes the error response when not. Exercises without a creator are
// fair game for everybody.
func (handler *Handler) callerMayModify(ctx context.Context, w http.ResponseWriter, id int, user *fitness.User) bool {
	exercise, err := handler.repo.GetExercise(ctx, id)
	if err != nil {
		if errors.Is(err, fitness.ErrExerciseNotFound) {
			http.Error(w, "exercise not found", http.StatusNotFound)
			return false
		}
		log.Errorf("get exercise %d: %s", id, err)
		http.Error(w, "failed to get exercise", http.StatusInternalServerError)
		return false
	}

	if exercise.CreatedBy != 0 && exercise.CreatedBy != user.ID {
		http.Error(w, "not allowed to modify this exercise", http.StatusForbidden)
		return false
	}
	return true
}

func exerciseIDFromRequest(r *http.Request) (int, error) {
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
