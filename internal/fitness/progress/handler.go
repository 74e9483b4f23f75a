package progress

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

//go:generate mockgen -source=$GOFILE -destination=progress_mocks_test.go -package=progress_test

type progressRepo interface {
	GetUserStats(ctx context.Context, userID int) (*fitness.UserStats, error)
	CreateProgressLog(ctx context.Context, userID int, params fitness.ProgressLogParams) (*fitness.ProgressLog, error)
	ListUserProgressLogs(ctx context.Context, userID int) ([]fitness.ProgressLog, error)
	GetProgressLog(ctx context.Context, id int) (*fitness.ProgressLog, error)
	DeleteProgressLog(ctx context.Context, id int) error
}

const dateLayout = "2006-01-02"

type Handler struct {
	repo    progressRepo
	metrics *metrics.Manager
}

func NewHandler(repo progressRepo, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		repo:    repo,
		metrics: metricsManager,
	}
}

func (handler *Handler) SetupRoutes(mainRouter *mux.Router) {
	progressRouter := mainRouter.PathPrefix("/progress").Subrouter()
	progressRouter.HandleFunc("/stats", handler.handleGetStats).Methods("GET", "OPTIONS").Name("progress-stats")
	progressRouter.HandleFunc("/streak", handler.handleGetStreak).Methods("GET", "OPTIONS").Name("progress-streak")
	progressRouter.HandleFunc("/logs", handler.handleListLogs).Methods("GET", "OPTIONS").Name("list-progress-logs")
	progressRouter.HandleFunc("/logs", handler.handleAddLog).Methods("POST", "OPTIONS").Name("new-progress-log")
	progressRouter.HandleFunc("/logs/{id}", handler.handleGetLog).Methods("GET", "OPTIONS").Name("get-progress-log")
	progressRouter.HandleFunc("/logs/{id}", handler.handleDeleteLog).Methods("DELETE", "OPTIONS").Name("delete-progress-log")
}

func (handler *Handler) handleGetStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.progress.stats")
	defer span.End()

	user, ok := auth.UserFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	stats, err := handler.repo.GetUserStats(ctx, user.ID)
	if err != nil {
		if errors.Is(err, fitness.ErrStatsNotFound) {
			http.Error(w, "user stats not found", http.StatusNotFound)
			return
		}
		log.Errorf("get stats for user %d: %s", user.ID, err)
		http.Error(w, "failed to get user stats", http.StatusInternalServerError)
		return
	}

	statsJson, err := json.Marshal(stats)
	if err != nil {
		log.Errorf("get stats, marshal: %s", err)
		http.Error(w, "failed to get user stats", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, statsJson)
}

func (handler *Handler) handleGetStreak(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.progress.streak")
	defer span.End()

	user, ok := auth.UserFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	stats, err := handler.repo.GetUserStats(ctx, user.ID)
	if err != nil {
		if errors.Is(err, fitness.ErrStatsNotFound) {
			http.Error(w, "user stats not found", http.StatusNotFound)
			return
		}
		log.Errorf("get streak for user %d: %s", user.ID, err)
		http.Error(w, "failed to get workout streak", http.StatusInternalServerError)
		return
	}

	streakJson, err := json.Marshal(fitness.Streak{
		StreakDays:      stats.StreakDays,
		LastWorkoutDate: stats.LastWorkoutDate,
	})
	if err != nil {
		log.Errorf("get streak, marshal: %s", err)
		http.Error(w, "failed to get workout streak", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, streakJson)
}

type progressLogRequest struct {
	LogDate           string             `json:"logDate"`
	Weight            *float64           `json:"weight"`
	BodyFatPercentage *float64           `json:"bodyFatPercentage"`
	Measurements      map[string]float64 `json:"measurements"`
	Notes             string             `json:"notes"`
}

func (req *progressLogRequest) toParams() (fitness.ProgressLogParams, error) {
	logDate, err := time.Parse(dateLayout, req.LogDate)
	if err != nil {
		return fitness.ProgressLogParams{}, fmt.Errorf("error, invalid log date: %q", req.LogDate)
	}
	return fitness.ProgressLogParams{
		LogDate:           logDate,
		Weight:            req.Weight,
		BodyFatPercentage: req.BodyFatPercentage,
		Measurements:      req.Measurements,
		Notes:             req.Notes,
	}, nil
}

func (handler *Handler) handleAddLog(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.progress.newLog")
	defer span.End()

	user, ok := auth.UserFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	var req progressLogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("new progress log, unmarshal json params: %s", err)
		http.Error(w, "add progress log failed", http.StatusBadRequest)
		return
	}

	params, err := req.toParams()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	progressLog, err := handler.repo.CreateProgressLog(ctx, user.ID, params)
	if err != nil {
		log.Errorf("failed to add progress log for user %d: %s", user.ID, err)
		http.Error(w, "error, failed to add progress log", http.StatusInternalServerError)
		return
	}

	handler.metrics.CounterProgressLogs.Inc()
	log.Debugf("new progress log added: [%d] user %d", progressLog.ID, user.ID)

	logJson, err := json.Marshal(progressLog)
	if err != nil {
		log.Errorf("new progress log, marshal: %s", err)
		http.Error(w, "error, failed to add progress log", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, logJson, http.StatusCreated)
}

func (handler *Handler) handleListLogs(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.progress.listLogs")
	defer span.End()

	user, ok := auth.UserFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	var fromDate, toDate *time.Time
	if fromParam := r.URL.Query().Get("from_date"); fromParam != "" {
		from, err := time.Parse(dateLayout, fromParam)
		if err != nil {
			http.Error(w, fmt.Sprintf("error, invalid from_date: %s", fromParam), http.StatusBadRequest)
			return
		}
		fromDate = &from
	}
	if toParam := r.URL.Query().Get("to_date"); toParam != "" {
		to, err := time.Parse(dateLayout, toParam)
		if err != nil {
			http.Error(w, fmt.Sprintf("error, invalid to_date: %s", toParam), http.StatusBadRequest)
			return
		}
		toDate = &to
	}

	logs, err := handler.repo.ListUserProgressLogs(ctx, user.ID)
	if err != nil {
		log.Errorf("list progress logs for user %d: %s", user.ID, err)
		http.Error(w, "failed to list progress logs", http.StatusInternalServerError)
		return
	}

	if fromDate != nil || toDate != nil {
		filtered := make([]fitness.ProgressLog, 0, len(logs))
		for _, progressLog := range logs {
			if fromDate != nil && progressLog.LogDate.Before(*fromDate) {
				continue
			}
			if toDate != nil && progressLog.LogDate.After(*toDate) {
				continue
			}
			filtered = append(filtered, progressLog)
		}
		logs = filtered
	}

	logsJson, err := json.Marshal(logs)
	if err != nil {
		log.Errorf("list progress logs, marshal: %s", err)
		http.Error(w, "failed to list progress logs", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, logsJson)
}

func (handler *Handler) handleGetLog(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.progress.getLog")
	defer span.End()

	user, ok := auth.UserFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	progressLog, ok := handler.ownedLogFromRequest(ctx, w, r, user)
	if !ok {
		return
	}

	logJson, err := json.Marshal(progressLog)
	if err != nil {
		log.Errorf("get progress log, marshal: %s", err)
		http.Error(w, "failed to get progress log", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, logJson)
}

func (handler *Handler) handleDeleteLog(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.progress.deleteLog")
	defer span.End()

	user, ok := auth.UserFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	progressLog, ok := handler.ownedLogFromRequest(ctx, w, r, user)
	if !ok {
		return
	}

	if err := handler.repo.DeleteProgressLog(ctx, progressLog.ID); err != nil {
		if errors.Is(err, fitness.ErrProgressLogNotFound) {
			http.Error(w, "progress log not found", http.StatusNotFound)
			return
		}
		log.Errorf("delete progress log %d: %s", progressLog.ID, err)
		http.Error(w, "delete progress log failed", http.StatusInternalServerError)
		return
	}

	log.Debugf("progress log %d deleted by user %d", progressLog.ID, user.ID)
	w.WriteHeader(http.StatusNoContent)
}

// ownedLogFromRequest loads the log addressed by the request and
// checks it belongs to the caller, writing the error response when
// not. The not-found check runs first, so probing other users' log ids
// yields 404 for missing ones and 403 for existing ones.
func (handler *Handler) ownedLogFromRequest(
	ctx context.Context, w http.ResponseWriter, r *http.Request, user *fitness.User,
) (*fitness.ProgressLog, bool) {
	idStr := mux.Vars(r)["id"]
	if idStr == "" {
		http.Error(w, "error, id empty", http.StatusBadRequest)
		return nil, false
	}
	id, err := strconv.Atoi(idStr)
	if err != nil {
		http.Error(w, "error, id NaN", http.StatusBadRequest)
		return nil, false
	}

	progressLog, err := handler.repo.GetProgressLog(ctx, id)
	if err != nil {
		if errors.Is(err, fitness.ErrProgressLogNotFound) {
			http.Error(w, "progress log not found", http.StatusNotFound)
			return nil, false
		}
		log.Errorf("get progress log %d: %s", id, err)
		http.Error(w, "failed to get progress log", http.StatusInternalServerError)
		return nil, false
	}

	if progressLog.UserID != user.ID {
		http.Error(w, "not allowed to access this progress log", http.StatusForbidden)
		return nil, false
	}
	return progressLog, true
}
