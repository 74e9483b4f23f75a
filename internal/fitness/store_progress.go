package fitness

import (
	"context"
	"sort"

	"github.com/justuscbyok/fitnesstracker/internal/telemetry/tracing"
)

func (s *Store) GetUserStats(ctx context.Context, userID int) (*UserStats, error) {
	_, span := tracing.GlobalTracer.Start(ctx, "store.getUserStats")
	defer span.End()

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	stats, ok := s.stats[userID]
	if !ok {
		return nil, ErrStatsNotFound
	}
	return stats.clone(), nil
}

// CreateProgressLog adds a progress log for the user. Weight and body
// fat carried by the log also overwrite the same fields on the user
// stats, when present.
func (s *Store) CreateProgressLog(ctx context.Context, userID int, params ProgressLogParams) (log *ProgressLog, err error) {
	_, span := tracing.GlobalTracer.Start(ctx, "store.createProgressLog")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	s.mutex.Lock()
	defer s.mutex.Unlock()

	newLog := &ProgressLog{
		ID:                s.nextLogID,
		UserID:            userID,
		LogDate:           DateOnly(params.LogDate),
		Weight:            clonePtr(params.Weight),
		BodyFatPercentage: clonePtr(params.BodyFatPercentage),
		Notes:             params.Notes,
	}
	if params.Measurements != nil {
		newLog.Measurements = make(map[string]float64, len(params.Measurements))
		for k, v := range params.Measurements {
			newLog.Measurements[k] = v
		}
	}
	newLog.CreatedAt = s.now()

	s.logs[newLog.ID] = newLog
	s.nextLogID++

	if stats, ok := s.stats[userID]; ok {
		if newLog.Weight != nil {
			stats.Weight = clonePtr(newLog.Weight)
		}
		if newLog.BodyFatPercentage != nil {
			stats.BodyFatPercentage = clonePtr(newLog.BodyFatPercentage)
		}
		stats.LastUpdated = s.now()
	}

	return newLog.clone(), nil
}

// ListUserProgressLogs returns all progress logs of the user ordered
// by id.
func (s *Store) ListUserProgressLogs(ctx context.Context, userID int) ([]ProgressLog, error) {
	_, span := tracing.GlobalTracer.Start(ctx, "store.listUserProgressLogs")
	defer span.End()

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	logs := make([]ProgressLog, 0)
	for _, log := range s.logs {
		if log.UserID == userID {
			logs = append(logs, *log.clone())
		}
	}
	sort.Slice(logs, func(i, j int) bool {
		return logs[i].ID < logs[j].ID
	})

	return logs, nil
}

func (s *Store) GetProgressLog(ctx context.Context, id int) (*ProgressLog, error) {
	_, span := tracing.GlobalTracer.Start(ctx, "store.getProgressLog")
	defer span.End()

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	log, ok := s.logs[id]
	if !ok {
		return nil, ErrProgressLogNotFound
	}
	return log.clone(), nil
}

// DeleteProgressLog removes the log. User stats synced from it earlier
// keep their values.
func (s *Store) DeleteProgressLog(ctx context.Context, id int) (err error) {
	_, span := tracing.GlobalTracer.Start(ctx, "store.deleteProgressLog")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, ok := s.logs[id]; !ok {
		return ErrProgressLogNotFound
	}

	delete(s.logs, id)
	return nil
}
