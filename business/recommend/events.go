package recommend

import (
	"context"

	"freshCart/domain"
	"freshCart/pkg/logger"

	"gorm.io/datatypes"
)

// RecordResult is the outcome of an event write. Recording backs a
// side-channel analytics concern, so failures are reported as values
// instead of errors that could abort a purchase or page render.
type RecordResult struct {
	OK     bool
	Reason string
}

func softFailure(reason string) RecordResult {
	return RecordResult{OK: false, Reason: reason}
}

// Recognized metadata keys lifted into typed event columns. Everything
// else stays in the schemaless metadata blob and never reaches scoring.
const (
	metaSessionID  = "session_id"
	metaDeviceType = "device_type"
	metaSource     = "source"
	metaDurationMs = "duration_ms"
)

// Recorder appends interaction events. A new event changes the derived
// preference profile, so the recorder drops the cached copy on success;
// the cache is optional and invalidation failures are soft.
type Recorder struct {
	events EventRepository
	cache  ProfileCache
}

func NewRecorder(events EventRepository, cache ProfileCache) *Recorder {
	return &Recorder{events: events, cache: cache}
}

// Record appends one interaction event. It never returns an error: bad
// input and store failures both come back as soft failures the caller
// may log and ignore.
func (r *Recorder) Record(ctx context.Context, userID uint, productID uint64, actionKind string, metadata map[string]any) RecordResult {
	if userID == 0 || productID == 0 {
		return softFailure("missing user or product id")
	}
	if !domain.ValidAction(actionKind) {
		return softFailure("unknown action kind: " + actionKind)
	}

	event := &domain.InteractionEvent{
		UserID:     userID,
		ProductID:  productID,
		ActionKind: actionKind,
	}

	if len(metadata) > 0 {
		rest := make(map[string]any, len(metadata))
		for k, v := range metadata {
			switch k {
			case metaSessionID:
				if s, ok := v.(string); ok {
					event.SessionID = s
					continue
				}
			case metaDeviceType:
				if s, ok := v.(string); ok {
					event.DeviceType = s
					continue
				}
			case metaSource:
				if s, ok := v.(string); ok {
					event.Source = s
					continue
				}
			case metaDurationMs:
				switch d := v.(type) {
				case float64:
					event.DurationMs = int64(d)
					continue
				case int64:
					event.DurationMs = d
					continue
				case int:
					event.DurationMs = int64(d)
					continue
				}
			}
			rest[k] = v
		}
		if len(rest) > 0 {
			event.Metadata = datatypes.JSONMap(rest)
		}
	}

	if err := r.events.Save(ctx, event); err != nil {
		logger.Warn("failed to record interaction event",
			"user_id", userID,
			"product_id", productID,
			"action", actionKind,
			err,
		)
		EventRecordFailuresTotal.Inc()
		return softFailure("store unavailable")
	}

	if r.cache != nil {
		if err := r.cache.Invalidate(ctx, userID); err != nil {
			logger.Warn("failed to invalidate cached profile", "user_id", userID, err)
		}
	}

	return RecordResult{OK: true}
}
