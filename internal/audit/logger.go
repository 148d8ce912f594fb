package audit

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/directory-service/internal/domain"
)

const (
	topActorsLimit = 10
	dailyStatsSpan = 7 * 24 * time.Hour
)

// FailureCounter observes audit entries that could not be persisted.
type FailureCounter interface {
	RecordAuditFailure()
}

// Logger records immutable audit entries and serves review queries. Recording
// is best-effort: a persistence failure is logged operationally and reported
// as nil, never as an error the business operation has to handle.
type Logger struct {
	store   Store
	actors  ActorDirectory
	log     *zap.Logger
	metrics FailureCounter
}

// NewLogger builds a logger over the given append-only store. metrics may be
// nil when failure counting is not wanted.
func NewLogger(store Store, actors ActorDirectory, log *zap.Logger, metrics FailureCounter) *Logger {
	return &Logger{store: store, actors: actors, log: log, metrics: metrics}
}

// Input describes one entry to record. Changes, when set, must be
// JSON-marshalable; it is stored verbatim as the structured snapshot.
type Input struct {
	ActorID    int64
	Action     domain.AuditAction
	Module     domain.AuditModule
	TargetID   *int64
	TargetName *string
	Changes    any
	Meta       Meta
}

// Record writes one entry. It returns the stored entry, or nil when recording
// failed for any reason.
func (l *Logger) Record(ctx context.Context, in Input) *domain.AuditEntry {
	entry := &domain.AuditEntry{
		ActorID:    in.ActorID,
		Action:     in.Action,
		Module:     in.Module,
		TargetID:   in.TargetID,
		TargetName: in.TargetName,
	}
	if in.Meta.IP != "" {
		ip := in.Meta.IP
		entry.IP = &ip
	}
	if in.Meta.UserAgent != "" {
		ua := in.Meta.UserAgent
		entry.UserAgent = &ua
	}

	if in.Changes != nil {
		payload, err := json.Marshal(in.Changes)
		if err != nil {
			l.recordFailure(in, err)
			return nil
		}
		entry.Changes = payload
	}

	if err := l.store.Append(ctx, entry); err != nil {
		l.recordFailure(in, err)
		return nil
	}
	return entry
}

func (l *Logger) recordFailure(in Input, err error) {
	l.log.Error("audit entry not recorded",
		zap.String("action", string(in.Action)),
		zap.String("module", string(in.Module)),
		zap.Int64("actor_id", in.ActorID),
		zap.Error(err))
	if l.metrics != nil {
		l.metrics.RecordAuditFailure()
	}
}

// LogCreate records the creation of an entity with its initial snapshot.
func (l *Logger) LogCreate(ctx context.Context, actorID int64, module domain.AuditModule, targetID int64, targetName string, created any, meta Meta) *domain.AuditEntry {
	return l.Record(ctx, Input{
		ActorID:    actorID,
		Action:     domain.ActionCreate,
		Module:     module,
		TargetID:   &targetID,
		TargetName: &targetName,
		Changes:    map[string]any{"created": created},
		Meta:       meta,
	})
}

// LogUpdate records a mutation with full prior and posterior snapshots. The
// caller fetches before prior to mutating and after once the write committed.
func (l *Logger) LogUpdate(ctx context.Context, actorID int64, module domain.AuditModule, targetID int64, targetName string, before, after any, meta Meta) *domain.AuditEntry {
	return l.Record(ctx, Input{
		ActorID:    actorID,
		Action:     domain.ActionUpdate,
		Module:     module,
		TargetID:   &targetID,
		TargetName: &targetName,
		Changes:    map[string]any{"before": before, "after": after},
		Meta:       meta,
	})
}

// LogDelete records the removal of an entity with its final snapshot.
func (l *Logger) LogDelete(ctx context.Context, actorID int64, module domain.AuditModule, targetID int64, targetName string, deleted any, meta Meta) *domain.AuditEntry {
	return l.Record(ctx, Input{
		ActorID:    actorID,
		Action:     domain.ActionDelete,
		Module:     module,
		TargetID:   &targetID,
		TargetName: &targetName,
		Changes:    map[string]any{"deleted": deleted},
		Meta:       meta,
	})
}

// LogLogin records a successful sign-in.
func (l *Logger) LogLogin(ctx context.Context, actorID int64, username string, meta Meta) *domain.AuditEntry {
	return l.Record(ctx, Input{
		ActorID:    actorID,
		Action:     domain.ActionLogin,
		Module:     domain.ModuleAuth,
		TargetName: &username,
		Meta:       meta,
	})
}

// LogLogout records a sign-out.
func (l *Logger) LogLogout(ctx context.Context, actorID int64, username string, meta Meta) *domain.AuditEntry {
	return l.Record(ctx, Input{
		ActorID:    actorID,
		Action:     domain.ActionLogout,
		Module:     domain.ModuleAuth,
		TargetName: &username,
		Meta:       meta,
	})
}

// Pagination describes one result page.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// Query returns entries matching f, newest first, with offset pagination.
func (l *Logger) Query(ctx context.Context, f Filter, page, limit int) ([]domain.AuditEntry, Pagination, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	offset := (page - 1) * limit

	entries, total, err := l.store.Find(ctx, f, limit, offset)
	if err != nil {
		return nil, Pagination{}, err
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return entries, Pagination{Page: page, Limit: limit, Total: total, TotalPages: totalPages}, nil
}

// Stats summarizes the audit trail for review dashboards.
type Stats struct {
	Total     int64
	ByAction  map[domain.AuditAction]int64
	ByModule  map[domain.AuditModule]int64
	Daily     []DailyCount
	TopActors []ActorCount
}

// Stats aggregates entry counts by action, module, calendar day over the
// trailing 7 days, and the ten busiest actors with resolved display names.
// Daily is sparse: days without entries are absent.
func (l *Logger) Stats(ctx context.Context) (*Stats, error) {
	total, err := l.store.TotalCount(ctx)
	if err != nil {
		return nil, err
	}
	byAction, err := l.store.CountByAction(ctx)
	if err != nil {
		return nil, err
	}
	byModule, err := l.store.CountByModule(ctx)
	if err != nil {
		return nil, err
	}
	daily, err := l.store.CountByDay(ctx, time.Now().Add(-dailyStatsSpan))
	if err != nil {
		return nil, err
	}
	topActors, err := l.store.CountByActor(ctx, topActorsLimit)
	if err != nil {
		return nil, err
	}

	if len(topActors) > 0 && l.actors != nil {
		ids := make([]int64, 0, len(topActors))
		for _, actor := range topActors {
			ids = append(ids, actor.ActorID)
		}
		names, err := l.actors.DisplayNames(ctx, ids)
		if err != nil {
			l.log.Warn("actor names unresolved for audit stats", zap.Error(err))
		} else {
			for i := range topActors {
				topActors[i].Name = names[topActors[i].ActorID]
			}
		}
	}

	return &Stats{
		Total:     total,
		ByAction:  byAction,
		ByModule:  byModule,
		Daily:     daily,
		TopActors: topActors,
	}, nil
}
