package audit

import (
	"context"
	"time"

	"github.com/spec-kit/directory-service/internal/domain"
)

// Filter narrows audit queries. Zero values mean "not filtered"; set fields
// combine conjunctively.
type Filter struct {
	Module  domain.AuditModule
	Action  domain.AuditAction
	ActorID int64
}

// DailyCount is the number of entries recorded on one calendar day. Days with
// no entries do not appear.
type DailyCount struct {
	Day   time.Time
	Count int64
}

// ActorCount ranks one actor by recorded entry volume. Name is filled in by
// the logger from the actor directory, not by the store.
type ActorCount struct {
	ActorID int64
	Name    string
	Count   int64
}

// Store is the append-only persistence collaborator for audit entries.
type Store interface {
	// Append writes one entry and fills its ID and CreatedAt.
	Append(ctx context.Context, entry *domain.AuditEntry) error
	// Find returns entries matching f, newest first, plus the total match count.
	Find(ctx context.Context, f Filter, limit, offset int) ([]domain.AuditEntry, int64, error)
	TotalCount(ctx context.Context) (int64, error)
	CountByAction(ctx context.Context) (map[domain.AuditAction]int64, error)
	CountByModule(ctx context.Context) (map[domain.AuditModule]int64, error)
	// CountByDay groups entries created at or after since by calendar day,
	// ascending; days without entries are omitted.
	CountByDay(ctx context.Context, since time.Time) ([]DailyCount, error)
	// CountByActor returns the busiest actors by entry volume, descending.
	CountByActor(ctx context.Context, limit int) ([]ActorCount, error)
}

// ActorDirectory resolves display metadata for actor ids, used only by Stats.
type ActorDirectory interface {
	DisplayNames(ctx context.Context, ids []int64) (map[int64]string, error)
}
