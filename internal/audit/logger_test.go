package audit

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/directory-service/internal/domain"
)

// fakeStore is an in-memory append-only store for logger tests.
type fakeStore struct {
	entries []domain.AuditEntry
	nextID  int64
	failing bool
}

func (s *fakeStore) Append(_ context.Context, entry *domain.AuditEntry) error {
	if s.failing {
		return errors.New("store unavailable")
	}
	s.nextID++
	entry.ID = s.nextID
	entry.CreatedAt = time.Now()
	s.entries = append(s.entries, *entry)
	return nil
}

func (s *fakeStore) Find(_ context.Context, f Filter, limit, offset int) ([]domain.AuditEntry, int64, error) {
	var matched []domain.AuditEntry
	for _, e := range s.entries {
		if f.Module != "" && e.Module != f.Module {
			continue
		}
		if f.Action != "" && e.Action != f.Action {
			continue
		}
		if f.ActorID != 0 && e.ActorID != f.ActorID {
			continue
		}
		matched = append(matched, e)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })

	total := int64(len(matched))
	if offset >= len(matched) {
		return nil, total, nil
	}
	matched = matched[offset:]
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, total, nil
}

func (s *fakeStore) TotalCount(context.Context) (int64, error) {
	return int64(len(s.entries)), nil
}

func (s *fakeStore) CountByAction(context.Context) (map[domain.AuditAction]int64, error) {
	result := make(map[domain.AuditAction]int64)
	for _, e := range s.entries {
		result[e.Action]++
	}
	return result, nil
}

func (s *fakeStore) CountByModule(context.Context) (map[domain.AuditModule]int64, error) {
	result := make(map[domain.AuditModule]int64)
	for _, e := range s.entries {
		result[e.Module]++
	}
	return result, nil
}

func (s *fakeStore) CountByDay(_ context.Context, since time.Time) ([]DailyCount, error) {
	byDay := make(map[time.Time]int64)
	for _, e := range s.entries {
		if e.CreatedAt.Before(since) {
			continue
		}
		day := e.CreatedAt.Truncate(24 * time.Hour)
		byDay[day]++
	}
	var result []DailyCount
	for day, count := range byDay {
		result = append(result, DailyCount{Day: day, Count: count})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Day.Before(result[j].Day) })
	return result, nil
}

func (s *fakeStore) CountByActor(_ context.Context, limit int) ([]ActorCount, error) {
	byActor := make(map[int64]int64)
	for _, e := range s.entries {
		byActor[e.ActorID]++
	}
	var result []ActorCount
	for id, count := range byActor {
		result = append(result, ActorCount{ActorID: id, Count: count})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Count > result[j].Count })
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

type fakeDirectory struct {
	names map[int64]string
	err   error
}

func (d *fakeDirectory) DisplayNames(_ context.Context, ids []int64) (map[int64]string, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.names, nil
}

func newTestLogger(store Store, actors ActorDirectory) *Logger {
	return NewLogger(store, actors, zap.NewNop(), nil)
}

func TestLogUpdateShape(t *testing.T) {
	store := &fakeStore{}
	logger := newTestLogger(store, nil)
	ctx := context.Background()

	before := map[string]any{"title": "Draft"}
	after := map[string]any{"title": "Published", "isPublished": true}

	entry := logger.LogUpdate(ctx, 7, domain.ModuleArticle, 42, "Draft", before, after, Meta{IP: "203.0.113.5", UserAgent: "test-agent"})
	if entry == nil {
		t.Fatal("LogUpdate returned nil")
	}
	if entry.Action != domain.ActionUpdate {
		t.Errorf("action = %q, want UPDATE", entry.Action)
	}
	if entry.TargetID == nil || *entry.TargetID != 42 {
		t.Error("target id not carried")
	}
	if entry.IP == nil || *entry.IP != "203.0.113.5" {
		t.Error("ip not carried")
	}

	var changes struct {
		Before map[string]any `json:"before"`
		After  map[string]any `json:"after"`
	}
	if err := json.Unmarshal(entry.Changes, &changes); err != nil {
		t.Fatalf("changes not valid JSON: %v", err)
	}
	if changes.Before["title"] != "Draft" {
		t.Errorf("before title = %v, want Draft", changes.Before["title"])
	}
	if changes.After["title"] != "Published" || changes.After["isPublished"] != true {
		t.Errorf("after snapshot incorrect: %v", changes.After)
	}
}

func TestLogCreateAndDeleteShapes(t *testing.T) {
	store := &fakeStore{}
	logger := newTestLogger(store, nil)
	ctx := context.Background()

	created := logger.LogCreate(ctx, 1, domain.ModuleWebsite, 5, "Example", map[string]any{"name": "Example"}, Meta{})
	if created == nil {
		t.Fatal("LogCreate returned nil")
	}
	var createdChanges map[string]json.RawMessage
	if err := json.Unmarshal(created.Changes, &createdChanges); err != nil {
		t.Fatalf("changes not valid JSON: %v", err)
	}
	if _, ok := createdChanges["created"]; !ok {
		t.Error("created snapshot missing")
	}

	deleted := logger.LogDelete(ctx, 1, domain.ModuleWebsite, 5, "Example", map[string]any{"name": "Example"}, Meta{})
	if deleted == nil {
		t.Fatal("LogDelete returned nil")
	}
	var deletedChanges map[string]json.RawMessage
	if err := json.Unmarshal(deleted.Changes, &deletedChanges); err != nil {
		t.Fatalf("changes not valid JSON: %v", err)
	}
	if _, ok := deletedChanges["deleted"]; !ok {
		t.Error("deleted snapshot missing")
	}
}

func TestAuthActionsCarryNoChanges(t *testing.T) {
	store := &fakeStore{}
	logger := newTestLogger(store, nil)
	ctx := context.Background()

	login := logger.LogLogin(ctx, 3, "ada", Meta{})
	if login == nil {
		t.Fatal("LogLogin returned nil")
	}
	if login.Module != domain.ModuleAuth || login.Changes != nil {
		t.Errorf("login entry = module %q changes %v, want Auth module and nil changes", login.Module, login.Changes)
	}
	if login.TargetName == nil || *login.TargetName != "ada" {
		t.Error("login target name should be the username")
	}

	logout := logger.LogLogout(ctx, 3, "ada", Meta{})
	if logout == nil || logout.Action != domain.ActionLogout {
		t.Error("logout entry incorrect")
	}
}

func TestRecordFailureIsolation(t *testing.T) {
	store := &fakeStore{failing: true}
	logger := newTestLogger(store, nil)
	ctx := context.Background()

	entry := logger.LogUpdate(ctx, 7, domain.ModuleArticle, 42, "Draft",
		map[string]any{"title": "Draft"}, map[string]any{"title": "Published"}, Meta{})
	if entry != nil {
		t.Errorf("expected nil on store failure, got %+v", entry)
	}
}

func TestRecordUnserializableChanges(t *testing.T) {
	store := &fakeStore{}
	logger := newTestLogger(store, nil)
	ctx := context.Background()

	entry := logger.Record(ctx, Input{
		ActorID: 1,
		Action:  domain.ActionUpdate,
		Module:  domain.ModuleArticle,
		Changes: map[string]any{"bad": make(chan int)},
	})
	if entry != nil {
		t.Error("expected nil for unserializable changes")
	}
	if len(store.entries) != 0 {
		t.Error("no entry should have been appended")
	}
}

func TestQueryOrderingAndPagination(t *testing.T) {
	store := &fakeStore{}
	logger := newTestLogger(store, nil)
	ctx := context.Background()

	first := logger.LogCreate(ctx, 1, domain.ModuleArticle, 1, "one", map[string]any{}, Meta{})
	second := logger.LogCreate(ctx, 1, domain.ModuleArticle, 2, "two", map[string]any{}, Meta{})
	logger.LogCreate(ctx, 1, domain.ModuleWebsite, 3, "other", map[string]any{}, Meta{})

	entries, pagination, err := logger.Query(ctx, Filter{Module: domain.ModuleArticle}, 1, 10)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].ID != second.ID || entries[1].ID != first.ID {
		t.Error("entries not ordered newest first")
	}
	if pagination.Total != 2 || pagination.TotalPages != 1 {
		t.Errorf("pagination = %+v, want total 2 pages 1", pagination)
	}

	// second page is empty but keeps the total
	entries, pagination, err = logger.Query(ctx, Filter{Module: domain.ModuleArticle}, 2, 10)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(entries) != 0 || pagination.Total != 2 {
		t.Errorf("page 2 = %d entries total %d, want 0 and 2", len(entries), pagination.Total)
	}
}

func TestStats(t *testing.T) {
	store := &fakeStore{}
	logger := newTestLogger(store, &fakeDirectory{names: map[int64]string{1: "Ada", 2: "Grace"}})
	ctx := context.Background()

	logger.LogCreate(ctx, 1, domain.ModuleArticle, 1, "a", map[string]any{}, Meta{})
	logger.LogUpdate(ctx, 1, domain.ModuleArticle, 1, "a", map[string]any{}, map[string]any{}, Meta{})
	logger.LogLogin(ctx, 2, "grace", Meta{})

	stats, err := logger.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Total != 3 {
		t.Errorf("total = %d, want 3", stats.Total)
	}
	if stats.ByAction[domain.ActionCreate] != 1 || stats.ByAction[domain.ActionUpdate] != 1 || stats.ByAction[domain.ActionLogin] != 1 {
		t.Errorf("by action = %v", stats.ByAction)
	}
	if stats.ByModule[domain.ModuleArticle] != 2 || stats.ByModule[domain.ModuleAuth] != 1 {
		t.Errorf("by module = %v", stats.ByModule)
	}
	if len(stats.Daily) == 0 {
		t.Error("daily counts empty")
	}
	if len(stats.TopActors) != 2 {
		t.Fatalf("top actors = %d, want 2", len(stats.TopActors))
	}
	if stats.TopActors[0].ActorID != 1 || stats.TopActors[0].Name != "Ada" {
		t.Errorf("top actor = %+v, want Ada (id 1)", stats.TopActors[0])
	}
}

func TestStatsActorNamesBestEffort(t *testing.T) {
	store := &fakeStore{}
	logger := newTestLogger(store, &fakeDirectory{err: errors.New("identity store down")})
	ctx := context.Background()

	logger.LogLogin(ctx, 2, "grace", Meta{})

	stats, err := logger.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if len(stats.TopActors) != 1 || stats.TopActors[0].Name != "" {
		t.Errorf("expected unresolved actor name, got %+v", stats.TopActors)
	}
}
