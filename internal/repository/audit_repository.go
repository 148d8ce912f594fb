package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/directory-service/internal/audit"
	"github.com/spec-kit/directory-service/internal/domain"
)

// NewAuditRepository returns a Postgres-backed append-only audit store.
func NewAuditRepository(pool *pgxpool.Pool) audit.Store {
	return &auditRepository{pool: pool}
}

type auditRepository struct {
	pool *pgxpool.Pool
}

func (r *auditRepository) Append(ctx context.Context, entry *domain.AuditEntry) error {
	const query = `
        INSERT INTO audit_logs (actor_id, action, module, target_id, target_name, changes, ip, user_agent)
        VALUES ($1,$2,$3,$4,$5,$6::jsonb,$7,$8)
        RETURNING id, created_at`

	var changes any
	if entry.Changes != nil {
		changes = string(entry.Changes)
	}

	return r.pool.QueryRow(ctx, query,
		entry.ActorID,
		entry.Action,
		entry.Module,
		entry.TargetID,
		entry.TargetName,
		changes,
		entry.IP,
		entry.UserAgent,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *auditRepository) Find(ctx context.Context, f audit.Filter, limit, offset int) ([]domain.AuditEntry, int64, error) {
	where, args := buildAuditFilter(f)

	countQuery := "SELECT COUNT(*) FROM audit_logs" + where
	var total int64
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
        SELECT id, actor_id, action, module, target_id, target_name, changes, ip, user_agent, created_at
        FROM audit_logs%s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []domain.AuditEntry
	for rows.Next() {
		var entry domain.AuditEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.ActorID,
			&entry.Action,
			&entry.Module,
			&entry.TargetID,
			&entry.TargetName,
			&entry.Changes,
			&entry.IP,
			&entry.UserAgent,
			&entry.CreatedAt,
		); err != nil {
			return nil, 0, err
		}
		result = append(result, entry)
	}
	return result, total, rows.Err()
}

func buildAuditFilter(f audit.Filter) (string, []any) {
	var clauses []string
	var args []any

	if f.Module != "" {
		args = append(args, f.Module)
		clauses = append(clauses, fmt.Sprintf("module=$%d", len(args)))
	}
	if f.Action != "" {
		args = append(args, f.Action)
		clauses = append(clauses, fmt.Sprintf("action=$%d", len(args)))
	}
	if f.ActorID != 0 {
		args = append(args, f.ActorID)
		clauses = append(clauses, fmt.Sprintf("actor_id=$%d", len(args)))
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func (r *auditRepository) TotalCount(ctx context.Context) (int64, error) {
	var total int64
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM audit_logs").Scan(&total)
	return total, err
}

func (r *auditRepository) CountByAction(ctx context.Context) (map[domain.AuditAction]int64, error) {
	const query = `SELECT action, COUNT(*) FROM audit_logs GROUP BY action`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[domain.AuditAction]int64)
	for rows.Next() {
		var action domain.AuditAction
		var count int64
		if err := rows.Scan(&action, &count); err != nil {
			return nil, err
		}
		result[action] = count
	}
	return result, rows.Err()
}

func (r *auditRepository) CountByModule(ctx context.Context) (map[domain.AuditModule]int64, error) {
	const query = `SELECT module, COUNT(*) FROM audit_logs GROUP BY module`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[domain.AuditModule]int64)
	for rows.Next() {
		var module domain.AuditModule
		var count int64
		if err := rows.Scan(&module, &count); err != nil {
			return nil, err
		}
		result[module] = count
	}
	return result, rows.Err()
}

func (r *auditRepository) CountByDay(ctx context.Context, since time.Time) ([]audit.DailyCount, error) {
	const query = `
        SELECT created_at::date AS day, COUNT(*)
        FROM audit_logs WHERE created_at >= $1
        GROUP BY day ORDER BY day`
	rows, err := r.pool.Query(ctx, query, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []audit.DailyCount
	for rows.Next() {
		var dc audit.DailyCount
		if err := rows.Scan(&dc.Day, &dc.Count); err != nil {
			return nil, err
		}
		result = append(result, dc)
	}
	return result, rows.Err()
}

func (r *auditRepository) CountByActor(ctx context.Context, limit int) ([]audit.ActorCount, error) {
	const query = `
        SELECT actor_id, COUNT(*) AS entries
        FROM audit_logs GROUP BY actor_id ORDER BY entries DESC LIMIT $1`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []audit.ActorCount
	for rows.Next() {
		var ac audit.ActorCount
		if err := rows.Scan(&ac.ActorID, &ac.Count); err != nil {
			return nil, err
		}
		result = append(result, ac)
	}
	return result, rows.Err()
}
