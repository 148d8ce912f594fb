package dto

import (
	"encoding/json"
	"time"

	"github.com/spec-kit/directory-service/internal/audit"
	"github.com/spec-kit/directory-service/internal/domain"
)

// AuditEntryResponse is the wire form of one audit entry.
type AuditEntryResponse struct {
	ID         int64           `json:"id"`
	ActorID    int64           `json:"actor_id"`
	Action     string          `json:"action"`
	Module     string          `json:"module"`
	TargetID   *int64          `json:"target_id,omitempty"`
	TargetName *string         `json:"target_name,omitempty"`
	Changes    json.RawMessage `json:"changes,omitempty"`
	IP         *string         `json:"ip,omitempty"`
	UserAgent  *string         `json:"user_agent,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// NewAuditEntryResponse maps a domain entry.
func NewAuditEntryResponse(entry domain.AuditEntry) AuditEntryResponse {
	return AuditEntryResponse{
		ID:         entry.ID,
		ActorID:    entry.ActorID,
		Action:     string(entry.Action),
		Module:     string(entry.Module),
		TargetID:   entry.TargetID,
		TargetName: entry.TargetName,
		Changes:    json.RawMessage(entry.Changes),
		IP:         entry.IP,
		UserAgent:  entry.UserAgent,
		CreatedAt:  entry.CreatedAt,
	}
}

// AuditListResponse is a page of entries.
type AuditListResponse struct {
	Entries    []AuditEntryResponse `json:"entries"`
	Pagination audit.Pagination     `json:"pagination"`
}

// DailyCountResponse is one calendar day's entry count.
type DailyCountResponse struct {
	Day   string `json:"day"`
	Count int64  `json:"count"`
}

// ActorCountResponse ranks one actor by volume.
type ActorCountResponse struct {
	ActorID int64  `json:"actor_id"`
	Name    string `json:"name,omitempty"`
	Count   int64  `json:"count"`
}

// AuditStatsResponse summarizes the trail for review dashboards.
type AuditStatsResponse struct {
	Total     int64                `json:"total"`
	ByAction  map[string]int64     `json:"by_action"`
	ByModule  map[string]int64     `json:"by_module"`
	Daily     []DailyCountResponse `json:"daily_last_7_days"`
	TopActors []ActorCountResponse `json:"top_actors"`
}

// NewAuditStatsResponse maps aggregated stats.
func NewAuditStatsResponse(stats *audit.Stats) AuditStatsResponse {
	byAction := make(map[string]int64, len(stats.ByAction))
	for action, count := range stats.ByAction {
		byAction[string(action)] = count
	}
	byModule := make(map[string]int64, len(stats.ByModule))
	for module, count := range stats.ByModule {
		byModule[string(module)] = count
	}
	daily := make([]DailyCountResponse, 0, len(stats.Daily))
	for _, dc := range stats.Daily {
		daily = append(daily, DailyCountResponse{Day: dc.Day.Format("2006-01-02"), Count: dc.Count})
	}
	actors := make([]ActorCountResponse, 0, len(stats.TopActors))
	for _, ac := range stats.TopActors {
		actors = append(actors, ActorCountResponse{ActorID: ac.ActorID, Name: ac.Name, Count: ac.Count})
	}
	return AuditStatsResponse{
		Total:     stats.Total,
		ByAction:  byAction,
		ByModule:  byModule,
		Daily:     daily,
		TopActors: actors,
	}
}
