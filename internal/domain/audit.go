package domain

import "time"

// AuditAction captures the kind of administrative action taken.
type AuditAction string

const (
	ActionCreate AuditAction = "CREATE"
	ActionUpdate AuditAction = "UPDATE"
	ActionDelete AuditAction = "DELETE"
	ActionLogin  AuditAction = "LOGIN"
	ActionLogout AuditAction = "LOGOUT"
	ActionView   AuditAction = "VIEW"
)

// AuditModule names the domain entity kind an action targeted.
type AuditModule string

const (
	ModuleWebsite AuditModule = "Website"
	ModuleArticle AuditModule = "Article"
	ModuleUser    AuditModule = "User"
	ModuleMedia   AuditModule = "Media"
	ModuleAuth    AuditModule = "Auth"
)

// AuditEntry is one immutable record of a mutating administrative action.
// Entries are append-only: they are never updated or deleted once written.
type AuditEntry struct {
	ID         int64
	ActorID    int64
	Action     AuditAction
	Module     AuditModule
	TargetID   *int64
	TargetName *string
	Changes    []byte // JSON snapshot payload, nil when the action carries none
	IP         *string
	UserAgent  *string
	CreatedAt  time.Time
}
