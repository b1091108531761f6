// Package audit maintains the append-only trail of mutating actions. Records
// are written synchronously after the mutation they describe has been
// committed, and are never updated or deleted.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"clientdesk.org/internal/auth"
	"clientdesk.org/internal/obs"
	"clientdesk.org/internal/store"
)

// Actions recorded in the trail.
const (
	ActionCreate = "CREATE"
	ActionUpdate = "UPDATE"
	ActionDelete = "DELETE"
)

// Entity types recorded in the trail.
const (
	EntityClient = "CLIENT"
	EntityDraft  = "DRAFT"
)

// SystemActor is the attribution used when no identity is present in the
// request context (startup seeding, maintenance jobs).
const SystemActor = "system"

// Trail records and reads back audit entries.
type Trail struct {
	store store.AuditStore
}

// New constructs a Trail over the given store.
func New(st store.AuditStore) *Trail {
	return &Trail{store: st}
}

// Record appends one entry attributing the action to the identity in ctx,
// falling back to the system actor. The store assigns id and timestamp. A
// failed append is the caller's problem to report; it never unwinds the
// mutation that triggered it.
func (t *Trail) Record(ctx context.Context, action, entityType string, entityID int64) error {
	actorEmail, actorName := SystemActor, SystemActor
	if identity, ok := auth.IdentityFromContext(ctx); ok {
		actorEmail = identity.Email
		actorName = identity.DisplayName
	}

	rec := &store.AuditRecord{
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		ActorEmail: actorEmail,
		ActorName:  actorName,
	}
	if err := t.store.AppendAudit(ctx, rec); err != nil {
		return err
	}

	logEntry(rec)
	return nil
}

// List returns the whole trail, most recent entry first.
func (t *Trail) List(ctx context.Context) ([]store.AuditRecord, error) {
	return t.store.ListAudit(ctx)
}

// logEntry mirrors the stored record as a structured log line so the trail
// shows up in log aggregation alongside request logs.
func logEntry(rec *store.AuditRecord) {
	entry := map[string]any{
		"ts":          rec.Timestamp.UTC().Format(time.RFC3339Nano),
		"type":        "audit",
		"action":      rec.Action,
		"entity_type": rec.EntityType,
		"entity_id":   rec.EntityID,
		"actor":       rec.ActorEmail,
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	obs.Logger().Println(string(data))
}
