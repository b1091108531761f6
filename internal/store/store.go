// Package store persists the service's domain records. It speaks plain SQL
// through sqlx and supports two backends: an embedded SQLite database (the
// default) and PostgreSQL for shared deployments.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("store: not found")

// User is a login account. Users are seeded at startup and looked up by the
// login flow; the service itself never mutates them.
type User struct {
	ID       int64  `db:"id" json:"id"`
	Email    string `db:"email" json:"email"`
	FullName string `db:"full_name" json:"fullName"`
	Role     string `db:"role" json:"role"`
	Active   bool   `db:"active" json:"active"`
}

// Client is a directory record, visible to every authenticated caller.
type Client struct {
	ID          int64  `db:"id" json:"id"`
	FullName    string `db:"full_name" json:"fullName"`
	DisplayName string `db:"display_name" json:"displayName"`
	Email       string `db:"email" json:"email"`
	Details     string `db:"details" json:"details"`
	Active      bool   `db:"active" json:"active"`
	Location    string `db:"location" json:"location"`
}

// Draft is a user-private client record in progress. CreatedByEmail is the
// ownership anchor: non-admin access requires a case-insensitive match
// against the caller's email.
type Draft struct {
	ID             int64     `db:"id" json:"id"`
	FullName       string    `db:"full_name" json:"fullName"`
	DisplayName    string    `db:"display_name" json:"displayName"`
	Email          string    `db:"email" json:"email"`
	Details        string    `db:"details" json:"details"`
	Active         bool      `db:"active" json:"active"`
	Location       string    `db:"location" json:"location"`
	CreatedByEmail string    `db:"created_by_email" json:"createdByEmail"`
	CreatedByName  string    `db:"created_by_name" json:"createdByName"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time `db:"updated_at" json:"updatedAt"`
}

// AuditRecord is one immutable entry of the audit trail. ID and Timestamp are
// assigned by the store at append time; records are never updated or deleted.
type AuditRecord struct {
	ID         int64     `db:"id" json:"id"`
	Action     string    `db:"action" json:"action"`
	EntityType string    `db:"entity_type" json:"entityType"`
	EntityID   int64     `db:"entity_id" json:"entityId"`
	ActorEmail string    `db:"actor_email" json:"actorEmail"`
	ActorName  string    `db:"actor_name" json:"actorName"`
	Timestamp  time.Time `db:"timestamp" json:"timestamp"`
}

// UserStore is the identity lookup surface used by login and seeding.
type UserStore interface {
	FindUserByEmail(ctx context.Context, email string) (*User, error)
	CountUsers(ctx context.Context) (int64, error)
	InsertUser(ctx context.Context, u *User) error
}

// ClientStore manages directory records.
type ClientStore interface {
	ListClients(ctx context.Context) ([]Client, error)
	GetClient(ctx context.Context, id int64) (*Client, error)
	SearchClients(ctx context.Context, keyword string) ([]Client, error)
	CountClients(ctx context.Context) (int64, error)
	InsertClient(ctx context.Context, c *Client) error
	UpdateClient(ctx context.Context, c *Client) error
	DeleteClient(ctx context.Context, id int64) error
}

// DraftStore manages user-private drafts.
type DraftStore interface {
	ListDrafts(ctx context.Context) ([]Draft, error)
	ListDraftsByOwner(ctx context.Context, ownerEmail string) ([]Draft, error)
	GetDraft(ctx context.Context, id int64) (*Draft, error)
	InsertDraft(ctx context.Context, d *Draft) error
	UpdateDraft(ctx context.Context, d *Draft) error
	DeleteDraft(ctx context.Context, id int64) error
}

// AuditStore appends and reads back the immutable audit trail.
type AuditStore interface {
	AppendAudit(ctx context.Context, rec *AuditRecord) error
	ListAudit(ctx context.Context) ([]AuditRecord, error)
}
