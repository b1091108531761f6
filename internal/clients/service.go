// Package clients holds the business logic for the client directory.
package clients

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"clientdesk.org/internal/audit"
	"clientdesk.org/internal/obs"
	"clientdesk.org/internal/store"
)

// ErrInvalid marks input that fails validation. Callers map it to a 400.
var ErrInvalid = errors.New("invalid client")

// Service exposes CRUD and search over the client directory. Every committed
// mutation is appended to the audit trail.
type Service struct {
	store store.ClientStore
	trail *audit.Trail
}

// NewService constructs a Service.
func NewService(st store.ClientStore, trail *audit.Trail) *Service {
	return &Service{store: st, trail: trail}
}

// List returns all clients.
func (s *Service) List(ctx context.Context) ([]store.Client, error) {
	return s.store.ListClients(ctx)
}

// Get returns one client or store.ErrNotFound.
func (s *Service) Get(ctx context.Context, id int64) (*store.Client, error) {
	return s.store.GetClient(ctx, id)
}

// Search returns clients whose name or email contains the keyword,
// case-insensitively. A blank keyword matches everything.
func (s *Service) Search(ctx context.Context, keyword string) ([]store.Client, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return s.store.ListClients(ctx)
	}
	return s.store.SearchClients(ctx, keyword)
}

// Count returns the number of clients.
func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.store.CountClients(ctx)
}

// Create validates and inserts a client, then audits the creation.
func (s *Service) Create(ctx context.Context, c *store.Client) error {
	if err := validate(c); err != nil {
		return err
	}
	if err := s.store.InsertClient(ctx, c); err != nil {
		return err
	}
	s.recordAudit(ctx, audit.ActionCreate, c.ID)
	return nil
}

// Update overwrites the stored client identified by c.ID. Returns
// store.ErrNotFound when the id does not exist.
func (s *Service) Update(ctx context.Context, c *store.Client) error {
	if err := validate(c); err != nil {
		return err
	}
	if err := s.store.UpdateClient(ctx, c); err != nil {
		return err
	}
	s.recordAudit(ctx, audit.ActionUpdate, c.ID)
	return nil
}

// Delete removes a client. Returns store.ErrNotFound when the id does not
// exist.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteClient(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, audit.ActionDelete, id)
	return nil
}

func validate(c *store.Client) error {
	if strings.TrimSpace(c.FullName) == "" {
		return fmt.Errorf("%w: full name is required", ErrInvalid)
	}
	return nil
}

// recordAudit appends best-effort: the mutation has already committed, so a
// failed audit write is logged and swallowed.
func (s *Service) recordAudit(ctx context.Context, action string, id int64) {
	if err := s.trail.Record(ctx, action, audit.EntityClient, id); err != nil {
		obs.LogRequest(map[string]any{
			"level":  "error",
			"msg":    "audit append failed",
			"entity": audit.EntityClient,
			"id":     id,
			"error":  err.Error(),
		})
	}
}
