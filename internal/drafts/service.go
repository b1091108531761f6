// Package drafts holds the business logic for user-private draft records.
// Unlike clients, drafts are owned: non-admin access to a specific draft
// requires that the caller created it.
package drafts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"clientdesk.org/internal/audit"
	"clientdesk.org/internal/auth"
	"clientdesk.org/internal/obs"
	"clientdesk.org/internal/store"
)

// ErrInvalid marks input that fails validation. Callers map it to a 400.
var ErrInvalid = errors.New("invalid draft")

// AccessError is returned when the caller may use the operation but does not
// own the draft. Callers map it to a 403 with the carried message.
type AccessError struct {
	Message string
}

func (e *AccessError) Error() string { return e.Message }

// Service exposes draft CRUD gated by ownership. A draft must be resolved
// before ownership is judged, so a missing id is always store.ErrNotFound
// regardless of who asks.
type Service struct {
	store  store.DraftStore
	policy *auth.Policy
	trail  *audit.Trail
}

// NewService constructs a Service.
func NewService(st store.DraftStore, policy *auth.Policy, trail *audit.Trail) *Service {
	return &Service{store: st, policy: policy, trail: trail}
}

// ListFor returns every draft for admins and only the caller's own drafts for
// everyone else, newest activity first.
func (s *Service) ListFor(ctx context.Context, identity auth.Identity) ([]store.Draft, error) {
	if identity.Role == auth.RoleAdmin {
		return s.store.ListDrafts(ctx)
	}
	return s.store.ListDraftsByOwner(ctx, identity.Email)
}

// Get resolves a draft and checks ownership.
func (s *Service) Get(ctx context.Context, identity auth.Identity, id int64) (*store.Draft, error) {
	d, err := s.store.GetDraft(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkOwnership(identity, auth.OpDraftsView, d.CreatedByEmail, "access"); err != nil {
		return nil, err
	}
	return d, nil
}

// Create stamps the caller as owner, inserts the draft and audits it.
func (s *Service) Create(ctx context.Context, identity auth.Identity, d *store.Draft) error {
	if err := validate(d); err != nil {
		return err
	}
	d.CreatedByEmail = identity.Email
	d.CreatedByName = identity.DisplayName
	if err := s.store.InsertDraft(ctx, d); err != nil {
		return err
	}
	s.recordAudit(ctx, audit.ActionCreate, d.ID)
	return nil
}

// Update overwrites the editable fields of an existing draft. Ownership and
// creation metadata are never touched by an update.
func (s *Service) Update(ctx context.Context, identity auth.Identity, id int64, in *store.Draft) (*store.Draft, error) {
	if err := validate(in); err != nil {
		return nil, err
	}
	d, err := s.store.GetDraft(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkOwnership(identity, auth.OpDraftsUpdate, d.CreatedByEmail, "edit"); err != nil {
		return nil, err
	}

	d.FullName = in.FullName
	d.DisplayName = in.DisplayName
	d.Email = in.Email
	d.Details = in.Details
	d.Active = in.Active
	d.Location = in.Location
	if err := s.store.UpdateDraft(ctx, d); err != nil {
		return nil, err
	}
	s.recordAudit(ctx, audit.ActionUpdate, d.ID)
	return d, nil
}

// Delete removes a draft after resolving it and checking ownership.
func (s *Service) Delete(ctx context.Context, identity auth.Identity, id int64) error {
	d, err := s.store.GetDraft(ctx, id)
	if err != nil {
		return err
	}
	if err := s.checkOwnership(identity, auth.OpDraftsDelete, d.CreatedByEmail, "delete"); err != nil {
		return err
	}
	if err := s.store.DeleteDraft(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, audit.ActionDelete, id)
	return nil
}

func (s *Service) checkOwnership(identity auth.Identity, op, ownerEmail, action string) error {
	d := s.policy.AuthorizeOwned(&identity, op, ownerEmail, action, "draft")
	if d.Outcome != auth.Allow {
		return &AccessError{Message: d.Message}
	}
	return nil
}

func validate(d *store.Draft) error {
	if strings.TrimSpace(d.FullName) == "" {
		return fmt.Errorf("%w: full name is required", ErrInvalid)
	}
	return nil
}

func (s *Service) recordAudit(ctx context.Context, action string, id int64) {
	if err := s.trail.Record(ctx, action, audit.EntityDraft, id); err != nil {
		obs.LogRequest(map[string]any{
			"level":  "error",
			"msg":    "audit append failed",
			"entity": audit.EntityDraft,
			"id":     id,
			"error":  err.Error(),
		})
	}
}
