package drafts

import (
	"context"
	"errors"
	"testing"

	"clientdesk.org/internal/audit"
	"clientdesk.org/internal/auth"
	"clientdesk.org/internal/store"
)

var (
	alice = auth.Identity{Email: "alice@example.com", UserID: 1, Role: auth.RoleEditor, DisplayName: "Alice Doe"}
	bob   = auth.Identity{Email: "bob@example.com", UserID: 2, Role: auth.RoleEditor, DisplayName: "Bob Roe"}
	carol = auth.Identity{Email: "carol@example.com", UserID: 3, Role: auth.RoleAdmin, DisplayName: "Carol Admin"}
)

func newTestService(t *testing.T) (*Service, *store.DB) {
	t.Helper()
	db, err := store.Open(store.DriverSQLite, "")
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewService(db, auth.NewPolicy(), audit.New(db)), db
}

func identityContext(id auth.Identity) context.Context {
	return auth.ContextWithIdentity(context.Background(), id)
}

func mustCreate(t *testing.T, svc *Service, owner auth.Identity, name string) *store.Draft {
	t.Helper()
	d := &store.Draft{FullName: name, Email: "draft@example.com", Active: true}
	if err := svc.Create(identityContext(owner), owner, d); err != nil {
		t.Fatalf("Create: %v", err)
	}
	return d
}

func TestCreateStampsOwner(t *testing.T) {
	svc, db := newTestService(t)

	d := mustCreate(t, svc, alice, "Draft One")
	if d.CreatedByEmail != "alice@example.com" || d.CreatedByName != "Alice Doe" {
		t.Fatalf("owner not stamped: %+v", d)
	}
	if d.ID == 0 || d.CreatedAt.IsZero() || d.UpdatedAt.IsZero() {
		t.Fatalf("store metadata missing: %+v", d)
	}

	trail, err := db.ListAudit(context.Background())
	if err != nil || len(trail) != 1 {
		t.Fatalf("ListAudit = %d, %v", len(trail), err)
	}
	if trail[0].Action != audit.ActionCreate || trail[0].EntityType != audit.EntityDraft {
		t.Fatalf("unexpected audit record: %+v", trail[0])
	}

	if err := svc.Create(identityContext(alice), alice, &store.Draft{}); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestListForScopesToOwnerUnlessAdmin(t *testing.T) {
	svc, _ := newTestService(t)
	mustCreate(t, svc, alice, "Alice Draft")
	mustCreate(t, svc, bob, "Bob Draft")

	mine, err := svc.ListFor(identityContext(alice), alice)
	if err != nil {
		t.Fatalf("ListFor: %v", err)
	}
	if len(mine) != 1 || mine[0].FullName != "Alice Draft" {
		t.Fatalf("expected only own drafts, got %+v", mine)
	}

	all, err := svc.ListFor(identityContext(carol), carol)
	if err != nil {
		t.Fatalf("ListFor admin: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected all drafts for admin, got %d", len(all))
	}
}

func TestOwnershipGuardsGetUpdateDelete(t *testing.T) {
	svc, _ := newTestService(t)
	d := mustCreate(t, svc, alice, "Alice Draft")

	var accessErr *AccessError
	if _, err := svc.Get(identityContext(bob), bob, d.ID); !errors.As(err, &accessErr) {
		t.Fatalf("expected AccessError, got %v", err)
	}
	if accessErr.Message != "You cannot access another user's draft" {
		t.Fatalf("unexpected message: %q", accessErr.Message)
	}

	if _, err := svc.Update(identityContext(bob), bob, d.ID, &store.Draft{FullName: "Hijack"}); !errors.As(err, &accessErr) {
		t.Fatalf("expected AccessError on update, got %v", err)
	}
	if accessErr.Message != "You cannot edit another user's draft" {
		t.Fatalf("unexpected message: %q", accessErr.Message)
	}

	if err := svc.Delete(identityContext(bob), bob, d.ID); !errors.As(err, &accessErr) {
		t.Fatalf("expected AccessError on delete, got %v", err)
	}
	if accessErr.Message != "You cannot delete another user's draft" {
		t.Fatalf("unexpected message: %q", accessErr.Message)
	}

	// Owner email comparison is case-insensitive.
	aliceUpper := alice
	aliceUpper.Email = "ALICE@example.com"
	if _, err := svc.Get(identityContext(aliceUpper), aliceUpper, d.ID); err != nil {
		t.Fatalf("case-insensitive owner access: %v", err)
	}
}

func TestAdminOverridesOwnership(t *testing.T) {
	svc, _ := newTestService(t)
	d := mustCreate(t, svc, alice, "Alice Draft")

	if _, err := svc.Get(identityContext(carol), carol, d.ID); err != nil {
		t.Fatalf("admin Get: %v", err)
	}
	updated, err := svc.Update(identityContext(carol), carol, d.ID, &store.Draft{FullName: "Renamed", Active: true})
	if err != nil {
		t.Fatalf("admin Update: %v", err)
	}
	if updated.CreatedByEmail != "alice@example.com" {
		t.Fatalf("update must not change ownership: %+v", updated)
	}
	if err := svc.Delete(identityContext(carol), carol, d.ID); err != nil {
		t.Fatalf("admin Delete: %v", err)
	}
}

func TestMissingDraftIsNotFoundBeforeOwnership(t *testing.T) {
	svc, _ := newTestService(t)

	if _, err := svc.Get(identityContext(bob), bob, 404); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.Update(identityContext(bob), bob, 404, &store.Draft{FullName: "X"}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := svc.Delete(identityContext(bob), bob, 404); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
