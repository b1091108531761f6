package audit

import (
	"context"
	"errors"
	"testing"

	"clientdesk.org/internal/auth"
	"clientdesk.org/internal/store"
)

type fakeAuditStore struct {
	records []store.AuditRecord
	failing bool
}

func (f *fakeAuditStore) AppendAudit(ctx context.Context, rec *store.AuditRecord) error {
	if f.failing {
		return errors.New("disk full")
	}
	rec.ID = int64(len(f.records) + 1)
	f.records = append(f.records, *rec)
	return nil
}

func (f *fakeAuditStore) ListAudit(ctx context.Context) ([]store.AuditRecord, error) {
	out := make([]store.AuditRecord, len(f.records))
	for i, rec := range f.records {
		out[len(f.records)-1-i] = rec
	}
	return out, nil
}

func TestRecordAttributesIdentity(t *testing.T) {
	fake := &fakeAuditStore{}
	trail := New(fake)

	ctx := auth.ContextWithIdentity(context.Background(), auth.Identity{
		Email:       "alice@example.com",
		UserID:      1,
		Role:        auth.RoleEditor,
		DisplayName: "Alice Doe",
	})
	if err := trail.Record(ctx, ActionCreate, "DRAFT", 42); err != nil {
		t.Fatalf("Record: %v", err)
	}

	if len(fake.records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(fake.records))
	}
	rec := fake.records[0]
	if rec.ActorEmail != "alice@example.com" || rec.ActorName != "Alice Doe" {
		t.Fatalf("unexpected attribution: %+v", rec)
	}
	if rec.Action != ActionCreate || rec.EntityType != "DRAFT" || rec.EntityID != 42 {
		t.Fatalf("unexpected record: %+v", rec)
	}
}

func TestRecordFallsBackToSystemActor(t *testing.T) {
	fake := &fakeAuditStore{}
	trail := New(fake)

	if err := trail.Record(context.Background(), ActionDelete, "CLIENT", 7); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if fake.records[0].ActorEmail != SystemActor {
		t.Fatalf("expected system actor, got %q", fake.records[0].ActorEmail)
	}
}

func TestRecordReportsStoreFailure(t *testing.T) {
	trail := New(&fakeAuditStore{failing: true})
	if err := trail.Record(context.Background(), ActionUpdate, "CLIENT", 1); err == nil {
		t.Fatal("expected append failure to surface")
	}
}

func TestListNewestFirst(t *testing.T) {
	fake := &fakeAuditStore{}
	trail := New(fake)
	ctx := context.Background()

	_ = trail.Record(ctx, ActionCreate, "CLIENT", 1)
	_ = trail.Record(ctx, ActionUpdate, "CLIENT", 1)

	list, err := trail.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].Action != ActionUpdate {
		t.Fatalf("expected newest first, got %+v", list)
	}
}
