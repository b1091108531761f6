package store

import (
	"context"
	"database/sql"
	"errors"
)

const draftColumns = `id, full_name, display_name, email, details, active, location,
	created_by_email, created_by_name, created_at, updated_at`

func (s *DB) ListDrafts(ctx context.Context) ([]Draft, error) {
	list := []Draft{}
	err := s.db.SelectContext(ctx, &list,
		`select `+draftColumns+` from drafts order by updated_at desc, id desc`)
	return list, err
}

func (s *DB) ListDraftsByOwner(ctx context.Context, ownerEmail string) ([]Draft, error) {
	list := []Draft{}
	q := s.db.Rebind(`select ` + draftColumns + ` from drafts
		where lower(created_by_email) = lower(?) order by updated_at desc, id desc`)
	err := s.db.SelectContext(ctx, &list, q, ownerEmail)
	return list, err
}

func (s *DB) GetDraft(ctx context.Context, id int64) (*Draft, error) {
	var d Draft
	q := s.db.Rebind(`select ` + draftColumns + ` from drafts where id = ?`)
	if err := s.db.GetContext(ctx, &d, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

// InsertDraft stores a new draft, stamping both timestamps with the same
// instant.
func (s *DB) InsertDraft(ctx context.Context, d *Draft) error {
	now := s.now().UTC()
	d.CreatedAt = now
	d.UpdatedAt = now
	id, err := s.insert(ctx,
		`insert into drafts (full_name, display_name, email, details, active, location,
			created_by_email, created_by_name, created_at, updated_at)
		 values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.FullName, d.DisplayName, d.Email, d.Details, d.Active, d.Location,
		d.CreatedByEmail, d.CreatedByName, d.CreatedAt, d.UpdatedAt)
	if err != nil {
		return err
	}
	d.ID = id
	return nil
}

// UpdateDraft rewrites the editable fields and bumps updated_at. Ownership
// columns are deliberately not touched.
func (s *DB) UpdateDraft(ctx context.Context, d *Draft) error {
	d.UpdatedAt = s.now().UTC()
	q := s.db.Rebind(`update drafts set full_name = ?, display_name = ?, email = ?, details = ?,
		active = ?, location = ?, updated_at = ? where id = ?`)
	res, err := s.db.ExecContext(ctx, q,
		d.FullName, d.DisplayName, d.Email, d.Details, d.Active, d.Location, d.UpdatedAt, d.ID)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (s *DB) DeleteDraft(ctx context.Context, id int64) error {
	q := s.db.Rebind(`delete from drafts where id = ?`)
	res, err := s.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}
