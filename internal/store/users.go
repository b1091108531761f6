package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
)

// FindUserByEmail looks up a login account, matching the address
// case-insensitively.
func (s *DB) FindUserByEmail(ctx context.Context, email string) (*User, error) {
	email = strings.TrimSpace(email)
	var u User
	q := s.db.Rebind(`select id, email, full_name, role, active from users where lower(email) = lower(?)`)
	if err := s.db.GetContext(ctx, &u, q, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// CountUsers reports the number of seeded accounts.
func (s *DB) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.GetContext(ctx, &n, `select count(*) from users`); err != nil {
		return 0, err
	}
	return n, nil
}

// InsertUser stores a new account and fills in its generated id.
func (s *DB) InsertUser(ctx context.Context, u *User) error {
	id, err := s.insert(ctx,
		`insert into users (email, full_name, role, active) values (?, ?, ?, ?)`,
		u.Email, u.FullName, u.Role, u.Active)
	if err != nil {
		return err
	}
	u.ID = id
	return nil
}
