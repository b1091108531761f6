package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
)

const clientColumns = `id, full_name, display_name, email, details, active, location`

func (s *DB) ListClients(ctx context.Context) ([]Client, error) {
	list := []Client{}
	err := s.db.SelectContext(ctx, &list, `select `+clientColumns+` from clients order by id`)
	return list, err
}

func (s *DB) GetClient(ctx context.Context, id int64) (*Client, error) {
	var c Client
	q := s.db.Rebind(`select ` + clientColumns + ` from clients where id = ?`)
	if err := s.db.GetContext(ctx, &c, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// SearchClients matches the keyword against name and email, case-insensitively.
// A blank keyword returns the full list.
func (s *DB) SearchClients(ctx context.Context, keyword string) ([]Client, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return s.ListClients(ctx)
	}
	pattern := "%" + strings.ToLower(keyword) + "%"
	list := []Client{}
	q := s.db.Rebind(`select ` + clientColumns + ` from clients
		where lower(full_name) like ? or lower(email) like ? order by id`)
	err := s.db.SelectContext(ctx, &list, q, pattern, pattern)
	return list, err
}

func (s *DB) CountClients(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.GetContext(ctx, &n, `select count(*) from clients`); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *DB) InsertClient(ctx context.Context, c *Client) error {
	id, err := s.insert(ctx,
		`insert into clients (full_name, display_name, email, details, active, location) values (?, ?, ?, ?, ?, ?)`,
		c.FullName, c.DisplayName, c.Email, c.Details, c.Active, c.Location)
	if err != nil {
		return err
	}
	c.ID = id
	return nil
}

func (s *DB) UpdateClient(ctx context.Context, c *Client) error {
	q := s.db.Rebind(`update clients set full_name = ?, display_name = ?, email = ?, details = ?, active = ?, location = ? where id = ?`)
	res, err := s.db.ExecContext(ctx, q, c.FullName, c.DisplayName, c.Email, c.Details, c.Active, c.Location, c.ID)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (s *DB) DeleteClient(ctx context.Context, id int64) error {
	q := s.db.Rebind(`delete from clients where id = ?`)
	res, err := s.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func requireRowAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
