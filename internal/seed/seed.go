// Package seed loads the JSON fixture files that bootstrap an empty database
// with login accounts and an initial client directory.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"clientdesk.org/internal/auth"
	"clientdesk.org/internal/obs"
	"clientdesk.org/internal/store"
)

type userFixture struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

type usersFile struct {
	Users []userFixture `json:"users"`
}

type clientsFile struct {
	Clients []store.Client `json:"clients"`
}

// Store is the persistence surface seeding needs.
type Store interface {
	store.UserStore
	store.ClientStore
}

// Users seeds login accounts from the fixture at path. It is a no-op when the
// users table already has rows, so restarts never duplicate accounts. Blank or
// unknown roles fall back to VIEWER.
func Users(ctx context.Context, st Store, path string) error {
	if path == "" {
		return nil
	}
	n, err := st.CountUsers(ctx)
	if err != nil {
		return fmt.Errorf("seed: count users: %w", err)
	}
	if n > 0 {
		return nil
	}

	var file usersFile
	if err := readJSON(path, &file); err != nil {
		return err
	}

	seeded := 0
	for _, f := range file.Users {
		email := strings.TrimSpace(f.Email)
		if email == "" {
			continue
		}
		role, err := auth.ParseRole(f.Role)
		if err != nil {
			role = auth.RoleViewer
		}
		u := &store.User{
			Email:    email,
			FullName: strings.TrimSpace(f.FullName),
			Role:     string(role),
			Active:   true,
		}
		if err := st.InsertUser(ctx, u); err != nil {
			return fmt.Errorf("seed: insert user %s: %w", email, err)
		}
		seeded++
	}
	obs.LogRequest(map[string]any{"level": "info", "msg": "seeded users", "count": seeded, "path": path})
	return nil
}

// Clients seeds the client directory from the fixture at path, only when the
// clients table is empty.
func Clients(ctx context.Context, st Store, path string) error {
	if path == "" {
		return nil
	}
	n, err := st.CountClients(ctx)
	if err != nil {
		return fmt.Errorf("seed: count clients: %w", err)
	}
	if n > 0 {
		return nil
	}

	var file clientsFile
	if err := readJSON(path, &file); err != nil {
		return err
	}

	seeded := 0
	for _, c := range file.Clients {
		if strings.TrimSpace(c.FullName) == "" {
			continue
		}
		c.ID = 0
		if err := st.InsertClient(ctx, &c); err != nil {
			return fmt.Errorf("seed: insert client %s: %w", c.FullName, err)
		}
		seeded++
	}
	obs.LogRequest(map[string]any{"level": "info", "msg": "seeded clients", "count": seeded, "path": path})
	return nil
}

// Run seeds users and clients in order. Either path may be empty to skip that
// fixture.
func Run(ctx context.Context, st Store, usersPath, clientsPath string) error {
	if err := Users(ctx, st, usersPath); err != nil {
		return err
	}
	return Clients(ctx, st, clientsPath)
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("seed: read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("seed: parse %s: %w", path, err)
	}
	return nil
}
