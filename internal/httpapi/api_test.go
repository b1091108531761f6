package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"clientdesk.org/internal/audit"
	"clientdesk.org/internal/auth"
	"clientdesk.org/internal/clients"
	"clientdesk.org/internal/drafts"
	"clientdesk.org/internal/store"
)

type testEnv struct {
	api *API
	srv http.Handler
	db  *store.DB
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := store.Open(store.DriverSQLite, "")
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	key, err := auth.DeriveKey("integration-secret!", auth.SecretEncodingRaw)
	if err != nil {
		t.Fatalf("DeriveKey: %v", err)
	}
	tokens, err := auth.NewTokenService(key)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}

	policy := auth.NewPolicy()
	trail := audit.New(db)
	api := New(Deps{
		Tokens:   tokens,
		Policy:   policy,
		Users:    db,
		Clients:  clients.NewService(db, trail),
		Drafts:   drafts.NewService(db, policy, trail),
		Trail:    trail,
		Ready:    ReadyProbe{DB: db.SQLDB()},
		Version:  "test",
		TokenTTL: time.Hour,

		LoginRate:  100,
		LoginBurst: 100,
	})

	env := &testEnv{api: api, srv: api.Handler(), db: db}
	env.seedUser(t, "alice@example.com", "Alice Doe", "EDITOR", true)
	env.seedUser(t, "bob@example.com", "Bob Roe", "EDITOR", true)
	env.seedUser(t, "carol@example.com", "Carol Admin", "ADMIN", true)
	env.seedUser(t, "vera@example.com", "Vera Viewer", "VIEWER", true)
	env.seedUser(t, "gone@example.com", "Gone User", "EDITOR", false)
	return env
}

func (e *testEnv) seedUser(t *testing.T, email, name, role string, active bool) {
	t.Helper()
	u := &store.User{Email: email, FullName: name, Role: role, Active: active}
	if err := e.db.InsertUser(t.Context(), u); err != nil {
		t.Fatalf("InsertUser: %v", err)
	}
}

func (e *testEnv) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.srv.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) login(t *testing.T, email string) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/auth/login", "", fmt.Sprintf(`{"email":%q}`, email))
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: %d %s", email, rec.Code, rec.Body.String())
	}
	var resp struct {
		Token string     `json:"token"`
		User  store.User `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if resp.Token == "" || resp.User.Email == "" {
		t.Fatalf("incomplete login response: %s", rec.Body.String())
	}
	return resp.Token
}

func errEnvelope(t *testing.T, rec *httptest.ResponseRecorder) (label, message string) {
	t.Helper()
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error envelope: %v (%s)", err, rec.Body.String())
	}
	return resp["error"], resp["message"]
}

func TestLoginAndTokenRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "alice@example.com")

	rec := env.do(t, http.MethodGet, "/api/clients", token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list clients: %d %s", rec.Code, rec.Body.String())
	}
}

func TestLoginRejectsUnknownAndInactive(t *testing.T) {
	env := newTestEnv(t)

	for _, email := range []string{"nobody@example.com", "gone@example.com"} {
		rec := env.do(t, http.MethodPost, "/api/auth/login", "", fmt.Sprintf(`{"email":%q}`, email))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("login %s: expected 401, got %d", email, rec.Code)
		}
		label, msg := errEnvelope(t, rec)
		if label != "Unauthorized" || msg != "Unknown or inactive account" {
			t.Fatalf("unexpected envelope: %q %q", label, msg)
		}
	}
}

func TestAnonymousRequestIsUnauthorized(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/clients", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	label, _ := errEnvelope(t, rec)
	if label != "Unauthorized" {
		t.Fatalf("unexpected label: %q", label)
	}
}

func TestViewerCanReadButNotWriteClients(t *testing.T) {
	env := newTestEnv(t)
	viewer := env.login(t, "vera@example.com")
	editor := env.login(t, "alice@example.com")

	rec := env.do(t, http.MethodPost, "/api/clients", editor, `{"fullName":"Acme Industries","email":"contact@acme.example","active":true}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("editor create: %d %s", rec.Code, rec.Body.String())
	}

	if rec := env.do(t, http.MethodGet, "/api/clients", viewer, ""); rec.Code != http.StatusOK {
		t.Fatalf("viewer list: %d", rec.Code)
	}

	rec = env.do(t, http.MethodPost, "/api/clients", viewer, `{"fullName":"Nope"}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("viewer create: expected 403, got %d", rec.Code)
	}
	label, msg := errEnvelope(t, rec)
	if label != "Forbidden" || msg != "Insufficient permissions" {
		t.Fatalf("unexpected envelope: %q %q", label, msg)
	}

	// Viewers are also shut out of drafts and logs entirely.
	if rec := env.do(t, http.MethodGet, "/api/drafts", viewer, ""); rec.Code != http.StatusForbidden {
		t.Fatalf("viewer drafts: expected 403, got %d", rec.Code)
	}
	if rec := env.do(t, http.MethodGet, "/api/logs", viewer, ""); rec.Code != http.StatusForbidden {
		t.Fatalf("viewer logs: expected 403, got %d", rec.Code)
	}
}

func TestDraftOwnershipOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	alice := env.login(t, "alice@example.com")
	bob := env.login(t, "bob@example.com")
	carol := env.login(t, "carol@example.com")

	rec := env.do(t, http.MethodPost, "/api/drafts", alice, `{"fullName":"Draft One","email":"draft@example.com","active":true}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create draft: %d %s", rec.Code, rec.Body.String())
	}
	var d store.Draft
	if err := json.Unmarshal(rec.Body.Bytes(), &d); err != nil {
		t.Fatalf("decode draft: %v", err)
	}
	if d.CreatedByEmail != "alice@example.com" {
		t.Fatalf("owner not stamped: %+v", d)
	}
	path := fmt.Sprintf("/api/drafts/%d", d.ID)

	rec = env.do(t, http.MethodGet, path, bob, "")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("foreign get: expected 403, got %d", rec.Code)
	}
	if _, msg := errEnvelope(t, rec); msg != "You cannot access another user's draft" {
		t.Fatalf("unexpected message: %q", msg)
	}

	rec = env.do(t, http.MethodPut, path, bob, `{"fullName":"Hijack","active":true}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("foreign update: expected 403, got %d", rec.Code)
	}
	if _, msg := errEnvelope(t, rec); msg != "You cannot edit another user's draft" {
		t.Fatalf("unexpected message: %q", msg)
	}

	// Admin override works on every draft.
	if rec := env.do(t, http.MethodGet, path, carol, ""); rec.Code != http.StatusOK {
		t.Fatalf("admin get: %d %s", rec.Code, rec.Body.String())
	}

	// Bob sees only his own drafts in the listing.
	rec = env.do(t, http.MethodGet, "/api/drafts", bob, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("bob list: %d", rec.Code)
	}
	var list []store.Draft
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("bob must not see alice's drafts: %+v", list)
	}

	// A missing draft is 404 for everyone, even non-owners.
	rec = env.do(t, http.MethodGet, "/api/drafts/9999", bob, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing draft: expected 404, got %d", rec.Code)
	}
	if _, msg := errEnvelope(t, rec); msg != "Draft not found" {
		t.Fatalf("unexpected message: %q", msg)
	}
}

func TestExpiredTokenIsUnauthorized(t *testing.T) {
	env := newTestEnv(t)

	// ttl 0 mints a token that is already outside its validity window.
	token, _, err := env.api.tokens.Issue(auth.Identity{
		Email: "alice@example.com", UserID: 1, Role: auth.RoleEditor,
	}, 0)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	rec := env.do(t, http.MethodGet, "/api/clients", token, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestMutationsAppearInAuditLog(t *testing.T) {
	env := newTestEnv(t)
	alice := env.login(t, "alice@example.com")

	rec := env.do(t, http.MethodPost, "/api/clients", alice, `{"fullName":"Acme Industries","active":true}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create client: %d", rec.Code)
	}
	rec = env.do(t, http.MethodPost, "/api/drafts", alice, `{"fullName":"Draft One","active":true}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create draft: %d", rec.Code)
	}

	rec = env.do(t, http.MethodGet, "/api/logs", alice, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("logs: %d %s", rec.Code, rec.Body.String())
	}
	var trail []store.AuditRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &trail); err != nil {
		t.Fatalf("decode trail: %v", err)
	}
	if len(trail) != 2 {
		t.Fatalf("expected 2 audit records, got %d", len(trail))
	}
	// Newest first: the draft creation is on top.
	if trail[0].EntityType != audit.EntityDraft || trail[1].EntityType != audit.EntityClient {
		t.Fatalf("unexpected trail order: %+v", trail)
	}
	for _, rec := range trail {
		if rec.ActorEmail != "alice@example.com" {
			t.Fatalf("unexpected actor: %+v", rec)
		}
	}
}

func TestHealthAndReadyEndpoints(t *testing.T) {
	env := newTestEnv(t)

	if rec := env.do(t, http.MethodGet, "/healthz", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("healthz: %d", rec.Code)
	}
	if rec := env.do(t, http.MethodGet, "/readyz", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("readyz: %d", rec.Code)
	}
	rec := env.do(t, http.MethodGet, "/openapi.yaml", "", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "clientdesk API") {
		t.Fatalf("openapi.yaml: %d", rec.Code)
	}
}
