package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"clientdesk.org/internal/auth"
	"clientdesk.org/internal/store"
)

type loginRequest struct {
	Email string `json:"email"`
}

type loginResponse struct {
	Token string      `json:"token"`
	User  *store.User `json:"user"`
}

// Login exchanges a known, active email address for a signed token. There is
// no password step; access to the mailbox listed in the user table is the
// credential. Unknown and inactive accounts get the same answer so the
// endpoint cannot be used to probe which addresses exist.
func (a *API) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, labelBadRequest, err.Error())
		return
	}
	email := strings.TrimSpace(req.Email)
	if email == "" {
		writeError(w, http.StatusBadRequest, labelBadRequest, "Email is required")
		return
	}

	u, err := a.users.FindUserByEmail(r.Context(), email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, labelUnauthorized, "Unknown or inactive account")
			return
		}
		writeError(w, http.StatusInternalServerError, labelInternal, "Login failed")
		return
	}
	if !u.Active {
		writeError(w, http.StatusUnauthorized, labelUnauthorized, "Unknown or inactive account")
		return
	}

	role, err := auth.ParseRole(u.Role)
	if err != nil {
		writeError(w, http.StatusInternalServerError, labelInternal, "Account has no valid role")
		return
	}

	token, _, err := a.tokens.Issue(auth.Identity{
		Email:       u.Email,
		UserID:      u.ID,
		Role:        role,
		DisplayName: u.FullName,
	}, a.tokenTTL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, labelInternal, "Login failed")
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{Token: token, User: u})
}
