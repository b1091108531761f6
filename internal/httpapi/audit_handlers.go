package httpapi

import (
	"net/http"

	"clientdesk.org/internal/auth"
)

// ListLogs returns the audit trail, newest entry first. Viewers are shut out
// by the policy table; there is no pagination because the trail is read for
// review, not replay.
func (a *API) ListLogs(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.require(w, r, auth.OpLogsView); !ok {
		return
	}
	trail, err := a.trail.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, labelInternal, "Could not load audit log")
		return
	}
	writeJSON(w, http.StatusOK, trail)
}
