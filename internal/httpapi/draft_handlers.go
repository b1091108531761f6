package httpapi

import (
	"errors"
	"net/http"

	"clientdesk.org/internal/auth"
	"clientdesk.org/internal/drafts"
	"clientdesk.org/internal/store"
)

// writeDraftError maps service failures onto the envelope. A missing draft is
// always 404, even for callers who would not have been allowed to see it.
func writeDraftError(w http.ResponseWriter, err error, fallback string) {
	var accessErr *drafts.AccessError
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, labelNotFound, "Draft not found")
	case errors.As(err, &accessErr):
		writeError(w, http.StatusForbidden, labelForbidden, accessErr.Message)
	case errors.Is(err, drafts.ErrInvalid):
		writeError(w, http.StatusBadRequest, labelBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, labelInternal, fallback)
	}
}

func (a *API) ListDrafts(w http.ResponseWriter, r *http.Request) {
	identity, ok := a.require(w, r, auth.OpDraftsView)
	if !ok {
		return
	}
	list, err := a.drafts.ListFor(r.Context(), identity)
	if err != nil {
		writeError(w, http.StatusInternalServerError, labelInternal, "Could not list drafts")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (a *API) GetDraft(w http.ResponseWriter, r *http.Request) {
	identity, ok := a.require(w, r, auth.OpDraftsView)
	if !ok {
		return
	}
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, labelBadRequest, "Invalid draft id")
		return
	}
	d, err := a.drafts.Get(r.Context(), identity, id)
	if err != nil {
		writeDraftError(w, err, "Could not load draft")
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (a *API) CreateDraft(w http.ResponseWriter, r *http.Request) {
	identity, ok := a.require(w, r, auth.OpDraftsCreate)
	if !ok {
		return
	}
	var d store.Draft
	if err := decodeJSON(r, &d); err != nil {
		writeError(w, http.StatusBadRequest, labelBadRequest, err.Error())
		return
	}
	d.ID = 0
	if err := a.drafts.Create(r.Context(), identity, &d); err != nil {
		writeDraftError(w, err, "Could not create draft")
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

func (a *API) UpdateDraft(w http.ResponseWriter, r *http.Request) {
	identity, ok := a.require(w, r, auth.OpDraftsUpdate)
	if !ok {
		return
	}
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, labelBadRequest, "Invalid draft id")
		return
	}
	var in store.Draft
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, labelBadRequest, err.Error())
		return
	}
	d, err := a.drafts.Update(r.Context(), identity, id, &in)
	if err != nil {
		writeDraftError(w, err, "Could not update draft")
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (a *API) DeleteDraft(w http.ResponseWriter, r *http.Request) {
	identity, ok := a.require(w, r, auth.OpDraftsDelete)
	if !ok {
		return
	}
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, labelBadRequest, "Invalid draft id")
		return
	}
	if err := a.drafts.Delete(r.Context(), identity, id); err != nil {
		writeDraftError(w, err, "Could not delete draft")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
