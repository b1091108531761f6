package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"clientdesk.org/internal/auth"
	"clientdesk.org/internal/clients"
	"clientdesk.org/internal/store"
)

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

func (a *API) ListClients(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.require(w, r, auth.OpClientsView); !ok {
		return
	}
	list, err := a.clients.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, labelInternal, "Could not list clients")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (a *API) GetClient(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.require(w, r, auth.OpClientsView); !ok {
		return
	}
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, labelBadRequest, "Invalid client id")
		return
	}
	c, err := a.clients.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, labelNotFound, "Client not found")
			return
		}
		writeError(w, http.StatusInternalServerError, labelInternal, "Could not load client")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (a *API) SearchClients(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.require(w, r, auth.OpClientsView); !ok {
		return
	}
	list, err := a.clients.Search(r.Context(), r.URL.Query().Get("keyword"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, labelInternal, "Search failed")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (a *API) CountClients(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.require(w, r, auth.OpClientsView); !ok {
		return
	}
	n, err := a.clients.Count(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, labelInternal, "Count failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"count": n})
}

func (a *API) CreateClient(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.require(w, r, auth.OpClientsCreate); !ok {
		return
	}
	var c store.Client
	if err := decodeJSON(r, &c); err != nil {
		writeError(w, http.StatusBadRequest, labelBadRequest, err.Error())
		return
	}
	c.ID = 0
	if err := a.clients.Create(r.Context(), &c); err != nil {
		if errors.Is(err, clients.ErrInvalid) {
			writeError(w, http.StatusBadRequest, labelBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, labelInternal, "Could not create client")
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (a *API) UpdateClient(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.require(w, r, auth.OpClientsUpdate); !ok {
		return
	}
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, labelBadRequest, "Invalid client id")
		return
	}
	var c store.Client
	if err := decodeJSON(r, &c); err != nil {
		writeError(w, http.StatusBadRequest, labelBadRequest, err.Error())
		return
	}
	c.ID = id
	if err := a.clients.Update(r.Context(), &c); err != nil {
		switch {
		case errors.Is(err, clients.ErrInvalid):
			writeError(w, http.StatusBadRequest, labelBadRequest, err.Error())
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, labelNotFound, "Client not found")
		default:
			writeError(w, http.StatusInternalServerError, labelInternal, "Could not update client")
		}
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (a *API) DeleteClient(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.require(w, r, auth.OpClientsDelete); !ok {
		return
	}
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, labelBadRequest, "Invalid client id")
		return
	}
	if err := a.clients.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, labelNotFound, "Client not found")
			return
		}
		writeError(w, http.StatusInternalServerError, labelInternal, "Could not delete client")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
