// Package api implements the REST surface of the invoicing server: one
// generic CRUD handler per entity family plus the chi router tying them to
// the websocket hub.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/faktur-app/faktur/internal/common"
	"github.com/faktur-app/faktur/internal/logging"
	"github.com/faktur-app/faktur/internal/models"
	"github.com/faktur-app/faktur/internal/server/repository"
)

// dateLayout matches the date strings used throughout the invoicing data.
const dateLayout = "02/01/2006"

// Broadcaster pushes a data-change notification to connected clients.
// Implemented by the realtime hub.
type Broadcaster interface {
	DataChanged(family common.Family)
}

// recordEnvelope and friends are the wire envelopes shared with the client.
type recordEnvelope[R any] struct {
	Record R `json:"Record"`
}

type listEnvelope[R any] struct {
	Records map[string]R `json:"Records"`
}

type deleteEnvelope struct {
	Success bool `json:"Success"`
}

// Handler serves one entity family. Family-specific behavior (metadata
// assignment, validation, delete guards) is injected by the constructors.
type Handler[R models.Record] struct {
	family    common.Family
	repo      repository.Records[R]
	broadcast Broadcaster
	log       logging.Logger

	// prepare turns an incoming record into its canonical form: assigns id
	// and createdAt, recomputes derived fields, validates. An empty id means
	// the server picks one; existing is nil on create and on upserts of
	// unseen ids.
	prepare func(ctx context.Context, incoming R, id string, existing *R) (R, error)

	// beforeDelete may refuse a delete; a refusal maps to 409.
	beforeDelete func(ctx context.Context, id string) error
}

// Routes mounts the family's CRUD endpoints on r.
func (h *Handler[R]) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Put("/{id}", h.upsert)
	r.Delete("/{id}", h.delete)
}

func (h *Handler[R]) list(w http.ResponseWriter, r *http.Request) {
	records, err := h.repo.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if records == nil {
		records = map[string]R{}
	}
	h.writeJSON(w, r, http.StatusOK, listEnvelope[R]{Records: records})
}

func (h *Handler[R]) create(w http.ResponseWriter, r *http.Request) {
	var incoming R
	if err := json.NewDecoder(r.Body).Decode(&incoming); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rec, err := h.prepare(r.Context(), incoming, incoming.Key(), nil)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.repo.Upsert(r.Context(), rec); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.broadcast.DataChanged(h.family)
	h.writeJSON(w, r, http.StatusCreated, recordEnvelope[R]{Record: rec})
}

// upsert is create-or-replace under a client-chosen id. Reconciliation
// pushes offline-created records through here, so an unknown id is not an
// error.
func (h *Handler[R]) upsert(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var incoming R
	if err := json.NewDecoder(r.Body).Decode(&incoming); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var existing *R
	if prev, err := h.repo.Get(r.Context(), id); err == nil {
		existing = &prev
	} else if !errors.Is(err, common.ErrorNotFound) {
		h.writeError(w, r, err)
		return
	}

	rec, err := h.prepare(r.Context(), incoming, id, existing)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.repo.Upsert(r.Context(), rec); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.broadcast.DataChanged(h.family)
	h.writeJSON(w, r, http.StatusOK, recordEnvelope[R]{Record: rec})
}

func (h *Handler[R]) delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if h.beforeDelete != nil {
		if err := h.beforeDelete(r.Context(), id); err != nil {
			h.writeError(w, r, err)
			return
		}
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.broadcast.DataChanged(h.family)
	h.writeJSON(w, r, http.StatusOK, deleteEnvelope{Success: true})
}

func (h *Handler[R]) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error(r.Context(), "failed to encode response", "error", err)
	}
}

func (h *Handler[R]) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, common.ErrorValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, common.ErrorCustomerHasInvoices):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		h.log.Error(r.Context(), "request failed", "family", h.family, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
