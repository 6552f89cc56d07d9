package record

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/backoffice/internal/api"
	"github.com/MrJamesThe3rd/backoffice/internal/http/auth"
	"github.com/MrJamesThe3rd/backoffice/internal/http/render"
	"github.com/MrJamesThe3rd/backoffice/internal/record"
)

// Handler serves one kind's collection.
type Handler struct {
	kind record.Kind
	svc  *record.Service
}

func NewHandler(kind record.Kind, svc *record.Service) *Handler {
	return &Handler{kind: kind, svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/view", h.view)
	r.Get("/summary", h.summary)
	r.Get("/{id}", h.get)
	r.Delete("/{id}", h.delete)
	r.Patch("/{id}/status", h.updateStatus)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.Require(w, r)
	if !ok {
		return
	}

	var req api.CreateRequest
	if err := render.Decode(r, &req); err != nil {
		render.Detail(w, http.StatusBadRequest, err.Error())
		return
	}

	rec, err := h.svc.Create(r.Context(), req.Params(id.TenantID, h.kind))
	if err != nil {
		render.Error(w, err)
		return
	}

	render.JSON(w, http.StatusCreated, api.FromRecord(rec))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.Require(w, r)
	if !ok {
		return
	}

	filter := record.ListFilter{TenantID: id.TenantID, Kind: h.kind}

	if s := r.URL.Query().Get("status"); s != "" {
		filter.Status = new(record.Status(s))
	}

	if s := r.URL.Query().Get("start_date"); s != "" {
		if t, err := time.Parse(time.DateOnly, s); err == nil {
			filter.StartDate = new(t)
		}
	}

	if s := r.URL.Query().Get("end_date"); s != "" {
		if t, err := time.Parse(time.DateOnly, s); err == nil {
			filter.EndDate = new(t)
		}
	}

	recs, err := h.svc.List(r.Context(), filter)
	if err != nil {
		render.Error(w, err)
		return
	}

	render.JSON(w, http.StatusOK, api.FromRecords(recs))
}

func (h *Handler) view(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.Require(w, r)
	if !ok {
		return
	}

	crit, page, pageSize, err := api.DecodeQuery(r.URL.Query())
	if err != nil {
		render.Detail(w, http.StatusBadRequest, err.Error())
		return
	}

	v, err := h.svc.View(r.Context(), id.TenantID, h.kind, crit, page, pageSize)
	if err != nil {
		render.Error(w, err)
		return
	}

	render.JSON(w, http.StatusOK, api.FromView(v))
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.Require(w, r)
	if !ok {
		return
	}

	kpis, err := h.svc.Summary(r.Context(), id.TenantID, h.kind)
	if err != nil {
		render.Error(w, err)
		return
	}

	render.JSON(w, http.StatusOK, api.FromKPIs(kpis))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.Require(w, r)
	if !ok {
		return
	}

	recID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		render.Detail(w, http.StatusBadRequest, "invalid id")
		return
	}

	rec, err := h.svc.Get(r.Context(), id.TenantID, recID)
	if err != nil {
		render.Error(w, err)
		return
	}

	if rec.Kind != h.kind {
		render.Error(w, record.ErrNotFound)
		return
	}

	render.JSON(w, http.StatusOK, api.FromRecord(rec))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.Require(w, r)
	if !ok {
		return
	}

	recID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		render.Detail(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.svc.Delete(r.Context(), id.TenantID, h.kind, recID); err != nil {
		render.Error(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.Require(w, r)
	if !ok {
		return
	}

	recID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		render.Detail(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req api.StatusRequest
	if err := render.Decode(r, &req); err != nil {
		render.Detail(w, http.StatusBadRequest, err.Error())
		return
	}

	rec, err := h.svc.Transition(r.Context(), id.TenantID, h.kind, recID, req.Status, req.Version)
	if err != nil {
		render.Error(w, err)
		return
	}

	render.JSON(w, http.StatusOK, api.FromRecord(rec))
}
