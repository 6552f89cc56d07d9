package export

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/backoffice/internal/api"
	"github.com/MrJamesThe3rd/backoffice/internal/export"
	"github.com/MrJamesThe3rd/backoffice/internal/http/auth"
	"github.com/MrJamesThe3rd/backoffice/internal/http/render"
	"github.com/MrJamesThe3rd/backoffice/internal/record"
)

type Handler struct {
	kind      record.Kind
	recordSvc *record.Service
	exportSvc *export.Service
}

func NewHandler(kind record.Kind, recordSvc *record.Service, exportSvc *export.Service) *Handler {
	return &Handler{kind: kind, recordSvc: recordSvc, exportSvc: exportSvc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.download)
}

// download writes the filtered, sorted collection as a workbook, or as a PDF
// report with format=pdf. Paging parameters are ignored.
func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.Require(w, r)
	if !ok {
		return
	}

	crit, _, _, err := api.DecodeQuery(r.URL.Query())
	if err != nil {
		render.Detail(w, http.StatusBadRequest, err.Error())
		return
	}

	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		render.Detail(w, http.StatusBadRequest, err.Error())
		return
	}

	recs, err := h.recordSvc.List(r.Context(), record.ListFilter{TenantID: id.TenantID, Kind: h.kind})
	if err != nil {
		render.Error(w, err)
		return
	}

	var buf bytes.Buffer
	if err := h.exportSvc.Write(h.kind, format, record.Filter(recs, crit), &buf); err != nil {
		render.Error(w, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", export.Filename(h.kind, format, time.Now())))

	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("failed to write export", "kind", h.kind, "format", format, "error", err)
	}
}
