package importcsv

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/backoffice/internal/api"
	"github.com/MrJamesThe3rd/backoffice/internal/http/auth"
	"github.com/MrJamesThe3rd/backoffice/internal/http/render"
	"github.com/MrJamesThe3rd/backoffice/internal/importer"
	"github.com/MrJamesThe3rd/backoffice/internal/record"
)

const (
	maxUpload = 10 << 20
	xlsxMIME  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type Handler struct {
	kind      record.Kind
	importSvc *importer.Service
	recordSvc *record.Service
}

func NewHandler(kind record.Kind, importSvc *importer.Service, recordSvc *record.Service) *Handler {
	return &Handler{
		kind:      kind,
		importSvc: importSvc,
		recordSvc: recordSvc,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.importFile)
	r.Post("/confirm", h.confirmImport)
}

// importFile answers 201 when every row was written and 409 with the
// new/conflicting split when some references already exist. Nothing is
// written in the 409 case.
func (h *Handler) importFile(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.Require(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxUpload); err != nil {
		render.Detail(w, http.StatusBadRequest, "failed to parse form: "+err.Error())
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		render.Detail(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	format, err := sniff(file, importer.Format(r.FormValue("format")))
	if err != nil {
		render.Detail(w, http.StatusBadRequest, err.Error())
		return
	}

	params, err := h.importSvc.Import(format, h.kind, file)
	if err != nil {
		render.Detail(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.recordSvc.ImportBatch(r.Context(), id.TenantID, h.kind, params)
	if err != nil {
		render.Error(w, err)
		return
	}

	if len(result.Conflicts) > 0 {
		resp := api.ImportResponse{
			New:       make([]api.CreateRequest, 0, len(result.New)),
			Conflicts: make([]api.ImportConflict, 0, len(result.Conflicts)),
		}

		for _, p := range result.New {
			resp.New = append(resp.New, api.FromParams(p))
		}

		for _, c := range result.Conflicts {
			resp.Conflicts = append(resp.Conflicts, api.ImportConflict{
				Incoming: api.FromParams(c.Incoming),
				Existing: api.FromRecord(c.Existing),
			})
		}

		render.JSON(w, http.StatusConflict, resp)

		return
	}

	render.JSON(w, http.StatusCreated, api.ImportResponse{Imported: api.FromRecords(result.Imported)})
}

// sniff checks the upload's content type against the requested format and
// picks xlsx when no format was given and the file is a zip container. The
// file is rewound afterwards.
func sniff(file multipart.File, format importer.Format) (importer.Format, error) {
	mt, err := mimetype.DetectReader(file)
	if err != nil {
		return "", fmt.Errorf("reading upload: %w", err)
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewinding upload: %w", err)
	}

	isText := false
	for m := mt; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			isText = true
		}
	}

	isWorkbook := mt.Is(xlsxMIME) || mt.Is("application/zip")

	switch {
	case format == "" && isWorkbook:
		return importer.FormatXLSX, nil
	case format == importer.FormatXLSX && isWorkbook:
		return format, nil
	case format != importer.FormatXLSX && isText:
		return format, nil
	}

	return "", fmt.Errorf("unsupported file type %s for format %q", mt.String(), format)
}

func (h *Handler) confirmImport(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.Require(w, r)
	if !ok {
		return
	}

	var req api.ConfirmRequest
	if err := render.Decode(r, &req); err != nil {
		render.Detail(w, http.StatusBadRequest, err.Error())
		return
	}

	params := make([]record.CreateParams, 0, len(req.Params))
	for _, p := range req.Params {
		params = append(params, p.Params(id.TenantID, h.kind))
	}

	recs, err := h.recordSvc.CreateBatch(r.Context(), id.TenantID, h.kind, params)
	if err != nil {
		render.Error(w, err)
		return
	}

	render.JSON(w, http.StatusCreated, api.ImportResponse{Imported: api.FromRecords(recs)})
}
