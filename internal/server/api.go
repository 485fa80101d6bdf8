package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/nclalperen/game-tracker-mvp/internal/formatter"
	"github.com/nclalperen/game-tracker-mvp/internal/importer"
	"github.com/nclalperen/game-tracker-mvp/internal/library"
	"github.com/nclalperen/game-tracker-mvp/internal/shared"
	"github.com/nclalperen/game-tracker-mvp/internal/suggest"
	"github.com/nclalperen/game-tracker-mvp/internal/tasks"
)

// MaxUploadBytes caps import request bodies.
const MaxUploadBytes = 10 << 20

// LibraryHandler serves the library, exports, suggestions and imports.
type LibraryHandler struct {
	engine  *tasks.ImportEngine
	weights suggest.Weights
	logger  *log.Logger
	mux     *http.ServeMux
}

// NewLibraryHandler creates a [LibraryHandler] over engine's store.
func NewLibraryHandler(engine *tasks.ImportEngine, weights suggest.Weights, logger *log.Logger) *LibraryHandler {
	h := &LibraryHandler{
		engine:  engine,
		weights: weights,
		logger:  logger,
		mux:     http.NewServeMux(),
	}

	h.mux.HandleFunc("GET /api/library", h.handleLibrary)
	h.mux.HandleFunc("GET /api/suggestions", h.handleSuggestions)
	h.mux.HandleFunc("GET /api/export.json", h.handleExportJSON)
	h.mux.HandleFunc("GET /api/export.csv", h.handleExportTable(formatter.FormatCSV))
	h.mux.HandleFunc("GET /api/export.xlsx", h.handleExportTable(formatter.FormatXLSX))
	h.mux.HandleFunc("POST /api/import/csv", h.handleImportTable(formatter.FormatCSV))
	h.mux.HandleFunc("POST /api/import/xlsx", h.handleImportTable(formatter.FormatXLSX))
	h.mux.HandleFunc("POST /api/import/json", h.handleImportJSON)
	return h
}

// Routes returns the HTTP routes this handler serves.
func (h *LibraryHandler) Routes() []string {
	return []string{
		"GET /api/library",
		"GET /api/suggestions",
		"GET /api/export.json",
		"GET /api/export.csv",
		"GET /api/export.xlsx",
		"POST /api/import/csv",
		"POST /api/import/xlsx",
		"POST /api/import/json",
	}
}

func (h *LibraryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// NewAPI builds the router for the local API with logging and recovery.
func NewAPI(engine *tasks.ImportEngine, weights suggest.Weights, logger *log.Logger) *BasicRouter {
	router := NewBasicRouter()
	router.Use(Logging(logger), Recovery(logger))
	router.Handler(NewLibraryHandler(engine, weights, logger))
	return router
}

type libraryResponse struct {
	Count  int             `json:"count"`
	Rows   []library.Row   `json:"rows,omitempty"`
	Groups []library.Group `json:"groups,omitempty"`
}

// handleLibrary lists rows matching the query filters; ?group=member buckets them by owner.
func (h *LibraryHandler) handleLibrary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := library.Filters{
		Platform: q.Get("platform"),
		Status:   q.Get("status"),
		Member:   q.Get("member"),
		Account:  q.Get("account"),
		Service:  q.Get("service"),
		Score:    q.Get("score"),
		Duration: q.Get("duration"),
		Value:    q.Get("value"),
	}
	if err := filters.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rows, err := h.rows(r)
	if err != nil {
		h.fail(w, err)
		return
	}
	rows = filters.Apply(rows)

	resp := libraryResponse{Count: len(rows)}
	if q.Get("group") == "member" {
		resp.Groups = library.GroupByMember(rows)
	} else {
		resp.Rows = rows
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleSuggestions ranks the library; ?kind= restricts to PlayNext or BuyClaim and ?limit= caps the list.
func (h *LibraryHandler) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	rows, err := h.rows(r)
	if err != nil {
		h.fail(w, err)
		return
	}
	out := suggest.Compute(rows, h.weights)

	q := r.URL.Query()
	limit := len(out)
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid limit %q", v))
			return
		}
		limit = n
	}
	if v := q.Get("kind"); v != "" {
		kind, err := suggest.ParseKind(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid kind %q", v))
			return
		}
		out = suggest.Top(out, kind, limit)
	} else if limit < len(out) {
		out = out[:limit]
	}
	if out == nil {
		out = []suggest.Suggestion{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *LibraryHandler) handleExportJSON(w http.ResponseWriter, r *http.Request) {
	snap, err := h.engine.Store().Snapshot(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	data, err := formatter.ExportJSON(snap, true)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeAttachment(w, "application/json", "gametracker-export.json", data)
}

func (h *LibraryHandler) handleExportTable(format formatter.Format) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := h.rows(r)
		if err != nil {
			h.fail(w, err)
			return
		}

		records := library.Records(rows)
		var (
			data        []byte
			contentType string
		)
		switch format {
		case formatter.FormatXLSX:
			data, err = formatter.ToXLSX(records, "Library")
			contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		default:
			data, err = formatter.ToCSV(records)
			contentType = "text/csv; charset=utf-8"
		}
		if err != nil {
			h.fail(w, err)
			return
		}
		writeAttachment(w, contentType, "gametracker-library."+string(format), data)
	}
}

type importResponse struct {
	Rows      int               `json:"rows"`
	Malformed int               `json:"malformed"`
	Rejected  int               `json:"rejected"`
	Reused    int               `json:"reused"`
	Nothing   bool              `json:"nothing"`
	DryRun    bool              `json:"dryRun,omitempty"`
	Mapping   map[string]string `json:"mapping,omitempty"`
	Planned   *tasks.Summary    `json:"planned,omitempty"`
	Summary   *tasks.Summary    `json:"summary,omitempty"`
}

func newImportResponse(result *tasks.ImportResult) importResponse {
	resp := importResponse{
		Rows:      result.Rows,
		Malformed: result.Malformed,
		Rejected:  result.Rejected,
		Reused:    result.Reused,
		Nothing:   result.Nothing,
		Summary:   result.Summary,
	}
	if len(result.Mapping) > 0 {
		resp.Mapping = make(map[string]string, len(result.Mapping))
		for f, c := range result.Mapping {
			resp.Mapping[string(f)] = c
		}
	}
	return resp
}

// handleImportTable imports a CSV or XLSX body.
//
// Repeated ?map=field=column parameters override the guessed mapping and
// ?dry_run=true returns the plan without writing.
func (h *LibraryHandler) handleImportTable(format formatter.Format) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := http.MaxBytesReader(w, r.Body, MaxUploadBytes)
		table, err := formatter.ReadTable(body, format)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		overrides, err := importer.ParseOverrides(r.URL.Query()["map"])
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		mapping, err := importer.ResolveFieldMap(table.Headers, overrides)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		plan, err := h.engine.Plan(r.Context(), nil, table, mapping)
		if err != nil {
			h.fail(w, err)
			return
		}

		if dryRun, _ := strconv.ParseBool(r.URL.Query().Get("dry_run")); dryRun {
			resp := newImportResponse(plan.Result)
			resp.DryRun = true
			resp.Planned = &tasks.Summary{
				Identities: len(plan.Batch.Identities),
				Members:    len(plan.Batch.Members),
				Accounts:   len(plan.Batch.Accounts),
				Items:      len(plan.Batch.Items),
			}
			writeJSON(w, http.StatusOK, resp)
			return
		}

		result, err := h.engine.Apply(r.Context(), nil, plan)
		if err != nil {
			h.fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, newImportResponse(result))
	}
}

func (h *LibraryHandler) handleImportJSON(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxUploadBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("failed to read body: %v", err))
		return
	}
	snap, err := formatter.ParseJSON(data)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.engine.ImportSnapshot(r.Context(), nil, snap)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newImportResponse(result))
}

func (h *LibraryHandler) rows(r *http.Request) ([]library.Row, error) {
	snap, err := h.engine.Store().Snapshot(r.Context())
	if err != nil {
		return nil, err
	}
	return library.Join(snap), nil
}

type errorResponse struct {
	Error string   `json:"error"`
	IDs   []string `json:"ids,omitempty"`
}

// fail maps err to a status code and logs server-side failures.
func (h *LibraryHandler) fail(w http.ResponseWriter, err error) {
	resp := errorResponse{Error: err.Error()}

	var commitErr *tasks.CommitError
	if errors.As(err, &commitErr) {
		resp.IDs = commitErr.IDs
	}

	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "error", err)
	}
	writeJSON(w, status, resp)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, shared.ErrInvalidInput),
		errors.Is(err, shared.ErrInvalidArgument),
		errors.Is(err, shared.ErrInvalidFlag),
		errors.Is(err, shared.ErrUnknownField),
		errors.Is(err, shared.ErrUnknownColumn):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, shared.ErrCommitFailed):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := shared.MarshalJSON(v, false)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to encode response")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	data, _ := shared.MarshalJSON(errorResponse{Error: msg}, false)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

func writeAttachment(w http.ResponseWriter, contentType, name string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

var _ Handler = (*LibraryHandler)(nil)
