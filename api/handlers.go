/*
handlers.go - HTTP API handlers for the timesheet redistribution engine

PURPOSE:
  Exposes the redistribution engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to the engine.

ENDPOINTS:
  Redistribution:
    POST   /api/redistribute           Run a redistribution over a posted ledger

  Audit:
    GET    /api/runs                   List recorded runs (newest first)

  Reference:
    GET    /api/categories             List earning categories
    GET    /api/health                 Liveness probe

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Engine: The redistribution pipeline
  - Runs:   Run audit store (optional; nil disables auditing)

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input
  3. Run the engine
  4. Record the run
  5. Serialize response

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 422: Unclassified codes, no eligible targets
  - 500: Internal errors

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/tidewater/timesheet-engine/prorate"
	"github.com/tidewater/timesheet-engine/store/sqlite"
	"github.com/tidewater/timesheet-engine/timesheet"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Engine *prorate.Engine

	// Runs records completed runs for audit. Nil disables auditing.
	Runs *sqlite.Store
}

// NewHandler creates a new handler around the given engine and run store.
func NewHandler(engine *prorate.Engine, runs *sqlite.Store) *Handler {
	return &Handler{Engine: engine, Runs: runs}
}

// =============================================================================
// REDISTRIBUTION ENDPOINTS
// =============================================================================

// Redistribute runs the engine over a posted ledger.
// POST /api/redistribute
func (h *Handler) Redistribute(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req RedistributeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body", err)
		return
	}
	if len(req.Ledger.Rows) == 0 {
		writeError(w, http.StatusBadRequest, "ledger has no rows", nil)
		return
	}
	if len(req.ProrateFlags) == 0 {
		writeError(w, http.StatusBadRequest, "prorate_flags is required", nil)
		return
	}

	grid, err := fromLedgerDTO(req.Ledger)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid ledger", err)
		return
	}

	result, err := h.Engine.Run(prorate.Input{
		Grid:         grid,
		ProrateFlags: prorateFlags(req.ProrateFlags),
		Selection:    prorateFlags(req.Selection),
	})
	if err != nil {
		switch {
		case errors.Is(err, prorate.ErrUnclassifiedCode),
			errors.Is(err, prorate.ErrNoTargets),
			errors.Is(err, prorate.ErrEmptyWindow):
			writeError(w, http.StatusUnprocessableEntity, "redistribution rejected", err)
		default:
			writeError(w, http.StatusInternalServerError, "redistribution failed", err)
		}
		return
	}

	resp := RedistributeResponse{
		Ledger:   toLedgerDTO(result.Grid),
		Warnings: toWarningDTOs(result.Warnings),
		Summary:  toSummaryDTO(result.Summary),
	}

	if h.Runs != nil {
		runID, err := h.Runs.SaveRun(ctx, result.Grid.Window, result.Summary, result.Warnings)
		if err != nil {
			// The run itself succeeded; losing the audit row is not
			// worth failing the request over.
			log.Printf("api: failed to record run: %v", err)
		} else {
			resp.RunID = runID
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// =============================================================================
// AUDIT ENDPOINTS
// =============================================================================

// ListRuns returns recorded runs, newest first.
// GET /api/runs?limit=N
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.Runs == nil {
		writeJSON(w, http.StatusOK, []RunDTO{})
		return
	}

	limit := 50
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "invalid limit", err)
			return
		}
		limit = n
	}

	records, err := h.Runs.ListRuns(ctx, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list runs", err)
		return
	}

	writeJSON(w, http.StatusOK, toRunDTOs(records))
}

// =============================================================================
// REFERENCE ENDPOINTS
// =============================================================================

// ListCategories returns the known earning categories and their payroll codes.
// GET /api/categories
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	cats := timesheet.Categories()
	dtos := make([]CategoryDTO, 0, len(cats))
	for _, c := range cats {
		code, _ := timesheet.PayrollCode(c)
		dtos = append(dtos, CategoryDTO{Name: string(c), PayrollCode: code})
	}
	writeJSON(w, http.StatusOK, dtos)
}

// Health is a liveness probe.
// GET /api/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
