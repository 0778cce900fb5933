/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal ledger model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

TYPES:
  Ledger:
    LedgerDTO, RowDTO (hours keyed by ISO date string)

  Redistribution:
    RedistributeRequest, RedistributeResponse, WarningDTO, SummaryDTO

  Audit:
    RunDTO

  Categories:
    CategoryDTO

WIRE FORMAT:
  Hours travel as decimal strings ("7.25", not 7.25) so clients never
  re-introduce binary floating point into quantities the engine keeps
  exact. Dates are ISO "2006-01-02".

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - prorate/pipeline.go: Engine input/output types
*/
package api

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tidewater/timesheet-engine/prorate"
	"github.com/tidewater/timesheet-engine/store/sqlite"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// RowDTO represents one ledger row. Hours map ISO dates to decimal strings;
// dates inside the window that carry zero hours may be omitted.
type RowDTO struct {
	Code       string            `json:"code"`
	ProjectID  string            `json:"project_id"`
	ActivityID string            `json:"activity_id"`
	AwardID    string            `json:"award_id,omitempty"`
	Earning    string            `json:"earning"`
	Hours      map[string]string `json:"hours"`
}

// LedgerDTO represents a full timesheet grid.
type LedgerDTO struct {
	Start string   `json:"start"` // ISO date, inclusive
	End   string   `json:"end"`   // ISO date, inclusive
	Rows  []RowDTO `json:"rows"`
}

// RedistributeRequest is the request to run a redistribution.
type RedistributeRequest struct {
	Ledger LedgerDTO `json:"ledger"`

	// ProrateFlags classifies each non-excepted code: true = virtual
	// (hours are given away), false = real (hours may be received).
	ProrateFlags map[string]bool `json:"prorate_flags"`

	// Selection opts real codes in or out of receiving hours.
	// Missing codes default to included.
	Selection map[string]bool `json:"selection,omitempty"`
}

// RedistributeResponse is the result of a redistribution run.
type RedistributeResponse struct {
	Ledger   LedgerDTO    `json:"ledger"`
	Warnings []WarningDTO `json:"warnings"`
	Summary  SummaryDTO   `json:"summary"`
	RunID    int64        `json:"run_id,omitempty"`
}

// WarningDTO is a non-fatal rounding residual left in the output ledger.
type WarningDTO struct {
	Earning  string `json:"earning"`
	Date     string `json:"date"`
	Residual string `json:"residual"`
}

// SummaryDTO describes what a run did.
type SummaryDTO struct {
	VirtualRows     int `json:"virtual_rows"`
	TargetRows      int `json:"target_rows"`
	RetainedRows    int `json:"retained_rows"`
	ExceptedRows    int `json:"excepted_rows"`
	SynthesizedRows int `json:"synthesized_rows"`
	CellsRepaired   int `json:"cells_repaired"`
}

// RunDTO represents one audited run in API responses.
type RunDTO struct {
	ID        int64        `json:"id"`
	Start     string       `json:"start"`
	End       string       `json:"end"`
	Summary   SummaryDTO   `json:"summary"`
	Warnings  []WarningDTO `json:"warnings"`
	CreatedAt string       `json:"created_at"`
}

// CategoryDTO represents an earning category and its payroll export code.
type CategoryDTO struct {
	Name        string `json:"name"`
	PayrollCode string `json:"payroll_code"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toRowDTO(row *prorate.Row, window prorate.Window) RowDTO {
	hours := make(map[string]string)
	for _, d := range window.Days() {
		if v := row.On(d); !v.IsZero() {
			hours[d.String()] = v.String()
		}
	}
	return RowDTO{
		Code:       string(row.ID.Code),
		ProjectID:  row.ID.ProjectID,
		ActivityID: row.ID.ActivityID,
		AwardID:    row.ID.AwardID,
		Earning:    string(row.ID.Earning),
		Hours:      hours,
	}
}

func toLedgerDTO(g *prorate.Grid) LedgerDTO {
	rows := make([]RowDTO, len(g.Rows))
	for i, row := range g.Rows {
		rows[i] = toRowDTO(row, g.Window)
	}
	return LedgerDTO{
		Start: g.Window.Start.String(),
		End:   g.Window.End.String(),
		Rows:  rows,
	}
}

// fromLedgerDTO validates and converts an incoming ledger. Every hour value
// must parse as a non-negative decimal and every date must fall inside the
// declared window.
func fromLedgerDTO(dto LedgerDTO) (*prorate.Grid, error) {
	start, err := prorate.ParseDate(dto.Start)
	if err != nil {
		return nil, fmt.Errorf("invalid start date %q: %w", dto.Start, err)
	}
	end, err := prorate.ParseDate(dto.End)
	if err != nil {
		return nil, fmt.Errorf("invalid end date %q: %w", dto.End, err)
	}
	window := prorate.Window{Start: start, End: end}
	if end.Before(start) {
		return nil, fmt.Errorf("window end %s precedes start %s", dto.End, dto.Start)
	}

	rows := make([]*prorate.Row, 0, len(dto.Rows))
	for i, rd := range dto.Rows {
		if rd.Code == "" {
			return nil, fmt.Errorf("row %d: missing code", i)
		}
		row := prorate.NewRow(prorate.RowID{
			Code:       prorate.Code(rd.Code),
			ProjectID:  rd.ProjectID,
			ActivityID: rd.ActivityID,
			AwardID:    rd.AwardID,
			Earning:    prorate.EarningCategory(rd.Earning),
		})
		for ds, hs := range rd.Hours {
			d, err := prorate.ParseDate(ds)
			if err != nil {
				return nil, fmt.Errorf("row %d (%s): invalid date %q: %w", i, rd.Code, ds, err)
			}
			if !window.Contains(d) {
				return nil, fmt.Errorf("row %d (%s): date %s outside window %s", i, rd.Code, ds, window)
			}
			v, err := decimal.NewFromString(hs)
			if err != nil {
				return nil, fmt.Errorf("row %d (%s): invalid hours %q on %s: %w", i, rd.Code, hs, ds, err)
			}
			if v.IsNegative() {
				return nil, fmt.Errorf("row %d (%s): negative hours %s on %s", i, rd.Code, hs, ds)
			}
			row.Set(d, v)
		}
		rows = append(rows, row)
	}

	return prorate.NewGrid(window, rows), nil
}

func toWarningDTOs(warnings []prorate.Warning) []WarningDTO {
	dtos := make([]WarningDTO, len(warnings))
	for i, w := range warnings {
		dtos[i] = WarningDTO{
			Earning:  string(w.Earning),
			Date:     w.Date.String(),
			Residual: w.Residual.String(),
		}
	}
	return dtos
}

func toSummaryDTO(s prorate.Summary) SummaryDTO {
	return SummaryDTO{
		VirtualRows:     s.VirtualRows,
		TargetRows:      s.TargetRows,
		RetainedRows:    s.RetainedRows,
		ExceptedRows:    s.ExceptedRows,
		SynthesizedRows: s.SynthesizedRows,
		CellsRepaired:   s.CellsRepaired,
	}
}

func toRunDTO(r sqlite.RunRecord) RunDTO {
	return RunDTO{
		ID:        r.ID,
		Start:     r.Window.Start.String(),
		End:       r.Window.End.String(),
		Summary:   toSummaryDTO(r.Summary),
		Warnings:  toWarningDTOs(r.Warnings),
		CreatedAt: r.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toRunDTOs(records []sqlite.RunRecord) []RunDTO {
	dtos := make([]RunDTO, len(records))
	for i, r := range records {
		dtos[i] = toRunDTO(r)
	}
	return dtos
}

func prorateFlags(m map[string]bool) map[prorate.Code]bool {
	if m == nil {
		return nil
	}
	out := make(map[prorate.Code]bool, len(m))
	for k, v := range m {
		out[prorate.Code(k)] = v
	}
	return out
}
