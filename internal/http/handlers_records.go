package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"triplog/internal/analytics"
	"triplog/internal/core"
	"triplog/internal/log"
)

type expenseRequest struct {
	Title           string          `json:"title"`
	Amount          decimal.Decimal `json:"amount"`
	Category        string          `json:"category"`
	Date            core.Date       `json:"date"`
	BusinessPurpose string          `json:"businessPurpose"`
	Location        string          `json:"location"`
	Description     string          `json:"description"`
	Attendees       string          `json:"attendees"`
	OdometerReading decimal.Decimal `json:"odometerReading"`
}

type mileageRequest struct {
	Date            core.Date       `json:"date"`
	StartLocation   string          `json:"startLocation"`
	EndLocation     string          `json:"endLocation"`
	BusinessPurpose string          `json:"businessPurpose"`
	ClientName      string          `json:"clientName"`
	Attendees       string          `json:"attendees"`
	Description     string          `json:"description"`
	StartOdometer   decimal.Decimal `json:"startOdometer"`
	EndOdometer     decimal.Decimal `json:"endOdometer"`
}

type recordResponse struct {
	Record   json.RawMessage `json:"record"`
	Warnings []string        `json:"warnings,omitempty"`
}

type listResponse struct {
	Range   analytics.Range   `json:"range"`
	Records []json.RawMessage `json:"records"`
}

func customPeriod(start, end string) (analytics.Period, error) {
	from, err := core.ParseDate(start)
	if err != nil {
		return analytics.Period{}, fmt.Errorf("%w: start: %v", analytics.ErrInvalidPeriod, err)
	}
	to, err := core.ParseDate(end)
	if err != nil {
		return analytics.Period{}, fmt.Errorf("%w: end: %v", analytics.ErrInvalidPeriod, err)
	}
	return analytics.CustomPeriod(from, to)
}

// listFilter reads the optional period, start, end and category query
// parameters. start and end together select a custom range.
func (s *Server) listFilter(w http.ResponseWriter, r *http.Request) (analytics.Period, core.Category, bool) {
	q := r.URL.Query()
	period, err := analytics.ParsePeriod(q.Get("period"))
	if start, end := q.Get("start"), q.Get("end"); err == nil && (start != "" || end != "") {
		period, err = customPeriod(start, end)
	}
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return analytics.Period{}, "", false
	}
	var category core.Category
	if raw := strings.TrimSpace(q.Get("category")); raw != "" {
		if category, err = core.ParseCategory(raw); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return analytics.Period{}, "", false
		}
	}
	return period, category, true
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	period, category, ok := s.listFilter(w, r)
	if !ok {
		return
	}
	c, err := s.ledger.Snapshot(r.Context())
	if err != nil {
		writeFailure(w, r, err, errorResponse{})
		return
	}

	rng := period.Range(s.now())
	out := listResponse{Range: rng, Records: []json.RawMessage{}}
	for _, e := range c.Expenses {
		if !rng.Contains(e.Date) || (category != "" && e.Category != category) {
			continue
		}
		raw, err := expenseJSON(e)
		if err != nil {
			writeFailure(w, r, err, errorResponse{})
			return
		}
		out.Records = append(out.Records, raw)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleListMileage(w http.ResponseWriter, r *http.Request) {
	period, _, ok := s.listFilter(w, r)
	if !ok {
		return
	}
	c, err := s.ledger.Snapshot(r.Context())
	if err != nil {
		writeFailure(w, r, err, errorResponse{})
		return
	}

	rng := period.Range(s.now())
	out := listResponse{Range: rng, Records: []json.RawMessage{}}
	for _, m := range c.Mileage {
		if !rng.Contains(m.Date) {
			continue
		}
		raw, err := mileageJSON(m)
		if err != nil {
			writeFailure(w, r, err, errorResponse{})
			return
		}
		out.Records = append(out.Records, raw)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	category, err := core.ParseCategory(req.Category)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error: err.Error(),
			Kind:  string(core.MissingRequiredField),
			Field: "category",
		})
		return
	}

	e, warnings, err := s.ledger.AddExpense(r.Context(), core.ExpenseInput{
		Title:           sanitizeInput(req.Title),
		Amount:          req.Amount,
		Category:        category,
		Date:            req.Date,
		BusinessPurpose: sanitizeInput(req.BusinessPurpose),
		Location:        sanitizeInput(req.Location),
		Description:     sanitizeInput(req.Description),
		Attendees:       sanitizeInput(req.Attendees),
		OdometerReading: req.OdometerReading,
	})
	if err != nil {
		writeFailure(w, r, err, errorResponse{})
		return
	}
	raw, err := expenseJSON(e)
	if err != nil {
		writeFailure(w, r, err, errorResponse{})
		return
	}
	writeJSON(w, http.StatusCreated, recordResponse{Record: raw, Warnings: warnings})
}

func (s *Server) handleCreateMileage(w http.ResponseWriter, r *http.Request) {
	var req mileageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	m, err := s.ledger.AddMileage(r.Context(), core.MileageInput{
		Date:            req.Date,
		StartLocation:   sanitizeInput(req.StartLocation),
		EndLocation:     sanitizeInput(req.EndLocation),
		BusinessPurpose: sanitizeInput(req.BusinessPurpose),
		ClientName:      sanitizeInput(req.ClientName),
		Attendees:       sanitizeInput(req.Attendees),
		Description:     sanitizeInput(req.Description),
		StartOdometer:   req.StartOdometer,
		EndOdometer:     req.EndOdometer,
	})
	if err != nil {
		writeFailure(w, r, err, errorResponse{})
		return
	}
	raw, err := mileageJSON(m)
	if err != nil {
		writeFailure(w, r, err, errorResponse{})
		return
	}
	writeJSON(w, http.StatusCreated, recordResponse{Record: raw})
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.ledger.DeleteExpense(r.Context(), id); err != nil {
		writeFailure(w, r, err, errorResponse{})
		return
	}
	log.FromContext(r.Context()).InfoContext(r.Context(), "Expense deleted", log.FieldRecordID, id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteMileage(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.ledger.DeleteMileage(r.Context(), id); err != nil {
		writeFailure(w, r, err, errorResponse{})
		return
	}
	log.FromContext(r.Context()).InfoContext(r.Context(), "Mileage entry deleted", log.FieldRecordID, id)
	w.WriteHeader(http.StatusNoContent)
}
