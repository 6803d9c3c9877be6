package http

import (
	"net/http"
	"strconv"

	"triplog/internal/analytics"
	"triplog/internal/cache"
	"triplog/internal/core"
	"triplog/internal/log"
	"triplog/internal/report"
)

type insightsResponse struct {
	Period     string                    `json:"period"`
	Range      analytics.Range           `json:"range"`
	Category   core.Category             `json:"category,omitempty"`
	Summary    analytics.Summary         `json:"summary"`
	Comparison analytics.MonthComparison `json:"comparison"`
	Mileage    analytics.MileageSummary  `json:"mileage"`
	Weekly     [4]analytics.WeekBucket   `json:"weekly"`
}

// handleInsights serves the dashboard numbers for ?period= and ?category=.
// Results are cached per range, category and ledger revision.
func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	period, category, ok := s.listFilter(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	now := s.now()
	rng := period.Range(now)

	key := cache.Key(rng.String(), string(category), strconv.FormatInt(s.ledger.Revision(), 10))
	if cached, found := s.insights.Get(key); found {
		log.FromContext(ctx).DebugContext(ctx, "Insights cache hit", log.FieldPeriod, rng.String())
		writeJSON(w, http.StatusOK, cached)
		return
	}

	c, err := s.ledger.Snapshot(ctx)
	if err != nil {
		writeFailure(w, r, err, errorResponse{})
		return
	}
	lines := analytics.FilterByCategory(c.Lines(), category)
	mileage := c.Mileage
	if category != "" && category != core.Transportation {
		mileage = nil
	}

	out := insightsResponse{
		Period:     period.String(),
		Range:      rng,
		Category:   category,
		Summary:    analytics.Summarize(lines, rng),
		Comparison: analytics.CompareMonths(lines, now),
		Mileage:    analytics.SummarizeMileage(mileage, rng),
		Weekly:     analytics.WeeklyBuckets(lines, core.DateOf(now)),
	}
	s.insights.Set(key, out)
	writeJSON(w, http.StatusOK, out)
}

// handleReport streams a csv or tax export as an attachment.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	kind, ok := report.ParseKind(r.PathValue("kind"))
	if !ok {
		writeError(w, r, http.StatusNotFound, "unknown report kind "+strconv.Quote(r.PathValue("kind")))
		return
	}
	period, category, ok := s.listFilter(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	c, err := s.ledger.Snapshot(ctx)
	if err != nil {
		writeFailure(w, r, err, errorResponse{})
		return
	}

	now := s.now()
	rng := period.Range(now)
	body := report.Render(kind, analytics.FilterByCategory(c.Lines(), category), report.TaxOptions{
		Range:       rng,
		Now:         now,
		SavingsRate: s.savingsRate,
	})

	contentType := "text/csv; charset=utf-8"
	if kind == report.KindTax {
		contentType = "text/plain; charset=utf-8"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+report.FileName(kind, rng)+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))

	log.FromContext(ctx).WithComponent(log.ComponentReport).InfoContext(ctx, "Report exported",
		append(log.NewFields().WithOperation(log.OpExport).WithPeriod(rng.String()).ToSlice(), "kind", kind)...)
}
