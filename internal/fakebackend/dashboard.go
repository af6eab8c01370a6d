// ABOUTME: Dashboard aggregate handlers for the fake backend
// ABOUTME: Computes overview, breakdowns, hotspots and trends from crimes

package fakebackend

import (
	"math"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/markalston/safepulse-cli/internal/client"
)

var severityColors = map[string]string{
	"low":      "#16a34a",
	"medium":   "#f97316",
	"high":     "#dc2626",
	"critical": "#7c3aed",
}

// displayLabel turns a choice value such as drug_offense into Drug Offense.
func displayLabel(v string) string {
	words := strings.Fields(strings.ReplaceAll(v, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func isHighSeverity(c crimeRecord) bool {
	return c.Severity == "high" || c.Severity == "critical"
}

func isOpen(c crimeRecord) bool {
	return c.Status == "reported" || c.Status == "under_investigation"
}

// since returns the start of period, or the zero time for "all".
func (s *Server) since(period string) time.Time {
	now := s.now()
	switch period {
	case client.PeriodWeek:
		return now.AddDate(0, 0, -7)
	case client.PeriodMonth:
		return now.AddDate(0, 0, -30)
	case client.PeriodYear:
		return now.AddDate(0, 0, -365)
	}
	return time.Time{}
}

// inPeriod returns the crimes reported within the period query parameter.
func (s *Server) inPeriod(r *http.Request) (string, []crimeRecord) {
	period := r.URL.Query().Get("period")
	if period == "" {
		period = client.PeriodAll
	}
	from := s.since(period)
	crimes := s.data.snapshot()
	if from.IsZero() {
		return period, crimes
	}
	return period, slices.DeleteFunc(crimes, func(c crimeRecord) bool { return c.reportedAt.Before(from) })
}

func (s *Server) overview(w http.ResponseWriter, r *http.Request) {
	crimes := s.data.snapshot()
	week, month := s.since(client.PeriodWeek), s.since(client.PeriodMonth)

	var out client.Overview
	for _, c := range crimes {
		out.Crimes.Total++
		if !c.reportedAt.Before(week) {
			out.Crimes.ThisWeek++
		}
		if !c.reportedAt.Before(month) {
			out.Crimes.ThisMonth++
		}
		if isHighSeverity(c) && isOpen(c) {
			out.Crimes.HighPriority++
		}
		switch c.Status {
		case "reported":
			out.ByStatus.Reported++
		case "under_investigation":
			out.ByStatus.UnderInvestigation++
		case "solved":
			out.ByStatus.Solved++
		case "cold_case":
			out.ByStatus.ColdCases++
		}
	}
	if out.Crimes.Total > 0 {
		rate := float64(out.ByStatus.Solved) / float64(out.Crimes.Total) * 100
		out.Crimes.SolveRatePercent = math.Round(rate*10) / 10
	}
	out.System.TotalAnalyses, out.System.TotalReports, out.System.ActiveOfficers = s.data.counts()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) crimesByCategory(w http.ResponseWriter, r *http.Request) {
	period, crimes := s.inPeriod(r)
	data := []map[string]any{}
	for _, row := range countBy(crimes, func(c crimeRecord) string { return c.Category }) {
		data = append(data, map[string]any{
			"category": displayLabel(row.key),
			"value":    row.key,
			"count":    row.count,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"period": period, "data": data})
}

func (s *Server) crimesBySeverity(w http.ResponseWriter, r *http.Request) {
	period, crimes := s.inPeriod(r)
	data := []map[string]any{}
	for _, row := range countBy(crimes, func(c crimeRecord) string { return c.Severity }) {
		color, ok := severityColors[row.key]
		if !ok {
			color = "#6b7280"
		}
		data = append(data, map[string]any{
			"severity": displayLabel(row.key),
			"value":    row.key,
			"count":    row.count,
			"color":    color,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"period": period, "data": data})
}

func riskLevel(h client.Hotspot) string {
	switch {
	case h.HighSeverity >= 5:
		return "critical"
	case h.HighSeverity >= 3:
		return "high"
	case h.Total >= 3:
		return "medium"
	}
	return "low"
}

func (s *Server) hotspots(w http.ResponseWriter, r *http.Request) {
	period, crimes := s.inPeriod(r)
	limit := queryInt(r, "limit", 10)

	byDistrict := map[string]*client.Hotspot{}
	var order []*client.Hotspot
	for _, c := range crimes {
		h, ok := byDistrict[c.District]
		if !ok {
			h = &client.Hotspot{District: c.District}
			byDistrict[c.District] = h
			order = append(order, h)
		}
		h.Total++
		if isHighSeverity(c) {
			h.HighSeverity++
		}
		if isOpen(c) {
			h.Unsolved++
		}
	}
	slices.SortStableFunc(order, func(a, b *client.Hotspot) int { return b.Total - a.Total })

	data := []client.Hotspot{}
	for _, h := range order[:min(limit, len(order))] {
		h.RiskLevel = riskLevel(*h)
		data = append(data, *h)
	}
	writeJSON(w, http.StatusOK, map[string]any{"period": period, "data": data})
}

// trend counts crimes since from, bucketed by the formatted report time.
// Buckets are ordered chronologically.
func trend(crimes []crimeRecord, from time.Time, layout, key string) []map[string]any {
	slices.SortFunc(crimes, func(a, b crimeRecord) int { return a.reportedAt.Compare(b.reportedAt) })
	data := []map[string]any{}
	index := map[string]int{}
	for _, c := range crimes {
		if c.reportedAt.Before(from) {
			continue
		}
		label := c.reportedAt.Format(layout)
		i, ok := index[label]
		if !ok {
			i = len(data)
			index[label] = i
			data = append(data, map[string]any{key: label, "count": 0})
		}
		data[i]["count"] = data[i]["count"].(int) + 1
	}
	return data
}

func (s *Server) monthlyTrends(w http.ResponseWriter, r *http.Request) {
	data := trend(s.data.snapshot(), s.since(client.PeriodYear), "Jan 2006", "month")
	writeJSON(w, http.StatusOK, map[string]any{"data": data})
}

func (s *Server) dailyTrends(w http.ResponseWriter, r *http.Request) {
	data := trend(s.data.snapshot(), s.since(client.PeriodMonth), "2006-01-02", "date")
	writeJSON(w, http.StatusOK, map[string]any{"data": data})
}

func (s *Server) caseSummary(c crimeRecord) client.CaseSummary {
	return client.CaseSummary{
		ID:           c.ID,
		CaseNumber:   c.CaseNumber,
		Title:        c.Title,
		Category:     displayLabel(c.Category),
		Severity:     c.Severity,
		Status:       displayLabel(c.Status),
		District:     c.District,
		DateReported: c.reportedAt.Format("2006-01-02 15:04"),
	}
}

func (s *Server) recentCrimes(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 10)
	crimes := s.data.snapshot()
	data := []client.CaseSummary{}
	for _, c := range crimes[:min(limit, len(crimes))] {
		cs := s.caseSummary(c)
		cs.IsAnalyzed = c.IsAnalyzed
		cs.ReportedBy = c.ReportedByName
		if cs.ReportedBy == "" {
			cs.ReportedBy = "Unknown"
		}
		data = append(data, cs)
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": data})
}

func (s *Server) alerts(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	data := []client.CaseSummary{}
	for _, c := range s.data.snapshot() {
		if !isHighSeverity(c) || !isOpen(c) {
			continue
		}
		cs := s.caseSummary(c)
		cs.DaysOpen = int(now.Sub(c.reportedAt).Hours() / 24)
		data = append(data, cs)
		if len(data) == 10 {
			break
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": len(data), "data": data})
}

func (s *Server) myStats(w http.ResponseWriter, r *http.Request) {
	me := currentOfficer(r)
	var mine []crimeRecord
	for _, c := range s.data.snapshot() {
		if c.ReportedBy == me.ID {
			mine = append(mine, c)
		}
	}
	group := func(field string, key func(crimeRecord) string, limit int) []map[string]any {
		out := []map[string]any{}
		for _, row := range countBy(mine, key) {
			if limit > 0 && len(out) == limit {
				break
			}
			out = append(out, map[string]any{field: row.key, "count": row.count})
		}
		return out
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"officer": map[string]string{
			"name":         me.FullName,
			"badge_number": me.BadgeNumber,
			"rank":         me.Rank,
			"station":      me.Station,
		},
		"my_crimes": map[string]any{
			"total":       len(mine),
			"by_status":   group("status", func(c crimeRecord) string { return c.Status }, 0),
			"by_category": group("category", func(c crimeRecord) string { return c.Category }, 5),
		},
		"my_activity": map[string]int{
			"total_analyses":          len(s.data.analysesFor(me.FullName)),
			"total_reports_generated": len(s.data.reportsFor(me.FullName)),
		},
	})
}

func (s *Server) categoryDistrict(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	district := r.URL.Query().Get("district")

	crimes := slices.DeleteFunc(s.data.snapshot(), func(c crimeRecord) bool {
		return (category != "" && c.Category != category) ||
			(district != "" && !containsFold(c.District, district))
	})
	rows := countBy(crimes, func(c crimeRecord) string { return c.Category + "\x00" + c.District })

	data := []client.CategoryDistrictCount{}
	for _, row := range rows[:min(20, len(rows))] {
		cat, dist, _ := strings.Cut(row.key, "\x00")
		data = append(data, client.CategoryDistrictCount{
			Category: displayLabel(cat),
			District: dist,
			Count:    row.count,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": data})
}
