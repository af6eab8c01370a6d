// ABOUTME: Crime report handlers for the fake backend
// ABOUTME: Filtered listing, CRUD, suspects, witnesses and CSV bulk upload

package fakebackend

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/markalston/safepulse-cli/internal/client"
)

const pageSize = 20

var (
	categories = []string{
		"theft", "assault", "homicide", "fraud", "cybercrime", "robbery", "burglary",
		"drug_offense", "sexual_offense", "vandalism", "kidnapping", "arson", "corruption", "other",
	}
	severities = []string{"low", "medium", "high", "critical"}
	statuses   = []string{"reported", "under_investigation", "solved", "closed", "cold_case"}
)

func invalidChoice(v string) string {
	return fmt.Sprintf("%q is not a valid choice.", v)
}

// validateCrime checks choice fields and, when full is set, the required
// fields of a new report. It returns the offending field and message.
func validateCrime(c client.Crime, full bool) (string, string) {
	if full {
		required := []struct{ field, value string }{
			{"title", c.Title},
			{"description", c.Description},
			{"location", c.Location},
			{"district", c.District},
			{"date_occurred", c.DateOccurred},
		}
		for _, f := range required {
			if strings.TrimSpace(f.value) == "" {
				return f.field, "This field is required."
			}
		}
	}
	if c.Category != "" && !slices.Contains(categories, c.Category) {
		return "category", invalidChoice(c.Category)
	}
	if c.Severity != "" && !slices.Contains(severities, c.Severity) {
		return "severity", invalidChoice(c.Severity)
	}
	if c.Status != "" && !slices.Contains(statuses, c.Status) {
		return "status", invalidChoice(c.Status)
	}
	if c.DateOccurred != "" {
		if _, err := parseDate(c.DateOccurred); err != nil {
			return "date_occurred", "Datetime has wrong format."
		}
	}
	return "", ""
}

func parseDate(v string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04", "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", v)
}

// crimeQuery is a parsed crime listing filter.
type crimeQuery struct {
	client.CrimeFilter
	from, to time.Time
}

func parseCrimeQuery(q url.Values) crimeQuery {
	cq := crimeQuery{CrimeFilter: client.CrimeFilter{
		Search:   q.Get("search"),
		Category: q.Get("category"),
		Severity: q.Get("severity"),
		Status:   q.Get("status"),
		District: q.Get("district"),
		Ordering: q.Get("ordering"),
	}}
	if t, err := parseDate(q.Get("date_from")); err == nil {
		cq.from = t
	}
	if t, err := parseDate(q.Get("date_to")); err == nil {
		cq.to = t.Add(24 * time.Hour)
	}
	return cq
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func (q crimeQuery) match(c crimeRecord) bool {
	switch {
	case q.Category != "" && c.Category != q.Category:
		return false
	case q.Severity != "" && c.Severity != q.Severity:
		return false
	case q.Status != "" && c.Status != q.Status:
		return false
	case q.District != "" && !containsFold(c.District, q.District):
		return false
	case !q.from.IsZero() && c.reportedAt.Before(q.from):
		return false
	case !q.to.IsZero() && !c.reportedAt.Before(q.to):
		return false
	}
	if q.Search != "" {
		return containsFold(c.Title, q.Search) ||
			containsFold(c.Description, q.Search) ||
			containsFold(c.CaseNumber, q.Search)
	}
	return true
}

// sortCrimes orders by the ordering parameter. Unknown fields keep the
// default newest-first order.
func sortCrimes(crimes []crimeRecord, ordering string) {
	desc := strings.HasPrefix(ordering, "-")
	field := strings.TrimPrefix(ordering, "-")
	var cmp func(a, b crimeRecord) int
	switch field {
	case "date_reported":
		cmp = func(a, b crimeRecord) int { return a.reportedAt.Compare(b.reportedAt) }
	case "date_occurred":
		cmp = func(a, b crimeRecord) int { return strings.Compare(a.DateOccurred, b.DateOccurred) }
	case "case_number":
		cmp = func(a, b crimeRecord) int { return strings.Compare(a.CaseNumber, b.CaseNumber) }
	case "severity":
		cmp = func(a, b crimeRecord) int {
			return slices.Index(severities, a.Severity) - slices.Index(severities, b.Severity)
		}
	default:
		return
	}
	slices.SortStableFunc(crimes, func(a, b crimeRecord) int {
		if desc {
			return cmp(b, a)
		}
		return cmp(a, b)
	})
}

// listSummary trims a crime to the list serializer fields.
func listSummary(c client.Crime) client.Crime {
	return client.Crime{
		ID:             c.ID,
		CaseNumber:     c.CaseNumber,
		ReportedByName: c.ReportedByName,
		Title:          c.Title,
		Category:       c.Category,
		Severity:       c.Severity,
		Status:         c.Status,
		Location:       c.Location,
		District:       c.District,
		DateOccurred:   c.DateOccurred,
		DateReported:   c.DateReported,
		IsAnalyzed:     c.IsAnalyzed,
	}
}

// writePage writes one page of crimes with absolute next/previous links.
func writePage(w http.ResponseWriter, r *http.Request, crimes []crimeRecord) {
	page := queryInt(r, "page", 1)
	start := (page - 1) * pageSize
	if start > len(crimes) && page > 1 {
		writeDetail(w, http.StatusNotFound, "Invalid page.", "")
		return
	}
	end := min(start+pageSize, len(crimes))

	link := func(n int) any {
		if n < 1 || (n-1)*pageSize >= len(crimes) {
			return nil
		}
		q := r.URL.Query()
		q.Set("page", strconv.Itoa(n))
		return (&url.URL{Scheme: "http", Host: r.Host, Path: r.URL.Path, RawQuery: q.Encode()}).String()
	}

	results := make([]client.Crime, 0, end-start)
	for _, c := range crimes[start:end] {
		results = append(results, listSummary(c.Crime))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count":    len(crimes),
		"next":     link(page + 1),
		"previous": link(page - 1),
		"results":  results,
	})
}

func (s *Server) listCrimes(w http.ResponseWriter, r *http.Request) {
	q := parseCrimeQuery(r.URL.Query())
	var matched []crimeRecord
	for _, c := range s.data.snapshot() {
		if q.match(c) {
			matched = append(matched, c)
		}
	}
	sortCrimes(matched, q.Ordering)
	writePage(w, r, matched)
}

func (s *Server) myReports(w http.ResponseWriter, r *http.Request) {
	me := currentOfficer(r)
	var mine []crimeRecord
	for _, c := range s.data.snapshot() {
		if c.ReportedBy == me.ID {
			mine = append(mine, c)
		}
	}
	writePage(w, r, mine)
}

func (s *Server) createCrime(w http.ResponseWriter, r *http.Request) {
	var in client.Crime
	if !decodeJSON(w, r, &in) {
		return
	}
	if in.Category == "" {
		in.Category = "other"
	}
	if field, msg := validateCrime(in, true); field != "" {
		writeFieldErrors(w, field, msg)
		return
	}
	in.Status = "reported"
	in.IsAnalyzed = false
	in.Suspects, in.Witnesses = nil, nil

	me := currentOfficer(r)
	c := s.data.addCrime(in, me.Officer)
	s.logger.Info("New crime report created", "case_number", c.CaseNumber, "badge_number", me.BadgeNumber)
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Crime report submitted successfully.",
		"report":  c,
	})
}

func (s *Server) getCrime(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(w, r, "id")
	if !ok {
		return
	}
	c, ok := s.data.crime(id)
	if !ok {
		writeError(w, http.StatusNotFound, "Crime report not found.")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) updateCrime(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(w, r, "id")
	if !ok {
		return
	}
	var in client.Crime
	if !decodeJSON(w, r, &in) {
		return
	}
	if field, msg := validateCrime(in, false); field != "" {
		writeFieldErrors(w, field, msg)
		return
	}
	c, ok := s.data.updateCrime(id, in)
	if !ok {
		writeError(w, http.StatusNotFound, "Crime report not found.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Crime report updated successfully.",
		"report":  c,
	})
}

func (s *Server) deleteCrime(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(w, r, "id")
	if !ok {
		return
	}
	c, ok := s.data.crime(id)
	if !ok {
		writeError(w, http.StatusNotFound, "Crime report not found.")
		return
	}
	me := currentOfficer(r)
	if !me.isAdmin && c.ReportedBy != me.ID {
		writeError(w, http.StatusForbidden, "You do not have permission to delete this report.")
		return
	}
	s.data.deleteCrime(id)
	writeJSON(w, http.StatusOK, client.MessageResponse{
		Message: fmt.Sprintf("Crime report %s deleted successfully.", c.CaseNumber),
	})
}

type countRow struct {
	key   string
	count int
}

// countBy groups crimes by key, largest group first.
func countBy(crimes []crimeRecord, key func(crimeRecord) string) []countRow {
	counts := map[string]int{}
	var order []string
	for _, c := range crimes {
		k := key(c)
		if _, seen := counts[k]; !seen {
			order = append(order, k)
		}
		counts[k]++
	}
	rows := make([]countRow, 0, len(order))
	for _, k := range order {
		rows = append(rows, countRow{key: k, count: counts[k]})
	}
	slices.SortStableFunc(rows, func(a, b countRow) int { return b.count - a.count })
	return rows
}

func (s *Server) crimeStats(w http.ResponseWriter, r *http.Request) {
	crimes := s.data.snapshot()
	group := func(field string, key func(crimeRecord) string) []map[string]any {
		var out []map[string]any
		for _, row := range countBy(crimes, key) {
			out = append(out, map[string]any{field: row.key, "count": row.count})
		}
		return out
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total_reports": len(crimes),
		"by_category":   group("category", func(c crimeRecord) string { return c.Category }),
		"by_status":     group("status", func(c crimeRecord) string { return c.Status }),
		"by_severity":   group("severity", func(c crimeRecord) string { return c.Severity }),
	})
}

func (s *Server) addSuspect(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(w, r, "id")
	if !ok {
		return
	}
	var in client.Suspect
	if !decodeJSON(w, r, &in) {
		return
	}
	sp, ok := s.data.addSuspect(id, in)
	if !ok {
		writeError(w, http.StatusNotFound, "Crime report not found.")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"message": "Suspect added successfully.", "suspect": sp})
}

func (s *Server) removeSuspect(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(w, r, "id")
	if !ok {
		return
	}
	sid, ok := intParam(w, r, "sid")
	if !ok {
		return
	}
	if !s.data.removeSuspect(id, sid) {
		writeError(w, http.StatusNotFound, "Suspect not found.")
		return
	}
	writeJSON(w, http.StatusOK, client.MessageResponse{Message: "Suspect removed successfully."})
}

func (s *Server) addWitness(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(w, r, "id")
	if !ok {
		return
	}
	var in client.Witness
	if !decodeJSON(w, r, &in) {
		return
	}
	if strings.TrimSpace(in.Name) == "" {
		writeFieldErrors(w, "name", "This field is required.")
		return
	}
	wt, ok := s.data.addWitness(id, in)
	if !ok {
		writeError(w, http.StatusNotFound, "Crime report not found.")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"message": "Witness added successfully.", "witness": wt})
}

func (s *Server) removeWitness(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(w, r, "id")
	if !ok {
		return
	}
	wid, ok := intParam(w, r, "wid")
	if !ok {
		return
	}
	if !s.data.removeWitness(id, wid) {
		writeError(w, http.StatusNotFound, "Witness not found.")
		return
	}
	writeJSON(w, http.StatusOK, client.MessageResponse{Message: "Witness removed successfully."})
}

var uploadColumns = []string{"title", "category", "severity", "description", "location", "district", "date_occurred"}

const uploadTemplate = "title,category,severity,description,location,district,date_occurred,victim_count,weapons_used,modus_operandi,victim_details,evidence_notes\n" +
	"Phone snatching near taxi park,theft,medium,Victim's phone grabbed by a boda rider,Old Taxi Park,Kampala,2024-01-15 14:30,1,,Snatch and ride,,CCTV requested\n" +
	"Shop break-in,burglary,high,Shop entered through the roof at night,Nakawa Market,Nakawa,2024-01-16 02:00,1,Crowbar,Roof entry,Shop owner,Footprints photographed\n"

// uploadCrimes imports crimes from a CSV file, one report per row.
func (s *Server) uploadCrimes(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file provided. Upload a CSV or Excel file.")
		return
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(header.Filename)) {
	case ".csv":
	case ".xlsx", ".xls":
		writeError(w, http.StatusBadRequest, "Excel uploads are not supported by this server. Upload a CSV file.")
		return
	default:
		writeError(w, http.StatusBadRequest, "Invalid file type. Only CSV and Excel (.xlsx, .xls) are supported.")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read file: "+err.Error())
		return
	}
	rd := csv.NewReader(bytes.NewReader(data))
	rd.FieldsPerRecord = -1
	rows, err := rd.ReadAll()
	if err != nil || len(rows) == 0 {
		if err == nil {
			err = errors.New("file is empty")
		}
		writeError(w, http.StatusBadRequest, "Failed to read file: "+err.Error())
		return
	}

	cols := map[string]int{}
	for i, name := range rows[0] {
		cols[strings.TrimSpace(strings.ToLower(name))] = i
	}
	var missing []string
	for _, c := range uploadColumns {
		if _, ok := cols[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":            fmt.Sprintf("Missing required columns: %v", missing),
			"your_columns":     rows[0],
			"required_columns": uploadColumns,
		})
		return
	}

	me := currentOfficer(r)
	created := []client.UploadedCase{}
	skipped := []map[string]any{}
	failed := []map[string]any{}
	for i, row := range rows[1:] {
		rowNum := i + 2
		get := func(name string) string {
			idx, ok := cols[name]
			if !ok || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}
		if get("title") == "" {
			skipped = append(skipped, map[string]any{"row": rowNum, "reason": "Empty title"})
			continue
		}
		c := client.Crime{
			Title:         get("title"),
			Category:      strings.ToLower(get("category")),
			Severity:      strings.ToLower(get("severity")),
			Description:   get("description"),
			Location:      get("location"),
			District:      get("district"),
			DateOccurred:  get("date_occurred"),
			WeaponsUsed:   get("weapons_used"),
			ModusOperandi: get("modus_operandi"),
			VictimDetails: get("victim_details"),
			EvidenceNotes: get("evidence_notes"),
		}
		if n, err := strconv.Atoi(get("victim_count")); err == nil {
			c.VictimCount = n
		}
		if !slices.Contains(categories, c.Category) {
			c.Category = "other"
		}
		if !slices.Contains(severities, c.Severity) {
			c.Severity = "medium"
		}
		if field, msg := validateCrime(c, true); field != "" {
			failed = append(failed, map[string]any{"row": rowNum, "title": c.Title, "error": field + ": " + msg})
			continue
		}
		c = s.data.addCrime(c, me.Officer)
		created = append(created, client.UploadedCase{
			Row: rowNum, CaseNumber: c.CaseNumber, Title: c.Title,
			Category: c.Category, Severity: c.Severity, District: c.District,
		})
	}

	s.logger.Info("Bulk upload complete",
		"created", len(created), "skipped", len(skipped), "errors", len(failed),
		"badge_number", me.BadgeNumber)
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": fmt.Sprintf("Upload complete! %d crimes imported.", len(created)),
		"summary": client.UploadSummary{
			TotalRows: len(rows) - 1,
			Created:   len(created),
			Skipped:   len(skipped),
			Errors:    len(failed),
		},
		"created_cases": created,
		"skipped_rows":  skipped,
		"error_rows":    failed,
	})
}

func (s *Server) uploadTemplate(w http.ResponseWriter, r *http.Request) {
	writeFile(w, "text/csv", "crime_upload_template.csv", []byte(uploadTemplate))
}
