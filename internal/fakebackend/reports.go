// ABOUTME: Report generation handlers for the fake backend
// ABOUTME: Renders minimal PDF and SpreadsheetML documents and records history

package fakebackend

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/markalston/safepulse-cli/internal/client"
)

const (
	contentTypePDF   = "application/pdf"
	contentTypeExcel = "application/vnd.ms-excel"
)

// renderPDF writes a single-page PDF listing lines under title.
func renderPDF(title string, lines []string) []byte {
	escape := strings.NewReplacer(`\`, `\\`, "(", `\(`, ")", `\)`).Replace

	var content bytes.Buffer
	content.WriteString("BT /F1 14 Tf 50 800 Td (" + escape(title) + ") Tj /F1 10 Tf")
	for _, l := range lines {
		content.WriteString(" 0 -16 Td (" + escape(l) + ") Tj")
	}
	content.WriteString(" ET")

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 595 842] /Contents 4 0 R /Resources << /Font << /F1 5 0 R >> >> >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", content.Len(), content.String()),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
	}

	var out bytes.Buffer
	out.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = out.Len()
		fmt.Fprintf(&out, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := out.Len()
	fmt.Fprintf(&out, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&out, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&out, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return out.Bytes()
}

// renderSpreadsheet writes rows as a SpreadsheetML 2003 workbook.
func renderSpreadsheet(sheet string, rows [][]string) []byte {
	var out bytes.Buffer
	out.WriteString(xml.Header)
	out.WriteString(`<Workbook xmlns="urn:schemas-microsoft-com:office:spreadsheet" xmlns:ss="urn:schemas-microsoft-com:office:spreadsheet">`)
	out.WriteString(`<Worksheet ss:Name="` + sheet + `"><Table>`)
	for _, row := range rows {
		out.WriteString("<Row>")
		for _, cell := range row {
			out.WriteString(`<Cell><Data ss:Type="String">`)
			xml.EscapeText(&out, []byte(cell))
			out.WriteString("</Data></Cell>")
		}
		out.WriteString("</Row>")
	}
	out.WriteString("</Table></Worksheet></Workbook>")
	return out.Bytes()
}

func (s *Server) filteredCrimes(f client.ReportFilter) []crimeRecord {
	q := crimeQuery{CrimeFilter: client.CrimeFilter{
		Category: f.Category,
		Severity: f.Severity,
		Status:   f.Status,
		District: f.District,
	}}
	var out []crimeRecord
	for _, c := range s.data.snapshot() {
		if q.match(c) {
			out = append(out, c)
		}
	}
	return out
}

func (s *Server) record(r *http.Request, title, reportType, format string, params any) {
	s.data.addReport(client.ReportRecord{
		Title:           title,
		ReportType:      reportType,
		ReportFormat:    format,
		Parameters:      mustJSON(params),
		GeneratedByName: currentOfficer(r).FullName,
	})
}

func (s *Server) stampName(prefix, ext string) string {
	return fmt.Sprintf("%s_%s.%s", prefix, s.now().Format("20060102_150405"), ext)
}

func (s *Server) crimeListPDF(w http.ResponseWriter, r *http.Request) {
	var f client.ReportFilter
	if !decodeJSON(w, r, &f) {
		return
	}
	var lines []string
	for _, c := range s.filteredCrimes(f) {
		lines = append(lines, fmt.Sprintf("%s  %s  %s  %s  %s", c.CaseNumber, c.Title, c.Category, c.Severity, c.District))
	}
	s.record(r, "Crime List Report", "crime_list", "pdf", f)
	writeFile(w, contentTypePDF, s.stampName("crime_list", "pdf"), renderPDF("Crime List Report", lines))
}

func (s *Server) crimeListExcel(w http.ResponseWriter, r *http.Request) {
	var f client.ReportFilter
	if !decodeJSON(w, r, &f) {
		return
	}
	rows := [][]string{{"Case Number", "Title", "Category", "Severity", "Status", "District", "Date Reported"}}
	for _, c := range s.filteredCrimes(f) {
		rows = append(rows, []string{c.CaseNumber, c.Title, c.Category, c.Severity, c.Status, c.District, c.DateReported})
	}
	s.record(r, "Crime List Report", "crime_list", "excel", f)
	writeFile(w, contentTypeExcel, s.stampName("crime_list", "xls"), renderSpreadsheet("Crimes", rows))
}

func (s *Server) casePDF(w http.ResponseWriter, r *http.Request) {
	caseNumber := chi.URLParam(r, "case")
	c, ok := s.data.crimeByCase(caseNumber)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Crime report %s not found.", caseNumber))
		return
	}
	lines := []string{
		"Title: " + c.Title,
		"Category: " + displayLabel(c.Category),
		"Severity: " + c.Severity,
		"Status: " + displayLabel(c.Status),
		"Location: " + c.Location + ", " + c.District,
		"Occurred: " + c.DateOccurred,
		"Description: " + c.Description,
	}
	for _, sp := range c.Suspects {
		lines = append(lines, "Suspect: "+sp.Name)
	}
	for _, wt := range c.Witnesses {
		lines = append(lines, "Witness: "+wt.Name)
	}
	s.record(r, "Case Report "+c.CaseNumber, "single_crime", "pdf", map[string]string{"case_number": c.CaseNumber})
	writeFile(w, contentTypePDF, fmt.Sprintf("case_%s.pdf", c.CaseNumber), renderPDF("Case "+c.CaseNumber, lines))
}

func (s *Server) analysisPDF(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(w, r, "id")
	if !ok {
		return
	}
	a, ok := s.data.analysis(id)
	if !ok {
		writeError(w, http.StatusNotFound, "Analysis result not found.")
		return
	}
	lines := []string{"Summary: " + a.Summary, "Risk: " + a.RiskAssessment}
	s.record(r, fmt.Sprintf("AI Analysis Report #%d", a.ID), "analysis", "pdf", map[string]int{"analysis_id": a.ID})
	writeFile(w, contentTypePDF, fmt.Sprintf("analysis_%d.pdf", a.ID), renderPDF(fmt.Sprintf("AI Analysis #%d", a.ID), lines))
}

func (s *Server) reportHistory(w http.ResponseWriter, r *http.Request) {
	reports := s.data.reportsFor(currentOfficer(r).FullName)
	if reports == nil {
		reports = []client.ReportRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": len(reports), "results": reports})
}
