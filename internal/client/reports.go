// ABOUTME: Report generation calls for the SafePulse API client
// ABOUTME: PDF and Excel downloads plus the report history

package client

import (
	"context"
	"fmt"
	"net/http"
)

// ReportFilter narrows a crime list report.
type ReportFilter struct {
	Category string `json:"category,omitempty"`
	Severity string `json:"severity,omitempty"`
	Status   string `json:"status,omitempty"`
	District string `json:"district,omitempty"`
}

// CrimeListPDF renders the filtered crime list as a PDF.
func (c *Client) CrimeListPDF(ctx context.Context, filter ReportFilter) (*Download, error) {
	return c.download(ctx, http.MethodPost, "/api/reports/crime-list/pdf/", filter, "crime_list.pdf")
}

// CrimeListExcel renders the filtered crime list as an Excel workbook.
func (c *Client) CrimeListExcel(ctx context.Context, filter ReportFilter) (*Download, error) {
	return c.download(ctx, http.MethodPost, "/api/reports/crime-list/excel/", filter, "crime_list.xlsx")
}

// CasePDF renders a single case as a PDF.
func (c *Client) CasePDF(ctx context.Context, caseNumber string) (*Download, error) {
	path := fmt.Sprintf("/api/reports/crime/%s/pdf/", caseNumber)
	return c.download(ctx, http.MethodGet, path, nil, caseNumber+".pdf")
}

// AnalysisPDF renders a stored analysis as a PDF.
func (c *Client) AnalysisPDF(ctx context.Context, id int) (*Download, error) {
	path := fmt.Sprintf("/api/reports/analysis/%d/pdf/", id)
	return c.download(ctx, http.MethodGet, path, nil, fmt.Sprintf("analysis_%d.pdf", id))
}

// ReportHistory lists previously generated reports.
func (c *Client) ReportHistory(ctx context.Context) (*Page[ReportRecord], error) {
	var out Page[ReportRecord]
	if err := c.doJSON(ctx, http.MethodGet, "/api/reports/history/", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
