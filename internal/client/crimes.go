// ABOUTME: Crime report calls for the SafePulse API client
// ABOUTME: CRUD, suspects, witnesses and spreadsheet bulk upload

package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
)

// Values encodes the filter as query parameters.
func (f CrimeFilter) Values() url.Values {
	q := url.Values{}
	set := func(k, v string) {
		if v != "" {
			q.Set(k, v)
		}
	}
	set("search", f.Search)
	set("category", f.Category)
	set("severity", f.Severity)
	set("status", f.Status)
	set("district", f.District)
	set("ordering", f.Ordering)
	set("date_from", f.DateFrom)
	set("date_to", f.DateTo)
	if f.Page > 1 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	return q
}

func crimePath(id int) string {
	return fmt.Sprintf("/api/crimes/%d/", id)
}

// ListCrimes lists crime reports matching filter.
func (c *Client) ListCrimes(ctx context.Context, filter CrimeFilter) (*Page[Crime], error) {
	var out Page[Crime]
	if err := c.doJSON(ctx, http.MethodGet, "/api/crimes/", filter.Values(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetCrime fetches one crime report with suspects and witnesses.
func (c *Client) GetCrime(ctx context.Context, id int) (*Crime, error) {
	var out Crime
	if err := c.doJSON(ctx, http.MethodGet, crimePath(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type reportEnvelope struct {
	Message string `json:"message"`
	Report  Crime  `json:"report"`
}

// CreateCrime files a new crime report.
func (c *Client) CreateCrime(ctx context.Context, crime Crime) (*Crime, error) {
	var out reportEnvelope
	if err := c.doJSON(ctx, http.MethodPost, "/api/crimes/", nil, crime, &out); err != nil {
		return nil, err
	}
	return &out.Report, nil
}

// UpdateCrime changes the editable fields of a crime report. Empty fields
// are left unchanged.
func (c *Client) UpdateCrime(ctx context.Context, id int, crime Crime) (*Crime, error) {
	var out reportEnvelope
	if err := c.doJSON(ctx, http.MethodPut, crimePath(id), nil, crime, &out); err != nil {
		return nil, err
	}
	return &out.Report, nil
}

// DeleteCrime deletes a crime report.
func (c *Client) DeleteCrime(ctx context.Context, id int) error {
	return c.doJSON(ctx, http.MethodDelete, crimePath(id), nil, nil, nil)
}

// MyReports lists the reports filed by the current officer.
func (c *Client) MyReports(ctx context.Context) (*Page[Crime], error) {
	var out Page[Crime]
	if err := c.doJSON(ctx, http.MethodGet, "/api/crimes/my-reports/", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CrimeStats returns aggregate crime counts.
func (c *Client) CrimeStats(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	if err := c.doJSON(ctx, http.MethodGet, "/api/crimes/stats/", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddSuspect attaches a suspect to a crime report.
func (c *Client) AddSuspect(ctx context.Context, crimeID int, suspect Suspect) (*Suspect, error) {
	var out struct {
		Suspect Suspect `json:"suspect"`
	}
	if err := c.doJSON(ctx, http.MethodPost, crimePath(crimeID)+"suspects/", nil, suspect, &out); err != nil {
		return nil, err
	}
	return &out.Suspect, nil
}

// RemoveSuspect detaches a suspect from a crime report.
func (c *Client) RemoveSuspect(ctx context.Context, crimeID, suspectID int) error {
	path := fmt.Sprintf("%ssuspects/%d/", crimePath(crimeID), suspectID)
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil, nil)
}

// AddWitness attaches a witness to a crime report.
func (c *Client) AddWitness(ctx context.Context, crimeID int, witness Witness) (*Witness, error) {
	var out struct {
		Witness Witness `json:"witness"`
	}
	if err := c.doJSON(ctx, http.MethodPost, crimePath(crimeID)+"witnesses/", nil, witness, &out); err != nil {
		return nil, err
	}
	return &out.Witness, nil
}

// RemoveWitness detaches a witness from a crime report.
func (c *Client) RemoveWitness(ctx context.Context, crimeID, witnessID int) error {
	path := fmt.Sprintf("%switnesses/%d/", crimePath(crimeID), witnessID)
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil, nil)
}

// UploadCrimes bulk-imports crime records from a CSV or Excel file.
func (c *Client) UploadCrimes(ctx context.Context, filename string, r io.Reader) (*UploadResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}

	req := &Request{
		Method: http.MethodPost,
		Path:   "/api/crimes/upload/",
		Header: http.Header{"Content-Type": []string{mw.FormDataContentType()}},
		Body:   buf.Bytes(),
	}
	resp, err := c.Do(ctx, req)
	if err != nil {
		return nil, err
	}

	var out UploadResult
	if err := decodeBody(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadTemplate downloads the CSV template for bulk uploads.
func (c *Client) UploadTemplate(ctx context.Context) (*Download, error) {
	return c.download(ctx, http.MethodGet, "/api/crimes/upload/template/", nil, "crime_upload_template.csv")
}
