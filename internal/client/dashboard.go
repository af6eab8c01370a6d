// ABOUTME: Dashboard aggregate calls for the SafePulse API client
// ABOUTME: Overview counts, breakdowns, hotspots, trends and alerts

package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
)

// Periods accepted by the breakdown endpoints.
const (
	PeriodWeek  = "week"
	PeriodMonth = "month"
	PeriodYear  = "year"
	PeriodAll   = "all"
)

// Overview is the system-wide dashboard summary.
type Overview struct {
	Crimes struct {
		Total            int     `json:"total"`
		ThisWeek         int     `json:"this_week"`
		ThisMonth        int     `json:"this_month"`
		HighPriority     int     `json:"high_priority"`
		SolveRatePercent float64 `json:"solve_rate_percent"`
	} `json:"crimes"`
	ByStatus struct {
		Reported           int `json:"reported"`
		UnderInvestigation int `json:"under_investigation"`
		Solved             int `json:"solved"`
		ColdCases          int `json:"cold_cases"`
	} `json:"by_status"`
	System struct {
		TotalAnalyses  int `json:"total_analyses"`
		TotalReports   int `json:"total_reports"`
		ActiveOfficers int `json:"active_officers"`
	} `json:"system"`
}

// CountBucket is one row of a category or severity breakdown.
type CountBucket struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Count int    `json:"count"`
	Color string `json:"color,omitempty"`
}

// UnmarshalJSON takes the label from either the category or severity key.
func (b *CountBucket) UnmarshalJSON(data []byte) error {
	var raw struct {
		Category string `json:"category"`
		Severity string `json:"severity"`
		Value    string `json:"value"`
		Count    int    `json:"count"`
		Color    string `json:"color"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	b.Label = raw.Category
	if b.Label == "" {
		b.Label = raw.Severity
	}
	b.Value, b.Count, b.Color = raw.Value, raw.Count, raw.Color
	return nil
}

// Hotspot is a district ranked by crime volume.
type Hotspot struct {
	District     string `json:"district"`
	Total        int    `json:"total"`
	HighSeverity int    `json:"high_severity"`
	Unsolved     int    `json:"unsolved"`
	RiskLevel    string `json:"risk_level"`
}

// CaseSummary is a crime in the alerts list or the recent-crimes feed.
// Category and Status arrive as display labels.
type CaseSummary struct {
	ID           int    `json:"id"`
	CaseNumber   string `json:"case_number"`
	Title        string `json:"title"`
	Category     string `json:"category"`
	Severity     string `json:"severity"`
	Status       string `json:"status"`
	District     string `json:"district"`
	DateReported string `json:"date_reported"`
	DaysOpen     int    `json:"days_open,omitempty"`
	IsAnalyzed   bool   `json:"is_analyzed,omitempty"`
	ReportedBy   string `json:"reported_by,omitempty"`
}

// TrendPoint is one month or day of a crime trend.
type TrendPoint struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// UnmarshalJSON takes the label from either the month or date key.
func (p *TrendPoint) UnmarshalJSON(data []byte) error {
	var raw struct {
		Month string `json:"month"`
		Date  string `json:"date"`
		Count int    `json:"count"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	p.Label = raw.Month
	if p.Label == "" {
		p.Label = raw.Date
	}
	p.Count = raw.Count
	return nil
}

// CategoryDistrictCount is one cell of the category by district matrix.
type CategoryDistrictCount struct {
	Category string `json:"category"`
	District string `json:"district"`
	Count    int    `json:"count"`
}

type periodData[T any] struct {
	Period string `json:"period,omitempty"`
	Count  int    `json:"count,omitempty"`
	Data   []T    `json:"data"`
}

func periodQuery(period string, limit int) url.Values {
	q := url.Values{}
	if period != "" {
		q.Set("period", period)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	return q
}

// Overview returns the dashboard summary.
func (c *Client) Overview(ctx context.Context) (*Overview, error) {
	var out Overview
	if err := c.doJSON(ctx, http.MethodGet, "/api/dashboard/overview/", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CrimesByCategory returns crime counts per category for period.
func (c *Client) CrimesByCategory(ctx context.Context, period string) ([]CountBucket, error) {
	return getData[CountBucket](ctx, c, "/api/dashboard/crimes-by-category/", periodQuery(period, 0))
}

// CrimesBySeverity returns crime counts per severity for period.
func (c *Client) CrimesBySeverity(ctx context.Context, period string) ([]CountBucket, error) {
	return getData[CountBucket](ctx, c, "/api/dashboard/crimes-by-severity/", periodQuery(period, 0))
}

// Hotspots returns the top districts by crime volume.
func (c *Client) Hotspots(ctx context.Context, period string, limit int) ([]Hotspot, error) {
	return getData[Hotspot](ctx, c, "/api/dashboard/hotspots/", periodQuery(period, limit))
}

// Alerts returns unresolved high and critical severity crimes.
func (c *Client) Alerts(ctx context.Context) ([]CaseSummary, error) {
	return getData[CaseSummary](ctx, c, "/api/dashboard/alerts/", nil)
}

// MonthlyTrends returns crime counts per month for the last year.
func (c *Client) MonthlyTrends(ctx context.Context) ([]TrendPoint, error) {
	return getData[TrendPoint](ctx, c, "/api/dashboard/trends/monthly/", nil)
}

// DailyTrends returns crime counts per day for the last 30 days.
func (c *Client) DailyTrends(ctx context.Context) ([]TrendPoint, error) {
	return getData[TrendPoint](ctx, c, "/api/dashboard/trends/daily/", nil)
}

// RecentCrimes returns the latest crime feed.
func (c *Client) RecentCrimes(ctx context.Context, limit int) ([]CaseSummary, error) {
	return getData[CaseSummary](ctx, c, "/api/dashboard/recent-crimes/", periodQuery("", limit))
}

// CategoryDistrict returns the category by district matrix.
func (c *Client) CategoryDistrict(ctx context.Context, category, district string) ([]CategoryDistrictCount, error) {
	q := url.Values{}
	if category != "" {
		q.Set("category", category)
	}
	if district != "" {
		q.Set("district", district)
	}
	return getData[CategoryDistrictCount](ctx, c, "/api/dashboard/category-district/", q)
}

// MyStats returns the current officer's activity summary.
func (c *Client) MyStats(ctx context.Context) (json.RawMessage, error) {
	var out json.RawMessage
	if err := c.doJSON(ctx, http.MethodGet, "/api/dashboard/my-stats/", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// getData fetches a {"data": [...]} envelope.
func getData[T any](ctx context.Context, c *Client, path string, query url.Values) ([]T, error) {
	var out periodData[T]
	if err := c.doJSON(ctx, http.MethodGet, path, query, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}
