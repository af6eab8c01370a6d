// ABOUTME: Sample crime reports for the fake backend
// ABOUTME: Spread over the last two months so every dashboard view has data

package fakebackend

import (
	"time"

	"github.com/markalston/safepulse-cli/internal/client"
)

var sampleCrimes = []struct {
	daysAgo  int
	status   string
	severity string
	category string
	title    string
	district string
	location string
}{
	{0, "reported", "high", "robbery", "Armed robbery at mobile money kiosk", "Kampala", "Kikuubo Lane"},
	{1, "under_investigation", "critical", "homicide", "Body found near railway line", "Nakawa", "Kireka Railway Crossing"},
	{2, "reported", "medium", "theft", "Phone snatching near taxi park", "Kampala", "Old Taxi Park"},
	{3, "solved", "low", "vandalism", "Streetlights damaged", "Wakiso", "Entebbe Road"},
	{5, "reported", "high", "burglary", "Shop break-in through roof", "Nakawa", "Nakawa Market"},
	{8, "under_investigation", "medium", "fraud", "Fake land title sale", "Mukono", "Seeta Trading Centre"},
	{12, "reported", "critical", "kidnapping", "Child reported abducted after school", "Wakiso", "Nansana"},
	{15, "solved", "medium", "assault", "Bar fight injuring two", "Kampala", "Kabalagala"},
	{20, "cold_case", "high", "arson", "Market stalls set on fire", "Jinja", "Jinja Central Market"},
	{27, "under_investigation", "high", "cybercrime", "Mobile money SIM swap ring", "Kampala", "Nakasero"},
	{40, "solved", "low", "theft", "Bicycle stolen from school compound", "Mukono", "Mukono Boys School"},
	{55, "reported", "medium", "drug_offense", "Cannabis found during stop and search", "Jinja", "Walukuba"},
}

func (s *Server) seedCrimes() {
	o, _ := s.data.officer(1)
	now := s.now()
	for _, sc := range sampleCrimes {
		at := now.AddDate(0, 0, -sc.daysAgo).Add(-time.Hour)
		s.data.addCrimeAt(client.Crime{
			Title:        sc.title,
			Category:     sc.category,
			Severity:     sc.severity,
			Status:       sc.status,
			Description:  sc.title + ".",
			Location:     sc.location,
			District:     sc.district,
			DateOccurred: at.Add(-2 * time.Hour).UTC().Format(time.RFC3339),
		}, o.Officer, at)
	}
}
