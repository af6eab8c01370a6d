// ABOUTME: In-memory records for the fake backend: officers, crimes, analyses
// ABOUTME: All access goes through dataset methods holding a single mutex

package fakebackend

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/markalston/safepulse-cli/internal/client"
	"github.com/markalston/safepulse-cli/internal/session"
)

type officerRecord struct {
	session.Officer
	password string
	isAdmin  bool
}

type crimeRecord struct {
	client.Crime
	reportedAt time.Time
}

type dataset struct {
	mu sync.Mutex

	officers      map[int]*officerRecord
	nextOfficerID int

	crimes    []*crimeRecord
	nextCrime int
	nextChild int

	analyses      []client.AnalysisResult
	conversations map[string]*client.Conversation
	nextMessage   int
	reports       []client.ReportRecord

	now func() time.Time
}

func newDataset(now func() time.Time) *dataset {
	return &dataset{
		officers:      make(map[int]*officerRecord),
		conversations: make(map[string]*client.Conversation),
		now:           now,
	}
}

func (d *dataset) stamp() string {
	return d.now().UTC().Format(time.RFC3339)
}

func fullName(o session.Officer) string {
	return strings.TrimSpace(o.FirstName + " " + o.LastName)
}

// addOfficer registers an officer. It fails when the badge number is taken.
func (d *dataset) addOfficer(o session.Officer, password string) (session.Officer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, existing := range d.officers {
		if strings.EqualFold(existing.BadgeNumber, o.BadgeNumber) {
			return session.Officer{}, errors.New("officer with this badge number already exists")
		}
	}
	d.nextOfficerID++
	o.ID = d.nextOfficerID
	if o.Role == "" {
		o.Role = "officer"
	}
	o.FullName = fullName(o)
	o.DateJoined = d.stamp()
	o.LastUpdated = o.DateJoined
	d.officers[o.ID] = &officerRecord{Officer: o, password: password, isAdmin: o.Role == "admin"}
	return o, nil
}

// officer returns a copy of the officer with id.
func (d *dataset) officer(id int) (*officerRecord, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	o, ok := d.officers[id]
	if !ok {
		return nil, false
	}
	cp := *o
	return &cp, true
}

// authenticate finds the officer with badge and password.
func (d *dataset) authenticate(badge, password string) (*officerRecord, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, o := range d.officers {
		if strings.EqualFold(o.BadgeNumber, badge) && o.password == password {
			cp := *o
			return &cp, true
		}
	}
	return nil, false
}

// updateOfficer applies fn to the stored officer and returns the result.
func (d *dataset) updateOfficer(id int, fn func(*officerRecord)) (session.Officer, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	o, ok := d.officers[id]
	if !ok {
		return session.Officer{}, false
	}
	fn(o)
	o.FullName = fullName(o.Officer)
	o.LastUpdated = d.stamp()
	return o.Officer, true
}

func (d *dataset) officerList() []session.Officer {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]session.Officer, 0, len(d.officers))
	for _, o := range d.officers {
		out = append(out, o.Officer)
	}
	slices.SortFunc(out, func(a, b session.Officer) int { return a.ID - b.ID })
	return out
}

// addCrime files a crime reported by officer now.
func (d *dataset) addCrime(c client.Crime, officer session.Officer) client.Crime {
	return d.addCrimeAt(c, officer, d.now())
}

// addCrimeAt files a crime reported by officer at now.
func (d *dataset) addCrimeAt(c client.Crime, officer session.Officer, now time.Time) client.Crime {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.nextCrime++
	c.ID = d.nextCrime
	c.CaseNumber = fmt.Sprintf("UPF-CASE-%05d", c.ID)
	c.ReportedBy = officer.ID
	c.ReportedByName = officer.FullName
	if c.Status == "" {
		c.Status = "reported"
	}
	if c.Severity == "" {
		c.Severity = "medium"
	}
	if c.VictimCount == 0 {
		c.VictimCount = 1
	}
	c.DateReported = now.UTC().Format(time.RFC3339)
	c.DateUpdated = c.DateReported
	d.crimes = append(d.crimes, &crimeRecord{Crime: c, reportedAt: now})
	return c
}

func (d *dataset) findCrime(id int) (*crimeRecord, int) {
	for i, c := range d.crimes {
		if c.ID == id {
			return c, i
		}
	}
	return nil, -1
}

func (d *dataset) crime(id int) (client.Crime, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	c, _ := d.findCrime(id)
	if c == nil {
		return client.Crime{}, false
	}
	return copyCrime(c.Crime), true
}

func (d *dataset) crimeByCase(caseNumber string) (client.Crime, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, c := range d.crimes {
		if c.CaseNumber == caseNumber {
			return copyCrime(c.Crime), true
		}
	}
	return client.Crime{}, false
}

// updateCrime merges the non-empty fields of patch into the crime.
func (d *dataset) updateCrime(id int, patch client.Crime) (client.Crime, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	rec, _ := d.findCrime(id)
	if rec == nil {
		return client.Crime{}, false
	}
	c := &rec.Crime
	merge := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	merge(&c.Title, patch.Title)
	merge(&c.Category, patch.Category)
	merge(&c.Severity, patch.Severity)
	merge(&c.Status, patch.Status)
	merge(&c.Description, patch.Description)
	merge(&c.WeaponsUsed, patch.WeaponsUsed)
	merge(&c.ModusOperandi, patch.ModusOperandi)
	merge(&c.Location, patch.Location)
	merge(&c.District, patch.District)
	merge(&c.DateOccurred, patch.DateOccurred)
	merge(&c.VictimDetails, patch.VictimDetails)
	merge(&c.EvidenceNotes, patch.EvidenceNotes)
	if patch.VictimCount > 0 {
		c.VictimCount = patch.VictimCount
	}
	c.DateUpdated = d.stamp()
	return copyCrime(*c), true
}

func (d *dataset) deleteCrime(id int) (client.Crime, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	rec, i := d.findCrime(id)
	if rec == nil {
		return client.Crime{}, false
	}
	d.crimes = slices.Delete(d.crimes, i, i+1)
	return rec.Crime, true
}

func (d *dataset) markAnalyzed(id int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if rec, _ := d.findCrime(id); rec != nil {
		rec.IsAnalyzed = true
	}
}

func (d *dataset) addSuspect(crimeID int, s client.Suspect) (client.Suspect, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	rec, _ := d.findCrime(crimeID)
	if rec == nil {
		return client.Suspect{}, false
	}
	d.nextChild++
	s.ID = d.nextChild
	if s.Gender == "" {
		s.Gender = "unknown"
	}
	s.CreatedAt = d.stamp()
	rec.Suspects = append(rec.Suspects, s)
	return s, true
}

func (d *dataset) removeSuspect(crimeID, suspectID int) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	rec, _ := d.findCrime(crimeID)
	if rec == nil {
		return false
	}
	i := slices.IndexFunc(rec.Suspects, func(s client.Suspect) bool { return s.ID == suspectID })
	if i < 0 {
		return false
	}
	rec.Suspects = slices.Delete(rec.Suspects, i, i+1)
	return true
}

func (d *dataset) addWitness(crimeID int, w client.Witness) (client.Witness, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	rec, _ := d.findCrime(crimeID)
	if rec == nil {
		return client.Witness{}, false
	}
	d.nextChild++
	w.ID = d.nextChild
	w.CreatedAt = d.stamp()
	rec.Witnesses = append(rec.Witnesses, w)
	return w, true
}

func (d *dataset) removeWitness(crimeID, witnessID int) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	rec, _ := d.findCrime(crimeID)
	if rec == nil {
		return false
	}
	i := slices.IndexFunc(rec.Witnesses, func(w client.Witness) bool { return w.ID == witnessID })
	if i < 0 {
		return false
	}
	rec.Witnesses = slices.Delete(rec.Witnesses, i, i+1)
	return true
}

// snapshot returns copies of every crime, newest report first.
func (d *dataset) snapshot() []crimeRecord {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]crimeRecord, len(d.crimes))
	for i, c := range d.crimes {
		out[i] = crimeRecord{Crime: copyCrime(c.Crime), reportedAt: c.reportedAt}
	}
	slices.SortFunc(out, func(a, b crimeRecord) int {
		if n := b.reportedAt.Compare(a.reportedAt); n != 0 {
			return n
		}
		return b.ID - a.ID
	})
	return out
}

func copyCrime(c client.Crime) client.Crime {
	c.Suspects = slices.Clone(c.Suspects)
	c.Witnesses = slices.Clone(c.Witnesses)
	return c
}

func (d *dataset) addAnalysis(a client.AnalysisResult) client.AnalysisResult {
	d.mu.Lock()
	defer d.mu.Unlock()
	a.ID = len(d.analyses) + 1
	a.CreatedAt = d.stamp()
	a.CompletedAt = a.CreatedAt
	d.analyses = append(d.analyses, a)
	return a
}

func (d *dataset) analysis(id int) (client.AnalysisResult, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if id < 1 || id > len(d.analyses) {
		return client.AnalysisResult{}, false
	}
	return d.analyses[id-1], true
}

// analysesFor returns the analyses requested by name, newest first.
func (d *dataset) analysesFor(name string) []client.AnalysisResult {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []client.AnalysisResult
	for i := len(d.analyses) - 1; i >= 0; i-- {
		if d.analyses[i].RequestedByName == name {
			out = append(out, d.analyses[i])
		}
	}
	return out
}

// appendChat adds a user message and the agent reply to the conversation
// with sessionID, creating it when sessionID is new.
func (d *dataset) appendChat(sessionID, officerName, message, reply string, create bool) (client.Conversation, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	conv, ok := d.conversations[sessionID]
	if !ok {
		if !create {
			return client.Conversation{}, false
		}
		title := message
		if len(title) > 80 {
			title = title[:80]
		}
		conv = &client.Conversation{
			ID:          len(d.conversations) + 1,
			SessionID:   sessionID,
			Title:       title,
			IsActive:    true,
			OfficerName: officerName,
			CreatedAt:   d.stamp(),
		}
		d.conversations[sessionID] = conv
	}
	if conv.OfficerName != officerName {
		return client.Conversation{}, false
	}
	for _, m := range []client.ChatMessage{{Role: "user", Content: message}, {Role: "assistant", Content: reply}} {
		d.nextMessage++
		m.ID = d.nextMessage
		m.CreatedAt = d.stamp()
		conv.Messages = append(conv.Messages, m)
	}
	conv.UpdatedAt = d.stamp()
	out := *conv
	out.Messages = slices.Clone(conv.Messages)
	return out, true
}

func (d *dataset) conversation(sessionID, officerName string) (client.Conversation, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	conv, ok := d.conversations[sessionID]
	if !ok || conv.OfficerName != officerName {
		return client.Conversation{}, false
	}
	out := *conv
	out.Messages = slices.Clone(conv.Messages)
	return out, true
}

func (d *dataset) addReport(r client.ReportRecord) client.ReportRecord {
	d.mu.Lock()
	defer d.mu.Unlock()
	r.ID = len(d.reports) + 1
	r.CreatedAt = d.stamp()
	d.reports = append(d.reports, r)
	return r
}

// reportsFor returns the reports generated by name, newest first.
func (d *dataset) reportsFor(name string) []client.ReportRecord {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []client.ReportRecord
	for i := len(d.reports) - 1; i >= 0; i-- {
		if d.reports[i].GeneratedByName == name {
			out = append(out, d.reports[i])
		}
	}
	return out
}

func (d *dataset) counts() (analyses, reports, officers int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.analyses), len(d.reports), len(d.officers)
}
