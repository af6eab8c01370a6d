// ABOUTME: AI analysis handlers for the fake backend
// ABOUTME: Deterministic stand-in for the analysis model and chat agent

package fakebackend

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/markalston/safepulse-cli/internal/client"
)

func mustJSON(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}

func riskFor(severity string) string {
	switch severity {
	case "critical":
		return "CRITICAL"
	case "high":
		return "HIGH"
	case "low":
		return "LOW"
	}
	return "MEDIUM"
}

func (s *Server) analyzeReport(w http.ResponseWriter, r *http.Request) {
	var in struct {
		CaseNumber string `json:"case_number"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}
	if in.CaseNumber == "" {
		writeError(w, http.StatusBadRequest, "case_number is required.")
		return
	}
	c, ok := s.data.crimeByCase(in.CaseNumber)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Crime report %s not found.", in.CaseNumber))
		return
	}

	a := s.data.addAnalysis(client.AnalysisResult{
		RequestedByName: currentOfficer(r).FullName,
		CaseNumber:      c.CaseNumber,
		Summary: fmt.Sprintf("%s: %s in %s reported as %s severity with %d suspect(s) and %d witness(es).",
			c.CaseNumber, displayLabel(c.Category), c.District, c.Severity, len(c.Suspects), len(c.Witnesses)),
		PatternsFound: mustJSON([]string{
			fmt.Sprintf("%s incidents cluster around %s", displayLabel(c.Category), c.Location),
		}),
		Recommendations: mustJSON([]string{
			"Canvass the area for CCTV footage",
			"Cross-check suspects against prior " + displayLabel(c.Category) + " cases",
		}),
		RiskAssessment: riskFor(c.Severity),
		Status:         "completed",
	})
	s.data.markAnalyzed(c.ID)
	writeJSON(w, http.StatusOK, map[string]any{"message": "Analysis completed successfully.", "analysis": a})
}

func (s *Server) analyzeGeneral(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Prompt string `json:"prompt"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}

	crimes := s.data.snapshot()
	var hotspots []string
	for _, row := range countBy(crimes, func(c crimeRecord) string { return c.District }) {
		if len(hotspots) == 3 {
			break
		}
		hotspots = append(hotspots, row.key)
	}
	summary := fmt.Sprintf("%d crime reports on record.", len(crimes))
	if in.Prompt != "" {
		summary = fmt.Sprintf("Regarding %q: %s", in.Prompt, summary)
	}

	a := s.data.addAnalysis(client.AnalysisResult{
		RequestedByName: currentOfficer(r).FullName,
		Prompt:          in.Prompt,
		Summary:         summary,
		Hotspots:        mustJSON(hotspots),
		Recommendations: mustJSON([]string{"Increase patrols in the top hotspot districts"}),
		RiskAssessment:  "MEDIUM",
		Status:          "completed",
	})
	writeJSON(w, http.StatusOK, map[string]any{"message": "General analysis completed.", "analysis": a})
}

// agentReply answers a chat message from the crime records.
func (s *Server) agentReply(message string) string {
	crimes := s.data.snapshot()
	lower := strings.ToLower(message)
	for _, c := range crimes {
		if strings.Contains(lower, strings.ToLower(c.CaseNumber)) {
			return fmt.Sprintf("Case %s (%s) is %s in %s.", c.CaseNumber, c.Title, displayLabel(c.Status), c.District)
		}
	}
	for _, cat := range categories {
		if strings.Contains(lower, strings.ReplaceAll(cat, "_", " ")) {
			n := 0
			for _, c := range crimes {
				if c.Category == cat {
					n++
				}
			}
			return fmt.Sprintf("There are %d %s reports on record.", n, displayLabel(cat))
		}
	}
	return fmt.Sprintf("I have %d crime reports available. Ask about a case number or a crime category.", len(crimes))
}

func (s *Server) chat(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Message   string `json:"message"`
		SessionID string `json:"session_id"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}
	if strings.TrimSpace(in.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required.")
		return
	}

	create := in.SessionID == ""
	if create {
		in.SessionID = uuid.NewString()
	}
	reply := s.agentReply(in.Message)
	if _, ok := s.data.appendChat(in.SessionID, currentOfficer(r).FullName, in.Message, reply, create); !ok {
		writeError(w, http.StatusNotFound, "Conversation not found.")
		return
	}
	writeJSON(w, http.StatusOK, client.ChatReply{SessionID: in.SessionID, Message: in.Message, Response: reply})
}

func (s *Server) chatHistory(w http.ResponseWriter, r *http.Request) {
	conv, ok := s.data.conversation(chi.URLParam(r, "session"), currentOfficer(r).FullName)
	if !ok {
		writeError(w, http.StatusNotFound, "Conversation not found.")
		return
	}
	writeJSON(w, http.StatusOK, conv)
}

func (s *Server) analysisResults(w http.ResponseWriter, r *http.Request) {
	results := s.data.analysesFor(currentOfficer(r).FullName)
	if results == nil {
		results = []client.AnalysisResult{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": len(results), "results": results})
}

func (s *Server) analysisResult(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(w, r, "id")
	if !ok {
		return
	}
	a, ok := s.data.analysis(id)
	if !ok {
		writeError(w, http.StatusNotFound, "Analysis result not found.")
		return
	}
	writeJSON(w, http.StatusOK, a)
}
