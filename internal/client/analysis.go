// ABOUTME: AI analysis and chat calls for the SafePulse API client
// ABOUTME: Case analysis, general analysis and the investigation chat agent

package client

import (
	"context"
	"fmt"
	"net/http"
)

type analysisEnvelope struct {
	Message  string         `json:"message"`
	Analysis AnalysisResult `json:"analysis"`
}

// AnalyzeCase requests an AI analysis of a single case.
func (c *Client) AnalyzeCase(ctx context.Context, caseNumber string) (*AnalysisResult, error) {
	in := map[string]string{"case_number": caseNumber}
	var out analysisEnvelope
	if err := c.doJSON(ctx, http.MethodPost, "/api/analysis/analyze-report/", nil, in, &out); err != nil {
		return nil, err
	}
	return &out.Analysis, nil
}

// AnalyzeGeneral requests a system-wide analysis, optionally steered by
// prompt.
func (c *Client) AnalyzeGeneral(ctx context.Context, prompt string) (*AnalysisResult, error) {
	in := map[string]string{}
	if prompt != "" {
		in["prompt"] = prompt
	}
	var out analysisEnvelope
	if err := c.doJSON(ctx, http.MethodPost, "/api/analysis/general/", nil, in, &out); err != nil {
		return nil, err
	}
	return &out.Analysis, nil
}

// Chat sends message to the investigation agent. An empty sessionID starts
// a new conversation.
func (c *Client) Chat(ctx context.Context, message, sessionID string) (*ChatReply, error) {
	in := map[string]string{"message": message}
	if sessionID != "" {
		in["session_id"] = sessionID
	}
	var out ChatReply
	if err := c.doJSON(ctx, http.MethodPost, "/api/analysis/chat/", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ChatHistory returns a conversation with its messages.
func (c *Client) ChatHistory(ctx context.Context, sessionID string) (*Conversation, error) {
	var out Conversation
	if err := c.doJSON(ctx, http.MethodGet, "/api/analysis/chat/"+sessionID+"/", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListAnalyses lists stored analyses.
func (c *Client) ListAnalyses(ctx context.Context) (*Page[AnalysisResult], error) {
	var out Page[AnalysisResult]
	if err := c.doJSON(ctx, http.MethodGet, "/api/analysis/results/", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetAnalysis fetches one stored analysis.
func (c *Client) GetAnalysis(ctx context.Context, id int) (*AnalysisResult, error) {
	var out AnalysisResult
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/analysis/results/%d/", id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
