// ABOUTME: Request and response shapes for the SafePulse backend API
// ABOUTME: Mirrors the backend's JSON field names

package client

import (
	"encoding/json"

	"github.com/markalston/safepulse-cli/internal/session"
)

// Credentials is the login request body.
type Credentials struct {
	BadgeNumber string `json:"badge_number"`
	Password    string `json:"password"`
}

// Registration is the officer registration request body.
type Registration struct {
	BadgeNumber     string `json:"badge_number"`
	Email           string `json:"email"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password2"`
	Role            string `json:"role,omitempty"`
	Rank            string `json:"rank,omitempty"`
	Station         string `json:"station,omitempty"`
	District        string `json:"district,omitempty"`
	PhoneNumber     string `json:"phone_number,omitempty"`
}

// AuthResponse is returned by login and registration.
type AuthResponse struct {
	Message string            `json:"message"`
	Officer session.Officer   `json:"officer"`
	Tokens  session.TokenPair `json:"tokens"`
}

// ProfileUpdate holds the editable profile fields. Empty fields are left
// unchanged by the backend.
type ProfileUpdate struct {
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	Email       string `json:"email,omitempty"`
	Station     string `json:"station,omitempty"`
	District    string `json:"district,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
}

// PasswordChange is the change-password request body.
type PasswordChange struct {
	OldPassword        string `json:"old_password"`
	NewPassword        string `json:"new_password"`
	NewPasswordConfirm string `json:"new_password2"`
}

// MessageResponse is the generic {"message": ...} acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// Page is one page of a paginated list.
type Page[T any] struct {
	Count    int    `json:"count"`
	Next     string `json:"next"`
	Previous string `json:"previous"`
	Results  []T    `json:"results"`
}

// UnmarshalJSON accepts both a paginated object and a bare list.
func (p *Page[T]) UnmarshalJSON(data []byte) error {
	var list []T
	if err := json.Unmarshal(data, &list); err == nil {
		*p = Page[T]{Count: len(list), Results: list}
		return nil
	}
	var out struct {
		Count    int    `json:"count"`
		Next     string `json:"next"`
		Previous string `json:"previous"`
		Results  []T    `json:"results"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return err
	}
	*p = Page[T]{Count: out.Count, Next: out.Next, Previous: out.Previous, Results: out.Results}
	return nil
}

// Crime is a crime report. List endpoints return a subset of the fields.
type Crime struct {
	ID             int         `json:"id,omitempty"`
	CaseNumber     string      `json:"case_number,omitempty"`
	ReportedBy     int         `json:"reported_by,omitempty"`
	ReportedByName string      `json:"reported_by_name,omitempty"`
	Title          string      `json:"title"`
	Category       string      `json:"category"`
	Severity       string      `json:"severity"`
	Status         string      `json:"status,omitempty"`
	Description    string      `json:"description,omitempty"`
	WeaponsUsed    string      `json:"weapons_used,omitempty"`
	ModusOperandi  string      `json:"modus_operandi,omitempty"`
	Location       string      `json:"location"`
	District       string      `json:"district"`
	Latitude       json.Number `json:"latitude,omitempty"`
	Longitude      json.Number `json:"longitude,omitempty"`
	DateOccurred   string      `json:"date_occurred"`
	DateReported   string      `json:"date_reported,omitempty"`
	DateUpdated    string      `json:"date_updated,omitempty"`
	VictimCount    int         `json:"victim_count,omitempty"`
	VictimDetails  string      `json:"victim_details,omitempty"`
	EvidenceNotes  string      `json:"evidence_notes,omitempty"`
	IsAnalyzed     bool        `json:"is_analyzed,omitempty"`
	Suspects       []Suspect   `json:"suspects,omitempty"`
	Witnesses      []Witness   `json:"witnesses,omitempty"`
}

// CrimeFilter narrows a crime listing.
type CrimeFilter struct {
	Search   string `json:"search,omitempty"`
	Category string `json:"category,omitempty"`
	Severity string `json:"severity,omitempty"`
	Status   string `json:"status,omitempty"`
	District string `json:"district,omitempty"`
	Ordering string `json:"ordering,omitempty"`
	DateFrom string `json:"date_from,omitempty"`
	DateTo   string `json:"date_to,omitempty"`
	Page     int    `json:"-"`
}

// Suspect is a suspect attached to a crime report.
type Suspect struct {
	ID            int    `json:"id,omitempty"`
	Name          string `json:"name,omitempty"`
	Alias         string `json:"alias,omitempty"`
	AgeEstimate   int    `json:"age_estimate,omitempty"`
	Gender        string `json:"gender,omitempty"`
	Nationality   string `json:"nationality,omitempty"`
	Description   string `json:"description,omitempty"`
	KnownToVictim bool   `json:"known_to_victim,omitempty"`
	IsArrested    bool   `json:"is_arrested,omitempty"`
	CreatedAt     string `json:"created_at,omitempty"`
}

// Witness is a witness attached to a crime report.
type Witness struct {
	ID          int    `json:"id,omitempty"`
	Name        string `json:"name"`
	Contact     string `json:"contact,omitempty"`
	Statement   string `json:"statement,omitempty"`
	IsAnonymous bool   `json:"is_anonymous,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
}

// UploadSummary counts the rows of a bulk upload.
type UploadSummary struct {
	TotalRows int `json:"total_rows"`
	Created   int `json:"created"`
	Skipped   int `json:"skipped"`
	Errors    int `json:"errors"`
}

// UploadedCase is a crime created from one row of a bulk upload.
type UploadedCase struct {
	Row        int    `json:"row"`
	CaseNumber string `json:"case_number"`
	Title      string `json:"title"`
	Category   string `json:"category"`
	Severity   string `json:"severity"`
	District   string `json:"district"`
}

// UploadResult is the bulk upload response.
type UploadResult struct {
	Message      string            `json:"message"`
	Summary      UploadSummary     `json:"summary"`
	CreatedCases []UploadedCase    `json:"created_cases"`
	SkippedRows  []json.RawMessage `json:"skipped_rows"`
	ErrorRows    []json.RawMessage `json:"error_rows"`
}

// AnalysisResult is a stored AI analysis.
type AnalysisResult struct {
	ID              int             `json:"id"`
	RequestedByName string          `json:"requested_by_name,omitempty"`
	CaseNumber      string          `json:"case_number,omitempty"`
	Prompt          string          `json:"prompt,omitempty"`
	Summary         string          `json:"ai_summary,omitempty"`
	PatternsFound   json.RawMessage `json:"patterns_found,omitempty"`
	Hotspots        json.RawMessage `json:"hotspots,omitempty"`
	Trends          json.RawMessage `json:"trends,omitempty"`
	Recommendations json.RawMessage `json:"recommendations,omitempty"`
	RiskAssessment  string          `json:"risk_assessment,omitempty"`
	Status          string          `json:"status,omitempty"`
	ErrorMessage    string          `json:"error_message,omitempty"`
	CreatedAt       string          `json:"created_at,omitempty"`
	CompletedAt     string          `json:"completed_at,omitempty"`
}

// ChatReply is the agent's answer to one chat message.
type ChatReply struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
	Response  string `json:"response"`
}

// ChatMessage is one message of a conversation.
type ChatMessage struct {
	ID        int    `json:"id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

// Conversation is a chat conversation with its history.
type Conversation struct {
	ID          int           `json:"id"`
	SessionID   string        `json:"session_id"`
	Title       string        `json:"title"`
	IsActive    bool          `json:"is_active"`
	OfficerName string        `json:"officer_name"`
	Messages    []ChatMessage `json:"messages"`
	CreatedAt   string        `json:"created_at"`
	UpdatedAt   string        `json:"updated_at"`
}

// ReportRecord is an entry of the generated report history.
type ReportRecord struct {
	ID              int             `json:"id"`
	Title           string          `json:"title"`
	ReportType      string          `json:"report_type"`
	ReportFormat    string          `json:"report_format"`
	File            string          `json:"file,omitempty"`
	Parameters      json.RawMessage `json:"parameters,omitempty"`
	GeneratedByName string          `json:"generated_by_name,omitempty"`
	CreatedAt       string          `json:"created_at"`
}
