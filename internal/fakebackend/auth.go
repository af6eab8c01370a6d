// ABOUTME: Authentication handlers for the fake backend
// ABOUTME: Login, registration, token refresh, logout and profile endpoints

package fakebackend

import (
	"net/http"
	"strings"

	"github.com/markalston/safepulse-cli/internal/client"
	"github.com/markalston/safepulse-cli/internal/session"
)

func (s *Server) authResponse(w http.ResponseWriter, code int, message string, o session.Officer) {
	access, refresh, err := s.tokens.issuePair(o.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to issue tokens.")
		return
	}
	writeJSON(w, code, client.AuthResponse{
		Message: message,
		Officer: o,
		Tokens:  session.TokenPair{Access: access, Refresh: refresh},
	})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var in client.Registration
	if !decodeJSON(w, r, &in) {
		return
	}
	required := []struct{ field, value string }{
		{"badge_number", in.BadgeNumber},
		{"email", in.Email},
		{"first_name", in.FirstName},
		{"last_name", in.LastName},
		{"password", in.Password},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			writeFieldErrors(w, f.field, "This field is required.")
			return
		}
	}
	if len(in.Password) < 8 {
		writeFieldErrors(w, "password", "This password is too short. It must contain at least 8 characters.")
		return
	}
	if in.Password != in.PasswordConfirm {
		writeFieldErrors(w, "password", "Passwords do not match.")
		return
	}

	o, err := s.data.addOfficer(session.Officer{
		BadgeNumber: in.BadgeNumber,
		Email:       in.Email,
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		Role:        in.Role,
		Rank:        in.Rank,
		Station:     in.Station,
		District:    in.District,
		PhoneNumber: in.PhoneNumber,
	}, in.Password)
	if err != nil {
		writeFieldErrors(w, "badge_number", err.Error())
		return
	}
	s.logger.Info("New officer registered", "badge_number", o.BadgeNumber)
	s.authResponse(w, http.StatusCreated, "Officer registered successfully.", o)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var in client.Credentials
	if !decodeJSON(w, r, &in) {
		return
	}
	o, ok := s.data.authenticate(in.BadgeNumber, in.Password)
	if !ok {
		s.logger.Warn("Login failed", "badge_number", in.BadgeNumber)
		writeFieldErrors(w, "", "Invalid badge number or password.")
		return
	}
	s.logger.Info("Officer logged in", "badge_number", o.BadgeNumber)
	s.authResponse(w, http.StatusOK, "Login successful.", o.Officer)
}

// refresh exchanges a refresh token for a new access token. The refresh
// token is not rotated.
func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {
	s.refreshCalls.Add(1)

	var in struct {
		Refresh string `json:"refresh"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}
	if in.Refresh == "" {
		writeFieldErrors(w, "refresh", "This field is required.")
		return
	}
	c, err := s.tokens.verifyRefresh(in.Refresh)
	if err != nil {
		s.logger.Debug("Refresh token rejected", "error", err)
		writeDetail(w, http.StatusUnauthorized, "Token is invalid or expired", "token_not_valid")
		return
	}
	access, err := s.tokens.issueAccess(c.OfficerID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to issue tokens.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"access": access})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Refresh string `json:"refresh"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}
	if in.Refresh == "" {
		writeError(w, http.StatusBadRequest, "Refresh token is required.")
		return
	}
	c, err := s.tokens.verifyRefresh(in.Refresh)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid or expired token.")
		return
	}
	s.tokens.revoke(c)
	s.logger.Info("Officer logged out", "badge_number", currentOfficer(r).BadgeNumber)
	writeJSON(w, http.StatusOK, client.MessageResponse{Message: "Logged out successfully."})
}

func (s *Server) profile(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, currentOfficer(r).Officer)
}

func (s *Server) updateProfile(w http.ResponseWriter, r *http.Request) {
	var in client.ProfileUpdate
	if !decodeJSON(w, r, &in) {
		return
	}
	if in.Email != "" && !strings.Contains(in.Email, "@") {
		writeFieldErrors(w, "email", "Enter a valid email address.")
		return
	}
	o, ok := s.data.updateOfficer(currentOfficer(r).ID, func(o *officerRecord) {
		set := func(dst *string, v string) {
			if v != "" {
				*dst = v
			}
		}
		set(&o.FirstName, in.FirstName)
		set(&o.LastName, in.LastName)
		set(&o.Email, in.Email)
		set(&o.Station, in.Station)
		set(&o.District, in.District)
		set(&o.PhoneNumber, in.PhoneNumber)
	})
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "User not found", "user_not_found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Profile updated successfully.",
		"officer": o,
	})
}

func (s *Server) changePassword(w http.ResponseWriter, r *http.Request) {
	var in client.PasswordChange
	if !decodeJSON(w, r, &in) {
		return
	}
	me := currentOfficer(r)
	if in.NewPassword != in.NewPasswordConfirm {
		writeFieldErrors(w, "new_password", "New passwords do not match.")
		return
	}
	if len(in.NewPassword) < 8 {
		writeFieldErrors(w, "new_password", "This password is too short. It must contain at least 8 characters.")
		return
	}
	if in.OldPassword != me.password {
		writeFieldErrors(w, "old_password", "Old password is incorrect.")
		return
	}
	s.data.updateOfficer(me.ID, func(o *officerRecord) { o.password = in.NewPassword })
	s.logger.Info("Password changed", "badge_number", me.BadgeNumber)
	writeJSON(w, http.StatusOK, client.MessageResponse{Message: "Password changed successfully."})
}

func (s *Server) officers(w http.ResponseWriter, r *http.Request) {
	list := s.data.officerList()
	writeJSON(w, http.StatusOK, map[string]any{"count": len(list), "results": list})
}
