// ABOUTME: Client-side session store holding the logged-in officer and token pair
// ABOUTME: Mirrors every change into durable storage so reloads keep the session

package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Durable storage keys. The token keys are read by the request pipeline;
// BlobKey holds the full serialized session.
const (
	AccessTokenKey  = "access_token"
	RefreshTokenKey = "refresh_token"
	BlobKey         = "safepulse-auth"
)

// ErrNotAuthenticated is returned by operations that need a logged-in officer.
var ErrNotAuthenticated = errors.New("not logged in")

// Officer is the officer record returned by the backend. It is passed
// through unchanged: fields the CLI does not know about survive a
// persist/rehydrate round trip.
type Officer struct {
	ID           int    `json:"id,omitempty"`
	BadgeNumber  string `json:"badge_number"`
	Email        string `json:"email,omitempty"`
	FirstName    string `json:"first_name,omitempty"`
	LastName     string `json:"last_name,omitempty"`
	FullName     string `json:"full_name,omitempty"`
	Role         string `json:"role,omitempty"`
	Rank         string `json:"rank,omitempty"`
	Station      string `json:"station,omitempty"`
	District     string `json:"district,omitempty"`
	PhoneNumber  string `json:"phone_number,omitempty"`
	ProfilePhoto string `json:"profile_photo,omitempty"`
	IsVerified   bool   `json:"is_verified,omitempty"`
	DateJoined   string `json:"date_joined,omitempty"`
	LastUpdated  string `json:"last_updated,omitempty"`

	raw json.RawMessage
}

// UnmarshalJSON decodes the known fields and keeps the original bytes.
func (o *Officer) UnmarshalJSON(data []byte) error {
	type plain Officer
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*o = Officer(p)
	o.raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON returns the bytes the officer was decoded from, if any.
func (o Officer) MarshalJSON() ([]byte, error) {
	if len(o.raw) > 0 {
		return o.raw, nil
	}
	type plain Officer
	return json.Marshal(plain(o))
}

// DisplayName returns the full name, falling back to first/last name and
// finally the badge number.
func (o Officer) DisplayName() string {
	if o.FullName != "" {
		return o.FullName
	}
	name := o.FirstName
	if o.LastName != "" {
		if name != "" {
			name += " "
		}
		name += o.LastName
	}
	if name == "" {
		return o.BadgeNumber
	}
	return name
}

// TokenPair is the bearer token pair issued on login or registration.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Session is the client-side view of who is logged in.
type Session struct {
	Officer         *Officer `json:"officer"`
	AccessToken     string   `json:"accessToken"`
	RefreshToken    string   `json:"refreshToken"`
	IsAuthenticated bool     `json:"isAuthenticated"`
}

// valid reports whether IsAuthenticated agrees with the other fields.
func (s Session) valid() bool {
	complete := s.Officer != nil && s.AccessToken != "" && s.RefreshToken != ""
	return s.IsAuthenticated == complete
}

// persisted is the blob written under BlobKey.
type persisted struct {
	State   Session `json:"state"`
	Version int     `json:"version"`
}

// Store is the single source of truth for the current session.
// It is safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	storage Storage
	current Session
}

// NewStore creates an empty store backed by storage. Call Init to
// rehydrate a previously saved session.
func NewStore(storage Storage) *Store {
	return &Store{storage: storage}
}

// Init loads the persisted session. A missing or unreadable blob yields an
// empty session and removes any stray token entries; token entries that
// disagree with the blob are rewritten from it.
func (s *Store) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = Session{}

	blob, ok, err := s.storage.Get(BlobKey)
	if err != nil {
		return fmt.Errorf("read session: %w", err)
	}
	if !ok {
		return s.removeStray(AccessTokenKey, RefreshTokenKey)
	}

	var p persisted
	if err := json.Unmarshal([]byte(blob), &p); err != nil {
		slog.Warn("Discarding unreadable session", "error", err)
		return s.storage.Commit(nil, BlobKey, AccessTokenKey, RefreshTokenKey)
	}
	if !p.State.valid() || !p.State.IsAuthenticated {
		return s.storage.Commit(nil, BlobKey, AccessTokenKey, RefreshTokenKey)
	}

	access, _, err := s.storage.Get(AccessTokenKey)
	if err != nil {
		return fmt.Errorf("read access token: %w", err)
	}
	refresh, _, err := s.storage.Get(RefreshTokenKey)
	if err != nil {
		return fmt.Errorf("read refresh token: %w", err)
	}
	if access != p.State.AccessToken || refresh != p.State.RefreshToken {
		slog.Debug("Token entries out of sync with session, rewriting")
		if err := s.persist(p.State); err != nil {
			return err
		}
	}

	s.current = p.State
	slog.Debug("Session restored", "badge_number", p.State.Officer.BadgeNumber)
	return nil
}

// Session returns a copy of the current session.
func (s *Store) Session() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := s.current
	if out.Officer != nil {
		officer := *out.Officer
		out.Officer = &officer
	}
	return out
}

// AccessToken returns the current access token, or "" when logged out.
func (s *Store) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.AccessToken
}

// RefreshToken returns the current refresh token, or "" when logged out.
func (s *Store) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.RefreshToken
}

// SetAuth replaces the whole session with officer and tokens. Tokens are
// opaque and not validated; an empty token leaves the session
// unauthenticated.
func (s *Store) SetAuth(officer Officer, tokens TokenPair) error {
	next := Session{
		Officer:      &officer,
		AccessToken:  tokens.Access,
		RefreshToken: tokens.Refresh,
	}
	next.IsAuthenticated = tokens.Access != "" && tokens.Refresh != ""

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.persist(next); err != nil {
		return err
	}
	s.current = next
	return nil
}

// UpdateOfficer replaces the officer profile, leaving tokens untouched.
func (s *Store) UpdateOfficer(officer Officer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.current.IsAuthenticated {
		return ErrNotAuthenticated
	}
	next := s.current
	next.Officer = &officer
	if err := s.persist(next); err != nil {
		return err
	}
	s.current = next
	return nil
}

// SetAccessToken replaces the access token after a refresh. The refresh
// token is not rotated.
func (s *Store) SetAccessToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.current.IsAuthenticated {
		return ErrNotAuthenticated
	}
	next := s.current
	next.AccessToken = token
	next.IsAuthenticated = token != ""
	if !next.IsAuthenticated {
		return s.clear()
	}
	if err := s.persist(next); err != nil {
		return err
	}
	s.current = next
	return nil
}

// Logout clears the session and its durable entries. Calling it while
// logged out is a no-op with the same end state.
func (s *Store) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clear()
}

func (s *Store) clear() error {
	s.current = Session{}
	if err := s.storage.Commit(nil, BlobKey, AccessTokenKey, RefreshTokenKey); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// persist writes next to storage in a single commit. Callers hold s.mu.
func (s *Store) persist(next Session) error {
	blob, err := json.Marshal(persisted{State: next})
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	set := map[string]string{
		BlobKey:         string(blob),
		AccessTokenKey:  next.AccessToken,
		RefreshTokenKey: next.RefreshToken,
	}
	if err := s.storage.Commit(set); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// removeStray deletes keys that exist without a session blob.
func (s *Store) removeStray(keys ...string) error {
	var stray []string
	for _, k := range keys {
		_, ok, err := s.storage.Get(k)
		if err != nil {
			return fmt.Errorf("read %s: %w", k, err)
		}
		if ok {
			stray = append(stray, k)
		}
	}
	if len(stray) == 0 {
		return nil
	}
	return s.storage.Commit(nil, stray...)
}
