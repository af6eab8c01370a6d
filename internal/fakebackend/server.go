// ABOUTME: In-memory SafePulse backend for tests and local development
// ABOUTME: chi router with JWT auth, crimes, dashboard, analysis and reports

package fakebackend

import (
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/markalston/safepulse-cli/internal/client"
	"github.com/markalston/safepulse-cli/internal/session"
)

// Default officer seeded into every server.
const (
	DefaultBadge    = "UPF-001"
	DefaultPassword = "SecurePass123"
)

// Options configures a Server. Zero values select the defaults.
type Options struct {
	// AccessTTL is the access token lifetime (default 5 minutes).
	AccessTTL time.Duration
	// RefreshTTL is the refresh token lifetime (default 24 hours).
	RefreshTTL time.Duration
	// Secret signs the tokens (default a fixed development key).
	Secret []byte
	// SampleData seeds a set of crime reports.
	SampleData bool
	Logger     *slog.Logger
}

// Server is a fake SafePulse backend. It implements http.Handler.
type Server struct {
	router chi.Router
	tokens *tokenIssuer
	data   *dataset
	logger *slog.Logger

	refreshCalls atomic.Int64
	now          func() time.Time
}

// Route defines an API endpoint with its HTTP method and handler.
type Route struct {
	Method  string
	Path    string
	Handler http.HandlerFunc
	Public  bool
}

// New creates a server holding the default officer.
func New(opts Options) *Server {
	if opts.AccessTTL <= 0 {
		opts.AccessTTL = 5 * time.Minute
	}
	if opts.RefreshTTL <= 0 {
		opts.RefreshTTL = 24 * time.Hour
	}
	if len(opts.Secret) == 0 {
		opts.Secret = []byte("safepulse-development-signing-key")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	s := &Server{
		tokens: newTokenIssuer(opts.Secret, opts.AccessTTL, opts.RefreshTTL),
		logger: opts.Logger,
		now:    time.Now,
	}
	s.data = newDataset(func() time.Time { return s.now() })

	if _, err := s.data.addOfficer(session.Officer{
		BadgeNumber: DefaultBadge,
		Email:       "officer@police.go.ug",
		FirstName:   "Grace",
		LastName:    "Namutebi",
		Role:        "admin",
		Rank:        "Inspector",
		Station:     "Central Police Station",
		District:    "Kampala",
	}, DefaultPassword); err != nil {
		panic(err)
	}
	if opts.SampleData {
		s.seedCrimes()
	}

	r := chi.NewRouter()
	for _, route := range s.Routes() {
		h := route.Handler
		if !route.Public {
			h = chain(h, s.requireAuth)
		}
		r.Method(route.Method, route.Path, chain(h, s.logRequest))
	}
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusNotFound, "Not found.", "")
	})
	s.router = r
	return s
}

// ServeHTTP dispatches to the router.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close stops background cleanup.
func (s *Server) Close() {
	s.tokens.revoked.Close()
}

// ExpireAccessTokens invalidates every access token issued so far. Refresh
// tokens stay valid.
func (s *Server) ExpireAccessTokens() {
	s.tokens.expireAccess()
}

// RefreshCalls reports how many times the refresh endpoint was called.
func (s *Server) RefreshCalls() int {
	return int(s.refreshCalls.Load())
}

// AddOfficer registers an officer with password.
func (s *Server) AddOfficer(o session.Officer, password string) (session.Officer, error) {
	return s.data.addOfficer(o, password)
}

// AddCrime files a crime as the default officer.
func (s *Server) AddCrime(c client.Crime) client.Crime {
	o, _ := s.data.officer(1)
	return s.data.addCrime(c, o.Officer)
}

// Routes returns all API routes for registration.
func (s *Server) Routes() []Route {
	return []Route{
		// Authentication
		{Method: http.MethodPost, Path: "/api/auth/register/", Handler: s.register, Public: true},
		{Method: http.MethodPost, Path: "/api/auth/login/", Handler: s.login, Public: true},
		{Method: http.MethodPost, Path: client.RefreshPath, Handler: s.refresh, Public: true},
		{Method: http.MethodPost, Path: "/api/auth/logout/", Handler: s.logout},
		{Method: http.MethodGet, Path: "/api/auth/profile/", Handler: s.profile},
		{Method: http.MethodPut, Path: "/api/auth/profile/", Handler: s.updateProfile},
		{Method: http.MethodPost, Path: "/api/auth/change-password/", Handler: s.changePassword},
		{Method: http.MethodGet, Path: "/api/auth/officers/", Handler: s.officers},

		// Crimes
		{Method: http.MethodGet, Path: "/api/crimes/", Handler: s.listCrimes},
		{Method: http.MethodPost, Path: "/api/crimes/", Handler: s.createCrime},
		{Method: http.MethodGet, Path: "/api/crimes/my-reports/", Handler: s.myReports},
		{Method: http.MethodGet, Path: "/api/crimes/stats/", Handler: s.crimeStats},
		{Method: http.MethodPost, Path: "/api/crimes/upload/", Handler: s.uploadCrimes},
		{Method: http.MethodGet, Path: "/api/crimes/upload/template/", Handler: s.uploadTemplate},
		{Method: http.MethodGet, Path: "/api/crimes/{id}/", Handler: s.getCrime},
		{Method: http.MethodPut, Path: "/api/crimes/{id}/", Handler: s.updateCrime},
		{Method: http.MethodDelete, Path: "/api/crimes/{id}/", Handler: s.deleteCrime},
		{Method: http.MethodPost, Path: "/api/crimes/{id}/suspects/", Handler: s.addSuspect},
		{Method: http.MethodDelete, Path: "/api/crimes/{id}/suspects/{sid}/", Handler: s.removeSuspect},
		{Method: http.MethodPost, Path: "/api/crimes/{id}/witnesses/", Handler: s.addWitness},
		{Method: http.MethodDelete, Path: "/api/crimes/{id}/witnesses/{wid}/", Handler: s.removeWitness},

		// Dashboard
		{Method: http.MethodGet, Path: "/api/dashboard/overview/", Handler: s.overview},
		{Method: http.MethodGet, Path: "/api/dashboard/crimes-by-category/", Handler: s.crimesByCategory},
		{Method: http.MethodGet, Path: "/api/dashboard/crimes-by-severity/", Handler: s.crimesBySeverity},
		{Method: http.MethodGet, Path: "/api/dashboard/hotspots/", Handler: s.hotspots},
		{Method: http.MethodGet, Path: "/api/dashboard/trends/monthly/", Handler: s.monthlyTrends},
		{Method: http.MethodGet, Path: "/api/dashboard/trends/daily/", Handler: s.dailyTrends},
		{Method: http.MethodGet, Path: "/api/dashboard/recent-crimes/", Handler: s.recentCrimes},
		{Method: http.MethodGet, Path: "/api/dashboard/alerts/", Handler: s.alerts},
		{Method: http.MethodGet, Path: "/api/dashboard/my-stats/", Handler: s.myStats},
		{Method: http.MethodGet, Path: "/api/dashboard/category-district/", Handler: s.categoryDistrict},

		// Analysis
		{Method: http.MethodPost, Path: "/api/analysis/analyze-report/", Handler: s.analyzeReport},
		{Method: http.MethodPost, Path: "/api/analysis/general/", Handler: s.analyzeGeneral},
		{Method: http.MethodPost, Path: "/api/analysis/chat/", Handler: s.chat},
		{Method: http.MethodGet, Path: "/api/analysis/chat/{session}/", Handler: s.chatHistory},
		{Method: http.MethodGet, Path: "/api/analysis/results/", Handler: s.analysisResults},
		{Method: http.MethodGet, Path: "/api/analysis/results/{id}/", Handler: s.analysisResult},

		// Reports
		{Method: http.MethodPost, Path: "/api/reports/crime-list/pdf/", Handler: s.crimeListPDF},
		{Method: http.MethodPost, Path: "/api/reports/crime-list/excel/", Handler: s.crimeListExcel},
		{Method: http.MethodGet, Path: "/api/reports/crime/{case}/pdf/", Handler: s.casePDF},
		{Method: http.MethodGet, Path: "/api/reports/analysis/{id}/pdf/", Handler: s.analysisPDF},
		{Method: http.MethodGet, Path: "/api/reports/history/", Handler: s.reportHistory},
	}
}
