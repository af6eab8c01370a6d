// ABOUTME: Tests for the SafePulse API client pipeline and feature calls
// ABOUTME: Uses httptest to mock backend responses

package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/markalston/safepulse-cli/internal/session"
)

// newTestStore returns a store holding a session for officer B-100 with the
// given tokens. Empty tokens leave the store logged out.
func newTestStore(t *testing.T, access, refresh string) *session.Store {
	t.Helper()
	store := session.NewStore(session.NewMemoryStorage())
	if access == "" && refresh == "" {
		return store
	}
	officer := session.Officer{ID: 7, BadgeNumber: "B-100", FullName: "Ada Okafor"}
	if err := store.SetAuth(officer, session.TokenPair{Access: access, Refresh: refresh}); err != nil {
		t.Fatalf("SetAuth: %v", err)
	}
	return store
}

func TestDo_AttachesBearerToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer A1" {
			t.Errorf("expected Authorization 'Bearer A1', got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"count":0,"results":[]}`))
	}))
	defer server.Close()

	c := New(server.URL, newTestStore(t, "A1", "R1"))
	if _, err := c.ListCrimes(context.Background(), CrimeFilter{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDo_NoTokenSendsNoAuthorization(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "" {
			t.Errorf("expected no Authorization header, got %q", got)
		}
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	c := New(server.URL, newTestStore(t, "", ""))
	if _, err := c.ListCrimes(context.Background(), CrimeFilter{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDo_DefaultHeaders(t *testing.T) {
	var ids []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("expected JSON content type, got %q", got)
		}
		if got := r.Header.Get("Accept"); got != "application/json" {
			t.Errorf("expected JSON accept, got %q", got)
		}
		ids = append(ids, r.Header.Get(RequestIDHeader))
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c := New(server.URL, newTestStore(t, "", ""))
	for i := 0; i < 2; i++ {
		if _, err := c.Overview(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if len(ids) != 2 || ids[0] == "" || ids[0] == ids[1] {
		t.Errorf("expected two distinct request IDs, got %v", ids)
	}
}

func TestDo_CallerHeadersWin(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get(RequestIDHeader); got != "fixed-id" {
			t.Errorf("expected caller request ID, got %q", got)
		}
		if got := r.Header.Get("Content-Type"); got != "text/csv" {
			t.Errorf("expected caller content type, got %q", got)
		}
	}))
	defer server.Close()

	c := New(server.URL, newTestStore(t, "", ""))
	req := &Request{
		Method: http.MethodPost,
		Path:   "/api/anything/",
		Header: http.Header{RequestIDHeader: {"fixed-id"}, "Content-Type": {"text/csv"}},
		Body:   []byte("a,b"),
	}
	if _, err := c.Do(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Retried || len(req.Header) != 2 {
		t.Error("Do must not mutate the caller's request")
	}
}

func TestDo_CallerAuthorizationKept(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer caller" {
			t.Errorf("expected caller Authorization, got %q", got)
		}
	}))
	defer server.Close()

	c := New(server.URL, newTestStore(t, "A1", "R1"))
	req := &Request{
		Method: http.MethodGet,
		Path:   "/api/anything/",
		Header: http.Header{"Authorization": {"Bearer caller"}},
	}
	if _, err := c.Do(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDo_StagesRunInOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-Trace"); got != "one,two" {
			t.Errorf("expected stages in order, got %q", got)
		}
		w.WriteHeader(http.StatusTeapot)
	}))
	defer server.Close()

	var seen int
	c := New(server.URL, newTestStore(t, "", ""),
		WithRequestStage(func(_ context.Context, req *Request) *Request {
			req.Header.Set("X-Trace", "one")
			return req
		}),
		WithRequestStage(func(_ context.Context, req *Request) *Request {
			req.Header.Set("X-Trace", req.Header.Get("X-Trace")+",two")
			return req
		}),
		WithResponseStage(func(_ context.Context, _ *Request, resp *Response, err error) (*Response, error) {
			seen = resp.StatusCode
			resp.StatusCode = http.StatusOK
			return resp, err
		}),
	)
	if _, err := c.Do(context.Background(), &Request{Method: http.MethodGet, Path: "/x/"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seen != http.StatusTeapot {
		t.Errorf("expected response stage to see 418, got %d", seen)
	}
}

func TestDo_ErrorsPassThroughVerbatim(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"validation", http.StatusBadRequest, `{"title":["This field is required."]}`, "title: This field is required."},
		{"forbidden", http.StatusForbidden, `{"detail":"You do not have permission."}`, "You do not have permission."},
		{"not found", http.StatusNotFound, `{"error":"Crime not found"}`, "Crime not found"},
		{"server", http.StatusInternalServerError, `<html>oops</html>`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			store := newTestStore(t, "A1", "R1")
			c := New(server.URL, store)
			_, err := c.GetCrime(context.Background(), 3)

			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *APIError, got %T: %v", err, err)
			}
			if apiErr.StatusCode != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, apiErr.StatusCode)
			}
			if apiErr.Message != tt.message {
				t.Errorf("expected message %q, got %q", tt.message, apiErr.Message)
			}
			if string(apiErr.Body) != tt.body {
				t.Errorf("expected raw body kept, got %q", apiErr.Body)
			}
			if calls != 1 {
				t.Errorf("expected exactly one call, got %d", calls)
			}
			if store.AccessToken() != "A1" {
				t.Error("non-401 errors must not touch the session")
			}
		})
	}
}

func TestDo_ConnectionError(t *testing.T) {
	c := New("http://127.0.0.1:1", newTestStore(t, "A1", "R1"), WithTimeout(2*time.Second))
	_, err := c.Overview(context.Background())
	if err == nil {
		t.Fatal("expected connection error, got nil")
	}
	if !strings.Contains(err.Error(), "cannot connect") {
		t.Errorf("expected connection error, got %v", err)
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		t.Error("transport errors must not become APIError")
	}
}

func TestDo_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c := New(server.URL, newTestStore(t, "A1", "R1"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Overview(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestNew_DefaultsAndTrailingSlash(t *testing.T) {
	if got := New("", nil).BaseURL(); got != DefaultBaseURL {
		t.Errorf("expected default base URL, got %s", got)
	}
	if got := New("http://api.example.com/", nil).BaseURL(); got != "http://api.example.com" {
		t.Errorf("expected trailing slash trimmed, got %s", got)
	}
}

func TestLogin_StoresSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/login/" || r.Method != http.MethodPost {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		var creds Credentials
		json.NewDecoder(r.Body).Decode(&creds)
		if creds.BadgeNumber != "B-100" || creds.Password != "secret" {
			t.Errorf("unexpected credentials %+v", creds)
		}
		w.Write([]byte(`{"message":"Login successful.","officer":{"id":7,"badge_number":"B-100","full_name":"Ada Okafor"},"tokens":{"access":"A1","refresh":"R1"}}`))
	}))
	defer server.Close()

	store := newTestStore(t, "", "")
	c := New(server.URL, store)
	resp, err := c.Login(context.Background(), Credentials{BadgeNumber: "B-100", Password: "secret"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Officer.FullName != "Ada Okafor" {
		t.Errorf("expected officer name, got %q", resp.Officer.FullName)
	}
	s := store.Session()
	if !s.IsAuthenticated || s.AccessToken != "A1" || s.RefreshToken != "R1" {
		t.Errorf("expected stored session, got %+v", s)
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"non_field_errors":["Invalid badge number or password."]}`))
	}))
	defer server.Close()

	store := newTestStore(t, "", "")
	c := New(server.URL, store)
	_, err := c.Login(context.Background(), Credentials{BadgeNumber: "B-100", Password: "bad"})
	if !IsStatus(err, http.StatusBadRequest) {
		t.Fatalf("expected 400, got %v", err)
	}
	if !strings.Contains(err.Error(), "Invalid badge number or password.") {
		t.Errorf("expected backend message, got %v", err)
	}
	if store.Session().IsAuthenticated {
		t.Error("failed login must not authenticate")
	}
}

func TestLogout_ClearsSessionEvenWhenBackendFails(t *testing.T) {
	var body refreshRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&body)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	store := newTestStore(t, "A1", "R1")
	c := New(server.URL, store)
	err := c.Logout(context.Background())
	if err == nil {
		t.Error("expected backend failure to be reported")
	}
	if body.Refresh != "R1" {
		t.Errorf("expected refresh token posted, got %q", body.Refresh)
	}
	if store.Session().IsAuthenticated || store.AccessToken() != "" {
		t.Error("expected local session cleared")
	}
}

func TestLogout_WithoutSessionSkipsBackend(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("backend must not be called without a refresh token")
	}))
	defer server.Close()

	c := New(server.URL, newTestStore(t, "", ""))
	if err := c.Logout(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestUpdateProfile_UpdatesStoredOfficer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("expected PUT, got %s", r.Method)
		}
		w.Write([]byte(`{"message":"Profile updated.","officer":{"id":7,"badge_number":"B-100","full_name":"Ada Okafor","station":"Central"}}`))
	}))
	defer server.Close()

	store := newTestStore(t, "A1", "R1")
	c := New(server.URL, store)
	officer, err := c.UpdateProfile(context.Background(), ProfileUpdate{Station: "Central"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if officer.Station != "Central" {
		t.Errorf("expected station Central, got %q", officer.Station)
	}
	s := store.Session()
	if s.Officer.Station != "Central" || s.AccessToken != "A1" {
		t.Errorf("expected officer updated in place, got %+v", s)
	}
}

func TestListCrimes_FilterQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("severity") != "high" || q.Get("district") != "Kano" || q.Get("page") != "2" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		if q.Has("status") {
			t.Error("empty filters must be omitted")
		}
		w.Write([]byte(`{"count":31,"next":null,"previous":"p1","results":[{"id":1,"case_number":"SP-1","title":"Burglary","category":"burglary","severity":"high","location":"x","district":"Kano","date_occurred":"2026-01-01","latitude":"12.5"}]}`))
	}))
	defer server.Close()

	c := New(server.URL, newTestStore(t, "A1", "R1"))
	page, err := c.ListCrimes(context.Background(), CrimeFilter{Severity: "high", District: "Kano", Page: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Count != 31 || len(page.Results) != 1 || page.Results[0].CaseNumber != "SP-1" {
		t.Errorf("unexpected page %+v", page)
	}
}

func TestPage_AcceptsBareList(t *testing.T) {
	var p Page[Crime]
	if err := json.Unmarshal([]byte(`[{"id":1},{"id":2}]`), &p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Count != 2 || len(p.Results) != 2 {
		t.Errorf("unexpected page %+v", p)
	}
}

func TestUploadCrimes_Multipart(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer A1" {
			t.Error("expected bearer token on upload")
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("expected multipart file: %v", err)
		}
		data, _ := io.ReadAll(file)
		if header.Filename != "crimes.csv" || string(data) != "title\nTheft\n" {
			t.Errorf("unexpected upload %s %q", header.Filename, data)
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"message":"done","summary":{"total_rows":1,"created":1,"skipped":0,"errors":0},"created_cases":[{"row":2,"case_number":"SP-9"}]}`))
	}))
	defer server.Close()

	c := New(server.URL, newTestStore(t, "A1", "R1"))
	res, err := c.UploadCrimes(context.Background(), "crimes.csv", strings.NewReader("title\nTheft\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Summary.Created != 1 || res.CreatedCases[0].CaseNumber != "SP-9" {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestDownload_UsesContentDisposition(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") != "*/*" {
			t.Errorf("expected binary accept, got %q", r.Header.Get("Accept"))
		}
		var f ReportFilter
		json.NewDecoder(r.Body).Decode(&f)
		if f.Category != "theft" {
			t.Errorf("expected filter in body, got %+v", f)
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="SafePulse_Crimes_20261019.pdf"`)
		w.Write([]byte("%PDF-1.4"))
	}))
	defer server.Close()

	c := New(server.URL, newTestStore(t, "A1", "R1"))
	dl, err := c.CrimeListPDF(context.Background(), ReportFilter{Category: "theft"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dl.Filename != "SafePulse_Crimes_20261019.pdf" || dl.ContentType != "application/pdf" || string(dl.Data) != "%PDF-1.4" {
		t.Errorf("unexpected download %+v", dl)
	}
}

func TestDownload_FallbackName(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("title,category\n"))
	}))
	defer server.Close()

	c := New(server.URL, newTestStore(t, "A1", "R1"))
	dl, err := c.UploadTemplate(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dl.Filename != "crime_upload_template.csv" {
		t.Errorf("expected fallback filename, got %q", dl.Filename)
	}
}

func TestDashboardBreakdowns(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/dashboard/crimes-by-severity/":
			if r.URL.Query().Get("period") != PeriodMonth {
				t.Errorf("expected period month, got %s", r.URL.RawQuery)
			}
			w.Write([]byte(`{"period":"month","data":[{"severity":"High","value":"high","count":4,"color":"#dc2626"}]}`))
		case "/api/dashboard/hotspots/":
			if r.URL.Query().Get("limit") != "5" {
				t.Errorf("expected limit 5, got %s", r.URL.RawQuery)
			}
			w.Write([]byte(`{"period":"all","data":[{"district":"Ikeja","total":9,"high_severity":5,"unsolved":3,"risk_level":"critical"}]}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	c := New(server.URL, newTestStore(t, "A1", "R1"))
	sev, err := c.CrimesBySeverity(context.Background(), PeriodMonth)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sev) != 1 || sev[0].Label != "High" || sev[0].Count != 4 {
		t.Errorf("unexpected severity buckets %+v", sev)
	}
	hot, err := c.Hotspots(context.Background(), PeriodAll, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hot) != 1 || hot[0].RiskLevel != "critical" {
		t.Errorf("unexpected hotspots %+v", hot)
	}
}

func TestChat_SessionID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var in map[string]string
		json.NewDecoder(r.Body).Decode(&in)
		if _, ok := in["session_id"]; ok {
			t.Error("new conversations must not send a session_id")
		}
		w.Write([]byte(`{"session_id":"s-1","message":"hi","response":"hello officer"}`))
	}))
	defer server.Close()

	c := New(server.URL, newTestStore(t, "A1", "R1"))
	reply, err := c.Chat(context.Background(), "hi", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply.SessionID != "s-1" || reply.Response != "hello officer" {
		t.Errorf("unexpected reply %+v", reply)
	}
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{`{"error":"Crime not found"}`, "Crime not found"},
		{`{"error":"AI failed","details":"timeout"}`, "AI failed: timeout"},
		{`{"detail":"Given token not valid for any token type"}`, "Given token not valid for any token type"},
		{`{"message":"Nothing to do"}`, "Nothing to do"},
		{`{"non_field_errors":["Invalid badge number or password."]}`, "Invalid badge number or password."},
		{`{"password":["Passwords do not match."]}`, "password: Passwords do not match."},
		{`["Something broke"]`, "Something broke"},
		{`"plain"`, "plain"},
		{``, ""},
		{`not json`, ""},
	}
	for _, tt := range tests {
		if got := errorMessage([]byte(tt.body)); got != tt.want {
			t.Errorf("errorMessage(%s) = %q, want %q", tt.body, got, tt.want)
		}
	}
}
