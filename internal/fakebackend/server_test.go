package fakebackend_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/markalston/safepulse-cli/internal/client"
	"github.com/markalston/safepulse-cli/internal/fakebackend"
	"github.com/markalston/safepulse-cli/internal/session"
)

type harness struct {
	backend *fakebackend.Server
	server  *httptest.Server
	store   *session.Store
	client  *client.Client
}

func newHarness(t *testing.T, opts fakebackend.Options) *harness {
	t.Helper()
	backend := fakebackend.New(opts)
	server := httptest.NewServer(backend)
	t.Cleanup(func() {
		server.Close()
		backend.Close()
	})

	store := session.NewStore(session.NewMemoryStorage())
	if err := store.Init(); err != nil {
		t.Fatalf("init store: %v", err)
	}
	return &harness{
		backend: backend,
		server:  server,
		store:   store,
		client:  client.New(server.URL, store),
	}
}

func (h *harness) login(t *testing.T) {
	t.Helper()
	_, err := h.client.Login(context.Background(), client.Credentials{
		BadgeNumber: fakebackend.DefaultBadge,
		Password:    fakebackend.DefaultPassword,
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
}

func TestLogin_StoresSessionAndProfileWorks(t *testing.T) {
	h := newHarness(t, fakebackend.Options{})
	h.login(t)

	sess := h.store.Session()
	if !sess.IsAuthenticated || sess.Officer.BadgeNumber != fakebackend.DefaultBadge {
		t.Fatalf("expected authenticated session for default officer, got %+v", sess)
	}

	officer, err := h.client.Profile(context.Background())
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if officer.FullName != "Grace Namutebi" {
		t.Errorf("expected full name Grace Namutebi, got %q", officer.FullName)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	h := newHarness(t, fakebackend.Options{})

	_, err := h.client.Login(context.Background(), client.Credentials{
		BadgeNumber: fakebackend.DefaultBadge,
		Password:    "wrong",
	})
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 APIError, got %v", err)
	}
	if apiErr.Message != "Invalid badge number or password." {
		t.Errorf("unexpected message %q", apiErr.Message)
	}
	if h.store.Session().IsAuthenticated {
		t.Error("failed login must not authenticate")
	}
}

func TestRegister_Validation(t *testing.T) {
	h := newHarness(t, fakebackend.Options{})
	reg := client.Registration{
		BadgeNumber:     "UPF-777",
		Email:           "new@police.go.ug",
		FirstName:       "Peter",
		LastName:        "Okello",
		Password:        "LongEnough1",
		PasswordConfirm: "Different1",
	}

	_, err := h.client.Register(context.Background(), reg)
	if !client.IsStatus(err, http.StatusBadRequest) || !strings.Contains(err.Error(), "password: Passwords do not match.") {
		t.Fatalf("expected password mismatch, got %v", err)
	}

	reg.PasswordConfirm = reg.Password
	out, err := h.client.Register(context.Background(), reg)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if out.Officer.Role != "officer" || h.store.Session().Officer.BadgeNumber != "UPF-777" {
		t.Errorf("unexpected registration result %+v", out.Officer)
	}

	_, err = h.client.Register(context.Background(), reg)
	if !client.IsStatus(err, http.StatusBadRequest) {
		t.Errorf("expected duplicate badge rejection, got %v", err)
	}
}

func TestExpiredAccessToken_RefreshedTransparently(t *testing.T) {
	h := newHarness(t, fakebackend.Options{})
	h.login(t)
	before := h.store.Session()

	h.backend.ExpireAccessTokens()

	if _, err := h.client.Profile(context.Background()); err != nil {
		t.Fatalf("expected transparent refresh, got %v", err)
	}
	if got := h.backend.RefreshCalls(); got != 1 {
		t.Errorf("expected 1 refresh call, got %d", got)
	}
	after := h.store.Session()
	if after.AccessToken == before.AccessToken {
		t.Error("expected a new access token")
	}
	if after.RefreshToken != before.RefreshToken {
		t.Error("refresh token must not be rotated")
	}
}

func TestExpiredAccessToken_ConcurrentCallsShareRefresh(t *testing.T) {
	h := newHarness(t, fakebackend.Options{SampleData: true})
	h.login(t)
	h.backend.ExpireAccessTokens()

	const callers = 8
	errs := make(chan error, callers)
	for range callers {
		go func() {
			_, err := h.client.Overview(context.Background())
			errs <- err
		}()
	}
	for range callers {
		if err := <-errs; err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	}
	if got := h.backend.RefreshCalls(); got < 1 || got > callers {
		t.Errorf("unexpected refresh call count %d", got)
	}
}

func TestLogout_RevokesRefreshToken(t *testing.T) {
	h := newHarness(t, fakebackend.Options{})
	h.login(t)
	stale := h.store.Session()

	if err := h.client.Logout(context.Background()); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if h.store.Session().IsAuthenticated {
		t.Fatal("expected session to be cleared")
	}

	// A second client still holding the revoked pair.
	store := session.NewStore(session.NewMemoryStorage())
	tokens := session.TokenPair{Access: stale.AccessToken, Refresh: stale.RefreshToken}
	if err := store.SetAuth(*stale.Officer, tokens); err != nil {
		t.Fatalf("set auth: %v", err)
	}
	var expired atomic.Int32
	c := client.New(h.server.URL, store, client.WithSessionExpiredHandler(func(error) { expired.Add(1) }))

	h.backend.ExpireAccessTokens()
	_, err := c.Profile(context.Background())

	var refreshErr *client.RefreshError
	if !errors.As(err, &refreshErr) {
		t.Fatalf("expected RefreshError, got %v", err)
	}
	if !client.IsStatus(err, http.StatusUnauthorized) {
		t.Errorf("expected the refresh rejection to be a 401, got %v", err)
	}
	if expired.Load() != 1 {
		t.Errorf("expected 1 session expired event, got %d", expired.Load())
	}
	if store.Session().IsAuthenticated {
		t.Error("expected the stale session to be cleared")
	}
}

func TestUnauthenticatedRequest_NoRefreshToken(t *testing.T) {
	h := newHarness(t, fakebackend.Options{})

	_, err := h.client.Profile(context.Background())
	if !errors.Is(err, client.ErrNoRefreshToken) {
		t.Fatalf("expected ErrNoRefreshToken, got %v", err)
	}
	if h.backend.RefreshCalls() != 0 {
		t.Error("refresh endpoint must not be called without a refresh token")
	}
}

func TestRequestID_Echoed(t *testing.T) {
	backend := fakebackend.New(fakebackend.Options{})
	defer backend.Close()

	req := httptest.NewRequest(http.MethodGet, "/api/auth/profile/", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rec := httptest.NewRecorder()
	backend.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without a token, got %d", rec.Code)
	}
	if got := rec.Header().Get("X-Request-ID"); got != "req-42" {
		t.Errorf("expected request ID to be echoed, got %q", got)
	}
	if !strings.Contains(rec.Body.String(), "Authentication credentials were not provided.") {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
}

func TestCrimeLifecycle(t *testing.T) {
	h := newHarness(t, fakebackend.Options{})
	h.login(t)
	ctx := context.Background()

	created, err := h.client.CreateCrime(ctx, client.Crime{
		Title:        "Cattle theft",
		Category:     "theft",
		Severity:     "high",
		Description:  "Ten cows taken overnight",
		Location:     "Kiruhura Farm",
		District:     "Kiruhura",
		DateOccurred: "2024-03-01T02:00:00Z",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.CaseNumber != "UPF-CASE-00001" || created.Status != "reported" {
		t.Fatalf("unexpected created crime %+v", created)
	}

	updated, err := h.client.UpdateCrime(ctx, created.ID, client.Crime{Status: "under_investigation"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != "under_investigation" || updated.Title != "Cattle theft" {
		t.Errorf("expected a partial update, got %+v", updated)
	}

	suspect, err := h.client.AddSuspect(ctx, created.ID, client.Suspect{Name: "Unknown herdsman"})
	if err != nil {
		t.Fatalf("add suspect: %v", err)
	}
	if _, err := h.client.AddWitness(ctx, created.ID, client.Witness{Name: "Farm hand"}); err != nil {
		t.Fatalf("add witness: %v", err)
	}

	got, err := h.client.GetCrime(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Suspects) != 1 || len(got.Witnesses) != 1 || got.Suspects[0].Gender != "unknown" {
		t.Errorf("unexpected detail %+v", got)
	}

	if err := h.client.RemoveSuspect(ctx, created.ID, suspect.ID); err != nil {
		t.Fatalf("remove suspect: %v", err)
	}
	if err := h.client.RemoveSuspect(ctx, created.ID, suspect.ID); !client.IsStatus(err, http.StatusNotFound) {
		t.Errorf("expected 404 removing twice, got %v", err)
	}

	if err := h.client.DeleteCrime(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := h.client.GetCrime(ctx, created.ID); !client.IsStatus(err, http.StatusNotFound) {
		t.Errorf("expected 404 after delete, got %v", err)
	}
}

func TestCreateCrime_Validation(t *testing.T) {
	h := newHarness(t, fakebackend.Options{})
	h.login(t)

	tests := []struct {
		name  string
		crime client.Crime
		want  string
	}{
		{"missing title", client.Crime{Description: "d", Location: "l", District: "d", DateOccurred: "2024-01-01"}, "title"},
		{"bad category", client.Crime{Title: "t", Category: "jaywalking", Description: "d", Location: "l", District: "d", DateOccurred: "2024-01-01"}, "category"},
		{"bad date", client.Crime{Title: "t", Description: "d", Location: "l", District: "d", DateOccurred: "yesterday"}, "date_occurred"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.client.CreateCrime(context.Background(), tt.crime)
			if !client.IsStatus(err, http.StatusBadRequest) || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected 400 mentioning %s, got %v", tt.want, err)
			}
		})
	}
}

func TestListCrimes_FiltersAndPages(t *testing.T) {
	h := newHarness(t, fakebackend.Options{})
	for i := range 25 {
		district := "Kampala"
		if i%5 == 0 {
			district = "Gulu"
		}
		h.backend.AddCrime(client.Crime{
			Title: "Case", Category: "theft", Severity: "low",
			Description: "d", Location: "l", District: district, DateOccurred: "2024-01-01",
		})
	}
	h.login(t)
	ctx := context.Background()

	first, err := h.client.ListCrimes(ctx, client.CrimeFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if first.Count != 25 || len(first.Results) != 20 || first.Next == "" || first.Previous != "" {
		t.Errorf("unexpected first page: count=%d results=%d next=%q prev=%q",
			first.Count, len(first.Results), first.Next, first.Previous)
	}

	second, err := h.client.ListCrimes(ctx, client.CrimeFilter{Page: 2})
	if err != nil {
		t.Fatalf("list page 2: %v", err)
	}
	if len(second.Results) != 5 || second.Next != "" || second.Previous == "" {
		t.Errorf("unexpected second page: results=%d next=%q prev=%q",
			len(second.Results), second.Next, second.Previous)
	}

	gulu, err := h.client.ListCrimes(ctx, client.CrimeFilter{District: "gul"})
	if err != nil {
		t.Fatalf("list gulu: %v", err)
	}
	if gulu.Count != 5 {
		t.Errorf("expected 5 Gulu crimes, got %d", gulu.Count)
	}

	search, err := h.client.ListCrimes(ctx, client.CrimeFilter{Search: "case-00025"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if search.Count != 1 || search.Results[0].CaseNumber != "UPF-CASE-00025" {
		t.Errorf("expected case number search hit, got %+v", search.Results)
	}
}

func TestUploadCrimes_FromTemplate(t *testing.T) {
	h := newHarness(t, fakebackend.Options{})
	h.login(t)
	ctx := context.Background()

	tmpl, err := h.client.UploadTemplate(ctx)
	if err != nil {
		t.Fatalf("template: %v", err)
	}
	if tmpl.Filename != "crime_upload_template.csv" {
		t.Errorf("unexpected template filename %q", tmpl.Filename)
	}

	csv := append(tmpl.Data, []byte(",theft,low,no title,Somewhere,Kampala,2024-01-01\n")...)
	res, err := h.client.UploadCrimes(ctx, tmpl.Filename, bytes.NewReader(csv))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if res.Summary.TotalRows != 3 || res.Summary.Created != 2 || res.Summary.Skipped != 1 {
		t.Errorf("unexpected summary %+v", res.Summary)
	}
	if len(res.CreatedCases) != 2 || res.CreatedCases[0].Row != 2 {
		t.Errorf("unexpected created cases %+v", res.CreatedCases)
	}

	_, err = h.client.UploadCrimes(ctx, "crimes.txt", strings.NewReader("x"))
	if !client.IsStatus(err, http.StatusBadRequest) {
		t.Errorf("expected 400 for a non-CSV file, got %v", err)
	}
}

func TestDashboard_SampleData(t *testing.T) {
	h := newHarness(t, fakebackend.Options{SampleData: true})
	h.login(t)
	ctx := context.Background()

	overview, err := h.client.Overview(ctx)
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if overview.Crimes.Total != 12 || overview.ByStatus.Solved != 3 || overview.Crimes.SolveRatePercent != 25 {
		t.Errorf("unexpected overview %+v", overview)
	}

	hotspots, err := h.client.Hotspots(ctx, client.PeriodAll, 2)
	if err != nil {
		t.Fatalf("hotspots: %v", err)
	}
	if len(hotspots) != 2 || hotspots[0].District != "Kampala" || hotspots[0].Total != 4 {
		t.Errorf("unexpected hotspots %+v", hotspots)
	}

	severity, err := h.client.CrimesBySeverity(ctx, client.PeriodWeek)
	if err != nil {
		t.Fatalf("by severity: %v", err)
	}
	for _, b := range severity {
		if b.Label == "" || b.Color == "" {
			t.Errorf("expected label and colour, got %+v", b)
		}
	}

	alerts, err := h.client.Alerts(ctx)
	if err != nil {
		t.Fatalf("alerts: %v", err)
	}
	for _, a := range alerts {
		if a.Severity != "high" && a.Severity != "critical" {
			t.Errorf("unexpected alert severity %q", a.Severity)
		}
	}

	daily, err := h.client.DailyTrends(ctx)
	if err != nil {
		t.Fatalf("daily trends: %v", err)
	}
	total := 0
	for _, p := range daily {
		total += p.Count
	}
	if total != 10 {
		t.Errorf("expected 10 crimes in the last 30 days, got %d", total)
	}
}

func TestAnalysisAndChat(t *testing.T) {
	h := newHarness(t, fakebackend.Options{SampleData: true})
	h.login(t)
	ctx := context.Background()

	a, err := h.client.AnalyzeCase(ctx, "UPF-CASE-00002")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if a.RiskAssessment != "CRITICAL" || a.Status != "completed" {
		t.Errorf("unexpected analysis %+v", a)
	}
	if _, err := h.client.AnalyzeCase(ctx, "UPF-CASE-99999"); !client.IsStatus(err, http.StatusNotFound) {
		t.Errorf("expected 404 for unknown case, got %v", err)
	}

	reply, err := h.client.Chat(ctx, "How many robbery cases?", "")
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if reply.SessionID == "" || !strings.Contains(reply.Response, "1 Robbery") {
		t.Errorf("unexpected reply %+v", reply)
	}
	if _, err := h.client.Chat(ctx, "Tell me about UPF-CASE-00001", reply.SessionID); err != nil {
		t.Fatalf("follow-up chat: %v", err)
	}

	conv, err := h.client.ChatHistory(ctx, reply.SessionID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(conv.Messages) != 4 || conv.Messages[1].Role != "assistant" {
		t.Errorf("unexpected conversation %+v", conv)
	}

	results, err := h.client.ListAnalyses(ctx)
	if err != nil {
		t.Fatalf("results: %v", err)
	}
	if results.Count != 1 {
		t.Errorf("expected 1 stored analysis, got %d", results.Count)
	}
}

func TestReports_DownloadsAndHistory(t *testing.T) {
	h := newHarness(t, fakebackend.Options{SampleData: true})
	h.login(t)
	ctx := context.Background()

	pdf, err := h.client.CrimeListPDF(ctx, client.ReportFilter{District: "Kampala"})
	if err != nil {
		t.Fatalf("crime list pdf: %v", err)
	}
	if !bytes.HasPrefix(pdf.Data, []byte("%PDF-")) || pdf.ContentType != "application/pdf" {
		t.Errorf("expected a PDF, got %q", pdf.ContentType)
	}
	if !strings.HasPrefix(pdf.Filename, "crime_list_") {
		t.Errorf("expected server filename, got %q", pdf.Filename)
	}

	casePDF, err := h.client.CasePDF(ctx, "UPF-CASE-00001")
	if err != nil {
		t.Fatalf("case pdf: %v", err)
	}
	if casePDF.Filename != "case_UPF-CASE-00001.pdf" {
		t.Errorf("unexpected filename %q", casePDF.Filename)
	}

	xls, err := h.client.CrimeListExcel(ctx, client.ReportFilter{})
	if err != nil {
		t.Fatalf("crime list excel: %v", err)
	}
	if !bytes.Contains(xls.Data, []byte("UPF-CASE-00012")) {
		t.Error("expected every case in the workbook")
	}

	history, err := h.client.ReportHistory(ctx)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if history.Count != 3 || history.Results[0].ReportFormat != "excel" {
		t.Errorf("unexpected history %+v", history.Results)
	}
}
