package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"job-scout/internal/delivery/http/middleware"
	"job-scout/internal/domain/job"
	"job-scout/internal/domain/matching"
	"job-scout/internal/domain/profile"
	"job-scout/internal/infrastructure/backend"
	"job-scout/internal/repository"
	"job-scout/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestApp(register func(r fiber.Router)) *fiber.App {
	app := fiber.New()
	app.Use(middleware.NewErrorMiddleware(nil).Middleware())
	register(app.Group("/api/v1"))
	return app
}

func do(t *testing.T, app *fiber.App, method, path, body string, headers map[string]string) (int, envelope) {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()
	var env envelope
	b, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(b, &env); err != nil {
		t.Fatalf("decode %s: %v", string(b), err)
	}
	return resp.StatusCode, env
}

type fakeScrapeUC struct {
	req usecase.ScrapeRequest
	res usecase.ScrapeResult
	err error
}

func (f *fakeScrapeUC) Scrape(_ context.Context, req usecase.ScrapeRequest) (usecase.ScrapeResult, error) {
	f.req = req
	return f.res, f.err
}

func (f *fakeScrapeUC) ScrapeBatch(_ context.Context, urls []string, _ bool) []usecase.BatchItem {
	out := make([]usecase.BatchItem, len(urls))
	for i, u := range urls {
		out[i] = usecase.BatchItem{URL: u, Error: "boom"}
	}
	return out
}

func (f *fakeScrapeUC) Recent(context.Context, int) ([]repository.ScrapedJob, error) {
	return nil, usecase.ErrPersistenceDisabled
}

func TestScrapeHandler_Scrape(t *testing.T) {
	uc := &fakeScrapeUC{res: usecase.ScrapeResult{
		Record:     job.RawJobRecord{JobTitle: "Go Engineer", JobDescription: "d", JobLink: "https://jobs.lever.co/a/1"},
		SourceType: "lever",
		Ready:      true,
	}}
	app := newTestApp(NewScrapeHandler(uc).RegisterRoutes)

	status, env := do(t, app, http.MethodPost, "/api/v1/scrape", `{"url":"https://jobs.lever.co/a/1","headless":true}`, nil)
	if status != http.StatusOK {
		t.Fatalf("unexpected status %d %+v", status, env)
	}
	if !uc.req.Headless || uc.req.URL != "https://jobs.lever.co/a/1" {
		t.Fatalf("request not forwarded %+v", uc.req)
	}
	var got map[string]any
	_ = json.Unmarshal(env.Data, &got)
	if got["jobTitle"] != "Go Engineer" || got["sourceType"] != "lever" || got["ready"] != true {
		t.Fatalf("unexpected body %v", got)
	}
	if _, ok := got["companyName"]; ok {
		t.Fatalf("absent optional fields should be omitted: %v", got)
	}
}

func TestScrapeHandler_ErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{usecase.ErrInvalidURL, http.StatusBadRequest},
		{usecase.ErrPageUnavailable, http.StatusBadGateway},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		app := newTestApp(NewScrapeHandler(&fakeScrapeUC{err: tc.err}).RegisterRoutes)
		status, _ := do(t, app, http.MethodPost, "/api/v1/scrape", `{"url":"x"}`, nil)
		if status != tc.status {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.status, status)
		}
	}

	app := newTestApp(NewScrapeHandler(&fakeScrapeUC{}).RegisterRoutes)
	if status, _ := do(t, app, http.MethodGet, "/api/v1/jobs/recent", "", nil); status != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without storage, got %d", status)
	}
	if status, _ := do(t, app, http.MethodGet, "/api/v1/jobs/recent?limit=abc", "", nil); status != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad limit, got %d", status)
	}
}

func TestScrapeHandler_BatchLimits(t *testing.T) {
	app := newTestApp(NewScrapeHandler(&fakeScrapeUC{}).RegisterRoutes)
	if status, _ := do(t, app, http.MethodPost, "/api/v1/scrape/batch", `{"urls":[]}`, nil); status != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty batch, got %d", status)
	}
	status, env := do(t, app, http.MethodPost, "/api/v1/scrape/batch", `{"urls":["a","b"]}`, nil)
	if status != http.StatusOK {
		t.Fatalf("unexpected status %d", status)
	}
	var items []map[string]any
	_ = json.Unmarshal(env.Data, &items)
	if len(items) != 2 || items[1]["url"] != "b" || items[1]["error"] != "boom" {
		t.Fatalf("unexpected items %v", items)
	}
}

func TestSitesHandler(t *testing.T) {
	app := newTestApp(NewSitesHandler(nil).RegisterRoutes)

	status, env := do(t, app, http.MethodGet, "/api/v1/sites/selectors?url=https://boards.greenhouse.io/acme/jobs/1", "", nil)
	if status != http.StatusOK {
		t.Fatalf("unexpected status %d", status)
	}
	var sel job.SiteSelectorSet
	_ = json.Unmarshal(env.Data, &sel)
	if sel.SourceType != "greenhouse" {
		t.Fatalf("unexpected selectors %+v", sel)
	}

	status, env = do(t, app, http.MethodGet, "/api/v1/sites/support?url=https://www.linkedin.com/jobs/search/?currentJobId=42", "", nil)
	if status != http.StatusOK {
		t.Fatalf("unexpected status %d", status)
	}
	var sup map[string]any
	_ = json.Unmarshal(env.Data, &sup)
	if sup["currentJobId"] != "42" || sup["sourceType"] != "linkedin" {
		t.Fatalf("unexpected support %v", sup)
	}

	if status, _ := do(t, app, http.MethodGet, "/api/v1/sites/selectors?url=nope", "", nil); status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}
}

type fakeScoreUC struct {
	token  string
	resume *profile.Resume
}

func (f *fakeScoreUC) CalculateScore(_ context.Context, _ string, token string, resume *profile.Resume) matching.MatchResult {
	f.token, f.resume = token, resume
	res := matching.ZeroResult()
	res.MatchPercentage = 40
	return res
}

func protectedApp(register func(r fiber.Router)) *fiber.App {
	return newTestApp(func(r fiber.Router) {
		register(r.Group("", middleware.NewAuthMiddleware(nil).Middleware()))
	})
}

func TestScoreHandler_PassesTokenThrough(t *testing.T) {
	uc := &fakeScoreUC{}
	app := protectedApp(NewScoreHandler(uc).RegisterRoutes)

	if status, _ := do(t, app, http.MethodPost, "/api/v1/score", `{"jobDescription":"go"}`, nil); status != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", status)
	}

	body := `{"jobDescription":"go","resume":{"_id":"r1","skills":[{"skill":"Go","yearsOfExperience":2}]}}`
	status, env := do(t, app, http.MethodPost, "/api/v1/score", body, map[string]string{"Authorization": "Bearer abc"})
	if status != http.StatusOK {
		t.Fatalf("unexpected status %d", status)
	}
	if uc.token != "abc" || uc.resume == nil || uc.resume.Skills[0].Skill != "Go" {
		t.Fatalf("unexpected forwarding token=%q resume=%+v", uc.token, uc.resume)
	}
	var res matching.MatchResult
	_ = json.Unmarshal(env.Data, &res)
	if res.MatchPercentage != 40 {
		t.Fatalf("unexpected result %+v", res)
	}

	if status, _ := do(t, app, http.MethodPost, "/api/v1/score", `{"jobDescription":"  "}`, map[string]string{"Authorization": "Bearer abc"}); status != http.StatusBadRequest {
		t.Fatalf("expected 400 for blank description, got %d", status)
	}
}

type fakeSubmissionUC struct {
	in  usecase.SubmissionInput
	err error
}

func (f *fakeSubmissionUC) AssignedUsers(context.Context, string) ([]backend.AssignedUser, error) {
	return []backend.AssignedUser{{UserID: "u1", Name: "Ana"}}, f.err
}

func (f *fakeSubmissionUC) Submit(_ context.Context, _ string, in usecase.SubmissionInput) (usecase.SubmissionResult, error) {
	f.in = in
	return usecase.SubmissionResult{Submission: job.Submission{JobID: "id-1"}}, f.err
}

func TestAgentHandler_CreateJob(t *testing.T) {
	uc := &fakeSubmissionUC{}
	app := protectedApp(NewAgentHandler(uc).RegisterRoutes)
	auth := map[string]string{"Authorization": "Bearer abc"}

	status, _ := do(t, app, http.MethodPost, "/api/v1/agent/users/u1/jobs", `{"jobTitle":"t","jobDescription":"d","jobLink":"l","priority":"low"}`, auth)
	if status != http.StatusCreated {
		t.Fatalf("unexpected status %d", status)
	}
	if uc.in.UserID != "u1" || uc.in.Priority != "low" {
		t.Fatalf("unexpected input %+v", uc.in)
	}

	status, env := do(t, app, http.MethodGet, "/api/v1/agent/assigned-users", "", auth)
	if status != http.StatusOK || !strings.Contains(string(env.Data), "Ana") {
		t.Fatalf("unexpected assigned users %d %s", status, env.Data)
	}
}

func TestAgentHandler_ErrorMapping(t *testing.T) {
	cases := []struct {
		err     error
		status  int
		message string
	}{
		{backend.ErrDuplicateJob, http.StatusConflict, backend.ErrDuplicateJob.Error()},
		{backend.ErrNoCredits, http.StatusForbidden, backend.ErrNoCredits.Error()},
		{job.ErrMissingRequiredFields, http.StatusBadRequest, backend.ErrMissingFields.Error()},
		{usecase.ErrBackendUnavailable, http.StatusServiceUnavailable, usecase.ErrBackendUnavailable.Error()},
		{&backend.StatusError{Status: 500}, http.StatusBadGateway, "Failed to create job (status: 500)"},
		{&backend.StatusError{Status: 422, Message: "Bad link"}, http.StatusBadGateway, "Bad link"},
	}
	for _, tc := range cases {
		app := protectedApp(NewAgentHandler(&fakeSubmissionUC{err: tc.err}).RegisterRoutes)
		status, env := do(t, app, http.MethodPost, "/api/v1/agent/users/u1/jobs", `{}`, map[string]string{"Authorization": "Bearer abc"})
		if status != tc.status || env.Message != tc.message {
			t.Fatalf("%v: expected %d %q, got %d %q", tc.err, tc.status, tc.message, status, env.Message)
		}
	}
}

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

func TestHealthHandler(t *testing.T) {
	h := NewHealthHandler(fakePinger{}, fakePinger{err: errors.New("down")}, nil)
	app := fiber.New()
	h.RegisterRoutes(app)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()
	var env struct {
		Data HealthStatus `json:"data"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&env)
	if !env.Data.DatabaseHealthy || env.Data.RedisHealthy || env.Data.ServerTime == "" {
		t.Fatalf("unexpected health %+v", env.Data)
	}
}
