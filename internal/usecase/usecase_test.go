package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"strings"
	"sync"
	"testing"
	"time"

	"job-scout/internal/domain/job"
	"job-scout/internal/domain/profile"
	"job-scout/internal/infrastructure/backend"
	"job-scout/internal/infrastructure/cache"
	"job-scout/internal/repository"
	"job-scout/internal/scraper"
)

func quietLogger() *log.Logger { return log.New(io.Discard, "", 0) }

type memCache struct {
	mu      sync.Mutex
	items   map[string][]byte
	locks   map[string]string
	lockErr error
	deletes int
}

func newMemCache() *memCache {
	return &memCache{items: map[string][]byte{}, locks: map[string]string{}}
}

func (c *memCache) GetJSON(_ context.Context, key string, out any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.items[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, out)
}

func (c *memCache) SetJSON(_ context.Context, key string, value any, _ time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.items[key] = b
	c.mu.Unlock()
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	c.deletes++
	delete(c.items, key)
	delete(c.locks, key)
	c.mu.Unlock()
	return nil
}

func (c *memCache) SetIfNotExists(_ context.Context, key, value string, _ time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lockErr != nil {
		return false, c.lockErr
	}
	if _, ok := c.locks[key]; ok {
		return false, nil
	}
	c.locks[key] = value
	return true, nil
}

type htmlOpener struct {
	mu    sync.Mutex
	pages map[string]string
	opens int
}

func (o *htmlOpener) Open(_ context.Context, pageURL string) (scraper.Page, error) {
	o.mu.Lock()
	o.opens++
	html, ok := o.pages[pageURL]
	o.mu.Unlock()
	if !ok {
		return nil, errors.New("status 404")
	}
	return scraper.NewStaticPageFromHTML(pageURL, []byte(html))
}

type fakeJobs struct {
	mu       sync.Mutex
	upserted []job.RawJobRecord
	err      error
}

func (f *fakeJobs) Upsert(_ context.Context, rec job.RawJobRecord, sourceType string) (repository.ScrapedJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserted = append(f.upserted, rec)
	return repository.ScrapedJob{SourceType: sourceType, Record: rec}, f.err
}

func (f *fakeJobs) ListRecent(context.Context, int) ([]repository.ScrapedJob, error) {
	return []repository.ScrapedJob{{SourceType: "lever"}}, nil
}

const leverPosting = `<html><head>
<script type="application/ld+json">{"@type":"JobPosting","title":"Platform Engineer","description":"Build the platform",
"hiringOrganization":{"name":"Acme","sameAs":"https://acme.test"},"jobLocation":{"address":{"addressLocality":"Remote"}}}</script>
</head><body><h2>ignored</h2></body></html>`

func newScrapeUsecase(opener PageOpener, c ResultCache, jobs repository.ScrapedJobRepository, notify ScrapeNotifier) *Scrape {
	return NewScrapeUsecase(ScrapeDeps{
		Static:     opener,
		Aggregator: scraper.NewAggregator(scraper.NewPoller(scraper.PollerOptions{MaxAttempts: 1, MinLength: 50}, quietLogger()), quietLogger()),
		Cache:      c,
		Jobs:       jobs,
		Notify:     notify,
		Workers:    2,
		Logger:     quietLogger(),
	})
}

func TestValidateJobURL(t *testing.T) {
	for _, raw := range []string{"", "not a url", "ftp://x.test/job", "/relative/path", "https://"} {
		if _, err := ValidateJobURL(raw); !errors.Is(err, ErrInvalidURL) {
			t.Fatalf("expected ErrInvalidURL for %q, got %v", raw, err)
		}
	}
	got, err := ValidateJobURL("  https://jobs.lever.co/acme/1 ")
	if err != nil || got != "https://jobs.lever.co/acme/1" {
		t.Fatalf("unexpected %q %v", got, err)
	}
}

func TestScrape_PersistsCachesAndNotifies(t *testing.T) {
	link := "https://jobs.lever.co/acme/1"
	opener := &htmlOpener{pages: map[string]string{link: leverPosting}}
	c := newMemCache()
	jobs := &fakeJobs{}
	var notified []string
	uc := newScrapeUsecase(opener, c, jobs, func(rec job.RawJobRecord, source string) {
		notified = append(notified, rec.JobLink+"|"+source)
	})

	res, err := uc.Scrape(context.Background(), ScrapeRequest{URL: link})
	if err != nil {
		t.Fatalf("scrape: %v", err)
	}
	if !res.Ready || res.Cached || res.SourceType != "lever" {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.Record.JobTitle != "Platform Engineer" || job.StringOrEmpty(res.Record.CompanyURL) != "https://acme.test" {
		t.Fatalf("unexpected record %+v", res.Record)
	}
	if len(jobs.upserted) != 1 || len(notified) != 1 || notified[0] != link+"|lever" {
		t.Fatalf("expected persist+notify once, got %d %v", len(jobs.upserted), notified)
	}

	again, err := uc.Scrape(context.Background(), ScrapeRequest{URL: link})
	if err != nil || !again.Cached || again.Record.JobTitle != "Platform Engineer" {
		t.Fatalf("expected cache hit, got %+v %v", again, err)
	}
	if opener.opens != 1 {
		t.Fatalf("expected one page load, got %d", opener.opens)
	}

	if _, err := uc.Scrape(context.Background(), ScrapeRequest{URL: link, Refresh: true}); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if opener.opens != 2 {
		t.Fatalf("expected refresh to reload the page, got %d loads", opener.opens)
	}
}

func TestScrape_IncompleteRecordIsNotCachedOrPersisted(t *testing.T) {
	link := "https://example.test/careers/7"
	opener := &htmlOpener{pages: map[string]string{link: `<html><body><h1>Only a title</h1></body></html>`}}
	c := newMemCache()
	jobs := &fakeJobs{}
	uc := newScrapeUsecase(opener, c, jobs, nil)

	res, err := uc.Scrape(context.Background(), ScrapeRequest{URL: link})
	if err != nil {
		t.Fatalf("scrape: %v", err)
	}
	if res.Ready || res.SourceType != job.SourceTypeUnknown || res.Record.JobLink != link {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(c.items) != 0 || len(jobs.upserted) != 0 {
		t.Fatalf("incomplete record should not be cached or stored")
	}
}

func TestScrape_OpenFailure(t *testing.T) {
	uc := newScrapeUsecase(&htmlOpener{pages: map[string]string{}}, nil, nil, nil)
	_, err := uc.Scrape(context.Background(), ScrapeRequest{URL: "https://jobs.lever.co/missing"})
	if !errors.Is(err, ErrPageUnavailable) {
		t.Fatalf("expected ErrPageUnavailable, got %v", err)
	}
}

func TestScrapeBatch_KeepsOrderAndErrors(t *testing.T) {
	a := "https://jobs.lever.co/acme/1"
	opener := &htmlOpener{pages: map[string]string{a: leverPosting}}
	uc := newScrapeUsecase(opener, nil, nil, nil)

	items := uc.ScrapeBatch(context.Background(), []string{"bad url", a, "https://jobs.lever.co/missing"}, false)
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	if items[0].Error == "" || items[0].Result != nil {
		t.Fatalf("expected invalid url error, got %+v", items[0])
	}
	if items[1].Result == nil || items[1].Result.Record.JobTitle != "Platform Engineer" {
		t.Fatalf("unexpected second item %+v", items[1])
	}
	if !strings.Contains(items[2].Error, ErrPageUnavailable.Error()) {
		t.Fatalf("unexpected third item %+v", items[2])
	}
}

func TestScrape_RecentRequiresStorage(t *testing.T) {
	uc := newScrapeUsecase(&htmlOpener{}, nil, nil, nil)
	if _, err := uc.Recent(context.Background(), 10); !errors.Is(err, ErrPersistenceDisabled) {
		t.Fatalf("expected ErrPersistenceDisabled, got %v", err)
	}
	uc = newScrapeUsecase(&htmlOpener{}, nil, &fakeJobs{}, nil)
	got, err := uc.Recent(context.Background(), 10)
	if err != nil || len(got) != 1 {
		t.Fatalf("unexpected %v %v", got, err)
	}
}

type fakeNLP struct {
	calls int
	out   backend.JDSkills
	err   error
	panic bool
}

func (f *fakeNLP) ComputeScore(context.Context, string, string) (backend.JDSkills, error) {
	f.calls++
	if f.panic {
		panic("boom")
	}
	return f.out, f.err
}

type fakeProfiles struct {
	p   profile.Profile
	err error
}

func (f fakeProfiles) GetProfile(context.Context, string) (profile.Profile, error) {
	return f.p, f.err
}

func sampleResume() profile.Resume {
	return profile.Resume{
		ID: "r1",
		Skills: []profile.Skill{
			{Skill: "Go", YearsOfExperience: 3},
			{Skill: "PostgreSQL", YearsOfExperience: 0},
		},
		Projects: []profile.Project{{TechnologiesUsed: []string{"Redis"}, Description: "built caching"}},
	}
}

func TestScorer_MatchesAndCaches(t *testing.T) {
	nlp := &fakeNLP{out: backend.JDSkills{JDCount: 4, Skills: []string{"Go", "PostgreSQL", "Kubernetes", "Redis"}}}
	c := newMemCache()
	s := NewScorer(nlp, nil, c, time.Minute, quietLogger())
	r := sampleResume()

	res := s.CalculateScore(context.Background(), "We need Go", "token", &r)
	if res.NumberOfMatchedSkills != 3 || res.MatchPercentage != 75 || res.TotalUserSkills != 2 {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.TotalScore != 3+1+1 {
		t.Fatalf("unexpected total score %v", res.TotalScore)
	}

	again := s.CalculateScore(context.Background(), "We need Go", "token", &r)
	if nlp.calls != 1 || again.MatchPercentage != 75 {
		t.Fatalf("expected cached result, calls=%d result=%+v", nlp.calls, again)
	}
}

func TestScorer_FailuresYieldZeroResult(t *testing.T) {
	r := sampleResume()
	cases := map[string]*Scorer{
		"nlp error": NewScorer(&fakeNLP{err: backend.ErrComputeScoreFailed}, nil, nil, 0, quietLogger()),
		"panic":     NewScorer(&fakeNLP{panic: true}, nil, nil, 0, quietLogger()),
		"no nlp":    NewScorer(nil, nil, nil, 0, quietLogger()),
	}
	for name, s := range cases {
		res := s.CalculateScore(context.Background(), "jd", "token", &r)
		if res.MatchPercentage != 0 || res.MatchedSkills == nil || len(res.MatchedSkills) != 0 || res.Skills == nil {
			t.Fatalf("%s: expected zero result, got %+v", name, res)
		}
	}
}

func TestScorer_ErrorsAreNotCached(t *testing.T) {
	c := newMemCache()
	r := sampleResume()
	s := NewScorer(&fakeNLP{err: errors.New("down")}, nil, c, 0, quietLogger())
	_ = s.CalculateScore(context.Background(), "jd", "token", &r)
	if len(c.items) != 0 {
		t.Fatalf("failure should not be cached")
	}
}

func TestScorer_UsesInitialResumeWhenNoneGiven(t *testing.T) {
	primary := profile.Resume{ID: "p", IsPrimary: true, Skills: []profile.Skill{{Skill: "Kubernetes", YearsOfExperience: 2}}}
	other := profile.Resume{ID: "o", Skills: []profile.Skill{{Skill: "Go"}}}
	nlp := &fakeNLP{out: backend.JDSkills{JDCount: 1, Skills: []string{"Kubernetes"}}}
	s := NewScorer(nlp, fakeProfiles{p: profile.Profile{Resumes: []profile.Resume{other, primary}}}, nil, 0, quietLogger())

	res := s.CalculateScore(context.Background(), "jd", "token", nil)
	if res.MatchPercentage != 100 || len(res.MatchedSkills) != 1 || res.MatchedSkills[0].Score != 2 {
		t.Fatalf("expected primary resume to be scored, got %+v", res)
	}

	empty := NewScorer(nlp, fakeProfiles{}, nil, 0, quietLogger())
	if _, err := empty.SelectResume(context.Background(), "token"); !errors.Is(err, ErrNoResume) {
		t.Fatalf("expected ErrNoResume, got %v", err)
	}
}

func TestResumeFingerprint_OrderSensitive(t *testing.T) {
	a := profile.Resume{Skills: []profile.Skill{{Skill: "Go"}, {Skill: "Rust"}}}
	b := profile.Resume{Skills: []profile.Skill{{Skill: "Rust"}, {Skill: "Go"}}}
	if resumeFingerprint("jd", a) == resumeFingerprint("jd", b) {
		t.Fatalf("skill order should change the fingerprint")
	}
	if resumeFingerprint("jd", a) != resumeFingerprint("jd", a) {
		t.Fatalf("fingerprint should be stable")
	}
}

type fakeAgent struct {
	calls int
	got   job.Submission
	err   error
}

func (f *fakeAgent) AssignedUsers(context.Context, string) ([]backend.AssignedUser, error) {
	return []backend.AssignedUser{{UserID: "u1", Name: "Ana"}}, nil
}

func (f *fakeAgent) CreateJobForUser(_ context.Context, _, _ string, body job.Submission) (json.RawMessage, error) {
	f.calls++
	f.got = body
	return json.RawMessage(`{"ok":true}`), f.err
}

type fakeAudit struct{ recorded []job.Submission }

func (f *fakeAudit) Record(_ context.Context, _ string, s job.Submission) error {
	f.recorded = append(f.recorded, s)
	return nil
}

func validInput() SubmissionInput {
	return SubmissionInput{
		UserID:         "u1",
		JobTitle:       " Backend Engineer ",
		JobDescription: "Go services",
		JobLink:        "https://jobs.lever.co/acme/1",
		CompanyLogo:    "https://acme.test/logo.png",
		Priority:       "HIGH",
	}
}

func TestBuildSubmission(t *testing.T) {
	sub, err := BuildSubmission(validInput(), "id-1")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if sub.JobID != "id-1" || sub.JobTitle != "Backend Engineer" || sub.Priority != "high" || sub.Status != "Assigned" {
		t.Fatalf("unexpected submission %+v", sub)
	}
	if job.StringOrEmpty(sub.ImageURL) != "https://acme.test/logo.png" {
		t.Fatalf("imageUrl should mirror the company logo, got %v", sub.ImageURL)
	}

	in := validInput()
	in.Priority = ""
	in.CompanyLogo = ""
	sub, _ = BuildSubmission(in, "id-2")
	if sub.Priority != "medium" || sub.ImageURL != nil {
		t.Fatalf("unexpected defaults %+v", sub)
	}

	in = validInput()
	in.Status = "Dreaming"
	if _, err := BuildSubmission(in, "x"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestSubmit_ValidatesBeforeNetwork(t *testing.T) {
	agent := &fakeAgent{}
	uc := NewSubmissionUsecase(agent, nil, nil, quietLogger())
	in := validInput()
	in.JobDescription = "  "
	if _, err := uc.Submit(context.Background(), "token", in); !errors.Is(err, job.ErrMissingRequiredFields) {
		t.Fatalf("expected ErrMissingRequiredFields, got %v", err)
	}
	if agent.calls != 0 {
		t.Fatalf("backend must not be called for invalid input")
	}
}

func TestSubmit_SuccessAndLock(t *testing.T) {
	agent := &fakeAgent{}
	audit := &fakeAudit{}
	c := newMemCache()
	uc := NewSubmissionUsecase(agent, audit, c, quietLogger())
	uc.newID = func() string { return "fixed-id" }

	res, err := uc.Submit(context.Background(), "token", validInput())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.Submission.JobID != "fixed-id" || agent.got.JobID != "fixed-id" || len(audit.recorded) != 1 {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(c.locks) != 0 {
		t.Fatalf("lock should be released after submit")
	}

	key := cache.SubmissionLockKey("u1", validInput().JobLink)
	_, _ = c.SetIfNotExists(context.Background(), key, "held", 0)
	if _, err := uc.Submit(context.Background(), "token", validInput()); !errors.Is(err, ErrSubmissionInFlight) {
		t.Fatalf("expected ErrSubmissionInFlight, got %v", err)
	}
	if c.locks[key] != "held" {
		t.Fatalf("a rejected submit must leave the other lock in place")
	}
}

func TestSubmit_LockErrorNeverDeletesKey(t *testing.T) {
	agent := &fakeAgent{}
	c := newMemCache()
	c.lockErr = errors.New("redis down")
	uc := NewSubmissionUsecase(agent, nil, c, quietLogger())

	if _, err := uc.Submit(context.Background(), "token", validInput()); err != nil {
		t.Fatalf("submit should proceed without the lock, got %v", err)
	}
	if agent.calls != 1 {
		t.Fatalf("expected one backend call, got %d", agent.calls)
	}
	if c.deletes != 0 {
		t.Fatalf("lock key deleted %d times without being acquired", c.deletes)
	}
}

func TestSubmit_PropagatesBackendErrors(t *testing.T) {
	agent := &fakeAgent{err: backend.ErrDuplicateJob}
	audit := &fakeAudit{}
	uc := NewSubmissionUsecase(agent, audit, nil, quietLogger())
	if _, err := uc.Submit(context.Background(), "token", validInput()); !errors.Is(err, backend.ErrDuplicateJob) {
		t.Fatalf("expected ErrDuplicateJob, got %v", err)
	}
	if len(audit.recorded) != 0 {
		t.Fatalf("failed submission should not be audited")
	}
}
