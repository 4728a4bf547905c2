package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"job-scout/internal/domain/matching"
	"job-scout/internal/domain/profile"
	"job-scout/internal/infrastructure/backend"
	"job-scout/internal/infrastructure/cache"
)

var ErrNoResume = errors.New("No resume available")

type SkillExtractor interface {
	ComputeScore(ctx context.Context, token, jobDetails string) (backend.JDSkills, error)
}

type ProfileSource interface {
	GetProfile(ctx context.Context, token string) (profile.Profile, error)
}

type ScoreUsecase interface {
	CalculateScore(ctx context.Context, jobDescription, authToken string, resume *profile.Resume) matching.MatchResult
}

// Scorer matches a resume against the skills the NLP backend extracts from a
// job description. It never fails: every error yields matching.ZeroResult.
type Scorer struct {
	nlp      SkillExtractor
	profiles ProfileSource
	cache    ResultCache
	ttl      time.Duration
	logger   *log.Logger
}

func NewScorer(nlp SkillExtractor, profiles ProfileSource, cache ResultCache, ttl time.Duration, logger *log.Logger) *Scorer {
	if logger == nil {
		logger = log.Default()
	}
	return &Scorer{nlp: nlp, profiles: profiles, cache: cache, ttl: ttl, logger: logger}
}

// CalculateScore scores resume, or the caller's initial resume when resume is
// nil.
func (s *Scorer) CalculateScore(ctx context.Context, jobDescription, authToken string, resume *profile.Resume) (res matching.MatchResult) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Printf("score status=panic error=%v", r)
			res = matching.ZeroResult()
		}
	}()

	res, err := s.calculate(ctx, jobDescription, authToken, resume)
	if err != nil {
		s.logger.Printf("score status=error error=%v", err)
		return matching.ZeroResult()
	}
	return res
}

func (s *Scorer) calculate(ctx context.Context, jobDescription, authToken string, resume *profile.Resume) (matching.MatchResult, error) {
	if s.nlp == nil {
		return matching.MatchResult{}, ErrBackendUnavailable
	}

	var r profile.Resume
	if resume != nil {
		r = *resume
	} else {
		selected, err := s.SelectResume(ctx, authToken)
		if err != nil {
			return matching.MatchResult{}, err
		}
		r = selected
	}

	key := cache.ScoreKey(resumeFingerprint(jobDescription, r))
	if s.cache != nil {
		var cached matching.MatchResult
		if hit, err := s.cache.GetJSON(ctx, key, &cached); err == nil && hit {
			s.logger.Printf("score status=cache_hit")
			return cached, nil
		}
	}

	jd, err := s.nlp.ComputeScore(ctx, authToken, jobDescription)
	if err != nil {
		return matching.MatchResult{}, err
	}

	keywords := matching.BuildUserKeywords(r.Skills, r.Projects)
	res := matching.Match(jd.Skills, jd.JDCount, keywords, len(r.Skills))
	s.logger.Printf("score status=ok resume=%s matched=%d jd_count=%d percentage=%d",
		r.ID, res.NumberOfMatchedSkills, res.JDCount, res.MatchPercentage)

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, res, s.ttl); err != nil {
			s.logger.Printf("score status=cache_set_failed error=%v", err)
		}
	}
	return res, nil
}

// SelectResume loads the caller's profile and picks the resume a fresh
// session would preselect.
func (s *Scorer) SelectResume(ctx context.Context, authToken string) (profile.Resume, error) {
	if s.profiles == nil {
		return profile.Resume{}, ErrBackendUnavailable
	}
	p, err := s.profiles.GetProfile(ctx, authToken)
	if err != nil {
		return profile.Resume{}, fmt.Errorf("load profile: %w", err)
	}
	item, ok := profile.InitialItem(profile.BuildDropdownItems(p.Resumes))
	if !ok {
		return profile.Resume{}, ErrNoResume
	}
	return profile.ResolveResume(item), nil
}

// resumeFingerprint covers only what affects scoring. Order is kept because
// keyword dedup and claiming depend on it.
func resumeFingerprint(jobDescription string, r profile.Resume) string {
	parts := make([]string, 0, 3+len(r.Skills)+len(r.Projects)*2)
	parts = append(parts, jobDescription, strconv.Itoa(len(r.Skills)))
	for _, sk := range r.Skills {
		parts = append(parts, sk.Skill+"="+strconv.FormatFloat(sk.YearsOfExperience, 'f', -1, 64))
	}
	parts = append(parts, strconv.Itoa(len(r.Projects)))
	for _, p := range r.Projects {
		parts = append(parts, strings.Join(p.TechnologiesUsed, "\x1f"), p.Description)
	}
	return cache.Fingerprint(parts...)
}
