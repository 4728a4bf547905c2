package sites

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"job-scout/internal/domain/job"

	"gopkg.in/yaml.v3"
)

//go:embed sites.yaml
var defaultSitesYAML []byte

var ErrInvalidSiteTable = errors.New("invalid site table")

// Site is one supported career site: any Match fragment contained in the
// page URL selects its Selectors.
type Site struct {
	Name      string              `yaml:"name"`
	Match     []string            `yaml:"match"`
	Selectors job.SiteSelectorSet `yaml:"selectors"`
}

type coverLetterRule struct {
	Match    []string `yaml:"match"`
	Selector string   `yaml:"selector"`
}

type supportTable struct {
	Autofill      []string          `yaml:"autofill"`
	Autoapply     []string          `yaml:"autoapply"`
	AlwaysVisible []string          `yaml:"always_visible"`
	CoverLetter   []coverLetterRule `yaml:"cover_letter"`
}

type document struct {
	Sites    []Site              `yaml:"sites"`
	Fallback job.SiteSelectorSet `yaml:"fallback"`
	Support  supportTable        `yaml:"support"`
}

// Registry is an ordered, read-only selector table.
type Registry struct {
	sites    []Site
	fallback job.SiteSelectorSet
	support  supportTable
}

// Parse builds a Registry from a YAML site table.
func Parse(b []byte) (*Registry, error) {
	var doc document
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSiteTable, err)
	}

	for i, s := range doc.Sites {
		if len(s.Match) == 0 {
			return nil, fmt.Errorf("%w: site %d (%s) has no match fragments", ErrInvalidSiteTable, i, s.Name)
		}
		for _, m := range s.Match {
			if strings.TrimSpace(m) == "" {
				return nil, fmt.Errorf("%w: site %d (%s) has an empty match fragment", ErrInvalidSiteTable, i, s.Name)
			}
		}
	}

	fb := doc.Fallback
	if strings.TrimSpace(fb.SourceType) == "" {
		fb.SourceType = job.SourceTypeUnknown
	}

	return &Registry{sites: doc.Sites, fallback: fb, support: doc.Support}, nil
}

// Default returns the registry compiled into the binary.
func Default() *Registry {
	r, err := Parse(defaultSitesYAML)
	if err != nil {
		panic(err)
	}
	return r
}

// Load reads a site table from path, or returns Default when path is empty.
func Load(path string) (*Registry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(b)
}

// Resolve returns the selectors of the first site matching url, or the
// generic fallback set.
func (r *Registry) Resolve(url string) job.SiteSelectorSet {
	for _, s := range r.sites {
		if containsAny(url, s.Match) {
			return s.Selectors
		}
	}
	return r.fallback
}

func (r *Registry) Sites() []Site {
	out := make([]Site, len(r.sites))
	copy(out, r.sites)
	return out
}

func containsAny(s string, fragments []string) bool {
	for _, f := range fragments {
		if strings.Contains(s, f) {
			return true
		}
	}
	return false
}
