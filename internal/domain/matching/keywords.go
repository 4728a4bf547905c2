package matching

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"job-scout/internal/domain/profile"
)

const (
	technologyYears  = 1.0
	descriptionYears = 0.5
)

// UserKeyword is a term the user can plausibly claim, weighted by years of
// experience.
type UserKeyword struct {
	Keyword           string
	YearsOfExperience float64
}

var descriptionSeparators = regexp.MustCompile(`[\s,.;:!/?()"'\-]+`)

var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "a": {}, "an": {}, "of": {}, "in": {},
	"to": {}, "is": {}, "was": {}, "were": {}, "this": {}, "that": {}, "used": {}, "made": {},
}

// BuildUserKeywords collects skills, project technologies and project
// description words. Keywords are deduplicated case-insensitively: a later
// duplicate replaces the earlier one only with strictly more years, and the
// first occurrence keeps its position.
func BuildUserKeywords(skills []profile.Skill, projects []profile.Project) []UserKeyword {
	all := make([]UserKeyword, 0, len(skills)+len(projects)*4)
	for _, s := range skills {
		all = append(all, UserKeyword{Keyword: s.Skill, YearsOfExperience: s.YearsOfExperience})
	}
	for _, p := range projects {
		for _, tech := range p.TechnologiesUsed {
			all = append(all, UserKeyword{Keyword: tech, YearsOfExperience: technologyYears})
		}
		for _, w := range DescriptionWords(p.Description) {
			all = append(all, UserKeyword{Keyword: w, YearsOfExperience: descriptionYears})
		}
	}
	return dedupeKeywords(all)
}

// DescriptionWords lowercases text, splits it on whitespace and punctuation,
// and keeps words longer than two characters that are not stop words.
func DescriptionWords(text string) []string {
	if text == "" {
		return nil
	}
	parts := descriptionSeparators.Split(strings.ToLower(text), -1)
	out := make([]string, 0, len(parts))
	for _, w := range parts {
		if utf8.RuneCountInString(w) <= 2 {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		out = append(out, w)
	}
	return out
}

func dedupeKeywords(in []UserKeyword) []UserKeyword {
	index := make(map[string]int, len(in))
	out := make([]UserKeyword, 0, len(in))
	for _, k := range in {
		norm := strings.ToLower(strings.TrimSpace(k.Keyword))
		if norm == "" {
			continue
		}
		i, seen := index[norm]
		if !seen {
			index[norm] = len(out)
			out = append(out, k)
			continue
		}
		if k.YearsOfExperience > out[i].YearsOfExperience {
			out[i] = k
		}
	}
	return out
}
