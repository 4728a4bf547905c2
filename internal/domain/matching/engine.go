package matching

import (
	"math"
	"strings"
)

// MatchThreshold is the worst fuzzy score still counted as a match.
const MatchThreshold = 0.2

type MatchedSkill struct {
	Skill      string  `json:"skill"`
	UserSkill  string  `json:"userSkill"`
	Score      float64 `json:"score"`
	MatchScore float64 `json:"matchScore"`
}

type MatchResult struct {
	MatchedSkills         []MatchedSkill `json:"matchedSkills"`
	MatchPercentage       int            `json:"matchPercentage"`
	NumberOfMatchedSkills int            `json:"numberOfMatchedSkills"`
	JDCount               int            `json:"JDcount"`
	Skills                []string       `json:"skills"`
	TotalUserSkills       int            `json:"totalUserSkills"`
	NormalizedJDSkills    []string       `json:"normalizedJDSkills"`
	TotalScore            float64        `json:"totalScore"`
}

// ZeroResult is returned whenever scoring cannot complete.
func ZeroResult() MatchResult {
	return MatchResult{
		MatchedSkills:      []MatchedSkill{},
		Skills:             []string{},
		NormalizedJDSkills: []string{},
	}
}

// Match scores user keywords against the skills extracted from a job
// description. Keywords are processed in order and each distinct JD skill can
// be claimed only once, by the first keyword whose best hit is within
// MatchThreshold. A claim is worth the keyword's years, or 1 when it has none.
func Match(jdSkills []string, jdCount int, keywords []UserKeyword, totalUserSkills int) MatchResult {
	res := ZeroResult()
	res.JDCount = jdCount
	res.TotalUserSkills = totalUserSkills
	if jdSkills != nil {
		res.Skills = jdSkills
	}

	normalized := make([]string, len(jdSkills))
	firstIndex := make(map[string]int, len(jdSkills))
	for i, s := range jdSkills {
		normalized[i] = strings.ToLower(s)
		if _, ok := firstIndex[normalized[i]]; !ok {
			firstIndex[normalized[i]] = i
		}
	}
	res.NormalizedJDSkills = normalized

	searcher := NewSearcher(normalized, MatchThreshold)
	claimed := make(map[string]struct{}, len(normalized))

	for _, kw := range keywords {
		if strings.TrimSpace(kw.Keyword) == "" {
			continue
		}
		hits := searcher.Search(kw.Keyword)
		if len(hits) == 0 || hits[0].Score > MatchThreshold {
			continue
		}
		item := hits[0].Item
		if _, taken := claimed[item]; taken {
			continue
		}
		claimed[item] = struct{}{}

		score := kw.YearsOfExperience
		if score == 0 {
			score = 1
		}
		res.TotalScore += score
		res.MatchedSkills = append(res.MatchedSkills, MatchedSkill{
			Skill:      jdSkills[firstIndex[item]],
			UserSkill:  kw.Keyword,
			Score:      score,
			MatchScore: hits[0].Score,
		})
		res.NumberOfMatchedSkills++
	}

	res.MatchPercentage = Percentage(res.NumberOfMatchedSkills, jdCount)
	return res
}

// Percentage rounds matched/total to a whole percent. A non-positive total
// yields 0.
func Percentage(matched, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(matched) / float64(total) * 100))
}
