package matching

import (
	"math"
	"sort"
	"strings"
)

// SearchResult is one item accepted by a Searcher. Score is 0 only when the
// item equals the pattern; any other hit scores at least minScore^norm.
type SearchResult struct {
	Item  string
	Index int
	Score float64
}

// minScore keeps a plain substring hit ranked below an item equal to the
// pattern.
const minScore = 0.001

// Searcher finds approximate occurrences of a pattern anywhere inside a fixed
// list of items. Matching is case-insensitive and position-independent.
type Searcher struct {
	items     []string
	lowered   [][]rune
	norms     []float64
	threshold float64
}

func NewSearcher(items []string, threshold float64) *Searcher {
	s := &Searcher{
		items:     items,
		lowered:   make([][]rune, len(items)),
		norms:     make([]float64, len(items)),
		threshold: threshold,
	}
	for i, it := range items {
		s.lowered[i] = []rune(strings.ToLower(it))
		s.norms[i] = fieldNorm(it)
	}
	return s
}

// Search returns every item containing pattern within threshold*len(pattern)
// edits, best first. Ties keep item order.
func (s *Searcher) Search(pattern string) []SearchResult {
	p := []rune(strings.ToLower(pattern))
	if len(p) == 0 {
		return nil
	}
	maxErrors := int(math.Floor(s.threshold * float64(len(p))))

	var out []SearchResult
	for i, text := range s.lowered {
		if strings.TrimSpace(s.items[i]) == "" {
			continue
		}
		if string(text) == string(p) {
			out = append(out, SearchResult{Item: s.items[i], Index: i, Score: 0})
			continue
		}
		errs := substringDistance(p, text)
		if errs > maxErrors {
			continue
		}
		raw := float64(errs) / float64(len(p))
		if raw > s.threshold {
			continue
		}
		score := math.Pow(math.Max(minScore, raw), s.norms[i])
		out = append(out, SearchResult{Item: s.items[i], Index: i, Score: score})
	}

	sort.SliceStable(out, func(a, b int) bool {
		if out[a].Score != out[b].Score {
			return out[a].Score < out[b].Score
		}
		return out[a].Index < out[b].Index
	})
	return out
}

// fieldNorm penalises long multi-word items: 1/sqrt(words), rounded to three
// decimals. Words are runs of non-space characters.
func fieldNorm(s string) float64 {
	n := 0
	for _, w := range strings.Split(s, " ") {
		if w != "" {
			n++
		}
	}
	if n == 0 {
		return 1
	}
	return math.Round(1/math.Sqrt(float64(n))*1000) / 1000
}

// substringDistance is the smallest edit distance between pattern and any
// substring of text.
func substringDistance(pattern, text []rune) int {
	m := len(pattern)
	prev := make([]int, m+1)
	cur := make([]int, m+1)
	for i := range prev {
		prev[i] = i
	}
	best := prev[m]

	for j := 1; j <= len(text); j++ {
		cur[0] = 0
		for i := 1; i <= m; i++ {
			cost := 1
			if pattern[i-1] == text[j-1] {
				cost = 0
			}
			v := prev[i-1] + cost
			if del := prev[i] + 1; del < v {
				v = del
			}
			if ins := cur[i-1] + 1; ins < v {
				v = ins
			}
			cur[i] = v
		}
		if cur[m] < best {
			best = cur[m]
			if best == 0 {
				return 0
			}
		}
		prev, cur = cur, prev
	}
	return best
}
