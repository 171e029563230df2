package insights

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/KaramelBytes/trendboard/internal/dataset"
)

// TitleCorpus joins every non-missing title cell with single spaces.
func TitleCorpus(t *dataset.Table) string {
	col, ok := dataset.ResolveRoles(t).Column(dataset.RoleTitle)
	if !ok {
		return ""
	}
	var parts []string
	for _, v := range t.Column(col) {
		if !v.IsMissing() {
			parts = append(parts, v.Text())
		}
	}
	return strings.Join(parts, " ")
}

// WordCount is one word-cloud term.
type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// WordFrequencies tokenizes corpus into lower-case words, drops stopwords
// and single characters, and returns the n most frequent (all when n <= 0).
func WordFrequencies(corpus string, n int) []WordCount {
	corpus = norm.NFKC.String(corpus)
	tokens := strings.FieldsFunc(strings.ToLower(corpus), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '\''
	})
	counts := map[string]int{}
	for _, tok := range tokens {
		tok = strings.Trim(tok, "'")
		if len([]rune(tok)) < 2 {
			continue
		}
		if _, stop := stopwords[tok]; stop {
			continue
		}
		counts[tok]++
	}
	out := make([]WordCount, 0, len(counts))
	for w, c := range counts {
		out = append(out, WordCount{Word: w, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Word < out[j].Word
		}
		return out[i].Count > out[j].Count
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

var stopwords = func() map[string]struct{} {
	words := strings.Fields(`a about above after again against all am an and any are as at be because been
		before being below between both but by can could did do does doing down during each few for from
		further had has have having he her here hers herself him himself his how i if in into is it its
		itself just me more most my myself no nor not of off on once only or other ought our ours
		ourselves out over own same she should so some such than that the their theirs them themselves
		then there these they this those through to too under until up very was we were what when where
		which while who whom why will with would you your yours yourself yourselves i'm it's don't
		vs ft feat official video`)
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}()
