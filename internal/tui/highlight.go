package tui

import (
	"regexp"
	"strings"

	"github.com/acarl005/stripansi"
)

var (
	wordRe        = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*|\p{N}+`)
	sentenceEndRe = regexp.MustCompile(`[.!?]+(?:\s+|$)`)
	spaceRunRe    = regexp.MustCompile(`[ \t]{2,}`)
)

// sanitize removes terminal escapes a backend snippet might carry and
// collapses runs of blanks.
func sanitize(text string) string {
	s := stripansi.Strip(text)
	s = strings.ReplaceAll(s, "\r", "")
	return spaceRunRe.ReplaceAllString(s, " ")
}

// span is a half-open byte range of a snippet.
type span struct{ start, end int }

// sentenceSpans cuts text after each run of terminal punctuation. Trailing
// text without punctuation is its own span.
func sentenceSpans(text string) []span {
	var spans []span
	start := 0
	for _, loc := range sentenceEndRe.FindAllStringIndex(text, -1) {
		spans = append(spans, span{start, loc[1]})
		start = loc[1]
	}
	if strings.TrimSpace(text[start:]) != "" {
		spans = append(spans, span{start, len(text)})
	}
	return spans
}

// queryTerms is the set of lowercased words in the query.
func queryTerms(query string) map[string]struct{} {
	words := wordRe.FindAllString(strings.ToLower(query), -1)
	terms := make(map[string]struct{}, len(words))
	for _, w := range words {
		terms[w] = struct{}{}
	}
	return terms
}

// distinctHits counts how many different query terms occur in s.
func distinctHits(terms map[string]struct{}, s string) int {
	hit := make(map[string]struct{})
	for _, w := range wordRe.FindAllString(strings.ToLower(s), -1) {
		if _, ok := terms[w]; ok {
			hit[w] = struct{}{}
		}
	}
	return len(hit)
}

// highlightMatches finds the sentence covering the most distinct query terms
// and renders those terms in the highlight style. The snippet text is
// otherwise returned unchanged; nothing is highlighted when no term matches.
func highlightMatches(text, query string) string {
	terms := queryTerms(query)
	if len(terms) == 0 {
		return text
	}
	var best span
	bestHits := 0
	for _, s := range sentenceSpans(text) {
		if n := distinctHits(terms, text[s.start:s.end]); n > bestHits {
			best, bestHits = s, n
		}
	}
	if bestHits == 0 {
		return text
	}

	var b strings.Builder
	last := best.start
	b.WriteString(text[:last])
	for _, loc := range wordRe.FindAllStringIndex(text[best.start:best.end], -1) {
		ws, we := best.start+loc[0], best.start+loc[1]
		if _, ok := terms[strings.ToLower(text[ws:we])]; !ok {
			continue
		}
		b.WriteString(text[last:ws])
		b.WriteString(highlightStyle.Render(text[ws:we]))
		last = we
	}
	b.WriteString(text[last:])
	return b.String()
}
