package tui

import (
	"testing"

	"github.com/acarl005/stripansi"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	assert.Equal(t, "bold text here", sanitize("\x1b[1mbold\x1b[0m   text \there"))
	assert.Equal(t, "line one\nline two", sanitize("line one\r\nline two"))
}

func TestSentenceSpans(t *testing.T) {
	text := "Vectors capture meaning. Graphs capture relations! Hybrid search uses both"
	var got []string
	for _, s := range sentenceSpans(text) {
		got = append(got, text[s.start:s.end])
	}
	assert.Equal(t, []string{"Vectors capture meaning. ", "Graphs capture relations! ", "Hybrid search uses both"}, got)
	assert.Empty(t, sentenceSpans("   "))
}

func TestDistinctHits(t *testing.T) {
	terms := queryTerms("Knowledge graph")
	assert.Equal(t, 2, distinctHits(terms, "A knowledge graph links a graph of knowledge."))
	assert.Equal(t, 0, distinctHits(terms, "Nothing relevant."))
}

func TestHighlightMatches_TextIsPreserved(t *testing.T) {
	text := "Vectors capture meaning. Graphs capture relations! Hybrid search uses both"
	assert.Equal(t, text, stripansi.Strip(highlightMatches(text, "graphs relations")))
	assert.Equal(t, text, highlightMatches(text, ""))
	assert.Equal(t, text, highlightMatches(text, "unrelated"))
	assert.Equal(t, "", highlightMatches("", "q"))
}

func TestHighlightMatches_OnlyTermsOfBestSentence(t *testing.T) {
	prev := lipgloss.ColorProfile()
	lipgloss.SetColorProfile(termenv.ANSI)
	defer lipgloss.SetColorProfile(prev)

	text := "Graphs are stored. Graphs capture relations."
	out := highlightMatches(text, "graphs relations")

	want := "Graphs are stored. " + highlightStyle.Render("Graphs") + " capture " + highlightStyle.Render("relations") + "."
	assert.Equal(t, want, out)
}
