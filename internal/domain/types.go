package domain

import "strings"

// Query is a trimmed, non-empty search string.
type Query string

// NewQuery trims raw input and rejects empty queries.
func NewQuery(raw string) (Query, error) {
	q := strings.TrimSpace(raw)
	if q == "" {
		return "", &ValidationError{Field: "query"}
	}
	return Query(q), nil
}

func (q Query) String() string { return string(q) }

// SearchResult is an opaque text snippet returned by the backend.
type SearchResult string

// ResultSet is the server-ordered answer to one search.
type ResultSet []SearchResult

// Document is a (title, content) pair submitted for ingestion.
type Document struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// NewDocument validates form input. The title is trimmed; content is kept
// verbatim since blank lines separate chunks on the backend.
func NewDocument(title, content string) (Document, error) {
	t := strings.TrimSpace(title)
	if t == "" {
		return Document{}, &ValidationError{Field: "title"}
	}
	if strings.TrimSpace(content) == "" {
		return Document{}, &ValidationError{Field: "content"}
	}
	return Document{Title: t, Content: content}, nil
}

// Ack is the backend's acknowledgement of an ingest.
type Ack struct {
	Message string
}
