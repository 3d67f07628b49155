package tui

import (
	"context"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"semret/internal/domain"
)

// fakeBackend records calls. When gate is set, calls block until it is closed.
type fakeBackend struct {
	mu          sync.Mutex
	searchCalls []domain.Query
	ingestCalls []domain.Document

	results   domain.ResultSet
	searchErr error
	ack       domain.Ack
	ingestErr error
	gate      chan struct{}
}

func (f *fakeBackend) Search(ctx context.Context, q domain.Query) (domain.ResultSet, error) {
	f.mu.Lock()
	f.searchCalls = append(f.searchCalls, q)
	gate := f.gate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return f.results, f.searchErr
}

func (f *fakeBackend) Ingest(ctx context.Context, doc domain.Document) (domain.Ack, error) {
	f.mu.Lock()
	f.ingestCalls = append(f.ingestCalls, doc)
	gate := f.gate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return f.ack, f.ingestErr
}

func (f *fakeBackend) searchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.searchCalls)
}

func (f *fakeBackend) ingestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.ingestCalls)
}

var (
	enterKey = tea.KeyMsg{Type: tea.KeyEnter}
	ctrlS    = tea.KeyMsg{Type: tea.KeyCtrlS}
	ctrlT    = tea.KeyMsg{Type: tea.KeyCtrlT}
	ctrlC    = tea.KeyMsg{Type: tea.KeyCtrlC}
	tabKey   = tea.KeyMsg{Type: tea.KeyTab}
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// awaitMsg runs cmd (expanding batches) and returns the first message of type T.
func awaitMsg[T any](t *testing.T, cmd tea.Cmd) T {
	t.Helper()
	ch := make(chan tea.Msg, 32)
	var run func(tea.Cmd)
	run = func(c tea.Cmd) {
		if c == nil {
			return
		}
		go func() {
			msg := c()
			if batch, ok := msg.(tea.BatchMsg); ok {
				for _, bc := range batch {
					run(bc)
				}
				return
			}
			ch <- msg
		}()
	}
	run(cmd)

	timeout := time.After(2 * time.Second)
	for {
		select {
		case msg := <-ch:
			if m, ok := msg.(T); ok {
				return m
			}
		case <-timeout:
			var zero T
			t.Fatalf("no %T produced within timeout", zero)
			return zero
		}
	}
}
