package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"semret/internal/domain"
	"semret/internal/interaction"
)

func newShell(t *testing.T, backend *fakeBackend) Model {
	t.Helper()
	m := New(context.Background(), backend, Options{BaseURL: "http://localhost:8080", SuccessDismiss: 3 * time.Second})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 50})
	return next.(Model)
}

func update(m Model, msg tea.Msg) (Model, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func TestModel_ViewBeforeResize(t *testing.T) {
	m := New(context.Background(), &fakeBackend{}, Options{})
	assert.Equal(t, "Loading...", m.View())
}

func TestModel_KeysGoToActiveViewOnly(t *testing.T) {
	m := newShell(t, &fakeBackend{})
	m, _ = update(m, runes("vectors"))
	assert.Equal(t, "vectors", m.Search().Query())

	m, _ = update(m, ctrlT)
	assert.Equal(t, IngestTab, m.Active())
	m, _ = update(m, runes("Title"))
	assert.Equal(t, "Title", m.Ingest().Title())
	assert.Equal(t, "vectors", m.Search().Query())

	m, _ = update(m, ctrlT)
	assert.Equal(t, SearchTab, m.Active())
}

func TestModel_FunctionKeysSelectView(t *testing.T) {
	m := newShell(t, &fakeBackend{})
	m, _ = update(m, tea.KeyMsg{Type: tea.KeyF2})
	assert.Equal(t, IngestTab, m.Active())
	assert.Contains(t, m.View(), "DOCUMENT TITLE")
	m, _ = update(m, tea.KeyMsg{Type: tea.KeyF1})
	assert.Equal(t, SearchTab, m.Active())
}

func TestModel_CompletionReachesInactiveView(t *testing.T) {
	backend := &fakeBackend{results: domain.ResultSet{"snippet"}}
	m := newShell(t, backend)
	m, _ = update(m, runes("graph"))
	m, cmd := update(m, enterKey)
	require.Equal(t, interaction.Loading, m.Search().State().Phase)

	m, _ = update(m, ctrlT)
	m, _ = update(m, awaitMsg[searchDoneMsg](t, cmd))

	assert.Equal(t, interaction.Success, m.Search().State().Phase)
	assert.Equal(t, interaction.Idle, m.Ingest().State().Phase, "views never share state")
}

func TestModel_QuitTearsDownViews(t *testing.T) {
	backend := &fakeBackend{}
	m := newShell(t, backend)
	m, _ = update(m, ctrlT)
	m.ingest.title.SetValue("t")
	m.ingest.content.SetValue("c")
	m, cmd := update(m, ctrlS)
	m, cmd = update(m, awaitMsg[ingestDoneMsg](t, cmd))
	require.Equal(t, interaction.Success, m.Ingest().State().Phase)

	m, quit := update(m, ctrlC)
	require.NotNil(t, quit)
	assert.IsType(t, tea.QuitMsg{}, quit())

	m, _ = update(m, ingestDismissMsg{ticket: 1})
	assert.Equal(t, interaction.Success, m.Ingest().State().Phase)
}

func TestModel_HeaderAndHelp(t *testing.T) {
	m := newShell(t, &fakeBackend{})
	view := m.View()
	assert.Contains(t, view, "Semantic Retrieval")
	assert.Contains(t, view, "http://localhost:8080")
	assert.Contains(t, view, "switch view")
	assert.Contains(t, view, "search")
}
