package tui

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Backend is the TUI-facing subset of the API client.
type Backend interface {
	Searcher
	Ingester
}

// Tab identifies one of the two views.
type Tab int

const (
	SearchTab Tab = iota
	IngestTab
)

func (t Tab) String() string {
	if t == IngestTab {
		return "Ingest"
	}
	return "Search"
}

// Options configures the shell.
type Options struct {
	BaseURL        string        // shown in the header only
	SuccessDismiss time.Duration // how long an ingest confirmation stays
	ResultsDismiss time.Duration // how long search results stay; zero keeps them
	Logger         *slog.Logger
}

type shellKeyMap struct {
	Toggle     key.Binding
	SearchView key.Binding
	IngestView key.Binding
	Quit       key.Binding
}

func newShellKeyMap() shellKeyMap {
	return shellKeyMap{
		Toggle:     key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "switch view")),
		SearchView: key.NewBinding(key.WithKeys("f1"), key.WithHelp("f1/f2", "search/ingest")),
		IngestView: key.NewBinding(key.WithKeys("f2")),
		Quit:       key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

// Model is the Bubble Tea model for the TUI application: the navigation shell
// around the search and ingest views.
type Model struct {
	search SearchView
	ingest IngestView
	active Tab

	keys    shellKeyMap
	help    help.Model
	baseURL string
	logger  *slog.Logger
	ready   bool
	width   int
}

// New creates a new TUI model instance. Requests issued by either view run under ctx.
func New(ctx context.Context, backend Backend, opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = discardLogger()
	}
	return Model{
		search:  NewSearchView(ctx, backend, opts.ResultsDismiss, logger.With("view", "search")),
		ingest:  NewIngestView(ctx, backend, opts.SuccessDismiss, logger.With("view", "ingest")),
		active:  SearchTab,
		keys:    newShellKeyMap(),
		help:    help.New(),
		baseURL: opts.BaseURL,
		logger:  logger,
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Active returns the view receiving key input.
func (m Model) Active() Tab { return m.active }

// Search exposes the search view.
func (m Model) Search() SearchView { return m.search }

// Ingest exposes the ingest view.
func (m Model) Ingest() IngestView { return m.ingest }

// Update routes key input to the active view and everything else to both,
// so a request finishes in the view that issued it whichever view is shown.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		m.help.Width = msg.Width
		body := tea.WindowSizeMsg{Width: msg.Width, Height: max(6, msg.Height-m.chromeHeight())}
		var c1, c2 tea.Cmd
		m.search, c1 = m.search.Update(body)
		m.ingest, c2 = m.ingest.Update(body)
		return m, tea.Batch(c1, c2)
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.search.Close()
			m.ingest.Close()
			return m, tea.Quit
		case key.Matches(msg, m.keys.Toggle):
			return m, m.switchTo(1 - m.active)
		case key.Matches(msg, m.keys.SearchView):
			return m, m.switchTo(SearchTab)
		case key.Matches(msg, m.keys.IngestView):
			return m, m.switchTo(IngestTab)
		}
		var cmd tea.Cmd
		if m.active == SearchTab {
			m.search, cmd = m.search.Update(msg)
		} else {
			m.ingest, cmd = m.ingest.Update(msg)
		}
		return m, cmd
	}
	var c1, c2 tea.Cmd
	m.search, c1 = m.search.Update(msg)
	m.ingest, c2 = m.ingest.Update(msg)
	return m, tea.Batch(c1, c2)
}

func (m *Model) switchTo(t Tab) tea.Cmd {
	if t == m.active {
		return nil
	}
	m.active = t
	m.logger.Debug("view switched", "view", t.String())
	if t == SearchTab {
		m.ingest.Blur()
		return m.search.Focus()
	}
	m.search.Blur()
	return m.ingest.Focus()
}

// header + spacer + footer
func (m Model) chromeHeight() int { return 1 + 1 + 1 }

// View renders the header tabs, the active view and the key help line.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	tabs := make([]string, 0, 2)
	for _, t := range []Tab{SearchTab, IngestTab} {
		style := tabStyle
		if t == m.active {
			style = activeTabStyle
		}
		tabs = append(tabs, style.Render(t.String()))
	}
	header := lipgloss.JoinHorizontal(lipgloss.Top,
		titleStyle.Render("Semantic Retrieval"), "  ",
		lipgloss.JoinHorizontal(lipgloss.Top, tabs...), "  ",
		dimStyle.Render(m.baseURL),
	)

	var body string
	bindings := []key.Binding{m.keys.Toggle, m.keys.SearchView, m.keys.Quit}
	if m.active == SearchTab {
		body = m.search.View()
		bindings = append(m.search.keys.bindings(), bindings...)
	} else {
		body = m.ingest.View()
		bindings = append(m.ingest.keys.bindings(), bindings...)
	}
	footer := m.help.ShortHelpView(bindings)
	return header + "\n\n" + body + "\n" + footer
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
