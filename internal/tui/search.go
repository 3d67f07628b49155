package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"

	"semret/internal/domain"
	"semret/internal/interaction"
)

const (
	searchFailedText = "Failed to fetch results. Is the backend running?"
	noResultsText    = "No results found."
	noResultsHint    = "Try exploring different concepts or ingest more data."
	searchIdleText   = "Ask anything, then press Enter."
)

// Searcher is the TUI-facing search port of the API client.
type Searcher interface {
	Search(ctx context.Context, query domain.Query) (domain.ResultSet, error)
}

type searchKeyMap struct {
	Submit key.Binding
	Up     key.Binding
	Down   key.Binding
	PgUp   key.Binding
	PgDown key.Binding
}

func newSearchKeyMap() searchKeyMap {
	return searchKeyMap{
		Submit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "search")),
		Up:     key.NewBinding(key.WithKeys("up"), key.WithHelp("↑/↓", "select result")),
		Down:   key.NewBinding(key.WithKeys("down")),
		PgUp:   key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup/pgdn", "scroll")),
		PgDown: key.NewBinding(key.WithKeys("pgdown")),
	}
}

func (k searchKeyMap) bindings() []key.Binding {
	return []key.Binding{k.Submit, k.Up, k.PgUp}
}

// SearchView composes a query, runs it and lists the results.
type SearchView struct {
	ctx      context.Context
	searcher Searcher
	logger   *slog.Logger
	keys     searchKeyMap

	dismissAfter time.Duration

	input    textinput.Model
	spinner  spinner.Model
	viewport viewport.Model
	machine  interaction.Machine[domain.ResultSet]

	query   domain.Query // last submitted query, used for highlighting
	cursor  int
	offsets []int // first viewport line of each result card
	width   int
}

// NewSearchView creates the search view. Requests run under ctx. Results
// return to Idle after dismissAfter; zero keeps them until the next search.
func NewSearchView(ctx context.Context, searcher Searcher, dismissAfter time.Duration, logger *slog.Logger) SearchView {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask anything..."
	ti.CharLimit = 0
	ti.Focus()

	sp := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(statusStyle))

	if logger == nil {
		logger = discardLogger()
	}
	v := SearchView{
		ctx:          ctx,
		searcher:     searcher,
		logger:       logger,
		keys:         newSearchKeyMap(),
		dismissAfter: dismissAfter,
		input:        ti,
		spinner:      sp,
		viewport:     viewport.New(0, 0),
	}
	v.refresh()
	return v
}

// State is the current interaction state.
func (v SearchView) State() interaction.State[domain.ResultSet] { return v.machine.State() }

// Query returns the text currently in the input.
func (v SearchView) Query() string { return v.input.Value() }

// Update handles messages addressed to the search view.
func (v SearchView) Update(msg tea.Msg) (SearchView, tea.Cmd) {
	switch msg := msg.(type) {
	case searchDoneMsg:
		return v.complete(msg)
	case searchDismissMsg:
		if v.machine.Dismiss(msg.ticket) {
			v.logger.Debug("search results dismissed")
			v.cursor = 0
			v.refresh()
		}
		return v, nil
	case spinner.TickMsg:
		if !v.machine.Busy() {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd
	case tea.WindowSizeMsg:
		v.setSize(msg.Width, msg.Height)
		return v, nil
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, v.keys.Submit):
			return v.submit()
		case key.Matches(msg, v.keys.Down):
			v.moveCursor(1)
			return v, nil
		case key.Matches(msg, v.keys.Up):
			v.moveCursor(-1)
			return v, nil
		case key.Matches(msg, v.keys.PgUp, v.keys.PgDown):
			var cmd tea.Cmd
			v.viewport, cmd = v.viewport.Update(msg)
			return v, cmd
		}
	}
	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// submit validates the input and, when allowed, moves to Loading before the
// request is issued.
func (v SearchView) submit() (SearchView, tea.Cmd) {
	q, err := domain.NewQuery(v.input.Value())
	if err != nil {
		return v, nil
	}
	ticket, ok := v.machine.Submit()
	if !ok {
		return v, nil
	}
	v.query = q
	v.cursor = 0
	v.keys.Submit.SetEnabled(false)
	v.refresh()
	v.logger.Info("search submitted", "query", q.String())

	searcher, ctx := v.searcher, v.ctx
	return v, tea.Batch(v.spinner.Tick, func() tea.Msg {
		results, err := searcher.Search(ctx, q)
		return searchDoneMsg{ticket: ticket, results: results, err: err}
	})
}

func (v SearchView) complete(msg searchDoneMsg) (SearchView, tea.Cmd) {
	var applied bool
	if msg.err != nil {
		applied = v.machine.Fail(msg.ticket, searchFailedText)
		if applied {
			v.logger.Warn("search failed", "kind", domain.Kind(msg.err), "error", msg.err)
		}
	} else {
		results := msg.results
		if results == nil {
			results = domain.ResultSet{}
		}
		applied = v.machine.Resolve(msg.ticket, results)
		if applied {
			v.logger.Info("search completed", "query", v.query.String(), "results", len(results))
		}
	}
	if !applied {
		v.logger.Debug("dropped stale search completion", "ticket", msg.ticket)
		return v, nil
	}
	v.keys.Submit.SetEnabled(true)
	v.refresh()
	if msg.err != nil || v.dismissAfter <= 0 {
		return v, nil
	}
	ticket := msg.ticket
	return v, tea.Tick(v.dismissAfter, func(time.Time) tea.Msg {
		return searchDismissMsg{ticket: ticket}
	})
}

func (v *SearchView) moveCursor(delta int) {
	st := v.machine.State()
	if st.Phase != interaction.Success || len(st.Payload) == 0 {
		return
	}
	n := len(st.Payload)
	v.cursor = (v.cursor + delta + n) % n
	v.refresh()
	if v.cursor < len(v.offsets) {
		v.viewport.SetYOffset(v.offsets[v.cursor])
	}
}

func (v *SearchView) setSize(width, height int) {
	v.width = width
	v.input.Width = max(10, width-lipgloss.Width(v.input.Prompt)-6)
	_, qh := queryBoxStyle.GetFrameSize()
	rw, rh := resultBoxStyle.GetFrameSize()
	// input box + status line + spacer
	reserved := 1 + qh + 2
	v.viewport.Width = max(20, width-rw)
	v.viewport.Height = max(3, height-reserved-rh)
	v.refresh()
}

// Lines renders one entry per result, in server order.
func (v SearchView) Lines() []string {
	st := v.machine.State()
	if st.Phase != interaction.Success {
		return nil
	}
	cardWidth := max(10, v.viewport.Width-2)
	return lo.Map(st.Payload, func(r domain.SearchResult, i int) string {
		body := highlightMatches(sanitize(string(r)), v.query.String())
		header := dimStyle.Render(fmt.Sprintf("#%d", i+1))
		style := resultCardStyle
		if i == v.cursor {
			style = focusedCardStyle
		}
		return style.Width(cardWidth).Render(header + "\n" + body)
	})
}

func (v *SearchView) refresh() {
	lines := v.Lines()
	v.offsets = make([]int, 0, len(lines))
	row := 0
	for _, l := range lines {
		v.offsets = append(v.offsets, row)
		row += lipgloss.Height(l) + 1
	}
	v.viewport.SetContent(strings.Join(lines, "\n\n"))
	if v.machine.Phase() != interaction.Success {
		v.viewport.GotoTop()
	}
}

func (v SearchView) status() string {
	st := v.machine.State()
	switch st.Phase {
	case interaction.Loading:
		return v.spinner.View() + " Searching..."
	case interaction.Error:
		return errorStyle.Render(st.Message)
	case interaction.Success:
		if len(st.Payload) == 0 {
			return dimStyle.Render(noResultsText + " " + noResultsHint)
		}
		return statusStyle.Render(fmt.Sprintf("Found %d Results", len(st.Payload)))
	default:
		return dimStyle.Render(searchIdleText)
	}
}

// View renders the query box, the status line and, after a successful
// search with hits, the results pane.
func (v SearchView) View() string {
	parts := []string{queryBoxStyle.Render(v.input.View()), v.status()}
	st := v.machine.State()
	if st.Phase == interaction.Success && len(st.Payload) > 0 {
		parts = append(parts, resultBoxStyle.Render(v.viewport.View()))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// Close invalidates pending completions; called on teardown.
func (v *SearchView) Close() { v.machine.Close() }

// Focus gives keyboard focus to the query input.
func (v *SearchView) Focus() tea.Cmd { return v.input.Focus() }

// Blur removes keyboard focus from the query input.
func (v *SearchView) Blur() { v.input.Blur() }
