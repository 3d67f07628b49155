package tui

import (
	"context"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"semret/internal/domain"
	"semret/internal/interaction"
)

const (
	ingestSuccessText = "Document successfully indexed into Vector Store & Knowledge Graph!"
	ingestFailedText  = "Failed to ingest document. Ensure backend is running."
	ingestIdleText    = "Feed the retrieval system with new knowledge."
)

// Ingester is the TUI-facing ingest port of the API client.
type Ingester interface {
	Ingest(ctx context.Context, doc domain.Document) (domain.Ack, error)
}

type ingestField int

const (
	titleField ingestField = iota
	contentField
)

type ingestKeyMap struct {
	Submit    key.Binding
	NextField key.Binding
	PrevField key.Binding
	TitleDone key.Binding
}

func newIngestKeyMap() ingestKeyMap {
	return ingestKeyMap{
		Submit:    key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "ingest")),
		NextField: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
		PrevField: key.NewBinding(key.WithKeys("shift+tab")),
		TitleDone: key.NewBinding(key.WithKeys("enter")),
	}
}

func (k ingestKeyMap) bindings() []key.Binding {
	return []key.Binding{k.Submit, k.NextField}
}

// IngestView composes a (title, content) pair and submits it for ingestion.
type IngestView struct {
	ctx          context.Context
	ingester     Ingester
	logger       *slog.Logger
	keys         ingestKeyMap
	dismissAfter time.Duration

	title   textinput.Model
	content textarea.Model
	spinner spinner.Model
	machine interaction.Machine[domain.Ack]
	focus   ingestField
}

// NewIngestView creates the ingest view. A confirmation is cleared after
// dismissAfter; zero keeps it until the next submission.
func NewIngestView(ctx context.Context, ingester Ingester, dismissAfter time.Duration, logger *slog.Logger) IngestView {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = "e.g. The Future of AI Agents"
	ti.CharLimit = 0

	ta := textarea.New()
	ta.Placeholder = "Paste the full text content here..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.MaxHeight = 0

	if logger == nil {
		logger = discardLogger()
	}
	return IngestView{
		ctx:          ctx,
		ingester:     ingester,
		logger:       logger,
		keys:         newIngestKeyMap(),
		dismissAfter: dismissAfter,
		title:        ti,
		content:      ta,
		spinner:      spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(statusStyle)),
	}
}

// State is the current interaction state.
func (v IngestView) State() interaction.State[domain.Ack] { return v.machine.State() }

// Title returns the title field's current text.
func (v IngestView) Title() string { return v.title.Value() }

// Content returns the content field's current text.
func (v IngestView) Content() string { return v.content.Value() }

// Focus gives keyboard focus to the active field.
func (v *IngestView) Focus() tea.Cmd {
	return v.setFocus(v.focus)
}

// Blur removes keyboard focus from both fields.
func (v *IngestView) Blur() {
	v.title.Blur()
	v.content.Blur()
}

// Update handles messages addressed to the ingest view.
func (v IngestView) Update(msg tea.Msg) (IngestView, tea.Cmd) {
	switch msg := msg.(type) {
	case ingestDoneMsg:
		return v.complete(msg)
	case ingestDismissMsg:
		if v.machine.Dismiss(msg.ticket) {
			v.logger.Debug("ingest confirmation dismissed")
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
		case key.Matches(msg, v.keys.NextField), key.Matches(msg, v.keys.PrevField):
			return v, v.setFocus(1 - v.focus)
		case v.focus == titleField && key.Matches(msg, v.keys.TitleDone):
			return v, v.setFocus(contentField)
		}
		if v.machine.Busy() {
			// fields are locked until the request resolves
			return v, nil
		}
	}
	var cmds []tea.Cmd
	var cmd tea.Cmd
	v.title, cmd = v.title.Update(msg)
	cmds = append(cmds, cmd)
	v.content, cmd = v.content.Update(msg)
	cmds = append(cmds, cmd)
	return v, tea.Batch(cmds...)
}

func (v IngestView) submit() (IngestView, tea.Cmd) {
	doc, err := domain.NewDocument(v.title.Value(), v.content.Value())
	if err != nil {
		return v, nil
	}
	ticket, ok := v.machine.Submit()
	if !ok {
		return v, nil
	}
	v.keys.Submit.SetEnabled(false)
	v.logger.Info("ingest submitted", "title", doc.Title, "bytes", len(doc.Content))

	ingester, ctx := v.ingester, v.ctx
	return v, tea.Batch(v.spinner.Tick, func() tea.Msg {
		ack, err := ingester.Ingest(ctx, doc)
		return ingestDoneMsg{ticket: ticket, ack: ack, err: err}
	})
}

func (v IngestView) complete(msg ingestDoneMsg) (IngestView, tea.Cmd) {
	if msg.err != nil {
		if !v.machine.Fail(msg.ticket, ingestFailedText) {
			return v, nil
		}
		v.keys.Submit.SetEnabled(true)
		v.logger.Warn("ingest failed", "kind", domain.Kind(msg.err), "error", msg.err)
		return v, nil
	}
	if !v.machine.Resolve(msg.ticket, msg.ack) {
		return v, nil
	}
	v.keys.Submit.SetEnabled(true)
	v.logger.Info("ingest accepted", "ack", msg.ack.Message)
	v.title.Reset()
	v.content.Reset()
	var cmds []tea.Cmd
	if v.title.Focused() || v.content.Focused() {
		cmds = append(cmds, v.setFocus(titleField))
	} else {
		v.focus = titleField
	}
	if v.dismissAfter > 0 {
		ticket := msg.ticket
		cmds = append(cmds, tea.Tick(v.dismissAfter, func(time.Time) tea.Msg {
			return ingestDismissMsg{ticket: ticket}
		}))
	}
	return v, tea.Batch(cmds...)
}

func (v *IngestView) setFocus(f ingestField) tea.Cmd {
	v.focus = f
	if f == titleField {
		v.content.Blur()
		return v.title.Focus()
	}
	v.title.Blur()
	return v.content.Focus()
}

func (v *IngestView) setSize(width, height int) {
	fw, fh := fieldStyle.GetFrameSize()
	inner := max(10, width-fw)
	v.title.Width = inner
	v.content.SetWidth(inner)
	// label + title box + label + content frame + button + status
	reserved := 1 + (1 + fh) + 1 + fh + 2
	v.content.SetHeight(max(3, height-reserved))
}

func (v IngestView) status() string {
	st := v.machine.State()
	switch st.Phase {
	case interaction.Loading:
		return v.spinner.View() + " Ingesting..."
	case interaction.Success:
		return statusStyle.Render("✓ " + ingestSuccessText)
	case interaction.Error:
		return errorStyle.Render(st.Message)
	default:
		return dimStyle.Render(ingestIdleText)
	}
}

// View renders both fields, the submit affordance and the status line.
func (v IngestView) View() string {
	titleBox, contentBox := fieldStyle, fieldStyle
	if v.focus == titleField {
		titleBox = focusedFieldStyle
	} else {
		contentBox = focusedFieldStyle
	}
	button := dimStyle.Render("[ ctrl+s ] Ingest Knowledge")
	if v.machine.Busy() {
		button = dimStyle.Render("[ ingesting... ]")
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		labelStyle.Render("DOCUMENT TITLE"),
		titleBox.Render(v.title.View()),
		labelStyle.Render("CONTENT"),
		contentBox.Render(v.content.View()),
		button,
		v.status(),
	)
}

// Close stops the pending auto-dismiss and any late completion from
// touching the view; called on teardown.
func (v *IngestView) Close() { v.machine.Close() }
