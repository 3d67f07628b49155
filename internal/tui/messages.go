package tui

import (
	"semret/internal/domain"
	"semret/internal/interaction"
)

// searchDoneMsg carries the outcome of one Search call back to the view that issued it.
type searchDoneMsg struct {
	ticket  interaction.Ticket
	results domain.ResultSet
	err     error
}

// ingestDoneMsg carries the outcome of one Ingest call.
type ingestDoneMsg struct {
	ticket interaction.Ticket
	ack    domain.Ack
	err    error
}

// ingestDismissMsg fires when the ingest confirmation has been shown long enough.
type ingestDismissMsg struct {
	ticket interaction.Ticket
}

// searchDismissMsg returns a search Success to Idle once its window has passed.
type searchDismissMsg struct {
	ticket interaction.Ticket
}
