package tui

import (
	"github.com/charmbracelet/bubbles/textinput"

	"github.com/aoi-dev/vendormail/internal/domain"
)

type state struct {
	// Lookup input
	input textinput.Model

	// Last queried user key
	userKey string

	// Fetched aggregate
	comparison *domain.VendorComparison

	// Vendor list cursor
	selectedVendor int

	// Loading animation frame
	frame int

	// Fetch failure
	fetchError error
}

func newState() *state {
	input := textinput.New()
	input.Placeholder = "user@example.com"
	input.CharLimit = 200
	input.Width = 50
	input.Focus()

	return &state{
		input: input,
	}
}
