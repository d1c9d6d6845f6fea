// Package tui is a terminal viewer for stored vendor comparisons. It talks to
// a running vendormail server over the read API.
package tui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/aoi-dev/vendormail/internal/domain"
	"github.com/aoi-dev/vendormail/internal/sanitize"
	"github.com/aoi-dev/vendormail/internal/store"
)

type view int

const (
	viewLookup view = iota
	viewLoading
	viewComparison
	viewError
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

type App struct {
	width    int
	height   int
	view     view
	state    *state
	client   *Client
	quitting bool
}

func NewApp(serverURL string) *App {
	return &App{
		view:   viewLookup,
		state:  newState(),
		client: NewClient(serverURL),
	}
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(tea.WindowSize(), textinput.Blink)
}

type comparisonMsg struct{ agg *domain.VendorComparison }
type fetchErrorMsg struct{ error }
type tickMsg struct{}

func tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

func (a *App) fetchComparison(userKey string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		agg, err := a.client.FetchComparison(ctx, userKey)
		if err != nil {
			return fetchErrorMsg{err}
		}
		return comparisonMsg{agg}
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		cmd := a.handleKey(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height

	case comparisonMsg:
		a.state.comparison = msg.agg
		a.state.selectedVendor = 0
		a.view = viewComparison
		return a, nil

	case fetchErrorMsg:
		a.state.fetchError = msg.error
		a.view = viewError
		return a, nil

	case tickMsg:
		if a.view == viewLoading {
			a.state.frame = (a.state.frame + 1) % len(spinnerFrames)
			return a, tick()
		}
		return a, nil
	}

	if a.view == viewLookup {
		var cmd tea.Cmd
		a.state.input, cmd = a.state.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	return a, tea.Batch(cmds...)
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, keys.Quit):
		a.quitting = true
		return tea.Quit

	case key.Matches(msg, keys.Back):
		switch a.view {
		case viewLookup:
			a.quitting = true
			return tea.Quit
		case viewComparison, viewError:
			a.view = viewLookup
			a.state.input.Focus()
			return textinput.Blink
		}
		return nil

	case key.Matches(msg, keys.Enter):
		if a.view == viewLookup {
			return a.handleLookup()
		}
		if a.view == viewError {
			// Retry the last lookup
			if a.state.userKey != "" {
				a.view = viewLoading
				return tea.Batch(a.fetchComparison(a.state.userKey), tick())
			}
		}
		return nil

	case key.Matches(msg, keys.Up):
		if a.view == viewComparison && a.state.selectedVendor > 0 {
			a.state.selectedVendor--
		}
		return nil

	case key.Matches(msg, keys.Down):
		if a.view == viewComparison && a.state.comparison != nil &&
			a.state.selectedVendor < len(a.state.comparison.Vendors)-1 {
			a.state.selectedVendor++
		}
		return nil
	}

	return nil
}

func (a *App) handleLookup() tea.Cmd {
	userKey := sanitize.Clean(a.state.input.Value())
	if userKey == "" {
		return nil
	}

	a.state.userKey = userKey
	a.state.fetchError = nil
	a.view = viewLoading
	return tea.Batch(a.fetchComparison(userKey), tick())
}

func (a *App) View() string {
	if a.quitting {
		return ""
	}

	switch a.view {
	case viewLookup:
		return a.renderLookup()
	case viewLoading:
		return a.renderLoading()
	case viewComparison:
		return a.renderComparison()
	case viewError:
		return a.renderError()
	default:
		return a.renderLookup()
	}
}

func (a *App) centerVertically(content string) string {
	lines := strings.Count(content, "\n") + 1
	pad := (a.height - lines) / 2
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat("\n", pad) + content
}

// notFound reports whether the current fetch error means "no aggregate yet"
// rather than a transport or server failure.
func (a *App) notFound() bool {
	return errors.Is(a.state.fetchError, store.ErrNotFound)
}
