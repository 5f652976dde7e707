package tui

import (
	"strings"

	"dotflip/internal/index"
	"dotflip/internal/model"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// MsgIndexReady indicates the initial scan (or a full refresh) finished.
type MsgIndexReady struct{}

// MsgIndexChanged indicates the index was updated behind our back
// (watcher event or a toggle's refresh).
type MsgIndexChanged index.Event

// MsgToggled carries the outcome of a toggle request.
type MsgToggled model.ToggleOutcome

// MsgError indicates an error occurred.
type MsgError error

// Update handles events.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.WindowSize = msg
		m.DetailsViewport.Width = msg.Width / 2
		m.DetailsViewport.Height = msg.Height - 4 // minus footer/header
		return m, nil

	case MsgIndexReady:
		m.Loading = false
		m.reloadRows()
		return m, nil

	case MsgIndexChanged:
		m.reloadRows()
		// Keep listening for the next notification.
		return m, waitForChange(m.events)

	case MsgToggled:
		out := model.ToggleOutcome(msg)
		m.StatusOK = out.Success
		m.StatusMsg = out.Message
		return m, nil

	case MsgError:
		m.Err = msg
		m.Loading = false
		return m, nil

	case tea.KeyMsg:
		// Confirm overlay swallows everything except y/n.
		if m.ConfirmPath != "" {
			switch msg.String() {
			case "y", "Y", "enter":
				path, line := m.ConfirmPath, m.ConfirmLine
				m.ConfirmPath = ""
				m.Engine.Acknowledge(path)
				return m, toggleCmd(m, path, line)
			case "n", "N", "esc", "q":
				m.ConfirmPath = ""
				m.StatusOK = false
				m.StatusMsg = "toggle cancelled"
				return m, nil
			}
			return m, nil
		}

		if m.InputMode {
			switch msg.Type {
			case tea.KeyEnter:
				m.InputMode = false
				m.performSearch()
				return m, nil
			case tea.KeyEsc:
				m.InputMode = false
				m.InputBuffer.Blur()
				m.SearchActive = false
				m.InputBuffer.SetValue("")
				m.performSearch()
				return m, nil
			}
			m.InputBuffer, cmd = m.InputBuffer.Update(msg)
			return m, cmd
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "esc":
			if m.SearchActive {
				m.InputMode = false
				m.InputBuffer.Blur()
				m.SearchActive = false
				m.InputBuffer.SetValue("")
				m.performSearch()
				return m, nil
			}
		case "up", "k":
			if m.SelectedIdx > 0 {
				m.SelectedIdx--
			}
		case "down", "j":
			if m.SelectedIdx < len(m.FilteredIndices)-1 {
				m.SelectedIdx++
			}
		case "enter", " ":
			return m.requestToggle()
		case "r":
			m.Loading = true
			return m, refreshAllCmd(m.Index)
		case "R":
			if m.Reconfigure != nil {
				m.Loading = true
				return m, reconfigureCmd(m.Reconfigure)
			}
		case "/":
			m.InputMode = true
			m.InputBuffer.Focus()
			m.InputBuffer.SetValue("")
			return m, textinput.Blink
		}
	}

	return m, cmd
}

// requestToggle starts the toggle for the selected row, detouring through
// the confirm overlay when the engine would stop to ask.
func (m AppModel) requestToggle() (tea.Model, tea.Cmd) {
	row, ok := m.selectedRow()
	if !ok {
		return m, nil
	}
	if !row.Entry.Toggleable {
		m.StatusOK = false
		m.StatusMsg = row.Entry.Key + " matches no configured cycle"
		return m, nil
	}
	if m.Engine.NeedsAck(row.File.Path) {
		m.ConfirmPath = row.File.Path
		m.ConfirmLine = row.Entry.LineNumber
		return m, nil
	}
	return m, toggleCmd(m, row.File.Path, row.Entry.LineNumber)
}

func (m *AppModel) selectedRow() (Row, bool) {
	if len(m.FilteredIndices) == 0 || m.SelectedIdx >= len(m.FilteredIndices) {
		return Row{}, false
	}
	return m.Rows[m.FilteredIndices[m.SelectedIdx]], true
}

// reloadRows rebuilds the flat row list from current index state,
// preserving the selection position where possible.
func (m *AppModel) reloadRows() {
	m.Rows = nil
	for _, pf := range m.Index.All() {
		for _, e := range pf.Entries {
			m.Rows = append(m.Rows, Row{File: pf, Entry: e})
		}
	}
	m.performSearch()
}

func (m *AppModel) performSearch() {
	term := strings.ToLower(m.InputBuffer.Value())
	if term == "" {
		m.SearchActive = false
		m.FilteredIndices = make([]int, len(m.Rows))
		for i := range m.Rows {
			m.FilteredIndices[i] = i
		}
	} else {
		m.SearchActive = true
		var result []int
		for i, row := range m.Rows {
			if strings.Contains(strings.ToLower(row.Entry.Key), term) {
				result = append(result, i)
			}
		}
		m.FilteredIndices = result
	}

	// Bounds check
	if m.SelectedIdx >= len(m.FilteredIndices) {
		if len(m.FilteredIndices) > 0 {
			m.SelectedIdx = len(m.FilteredIndices) - 1
		} else {
			m.SelectedIdx = 0
		}
	}
}

// refreshAllCmd runs the full scan in the background.
func refreshAllCmd(ix *index.Index) tea.Cmd {
	return func() tea.Msg {
		if err := ix.RefreshAll(); err != nil {
			return MsgError(err)
		}
		return MsgIndexReady{}
	}
}

// reconfigureCmd re-loads configuration and rebuilds derived state.
func reconfigureCmd(reconfigure func() error) tea.Cmd {
	return func() tea.Msg {
		if err := reconfigure(); err != nil {
			return MsgError(err)
		}
		return MsgIndexReady{}
	}
}

// toggleCmd runs the toggle in the background. The TUI is already
// "viewing" the entry, so no extra reveal side effect is needed.
func toggleCmd(m AppModel, path string, line int) tea.Cmd {
	return func() tea.Msg {
		return MsgToggled(m.Engine.Toggle(path, line, nil))
	}
}

// waitForChange blocks on the index subscription and resolves to a
// MsgIndexChanged. Re-issued from Update after every delivery.
func waitForChange(events <-chan index.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return MsgIndexChanged(ev)
	}
}
