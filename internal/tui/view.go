package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"dotflip/internal/cycle"
	"dotflip/internal/model"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	fileHeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("63"))

	selectedItemStyle = lipgloss.NewStyle().
				PaddingLeft(2).
				Foreground(lipgloss.Color("205")) // Pinkish

	unselectedItemStyle = lipgloss.NewStyle().
				PaddingLeft(4).
				Foreground(lipgloss.Color("240")) // Grey

	toggleableStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("84")) // Green

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("238"))

	detailStyle = lipgloss.NewStyle().
			Padding(1, 2).
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("63"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("208")) // Orange

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("84"))

	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)

// View renders the UI.
func (m AppModel) View() string {
	if m.Err != nil {
		return errStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.Err))
	}
	if m.Loading {
		return dimStyle.Render("Scanning dotfiles...")
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("dotflip — toggleable dotfile values"))
	b.WriteString("\n\n")

	if m.ConfirmPath != "" {
		b.WriteString(m.renderConfirm())
		return b.String()
	}

	if len(m.FilteredIndices) == 0 {
		if m.SearchActive {
			b.WriteString(dimStyle.Render("No keys match the filter.\n"))
		} else {
			b.WriteString(dimStyle.Render("No dotfile entries found under this directory.\n"))
		}
	} else {
		b.WriteString(m.renderList())
	}

	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m AppModel) renderList() string {
	var b strings.Builder
	lastFile := ""

	visible := m.visibleWindow()
	for _, pos := range visible {
		row := m.Rows[m.FilteredIndices[pos]]

		if row.File.DisplayPath != lastFile {
			lastFile = row.File.DisplayPath
			b.WriteString(fileHeaderStyle.Render(lastFile))
			b.WriteString("\n")
		}

		line := m.renderRow(row)
		if pos == m.SelectedIdx {
			b.WriteString(selectedItemStyle.Render("> " + line))
		} else {
			b.WriteString(unselectedItemStyle.Render(line))
		}
		b.WriteString("\n")
	}

	if sel, ok := m.selectedRow(); ok {
		b.WriteString("\n")
		b.WriteString(m.renderDetails(sel))
	}
	return b.String()
}

func (m AppModel) renderRow(row Row) string {
	e := row.Entry
	icon := model.IconPlain
	value := e.Value
	if e.Toggleable {
		icon = model.IconToggleable
		value = toggleableStyle.Render(value)
	}
	return fmt.Sprintf("%s %s=%s %s", icon, e.Key, value, dimStyle.Render(fmt.Sprintf("(line %d)", e.LineNumber)))
}

func (m AppModel) renderDetails(row Row) string {
	e := row.Entry
	var lines []string
	lines = append(lines, fmt.Sprintf("%s:%d", row.File.DisplayPath, e.LineNumber))
	lines = append(lines, fmt.Sprintf("%s = %s", e.Key, e.Value))
	if e.Toggleable {
		next, _ := cycle.Next(e.Value, e.Cycle)
		lines = append(lines, fmt.Sprintf("cycle: %s", strings.Join(e.Cycle, " → ")))
		lines = append(lines, fmt.Sprintf("enter toggles to %s", toggleableStyle.Render(next)))
	} else {
		lines = append(lines, dimStyle.Render("not toggleable (no matching cycle)"))
	}
	return detailStyle.Render(strings.Join(lines, "\n"))
}

func (m AppModel) renderConfirm() string {
	msg := fmt.Sprintf(
		"%s %s is not listed in .gitignore.\n\nToggling may commit a local-only setting to version control.\n\nEdit anyway? (y/n)",
		model.IconWarning, m.ConfirmPath)
	return warnStyle.Render(msg)
}

func (m AppModel) renderStatus() string {
	if m.InputMode {
		return "Filter: " + m.InputBuffer.View()
	}
	if m.StatusMsg == "" {
		return ""
	}
	if m.StatusOK {
		return okStyle.Render(model.IconOK + " " + m.StatusMsg)
	}
	return errStyle.Render(model.IconFailed + " " + m.StatusMsg)
}

func (m AppModel) renderFooter() string {
	keys := "↑/↓ move · enter toggle · / filter · r rescan · q quit"
	if m.SearchActive {
		keys = "esc clear filter · " + keys
	}
	return dimStyle.Render(keys)
}

// visibleWindow clamps the list to the terminal height, keeping the
// selection in view. Headers make exact math fiddly; a row budget of
// height minus chrome is close enough.
func (m AppModel) visibleWindow() []int {
	budget := m.WindowSize.Height - 10
	if budget < 5 {
		budget = 5
	}
	total := len(m.FilteredIndices)
	if total <= budget {
		all := make([]int, total)
		for i := range all {
			all[i] = i
		}
		return all
	}

	start := m.SelectedIdx - budget/2
	if start < 0 {
		start = 0
	}
	if start+budget > total {
		start = total - budget
	}
	window := make([]int, 0, budget)
	for i := start; i < start+budget; i++ {
		window = append(window, i)
	}
	return window
}
