package tui

import (
	"dotflip/internal/index"
	"dotflip/internal/model"
	"dotflip/internal/toggle"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// Row is one selectable line in the list: an entry plus the file it came
// from. Rows are rebuilt from the index on every change notification so
// the list can never drift from index state.
type Row struct {
	File  *model.ParsedFile
	Entry model.Entry
}

// AppModel holds the TUI state.
type AppModel struct {
	// Collaborators
	Index  *index.Index
	Engine *toggle.Engine

	// Reconfigure re-loads the tool configuration and rebuilds all
	// derived state (cycle table, index). Wired by main; may be nil.
	Reconfigure func() error

	// Data
	Rows    []Row
	Loading bool
	Err     error

	// UI State
	SelectedIdx int
	WindowSize  tea.WindowSizeMsg
	StatusMsg   string
	StatusOK    bool

	// Search State
	InputMode       bool
	InputBuffer     textinput.Model
	FilteredIndices []int // indices into Rows currently shown
	SearchActive    bool

	// Confirm State. A non-empty path means the overlay is up, asking
	// whether a file that is not git-ignored may really be edited.
	ConfirmPath string
	ConfirmLine int

	// Components
	DetailsViewport viewport.Model

	events <-chan index.Event
}

// InitialModel returns the initial state wired to a live index.
func InitialModel(ix *index.Index, engine *toggle.Engine) AppModel {
	ti := textinput.New()
	ti.Placeholder = "Key name..."
	ti.CharLimit = 50
	ti.Width = 20

	return AppModel{
		Index:       ix,
		Engine:      engine,
		Loading:     true,
		InputBuffer: ti,
		events:      ix.Subscribe(),
	}
}

// Init kicks off the initial scan and starts listening for index changes.
func (m AppModel) Init() tea.Cmd {
	return tea.Batch(refreshAllCmd(m.Index), waitForChange(m.events))
}
