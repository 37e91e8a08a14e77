package tui

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pranshuparmar/hostreport/pkg/model"
)

var (
	baseStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("#585858")) // Dark Gray

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")). // White
			Background(lipgloss.Color("#7D56F4")). // Purple
			Padding(0, 1)

	tableHeaderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#5f5fd7")). // Purple/Blue
				Bold(true).
				Border(lipgloss.NormalBorder(), false, false, true, false).
				BorderForeground(lipgloss.Color("#585858")). // Dark Gray
				Padding(0, 1)

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5f5fd7")). // Purple/Blue
			Bold(true)

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#767676")). // Dimmed Gray
			Border(lipgloss.NormalBorder(), true, false, false, false).
			BorderForeground(lipgloss.Color("#585858")). // Dark Gray
			Padding(0, 1).
			Width(100)

	activeTabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffffff")). // White
			Background(lipgloss.Color("#22aa22")). // Green
			Padding(0, 1).
			Bold(true)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#ffffff")). // White
				Background(lipgloss.Color("#767676")). // Dimmed Gray
				Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ff5f5f")). // Soft red
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#af87ff")). // Lavender
			Bold(true)

	dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#767676"))

	severityStyles = map[model.Severity]lipgloss.Style{
		model.SeverityInfo: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffffff")).
			Background(lipgloss.Color("#22aa22")). // Green
			Padding(0, 1).Bold(true),
		model.SeverityWarning: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#000000")).
			Background(lipgloss.Color("#ffaf5f")). // Orange-amber
			Padding(0, 1).Bold(true),
		model.SeverityCritical: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffffff")).
			Background(lipgloss.Color("#ff5f5f")). // Soft red
			Padding(0, 1).Bold(true),
	}
)

type tab int

const (
	tabSections tab = iota
	tabListeners
)

type modelState int

const (
	stateList modelState = iota
	stateDetail
)

type focusState int

const (
	focusDetail focusState = iota
	focusFindings
	focusMain
	focusSide
)

// RefreshFunc collects a fresh report.
type RefreshFunc func(ctx context.Context) model.Report

type MainModel struct {
	state          modelState
	activeTab      tab
	table          table.Model
	input          textinput.Model
	listenerTable  table.Model
	ownerTable     table.Model
	listenerInput  textinput.Model
	viewport       viewport.Model
	findingsView   viewport.Model
	previewView    viewport.Model
	report         model.Report
	network        *model.NetworkSnapshot
	filtered       []model.Section
	listeners      []model.SocketSample
	selectedDetail *model.Section
	detailFocus    focusState
	listFocus      focusState
	statusMsg      string // transient status/error message shown in status line
	width          int
	height         int
	quitting       bool

	sortCol          string
	sortDesc         bool
	sortListenerCol  string
	sortListenerDesc bool
	version          string

	refresh    RefreshFunc
	refreshing bool

	// Mouse double-click tracking
	lastClickTime time.Time
	lastClickX    int
	lastClickY    int
}

func tableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = tableHeaderStyle.BorderForeground(lipgloss.Color("#585858"))
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#ffffaf")). // Light Yellow
		Background(lipgloss.Color("#5f00d7")). // Purple
		Bold(false)
	return s
}

func newInput(placeholder string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 156
	ti.Width = 50
	ti.Prompt = "> "
	ti.PromptStyle = promptStyle
	ti.Blur()
	return ti
}

// InitialModel builds the browser for r. refresh may be nil, which
// disables re-collection.
func InitialModel(r model.Report, version string, refresh RefreshFunc) MainModel {
	s := tableStyles()

	t := table.New(
		table.WithColumns(sectionColumns()),
		table.WithFocused(true),
		table.WithHeight(20),
	)
	t.SetStyles(s)

	lt := table.New(
		table.WithColumns(listenerColumns()),
		table.WithFocused(true),
		table.WithHeight(20),
	)
	lt.SetStyles(s)

	ot := table.New(
		table.WithColumns([]table.Column{
			{Title: "PID", Width: 8},
			{Title: "UID", Width: 6},
			{Title: "Container", Width: 14},
			{Title: "Command", Width: 20},
		}),
		table.WithFocused(false),
		table.WithHeight(20),
	)
	ot.SetStyles(s)

	m := MainModel{
		state:           stateList,
		activeTab:       tabSections,
		table:           t,
		listenerTable:   lt,
		ownerTable:      ot,
		input:           newInput("Search ID, Title, Status, Summary..."),
		listenerInput:   newInput("Search Protocol, Address, Service, Command..."),
		viewport:        viewport.New(0, 0),
		findingsView:    viewport.New(0, 0),
		previewView:     viewport.New(0, 0),
		detailFocus:     focusDetail,
		listFocus:       focusMain,
		sortCol:         "order",
		sortListenerCol: "proto",
		version:         version,
		refresh:         refresh,
	}
	m.setReport(r)
	return m
}

// Start runs the interactive report browser until the user quits.
func Start(r model.Report, version string, refresh RefreshFunc) error {
	if os.Getenv("COLORTERM") == "" {
		os.Setenv("COLORTERM", "truecolor") //nolint:errcheck
	}

	p := tea.NewProgram(InitialModel(r, version, refresh), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running tui: %w", err)
	}
	return nil
}

func (m MainModel) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		tea.EnableMouseCellMotion,
	)
}
