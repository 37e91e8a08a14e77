package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pranshuparmar/hostreport/pkg/model"
)

// Screen rows of fixed list-view elements, counted from the outer border.
const (
	rowTabs        = 1
	rowSearch      = 5
	rowTableHeader = 7
	detailTopRows  = 3
)

func (m MainModel) listWidths() (available, mainPane int) {
	available = m.width - 6
	if available < 0 {
		available = 0
	}
	ratio := 0.6
	if m.activeTab == tabListeners {
		ratio = 0.5
	}
	mainPane = int(float64(available) * ratio)
	if mainPane < 10 {
		mainPane = 10
	}
	return available, mainPane
}

func (m MainModel) inputFocused() bool {
	return m.input.Focused() || m.listenerInput.Focused()
}

func (m *MainModel) openDetail() bool {
	s, ok := m.selectedSection()
	if !ok {
		return false
	}
	m.selectedDetail = &s
	m.state = stateDetail
	m.detailFocus = focusDetail
	m.viewport.GotoTop()
	m.findingsView.GotoTop()
	m.updateDetailViewport()
	m.updateFindingsViewport()
	return true
}

func (m *MainModel) setListFocus(f focusState) {
	m.listFocus = f
	if m.activeTab != tabListeners {
		return
	}
	if f == focusSide {
		m.listenerTable.Blur()
		m.ownerTable.Focus()
	} else {
		m.ownerTable.Blur()
		m.listenerTable.Focus()
	}
}

func (m MainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		m.statusMsg = "" // clear any transient error on interaction
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "1":
			if !m.inputFocused() && m.state == stateList {
				m.activeTab = tabSections
				m.setListFocus(focusMain)
				return m, nil
			}
		case "2":
			if !m.inputFocused() && m.state == stateList {
				m.activeTab = tabListeners
				m.setListFocus(focusMain)
				return m, nil
			}
		}

		if m.state == stateList {
			return m.updateList(msg)
		}
		return m.updateDetail(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()

	case reportMsg:
		m.refreshing = false
		m.statusMsg = ""
		m.setReport(model.Report(msg))
	}

	return m, nil
}

func (m MainModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.activeTab == tabListeners {
		if m.listenerInput.Focused() {
			if msg.String() == "enter" || msg.String() == "esc" {
				m.listenerInput.Blur()
				return m, nil
			}
			var inputCmd tea.Cmd
			m.listenerInput, inputCmd = m.listenerInput.Update(msg)
			m.listenerTable.SetCursor(0)
			m.updateListenerTable()
			m.updateOwnerTable()
			return m, inputCmd
		}
		if msg.String() == "/" {
			m.listenerInput.Focus()
			return m, textinput.Blink
		}
	} else {
		if m.input.Focused() {
			if msg.String() == "enter" || msg.String() == "esc" {
				m.input.Blur()
				return m, nil
			}
			var inputCmd tea.Cmd
			m.input, inputCmd = m.input.Update(msg)
			m.table.SetCursor(0)
			m.filterSections()
			m.updatePreview()
			return m, inputCmd
		}
		if msg.String() == "/" {
			m.input.Focus()
			return m, textinput.Blink
		}
	}

	switch msg.String() {
	case "q", "esc":
		m.quitting = true
		return m, tea.Quit

	case "enter":
		if m.activeTab == tabSections {
			m.openDetail()
			return m, nil
		}
		if m.listFocus == focusMain {
			m.setListFocus(focusSide)
		}
		return m, nil

	// Focus Switching
	case "tab", "shift+tab", "right", "left", "l", "h":
		if m.listFocus == focusMain {
			m.setListFocus(focusSide)
		} else {
			m.setListFocus(focusMain)
		}
		return m, nil

	case "r", "R":
		if m.refresh == nil || m.refreshing {
			return m, nil
		}
		m.refreshing = true
		m.statusMsg = "Collecting..."
		return m, m.refreshReport()
	}

	if m.activeTab == tabSections {
		switch msg.String() {
		case "i", "I":
			m.sortSectionsBy("id")
			return m, nil
		case "s", "S":
			m.sortSectionsBy("status")
			return m, nil
		case "t", "T":
			m.sortSectionsBy("time")
			return m, nil
		case "o", "O":
			m.sortSectionsBy("order")
			return m, nil
		}

		var cmd tea.Cmd
		if m.listFocus == focusSide {
			m.previewView, cmd = m.previewView.Update(msg)
			return m, cmd
		}
		before := m.table.Cursor()
		m.table, cmd = m.table.Update(msg)
		if m.table.Cursor() != before {
			m.previewView.GotoTop()
			m.updatePreview()
		}
		return m, cmd
	}

	switch msg.String() {
	case "p", "P":
		m.sortListenersBy("proto")
		return m, nil
	case "a", "A":
		m.sortListenersBy("addr")
		return m, nil
	case "t", "T":
		m.sortListenersBy("state")
		return m, nil
	case "v", "V":
		m.sortListenersBy("service")
		return m, nil
	}

	var cmd tea.Cmd
	if m.listFocus == focusSide {
		m.ownerTable, cmd = m.ownerTable.Update(msg)
		return m, cmd
	}
	before := m.listenerTable.Cursor()
	m.listenerTable, cmd = m.listenerTable.Update(msg)
	if m.listenerTable.Cursor() != before {
		m.updateOwnerTable()
	}
	return m, cmd
}

func (m MainModel) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q", "backspace":
		m.state = stateList
		m.selectedDetail = nil
		return m, nil
	case "left", "h":
		m.detailFocus = focusDetail
		return m, nil
	case "right", "l":
		m.detailFocus = focusFindings
		return m, nil
	case "tab":
		if m.detailFocus == focusDetail {
			m.detailFocus = focusFindings
		} else {
			m.detailFocus = focusDetail
		}
		return m, nil
	}

	var cmd tea.Cmd
	if m.detailFocus == focusDetail {
		m.viewport, cmd = m.viewport.Update(msg)
	} else {
		m.findingsView, cmd = m.findingsView.Update(msg)
	}
	return m, cmd
}

func (m MainModel) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	m.statusMsg = ""
	if msg.Action != tea.MouseActionPress && msg.Action != tea.MouseActionMotion && msg.Action != tea.MouseActionRelease {
		return m, nil
	}

	isWheel := msg.Button == tea.MouseButtonWheelUp ||
		msg.Button == tea.MouseButtonWheelDown ||
		msg.Button == tea.MouseButtonWheelLeft ||
		msg.Button == tea.MouseButtonWheelRight
	isClick := msg.Action == tea.MouseActionPress && !isWheel

	isDoubleClick := false
	if isClick {
		if time.Since(m.lastClickTime) < 500*time.Millisecond {
			distX := m.lastClickX - msg.X
			distY := m.lastClickY - msg.Y
			if distX < 0 {
				distX = -distX
			}
			if distY < 0 {
				distY = -distY
			}
			isDoubleClick = distX <= 2 && distY <= 1
		}
		m.lastClickTime = time.Now()
		m.lastClickX = msg.X
		m.lastClickY = msg.Y
	}

	if m.state == stateDetail {
		available := m.width - 6
		if available < 0 {
			available = 0
		}
		detailWidth := int(float64(available) * 0.7)
		if isClick {
			if msg.X-2 < detailWidth {
				m.detailFocus = focusDetail
			} else {
				m.detailFocus = focusFindings
			}
		}

		var cmd tea.Cmd
		detailMsg := msg
		detailMsg.Y -= detailTopRows
		if m.detailFocus == focusDetail {
			m.viewport, cmd = m.viewport.Update(detailMsg)
		} else {
			m.findingsView, cmd = m.findingsView.Update(detailMsg)
		}
		return m, cmd
	}

	if isClick && msg.Y != rowSearch {
		m.input.Blur()
		m.listenerInput.Blur()
	}

	// Tabs
	if msg.Y == rowTabs && isClick {
		if msg.X >= 14 && msg.X < 27 { // "1. Sections"
			m.activeTab = tabSections
		} else if msg.X >= 27 && msg.X < 41 { // "2. Listeners"
			m.activeTab = tabListeners
		}
		m.setListFocus(focusMain)
		return m, nil
	}

	_, mainPane := m.listWidths()
	contentX := msg.X - 2
	if msg.Y == rowTableHeader && isClick && contentX < mainPane {
		if m.activeTab == tabSections {
			m.handleSectionHeaderClick(contentX)
		} else {
			m.handleListenerHeaderClick(contentX)
		}
		return m, nil
	}

	if isWheel {
		var cmd tea.Cmd
		switch {
		case contentX >= mainPane && m.activeTab == tabSections:
			m.previewView, cmd = m.previewView.Update(msg)
		case m.activeTab == tabSections:
			if msg.Button == tea.MouseButtonWheelUp {
				m.table.MoveUp(1)
			} else if msg.Button == tea.MouseButtonWheelDown {
				m.table.MoveDown(1)
			}
			m.updatePreview()
		case msg.Button == tea.MouseButtonWheelUp:
			m.listenerTable.MoveUp(1)
			m.updateOwnerTable()
		case msg.Button == tea.MouseButtonWheelDown:
			m.listenerTable.MoveDown(1)
			m.updateOwnerTable()
		}
		return m, cmd
	}

	if isClick && msg.Y > rowTableHeader+1 && contentX < mainPane {
		row := msg.Y - rowTableHeader - 2
		if m.activeTab == tabSections {
			if row >= 0 && row < len(m.filtered) {
				m.setListFocus(focusMain)
				m.table.SetCursor(row)
				m.updatePreview()
				if isDoubleClick {
					m.openDetail()
				}
			}
		} else if row >= 0 && row < len(m.listeners) {
			m.setListFocus(focusMain)
			m.listenerTable.SetCursor(row)
			m.updateOwnerTable()
		}
	}
	return m, nil
}

func (m *MainModel) layout() {
	available, mainPane := m.listWidths()

	listHeight := m.height - 11
	if listHeight < 5 {
		listHeight = 5
	}

	tableWidth := mainPane - 4
	if tableWidth < 10 {
		tableWidth = 10
	}
	cols := sectionColumns()
	fixed := 0
	for _, c := range cols[:len(cols)-1] {
		fixed += c.Width
	}
	summaryWidth := tableWidth - fixed - 10
	if summaryWidth < 10 {
		summaryWidth = 10
	}
	cols[len(cols)-1].Width = summaryWidth
	m.table.SetColumns(cols)
	m.table.SetWidth(tableWidth)
	m.table.SetHeight(listHeight)

	previewWidth := available - mainPane - 4
	if previewWidth < 10 {
		previewWidth = 10
	}
	m.previewView.Width = previewWidth
	m.previewView.Height = listHeight - 2
	if m.previewView.Height < 0 {
		m.previewView.Height = 0
	}

	listenerPane := int(float64(available) * 0.5)
	listenerWidth := listenerPane - 4
	if listenerWidth < 10 {
		listenerWidth = 10
	}
	lcols := listenerColumns()
	addrWidth := listenerWidth - 26 - 8
	if addrWidth < 10 {
		addrWidth = 10
	}
	lcols[1].Width = addrWidth
	m.listenerTable.SetColumns(lcols)
	m.listenerTable.SetWidth(listenerWidth)
	m.listenerTable.SetHeight(listHeight)

	ownerWidth := available - listenerPane - 5
	if ownerWidth < 10 {
		ownerWidth = 10
	}
	ocols := m.ownerTable.Columns()
	cmdWidth := ownerWidth - 28 - 8
	if cmdWidth < 10 {
		cmdWidth = 10
	}
	if len(ocols) > 3 {
		ocols[3].Width = cmdWidth
	}
	m.ownerTable.SetColumns(ocols)
	m.ownerTable.SetWidth(ownerWidth)
	m.ownerTable.SetHeight(listHeight - 2)

	vpHeight := m.height - 9
	if vpHeight < 0 {
		vpHeight = 0
	}
	detailWidth := int(float64(available) * 0.7)
	m.viewport.Width = detailWidth - 4
	if m.viewport.Width < 0 {
		m.viewport.Width = 0
	}
	m.viewport.Height = vpHeight
	m.findingsView.Width = available - detailWidth - 4
	if m.findingsView.Width < 0 {
		m.findingsView.Width = 0
	}
	m.findingsView.Height = vpHeight

	m.filterSections()
	m.updatePreview()
	m.updateDetailViewport()
	m.updateFindingsViewport()
}
