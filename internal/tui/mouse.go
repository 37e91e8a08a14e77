package tui

import "github.com/charmbracelet/bubbles/table"

// returns the column index at x pixels, or -1 if not found.
func (m *MainModel) getColumnAtX(x int, cols []table.Column) int {
	currentX := 0
	for i, col := range cols {
		colWidth := col.Width + 2
		if x >= currentX && x < currentX+colWidth {
			return i
		}
		currentX += colWidth
	}
	return -1
}

// toggleSort flips the direction when col is already active.
func toggleSort(current *string, desc *bool, col string, defaultDesc bool) {
	if *current == col {
		*desc = !*desc
		return
	}
	*current = col
	*desc = defaultDesc
}

func (m *MainModel) sortSectionsBy(col string) {
	toggleSort(&m.sortCol, &m.sortDesc, col, col == "status" || col == "time")
	m.filterSections()
	m.updatePreview()
}

func (m *MainModel) sortListenersBy(col string) {
	toggleSort(&m.sortListenerCol, &m.sortListenerDesc, col, false)
	m.updateListenerTable()
	m.updateOwnerTable()
}

func (m *MainModel) handleSectionHeaderClick(x int) {
	switch m.getColumnAtX(x, m.table.Columns()) {
	case 0:
		m.sortSectionsBy("id")
	case 1:
		m.sortSectionsBy("status")
	case 2:
		m.sortSectionsBy("time")
	}
}

func (m *MainModel) handleListenerHeaderClick(x int) {
	switch m.getColumnAtX(x, m.listenerTable.Columns()) {
	case 0:
		m.sortListenersBy("proto")
	case 1:
		m.sortListenersBy("addr")
	case 2:
		m.sortListenersBy("state")
	case 3:
		m.sortListenersBy("service")
	}
}
