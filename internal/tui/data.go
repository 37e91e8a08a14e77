package tui

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/reflow/wrap"

	"github.com/pranshuparmar/hostreport/internal/output"
	"github.com/pranshuparmar/hostreport/pkg/model"
)

type reportMsg model.Report

func (m MainModel) refreshReport() tea.Cmd {
	refresh := m.refresh
	return func() tea.Msg {
		return reportMsg(refresh(context.Background()))
	}
}

func sectionColumns() []table.Column {
	return []table.Column{
		{Title: "ID", Width: 10},
		{Title: "Status", Width: 9},
		{Title: "Time", Width: 8},
		{Title: "Title", Width: 22},
		{Title: "Summary", Width: 40},
	}
}

func listenerColumns() []table.Column {
	return []table.Column{
		{Title: "Proto", Width: 6},
		{Title: "Address", Width: 30},
		{Title: "State", Width: 8},
		{Title: "Service", Width: 12},
	}
}

func (m *MainModel) setReport(r model.Report) {
	m.report = r
	m.network = nil
	if s, ok := r.Section("network"); ok && s.Status != model.StatusError {
		var snap model.NetworkSnapshot
		if err := s.DecodeBody(&snap); err == nil {
			m.network = &snap
		}
	}
	m.filterSections()
	m.updateListenerTable()
	m.updateOwnerTable()
	m.updatePreview()

	if m.selectedDetail != nil {
		id := m.selectedDetail.ID
		m.selectedDetail = nil
		if s, ok := r.Section(id); ok {
			m.selectedDetail = &s
		}
		m.updateDetailViewport()
		m.updateFindingsViewport()
	}
}

func statusRank(s model.SectionStatus) int {
	switch s {
	case model.StatusError:
		return 2
	case model.StatusDegraded:
		return 1
	default:
		return 0
	}
}

func duration(s model.Section) int64 {
	if s.DurationMS == nil {
		return -1
	}
	return *s.DurationMS
}

func (m *MainModel) sortedSections() []model.Section {
	sections := make([]model.Section, len(m.report.Sections))
	copy(sections, m.report.Sections)
	if m.sortCol == "order" {
		if m.sortDesc {
			for i, j := 0, len(sections)-1; i < j; i, j = i+1, j-1 {
				sections[i], sections[j] = sections[j], sections[i]
			}
		}
		return sections
	}

	sort.SliceStable(sections, func(i, j int) bool {
		a, b := sections[i], sections[j]
		if m.sortDesc {
			a, b = b, a
		}
		switch m.sortCol {
		case "id":
			return a.ID < b.ID
		case "status":
			return statusRank(a.Status) < statusRank(b.Status)
		case "time":
			return duration(a) < duration(b)
		}
		return false
	})
	return sections
}

func summaryOf(s model.Section) string {
	if s.Summary == nil {
		return ""
	}
	return *s.Summary
}

func (m *MainModel) filterSections() {
	query := strings.ToLower(strings.TrimSpace(m.input.Value()))
	m.filtered = m.filtered[:0]
	for _, s := range m.sortedSections() {
		if query != "" {
			hay := strings.ToLower(strings.Join([]string{s.ID, s.Title, string(s.Status), summaryOf(s)}, " "))
			if !strings.Contains(hay, query) {
				continue
			}
		}
		m.filtered = append(m.filtered, s)
	}

	rows := make([]table.Row, 0, len(m.filtered))
	for _, s := range m.filtered {
		elapsed := "-"
		if s.DurationMS != nil {
			elapsed = fmt.Sprintf("%dms", *s.DurationMS)
		}
		rows = append(rows, table.Row{s.ID, string(s.Status), elapsed, s.Title, summaryOf(s)})
	}
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(0)
	}
}

func (m *MainModel) selectedSection() (model.Section, bool) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.filtered) {
		return model.Section{}, false
	}
	return m.filtered[idx], true
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

func commands(ps []model.SocketProcessInfo) string {
	names := make([]string, 0, len(ps))
	for _, p := range ps {
		names = append(names, p.DisplayCommand())
	}
	return strings.Join(names, " ")
}

func (m *MainModel) sortListeners() {
	sort.SliceStable(m.listeners, func(i, j int) bool {
		a, b := m.listeners[i], m.listeners[j]
		var x, y string
		switch m.sortListenerCol {
		case "addr":
			x, y = a.LocalAddress, b.LocalAddress
		case "state":
			x, y = deref(a.State), deref(b.State)
		case "service":
			x, y = deref(a.Service), deref(b.Service)
		default:
			x, y = a.Protocol, b.Protocol
		}
		if m.sortListenerDesc {
			return x > y
		}
		return x < y
	})
}

func (m *MainModel) updateListenerTable() {
	m.listeners = m.listeners[:0]
	if m.network != nil {
		query := strings.ToLower(strings.TrimSpace(m.listenerInput.Value()))
		for _, s := range m.network.Listeners.Samples {
			if query != "" {
				hay := strings.ToLower(strings.Join([]string{s.Protocol, s.LocalAddress, deref(s.Service), commands(s.Processes)}, " "))
				if !strings.Contains(hay, query) {
					continue
				}
			}
			m.listeners = append(m.listeners, s)
		}
	}
	m.sortListeners()

	rows := make([]table.Row, 0, len(m.listeners))
	for _, s := range m.listeners {
		rows = append(rows, table.Row{s.Protocol, s.LocalAddress, deref(s.State), deref(s.Service)})
	}
	m.listenerTable.SetRows(rows)
	if m.listenerTable.Cursor() >= len(rows) {
		m.listenerTable.SetCursor(0)
	}
}

func (m *MainModel) updateOwnerTable() {
	var rows []table.Row
	idx := m.listenerTable.Cursor()
	if idx >= 0 && idx < len(m.listeners) {
		for _, p := range m.listeners[idx].Processes {
			uid := "?"
			if p.UID != nil {
				uid = strconv.FormatUint(uint64(*p.UID), 10)
			}
			container := "-"
			if p.Container != nil {
				container = *p.Container
				if len(container) > 12 {
					container = container[:12]
				}
			}
			rows = append(rows, table.Row{strconv.Itoa(p.PID), uid, container, p.DisplayCommand()})
		}
	}
	m.ownerTable.SetRows(rows)
	m.ownerTable.SetCursor(0)
}

func (m MainModel) findingsFor(id string) []model.CriticalFinding {
	var out []model.CriticalFinding
	for _, f := range m.report.HealthDigest.Findings {
		if f.SourceID == id {
			out = append(out, f)
		}
	}
	return out
}

func (m MainModel) writeFindingsAndNotes(b *strings.Builder, s model.Section) {
	findings := m.findingsFor(s.ID)
	fmt.Fprintf(b, "%s\n", labelStyle.Render("Findings:"))
	if len(findings) == 0 {
		fmt.Fprintf(b, "  %s\n", dimStyle.Render("None"))
	}
	for _, f := range findings {
		fmt.Fprintf(b, "%s %s\n", severityStyles[f.Severity].Render(strings.ToUpper(f.Severity.String())), f.Message)
	}

	if len(s.Notes) > 0 {
		fmt.Fprintf(b, "\n%s\n", labelStyle.Render("Notes:"))
		for _, n := range s.Notes {
			fmt.Fprintf(b, "- %s\n", stripAnsi(n))
		}
	}
}

func (m *MainModel) updatePreview() {
	s, ok := m.selectedSection()
	if !ok {
		m.previewView.SetContent("")
		return
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("Status:"), s.Status)
	if s.Summary != nil {
		fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("Summary:"), stripAnsi(*s.Summary))
	}
	fmt.Fprintln(&b)
	m.writeFindingsAndNotes(&b, s)

	content := b.String()
	if m.previewView.Width > 0 {
		content = wrap.String(content, m.previewView.Width)
	}
	m.previewView.SetContent(content)
}

func (m *MainModel) updateDetailViewport() {
	if m.selectedDetail == nil {
		return
	}
	s := *m.selectedDetail
	var b strings.Builder

	body, err := output.BodyYAML(s.Body)
	if err != nil {
		body = fmt.Sprintf("unable to render body: %v\n", err)
	}
	fmt.Fprint(&b, stripAnsi(body))

	if s.ID == "network" && m.network != nil && len(m.network.Listeners.Groups) > 0 {
		fmt.Fprintf(&b, "\n%s\n", labelStyle.Render("Listener Tree:"))
		output.PrintListenerTree(&b, m.network.Listeners.Groups, true)
	}

	content := b.String()
	if m.viewport.Width > 0 {
		content = wrap.String(content, m.viewport.Width)
	}
	m.viewport.SetContent(content)
}

func (m *MainModel) updateFindingsViewport() {
	if m.selectedDetail == nil {
		return
	}
	var b strings.Builder
	m.writeFindingsAndNotes(&b, *m.selectedDetail)

	content := b.String()
	if m.findingsView.Width > 0 {
		content = wrap.String(content, m.findingsView.Width)
	}
	m.findingsView.SetContent(content)
}
