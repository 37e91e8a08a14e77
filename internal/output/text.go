package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"

	"github.com/pranshuparmar/hostreport/pkg/model"
)

type textStyles struct {
	heading  func(string) string
	severity func(model.Severity) string
}

func newTextStyles(w io.Writer, colorEnabled bool) textStyles {
	if !colorEnabled {
		return textStyles{
			heading:  func(s string) string { return s },
			severity: func(s model.Severity) string { return strings.ToUpper(s.String()) },
		}
	}

	re := lipgloss.NewRenderer(w)
	heading := re.NewStyle().Bold(true).Foreground(lipgloss.Color("#5f5fd7")) // Purple/Blue
	sev := map[model.Severity]lipgloss.Style{
		model.SeverityInfo:     re.NewStyle().Foreground(lipgloss.Color("#22aa22")).Bold(true), // Green
		model.SeverityWarning:  re.NewStyle().Foreground(lipgloss.Color("#ffaf5f")).Bold(true), // Orange-amber
		model.SeverityCritical: re.NewStyle().Foreground(lipgloss.Color("#ff5f5f")).Bold(true), // Soft red
	}
	return textStyles{
		heading:  func(s string) string { return heading.Render(s) },
		severity: func(s model.Severity) string { return sev[s].Render(strings.ToUpper(s.String())) },
	}
}

// RenderText writes the human-readable report.
func RenderText(w io.Writer, r model.Report, colorEnabled bool) error {
	st := newTextStyles(w, colorEnabled)

	version := r.Metadata.Version
	if version == "" {
		version = "dev"
	}
	fmt.Fprintf(w, "%s\n", st.heading("Host report for "+r.Metadata.Hostname))
	fmt.Fprintf(w, "Generated %s by hostreport %s", r.Metadata.GeneratedAt.Format(time.RFC3339), version)
	if r.Metadata.Since != nil {
		fmt.Fprintf(w, ", since %s", *r.Metadata.Since)
	}
	fmt.Fprintf(w, "\nOverall health: %s\n\n", st.severity(r.HealthDigest.Overall))

	if len(r.HealthDigest.Findings) > 0 {
		fmt.Fprintln(w, st.heading("Findings"))
		table := tablewriter.NewWriter(w)
		table.Header("Severity", "Source", "Message")
		for _, f := range r.HealthDigest.Findings {
			table.Append(strings.ToUpper(f.Severity.String()), f.SourceID, f.Message)
		}
		if err := table.Render(); err != nil {
			return err
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, st.heading("Sections"))
	RenderShort(w, r, colorEnabled)

	if s, ok := r.Section("network"); ok && s.Status != model.StatusError {
		var snap model.NetworkSnapshot
		if err := s.DecodeBody(&snap); err == nil {
			fmt.Fprintln(w)
			if err := renderListeners(w, st, snap, colorEnabled); err != nil {
				return err
			}
		}
	}

	var notes []string
	for _, s := range r.Sections {
		for _, n := range s.Notes {
			notes = append(notes, fmt.Sprintf("%s: %s", s.ID, n))
		}
	}
	if len(notes) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, st.heading("Notes"))
		for _, n := range notes {
			fmt.Fprintf(w, "- %s\n", n)
		}
	}
	return nil
}

func renderListeners(w io.Writer, st textStyles, snap model.NetworkSnapshot, colorEnabled bool) error {
	c := snap.Listeners.Counts
	fmt.Fprintf(w, "%s (tcp %d, tcp6 %d, udp %d, udp6 %d)\n",
		st.heading("Listening sockets"), c.TCP, c.TCP6, c.UDP, c.UDP6)
	if len(snap.Listeners.Samples) == 0 {
		return nil
	}

	table := tablewriter.NewWriter(w)
	table.Header("Proto", "Local Address", "State", "Service", "Process")
	for _, s := range snap.Listeners.Samples {
		table.Append(s.Protocol, s.LocalAddress, deref(s.State, "-"), deref(s.Service, "-"), processLabel(s.Processes))
	}
	if err := table.Render(); err != nil {
		return err
	}

	if len(snap.Listeners.Groups) > 0 {
		fmt.Fprintln(w)
		PrintListenerTree(w, snap.Listeners.Groups, colorEnabled)
	}
	for _, in := range snap.Listeners.Insights {
		addrs := make([]string, 0, len(in.Sockets))
		for _, ref := range in.Sockets {
			addrs = append(addrs, ref.Protocol+" "+ref.LocalAddress)
		}
		fmt.Fprintf(w, "%s %s: %s\n", st.severity(in.Severity), in.Message, strings.Join(addrs, ", "))
	}
	return nil
}

func processLabel(ps []model.SocketProcessInfo) string {
	if len(ps) == 0 {
		return "-"
	}
	labels := make([]string, 0, len(ps))
	for _, p := range ps {
		labels = append(labels, fmt.Sprintf("%s/%d", p.DisplayCommand(), p.PID))
	}
	return strings.Join(labels, ", ")
}

func deref(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}
