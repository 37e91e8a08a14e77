package output

import (
	"fmt"
	"io"

	"github.com/pranshuparmar/hostreport/pkg/model"
)

var (
	colorResetShort  = "\033[0m"
	colorRedShort    = "\033[31m"
	colorYellowShort = "\033[33m"
	colorGreenShort  = "\033[32m"
	colorDimShort    = "\033[2m"
)

func statusMarker(s model.SectionStatus) string {
	switch s {
	case model.StatusSuccess:
		return "ok"
	case model.StatusDegraded:
		return "!!"
	default:
		return "xx"
	}
}

func statusColor(s model.SectionStatus) string {
	switch s {
	case model.StatusSuccess:
		return colorGreenShort
	case model.StatusDegraded:
		return colorYellowShort
	default:
		return colorRedShort
	}
}

// RenderShort prints one line per section.
func RenderShort(w io.Writer, r model.Report, colorEnabled bool) {
	for _, s := range r.Sections {
		summary := ""
		if s.Summary != nil {
			summary = *s.Summary
		}
		duration := ""
		if s.DurationMS != nil {
			duration = fmt.Sprintf(" (%d ms)", *s.DurationMS)
		}

		if colorEnabled {
			fmt.Fprintf(w, "%s[%s]%s %-8s %s%s%s%s\n",
				statusColor(s.Status), statusMarker(s.Status), colorResetShort,
				s.ID, summary, colorDimShort, duration, colorResetShort)
		} else {
			fmt.Fprintf(w, "[%s] %-8s %s%s\n", statusMarker(s.Status), s.ID, summary, duration)
		}
	}
}
