package model

import "time"

// CriticalFinding is one digest entry.
type CriticalFinding struct {
	SourceID    string   `json:"source_id"`
	SourceTitle string   `json:"source_title"`
	Severity    Severity `json:"severity"`
	Message     string   `json:"message"`
}

// HealthDigest is the report-level health summary. Overall is the maximum
// finding severity, or Info when there are no findings.
type HealthDigest struct {
	Overall  Severity          `json:"overall"`
	Findings []CriticalFinding `json:"findings"`
}

type ReportMetadata struct {
	GeneratedAt time.Time `json:"generated_at"`
	Hostname    string    `json:"hostname"`
	Version     string    `json:"version"`
	Since       *string   `json:"since"`
	Sections    int       `json:"sections"`
}

// Report is the top-level output document.
type Report struct {
	Metadata     ReportMetadata `json:"metadata"`
	Sections     []Section      `json:"sections"`
	HealthDigest HealthDigest   `json:"health_digest"`
}

// Section returns the first section with the given id.
func (r Report) Section(id string) (Section, bool) {
	for _, s := range r.Sections {
		if s.ID == id {
			return s, true
		}
	}
	return Section{}, false
}
