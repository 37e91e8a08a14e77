package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// SectionStatus is the outcome of a single collector run.
type SectionStatus string

const (
	StatusSuccess  SectionStatus = "success"
	StatusDegraded SectionStatus = "degraded"
	StatusError    SectionStatus = "error"
)

// CollectorMetadata describes a collector. ID is unique across the registry
// and becomes the id of every section the collector produces.
type CollectorMetadata struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// CollectionContext is handed unchanged to every collector of one run.
type CollectionContext struct {
	// Since is a free-form lower time bound for time-windowed collectors.
	Since *string
}

// Section is one collector's contribution to a report.
type Section struct {
	ID         string        `json:"id"`
	Title      string        `json:"title"`
	Status     SectionStatus `json:"status"`
	Summary    *string       `json:"summary"`
	Body       any           `json:"body"`
	Notes      []string      `json:"notes"`
	DurationMS *int64        `json:"duration_ms"`
}

func newSection(meta CollectorMetadata, status SectionStatus, body any) Section {
	if body == nil {
		body = map[string]any{}
	}
	return Section{
		ID:     meta.ID,
		Title:  meta.Title,
		Status: status,
		Body:   body,
		Notes:  []string{},
	}
}

// SuccessSection builds a Success section for meta.
func SuccessSection(meta CollectorMetadata, body any) Section {
	return newSection(meta, StatusSuccess, body)
}

// DegradedSection builds a Degraded section for meta. A degraded section
// always explains itself, so summary is required.
func DegradedSection(meta CollectorMetadata, summary string, body any) Section {
	s := newSection(meta, StatusDegraded, body)
	s.Summary = &summary
	return s
}

// ErrorSection builds the section recorded for a collector that failed.
// The summary and body both carry msg.
func ErrorSection(meta CollectorMetadata, msg string) Section {
	s := newSection(meta, StatusError, map[string]any{"error": msg})
	s.Summary = &msg
	return s
}

// WithSummary sets the summary and returns the section for chaining.
func (s Section) WithSummary(summary string) Section {
	s.Summary = &summary
	return s
}

// WithNote appends a note and returns the section for chaining.
func (s Section) WithNote(note string) Section {
	s.Notes = append(s.Notes, note)
	return s
}

// WithNotes appends notes and returns the section for chaining.
func (s Section) WithNotes(notes ...string) Section {
	s.Notes = append(s.Notes, notes...)
	return s
}

// SetDuration records the elapsed collection time in milliseconds.
func (s *Section) SetDuration(d time.Duration) {
	ms := d.Milliseconds()
	s.DurationMS = &ms
}

// DecodeBody re-decodes the section body into out. Bodies built in-process
// hold concrete Go types while bodies loaded from JSON hold generic maps, so
// both pass through the JSON form.
func (s Section) DecodeBody(out any) error {
	raw, err := json.Marshal(s.Body)
	if err != nil {
		return fmt.Errorf("encode %s body: %w", s.ID, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s body: %w", s.ID, err)
	}
	return nil
}
