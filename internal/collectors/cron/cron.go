// Package cron reports system crontab entries and their next run times.
package cron

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	robfig "github.com/robfig/cron/v3"

	"github.com/pranshuparmar/hostreport/internal/collector"
	"github.com/pranshuparmar/hostreport/pkg/model"
)

var Metadata = model.CollectorMetadata{
	ID:          "cron",
	Title:       "Scheduled Jobs",
	Description: "System crontab and cron.d entries",
}

type Entry struct {
	Source   string     `json:"source"`
	Line     int        `json:"line"`
	Schedule string     `json:"schedule"`
	User     string     `json:"user"`
	Command  string     `json:"command"`
	AtBoot   bool       `json:"at_boot"`
	NextRun  *time.Time `json:"next_run"`
	Valid    bool       `json:"valid"`
}

// Snapshot is the body of the cron section.
type Snapshot struct {
	Files   []string `json:"files"`
	Entries []Entry  `json:"entries"`
}

type Collector struct {
	etc string
	now func() time.Time
}

// New reads crontabs below etc, normally "/etc".
func New(etc string) *Collector {
	return &Collector{etc: etc, now: time.Now}
}

func Factory(etc string) collector.Factory {
	return func() collector.Collector { return New(etc) }
}

func (c *Collector) Metadata() model.CollectorMetadata { return Metadata }

func (c *Collector) Collect(_ context.Context, _ model.CollectionContext) (model.Section, error) {
	files := []string{filepath.Join(c.etc, "crontab")}
	if extra, err := filepath.Glob(filepath.Join(c.etc, "cron.d", "*")); err == nil {
		sort.Strings(extra)
		files = append(files, extra...)
	}

	snap := Snapshot{Files: []string{}, Entries: []Entry{}}
	notes := []string{}
	now := c.now()

	for _, path := range files {
		entries, bad, err := parseFile(path, now)
		if err != nil {
			if !os.IsNotExist(err) {
				notes = append(notes, fmt.Sprintf("Failed to read %s: %v", path, err))
			}
			continue
		}
		snap.Files = append(snap.Files, path)
		snap.Entries = append(snap.Entries, entries...)
		notes = append(notes, bad...)
	}

	if len(snap.Files) == 0 {
		return model.DegradedSection(Metadata, "No readable system crontab", snap).
			WithNotes(notes...), nil
	}

	summary := fmt.Sprintf("%d entries in %d files", len(snap.Entries), len(snap.Files))
	return model.SuccessSection(Metadata, snap).WithSummary(summary).WithNotes(notes...), nil
}

func parseFile(path string, now time.Time) ([]Entry, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	var entries []Entry
	var notes []string
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || isEnvAssignment(line) {
			continue
		}

		entry, ok := parseLine(line)
		if !ok {
			notes = append(notes, fmt.Sprintf("%s:%d: unrecognised crontab line", path, lineNo))
			continue
		}
		entry.Source = path
		entry.Line = lineNo

		switch {
		case entry.AtBoot:
			entry.Valid = true
		default:
			sched, err := robfig.ParseStandard(entry.Schedule)
			if err != nil {
				notes = append(notes, fmt.Sprintf("%s:%d: invalid schedule %q: %v", path, lineNo, entry.Schedule, err))
				break
			}
			next := sched.Next(now)
			entry.NextRun = &next
			entry.Valid = true
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, err
	}
	return entries, notes, nil
}

// parseLine splits a system crontab line into schedule, user and command.
func parseLine(line string) (Entry, bool) {
	fields := strings.Fields(line)
	if strings.HasPrefix(fields[0], "@") {
		if len(fields) < 3 {
			return Entry{}, false
		}
		return Entry{
			Schedule: fields[0],
			User:     fields[1],
			Command:  strings.Join(fields[2:], " "),
			AtBoot:   fields[0] == "@reboot",
		}, true
	}
	if len(fields) < 7 {
		return Entry{}, false
	}
	return Entry{
		Schedule: strings.Join(fields[:5], " "),
		User:     fields[5],
		Command:  strings.Join(fields[6:], " "),
	}, true
}

func isEnvAssignment(line string) bool {
	name, _, ok := strings.Cut(line, "=")
	return ok && !strings.ContainsAny(strings.TrimSpace(name), " \t*@")
}
