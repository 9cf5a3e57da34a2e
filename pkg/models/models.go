// Package models defines data structures shared across the application.
package models

import (
	"slices"
	"strconv"
)

const (
	// LoggedTag marks a Toggl time entry that has been pushed to Jira.
	LoggedTag = "_logged"

	// LegacyLoggedTag is the marker used by earlier versions of the tool.
	LegacyLoggedTag = "onJira"
)

// TimeEntry represents a Toggl time entry as returned by the time_entries endpoint.
type TimeEntry struct {
	// ID is the Toggl time entry identifier
	ID int64 `json:"id"`

	// Description is the free text typed by the user, possibly empty
	Description string `json:"description,omitempty"`

	// Start is the ISO8601 start timestamp, kept verbatim
	Start string `json:"start"`

	// Stop is the ISO8601 stop timestamp; empty while the timer is running
	Stop string `json:"stop,omitempty"`

	// Duration is the entry length in seconds
	Duration int64 `json:"duration"`

	// Tags is the list of tag names attached to the entry
	Tags []string `json:"tags,omitempty"`

	// PID is the Toggl project identifier, if the entry belongs to a project
	PID *int64 `json:"pid,omitempty"`
}

// Running reports whether the entry has no stop timestamp yet.
func (e TimeEntry) Running() bool {
	return e.Stop == ""
}

// Logged reports whether the entry carries the processed marker or its legacy form.
func (e TimeEntry) Logged() bool {
	return slices.Contains(e.Tags, LoggedTag) || slices.Contains(e.Tags, LegacyLoggedTag)
}

// ProjectID returns the project identifier as a decimal string, or "" when absent.
func (e TimeEntry) ProjectID() string {
	if e.PID == nil {
		return ""
	}
	return strconv.FormatInt(*e.PID, 10)
}

// EnrichedEntry is a time entry with the fields derived during a sync run.
type EnrichedEntry struct {
	TimeEntry

	// IssueID is the resolved Jira issue key; empty when it could not be resolved
	IssueID string

	// CleanDescription is the description with the leading issue key removed
	CleanDescription string

	// TaskType is the Tempo task type worklog attribute
	TaskType string

	// Round is the Tempo round worklog attribute
	Round string
}

// Resolved reports whether an issue key was found for the entry.
func (e EnrichedEntry) Resolved() bool {
	return e.IssueID != ""
}
