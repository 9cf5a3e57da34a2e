// Package worklog decides which Jira deployment a time entry belongs to and
// builds the Tempo worklog body that deployment expects.
package worklog

import (
	"regexp"

	"github.com/danielolaszy/toggl2jira/pkg/models"
)

// Target identifies one of the two Jira deployments.
type Target int

const (
	// TargetUnited is the primary deployment, running Tempo Timesheets v3.
	TargetUnited Target = iota
	// TargetWT is the secondary deployment, running Tempo Timesheets v4.
	TargetWT
)

const (
	// DefaultTaskType is the _TaskType_ attribute sent for every entry.
	DefaultTaskType = "INTERNAL ACTIVITY"
	// DefaultRound is the _Round_ attribute sent for every entry.
	DefaultRound = "InternalActivity"
)

var (
	unitedKeys   = regexp.MustCompile(`MMP-\d+|UMP-\d+|INT-24|INT-25`)
	offsetSuffix = regexp.MustCompile(`^(.*)\+\d\d:\d\d$`)
)

// String returns the deployment name used in configuration.
func (t Target) String() string {
	if t == TargetUnited {
		return "united"
	}
	return "wt"
}

// Classify routes issue keys of the united projects to TargetUnited and
// everything else to TargetWT.
func Classify(issueID string) Target {
	if unitedKeys.MatchString(issueID) {
		return TargetUnited
	}
	return TargetWT
}

// Author identifies the Jira user a united worklog is booked for.
type Author struct {
	Name string `json:"name"`
}

// IssueRef references the Jira issue of a united worklog.
type IssueRef struct {
	Key string `json:"key"`
}

// Attribute is a Tempo worklog attribute.
type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// UnitedWorklog is the Tempo Timesheets v3 request body.
type UnitedWorklog struct {
	TimeSpentSeconds  int64       `json:"timeSpentSeconds"`
	DateStarted       string      `json:"dateStarted"`
	Comment           string      `json:"comment"`
	Author            Author      `json:"author"`
	Issue             IssueRef    `json:"issue"`
	WorklogAttributes []Attribute `json:"worklogAttributes"`
}

// WTWorklog is the Tempo Timesheets v4 request body.
type WTWorklog struct {
	TimeSpentSeconds  int64  `json:"timeSpentSeconds"`
	Started           string `json:"started"`
	Comment           string `json:"comment"`
	Worker            string `json:"worker"`
	OriginTaskID      string `json:"originTaskId"`
	RemainingEstimate int64  `json:"remainingEstimate"`
}

// NewUnitedWorklog builds the v3 body for entry, booked for author.
func NewUnitedWorklog(entry models.EnrichedEntry, author string) UnitedWorklog {
	return UnitedWorklog{
		TimeSpentSeconds: entry.Duration,
		DateStarted:      entry.Start,
		Comment:          entry.CleanDescription,
		Author:           Author{Name: author},
		Issue:            IssueRef{Key: entry.IssueID},
		WorklogAttributes: []Attribute{
			{Key: "_TaskType_", Value: entry.TaskType},
			{Key: "_Round_", Value: DefaultRound},
		},
	}
}

// NewWTWorklog builds the v4 body for entry, booked for worker.
func NewWTWorklog(entry models.EnrichedEntry, worker string) WTWorklog {
	return WTWorklog{
		TimeSpentSeconds:  entry.Duration,
		Started:           TempoStarted(entry.Start),
		Comment:           entry.CleanDescription,
		Worker:            worker,
		OriginTaskID:      entry.IssueID,
		RemainingEstimate: 0,
	}
}

// TempoStarted rewrites a trailing "+hh:mm" offset to ".000", the local time
// format Tempo v4 expects (2021-01-28T16:03:00.000). Other values are returned
// unchanged.
func TempoStarted(start string) string {
	return offsetSuffix.ReplaceAllString(start, "${1}.000")
}
