// Package issue resolves Jira issue keys from Toggl time entries.
package issue

import (
	"regexp"

	"github.com/danielolaszy/toggl2jira/internal/config"
	"github.com/danielolaszy/toggl2jira/pkg/models"
)

// NoDescription replaces an empty description in worklog comments.
const NoDescription = "No description"

var (
	keyPattern = regexp.MustCompile(`(?i)\w+-\d+`)
	leadingKey = regexp.MustCompile(`(?i)^\s*\w+-\d+\s*-?\s*`)
)

// Resolve returns the Jira issue key for entry, or "" when none can be found.
//
// The first key-shaped token in the description is the candidate. Every
// issue id rule is tested against that candidate and the last match wins.
// Project id rules are then applied the same way and override any candidate.
// An entry without a project is matched as "".
func Resolve(entry models.TimeEntry, replacements config.Replacements) string {
	candidate := keyPattern.FindString(entry.Description)
	issueID := candidate

	if candidate != "" {
		for _, rule := range replacements.IssueID {
			if rule.Pattern.MatchString(candidate) {
				issueID = rule.IssueID
			}
		}
	}

	projectID := entry.ProjectID()
	for _, rule := range replacements.ProjectID {
		if rule.Pattern.MatchString(projectID) {
			issueID = rule.IssueID
		}
	}

	return issueID
}

// CleanDescription strips a leading issue key and its separator.
func CleanDescription(description string) string {
	if description == "" {
		return NoDescription
	}
	return leadingKey.ReplaceAllString(description, "")
}
