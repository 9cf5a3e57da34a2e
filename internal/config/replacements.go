package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Rule maps every value matching Pattern to the canonical issue key IssueID.
type Rule struct {
	IssueID string
	Pattern *regexp.Regexp
}

// Replacements holds the user remapping tables in file order.
type Replacements struct {
	// IssueID rules are matched case-insensitively against issue keys found in descriptions.
	IssueID []Rule
	// ProjectID rules are matched case-sensitively against the Toggl project id.
	ProjectID []Rule
}

type rawObject = orderedmap.OrderedMap[string, json.RawMessage]

// parseReplacements extracts globalReplacements from the raw configuration.
// The tables are decoded into ordered maps so both the order and the case of
// the canonical keys survive, which a viper map would lose.
func parseReplacements(raw []byte) (Replacements, error) {
	root, err := decodeObject(raw)
	if err != nil {
		return Replacements{}, fmt.Errorf("failed to parse globalReplacements: %w", err)
	}

	section, err := decodeObject(lookup(root, "globalReplacements"))
	if err != nil {
		return Replacements{}, fmt.Errorf("failed to parse globalReplacements: %w", err)
	}

	issueRules, err := compileRules(lookup(section, "issue_id"), "(?i)")
	if err != nil {
		return Replacements{}, fmt.Errorf("globalReplacements.issue_id: %w", err)
	}
	projectRules, err := compileRules(lookup(section, "project_id"), "")
	if err != nil {
		return Replacements{}, fmt.Errorf("globalReplacements.project_id: %w", err)
	}

	return Replacements{IssueID: issueRules, ProjectID: projectRules}, nil
}

// decodeObject returns nil for an absent or null value.
func decodeObject(raw json.RawMessage) (*rawObject, error) {
	if isNull(raw) {
		return nil, nil
	}
	object := orderedmap.New[string, json.RawMessage]()
	if err := object.UnmarshalJSON(raw); err != nil {
		return nil, err
	}
	return object, nil
}

func lookup(object *rawObject, key string) json.RawMessage {
	if object == nil {
		return nil
	}
	for pair := object.Oldest(); pair != nil; pair = pair.Next() {
		if strings.EqualFold(pair.Key, key) {
			return pair.Value
		}
	}
	return nil
}

func compileRules(raw json.RawMessage, flags string) ([]Rule, error) {
	if isNull(raw) {
		return nil, nil
	}
	table := orderedmap.New[string, string]()
	if err := table.UnmarshalJSON(raw); err != nil {
		return nil, fmt.Errorf("expected an object of issue id to pattern: %w", err)
	}

	rules := make([]Rule, 0, table.Len())
	for pair := table.Oldest(); pair != nil; pair = pair.Next() {
		pattern, err := regexp.Compile(flags + pair.Value)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern for %q: %w", pair.Key, err)
		}
		rules = append(rules, Rule{IssueID: pair.Key, Pattern: pattern})
	}
	return rules, nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
