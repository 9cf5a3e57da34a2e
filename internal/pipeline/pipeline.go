// Package pipeline pushes finished Toggl time entries to Tempo and tags them on
// Toggl once Jira has accepted the worklog.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"

	"github.com/danielolaszy/toggl2jira/internal/config"
	"github.com/danielolaszy/toggl2jira/internal/issue"
	"github.com/danielolaszy/toggl2jira/internal/logging"
	"github.com/danielolaszy/toggl2jira/internal/worklog"
	"github.com/danielolaszy/toggl2jira/pkg/models"
)

// EntrySource is the time tracking side of a sync.
type EntrySource interface {
	FetchEntries(ctx context.Context, since time.Time) ([]models.TimeEntry, error)
	TagEntry(ctx context.Context, entry models.TimeEntry, tag string) error
}

// WorklogPoster is a Jira deployment accepting Tempo worklogs.
type WorklogPoster interface {
	URL() string
	PostWorklog(ctx context.Context, payload interface{}) error
}

// Options configures a Syncer.
type Options struct {
	Source       EntrySource
	United       WorklogPoster
	WT           WorklogPoster
	Replacements config.Replacements
	// Author is the Jira user united worklogs are booked for.
	Author string
	// Worker is the Tempo worker key wt worklogs are booked for.
	Worker string
	// Out receives the human readable report. Defaults to os.Stdout.
	Out io.Writer
	// DryRun builds worklogs without sending them or tagging entries.
	DryRun bool
}

// Result holds the counters of a single run.
type Result struct {
	// Found is the number of entries left after filtering.
	Found   int
	Logged  int
	Skipped int
}

// Syncer runs the fetch, filter, enrich and push pipeline.
type Syncer struct {
	source       EntrySource
	united       WorklogPoster
	wt           WorklogPoster
	replacements config.Replacements
	author       string
	worker       string
	out          io.Writer
	dryRun       bool

	pushed  *color.Color
	skipped *color.Color
}

// New creates a Syncer from opts.
func New(opts Options) *Syncer {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	return &Syncer{
		source:       opts.Source,
		united:       opts.United,
		wt:           opts.WT,
		replacements: opts.Replacements,
		author:       opts.Author,
		worker:       opts.Worker,
		out:          out,
		dryRun:       opts.DryRun,
		pushed:       color.New(color.FgGreen),
		skipped:      color.New(color.FgYellow),
	}
}

// Run syncs every finished, untagged entry started at or after since.
//
// A failed fetch is logged and treated as an empty result. Entries are pushed
// one at a time in the order Toggl returned them.
func (s *Syncer) Run(ctx context.Context, since time.Time) Result {
	log := logging.With("run_id", uuid.NewString())
	log.Info("sync started", "since", since.Format(time.RFC3339), "dry_run", s.dryRun)

	entries, err := s.source.FetchEntries(ctx, since)
	if err != nil {
		log.Warn("failed to fetch toggl time entries, continuing with none", "error", err)
		entries = nil
	}

	pending := FilterPending(entries)
	log.Debug("filtered time entries", "fetched", len(entries), "pending", len(pending))

	fmt.Fprintf(s.out, "%d time %s found.\n\n", len(pending), entryNoun(len(pending)))
	if len(pending) == 0 {
		return Result{}
	}

	result := s.push(ctx, Enrich(pending, s.replacements), log)
	result.Found = len(pending)

	fmt.Fprintf(s.out, "\n%d time %s logged. %d time %s skipped.\n",
		result.Logged, entryNoun(result.Logged),
		result.Skipped, entryNoun(result.Skipped))

	log.Info("sync finished", "logged", result.Logged, "skipped", result.Skipped)
	return result
}

// FilterPending drops entries that are still running or already logged.
func FilterPending(entries []models.TimeEntry) []models.TimeEntry {
	pending := make([]models.TimeEntry, 0, len(entries))
	for _, entry := range entries {
		if entry.Logged() || entry.Running() {
			continue
		}
		pending = append(pending, entry)
	}
	return pending
}

// Enrich resolves the issue key and worklog fields of every entry.
func Enrich(entries []models.TimeEntry, replacements config.Replacements) []models.EnrichedEntry {
	enriched := make([]models.EnrichedEntry, 0, len(entries))
	for _, entry := range entries {
		enriched = append(enriched, models.EnrichedEntry{
			TimeEntry:        entry,
			IssueID:          issue.Resolve(entry, replacements),
			CleanDescription: issue.CleanDescription(entry.Description),
			TaskType:         worklog.DefaultTaskType,
			Round:            worklog.DefaultRound,
		})
	}
	return enriched
}

func (s *Syncer) push(ctx context.Context, entries []models.EnrichedEntry, log *slog.Logger) Result {
	var result Result
	count := 1

	for _, entry := range entries {
		if !entry.Resolved() {
			result.Skipped++
			s.skipped.Fprintf(s.out, "Skipped - Missing issue id - %s\n", entry.CleanDescription)
			continue
		}

		fmt.Fprintf(s.out, "[%d/%d] - Pushing [%s] %s - %d s\n",
			count, len(entries), entry.IssueID, entry.CleanDescription, entry.Duration)
		count++

		poster, payload := s.route(entry)
		if s.dryRun {
			result.Logged++
			s.pushed.Fprintf(s.out, "Dry run - would push to %s\n", poster.URL())
			continue
		}

		if err := poster.PostWorklog(ctx, payload); err != nil {
			result.Skipped++
			log.Debug("worklog rejected", "entry_id", entry.ID, "issue_id", entry.IssueID, "error", err)
			s.skipped.Fprintf(s.out, "Skipped! - Issue id not found on Jira (%s)\n", poster.URL())
			continue
		}

		result.Logged++
		s.pushed.Fprintln(s.out, "Pushed!")
		s.acknowledge(ctx, entry.TimeEntry, log)
	}

	return result
}

func (s *Syncer) route(entry models.EnrichedEntry) (WorklogPoster, interface{}) {
	if worklog.Classify(entry.IssueID) == worklog.TargetUnited {
		return s.united, worklog.NewUnitedWorklog(entry, s.author)
	}
	return s.wt, worklog.NewWTWorklog(entry, s.worker)
}

// acknowledge tags entry as logged. A failure is logged and dropped; the
// entry stays untagged and will be pushed again by the next run.
func (s *Syncer) acknowledge(ctx context.Context, entry models.TimeEntry, log *slog.Logger) {
	if err := s.source.TagEntry(ctx, entry, models.LoggedTag); err != nil {
		log.Warn("failed to tag toggl time entry", "entry_id", entry.ID, "error", err)
	}
}

func entryNoun(n int) string {
	if n == 1 {
		return "entry"
	}
	return "entries"
}
