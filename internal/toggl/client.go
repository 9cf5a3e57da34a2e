// Package toggl reads time entries from the Toggl v8 API and tags them once
// they have been logged.
package toggl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/go-querystring/query"

	"github.com/danielolaszy/toggl2jira/pkg/models"
)

// apiTokenPassword is the fixed basic auth password Toggl expects with an API token.
const apiTokenPassword = "api_token"

const startDateLayout = "2006-01-02T15:04:05.000Z07:00"

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig configures a Client.
type ClientConfig struct {
	BaseURL    string
	APIToken   string
	HTTPClient httpDoer
}

// Client is a minimal Toggl API client.
type Client struct {
	baseURL    string
	apiToken   string
	httpClient httpDoer
}

type timeEntriesQuery struct {
	StartDate string `url:"start_date"`
}

type tagsUpdate struct {
	TimeEntry struct {
		Tags []string `json:"tags"`
	} `json:"time_entry"`
}

// NewClient validates cfg and returns a Client.
func NewClient(cfg ClientConfig) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("toggl base URL is required")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid toggl base URL %q", cfg.BaseURL)
	}

	doer := cfg.HTTPClient
	if doer == nil {
		doer = &http.Client{Timeout: 30 * time.Second}
	}

	return &Client{
		baseURL:    baseURL,
		apiToken:   cfg.APIToken,
		httpClient: doer,
	}, nil
}

// LookbackStart returns local midnight of the day that lies days before now.
func LookbackStart(now time.Time, days int) time.Time {
	day := now.AddDate(0, 0, -days)
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, now.Location())
}

// FormatStartDate renders since the way the start_date parameter is sent:
// UTC with millisecond precision.
func FormatStartDate(since time.Time) string {
	return since.UTC().Format(startDateLayout)
}

// FetchEntries returns every time entry started at or after since.
func (c *Client) FetchEntries(ctx context.Context, since time.Time) ([]models.TimeEntry, error) {
	values, err := query.Values(timeEntriesQuery{StartDate: FormatStartDate(since)})
	if err != nil {
		return nil, fmt.Errorf("encode time entries query: %w", err)
	}

	var entries []models.TimeEntry
	if err := c.doJSON(ctx, http.MethodGet, "/time_entries?"+values.Encode(), nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// TagEntry appends tag to the tags entry already carries.
func (c *Client) TagEntry(ctx context.Context, entry models.TimeEntry, tag string) error {
	var body tagsUpdate
	body.TimeEntry.Tags = append(slices.Clone(entry.Tags), tag)

	path := "/time_entries/" + strconv.FormatInt(entry.ID, 10)
	return c.doJSON(ctx, http.MethodPost, path, body, nil)
}

func (c *Client) doJSON(ctx context.Context, method, endpointPath string, body any, out any) error {
	var bodyReader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpointPath, bodyReader)
	if err != nil {
		return fmt.Errorf("create request %s %s: %w", method, endpointPath, err)
	}
	req.SetBasicAuth(c.apiToken, apiTokenPassword)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s failed: %w", method, endpointPath, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		responseBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf(
			"request %s %s failed with status %d: %s",
			method,
			endpointPath,
			resp.StatusCode,
			strings.TrimSpace(string(responseBody)),
		)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response %s %s: %w", method, endpointPath, err)
	}
	return nil
}
