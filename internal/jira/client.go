// Package jira posts Tempo worklogs to a Jira deployment.
package jira

import (
	"context"
	"fmt"
	"net/http"
	"time"

	jira "github.com/andygrunwald/go-jira"

	"github.com/danielolaszy/toggl2jira/internal/config"
	"github.com/danielolaszy/toggl2jira/internal/logging"
)

const (
	unitedWorklogPath = "rest/tempo-timesheets/3/worklogs/"
	wtWorklogPath     = "rest/tempo-timesheets/4/worklogs"

	requestTimeout = 30 * time.Second
)

// Client handles worklog submission to a single Jira deployment.
type Client struct {
	client  *jira.Client
	baseURL string
	path    string
	headers map[string]string
}

// NewUnitedClient creates a client for the Tempo v3 deployment.
func NewUnitedClient(target config.JiraTarget) (*Client, error) {
	return newClient(target, unitedWorklogPath, nil)
}

// NewWTClient creates a client for the Tempo v4 deployment. Tempo v4 rejects
// cross-origin posts unless the XSRF check is disabled and Origin is set.
func NewWTClient(target config.JiraTarget) (*Client, error) {
	headers := map[string]string{
		"X-Atlassian-Token": "no-check",
		"Origin":            target.URL,
	}
	return newClient(target, wtWorklogPath, headers)
}

func newClient(target config.JiraTarget, path string, headers map[string]string) (*Client, error) {
	if target.URL == "" {
		return nil, fmt.Errorf("jira url is required")
	}

	tp := jira.BasicAuthTransport{
		Username: target.Username,
		Password: target.Password,
	}
	httpClient := tp.Client()
	httpClient.Timeout = requestTimeout

	client, err := jira.NewClient(httpClient, target.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to create jira client for %s: %w", target.URL, err)
	}

	logging.Debug("jira client configured",
		"url", target.URL,
		"username", target.Username,
		"password", logging.MaskSensitive(target.Password))

	return &Client{
		client:  client,
		baseURL: target.URL,
		path:    path,
		headers: headers,
	}, nil
}

// URL returns the base URL of the deployment.
func (c *Client) URL() string {
	return c.baseURL
}

// PostWorklog submits payload as a new Tempo worklog. Any status other than
// 200 is treated as a rejection.
func (c *Client) PostWorklog(ctx context.Context, payload interface{}) error {
	req, err := c.client.NewRequestWithContext(ctx, http.MethodPost, c.path, payload)
	if err != nil {
		return fmt.Errorf("failed to build worklog request: %w", err)
	}
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	resp, err := c.client.Do(req, nil)
	if resp != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		return fmt.Errorf("failed to post worklog to %s: %w", c.baseURL, jira.NewJiraError(resp, err))
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to post worklog to %s: unexpected status %d", c.baseURL, resp.StatusCode)
	}

	logging.Debug("worklog posted", "url", c.baseURL, "status", resp.StatusCode)
	return nil
}
