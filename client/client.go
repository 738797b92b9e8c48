// client/client.go
package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"duck/internal/api"
	"duck/internal/change"
	"duck/internal/errors"
	"duck/internal/history"
)

// Client talks to a duckd server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: time.Second * 10,
		},
	}
}

// Head returns the head commit id and the number of commits.
func (c *Client) Head() (string, int, error) {
	var result struct {
		Head    string `json:"head"`
		Commits int    `json:"commits"`
	}
	if err := c.get("/api/head", &result); err != nil {
		return "", 0, err
	}
	return result.Head, result.Commits, nil
}

func (c *Client) Log() ([]api.CommitSummary, error) {
	var result []api.CommitSummary
	if err := c.get("/api/log", &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) Commit(ref string) (*history.CommitEntry, error) {
	var result history.CommitEntry
	if err := c.get("/api/commits/"+url.PathEscape(ref), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) Change(ref, path string) (*change.Record, error) {
	var result change.Record
	if err := c.get(fmt.Sprintf("/api/commits/%s/changes/%s", url.PathEscape(ref), path), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) get(path string, v any) error {
	resp, err := c.httpClient.Get(c.baseURL + path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr errors.Error
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Type != "" {
			return &apiErr
		}
		return fmt.Errorf("unexpected status: %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
