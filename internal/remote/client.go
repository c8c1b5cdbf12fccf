// Package remote is the HTTP client for the taskdeck remote store API.
// It implements the syncer.Remote surface; all failures other than a
// missing target come back as plain transport errors for the scheduler
// to log and absorb.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/vinke29/taskdeck/internal/model"
	"github.com/vinke29/taskdeck/internal/syncer"
)

// Client talks to a taskdeckd server.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the given base URL (e.g.
// "http://localhost:8787").
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

type document struct {
	RemoteID string     `json:"remote_id"`
	Task     model.Task `json:"task"`
}

// List fetches a user's tasks for one collection, in server order.
func (c *Client) List(ctx context.Context, userID string, col syncer.Collection) ([]model.Task, error) {
	var out struct {
		Tasks []document `json:"tasks"`
	}
	err := c.do(ctx, http.MethodGet, c.collectionPath(userID, col), nil, &out)
	if err != nil {
		return nil, err
	}

	tasks := make([]model.Task, 0, len(out.Tasks))
	for _, doc := range out.Tasks {
		t := doc.Task
		t.RemoteID = doc.RemoteID
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// Create stores a task and returns the remote id the server assigned.
func (c *Client) Create(ctx context.Context, userID string, col syncer.Collection, t model.Task) (string, error) {
	var out struct {
		RemoteID string `json:"remote_id"`
	}
	if err := c.do(ctx, http.MethodPost, c.collectionPath(userID, col), t, &out); err != nil {
		return "", err
	}
	if out.RemoteID == "" {
		return "", fmt.Errorf("create returned no remote id")
	}
	return out.RemoteID, nil
}

// Update overwrites the task stored under its remote id.
func (c *Client) Update(ctx context.Context, userID string, col syncer.Collection, t model.Task) error {
	if t.RemoteID == "" {
		return fmt.Errorf("update without remote id")
	}
	return c.do(ctx, http.MethodPut, c.taskPath(userID, t.RemoteID), t, nil)
}

// Delete removes the task stored under remoteID.
func (c *Client) Delete(ctx context.Context, userID string, col syncer.Collection, remoteID string) error {
	return c.do(ctx, http.MethodDelete, c.taskPath(userID, remoteID), nil, nil)
}

// Move transfers a task to the destination collection. The server keeps
// the remote id stable, so no re-attach is needed afterwards.
func (c *Client) Move(ctx context.Context, userID string, t model.Task, from, to syncer.Collection) error {
	if t.RemoteID == "" {
		return fmt.Errorf("move without remote id")
	}
	body := struct {
		To   string     `json:"to"`
		Task model.Task `json:"task"`
	}{To: string(to), Task: t}
	return c.do(ctx, http.MethodPost, c.taskPath(userID, t.RemoteID)+"/move", body, nil)
}

func (c *Client) collectionPath(userID string, col syncer.Collection) string {
	return fmt.Sprintf("%s/api/users/%s/collections/%s/tasks",
		c.baseURL, url.PathEscape(userID), url.PathEscape(string(col)))
}

func (c *Client) taskPath(userID, remoteID string) string {
	return fmt.Sprintf("%s/api/users/%s/tasks/%s",
		c.baseURL, url.PathEscape(userID), url.PathEscape(remoteID))
}

// do runs one JSON request/response round trip. A 404 maps to
// syncer.ErrNotFound; any other non-2xx status is a write error.
func (c *Client) do(ctx context.Context, method, rawURL string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return syncer.ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s: status %d: %s", method, rawURL, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
