package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"taskdeck/internal/model"
)

type TaskInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func taskPath(id string) string {
	return "/tasks/" + url.PathEscape(strings.TrimSpace(id))
}

func (c *Client) ListTasks(ctx context.Context) ([]model.Task, error) {
	raw, err := c.do(ctx, request{method: http.MethodGet, path: "/tasks", protected: true})
	if err != nil {
		return nil, err
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return []model.Task{}, nil
	}

	var tasks []model.Task
	if raw[0] == '{' {
		// Some servers wrap the collection.
		var wrapped struct {
			Tasks []model.Task `json:"tasks"`
		}
		if err := decode(raw, &wrapped); err != nil {
			return nil, err
		}
		tasks = wrapped.Tasks
	} else if err := decode(raw, &tasks); err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	return tasks, nil
}

// GetTask fetches one task's full detail. The server wraps it as {"task": {...}}.
func (c *Client) GetTask(ctx context.Context, id string) (model.Task, error) {
	raw, err := c.do(ctx, request{method: http.MethodGet, path: taskPath(id), protected: true})
	if err != nil {
		return model.Task{}, err
	}
	t, _, err := decodeTask(raw)
	if err != nil {
		return model.Task{}, err
	}
	if t.Title == "" && t.Description == "" && t.ID == "" {
		return model.Task{}, fmt.Errorf("task %s: response has no task", id)
	}
	// The detail payload may omit the id it was fetched by.
	if t.ID == "" {
		t.ID = strings.TrimSpace(id)
	}
	return t, nil
}

// CreateTask returns the server-assigned record. A 2xx without a readable record still
// counts as created; the result then has an empty ID and carries the submitted fields.
func (c *Client) CreateTask(ctx context.Context, in TaskInput) (model.Task, error) {
	raw, err := c.do(ctx, request{method: http.MethodPost, path: "/tasks", body: in, protected: true})
	if err != nil {
		return model.Task{}, err
	}
	t, _, err := decodeTask(raw)
	if err != nil {
		// The task exists server-side; an unreadable body is not a failed create.
		c.log.Warn("create task: unreadable response", "err", err)
	}
	if t.Title == "" && t.Description == "" {
		t.Title, t.Description = in.Title, in.Description
	}
	return t, nil
}

// UpdateTask returns the server's representation when the response carries one,
// otherwise nil.
func (c *Client) UpdateTask(ctx context.Context, id string, in TaskInput) (*model.Task, error) {
	raw, err := c.do(ctx, request{method: http.MethodPut, path: taskPath(id), body: in, protected: true})
	if err != nil {
		return nil, err
	}
	t, ok, err := decodeTask(raw)
	if err != nil || !ok {
		// The body is optional; an unreadable one is not a failed update.
		return nil, nil
	}
	return &t, nil
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	_, err := c.do(ctx, request{method: http.MethodDelete, path: taskPath(id), protected: true})
	return err
}

// decodeTask accepts {"task": {...}} or a bare task. ok is false when no task with an
// id is present.
func decodeTask(raw []byte) (model.Task, bool, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return model.Task{}, false, nil
	}
	var wrapped struct {
		Task json.RawMessage `json:"task"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return model.Task{}, false, fmt.Errorf("decode task: %w", err)
	}
	body := raw
	if t := bytes.TrimSpace(wrapped.Task); len(t) > 0 && t[0] == '{' {
		body = t
	}
	var t model.Task
	if err := json.Unmarshal(body, &t); err != nil {
		return model.Task{}, false, fmt.Errorf("decode task: %w", err)
	}
	return t, t.ID != "", nil
}
