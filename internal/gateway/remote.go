package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/onejobco/onejob/internal/logger"
	"github.com/onejobco/onejob/internal/model"
)

// Remote talks JSON over HTTP to a task server. Timestamps arrive as
// ISO-8601 strings and are parsed during decoding, so callers only ever
// see time.Time values.
type Remote struct {
	baseURL    string
	httpClient *http.Client
}

// NewRemote creates a gateway against the given server base URL
func NewRemote(baseURL string) *Remote {
	return &Remote{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// ListTasks fetches all tasks
func (r *Remote) ListTasks(ctx context.Context) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.do(ctx, http.MethodGet, "/tasks", nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// CreateTask posts a new task
func (r *Remote) CreateTask(ctx context.Context, title, description string) (model.Task, error) {
	if strings.TrimSpace(title) == "" {
		return model.Task{}, fmt.Errorf("%w: title must not be empty", ErrValidation)
	}

	body := map[string]string{"title": title, "description": description}
	var task model.Task
	if err := r.do(ctx, http.MethodPost, "/tasks", body, &task); err != nil {
		return model.Task{}, err
	}
	return task, nil
}

// UpdateTask sends a partial update
func (r *Remote) UpdateTask(ctx context.Context, id string, update TaskUpdate) (model.Task, error) {
	var task model.Task
	if err := r.do(ctx, http.MethodPut, "/tasks/"+id, update, &task); err != nil {
		return model.Task{}, err
	}
	return task, nil
}

// CreateSubstack creates a named substack under a task
func (r *Remote) CreateSubstack(ctx context.Context, taskID, name string) (model.Substack, error) {
	if strings.TrimSpace(name) == "" {
		return model.Substack{}, fmt.Errorf("%w: name must not be empty", ErrValidation)
	}

	body := map[string]string{"name": name}
	var sub model.Substack
	if err := r.do(ctx, http.MethodPost, "/tasks/"+taskID+"/substacks", body, &sub); err != nil {
		return model.Substack{}, err
	}
	return sub, nil
}

// DeleteTask removes a task. A 404 counts as success so deletes can be
// retried.
func (r *Remote) DeleteTask(ctx context.Context, id string) error {
	err := r.do(ctx, http.MethodDelete, "/tasks/"+id, nil, nil)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	return nil
}

// do performs one request and decodes the response into out (if non-nil)
func (r *Remote) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w: %v", method, path, ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return r.statusError(method, path, resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}

// statusError maps a non-2xx response to the gateway error kinds
func (r *Remote) statusError(method, path string, resp *http.Response) error {
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	logger.Warn("Remote request failed",
		logger.F("method", method),
		logger.F("path", path),
		logger.F("status", resp.StatusCode))

	switch resp.StatusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%s %s: %w", method, path, ErrNotFound)
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return fmt.Errorf("%s %s: %w: %s", method, path, ErrValidation, strings.TrimSpace(string(respBody)))
	default:
		return &TransportError{Status: resp.StatusCode, Body: string(respBody)}
	}
}
