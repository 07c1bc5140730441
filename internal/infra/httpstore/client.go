// Package httpstore provides a domain.TaskStore backed by the planner REST service.
package httpstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/studyplan/planner/internal/domain"
)

// maxErrorBody bounds how much of an error response is kept in a StatusError.
const maxErrorBody = 512

// StatusError reports a non-2xx response from the service.
type StatusError struct {
	Method string
	Path   string
	Body   string
	Code   int
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.Code)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Code, e.Body)
}

// Client implements domain.TaskStore over HTTP.
type Client struct {
	http    *http.Client
	baseURL string
	userID  int
}

// Ensure Client implements domain.TaskStore.
var _ domain.TaskStore = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// New creates a Client for the service at baseURL acting as userID.
// timeout bounds every request; zero means no timeout.
func New(baseURL string, userID int, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		userID:  userID,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateTask creates a pending task owned by the configured user.
func (c *Client) CreateTask(ctx context.Context, in domain.TaskInput) (*domain.Task, error) {
	priority := in.Priority
	if priority == "" {
		priority = domain.DefaultPriority
	}
	body := taskPayload{
		Title:       in.Title,
		Description: in.Description,
		DueDate:     in.DueDate.String() + dueDateSuffix,
		Subject:     in.Subject,
		Type:        in.Type,
		Priority:    string(priority),
		Status:      string(domain.StatusPending),
		User:        c.userID,
	}
	var out wireTask
	if err := c.do(ctx, http.MethodPost, "/api/task/", body, &out, nil); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return out.toDomain(), nil
}

// GetTask fetches a task with its nested subtasks.
func (c *Client) GetTask(ctx context.Context, id int) (*domain.Task, error) {
	var out wireTask
	if err := c.do(ctx, http.MethodGet, taskPath(id), nil, &out, domain.ErrTaskNotFound); err != nil {
		return nil, fmt.Errorf("get task %d: %w", id, err)
	}
	return out.toDomain(), nil
}

// ListTasks fetches every task.
func (c *Client) ListTasks(ctx context.Context) ([]domain.Task, error) {
	var out []wireTask
	if err := c.do(ctx, http.MethodGet, "/api/task/", nil, &out, nil); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	tasks := make([]domain.Task, 0, len(out))
	for i := range out {
		tasks = append(tasks, *out[i].toDomain())
	}
	return tasks, nil
}

// DeleteTask deletes a task; the service cascades to its subtasks.
func (c *Client) DeleteTask(ctx context.Context, id int) error {
	if err := c.do(ctx, http.MethodDelete, taskPath(id), nil, nil, domain.ErrTaskNotFound); err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	return nil
}

// CreateSubtask creates a subtask under taskID.
func (c *Client) CreateSubtask(ctx context.Context, taskID int, v domain.SubtaskValues) (*domain.Subtask, error) {
	body := subtaskCreatePayload{
		Description:       v.Description,
		PlanificationDate: v.PlanificationDate.String(),
		NeededHours:       v.NeededHours,
		Task:              taskID,
	}
	var out wireSubtask
	if err := c.do(ctx, http.MethodPost, "/api/subtasks/", body, &out, domain.ErrTaskNotFound); err != nil {
		return nil, fmt.Errorf("create subtask: %w", err)
	}
	st := out.toDomain()
	if st.TaskID == 0 {
		st.TaskID = taskID
	}
	return st, nil
}

// UpdateSubtask patches the editable fields of a subtask.
func (c *Client) UpdateSubtask(ctx context.Context, id, taskID int, v domain.SubtaskValues) (*domain.Subtask, error) {
	body := subtaskPatchPayload{
		Description:       v.Description,
		PlanificationDate: v.PlanificationDate.String(),
		NeededHours:       v.NeededHours,
		TaskID:            taskID,
	}
	var out wireSubtask
	if err := c.do(ctx, http.MethodPatch, subtaskPath(id), body, &out, domain.ErrSubtaskNotFound); err != nil {
		return nil, fmt.Errorf("update subtask %d: %w", id, err)
	}
	st := out.toDomain()
	if st.TaskID == 0 {
		st.TaskID = taskID
	}
	return st, nil
}

// DeleteSubtask deletes a subtask.
func (c *Client) DeleteSubtask(ctx context.Context, id int) error {
	if err := c.do(ctx, http.MethodDelete, subtaskPath(id), nil, nil, domain.ErrSubtaskNotFound); err != nil {
		return fmt.Errorf("delete subtask %d: %w", id, err)
	}
	return nil
}

// ListTodaySubtasks queries the configured user's subtasks by planification date and status.
func (c *Client) ListTodaySubtasks(ctx context.Context, filter domain.SubtaskFilter) ([]domain.Subtask, error) {
	q := url.Values{}
	q.Set("fecha", filter.Date.String())
	q.Set("usuario", strconv.Itoa(c.userID))
	if filter.Status != "" {
		q.Set("status", string(filter.Status))
	}
	var out []wireSubtask
	if err := c.do(ctx, http.MethodGet, "/api/subtasks/?"+q.Encode(), nil, &out, nil); err != nil {
		return nil, fmt.Errorf("list today subtasks: %w", err)
	}
	subs := make([]domain.Subtask, 0, len(out))
	for i := range out {
		subs = append(subs, *out[i].toDomain())
	}
	return subs, nil
}

func taskPath(id int) string {
	return "/api/task/" + strconv.Itoa(id) + "/"
}

func subtaskPath(id int) string {
	return "/api/subtasks/" + strconv.Itoa(id) + "/"
}

// do sends a JSON request and decodes a JSON response into out when out is non-nil.
// A 404 is reported as notFound when it is non-nil.
func (c *Client) do(ctx context.Context, method, path string, in, out any, notFound error) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		statusErr := &StatusError{
			Method: method,
			Path:   path,
			Code:   resp.StatusCode,
			Body:   strings.TrimSpace(string(msg)),
		}
		if resp.StatusCode == http.StatusNotFound && notFound != nil {
			return errors.Join(notFound, statusErr)
		}
		return statusErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
