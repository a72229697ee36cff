package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"todo-gateway/core"
)

// Client is the downstream todo store over its REST contract. Every call
// fetches a bearer token from the token source and attaches it; the wire
// shape (snake_case, is_complete flag) never leaks past this package.
type Client struct {
	log        *slog.Logger
	baseURL    string
	httpClient *http.Client
	tokens     core.TokenSource
}

func NewClient(log *slog.Logger, baseURL string, tokens core.TokenSource, timeout time.Duration) *Client {
	return &Client{
		log:        log,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		tokens:     tokens,
	}
}

// NewPinger returns a client good only for health probes; it carries no
// token source and must not be used for todo calls.
func NewPinger(log *slog.Logger, baseURL string, timeout time.Duration) core.Pinger {
	return NewClient(log, baseURL, nil, timeout)
}

// ---- wire shapes

type todoRecord struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	IsComplete  bool      `json:"is_complete"`
	Priority    string    `json:"priority,omitempty"`
	DueDate     *string   `json:"due_date,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type listResponse struct {
	Todos []todoRecord `json:"todos"`
	Total int          `json:"total"`
}

type createIn struct {
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
}

type statusIn struct {
	IsComplete bool `json:"is_complete"`
}

type fieldsIn struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
}

type errorBody struct {
	Detail string `json:"detail"`
	Error  string `json:"error"`
}

// taskFromRecord is the remote-to-local translation. A record without a
// description yields a nil description, never "".
func taskFromRecord(r todoRecord) core.Task {
	status := core.StatusPending
	if r.IsComplete {
		status = core.StatusCompleted
	}

	var desc *string
	if r.Description != nil {
		d := *r.Description
		desc = &d
	}

	return core.Task{
		ID:          r.ID,
		OwnerID:     r.UserID,
		Title:       r.Title,
		Description: desc,
		Status:      status,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// ---- operations

func (c *Client) ListTodos(ctx context.Context, f core.ListFilter) ([]core.Task, int, error) {
	q := url.Values{}
	if f.Skip > 0 {
		q.Set("skip", strconv.Itoa(f.Skip))
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	if f.IsComplete != nil {
		q.Set("is_complete", strconv.FormatBool(*f.IsComplete))
	}

	var out listResponse
	if err := c.do(ctx, http.MethodGet, "/api/todos", q, nil, http.StatusOK, &out); err != nil {
		return nil, 0, err
	}

	tasks := make([]core.Task, 0, len(out.Todos))
	for _, rec := range out.Todos {
		tasks = append(tasks, taskFromRecord(rec))
	}
	return tasks, out.Total, nil
}

func (c *Client) GetTodo(ctx context.Context, id string) (core.Task, error) {
	var rec todoRecord
	if err := c.do(ctx, http.MethodGet, "/api/todos/"+id, nil, nil, http.StatusOK, &rec); err != nil {
		return core.Task{}, err
	}
	return taskFromRecord(rec), nil
}

func (c *Client) CreateTodo(ctx context.Context, title string, description *string) (core.Task, error) {
	var rec todoRecord
	in := createIn{Title: title, Description: description}
	if err := c.do(ctx, http.MethodPost, "/api/todos", nil, in, http.StatusCreated, &rec); err != nil {
		return core.Task{}, err
	}
	return taskFromRecord(rec), nil
}

// SetTodoStatus is the status-only PATCH; the backend treats it as a
// different request shape from the content-only PUT.
func (c *Client) SetTodoStatus(ctx context.Context, id string, complete bool) (core.Task, error) {
	var rec todoRecord
	if err := c.do(ctx, http.MethodPatch, "/api/todos/"+id, nil, statusIn{IsComplete: complete}, http.StatusOK, &rec); err != nil {
		return core.Task{}, err
	}
	return taskFromRecord(rec), nil
}

func (c *Client) UpdateTodoFields(ctx context.Context, id string, p core.TaskPatch) (core.Task, error) {
	if p.Empty() {
		return core.Task{}, fmt.Errorf("%w: empty patch", core.ErrValidation)
	}

	var rec todoRecord
	in := fieldsIn{Title: p.Title, Description: p.Description}
	if err := c.do(ctx, http.MethodPut, "/api/todos/"+id, nil, in, http.StatusOK, &rec); err != nil {
		return core.Task{}, err
	}
	return taskFromRecord(rec), nil
}

func (c *Client) DeleteTodo(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/todos/"+id, nil, nil, http.StatusNoContent, nil)
}

func (c *Client) Stats(ctx context.Context) (core.Stats, error) {
	var out core.Stats
	if err := c.do(ctx, http.MethodGet, "/api/todos/stats", nil, nil, http.StatusOK, &out); err != nil {
		return core.Stats{}, err
	}
	return out, nil
}

func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("backend unreachable: %w", core.ErrUnavailable)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("backend responded %d: %w", resp.StatusCode, core.ErrUnavailable)
	}
	return nil
}

// ---- transport

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in any, want int, out any) error {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return err
	}

	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s payload: %w", method, path, err)
		}
		body = bytes.NewReader(buf)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("backend unreachable: %w: %w", core.ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != want {
		return remoteErr(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode %s %s response: %w", method, path, err)
		}
	}
	return nil
}

func remoteErr(resp *http.Response) error {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return &core.RemoteError{StatusCode: resp.StatusCode}
	}

	var eb errorBody
	detail := ""
	if jsonErr := json.Unmarshal(raw, &eb); jsonErr == nil {
		if eb.Detail != "" {
			detail = eb.Detail
		} else if eb.Error != "" {
			detail = eb.Error
		}
	}
	return &core.RemoteError{StatusCode: resp.StatusCode, Detail: detail}
}

var _ core.TodosAPI = (*Client)(nil)
