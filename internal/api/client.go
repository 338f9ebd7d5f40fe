// Package api is the HTTP client for the todo/auth REST collaborator. All
// name and shape translation between the wire and the in-memory task model
// happens here and nowhere else.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"eisen/internal/session"
	"eisen/internal/task"
)

// Client talks to the REST API. Fields are exported so tests can point it at
// a fake server.
type Client struct {
	HTTPClient *http.Client
	BaseURL    string
	Token      string
}

var _ task.Backend = (*Client)(nil)

func NewClient(baseURL, token string) *Client {
	return &Client{
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		Token:      token,
	}
}

// ID tolerates the API's mix of numeric and string task ids and normalizes
// to a string.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		*id = ""
		return nil
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		*id = ID(s[1 : len(s)-1])
		return nil
	}
	if _, err := strconv.ParseFloat(s, 64); err != nil {
		return fmt.Errorf("invalid id %s", s)
	}
	*id = ID(s)
	return nil
}

// Date accepts both date-only and RFC 3339 timestamps.
type Date time.Time

func (d *Date) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		*d = Date(time.Time{})
		return nil
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	if s == "" {
		*d = Date(time.Time{})
		return nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		*d = Date(t)
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return err
	}
	*d = Date(t)
	return nil
}

func (d Date) Time() time.Time { return time.Time(d) }

// wireTask mirrors the API's record. Older deployments use quadrant /
// pomodoroTime, newer ones priority / pomodoroMinutes; reads accept either,
// writes always send the API names.
type wireTask struct {
	ID              ID     `json:"id"`
	Title           string `json:"title"`
	Description     string `json:"description,omitempty"`
	DueDate         Date   `json:"dueDate"`
	Tag             string `json:"tag,omitempty"`
	Quadrant        string `json:"quadrant,omitempty"`
	Priority        string `json:"priority,omitempty"`
	Completed       bool   `json:"completed"`
	PomodoroTime    *int   `json:"pomodoroTime,omitempty"`
	PomodoroMinutes *int   `json:"pomodoroMinutes,omitempty"`
}

func (w wireTask) toTask() task.Task {
	q := w.Quadrant
	if q == "" {
		q = w.Priority
	}
	quadrant, _ := task.ParseQuadrant(q)

	minutes := 0
	if w.PomodoroMinutes != nil {
		minutes = *w.PomodoroMinutes
	} else if w.PomodoroTime != nil {
		minutes = *w.PomodoroTime
	}

	return task.Task{
		ID:           string(w.ID),
		Title:        w.Title,
		Description:  w.Description,
		DueDate:      w.DueDate.Time(),
		Tag:          w.Tag,
		Quadrant:     quadrant,
		Completed:    w.Completed,
		FocusMinutes: minutes,
	}
}

// draftBody is the request shape for create and update.
type draftBody struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	DueDate     string `json:"dueDate"`
	Tag         string `json:"tag,omitempty"`
	Priority    string `json:"priority"`
}

func toDraftBody(d task.Draft) draftBody {
	return draftBody{
		Title:       d.Title,
		Description: d.Description,
		DueDate:     d.DueDate.Format(time.RFC3339),
		Tag:         d.Tag,
		Priority:    string(d.Quadrant),
	}
}

type errorBody struct {
	Message string `json:"message"`
}

// do runs one API call. Authenticated requests are short-circuited before
// dispatch when the held token is absent, unparseable or expired.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	authenticated := !strings.HasPrefix(path, "/auth/")
	if authenticated {
		if err := session.ValidateToken(c.Token, time.Now()); err != nil {
			return err
		}
	}

	reqURL := c.BaseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authenticated {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return session.ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var e errorBody
		if json.Unmarshal(raw, &e) == nil && e.Message != "" {
			return fmt.Errorf("%s (status %d)", e.Message, resp.StatusCode)
		}
		return fmt.Errorf("request failed with status %d", resp.StatusCode)
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decoding response: %v", err)
		}
	}
	return nil
}

func (c *Client) ListTasks(ctx context.Context, filter task.DateFilter) ([]task.Task, error) {
	query := url.Values{}
	if !filter.On.IsZero() {
		query.Set("date", filter.On.Format("2006-01-02"))
	}
	var wire []wireTask
	if err := c.do(ctx, http.MethodGet, "/todos", query, nil, &wire); err != nil {
		return nil, err
	}
	tasks := make([]task.Task, 0, len(wire))
	for _, w := range wire {
		tasks = append(tasks, w.toTask())
	}
	return tasks, nil
}

func (c *Client) CreateTask(ctx context.Context, draft task.Draft) (*task.Task, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	var wire wireTask
	if err := c.do(ctx, http.MethodPost, "/todos", nil, toDraftBody(draft), &wire); err != nil {
		return nil, err
	}
	t := wire.toTask()
	return &t, nil
}

func (c *Client) UpdateTask(ctx context.Context, id string, draft task.Draft) (*task.Task, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	var wire wireTask
	if err := c.do(ctx, http.MethodPut, "/todos/"+url.PathEscape(id), nil, toDraftBody(draft), &wire); err != nil {
		return nil, err
	}
	t := wire.toTask()
	return &t, nil
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/todos/"+url.PathEscape(id), nil, nil, nil)
}

func (c *Client) SetCompleted(ctx context.Context, id string, completed bool) (*task.Task, error) {
	body := map[string]bool{"completed": completed}
	var wire wireTask
	if err := c.do(ctx, http.MethodPatch, "/todos/"+url.PathEscape(id)+"/complete", nil, body, &wire); err != nil {
		return nil, err
	}
	t := wire.toTask()
	return &t, nil
}

func (c *Client) AddFocusMinutes(ctx context.Context, id string, minutes int) (*task.Task, error) {
	if minutes < 0 {
		return nil, fmt.Errorf("minutes must be non-negative")
	}
	query := url.Values{}
	query.Set("minutes", strconv.Itoa(minutes))
	var wire wireTask
	if err := c.do(ctx, http.MethodPatch, "/todos/"+url.PathEscape(id)+"/pomodoro", query, nil, &wire); err != nil {
		return nil, err
	}
	t := wire.toTask()
	return &t, nil
}

// Login exchanges credentials for a token and profile.
func (c *Client) Login(ctx context.Context, email, password string) (string, session.User, error) {
	body := map[string]string{"email": email, "password": password}
	var resp struct {
		ID    int64  `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
		Token string `json:"token"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, body, &resp); err != nil {
		return "", session.User{}, err
	}
	return resp.Token, session.User{ID: resp.ID, Email: resp.Email, Name: resp.Name}, nil
}

// Signup creates an account. The caller still logs in afterwards.
func (c *Client) Signup(ctx context.Context, name, email, password string) error {
	body := map[string]string{"name": name, "email": email, "password": password}
	return c.do(ctx, http.MethodPost, "/auth/signup", nil, body, nil)
}
