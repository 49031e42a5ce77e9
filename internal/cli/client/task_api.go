package client

import (
	"context"
	"fmt"
	"net/http"
)

// Task is the server's task representation
type Task struct {
	ID         int    `json:"id"`
	Task       string `json:"task"`
	Done       bool   `json:"done"`
	Owner      string `json:"gestionnaire"`
	OwnerID    int    `json:"gestionnaire_id"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
	IsRecent   bool   `json:"is_recent"`
	TaskLength int    `json:"task_length"`
	Status     string `json:"status"`
}

// TaskInput is a task write. Nil fields are omitted.
type TaskInput struct {
	Task *string `json:"task,omitempty"`
	Done *bool   `json:"done,omitempty"`
}

// Page is a page-number paginated list
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// StatusMessage is returned by the mark_* actions
type StatusMessage struct {
	Status string `json:"status"`
}

const tasksPath = "tasks/"

// TaskAPI covers the tasks resource
type TaskAPI struct {
	c *Client
}

// Tasks returns the task endpoints
func (c *Client) Tasks() *TaskAPI {
	return &TaskAPI{c: c}
}

func taskPath(id int) string {
	return fmt.Sprintf("tasks/%d/", id)
}

// List fetches a page of tasks. pageURL is a next/previous link, or empty for the first page.
func (t *TaskAPI) List(ctx context.Context, pageURL string) Result[Page[Task]] {
	if pageURL == "" {
		pageURL = tasksPath
	}
	return Do[Page[Task]](ctx, t.c, http.MethodGet, pageURL, nil)
}

func (t *TaskAPI) Get(ctx context.Context, id int) Result[Task] {
	return Do[Task](ctx, t.c, http.MethodGet, taskPath(id), nil)
}

func (t *TaskAPI) Create(ctx context.Context, input TaskInput) Result[Task] {
	return Do[Task](ctx, t.c, http.MethodPost, tasksPath, input)
}

// Update replaces a task (PUT)
func (t *TaskAPI) Update(ctx context.Context, id int, input TaskInput) Result[Task] {
	return Do[Task](ctx, t.c, http.MethodPut, taskPath(id), input)
}

// Patch partially updates a task
func (t *TaskAPI) Patch(ctx context.Context, id int, input TaskInput) Result[Task] {
	return Do[Task](ctx, t.c, http.MethodPatch, taskPath(id), input)
}

func (t *TaskAPI) Delete(ctx context.Context, id int) Result[struct{}] {
	return Do[struct{}](ctx, t.c, http.MethodDelete, taskPath(id), nil)
}

func (t *TaskAPI) MarkComplete(ctx context.Context, id int) Result[StatusMessage] {
	return Do[StatusMessage](ctx, t.c, http.MethodPost, taskPath(id)+"mark_complete/", nil)
}

func (t *TaskAPI) MarkPending(ctx context.Context, id int) Result[StatusMessage] {
	return Do[StatusMessage](ctx, t.c, http.MethodPost, taskPath(id)+"mark_pending/", nil)
}
