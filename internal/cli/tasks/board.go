// Package tasks keeps the client's view of the task list and runs task
// mutations, refetching the first page after each one.
package tasks

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/haroonyaqubi/task-flow-app/internal/cli/client"
)

const (
	msgEmptyTask     = "Task cannot be empty"
	msgFetchFailed   = "Failed to fetch tasks"
	msgCreateFailed  = "Failed to create task"
	msgUpdateFailed  = "Failed to update task"
	msgDeleteFailed  = "Failed to delete task"
	msgToggleFailed  = "Failed to update task status"
	msgCreated       = "Task created successfully"
	msgUpdated       = "Task updated successfully"
	msgDeleted       = "Task deleted successfully"
	msgMarkedDone    = "Task marked as complete"
	msgMarkedPending = "Task marked as pending"
)

// Pagination describes the loaded page
type Pagination struct {
	Next     string
	Previous string
	Count    int
}

// Outcome is the result of a board operation
type Outcome struct {
	Success bool
	Message string
	Task    *client.Task
	Error   *client.APIError
}

// Board holds the currently loaded page of tasks
type Board struct {
	api    *client.TaskAPI
	logger zerolog.Logger

	mu         sync.RWMutex
	tasks      []client.Task
	pagination Pagination
	loading    bool
	err        string
}

// NewBoard creates an empty board over c
func NewBoard(c *client.Client, logger zerolog.Logger) *Board {
	return &Board{api: c.Tasks(), logger: logger}
}

// Fetch loads the page at pageURL, or the first page when empty
func (b *Board) Fetch(ctx context.Context, pageURL string) Outcome {
	b.begin()
	defer b.end()
	return b.fetch(ctx, pageURL)
}

func (b *Board) fetch(ctx context.Context, pageURL string) Outcome {
	res := b.api.List(ctx, pageURL)
	if !res.Success {
		return b.fail(res.Error, errorMessage(res.Error, msgFetchFailed))
	}

	b.mu.Lock()
	b.tasks = res.Data.Results
	if b.tasks == nil {
		b.tasks = []client.Task{}
	}
	b.pagination = Pagination{
		Next:     deref(res.Data.Next),
		Previous: deref(res.Data.Previous),
		Count:    res.Data.Count,
	}
	b.mu.Unlock()

	return Outcome{Success: true}
}

// Create adds a task. Blank text is rejected without a network call.
func (b *Board) Create(ctx context.Context, text string) Outcome {
	if strings.TrimSpace(text) == "" {
		b.setErr(msgEmptyTask)
		return Outcome{Message: msgEmptyTask}
	}

	b.begin()
	defer b.end()

	res := b.api.Create(ctx, client.TaskInput{Task: &text})
	if !res.Success {
		return b.fail(res.Error, errorMessage(res.Error, msgCreateFailed))
	}
	return b.afterMutation(ctx, msgCreated, &res.Data)
}

// Update replaces a task's text and done flag
func (b *Board) Update(ctx context.Context, id int, input client.TaskInput) Outcome {
	b.begin()
	defer b.end()

	res := b.api.Update(ctx, id, input)
	if !res.Success {
		return b.fail(res.Error, errorMessage(res.Error, msgUpdateFailed))
	}
	return b.afterMutation(ctx, msgUpdated, &res.Data)
}

// Delete removes a task
func (b *Board) Delete(ctx context.Context, id int) Outcome {
	b.begin()
	defer b.end()

	res := b.api.Delete(ctx, id)
	if !res.Success {
		return b.fail(res.Error, errorMessage(res.Error, msgDeleteFailed))
	}
	return b.afterMutation(ctx, msgDeleted, nil)
}

// Toggle marks a done task pending and any other task complete
func (b *Board) Toggle(ctx context.Context, task client.Task) Outcome {
	b.begin()
	defer b.end()

	var res client.Result[client.StatusMessage]
	msg := msgMarkedDone
	if task.Done {
		res = b.api.MarkPending(ctx, task.ID)
		msg = msgMarkedPending
	} else {
		res = b.api.MarkComplete(ctx, task.ID)
	}
	if !res.Success {
		return b.fail(res.Error, errorMessage(res.Error, msgToggleFailed))
	}
	return b.afterMutation(ctx, msg, nil)
}

// afterMutation refetches the first page. The mutation's outcome stands even
// if the refetch fails; the refetch error is kept on the board.
func (b *Board) afterMutation(ctx context.Context, msg string, task *client.Task) Outcome {
	if out := b.fetch(ctx, ""); !out.Success {
		b.logger.Debug().Str("error", out.Message).Msg("Refetch after mutation failed")
	}
	return Outcome{Success: true, Message: msg, Task: task}
}

// Tasks returns the loaded page
func (b *Board) Tasks() []client.Task {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]client.Task(nil), b.tasks...)
}

// Find returns the loaded task with id
func (b *Board) Find(id int) (client.Task, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, t := range b.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return client.Task{}, false
}

func (b *Board) Pagination() Pagination {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.pagination
}

func (b *Board) HasNext() bool     { return b.Pagination().Next != "" }
func (b *Board) HasPrevious() bool { return b.Pagination().Previous != "" }
func (b *Board) Total() int        { return b.Pagination().Count }

func (b *Board) Loading() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.loading
}

// Err returns the last operation's error message, or ""
func (b *Board) Err() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.err
}

func (b *Board) ClearError() {
	b.setErr("")
}

func (b *Board) begin() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.loading = true
	b.err = ""
}

func (b *Board) end() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.loading = false
}

func (b *Board) setErr(msg string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.err = msg
}

func (b *Board) fail(cause *client.APIError, msg string) Outcome {
	// Transport failures carry no payload, so report them as they are
	if cause != nil && cause.Kind == client.NetworkError {
		msg = cause.Message
	}
	b.setErr(msg)
	return Outcome{Message: msg, Error: cause}
}

// errorMessage picks the server's detail, else the first task field error,
// else fallback
func errorMessage(e *client.APIError, fallback string) string {
	if msg := e.Detail(); msg != "" {
		return msg
	}
	if msg := e.FirstFieldError("task"); msg != "" {
		return msg
	}
	return fallback
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
