package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haroonyaqubi/task-flow-app/internal/cli/client"
	"github.com/haroonyaqubi/task-flow-app/internal/cli/session"
)

// taskServer is an in-memory tasks endpoint with page size 2
type taskServer struct {
	mu       sync.Mutex
	tasks    []client.Task
	nextID   int
	calls    atomic.Int32
	failList bool
	srv      *httptest.Server
}

func newTaskServer(t *testing.T, texts ...string) *taskServer {
	ts := &taskServer{nextID: 1}
	for _, text := range texts {
		ts.add(text)
	}
	ts.srv = httptest.NewServer(http.HandlerFunc(ts.serve))
	t.Cleanup(ts.srv.Close)
	return ts
}

func (ts *taskServer) add(text string) client.Task {
	task := client.Task{ID: ts.nextID, Task: text, Status: "Pending"}
	ts.nextID++
	ts.tasks = append([]client.Task{task}, ts.tasks...)
	return task
}

func reply(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

func (ts *taskServer) serve(w http.ResponseWriter, r *http.Request) {
	ts.calls.Add(1)
	ts.mu.Lock()
	defer ts.mu.Unlock()

	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/tasks"), "/"), "/")

	switch {
	case parts[0] == "" && r.Method == http.MethodGet:
		if ts.failList {
			reply(w, http.StatusInternalServerError, map[string]string{"detail": "Internal server error"})
			return
		}
		page := 1
		if p := r.URL.Query().Get("page"); p != "" {
			page, _ = strconv.Atoi(p)
		}
		start, end := (page-1)*2, page*2
		if end > len(ts.tasks) {
			end = len(ts.tasks)
		}
		out := client.Page[client.Task]{Count: len(ts.tasks), Results: ts.tasks[start:end]}
		if end < len(ts.tasks) {
			next := fmt.Sprintf("%s/api/tasks/?page=%d", ts.srv.URL, page+1)
			out.Next = &next
		}
		if page > 1 {
			prev := ts.srv.URL + "/api/tasks/"
			out.Previous = &prev
		}
		reply(w, http.StatusOK, out)

	case parts[0] == "" && r.Method == http.MethodPost:
		var in client.TaskInput
		json.NewDecoder(r.Body).Decode(&in)
		if in.Task == nil || len(strings.TrimSpace(*in.Task)) < 3 {
			reply(w, http.StatusBadRequest, map[string][]string{"task": {"Task must be at least 3 characters long"}})
			return
		}
		reply(w, http.StatusCreated, ts.add(strings.TrimSpace(*in.Task)))

	default:
		id, _ := strconv.Atoi(parts[0])
		idx := -1
		for i := range ts.tasks {
			if ts.tasks[i].ID == id {
				idx = i
			}
		}
		if idx < 0 {
			reply(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
			return
		}
		action := ""
		if len(parts) > 1 {
			action = parts[1]
		}
		switch {
		case r.Method == http.MethodDelete:
			ts.tasks = append(ts.tasks[:idx], ts.tasks[idx+1:]...)
			reply(w, http.StatusNoContent, nil)
		case action == "mark_complete":
			ts.tasks[idx].Done = true
			reply(w, http.StatusOK, client.StatusMessage{Status: "Tâche terminée"})
		case action == "mark_pending":
			ts.tasks[idx].Done = false
			reply(w, http.StatusOK, client.StatusMessage{Status: "Tâche en attente"})
		case r.Method == http.MethodPut:
			var in client.TaskInput
			json.NewDecoder(r.Body).Decode(&in)
			ts.tasks[idx].Task = *in.Task
			if in.Done != nil {
				ts.tasks[idx].Done = *in.Done
			}
			reply(w, http.StatusOK, ts.tasks[idx])
		}
	}
}

func newBoard(t *testing.T, ts *taskServer) *Board {
	t.Helper()
	store := session.NewMemoryStore()
	require.NoError(t, store.Set(session.FieldAccess, "token"))
	c, err := client.New(ts.srv.URL+"/api/", store, client.WithHTTPClient(ts.srv.Client()))
	require.NoError(t, err)
	return NewBoard(c, zerolog.Nop())
}

func TestBoard_FetchAndPaginate(t *testing.T) {
	ts := newTaskServer(t, "first task", "second task", "third task")
	b := newBoard(t, ts)

	out := b.Fetch(context.Background(), "")
	require.True(t, out.Success)
	require.Len(t, b.Tasks(), 2)
	assert.Equal(t, "third task", b.Tasks()[0].Task)
	assert.Equal(t, 3, b.Total())
	assert.True(t, b.HasNext())
	assert.False(t, b.HasPrevious())

	out = b.Fetch(context.Background(), b.Pagination().Next)
	require.True(t, out.Success)
	require.Len(t, b.Tasks(), 1)
	assert.Equal(t, "first task", b.Tasks()[0].Task)
	assert.False(t, b.HasNext())
	assert.True(t, b.HasPrevious())
	assert.False(t, b.Loading())
}

func TestBoard_FetchFailure(t *testing.T) {
	ts := newTaskServer(t)
	ts.failList = true
	b := newBoard(t, ts)

	out := b.Fetch(context.Background(), "")
	require.False(t, out.Success)
	assert.Equal(t, "Internal server error", out.Message)
	assert.Equal(t, "Internal server error", b.Err())

	b.ClearError()
	assert.Empty(t, b.Err())
}

func TestBoard_CreateRejectsBlankLocally(t *testing.T) {
	ts := newTaskServer(t)
	b := newBoard(t, ts)

	out := b.Create(context.Background(), "   ")
	require.False(t, out.Success)
	assert.Equal(t, "Task cannot be empty", out.Message)
	assert.Equal(t, "Task cannot be empty", b.Err())
	assert.Equal(t, int32(0), ts.calls.Load(), "no network call")
}

func TestBoard_CreateRefetchesFirstPage(t *testing.T) {
	ts := newTaskServer(t, "existing task")
	b := newBoard(t, ts)

	out := b.Create(context.Background(), "Buy milk")
	require.True(t, out.Success)
	assert.Equal(t, "Task created successfully", out.Message)
	require.NotNil(t, out.Task)
	assert.Equal(t, "Buy milk", out.Task.Task)

	assert.Equal(t, int32(2), ts.calls.Load(), "create then refetch")
	require.Len(t, b.Tasks(), 2)
	assert.Equal(t, "Buy milk", b.Tasks()[0].Task)
}

func TestBoard_CreateValidationMessage(t *testing.T) {
	ts := newTaskServer(t)
	b := newBoard(t, ts)

	out := b.Create(context.Background(), "ab")
	require.False(t, out.Success)
	assert.Equal(t, "Task must be at least 3 characters long", out.Message)
	require.NotNil(t, out.Error)
	assert.Equal(t, client.ValidationError, out.Error.Kind)
}

func TestBoard_Toggle(t *testing.T) {
	ts := newTaskServer(t, "Call the bank")
	b := newBoard(t, ts)
	require.True(t, b.Fetch(context.Background(), "").Success)

	task, ok := b.Find(1)
	require.True(t, ok)

	out := b.Toggle(context.Background(), task)
	require.True(t, out.Success)
	assert.Equal(t, "Task marked as complete", out.Message)
	task, _ = b.Find(1)
	assert.True(t, task.Done)

	out = b.Toggle(context.Background(), task)
	require.True(t, out.Success)
	assert.Equal(t, "Task marked as pending", out.Message)
	task, _ = b.Find(1)
	assert.False(t, task.Done)
}

func TestBoard_UpdateAndDelete(t *testing.T) {
	ts := newTaskServer(t, "Write report")
	b := newBoard(t, ts)

	text := "Write final report"
	out := b.Update(context.Background(), 1, client.TaskInput{Task: &text})
	require.True(t, out.Success)
	task, ok := b.Find(1)
	require.True(t, ok)
	assert.Equal(t, "Write final report", task.Task)

	out = b.Delete(context.Background(), 1)
	require.True(t, out.Success)
	assert.Empty(t, b.Tasks())
	assert.Equal(t, 0, b.Total())

	out = b.Delete(context.Background(), 1)
	require.False(t, out.Success)
	assert.Equal(t, "Not found.", out.Message)
}
