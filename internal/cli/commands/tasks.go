package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/haroonyaqubi/task-flow-app/internal/cli/client"
	"github.com/haroonyaqubi/task-flow-app/internal/cli/tasks"
)

const (
	tasksLocation    = "/tasks"
	maxTaskTextWidth = 60
)

// NewTasksCmd creates the tasks command group
func NewTasksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tasks",
		Aliases: []string{"task"},
		Short:   "Manage your tasks",
	}

	cmd.AddCommand(
		newTasksListCmd(),
		newTasksAddCmd(),
		newTasksShowCmd(),
		newTasksEditCmd(),
		newTasksRemoveCmd(),
		newTasksMarkCmd("done", "Mark a task as complete", false),
		newTasksMarkCmd("undo", "Mark a task as pending", true),
		newTasksToggleCmd(),
	)
	return cmd
}

// newBoard builds a runtime and a task board for a command that needs a session
func newBoard(opts ...Option) (*runtime, *tasks.Board, error) {
	r, err := newRuntime(tasksLocation, opts...)
	if err != nil {
		return nil, nil, err
	}
	if err := r.requireSession(); err != nil {
		return nil, nil, err
	}
	return r, tasks.NewBoard(r.client, r.logger), nil
}

func parseTaskID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid task ID %q", arg)
	}
	return id, nil
}

func newTasksListCmd() *cobra.Command {
	var page int

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List tasks, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTasksList(cmd.Context(), page)
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "Page number")

	return cmd
}

func runTasksList(ctx context.Context, page int, opts ...Option) error {
	if page < 1 {
		return fmt.Errorf("invalid page %d", page)
	}

	r, board, err := newBoard(opts...)
	if err != nil {
		return err
	}

	pageURL := ""
	if page > 1 {
		pageURL = fmt.Sprintf("tasks/?page=%d", page)
	}
	if out := board.Fetch(ctx, pageURL); !out.Success {
		return failed("failed to list tasks", out.Message, out.Error)
	}

	list := board.Tasks()
	if len(list) == 0 {
		r.printf("No tasks found.\n")
		r.printf("\nCreate a task with: taskflow tasks add <text>\n")
		return nil
	}

	r.printf("Tasks (page %d, %d total):\n\n", page, board.Total())

	w := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tTASK\tOWNER\tUPDATED")
	fmt.Fprintln(w, "──\t──────\t────\t─────\t───────")
	for _, t := range list {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", t.ID, t.Status, truncate(t.Task, maxTaskTextWidth), t.Owner, t.UpdatedAt)
	}
	w.Flush()

	if board.HasPrevious() || board.HasNext() {
		r.printf("\n")
	}
	if board.HasPrevious() {
		r.printf("Previous page: taskflow tasks ls --page %d\n", page-1)
	}
	if board.HasNext() {
		r.printf("Next page: taskflow tasks ls --page %d\n", page+1)
	}
	return nil
}

func newTasksAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <text>",
		Short: "Create a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTasksAdd(cmd.Context(), strings.Join(args, " "))
		},
	}
}

func runTasksAdd(ctx context.Context, text string, opts ...Option) error {
	r, board, err := newBoard(opts...)
	if err != nil {
		return err
	}

	out := board.Create(ctx, text)
	if !out.Success {
		return failed("failed to create task", out.Message, out.Error)
	}

	r.printf("✓ %s (#%d)\n", out.Message, out.Task.ID)
	return nil
}

func newTasksShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			return runTasksShow(cmd.Context(), id)
		},
	}
}

func runTasksShow(ctx context.Context, id int, opts ...Option) error {
	r, err := newRuntime(tasksLocation, opts...)
	if err != nil {
		return err
	}
	if err := r.requireSession(); err != nil {
		return err
	}

	res := r.client.Tasks().Get(ctx, id)
	if !res.Success {
		return failed(fmt.Sprintf("failed to load task %d", id), res.Error.Detail(), res.Error)
	}

	t := res.Data
	r.printf("Task #%d\n", t.ID)
	r.printf("  Text:    %s\n", t.Task)
	r.printf("  Status:  %s\n", t.Status)
	r.printf("  Owner:   %s\n", t.Owner)
	r.printf("  Created: %s\n", t.CreatedAt)
	r.printf("  Updated: %s\n", t.UpdatedAt)
	if t.IsRecent {
		r.printf("  (created in the last 24 hours)\n")
	}
	return nil
}

type editOptions struct {
	text    string
	done    bool
	pending bool
}

func newTasksEditCmd() *cobra.Command {
	var o editOptions

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a task's text or status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			return runTasksEdit(cmd.Context(), id, o)
		},
	}

	cmd.Flags().StringVar(&o.text, "text", "", "New task text")
	cmd.Flags().BoolVar(&o.done, "done", false, "Mark the task complete")
	cmd.Flags().BoolVar(&o.pending, "pending", false, "Mark the task pending")
	cmd.MarkFlagsMutuallyExclusive("done", "pending")

	return cmd
}

func runTasksEdit(ctx context.Context, id int, o editOptions, opts ...Option) error {
	if o.text == "" && !o.done && !o.pending {
		return fmt.Errorf("nothing to update (use --text, --done or --pending)")
	}
	if o.done && o.pending {
		return fmt.Errorf("--done and --pending cannot be used together")
	}

	r, board, err := newBoard(opts...)
	if err != nil {
		return err
	}

	// The update replaces the task, so start from its current state
	current := r.client.Tasks().Get(ctx, id)
	if !current.Success {
		return failed(fmt.Sprintf("failed to load task %d", id), current.Error.Detail(), current.Error)
	}

	text := current.Data.Task
	if o.text != "" {
		text = o.text
	}
	done := current.Data.Done
	if o.done {
		done = true
	}
	if o.pending {
		done = false
	}

	out := board.Update(ctx, id, client.TaskInput{Task: &text, Done: &done})
	if !out.Success {
		return failed("failed to update task", out.Message, out.Error)
	}

	r.printf("✓ %s\n", out.Message)
	return nil
}

func newTasksRemoveCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			return runTasksRemove(cmd.Context(), id, yes)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Delete without asking for confirmation")

	return cmd
}

func runTasksRemove(ctx context.Context, id int, yes bool, opts ...Option) error {
	r, board, err := newBoard(opts...)
	if err != nil {
		return err
	}

	ok, err := r.confirm(fmt.Sprintf("Delete task #%d", id), yes)
	if err != nil {
		return err
	}
	if !ok {
		r.printf("Cancelled.\n")
		return nil
	}

	out := board.Delete(ctx, id)
	if !out.Success {
		return failed("failed to delete task", out.Message, out.Error)
	}

	r.printf("✓ %s\n", out.Message)
	return nil
}

// newTasksMarkCmd creates done/undo. Toggle flips the state it is given, so
// "done" passes a pending task and "undo" a completed one.
func newTasksMarkCmd(use, short string, currentlyDone bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			return runTasksMark(cmd.Context(), client.Task{ID: id, Done: currentlyDone})
		},
	}
}

func runTasksMark(ctx context.Context, task client.Task, opts ...Option) error {
	r, board, err := newBoard(opts...)
	if err != nil {
		return err
	}

	out := board.Toggle(ctx, task)
	if !out.Success {
		return failed("failed to update task status", out.Message, out.Error)
	}

	r.printf("✓ %s\n", out.Message)
	return nil
}

func newTasksToggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Flip a task between complete and pending",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			return runTasksToggle(cmd.Context(), id)
		},
	}
}

func runTasksToggle(ctx context.Context, id int, opts ...Option) error {
	r, err := newRuntime(tasksLocation, opts...)
	if err != nil {
		return err
	}
	if err := r.requireSession(); err != nil {
		return err
	}

	res := r.client.Tasks().Get(ctx, id)
	if !res.Success {
		return failed(fmt.Sprintf("failed to load task %d", id), res.Error.Detail(), res.Error)
	}
	return runTasksMark(ctx, res.Data, opts...)
}

func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-1]) + "…"
}
