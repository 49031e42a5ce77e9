package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/haroonyaqubi/task-flow-app/internal/cli/auth"
)

// NewUsersCmd creates the admin-only users command group
func NewUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage accounts (admin only)",
	}

	var page int
	list := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUsersList(cmd.Context(), page)
		},
	}
	list.Flags().IntVar(&page, "page", 1, "Page number")

	cmd.AddCommand(list)
	return cmd
}

func runUsersList(ctx context.Context, page int, opts ...Option) error {
	if page < 1 {
		return fmt.Errorf("invalid page %d", page)
	}

	r, err := newRuntime("/admin", opts...)
	if err != nil {
		return err
	}
	if err := r.requireSession(); err != nil {
		return err
	}
	if !auth.NewService(r.client, r.logger).IsAdmin() {
		return fmt.Errorf("admin access required")
	}

	pageURL := ""
	if page > 1 {
		pageURL = fmt.Sprintf("user/users/?page=%d", page)
	}
	res := r.client.Users().List(ctx, pageURL)
	if !res.Success {
		return failed("failed to list users", res.Error.Detail(), res.Error)
	}

	r.printf("Users (page %d, %d total):\n\n", page, res.Data.Count)

	w := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tUSERNAME\tEMAIL\tADMIN\tACTIVE")
	fmt.Fprintln(w, "──\t────────\t─────\t─────\t──────")
	for _, u := range res.Data.Results {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", u.ID, u.Username, u.Email, yesNo(u.IsStaff), yesNo(u.IsActive))
	}
	w.Flush()

	if res.Data.Next != nil {
		r.printf("\nNext page: taskflow users ls --page %d\n", page+1)
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
