package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/bugtrackr/bug-tracker/internal/service"
)

var (
	listStatus   string
	listPriority string
	listPage     int
	listLimit    int
)

var bugsCmd = &cobra.Command{
	Use:   "bugs",
	Short: "Inspect stored bugs",
}

var bugsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List bugs, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		d, err := loadDeps(ctx, true)
		if err != nil {
			return err
		}
		defer d.Close()

		page, err := d.bugService(nil).List(ctx, service.BugListQuery{
			Status:   listStatus,
			Priority: listPriority,
			Page:     listPage,
			Limit:    listLimit,
		})
		if err != nil {
			return err
		}
		return renderBugPage(cmd.OutOrStdout(), page)
	},
}

func init() {
	bugsListCmd.Flags().StringVar(&listStatus, "status", "", "Filter by status (open, in-progress, resolved)")
	bugsListCmd.Flags().StringVar(&listPriority, "priority", "", "Filter by priority (low, medium, high)")
	bugsListCmd.Flags().IntVar(&listPage, "page", 1, "Page number, starting at 1")
	bugsListCmd.Flags().IntVar(&listLimit, "limit", 0, "Page size (default from PAGINATION_DEFAULT_LIMIT)")

	bugsCmd.AddCommand(bugsListCmd)
	rootCmd.AddCommand(bugsCmd)
}

func renderBugPage(w io.Writer, page *service.BugPage) error {
	if len(page.Bugs) == 0 {
		fmt.Fprintf(w, "%s no bugs found (page %d of %d)\n", infoPrefix, page.CurrentPage, page.TotalPages)
		return nil
	}

	table := newTable(w, []string{"ID", "TITLE", "STATUS", "PRIORITY", "REPORTER", "CREATED"})
	for _, bug := range page.Bugs {
		_ = table.Append([]string{
			bug.ID,
			truncate(bug.Title, 40),
			statusColor(string(bug.Status)),
			priorityColor(string(bug.Priority)),
			bug.Reporter,
			bug.CreatedAt.Local().Format("2006-01-02 15:04"),
		})
	}
	if err := table.Render(); err != nil {
		return err
	}
	fmt.Fprintf(w, "\npage %d of %d, %d bugs total\n", page.CurrentPage, page.TotalPages, page.Total)
	return nil
}
