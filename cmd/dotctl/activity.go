package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/MGhunch/dot-file/internal/activity"
	"github.com/MGhunch/dot-file/internal/filing"
	"github.com/MGhunch/dot-file/pkg/pagination"
)

func newActivityCommand(ctx *commandContext) *cobra.Command {
	var (
		filters activity.Filters
		page    pagination.PageRequest
	)

	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Show recent filing activity, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.config()
			if err != nil {
				return err
			}
			conn, err := ctx.open(cmd)
			if err != nil {
				return err
			}
			defer conn.Close()

			result, err := activity.New(conn, ctx.logger(), cfg.API.Pagination).List(cmd.Context(), page, filters)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(result.Data))
			for _, e := range result.Data {
				rows = append(rows, []string{
					e.FiledAt.Local().Format("2006-01-02 15:04"),
					e.JobNumber,
					stateColor(e.State).Sprint(e.State),
					e.Category,
					e.Path,
					strconv.Itoa(len(e.Files)),
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable([]string{"Filed", "Job", "State", "Folder", "Path", "Files"}, rows, 6))
			fmt.Fprintf(out, "page %d of %d (%d entries)\n", result.Page, result.TotalPages, result.Total)
			return nil
		},
	}

	cmd.Flags().StringVar(&filters.JobNumber, "job", "", "Only show this job number")
	cmd.Flags().StringVar(&filters.State, "state", "", "Only show this state (filed, classified_only, failed)")
	cmd.Flags().IntVar(&page.Page, "page", 1, "Page number")
	cmd.Flags().IntVar(&page.PageSize, "page-size", 0, "Entries per page")
	return cmd
}

func stateColor(state string) *color.Color {
	switch filing.State(strings.ToLower(state)) {
	case filing.StateFiled:
		return color.New(color.FgGreen)
	case filing.StateClassifiedOnly:
		return color.New(color.FgYellow)
	}
	return color.New(color.FgRed)
}
