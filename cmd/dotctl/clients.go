package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MGhunch/dot-file/internal/clients"
)

func newClientsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clients",
		Short: "List clients and their document store sites",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := ctx.open(cmd)
			if err != nil {
				return err
			}
			defer conn.Close()

			list, err := clients.New(conn, ctx.logger()).List(cmd.Context())
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(list))
			for _, c := range list {
				rows = append(rows, []string{c.Code, c.Name, c.SiteID, c.DocumentRoot})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Code", "Name", "Site", "Document Root"}, rows))
			return nil
		},
	}
}
