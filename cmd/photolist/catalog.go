package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newCatalogCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Print the parsed catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			defer ctx.close()
			cfg, err := ctx.ensureConfig(cmd)
			if err != nil {
				return err
			}
			if err := ctx.useLogger(cmd.ErrOrStderr()); err != nil {
				return err
			}

			records, err := loadRecords(cmd.Context(), cfg, ctx.logger)
			if err != nil {
				return err
			}

			if asJSON {
				type entry struct {
					Index int    `json:"index"`
					Name  string `json:"name"`
					URL   string `json:"url"`
				}
				entries := make([]entry, 0, len(records))
				for _, r := range records {
					entries = append(entries, entry{Index: r.ID, Name: r.Name, URL: r.URL})
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}

			rows := make([][]string, 0, len(records))
			for _, r := range records {
				rows = append(rows, []string{strconv.Itoa(r.ID), r.Name, r.URL})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"#", "Name", "URL"}, rows, []columnAlignment{alignRight}))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the catalog as JSON")
	return cmd
}
