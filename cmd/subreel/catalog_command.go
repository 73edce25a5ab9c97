package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"subreel/internal/catalog"
)

func newCatalogCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Show the published catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			records, err := catalog.Load(cfg.Paths.CatalogFile)
			if errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("catalog %s not found; run `subreel ingest` first", cfg.Paths.CatalogFile)
			}
			if err != nil {
				return fmt.Errorf("load catalog: %w", err)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				data, err := catalog.Encode(records)
				if err != nil {
					return err
				}
				_, err = out.Write(data)
				return err
			}
			if len(records) == 0 {
				fmt.Fprintln(out, "Catalog is empty")
				return nil
			}

			rows := make([][]string, 0, len(records))
			for i, rec := range records {
				rows = append(rows, []string{
					fmt.Sprintf("%d", i+1),
					rec.Name,
					rec.Slug,
					rec.SubtitlePath,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"#", "Name", "Slug", "Subtitle"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the catalog file contents as JSON")
	return cmd
}
