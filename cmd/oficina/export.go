package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/erazemk/oficina/internal/catalog"
	"github.com/erazemk/oficina/internal/db"
	"github.com/erazemk/oficina/internal/spreadsheet"
	"github.com/erazemk/oficina/internal/store"
)

func newExportCmd(a *app) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the stock catalog to an XLSX spreadsheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			database, err := db.Open(a.cfg.DB.Path)
			if err != nil {
				return err
			}
			defer database.Close()

			if err := db.Migrate(database); err != nil {
				return err
			}

			items, err := store.ListStockItems(cmd.Context(), database)
			if err != nil {
				return err
			}

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("creating %s: %w", out, err)
			}
			summary := catalog.Summarize(items, a.cfg.Inventory.LowStockThreshold)
			if err := spreadsheet.WriteCatalog(f, items, summary); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("closing %s: %w", out, err)
			}

			slog.Info("stock exported", "path", out, "items", summary.Count)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "estoque.xlsx", "output file")
	return cmd
}
