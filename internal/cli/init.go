package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/canfinancialsolutions/canfs-admin/internal/office"

	"github.com/spf13/cobra"
)

func newInitCmd(app *App) *cobra.Command {
	var demo bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the office database schema (idempotent)",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := app.DiscoverDBPath()
			if err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return err
			}
			store, err := app.openStoreAt(path)
			if err != nil {
				return err
			}
			defer store.Close()

			ctx := cmd.Context()
			if err := office.InitSchema(ctx, store); err != nil {
				return err
			}
			if demo {
				if err := office.SeedDemo(ctx, store); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "initialized %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&demo, "demo", false, "Seed a few demo rows into an empty database")
	return cmd
}
