package cli

import (
	"fmt"

	"github.com/canfinancialsolutions/canfs-admin/internal/export"
	"github.com/canfinancialsolutions/canfs-admin/internal/gateway"
	"github.com/canfinancialsolutions/canfs-admin/internal/grid"

	"github.com/spf13/cobra"
)

func newExportCmd(app *App) *cobra.Command {
	var (
		from string
		to   string
	)

	cmd := &cobra.Command{
		Use:       "export [clients|prospects]",
		Short:     "Export fetched rows to a CSV file",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"clients", "prospects"},
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			v := viewByName(args[0])
			ctrl := grid.NewController(v.Registry, v.PageSize)
			if from != "" || to != "" {
				ctrl.SetDateRange(v.DateField, from, to)
			}

			gw := v.Gateway(store)
			rows, err := gw.Fetch(cmd.Context(), ctrl.Filter(), ctrl.Sort(), ctrl.Page())
			if err != nil {
				return err
			}
			rows = gateway.PostFilter(rows, ctrl.Filter())

			path, err := export.ToFile(app.ExportDir, v.Registry, v.Registry.DisplayOrder(nil), rows, args[0], from, to)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d rows)\n", path, len(rows))
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "Start of the activity date range (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "End of the activity date range (YYYY-MM-DD)")
	return cmd
}
