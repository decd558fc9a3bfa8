package cli

import (
	"fmt"
	"strings"

	"github.com/canfinancialsolutions/canfs-admin/internal/gateway"
	"github.com/canfinancialsolutions/canfs-admin/internal/grid"
	"github.com/canfinancialsolutions/canfs-admin/internal/office"

	"github.com/spf13/cobra"
)

func viewByName(name string) office.View {
	if name == "prospects" {
		return office.Prospects()
	}
	return office.Clients()
}

// newListCmd builds `canfs-admin clients list` / `prospects list`, the
// scriptable counterpart of the interactive grids.
func newListCmd(app *App, viewName string) *cobra.Command {
	parent := &cobra.Command{
		Use:   viewName,
		Short: fmt.Sprintf("Work with %s", viewName),
	}

	var (
		search string
		sortBy string
		desc   bool
		page   int
	)

	list := &cobra.Command{
		Use:   "list",
		Short: fmt.Sprintf("Print a page of %s", viewName),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			v := viewByName(viewName)
			gw := v.Gateway(store)
			ctrl := grid.NewController(v.Registry, v.PageSize)
			ctrl.SetSearch(search)
			if sortBy != "" {
				ctrl.ToggleSort(sortBy)
				if desc && ctrl.Sort().Dir == gateway.Asc {
					ctrl.ToggleSort(sortBy)
				}
			}
			ctrl.SetPageIndex(page)

			ctx := cmd.Context()
			rows, err := gw.Fetch(ctx, ctrl.Filter(), ctrl.Sort(), ctrl.Page())
			if err != nil {
				return err
			}
			rows = gateway.PostFilter(rows, ctrl.Filter())
			total, err := gw.Count(ctx, ctrl.Filter())
			if err != nil {
				return err
			}

			columns := v.Registry.DisplayOrder(nil)
			out := cmd.OutOrStdout()
			var header []string
			for _, key := range columns {
				header = append(header, v.Registry.Lookup(key).Label)
			}
			fmt.Fprintln(out, strings.Join(header, "\t"))
			for _, row := range rows {
				var line []string
				for _, key := range columns {
					line = append(line, grid.Format(row.Get(key), v.Registry.Lookup(key)))
				}
				fmt.Fprintln(out, strings.Join(line, "\t"))
			}
			fmt.Fprintf(out, "(%d of %d rows, page %d)\n", len(rows), total, ctrl.Page().Index+1)
			return nil
		},
	}
	list.Flags().StringVar(&search, "search", "", "Free-text filter over the searchable columns")
	list.Flags().StringVar(&sortBy, "sort", "", "Sort column")
	list.Flags().BoolVar(&desc, "desc", false, "Sort descending")
	list.Flags().IntVar(&page, "page", 0, "Page index (0-based)")

	parent.AddCommand(list)
	return parent
}
