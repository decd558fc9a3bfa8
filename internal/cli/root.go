package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/canfinancialsolutions/canfs-admin/internal/gateway"
	"github.com/canfinancialsolutions/canfs-admin/internal/tui"

	"github.com/spf13/cobra"
)

// App carries the persistent flag state shared by every subcommand.
type App struct {
	DBPath       string
	ExportDir    string
	DebugLogPath string
	NoAuth       bool
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "canfs-admin",
		Short:        "Admin console for the office client book, prospects and FNA forms",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive console
  canfs-admin

  # Create the office database
  canfs-admin init --demo

  # Scriptable commands
  canfs-admin clients list
  canfs-admin export clients`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive console.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&app.DBPath, "db", envOr("CANFS_DB", ""), "Path to the office database (default: discovered .canfs/office.sqlite)")
	cmd.PersistentFlags().StringVar(&app.ExportDir, "export-dir", envOr("CANFS_EXPORT_DIR", "."), "Directory csv exports are written to")
	cmd.PersistentFlags().StringVar(&app.DebugLogPath, "debug-log", envOr("CANFS_DEBUG_LOG", ""), "Append TUI input diagnostics to this file")
	cmd.PersistentFlags().BoolVar(&app.NoAuth, "no-session", false, "Pretend the session gate failed (renders the signed-out notice)")

	cmd.AddCommand(newInitCmd(app))
	cmd.AddCommand(newListCmd(app, "clients"))
	cmd.AddCommand(newListCmd(app, "prospects"))
	cmd.AddCommand(newExportCmd(app))

	return cmd
}

func Execute() int {
	if err := NewRootCmd().Execute(); err != nil {
		return 1
	}
	return 0
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// DiscoverDBPath resolves the office database path: the --db flag/env wins;
// otherwise walk up from the working directory looking for a .canfs dir;
// otherwise a .canfs dir next to the working directory.
func (a *App) DiscoverDBPath() (string, error) {
	if a.DBPath != "" {
		return a.DBPath, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	dir := cwd
	for {
		candidate := filepath.Join(dir, ".canfs")
		if st, err := os.Stat(candidate); err == nil && st.IsDir() {
			return filepath.Join(candidate, "office.sqlite"), nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return filepath.Join(cwd, ".canfs", "office.sqlite"), nil
}

func (a *App) openStore() (*gateway.Store, error) {
	path, err := a.DiscoverDBPath()
	if err != nil {
		return nil, err
	}
	return a.openStoreAt(path)
}

func (a *App) openStoreAt(path string) (*gateway.Store, error) {
	return gateway.Open(path)
}

func runTUI(app *App) error {
	// The session gate is a boolean performed by the surrounding shell;
	// unauthenticated access never opens the gateway.
	if app.NoAuth {
		return tui.Run(nil, tui.Options{Authenticated: false})
	}
	store, err := app.openStore()
	if err != nil {
		return err
	}
	defer store.Close()
	return tui.Run(store, tui.Options{
		Authenticated: true,
		ExportDir:     app.ExportDir,
		DebugLogPath:  app.DebugLogPath,
	})
}
