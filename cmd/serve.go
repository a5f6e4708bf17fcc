package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/newhook/flagtrack/internal/logging"
	"github.com/newhook/flagtrack/internal/project"
	"github.com/newhook/flagtrack/internal/watcher"
	"github.com/newhook/flagtrack/internal/web"
	"github.com/spf13/cobra"
)

var flagServeAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the read-only web view",
	Long: `Serve a read-only browser view of the flags. The page reads /flags.json,
which is refreshed when the store file changes. Stop with Ctrl+C.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagServeAddr, "addr", "", "listen address (default: [server] addr from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := GetContext()
	proj, err := openProject(ctx)
	if err != nil {
		return err
	}
	defer proj.Close()

	return serve(ctx, cmd.OutOrStdout(), proj, flagServeAddr)
}

func serve(ctx context.Context, out io.Writer, proj *project.Project, addr string) error {
	cfg := proj.Config.Server
	if addr == "" {
		addr = cfg.GetAddr()
	}
	srv, err := web.NewServer(proj.Store, web.Config{
		AllowedOrigins: cfg.GetAllowedOrigins(),
		CacheTTL:       cfg.GetCacheTTL(),
	})
	if err != nil {
		return err
	}

	// Only file-backed stores can be watched; others rely on the cache TTL.
	if proj.Config.Storage.GetBackend() != project.BackendPostgres {
		w, err := watcher.New(watcher.DefaultConfig(proj.StoragePath()))
		if err != nil {
			return err
		}
		defer w.Stop()
		if err := w.Start(); err != nil {
			logging.Warn("store watcher not started", "error", err)
		} else {
			go srv.Watch(ctx, w)
		}
	}

	fmt.Fprintf(out, "Serving flags at http://%s (Ctrl+C to stop)\n", displayAddr(addr))
	return srv.ListenAndServe(ctx, addr)
}

func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
