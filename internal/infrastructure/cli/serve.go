package cli

import (
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	serveAddr  string
	serveWatch string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API and chat UI",
	Long: `Serves the chat UI, the JSON API and Prometheus metrics. With --watch the
given directory is kept in sync with the knowledge base while serving.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.addr)")
	serveCmd.Flags().StringVar(&serveWatch, "watch", "", "directory to watch and re-ingest")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	g, ctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error {
		return a.Server().Start(ctx)
	})
	if serveWatch != "" {
		g.Go(func() error {
			return a.Watch(ctx, serveWatch)
		})
	}
	return g.Wait()
}
