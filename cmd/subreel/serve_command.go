package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"subreel/internal/catalog"
	"subreel/internal/logging"
	"subreel/internal/server"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the catalog, videos and subtitles over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger(cmd)
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
			index, err := server.LoadIndexTemplate(cfg.Server.IndexTemplate)
			if err != nil {
				return err
			}

			address := cfg.Server.Bind
			if bind != "" {
				address = bind
			}
			srv := server.New(server.Options{
				Records:       records,
				PublicDir:     cfg.Server.PublicDir,
				IndexTemplate: index,
				AssJSPath:     cfg.Server.AssJSPath,
				Logger:        logging.NewComponentLogger(logger, "server"),
			})

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			fmt.Fprintf(cmd.OutOrStdout(), "Serving %d videos on %s\n", len(records), address)
			return srv.Run(runCtx, address)
		},
	}

	cmd.Flags().StringVar(&bind, "bind", "", "Override server.bind for this invocation")
	return cmd
}
