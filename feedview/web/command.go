package web

import (
	"context"
	"fmt"
	"net/http"

	"github.com/carlmjohnson/versioninfo"
	"github.com/urfave/cli/v3"

	"quadrangle.org/core/feedview"
	"quadrangle.org/core/feedview/config"
	"quadrangle.org/core/log"
)

func Command() *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "run the feedview server",
		Action: Run,
		Description: `
Environment variables:
	QUAD_LISTEN_ADDR        (default: 0.0.0.0:3000)
	QUAD_DB_PATH            (default: feedview.db)
	QUAD_BACKEND_HOST       (default: https://api.quadrangle.org)
	QUAD_COLLECTIONS_FILE   (optional, yaml)
	QUAD_REFRESH_CRON       (default: */5 * * * *)
	QUAD_STREAM_ENDPOINT    (default: wss://stream.quadrangle.org/subscribe)
	QUAD_REDIS_ADDR         (optional, enables redis cursor storage)
`,
	}
}

func Run(ctx context.Context, cmd *cli.Command) error {
	logger := log.FromContext(ctx)

	cfg, err := config.LoadConfig(ctx)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	s, err := feedview.Make(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to setup state: %w", err)
	}
	defer s.Close()

	s.Start(ctx)

	logger.Info("starting server",
		"address", cfg.Core.ListenAddr,
		"version", versioninfo.Short(),
	)
	return http.ListenAndServe(cfg.Core.ListenAddr, Router(logger, s))
}
