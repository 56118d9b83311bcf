package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"quadrangle.org/core/log"
	"quadrangle.org/core/models"
)

// Command provides a one-shot profile lookup against a backend host.
// Useful for checking directory connectivity without running a server.
func Command() *cli.Command {
	return &cli.Command{
		Name:      "resolve",
		Usage:     "resolve a user profile against a backend",
		ArgsUsage: "<user-id>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "backend",
				Usage:    "backend host, e.g. https://api.quadrangle.org",
				Sources:  cli.EnvVars("QUAD_BACKEND_HOST"),
				Required: true,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			logger := log.FromContext(ctx)

			userID := cmd.Args().First()
			if userID == "" {
				return fmt.Errorf("expected a user id argument")
			}

			dir := NewHTTPDirectory(cmd.String("backend"))
			p, err := dir.Lookup(ctx, userID)
			if errors.Is(err, ErrNotFound) {
				logger.Warn("no profile found", "user", userID)
				p = models.UnknownProfile(userID)
			} else if err != nil {
				return fmt.Errorf("failed to resolve %s: %w", userID, err)
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(p)
		},
	}
}
