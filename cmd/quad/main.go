package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"quadrangle.org/core/feedview/web"
	"quadrangle.org/core/log"
	"quadrangle.org/core/profile"
)

func main() {
	cmd := &cli.Command{
		Name:  "quad",
		Usage: "quadrangle feed composition and operation tool",
		Commands: []*cli.Command{
			web.Command(),
			profile.Command(),
		},
	}

	ctx := log.NewContext(context.Background(), cmd.Name)

	if err := cmd.Run(ctx, os.Args); err != nil {
		log.FromContext(ctx).Error(err.Error())
		os.Exit(-1)
	}
}
