package main

import (
	"context"
	"net"
	"strconv"

	"github.com/nclalperen/game-tracker-mvp/internal/server"
	"github.com/nclalperen/game-tracker-mvp/internal/shared"
	"github.com/urfave/cli/v3"
)

// Serve runs the local HTTP API until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	host, port := r.config.Server.Host, r.config.Server.Port
	if cmd.IsSet("host") {
		host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		port = cmd.Int("port")
	}

	engine, err := r.Engine()
	if err != nil {
		return err
	}

	logger := shared.WithLogger(r.logger, "component", "api")
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	r.writePlain("Serving the library API on http://%s/api/library\n", addr)

	return server.Serve(ctx, addr, server.NewAPI(engine, r.weights(), logger), logger)
}
