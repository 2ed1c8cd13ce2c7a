// ABOUTME: "corkboard serve" runs the web UI and, optionally, a poller that syncs newer shared snapshots.
// ABOUTME: Both run in one errgroup so a server failure stops the poller and vice versa.
package main

import (
	"context"
	"log"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/2389-research/corkboard/app"
	"github.com/2389-research/corkboard/web"
)

func newServeCommand(flags *globalFlags) *cobra.Command {
	var (
		bind string
		poll time.Duration
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the board and decision map on a loopback address",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			s, err := flags.openSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			addr := s.cfg.Bind
			if bind != "" {
				if err := app.CheckBind(bind); err != nil {
					return err
				}
				addr = bind
			}

			srv, err := web.NewServer(web.ServerConfig{Addr: addr, Board: s.board, Maps: s.maps})
			if err != nil {
				return err
			}

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error { return srv.Run(gctx) })
			if poll > 0 && s.board.HasRemote() {
				g.Go(func() error { return pollRemote(gctx, s.board, poll) })
			}
			cmd.Printf("corkboard listening on http://%s\n", addr)
			return g.Wait()
		},
	}
	cmd.Flags().StringVar(&bind, "bind", "", "listen address, loopback only (default: CORKBOARD_BIND or "+app.DefaultBind+")")
	cmd.Flags().DurationVar(&poll, "poll", 0, "sync newer shared snapshots at this interval (0 disables)")
	return cmd
}

// pollRemote syncs the board every interval until ctx is cancelled. Only
// storage failures stop it.
func pollRemote(ctx context.Context, board *app.BoardService, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			out, err := board.Sync(ctx)
			if err != nil {
				log.Printf("component=cli action=poll err=%v", err)
				return err
			}
			if out.Adopt {
				log.Printf("component=cli action=poll adopted=%d", out.Version)
			}
		}
	}
}
