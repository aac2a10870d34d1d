package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"codeberg.org/mutker/rogctl/internal/daemon"
	"codeberg.org/mutker/rogctl/internal/logger"
	"github.com/spf13/cobra"
)

func newDaemonCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Re-apply state at boot and serve the D-Bus interface",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			go handleSignals(ctx, cancel)

			ctl := daemon.NewController(a.applier, a.store, a.actions)

			return daemon.New(a.settings, ctl, a.store).Run(ctx)
		},
	}
}

func handleSignals(ctx context.Context, cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	select {
	case <-sigs:
		logger.Info().Msg("Received termination signal.")
		cancel()
	case <-ctx.Done():
	}
}
