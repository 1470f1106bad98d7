package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/willbeason/forest-fractal/internal/config"
	"github.com/willbeason/forest-fractal/internal/logging"
)

func mainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "forest",
		Short: "Draw procedural forest panels",
		Args:  cobra.ExactArgs(0),
	}
	config.AddPersistentFlags(cmd)

	cmd.AddCommand(renderCmd(), serveCmd())
	return cmd
}

// setup loads configuration and configures logging. The returned func
// releases the log file, if any.
func setup(cmd *cobra.Command) (config.Config, func(), error) {
	// At this point usage information has already been printed if obviously incorrect.
	cmd.SilenceUsage = true

	conf, err := config.LoadFromFlags(cmd)
	if err != nil {
		return config.Config{}, nil, err
	}

	closeLog, err := logging.Setup(conf.Log.Level, conf.Log.File)
	if err != nil {
		return config.Config{}, nil, err
	}
	return conf, closeLog, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := mainCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		// At this point the error has already been printed; no need to print again.
		os.Exit(1)
	}
}
