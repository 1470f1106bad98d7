package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/willbeason/forest-fractal/internal/config"
	"github.com/willbeason/forest-fractal/internal/logging"
	"github.com/willbeason/forest-fractal/internal/window"
)

func mainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "forestview",
		Short: "Show forest panels in a resizable window",
		Args:  cobra.ExactArgs(0),
		RunE:  runCmd,
	}
	config.AddPersistentFlags(cmd)
	config.AddWindowFlags(cmd)

	return cmd
}

func runCmd(cmd *cobra.Command, _ []string) error {
	// At this point usage information has already been printed if obviously incorrect.
	cmd.SilenceUsage = true

	conf, err := config.LoadFromFlags(cmd)
	if err != nil {
		return err
	}

	closeLog, err := logging.Setup(conf.Log.Level, conf.Log.File)
	if err != nil {
		return err
	}
	defer closeLog()

	sides := conf.PanelSides()
	return window.Run(cmd.Context(), window.Options{
		Title:    conf.Window.Title,
		Width:    int(conf.Panel.Width) * len(sides),
		Height:   int(conf.Panel.Height),
		Sides:    sides,
		Scene:    conf.Scene(),
		Seed:     conf.Panel.Seed,
		Debounce: conf.Window.Debounce,
	})
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
