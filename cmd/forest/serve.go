package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/willbeason/forest-fractal/internal/config"
	"github.com/willbeason/forest-fractal/internal/metrics"
	"github.com/willbeason/forest-fractal/internal/server"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve panels as PNG images over HTTP",
		Args:  cobra.ExactArgs(0),
		RunE:  runServe,
	}
	config.AddHTTPFlags(cmd)
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	conf, closeLog, err := setup(cmd)
	if err != nil {
		return err
	}
	defer closeLog()

	_, _ = maxprocs.Set(maxprocs.Logger(func(s string, i ...interface{}) {
		log.Info().Msgf(strings.ToLower(s), i...)
	}))

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m, err := metrics.New(metrics.Config{Registerer: reg})
	if err != nil {
		return fmt.Errorf("registering metrics: %w", err)
	}

	srv := server.New(server.Options{
		Scene:       conf.Scene(),
		Width:       conf.Panel.Width,
		Height:      conf.Panel.Height,
		PixelRatio:  conf.Panel.PixelRatio,
		MaxSize:     conf.HTTP.MaxSize,
		RenderRate:  conf.HTTP.RenderRate,
		RenderBurst: conf.HTTP.RenderBurst,
		Observer:    m,
		Gatherer:    reg,
	})

	httpServer := &http.Server{
		Addr:              conf.HTTP.Address,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx := cmd.Context()
	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("address", conf.HTTP.Address).
			Int("gomaxprocs", runtime.GOMAXPROCS(0)).
			Msg("serving panels")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}
