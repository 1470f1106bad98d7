package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/willbeason/forest-fractal/internal/config"
	"github.com/willbeason/forest-fractal/pkg/host"
	"github.com/willbeason/forest-fractal/pkg/scene"
	"github.com/willbeason/forest-fractal/pkg/surface"
)

func renderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render each panel to <out>/<side>.png",
		Args:  cobra.ExactArgs(0),
		RunE:  runRender,
	}
	config.AddRenderFlags(cmd)
	return cmd
}

type renderTarget struct {
	canvas *surface.Canvas
	trace  *surface.Recorder
}

func (t renderTarget) surface() surface.Surface {
	if t.trace == nil {
		return t.canvas
	}
	return surface.Tee{t.canvas, t.trace}
}

func runRender(cmd *cobra.Command, _ []string) error {
	conf, closeLog, err := setup(cmd)
	if err != nil {
		return err
	}
	defer closeLog()

	if err := os.MkdirAll(conf.Render.Out, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	sides := conf.PanelSides()
	targets := make(map[scene.Side]renderTarget, len(sides))
	for _, side := range sides {
		c, err := surface.NewCanvas(conf.Panel.Width, conf.Panel.Height, conf.Panel.PixelRatio)
		if err != nil {
			return err
		}
		defer func() { _ = c.Close() }()

		t := renderTarget{canvas: c}
		if conf.Render.Trace {
			t.trace = surface.NewRecorder(conf.Panel.Width, conf.Panel.Height)
		}
		targets[side] = t
	}

	painter := host.NewPainter(host.ProviderFunc(func(side scene.Side) (surface.Surface, bool) {
		t, ok := targets[side]
		if !ok {
			return nil, false
		}
		return t.surface(), true
	}), host.WithSides(sides...), host.WithSeed(conf.Panel.Seed), host.WithConfig(conf.Scene()))
	defer painter.Close()

	if err := painter.Paint(cmd.Context()); err != nil {
		return err
	}

	for _, side := range sides {
		t := targets[side]

		path := filepath.Join(conf.Render.Out, string(side)+".png")
		if err := t.canvas.SavePNG(path); err != nil {
			return err
		}
		log.Info().Str("side", string(side)).Str("path", path).Msg("panel written")

		if t.trace != nil {
			tracePath := filepath.Join(conf.Render.Out, string(side)+".jsonl")
			if err := writeFile(tracePath, t.trace.WriteJSON); err != nil {
				return err
			}
			log.Info().Str("side", string(side)).Str("path", tracePath).Int("calls", len(t.trace.Calls())).Msg("trace written")
		}
	}
	return nil
}

func writeFile(path string, write func(w io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
