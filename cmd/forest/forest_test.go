package main

import (
	"bufio"
	"context"
	"encoding/json"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/willbeason/forest-fractal/pkg/surface"
)

func render(t *testing.T, args ...string) string {
	t.Helper()
	out := t.TempDir()

	cmd := mainCmd()
	cmd.SetArgs(append([]string{
		"render",
		"--render.out", out,
		"--panel.width", "80",
		"--panel.height", "60",
		"--panel.seed", "3",
		"--log.level", "none",
	}, args...))
	require.NoError(t, cmd.ExecuteContext(context.Background()))
	return out
}

func TestRender(t *testing.T) {
	out := render(t, "--panel.pixel_ratio", "2")

	for _, side := range []string{"left", "right"} {
		f, err := os.Open(filepath.Join(out, side+".png"))
		require.NoError(t, err)
		img, err := png.Decode(f)
		_ = f.Close()
		require.NoError(t, err)
		require.Equal(t, 160, img.Bounds().Dx())
		require.Equal(t, 120, img.Bounds().Dy())

		require.NoFileExists(t, filepath.Join(out, side+".jsonl"))
	}
}

func TestRenderReproducible(t *testing.T) {
	a := render(t)
	b := render(t)

	for _, side := range []string{"left", "right"} {
		pa, err := os.ReadFile(filepath.Join(a, side+".png"))
		require.NoError(t, err)
		pb, err := os.ReadFile(filepath.Join(b, side+".png"))
		require.NoError(t, err)
		require.Equal(t, pa, pb, side)
	}
}

func TestRenderTrace(t *testing.T) {
	out := render(t, "--render.trace", "--panel.sides", "left")

	require.FileExists(t, filepath.Join(out, "left.png"))
	require.NoFileExists(t, filepath.Join(out, "right.png"))

	f, err := os.Open(filepath.Join(out, "left.jsonl"))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	var calls []surface.Call
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var c surface.Call
		require.NoError(t, json.Unmarshal(sc.Bytes(), &c))
		calls = append(calls, c)
	}
	require.NoError(t, sc.Err())

	require.NotEmpty(t, calls)
	require.Equal(t, surface.OpClearRect, calls[0].Op)
	require.Equal(t, []float64{0, 0, 80, 60}, calls[0].Args)
}

func TestRenderInvalidConfig(t *testing.T) {
	cmd := mainCmd()
	cmd.SetArgs([]string{"render", "--render.out", t.TempDir(), "--panel.width", "0", "--log.level", "none"})
	cmd.SetErr(io.Discard)
	require.Error(t, cmd.ExecuteContext(context.Background()))
}
