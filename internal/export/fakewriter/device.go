package fakewriter

import (
	"context"
	"image"
	"image/color"

	"github.com/fluxreel/corecut/internal/graphbuilder"
)

// Device is a deterministic, software-only RenderDevice: it does not
// composite real pixels, it paints a flat color derived from the
// compiled graph's node count so tests can assert that distinct graphs
// produce distinct, reproducible frames without a GPU.
type Device struct{}

// RenderFrame fills dst with a color keyed by len(g.Nodes), mod 256 per
// channel — deterministic, cheap, and graph-dependent.
func (Device) RenderFrame(ctx context.Context, g *graphbuilder.Graph, dst *image.RGBA) error {
	n := len(g.Nodes)
	c := color.RGBA{
		R: byte((n * 37) % 256),
		G: byte((n * 61) % 256),
		B: byte((n * 89) % 256),
		A: 255,
	}
	bounds := dst.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			dst.SetRGBA(x, y, c)
		}
	}
	return nil
}
