// Package frameproc implements aspect-ratio-aware frame scaling: fit, fill,
// stretch, and crop modes, backed by golang.org/x/image/draw's bilinear
// scaler, with textures drawn from a bucketed pool.
package frameproc

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	imagedraw "golang.org/x/image/draw"

	"github.com/fluxreel/corecut/internal/errors"
)

// Mode selects how a source frame is mapped onto the target resolution.
type Mode int

const (
	ModeFill Mode = iota
	ModeFit
	ModeStretch
	ModeCrop
)

// CropRegion is a normalized crop rectangle; valid when it lies fully
// within [0,1]^2.
type CropRegion struct {
	X, Y, W, H float64
}

// IsValid reports whether the region lies within the unit square.
func (c CropRegion) IsValid() bool {
	return c.X >= 0 && c.Y >= 0 && c.X+c.W <= 1 && c.Y+c.H <= 1
}

// Config fixes target resolution, scaling mode, and optional crop/fill
// parameters for one Process call.
type Config struct {
	TargetWidth, TargetHeight int
	Mode                      Mode
	Background                color.Color
	Crop                      CropRegion
}

// TextureKey buckets pooled output textures by everything that affects
// allocation shape.
type TextureKey struct {
	Width, Height int
	PixelFormat   string
	Usage         string
	StorageMode   string
	MipLevelCount int
}

// TexturePool hands out and reclaims RGBA textures keyed by TextureKey.
type TexturePool struct {
	free map[TextureKey][]*image.RGBA
}

// NewTexturePool constructs an empty pool.
func NewTexturePool() *TexturePool {
	return &TexturePool{free: make(map[TextureKey][]*image.RGBA)}
}

// Acquire returns a texture matching key, reusing a pooled one if
// available.
func (p *TexturePool) Acquire(key TextureKey) *image.RGBA {
	if bucket := p.free[key]; len(bucket) > 0 {
		img := bucket[len(bucket)-1]
		p.free[key] = bucket[:len(bucket)-1]
		return img
	}
	return image.NewRGBA(image.Rect(0, 0, key.Width, key.Height))
}

// Release returns a texture to the pool for reuse.
func (p *TexturePool) Release(key TextureKey, img *image.RGBA) {
	p.free[key] = append(p.free[key], img)
}

// Process maps src onto a TargetWidth x TargetHeight destination per
// cfg.Mode, clearing to cfg.Background before compositing.
func Process(src image.Image, cfg Config, pool *TexturePool) (*image.RGBA, error) {
	key := TextureKey{Width: cfg.TargetWidth, Height: cfg.TargetHeight, PixelFormat: "RGBA8", Usage: "render", StorageMode: "private", MipLevelCount: 1}
	dst := pool.Acquire(key)

	bg := cfg.Background
	if bg == nil {
		bg = color.Black
	}
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: bg}, image.Point{}, draw.Src)

	switch cfg.Mode {
	case ModeStretch:
		imagedraw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), imagedraw.Over, nil)
	case ModeFill:
		processFill(dst, src, cfg)
	case ModeFit:
		processFit(dst, src, cfg)
	case ModeCrop:
		if !cfg.Crop.IsValid() {
			return nil, errors.NewInvalidRegion(cfg.Crop.X, cfg.Crop.Y, cfg.Crop.W, cfg.Crop.H)
		}
		processCropRegion(dst, src, cfg.Crop)
	default:
		return nil, fmt.Errorf("frameproc: unknown mode %d", cfg.Mode)
	}

	return dst, nil
}

func processFill(dst *image.RGBA, src image.Image, cfg Config) {
	sb := src.Bounds()
	sourceAspect := float64(sb.Dx()) / float64(sb.Dy())
	targetAspect := float64(cfg.TargetWidth) / float64(cfg.TargetHeight)

	var cropW, cropH int
	if sourceAspect > targetAspect {
		cropH = sb.Dy()
		cropW = int(float64(cropH) * targetAspect)
	} else {
		cropW = sb.Dx()
		cropH = int(float64(cropW) / targetAspect)
	}
	cropX := sb.Min.X + (sb.Dx()-cropW)/2
	cropY := sb.Min.Y + (sb.Dy()-cropH)/2
	cropRect := image.Rect(cropX, cropY, cropX+cropW, cropY+cropH)

	imagedraw.BiLinear.Scale(dst, dst.Bounds(), src, cropRect, imagedraw.Over, nil)
}

func processFit(dst *image.RGBA, src image.Image, cfg Config) {
	sb := src.Bounds()
	sourceAspect := float64(sb.Dx()) / float64(sb.Dy())
	targetAspect := float64(cfg.TargetWidth) / float64(cfg.TargetHeight)

	var destW, destH int
	if sourceAspect > targetAspect {
		destW = cfg.TargetWidth
		destH = int(float64(destW) / sourceAspect)
	} else {
		destH = cfg.TargetHeight
		destW = int(float64(destH) * sourceAspect)
	}
	offsetX := (cfg.TargetWidth - destW) / 2
	offsetY := (cfg.TargetHeight - destH) / 2
	destRect := image.Rect(offsetX, offsetY, offsetX+destW, offsetY+destH)

	imagedraw.BiLinear.Scale(dst, destRect, src, sb, imagedraw.Over, nil)
}

func processCropRegion(dst *image.RGBA, src image.Image, crop CropRegion) {
	sb := src.Bounds()
	cropRect := image.Rect(
		sb.Min.X+int(crop.X*float64(sb.Dx())),
		sb.Min.Y+int(crop.Y*float64(sb.Dy())),
		sb.Min.X+int((crop.X+crop.W)*float64(sb.Dx())),
		sb.Min.Y+int((crop.Y+crop.H)*float64(sb.Dy())),
	)
	imagedraw.BiLinear.Scale(dst, dst.Bounds(), src, cropRect, imagedraw.Over, nil)
}
