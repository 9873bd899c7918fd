// Package renderer synthesizes the static preview PNG through a chain of
// rendering tiers, each cheaper and less capable than the one before.
package renderer

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log/slog"

	"github.com/ivlev/lottiethumb/internal/analyzer"
	"github.com/ivlev/lottiethumb/internal/apperr"
	"github.com/ivlev/lottiethumb/internal/config"
	"github.com/ivlev/lottiethumb/internal/logging"
	"github.com/ivlev/lottiethumb/internal/lottie"
	"github.com/ivlev/lottiethumb/internal/system"
)

// Thumbnail type tags reported for each tier.
const (
	TierRich       = "rich"
	TierSimplified = "simplified"
	TierMinimal    = "minimal"
)

// Request is the input of one render.
type Request struct {
	Metadata lottie.Metadata
	Analysis analyzer.ColorAnalysis
}

// Size returns the canvas size of the request.
func (r Request) Size() (int, int) {
	return r.Metadata.ThumbnailWidth, r.Metadata.ThumbnailHeight
}

// Strategy is one rendering tier.
type Strategy interface {
	Name() string
	Render(req Request) ([]byte, error)
}

// CanvasFunc provides a cleared canvas. Errors mark the capability as absent.
type CanvasFunc func(w, h int) (*image.RGBA, error)

// Options is shared by the drawing tiers.
type Options struct {
	BackgroundTop    color.RGBA
	BackgroundBottom color.RGBA
	// BrandMark replaces the procedural play button when set.
	BrandMark image.Image
	Caption   bool
	Canvas    CanvasFunc
	Release   func(*image.RGBA)
	Face      FaceFunc
}

// OptionsFromConfig builds Options from the preview settings. A brand mark
// that cannot be loaded is logged and ignored.
func OptionsFromConfig(cfg config.PreviewConfig, logger *slog.Logger) (Options, error) {
	logger = logging.OrDiscard(logger)
	top, err := ParseHex(cfg.BackgroundTop)
	if err != nil {
		return Options{}, fmt.Errorf("background_top: %w", err)
	}
	bottom, err := ParseHex(cfg.BackgroundBottom)
	if err != nil {
		return Options{}, fmt.Errorf("background_bottom: %w", err)
	}
	opts := Options{
		BackgroundTop:    top,
		BackgroundBottom: bottom,
		Caption:          cfg.Caption,
		Canvas: func(w, h int) (*image.RGBA, error) {
			return system.AcquireCanvas(w, h, cfg.MaxPixels)
		},
		Release: system.ReleaseCanvas,
		Face:    GoFace,
	}
	if cfg.BrandMark != "" {
		mark, err := LoadBrandMark(cfg.BrandMark)
		if err != nil {
			logger.Warn("brand mark unavailable, using procedural button",
				slog.String("path", cfg.BrandMark),
				slog.String("error", err.Error()))
		} else {
			opts.BrandMark = mark
		}
	}
	return opts, nil
}

func (o Options) canvas(w, h int) (*image.RGBA, error) {
	if o.Canvas == nil {
		return nil, apperr.ErrCanvasUnavailable
	}
	img, err := o.Canvas(w, h)
	if err != nil {
		return nil, err
	}
	if img == nil {
		return nil, apperr.ErrCanvasUnavailable
	}
	return img, nil
}

func (o Options) release(img *image.RGBA) {
	if o.Release != nil && img != nil {
		o.Release(img)
	}
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// Result is the outcome of Chain.Render.
type Result struct {
	PNG  []byte
	Tier string
}

// Chain tries its tiers in order and returns the first PNG produced.
type Chain struct {
	tiers  []Strategy
	logger *slog.Logger
}

// NewChain creates a Chain. When every tier fails Render still returns the
// minimal placeholder.
func NewChain(logger *slog.Logger, tiers ...Strategy) *Chain {
	return &Chain{tiers: tiers, logger: logging.OrDiscard(logger)}
}

// NewDefaultChain builds the rich, simplified and minimal tiers from cfg.
func NewDefaultChain(cfg config.PreviewConfig, logger *slog.Logger) (*Chain, error) {
	opts, err := OptionsFromConfig(cfg, logger)
	if err != nil {
		return nil, err
	}
	return NewChain(logger, NewRich(opts), NewSimplified(opts), Minimal{}), nil
}

// Render runs the tiers until one succeeds. Panics inside a tier are treated
// like errors.
func (c *Chain) Render(req Request) Result {
	for _, tier := range c.tiers {
		data, err := safeRender(tier, req)
		if err == nil && bytes.HasPrefix(data, pngSignature) {
			c.logger.Debug("preview rendered",
				slog.String("tier", tier.Name()),
				slog.Int("bytes", len(data)))
			return Result{PNG: data, Tier: tier.Name()}
		}
		if err == nil {
			err = errors.New("output is not a png")
		}
		c.logger.Warn("preview tier failed, falling back",
			slog.String("tier", tier.Name()),
			slog.String("error", err.Error()))
	}
	return Result{PNG: MinimalPNG(), Tier: TierMinimal}
}

func safeRender(s Strategy, req Request) (data []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic in %s tier: %v", apperr.ErrCanvasUnavailable, s.Name(), r)
		}
	}()
	return s.Render(req)
}
