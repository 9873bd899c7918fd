package renderer

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strconv"
	"strings"
)

// ParseHex parses #rgb or #rrggbb into an opaque colour.
func ParseHex(s string) (color.RGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid colour %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

// withAlpha scales an opaque colour to the given opacity (premultiplied).
func withAlpha(c color.RGBA, alpha float64) color.RGBA {
	a := clamp01(alpha)
	return color.RGBA{
		R: uint8(math.Round(float64(c.R) * a)),
		G: uint8(math.Round(float64(c.G) * a)),
		B: uint8(math.Round(float64(c.B) * a)),
		A: uint8(math.Round(float64(c.A) * a)),
	}
}

// mix interpolates two premultiplied colours.
func mix(from, to color.RGBA, t float64) color.RGBA {
	return color.RGBA{
		R: uint8(math.Round(lerp(float64(from.R), float64(to.R), t))),
		G: uint8(math.Round(lerp(float64(from.G), float64(to.G), t))),
		B: uint8(math.Round(lerp(float64(from.B), float64(to.B), t))),
		A: uint8(math.Round(lerp(float64(from.A), float64(to.A), t))),
	}
}

// linearGradient shades along the segment (x0,y0)-(x1,y1).
type linearGradient struct {
	bounds         image.Rectangle
	x0, y0, x1, y1 float64
	from, to       color.RGBA
}

func newVerticalGradient(b image.Rectangle, top, bottom color.RGBA) *linearGradient {
	return &linearGradient{
		bounds: b,
		x0:     float64(b.Min.X),
		y0:     float64(b.Min.Y),
		x1:     float64(b.Min.X),
		y1:     float64(b.Max.Y),
		from:   top,
		to:     bottom,
	}
}

func (g *linearGradient) ColorModel() color.Model { return color.RGBAModel }
func (g *linearGradient) Bounds() image.Rectangle { return g.bounds }

func (g *linearGradient) At(x, y int) color.Color {
	dx, dy := g.x1-g.x0, g.y1-g.y0
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return g.from
	}
	t := ((float64(x)+0.5-g.x0)*dx + (float64(y)+0.5-g.y0)*dy) / l2
	return mix(g.from, g.to, clamp01(t))
}

// radialGradient shades from r0 to r1 around (cx,cy). When eased, the falloff
// follows easeInOutCubic instead of a straight ramp.
type radialGradient struct {
	bounds   image.Rectangle
	cx, cy   float64
	r0, r1   float64
	from, to color.RGBA
	eased    bool
}

func (g *radialGradient) ColorModel() color.Model { return color.RGBAModel }
func (g *radialGradient) Bounds() image.Rectangle { return g.bounds }

func (g *radialGradient) At(x, y int) color.Color {
	d := math.Hypot(float64(x)+0.5-g.cx, float64(y)+0.5-g.cy)
	span := g.r1 - g.r0
	if span <= 0 {
		return g.to
	}
	t := clamp01((d - g.r0) / span)
	if g.eased {
		t = easeInOutCubic(t)
	}
	return mix(g.from, g.to, t)
}

// lerp performs linear interpolation between a and b
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// easeInOutCubic applies smooth easing function
func easeInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - pow(-2*t+2, 3)/2
}

// pow calculates x^n
func pow(x float64, n int) float64 {
	result := 1.0
	for i := 0; i < n; i++ {
		result *= x
	}
	return result
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
