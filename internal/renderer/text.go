package renderer

import (
	"image"
	"image/color"
	"image/draw"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

var (
	regularFont = sync.OnceValues(func() (*opentype.Font, error) { return opentype.Parse(goregular.TTF) })
	boldFont    = sync.OnceValues(func() (*opentype.Font, error) { return opentype.Parse(gobold.TTF) })
)

// FaceFunc returns a face of roughly the given pixel size.
type FaceFunc func(size float64, bold bool) (font.Face, error)

// GoFace builds Go font faces at the requested size.
func GoFace(size float64, bold bool) (font.Face, error) {
	load := regularFont
	if bold {
		load = boldFont
	}
	f, err := load()
	if err != nil {
		return nil, err
	}
	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    max(size, 6),
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// drawCentered draws s horizontally centred on cx with its baseline at y.
func drawCentered(dst draw.Image, face font.Face, c color.Color, s string, cx, y int) {
	w := font.MeasureString(face, s).Round()
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(cx-w/2, y),
	}
	d.DrawString(s)
}

// fitText shortens s with a trailing "..." until it is at most maxWidth wide.
func fitText(face font.Face, s string, maxWidth int) string {
	if font.MeasureString(face, s).Round() <= maxWidth {
		return s
	}
	runes := []rune(s)
	for len(runes) > 1 {
		runes = runes[:len(runes)-1]
		candidate := string(runes) + "..."
		if font.MeasureString(face, candidate).Round() <= maxWidth {
			return candidate
		}
	}
	return "..."
}

// lineHeight returns the ascent plus descent of face in pixels.
func lineHeight(face font.Face) int {
	m := face.Metrics()
	return (m.Ascent + m.Descent).Ceil()
}
