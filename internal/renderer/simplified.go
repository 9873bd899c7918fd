package renderer

import (
	"image"
	"image/draw"

	"golang.org/x/image/font/basicfont"
)

// Simplified draws a flat preview: gradient background, translucent disc,
// play triangle and the title in the built-in bitmap face.
type Simplified struct {
	opts Options
}

func NewSimplified(opts Options) *Simplified {
	return &Simplified{opts: opts}
}

func (s *Simplified) Name() string { return TierSimplified }

func (s *Simplified) Render(req Request) ([]byte, error) {
	w, h := req.Size()
	img, err := s.opts.canvas(w, h)
	if err != nil {
		return nil, err
	}
	defer s.opts.release(img)

	b := img.Bounds()
	m := float64(min(w, h))
	draw.Draw(img, b, newVerticalGradient(b, s.opts.BackgroundTop, s.opts.BackgroundBottom), b.Min, draw.Src)

	cx, cy := float32(w)/2, float32(h)/2
	r := float32(m * buttonRatio / 2)
	fill(img, image.NewUniform(withAlpha(white, 0.2)), circle(cx, cy, r))
	fill(img, image.NewUniform(white), playTriangle(cx, cy, r))

	if s.opts.Caption && req.Metadata.Name != "" {
		face := basicfont.Face7x13
		y := int(cy+r) + face.Metrics().Ascent.Ceil() + int(m*paddingRatio)
		if y < b.Max.Y {
			drawCentered(img, face, white, fitText(face, req.Metadata.Name, b.Dx()-8), int(cx), y)
		}
	}
	return encodePNG(img)
}
