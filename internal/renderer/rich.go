package renderer

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"math"
	"strconv"
	"strings"

	"golang.org/x/image/font"

	"github.com/ivlev/lottiethumb/internal/lottie"
)

var (
	plateTop    = color.RGBA{0x1d, 0x00, 0x3d, 0xff}
	plateBottom = color.RGBA{0x00, 0x00, 0x00, 0xff}
	discStart   = color.RGBA{0x00, 0x8c, 0xff, 0xff}
	discEnd     = color.RGBA{0x8a, 0xff, 0xa1, 0xff}
	badgeTop    = color.RGBA{0x25, 0x63, 0xeb, 0xff}
	badgeBottom = color.RGBA{0x1d, 0x4e, 0xd8, 0xff}
	white       = color.RGBA{0xff, 0xff, 0xff, 0xff}
	black       = color.RGBA{0x00, 0x00, 0x00, 0xff}
)

// Layout ratios relative to the shorter canvas side.
const (
	cornerRatio  = 0.15
	buttonRatio  = 0.35
	washRatio    = 0.5
	washAlpha    = 0.1
	titleRatio   = 0.07
	bodyRatio    = 0.045
	paddingRatio = 0.04
)

// Rich draws the full preview: gradient background, colour wash, brand mark
// or play button, caption and archive badge, clipped to a rounded rectangle.
type Rich struct {
	opts Options
}

func NewRich(opts Options) *Rich {
	return &Rich{opts: opts}
}

func (r *Rich) Name() string { return TierRich }

func (r *Rich) Render(req Request) ([]byte, error) {
	if r.opts.Face == nil && (r.opts.Caption || req.Metadata.IsArchiveSource) {
		return nil, errors.New("no font face available")
	}
	w, h := req.Size()
	img, err := r.opts.canvas(w, h)
	if err != nil {
		return nil, err
	}
	defer r.opts.release(img)

	b := img.Bounds()
	m := float64(min(w, h))
	draw.Draw(img, b, newVerticalGradient(b, r.opts.BackgroundTop, r.opts.BackgroundBottom), b.Min, draw.Src)

	cx, cy := float64(w)/2, float64(h)/2
	if r.opts.Caption {
		cy = float64(h) * 0.42
	}

	if c, err := ParseHex(req.Analysis.Primary()); err == nil {
		wash := &radialGradient{
			bounds: b,
			cx:     cx,
			cy:     cy,
			r1:     m * washRatio,
			from:   withAlpha(c, washAlpha),
			eased:  true,
		}
		draw.Draw(img, b, wash, b.Min, draw.Over)
	}

	size := m * buttonRatio
	if r.opts.BrandMark != nil {
		paste(img, fitBrandMark(r.opts.BrandMark, int(size)), int(cx), int(cy))
	} else {
		drawPlayButton(img, cx, cy, size)
	}

	if r.opts.Caption {
		if err := r.drawCaption(img, req.Metadata, m); err != nil {
			return nil, err
		}
	}
	if req.Metadata.IsArchiveSource {
		if err := r.drawBadge(img, m); err != nil {
			return nil, err
		}
	}

	clipTo(img, maskOf(b, roundedRect(0, 0, float32(w), float32(h), float32(m*cornerRatio))))
	return encodePNG(img)
}

func drawPlayButton(dst *image.RGBA, cx, cy, size float64) {
	b := dst.Bounds()
	x, y := cx-size/2, cy-size/2
	plate := &linearGradient{bounds: b, x0: x, y0: y, x1: x + size, y1: y + size, from: plateTop, to: plateBottom}
	fill(dst, plate, roundedRect(float32(x), float32(y), float32(size), float32(size), float32(size*0.22)))

	radius := size * 0.36
	disc := &linearGradient{bounds: b, x0: cx - radius, y0: cy - radius, x1: cx + radius, y1: cy + radius, from: discStart, to: discEnd}
	fill(dst, disc, circle(float32(cx), float32(cy), float32(radius)))
	fill(dst, image.NewUniform(white), playTriangle(float32(cx), float32(cy), float32(radius)))
}

func (r *Rich) drawCaption(dst *image.RGBA, md lottie.Metadata, m float64) error {
	title, err := r.opts.Face(m*titleRatio, true)
	if err != nil {
		return err
	}
	defer title.Close()
	body, err := r.opts.Face(m*bodyRatio, false)
	if err != nil {
		return err
	}
	defer body.Close()

	b := dst.Bounds()
	pad := int(m * paddingRatio)
	th, bh := lineHeight(title), lineHeight(body)
	top := b.Max.Y - 2*pad - th - 2*bh
	band := image.Rect(b.Min.X, max(top, b.Min.Y), b.Max.X, b.Max.Y)
	draw.Draw(dst, band, image.NewUniform(withAlpha(black, 0.35)), image.Point{}, draw.Over)

	cx := b.Dx() / 2
	maxWidth := b.Dx() - 2*pad
	lines := []struct {
		face font.Face
		text string
		col  color.RGBA
	}{
		{title, md.Name, white},
		{body, strconv.Itoa(md.Width) + " x " + strconv.Itoa(md.Height) + " · " + lottie.FormatFrameRate(md.FrameRate), withAlpha(white, 0.8)},
		{body, lottie.FormatDuration(md.DurationSeconds) + " · " + frames(md.TotalFrames), withAlpha(white, 0.8)},
	}
	y := top + pad
	for _, l := range lines {
		if strings.TrimSpace(l.text) == "" {
			continue
		}
		y += l.face.Metrics().Ascent.Ceil()
		drawCentered(dst, l.face, l.col, fitText(l.face, l.text, maxWidth), cx, y)
		y += l.face.Metrics().Descent.Ceil()
	}
	return nil
}

func (r *Rich) drawBadge(dst *image.RGBA, m float64) error {
	b := dst.Bounds()
	bw, bh := m*0.16, m*0.08
	x, y := float64(b.Max.X)-bw-m*0.05, m*0.05
	grad := &linearGradient{bounds: b, x0: x, y0: y, x1: x, y1: y + bh, from: badgeTop, to: badgeBottom}
	fill(dst, grad, roundedRect(float32(x), float32(y), float32(bw), float32(bh), float32(bh*0.25)))

	face, err := r.opts.Face(bh*0.55, true)
	if err != nil {
		return err
	}
	defer face.Close()
	metrics := face.Metrics()
	baseline := int(y + (bh+float64(metrics.Ascent.Ceil()-metrics.Descent.Ceil()))/2)
	drawCentered(dst, face, white, "ZIP", int(x+bw/2), baseline)
	return nil
}

func frames(n float64) string {
	return strconv.FormatFloat(math.Round(n), 'f', -1, 64) + " frames"
}
