package renderer

import (
	"image"
	"image/draw"

	"golang.org/x/image/vector"
)

// kappa places cubic control points for a quarter circle.
const kappa = 0.5522847

type pathFunc func(z *vector.Rasterizer)

// fill rasterizes path over dst using src as the paint.
func fill(dst draw.Image, src image.Image, path pathFunc) {
	b := dst.Bounds()
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	path(z)
	z.Draw(dst, b, src, b.Min)
}

// maskOf rasterizes path into a coverage mask the size of b.
func maskOf(b image.Rectangle, path pathFunc) *image.Alpha {
	mask := image.NewAlpha(b)
	fill(mask, image.Opaque, path)
	return mask
}

// clipTo multiplies every pixel of img by the coverage of mask.
func clipTo(img *image.RGBA, mask *image.Alpha) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			a := uint16(mask.AlphaAt(x, y).A)
			if a == 0xff {
				continue
			}
			i := img.PixOffset(x, y)
			for c := 0; c < 4; c++ {
				img.Pix[i+c] = uint8(uint16(img.Pix[i+c]) * a / 0xff)
			}
		}
	}
}

func circle(cx, cy, r float32) pathFunc {
	return func(z *vector.Rasterizer) {
		k := kappa * r
		z.MoveTo(cx+r, cy)
		z.CubeTo(cx+r, cy+k, cx+k, cy+r, cx, cy+r)
		z.CubeTo(cx-k, cy+r, cx-r, cy+k, cx-r, cy)
		z.CubeTo(cx-r, cy-k, cx-k, cy-r, cx, cy-r)
		z.CubeTo(cx+k, cy-r, cx+r, cy-k, cx+r, cy)
		z.ClosePath()
	}
}

func roundedRect(x, y, w, h, r float32) pathFunc {
	return func(z *vector.Rasterizer) {
		r := min(r, w/2, h/2)
		if r < 0 {
			r = 0
		}
		c := r * (1 - kappa)
		z.MoveTo(x+r, y)
		z.LineTo(x+w-r, y)
		z.CubeTo(x+w-c, y, x+w, y+c, x+w, y+r)
		z.LineTo(x+w, y+h-r)
		z.CubeTo(x+w, y+h-c, x+w-c, y+h, x+w-r, y+h)
		z.LineTo(x+r, y+h)
		z.CubeTo(x+c, y+h, x, y+h-c, x, y+h-r)
		z.LineTo(x, y+r)
		z.CubeTo(x, y+c, x+c, y, x+r, y)
		z.ClosePath()
	}
}

// playTriangle is a right-pointing triangle centred on (cx,cy) inside a
// circle of radius r.
func playTriangle(cx, cy, r float32) pathFunc {
	return func(z *vector.Rasterizer) {
		z.MoveTo(cx-r*0.3, cy-r*0.4)
		z.LineTo(cx+r*0.45, cy)
		z.LineTo(cx-r*0.3, cy+r*0.4)
		z.ClosePath()
	}
}

// paste draws src centred on (cx,cy).
func paste(dst draw.Image, src image.Image, cx, cy int) {
	sb := src.Bounds()
	at := image.Pt(cx-sb.Dx()/2, cy-sb.Dy()/2)
	draw.Draw(dst, image.Rectangle{Min: at, Max: at.Add(sb.Size())}, src, sb.Min, draw.Over)
}
