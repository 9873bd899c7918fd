package renderer

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/font"

	"github.com/ivlev/lottiethumb/internal/analyzer"
	"github.com/ivlev/lottiethumb/internal/apperr"
	"github.com/ivlev/lottiethumb/internal/config"
	"github.com/ivlev/lottiethumb/internal/lottie"
)

func testOptions() Options {
	return Options{
		BackgroundTop:    color.RGBA{0x1d, 0x00, 0x3d, 0xff},
		BackgroundBottom: color.RGBA{0, 0, 0, 0xff},
		Caption:          true,
		Canvas: func(w, h int) (*image.RGBA, error) {
			return image.NewRGBA(image.Rect(0, 0, w, h)), nil
		},
		Face: GoFace,
	}
}

func testRequest(w, h int, archive bool) Request {
	return Request{
		Metadata: lottie.Metadata{
			Width:           w,
			Height:          h,
			FrameRate:       24,
			DurationSeconds: 2,
			TotalFrames:     48,
			Name:            "spinner",
			IsArchiveSource: archive,
			ThumbnailScale:  1,
			ThumbnailWidth:  w,
			ThumbnailHeight: h,
		},
		Analysis: analyzer.ColorAnalysis{DominantColors: []string{"#ff0000"}},
	}
}

func decode(t *testing.T, data []byte) image.Image {
	t.Helper()
	if !bytes.HasPrefix(data, pngSignature) {
		t.Fatalf("missing png signature")
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return img
}

type failing struct {
	name    string
	explode bool
	data    []byte
}

func (f failing) Name() string { return f.name }

func (f failing) Render(Request) ([]byte, error) {
	if f.explode {
		panic("boom")
	}
	if f.data != nil {
		return f.data, nil
	}
	return nil, apperr.ErrCanvasUnavailable
}

func TestRichTier(t *testing.T) {
	for _, archive := range []bool{false, true} {
		chain := NewChain(nil, NewRich(testOptions()), NewSimplified(testOptions()), Minimal{})
		res := chain.Render(testRequest(400, 300, archive))
		if res.Tier != TierRich {
			t.Fatalf("expected rich tier, got %s", res.Tier)
		}
		img := decode(t, res.PNG)
		if img.Bounds().Dx() != 400 || img.Bounds().Dy() != 300 {
			t.Fatalf("unexpected size %v", img.Bounds())
		}
		if _, _, _, a := img.At(0, 0).RGBA(); a != 0 {
			t.Errorf("expected clipped corner, alpha %d", a)
		}
		if _, _, _, a := img.At(200, 126).RGBA(); a != 0xffff {
			t.Errorf("expected opaque centre, alpha %d", a)
		}
		t.Logf("archive=%v rich preview is %d bytes", archive, len(res.PNG))
	}
}

func TestRichWithBrandMark(t *testing.T) {
	mark := image.NewRGBA(image.Rect(0, 0, 64, 32))
	for i := range mark.Pix {
		mark.Pix[i] = 0xff
	}
	path := filepath.Join(t.TempDir(), "mark.png")
	var buf bytes.Buffer
	if err := png.Encode(&buf, mark); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	loaded, err := LoadBrandMark(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	opts := testOptions()
	opts.BrandMark = loaded
	opts.Caption = false

	res := NewChain(nil, NewRich(opts)).Render(testRequest(200, 200, false))
	if res.Tier != TierRich {
		t.Fatalf("expected rich, got %s", res.Tier)
	}
	img := decode(t, res.PNG)
	r, g, b, _ := img.At(100, 100).RGBA()
	if r != 0xffff || g != 0xffff || b != 0xffff {
		t.Errorf("expected white brand mark at centre, got %d %d %d", r, g, b)
	}

	if _, err := LoadBrandMark(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Errorf("expected error for missing brand mark")
	}
}

func TestFallbackToSimplified(t *testing.T) {
	opts := testOptions()
	opts.Face = func(float64, bool) (font.Face, error) { return nil, errors.New("no fonts") }

	res := NewChain(nil, NewRich(opts), NewSimplified(opts), Minimal{}).Render(testRequest(300, 300, false))
	if res.Tier != TierSimplified {
		t.Fatalf("expected simplified tier, got %s", res.Tier)
	}
	img := decode(t, res.PNG)
	if img.Bounds().Dx() != 300 {
		t.Errorf("unexpected size %v", img.Bounds())
	}
}

func TestFallbackToMinimal(t *testing.T) {
	tests := []struct {
		name  string
		chain *Chain
	}{
		{"canvas unavailable", NewChain(nil, NewRich(Options{}), NewSimplified(Options{}), Minimal{})},
		{"panicking tier", NewChain(nil, failing{name: "panics", explode: true}, Minimal{})},
		{"not a png", NewChain(nil, failing{name: "garbage", data: []byte("GIF89a")}, Minimal{})},
		{"exhausted", NewChain(nil, failing{name: "broken"})},
		{"empty", NewChain(nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := tt.chain.Render(testRequest(100, 100, true))
			if res.Tier != TierMinimal {
				t.Fatalf("expected minimal, got %s", res.Tier)
			}
			img := decode(t, res.PNG)
			if img.Bounds().Dx() != 1 || img.Bounds().Dy() != 1 {
				t.Errorf("expected 1x1 placeholder, got %v", img.Bounds())
			}
		})
	}
}

func TestDefaultChainCanvasGuard(t *testing.T) {
	cfg := config.NewDefaultConfig().Preview
	cfg.MaxPixels = 100
	chain, err := NewDefaultChain(cfg, nil)
	if err != nil {
		t.Fatalf("chain: %v", err)
	}
	if res := chain.Render(testRequest(512, 512, false)); res.Tier != TierMinimal {
		t.Errorf("expected oversized canvas to fall through to minimal, got %s", res.Tier)
	}

	cfg = config.NewDefaultConfig().Preview
	cfg.BrandMark = filepath.Join(t.TempDir(), "absent.webp")
	opts, err := OptionsFromConfig(cfg, nil)
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	if opts.BrandMark != nil {
		t.Errorf("expected missing brand mark to be ignored")
	}
}

func TestParseHex(t *testing.T) {
	tests := []struct {
		in      string
		want    color.RGBA
		wantErr bool
	}{
		{"#1D003D", color.RGBA{0x1d, 0x00, 0x3d, 0xff}, false},
		{"#fff", color.RGBA{0xff, 0xff, 0xff, 0xff}, false},
		{"008cff", color.RGBA{0x00, 0x8c, 0xff, 0xff}, false},
		{"", color.RGBA{}, true},
		{"#12345", color.RGBA{}, true},
		{"#gggggg", color.RGBA{}, true},
	}
	for _, tt := range tests {
		got, err := ParseHex(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseHex(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseHex(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestGradientEndpoints(t *testing.T) {
	b := image.Rect(0, 0, 10, 100)
	g := newVerticalGradient(b, color.RGBA{0, 0, 0, 0xff}, color.RGBA{0xff, 0xff, 0xff, 0xff})
	top := g.At(0, 0).(color.RGBA)
	bottom := g.At(0, 99).(color.RGBA)
	if top.R > 5 || bottom.R < 250 {
		t.Errorf("unexpected gradient endpoints %v %v", top, bottom)
	}
	if easeInOutCubic(0) != 0 || easeInOutCubic(1) != 1 || easeInOutCubic(0.5) != 0.5 {
		t.Errorf("easing endpoints are off")
	}
}
