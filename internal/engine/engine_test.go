package engine

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ivlev/lottiethumb/internal/apperr"
	"github.com/ivlev/lottiethumb/internal/assets"
	"github.com/ivlev/lottiethumb/internal/config"
	"github.com/ivlev/lottiethumb/internal/renderer"
	"github.com/ivlev/lottiethumb/internal/source"
	"github.com/ivlev/lottiethumb/internal/system"
)

const bareDoc = `{"v":"5.7.4","nm":"Bare","ip":0,"op":90,"fr":30,"w":400,"h":400,"layers":[
	{"ty":4,"shapes":[{"ty":"fl","c":{"k":[1,0,0,1]}}]}
]}`

const archiveDoc = `{"v":"5.9.0","ip":0,"op":48,"fr":24,"w":800,"h":600,"layers":[{"ty":2,"refId":"image_0"}],
	"assets":[{"id":"image_0","w":2,"h":2,"u":"images/","p":"dummy.png","e":0}]}`

type fixture struct {
	cfg   *config.Config
	thumb *Thumbnailer
	out   string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := config.NewDefaultConfig()
	cfg.Scratch.Root = t.TempDir()
	thumb, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	return &fixture{cfg: cfg, thumb: thumb, out: t.TempDir()}
}

func (f *fixture) assertNoLeftovers(t *testing.T) {
	t.Helper()
	left, err := system.NewScratchSpace(f.cfg.Scratch.Root, f.cfg.Scratch.Prefix).Leftovers()
	if err != nil {
		t.Fatalf("leftovers: %v", err)
	}
	if len(left) != 0 {
		t.Errorf("scratch directories left behind: %v", left)
	}
}

func writeInput(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func writeArchive(t *testing.T, files map[string][]byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bundle.zip")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	zw := zip.NewWriter(f)
	for name, data := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip create: %v", err)
		}
		if _, err := w.Write(data); err != nil {
			t.Fatalf("zip write: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	return path
}

func decodeOutput(t *testing.T, path string) image.Image {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	return img
}

func TestGenerateDocument(t *testing.T) {
	f := newFixture(t)
	src := writeInput(t, "bare.json", bareDoc)
	dest := filepath.Join(f.out, "bare.png")

	var item Item
	if err := f.thumb.GenerateDocument(context.Background(), Request{Source: src, Destination: dest}, &item); err != nil {
		t.Fatalf("generate: %v", err)
	}

	if item.Width != 400 || item.Height != 400 {
		t.Errorf("unexpected size %dx%d", item.Width, item.Height)
	}
	if item.Lottie.Duration != "3 seconds" || item.Lottie.FrameRate != "30fps" || item.Lottie.TotalFrames != 90 {
		t.Errorf("unexpected lottie block: %+v", item.Lottie)
	}
	if item.Lottie.IsArchiveSource || item.Lottie.ThumbnailType != renderer.TierRich {
		t.Errorf("unexpected source flags: %+v", item.Lottie)
	}
	if item.Lottie.Name != "Bare" {
		t.Errorf("expected name from nm, got %q", item.Lottie.Name)
	}

	img := decodeOutput(t, dest)
	if img.Bounds().Dx() != 400 || img.Bounds().Dy() != 400 {
		t.Errorf("unexpected output size %v", img.Bounds())
	}
	f.assertNoLeftovers(t)
}

func TestGenerateArchive(t *testing.T) {
	f := newFixture(t)
	src := writeArchive(t, map[string][]byte{
		"animation.json":   []byte(archiveDoc),
		"images/dummy.png": pngBytes(t, 2, 2),
	})
	dest := filepath.Join(f.out, "nested", "bundle.png")
	inline := filepath.Join(f.out, "bundle.inline.json")

	var item Item
	err := f.thumb.GenerateArchive(context.Background(), Request{Source: src, Destination: dest, InlinePath: inline}, &item)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if !item.Lottie.IsArchiveSource {
		t.Errorf("expected archive source")
	}
	if item.Width != 800 || item.Height != 600 || item.Lottie.TotalFrames != 48 {
		t.Errorf("unexpected item: %+v", item)
	}
	if item.Lottie.Duration != "2 seconds" || item.Lottie.FrameRate != "24fps" {
		t.Errorf("unexpected timing: %+v", item.Lottie)
	}
	if item.Lottie.ResolvedAssets != 1 || item.Lottie.UnresolvedAssets != 0 {
		t.Errorf("unexpected asset counts: %+v", item.Lottie)
	}
	if item.Lottie.Name != "bundle" {
		t.Errorf("expected base name fallback, got %q", item.Lottie.Name)
	}

	data, err := os.ReadFile(inline)
	if err != nil {
		t.Fatalf("read inline: %v", err)
	}
	if !strings.Contains(string(data), `"p":"data:image/png;base64,`) {
		t.Errorf("expected inlined data URI, got %s", data)
	}
	if !strings.Contains(string(data), `"e":1`) {
		t.Errorf("expected asset marked embedded")
	}

	img := decodeOutput(t, dest)
	if img.Bounds().Dx() != 800 || img.Bounds().Dy() != 600 {
		t.Errorf("unexpected output size %v", img.Bounds())
	}
	f.assertNoLeftovers(t)
}

func TestGenerateSmallDocumentUpscales(t *testing.T) {
	f := newFixture(t)
	src := writeInput(t, "tiny.json", `{"v":"5","ip":0,"op":30,"fr":30,"w":100,"h":120,"layers":[]}`)
	dest := filepath.Join(f.out, "tiny.png")

	var item Item
	if err := f.thumb.Generate(context.Background(), Request{Source: src, Destination: dest}, &item); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if item.Width != 100 || item.Lottie.ThumbnailWidth != 200 || item.Lottie.ThumbnailHeight != 240 {
		t.Errorf("unexpected sizes: %+v", item)
	}
	if b := decodeOutput(t, dest).Bounds(); b.Dx() != 200 || b.Dy() != 240 {
		t.Errorf("expected upscaled render, got %v", b)
	}
}

func TestGenerateBareResolvesSiblingImages(t *testing.T) {
	f := newFixture(t)
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "images"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "images", "dummy.png"), pngBytes(t, 1, 1), 0o644); err != nil {
		t.Fatal(err)
	}
	src := filepath.Join(dir, "loose.json")
	if err := os.WriteFile(src, []byte(archiveDoc), 0o644); err != nil {
		t.Fatal(err)
	}

	var item Item
	err := f.thumb.GenerateDocument(context.Background(), Request{Source: src, Destination: filepath.Join(f.out, "loose.png")}, &item)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if item.Lottie.ResolvedAssets != 1 {
		t.Errorf("expected sibling image to resolve, got %+v", item.Lottie)
	}
	f.assertNoLeftovers(t)
}

func TestGenerateFailures(t *testing.T) {
	corrupt := append([]byte{0x50, 0x4B, 0x03, 0x04}, []byte("definitely not a zip")...)

	tests := []struct {
		name    string
		input   func(t *testing.T) string
		archive bool
		want    error
	}{
		{
			name:    "corrupt archive",
			input:   func(t *testing.T) string { return writeInput(t, "broken.zip", string(corrupt)) },
			archive: true,
			want:    apperr.ErrExtraction,
		},
		{
			name:    "archive entry point on bare file",
			input:   func(t *testing.T) string { return writeInput(t, "bare.json", bareDoc) },
			archive: true,
			want:    apperr.ErrExtraction,
		},
		{
			name: "archive without document",
			input: func(t *testing.T) string {
				return writeArchive(t, map[string][]byte{"readme.txt": []byte("hello"), "a.png": pngBytes(t, 1, 1)})
			},
			archive: true,
			want:    apperr.ErrDocumentNotFound,
		},
		{
			name:  "invalid json",
			input: func(t *testing.T) string { return writeInput(t, "bad.json", "{not json") },
			want:  apperr.ErrInvalidDocument,
		},
		{
			name:  "schema failure",
			input: func(t *testing.T) string { return writeInput(t, "partial.json", `{"v":"5","w":10,"h":10}`) },
			want:  apperr.ErrInvalidDocument,
		},
		{
			name:  "missing input",
			input: func(t *testing.T) string { return filepath.Join(t.TempDir(), "absent.json") },
			want:  apperr.ErrExtraction,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			dest := filepath.Join(f.out, "out.png")
			if err := os.WriteFile(dest, []byte("stale"), 0o644); err != nil {
				t.Fatal(err)
			}
			req := Request{Source: tt.input(t), Destination: dest}

			var err error
			if tt.archive {
				err = f.thumb.GenerateArchive(context.Background(), req, &Item{})
			} else {
				err = f.thumb.GenerateDocument(context.Background(), req, &Item{})
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if _, statErr := os.Stat(dest); !os.IsNotExist(statErr) {
				t.Errorf("expected no file at destination, stat err %v", statErr)
			}
			f.assertNoLeftovers(t)
			t.Logf("error: %v", err)
		})
	}
}

func TestGenerateCanceled(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dest := filepath.Join(f.out, "c.png")
	err := f.thumb.GenerateDocument(ctx, Request{Source: writeInput(t, "a.json", bareDoc), Destination: dest}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	f.assertNoLeftovers(t)
}

type stubRenderer struct{ tier string }

func (s stubRenderer) Render(renderer.Request) renderer.Result {
	return renderer.Result{PNG: renderer.MinimalPNG(), Tier: s.tier}
}

func TestGenerateRecordsTier(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.Scratch.Root = t.TempDir()
	scratch := system.NewScratchSpace(cfg.Scratch.Root, cfg.Scratch.Prefix)
	thumb := NewWithComponents(cfg,
		source.NewExtractor(scratch, cfg.Limits.MaxEntryBytes, cfg.Limits.MaxEntries, nil),
		assets.NewResolver(nil),
		stubRenderer{tier: renderer.TierMinimal},
		nil,
	)

	var item Item
	dest := filepath.Join(t.TempDir(), "m.png")
	if err := thumb.GenerateDocument(context.Background(), Request{Source: writeInput(t, "a.json", bareDoc), Destination: dest}, &item); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if item.Lottie.ThumbnailType != renderer.TierMinimal {
		t.Errorf("expected minimal tier, got %s", item.Lottie.ThumbnailType)
	}
	if b := decodeOutput(t, dest).Bounds(); b.Dx() != 1 {
		t.Errorf("expected placeholder output, got %v", b)
	}
}

func TestInspect(t *testing.T) {
	f := newFixture(t)
	src := writeArchive(t, map[string][]byte{
		"anim/data.json":         []byte(archiveDoc),
		"anim/images/dummy.png":  pngBytes(t, 2, 2),
		"__MACOSX/anim/._x.json": []byte("junk"),
	})

	info, err := f.thumb.Inspect(context.Background(), src)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if !info.Archive || info.Document != "anim/data.json" || info.Locator != string(source.TierNamed) {
		t.Errorf("unexpected inspection: %+v", info)
	}
	if len(info.Assets.Resolved) != 1 || info.Assets.Resolved[0].Entry != "anim/images/dummy.png" {
		t.Errorf("unexpected asset report: %+v", info.Assets)
	}
	if !info.Colors.HasImages {
		t.Errorf("expected image layer detected")
	}

	var buf bytes.Buffer
	if err := EncodeItem(&buf, info, FormatYAML); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !strings.Contains(buf.String(), "document: anim/data.json") {
		t.Errorf("unexpected yaml:\n%s", buf.String())
	}
	f.assertNoLeftovers(t)
}

func TestItemFile(t *testing.T) {
	item := &Item{Width: 10, Height: 20, Lottie: LottieInfo{Duration: "1 seconds", ThumbnailType: renderer.TierRich}}
	for _, name := range []string{"item.yaml", "item.json", "nested/item.yml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), filepath.FromSlash(name))
			if err := WriteItem(path, item); err != nil {
				t.Fatalf("write: %v", err)
			}
			got, err := ReadItem(path)
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			if *got != *item {
				t.Errorf("expected %+v, got %+v", item, got)
			}
			data, _ := os.ReadFile(path)
			if isJSON := bytes.HasPrefix(data, []byte("{")); isJSON != (filepath.Ext(name) == ".json") {
				t.Errorf("unexpected encoding for %s:\n%s", name, data)
			}
		})
	}
	if err := EncodeItem(&bytes.Buffer{}, item, "xml"); err == nil {
		t.Errorf("expected unknown format error")
	}
}
