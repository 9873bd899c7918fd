package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ivlev/lottiethumb/internal/engine"
)

const testDoc = `{"v":"5.7.4","nm":"cli","ip":0,"op":60,"fr":30,"w":320,"h":320,"layers":[
	{"ty":4,"shapes":[{"ty":"fl","c":{"k":[0,0.5,1,1]}}]}
]}`

type cliEnv struct {
	base       string
	configPath string
}

func setupCLI(t *testing.T) *cliEnv {
	t.Helper()
	base := t.TempDir()
	configPath := filepath.Join(base, "config.yaml")
	body := "log:\n  level: error\nscratch:\n  root: " + filepath.Join(base, "scratch") + "\n"
	if err := os.WriteFile(configPath, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return &cliEnv{base: base, configPath: configPath}
}

func (e *cliEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", e.configPath}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func (e *cliEnv) writeDoc(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(e.base, name)
	if err := os.WriteFile(path, []byte(testDoc), 0o644); err != nil {
		t.Fatalf("write doc: %v", err)
	}
	return path
}

func TestRenderCommand(t *testing.T) {
	env := setupCLI(t)
	src := env.writeDoc(t, "anim.json")
	dest := filepath.Join(env.base, "out", "anim.png")

	out, err := env.run(t, "render", src, dest)
	if err != nil {
		t.Fatalf("render: %v\n%s", err, out)
	}
	for _, want := range []string{"width: 320", "duration: 2 seconds", "frameRate: 30fps", "thumbnailType: rich"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
	if info, err := os.Stat(dest); err != nil || info.Size() == 0 {
		t.Errorf("expected thumbnail at %s: %v", dest, err)
	}

	out, err = env.run(t, "render", "--json", src, dest)
	if err != nil {
		t.Fatalf("render --json: %v", err)
	}
	var item struct {
		Lottie struct {
			TotalFrames float64 `json:"totalFrames"`
		} `json:"lottie"`
	}
	if err := json.Unmarshal([]byte(out), &item); err != nil {
		t.Fatalf("decode json: %v\n%s", err, out)
	}
	if item.Lottie.TotalFrames != 60 {
		t.Errorf("expected 60 frames, got %v", item.Lottie.TotalFrames)
	}
}

func TestRenderCommandItemOut(t *testing.T) {
	env := setupCLI(t)
	src := env.writeDoc(t, "anim.json")
	dest := filepath.Join(env.base, "out", "anim.png")
	record := filepath.Join(env.base, "out", "anim.json")

	if out, err := env.run(t, "render", "--item-out", record, src, dest); err != nil {
		t.Fatalf("render: %v\n%s", err, out)
	}
	item, err := engine.ReadItem(record)
	if err != nil {
		t.Fatalf("read item: %v", err)
	}
	if item.Width != 320 || item.Lottie.TotalFrames != 60 || item.Lottie.ThumbnailType != "rich" {
		t.Errorf("unexpected record: %+v", item)
	}
}

func TestRenderCommandArchiveOnBareFile(t *testing.T) {
	env := setupCLI(t)
	src := env.writeDoc(t, "anim.json")
	dest := filepath.Join(env.base, "anim.png")

	if _, err := env.run(t, "render", "--archive", src, dest); err == nil {
		t.Fatal("expected archive entry point to reject a bare document")
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Errorf("expected no output file")
	}
	if _, err := env.run(t, "render", "--archive", "--document", src, dest); err == nil {
		t.Errorf("expected conflicting flags to fail")
	}
}

func TestInspectCommand(t *testing.T) {
	env := setupCLI(t)
	src := env.writeDoc(t, "anim.json")

	out, err := env.run(t, "inspect", src)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if !strings.Contains(out, "document: anim.json") || !strings.Contains(out, "0080ff") {
		t.Errorf("unexpected inspect output:\n%s", out)
	}
}

func TestBatchCommand(t *testing.T) {
	env := setupCLI(t)
	a := env.writeDoc(t, "a.json")
	b := env.writeDoc(t, "b.json")
	destDir := filepath.Join(env.base, "thumbs")

	out, err := env.run(t, "batch", "--workers", "2", destDir, a, b)
	if err != nil {
		t.Fatalf("batch: %v\n%s", err, out)
	}
	for _, name := range []string{"a.png", "b.png"} {
		if _, err := os.Stat(filepath.Join(destDir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}

	missing := filepath.Join(env.base, "missing.json")
	if _, err := env.run(t, "batch", destDir, a, missing); err == nil {
		t.Errorf("expected batch with a missing input to report failure")
	}
	t.Logf("batch output:\n%s", out)
}

func TestRenderTable(t *testing.T) {
	got := renderTable([]string{"A", "B"}, [][]string{{"1"}, {"2", "3"}})
	if !strings.Contains(got, "A") || !strings.Contains(got, "3") {
		t.Errorf("unexpected table:\n%s", got)
	}
	right := renderTable([]string{"Name", "Count"}, [][]string{{"a", "7"}}, 1)
	if !strings.Contains(right, "    7 ") {
		t.Errorf("expected right aligned count:\n%s", right)
	}
	if renderTable(nil, nil) != "" {
		t.Errorf("expected empty table for no headers")
	}
}
