package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/lottiethumb/internal/apperr"
)

// BatchResult is the outcome of one input of a batch.
type BatchResult struct {
	Source      string
	Destination string
	Item        Item
	Err         error
}

// DestinationFor maps an input to <destDir>/<base name>.png.
func DestinationFor(src, destDir string) string {
	base := filepath.Base(src)
	return filepath.Join(destDir, strings.TrimSuffix(base, filepath.Ext(base))+".png")
}

// destinations hands out one output path per source. A source whose stem is
// already taken gets its full base name instead, so anim.json and anim.zip
// become anim.png and anim.zip.png.
type destinations struct {
	dir    string
	owners map[string]string
}

func newDestinations(dir string) *destinations {
	return &destinations{dir: dir, owners: make(map[string]string)}
}

func (d *destinations) claim(src string) (string, error) {
	src = filepath.Clean(src)
	for _, dest := range []string{
		DestinationFor(src, d.dir),
		filepath.Join(d.dir, filepath.Base(src)+".png"),
	} {
		if owner, taken := d.owners[dest]; !taken || owner == src {
			d.owners[dest] = src
			return dest, nil
		}
	}
	return "", fmt.Errorf("%w: %s: every output name in %s belongs to another input", apperr.ErrOutputWrite, src, d.dir)
}

// Batch renders every source into destDir with at most workers concurrent
// runs. A failing input does not stop the others; results keep input order.
// Inputs sharing a stem never share an output file.
func (t *Thumbnailer) Batch(ctx context.Context, sources []string, destDir string, workers int) []BatchResult {
	results := make([]BatchResult, len(sources))
	var g errgroup.Group
	if workers > 0 {
		g.SetLimit(workers)
	}
	dests := newDestinations(destDir)
	for i, src := range sources {
		results[i] = BatchResult{Source: src}
		dest, err := dests.claim(src)
		if err != nil {
			results[i].Err = err
			continue
		}
		results[i].Destination = dest
		g.Go(func() error {
			res := &results[i]
			res.Err = t.Generate(ctx, Request{Source: res.Source, Destination: res.Destination}, &res.Item)
			return nil
		})
	}
	_ = g.Wait()
	return results
}
