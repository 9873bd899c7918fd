package system

import (
	"fmt"
	"image"
	"sync"

	"github.com/ivlev/lottiethumb/internal/apperr"
)

// ImagePool recycles *image.RGBA canvases of identical size between renders.
type ImagePool struct {
	pools map[string]*sync.Pool
	mu    sync.RWMutex
}

var globalPool = &ImagePool{
	pools: make(map[string]*sync.Pool),
}

// AcquireCanvas returns a cleared w x h canvas from the shared pool. It fails
// with apperr.ErrCanvasUnavailable when the size is empty or exceeds maxPixels.
func AcquireCanvas(w, h, maxPixels int) (*image.RGBA, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: empty size %dx%d", apperr.ErrCanvasUnavailable, w, h)
	}
	if maxPixels > 0 && w > maxPixels/h {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels", apperr.ErrCanvasUnavailable, w, h, maxPixels)
	}
	img := globalPool.Get(image.Rect(0, 0, w, h))
	clear(img.Pix)
	return img, nil
}

// ReleaseCanvas hands a canvas back to the shared pool.
func ReleaseCanvas(img *image.RGBA) {
	globalPool.Put(img)
}

func (p *ImagePool) Get(rect image.Rectangle) *image.RGBA {
	key := rect.String()
	p.mu.RLock()
	pool, exists := p.pools[key]
	p.mu.RUnlock()

	if !exists {
		p.mu.Lock()
		pool, exists = p.pools[key]
		if !exists {
			pool = &sync.Pool{
				New: func() interface{} {
					return image.NewRGBA(rect)
				},
			}
			p.pools[key] = pool
		}
		p.mu.Unlock()
	}

	return pool.Get().(*image.RGBA)
}

func (p *ImagePool) Put(img *image.RGBA) {
	if img == nil {
		return
	}
	key := img.Rect.String()
	p.mu.RLock()
	pool, exists := p.pools[key]
	p.mu.RUnlock()

	if exists {
		pool.Put(img)
	}
}
