package renderer

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

// LoadBrandMark decodes the optional brand-mark image at path.
func LoadBrandMark(path string) (image.Image, error) {
	if strings.EqualFold(filepath.Ext(path), ".webp") {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open brand mark: %w", err)
		}
		defer f.Close()
		img, err := webp.Decode(f)
		if err != nil {
			return nil, fmt.Errorf("decode brand mark: %w", err)
		}
		return img, nil
	}
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open brand mark: %w", err)
	}
	return img, nil
}

// fitBrandMark scales img to fit inside a size x size box.
func fitBrandMark(img image.Image, size int) image.Image {
	return imaging.Fit(img, size, size, imaging.Lanczos)
}
