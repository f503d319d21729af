package imaging

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"time"

	"github.com/nfnt/resize"
	"github.com/patrickmn/go-cache"
)

const (
	targetWidth  = 1920
	targetHeight = 1080
)

// Processor decodes uploaded images and normalizes them to the target
// resolution. Decoded results are kept in a short-lived cache keyed by the
// uploaded filename, so re-uploads of the same file skip the resize.
type Processor struct {
	cache *cache.Cache
}

func NewProcessor() *Processor {
	return &Processor{
		cache: cache.New(5*time.Minute, 10*time.Minute),
	}
}

// Normalize decodes r and resizes the image to 1920x1080 unless it already
// has those dimensions.
func (p *Processor) Normalize(name string, r io.Reader) (image.Image, error) {
	if cached, found := p.cache.Get(name); found {
		return cached.(image.Image), nil
	}

	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %v", err)
	}

	if img.Bounds().Dx() != targetWidth || img.Bounds().Dy() != targetHeight {
		img = resize.Resize(targetWidth, targetHeight, img, resize.Lanczos3)
	}

	p.cache.Set(name, img, cache.DefaultExpiration)
	return img, nil
}

// Encode writes img to w in the format implied by the file extension.
func Encode(w io.Writer, img image.Image, ext string) error {
	switch ext {
	case ".jpg", ".jpeg":
		return jpeg.Encode(w, img, nil)
	case ".png":
		return png.Encode(w, img)
	default:
		return fmt.Errorf("unsupported image extension: %s", ext)
	}
}
