package imagepkg

import (
	"bytes"
	"context"
	"image"

	"github.com/disintegration/imaging"
)

// Fetcher retrieves the raw bytes behind a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// DownloadImage fetches url and decodes it as a still image.
func DownloadImage(ctx context.Context, f Fetcher, url string) (image.Image, error) {
	body, err := f.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	return imaging.Decode(bytes.NewReader(body))
}
