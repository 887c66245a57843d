package imagepkg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/youruser/pnlcard/internal/cards"
)

var errNoAsset = errors.New("no asset url")

// AssetSource is one place an image can come from.
type AssetSource interface {
	Load(ctx context.Context) (image.Image, error)
	String() string
}

// RemoteURL loads an image over the network.
type RemoteURL struct {
	URL     string
	Fetcher Fetcher
}

func (s RemoteURL) Load(ctx context.Context) (image.Image, error) {
	return DownloadImage(ctx, s.Fetcher, s.URL)
}

func (s RemoteURL) String() string { return "remote:" + s.URL }

// StockDefault is the bundled fallback background. Ref is either an
// http(s) URL or a path on local disk.
type StockDefault struct {
	Ref     string
	Fetcher Fetcher
}

func (s StockDefault) Load(ctx context.Context) (image.Image, error) {
	if s.Ref == "" {
		return nil, errors.New("no stock background configured")
	}
	if isRemote(s.Ref) {
		return DownloadImage(ctx, s.Fetcher, s.Ref)
	}
	b, err := os.ReadFile(s.Ref)
	if err != nil {
		return nil, err
	}
	return imaging.Decode(bytes.NewReader(b))
}

func (s StockDefault) String() string { return "stock:" + s.Ref }

// SolidFill never fails; it yields a uniform image of Color.
type SolidFill struct {
	Color string
}

func (s SolidFill) Load(context.Context) (image.Image, error) {
	return image.NewUniform(cards.ColorOr(s.Color, cards.DefaultBackgroundColor)), nil
}

func (s SolidFill) String() string { return "solid:" + s.Color }

func isRemote(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

// FallbackChain tries each source in priority order.
type FallbackChain []AssetSource

// Resolve returns the first image that loads along with the source that
// served it. The error lists every failure when the whole chain is exhausted.
func (c FallbackChain) Resolve(ctx context.Context) (image.Image, AssetSource, error) {
	var errs []error
	for _, src := range c {
		img, err := src.Load(ctx)
		if err == nil {
			return img, src, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", src, err))
	}
	return nil, nil, errors.Join(errs...)
}

type cachedAsset struct {
	img image.Image
	err error
}

// AssetCache memoizes overlay asset loads for the duration of one render.
// Failures are cached too, so every frame sees the same availability.
type AssetCache struct {
	entries map[string]cachedAsset
}

func NewAssetCache() *AssetCache {
	return &AssetCache{entries: map[string]cachedAsset{}}
}

func (c *AssetCache) Load(ctx context.Context, src AssetSource) (image.Image, error) {
	key := src.String()
	if e, ok := c.entries[key]; ok {
		return e.img, e.err
	}
	img, err := src.Load(ctx)
	c.entries[key] = cachedAsset{img: img, err: err}
	return img, err
}
