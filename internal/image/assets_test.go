package imagepkg

import (
	"context"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFallbackChainPriority(t *testing.T) {
	f := newStubFetcher()
	f.assets["https://cdn.example.com/stock.png"] = solidPNG(t, color.White, 4, 4)

	chain := FallbackChain{
		RemoteURL{URL: "https://cdn.example.com/missing.png", Fetcher: f},
		StockDefault{Ref: "https://cdn.example.com/stock.png", Fetcher: f},
		SolidFill{Color: "#000000"},
	}

	img, src, err := chain.Resolve(context.Background())
	require.NoError(t, err)
	assert.IsType(t, StockDefault{}, src)
	assert.Equal(t, 4, img.Bounds().Dx())
	assert.Equal(t, 1, f.count("https://cdn.example.com/missing.png"))
}

func TestFallbackChainEndsInSolidFill(t *testing.T) {
	f := newStubFetcher()
	r := NewBackgroundResolver(f, "https://cdn.example.com/stock.png", zerolog.Nop())

	img, src, err := r.Chain("https://cdn.example.com/bg.png", "#ff0000").Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SolidFill{Color: "#ff0000"}, src)
	u, ok := img.(*image.Uniform)
	require.True(t, ok)
	assert.Equal(t, color.NRGBA{R: 0xff, A: 0xff}, u.C)
}

func TestFallbackChainExhausted(t *testing.T) {
	f := newStubFetcher()
	_, _, err := FallbackChain{RemoteURL{URL: "https://a", Fetcher: f}}.Resolve(context.Background())
	assert.ErrorContains(t, err, "remote:https://a")
}

func TestBackgroundChainSkipsNone(t *testing.T) {
	r := NewBackgroundResolver(newStubFetcher(), "stock.png", zerolog.Nop())

	for _, ref := range []string{"", "none", "NONE"} {
		chain := r.Chain(ref, "")
		require.Len(t, chain, 2, ref)
		assert.IsType(t, StockDefault{}, chain[0])
		assert.IsType(t, SolidFill{}, chain[1])
	}

	assert.Len(t, NewBackgroundResolver(newStubFetcher(), "", zerolog.Nop()).Chain("", ""), 1)
}

func TestStockDefaultFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stock.png")
	require.NoError(t, os.WriteFile(path, solidPNG(t, color.White, 3, 2), 0o644))

	img, err := StockDefault{Ref: path}.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 3, 2), img.Bounds())

	_, err = StockDefault{Ref: filepath.Join(t.TempDir(), "nope.png")}.Load(context.Background())
	assert.Error(t, err)

	_, err = StockDefault{}.Load(context.Background())
	assert.Error(t, err)
}

func TestAssetCacheMemoizesFailures(t *testing.T) {
	f := newStubFetcher()
	f.assets["https://ok"] = solidPNG(t, color.White, 2, 2)
	cache := NewAssetCache()

	for i := 0; i < 3; i++ {
		_, err := cache.Load(context.Background(), RemoteURL{URL: "https://missing", Fetcher: f})
		assert.Error(t, err)
		_, err = cache.Load(context.Background(), RemoteURL{URL: "https://ok", Fetcher: f})
		assert.NoError(t, err)
	}

	assert.Equal(t, 1, f.count("https://missing"))
	assert.Equal(t, 1, f.count("https://ok"))
}
