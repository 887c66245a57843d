package imagepkg

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/color/palette"
	"image/gif"
	"image/png"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type stubFetcher struct {
	mu     sync.Mutex
	assets map[string][]byte
	calls  map[string]int
}

func newStubFetcher() *stubFetcher {
	return &stubFetcher{assets: map[string][]byte{}, calls: map[string]int{}}
}

func (f *stubFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[url]++
	b, ok := f.assets[url]
	if !ok {
		return nil, fmt.Errorf("GET %s: status 404", url)
	}
	return b, nil
}

func (f *stubFetcher) count(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[url]
}

type memStore struct {
	files map[string][]byte
	err   error
}

func newMemStore() *memStore {
	return &memStore{files: map[string][]byte{}}
}

func (s *memStore) Create(data []byte, ext string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	path := fmt.Sprintf("mem/card-%d%s", len(s.files), ext)
	s.files[path] = data
	return path, nil
}

func solidPNG(t *testing.T, c color.Color, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// testGIF builds an animation of n full frames whose colors cycle.
func testGIF(t *testing.T, n, w, h int) []byte {
	t.Helper()
	g := &gif.GIF{}
	for i := 0; i < n; i++ {
		frame := image.NewPaletted(image.Rect(0, 0, w, h), palette.Plan9)
		idx := uint8(i % len(palette.Plan9))
		for p := range frame.Pix {
			frame.Pix[p] = idx
		}
		g.Image = append(g.Image, frame)
		g.Delay = append(g.Delay, 5)
	}
	var buf bytes.Buffer
	require.NoError(t, gif.EncodeAll(&buf, g))
	return buf.Bytes()
}

func requireNear(t *testing.T, want color.NRGBA, got color.Color, msg string) {
	t.Helper()
	r, g, b, _ := got.RGBA()
	require.Truef(t, near(want, got, 3), "%s: want %v, got (%d,%d,%d)", msg, want, r>>8, g>>8, b>>8)
}

func near(want color.NRGBA, got color.Color, tol int) bool {
	r, g, b, _ := got.RGBA()
	diff := func(a uint8, b uint32) int {
		d := int(a) - int(b>>8)
		if d < 0 {
			d = -d
		}
		return d
	}
	return diff(want.R, r) <= tol && diff(want.G, g) <= tol && diff(want.B, b) <= tol
}

// requireDrawnIn fails unless some pixel inside area is close to want. The
// tolerance is loose because glyph strokes are antialiased.
func requireDrawnIn(t *testing.T, want color.NRGBA, img image.Image, area image.Rectangle, msg string) {
	t.Helper()
	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			if near(want, img.At(x, y), 60) {
				return
			}
		}
	}
	require.Failf(t, "nothing drawn", "%s: no pixel near %v in %v", msg, want, area)
}
