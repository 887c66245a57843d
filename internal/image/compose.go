package imagepkg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/gif"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog"
	"github.com/youruser/pnlcard/internal/cards"
)

// Pipeline-level failures. Asset-level failures never surface as errors.
var (
	ErrSourceUnavailable = errors.New("animated background unavailable")
	ErrSourceDecode      = errors.New("animated background could not be decoded")
	ErrEncode            = errors.New("card encoding failed")
)

// ArtifactStore persists encoded cards and owns their lifetime.
type ArtifactStore interface {
	Create(data []byte, ext string) (string, error)
}

// Generator renders cards and hands the encoded bytes to an ArtifactStore.
// Each call works on its own surface; calls may run concurrently.
type Generator struct {
	background *BackgroundResolver
	overlay    *OverlayRenderer
	fetcher    Fetcher
	store      ArtifactStore
	log        zerolog.Logger
}

func NewGenerator(background *BackgroundResolver, overlay *OverlayRenderer, fetcher Fetcher, store ArtifactStore, log zerolog.Logger) *Generator {
	return &Generator{
		background: background,
		overlay:    overlay,
		fetcher:    fetcher,
		store:      store,
		log:        log.With().Str("component", "generator").Logger(),
	}
}

// GenerateFor picks the animated pipeline when the background is a GIF.
func (g *Generator) GenerateFor(ctx context.Context, p cards.Payload) (path string, animated bool, err error) {
	if IsAnimatedRef(p.BackgroundURL) {
		path, err = g.GenerateAnimated(ctx, p)
		return path, true, err
	}
	path, err = g.Generate(ctx, p)
	return path, false, err
}

// Generate renders a still PNG card.
func (g *Generator) Generate(ctx context.Context, p cards.Payload) (string, error) {
	dc := NewSurface()
	g.background.Resolve(ctx, dc, p.BackgroundURL, p.FillColor())
	g.overlay.DrawOverlay(ctx, dc, p)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, dc.Image(), imaging.PNG); err != nil {
		return "", fmt.Errorf("%w: %w", ErrEncode, err)
	}
	path, err := g.store.Create(buf.Bytes(), ".png")
	if err != nil {
		return "", err
	}
	g.log.Info().Str("path", path).Int("bytes", buf.Len()).Msg("Card generated")
	return path, nil
}

// GenerateAnimated renders a looping GIF card over a GIF background. The
// source must be fetchable; there is no still fallback for an animated request.
// Frames are processed one at a time on a single reused surface.
func (g *Generator) GenerateAnimated(ctx context.Context, p cards.Payload) (string, error) {
	data, err := g.fetcher.Fetch(ctx, p.BackgroundURL)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}

	dc := NewSurface()
	s := g.overlay.newSession(p)
	defer s.Close()
	fillColor := cards.ColorOr(p.FillColor(), cards.DefaultBackgroundColor)

	out := &gif.GIF{LoopCount: 0}
	total, err := decodeSampled(data, MaxFrames, func(f Frame) error {
		fill(dc, fillColor)
		DrawStretched(dc, f.Image)
		Darken(dc)
		g.overlay.draw(ctx, dc, s)
		out.Image = append(out.Image, quantize(dc.Image()))
		out.Delay = append(out.Delay, FrameDelay)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSourceDecode, err)
	}

	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, out); err != nil {
		return "", fmt.Errorf("%w: %w", ErrEncode, err)
	}
	path, err := g.store.Create(buf.Bytes(), ".gif")
	if err != nil {
		return "", err
	}
	g.log.Info().
		Str("path", path).
		Int("source_frames", total).
		Int("frames", len(out.Image)).
		Int("bytes", buf.Len()).
		Msg("Animated card generated")
	return path, nil
}
