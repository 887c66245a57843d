package imagepkg

import (
	"context"
	"image"
	"image/color"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"github.com/rs/zerolog"
	"github.com/youruser/pnlcard/internal/cards"
)

// Card surface dimensions.
const (
	CardWidth  = 1200
	CardHeight = 675
)

// DefaultStockBackground is drawn when the user's background cannot be loaded.
const DefaultStockBackground = "https://static.vecteezy.com/system/resources/thumbnails/007/685/830/small_2x/colorful-geometric-background-trendy-gradient-shapes-composition-cool-background-design-for-posters-free-vector.jpg"

// darkenAlpha is the opacity of the black layer laid over image backgrounds.
const darkenAlpha = 0.5

// NewSurface allocates a blank card surface.
func NewSurface() *gg.Context {
	return gg.NewContext(CardWidth, CardHeight)
}

type BackgroundResolver struct {
	fetcher Fetcher
	stock   string
	log     zerolog.Logger
}

func NewBackgroundResolver(fetcher Fetcher, stock string, log zerolog.Logger) *BackgroundResolver {
	return &BackgroundResolver{
		fetcher: fetcher,
		stock:   stock,
		log:     log.With().Str("component", "background").Logger(),
	}
}

// Chain lists the sources tried for ref in priority order.
func (r *BackgroundResolver) Chain(ref, fallbackColor string) FallbackChain {
	var chain FallbackChain
	if ref != "" && !strings.EqualFold(ref, "none") {
		chain = append(chain, RemoteURL{URL: ref, Fetcher: r.fetcher})
	}
	if r.stock != "" {
		chain = append(chain, StockDefault{Ref: r.stock, Fetcher: r.fetcher})
	}
	return append(chain, SolidFill{Color: fallbackColor})
}

// Resolve paints the whole surface. It never fails: the last link of the
// chain is a flat fill.
func (r *BackgroundResolver) Resolve(ctx context.Context, dc *gg.Context, ref, fallbackColor string) {
	chain := r.Chain(ref, fallbackColor)
	img, src, err := chain.Resolve(ctx)
	if err != nil {
		// unreachable while SolidFill terminates the chain
		r.log.Error().Err(err).Msg("Background chain exhausted")
		fill(dc, cards.ColorOr(fallbackColor, cards.DefaultBackgroundColor))
		return
	}
	if src.String() != chain[0].String() {
		r.log.Warn().Str("requested", ref).Str("served_by", src.String()).Msg("Background fell back")
	}

	if solid, ok := src.(SolidFill); ok {
		fill(dc, cards.ColorOr(solid.Color, cards.DefaultBackgroundColor))
		return
	}
	DrawStretched(dc, img)
	Darken(dc)
}

// DrawStretched scales img to cover the surface exactly, ignoring aspect ratio.
func DrawStretched(dc *gg.Context, img image.Image) {
	b := img.Bounds()
	if b.Dx() != dc.Width() || b.Dy() != dc.Height() {
		img = imaging.Resize(img, dc.Width(), dc.Height(), imaging.Lanczos)
	}
	dc.DrawImage(img, 0, 0)
}

// Darken lays a semi-transparent black rectangle over the surface.
func Darken(dc *gg.Context) {
	dc.SetRGBA(0, 0, 0, darkenAlpha)
	dc.DrawRectangle(0, 0, float64(dc.Width()), float64(dc.Height()))
	dc.Fill()
}

func fill(dc *gg.Context, c color.Color) {
	dc.SetColor(c)
	dc.Clear()
}
