package imagepkg

import (
	"context"
	"image"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"github.com/rs/zerolog"
	"github.com/youruser/pnlcard/internal/cards"
)

// Remote brand assets.
const (
	DefaultLogoURL  = "https://i.imgur.com/B4oNU7G.png"
	DefaultGlobeURL = "https://upload.wikimedia.org/wikipedia/commons/thumb/a/ae/Globe_icon-white.svg/1024px-Globe_icon-white.svg.png"
)

const placeholderColor = "#555555"

type OverlayConfig struct {
	LogoURL  string
	GlobeURL string
	Caption  string
}

// OverlayRenderer paints text, boxes and icons over an already drawn background.
type OverlayRenderer struct {
	fonts   *Fonts
	fetcher Fetcher
	cfg     OverlayConfig
	log     zerolog.Logger
}

func NewOverlayRenderer(fonts *Fonts, fetcher Fetcher, cfg OverlayConfig, log zerolog.Logger) *OverlayRenderer {
	if cfg.Caption == "" {
		cfg.Caption = DefaultFooterCaption
	}
	return &OverlayRenderer{
		fonts:   fonts,
		fetcher: fetcher,
		cfg:     cfg,
		log:     log.With().Str("component", "overlay").Logger(),
	}
}

// session holds the per-render state shared by every overlay pass of one
// generation. It must not be used from more than one goroutine.
type session struct {
	faces  *faceSet
	assets *AssetCache
	layout Layout
	warned map[string]bool
}

func (r *OverlayRenderer) newSession(p cards.Payload) *session {
	faces := r.fonts.faces()
	return &session{
		faces:  faces,
		assets: NewAssetCache(),
		layout: ComputeLayout(p, Metrics{Title: measure(faces.title), Profit: measure(faces.profit)}, r.cfg.Caption),
		warned: map[string]bool{},
	}
}

func (s *session) Close() {
	s.faces.Close()
}

// DrawOverlay paints the overlay for p onto dc.
func (r *OverlayRenderer) DrawOverlay(ctx context.Context, dc *gg.Context, p cards.Payload) {
	s := r.newSession(p)
	defer s.Close()
	r.draw(ctx, dc, s)
}

func (r *OverlayRenderer) draw(ctx context.Context, dc *gg.Context, s *session) {
	l := s.layout
	text := cards.ColorOr(l.TextColor, cards.DefaultTextColor)

	if logo, err := r.asset(ctx, s, r.cfg.LogoURL, "Logo unavailable, omitting"); err == nil {
		drawClipped(dc, logo, l.Logo, logoRadius)
	}

	dc.SetFontFace(s.faces.title)
	dc.SetColor(text)
	for _, line := range l.Title {
		dc.DrawString(line.Text, line.X, line.Y)
	}

	box := l.ProfitBox
	dc.SetColor(cards.ColorOr(l.MainColor, cards.DefaultAccentColor))
	dc.DrawRectangle(box.X, box.Y, box.W, box.H)
	dc.Fill()
	dc.SetFontFace(s.faces.profit)
	dc.SetColor(cards.ColorOr(l.Profit.Color, "#000000"))
	dc.DrawStringAnchored(l.Profit.Text, l.Profit.X, l.Profit.Y, 0, 0.5)

	dc.SetFontFace(s.faces.stat)
	for _, item := range l.Stats {
		dc.SetColor(cards.ColorOr(item.Color, cards.DefaultTextColor))
		dc.DrawString(item.Text, item.X, item.Y)
	}

	if l.Identity != nil {
		r.drawIdentity(ctx, dc, s, l.Identity)
	}
}

func (r *OverlayRenderer) drawIdentity(ctx context.Context, dc *gg.Context, s *session, id *Identity) {
	text := cards.ColorOr(id.Username.Color, cards.DefaultTextColor)

	if id.Avatar != nil {
		if avatar, err := r.asset(ctx, s, id.AvatarURL, "Avatar unavailable, drawing placeholder"); err == nil {
			drawClipped(dc, avatar, *id.Avatar, avatarSize/2)
		} else {
			cx, cy := id.Avatar.Center()
			dc.SetColor(cards.ColorOr(placeholderColor, cards.DefaultBackgroundColor))
			dc.DrawCircle(cx, cy, avatarSize/2)
			dc.Fill()
		}
	}

	dc.SetFontFace(s.faces.username)
	dc.SetColor(text)
	dc.DrawString(id.Username.Text, id.Username.X, id.Username.Y)

	if globe, err := r.asset(ctx, s, r.cfg.GlobeURL, "Globe unavailable, drawing outline"); err == nil {
		dc.DrawImage(imaging.Resize(globe, int(id.Globe.W), int(id.Globe.H), imaging.Lanczos), int(id.Globe.X), int(id.Globe.Y))
	} else {
		cx, cy := id.Globe.Center()
		dc.SetColor(text)
		dc.SetLineWidth(2)
		dc.DrawCircle(cx, cy, id.Globe.W/2)
		dc.Stroke()
	}

	dc.SetFontFace(s.faces.footer)
	dc.SetColor(text)
	dc.DrawString(id.Caption.Text, id.Caption.X, id.Caption.Y)
}

// asset loads url through the session cache. A failure is logged at Warn once
// per session; an unconfigured asset is not logged.
func (r *OverlayRenderer) asset(ctx context.Context, s *session, url, msg string) (image.Image, error) {
	if url == "" {
		return nil, errNoAsset
	}
	img, err := s.assets.Load(ctx, RemoteURL{URL: url, Fetcher: r.fetcher})
	if err != nil && !s.warned[url] {
		s.warned[url] = true
		r.log.Warn().Err(err).Str("url", url).Msg(msg)
	}
	return img, err
}

// drawClipped draws img scaled into rect, clipped to a rounded square.
func drawClipped(dc *gg.Context, img image.Image, rect Rect, radius float64) {
	scaled := imaging.Resize(img, int(rect.W), int(rect.H), imaging.Lanczos)
	dc.Push()
	dc.DrawRoundedRectangle(rect.X, rect.Y, rect.W, rect.H, radius)
	dc.Clip()
	dc.DrawImage(scaled, int(rect.X), int(rect.Y))
	dc.Pop()
}
