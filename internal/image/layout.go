package imagepkg

import (
	"strings"

	"github.com/youruser/pnlcard/internal/cards"
)

// MeasureFunc returns the rendered width of a string in pixels.
type MeasureFunc func(string) float64

// Layout constants, in surface pixels.
const (
	marginX         = 50
	titleTop        = 115
	titleWidthRatio = 0.7
	titleLineHeight = 50
	maxTitleLines   = 2
	titleGap        = 40

	boxPadding = 20
	boxHeight  = 110

	statsGap       = 60
	statLineHeight = 50
	statValueX     = 400

	profileGap    = 40
	avatarSize    = 80
	avatarTextPad = 20

	footerGap       = 60
	globeSize       = 24
	globeCaptionGap = 10

	logoSize    = 80
	logoPadding = 40
	logoTop     = 40
	logoRadius  = 15
)

const ellipsis = "..."

// DefaultFooterCaption is printed beside the globe glyph.
const DefaultFooterCaption = "Trade on kalshi.com"

// WrapTitle packs the words of title greedily into lines no wider than
// maxWidth. At most two lines are returned; when a third would be needed the
// second line is cut short with an ellipsis and the remaining words dropped.
// A single word wider than maxWidth is never split.
func WrapTitle(title string, maxWidth float64, measure MeasureFunc) []string {
	words := strings.Fields(title)
	lines := make([]string, 0, maxTitleLines)
	line := ""
	for i, w := range words {
		test := line + w + " "
		if i == 0 || measure(test) <= maxWidth {
			line = test
			continue
		}
		if len(lines)+1 >= maxTitleLines {
			line = strings.TrimSpace(line) + ellipsis
			break
		}
		lines = append(lines, strings.TrimRight(line, " "))
		line = w + " "
	}
	return append(lines, strings.TrimRight(line, " "))
}

// Rect is an axis-aligned box with its top-left corner at X, Y.
type Rect struct {
	X, Y, W, H float64
}

func (r Rect) Center() (float64, float64) {
	return r.X + r.W/2, r.Y + r.H/2
}

// TextItem is a string drawn with its left edge at X and baseline at Y.
type TextItem struct {
	Text  string
	X, Y  float64
	Color string
}

// Identity is the username strip and footer, present only with a username.
type Identity struct {
	Avatar    *Rect
	AvatarURL string
	Username  TextItem
	Globe     Rect
	Caption   TextItem
}

// Layout is the resolved position of every overlay element.
type Layout struct {
	MainColor string
	TextColor string
	Logo      Rect
	Title     []TextItem
	ProfitBox Rect
	// Profit.Y is the vertical center of the box, not a baseline.
	Profit   TextItem
	Stats    []TextItem
	Identity *Identity
}

// Metrics measures text in the title and profit faces.
type Metrics struct {
	Title  MeasureFunc
	Profit MeasureFunc
}

// ComputeLayout places every overlay element for p, top to bottom.
func ComputeLayout(p cards.Payload, m Metrics, caption string) Layout {
	main := p.MainColor()
	text := p.BaseTextColor()
	l := Layout{
		MainColor: main,
		TextColor: text,
		Logo:      Rect{X: CardWidth - logoSize - logoPadding, Y: logoTop, W: logoSize, H: logoSize},
	}

	y := float64(titleTop)
	for i, line := range WrapTitle(p.MarketName, CardWidth*titleWidthRatio, m.Title) {
		if i > 0 {
			y += titleLineHeight
		}
		l.Title = append(l.Title, TextItem{Text: line, X: marginX, Y: y, Color: text})
	}
	y += titleGap

	profit := cards.ProfitText(p)
	l.ProfitBox = Rect{X: marginX, Y: y, W: m.Profit(profit) + boxPadding*2, H: boxHeight}
	l.Profit = TextItem{Text: profit, X: marginX + boxPadding, Y: y + boxHeight/2, Color: "#000000"}

	statsY := y + boxHeight + statsGap
	rows := []struct{ label, value, color string }{
		{"PNL", cards.PercentText(p), main},
		{"Total Bought", cards.Money(p.Cost), text},
		{"Total Sold", cards.Money(p.Sells), text},
	}
	for i, row := range rows {
		rowY := statsY + float64(i*statLineHeight)
		l.Stats = append(l.Stats,
			TextItem{Text: row.label, X: marginX, Y: rowY, Color: text},
			TextItem{Text: row.value, X: statValueX, Y: rowY, Color: row.color},
		)
	}

	if p.Username == "" {
		return l
	}

	profileY := statsY + float64(len(rows)*statLineHeight) + profileGap
	id := &Identity{AvatarURL: p.AvatarURL}
	nameX := float64(marginX)
	if p.AvatarURL != "" {
		id.Avatar = &Rect{X: marginX, Y: profileY - avatarSize/2 - 10, W: avatarSize, H: avatarSize}
		nameX += avatarSize + avatarTextPad
	}
	id.Username = TextItem{Text: "@" + p.Username, X: nameX, Y: profileY + 10, Color: text}

	footerY := profileY + footerGap
	id.Globe = Rect{X: marginX, Y: footerY - globeSize + 5, W: globeSize, H: globeSize}
	id.Caption = TextItem{Text: caption, X: marginX + globeSize + globeCaptionGap, Y: footerY, Color: text}
	l.Identity = id
	return l
}
