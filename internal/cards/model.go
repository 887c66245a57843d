package cards

import "github.com/shopspring/decimal"

// Default appearance used whenever a user has not configured a value.
const (
	DefaultBackgroundColor = "#1a1a2e"
	DefaultTextColor       = "#ffffff"
	DefaultAccentColor     = "#00ff88"
	LossColor              = "#ff4444"
)

// Bounds on accepted amounts. Both are checked on the decimal's coefficient
// and exponent so an absurd input is rejected before any arithmetic runs.
const (
	MaxIntegerDigits  = 15
	MaxFractionDigits = 18
)

var hundred = decimal.NewFromInt(100)

// ValidAmount reports whether d is small enough to render: fewer than
// MaxIntegerDigits digits before the point and at most MaxFractionDigits after.
func ValidAmount(d decimal.Decimal) bool {
	exp := d.Exponent()
	if exp < -MaxFractionDigits {
		return false
	}
	return d.NumDigits()+int(exp) <= MaxIntegerDigits
}

// Payload is the input for one card render. Profit and ProfitPercent are
// derived from Cost and Sells on every call and cannot be set directly.
type Payload struct {
	MarketName      string          `json:"market_name"`
	Cost            decimal.Decimal `json:"cost"`
	Sells           decimal.Decimal `json:"sells"`
	BackgroundURL   string          `json:"background_url,omitempty"`
	BackgroundColor string          `json:"background_color,omitempty"`
	TextColor       string          `json:"text_color,omitempty"`
	AccentColor     string          `json:"accent_color,omitempty"`
	Username        string          `json:"username,omitempty"`
	AvatarURL       string          `json:"avatar_url,omitempty"`
}

// Profit is Sells - Cost.
func (p Payload) Profit() decimal.Decimal {
	return p.Sells.Sub(p.Cost)
}

// ProfitPercent is Profit/Cost*100, or zero when Cost is zero.
func (p Payload) ProfitPercent() decimal.Decimal {
	if p.Cost.IsZero() {
		return decimal.Zero
	}
	return p.Profit().Div(p.Cost).Mul(hundred)
}

// IsPositive reports whether the card shows a gain. Break-even counts as a gain.
func (p Payload) IsPositive() bool {
	return p.Profit().Sign() >= 0
}

// MainColor is the accent used for the profit box and PNL row. Losses are
// always red whatever accent the user configured.
func (p Payload) MainColor() string {
	if !p.IsPositive() {
		return LossColor
	}
	if p.AccentColor != "" {
		return p.AccentColor
	}
	return DefaultAccentColor
}

// BaseTextColor returns the configured text color or white.
func (p Payload) BaseTextColor() string {
	if p.TextColor != "" {
		return p.TextColor
	}
	return DefaultTextColor
}

// FillColor returns the flat background color used when no image can be loaded.
func (p Payload) FillColor() string {
	if p.BackgroundColor != "" {
		return p.BackgroundColor
	}
	return DefaultBackgroundColor
}
