package cards

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// groupedFixed renders |d| with exactly two decimals and comma thousands separators.
func groupedFixed(d decimal.Decimal) string {
	r := d.Abs().Round(2)
	s := r.StringFixed(2)
	frac := s[strings.IndexByte(s, '.')+1:]
	return humanize.BigComma(r.BigInt()) + "." + frac
}

func sign(positive bool) string {
	if positive {
		return "+"
	}
	return "-"
}

// Money formats an amount as "$1,234.50", with a leading "-" for negatives.
func Money(d decimal.Decimal) string {
	if d.Sign() < 0 {
		return "-$" + groupedFixed(d)
	}
	return "$" + groupedFixed(d)
}

// ProfitText is the profit box caption, for example "+$50.00" or "-$60.00".
func ProfitText(p Payload) string {
	return sign(p.IsPositive()) + "$" + groupedFixed(p.Profit())
}

// PercentText is the PNL row value, for example "+50.00%".
func PercentText(p Payload) string {
	pct := p.ProfitPercent()
	return sign(pct.Sign() >= 0) + pct.Abs().StringFixed(2) + "%"
}

// ParseHexColor accepts #rgb, #rrggbb and #rrggbbaa.
func ParseHexColor(s string) (color.NRGBA, error) {
	c := color.NRGBA{A: 0xff}
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")

	var err error
	switch len(hex) {
	case 3:
		_, err = fmt.Sscanf(hex, "%1x%1x%1x", &c.R, &c.G, &c.B)
		c.R *= 17
		c.G *= 17
		c.B *= 17
	case 6:
		_, err = fmt.Sscanf(hex, "%2x%2x%2x", &c.R, &c.G, &c.B)
	case 8:
		_, err = fmt.Sscanf(hex, "%2x%2x%2x%2x", &c.R, &c.G, &c.B, &c.A)
	default:
		return c, fmt.Errorf("invalid hex color %q", s)
	}
	if err != nil {
		return c, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	return c, nil
}

// ColorOr parses s and falls back to def when s is empty or malformed.
func ColorOr(s, def string) color.NRGBA {
	if c, err := ParseHexColor(s); err == nil {
		return c
	}
	c, _ := ParseHexColor(def)
	return c
}
