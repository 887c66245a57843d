package cards

import "strings"

// Summary is the text that accompanies a generated card.
func Summary(p Payload) string {
	lines := []string{}
	if p.MarketName != "" {
		lines = append(lines, "**"+p.MarketName+"**")
	}
	lines = append(lines, "Profit: $"+p.Profit().StringFixed(2)+" ("+PercentText(p)+")")
	return strings.Join(lines, "\n")
}
