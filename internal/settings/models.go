// Package settings stores each user's card appearance.
package settings

import (
	"strings"

	"github.com/youruser/pnlcard/internal/cards"
)

// Settings is one user's card appearance. An empty BackgroundURL means no
// background image.
type Settings struct {
	BackgroundURL   string `json:"backgroundUrl"`
	BackgroundColor string `json:"backgroundColor"`
	TextColor       string `json:"textColor"`
	AccentColor     string `json:"accentColor"`
	Username        string `json:"username,omitempty"`
	AvatarURL       string `json:"avatarUrl,omitempty"`
}

// Defaults is the record used for users who have never saved settings.
func Defaults() Settings {
	return Settings{
		BackgroundColor: cards.DefaultBackgroundColor,
		TextColor:       cards.DefaultTextColor,
		AccentColor:     cards.DefaultAccentColor,
	}
}

// Update is a partial change; nil fields are left as they are.
type Update struct {
	BackgroundURL   *string `json:"backgroundUrl,omitempty"`
	BackgroundColor *string `json:"backgroundColor,omitempty"`
	TextColor       *string `json:"textColor,omitempty"`
	AccentColor     *string `json:"accentColor,omitempty"`
	Username        *string `json:"username,omitempty"`
	AvatarURL       *string `json:"avatarUrl,omitempty"`
}

// Empty reports whether u changes nothing.
func (u Update) Empty() bool {
	return u.BackgroundURL == nil && u.BackgroundColor == nil && u.TextColor == nil &&
		u.AccentColor == nil && u.Username == nil && u.AvatarURL == nil
}

// Apply returns s with every non-nil field of u merged in.
func (s Settings) Apply(u Update) Settings {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&s.BackgroundURL, u.BackgroundURL)
	set(&s.BackgroundColor, u.BackgroundColor)
	set(&s.TextColor, u.TextColor)
	set(&s.AccentColor, u.AccentColor)
	set(&s.Username, u.Username)
	set(&s.AvatarURL, u.AvatarURL)
	return s
}

// NormalizeBackground maps the "none" keyword to an empty background.
func NormalizeBackground(url string) string {
	url = strings.TrimSpace(url)
	if strings.EqualFold(url, "none") {
		return ""
	}
	return url
}

// Payload builds a card payload from the user's settings.
func (s Settings) Payload(p cards.Payload) cards.Payload {
	p.BackgroundURL = s.BackgroundURL
	p.BackgroundColor = s.BackgroundColor
	p.TextColor = s.TextColor
	p.AccentColor = s.AccentColor
	p.Username = s.Username
	p.AvatarURL = s.AvatarURL
	return p
}
