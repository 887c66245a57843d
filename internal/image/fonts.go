package imagepkg

import (
	"fmt"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// Glyph sizes of the card text, in pixels.
const (
	titleSize    = 43
	profitSize   = 90
	statSize     = 32
	usernameSize = 48
	footerSize   = 24
)

// Fonts holds the parsed typefaces. Parsed fonts are read-only and may be
// shared; faces are not safe for concurrent use and are built per render.
type Fonts struct {
	bold    *truetype.Font
	regular *truetype.Font
}

func LoadFonts() (*Fonts, error) {
	bold, err := truetype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse bold font: %w", err)
	}
	regular, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse regular font: %w", err)
	}
	return &Fonts{bold: bold, regular: regular}, nil
}

type faceSet struct {
	title    font.Face
	profit   font.Face
	stat     font.Face
	username font.Face
	footer   font.Face
}

func (f *Fonts) faces() *faceSet {
	return &faceSet{
		title:    truetype.NewFace(f.bold, &truetype.Options{Size: titleSize}),
		profit:   truetype.NewFace(f.bold, &truetype.Options{Size: profitSize}),
		stat:     truetype.NewFace(f.bold, &truetype.Options{Size: statSize}),
		username: truetype.NewFace(f.bold, &truetype.Options{Size: usernameSize}),
		footer:   truetype.NewFace(f.regular, &truetype.Options{Size: footerSize}),
	}
}

func (fs *faceSet) Close() {
	for _, face := range []font.Face{fs.title, fs.profit, fs.stat, fs.username, fs.footer} {
		face.Close()
	}
}

// measure returns the advance width of s in face, in pixels.
func measure(face font.Face) MeasureFunc {
	return func(s string) float64 {
		return float64(font.MeasureString(face, s)) / 64
	}
}
