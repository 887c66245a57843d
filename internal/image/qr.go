package imagepkg

import (
	"bytes"
	"image/png"
	"net/url"

	qrcode "github.com/skip2/go-qrcode"
)

// MarketPageBase is the public page prefix a market code is appended to.
const MarketPageBase = "https://kalshi.com/markets/"

// MarketLink returns the public page of a market code.
func MarketLink(code string) string {
	return MarketPageBase + url.PathEscape(code)
}

// GenerateQRPNG returns PNG bytes of a QR code for the given text.
func GenerateQRPNG(text string, size int) ([]byte, error) {
	pngBytes, err := qrcode.Encode(text, qrcode.Medium, size)
	if err != nil {
		return nil, err
	}
	// validate png decode
	if _, err := png.Decode(bytes.NewReader(pngBytes)); err != nil {
		return nil, err
	}
	return pngBytes, nil
}
