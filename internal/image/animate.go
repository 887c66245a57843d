package imagepkg

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"strings"
)

const (
	// MaxFrames caps the number of frames kept from a source animation.
	MaxFrames = 30
	// FrameDelay is the delay between emitted frames in hundredths of a second.
	FrameDelay = 10
)

// Frame is one fully composited image of a source animation.
type Frame struct {
	Index int
	Image image.Image
}

// IsAnimatedRef reports whether a background reference points at a GIF.
func IsAnimatedRef(ref string) bool {
	return strings.Contains(strings.ToLower(ref), ".gif")
}

// Stride is the sampling step that keeps at most max of total frames.
func Stride(total, max int) int {
	if max <= 0 || total <= max {
		return 1
	}
	return (total + max - 1) / max
}

// SampleIndices lists the retained frame indices in order: 0, stride, 2*stride...
func SampleIndices(total, max int) []int {
	stride := Stride(total, max)
	out := make([]int, 0, (total+stride-1)/stride)
	for i := 0; i < total; i += stride {
		out = append(out, i)
	}
	return out
}

// decodeSampled decodes a GIF and calls fn for each retained frame in order.
// Frames are composited cumulatively so partial frames come out whole. The
// image handed to fn is reused on the next call and must not be retained.
func decodeSampled(data []byte, max int, fn func(Frame) error) (int, error) {
	g, err := gif.DecodeAll(bytes.NewReader(data))
	if err != nil {
		return 0, err
	}
	total := len(g.Image)
	if total == 0 {
		return 0, errors.New("animation has no frames")
	}

	bounds := image.Rect(0, 0, g.Config.Width, g.Config.Height)
	if bounds.Empty() {
		bounds = g.Image[0].Bounds()
	}
	canvas := image.NewRGBA(bounds)
	keep := SampleIndices(total, max)
	next := 0

	var previous *image.RGBA
	for i, frame := range g.Image {
		disposal := byte(0)
		if i < len(g.Disposal) {
			disposal = g.Disposal[i]
		}
		if disposal == gif.DisposalPrevious {
			if previous == nil {
				previous = image.NewRGBA(bounds)
			}
			copy(previous.Pix, canvas.Pix)
		}

		draw.Draw(canvas, frame.Bounds(), frame, frame.Bounds().Min, draw.Over)
		if next < len(keep) && keep[next] == i {
			next++
			if err := fn(Frame{Index: i, Image: canvas}); err != nil {
				return total, fmt.Errorf("frame %d: %w", i, err)
			}
		}

		switch disposal {
		case gif.DisposalBackground:
			draw.Draw(canvas, frame.Bounds(), image.Transparent, image.Point{}, draw.Src)
		case gif.DisposalPrevious:
			copy(canvas.Pix, previous.Pix)
		}
	}
	return total, nil
}

// quantize reduces a surface to a GIF-compatible paletted image.
func quantize(img image.Image) *image.Paletted {
	b := img.Bounds()
	p := image.NewPaletted(b, palette.Plan9)
	draw.FloydSteinberg.Draw(p, b, img, b.Min)
	return p
}
