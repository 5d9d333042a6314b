package layout

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
	"sync"

	"github.com/kozaktomas/event-report/internal/report"
)

const defaultLogoSize = 150

var defaultLogo = sync.OnceValue(func() *report.Attachment {
	img := image.NewNRGBA(image.Rect(0, 0, defaultLogoSize, defaultLogoSize))
	c := float64(defaultLogoSize) / 2
	for y := range defaultLogoSize {
		for x := range defaultLogoSize {
			d := math.Hypot(float64(x)+0.5-c, float64(y)+0.5-c)
			switch {
			case d > c:
				// transparent corners
			case d > c-6:
				img.SetNRGBA(x, y, color.NRGBA(blue900))
			case d > c-12:
				img.SetNRGBA(x, y, color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff})
			case d > c-30:
				img.SetNRGBA(x, y, color.NRGBA(blue800))
			default:
				img.SetNRGBA(x, y, color.NRGBA{R: 0xf5, G: 0xb0, B: 0x1e, A: 0xff})
			}
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return &report.Attachment{Name: "default-logo.png", MIMEType: "image/png", Data: buf.Bytes()}
})

// DefaultLogo returns the emblem drawn when no college logo is attached.
// The same attachment is returned on every call.
func DefaultLogo() *report.Attachment {
	return defaultLogo()
}
