// Package render draws laid-out report pages onto bitmaps.
package render

import (
	"fmt"
	"image"
	"image/draw"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/kozaktomas/event-report/internal/constants"
	"github.com/kozaktomas/event-report/internal/layout"
)

type faceKey struct {
	size   float64
	bold   bool
	italic bool
}

// Fonts provides the report typeface. Text is measured at the export
// resolution so layout and rasterization agree on line breaks.
type Fonts struct {
	regular, bold, italic, boldItalic *opentype.Font

	mu    sync.Mutex
	faces map[faceKey]font.Face
}

// NewFonts parses the embedded Go fonts.
func NewFonts() (*Fonts, error) {
	parse := func(name string, data []byte) (*opentype.Font, error) {
		f, err := opentype.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s font: %w", name, err)
		}
		return f, nil
	}

	var fs Fonts
	var err error
	if fs.regular, err = parse("regular", goregular.TTF); err != nil {
		return nil, err
	}
	if fs.bold, err = parse("bold", gobold.TTF); err != nil {
		return nil, err
	}
	if fs.italic, err = parse("italic", goitalic.TTF); err != nil {
		return nil, err
	}
	if fs.boldItalic, err = parse("bold italic", gobolditalic.TTF); err != nil {
		return nil, err
	}
	fs.faces = make(map[faceKey]font.Face)
	return &fs, nil
}

// face returns the cached face for f scaled by scale. fs.mu must be held;
// faces are not safe for concurrent use.
func (fs *Fonts) face(f layout.Font, scale float64) (font.Face, error) {
	key := faceKey{size: f.Size * scale, bold: f.Bold, italic: f.Italic}
	if face, ok := fs.faces[key]; ok {
		return face, nil
	}

	src := fs.regular
	switch {
	case f.Bold && f.Italic:
		src = fs.boldItalic
	case f.Bold:
		src = fs.bold
	case f.Italic:
		src = fs.italic
	}
	face, err := opentype.NewFace(src, &opentype.FaceOptions{
		Size:    key.size,
		DPI:     72, // 1pt == 1px
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %.1fpx face: %w", key.size, err)
	}
	fs.faces[key] = face
	return face, nil
}

// Width implements layout.Metrics. It returns the advance of text in page pixels,
// measured at the export resolution.
func (fs *Fonts) Width(text string, f layout.Font) float64 {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	face, err := fs.face(f, constants.PixelRatio)
	if err != nil {
		// Sizes come from the layout package and are always positive.
		panic(err)
	}
	return toFloat(font.MeasureString(face, text)) / constants.PixelRatio
}

// DrawString draws text with its top-left line box corner at (x, top) on dst,
// vertically centered in a line box of height lineHeight. All values are in dst pixels.
func (fs *Fonts) DrawString(dst draw.Image, src image.Image, f layout.Font, scale, x, top, lineHeight float64, text string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	face, err := fs.face(f, scale)
	if err != nil {
		return err
	}
	m := face.Metrics()
	ascent, descent := toFloat(m.Ascent), toFloat(m.Descent)
	baseline := top + (lineHeight-(ascent+descent))/2 + ascent

	d := font.Drawer{
		Dst:  dst,
		Src:  src,
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.Int26_6(x * 64), Y: fixed.Int26_6(baseline * 64)},
	}
	d.DrawString(text)
	return nil
}

// Close releases the cached faces.
func (fs *Fonts) Close() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	for k, face := range fs.faces {
		face.Close()
		delete(fs.faces, k)
	}
	return nil
}

func toFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
