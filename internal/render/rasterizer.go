package render

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"

	"github.com/kozaktomas/event-report/internal/constants"
	"github.com/kozaktomas/event-report/internal/imaging"
	"github.com/kozaktomas/event-report/internal/layout"
	"github.com/kozaktomas/event-report/internal/report"
)

// Dash pattern of dashed borders, page px.
const (
	dashOn  = 6.0
	dashOff = 4.0
)

// Rasterizer draws pages onto a fixed canvas of 794x1123 page pixels
// oversampled by constants.PixelRatio, independent of any viewer.
type Rasterizer struct {
	fonts *Fonts
	scale float64
}

// NewRasterizer creates a rasterizer drawing text with fonts.
func NewRasterizer(fonts *Fonts) *Rasterizer {
	return &Rasterizer{fonts: fonts, scale: constants.PixelRatio}
}

// Size returns the canvas size in pixels.
func (r *Rasterizer) Size() image.Point {
	return image.Pt(
		int(math.Round(constants.PageWidthPx*r.scale)),
		int(math.Round(constants.PageHeightPx*r.scale)),
	)
}

// Rasterize draws a page onto an opaque white canvas. Text is clipped to its
// element and images are scaled to fit their element, keeping the aspect ratio.
// An attachment that cannot be decoded fails the whole page.
func (r *Rasterizer) Rasterize(p layout.Page) (*image.RGBA, error) {
	size := r.Size()
	canvas := image.NewRGBA(image.Rect(0, 0, size.X, size.Y))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)

	for _, e := range p.Elements {
		var err error
		switch e.Kind {
		case layout.KindBox:
			r.drawBox(canvas, e)
		case layout.KindText:
			err = r.drawText(canvas, e)
		case layout.KindImage:
			err = r.drawImage(canvas, e.Rect, e.Image)
		}
		if err != nil {
			return nil, fmt.Errorf("%s page %d: %s: %w", p.Kind, p.Number, e.Role, err)
		}
	}
	return canvas, nil
}

// px converts a page rectangle to canvas pixels.
func (r *Rasterizer) px(rect layout.Rect) image.Rectangle {
	return image.Rect(
		int(math.Round(rect.X*r.scale)),
		int(math.Round(rect.Y*r.scale)),
		int(math.Round(rect.Right()*r.scale)),
		int(math.Round(rect.Bottom()*r.scale)),
	)
}

func (r *Rasterizer) drawBox(dst *image.RGBA, e layout.Element) {
	bounds := r.px(e.Rect)
	if e.Fill != nil {
		fill(dst, bounds, *e.Fill)
	}

	s := e.Stroke
	if s.Sides == layout.SideNone || s.Width <= 0 {
		return
	}
	w := max(1, int(math.Round(s.Width*r.scale)))
	edges := []struct {
		side layout.Side
		rect image.Rectangle
	}{
		{layout.SideTop, image.Rect(bounds.Min.X, bounds.Min.Y, bounds.Max.X, bounds.Min.Y+w)},
		{layout.SideBottom, image.Rect(bounds.Min.X, bounds.Max.Y-w, bounds.Max.X, bounds.Max.Y)},
		{layout.SideLeft, image.Rect(bounds.Min.X, bounds.Min.Y, bounds.Min.X+w, bounds.Max.Y)},
		{layout.SideRight, image.Rect(bounds.Max.X-w, bounds.Min.Y, bounds.Max.X, bounds.Max.Y)},
	}
	for _, edge := range edges {
		if s.Sides&edge.side == 0 {
			continue
		}
		if s.Dashed {
			r.dash(dst, edge.rect, s.Color)
		} else {
			fill(dst, edge.rect, s.Color)
		}
	}
}

// dash fills rect with dashes along its longer axis.
func (r *Rasterizer) dash(dst *image.RGBA, rect image.Rectangle, c color.RGBA) {
	on := int(math.Round(dashOn * r.scale))
	period := on + int(math.Round(dashOff*r.scale))
	horizontal := rect.Dx() >= rect.Dy()
	length := rect.Dy()
	if horizontal {
		length = rect.Dx()
	}
	for start := 0; start < length; start += period {
		end := min(start+on, length)
		seg := image.Rect(rect.Min.X, rect.Min.Y+start, rect.Max.X, rect.Min.Y+end)
		if horizontal {
			seg = image.Rect(rect.Min.X+start, rect.Min.Y, rect.Min.X+end, rect.Max.Y)
		}
		fill(dst, seg, c)
	}
}

func (r *Rasterizer) drawText(dst *image.RGBA, e layout.Element) error {
	// Allow glyph overhang of one page pixel around the element.
	clip := r.px(layout.Rect{X: e.Rect.X - 1, Y: e.Rect.Y - 1, W: e.Rect.W + 2, H: e.Rect.H + 2})
	sub, ok := dst.SubImage(clip).(*image.RGBA)
	if !ok || sub.Bounds().Empty() {
		return nil
	}
	src := image.NewUniform(e.Color)
	for _, l := range e.Lines {
		if l.Text == "" {
			continue
		}
		x := (e.Rect.X + l.X) * r.scale
		top := (e.Rect.Y + l.Y) * r.scale
		if err := r.fonts.DrawString(sub, src, e.Font, r.scale, x, top, e.LineHeight*r.scale, l.Text); err != nil {
			return err
		}
	}
	return nil
}

func (r *Rasterizer) drawImage(dst *image.RGBA, rect layout.Rect, att *report.Attachment) error {
	if att == nil {
		return nil
	}
	img, _, err := imaging.Decode(att.Data)
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", att.Name, err)
	}

	box := r.px(rect)
	b := img.Bounds()
	w, h := imaging.FitSize(b.Dx(), b.Dy(), float64(box.Dx()), float64(box.Dy()))
	target := image.Rect(0, 0, max(1, int(math.Round(w))), max(1, int(math.Round(h))))
	target = target.Add(image.Pt(
		box.Min.X+(box.Dx()-target.Dx())/2,
		box.Min.Y+(box.Dy()-target.Dy())/2,
	))
	// Over keeps the white page under transparent pixels.
	draw.CatmullRom.Scale(dst, target, img, b, draw.Over, nil)
	return nil
}

func fill(dst *image.RGBA, rect image.Rectangle, c color.RGBA) {
	draw.Draw(dst, rect, image.NewUniform(c), image.Point{}, draw.Over)
}
