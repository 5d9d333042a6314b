// Package crop cuts a user-selected region out of an attachment image.
package crop

import (
	"errors"
	"fmt"
	"image"
	"math"

	"golang.org/x/image/draw"

	"github.com/kozaktomas/event-report/internal/constants"
	"github.com/kozaktomas/event-report/internal/imaging"
	"github.com/kozaktomas/event-report/internal/report"
)

// DefaultAspect is the aspect ratio of the crop frame for report photos.
const DefaultAspect = 4.0 / 3.0

// Errors returned by Crop.
var (
	ErrEmptyRegion = errors.New("crop region is empty")
	ErrNotImage    = errors.New("attachment is not an image")
)

// Region is a rectangle in source image pixels.
type Region struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Rect converts the region to an image rectangle.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Crop copies region r of src, pixel for pixel, onto a surface of exactly
// r.Width x r.Height and encodes it as JPEG. The result keeps the source file name.
// Parts of the region outside the source stay unpainted.
func Crop(src *report.Attachment, r Region) (*report.Attachment, error) {
	if r.Width <= 0 || r.Height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrEmptyRegion, r.Width, r.Height)
	}
	if !src.IsImage() {
		return nil, fmt.Errorf("%w: %s", ErrNotImage, src.Name)
	}

	img, _, err := imaging.Decode(src.Data)
	if err != nil {
		return nil, err
	}

	dst := image.NewRGBA(image.Rect(0, 0, r.Width, r.Height))
	// Source coordinates are relative to the image origin, which need not be (0,0).
	origin := img.Bounds().Min
	sp := image.Pt(origin.X+r.X, origin.Y+r.Y)
	draw.Draw(dst, dst.Bounds(), img, sp, draw.Src)

	data, err := imaging.EncodeJPEG(dst, constants.CropJPEGQuality)
	if err != nil {
		return nil, err
	}
	return &report.Attachment{Name: src.Name, MIMEType: "image/jpeg", Data: data}, nil
}

// RegionFromView computes the region selected by a crop frame of the given aspect ratio.
// At zoom 1 the frame is the largest such rectangle inside the image; zoom shrinks it
// around the image center, and pan moves it by that many source pixels. The result
// is clamped inside the image.
func RegionFromView(imgW, imgH int, aspect, zoom, panX, panY float64) Region {
	if imgW <= 0 || imgH <= 0 {
		return Region{}
	}
	if aspect <= 0 {
		aspect = DefaultAspect
	}
	zoom = max(zoom, 1)

	w := min(float64(imgW), float64(imgH)*aspect)
	h := w / aspect
	w /= zoom
	h /= zoom

	x := (float64(imgW)-w)/2 + panX
	y := (float64(imgH)-h)/2 + panY
	x = clamp(x, 0, float64(imgW)-w)
	y = clamp(y, 0, float64(imgH)-h)

	return Region{
		X:      int(math.Round(x)),
		Y:      int(math.Round(y)),
		Width:  max(int(math.Round(w)), 1),
		Height: max(int(math.Round(h)), 1),
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}
