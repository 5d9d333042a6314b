// Package layout computes the pages of an event report as positioned boxes,
// text lines and images. Coordinates are CSS pixels on a 794x1123 A4 page.
package layout

import (
	"image/color"
	"strings"

	"github.com/kozaktomas/event-report/internal/constants"
	"github.com/kozaktomas/event-report/internal/paginate"
	"github.com/kozaktomas/event-report/internal/report"
)

// Config holds the page geometry.
type Config struct {
	PageW   float64 // 794px
	PageH   float64 // 1123px
	Padding float64 // 15mm on every side
}

// DefaultConfig returns the A4 page used for preview and export.
func DefaultConfig() Config {
	return Config{
		PageW:   constants.PageWidthPx,
		PageH:   constants.PageHeightPx,
		Padding: constants.PagePaddingPx,
	}
}

// ContentWidth returns the usable horizontal space: 794 - 2*57 = 680px.
func (c Config) ContentWidth() float64 {
	return c.PageW - 2*c.Padding
}

// ContentHeight returns the usable vertical space: 1123 - 2*57 = 1009px.
func (c Config) ContentHeight() float64 {
	return c.PageH - 2*c.Padding
}

// Rect is a rectangle in page pixels, origin at the top-left corner of the page.
type Rect struct {
	X, Y, W, H float64
}

// Bottom returns the Y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Right returns the X coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.W }

// Inset shrinks the rectangle by d on every side.
func (r Rect) Inset(d float64) Rect {
	return Rect{X: r.X + d, Y: r.Y + d, W: r.W - 2*d, H: r.H - 2*d}
}

// Kind is the type of a page element.
type Kind int

const (
	KindBox Kind = iota
	KindText
	KindImage
)

// Side is a bit set of box edges.
type Side uint8

const (
	SideTop Side = 1 << iota
	SideRight
	SideBottom
	SideLeft

	SideNone Side = 0
	SideAll       = SideTop | SideRight | SideBottom | SideLeft
)

// Stroke describes the border of a box.
type Stroke struct {
	Sides  Side
	Width  float64
	Color  color.RGBA
	Dashed bool
}

// Font selects a face of the report typeface.
type Font struct {
	Size   float64 // px
	Bold   bool
	Italic bool
}

// Line is one laid-out line of text. X and Y are relative to the element rectangle;
// Y is the top of the line box.
type Line struct {
	Text string
	X, Y float64
}

// Element is one drawable item of a page.
type Element struct {
	Kind Kind
	Role string
	Rect Rect

	// Box
	Fill   *color.RGBA
	Stroke Stroke

	// Text
	Font       Font
	Color      color.RGBA
	LineHeight float64
	Lines      []Line

	// Image, scaled to fit inside Rect keeping its aspect ratio.
	Image *report.Attachment
}

// Text joins the element's lines with spaces.
func (e Element) Text() string {
	parts := make([]string, len(e.Lines))
	for i, l := range e.Lines {
		parts[i] = l.Text
	}
	return strings.Join(parts, " ")
}

// PageKind identifies the section a page belongs to.
type PageKind string

const (
	PageMain       PageKind = "main"
	PagePhotos     PageKind = "photos"
	PageInvitation PageKind = "invitation"
	PageAttendance PageKind = "attendance"
)

// Page is one A4 page of the report.
type Page struct {
	Kind     PageKind
	Number   int // 1-based within Kind
	Title    string
	Elements []Element
}

// Find returns the elements with the given role, in drawing order.
func (p Page) Find(role string) []Element {
	var out []Element
	for _, e := range p.Elements {
		if e.Role == role {
			out = append(out, e)
		}
	}
	return out
}

// Metrics measures text in a given font.
type Metrics interface {
	Width(text string, f Font) float64
}

var (
	black   = color.RGBA{A: 0xff}
	blue900 = color.RGBA{R: 0x1e, G: 0x3a, B: 0x8a, A: 0xff}
	blue800 = color.RGBA{R: 0x1e, G: 0x40, B: 0xaf, A: 0xff}
	red600  = color.RGBA{R: 0xdc, G: 0x26, B: 0x26, A: 0xff}
	gray50  = color.RGBA{R: 0xf9, G: 0xfa, B: 0xfb, A: 0xff}
	gray100 = color.RGBA{R: 0xf3, G: 0xf4, B: 0xf6, A: 0xff}
	gray200 = color.RGBA{R: 0xe5, G: 0xe7, B: 0xeb, A: 0xff}
	gray300 = color.RGBA{R: 0xd1, G: 0xd5, B: 0xdb, A: 0xff}
	gray400 = color.RGBA{R: 0x9c, G: 0xa3, B: 0xaf, A: 0xff}
	gray50a = color.RGBA{R: 0xfd, G: 0xfd, B: 0xfe, A: 0xff} // gray-50 at 30% on white
)

// Build lays out the whole report in its fixed order: the main page, the photo
// pages, the invitation page if an invitation is attached, then one page per
// attendance file.
func Build(d report.Data, f report.Files, m Metrics) []Page {
	return BuildWithConfig(d, f, m, DefaultConfig())
}

// BuildWithConfig is Build with an explicit page geometry.
func BuildWithConfig(d report.Data, f report.Files, m Metrics, cfg Config) []Page {
	b := &builder{cfg: cfg, m: m}

	pages := make([]Page, 0, 2+
		paginate.Count(len(f.Photos), constants.PhotosPerPage)+
		paginate.Count(len(f.Attendance), constants.AttendancePerPage))
	pages = append(pages, b.mainPage(d, f))

	chunks := paginate.Chunk(f.Photos, constants.PhotosPerPage)
	for i, chunk := range chunks {
		pages = append(pages, b.photoPage(chunk, i, len(chunks)))
	}

	if f.Invitation != nil {
		pages = append(pages, b.attachmentPage(PageInvitation, 1, InvitationTitle, f.Invitation))
	}

	sheets := paginate.Chunk(f.Attendance, constants.AttendancePerPage)
	for i, sheet := range sheets {
		pages = append(pages, b.attachmentPage(PageAttendance, i+1, AttendanceTitle(i+1, len(sheets)), sheet[0]))
	}
	return pages
}

type builder struct {
	cfg Config
	m   Metrics
}

func (b *builder) box(role string, r Rect, fill *color.RGBA, stroke Stroke) Element {
	return Element{Kind: KindBox, Role: role, Rect: r, Fill: fill, Stroke: stroke}
}

func (b *builder) image(role string, r Rect, att *report.Attachment) Element {
	return Element{Kind: KindImage, Role: role, Rect: r, Image: att}
}

func solid(sides Side, width float64, c color.RGBA) Stroke {
	return Stroke{Sides: sides, Width: width, Color: c}
}
