package layout

import (
	"fmt"

	"github.com/kozaktomas/event-report/internal/constants"
	"github.com/kozaktomas/event-report/internal/report"
)

// Fixed text of the attachment pages.
const (
	PhotosTitle        = "Event Photos"
	InvitationTitle    = "Invitation – Scanned Copy"
	AttendanceBase     = "Attendance Sheet"
	AttachedSeparately = "PDF File Attached Separately"
)

// PhotoTitle returns the title of photo page k of n.
func PhotoTitle(k, n int) string {
	if n > 1 {
		return fmt.Sprintf("%s (Page %d)", PhotosTitle, k)
	}
	return PhotosTitle
}

// AttendanceTitle returns the title of attendance page k of n.
func AttendanceTitle(k, n int) string {
	if n > 1 {
		return fmt.Sprintf("%s (%d)", AttendanceBase, k)
	}
	return AttendanceBase
}

// PhotoLabel returns the caption of the photo at 0-based position i of the whole sequence.
func PhotoLabel(i int) string {
	return fmt.Sprintf("Photo - %d", i+1)
}

// Attachment page geometry, px.
const (
	titleSize      = 20.0
	titleLeading   = 1.4
	photoTitlePad  = 8.0
	photoTitleGap  = 24.0
	photoGridShare = 0.85
	photoGap       = 16.0
	photoCellPad   = 8.0
	photoLabelPad  = 4.0
	photoLabelGap  = 8.0
	sheetTitleGap  = 16.0
	sheetShare     = 0.9
	sheetPad       = 8.0
	separatePad    = 32.0
)

var titleStyle = textStyle{font: Font{Size: titleSize, Bold: true}, color: black, leading: titleLeading}

func (b *builder) photoPage(chunk []*report.Attachment, pageIndex, pageCount int) Page {
	x0 := b.cfg.Padding
	y := b.cfg.Padding
	cw := b.cfg.ContentWidth()
	title := PhotoTitle(pageIndex+1, pageCount)

	st := titleStyle
	st.align = alignCenter
	t := b.text("page-title", x0, y, cw, []string{title}, st)
	rule := Rect{X: x0, Y: y, W: cw, H: t.Rect.H + photoTitlePad + 1}
	els := []Element{
		b.box("page-title-rule", rule, nil, solid(SideBottom, 1, black)),
		t,
	}
	y = rule.Bottom() + photoTitleGap

	gridH := b.cfg.ContentHeight() * photoGridShare
	cellW := (cw - photoGap) / 2
	cellH := (gridH - photoGap) / 2

	for slot := range constants.PhotosPerPage {
		cell := Rect{
			X: x0 + float64(slot%2)*(cellW+photoGap),
			Y: y + float64(slot/2)*(cellH+photoGap),
			W: cellW,
			H: cellH,
		}
		if slot >= len(chunk) {
			els = append(els, b.box("photo-empty", cell, &gray50a, solid(SideAll, 1, gray100)))
			continue
		}

		els = append(els, b.box("photo-cell", cell, nil, solid(SideAll, 1, gray300)))
		inner := cell.Inset(photoCellPad)

		labelStyle := textStyle{font: Font{Size: 14, Bold: true}, color: black, leading: 20.0 / 14, align: alignCenter}
		label := b.text("photo-label", inner.X+photoLabelPad, inner.Y+photoLabelPad, inner.W-2*photoLabelPad,
			[]string{PhotoLabel(pageIndex*constants.PhotosPerPage + slot)}, labelStyle)
		labelBox := Rect{X: inner.X, Y: inner.Y, W: inner.W, H: label.Rect.H + 2*photoLabelPad}
		els = append(els, b.box("photo-label-box", labelBox, &gray100, Stroke{}), label)

		area := Rect{X: inner.X, Y: labelBox.Bottom() + photoLabelGap, W: inner.W}
		area.H = inner.Bottom() - area.Y
		els = append(els, b.box("photo-area", area, &gray50, Stroke{}))
		if chunk[slot].IsImage() {
			els = append(els, b.image("photo", area, chunk[slot]))
		} else {
			st := textStyle{font: Font{Size: 14}, color: gray400, leading: 1.5, align: alignCenter}
			notice := b.text("attached-separately", area.X, area.Y, area.W, []string{AttachedSeparately}, st)
			els = append(els, shift(notice, (area.H-notice.Rect.H)/2))
		}
	}

	return Page{Kind: PagePhotos, Number: pageIndex + 1, Title: title, Elements: els}
}

// attachmentPage lays out the invitation or one attendance sheet: a title and a
// framed area holding the image, or a notice for documents that cannot be drawn.
func (b *builder) attachmentPage(kind PageKind, number int, title string, att *report.Attachment) Page {
	x0 := b.cfg.Padding
	y := b.cfg.Padding
	cw := b.cfg.ContentWidth()

	t := b.text("page-title", x0, y, cw, []string{title}, titleStyle)
	// The rule spans the title text only.
	rule := Rect{X: x0, Y: y, W: b.m.Width(title, titleStyle.font), H: t.Rect.H + 1}
	els := []Element{
		b.box("page-title-rule", rule, nil, solid(SideBottom, 1, black)),
		t,
	}
	y = rule.Bottom() + sheetTitleGap

	frame := Rect{X: x0, Y: y, W: cw, H: b.cfg.ContentHeight() * sheetShare}
	els = append(els, b.box("attachment-frame", frame, nil, solid(SideAll, 1, black)))
	inner := frame.Inset(sheetPad)

	if att.IsImage() {
		els = append(els, b.image("attachment", inner, att))
	} else {
		st := textStyle{font: Font{Size: 16}, color: black, leading: 1.5, align: alignCenter}
		w := b.m.Width(AttachedSeparately, st.font) + 2*separatePad
		notice := b.text("attached-separately", 0, 0, w-2*separatePad, []string{AttachedSeparately}, st)
		block := Rect{W: w, H: notice.Rect.H + 2*separatePad}
		block.X = inner.X + (inner.W-block.W)/2
		block.Y = inner.Y + (inner.H-block.H)/2
		notice.Rect.X = block.X + separatePad
		notice.Rect.Y = block.Y + separatePad

		dashed := solid(SideAll, 1, gray400)
		dashed.Dashed = true
		els = append(els, b.box("attached-separately-box", block, &gray50, dashed), notice)
	}

	return Page{Kind: kind, Number: number, Title: title, Elements: els}
}
