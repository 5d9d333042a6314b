package layout

import (
	"github.com/kozaktomas/event-report/internal/report"
)

// Fixed text of the main page.
const (
	BannerPlaceholder = "[Upload 'IIC Top Banner' to display MoE/AICTE logos here]"
	AutonomousLine    = "(Autonomous)"
	RecognitionLine   = `(Recognized under section 2(f) & 12(B) of UGC Act 1956 and Accredited by NAAC with "A" Grade)`
	ReportHeading     = "REPORT"
)

// Main page geometry, px.
const (
	bannerH       = 64.0
	bannerGap     = 8.0
	headerInset   = 16.0
	logoSize      = 80.0
	logoGap       = 12.0
	recognitionW  = 512.0
	sectionGap    = 16.0
	cellPadX      = 8.0
	cellPadY      = 4.0
	valueRowMinH  = 64.0
	sectionPad    = 8.0
	labelFraction = 0.2
)

var gridColumns = []float64{0.15, 0.30, 0.30, 0.25}

var (
	cellFont   = textStyle{font: Font{Size: 14}, color: black, leading: 1.25}
	cellHeader = textStyle{font: Font{Size: 14, Bold: true}, color: black, leading: 1.25}
	smallBold  = textStyle{font: Font{Size: 12, Bold: true}, color: black, leading: 4.0 / 3}
	narrative  = textStyle{font: Font{Size: 12}, color: black, leading: 1.625, indent: 36, gap: 3}
)

func (b *builder) mainPage(d report.Data, f report.Files) Page {
	x0 := b.cfg.Padding
	y := b.cfg.Padding
	cw := b.cfg.ContentWidth()

	var els []Element

	// Banner strip.
	frame := Rect{X: x0, Y: y, W: cw, H: bannerH}
	els = append(els, b.box("banner-frame", frame, nil, solid(SideBottom, 1, gray200)))
	if f.HeaderBanner != nil {
		els = append(els, b.image("banner", frame, f.HeaderBanner))
	} else {
		st := textStyle{font: Font{Size: 12, Italic: true}, color: gray400, leading: 4.0 / 3, align: alignCenter}
		t := b.text("banner-placeholder", x0, y, cw, []string{BannerPlaceholder}, st)
		els = append(els, shift(t, (bannerH-t.Rect.H)/2))
	}
	y += bannerH + bannerGap

	// College header: logo on the left, centered text column on the right.
	colX := x0 + headerInset + logoSize + logoGap
	colW := cw - 2*headerInset - logoSize - logoGap
	var col []Element
	cy := 0.0
	add := func(e Element, marginTop float64) {
		e = shift(e, cy+marginTop)
		col = append(col, e)
		cy = e.Rect.Bottom() - y
	}
	add(b.text("college-name", colX, y, colW, []string{Upper(d.CollegeName)},
		textStyle{font: Font{Size: 24, Bold: true}, color: blue900, leading: 1.25, align: alignCenter}), 0)
	add(b.text("autonomous", colX, y, colW, []string{AutonomousLine},
		textStyle{font: Font{Size: 12, Bold: true}, color: red600, leading: 4.0 / 3, align: alignCenter}), 4)
	rw := min(recognitionW, colW)
	add(b.text("recognition", colX+(colW-rw)/2, y, rw, []string{RecognitionLine},
		textStyle{font: Font{Size: 10, Bold: true}, color: blue800, leading: 1.25, align: alignCenter}), 4)
	add(b.text("college-address", colX, y, colW, []string{clean(d.CollegeAddress)},
		textStyle{font: Font{Size: 12, Bold: true}, color: blue900, leading: 4.0 / 3, align: alignCenter}), 4)

	headerH := max(logoSize, cy)
	logo := f.CollegeLogo
	if logo == nil {
		logo = DefaultLogo()
	}
	els = append(els, b.image("logo", Rect{X: x0 + headerInset, Y: y + (headerH-logoSize)/2, W: logoSize, H: logoSize}, logo))
	for _, e := range col {
		els = append(els, shift(e, (headerH-cy)/2))
	}
	y += headerH + sectionGap

	// Heading with a 2px rule.
	heading := b.text("report-heading", x0, y, cw, []string{ReportHeading},
		textStyle{font: Font{Size: 18, Bold: true}, color: black, leading: 28.0 / 18})
	els = append(els, heading)
	y = heading.Rect.Bottom()
	els = append(els, b.box("report-rule", Rect{X: x0, Y: y, W: cw, H: 2}, &black, Stroke{}))
	y += 2

	// Details grid.
	var row []Element
	row, y = b.gridRow(y, 0, []gridCell{
		{"grid-header", []string{"Date"}, cellHeader},
		{"grid-header", []string{"Resource Person"}, cellHeader},
		{"grid-header", []string{"Department"}, cellHeader},
		{"grid-header", []string{"Coordinator"}, cellHeader},
	})
	els = append(els, row...)
	row, y = b.gridRow(y, valueRowMinH, []gridCell{
		{"date", []string{FormatDate(d.Date)}, cellFont},
		{"resource-person-name", []string{clean(d.ResourcePersonName)}, cellHeader},
		{"department", []string{Upper(d.Department)}, cellFont},
		{"coordinator", []string{Upper(d.CoordinatorName)}, cellFont},
	}, gridCell{"resource-person-details", []string{clean(d.ResourcePersonDetails)}, cellFont})
	els = append(els, row...)
	row, y = b.gridRow(y, 0, []gridCell{
		{"grid-header", []string{"Duration"}, cellHeader},
		{"grid-header", []string{"Venue"}, cellHeader},
		{"grid-header", []string{"Participants"}, cellHeader},
		{"grid-header", []string{"Title of the Activity"}, cellHeader},
	})
	els = append(els, row...)
	participants := textStyle{font: Font{Size: 16}, color: black, leading: 1.25, align: alignCenter}
	row, y = b.gridRow(y, valueRowMinH, []gridCell{
		{"duration", []string{clean(d.StartTime) + " TO", clean(d.EndTime)}, cellFont},
		{"venue", []string{Upper(d.Venue)}, cellFont},
		{"participants", []string{report.FormatNumber(d.Participants)}, participants},
		{"event-title", []string{Upper(d.EventTitle)}, cellHeader},
	})
	els = append(els, row...)
	y += sectionGap

	// Narrative sections.
	top := y
	half := cw / 2
	quarterRow := Rect{X: x0, Y: y, W: cw, H: 2*sectionPad + smallBold.lineHeight()}
	els = append(els,
		b.box("quarter-row", quarterRow, &gray50, solid(SideBottom, 1, black)),
		b.box("quarter-cell", Rect{X: x0, Y: y, W: half, H: quarterRow.H}, nil, solid(SideRight, 1, black)),
		b.text("quarter", x0+sectionPad, y+sectionPad, half-2*sectionPad, []string{"Quarter :"}, smallBold),
		b.text("academic-year", x0+half+sectionPad, y+sectionPad, half-2*sectionPad,
			[]string{"Academic Year :" + clean(d.AcademicYear)}, smallBold),
	)
	y = quarterRow.Bottom()

	rows := []narrativeRow{
		{"brief", "Brief Info (250 Words)", ParagraphsOr(d.BriefInfo, NoBriefInfo), narrative},
		{"objectives", "Objectives (100 Words)", ParagraphsOr(d.Objectives, NoObjectives), narrative},
		{"benefits", "Benefits (150 Words)", ParagraphsOr(d.Benefits, NoBenefits), narrative},
	}
	if d.ShowExpenditure {
		amount := report.FormatNumber(d.Expenditure) + "/-"
		rows = append(rows, narrativeRow{"expenditure", "Expenditure Amount", []string{amount}, smallBold})
	}
	for i, r := range rows {
		// Every row but the last is separated from the next one by a rule.
		sides := SideNone
		if i < len(rows)-1 {
			sides = SideBottom
		}
		contentRole := r.role
		if r.role == "expenditure" {
			contentRole = "expenditure-amount"
		}
		row, y = b.sectionRow(y, r.role+"-row", r.role+"-label", contentRole, r.label, r.paras, r.style, sides)
		els = append(els, row...)
	}
	els = append(els, b.box("sections-frame", Rect{X: x0, Y: top, W: cw, H: y - top}, nil, solid(SideAll, 1, black)))

	return Page{Kind: PageMain, Number: 1, Title: ReportHeading, Elements: els}
}

type narrativeRow struct {
	role, label string
	paras       []string
	style       textStyle
}

type gridCell struct {
	role  string
	paras []string
	style textStyle
}

// gridRow lays out one row of the details grid. extra is stacked below the
// content of the second cell.
func (b *builder) gridRow(y, minH float64, cells []gridCell, extra ...gridCell) ([]Element, float64) {
	cw := b.cfg.ContentWidth()
	x := b.cfg.Padding

	var texts []Element
	contentH := 0.0
	rects := make([]Rect, len(cells))
	for i, c := range cells {
		w := cw * gridColumns[i]
		rects[i] = Rect{X: x, Y: y, W: w, H: 0}
		t := b.text(c.role, x+cellPadX, y+cellPadY, w-2*cellPadX, c.paras, c.style)
		h := t.Rect.H
		texts = append(texts, t)
		if i == 1 {
			for _, e := range extra {
				et := b.text(e.role, x+cellPadX, y+cellPadY+h, w-2*cellPadX, e.paras, e.style)
				h += et.Rect.H
				texts = append(texts, et)
			}
		}
		contentH = max(contentH, h)
		x += w
	}

	rowH := max(minH, contentH+2*cellPadY)
	els := make([]Element, 0, len(rects)+len(texts))
	for _, r := range rects {
		r.H = rowH
		els = append(els, b.box("grid-cell", r, nil, solid(SideAll, 1, black)))
	}
	for _, t := range texts {
		if t.Role == "participants" {
			// Centered in both directions.
			t = shift(t, (rowH-2*cellPadY-t.Rect.H)/2)
		}
		els = append(els, t)
	}
	return els, y + rowH
}

// sectionRow lays out a label cell and a content cell of the narrative table.
func (b *builder) sectionRow(y float64, rowRole, labelRole, contentRole, label string, paras []string, st textStyle, sides Side) ([]Element, float64) {
	x0 := b.cfg.Padding
	cw := b.cfg.ContentWidth()
	labelW := cw * labelFraction

	lbl := b.text(labelRole, x0+sectionPad, y+sectionPad, labelW-2*sectionPad, []string{label}, smallBold)
	content := b.text(contentRole, x0+labelW+sectionPad, y+sectionPad, cw-labelW-2*sectionPad, paras, st)

	rowH := max(lbl.Rect.H, content.Rect.H) + 2*sectionPad
	lbl = shift(lbl, (rowH-2*sectionPad-lbl.Rect.H)/2)

	return []Element{
		b.box(rowRole, Rect{X: x0, Y: y, W: cw, H: rowH}, nil, solid(sides, 1, black)),
		b.box(labelRole+"-cell", Rect{X: x0, Y: y, W: labelW, H: rowH}, nil, solid(SideRight, 1, black)),
		lbl,
		content,
	}, y + rowH
}

// shift moves an element down by dy.
func shift(e Element, dy float64) Element {
	e.Rect.Y += dy
	return e
}
