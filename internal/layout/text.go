package layout

import (
	"image/color"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Fallback text for empty narrative fields.
const (
	NoBriefInfo  = "No information provided."
	NoObjectives = "No objectives provided."
	NoBenefits   = "No benefits provided."
)

var upper = cases.Upper(language.Und)

// FormatDate renders an ISO date (YYYY-MM-DD) as DD.MM.YYYY. Input that is not
// an ISO date is returned as typed.
func FormatDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("02.01.2006")
		}
	}
	return s
}

// Paragraphs splits text on newlines, trims each line and drops empty ones.
func Paragraphs(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if line = clean(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// ParagraphsOr returns Paragraphs(text), or the fallback when text has none.
func ParagraphsOr(text, fallback string) []string {
	if p := Paragraphs(text); len(p) > 0 {
		return p
	}
	return []string{fallback}
}

// Upper upper-cases a field value for display.
func Upper(s string) string {
	return upper.String(clean(s))
}

// clean trims and NFC-normalizes user text.
func clean(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}

type align int

const (
	alignLeft align = iota
	alignCenter
)

type textStyle struct {
	font    Font
	color   color.RGBA
	leading float64 // line-height factor
	align   align
	indent  float64 // first-line indent of every paragraph
	gap     float64 // space after every paragraph but the last
}

func (st textStyle) lineHeight() float64 {
	return st.font.Size * st.leading
}

// text lays out paragraphs into a column of width w starting at (x, y).
// The element height is the height of the wrapped text.
func (b *builder) text(role string, x, y, w float64, paras []string, st textStyle) Element {
	lh := st.lineHeight()
	var lines []Line
	cursor := 0.0
	for i, p := range paras {
		for _, l := range wrap(b.m, p, st.font, w, st.indent) {
			if st.align == alignCenter {
				l.X = (w - b.m.Width(l.Text, st.font)) / 2
			}
			l.Y = cursor
			lines = append(lines, l)
			cursor += lh
		}
		if i < len(paras)-1 {
			cursor += st.gap
		}
	}
	return Element{
		Kind:       KindText,
		Role:       role,
		Rect:       Rect{X: x, Y: y, W: w, H: cursor},
		Font:       st.font,
		Color:      st.color,
		LineHeight: lh,
		Lines:      lines,
	}
}

// wrap breaks text into lines no wider than width. The first line is shifted
// right by indent. Words wider than a whole line are split between runes.
func wrap(m Metrics, text string, f Font, width, indent float64) []Line {
	words := strings.FieldsFunc(text, unicode.IsSpace)
	if len(words) == 0 {
		return []Line{{X: indent}}
	}

	var lines []Line
	avail := width - indent
	x := indent
	cur := ""
	flush := func() {
		lines = append(lines, Line{Text: cur, X: x})
		cur = ""
		x = 0
		avail = width
	}

	for _, word := range words {
		candidate := word
		if cur != "" {
			candidate = cur + " " + word
		}
		if m.Width(candidate, f) <= avail {
			cur = candidate
			continue
		}
		if cur != "" {
			flush()
		}
		for m.Width(word, f) > avail {
			head, tail := splitToFit(m, word, f, avail)
			cur = head
			flush()
			word = tail
		}
		cur = word
	}
	if cur != "" || len(lines) == 0 {
		flush()
	}
	return lines
}

// splitToFit returns the longest rune prefix of word that fits in width, and the rest.
// At least one rune is always taken.
func splitToFit(m Metrics, word string, f Font, width float64) (string, string) {
	runes := []rune(word)
	n := 1
	for n < len(runes) && m.Width(string(runes[:n+1]), f) <= width {
		n++
	}
	return string(runes[:n]), string(runes[n:])
}
