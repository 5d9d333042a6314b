package layout

import "fmt"

// ValidationWarning describes a layout issue found during validation.
type ValidationWarning struct {
	PageNumber int // 1-based position in the document
	Role       string
	Message    string
}

func (w ValidationWarning) String() string {
	return fmt.Sprintf("page %d: %s: %s", w.PageNumber, w.Role, w.Message)
}

// Validate reports elements that extend past the page content area. Such
// content is clipped when the page is drawn, typically because a narrative
// field is longer than the page can hold.
func Validate(pages []Page) []ValidationWarning {
	return ValidateWithConfig(pages, DefaultConfig())
}

// ValidateWithConfig is Validate with an explicit page geometry.
func ValidateWithConfig(pages []Page, cfg Config) []ValidationWarning {
	var warnings []ValidationWarning
	const eps = 0.5

	left, top := cfg.Padding, cfg.Padding
	right, bottom := cfg.PageW-cfg.Padding, cfg.PageH-cfg.Padding

	for i, p := range pages {
		for _, e := range p.Elements {
			r := e.Rect
			switch {
			case r.Bottom() > bottom+eps:
				warnings = append(warnings, ValidationWarning{
					PageNumber: i + 1,
					Role:       e.Role,
					Message:    fmt.Sprintf("bottom edge (%.1f) extends below content area (%.1f)", r.Bottom(), bottom),
				})
			case r.Right() > right+eps:
				warnings = append(warnings, ValidationWarning{
					PageNumber: i + 1,
					Role:       e.Role,
					Message:    fmt.Sprintf("right edge (%.1f) extends past content area (%.1f)", r.Right(), right),
				})
			case r.X < left-eps || r.Y < top-eps:
				warnings = append(warnings, ValidationWarning{
					PageNumber: i + 1,
					Role:       e.Role,
					Message:    fmt.Sprintf("origin (%.1f, %.1f) lies outside content area", r.X, r.Y),
				})
			}
		}
	}
	return warnings
}
