package report

import (
	"fmt"
	"strconv"
	"strings"
)

// ValidationMessage is shown when the preview gate rejects the form.
const ValidationMessage = "Please fill all required fields and upload required photos."

// ValidationError lists what blocks the preview.
type ValidationError struct {
	Missing  []Field
	NoPhotos bool
}

func (e *ValidationError) Error() string {
	return ValidationMessage
}

// Detail describes the missing items, for CLI output and logs.
func (e *ValidationError) Detail() string {
	parts := make([]string, 0, len(e.Missing)+1)
	for _, f := range e.Missing {
		parts = append(parts, string(f))
	}
	if e.NoPhotos {
		parts = append(parts, string(SlotPhotos))
	}
	return fmt.Sprintf("missing: %s", strings.Join(parts, ", "))
}

// Validate checks that every scalar field is filled and at least one photo is attached.
// Numeric fields must hold a non-zero number; zero counts as empty.
func Validate(d Data, f Files) error {
	var verr ValidationError
	for _, field := range Fields {
		v, _ := d.Get(field)
		if !filled(field, v) {
			verr.Missing = append(verr.Missing, field)
		}
	}
	verr.NoPhotos = len(f.Photos) == 0
	if len(verr.Missing) > 0 || verr.NoPhotos {
		return &verr
	}
	return nil
}

func filled(field Field, v string) bool {
	v = strings.TrimSpace(v)
	if v == "" {
		return false
	}
	if field.IsNumeric() {
		n, err := strconv.ParseFloat(v, 64)
		return err == nil && n != 0
	}
	return true
}

// FormatNumber normalizes a numeric field the way a number input reports it
// ("05000" -> "5000", "12.50" -> "12.5"). Non-numeric input is returned trimmed.
func FormatNumber(v string) string {
	v = strings.TrimSpace(v)
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return v
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}
