// Package export assembles rasterized report pages into a single A4 PDF.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"sync"

	"codeberg.org/go-pdf/fpdf"

	"github.com/kozaktomas/event-report/internal/constants"
	"github.com/kozaktomas/event-report/internal/layout"
)

// Errors returned by Export.
var (
	ErrNoPages          = errors.New("no report pages to export")
	ErrExportInProgress = errors.New("an export is already running")
)

// State is the exporter state. Done and Failed behave like Idle: a new export may start.
type State int

const (
	StateIdle State = iota
	StateExporting
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateExporting:
		return "exporting"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Rasterizer draws one page.
type Rasterizer interface {
	Rasterize(p layout.Page) (*image.RGBA, error)
}

// ExportReport contains metadata about a PDF export.
type ExportReport struct {
	FileName   string       `json:"file_name"`
	PageCount  int          `json:"page_count"`
	PhotoCount int          `json:"photo_count"`
	Pages      []ReportPage `json:"pages"`
	Warnings   []string     `json:"warnings"`
}

// ReportPage describes a single page in the export report.
type ReportPage struct {
	PageNumber int             `json:"page_number"`
	Kind       layout.PageKind `json:"kind"`
	Title      string          `json:"title"`
}

// Result is a finished export.
type Result struct {
	PDF    []byte
	Report *ExportReport
}

// Exporter runs one export at a time. Pages are rasterized strictly in order and
// any failure discards everything produced so far. A running export cannot be
// cancelled.
type Exporter struct {
	rasterizer Rasterizer

	// Progress, when set, is called after each page is added.
	Progress func(done, total int)

	mu      sync.Mutex
	state   State
	lastErr error
}

// New creates an idle exporter.
func New(r Rasterizer) *Exporter {
	return &Exporter{rasterizer: r}
}

// State returns the current state.
func (e *Exporter) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Err returns the error of the last failed export.
func (e *Exporter) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

// Export builds the PDF in memory.
func (e *Exporter) Export(pages []layout.Page) (*Result, error) {
	return e.run(pages, nil)
}

// ExportFile builds the PDF and saves it as constants.OutputFileName in dir.
// The file is written under a temporary name and renamed into place, so a failed
// export never leaves a partial document behind.
func (e *Exporter) ExportFile(pages []layout.Page, dir string) (string, *Result, error) {
	path := filepath.Join(dir, constants.OutputFileName)
	res, err := e.run(pages, func(res *Result) error {
		return writeFileAtomic(path, res.PDF)
	})
	if err != nil {
		return "", nil, err
	}
	return path, res, nil
}

func (e *Exporter) run(pages []layout.Page, persist func(*Result) error) (*Result, error) {
	if len(pages) == 0 {
		return nil, ErrNoPages
	}

	e.mu.Lock()
	if e.state == StateExporting {
		e.mu.Unlock()
		return nil, ErrExportInProgress
	}
	e.state = StateExporting
	e.lastErr = nil
	e.mu.Unlock()

	res, err := e.assemble(pages)
	if err == nil && persist != nil {
		err = persist(res)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		e.state = StateFailed
		e.lastErr = err
		log.Printf("Export failed: %v", err)
		return nil, err
	}
	e.state = StateDone
	log.Printf("Exported %d pages (%d bytes)", res.Report.PageCount, len(res.PDF))
	return res, nil
}

func (e *Exporter) assemble(pages []layout.Page) (*Result, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)

	report := &ExportReport{
		FileName:  constants.OutputFileName,
		PageCount: len(pages),
		Warnings:  []string{},
	}

	for i, p := range pages {
		img, err := e.rasterizer.Rasterize(p)
		if err != nil {
			return nil, fmt.Errorf("failed to render page %d: %w", i+1, err)
		}

		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("failed to encode page %d: %w", i+1, err)
		}

		// The first AddPage starts the document; every later one appends a page.
		pdf.AddPage()
		name := fmt.Sprintf("page%d", i+1)
		opts := fpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader(name, opts, &buf)
		pdf.ImageOptions(name, 0, 0, constants.PageWidthMM, constants.PageHeightMM, false, opts, 0, "")
		if err := pdf.Error(); err != nil {
			return nil, fmt.Errorf("failed to add page %d: %w", i+1, err)
		}

		report.Pages = append(report.Pages, ReportPage{PageNumber: i + 1, Kind: p.Kind, Title: p.Title})
		// One cell per attached photo, whether it is drawn or only noted.
		report.PhotoCount += len(p.Find("photo-cell"))
		if e.Progress != nil {
			e.Progress(i+1, len(pages))
		}
	}

	for _, w := range layout.Validate(pages) {
		report.Warnings = append(report.Warnings, w.String())
	}

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return &Result{PDF: out.Bytes(), Report: report}, nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".export-*.pdf")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to save PDF: %w", err)
	}
	return nil
}
