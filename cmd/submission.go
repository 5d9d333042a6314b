package cmd

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/kozaktomas/event-report/internal/layout"
	"github.com/kozaktomas/event-report/internal/render"
	"github.com/kozaktomas/event-report/internal/report"
)

// loadReport reads a submission file and loads its attachments.
func loadReport(path string) (*report.Submission, report.State, error) {
	sub, err := report.LoadSubmission(path)
	if err != nil {
		return nil, report.State{}, err
	}
	state, err := sub.State(filepath.Dir(path))
	if err != nil {
		return nil, report.State{}, fmt.Errorf("loading %s: %w", path, err)
	}
	return sub, state, nil
}

// checkReport runs the preview gate and prints what is missing.
func checkReport(state report.State) error {
	err := report.Validate(state.Data, state.Files)
	var verr *report.ValidationError
	if errors.As(err, &verr) {
		fmt.Println(verr.Error())
		fmt.Printf("  %s\n", verr.Detail())
	}
	return err
}

// buildPages lays out the report with real font metrics.
func buildPages(state report.State) (*render.Fonts, []layout.Page, error) {
	fonts, err := render.NewFonts()
	if err != nil {
		return nil, nil, fmt.Errorf("loading fonts: %w", err)
	}
	return fonts, layout.Build(state.Data, state.Files, fonts), nil
}

// printWarnings lists content that does not fit its page.
func printWarnings(pages []layout.Page) {
	warnings := layout.Validate(pages)
	if len(warnings) == 0 {
		return
	}
	fmt.Printf("\nLayout warnings (%d):\n", len(warnings))
	for _, w := range warnings {
		fmt.Printf("  - %s\n", w)
	}
}
