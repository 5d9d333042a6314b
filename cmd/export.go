package cmd

import (
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/kozaktomas/event-report/internal/config"
	"github.com/kozaktomas/event-report/internal/export"
	"github.com/kozaktomas/event-report/internal/render"
)

var exportCmd = &cobra.Command{
	Use:   "export <report.yaml>",
	Short: "Export a report as PDF",
	Long: `Validate a report, lay it out and export it as a PDF.
Every page is rendered at twice the A4 reference resolution and placed
full-bleed on an A4 page. The document is saved as IIC-Event-Report.pdf
in the output directory; a failed export leaves no file behind.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringP("output", "o", "", "Output directory (default REPORT_OUTPUT_DIR or current directory)")
	exportCmd.Flags().Bool("no-progress", false, "Do not show the progress bar")
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	outputDir := mustGetString(cmd, "output")
	if outputDir == "" {
		outputDir = cfg.Report.OutputDir
	}

	_, state, err := loadReport(args[0])
	if err != nil {
		return err
	}
	if err := checkReport(state); err != nil {
		return fmt.Errorf("report is incomplete: %w", err)
	}

	fonts, pages, err := buildPages(state)
	if err != nil {
		return err
	}
	defer fonts.Close()

	exporter := export.New(render.NewRasterizer(fonts))
	if !mustGetBool(cmd, "no-progress") {
		bar := progressbar.NewOptions(len(pages),
			progressbar.OptionSetDescription("Rendering"),
			progressbar.OptionShowCount(),
			progressbar.OptionSetItsString("pages"),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionFullWidth(),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "=",
				SaucerHead:    ">",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}),
		)
		exporter.Progress = func(done, total int) {
			bar.Set(done)
		}
		defer bar.Finish()
	}

	path, res, err := exporter.ExportFile(pages, outputDir)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	fmt.Printf("\n\nSaved %s\n", path)
	fmt.Printf("  Pages:  %d\n", res.Report.PageCount)
	fmt.Printf("  Photos: %d\n", res.Report.PhotoCount)
	for _, p := range res.Report.Pages {
		fmt.Printf("  %2d. %-10s %s\n", p.PageNumber, p.Kind, p.Title)
	}
	for _, w := range res.Report.Warnings {
		fmt.Printf("  Warning: %s\n", w)
	}
	return nil
}
