package cmd

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/event-report/internal/render"
)

var previewCmd = &cobra.Command{
	Use:   "preview <report.yaml>",
	Short: "Render report pages as PNG images",
	Long: `Lay out a report and write each page as a PNG image, exactly as it
will appear in the exported PDF. The form does not have to be complete.`,
	Args: cobra.ExactArgs(1),
	RunE: runPreview,
}

func init() {
	rootCmd.AddCommand(previewCmd)

	previewCmd.Flags().StringP("output", "o", "preview", "Directory to write the pages to")
	previewCmd.Flags().Int("page", 0, "Render only this page (1-based, 0 = all)")
}

func runPreview(cmd *cobra.Command, args []string) error {
	outputDir := mustGetString(cmd, "output")
	only := mustGetInt(cmd, "page")

	_, state, err := loadReport(args[0])
	if err != nil {
		return err
	}

	fonts, pages, err := buildPages(state)
	if err != nil {
		return err
	}
	defer fonts.Close()

	if only < 0 || only > len(pages) {
		return fmt.Errorf("page %d out of range (report has %d pages)", only, len(pages))
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	rasterizer := render.NewRasterizer(fonts)
	for i, page := range pages {
		if only != 0 && i+1 != only {
			continue
		}
		img, err := rasterizer.Rasterize(page)
		if err != nil {
			return err
		}
		path := filepath.Join(outputDir, fmt.Sprintf("page-%02d.png", i+1))
		if err := writePNG(path, img); err != nil {
			return err
		}
		fmt.Printf("Wrote %s (%s)\n", path, page.Kind)
	}

	printWarnings(pages)
	return nil
}

func writePNG(path string, img *image.RGBA) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return f.Close()
}
