package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/event-report/internal/crop"
	"github.com/kozaktomas/event-report/internal/imaging"
	"github.com/kozaktomas/event-report/internal/report"
)

var cropCmd = &cobra.Command{
	Use:   "crop <image> <output>",
	Short: "Crop an image the way the report editor does",
	Long: `Crop an image and save it as JPEG.

The area is either given in source pixels with --x, --y, --width and
--height, or selected like the editor's crop frame with --zoom, --pan-x,
--pan-y and --aspect (default 4:3).`,
	Args: cobra.ExactArgs(2),
	RunE: runCrop,
}

func init() {
	rootCmd.AddCommand(cropCmd)

	cropCmd.Flags().Int("x", 0, "Left edge of the region in source pixels")
	cropCmd.Flags().Int("y", 0, "Top edge of the region in source pixels")
	cropCmd.Flags().Int("width", 0, "Region width in source pixels (0 = use the crop frame)")
	cropCmd.Flags().Int("height", 0, "Region height in source pixels")
	cropCmd.Flags().Float64("zoom", 1, "Crop frame zoom (>= 1)")
	cropCmd.Flags().Float64("pan-x", 0, "Horizontal offset of the crop frame in source pixels")
	cropCmd.Flags().Float64("pan-y", 0, "Vertical offset of the crop frame in source pixels")
	cropCmd.Flags().Float64("aspect", crop.DefaultAspect, "Aspect ratio of the crop frame")
}

func runCrop(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading image: %w", err)
	}
	src := report.NewAttachment(filepath.Base(args[0]), "", data)

	region := crop.Region{
		X:      mustGetInt(cmd, "x"),
		Y:      mustGetInt(cmd, "y"),
		Width:  mustGetInt(cmd, "width"),
		Height: mustGetInt(cmd, "height"),
	}
	if region.Width == 0 && region.Height == 0 {
		cfg, _, err := imaging.DecodeConfig(src.Data)
		if err != nil {
			return err
		}
		region = crop.RegionFromView(cfg.Width, cfg.Height,
			mustGetFloat64(cmd, "aspect"),
			mustGetFloat64(cmd, "zoom"),
			mustGetFloat64(cmd, "pan-x"),
			mustGetFloat64(cmd, "pan-y"),
		)
	}

	cropped, err := crop.Crop(src, region)
	if err != nil {
		return err
	}
	if err := os.WriteFile(args[1], cropped.Data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", args[1], err)
	}

	fmt.Printf("Cropped %s to %dx%d at (%d,%d) -> %s\n",
		args[0], region.Width, region.Height, region.X, region.Y, args[1])
	return nil
}
