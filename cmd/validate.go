package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <report.yaml>",
	Short: "Check that a report is complete",
	Long: `Check that every field of a report is filled and at least one photo is
attached, and report content that does not fit its page.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
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

	fmt.Printf("Report is complete (%d pages)\n", len(pages))
	printWarnings(pages)
	return nil
}
