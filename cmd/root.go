package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "event-report",
	Short: "Fill, preview and export institutional event reports",
	Long: `Event Report fills an institutional event report, lays it out as
paginated A4 pages and exports a print-accurate PDF.

Reports are described in a YAML file for the command line, or edited
through the local web server started with "serve". The narrative
sections can be written by an AI provider (Gemini, OpenAI, Ollama).`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
