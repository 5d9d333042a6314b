package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/event-report/internal/ai"
	"github.com/kozaktomas/event-report/internal/config"
)

var generateCmd = &cobra.Command{
	Use:   "generate <report.yaml>",
	Short: "Write the narrative sections with AI",
	Long: `Generate the brief information, objectives and benefits of a report
from its event title, department and resource person.

The result is printed. With --write it replaces the three sections in the
YAML file; the other fields are kept.`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().String("provider", "", "AI provider to use: gemini, openai, ollama (default AI_PROVIDER)")
	generateCmd.Flags().String("tone", "", "Writing tone: Professional, Academic, Enthusiastic, Concise (default from the file)")
	generateCmd.Flags().Bool("write", false, "Write the generated sections back into the YAML file")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	path := args[0]

	sub, state, err := loadReport(path)
	if err != nil {
		return err
	}

	tone := state.Tone
	if name := mustGetString(cmd, "tone"); name != "" {
		if tone, err = ai.ParseTone(name); err != nil {
			return err
		}
	}

	// Set up context with signal handling for graceful cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nReceived interrupt signal...")
		cancel()
	}()

	provider, err := ai.NewProvider(ctx, cfg, mustGetString(cmd, "provider"))
	if err != nil {
		return err
	}

	fmt.Printf("Generating content with %s (%s tone)...\n\n", provider.Name(), tone)
	content, err := ai.Generate(ctx, provider, ai.ContentRequest{
		EventTitle:         state.Data.EventTitle,
		Department:         state.Data.Department,
		ResourcePersonName: state.Data.ResourcePersonName,
		Tone:               tone,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Brief Information:\n%s\n\n", content.Brief)
	fmt.Printf("Objectives:\n%s\n\n", content.Objectives)
	fmt.Printf("Benefits:\n%s\n\n", content.Benefits)

	usage := provider.GetUsage()
	fmt.Printf("Tokens: %d input, %d output (cost $%.4f)\n", usage.InputTokens, usage.OutputTokens, usage.TotalCost)

	if mustGetBool(cmd, "write") {
		sub.Data.BriefInfo = content.Brief
		sub.Data.Objectives = content.Objectives
		sub.Data.Benefits = content.Benefits
		sub.Tone = string(tone)
		if err := sub.Save(path); err != nil {
			return err
		}
		fmt.Printf("Updated %s\n", path)
	}
	return nil
}
