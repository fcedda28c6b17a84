// Command smartbot runs the SBT adaptive response console.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "smartbot",
	Short: "SBT, a small chat console that learns from your feedback.",
	Long: `Smartbot is a console chat assistant. It normalizes what you type,
matches it against a keyword template corpus and answers with a confidence
score. Feedback on an answer nudges the matching parameters, and both the
parameters and the conversation survive restarts.`,
	RunE:          runChat, // Default to the interactive console.
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(chatCmd, versionCmd)
	_ = godotenv.Load()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}
