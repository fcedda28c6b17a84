package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kydenul/log"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	"github.com/kydenul/smartbot"
)

var (
	chatConfigPath    string
	chatDataDir       string
	chatStorage       string
	chatTemplatesPath string
	chatLogConfigPath string
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start the interactive console",
	RunE:  runChat,
}

func init() {
	// Register flags on both root and chat so that
	// `smartbot --config path` and `smartbot chat --config path` both work.
	for _, cmd := range []*cobra.Command{rootCmd, chatCmd} {
		cmd.Flags().StringVar(&chatConfigPath, "config", "", "path to a YAML config file")
		cmd.Flags().StringVar(&chatDataDir, "data-dir", "", "directory for persisted parameters and history")
		cmd.Flags().StringVar(&chatStorage, "storage", "", "persistence backend: file or sqlite")
		cmd.Flags().StringVar(&chatTemplatesPath, "templates", "", "path to a template corpus JSON file")
		cmd.Flags().StringVar(&chatLogConfigPath, "log-config", "", "path to a log config file")
	}
}

const consoleBanner = `
========================================
Welcome to Smart Bot Technology (SBT)!
========================================
Type 'help' to see available commands.
Type 'exit' to quit the console.
========================================
`

const consolePrompt = "(SBT) > "

// runChat wires an engine from the resolved config and hands control to the
// console loop.
func runChat(_ *cobra.Command, _ []string) error {
	logger := newConsoleLogger(chatLogConfigPath)

	cfg, err := resolveConfig()
	if err != nil {
		return err
	}

	engine, err := smartbot.NewEngineFromConfig(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = engine.Close() }()

	return runConsole(engine)
}

// newConsoleLogger builds the console logger from an optional log config
// file. The engine shares this logger, so the default level is warn.
func newConsoleLogger(path string) log.Logger {
	if path != "" {
		opt, err := log.LoadFromFile(path)
		if err == nil {
			return log.NewLog(opt)
		}
		fmt.Printf("Warning: Failed to load log config, using default: %v\n", err)
	}
	return log.NewLog(&log.Options{Level: "warn"})
}

// resolveConfig layers the YAML config, environment overrides and flags.
// Flags win over the config file and the environment.
func resolveConfig() (*smartbot.Config, error) {
	cfg := smartbot.DefaultConfig()

	if chatConfigPath != "" {
		loaded, err := smartbot.LoadFromYAML(chatConfigPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		smartbot.ApplyEnvOverrides(cfg)
	}

	if chatDataDir != "" {
		cfg.DataDir = chatDataDir
	}
	if chatStorage != "" {
		cfg.Storage = chatStorage
	}
	if chatTemplatesPath != "" {
		cfg.TemplatesPath = chatTemplatesPath
	}

	if err := smartbot.Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// runConsole reads commands from stdin until exit or EOF.
func runConsole(engine smartbot.Engine) error {
	scanner := bufio.NewScanner(os.Stdin)

	fmt.Print(consoleBanner)

	for {
		fmt.Print(consolePrompt)
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		command, arg := splitCommand(line)
		if command == "exit" || command == "quit" {
			fmt.Println("Exiting Smart Bot Technology console. Goodbye!")
			return nil
		}

		dispatch(engine, command, arg)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading stdin: %w", err)
	}

	return nil
}

// splitCommand separates the command word from its argument text.
func splitCommand(line string) (string, string) {
	parts := strings.SplitN(line, " ", 2)
	command := strings.ToLower(parts[0])
	if len(parts) == 1 {
		return command, ""
	}
	return command, strings.TrimSpace(parts[1])
}

// dispatch runs a single console command.
func dispatch(engine smartbot.Engine, command, arg string) {
	switch command {
	case "help":
		printHelp()
	case "preprocess":
		preprocessText(engine, arg)
	case "spell_correct", "spell":
		spellCorrect(engine, arg)
	case "generate":
		generateResponse(engine, arg)
	case "history":
		showHistory(engine, arg)
	case "feedback":
		applyFeedback(engine, arg)
	case "params":
		printParameters(engine.Params())
	case "stats":
		printStats(engine.Stats())
	case "add":
		addTemplate(engine, arg)
	case "export":
		exportHistory(engine, arg)
	case "clear_history":
		clearHistory(engine)
	default:
		fmt.Printf("Unknown command: %s. Type 'help' to see available commands.\n", command)
	}
}

func printHelp() {
	fmt.Println("Available commands:")
	fmt.Println("  preprocess <text>                       Normalize text: lowercase, strip punctuation")
	fmt.Println("  spell_correct <text>                    Apply the misspelling table to text")
	fmt.Println("  generate <text>                         Generate a response for the input")
	fmt.Println("  history [limit]                         Show recent conversation exchanges")
	fmt.Println("  feedback <good|bad|1-10>                Rate the last response and adapt parameters")
	fmt.Println("  params                                  Show the current matching parameters")
	fmt.Println("  stats                                   Show engine usage statistics")
	fmt.Println("  add <category> | <response> | <phrase>  Add a template with keywords taken from the phrase")
	fmt.Println("  export [file]                           Export history as JSON, default conversation_export.json")
	fmt.Println("  clear_history                           Delete all stored exchanges")
	fmt.Println("  exit                                    Quit the console")
}

func preprocessText(engine smartbot.Engine, arg string) {
	if arg == "" {
		fmt.Println("Please provide text to preprocess.")
		return
	}

	fmt.Printf("Original text: %s\n", arg)
	fmt.Printf("Preprocessed text: %s\n", engine.Normalize(arg))
}

func spellCorrect(engine smartbot.Engine, arg string) {
	if arg == "" {
		fmt.Println("Please provide text for spell correction.")
		return
	}

	fmt.Printf("Original text: %s\n", arg)
	fmt.Printf("Corrected text: %s\n", engine.CorrectSpelling(arg))
}

func generateResponse(engine smartbot.Engine, arg string) {
	if arg == "" {
		fmt.Println("Please provide a context for response generation.")
		return
	}

	result := engine.ProcessMessage(arg)

	fmt.Printf("Input: %s\n", arg)
	fmt.Printf("Generated Response: %s\n", result.Response)
	fmt.Printf("Confidence: %.2f\n", result.Confidence)
}

func showHistory(engine smartbot.Engine, arg string) {
	limit := 0 // all entries
	if arg != "" {
		n, err := cast.ToIntE(arg)
		if err != nil {
			fmt.Println("Please provide a valid number for history limit.")
			return
		}
		limit = n
	}

	entries := chronological(engine.RecentHistory(limit))

	fmt.Println("Conversation History:")
	fmt.Println(strings.Repeat("-", 50))
	for i, entry := range entries {
		fmt.Printf("Exchange %d:\n", i+1)
		fmt.Printf("  User: %s\n", entry.RawInput)
		fmt.Printf("  SBT: %s\n", entry.Response)
		fmt.Println()
	}
}

func applyFeedback(engine smartbot.Engine, arg string) {
	if arg == "" {
		fmt.Println("Please provide feedback (good/bad or 1-10).")
		return
	}

	var params smartbot.Parameters
	fb, score, err := smartbot.ParseFeedback(arg)
	if err == nil {
		if fb != smartbot.FeedbackNone {
			params, err = engine.SubmitFeedback(fb)
		} else {
			params, err = engine.SubmitRating(score)
		}
	}
	if err != nil {
		fmt.Printf("Error processing feedback: %v\n", err)
		return
	}

	fmt.Println("Feedback processed successfully.")
	printParameters(params)
}

func printParameters(params smartbot.Parameters) {
	fmt.Println("Current System Parameters:")
	fmt.Printf("  keyword_weight: %.4f\n", params.KeywordWeight)
	fmt.Printf("  length_penalty_weight: %.4f\n", params.LengthPenaltyWeight)
	fmt.Printf("  confidence_threshold: %.4f\n", params.ConfidenceThreshold)
	fmt.Printf("  learning_rate: %.4f\n", params.LearningRate)
}

func printStats(stats smartbot.EngineStats) {
	fmt.Println("Engine Statistics:")
	fmt.Printf("  Total Requests:     %d\n", stats.TotalRequests)
	fmt.Printf("  Matched Requests:   %d\n", stats.MatchedRequests)
	fmt.Printf("  Fallback Requests:  %d\n", stats.FallbackRequests)
	fmt.Printf("  Positive Feedback:  %d\n", stats.PositiveFeedback)
	fmt.Printf("  Negative Feedback:  %d\n", stats.NegativeFeedback)
	fmt.Printf("  Average Latency:    %v\n", stats.AverageLatency)
	fmt.Printf("  Average Confidence: %.4f\n", stats.AverageConfidence)
	if !stats.LastUpdated.IsZero() {
		fmt.Printf("  Last Updated:       %s\n", stats.LastUpdated.Format(time.RFC3339))
	}
}

func addTemplate(engine smartbot.Engine, arg string) {
	parts := strings.SplitN(arg, "|", 3)
	if len(parts) != 3 {
		fmt.Println("Usage: add <category> | <response> | <example phrase>")
		return
	}

	category := smartbot.Category(strings.ToLower(strings.TrimSpace(parts[0])))
	response := strings.TrimSpace(parts[1])
	phrase := strings.TrimSpace(parts[2])

	tpl, err := engine.AddTemplateFromPhrase(phrase, response, category)
	if err != nil {
		fmt.Printf("Error adding template: %v\n", err)
		return
	}

	fmt.Printf("Template %d added (category: %s, keywords: %s)\n",
		tpl.ID, tpl.Category, strings.Join(tpl.Keywords, ", "))
}

func exportHistory(engine smartbot.Engine, arg string) {
	filename := arg
	if filename == "" {
		filename = "conversation_export.json"
	}

	entries := chronological(engine.RecentHistory(0))

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		fmt.Printf("Error exporting history: %v\n", err)
		return
	}

	if err := os.WriteFile(filename, data, 0o644); err != nil {
		fmt.Printf("Error exporting history: %v\n", err)
		return
	}

	fmt.Printf("Conversation history exported to %s\n", filename)
}

func clearHistory(engine smartbot.Engine) {
	if err := engine.ClearHistory(); err != nil {
		fmt.Printf("Error clearing history: %v\n", err)
		return
	}
	fmt.Println("Conversation history has been cleared.")
}

// chronological reverses a most-recent-first slice into display order.
func chronological(entries []smartbot.LogEntry) []smartbot.LogEntry {
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries
}
