package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mikeboe/deep-report/pkg/clients"
	"github.com/mikeboe/deep-report/pkg/config"
	"github.com/mikeboe/deep-report/pkg/report"
	"github.com/mikeboe/deep-report/pkg/research"
)

var (
	topic        string
	modelName    string
	maxDepth     int
	timeLimit    int
	maxURLs      int
	outputDir    string
	firecrawlKey string
	groqKey      string
)

func main() {
	// Setup structured logging
	handler := slog.NewTextHandler(os.Stderr, nil)
	slog.SetDefault(slog.New(handler))

	// Load .env file
	if err := godotenv.Load(); err != nil {
		// It's okay if .env doesn't exist, as long as env vars are set
	}

	cfg := config.Load()

	rootCmd := &cobra.Command{
		Use:   "deep-report",
		Short: "Generate a research report from your terminal",
		Long:  `deep-report runs a deep research job for a topic, formats the discovered sources, and writes a two-pass report: an initial draft and an enhanced final version saved as Markdown.`,
		Run: func(cmd *cobra.Command, args []string) {

			// Check if topic provided via flags
			topicFlagChanged := cmd.Flags().Changed("topic")

			if !topicFlagChanged {
				// Interactive Mode
				reader := bufio.NewReader(os.Stdin)

				fmt.Print("Enter research topic: ")
				input, _ := reader.ReadString('\n')
				topic = strings.TrimSpace(input)
				if topic == "" {
					slog.Error("Topic cannot be empty")
					os.Exit(1)
				}
			} else {
				// Non-Interactive Mode (Flag provided)
				if strings.TrimSpace(topic) == "" {
					slog.Error("--topic flag provided but empty")
					os.Exit(1)
				}
				topic = strings.TrimSpace(topic)
			}

			// Flag overrides for the two secrets
			if firecrawlKey != "" {
				cfg.FirecrawlAPIKey = firecrawlKey
			}
			if groqKey != "" {
				cfg.GroqAPIKey = groqKey
			}

			// Refuse to run without both keys; nothing below may touch
			// the network before this check passes.
			if err := cfg.Validate(); err != nil {
				slog.Warn("Missing credentials, not starting", "error", err)
				os.Exit(1)
			}

			model, err := clients.ParseModel(modelName)
			if err != nil {
				slog.Error("Invalid model", "error", err)
				os.Exit(1)
			}

			llm, err := clients.Groq(model, cfg.GroqAPIKey, cfg.GroqBaseURL)
			if err != nil {
				slog.Error("Failed to init completion client", "error", err)
				os.Exit(1)
			}

			researcher := research.NewClient(cfg.FirecrawlAPIKey, cfg.FirecrawlBaseURL)

			pipe := report.NewPipeline(researcher, llm)
			pipe.OnActivity = func(a research.Activity) {
				fmt.Fprintln(os.Stderr, a.String())
			}

			slog.Info("Starting report", "topic", topic, "model", string(model))

			result, err := pipe.Run(context.Background(), report.Request{
				Topic: topic,
				Params: research.Params{
					MaxDepth:  maxDepth,
					TimeLimit: timeLimit,
					MaxURLs:   maxURLs,
				},
				SourceLimit: cfg.SourceLimit,
			})
			if err != nil {
				var stageErr *report.Error
				if errors.As(err, &stageErr) {
					slog.Error("Report failed", "stage", string(stageErr.Stage), "kind", string(stageErr.Kind), "error", stageErr.Message)
				} else {
					slog.Error("Report failed", "error", err)
				}
				os.Exit(1)
			}

			fmt.Println("## Sources")
			fmt.Println()
			fmt.Println(result.SourcesDigest)
			fmt.Println()
			fmt.Println("## Initial report")
			fmt.Println()
			fmt.Println(result.Draft)
			fmt.Println()
			fmt.Println("## Enhanced report")
			fmt.Println()
			fmt.Println(result.Enhanced)

			path, err := report.Save(outputDir, topic, result.Enhanced)
			if err != nil {
				slog.Error("Failed to save report", "error", err)
				os.Exit(1)
			}
			slog.Info("Report saved", "path", path)
		},
	}

	rootCmd.Flags().StringVarP(&topic, "topic", "t", "", "The research topic")
	rootCmd.Flags().StringVarP(&modelName, "model", "m", cfg.GroqModel, "Completion model for drafting and enhancement")
	rootCmd.Flags().IntVar(&maxDepth, "depth", cfg.MaxDepth, "How many levels deep the research may go")
	rootCmd.Flags().IntVar(&timeLimit, "time-limit", cfg.TimeLimit, "Research time budget in seconds")
	rootCmd.Flags().IntVar(&maxURLs, "max-urls", cfg.MaxURLs, "Maximum number of URLs to analyze")
	rootCmd.Flags().StringVarP(&outputDir, "output", "o", ".", "Directory the report file is written to")
	rootCmd.Flags().StringVar(&firecrawlKey, "firecrawl-key", "", "Firecrawl API key (overrides FIRECRAWL_API_KEY)")
	rootCmd.Flags().StringVar(&groqKey, "groq-key", "", "Groq API key (overrides GROQ_API_KEY)")

	if err := rootCmd.Execute(); err != nil {
		slog.Error("Command execution failed", "error", err)
		os.Exit(1)
	}
}
