package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/theimaginaryfoundation/convo-md/migration"
)

func main() {
	cfg, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := migration.ConvertOptions{
		Clean:             cfg.Clean,
		OverwriteExisting: cfg.Overwrite,
		FrontMatter:       cfg.FrontMatter,
		Language:          cfg.Language,
		WriteIndex:        cfg.WriteIndex,
		Concurrency:       cfg.Concurrency,
		DirMode:           0o755,
		FileMode:          0o644,
	}

	if cfg.SuggestTitles {
		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = os.Getenv("OPENAI_API_KEY")
		}
		if apiKey == "" {
			fmt.Fprintln(os.Stderr, "missing OPENAI_API_KEY (or pass -api-key) for -suggest-titles")
			os.Exit(2)
		}
		client := openai.NewClient(option.WithAPIKey(apiKey))
		opts.Titles = openAITitleSuggester{
			client:   &client,
			model:    cfg.Model,
			language: strings.ToLower(cfg.Language),
		}
	}

	start := time.Now()
	res, err := migration.ConvertToMarkdown(ctx, cfg.InputPath, cfg.OutputDir, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed converting %s: %s\n", cfg.InputPath, err.Error())
		os.Exit(1)
	}

	if res.FilesCleaned > 0 {
		fmt.Fprintf(os.Stderr, "cleaned %d existing .md files in %s\n", res.FilesCleaned, cfg.OutputDir)
	}
	if res.Titles.Requested > 0 {
		fmt.Fprintf(os.Stderr, "titles suggested=%d kept_fallback=%d\n", res.Titles.Applied, res.Titles.Failed)
	}
	fmt.Fprintf(os.Stderr, "converted %s in %s\n", filepath.Base(cfg.InputPath), time.Since(start).Round(time.Millisecond))

	fmt.Fprintf(os.Stdout, "conversations_detected=%d files_written=%d files_with_qa=%d bytes_written=%d out_dir=%s\n",
		res.ConversationsDetected, res.FilesWritten, res.FilesWithQA, res.BytesWritten, cfg.OutputDir)
}

func parseFlags(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := defaultConfig()

	// Avoid mutating the global FlagSet if called from tests.
	fs.SetOutput(os.Stderr)

	fs.StringVar(&cfg.InputPath, "in", cfg.InputPath, "Path to a conversation export JSON file (ChatGPT, DeepSeek, Claude, generic chat/QA dumps)")
	fs.StringVar(&cfg.OutputDir, "out", cfg.OutputDir, "Directory to write one Markdown file per conversation into")
	fs.BoolVar(&cfg.Clean, "clean", false, "Remove existing *.md files in the output directory before writing")
	fs.BoolVar(&cfg.Overwrite, "overwrite", false, "Overwrite existing output files")
	fs.BoolVar(&cfg.FrontMatter, "front-matter", false, "Prepend YAML front matter (title, source, turn counts) to each file")
	fs.StringVar(&cfg.Language, "lang", cfg.Language, "Label language for headings and placeholders: en or zh")
	fs.BoolVar(&cfg.WriteIndex, "index", false, "Also write index.jsonl mapping conversations to files")
	fs.IntVar(&cfg.Concurrency, "concurrency", cfg.Concurrency, "Max parallel file writes / title requests")
	fs.BoolVar(&cfg.SuggestTitles, "suggest-titles", false, "Ask an OpenAI model for titles of conversations that have none")
	fs.StringVar(&cfg.Model, "model", cfg.Model, "OpenAI model to use with -suggest-titles (e.g. gpt-5-mini)")
	fs.StringVar(&cfg.APIKey, "api-key", "", "OpenAI API key (overrides OPENAI_API_KEY env var)")

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage:\n  %s [flags]\n\nFlags:\n", filepath.Base(os.Args[0]))
		fs.PrintDefaults()
		fmt.Fprintln(fs.Output(), "\nExamples:")
		fmt.Fprintln(fs.Output(), "  go run ./cmd/conversation-md -in exports/conversations.json -out notes/chats -clean")
		fmt.Fprintln(fs.Output(), "  go run ./cmd/conversation-md -in exports/deepseek.json -out notes/ds -lang zh -front-matter -index")
	}

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if cfg.InputPath != "" {
		cfg.InputPath = filepath.Clean(cfg.InputPath)
	}
	if cfg.OutputDir != "" {
		cfg.OutputDir = filepath.Clean(cfg.OutputDir)
	}
	return cfg, nil
}
