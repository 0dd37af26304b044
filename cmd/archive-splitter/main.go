package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/theimaginaryfoundation/convo-md/migration"
	"github.com/theimaginaryfoundation/convo-md/migration/provider"
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

	if cfg.PrintSchema {
		if err := printSchema(os.Stdout); err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := migration.SplitConversationArchive(ctx, cfg.InputPath, cfg.OutputDir, migration.SplitOptions{
		OverwriteExisting: cfg.Overwrite,
		Pretty:            cfg.Pretty,
		DirMode:           0o755,
		FileMode:          0o644,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	fmt.Fprintf(os.Stdout, "conversations_written=%d bytes_written=%d out_dir=%s\n", res.ConversationsWritten, res.BytesWritten, cfg.OutputDir)
}

// printSchema writes the JSON schema of the per-conversation output files.
func printSchema(w io.Writer) error {
	b, err := json.MarshalIndent(provider.GenerateSchema[migration.ConversationFile](), "", "  ")
	if err != nil {
		return fmt.Errorf("printSchema: %w", err)
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

func parseFlags(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := defaultConfig()

	// Avoid mutating the global FlagSet if called from tests.
	fs.SetOutput(os.Stderr)

	fs.StringVar(&cfg.InputPath, "in", cfg.InputPath, "Path to a conversation export JSON file (any supported shape)")
	fs.StringVar(&cfg.OutputDir, "out", cfg.OutputDir, "Directory to write per-conversation JSON files into")
	fs.BoolVar(&cfg.Pretty, "pretty", false, "Pretty-print each output JSON file")
	fs.BoolVar(&cfg.Overwrite, "overwrite", false, "Overwrite existing output files")
	fs.BoolVar(&cfg.PrintSchema, "print-schema", false, "Print the JSON schema of the output files and exit")

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage:\n  %s [flags]\n\nFlags:\n", filepath.Base(os.Args[0]))
		fs.PrintDefaults()
		fmt.Fprintln(fs.Output(), "\nExamples:")
		fmt.Fprintln(fs.Output(), "  go run ./cmd/archive-splitter -in exports/conversations.json -out exports/threads -pretty")
		fmt.Fprintln(fs.Output(), "  go run ./cmd/archive-splitter -print-schema")
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
