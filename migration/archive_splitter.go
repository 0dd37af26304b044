package migration

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/theimaginaryfoundation/convo-md/migration/fileutils"
	"github.com/theimaginaryfoundation/convo-md/migration/normalize"
)

// ConversationFile is the normalized, format-independent form of one conversation as written by
// SplitConversationArchive.
type ConversationFile struct {
	Title  string           `json:"title"`
	Source string           `json:"source"`
	Turns  []normalize.Turn `json:"turns"`
}

// SplitOptions controls how SplitConversationArchive writes per-conversation files.
type SplitOptions struct {
	// OverwriteExisting controls whether existing output files should be overwritten.
	// If false and a file already exists, SplitConversationArchive returns an error.
	OverwriteExisting bool

	// Pretty controls whether each output JSON file is indented for readability.
	Pretty bool

	// DirMode is used when creating output directories (defaults to 0o755).
	DirMode fs.FileMode

	// FileMode is used when creating output files (defaults to 0o644).
	FileMode fs.FileMode
}

// SplitResult contains basic stats from a split run.
type SplitResult struct {
	ConversationsWritten int
	BytesWritten         int64
	Files                []string
}

// SplitConversationArchive reads a conversation export in any supported shape and writes one
// normalized ConversationFile JSON per conversation into outputDir.
//
// Files are named after the sanitized title; repeated names get "-2", "-3" suffixes.
func SplitConversationArchive(ctx context.Context, inputPath, outputDir string, opts SplitOptions) (SplitResult, error) {
	if ctx == nil {
		return SplitResult{}, errors.New("SplitConversationArchive: ctx is nil")
	}
	if inputPath == "" {
		return SplitResult{}, errors.New("SplitConversationArchive: inputPath is empty")
	}
	if outputDir == "" {
		return SplitResult{}, errors.New("SplitConversationArchive: outputDir is empty")
	}
	if opts.DirMode == 0 {
		opts.DirMode = 0o755
	}
	if opts.FileMode == 0 {
		opts.FileMode = 0o644
	}

	convs, stem, err := LoadConversations(inputPath)
	if err != nil {
		return SplitResult{}, err
	}
	if err := os.MkdirAll(outputDir, opts.DirMode); err != nil {
		return SplitResult{}, fmt.Errorf("SplitConversationArchive: mkdir outputDir: %w", err)
	}

	source := filepath.Base(inputPath)
	names := jsonNames()
	var res SplitResult
	for i, conv := range convs {
		select {
		case <-ctx.Done():
			return res, ctx.Err()
		default:
		}

		base := sanitizeFilenameComponent(conv.Title)
		if base == "" {
			base = sanitizeFilenameComponent(fmt.Sprintf("%s-%d", stem, i+1))
		}
		if base == "" {
			base = "conversation"
		}
		outPath := filepath.Join(outputDir, names.next(base))
		if !opts.OverwriteExisting {
			if err := fileutils.CheckNotExists(outPath); err != nil {
				return res, fmt.Errorf("SplitConversationArchive: %w", err)
			}
		}

		b, err := fileutils.MarshalJSON(ConversationFile{
			Title:  conv.Title,
			Source: source,
			Turns:  conv.Turns,
		}, opts.Pretty)
		if err != nil {
			return res, fmt.Errorf("SplitConversationArchive: title=%q: %w", conv.Title, err)
		}
		if err := fileutils.WriteFileAtomicSameDir(outPath, b, opts.FileMode); err != nil {
			return res, fmt.Errorf("SplitConversationArchive: write output (title=%q): %w", conv.Title, err)
		}
		res.ConversationsWritten++
		res.BytesWritten += int64(len(b))
		res.Files = append(res.Files, outPath)
	}
	return res, nil
}
