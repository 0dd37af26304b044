package migration

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/theimaginaryfoundation/convo-md/migration/fileutils"
	"github.com/theimaginaryfoundation/convo-md/migration/normalize"
	"golang.org/x/sync/errgroup"
)

// ConvertOptions controls ConvertToMarkdown.
type ConvertOptions struct {
	// Clean removes existing *.md files from the output directory before writing.
	Clean bool

	// OverwriteExisting controls whether existing output files may be replaced.
	// If false and a target already exists, ConvertToMarkdown fails before writing anything.
	OverwriteExisting bool

	// FrontMatter adds a YAML front matter block to every file.
	FrontMatter bool

	// Language selects the label set ("en" or "zh"; empty means DefaultLanguage).
	Language string

	// WriteIndex writes index.jsonl alongside the Markdown files.
	WriteIndex bool

	// Concurrency bounds parallel file writes and title requests (defaults to 4).
	Concurrency int

	// Titles, when set, is asked for titles of conversations that only have a fallback title.
	Titles TitleSuggester

	// DirMode is used when creating the output directory (defaults to 0o755).
	DirMode fs.FileMode

	// FileMode is used when creating output files (defaults to 0o644).
	FileMode fs.FileMode
}

// ConvertResult contains basic stats from a conversion run.
type ConvertResult struct {
	ConversationsDetected int
	FilesWritten          int
	FilesWithQA           int
	BytesWritten          int64
	FilesCleaned          int
	Titles                TitleStats
	Files                 []string
}

type markdownJob struct {
	conv normalize.Conversation
	name string
	path string
}

// ConvertToMarkdown reads a conversation export from inputPath and writes one Markdown file per
// detected conversation into outputDir.
//
// File names are derived from titles and assigned in document order, so repeated runs over the
// same input produce the same names; duplicates become "name (2).md", "name (3).md".
func ConvertToMarkdown(ctx context.Context, inputPath, outputDir string, opts ConvertOptions) (ConvertResult, error) {
	if ctx == nil {
		return ConvertResult{}, errors.New("ConvertToMarkdown: ctx is nil")
	}
	if outputDir == "" {
		return ConvertResult{}, errors.New("ConvertToMarkdown: outputDir is empty")
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	if opts.DirMode == 0 {
		opts.DirMode = 0o755
	}
	if opts.FileMode == 0 {
		opts.FileMode = 0o644
	}
	labels, err := LabelsFor(opts.Language)
	if err != nil {
		return ConvertResult{}, fmt.Errorf("ConvertToMarkdown: %w", err)
	}

	convs, stem, err := LoadConversations(inputPath)
	if err != nil {
		return ConvertResult{}, err
	}
	res := ConvertResult{ConversationsDetected: len(convs)}

	if opts.Titles != nil {
		stats, err := SuggestTitles(ctx, convs, opts.Titles, opts.Concurrency)
		res.Titles = stats
		if err != nil {
			return res, fmt.Errorf("ConvertToMarkdown: suggest titles: %w", err)
		}
	}

	if err := os.MkdirAll(outputDir, opts.DirMode); err != nil {
		return res, fmt.Errorf("ConvertToMarkdown: mkdir outputDir: %w", err)
	}
	if opts.Clean {
		n, err := fileutils.RemoveMatching(outputDir, "*.md")
		if err != nil {
			return res, fmt.Errorf("ConvertToMarkdown: clean outputDir: %w", err)
		}
		res.FilesCleaned = n
	}

	jobs := planMarkdownFiles(convs, stem, outputDir, labels)
	indexPath := filepath.Join(outputDir, IndexFileName)
	if !opts.OverwriteExisting {
		for _, j := range jobs {
			if err := fileutils.CheckNotExists(j.path); err != nil {
				return res, fmt.Errorf("ConvertToMarkdown: %w", err)
			}
		}
		if opts.WriteIndex {
			if err := fileutils.CheckNotExists(indexPath); err != nil {
				return res, fmt.Errorf("ConvertToMarkdown: %w", err)
			}
		}
	}

	mdOpts := MarkdownOptions{
		Labels:      labels,
		FrontMatter: opts.FrontMatter,
		Source:      filepath.Base(inputPath),
	}
	sizes := make([]int, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)
	for i, j := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			doc, err := RenderMarkdown(j.conv, mdOpts)
			if err != nil {
				return fmt.Errorf("render %s: %w", j.name, err)
			}
			if err := fileutils.WriteFileAtomicSameDir(j.path, []byte(doc), opts.FileMode); err != nil {
				return fmt.Errorf("write %s: %w", j.name, err)
			}
			sizes[i] = len(doc)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return res, fmt.Errorf("ConvertToMarkdown: %w", err)
	}

	records := make([]IndexRecord, 0, len(jobs))
	for i, j := range jobs {
		res.FilesWritten++
		res.BytesWritten += int64(sizes[i])
		res.Files = append(res.Files, j.path)
		if HasQA(j.conv.Turns) {
			res.FilesWithQA++
		}
		records = append(records, BuildIndexRecord(j.conv, j.name))
	}

	if opts.WriteIndex {
		if err := WriteIndex(indexPath, records, true); err != nil {
			return res, fmt.Errorf("ConvertToMarkdown: %w", err)
		}
	}
	return res, nil
}

// planMarkdownFiles assigns every conversation its display title and output file name.
func planMarkdownFiles(convs []normalize.Conversation, stem, outputDir string, labels Labels) []markdownJob {
	names := markdownNames()
	jobs := make([]markdownJob, 0, len(convs))
	for i, conv := range convs {
		title := strings.TrimSpace(conv.Title)
		if title == "" {
			title = fmt.Sprintf("%s-%d", stem, i+1)
		}
		conv.Title = title
		name := names.next(CleanFilename(title, labels.Untitled))
		jobs = append(jobs, markdownJob{
			conv: conv,
			name: name,
			path: filepath.Join(outputDir, name),
		})
	}
	return jobs
}
