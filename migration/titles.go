package migration

import (
	"context"
	"errors"
	"strings"

	"github.com/theimaginaryfoundation/convo-md/migration/normalize"
	"golang.org/x/sync/errgroup"
)

// TitleSuggester proposes a title for a conversation that has none of its own.
type TitleSuggester interface {
	SuggestTitle(ctx context.Context, conv normalize.Conversation) (string, error)
}

// TitleStats counts the outcome of SuggestTitles.
type TitleStats struct {
	Requested int
	Applied   int
	Failed    int
}

// SuggestTitles asks s for a title for every conversation whose title was derived from the input
// file name and that has at least one turn, running at most concurrency requests at once.
// Suggestions replace titles in place. A failed or blank suggestion keeps the fallback title and
// is counted in TitleStats.Failed; only context cancellation aborts the run.
func SuggestTitles(ctx context.Context, convs []normalize.Conversation, s TitleSuggester, concurrency int) (TitleStats, error) {
	var stats TitleStats
	if s == nil {
		return stats, nil
	}
	if concurrency <= 0 {
		concurrency = 1
	}

	suggestions := make([]string, len(convs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i := range convs {
		if !convs[i].FallbackTitle || len(convs[i].Turns) == 0 {
			continue
		}
		stats.Requested++
		conv := convs[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			title, err := s.SuggestTitle(gctx, conv)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				return nil
			}
			suggestions[i] = strings.Join(strings.Fields(title), " ")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return stats, err
	}

	for i, title := range suggestions {
		if !convs[i].FallbackTitle || len(convs[i].Turns) == 0 {
			continue
		}
		if title == "" {
			stats.Failed++
			continue
		}
		convs[i].Title = title
		convs[i].FallbackTitle = false
		stats.Applied++
	}
	return stats, nil
}
