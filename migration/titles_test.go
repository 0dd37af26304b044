package migration

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/theimaginaryfoundation/convo-md/migration/normalize"
)

type stubSuggester struct {
	mu       sync.Mutex
	calls    []string
	inFlight atomic.Int32
	peak     atomic.Int32
	suggest  func(conv normalize.Conversation) (string, error)
}

func (s *stubSuggester) SuggestTitle(ctx context.Context, conv normalize.Conversation) (string, error) {
	n := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		p := s.peak.Load()
		if n <= p || s.peak.CompareAndSwap(p, n) {
			break
		}
	}
	s.mu.Lock()
	s.calls = append(s.calls, conv.Title)
	s.mu.Unlock()
	return s.suggest(conv)
}

func turnsOf(text string) []normalize.Turn {
	return []normalize.Turn{{Role: normalize.RoleUser, Text: text}}
}

func TestSuggestTitles_OnlyFallbackTitles(t *testing.T) {
	t.Parallel()

	convs := []normalize.Conversation{
		{Title: "Kept", Turns: turnsOf("a")},
		{Title: "export-2", Turns: turnsOf("trip to kyoto"), FallbackTitle: true},
		{Title: "export-3", Turns: []normalize.Turn{}, FallbackTitle: true},
		{Title: "export-4", Turns: turnsOf("broken"), FallbackTitle: true},
		{Title: "export-5", Turns: turnsOf("blank"), FallbackTitle: true},
	}
	s := &stubSuggester{suggest: func(conv normalize.Conversation) (string, error) {
		switch conv.Turns[0].Text {
		case "trip to kyoto":
			return "  Kyoto\ntrip  ", nil
		case "broken":
			return "", errors.New("model unavailable")
		default:
			return "   ", nil
		}
	}}

	stats, err := SuggestTitles(context.Background(), convs, s, 2)
	if err != nil {
		t.Fatalf("SuggestTitles: %v", err)
	}
	if stats.Requested != 3 || stats.Applied != 1 || stats.Failed != 2 {
		t.Fatalf("stats=%+v, want requested=3 applied=1 failed=2", stats)
	}
	if convs[1].Title != "Kyoto trip" || convs[1].FallbackTitle {
		t.Fatalf("convs[1]=%+v", convs[1])
	}
	if convs[0].Title != "Kept" || convs[2].Title != "export-3" || convs[3].Title != "export-4" || !convs[3].FallbackTitle {
		t.Fatalf("unexpected title changes: %+v", convs)
	}
	if len(s.calls) != 3 {
		t.Fatalf("calls=%v, want 3", s.calls)
	}
}

func TestSuggestTitles_RespectsConcurrency(t *testing.T) {
	t.Parallel()

	convs := make([]normalize.Conversation, 12)
	for i := range convs {
		convs[i] = normalize.Conversation{Title: "x", Turns: turnsOf("q"), FallbackTitle: true}
	}
	s := &stubSuggester{suggest: func(normalize.Conversation) (string, error) { return "t", nil }}
	if _, err := SuggestTitles(context.Background(), convs, s, 3); err != nil {
		t.Fatalf("SuggestTitles: %v", err)
	}
	if p := s.peak.Load(); p > 3 {
		t.Fatalf("peak concurrency=%d, want <= 3", p)
	}
}

func TestSuggestTitles_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	convs := []normalize.Conversation{{Title: "x", Turns: turnsOf("q"), FallbackTitle: true}}
	s := &stubSuggester{suggest: func(normalize.Conversation) (string, error) { return "t", nil }}
	if _, err := SuggestTitles(ctx, convs, s, 1); !errors.Is(err, context.Canceled) {
		t.Fatalf("err=%v, want context.Canceled", err)
	}
	if convs[0].Title != "x" {
		t.Fatalf("title changed on canceled run: %q", convs[0].Title)
	}
}

func TestSuggestTitles_NilSuggester(t *testing.T) {
	t.Parallel()

	convs := []normalize.Conversation{{Title: "x", Turns: turnsOf("q"), FallbackTitle: true}}
	stats, err := SuggestTitles(context.Background(), convs, nil, 4)
	if err != nil || stats.Requested != 0 {
		t.Fatalf("stats=%+v err=%v", stats, err)
	}
}
