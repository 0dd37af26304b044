package migration

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

const (
	// MaxFilenameRunes bounds the base name CleanFilename produces.
	MaxFilenameRunes = 120
	// MaxFilenameBytes bounds the encoded base name, leaving room under the common 255-byte
	// limit for a collision suffix and the extension.
	MaxFilenameBytes = 200
)

var unsafeFilenameRun = regexp.MustCompile(`[\\/:*?"<>|\r\n\t]+`)

// CleanFilename turns a conversation title into a file base name (no extension). Path and
// shell-hostile characters become spaces, the text is NFC-normalized, whitespace is collapsed,
// leading and trailing spaces and dots are removed, and the result is cut to MaxFilenameRunes
// runes and MaxFilenameBytes bytes. An empty result falls back to fallback.
func CleanFilename(raw, fallback string) string {
	text := strings.TrimSpace(raw)
	if text == "" {
		return fallback
	}
	text = norm.NFC.String(text)
	text = unsafeFilenameRun.ReplaceAllString(text, " ")
	text = strings.Trim(strings.Join(strings.Fields(text), " "), " .")
	text = capFilename(text, " .")
	if text == "" {
		return fallback
	}
	return text
}

func sanitizeFilenameComponent(s string) string {
	s = strings.TrimSpace(norm.NFC.String(s))
	if s == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '-' || r == '_' || r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}

	out := b.String()
	out = strings.Trim(out, "._-")
	return capFilename(out, "._-")
}

// capFilename cuts s on a rune boundary to MaxFilenameRunes runes and MaxFilenameBytes bytes,
// then strips cutset from the new end.
func capFilename(s, cutset string) string {
	cut := false
	if r := []rune(s); len(r) > MaxFilenameRunes {
		s = string(r[:MaxFilenameRunes])
		cut = true
	}
	if len(s) > MaxFilenameBytes {
		end := MaxFilenameBytes
		for end > 0 && !utf8.RuneStart(s[end]) {
			end--
		}
		s = s[:end]
		cut = true
	}
	if cut {
		s = strings.TrimRight(s, cutset)
	}
	return s
}

// nameAllocator hands out unique file names for a run. The first use of a base keeps it as is;
// later uses get the suffix produced by format. Names are compared case-insensitively so the
// result is safe on case-folding file systems.
type nameAllocator struct {
	ext    string
	format func(base string, n int) string
	counts map[string]int
	taken  map[string]struct{}
}

func newNameAllocator(ext string, format func(base string, n int) string) *nameAllocator {
	return &nameAllocator{
		ext:    ext,
		format: format,
		counts: make(map[string]int),
		taken:  make(map[string]struct{}),
	}
}

// markdownNames suffixes duplicates as "name (2).md".
func markdownNames() *nameAllocator {
	return newNameAllocator(".md", func(base string, n int) string {
		return fmt.Sprintf("%s (%d)", base, n)
	})
}

// jsonNames suffixes duplicates as "name-2.json".
func jsonNames() *nameAllocator {
	return newNameAllocator(".json", func(base string, n int) string {
		return fmt.Sprintf("%s-%d", base, n)
	})
}

func (a *nameAllocator) next(base string) string {
	for {
		n := a.counts[base] + 1
		a.counts[base] = n
		name := base
		if n > 1 {
			name = a.format(base, n)
		}
		name += a.ext
		key := strings.ToLower(name)
		if _, ok := a.taken[key]; ok {
			continue
		}
		a.taken[key] = struct{}{}
		return name
	}
}
