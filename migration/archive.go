package migration

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/theimaginaryfoundation/convo-md/migration/normalize"
	"github.com/tidwall/gjson"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// LoadArchive reads a conversation export and returns the parsed document together with the
// input stem (file name without extension), which callers use as the fallback title.
//
// The whole file is read at once: shape detection needs to see the entire document.
func LoadArchive(path string) (gjson.Result, string, error) {
	if path == "" {
		return gjson.Result{}, "", errors.New("LoadArchive: path is empty")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return gjson.Result{}, "", fmt.Errorf("LoadArchive: read input: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	if !gjson.ValidBytes(data) {
		return gjson.Result{}, "", fmt.Errorf("LoadArchive: %s: %w", path, normalize.ErrInvalidJSON)
	}
	return gjson.ParseBytes(data), archiveStem(path), nil
}

// LoadConversations loads path and normalizes it into conversations.
func LoadConversations(path string) ([]normalize.Conversation, string, error) {
	doc, stem, err := LoadArchive(path)
	if err != nil {
		return nil, "", err
	}
	convs, err := normalize.Normalize(doc, stem)
	if err != nil {
		return nil, "", fmt.Errorf("LoadConversations: %s: %w", path, err)
	}
	return convs, stem, nil
}

func archiveStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
