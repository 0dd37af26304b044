package migration

import (
	"errors"
	"fmt"
	"os"

	"github.com/theimaginaryfoundation/convo-md/migration/fileutils"
	"github.com/theimaginaryfoundation/convo-md/migration/normalize"
)

// IndexFileName is the name of the index written next to converted files.
const IndexFileName = "index.jsonl"

// IndexRecord is a single row in index.jsonl mapping a conversation to its output file.
type IndexRecord struct {
	Title          string `json:"title"`
	File           string `json:"file"`
	Turns          int    `json:"turns"`
	UserTurns      int    `json:"user_turns"`
	AssistantTurns int    `json:"assistant_turns"`
}

// BuildIndexRecord creates the index row for conv written to file (a name relative to the
// output directory).
func BuildIndexRecord(conv normalize.Conversation, file string) IndexRecord {
	user, assistant := countTurns(conv.Turns)
	return IndexRecord{
		Title:          conv.Title,
		File:           file,
		Turns:          len(conv.Turns),
		UserTurns:      user,
		AssistantTurns: assistant,
	}
}

// WriteIndex writes records as JSON lines to path.
func WriteIndex(path string, records []IndexRecord, overwrite bool) error {
	if path == "" {
		return errors.New("WriteIndex: path is empty")
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("WriteIndex: file exists: %s", path)
		}
	}
	if err := fileutils.WriteJSONLinesAtomic(path, records); err != nil {
		return fmt.Errorf("WriteIndex: %w", err)
	}
	return nil
}
