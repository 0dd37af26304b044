package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/theimaginaryfoundation/convo-md/migration"
)

type Config struct {
	InputPath     string
	OutputDir     string
	Clean         bool
	Overwrite     bool
	FrontMatter   bool
	Language      string
	WriteIndex    bool
	Concurrency   int
	SuggestTitles bool
	Model         string
	APIKey        string
}

func (c Config) Validate() error {
	if c.InputPath == "" {
		return errors.New("missing -in")
	}
	if c.OutputDir == "" {
		return errors.New("missing -out")
	}
	if _, err := migration.LabelsFor(c.Language); err != nil {
		return fmt.Errorf("invalid -lang %q (want en or zh)", c.Language)
	}
	if c.Concurrency <= 0 {
		return errors.New("concurrency must be > 0")
	}
	if c.SuggestTitles && strings.TrimSpace(c.Model) == "" {
		return errors.New("missing -model (required with -suggest-titles)")
	}
	return nil
}

func defaultConfig() Config {
	return Config{
		Language:    migration.DefaultLanguage,
		Concurrency: 4,
		Model:       "gpt-5-mini",
	}
}
