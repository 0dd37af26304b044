package main

import "fmt"

type Config struct {
	InputPath   string
	OutputDir   string
	Pretty      bool
	Overwrite   bool
	PrintSchema bool
}

func (c Config) Validate() error {
	if c.PrintSchema {
		return nil
	}
	if c.InputPath == "" {
		return fmt.Errorf("missing -in")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("missing -out")
	}
	return nil
}

func defaultConfig() Config {
	return Config{}
}
