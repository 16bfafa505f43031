// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package replay streams recorded assistant answers into the chat as if a
// model were generating them.
package replay

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/citelink/internal/citation"
)

// ErrEmptyTranscript is returned for a transcript with no text.
var ErrEmptyTranscript = errors.New("transcript has no text")

// Transcript is one recorded answer with its sources.
//
// TOML form:
//
//	prompt = "What are goroutines?"
//	text = "Goroutines are cheap [1][2]."
//
//	[[citations]]
//	index = 1
//	url = "https://go.dev/tour/concurrency/1"
//	title = "A Tour of Go"
type Transcript struct {
	Prompt    string            `toml:"prompt" json:"prompt"`
	Text      string            `toml:"text" json:"text"`
	Citations []citation.Record `toml:"citations" json:"citations"`
}

// Validate checks that the transcript can be replayed.
func (t *Transcript) Validate() error {
	if strings.TrimSpace(t.Text) == "" {
		return ErrEmptyTranscript
	}
	if err := citation.ValidateList(t.Citations); err != nil {
		return fmt.Errorf("transcript citations: %w", err)
	}
	return nil
}

// Load reads a transcript from a .toml or .json file.
func Load(path string) (*Transcript, error) {
	var t Transcript
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read transcript: %w", err)
		}
		if err := json.Unmarshal(data, &t); err != nil {
			return nil, fmt.Errorf("decode transcript %s: %w", path, err)
		}
	default:
		if _, err := toml.DecodeFile(path, &t); err != nil {
			return nil, fmt.Errorf("decode transcript %s: %w", path, err)
		}
	}
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return &t, nil
}

// LoadCitations reads a bare citation list from a .json array or a .toml
// file with [[citations]] tables.
func LoadCitations(path string) ([]citation.Record, error) {
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read citations: %w", err)
		}
		var records []citation.Record
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("decode citations %s: %w", path, err)
		}
		return records, nil
	}
	var t Transcript
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("decode citations %s: %w", path, err)
	}
	return t.Citations, nil
}

// Sample returns the built-in demo transcript.
func Sample() *Transcript {
	return &Transcript{
		Prompt: "How does Go handle concurrency?",
		Text: "Go builds concurrency into the language with **goroutines**, " +
			"functions that run concurrently and cost only a few kilobytes of stack [1][2]. " +
			"Goroutines talk over **channels**, typed conduits that synchronize sender " +
			"and receiver [3].\n\n" +
			"The `select` statement waits on several channel operations at once [3][4], " +
			"and the scheduler multiplexes goroutines onto OS threads [2].\n\n" +
			"For shared state, the `sync` package still offers mutexes [5].",
		Citations: []citation.Record{
			{Index: 1, URL: "https://go.dev/tour/concurrency/1", Title: "A Tour of Go: Goroutines", SiteName: "go.dev"},
			{Index: 2, URL: "https://go.dev/doc/faq#goroutines", Title: "Go FAQ: Why goroutines instead of threads?", SiteName: "go.dev"},
			{Index: 3, URL: "https://go.dev/tour/concurrency/2", Title: "A Tour of Go: Channels", SiteName: "go.dev"},
			{Index: 4, URL: "https://go.dev/ref/spec#Select_statements", Title: "The Go Programming Language Specification", SiteName: "go.dev"},
			{Index: 5, URL: "https://pkg.go.dev/sync", Title: "sync package", SiteName: "pkg.go.dev"},
			{Index: 6, URL: "https://go.dev/blog/pipelines", Title: "Go Concurrency Patterns: Pipelines", SiteName: "go.dev"},
		},
	}
}
