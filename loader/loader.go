// Copyright 2025 Gabriel Dave
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package loader extracts plain text from document files. Extraction is
// dispatched on file extension; formats without a working extractor return
// ErrUnsupportedFormat so the caller can log and skip the file instead of
// aborting the run.
package loader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tmc/langchaingo/documentloaders"
	"github.com/tmc/langchaingo/schema"
)

// ErrUnsupportedFormat reports a file extension with no text extractor.
var ErrUnsupportedFormat = errors.New("loader: unsupported file format")

// Loader extracts the full text of a document file.
type Loader interface {
	// Load reads the file at path and returns its plain text. An empty
	// string with a nil error means the file produced no extractable text.
	Load(ctx context.Context, path string) (string, error)
}

// FileLoader implements Loader with per-extension extraction.
type FileLoader struct{}

var _ Loader = (*FileLoader)(nil)

// New creates a FileLoader.
func New() *FileLoader {
	return &FileLoader{}
}

// Load dispatches on the file extension.
func (l *FileLoader) Load(ctx context.Context, path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md":
		return loadText(path)
	case ".pdf":
		return loadPDF(ctx, path)
	case ".html", ".htm":
		return loadHTML(ctx, path)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

func loadText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

func loadPDF(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}

	docs, err := documentloaders.NewPDF(f, info.Size()).Load(ctx)
	if err != nil {
		return "", fmt.Errorf("extract pdf %s: %w", path, err)
	}
	return joinPages(docs), nil
}

func loadHTML(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	docs, err := documentloaders.NewHTML(f).Load(ctx)
	if err != nil {
		return "", fmt.Errorf("extract html %s: %w", path, err)
	}
	return joinPages(docs), nil
}

// joinPages concatenates per-page extraction results into one text.
func joinPages(docs []schema.Document) string {
	parts := make([]string, 0, len(docs))
	for _, doc := range docs {
		if strings.TrimSpace(doc.PageContent) == "" {
			continue
		}
		parts = append(parts, doc.PageContent)
	}
	return strings.Join(parts, "\n\n")
}
