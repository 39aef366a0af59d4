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


package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/gabrieldave/ingesta/ai"
	"github.com/gabrieldave/ingesta/core"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// maxExcerptChars caps the text sent to the classifier. Title, author, and
// category are almost always visible in the opening pages.
const maxExcerptChars = 2000

// UnknownAuthor is the value assigned when the excerpt gives no author hint.
const UnknownAuthor = "Desconocido"

// MetadataClassifier implements ai.MetadataClassifier using OpenAI-compatible chat APIs.
type MetadataClassifier struct {
	client llms.Model
	logger *slog.Logger
}

// newMetadataClassifier is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newMetadataClassifier(config *ai.Config) (*MetadataClassifier, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.ClassifierHost),
		openai.WithToken(config.APIKey),
		openai.WithModel(config.ClassifierModel),
	)
	if err != nil {
		return nil, err
	}

	return &MetadataClassifier{
		client: client,
		logger: slog.Default().With("component", "openai-classifier"),
	}, nil
}

// NewMetadataClassifier creates a new classifier using the provided configuration.
//
// Returns ai.MetadataClassifier interface to enforce abstraction.
func NewMetadataClassifier(config *ai.Config) (ai.MetadataClassifier, error) {
	return newMetadataClassifier(config)
}

// Classify extracts title, author, and category from a document excerpt.
// Malformed model output is retried up to 3 times; if every attempt fails to
// parse, the error wraps ai.ErrParseFailure.
func (c *MetadataClassifier) Classify(ctx context.Context, excerpt string) (*ai.DocumentMetadata, error) {
	excerpt = sanitizeText(excerpt)
	if len(excerpt) > maxExcerptChars {
		excerpt = excerpt[:maxExcerptChars]
	}

	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(buildSystemPrompt()),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(buildUserPrompt(excerpt)),
			},
		},
	}

	// Try up to 3 times in case of malformed JSON
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		response, err := c.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
		if err != nil {
			c.logger.Error("failed to generate content", "attempt", attempt+1, "err", err)
			return nil, err
		}

		if len(response.Choices) < 1 {
			lastErr = fmt.Errorf("no choices returned from model")
			continue
		}

		meta, err := parseMetadata(response.Choices[0].Content)
		if err != nil {
			lastErr = err
			c.logger.Warn("error parsing classifier response",
				"attempt", attempt+1,
				"err", err)
			continue
		}

		c.logger.Debug("classified document",
			"title", meta.Title,
			"category", meta.Category)
		return meta, nil
	}

	return nil, fmt.Errorf("%w: %v", ai.ErrParseFailure, lastErr)
}

// parseMetadata turns a raw model response into validated metadata. The
// response may carry markdown fences, stray control characters, or unquoted
// keys; all of those are repaired before unmarshaling.
func parseMetadata(raw string) (*ai.DocumentMetadata, error) {
	text := strings.TrimSpace(raw)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	text = sanitizeText(text)
	text = repairJSON(text)

	var meta ai.DocumentMetadata
	if err := json.Unmarshal([]byte(text), &meta); err != nil {
		return nil, err
	}

	meta.Title = strings.TrimSpace(meta.Title)
	meta.Author = strings.TrimSpace(meta.Author)
	meta.Category = strings.TrimSpace(meta.Category)

	if meta.Author == "" {
		meta.Author = UnknownAuthor
	}
	// A category outside the closed vocabulary is treated as no category.
	if !slices.Contains(core.Categories, meta.Category) {
		meta.Category = core.CategoryGeneral
	}
	return &meta, nil
}
