// Package keyphrase is the learned alternative to the lexicon aspect
// tagger: it asks a chat model for the product aspects mentioned in a
// review and caps the deduplicated result.
package keyphrase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"

	"github.com/feedlens/aspect-miner/internal/enrich/aspects"
)

const (
	maxAspects  = 5
	maxInputLen = 2000

	systemPrompt = "You extract short product-aspect keyphrases from user feedback. " +
		"Respond with a JSON array of at most five lowercase keyphrases " +
		"(one or two words each), most salient first. Respond with [] when " +
		"nothing product-related is mentioned."
)

// Extractor calls a chat model and falls back to the lexicon tagger when
// the call or the response parse fails, keeping enrichment deterministic
// offline.
type Extractor struct {
	client   *openai.Client
	model    string
	fallback *aspects.Tagger
	logger   *zerolog.Logger
}

func New(apiKey, model string, fallback *aspects.Tagger, logger *zerolog.Logger) *Extractor {
	return &Extractor{
		client:   openai.NewClient(apiKey),
		model:    model,
		fallback: fallback,
		logger:   logger,
	}
}

// Aspects returns up to five deduplicated keyphrases ranked by salience.
func (e *Extractor) Aspects(ctx context.Context, text string) ([]aspects.Aspect, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	runes := []rune(text)
	if len(runes) > maxInputLen {
		text = string(runes[:maxInputLen])
	}

	phrases, err := e.extract(ctx, text)
	if err != nil {
		e.logger.Warn().Err(err).Msg("keyphrase extraction failed, using lexicon fallback")

		return e.fallback.Aspects(ctx, text)
	}

	return phrases, nil
}

func (e *Extractor) extract(ctx context.Context, text string) ([]aspects.Aspect, error) {
	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		Temperature: 0,
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("chat completion: empty response")
	}

	return parsePhrases(resp.Choices[0].Message.Content)
}

func parsePhrases(content string) ([]aspects.Aspect, error) {
	content = strings.TrimSpace(content)

	// Models occasionally wrap the array in a code fence.
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var phrases []string
	if err := json.Unmarshal([]byte(content), &phrases); err != nil {
		return nil, fmt.Errorf("parse keyphrases: %w", err)
	}

	seen := make(map[string]struct{}, len(phrases))
	out := make([]aspects.Aspect, 0, maxAspects)

	for rank, p := range phrases {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}

		if _, dup := seen[p]; dup {
			continue
		}

		seen[p] = struct{}{}
		// Salience rank stands in for a hit count so the two extractor
		// strategies produce comparable results.
		out = append(out, aspects.Aspect{Label: p, Hits: len(phrases) - rank})

		if len(out) >= maxAspects {
			break
		}
	}

	return out, nil
}
