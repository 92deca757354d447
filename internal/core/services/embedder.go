package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/language"

	"github.com/custodia-labs/stash/internal/core/ports/driven"
	"github.com/custodia-labs/stash/internal/logger"
)

// scriptsByLanguage maps a language base to the script its text is written
// in. Languages not listed are treated as Latin-script.
var scriptsByLanguage = map[string][]*unicode.RangeTable{
	"ko": {unicode.Hangul},
	"ja": {unicode.Hiragana, unicode.Katakana, unicode.Han},
	"zh": {unicode.Han},
	"ru": {unicode.Cyrillic},
	"uk": {unicode.Cyrillic},
	"el": {unicode.Greek},
	"ar": {unicode.Arabic},
	"he": {unicode.Hebrew},
	"th": {unicode.Thai},
}

// Embedder picks an embedding model for a piece of text. The primary model
// is tried first when the text is written in its language; the fallback
// model is tried when the primary is skipped or yields nothing.
type Embedder struct {
	primary     driven.EmbeddingService
	primaryLang language.Tag
	fallback    driven.EmbeddingService
}

// NewEmbedder creates an embedder. Either service may be nil but not both.
// An empty or unparseable primaryLanguage makes the primary model apply to
// all text.
func NewEmbedder(
	primary driven.EmbeddingService,
	primaryLanguage string,
	fallback driven.EmbeddingService,
) *Embedder {
	tag := language.Und
	if primaryLanguage != "" {
		if parsed, err := language.Parse(primaryLanguage); err == nil {
			tag = parsed
		} else {
			logger.Warn("Ignoring invalid embedding language %q: %v", primaryLanguage, err)
		}
	}
	return &Embedder{
		primary:     primary,
		primaryLang: tag,
		fallback:    fallback,
	}
}

// Embed returns a vector for text. Blank text returns an empty vector
// without calling any model. An error is only returned when every model
// tried failed.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return []float32{}, nil
	}

	candidates := e.candidates(text)
	if len(candidates) == 0 {
		return []float32{}, nil
	}

	var errs []error
	for _, svc := range candidates {
		vector, err := svc.Embed(ctx, text)
		if err != nil {
			logger.Debug("Embedding model %s failed: %v", svc.ModelName(), err)
			errs = append(errs, fmt.Errorf("%s: %w", svc.ModelName(), err))
			continue
		}
		if len(vector) > 0 {
			return vector, nil
		}
		logger.Debug("Embedding model %s returned nothing", svc.ModelName())
	}

	if len(errs) == len(candidates) {
		return nil, errors.Join(errs...)
	}
	return []float32{}, nil
}

// candidates lists the models to try for text, in order.
func (e *Embedder) candidates(text string) []driven.EmbeddingService {
	var out []driven.EmbeddingService
	if e.primary != nil && e.matchesPrimary(text) {
		out = append(out, e.primary)
	}
	if e.fallback != nil {
		out = append(out, e.fallback)
	}
	return out
}

// matchesPrimary reports whether text contains letters of the primary
// language's script.
func (e *Embedder) matchesPrimary(text string) bool {
	if e.primaryLang == language.Und {
		return true
	}
	base, _ := e.primaryLang.Base()
	tables, ok := scriptsByLanguage[base.String()]
	if !ok {
		tables = []*unicode.RangeTable{unicode.Latin}
	}
	for _, r := range text {
		if unicode.IsOneOf(tables, r) {
			return true
		}
	}
	return false
}
