// Package research separates each source's verifiable facts from its opinions.
package research

import (
	"context"
	"fmt"
	"strings"

	"diderot/internal/core"
	"diderot/internal/extract"
	"diderot/internal/llm"
	"diderot/internal/logger"
)

const (
	temperature = 0.6
	maxTokens   = 800
)

// Compiler builds a ResearchEntry from a headline's articles.
type Compiler struct {
	gen llm.TextGenerator
}

// NewCompiler creates a Compiler backed by gen.
func NewCompiler(gen llm.TextGenerator) *Compiler {
	return &Compiler{gen: gen}
}

// Compile returns facts and opinions keyed by source name. Every input source is
// present in the result and unknown keys are discarded. On failure the result is
// empty and the error says why.
func (c *Compiler) Compile(ctx context.Context, articles []core.SourcedArticle) (core.ResearchEntry, error) {
	if len(articles) == 0 {
		return core.ResearchEntry{}, nil
	}

	req := llm.Prompt("research", compileSystemPrompt, buildCompilePrompt(articles), temperature, maxTokens)
	text, err := c.gen.Generate(ctx, req)
	if err != nil {
		logger.Warn("Research compilation failed", "stage", "research", "articles", len(articles), "error", err.Error())
		return core.ResearchEntry{}, fmt.Errorf("compile research: %w", err)
	}

	var raw map[string]core.SourceResearch
	if err := extract.Decode(text, &raw); err != nil {
		logger.Warn("Research compilation returned malformed output", "stage", "research", "error", err.Error())
		return core.ResearchEntry{}, fmt.Errorf("compile research: %w", err)
	}

	return Validate(raw, articles), nil
}

// Validate keeps only entries whose key names an input source, matched
// case-insensitively, and adds an empty entry for every source the model skipped.
func Validate(raw map[string]core.SourceResearch, articles []core.SourcedArticle) core.ResearchEntry {
	byKey := make(map[string]core.SourceResearch, len(raw))
	for k, v := range raw {
		byKey[normalizeKey(k)] = v
	}

	entry := make(core.ResearchEntry, len(articles))
	for _, a := range articles {
		if _, ok := entry[a.Source]; ok {
			continue
		}
		r := byKey[normalizeKey(a.Source)]
		entry[a.Source] = core.SourceResearch{
			Facts:    clean(r.Facts),
			Opinions: clean(r.Opinions),
		}
	}
	return entry
}

func normalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// clean trims statements and drops empty ones. The result is never nil.
func clean(items []string) []string {
	out := make([]string, 0, len(items))
	for _, s := range items {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
