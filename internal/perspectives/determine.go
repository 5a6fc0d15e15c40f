package perspectives

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"diderot/internal/core"
	"diderot/internal/extract"
	"diderot/internal/llm"
	"diderot/internal/logger"
)

type rawDetermination struct {
	SolidFacts   []string                   `json:"solid_facts"`
	Perspectives map[string]core.BucketView `json:"perspectives"`
}

// Determine identifies corroborated facts and groups sources into buckets. The
// returned Determination is always usable; a non-nil error reports that the
// generated determination was replaced by the cross-referenced one.
func (s *Synthesizer) Determine(ctx context.Context, entry core.ResearchEntry, articles []core.SourcedArticle) (core.Determination, error) {
	fallback := s.crossReference(entry, articles)
	if len(entry) == 0 {
		return fallback, nil
	}

	req := llm.Prompt("determine", buildDetermineSystemPrompt(s.threshold), buildDeterminePrompt(entry, articles), temperature, maxTokens)
	text, err := s.gen.Generate(ctx, req)
	if err != nil {
		logger.Warn("Determination failed", "stage", "determine", "error", err.Error())
		return fallback, fmt.Errorf("determine: %w", err)
	}

	var raw rawDetermination
	if err := extract.Decode(text, &raw); err != nil {
		return fallback, fmt.Errorf("determine: %w", err)
	}

	det := core.Determination{
		SolidFacts:   mergeFacts(s.acceptedFacts(raw.SolidFacts, entry), fallback.SolidFacts),
		Perspectives: make(map[core.Position]core.BucketView, len(core.Positions)),
	}
	for label, view := range raw.Perspectives {
		p, ok := core.ParsePosition(label)
		if !ok {
			continue
		}
		view.Sources = knownSources(view.Sources, entry)
		view.Justification = strings.TrimSpace(view.Justification)
		if len(view.Sources) == 0 && view.Justification == "" {
			continue
		}
		det.Perspectives[p] = view
	}
	for p, view := range fallback.Perspectives {
		if _, ok := det.Perspectives[p]; !ok {
			det.Perspectives[p] = view
		}
	}
	return det, nil
}

// crossReference builds a Determination without a generative call: solid facts are
// those reported by at least threshold sources, and buckets group sources by their
// known position with their opinions as justification.
func (s *Synthesizer) crossReference(entry core.ResearchEntry, articles []core.SourcedArticle) core.Determination {
	det := core.Determination{
		SolidFacts:   Corroborate(entry, s.threshold),
		Perspectives: make(map[core.Position]core.BucketView),
	}
	for _, name := range sortedSources(entry) {
		p := positionOf(name, articles)
		if p == "" {
			continue
		}
		view := det.Perspectives[p]
		view.Sources = append(view.Sources, name)
		if opinions := entry[name].Opinions; len(opinions) > 0 {
			if view.Justification != "" {
				view.Justification += " "
			}
			view.Justification += strings.Join(opinions, " ")
		}
		det.Perspectives[p] = view
	}
	return det
}

// acceptedFacts keeps generated solid facts only when enough sources reported facts
// at all to make corroboration possible. A kept fact must match a fact reported by
// some source and must not match any source's opinion.
func (s *Synthesizer) acceptedFacts(facts []string, entry core.ResearchEntry) []string {
	reporting := 0
	reported := make(map[string]bool)
	opinions := make(map[string]bool)
	for _, r := range entry {
		if len(r.Facts) > 0 {
			reporting++
		}
		for _, f := range r.Facts {
			reported[normalizeFact(f)] = true
		}
		for _, o := range r.Opinions {
			opinions[normalizeFact(o)] = true
		}
	}
	if reporting < s.threshold {
		return nil
	}

	var out []string
	for _, f := range facts {
		key := normalizeFact(f)
		if key == "" || !reported[key] || opinions[key] {
			logger.Debug("Dropping unsupported solid fact", "fact", f)
			continue
		}
		out = append(out, f)
	}
	return out
}

// Corroborate returns facts whose normalized text appears in at least threshold
// distinct sources, in first-seen order over sources sorted by name.
func Corroborate(entry core.ResearchEntry, threshold int) []string {
	if threshold < 1 {
		threshold = 1
	}
	counts := make(map[string]int)
	first := make(map[string]string)
	var order []string

	for _, name := range sortedSources(entry) {
		seen := make(map[string]bool)
		for _, fact := range entry[name].Facts {
			key := normalizeFact(fact)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			if _, ok := first[key]; !ok {
				first[key] = strings.TrimSpace(fact)
				order = append(order, key)
			}
			counts[key]++
		}
	}

	out := []string{}
	for _, key := range order {
		if counts[key] >= threshold {
			out = append(out, first[key])
		}
	}
	return out
}

// normalizeFact lowercases, collapses whitespace and strips trailing punctuation.
func normalizeFact(s string) string {
	s = strings.Join(strings.Fields(strings.ToLower(s)), " ")
	return strings.TrimRightFunc(s, unicode.IsPunct)
}

func mergeFacts(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	out := []string{}
	for _, list := range [][]string{a, b} {
		for _, f := range list {
			key := normalizeFact(f)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, strings.TrimSpace(f))
		}
	}
	return out
}

// knownSources drops names that are not research keys, matching case-insensitively.
func knownSources(names []string, entry core.ResearchEntry) []string {
	byKey := make(map[string]string, len(entry))
	for name := range entry {
		byKey[strings.ToLower(name)] = name
	}
	out := []string{}
	seen := make(map[string]bool)
	for _, n := range names {
		name, ok := byKey[strings.ToLower(strings.TrimSpace(n))]
		if !ok || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}
