package perspectives

import (
	"context"
	"fmt"
	"strings"

	"diderot/internal/core"
	"diderot/internal/extract"
	"diderot/internal/llm"
	"diderot/internal/logger"
)

type rawConsolidation struct {
	Perspectives []struct {
		Name          string   `json:"name"`
		Justification string   `json:"justification"`
		Flaws         []string `json:"flaws"`
		Position      string   `json:"position"`
	} `json:"perspectives"`
}

// Consolidate names and orders the perspectives left, center, right. Entries without
// a recognised position are kept after the positioned ones. When the generated
// consolidation is unusable the perspectives are derived from det and flaws and the
// error says why.
func (s *Synthesizer) Consolidate(ctx context.Context, det core.Determination, flaws map[core.Position]core.Flaws) ([]core.Perspective, error) {
	derived := Derive(det, flaws)
	if len(derived) == 0 {
		return derived, nil
	}

	req := llm.Prompt("consolidate", consolidateSystemPrompt, buildConsolidatePrompt(det, flaws), temperature, maxTokens)
	text, err := s.gen.Generate(ctx, req)
	if err != nil {
		logger.Warn("Perspective consolidation failed", "stage", "consolidate", "error", err.Error())
		return derived, fmt.Errorf("consolidate: %w", err)
	}

	var raw rawConsolidation
	if err := extract.Decode(text, &raw); err != nil {
		return derived, fmt.Errorf("consolidate: %w", err)
	}

	out := make([]core.Perspective, 0, len(raw.Perspectives))
	for _, r := range raw.Perspectives {
		name := strings.TrimSpace(r.Name)
		if name == "" {
			continue
		}
		p := core.Perspective{
			Name:          name,
			Justification: strings.TrimSpace(r.Justification),
			Flaws:         cleanList(r.Flaws),
		}
		if pos, ok := core.ParsePosition(r.Position); ok {
			p.Position = pos
		}
		out = append(out, p)
	}
	if len(out) == 0 {
		return derived, fmt.Errorf("consolidate: %w: no named perspectives", core.ErrMalformedGeneration)
	}
	return core.SortPerspectives(out), nil
}

// Derive builds one perspective per non-empty bucket, in bucket order.
func Derive(det core.Determination, flaws map[core.Position]core.Flaws) []core.Perspective {
	out := []core.Perspective{}
	for _, p := range core.Positions {
		view, ok := det.Perspectives[p]
		if !ok || (len(view.Sources) == 0 && view.Justification == "") {
			continue
		}
		justification := view.Justification
		if justification == "" {
			justification = "Reported by " + strings.Join(view.Sources, ", ") + "."
		}
		f := flaws[p]
		list := append([]string{}, f.Flaws...)
		if f.MissingContext != "" {
			list = append(list, "Missing context: "+f.MissingContext)
		}
		out = append(out, core.Perspective{
			Name:          FallbackNames[p],
			Justification: justification,
			Flaws:         list,
			Position:      p,
		})
	}
	return out
}
