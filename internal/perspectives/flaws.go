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

// FindFlaws critiques every bucket of the determination. Unknown bucket keys are
// dropped. On failure the result is empty and the error says why.
func (s *Synthesizer) FindFlaws(ctx context.Context, det core.Determination) (map[core.Position]core.Flaws, error) {
	out := make(map[core.Position]core.Flaws)
	if len(det.Perspectives) == 0 {
		return out, nil
	}

	req := llm.Prompt("flaws", flawsSystemPrompt, buildFlawsPrompt(det), temperature, maxTokens)
	text, err := s.gen.Generate(ctx, req)
	if err != nil {
		logger.Warn("Flaw analysis failed", "stage", "flaws", "error", err.Error())
		return out, fmt.Errorf("find flaws: %w", err)
	}

	var raw map[string]core.Flaws
	if err := extract.Decode(text, &raw); err != nil {
		return out, fmt.Errorf("find flaws: %w", err)
	}

	for key, f := range raw {
		p, ok := core.ParsePosition(strings.TrimSuffix(strings.ToLower(strings.TrimSpace(key)), "_perspective"))
		if !ok {
			continue
		}
		out[p] = core.Flaws{
			Flaws:          cleanList(f.Flaws),
			MissingContext: strings.TrimSpace(f.MissingContext),
		}
	}
	return out, nil
}

func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, s := range items {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
