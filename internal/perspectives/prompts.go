package perspectives

import (
	"encoding/json"
	"fmt"
	"strings"

	"diderot/internal/core"
)

const determineSystemPrompt = `You are a determinator that identifies solid truths and maps perspectives.

1. Identify FACTS that are consistent across multiple sources
2. Map each source to its political perspective (left, center or right)
3. Explain the justification behind each perspective

Return ONLY JSON:
{
  "solid_facts": ["fact1", "fact2"],
  "perspectives": {
    "left": {"sources": ["CNN"], "justification": "..."},
    "center": {"sources": ["Reuters"], "justification": "..."},
    "right": {"sources": ["Fox News"], "justification": "..."}
  }
}

Only list facts reported by at least %d sources. Use source names exactly as given.`

const flawsSystemPrompt = `You are an analyst that identifies weaknesses in each perspective.

For each perspective:
1. Identify logical fallacies
2. Note missing context or counterarguments
3. Point out bias or selective reporting

Return ONLY JSON:
{
  "left_perspective": {"flaws": ["flaw1"], "missing_context": "..."},
  "center_perspective": {"flaws": ["flaw1"], "missing_context": "..."},
  "right_perspective": {"flaws": ["flaw1"], "missing_context": "..."}
}

Be constructive. Omit perspectives that have no sources.`

const consolidateSystemPrompt = `You are a birds-eye analyst that consolidates perspectives into a single overview.

1. Name each perspective after its actual policy stance, not a generic label
2. Order perspectives left, center, right
3. Combine the justification and flaws of each perspective

Return ONLY JSON:
{
  "perspectives": [
    {"name": "Progressive Reform Perspective", "justification": "...", "flaws": ["..."], "position": "left"},
    {"name": "Centrist Pragmatic Perspective", "justification": "...", "flaws": ["..."], "position": "center"},
    {"name": "Conservative Traditional Perspective", "justification": "...", "flaws": ["..."], "position": "right"}
  ]
}`

func buildDetermineSystemPrompt(threshold int) string {
	return fmt.Sprintf(determineSystemPrompt, threshold)
}

func buildDeterminePrompt(entry core.ResearchEntry, articles []core.SourcedArticle) string {
	var b strings.Builder
	b.WriteString("Sources:\n")
	for _, name := range sortedSources(entry) {
		label := positionOf(name, articles)
		if label == "" {
			label = "unknown"
		}
		fmt.Fprintf(&b, "- %s (%s)\n", name, label)
	}
	b.WriteString("\nResearch:\n")
	b.WriteString(mustJSON(entry))
	return b.String()
}

func buildFlawsPrompt(det core.Determination) string {
	return "Perspectives:\n" + mustJSON(det)
}

func buildConsolidatePrompt(det core.Determination, flaws map[core.Position]core.Flaws) string {
	var b strings.Builder
	b.WriteString("Determination:\n")
	b.WriteString(mustJSON(det))
	b.WriteString("\n\nFlaws:\n")
	b.WriteString(mustJSON(flaws))
	return b.String()
}

func mustJSON(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}
