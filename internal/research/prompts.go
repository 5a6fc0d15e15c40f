package research

import (
	"fmt"
	"strings"

	"diderot/internal/core"
)

const compileSystemPrompt = `You are a research compiler that analyzes news articles to separate facts from opinions.

For each source:
1. Extract VERIFIABLE FACTS (dates, numbers, quotes, events)
2. Identify OPINIONS and INTERPRETATIONS (editorial framing, analysis, commentary)

Return ONLY a JSON object keyed by the exact source name:
{
  "CNN": {"facts": ["fact1", "fact2"], "opinions": ["opinion1"]},
  "Fox News": {"facts": ["fact1"], "opinions": ["opinion1", "opinion2"]}
}

Use short, self-contained statements. State each fact the same way across sources when they agree.`

// buildCompilePrompt lists every article with its source name, headline and any extracted body.
func buildCompilePrompt(articles []core.SourcedArticle) string {
	var b strings.Builder
	b.WriteString("Articles:\n")
	for i, a := range articles {
		fmt.Fprintf(&b, "\n%d. Source: %s\n   Title: %s\n   URL: %s\n", i+1, a.Source, a.Title, a.URL)
		if a.Content != "" {
			fmt.Fprintf(&b, "   Content: %s\n", a.Content)
		}
	}
	return b.String()
}
