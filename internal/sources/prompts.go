package sources

import (
	"fmt"
	"strings"
)

const findSystemPrompt = `You are an article finder that gathers news coverage from across the political spectrum.
For the headline, list %d-%d relevant articles and include left, center and right perspectives.
Prefer these outlets:
%s
Return only valid JSON in this format: [{"source": "Source Name", "title": "Article Title", "url": "https://example.com/article", "perspective": "left|center|right"}]`

func buildFindPrompt(minArticles, maxArticles int) string {
	var sb strings.Builder
	for _, o := range Roster {
		fmt.Fprintf(&sb, "- %s (%s): %s\n", o.Name, o.Domain, o.Position)
	}
	return fmt.Sprintf(findSystemPrompt, minArticles, maxArticles, sb.String())
}
