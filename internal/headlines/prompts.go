package headlines

import (
	"fmt"
	"strings"

	"diderot/internal/feeds"
)

const (
	selectSystemPrompt = `You are a news editor selecting the day's most significant headlines.
Categorize each selected headline as "world", "politics" or "other".
Prefer world and political stories. Avoid entertainment, sports and local news unless they have major political or world implications.
Return only valid JSON in this format: [{"title": "Headline text", "category": "world|politics|other"}]`

	generateSystemPrompt = `You are a news headline generator. Generate %d current, significant headlines that would be in the news today. Focus on world and political issues. Return only valid JSON in this format: [{"title": "Headline text", "category": "world|politics|other"}]`
)

// maxCandidates caps how many feed titles are offered for selection.
const maxCandidates = 15

func buildSelectPrompt(entries []feeds.Entry, count int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Return the top %d most significant of these headlines:\n\n", count)
	for i, e := range entries {
		if i >= maxCandidates {
			break
		}
		fmt.Fprintf(&sb, "- %s\n", e.Title)
	}
	return sb.String()
}
