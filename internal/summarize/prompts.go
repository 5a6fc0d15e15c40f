package summarize

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"diderot/internal/core"
)

const neutralSystemPrompt = `You are a neutral news summarizer. Write a factual, objective summary of the headline based on the provided sources. Focus on verifiable facts only. Keep it concise (2-3 sentences).

Do not include opinions, framing or evaluative language from any source. Return only the summary text.`

// BuildSummaryPrompt lists the headline, the corroborated facts and the source titles.
// Article bodies and opinions are deliberately left out.
func BuildSummaryPrompt(title string, sources []core.SourcedArticle, facts []string) string {
	var prompt strings.Builder
	fmt.Fprintf(&prompt, "Headline: %s\n\nSources:\n", title)
	for _, s := range sources {
		fmt.Fprintf(&prompt, "- %s: %s\n", s.Source, s.Title)
	}
	if len(facts) > 0 {
		prompt.WriteString("\nCorroborated facts:\n")
		for _, f := range facts {
			fmt.Fprintf(&prompt, "- %s\n", f)
		}
	}
	return prompt.String()
}

var (
	labelPrefix = regexp.MustCompile(`(?i)^[*_\s]*(neutral summary|summary)[*_\s]*:[*_\s]*`)
	sentenceEnd = regexp.MustCompile(`[.!?]["')\]]*(\s+|$)`)
)

// ParseSummaryResponse strips labels, markdown emphasis and wrapping quotes from a
// generated summary and joins it onto one line.
func ParseSummaryResponse(response string) string {
	summary := strings.Join(strings.Fields(response), " ")
	summary = labelPrefix.ReplaceAllString(summary, "")
	summary = strings.Trim(summary, "*_ ")
	if len(summary) >= 2 && summary[0] == '"' && summary[len(summary)-1] == '"' {
		summary = summary[1 : len(summary)-1]
	}
	return strings.TrimSpace(summary)
}

// abbreviations end with a period without ending a sentence.
var abbreviations = map[string]bool{
	"mr": true, "mrs": true, "ms": true, "dr": true, "prof": true, "sr": true, "jr": true, "st": true,
	"sen": true, "rep": true, "gov": true, "pres": true, "gen": true, "lt": true, "col": true, "sgt": true,
	"inc": true, "corp": true, "co": true, "ltd": true, "dept": true, "vs": true, "etc": true,
	"jan": true, "feb": true, "mar": true, "apr": true, "jun": true, "jul": true, "aug": true,
	"sep": true, "sept": true, "oct": true, "nov": true, "dec": true,
}

// LimitSentences keeps at most n sentences of text.
func LimitSentences(text string, n int) string {
	if n <= 0 {
		return text
	}
	var ends []int
	for _, m := range sentenceEnd.FindAllStringIndex(text, -1) {
		if !endsSentence(text, m[0], m[1]) {
			continue
		}
		ends = append(ends, m[1])
	}
	if len(ends) <= n {
		return text
	}
	return strings.TrimSpace(text[:ends[n-1]])
}

// endsSentence reports whether the punctuation at text[start] closes a sentence.
// Periods after initials ("U.S.") or known abbreviations ("Sen.") and periods
// followed by a lowercase word do not.
func endsSentence(text string, start, end int) bool {
	if text[start] != '.' {
		return true
	}
	if next, _ := utf8.DecodeRuneInString(text[end:]); end < len(text) && unicode.IsLower(next) {
		return false
	}

	word := text[:start]
	if i := strings.LastIndexFunc(word, unicode.IsSpace); i >= 0 {
		word = word[i+1:]
	}
	word = strings.TrimLeft(word, "\"'([")
	if abbreviations[strings.ToLower(strings.ReplaceAll(word, ".", ""))] {
		return false
	}
	if i := strings.LastIndex(word, "."); i >= 0 {
		word = word[i+1:]
	}
	if r, size := utf8.DecodeRuneInString(word); size == len(word) && unicode.IsLetter(r) {
		return false
	}
	return true
}
