package core

import (
	"sort"
	"strings"
	"time"
)

// Category classifies a headline. Only world and politics headlines receive perspective analysis.
type Category string

const (
	CategoryWorld    Category = "world"
	CategoryPolitics Category = "politics"
	CategoryOther    Category = "other"
)

// NormalizeCategory maps a free-form label onto a known category. Unknown labels become CategoryOther.
func NormalizeCategory(label string) Category {
	switch Category(strings.ToLower(strings.TrimSpace(label))) {
	case CategoryWorld:
		return CategoryWorld
	case CategoryPolitics:
		return CategoryPolitics
	default:
		return CategoryOther
	}
}

// NeedsPerspectives reports whether headlines of this category go through perspective synthesis.
func (c Category) NeedsPerspectives() bool {
	return c == CategoryWorld || c == CategoryPolitics
}

// Position is the political leaning attached to an outlet or a perspective.
type Position string

const (
	PositionLeft   Position = "left"
	PositionCenter Position = "center"
	PositionRight  Position = "right"
)

// Positions lists the three buckets in display order.
var Positions = []Position{PositionLeft, PositionCenter, PositionRight}

// ParsePosition returns the position for a label and false when the label is unknown.
func ParsePosition(label string) (Position, bool) {
	switch Position(strings.ToLower(strings.TrimSpace(label))) {
	case PositionLeft:
		return PositionLeft, true
	case PositionCenter, "centre":
		return PositionCenter, true
	case PositionRight:
		return PositionRight, true
	}
	return "", false
}

// Rank orders positions left to right. Unknown positions sort after all known ones.
func (p Position) Rank() int {
	switch p {
	case PositionLeft:
		return 0
	case PositionCenter:
		return 1
	case PositionRight:
		return 2
	default:
		return 3
	}
}

// Headline is a single news item selected for the day.
type Headline struct {
	Title    string   `json:"title"`    // Headline text
	Category Category `json:"category"` // world, politics or other
}

// SourcedArticle is one outlet's coverage of a headline.
type SourcedArticle struct {
	Source      string   `json:"source"`            // Outlet name, e.g. "Reuters"
	Title       string   `json:"title"`             // Article title
	URL         string   `json:"url"`               // Article URL
	Perspective Position `json:"perspective"`       // Static leaning of the outlet
	Content     string   `json:"content,omitempty"` // Extracted body text, when fetched
}

// SourceResearch holds what one source stated as fact versus opinion.
type SourceResearch struct {
	Facts    []string `json:"facts"`
	Opinions []string `json:"opinions"`
}

// ResearchEntry maps source names to their fact/opinion split.
type ResearchEntry map[string]SourceResearch

// BucketView is the determination for one position bucket.
type BucketView struct {
	Sources       []string `json:"sources"`
	Justification string   `json:"justification"`
}

// Determination is the first synthesis stage: corroborated facts plus a per-bucket summary.
type Determination struct {
	SolidFacts   []string                `json:"solid_facts"`
	Perspectives map[Position]BucketView `json:"perspectives"`
}

// Flaws is the critique of a single bucket's argument.
type Flaws struct {
	Flaws          []string `json:"flaws"`
	MissingContext string   `json:"missing_context"`
}

// Perspective is a named ideological reading of a headline.
type Perspective struct {
	Name          string   `json:"name"`
	Justification string   `json:"justification"`
	Flaws         []string `json:"flaws"`
	Position      Position `json:"position,omitempty"`
}

// HeadlineReport is the fully assembled analysis of one headline.
type HeadlineReport struct {
	Title          string           `json:"title"`
	Category       Category         `json:"category"`
	Sources        []SourcedArticle `json:"sources"`
	NeutralSummary string           `json:"neutral_summary"`
	Perspectives   []Perspective    `json:"perspectives"`
}

// DailyReport aggregates the reports for one calendar date.
type DailyReport struct {
	GeneratedAt    time.Time        `json:"generated_at"`
	RunID          string           `json:"run_id,omitempty"`
	Headlines      []HeadlineReport `json:"headlines"`
	TotalHeadlines int              `json:"total_headlines"`
}

// UnavailablePrefix starts the neutral summary of a headline whose analysis failed.
const UnavailablePrefix = "Analysis unavailable for: "

// PlaceholderSummary returns the fixed summary used when a headline could not be analysed.
func PlaceholderSummary(title string) string {
	return UnavailablePrefix + title
}

// SortPerspectives orders perspectives left, center, right. Entries without a known
// position keep their relative order and go last.
func SortPerspectives(ps []Perspective) []Perspective {
	out := make([]Perspective, len(ps))
	copy(out, ps)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Position.Rank() < out[j].Position.Rank()
	})
	return out
}

// DedupByURL keeps the first article for every URL. Articles without a URL are kept as is.
func DedupByURL(articles []SourcedArticle) []SourcedArticle {
	seen := make(map[string]bool, len(articles))
	out := make([]SourcedArticle, 0, len(articles))
	for _, a := range articles {
		key := strings.TrimSpace(a.URL)
		if key != "" {
			if seen[key] {
				continue
			}
			seen[key] = true
		}
		out = append(out, a)
	}
	return out
}

// DateLayout is the calendar date format used for report keys.
const DateLayout = "2006-01-02"

// ParseDate validates a YYYY-MM-DD date string.
func ParseDate(date string) (time.Time, error) {
	return time.Parse(DateLayout, date)
}

// Today returns the current local date as YYYY-MM-DD.
func Today() string {
	return time.Now().Format(DateLayout)
}
