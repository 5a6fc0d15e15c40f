package sources

import (
	"strings"

	"diderot/internal/core"
)

// Outlet is a news organization with a fixed editorial leaning.
type Outlet struct {
	Name     string
	Domain   string
	Position core.Position
}

// Roster lists the outlets searched for coverage, three per bucket.
var Roster = []Outlet{
	{Name: "CNN", Domain: "cnn.com", Position: core.PositionLeft},
	{Name: "New York Times", Domain: "nytimes.com", Position: core.PositionLeft},
	{Name: "MSNBC", Domain: "msnbc.com", Position: core.PositionLeft},
	{Name: "Reuters", Domain: "reuters.com", Position: core.PositionCenter},
	{Name: "Associated Press", Domain: "apnews.com", Position: core.PositionCenter},
	{Name: "BBC News", Domain: "bbc.com", Position: core.PositionCenter},
	{Name: "Fox News", Domain: "foxnews.com", Position: core.PositionRight},
	{Name: "New York Post", Domain: "nypost.com", Position: core.PositionRight},
	{Name: "Wall Street Journal", Domain: "wsj.com", Position: core.PositionRight},
}

// Canonical returns the representative outlet of a bucket: CNN, Reuters or Fox News.
func Canonical(p core.Position) Outlet {
	switch p {
	case core.PositionLeft:
		return Roster[0]
	case core.PositionCenter:
		return Roster[3]
	default:
		return Roster[6]
	}
}

var aliases = map[string]string{
	"nyt":                     "New York Times",
	"the new york times":      "New York Times",
	"ap":                      "Associated Press",
	"ap news":                 "Associated Press",
	"bbc":                     "BBC News",
	"fox":                     "Fox News",
	"ny post":                 "New York Post",
	"wsj":                     "Wall Street Journal",
	"the wall street journal": "Wall Street Journal",
}

// LookupOutlet finds a roster outlet by name, alias or domain, case-insensitively.
func LookupOutlet(nameOrDomain string) (Outlet, bool) {
	key := strings.ToLower(strings.TrimSpace(nameOrDomain))
	if alias, ok := aliases[key]; ok {
		key = strings.ToLower(alias)
	}
	key = strings.TrimPrefix(key, "www.")
	for _, o := range Roster {
		if strings.ToLower(o.Name) == key || o.Domain == key {
			return o, true
		}
	}
	return Outlet{}, false
}

// interleaved orders the roster left, center, right, left, ... so that early
// truncation still covers every bucket.
func interleaved() []Outlet {
	buckets := make(map[core.Position][]Outlet)
	for _, o := range Roster {
		buckets[o.Position] = append(buckets[o.Position], o)
	}
	var out []Outlet
	for i := 0; len(out) < len(Roster); i++ {
		for _, p := range core.Positions {
			if i < len(buckets[p]) {
				out = append(out, buckets[p][i])
			}
		}
	}
	return out
}

// Placeholder returns the stand-in article used when an outlet's coverage was not found.
func Placeholder(o Outlet, headline string) core.SourcedArticle {
	return core.SourcedArticle{
		Source:      o.Name,
		Title:       "Article about " + headline,
		URL:         "https://" + o.Domain + "/article",
		Perspective: o.Position,
	}
}
