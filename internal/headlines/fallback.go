package headlines

import "diderot/internal/core"

// Fallback is the fixed list used to pad or replace the primary headline retrieval.
var Fallback = []core.Headline{
	{Title: "Global Climate Summit Reaches Historic Agreement", Category: core.CategoryWorld},
	{Title: "Congress Passes Major Infrastructure Bill", Category: core.CategoryPolitics},
	{Title: "International Trade Dispute Escalates", Category: core.CategoryWorld},
	{Title: "Supreme Court Rules on Key Constitutional Case", Category: core.CategoryPolitics},
	{Title: "UN Security Council Addresses Regional Conflict", Category: core.CategoryWorld},
	{Title: "Federal Reserve Announces New Economic Policy", Category: core.CategoryPolitics},
	{Title: "Major Tech Company Faces Regulatory Scrutiny", Category: core.CategoryPolitics},
	{Title: "International Space Station Celebrates Milestone", Category: core.CategoryWorld},
	{Title: "Global Health Organization Issues New Guidelines", Category: core.CategoryWorld},
	{Title: "Congressional Committee Launches Investigation", Category: core.CategoryPolitics},
}
