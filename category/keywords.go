package category

import (
	"regexp"
)

// Keyword is a phrase whose whole-word presence adds Weight to a category's score.
type Keyword struct {
	Phrase string
	Weight int
}

type keywordSet struct {
	category Category
	keywords []Keyword
}

// More specific phrases carry higher weights.
var table = []keywordSet{
	{SelfCare, []Keyword{
		{"beauty", 2}, {"spa", 3}, {"salon", 2}, {"wax", 1}, {"massage", 2}, {"skin care", 2}, {"barber", 2}, {"nails", 2},
	}},
	{Museums, []Keyword{
		{"museum", 3}, {"historical society", 2}, {"art museum", 3}, {"gallery", 2}, {"exhibit", 1},
	}},
	{Campgrounds, []Keyword{
		{"campground", 3}, {"rv park", 2}, {"rv resort", 2}, {"campsite", 2},
	}},
	{Lodging, []Keyword{
		{"hotel", 3}, {"motel", 3}, {"inn", 3}, {"bed and breakfast", 3}, {"b&b", 3}, {"guest house", 2}, {"suites", 1},
	}},
	{Attractions, []Keyword{
		{"attraction", 2}, {"amusement", 2}, {"entertainment", 1}, {"arena", 2}, {"ice arena", 3}, {"racquet club", 3}, {"zoo", 3}, {"aquarium", 3},
	}},
	{FoodDrinks, []Keyword{
		{"restaurant", 3}, {"cafe", 3}, {"diner", 3}, {"bistro", 3}, {"grill", 3}, {"pizza", 3}, {"bar", 3}, {"pub", 3}, {"tavern", 3},
		{"eatery", 2}, {"food", 1}, {"dining", 1}, {"bakery", 3}, {"coffee", 3}, {"ice cream", 3}, {"cupcake", 3}, {"burger", 3},
		{"steak", 3}, {"bbq", 3}, {"chicken", 2}, {"pasta", 2}, {"sushi", 3}, {"mexican", 2}, {"chinese", 2}, {"italian", 2}, {"deli", 2}, {"buffet", 2},
	}},
	{Government, []Keyword{
		{"city hall", 3}, {"government", 2}, {"public works", 3}, {"administration", 2}, {"township", 2},
	}},
	{Furniture, []Keyword{
		{"furniture", 3}, {"cabinets", 2}, {"woodworking", 2}, {"home decor", 1},
	}},
	{Farm, []Keyword{
		{"farm", 3}, {"orchard", 3}, {"dairy", 2}, {"produce", 1}, {"ranch", 2}, {"agriculture", 2}, {"crops", 2},
	}},
	{Brews, []Keyword{
		{"brewery", 3}, {"winery", 3}, {"distillery", 3}, {"vineyard", 3}, {"beer", 2}, {"wine", 2}, {"cider", 2},
	}},
	{Nonprofit, []Keyword{
		{"nonprofit", 3}, {"non-profit", 3}, {"charity", 3}, {"foundation", 2}, {"historical society", 1},
	}},
	{FitnessHealth, []Keyword{
		{"fitness", 3}, {"gym", 3}, {"yoga", 3}, {"crossfit", 3}, {"wellness", 2}, {"health", 2},
		{"hospital", 3}, {"clinic", 3}, {"medical", 2}, {"doctor", 2}, {"dental", 2}, {"pharmacy", 2},
	}},
	{Nature, []Keyword{
		{"park", 2}, {"trail", 2}, {"preserve", 3}, {"garden", 2}, {"nature", 1}, {"conservancy", 3}, {"wildlife", 2}, {"forest", 2},
	}},
	{Transportation, []Keyword{
		{"transportation", 2}, {"railroad", 2}, {"trucking", 2}, {"logistics", 1}, {"auto", 1}, {"car wash", 2},
	}},
	{Antiques, []Keyword{
		{"antique", 3}, {"vintage", 2}, {"collectible", 2}, {"retro", 1},
	}},
}

type compiledKeyword struct {
	Keyword
	re *regexp.Regexp
}

type compiledSet struct {
	category Category
	keywords []compiledKeyword
}

// Compiled once; the table is never modified after package initialization.
var compiled = compileTable(table)

// Any letter, digit or underscore continues a word, including non-ASCII letters, which `\b` would
// treat as boundaries.
const (
	wordStart = `(?:^|[^\p{L}\p{N}_])`
	wordEnd   = `(?:$|[^\p{L}\p{N}_])`
)

func compileTable(sets []keywordSet) []compiledSet {

	out := make([]compiledSet, len(sets))

	for i, s := range sets {

		kw := make([]compiledKeyword, len(s.keywords))

		for j, k := range s.keywords {
			kw[j] = compiledKeyword{
				Keyword: k,
				re:      regexp.MustCompile(wordStart + regexp.QuoteMeta(k.Phrase) + wordEnd),
			}
		}

		out[i] = compiledSet{category: s.category, keywords: kw}
	}

	return out
}

// Keywords returns a copy of the keyword list for 'c'.
func Keywords(c Category) []Keyword {

	for _, s := range table {

		if s.category == c {
			kw := make([]Keyword, len(s.keywords))
			copy(kw, s.keywords)
			return kw
		}
	}

	return nil
}
