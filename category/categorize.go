package category

import (
	"strings"
)

// Scores returns the keyword score of every category that matched at least once in the combined
// name and description. Matching is case-insensitive and anchored on word boundaries, so "spa"
// does not match "spacious".
func Scores(name string, description string) map[Category]int {

	text := strings.ToLower(name + " " + description)
	scores := make(map[Category]int)

	for _, s := range compiled {

		for _, k := range s.keywords {

			if k.re.MatchString(text) {
				scores[s.category] += k.Weight
			}
		}
	}

	return scores
}

// Categorize returns the category for a location. It never fails: input without any signal yields
// Default. An empty description is equivalent to no description.
func Categorize(name string, description string) Category {

	scores := Scores(name, description)

	if len(scores) > 0 {
		return best(scores)
	}

	return fallback(name)
}

// best returns the highest scoring category, walking All so that ties go to the
// earlier category.
func best(scores map[Category]int) Category {

	winner := Default
	high := 0

	for _, c := range All {

		if scores[c] > high {
			winner = c
			high = scores[c]
		}
	}

	return winner
}

// fallback applies substring heuristics to the name alone. The rules are checked in order and the
// first match wins.
func fallback(name string) Category {

	name = strings.ToLower(name)

	has := func(terms ...string) bool {

		for _, t := range terms {

			if strings.Contains(name, t) {
				return true
			}
		}

		return false
	}

	switch {
	case has("hotel", "inn"):
		return Lodging
	case has("park") && !has("national", "state"):
		return Nature
	case has("farm", "orchard"):
		return Farm
	case has("museum"):
		return Museums
	case has("gallery"):
		return Museums
	case has("clinic", "hospital"):
		return FitnessHealth
	case has("gym", "fitness"):
		return FitnessHealth
	case has("winery", "brewery"):
		return Brews
	}

	return Default
}

// Description returns the description column of a CSV row. Missing columns and the "NaN"
// placeholders written by some spreadsheet exports are treated as empty.
func Description(row map[string]string, column string) string {

	v, exists := row[column]

	if !exists {
		return ""
	}

	switch strings.TrimSpace(v) {
	case "NaN", "nan":
		return ""
	}

	return v
}
