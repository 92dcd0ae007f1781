// Package category assigns a location to one of a fixed set of directory categories using
// weighted keyword matching over its name and description.
package category

type Category string

const (
	SelfCare       Category = "Self care"
	Museums        Category = "Museums"
	Campgrounds    Category = "Campgrounds"
	Lodging        Category = "Lodging"
	Attractions    Category = "Attractions"
	FoodDrinks     Category = "Food/Drinks"
	Government     Category = "Government"
	Furniture      Category = "Furniture"
	Farm           Category = "Farm"
	Brews          Category = "Brews"
	Nonprofit      Category = "Nonprofit"
	FitnessHealth  Category = "Fitness/Health"
	Nature         Category = "Nature"
	Transportation Category = "Transportation"
	Antiques       Category = "Antiques"
)

// Default is returned when nothing in a location's name or description signals a category.
const Default = Attractions

// All is the complete taxonomy in its enumerated order. When two categories have the same
// keyword score the one that appears first in All wins.
var All = []Category{
	SelfCare,
	Museums,
	Campgrounds,
	Lodging,
	Attractions,
	FoodDrinks,
	Government,
	Furniture,
	Farm,
	Brews,
	Nonprofit,
	FitnessHealth,
	Nature,
	Transportation,
	Antiques,
}

func (c Category) String() string {
	return string(c)
}

// IsValid reports whether 'c' is a member of the taxonomy.
func (c Category) IsValid() bool {

	for _, other := range All {

		if c == other {
			return true
		}
	}

	return false
}
