package scoring

import (
	"sort"

	"github.com/pageza/alchemorsel-v2/mealplanner/internal/types"
)

// TagSet is an unordered set of tags
type TagSet map[string]struct{}

// NewTagSet builds a set from a list
func NewTagSet(tags ...string) TagSet {
	s := make(TagSet, len(tags))
	for _, t := range tags {
		s[t] = struct{}{}
	}
	return s
}

// Has reports membership
func (s TagSet) Has(tag string) bool {
	_, ok := s[tag]
	return ok
}

// Sorted returns the tags in lexical order
func (s TagSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for t := range s {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Intersect returns the sorted tags of list that are in the set
func (s TagSet) Intersect(list []string) []string {
	out := make([]string, 0)
	seen := make(map[string]struct{})
	for _, t := range list {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		if s.Has(t) {
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return out
}

// RequiredTags derives the acceptable dietary tags for a diet. Stricter diets
// are acceptable for looser ones, so vegetarian accepts vegan recipes and
// pescatarian accepts vegetarian and vegan recipes.
func RequiredTags(diet types.DietaryPreference) TagSet {
	switch diet {
	case types.DietVegan:
		return NewTagSet("vegan")
	case types.DietVegetarian:
		return NewTagSet("vegetarian", "vegan")
	case types.DietOvoLacto:
		return NewTagSet("vegetarian", "vegan", "ovo-lacto")
	case types.DietPescatarian:
		return NewTagSet("pescatarian", "vegetarian", "vegan")
	default:
		return TagSet{}
	}
}
