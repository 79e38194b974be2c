package catalog

import (
	"strings"

	"artify/internal/entity"
)

// FilterState is the visitor's search term and selected categories.
type FilterState struct {
	Search     string
	Categories []string
}

// Active reports whether the filter hides anything at all.
func (f FilterState) Active() bool {
	return strings.TrimSpace(f.Search) != "" || len(f.Categories) > 0
}

// Filter returns the artworks whose title contains the search term and whose
// category is one of the selected ones. Both tests ignore case. An empty term
// or an empty category set matches everything. The input is not modified.
func Filter(arts []entity.Artwork, f FilterState) []entity.Artwork {
	term := strings.ToLower(strings.TrimSpace(f.Search))

	var cats map[string]struct{}
	if len(f.Categories) > 0 {
		cats = make(map[string]struct{}, len(f.Categories))
		for _, c := range f.Categories {
			cats[strings.ToLower(c)] = struct{}{}
		}
	}

	out := make([]entity.Artwork, 0, len(arts))
	for _, a := range arts {
		if term != "" && !strings.Contains(strings.ToLower(a.Title), term) {
			continue
		}
		if cats != nil {
			if _, ok := cats[strings.ToLower(a.Category)]; !ok {
				continue
			}
		}
		out = append(out, a)
	}
	return out
}
