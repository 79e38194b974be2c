package catalog

import (
	"testing"

	"artify/internal/entity"

	"github.com/stretchr/testify/assert"
)

func TestFilter(t *testing.T) {
	arts := []entity.Artwork{
		{ID: "1", Title: "Morning Harbor", Category: "Seascape"},
		{ID: "2", Title: "Harbor Lights", Category: "Urban"},
		{ID: "3", Title: "Fern Study", Category: "Botanical"},
		{ID: "4", Title: "Red Square", Category: "abstract"},
	}

	tests := []struct {
		name   string
		filter FilterState
		want   []string
	}{
		{"empty filter keeps everything", FilterState{}, []string{"1", "2", "3", "4"}},
		{"search is case insensitive", FilterState{Search: "HARBOR"}, []string{"1", "2"}},
		{"search is trimmed", FilterState{Search: "  fern "}, []string{"3"}},
		{"categories use OR", FilterState{Categories: []string{"Seascape", "Botanical"}}, []string{"1", "3"}},
		{"category match ignores case", FilterState{Categories: []string{"Abstract"}}, []string{"4"}},
		{"search and categories intersect", FilterState{Search: "harbor", Categories: []string{"Urban"}}, []string{"2"}},
		{"no match", FilterState{Search: "portrait"}, []string{}},
		{"unknown category", FilterState{Categories: []string{"Portrait"}}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(arts, tt.filter)
			ids := make([]string, 0, len(got))
			for _, a := range got {
				ids = append(ids, a.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestFilter_DoesNotModifyInput(t *testing.T) {
	arts := []entity.Artwork{{ID: "1", Title: "A"}, {ID: "2", Title: "B"}}
	_ = Filter(arts, FilterState{Search: "b"})
	assert.Len(t, arts, 2)
	assert.Equal(t, "1", arts[0].ID)
}

func TestFilterState_Active(t *testing.T) {
	assert.False(t, FilterState{}.Active())
	assert.False(t, FilterState{Search: "   "}.Active())
	assert.True(t, FilterState{Search: "x"}.Active())
	assert.True(t, FilterState{Categories: []string{"Urban"}}.Active())
}

func TestPagination(t *testing.T) {
	p := newPagination(1, 3)
	assert.Equal(t, []int{1, 2, 3}, p.Pages())
	assert.True(t, p.PrevDisabled())
	assert.False(t, p.NextDisabled())
	assert.Equal(t, 2, p.Next())
	assert.Equal(t, 1, p.Prev())

	last := newPagination(3, 3)
	assert.False(t, last.PrevDisabled())
	assert.True(t, last.NextDisabled())

	// Zero totals from an empty catalog still give one page.
	empty := newPagination(0, 0)
	assert.Equal(t, Pagination{Current: 1, Total: 1}, empty)
	assert.Equal(t, []int{1}, empty.Pages())
}
