package catalog

// PageSize is the number of artworks requested per page.
const PageSize = 8

// Pagination describes the pager under the artwork grid.
type Pagination struct {
	Current int
	Total   int
}

func newPagination(current, total int) Pagination {
	total = max(total, 1)
	current = min(max(current, 1), total)
	return Pagination{Current: current, Total: total}
}

// Pages lists every page number, 1 through Total.
func (p Pagination) Pages() []int {
	out := make([]int, p.Total)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

func (p Pagination) PrevDisabled() bool { return p.Current <= 1 }
func (p Pagination) NextDisabled() bool { return p.Current >= p.Total }

// Prev and Next return the neighbouring page numbers, clamped to the range.
func (p Pagination) Prev() int { return max(p.Current-1, 1) }
func (p Pagination) Next() int { return min(p.Current+1, p.Total) }
