package navigation

// DefaultPageSize is the number of list items per page.
const DefaultPageSize = 20

// PageView is the window of a list shown on one page.
type PageView struct {
	Index       int
	Size        int
	Total       int
	Start, End  int
	HasPrevious bool
	HasNext     bool
}

// PageCount is ceil(total/size); an empty list has zero pages.
func PageCount(total, size int) int {
	if total <= 0 || size <= 0 {
		return 0
	}
	return (total + size - 1) / size
}

// ClampPage maps page into [0, last page]. Empty lists clamp to 0.
func ClampPage(page, total, size int) int {
	if page < 0 {
		return 0
	}
	if last := PageCount(total, size) - 1; page > last {
		if last < 0 {
			return 0
		}
		return last
	}
	return page
}

// Paginate computes the window for page without clamping. Start and End
// are clipped to the list so an out-of-range page yields an empty window.
func Paginate(total, page, size int) PageView {
	v := PageView{Index: page, Size: size, Total: total}
	if size <= 0 || page < 0 {
		return v
	}
	v.HasPrevious = page > 0
	if page >= total {
		v.Start, v.End = total, total
		return v
	}
	v.Start = min(page*size, total)
	v.End = min(v.Start+size, total)
	v.HasNext = v.Start+size < total
	return v
}

// Pages is the page count shown to users; an empty list still shows one page.
func (v PageView) Pages() int {
	return max(PageCount(v.Total, v.Size), 1)
}

// Label is the 1-based page number shown to users.
func (v PageView) Label() int { return v.Index + 1 }

// FirstNumber is the global 1-based number of the first item on the page.
func (v PageView) FirstNumber() int { return v.Index*v.Size + 1 }
