package navigation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginationCompleteness(t *testing.T) {
	for total := 0; total <= 65; total++ {
		for size := 1; size <= 25; size++ {
			var seen []int
			pages := PageCount(total, size)
			for p := 0; p < pages; p++ {
				v := Paginate(total, p, size)
				for i := v.Start; i < v.End; i++ {
					seen = append(seen, i)
				}
			}
			assert.Len(t, seen, total, "L=%d S=%d", total, size)
			for i, idx := range seen {
				if idx != i {
					t.Fatalf("L=%d S=%d: position %d holds index %d", total, size, i, idx)
				}
			}
		}
	}
}

func TestPaginationBoundaries(t *testing.T) {
	for total := 1; total <= 65; total++ {
		for size := 1; size <= 25; size++ {
			last := PageCount(total, size) - 1
			for p := 0; p <= last; p++ {
				v := Paginate(total, p, size)
				assert.Equal(t, p > 0, v.HasPrevious, "L=%d S=%d p=%d", total, size, p)
				assert.Equal(t, p < last, v.HasNext, "L=%d S=%d p=%d", total, size, p)
			}
		}
	}
}

func TestPageCountAndClamp(t *testing.T) {
	assert.Equal(t, 3, PageCount(45, 20))
	assert.Equal(t, 2, PageCount(40, 20))
	assert.Equal(t, 0, PageCount(0, 20))

	assert.Equal(t, 2, ClampPage(999999, 45, 20))
	assert.Equal(t, 2, ClampPage(math.MaxInt, 45, 20))
	assert.Equal(t, 0, ClampPage(-4, 45, 20))
	assert.Equal(t, 1, ClampPage(1, 45, 20))
	assert.Equal(t, 0, ClampPage(7, 0, 20))
}

func TestPageViewLabels(t *testing.T) {
	v := Paginate(45, 2, 20)
	assert.Equal(t, 3, v.Label())
	assert.Equal(t, 3, v.Pages())
	assert.Equal(t, 41, v.FirstNumber())
	assert.Equal(t, 40, v.Start)
	assert.Equal(t, 45, v.End)

	empty := Paginate(0, 0, 20)
	assert.Equal(t, 1, empty.Pages())
	assert.False(t, empty.HasNext)
	assert.False(t, empty.HasPrevious)
}

func TestPaginateOutOfRangeIsEmpty(t *testing.T) {
	v := Paginate(45, math.MaxInt, 20)
	assert.Equal(t, v.Start, v.End)
	assert.False(t, v.HasNext)
}
