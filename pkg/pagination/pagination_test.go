package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

func TestPaginate_FirstPage(t *testing.T) {
	p := New(10, 50)

	page, meta := Paginate(p, seq(20), 1, 13)

	require.Len(t, page, 13)
	assert.Equal(t, 1, page[0])
	assert.Equal(t, 13, page[12])
	assert.Equal(t, Meta{TotalCount: 20, NextPage: 2, PreviousPage: 1}, meta)
}

func TestPaginate_LastPage(t *testing.T) {
	p := New(10, 50)

	page, meta := Paginate(p, seq(20), 2, 13)

	require.Len(t, page, 7)
	assert.Equal(t, 14, page[0])
	assert.Equal(t, Meta{TotalCount: 20, NextPage: 2, PreviousPage: 1}, meta)
}

func TestPaginate_PageBeyondEndReturnsLastPage(t *testing.T) {
	p := New(10, 50)

	page, meta := Paginate(p, seq(20), 99, 13)

	require.Len(t, page, 7)
	assert.Equal(t, 14, page[0])
	assert.Equal(t, int64(20), meta.TotalCount)
	assert.Equal(t, 2, meta.NextPage)
	assert.Equal(t, 1, meta.PreviousPage)
}

func TestPaginate_PageBelowOneIsFirstPage(t *testing.T) {
	p := New(10, 50)

	for _, requested := range []int{0, -1, -100} {
		page, meta := Paginate(p, seq(20), requested, 5)
		require.Len(t, page, 5)
		assert.Equal(t, 1, page[0])
		assert.Equal(t, 2, meta.NextPage)
		assert.Equal(t, 1, meta.PreviousPage)
	}
}

func TestPaginate_PageSizeClampedToMax(t *testing.T) {
	p := New(5, 10)

	page, meta := Paginate(p, seq(30), 1, 1000)

	assert.Len(t, page, 10)
	assert.Equal(t, 2, meta.NextPage)
}

func TestPaginate_NonPositivePageSizeUsesDefault(t *testing.T) {
	p := New(4, 10)

	page, _ := Paginate(p, seq(30), 1, 0)
	assert.Len(t, page, 4)
}

func TestPaginate_EmptySet(t *testing.T) {
	p := New(10, 50)

	page, meta := Paginate(p, []string{}, 3, 10)

	assert.Empty(t, page)
	assert.Equal(t, Meta{TotalCount: 0, NextPage: 1, PreviousPage: 1}, meta)
}

func TestWindow_PreviousPageDerivedFromNext(t *testing.T) {
	p := New(10, 50)

	tests := []struct {
		name     string
		total    int64
		page     int
		wantPage int
		wantNext int
		wantPrev int
	}{
		{"middle page", 50, 3, 3, 4, 2},
		{"second page", 50, 2, 2, 3, 1},
		{"final page in range", 30, 3, 3, 3, 1},
		{"clamped far page", 50, 40, 5, 5, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := p.Window(tt.total, tt.page, 10)
			assert.Equal(t, tt.wantPage, w.Page)
			assert.Equal(t, tt.wantNext, w.Meta.NextPage)
			assert.Equal(t, tt.wantPrev, w.Meta.PreviousPage)
			assert.Equal(t, (tt.wantPage-1)*10, w.Offset)
			assert.Equal(t, 10, w.Limit)
		})
	}
}

func TestNew_NormalisesBounds(t *testing.T) {
	p := New(100, 20)
	assert.Equal(t, 20, p.DefaultSize())
	assert.Equal(t, 20, p.MaxSize())

	p = New(0, 0)
	assert.Equal(t, 1, p.DefaultSize())
	assert.Equal(t, 1, p.MaxSize())
}
