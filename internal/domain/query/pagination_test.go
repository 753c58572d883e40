package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginate(t *testing.T) {
	testCases := []struct {
		name     string
		total    int
		page     int
		limit    int
		expected Page
	}{
		{"empty", 0, 1, 20, Page{Page: 1, Limit: 20, Total: 0, TotalPages: 0, Skip: 0}},
		{"exact fit", 40, 2, 20, Page{Page: 2, Limit: 20, Total: 40, TotalPages: 2, Skip: 20}},
		{"partial last page", 41, 3, 20, Page{Page: 3, Limit: 20, Total: 41, TotalPages: 3, Skip: 40}},
		{"single", 1, 1, 100, Page{Page: 1, Limit: 100, Total: 1, TotalPages: 1, Skip: 0}},
		{"past the end is echoed", 5, 9, 2, Page{Page: 9, Limit: 2, Total: 5, TotalPages: 3, Skip: 16}},
		{"limit one", 7, 7, 1, Page{Page: 7, Limit: 1, Total: 7, TotalPages: 7, Skip: 6}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Paginate(tc.total, tc.page, tc.limit))
		})
	}
}

func TestPaginate_CeilingHolds(t *testing.T) {
	for total := 0; total <= 60; total++ {
		for limit := 1; limit <= 12; limit++ {
			p := Paginate(total, 1, limit)
			assert.GreaterOrEqual(t, p.TotalPages*limit, total)
			if total > 0 {
				assert.Less(t, (p.TotalPages-1)*limit, total)
			} else {
				assert.Zero(t, p.TotalPages)
			}
		}
	}
}

func TestPaginate_ZeroLimitDoesNotPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		p := Paginate(10, 1, 0)
		assert.Zero(t, p.TotalPages)
	})
}

func TestNewWindow(t *testing.T) {
	assert.Equal(t, Window{Offset: 0, Limit: 20}, NewWindow(1, 20))
	assert.Equal(t, Window{Offset: 30, Limit: 10}, NewWindow(4, 10))
	assert.Equal(t, Window{Offset: 0, Limit: DefaultLimit}, NewWindow(0, 0))
}

func TestNewWindow_AgreesWithPaginateSkip(t *testing.T) {
	for page := 1; page <= 6; page++ {
		for limit := 1; limit <= 25; limit += 4 {
			meta := Paginate(57, page, limit)
			assert.Equal(t, meta.Window(), NewWindow(page, limit))
			assert.Equal(t, meta.Skip, NewWindow(page, limit).Offset)
		}
	}
}

func TestPage_Metadata(t *testing.T) {
	meta := Paginate(41, 2, 20).Metadata()
	assert.Equal(t, 2, meta.Page)
	assert.Equal(t, 20, meta.Limit)
	assert.Equal(t, 41, meta.Total)
	assert.Equal(t, 3, meta.TotalPages)
}
