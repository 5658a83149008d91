package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPageRequest_Defaults(t *testing.T) {
	p := NewPageRequest(nil, nil)
	assert.Equal(t, PageRequest{Page: 1, Limit: 20}, p)
	assert.True(t, p.Valid())
	assert.Equal(t, 0, p.Offset())
}

func TestPageRequest_Valid(t *testing.T) {
	tests := []struct {
		name  string
		page  int
		limit int
		want  bool
	}{
		{"first_page", 1, 20, true},
		{"max_limit", 3, 100, true},
		{"zero_page", 0, 20, false},
		{"negative_page", -1, 20, false},
		{"zero_limit", 1, 0, false},
		{"limit_over_max", 1, 101, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PageRequest{Page: tt.page, Limit: tt.limit}.Valid())
		})
	}
}

func TestPageRequest_Offset(t *testing.T) {
	assert.Equal(t, 40, PageRequest{Page: 3, Limit: 20}.Offset())
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(PageRequest{Page: 2, Limit: 20}, 41)
	assert.Equal(t, Pagination{CurrentPage: 2, Limit: 20, TotalRows: 41, TotalPages: 3}, p)

	empty := NewPagination(PageRequest{Page: 5, Limit: 10}, 0)
	assert.Equal(t, int64(0), empty.TotalPages)
	assert.Equal(t, 5, empty.CurrentPage)
}
