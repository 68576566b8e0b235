package pagination_test

import (
	"net/url"
	"testing"

	"github.com/MGhunch/dot-file/pkg/pagination"
)

func TestFromQuery(t *testing.T) {
	cfg := pagination.Config{}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		query    string
		page     int
		pageSize int
	}{
		{"defaults", "", 1, 25},
		{"explicit", "page=3&page_size=10", 3, 10},
		{"clamped", "page_size=5000", 1, 200},
		{"garbage", "page=x&page_size=-4", 1, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, _ := url.ParseQuery(tt.query)
			req := pagination.FromQuery(values, cfg)
			if req.Page != tt.page || req.PageSize != tt.pageSize {
				t.Errorf("got page=%d size=%d, want page=%d size=%d", req.Page, req.PageSize, tt.page, tt.pageSize)
			}
		})
	}
}

func TestNewPageResult(t *testing.T) {
	req := pagination.PageRequest{Page: 2, PageSize: 10}
	res := pagination.NewPageResult[string](nil, 21, req)

	if res.TotalPages != 3 {
		t.Errorf("TotalPages = %d, want 3", res.TotalPages)
	}
	if res.Data == nil {
		t.Error("Data should be empty, not nil")
	}
	if req.Offset() != 10 {
		t.Errorf("Offset = %d, want 10", req.Offset())
	}

	empty := pagination.NewPageResult([]string{}, 0, req)
	if empty.TotalPages != 1 {
		t.Errorf("empty TotalPages = %d, want 1", empty.TotalPages)
	}
}

func TestConfigFinalizeRejectsInverted(t *testing.T) {
	cfg := pagination.Config{DefaultPageSize: 50, MaxPageSize: 10}
	if err := cfg.Finalize(nil); err == nil {
		t.Error("expected error when default exceeds max")
	}
}
