package views

import (
	"fmt"
	"sort"

	"inkwell-cli/internal/model"
)

// Rows-per-page choices for the refill log.
var PageSizes = []int{5, 10, 25}

const DefaultPageSize = 10

type RefillFilter struct {
	// PenBrand keeps only entries whose joined pen has this brand. Empty keeps all.
	PenBrand string
}

type Page struct {
	Index int // zero-based
	Size  int
}

type RefillPage struct {
	Rows  []model.RefillLogView `json:"rows"`
	Total int                   `json:"total"`
	Page  int                   `json:"page"`
	Size  int                   `json:"size"`
	Pages int                   `json:"pages"`
}

// ValidPageSize reports whether n is one of PageSizes.
func ValidPageSize(n int) bool {
	for _, s := range PageSizes {
		if s == n {
			return true
		}
	}
	return false
}

// NextPageSize cycles through PageSizes.
func NextPageSize(n int) int {
	for i, s := range PageSizes {
		if s == n {
			return PageSizes[(i+1)%len(PageSizes)]
		}
	}
	return DefaultPageSize
}

func ParsePageSize(n int) (int, error) {
	if n == 0 {
		return DefaultPageSize, nil
	}
	if !ValidPageSize(n) {
		return 0, fmt.Errorf("invalid page size %d (expected one of %v)", n, PageSizes)
	}
	return n, nil
}

// SortRefillsByDate orders entries newest first; entries sharing a date
// list the later-stored one first.
func SortRefillsByDate(views []model.RefillLogView) {
	for i, j := 0, len(views)-1; i < j; i, j = i+1, j-1 {
		views[i], views[j] = views[j], views[i]
	}
	sort.SliceStable(views, func(i, j int) bool {
		return views[i].Date.After(views[j].Date)
	})
}

// PageRefills filters, sorts (date descending) and paginates joined entries.
// Unknown page sizes fall back to the default; out-of-range pages clamp.
func PageRefills(views []model.RefillLogView, f RefillFilter, p Page) RefillPage {
	rows := make([]model.RefillLogView, 0, len(views))
	for _, v := range views {
		if f.PenBrand != "" && v.PenBrand() != f.PenBrand {
			continue
		}
		rows = append(rows, v)
	}
	SortRefillsByDate(rows)

	size := p.Size
	if !ValidPageSize(size) {
		size = DefaultPageSize
	}
	total := len(rows)
	pages := (total + size - 1) / size
	if pages == 0 {
		pages = 1
	}
	idx := p.Index
	if idx < 0 {
		idx = 0
	}
	if idx >= pages {
		idx = pages - 1
	}
	start := idx * size
	end := start + size
	if end > total {
		end = total
	}
	return RefillPage{
		Rows:  rows[start:end],
		Total: total,
		Page:  idx,
		Size:  size,
		Pages: pages,
	}
}
