package views

import (
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Collators keep internal buffers, so each goroutine borrows its own.
var collators = sync.Pool{
	New: func() any { return collate.New(language.English) },
}

// compareText is a locale-aware string comparison (case and accents are
// secondary differences, "Custom 74" sorts before "custom 823").
func compareText(a, b string) int {
	if a == b {
		return 0
	}
	c := collators.Get().(*collate.Collator)
	defer collators.Put(c)
	if r := c.CompareString(a, b); r != 0 {
		return r
	}
	// Collation-equal but not identical: keep the order total.
	if a < b {
		return -1
	}
	return 1
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
