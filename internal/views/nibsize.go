package views

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// nibOrder is the conventional ordering from extra-fine to specialty grinds.
var nibOrder = []string{"EF", "F", "M", "B", "BB", "BBB", "BBBB", "STUB", "ITALIC", "MUSIC", "FUDE"}

var nibAliases = map[string]string{
	"XF":           "EF",
	"EXTRA FINE":   "EF",
	"EXTRA-FINE":   "EF",
	"EXTRAFINE":    "EF",
	"FINE":         "F",
	"MEDIUM":       "M",
	"BROAD":        "B",
	"DOUBLE BROAD": "BB",
}

var nibMillimetres = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*mm`)

// CompareNibSizes orders nib sizes: known sizes by the ordinal table, then
// millimetre sizes numerically, then everything else lexically.
// Empty sizes sort after non-empty ones.
func CompareNibSizes(a, b string) int {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	if a == b {
		return 0
	}
	if a == "" {
		return 1
	}
	if b == "" {
		return -1
	}

	ar, br := nibRank(a), nibRank(b)
	switch {
	case ar >= 0 && br >= 0:
		if ar != br {
			return cmpInt(ar, br)
		}
	case ar >= 0:
		return -1
	case br >= 0:
		return 1
	}

	am, aok := nibWidth(a)
	bm, bok := nibWidth(b)
	switch {
	case aok && bok:
		if c := am.Cmp(bm); c != 0 {
			return c
		}
	case aok:
		return -1
	case bok:
		return 1
	}

	return compareText(a, b)
}

// nibRank returns the ordinal of a size in nibOrder, or -1.
func nibRank(v string) int {
	u := strings.ToUpper(strings.TrimSpace(v))
	if alias, ok := nibAliases[u]; ok {
		u = alias
	}
	if i := indexOf(nibOrder, u); i >= 0 {
		return i
	}
	// "0.5mm" would otherwise match M below.
	if _, ok := nibWidth(v); ok {
		return -1
	}
	tokens := strings.FieldsFunc(u, func(r rune) bool { return !unicode.IsLetter(r) })
	for i, size := range nibOrder {
		if indexOf(tokens, size) >= 0 {
			return i
		}
	}
	for i, size := range nibOrder {
		if strings.Contains(u, size) {
			return i
		}
	}
	return -1
}

func nibWidth(v string) (decimal.Decimal, bool) {
	m := nibMillimetres.FindStringSubmatch(v)
	if m == nil {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(m[1], ",", "."))
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

func indexOf(list []string, v string) int {
	for i, s := range list {
		if s == v {
			return i
		}
	}
	return -1
}
