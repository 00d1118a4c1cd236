package views

import (
	"fmt"
	"sort"
	"strings"
)

type Direction int

const (
	Asc Direction = iota
	Desc
)

func (d Direction) String() string {
	if d == Desc {
		return "desc"
	}
	return "asc"
}

type SortKey string

// Pen sort keys.
const (
	PenBrand       SortKey = "brand"
	PenModel       SortKey = "model"
	PenColor       SortKey = "color"
	PenNibSize     SortKey = "nibSize"
	PenNibType     SortKey = "nibType"
	PenRefillCount SortKey = "refillCount"
	PenCurrentInk  SortKey = "currentInk"
	PenDateInked   SortKey = "dateInked"
)

// Ink sort keys.
const (
	InkBrand      SortKey = "brand"
	InkCollection SortKey = "collection"
	InkName       SortKey = "name"
	InkUsageCount SortKey = "usageCount"
)

var (
	PenSortKeys = []SortKey{PenBrand, PenModel, PenColor, PenNibSize, PenNibType, PenRefillCount, PenCurrentInk, PenDateInked}
	InkSortKeys = []SortKey{InkBrand, InkCollection, InkName, InkUsageCount}
)

// SortState is the active sort column. The zero value means default order.
type SortState struct {
	Key SortKey
	Dir Direction
}

// Toggle selects key: the same key flips direction, a new key starts ascending.
func (s SortState) Toggle(key SortKey) SortState {
	if s.Key == key && s.Dir == Asc {
		return SortState{Key: key, Dir: Desc}
	}
	return SortState{Key: key, Dir: Asc}
}

func (s SortState) String() string {
	if s.Key == "" {
		return "default"
	}
	return fmt.Sprintf("%s %s", s.Key, s.Dir)
}

// ParseSortKey validates key against allowed (case-insensitive).
func ParseSortKey(key string, allowed []SortKey) (SortKey, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", nil
	}
	for _, k := range allowed {
		if strings.EqualFold(string(k), key) {
			return k, nil
		}
	}
	names := make([]string, len(allowed))
	for i, k := range allowed {
		names[i] = string(k)
	}
	return "", fmt.Errorf("unknown sort key %q (expected one of %s)", key, strings.Join(names, ", "))
}

func directed(c int, dir Direction) int {
	if dir == Desc {
		return -c
	}
	return c
}

// SortPens orders rows by state. Ties on the chosen key fall back to
// brand, model, then nib size; remaining ties keep storage order.
func SortPens(rows []PenRow, state SortState) {
	sort.SliceStable(rows, func(i, j int) bool {
		return comparePenRows(rows[i], rows[j], state) < 0
	})
}

func comparePenRows(a, b PenRow, state SortState) int {
	if state.Key == PenDateInked {
		switch {
		case a.DateInked.IsZero() && !b.DateInked.IsZero():
			return 1
		case !a.DateInked.IsZero() && b.DateInked.IsZero():
			return -1
		}
	}
	if c := directed(penPrimary(a, b, state.Key), state.Dir); c != 0 {
		return c
	}
	if state.Key != PenBrand {
		if c := compareText(a.Pen.Brand, b.Pen.Brand); c != 0 {
			return c
		}
	}
	if state.Key != PenModel {
		if c := compareText(a.Pen.Model, b.Pen.Model); c != 0 {
			return c
		}
	}
	if state.Key != PenNibSize {
		return CompareNibSizes(a.Pen.NibSize, b.Pen.NibSize)
	}
	return 0
}

func penPrimary(a, b PenRow, key SortKey) int {
	switch key {
	case PenBrand:
		return compareText(a.Pen.Brand, b.Pen.Brand)
	case PenModel:
		return compareText(a.Pen.Model, b.Pen.Model)
	case PenColor:
		return compareText(a.Pen.Color, b.Pen.Color)
	case PenNibSize:
		return CompareNibSizes(a.Pen.NibSize, b.Pen.NibSize)
	case PenNibType:
		return compareText(a.Pen.NibType, b.Pen.NibType)
	case PenRefillCount:
		return cmpInt(a.RefillCount, b.RefillCount)
	case PenCurrentInk:
		return compareText(a.CurrentInkName(), b.CurrentInkName())
	case PenDateInked:
		return a.DateInked.Compare(b.DateInked)
	}
	return 0
}

// SortInks orders rows by state with the brand, collection, name fallback.
// A blank collection compares as the empty string.
func SortInks(rows []InkRow, state SortState) {
	sort.SliceStable(rows, func(i, j int) bool {
		return compareInkRows(rows[i], rows[j], state) < 0
	})
}

func compareInkRows(a, b InkRow, state SortState) int {
	if c := directed(inkPrimary(a, b, state.Key), state.Dir); c != 0 {
		return c
	}
	if state.Key != InkBrand {
		if c := compareText(a.Ink.Brand, b.Ink.Brand); c != 0 {
			return c
		}
	}
	if state.Key != InkCollection {
		if c := compareText(a.Ink.Collection, b.Ink.Collection); c != 0 {
			return c
		}
	}
	if state.Key != InkName {
		return compareText(a.Ink.Name, b.Ink.Name)
	}
	return 0
}

func inkPrimary(a, b InkRow, key SortKey) int {
	switch key {
	case InkBrand:
		return compareText(a.Ink.Brand, b.Ink.Brand)
	case InkCollection:
		return compareText(a.Ink.Collection, b.Ink.Collection)
	case InkName:
		return compareText(a.Ink.Name, b.Ink.Name)
	case InkUsageCount:
		return cmpInt(a.UsageCount, b.UsageCount)
	}
	return 0
}
