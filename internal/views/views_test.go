package views

import (
	"fmt"
	"testing"

	"inkwell-cli/internal/model"
	"inkwell-cli/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) model.Date { return model.MustParseDate(s) }

func fixture() model.Collections {
	return model.Collections{
		Pens: []model.Pen{
			{ID: "pen1", Brand: "Pilot", Model: "Custom 823", NibSize: "F"},
			{ID: "pen2", Brand: "Lamy", Model: "2000", NibSize: "EF"},
			{ID: "pen3", Brand: "Pilot", Model: "Custom 74", NibSize: "M"},
			{ID: "pen4", Brand: "Sailor", Model: "Pro Gear", NibSize: ""},
		},
		Inks: []model.Ink{
			{ID: "ink1", Brand: "Pilot", Collection: "Iroshizuku", Name: "Kon-peki"},
			{ID: "ink2", Brand: "Sailor", Collection: "", Name: "Souboku"},
			{ID: "ink3", Brand: "Diamine", Collection: "", Name: "Oxblood"},
		},
		RefillLog: []model.RefillLogEntry{
			{ID: "r1", Date: day("2024-01-01"), PenID: "pen1", InkIDs: []string{"ink1"}},
			{ID: "r2", Date: day("2024-02-01"), PenID: "pen1", InkIDs: []string{"ink2"}},
			{ID: "r3", Date: day("2024-01-15"), PenID: "pen2", InkIDs: []string{"ink1", "ink3"}},
			{ID: "r4", Date: day("2023-12-01"), PenID: "pen2", InkIDs: []string{"ink2"}},
		},
	}
}

func TestCounts(t *testing.T) {
	c := fixture()
	for _, p := range c.Pens {
		want := 0
		for _, e := range c.RefillLog {
			if e.PenID == p.ID {
				want++
			}
		}
		assert.Equal(t, want, RefillCountForPen(c, p.ID), p.ID)
	}
	assert.Equal(t, 2, UsageCountForInk(c, "ink1"))
	assert.Equal(t, 2, UsageCountForInk(c, "ink2"))
	assert.Equal(t, 1, UsageCountForInk(c, "ink3"))
	assert.Equal(t, 0, UsageCountForInk(c, "missing"))
	assert.Equal(t, 0, RefillCountForPen(model.Collections{}, "pen1"))
}

func TestMostRecentInkForPen(t *testing.T) {
	c := fixture()
	id, ok := MostRecentInkForPen(c, "pen1")
	require.True(t, ok)
	assert.Equal(t, "ink2", id)
	assert.False(t, IsCurrentlyInked(c, "pen1", "ink1"))
	assert.True(t, IsCurrentlyInked(c, "pen1", "ink2"))

	d, ok := MostRecentInkDateForPen(c, "pen2")
	require.True(t, ok)
	assert.Equal(t, day("2024-01-15"), d)

	_, ok = MostRecentInkForPen(c, "pen3")
	assert.False(t, ok)
}

func TestMostRecentTieBreakPrefersLaterStored(t *testing.T) {
	c := model.Collections{RefillLog: []model.RefillLogEntry{
		{ID: "a", Date: day("2024-03-01"), PenID: "p", InkIDs: []string{"first"}},
		{ID: "b", Date: day("2024-03-01"), PenID: "p", InkIDs: []string{"second"}},
		{ID: "c", Date: day("2024-02-01"), PenID: "p", InkIDs: []string{"older"}},
	}}
	id, ok := MostRecentInkForPen(c, "p")
	require.True(t, ok)
	assert.Equal(t, "second", id)
}

func TestCurrentPensForInk(t *testing.T) {
	c := fixture()
	pens := CurrentPensForInk(c, "ink1")
	require.Len(t, pens, 1)
	assert.Equal(t, "pen2", pens[0].ID)
	assert.Empty(t, CurrentPensForInk(c, "missing"))

	rows := InkRows(c)
	require.Len(t, rows, 3)
	assert.Equal(t, "pen2", rows[0].CurrentPens[0].ID)
	assert.Equal(t, "pen1", rows[1].CurrentPens[0].ID)
}

func TestCompareNibSizes(t *testing.T) {
	ordered := []string{"EF", "F", "M", "B", "BB", "BBB", "BBBB", "Stub", "Italic", "Music", "Fude"}
	for i := 0; i+1 < len(ordered); i++ {
		assert.Negative(t, CompareNibSizes(ordered[i], ordered[i+1]), "%s < %s", ordered[i], ordered[i+1])
		assert.Positive(t, CompareNibSizes(ordered[i+1], ordered[i]), "%s > %s", ordered[i+1], ordered[i])
	}
	assert.Negative(t, CompareNibSizes("0.3mm", "0.5mm"))
	assert.Negative(t, CompareNibSizes("0.5 mm", "1.1mm"))
	assert.Negative(t, CompareNibSizes("0,7mm", "1mm"))
	assert.Negative(t, CompareNibSizes("Fine", "Medium"))
	assert.Negative(t, CompareNibSizes("Extra Fine", "Fine"))
	assert.Negative(t, CompareNibSizes("BB", "1.1mm"), "table sizes sort before millimetre sizes")
	assert.Negative(t, CompareNibSizes("1.1mm", "Needlepoint"), "millimetre sizes sort before unknown text")
	assert.Negative(t, CompareNibSizes("Architect", "Needlepoint"))
	assert.Positive(t, CompareNibSizes("", "EF"), "empty sorts last")
	assert.Zero(t, CompareNibSizes(" ", ""), "blank equals empty")
	assert.Zero(t, CompareNibSizes("", " "))
	assert.Positive(t, CompareNibSizes("  ", "F"))
	assert.Negative(t, CompareNibSizes("EF", ""))
	assert.Zero(t, CompareNibSizes("M", "M"))
}

func TestSortToggle(t *testing.T) {
	var s SortState
	s = s.Toggle(PenBrand)
	assert.Equal(t, SortState{Key: PenBrand, Dir: Asc}, s)
	s = s.Toggle(PenBrand)
	assert.Equal(t, SortState{Key: PenBrand, Dir: Desc}, s)
	s = s.Toggle(PenBrand)
	assert.Equal(t, SortState{Key: PenBrand, Dir: Asc}, s)
	s = s.Toggle(PenBrand).Toggle(PenModel)
	assert.Equal(t, SortState{Key: PenModel, Dir: Asc}, s)
}

func penIDs(rows []PenRow) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Pen.ID
	}
	return out
}

func TestSortPens_DefaultAndFallback(t *testing.T) {
	rows := PenRows(fixture())
	SortPens(rows, SortState{})
	assert.Equal(t, []string{"pen2", "pen3", "pen1", "pen4"}, penIDs(rows))

	// refill count ties (pen3 and pen4 both 0) fall back to brand then model.
	SortPens(rows, SortState{Key: PenRefillCount, Dir: Asc})
	assert.Equal(t, []string{"pen3", "pen4", "pen2", "pen1"}, penIDs(rows))
}

func TestSortPens_ToggleTwiceIsStable(t *testing.T) {
	for _, key := range PenSortKeys {
		base := PenRows(fixture())
		SortPens(base, SortState{Key: key})

		rows := PenRows(fixture())
		var st SortState
		st = st.Toggle(key)
		SortPens(rows, st)
		st = st.Toggle(key)
		SortPens(rows, st)
		st = st.Toggle(key)
		SortPens(rows, st)
		assert.Equal(t, penIDs(base), penIDs(rows), "key %s", key)
	}
}

func TestSortPens_DateInkedMissingLastBothWays(t *testing.T) {
	rows := PenRows(fixture())
	SortPens(rows, SortState{Key: PenDateInked, Dir: Asc})
	assert.Equal(t, []string{"pen2", "pen1", "pen3", "pen4"}, penIDs(rows))
	SortPens(rows, SortState{Key: PenDateInked, Dir: Desc})
	assert.Equal(t, []string{"pen1", "pen2", "pen3", "pen4"}, penIDs(rows))
}

func TestSortPens_CurrentInk(t *testing.T) {
	rows := PenRows(fixture())
	SortPens(rows, SortState{Key: PenCurrentInk, Dir: Asc})
	// Pens without a current ink compare as "" and come first ascending.
	assert.Equal(t, []string{"pen3", "pen4", "pen2", "pen1"}, penIDs(rows))
	assert.Equal(t, "Kon-peki", rows[2].CurrentInkName())
	assert.Equal(t, "Souboku", rows[3].CurrentInkName())
}

func TestSortInks_BlankCollectionIsEmptyString(t *testing.T) {
	rows := InkRows(fixture())
	SortInks(rows, SortState{Key: InkCollection, Dir: Asc})
	got := []string{}
	for _, r := range rows {
		got = append(got, r.Ink.ID)
	}
	assert.Equal(t, []string{"ink3", "ink2", "ink1"}, got)

	SortInks(rows, SortState{Key: InkUsageCount, Dir: Desc})
	assert.Equal(t, "ink3", rows[2].Ink.ID)
}

func TestEmptyCollections(t *testing.T) {
	var c model.Collections
	assert.Empty(t, PenRows(c))
	assert.Empty(t, InkRows(c))
	assert.Empty(t, CurrentlyInked(c))
	page := PageRefills(nil, RefillFilter{}, Page{})
	assert.Empty(t, page.Rows)
	assert.Equal(t, 1, page.Pages)
	SortPens(nil, SortState{Key: PenBrand})
}

func TestCurrentlyInked(t *testing.T) {
	rows := CurrentlyInked(fixture())
	require.Len(t, rows, 2)
	assert.Equal(t, "pen1", rows[0].Pen.ID)
	assert.Equal(t, "r2", rows[0].Entry.ID)
	assert.Equal(t, "pen2", rows[1].Pen.ID)
	require.Len(t, rows[1].Inks, 2)
	assert.Equal(t, "Oxblood", rows[1].Inks[1].Ink.Name)
}

func TestPageRefills(t *testing.T) {
	c := model.Collections{Pens: []model.Pen{{ID: "a", Brand: "Pilot"}, {ID: "b", Brand: "Lamy"}}}
	for i := 0; i < 12; i++ {
		pen := "a"
		if i%3 == 0 {
			pen = "b"
		}
		c.RefillLog = append(c.RefillLog, model.RefillLogEntry{
			ID:     fmt.Sprintf("r%02d", i),
			Date:   model.NewDate(2024, 1, 1+i),
			PenID:  pen,
			InkIDs: []string{"x"},
		})
	}
	views := store.JoinRefills(c)

	page := PageRefills(views, RefillFilter{}, Page{Size: 5})
	assert.Equal(t, 12, page.Total)
	assert.Equal(t, 3, page.Pages)
	require.Len(t, page.Rows, 5)
	assert.Equal(t, "r11", page.Rows[0].ID)

	last := PageRefills(views, RefillFilter{}, Page{Index: 9, Size: 5})
	assert.Equal(t, 2, last.Page)
	require.Len(t, last.Rows, 2)
	assert.Equal(t, "r00", last.Rows[1].ID)

	lamy := PageRefills(views, RefillFilter{PenBrand: "Lamy"}, Page{Size: 7})
	assert.Equal(t, DefaultPageSize, lamy.Size)
	assert.Equal(t, 4, lamy.Total)
	for _, r := range lamy.Rows {
		assert.Equal(t, "Lamy", r.PenBrand())
	}
}

func TestSortRefillsByDate_TiesLaterStoredFirst(t *testing.T) {
	views := []model.RefillLogView{
		{RefillLogEntry: model.RefillLogEntry{ID: "a", Date: day("2024-01-01")}},
		{RefillLogEntry: model.RefillLogEntry{ID: "b", Date: day("2024-01-02")}},
		{RefillLogEntry: model.RefillLogEntry{ID: "c", Date: day("2024-01-01")}},
	}
	SortRefillsByDate(views)
	assert.Equal(t, "b", views[0].ID)
	assert.Equal(t, "c", views[1].ID)
	assert.Equal(t, "a", views[2].ID)
}

func TestPageSizes(t *testing.T) {
	assert.Equal(t, 25, NextPageSize(10))
	assert.Equal(t, 5, NextPageSize(25))
	n, err := ParsePageSize(0)
	require.NoError(t, err)
	assert.Equal(t, 10, n)
	_, err = ParsePageSize(7)
	assert.Error(t, err)

	k, err := ParseSortKey("NIBSIZE", PenSortKeys)
	require.NoError(t, err)
	assert.Equal(t, PenNibSize, k)
	_, err = ParseSortKey("price", InkSortKeys)
	assert.Error(t, err)
}
