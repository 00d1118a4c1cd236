package views

import (
	"sort"

	"inkwell-cli/internal/model"
	"inkwell-cli/internal/store"
)

// PenRow is a pen with its derived columns.
type PenRow struct {
	Pen         model.Pen  `json:"pen"`
	RefillCount int        `json:"refillCount"`
	CurrentInk  *model.Ink `json:"currentInk,omitempty"`
	DateInked   model.Date `json:"dateInked"`
}

// CurrentInkName is "" when the pen was never inked or its ink was deleted.
func (r PenRow) CurrentInkName() string {
	if r.CurrentInk == nil {
		return ""
	}
	return r.CurrentInk.Name
}

// InkRow is an ink with its derived columns.
type InkRow struct {
	Ink         model.Ink   `json:"ink"`
	UsageCount  int         `json:"usageCount"`
	CurrentPens []model.Pen `json:"currentPens"`
}

// CurrentRow is a pen together with its latest refill.
type CurrentRow struct {
	Pen   model.Pen            `json:"pen"`
	Entry model.RefillLogEntry `json:"entry"`
	Inks  []model.InkRef       `json:"inks"`
}

// PenRows computes derived columns for every pen, in storage order.
func PenRows(c model.Collections) []PenRow {
	inks := inkIndex(c)
	latest := latestByPen(c)
	counts := map[string]int{}
	for _, e := range c.RefillLog {
		counts[e.PenID]++
	}

	rows := make([]PenRow, 0, len(c.Pens))
	for _, p := range c.Pens {
		row := PenRow{Pen: p, RefillCount: counts[p.ID]}
		if i, ok := latest[p.ID]; ok {
			e := c.RefillLog[i]
			row.DateInked = e.Date
			if len(e.InkIDs) > 0 {
				if ink, ok := inks[e.InkIDs[0]]; ok {
					ink := ink
					row.CurrentInk = &ink
				}
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// InkRows computes derived columns for every ink, in storage order.
func InkRows(c model.Collections) []InkRow {
	latest := latestByPen(c)

	rows := make([]InkRow, 0, len(c.Inks))
	for _, ink := range c.Inks {
		row := InkRow{Ink: ink, UsageCount: UsageCountForInk(c, ink.ID), CurrentPens: []model.Pen{}}
		for _, p := range c.Pens {
			if i, ok := latest[p.ID]; ok && c.RefillLog[i].HasInk(ink.ID) {
				row.CurrentPens = append(row.CurrentPens, p)
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// CurrentlyInked lists every existing pen that has been filled at least once,
// newest fill first.
func CurrentlyInked(c model.Collections) []CurrentRow {
	latest := latestByPen(c)
	views := store.JoinRefills(c)

	rows := []CurrentRow{}
	for _, p := range c.Pens {
		i, ok := latest[p.ID]
		if !ok {
			continue
		}
		rows = append(rows, CurrentRow{Pen: p, Entry: c.RefillLog[i].Clone(), Inks: views[i].Inks})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if c := b.Entry.Date.Compare(a.Entry.Date); c != 0 {
			return c < 0
		}
		if c := compareText(a.Pen.Brand, b.Pen.Brand); c != 0 {
			return c < 0
		}
		return compareText(a.Pen.Model, b.Pen.Model) < 0
	})
	return rows
}

// PenBrands returns the distinct pen brands, sorted.
func PenBrands(c model.Collections) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, p := range c.Pens {
		if p.Brand == "" || seen[p.Brand] {
			continue
		}
		seen[p.Brand] = true
		out = append(out, p.Brand)
	}
	sort.Slice(out, func(i, j int) bool { return compareText(out[i], out[j]) < 0 })
	return out
}

func inkIndex(c model.Collections) map[string]model.Ink {
	out := make(map[string]model.Ink, len(c.Inks))
	for _, i := range c.Inks {
		out[i.ID] = i
	}
	return out
}
