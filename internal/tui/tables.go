package tui

import (
	"strconv"
	"strings"

	"inkwell-cli/internal/model"
	"inkwell-cli/internal/views"

	"github.com/charmbracelet/bubbles/table"
	xansi "github.com/charmbracelet/x/ansi"
)

type tab int

const (
	tabPens tab = iota
	tabInks
	tabRefills
	tabInked
)

var tabs = []tab{tabPens, tabInks, tabRefills, tabInked}

func (t tab) String() string {
	switch t {
	case tabInks:
		return "Inks"
	case tabRefills:
		return "Refills"
	case tabInked:
		return "Inked"
	default:
		return "Pens"
	}
}

const maxColWidth = 32

// grid is one tab's table before it is sized for the terminal.
type grid struct {
	titles []string
	rows   []table.Row
}

// columns sizes every column to its widest cell, capped at maxColWidth.
func (g grid) columns() []table.Column {
	cols := make([]table.Column, len(g.titles))
	for i, t := range g.titles {
		w := xansi.StringWidth(t)
		for _, r := range g.rows {
			if cw := xansi.StringWidth(r[i]); cw > w {
				w = cw
			}
		}
		cols[i] = table.Column{Title: t, Width: min(w, maxColWidth)}
	}
	return cols
}

func penGrid(c model.Collections, state views.SortState) grid {
	rows := views.PenRows(c)
	views.SortPens(rows, state)

	g := grid{titles: sortTitles([]string{"Brand", "Model", "Color", "Nib", "Type", "Fills", "Current ink", "Inked"}, views.PenSortKeys, state)}
	for _, r := range rows {
		inked := ""
		if !r.DateInked.IsZero() {
			inked = r.DateInked.String()
		}
		g.rows = append(g.rows, table.Row{
			r.Pen.Brand, r.Pen.Model, r.Pen.Color, r.Pen.NibSize, r.Pen.NibType,
			strconv.Itoa(r.RefillCount), r.CurrentInkName(), inked,
		})
	}
	return g
}

func inkGrid(c model.Collections, state views.SortState) grid {
	rows := views.InkRows(c)
	views.SortInks(rows, state)

	g := grid{titles: append(sortTitles([]string{"Brand", "Collection", "Name", "Fills"}, views.InkSortKeys, state), "In")}
	for _, r := range rows {
		pens := make([]string, 0, len(r.CurrentPens))
		for _, p := range r.CurrentPens {
			pens = append(pens, penName(p))
		}
		g.rows = append(g.rows, table.Row{
			r.Ink.Brand, r.Ink.Collection, r.Ink.Name, strconv.Itoa(r.UsageCount), strings.Join(pens, ", "),
		})
	}
	return g
}

func refillGrid(p views.RefillPage) grid {
	g := grid{titles: []string{"Date", "Pen", "Inks", "Notes"}}
	for _, r := range p.Rows {
		pen := "(deleted pen)"
		if r.Pen != nil {
			pen = penName(*r.Pen)
		}
		g.rows = append(g.rows, table.Row{r.Date.String(), pen, strings.Join(r.InkNames(), " + "), r.Notes})
	}
	return g
}

func inkedGrid(c model.Collections) grid {
	g := grid{titles: []string{"Pen", "Nib", "Ink", "Since"}}
	for _, r := range views.CurrentlyInked(c) {
		names := make([]string, 0, len(r.Inks))
		for _, ref := range r.Inks {
			if ref.Ink != nil {
				names = append(names, ref.Ink.Name)
			}
		}
		g.rows = append(g.rows, table.Row{penName(r.Pen), r.Pen.NibSize, strings.Join(names, " + "), r.Entry.Date.String()})
	}
	return g
}

// sortTitles numbers the sortable headers for the digit keys and marks the
// active column with its direction.
func sortTitles(titles []string, keys []views.SortKey, state views.SortState) []string {
	out := make([]string, len(titles))
	for i, t := range titles {
		t = strconv.Itoa(i+1) + " " + t
		if i < len(keys) && keys[i] == state.Key {
			if state.Dir == views.Desc {
				t += " ▼"
			} else {
				t += " ▲"
			}
		}
		out[i] = t
	}
	return out
}

func penName(p model.Pen) string {
	return strings.TrimSpace(p.Brand + " " + p.Model)
}
