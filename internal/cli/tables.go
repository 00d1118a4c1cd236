package cli

import (
	"strconv"
	"strings"
	"time"

	"inkwell-cli/internal/history"
	"inkwell-cli/internal/model"
	"inkwell-cli/internal/snapshot"
	"inkwell-cli/internal/views"
)

// Table renderings for --format table. JSON output marshals the underlying
// slices unchanged.

type penTable []views.PenRow

func (penTable) TableHeader() []string {
	return []string{"ID", "BRAND", "MODEL", "COLOR", "NIB", "TYPE", "FILLS", "CURRENT INK", "INKED"}
}

func (t penTable) TableRows() [][]string {
	out := make([][]string, 0, len(t))
	for _, r := range t {
		out = append(out, []string{
			r.Pen.ID, r.Pen.Brand, r.Pen.Model, r.Pen.Color, r.Pen.NibSize, r.Pen.NibType,
			strconv.Itoa(r.RefillCount), r.CurrentInkName(), dateCell(r.DateInked),
		})
	}
	return out
}

type inkTable []views.InkRow

func (inkTable) TableHeader() []string {
	return []string{"ID", "BRAND", "COLLECTION", "NAME", "FILLS", "IN"}
}

func (t inkTable) TableRows() [][]string {
	out := make([][]string, 0, len(t))
	for _, r := range t {
		pens := make([]string, 0, len(r.CurrentPens))
		for _, p := range r.CurrentPens {
			pens = append(pens, penLabel(p))
		}
		out = append(out, []string{
			r.Ink.ID, r.Ink.Brand, r.Ink.Collection, r.Ink.Name,
			strconv.Itoa(r.UsageCount), strings.Join(pens, ", "),
		})
	}
	return out
}

type refillTable views.RefillPage

func (refillTable) TableHeader() []string {
	return []string{"DATE", "PEN", "INKS", "NOTES", "ID"}
}

func (t refillTable) TableRows() [][]string {
	out := make([][]string, 0, len(t.Rows))
	for _, r := range t.Rows {
		pen := ""
		if r.Pen != nil {
			pen = penLabel(*r.Pen)
		}
		out = append(out, []string{
			dateCell(r.Date), pen, strings.Join(r.InkNames(), " + "), r.Notes, r.ID,
		})
	}
	return out
}

type inkedTable []views.CurrentRow

func (inkedTable) TableHeader() []string {
	return []string{"PEN", "NIB", "INK", "SINCE"}
}

func (t inkedTable) TableRows() [][]string {
	out := make([][]string, 0, len(t))
	for _, r := range t {
		names := make([]string, 0, len(r.Inks))
		for _, ref := range r.Inks {
			if ref.Ink != nil {
				names = append(names, ref.Ink.Name)
			}
		}
		out = append(out, []string{penLabel(r.Pen), r.Pen.NibSize, strings.Join(names, " + "), dateCell(r.Entry.Date)})
	}
	return out
}

type historyTable []history.Event

func (historyTable) TableHeader() []string {
	return []string{"AT", "KIND", "RESOURCE", "OK", "DETAIL"}
}

func (t historyTable) TableRows() [][]string {
	out := make([][]string, 0, len(t))
	for _, ev := range t {
		out = append(out, []string{
			ev.At.Local().Format(time.DateTime), string(ev.Kind), ev.Resource,
			strconv.FormatBool(ev.OK), firstLine(ev.Detail),
		})
	}
	return out
}

type snapshotTable []snapshot.Snapshot

func (snapshotTable) TableHeader() []string {
	return []string{"ID", "CREATED", "RESOURCES", "BYTES"}
}

func (t snapshotTable) TableRows() [][]string {
	out := make([][]string, 0, len(t))
	for _, s := range t {
		out = append(out, []string{
			s.ID, s.CreatedAt.Local().Format(time.DateTime),
			strings.Join(s.Resources, ","), strconv.FormatInt(s.Size, 10),
		})
	}
	return out
}

func penLabel(p model.Pen) string {
	return strings.TrimSpace(p.Brand + " " + p.Model)
}

func dateCell(d model.Date) string {
	if d.IsZero() {
		return "-"
	}
	return d.String()
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
