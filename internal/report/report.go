// Package report renders an inventory summary as Markdown. The CLI shows it
// through glamour and the web index page through goldmark.
package report

import (
	"fmt"
	"strings"

	"inkwell-cli/internal/model"
	"inkwell-cli/internal/views"
)

// TopInks caps the "most used" table.
const TopInks = 10

func Markdown(c model.Collections) string {
	var b strings.Builder
	b.WriteString("# Inkwell\n\n")
	fmt.Fprintf(&b, "%s, %s, %s.\n\n",
		plural(len(c.Pens), "pen"), plural(len(c.Inks), "ink"), plural(len(c.RefillLog), "refill"))

	current := views.CurrentlyInked(c)
	b.WriteString("## Currently inked\n\n")
	if len(current) == 0 {
		b.WriteString("_Nothing inked yet._\n\n")
	} else {
		b.WriteString("| Pen | Nib | Ink | Since |\n|---|---|---|---|\n")
		for _, r := range current {
			names := []string{}
			for _, ref := range r.Inks {
				if ref.Ink != nil {
					names = append(names, inkLabel(*ref.Ink))
				}
			}
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
				cell(r.Pen.Brand+" "+r.Pen.Model), cell(r.Pen.NibSize), cell(strings.Join(names, " + ")), r.Entry.Date)
		}
		b.WriteString("\n")
	}

	inks := views.InkRows(c)
	views.SortInks(inks, views.SortState{Key: views.InkUsageCount, Dir: views.Desc})
	used := inks[:0:0]
	for _, r := range inks {
		if r.UsageCount > 0 {
			used = append(used, r)
		}
	}
	if len(used) > TopInks {
		used = used[:TopInks]
	}
	if len(used) > 0 {
		b.WriteString("## Most used inks\n\n| Ink | Fills | In |\n|---|---:|---|\n")
		for _, r := range used {
			pens := make([]string, 0, len(r.CurrentPens))
			for _, p := range r.CurrentPens {
				pens = append(pens, p.Brand+" "+p.Model)
			}
			fmt.Fprintf(&b, "| %s | %d | %s |\n", cell(inkLabel(r.Ink)), r.UsageCount, cell(strings.Join(pens, ", ")))
		}
		b.WriteString("\n")
	}

	idle := []string{}
	for _, r := range views.PenRows(c) {
		if r.RefillCount == 0 {
			idle = append(idle, r.Pen.Brand+" "+r.Pen.Model)
		}
	}
	if len(idle) > 0 {
		b.WriteString("## Never inked\n\n")
		for _, name := range idle {
			fmt.Fprintf(&b, "- %s\n", strings.TrimSpace(name))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func inkLabel(i model.Ink) string {
	if i.Brand == "" {
		return i.Name
	}
	return i.Brand + " " + i.Name
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

// cell keeps table rows intact.
func cell(s string) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, "\n", " "))
	return strings.ReplaceAll(s, "|", `\|`)
}
