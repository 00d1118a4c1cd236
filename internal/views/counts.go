package views

import "inkwell-cli/internal/model"

// RefillCountForPen counts refill entries for penID.
func RefillCountForPen(c model.Collections, penID string) int {
	n := 0
	for _, e := range c.RefillLog {
		if e.PenID == penID {
			n++
		}
	}
	return n
}

// UsageCountForInk counts refill entries whose inks include inkID.
func UsageCountForInk(c model.Collections, inkID string) int {
	n := 0
	for _, e := range c.RefillLog {
		if e.HasInk(inkID) {
			n++
		}
	}
	return n
}

// MostRecentRefillForPen returns the pen's latest entry by date.
// When several entries share the latest date, the one stored last wins.
func MostRecentRefillForPen(c model.Collections, penID string) (model.RefillLogEntry, bool) {
	var best model.RefillLogEntry
	found := false
	for _, e := range c.RefillLog {
		if e.PenID != penID {
			continue
		}
		if !found || !e.Date.Before(best.Date) {
			best = e
			found = true
		}
	}
	if !found {
		return model.RefillLogEntry{}, false
	}
	return best.Clone(), true
}

// MostRecentInkForPen returns the first ink of the pen's latest entry.
func MostRecentInkForPen(c model.Collections, penID string) (string, bool) {
	e, ok := MostRecentRefillForPen(c, penID)
	if !ok || len(e.InkIDs) == 0 {
		return "", false
	}
	return e.InkIDs[0], true
}

func MostRecentInkDateForPen(c model.Collections, penID string) (model.Date, bool) {
	e, ok := MostRecentRefillForPen(c, penID)
	if !ok {
		return model.Date{}, false
	}
	return e.Date, true
}

// IsCurrentlyInked reports whether inkID is part of the pen's latest entry.
// Older entries do not count once a newer one exists.
func IsCurrentlyInked(c model.Collections, penID, inkID string) bool {
	e, ok := MostRecentRefillForPen(c, penID)
	return ok && e.HasInk(inkID)
}

// CurrentPensForInk lists pens (in storage order) currently holding inkID.
func CurrentPensForInk(c model.Collections, inkID string) []model.Pen {
	latest := latestByPen(c)
	out := []model.Pen{}
	for _, p := range c.Pens {
		if i, ok := latest[p.ID]; ok && c.RefillLog[i].HasInk(inkID) {
			out = append(out, p)
		}
	}
	return out
}

// latestByPen maps pen id to the index of its latest refill entry,
// with the same tie-break as MostRecentRefillForPen.
func latestByPen(c model.Collections) map[string]int {
	out := map[string]int{}
	for i, e := range c.RefillLog {
		j, ok := out[e.PenID]
		if !ok || !e.Date.Before(c.RefillLog[j].Date) {
			out[e.PenID] = i
		}
	}
	return out
}
