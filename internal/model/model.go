package model

// Resource names. These are the only collections the backing store accepts.
const (
	ResourceInks      = "inks"
	ResourcePens      = "pens"
	ResourceRefillLog = "refillLog"
)

// Resources lists the persisted collections in a stable order.
var Resources = []string{ResourceInks, ResourcePens, ResourceRefillLog}

type Ink struct {
	ID         string `json:"id"`
	Brand      string `json:"brand"`
	Collection string `json:"collection"`
	Name       string `json:"name"`
}

type Pen struct {
	ID      string `json:"id"`
	Brand   string `json:"brand"`
	Model   string `json:"model"`
	Color   string `json:"color"`
	NibSize string `json:"nibSize"`
	NibType string `json:"nibType"`
}

// RefillLogEntry records filling one pen with one or more inks on a given day.
// InkIDs keeps the order the inks were picked in; the first one is the "current" ink.
type RefillLogEntry struct {
	ID     string   `json:"id"`
	Date   Date     `json:"date"`
	PenID  string   `json:"penId"`
	InkIDs []string `json:"inkIds"`
	Notes  string   `json:"notes"`
}

// Collections is the full persisted state: one slice per resource.
type Collections struct {
	Inks      []Ink            `json:"inks"`
	Pens      []Pen            `json:"pens"`
	RefillLog []RefillLogEntry `json:"refillLog"`
}

// Clone returns a deep copy.
func (c Collections) Clone() Collections {
	out := Collections{
		Inks:      append([]Ink(nil), c.Inks...),
		Pens:      append([]Pen(nil), c.Pens...),
		RefillLog: make([]RefillLogEntry, len(c.RefillLog)),
	}
	for i, e := range c.RefillLog {
		out.RefillLog[i] = e.Clone()
	}
	if out.Inks == nil {
		out.Inks = []Ink{}
	}
	if out.Pens == nil {
		out.Pens = []Pen{}
	}
	return out
}

// Resource returns the slice stored under name, or nil for an unknown name.
func (c Collections) Resource(name string) any {
	switch name {
	case ResourceInks:
		return c.Inks
	case ResourcePens:
		return c.Pens
	case ResourceRefillLog:
		return c.RefillLog
	}
	return nil
}

// Clone copies the entry. InkIDs is never nil so it encodes as [].
func (e RefillLogEntry) Clone() RefillLogEntry {
	e.InkIDs = append(make([]string, 0, len(e.InkIDs)), e.InkIDs...)
	return e
}

// HasInk reports whether id is one of the entry's inks.
func (e RefillLogEntry) HasInk(id string) bool {
	for _, v := range e.InkIDs {
		if v == id {
			return true
		}
	}
	return false
}

// InkRef is one resolved ink of a refill. Ink is nil when the id dangles.
type InkRef struct {
	ID  string `json:"id"`
	Ink *Ink   `json:"ink,omitempty"`
}

// RefillLogView is a refill entry with its pen and inks embedded by value.
type RefillLogView struct {
	RefillLogEntry
	Pen  *Pen     `json:"pen,omitempty"`
	Inks []InkRef `json:"inks"`
}

// PenBrand returns the joined pen's brand, or "" when the pen is missing.
func (v RefillLogView) PenBrand() string {
	if v.Pen == nil {
		return ""
	}
	return v.Pen.Brand
}

// InkNames returns display names for the resolved inks, skipping dangling ids.
func (v RefillLogView) InkNames() []string {
	out := make([]string, 0, len(v.Inks))
	for _, r := range v.Inks {
		if r.Ink != nil {
			out = append(out, r.Ink.Name)
		}
	}
	return out
}
