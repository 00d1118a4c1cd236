package model

import (
	"fmt"
	"strings"
)

// ValidationError lists the required fields a record is missing.
type ValidationError struct {
	Kind   string
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: missing %s", e.Kind, strings.Join(e.Fields, ", "))
}

func ValidatePen(p Pen) error {
	var missing []string
	if strings.TrimSpace(p.Brand) == "" {
		missing = append(missing, "brand")
	}
	if strings.TrimSpace(p.Model) == "" {
		missing = append(missing, "model")
	}
	return validationErr("pen", missing)
}

func ValidateInk(i Ink) error {
	var missing []string
	if strings.TrimSpace(i.Brand) == "" {
		missing = append(missing, "brand")
	}
	if strings.TrimSpace(i.Name) == "" {
		missing = append(missing, "name")
	}
	return validationErr("ink", missing)
}

func ValidateRefill(e RefillLogEntry) error {
	var missing []string
	if strings.TrimSpace(e.PenID) == "" {
		missing = append(missing, "penId")
	}
	n := 0
	for _, id := range e.InkIDs {
		if strings.TrimSpace(id) != "" {
			n++
		}
	}
	if n == 0 {
		missing = append(missing, "inkIds")
	}
	if e.Date.IsZero() {
		missing = append(missing, "date")
	}
	return validationErr("refill", missing)
}

func validationErr(kind string, missing []string) error {
	if len(missing) == 0 {
		return nil
	}
	return &ValidationError{Kind: kind, Fields: missing}
}
