package models

import (
	"regexp"
	"strings"
	"time"
)

type Category struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// CategoryID derives the well-known id of a category from its display name.
func CategoryID(name string) string {
	return whitespaceRun.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
}

// BaseCategories is the seed set offered to a new ledger.
var BaseCategories = []string{
	"Jídlo",
	"Zábava",
	"Zdraví",
	"Nákupy",
	"Cestování",
	"Investice",
	"Příjmy",
	"Domácnost",
	"Káva",
	"Služby",
	"Drogerie",
	"Bydlení",
	"Jídlo venku",
	"Předplatné",
	"Doprava/Palivo",
	"Sport",
	"Other",
}
