package models

import (
	"slices"
	"strings"

	"cloud.google.com/go/civil"
)

// Header is the first row of every destination sheet.
var Header = []string{"Question", "Date", "Link"}

// LinkSeparator joins a record's links into the Link column.
const LinkSeparator = ", "

// PostRecord is one collected forum post, ready to become a sheet row.
type PostRecord struct {
	Text  string     `bson:"text" json:"text"`
	Date  civil.Date `bson:"date" json:"date"`
	Links []string   `bson:"links" json:"links"`
}

// Equal reports full structural equality, link order included.
func (p PostRecord) Equal(o PostRecord) bool {
	return p.Text == o.Text && p.Date == o.Date && slices.Equal(p.Links, o.Links)
}

// Row renders the record in Question | Date | Link order.
func (p PostRecord) Row() []string {
	return []string{p.Text, p.Date.String(), strings.Join(p.Links, LinkSeparator)}
}

// Rows renders records in order.
func Rows(records []PostRecord) [][]string {
	out := make([][]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.Row())
	}
	return out
}

// AppendUnique appends r unless a structurally equal record is already present.
// It reports whether r was appended.
func AppendUnique(records []PostRecord, r PostRecord) ([]PostRecord, bool) {
	for _, existing := range records {
		if existing.Equal(r) {
			return records, false
		}
	}
	return append(records, r), true
}
