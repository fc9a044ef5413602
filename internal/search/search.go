// Package search filters and sorts in-memory transaction snapshots. It is a
// pure function layer: no storage, no clock, no mutation of its input.
package search

import (
	"sort"
	"strings"

	"centime/internal/core"
)

// SortKey selects the comparison field.
type SortKey string

const (
	SortByDate     SortKey = "date"
	SortByAmount   SortKey = "amount"
	SortByCategory SortKey = "category"
	SortByType     SortKey = "type"
)

// SortOrder selects the direction.
type SortOrder string

const (
	Asc  SortOrder = "asc"
	Desc SortOrder = "desc"
)

// Filters holds the transient query criteria. Zero values and nil pointers
// impose no constraint, so an empty Filters returns every record sorted by
// date descending.
type Filters struct {
	Keyword   string
	Type      core.TransactionType
	Category  string
	MinAmount *core.Money // inclusive
	MaxAmount *core.Money // inclusive
	StartDate *core.Date  // inclusive
	EndDate   *core.Date  // inclusive
	SortBy    SortKey
	SortOrder SortOrder
}

// Search returns the transactions matching every supplied filter, sorted by
// the requested key. The input slice is never modified; ties keep their
// input order in both directions (the UI paginates on that guarantee).
func Search(transactions []core.Transaction, f Filters) []core.Transaction {
	out := make([]core.Transaction, 0, len(transactions))
	for _, t := range transactions {
		if matches(t, f) {
			out = append(out, t)
		}
	}

	sortBy := f.SortBy
	if sortBy == "" {
		sortBy = SortByDate
	}
	order := f.SortOrder
	if order == "" {
		order = Desc
	}

	sort.SliceStable(out, func(i, j int) bool {
		c := compare(out[i], out[j], sortBy)
		if order == Asc {
			return c < 0
		}
		return c > 0
	})

	return out
}

func matches(t core.Transaction, f Filters) bool {
	if f.Keyword != "" {
		kw := strings.ToLower(f.Keyword)
		if !strings.Contains(strings.ToLower(t.Description), kw) &&
			!strings.Contains(strings.ToLower(t.Category), kw) {
			return false
		}
	}
	if f.Type != "" && t.Type != f.Type {
		return false
	}
	if f.Category != "" &&
		!strings.Contains(strings.ToLower(t.Category), strings.ToLower(f.Category)) {
		return false
	}
	if f.MinAmount != nil && t.Amount.Cents < f.MinAmount.Cents {
		return false
	}
	if f.MaxAmount != nil && t.Amount.Cents > f.MaxAmount.Cents {
		return false
	}
	if f.StartDate != nil && t.Date.Before(f.StartDate.Time) {
		return false
	}
	if f.EndDate != nil && t.Date.After(f.EndDate.Time) {
		return false
	}
	return true
}

// compare returns <0, 0 or >0 in ascending terms. Unknown keys compare
// equal so the stable sort leaves the input order untouched.
func compare(a, b core.Transaction, key SortKey) int {
	switch key {
	case SortByDate:
		if a.Date.Before(b.Date.Time) {
			return -1
		}
		if a.Date.After(b.Date.Time) {
			return 1
		}
		return 0
	case SortByAmount:
		switch {
		case a.Amount.Cents < b.Amount.Cents:
			return -1
		case a.Amount.Cents > b.Amount.Cents:
			return 1
		default:
			return 0
		}
	case SortByCategory:
		return strings.Compare(a.Category, b.Category)
	case SortByType:
		return strings.Compare(string(a.Type), string(b.Type))
	default:
		return 0
	}
}
