package record

import (
	"strings"
	"time"
)

// All is the sentinel selection that disables a categorical filter.
const All = "all"

// DateField selects which record date a date range applies to.
type DateField string

const (
	DateIssue   DateField = "issue"
	DateDue     DateField = "due"
	DateUpdated DateField = "updated"
)

// SortOrder orders a derived view. The zero value keeps collection order.
type SortOrder string

const (
	SortNone       SortOrder = ""
	SortDateAsc    SortOrder = "date_asc"
	SortDateDesc   SortOrder = "date_desc"
	SortAmountAsc  SortOrder = "amount_asc"
	SortAmountDesc SortOrder = "amount_desc"
)

// Criteria is the combined filter state a list page applies to its collection.
type Criteria struct {
	Query     string
	Category  string
	Status    string
	Start     *time.Time
	End       *time.Time
	DateField DateField
	Sort      SortOrder
}

// Matches reports whether r satisfies every constraint in c.
func Matches(r *Record, c Criteria) bool {
	return matchesQuery(r, c.Query) &&
		matchesSelection(string(r.Status), c.Status) &&
		matchesSelection(r.Category, c.Category) &&
		matchesDate(r, c)
}

func matchesQuery(r *Record, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}

	for _, field := range []string{r.Reference, r.ID.String(), r.Counterparty, r.Company, r.Description} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}

	return false
}

func matchesSelection(value, selected string) bool {
	if selected == "" || selected == All {
		return true
	}

	return value == selected
}

func matchesDate(r *Record, c Criteria) bool {
	if c.Start == nil && c.End == nil {
		return true
	}

	d, ok := recordDate(r, c.DateField)
	if !ok {
		return false
	}

	if c.Start != nil && d.Before(*c.Start) {
		return false
	}

	if c.End != nil && d.After(*c.End) {
		return false
	}

	return true
}

func recordDate(r *Record, field DateField) (time.Time, bool) {
	switch field {
	case DateDue:
		if r.DueDate == nil {
			return time.Time{}, false
		}

		return *r.DueDate, true
	case DateUpdated:
		if r.UpdatedAt == nil {
			return time.Time{}, false
		}

		return *r.UpdatedAt, true
	default:
		return r.IssueDate, !r.IssueDate.IsZero()
	}
}
