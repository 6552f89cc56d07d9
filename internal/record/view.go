package record

import (
	"cmp"
	"slices"
	"time"
)

const DefaultPageSize = 10

// View is one rendered page of a filtered collection.
type View struct {
	Items      []*Record
	Page       int
	PageSize   int
	TotalPages int
	TotalCount int
}

// DeriveView filters, sorts and paginates records. Filtering always happens
// before pagination. Page is clamped into [1, TotalPages] and TotalPages is at
// least 1, so an empty result still renders as page 1 of 1.
func DeriveView(records []*Record, c Criteria, page, pageSize int) View {
	return paginate(filterSorted(records, c), page, pageSize)
}

// Filter returns every record matching c in c.Sort order, without paging.
func Filter(records []*Record, c Criteria) []*Record {
	return filterSorted(records, c)
}

func filterSorted(records []*Record, c Criteria) []*Record {
	filtered := make([]*Record, 0, len(records))

	for _, r := range records {
		if Matches(r, c) {
			filtered = append(filtered, r)
		}
	}

	sortRecords(filtered, c.Sort)

	return filtered
}

func sortRecords(records []*Record, order SortOrder) {
	switch order {
	case SortDateAsc:
		slices.SortStableFunc(records, func(a, b *Record) int { return a.IssueDate.Compare(b.IssueDate) })
	case SortDateDesc:
		slices.SortStableFunc(records, func(a, b *Record) int { return b.IssueDate.Compare(a.IssueDate) })
	case SortAmountAsc:
		slices.SortStableFunc(records, func(a, b *Record) int { return cmp.Compare(a.Amount, b.Amount) })
	case SortAmountDesc:
		slices.SortStableFunc(records, func(a, b *Record) int { return cmp.Compare(b.Amount, a.Amount) })
	}
}

func paginate(filtered []*Record, page, pageSize int) View {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	total := len(filtered)
	totalPages := max(1, (total+pageSize-1)/pageSize)
	page = min(max(page, 1), totalPages)

	lo := min((page-1)*pageSize, total)
	hi := min(page*pageSize, total)

	return View{
		Items:      filtered[lo:hi:hi],
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
		TotalCount: total,
	}
}

// Memo caches the filtered and sorted collection between page changes.
// The caller bumps gen whenever the underlying collection changes.
type Memo struct {
	valid    bool
	gen      uint64
	key      criteriaKey
	filtered []*Record
}

type criteriaKey struct {
	query     string
	category  string
	status    string
	start     time.Time
	hasStart  bool
	end       time.Time
	hasEnd    bool
	dateField DateField
	sort      SortOrder
}

func keyOf(c Criteria) criteriaKey {
	k := criteriaKey{
		query:     c.Query,
		category:  c.Category,
		status:    c.Status,
		dateField: c.DateField,
		sort:      c.Sort,
	}

	if c.Start != nil {
		k.start, k.hasStart = *c.Start, true
	}

	if c.End != nil {
		k.end, k.hasEnd = *c.End, true
	}

	return k
}

// Derive behaves like DeriveView but reuses the previous filter pass when
// neither gen nor the criteria changed.
func (m *Memo) Derive(gen uint64, records []*Record, c Criteria, page, pageSize int) View {
	key := keyOf(c)
	if !m.valid || m.gen != gen || m.key != key {
		m.filtered = filterSorted(records, c)
		m.gen = gen
		m.key = key
		m.valid = true
	}

	return paginate(m.filtered, page, pageSize)
}

// Reset drops the cached pass.
func (m *Memo) Reset() {
	*m = Memo{}
}
