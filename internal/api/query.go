package api

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/MrJamesThe3rd/backoffice/internal/record"
)

// EncodeQuery renders view criteria as the query string of GET {path}/view.
func EncodeQuery(c record.Criteria, page, pageSize int) url.Values {
	q := url.Values{}

	set := func(k, v string) {
		if v != "" {
			q.Set(k, v)
		}
	}

	set("q", c.Query)
	set("category", c.Category)
	set("status", c.Status)
	set("date_field", string(c.DateField))
	set("sort", string(c.Sort))

	if c.Start != nil {
		q.Set("from", c.Start.Format(time.DateOnly))
	}

	if c.End != nil {
		q.Set("to", c.End.Format(time.DateOnly))
	}

	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}

	if pageSize > 0 {
		q.Set("page_size", strconv.Itoa(pageSize))
	}

	return q
}

// DecodeQuery is the inverse of EncodeQuery. Missing page values decode as 0.
// Dates are inclusive: "to" keeps every record of its final day.
func DecodeQuery(q url.Values) (record.Criteria, int, int, error) {
	c := record.Criteria{
		Query:     q.Get("q"),
		Category:  q.Get("category"),
		Status:    q.Get("status"),
		DateField: record.DateField(q.Get("date_field")),
		Sort:      record.SortOrder(q.Get("sort")),
	}

	for key, dst := range map[string]**time.Time{"from": &c.Start, "to": &c.End} {
		s := q.Get(key)
		if s == "" {
			continue
		}

		t, err := parseBound(s, key == "to")
		if err != nil {
			return record.Criteria{}, 0, 0, fmt.Errorf("invalid %s date %q", key, s)
		}

		*dst = &t
	}

	page, err := intParam(q, "page")
	if err != nil {
		return record.Criteria{}, 0, 0, err
	}

	pageSize, err := intParam(q, "page_size")
	if err != nil {
		return record.Criteria{}, 0, 0, err
	}

	return c, page, pageSize, nil
}

// parseBound reads a range bound. A bare date covers the whole day, so as an
// upper bound it means the last instant of that day. RFC 3339 timestamps are
// taken as given.
func parseBound(s string, upper bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}

	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, err
	}

	if upper {
		t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}

	return t, nil
}

func intParam(q url.Values, key string) (int, error) {
	s := q.Get(key)
	if s == "" {
		return 0, nil
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", key, s)
	}

	return n, nil
}
