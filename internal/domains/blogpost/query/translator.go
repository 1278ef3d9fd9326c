// Package query translates free-form list parameters (filters, projection,
// sort, pagination) into repository query options and pagination metadata.
package query

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Op is a filter comparison operator.
type Op string

const (
	OpEq  Op = "eq"
	OpGt  Op = "gt"
	OpGte Op = "gte"
	OpLt  Op = "lt"
	OpLte Op = "lte"
)

// Condition is one predicate of the filter criteria.
type Condition struct {
	Field string
	Op    Op
	Value string
}

// SortField is one element of the sort order; Desc fields are written with a
// leading '-' in the query string.
type SortField struct {
	Field string
	Desc  bool
}

// ListQuery is the parsed form of a list request.
type ListQuery struct {
	Criteria []Condition
	Fields   []string
	Sort     []SortField
	Skip     int
	Limit    int

	// raw keeps the original parameters so page links can be rebuilt.
	raw url.Values
}

// PageLinks are the navigation URLs for a paginated listing. Prev/Next are
// empty on the first/last page respectively.
type PageLinks struct {
	First string `json:"first"`
	Prev  string `json:"prev,omitempty"`
	Next  string `json:"next,omitempty"`
	Last  string `json:"last"`
}

// filterable maps accepted filter fields to the operators they support.
var filterable = map[string]map[Op]bool{
	"category":  {OpEq: true},
	"title":     {OpEq: true},
	"author":    {OpEq: true},
	"createdAt": {OpGt: true, OpGte: true, OpLt: true, OpLte: true},
}

var sortable = map[string]bool{
	"createdAt": true,
	"updatedAt": true,
	"title":     true,
	"category":  true,
}

// reserved parameters that are not filter criteria.
var reserved = map[string]bool{
	"fields": true,
	"sort":   true,
	"skip":   true,
	"limit":  true,
}

// Parse turns a flat query-string mapping into a ListQuery. Unknown filter
// fields and malformed operators are rejected so typos fail loudly instead of
// silently returning everything.
func Parse(values url.Values) (ListQuery, error) {
	q := ListQuery{
		Skip:  0,
		Limit: DefaultLimit,
		raw:   values,
	}

	if s := values.Get("skip"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return q, fmt.Errorf("invalid skip %q", s)
		}
		q.Skip = n
	}

	if s := values.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return q, fmt.Errorf("invalid limit %q", s)
		}
		if n > MaxLimit {
			n = MaxLimit
		}
		q.Limit = n
	}

	if s := values.Get("fields"); s != "" {
		for _, f := range strings.Split(s, ",") {
			if f = strings.TrimSpace(f); f != "" {
				q.Fields = append(q.Fields, f)
			}
		}
	}

	if s := values.Get("sort"); s != "" {
		for _, f := range strings.Split(s, ",") {
			f = strings.TrimSpace(f)
			if f == "" {
				continue
			}
			sf := SortField{Field: f}
			if strings.HasPrefix(f, "-") {
				sf.Field = f[1:]
				sf.Desc = true
			}
			if !sortable[sf.Field] {
				return q, fmt.Errorf("cannot sort by %q", sf.Field)
			}
			q.Sort = append(q.Sort, sf)
		}
	}

	for key, vals := range values {
		if reserved[key] || len(vals) == 0 {
			continue
		}

		field, op, err := splitFieldOp(key)
		if err != nil {
			return q, err
		}

		ops, ok := filterable[field]
		if !ok {
			return q, fmt.Errorf("cannot filter by %q", field)
		}
		if !ops[op] {
			return q, fmt.Errorf("operator %q not supported for %q", op, field)
		}

		q.Criteria = append(q.Criteria, Condition{Field: field, Op: op, Value: vals[0]})
	}

	return q, nil
}

// splitFieldOp parses "field" or "field[op]" keys.
func splitFieldOp(key string) (string, Op, error) {
	open := strings.IndexByte(key, '[')
	if open < 0 {
		return key, OpEq, nil
	}
	if !strings.HasSuffix(key, "]") || open == 0 {
		return "", OpEq, fmt.Errorf("malformed filter key %q", key)
	}

	field := key[:open]
	switch op := Op(key[open+1 : len(key)-1]); op {
	case OpGt, OpGte, OpLt, OpLte:
		return field, op, nil
	default:
		return "", OpEq, fmt.Errorf("unknown operator in %q", key)
	}
}

// NumberOfPages is ceil(total/limit).
func (q ListQuery) NumberOfPages(total int) int {
	if total <= 0 {
		return 0
	}
	return (total + q.Limit - 1) / q.Limit
}

// Links builds first/prev/next/last URLs for the current filter, sort and
// page size against basePath.
func (q ListQuery) Links(basePath string, total int) PageLinks {
	pages := q.NumberOfPages(total)

	links := PageLinks{
		First: q.pageURL(basePath, 0),
	}

	lastSkip := 0
	if pages > 0 {
		lastSkip = (pages - 1) * q.Limit
	}
	links.Last = q.pageURL(basePath, lastSkip)

	if q.Skip > 0 {
		prev := q.Skip - q.Limit
		if prev < 0 {
			prev = 0
		}
		links.Prev = q.pageURL(basePath, prev)
	}
	if q.Skip+q.Limit < total {
		links.Next = q.pageURL(basePath, q.Skip+q.Limit)
	}

	return links
}

func (q ListQuery) pageURL(basePath string, skip int) string {
	params := url.Values{}
	for key, vals := range q.raw {
		if key == "skip" || key == "limit" {
			continue
		}
		params[key] = vals
	}
	params.Set("skip", strconv.Itoa(skip))
	params.Set("limit", strconv.Itoa(q.Limit))

	return basePath + "?" + params.Encode()
}
