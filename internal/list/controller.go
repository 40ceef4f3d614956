// Package list owns the search, filter, sort, and pagination state of
// a table view and derives the visible row set from an immutable
// dataset. Derivation is synchronous and deterministic; the controller
// never talks to the network.
package list

import (
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/search"

	"github.com/jwalitptl/labadmin/internal/model"
)

// Direction of the active sort column.
type Direction int

const (
	Asc Direction = iota
	Desc
)

func (d Direction) String() string {
	if d == Desc {
		return "desc"
	}
	return "asc"
}

// FilterAll disables the designated-field filter.
const FilterAll = "all"

// Controller holds the list state for one resource view.
type Controller struct {
	searchFields []string
	filterField  string
	sortable     map[string]bool
	perPage      int

	searchTerm   string
	activeFilter string
	sortKey      string
	sortDir      Direction
	page         int

	// totalPages from the most recent Derive; page navigation is
	// validated against it.
	totalPages int

	matcher *search.Matcher
}

// NewController builds a controller for a resource using its declared
// search fields, filter field and sortable columns.
func NewController(res model.Resource, perPage int) *Controller {
	if perPage < 1 {
		perPage = 10
	}
	sortable := make(map[string]bool, len(res.Columns))
	for _, col := range res.Columns {
		if col.Sortable {
			sortable[col.Key] = true
		}
	}
	return &Controller{
		searchFields: res.SearchFields,
		filterField:  res.FilterField,
		sortable:     sortable,
		perPage:      perPage,
		activeFilter: FilterAll,
		page:         1,
		totalPages:   1,
		matcher:      search.New(language.Und, search.IgnoreCase),
	}
}

// SetSearchTerm updates the search term and resets to the first page.
func (c *Controller) SetSearchTerm(term string) {
	c.searchTerm = term
	c.page = 1
}

// SetActiveFilter updates the designated-field filter and resets to
// the first page. FilterAll lifts the restriction.
func (c *Controller) SetActiveFilter(key string) {
	c.activeFilter = key
	c.page = 1
}

// ToggleSort activates columnKey ascending, or flips direction when it
// is already active. The cycle is two-state: asc and desc, never back
// to unsorted. Non-sortable columns are a no-op.
func (c *Controller) ToggleSort(columnKey string) {
	if !c.sortable[columnKey] {
		return
	}
	if c.sortKey == columnKey {
		if c.sortDir == Asc {
			c.sortDir = Desc
		} else {
			c.sortDir = Asc
		}
		return
	}
	c.sortKey = columnKey
	c.sortDir = Asc
}

// SetPage moves to page n. Values outside [1, totalPages] of the last
// derivation are rejected with no state change, so callers can tell an
// invalid navigation attempt from a successful one.
func (c *Controller) SetPage(n int) bool {
	if n < 1 || n > c.totalPages {
		return false
	}
	c.page = n
	return true
}

// Page returns the current 1-indexed page.
func (c *Controller) Page() int { return c.page }

// SearchTerm returns the current search term.
func (c *Controller) SearchTerm() string { return c.searchTerm }

// ActiveFilter returns the current filter key.
func (c *Controller) ActiveFilter() string { return c.activeFilter }

// Sort returns the active sort column ("" when unsorted) and direction.
func (c *Controller) Sort() (string, Direction) { return c.sortKey, c.sortDir }

// Result is one derived visible row set.
type Result struct {
	Rows       []model.Record
	Total      int // rows after filtering, before pagination
	Page       int
	TotalPages int
}

// Derive computes the visible row set: search filter, designated-field
// filter, stable sort, then pagination. It is deterministic for a
// fixed dataset and state. An empty dataset yields one empty page so
// pagination controls stay well defined. When filtering shrank the
// dataset under the current page, the page is clamped to the last one.
func (c *Controller) Derive(dataset []model.Record) Result {
	filtered := c.applyFilters(dataset)
	c.sortRecords(filtered)

	total := len(filtered)
	totalPages := (total + c.perPage - 1) / c.perPage
	if totalPages < 1 {
		totalPages = 1
	}
	c.totalPages = totalPages
	if c.page > totalPages {
		c.page = totalPages
	}

	start := (c.page - 1) * c.perPage
	end := start + c.perPage
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return Result{
		Rows:       filtered[start:end],
		Total:      total,
		Page:       c.page,
		TotalPages: totalPages,
	}
}

func (c *Controller) applyFilters(dataset []model.Record) []model.Record {
	out := make([]model.Record, 0, len(dataset))
	for _, rec := range dataset {
		if !c.matchesSearch(rec) {
			continue
		}
		if !c.matchesFilter(rec) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// matchesSearch does a Unicode case-folded substring match over the
// configured search fields, or every field when none are configured.
func (c *Controller) matchesSearch(rec model.Record) bool {
	if c.searchTerm == "" {
		return true
	}
	fields := c.searchFields
	if len(fields) == 0 {
		fields = make([]string, 0, len(rec))
		for k := range rec {
			fields = append(fields, k)
		}
	}
	for _, f := range fields {
		if start, _ := c.matcher.IndexString(rec.String(f), c.searchTerm); start >= 0 {
			return true
		}
	}
	return false
}

func (c *Controller) matchesFilter(rec model.Record) bool {
	if c.filterField == "" || c.activeFilter == FilterAll {
		return true
	}
	return strings.ToLower(rec.String(c.filterField)) == strings.ToLower(c.activeFilter)
}

// sortRecords sorts in place by the active column, numeric comparison
// when both values parse as numbers, lexicographic otherwise. The sort
// is stable so equal keys keep their original relative order.
func (c *Controller) sortRecords(rows []model.Record) {
	if c.sortKey == "" {
		return
	}
	key, desc := c.sortKey, c.sortDir == Desc
	sort.SliceStable(rows, func(i, j int) bool {
		less := compareValues(rows[i].String(key), rows[j].String(key))
		if desc {
			return less > 0
		}
		return less < 0
	})
}

// compareValues orders two field values: numerically when both look
// numeric, lexicographically otherwise.
func compareValues(a, b string) int {
	fa, errA := strconv.ParseFloat(a, 64)
	fb, errB := strconv.ParseFloat(b, 64)
	if errA == nil && errB == nil {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(a, b)
}
