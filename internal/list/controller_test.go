package list

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/labadmin/internal/model"
)

func membersResource() model.Resource {
	res, ok := model.ResourceByName("members")
	if !ok {
		panic("members resource missing from catalog")
	}
	return res
}

func memberDataset(n int) []model.Record {
	rows := make([]model.Record, 0, n)
	for i := 1; i <= n; i++ {
		rows = append(rows, model.Record{
			"id":     float64(i),
			"name":   fmt.Sprintf("Member %02d", i),
			"email":  fmt.Sprintf("member%d@lab.example.org", i),
			"grade":  "PR",
			"status": "permanent",
		})
	}
	return rows
}

func TestDeriveIsDeterministic(t *testing.T) {
	c := NewController(membersResource(), 10)
	c.SetSearchTerm("member")
	c.ToggleSort("name")
	dataset := memberDataset(25)

	first := c.Derive(dataset)
	second := c.Derive(dataset)

	assert.Equal(t, first.Total, second.Total)
	require.Equal(t, len(first.Rows), len(second.Rows))
	for i := range first.Rows {
		assert.Equal(t, first.Rows[i]["id"], second.Rows[i]["id"])
	}
}

func TestSearchMatchesConfiguredFields(t *testing.T) {
	c := NewController(membersResource(), 10)
	dataset := []model.Record{
		{"name": "Amina Benali", "email": "amina@lab.org", "grade": "MCF", "status": "permanent"},
		{"name": "Youssef El Fassi", "email": "youssef@lab.org", "grade": "PR", "status": "permanent"},
		// matching text in a non-search field must not count
		{"name": "Karim Tazi", "email": "karim@lab.org", "grade": "PR", "status": "amina"},
	}

	c.SetSearchTerm("AMINA")
	res := c.Derive(dataset)

	require.Equal(t, 1, res.Total)
	assert.Equal(t, "Amina Benali", res.Rows[0]["name"])
}

func TestSearchIsUnicodeCaseInsensitive(t *testing.T) {
	c := NewController(membersResource(), 10)
	dataset := []model.Record{
		{"name": "Élodie Noël", "email": "e@lab.org", "grade": "CR", "status": "permanent"},
	}

	c.SetSearchTerm("élodie")
	assert.Equal(t, 1, c.Derive(dataset).Total)

	c.SetSearchTerm("ÉLODIE")
	assert.Equal(t, 1, c.Derive(dataset).Total)
}

func TestSearchAllFieldsWhenNoneConfigured(t *testing.T) {
	res, ok := model.ResourceByName("axes")
	require.True(t, ok)
	c := NewController(res, 10)

	dataset := []model.Record{
		{"title_fr": "Vision par ordinateur", "slug": "vision", "position": float64(1)},
		{"title_fr": "Systèmes embarqués", "slug": "embedded", "position": float64(2)},
	}

	c.SetSearchTerm("embedded")
	derived := c.Derive(dataset)
	require.Equal(t, 1, derived.Total)
	assert.Equal(t, "embedded", derived.Rows[0]["slug"])
}

func TestActiveFilterExactMatch(t *testing.T) {
	c := NewController(membersResource(), 10)
	dataset := []model.Record{
		{"name": "A", "status": "permanent"},
		{"name": "B", "status": "PhD"},
		{"name": "C", "status": "phd"},
	}

	c.SetActiveFilter("phd")
	res := c.Derive(dataset)
	assert.Equal(t, 2, res.Total)

	c.SetActiveFilter(FilterAll)
	assert.Equal(t, 3, c.Derive(dataset).Total)
}

func TestSortStability(t *testing.T) {
	c := NewController(membersResource(), 10)
	dataset := []model.Record{
		{"id": float64(1), "name": "Zed", "grade": "PR"},
		{"id": float64(2), "name": "Anna", "grade": "PR"},
		{"id": float64(3), "name": "Mira", "grade": "MCF"},
		{"id": float64(4), "name": "Bob", "grade": "PR"},
	}

	c.ToggleSort("grade")
	res := c.Derive(dataset)
	// MCF first, then the three PR rows in original order
	require.Equal(t, 4, res.Total)
	assert.Equal(t, "Mira", res.Rows[0]["name"])
	assert.Equal(t, "Zed", res.Rows[1]["name"])
	assert.Equal(t, "Anna", res.Rows[2]["name"])
	assert.Equal(t, "Bob", res.Rows[3]["name"])

	c.ToggleSort("grade") // flip to desc
	res = c.Derive(dataset)
	assert.Equal(t, "Zed", res.Rows[0]["name"])
	assert.Equal(t, "Anna", res.Rows[1]["name"])
	assert.Equal(t, "Bob", res.Rows[2]["name"])
	assert.Equal(t, "Mira", res.Rows[3]["name"])
}

func TestSortNumericAware(t *testing.T) {
	pubs, ok := model.ResourceByName("publications")
	require.True(t, ok)
	c := NewController(pubs, 10)

	dataset := []model.Record{
		{"title": "A", "year": float64(2021)},
		{"title": "B", "year": float64(2009)},
		{"title": "C", "year": float64(2014)},
	}

	c.ToggleSort("year")
	res := c.Derive(dataset)
	assert.Equal(t, "B", res.Rows[0]["title"])
	assert.Equal(t, "C", res.Rows[1]["title"])
	assert.Equal(t, "A", res.Rows[2]["title"])

	c.ToggleSort("year")
	res = c.Derive(dataset)
	assert.Equal(t, "A", res.Rows[0]["title"])
}

func TestToggleSortTwoStateCycle(t *testing.T) {
	c := NewController(membersResource(), 10)

	c.ToggleSort("name")
	key, dir := c.Sort()
	assert.Equal(t, "name", key)
	assert.Equal(t, Asc, dir)

	c.ToggleSort("name")
	_, dir = c.Sort()
	assert.Equal(t, Desc, dir)

	// two-state cycle: third toggle returns to asc, never unsorted
	c.ToggleSort("name")
	key, dir = c.Sort()
	assert.Equal(t, "name", key)
	assert.Equal(t, Asc, dir)
}

func TestToggleSortSwitchingColumnsResetsToAsc(t *testing.T) {
	c := NewController(membersResource(), 10)

	c.ToggleSort("name")
	c.ToggleSort("name") // desc
	c.ToggleSort("email")

	key, dir := c.Sort()
	assert.Equal(t, "email", key)
	assert.Equal(t, Asc, dir)
}

func TestToggleSortUnknownColumnIsNoop(t *testing.T) {
	c := NewController(membersResource(), 10)
	c.ToggleSort("not_a_column")
	key, _ := c.Sort()
	assert.Equal(t, "", key)
}

func TestPaginationBounds(t *testing.T) {
	c := NewController(membersResource(), 10)
	dataset := memberDataset(25)

	res := c.Derive(dataset)
	assert.Equal(t, 3, res.TotalPages)

	// out-of-range navigation is rejected, current page untouched
	assert.False(t, c.SetPage(4))
	assert.False(t, c.SetPage(0))
	assert.Equal(t, 1, c.Page())

	assert.True(t, c.SetPage(3))
	res = c.Derive(dataset)
	assert.Equal(t, 3, res.Page)
	assert.Len(t, res.Rows, 5)
}

func TestPageResetOnFilterChange(t *testing.T) {
	c := NewController(membersResource(), 10)
	dataset := memberDataset(25)
	c.Derive(dataset)

	require.True(t, c.SetPage(3))
	c.SetSearchTerm("x")
	assert.Equal(t, 1, c.Page())

	c.Derive(dataset)
	require.True(t, c.SetPage(1))
	c.SetActiveFilter("phd")
	assert.Equal(t, 1, c.Page())
}

func TestEmptyDatasetKeepsOnePage(t *testing.T) {
	c := NewController(membersResource(), 10)

	res := c.Derive(nil)
	assert.Equal(t, 0, res.Total)
	assert.Equal(t, 1, res.TotalPages)
	assert.Equal(t, 1, res.Page)
	assert.Empty(t, res.Rows)
}

func TestDeriveClampsPageWhenDatasetShrinks(t *testing.T) {
	c := NewController(membersResource(), 10)
	c.Derive(memberDataset(25))
	require.True(t, c.SetPage(3))

	res := c.Derive(memberDataset(5))
	assert.Equal(t, 1, res.Page)
	assert.Len(t, res.Rows, 5)
}

func TestCompareValues(t *testing.T) {
	assert.Negative(t, compareValues("9", "10"))
	assert.Positive(t, compareValues("2023", "2009"))
	assert.Zero(t, compareValues("7", "7"))
	// mixed types fall back to lexicographic
	assert.Negative(t, compareValues("10", "abc"))
	assert.Positive(t, compareValues("b", "a"))
}
