package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecordID(t *testing.T) {
	id, ok := Record{"id": float64(42)}.ID()
	assert.True(t, ok)
	assert.Equal(t, int64(42), id)

	id, ok = Record{"id": "17"}.ID()
	assert.True(t, ok)
	assert.Equal(t, int64(17), id)

	_, ok = Record{"name": "no id yet"}.ID()
	assert.False(t, ok)
}

func TestRecordString(t *testing.T) {
	rec := Record{
		"name":  "Dupont",
		"year":  float64(2023),
		"read":  true,
		"blank": nil,
	}
	assert.Equal(t, "Dupont", rec.String("name"))
	assert.Equal(t, "2023", rec.String("year"))
	assert.Equal(t, "true", rec.String("read"))
	assert.Equal(t, "", rec.String("blank"))
	assert.Equal(t, "", rec.String("missing"))
}

func TestMergeDefaultsPreservedResponseWins(t *testing.T) {
	defaults := Record{"page": "home", "hero_title_fr": "Laboratoire", "logo": ""}
	resp := Record{"hero_title_fr": "LRIT", "id": float64(1)}

	merged := Merge(defaults, resp)

	assert.Equal(t, "LRIT", merged["hero_title_fr"])
	assert.Equal(t, "home", merged["page"])
	assert.Equal(t, "", merged["logo"])
	assert.Equal(t, float64(1), merged["id"])

	// inputs untouched
	assert.Equal(t, "Laboratoire", defaults["hero_title_fr"])
	assert.NotContains(t, resp, "page")
}

func TestLocalizedFallback(t *testing.T) {
	rec := Record{"title_en": "Computer vision", "title_ar": "رؤية حاسوبية"}

	assert.Equal(t, "Computer vision", Localized(rec, "title", LangEN))
	// fr missing, falls back to the first non-empty variant
	assert.Equal(t, "Computer vision", Localized(rec, "title", LangFR))

	bare := Record{"title": "untranslated"}
	assert.Equal(t, "untranslated", Localized(bare, "title", LangAR))
}

func TestColumnCell(t *testing.T) {
	rec := Record{"year": float64(2021), "title_fr": "Vision"}

	plain := PlainColumn("year", "Year", 6)
	assert.Equal(t, "2021", plain.Cell(rec))

	custom := CustomColumn("title", "Title", 20, func(_ interface{}, r Record) string {
		return Localized(r, "title", LangFR)
	})
	assert.Equal(t, "Vision", custom.Cell(rec))
}

func TestCatalogConsistency(t *testing.T) {
	for _, res := range Catalog {
		assert.NotEmpty(t, res.Name)
		assert.NotEmpty(t, res.Path)
		assert.NotEmpty(t, res.Columns, "resource %s has no columns", res.Name)
		if res.FilterField != "" {
			assert.Equal(t, "all", res.FilterValues[0],
				"resource %s filter values must start with all", res.Name)
		}
	}
	_, ok := ResourceByName("members")
	assert.True(t, ok)
	_, ok = ResourceByName("nonsense")
	assert.False(t, ok)
}

func TestSettingsPagesHaveDefaultsForEveryField(t *testing.T) {
	for _, page := range Pages {
		for _, sec := range page.Sections {
			for _, f := range sec.Fields {
				_, ok := page.Defaults[f.Key]
				assert.True(t, ok, "page %s field %s has no default", page.Name, f.Key)
			}
		}
	}
}
