package taxonomy_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"news-quiz/config"
	"news-quiz/taxonomy"
)

func sampleDefs() []config.CategoryDef {
	return []config.CategoryDef{
		{ID: 1, Name: "Sports", URI: "news/Sports", Subcategories: []config.SubcategoryDef{
			{ID: 2, Name: "Football"}, {ID: 3, Name: "Tennis"},
		}},
		{ID: 4, Name: "Business", URI: "news/Business", Subcategories: []config.SubcategoryDef{
			{ID: 5, Name: "Markets"},
		}},
		{ID: 6, Name: "Arts", URI: "news/Arts_and_Entertainment"},
	}
}

func TestLoadKeepsDefinitionOrder(t *testing.T) {
	f := taxonomy.MustLoad(sampleDefs())

	names := []string{}
	for _, n := range f.Nodes() {
		names = append(names, n.Name)
	}
	assert.Equal(t, []string{"Sports", "Football", "Tennis", "Business", "Markets", "Arts"}, names)

	roots := f.Roots()
	require.Len(t, roots, 3)
	assert.Equal(t, int64(1), roots[0].ID)
	assert.Equal(t, int64(4), roots[1].ID)
	assert.Equal(t, int64(6), roots[2].ID)
	assert.True(t, roots[0].IsRoot())

	tennis, err := f.FindByName("tennis")
	require.NoError(t, err)
	require.NotNil(t, tennis.ParentID)
	assert.Equal(t, int64(1), *tennis.ParentID)
}

func TestIDsSurviveInsertedCategory(t *testing.T) {
	before := taxonomy.MustLoad(sampleDefs())

	defs := sampleDefs()
	// Business 아래에 새 하위 카테고리를 끼워 넣는다.
	defs[1].Subcategories = append([]config.SubcategoryDef{{ID: 7, Name: "Economy"}}, defs[1].Subcategories...)
	after := taxonomy.MustLoad(defs)

	for _, name := range []string{"Sports", "Tennis", "Business", "Markets", "Arts"} {
		b, err := before.FindByName(name)
		require.NoError(t, err)
		a, err := after.FindByName(name)
		require.NoError(t, err)
		assert.Equal(t, b.ID, a.ID, name)
		assert.Equal(t, b.ParentID, a.ParentID, name)
	}

	economy, err := after.FindByName("Economy")
	require.NoError(t, err)
	assert.Equal(t, int64(7), economy.ID)
	require.NotNil(t, economy.ParentID)
	assert.Equal(t, int64(4), *economy.ParentID)
}

func TestLoadRejectsMissingOrDuplicateID(t *testing.T) {
	_, err := taxonomy.Load([]config.CategoryDef{{Name: "Sports"}})
	assert.ErrorIs(t, err, taxonomy.ErrInvalidTaxonomy)

	_, err = taxonomy.Load([]config.CategoryDef{
		{ID: 1, Name: "Sports", Subcategories: []config.SubcategoryDef{{ID: 1, Name: "Football"}}},
	})
	assert.ErrorIs(t, err, taxonomy.ErrInvalidTaxonomy)

	assert.Panics(t, func() { taxonomy.MustLoad([]config.CategoryDef{{Name: "Sports"}}) })
}

func TestFormatForPromptKeepsStoredOrder(t *testing.T) {
	f := taxonomy.MustLoad([]config.CategoryDef{
		{ID: 1, Name: "Sports", Subcategories: []config.SubcategoryDef{{ID: 2, Name: "Football"}, {ID: 3, Name: "Tennis"}}},
	})

	out := taxonomy.FormatForPrompt(f)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "- Sports:", lines[0])
	assert.Equal(t, "  * Football", lines[1])
	assert.Equal(t, "  * Tennis", lines[2])
}

func TestLookupNotFound(t *testing.T) {
	f := taxonomy.MustLoad(sampleDefs())

	_, err := f.FindByID(99)
	assert.ErrorIs(t, err, taxonomy.ErrNotFound)

	_, err = f.FindByName("Weather")
	assert.ErrorIs(t, err, taxonomy.ErrNotFound)
}

func TestValidateCategorization(t *testing.T) {
	f := taxonomy.MustLoad(sampleDefs())

	assert.NoError(t, f.ValidateCategorization("Sports", "Tennis"))
	assert.ErrorIs(t, f.ValidateCategorization("Sports", "Markets"), taxonomy.ErrNotFound)
	assert.ErrorIs(t, f.ValidateCategorization("Football", "Tennis"), taxonomy.ErrNotFound)
}
