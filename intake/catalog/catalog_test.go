package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/intakebot/intake/session"
	"github.com/m3rciful/intakebot/intake/validate"
)

func TestDefaultCatalogIsConsistent(t *testing.T) {
	cat := Default()
	buttons := cat.Buttons()
	require.Len(t, buttons, 6)

	seenIDs := map[string]bool{}
	for _, c := range cat.Categories() {
		assert.False(t, seenIDs[c.ID], "duplicate id %s", c.ID)
		seenIDs[c.ID] = true
		assert.NotEmpty(t, c.Questions, c.ID)

		byButton, ok := cat.ByButton(c.Button)
		require.True(t, ok)
		assert.Equal(t, c.ID, byButton.ID)

		ids := map[string]bool{}
		for _, q := range c.Questions {
			ids[q.ID] = true
			if q.Kind == validate.KindChoice {
				assert.NotEmpty(t, q.Options, "%s/%s has no options", c.ID, q.ID)
			}
		}
		for _, f := range c.Flags {
			assert.True(t, ids[f.After], "%s flag %s triggers after unknown question %s", c.ID, f.Name, f.After)
		}
	}
}

func TestCategoryLookups(t *testing.T) {
	cat := Default()
	tech, ok := cat.ByID("tech")
	require.True(t, ok)

	q, ok := tech.Question(0)
	require.True(t, ok)
	assert.Equal(t, FieldArea, q.ID)
	assert.Equal(t, session.StateAreaInput, q.State())

	_, ok = tech.Question(len(tech.Questions))
	assert.False(t, ok)
	_, ok = tech.Question(-1)
	assert.False(t, ok)

	f, ok := tech.FlagAfter(FieldRooms)
	require.True(t, ok)
	assert.Equal(t, "need_drawing", f.Name)
	_, ok = tech.FlagAfter(FieldArea)
	assert.False(t, ok)

	_, ok = tech.Flag("need_drawing")
	assert.True(t, ok)

	assert.Equal(t, session.StateObjectTypeSelect, objectType().State())
	assert.Equal(t, session.StateCategoryField, Question{ID: FieldTopic, Kind: validate.KindText}.State())

	_, ok = cat.ByButton("Неизвестно")
	assert.False(t, ok)
	_, ok = cat.ByID("missing")
	assert.False(t, ok)
}

func TestFieldsMapsAnswersPositionally(t *testing.T) {
	study, ok := Default().ByID("study")
	require.True(t, ok)
	assert.False(t, study.HasSubCategories())

	fields := study.Fields([]string{"Заземление", "12"})
	assert.Equal(t, map[string]string{FieldTopic: "Заземление", FieldPages: "12"}, fields)
}

func TestCategoriesReturnsCopy(t *testing.T) {
	cat := Default()
	list := cat.Categories()
	list[0].Button = "changed"
	assert.NotEqual(t, "changed", cat.Categories()[0].Button)
}
