package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/marktplaatser/backend/pkg/model"
)

func TestCategorySelection(t *testing.T) {
	t.Parallel()

	catalog := []model.Category{
		{ID: 31, Name: "Audio, Tv en Foto > Koptelefoons"},
		{ID: 91, Name: "Huis en Inrichting > Stoelen"},
	}

	t.Run("defaults to the AI suggestion", func(t *testing.T) {
		t.Parallel()

		c := model.CategorySelection{AISuggestedID: 31, AISuggestedName: "Audio, Tv en Foto > Koptelefoons"}
		assert.Equal(t, 31, c.EffectiveID())
		assert.Equal(t, "Audio, Tv en Foto > Koptelefoons", c.ResolveName(catalog))
	})

	t.Run("override wins and can be cleared again", func(t *testing.T) {
		t.Parallel()

		c := model.CategorySelection{AISuggestedID: 31, AISuggestedName: "Audio, Tv en Foto > Koptelefoons"}

		c.Select(91)
		assert.Equal(t, 91, c.EffectiveID())
		assert.Equal(t, "Huis en Inrichting > Stoelen", c.ResolveName(catalog))

		c.SelectAISuggestion()
		assert.Equal(t, 31, c.EffectiveID())
	})

	t.Run("unknown id falls back to the AI name", func(t *testing.T) {
		t.Parallel()

		c := model.CategorySelection{AISuggestedID: 31, AISuggestedName: "Audio, Tv en Foto > Koptelefoons"}
		c.Select(999)

		assert.Equal(t, "Audio, Tv en Foto > Koptelefoons", c.ResolveName(catalog))
		assert.Equal(t, "Audio, Tv en Foto > Koptelefoons", c.ResolveName(nil))
	})
}
