package model_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/marktplaatser/backend/pkg/model"
)

func TestValidPostcode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		postcode string
		want     bool
	}{
		{"1234 AB", true},
		{"1234AB", true},
		{"9999zz", true},
		{"0123 AB", false}, // leading zero
		{"1234", false},
		{"1234 ABC", false},
		{"12345 AB", false},
		{"1234  AB", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.postcode, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, model.ValidPostcode(tt.postcode))
		})
	}
}

func validDraft() model.Draft {
	return model.Draft{
		DraftID:     "d1",
		UserID:      "u1",
		Title:       "Philips koptelefoon",
		Description: "Goed werkende koptelefoon, weinig gebruikt.",
		Category:    model.CategorySelection{AISuggestedID: 31, AISuggestedName: "Audio > Koptelefoons"},
		PriceModel:  model.PriceModel{ModelType: model.PriceModelFixed, AskingPrice: 25},
		Postcode:    "1012 AB",
		Status:      model.StatusDraft,
	}
}

func TestDraftValidate(t *testing.T) {
	t.Parallel()

	t.Run("valid draft has no violations", func(t *testing.T) {
		t.Parallel()

		d := validDraft()
		assert.Empty(t, d.Validate())
	})

	t.Run("title at the limit is accepted, one over is not", func(t *testing.T) {
		t.Parallel()

		d := validDraft()
		d.Title = strings.Repeat("a", model.DraftTitleMaxLen)
		assert.False(t, model.HasFatal(d.Validate()))

		d.Title = strings.Repeat("a", model.DraftTitleMaxLen+1)
		assert.True(t, model.HasFatal(d.Validate()))
	})

	t.Run("collects every violation at once", func(t *testing.T) {
		t.Parallel()

		d := validDraft()
		d.Title = ""
		d.Description = " "
		d.Postcode = "bogus"
		d.PriceModel.AskingPrice = 0

		vs := d.Validate()
		assert.Len(t, model.Fatal(vs), 4)

		fields := make([]string, len(vs))
		for i, v := range vs {
			fields[i] = v.Field
		}
		assert.ElementsMatch(t, []string{"title", "description", "postcode", "askingPrice"}, fields)
	})

	t.Run("user override counts as a category", func(t *testing.T) {
		t.Parallel()

		d := validDraft()
		d.Category = model.CategorySelection{}
		assert.True(t, model.HasFatal(d.Validate()))

		d.Category.Select(42)
		assert.False(t, model.HasFatal(d.Validate()))
	})
}
