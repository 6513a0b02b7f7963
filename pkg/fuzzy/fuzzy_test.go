package fuzzy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/marktplaatser/backend/pkg/fuzzy"
)

func TestRatio(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1.0, fuzzy.Ratio("Koptelefoons", "koptelefoons"))
	assert.Equal(t, 0.0, fuzzy.Ratio("", "iets"))
	assert.Greater(t, fuzzy.Ratio("koptelefoon", "koptelefoons"), 0.9)
	assert.Less(t, fuzzy.Ratio("fiets", "wasmachine"), 0.3)
}

func TestBestMatch(t *testing.T) {
	t.Parallel()

	candidates := []string{
		"Audio, Tv en Foto > Koptelefoons",
		"Audio, Tv en Foto > Televisies",
		"Fietsen en Brommers > Fietsen | Dames",
	}

	t.Run("close suggestion lands on the right entry", func(t *testing.T) {
		t.Parallel()

		got, ok := fuzzy.BestMatch("Audio, TV en Foto > Koptelefoon", candidates, 0.6)
		assert.True(t, ok)
		assert.Equal(t, "Audio, Tv en Foto > Koptelefoons", got)
	})

	t.Run("nothing above the cutoff", func(t *testing.T) {
		t.Parallel()

		_, ok := fuzzy.BestMatch("Auto's > Onderdelen", candidates, 0.6)
		assert.False(t, ok)
	})
}

func TestCloseMatches(t *testing.T) {
	t.Parallel()

	candidates := []string{"Sony", "Philips", "Samsung", "Sonos"}

	got := fuzzy.CloseMatches("sony", candidates, 3, 0.4)
	assert.NotEmpty(t, got)
	assert.Equal(t, "Sony", got[0])
	assert.LessOrEqual(t, len(got), 3)
}

func TestSimplifyPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"Audio, Tv en Foto > Koptelefoons", "Audio, Tv en Foto > Koptelefoons"},
		{"Audio, Tv en Foto > Audio > Koptelefoons", "Audio, Tv en Foto > Koptelefoons"},
		{"Elektronica>Audio>Draadloos>Koptelefoons", "Elektronica > Koptelefoons"},
		{"Koptelefoons", "Koptelefoons"},
		{"  Koptelefoons  ", "Koptelefoons"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, fuzzy.SimplifyPath(tt.in))
		})
	}
}
