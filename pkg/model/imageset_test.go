package model_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marktplaatser/backend/pkg/model"
)

// pngBytes carries a real PNG signature so content sniffing accepts it.
func pngBytes() []byte {
	return []byte("\x89PNG\r\n\x1a\nfakepixeldata")
}

func TestImageSetAdd(t *testing.T) {
	t.Parallel()

	t.Run("accepts up to the maximum", func(t *testing.T) {
		t.Parallel()

		var s model.ImageSet
		for i := 0; i < model.MaxImages; i++ {
			require.NoError(t, s.Add(pngBytes()))
		}

		err := s.Add(pngBytes())
		assert.ErrorIs(t, err, model.ErrImageSetFull)
		assert.Len(t, s.Refs, model.MaxImages)
	})

	t.Run("rejects oversized files before sniffing", func(t *testing.T) {
		t.Parallel()

		big := make([]byte, model.MaxImageBytes+1)
		copy(big, pngBytes())

		var s model.ImageSet
		assert.ErrorIs(t, s.Add(big), model.ErrImageTooLarge)
		assert.Empty(t, s.Refs)
	})

	t.Run("rejects non-image content", func(t *testing.T) {
		t.Parallel()

		var s model.ImageSet
		assert.ErrorIs(t, s.Add([]byte("%PDF-1.7 definitely not a photo")), model.ErrNotAnImage)
		assert.Empty(t, s.Refs)
	})
}

func TestImageSetRemove(t *testing.T) {
	t.Parallel()

	var s model.ImageSet
	require.NoError(t, s.Add(pngBytes()))
	require.NoError(t, s.Add(pngBytes()))

	s.Remove(5)
	assert.Len(t, s.Refs, 2)

	s.Remove(0)
	assert.Len(t, s.Refs, 1)

	s.Remove(0)
	assert.Empty(t, s.Refs)
}

func TestImageSetUploadAll(t *testing.T) {
	t.Parallel()

	t.Run("uploads in order and converts refs", func(t *testing.T) {
		t.Parallel()

		var s model.ImageSet
		for i := 0; i < 3; i++ {
			require.NoError(t, s.Add(pngBytes()))
		}

		n := 0
		done, err := s.UploadAll(context.Background(), func(ctx context.Context, ref model.ImageRef) (string, error) {
			n++
			return fmt.Sprintf("https://img.example/%d", n), nil
		})

		require.NoError(t, err)
		require.Len(t, done, 3)
		assert.Equal(t, []string{
			"https://img.example/1",
			"https://img.example/2",
			"https://img.example/3",
		}, s.URLs())
	})

	t.Run("stops at the first failure", func(t *testing.T) {
		t.Parallel()

		var s model.ImageSet
		for i := 0; i < 3; i++ {
			require.NoError(t, s.Add(pngBytes()))
		}

		boom := errors.New("storage unavailable")
		calls := 0
		done, err := s.UploadAll(context.Background(), func(ctx context.Context, ref model.ImageRef) (string, error) {
			calls++
			if calls == 2 {
				return "", boom
			}
			return fmt.Sprintf("https://img.example/%d", calls), nil
		})

		var ue *model.UploadError
		require.ErrorAs(t, err, &ue)
		assert.Equal(t, 1, ue.Index)
		assert.ErrorIs(t, err, boom)

		// Only the first ref made it; the third was never attempted.
		assert.Len(t, done, 1)
		assert.Equal(t, 2, calls)
		assert.Equal(t, []string{"https://img.example/1"}, s.URLs())
	})

	t.Run("retry skips already uploaded refs", func(t *testing.T) {
		t.Parallel()

		var s model.ImageSet
		for i := 0; i < 3; i++ {
			require.NoError(t, s.Add(pngBytes()))
		}

		fail := true
		upload := func(ctx context.Context, ref model.ImageRef) (string, error) {
			if fail && len(s.URLs()) == 1 {
				return "", errors.New("transient")
			}
			return fmt.Sprintf("https://img.example/%d", len(s.URLs())+1), nil
		}

		_, err := s.UploadAll(context.Background(), upload)
		require.Error(t, err)

		fail = false
		done, err := s.UploadAll(context.Background(), upload)
		require.NoError(t, err)
		assert.Len(t, done, 3)
		assert.Len(t, s.URLs(), 3)
	})
}
