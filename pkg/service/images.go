package service

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/marktplaatser/backend/pkg/database"
	"github.com/marktplaatser/backend/pkg/imaging"
	"github.com/marktplaatser/backend/pkg/model"
	"github.com/oklog/ulid/v2"
)

// ImageStore compresses pending draft photos and persists them under a public
// URL the marketplace can fetch at publish time.
type ImageStore struct {
	Images database.ImageRepository

	// PublicBaseURL is the externally reachable base under which stored
	// images are served, e.g. "https://api.example.nl/draft-images".
	PublicBaseURL string
}

// Uploader returns the upload function for one draft, suitable for
// ImageSet.UploadAll.
func (s *ImageStore) Uploader(draftID, userID string) model.Uploader {
	return func(ctx context.Context, ref model.ImageRef) (string, error) {
		compressed, err := imaging.Compress(ref.Raw, imaging.DefaultMaxDim, imaging.DefaultQuality)
		if err != nil {
			return "", err
		}

		key := newImageKey()
		url := s.PublicBaseURL + "/" + key

		img := database.StoredImage{
			Key:         key,
			DraftID:     draftID,
			UserID:      userID,
			ContentType: "image/jpeg",
			Data:        compressed,
			CreatedAt:   time.Now().UTC(),
		}

		if err := s.Images.AddToDraft(ctx, img, url); err != nil {
			return "", fmt.Errorf("can't store image: %w", err)
		}

		return url, nil
	}
}

func newImageKey() string {
	entropy := ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0) // nolint:gosec
	return ulid.MustNew(ulid.Now(), entropy).String() + ".jpg"
}
