package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// StoredImage is a compressed draft photo kept in the database and served
// back under a public URL so the marketplace can fetch it at publish time.
type StoredImage struct {
	Key         string
	DraftID     string
	UserID      string
	ContentType string
	Data        []byte
	CreatedAt   time.Time
}

type ImageRepository interface {
	// AddToDraft stores the blob and appends its URL to the owning draft's
	// image list in a single transaction.
	AddToDraft(ctx context.Context, img StoredImage, url string) error
	Get(ctx context.Context, key string) (StoredImage, error)
}

type ImageDatabase struct {
	DB *sql.DB
}

func (id *ImageDatabase) AddToDraft(ctx context.Context, img StoredImage, url string) error {
	return WithTx(id.DB, func(tx *sql.Tx) error {
		q := `
			insert into draft_images (key, draft_id, user_id, content_type, data, created_at)
			values ($1, $2, $3, $4, $5, $6)
		`
		if _, err := tx.ExecContext(ctx, q, img.Key, img.DraftID, img.UserID, img.ContentType, img.Data, img.CreatedAt); err != nil {
			return fmt.Errorf("can't insert image: %w", err)
		}

		q = `
			select images from drafts where draft_id = $1 and user_id = $2 for update
		`
		var raw []byte
		if err := tx.QueryRowContext(ctx, q, img.DraftID, img.UserID).Scan(&raw); err != nil {
			return fmt.Errorf("can't lock draft images: %w", mapError(err))
		}

		var urls []string
		if err := json.Unmarshal(raw, &urls); err != nil {
			return fmt.Errorf("can't unmarshal draft images: %w", err)
		}

		urls = append(urls, url)
		updated, err := json.Marshal(urls)
		if err != nil {
			return fmt.Errorf("can't marshal draft images: %w", err)
		}

		q = `
			update drafts set images = $1, updated_at = $2 where draft_id = $3 and user_id = $4
		`
		if _, err := tx.ExecContext(ctx, q, updated, time.Now().UTC(), img.DraftID, img.UserID); err != nil {
			return fmt.Errorf("can't update draft images: %w", err)
		}

		return nil
	})
}

func (id *ImageDatabase) Get(ctx context.Context, key string) (StoredImage, error) {
	q := `
		select key, draft_id, user_id, content_type, data, created_at
		from draft_images
		where key = $1
	`
	var img StoredImage
	err := id.DB.QueryRowContext(ctx, q, key).Scan(&img.Key, &img.DraftID, &img.UserID, &img.ContentType, &img.Data, &img.CreatedAt)
	if err != nil {
		return StoredImage{}, fmt.Errorf("can't get image: %w", mapError(err))
	}

	return img, nil
}
