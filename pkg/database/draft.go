package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/marktplaatser/backend/pkg/model"
)

type DraftRepository interface {
	Create(ctx context.Context, d model.Draft) error
	// Get returns the draft only when it is owned by userID.
	Get(ctx context.Context, draftID, userID string) (model.Draft, error)
	List(ctx context.Context, userID string, limit, offset int) ([]model.Draft, int, error)
	Update(ctx context.Context, d model.Draft) error
	Delete(ctx context.Context, draftID, userID string) error
}

type DraftDatabase struct {
	DB *sql.DB
}

const draftColumns = `
	draft_id, user_id, title, description,
	ai_category_id, ai_category_name, override_category_id,
	attributes, price_model, postcode, images,
	suggested_pricing_model, ai_generated, status, created_at, updated_at
`

func (dd *DraftDatabase) Create(ctx context.Context, d model.Draft) error {
	attrs, prices, images, err := marshalDraftFields(d)
	if err != nil {
		return err
	}

	q := `
		insert into drafts (` + draftColumns + `)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	_, err = dd.DB.ExecContext(ctx, q,
		d.DraftID, d.UserID, d.Title, d.Description,
		d.Category.AISuggestedID, d.Category.AISuggestedName, nullableInt(d.Category.UserOverrideID),
		attrs, prices, d.Postcode, images,
		d.SuggestedPricingModel, d.AIGenerated, d.Status, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("can't insert draft: %w", err)
	}

	return nil
}

func (dd *DraftDatabase) Get(ctx context.Context, draftID, userID string) (model.Draft, error) {
	q := `
		select ` + draftColumns + `
		from drafts
		where draft_id = $1 and user_id = $2
	`
	d, err := scanDraft(dd.DB.QueryRowContext(ctx, q, draftID, userID))
	if err != nil {
		return model.Draft{}, fmt.Errorf("can't get draft: %w", mapError(err))
	}

	return d, nil
}

func (dd *DraftDatabase) List(ctx context.Context, userID string, limit, offset int) ([]model.Draft, int, error) {
	q := `
		select count(*) from drafts where user_id = $1
	`
	var total int
	if err := dd.DB.QueryRowContext(ctx, q, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("can't count drafts: %w", err)
	}

	q = `
		select ` + draftColumns + `
		from drafts
		where user_id = $1
		order by created_at desc
		limit $2 offset $3
	`
	rows, err := dd.DB.QueryContext(ctx, q, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("can't query drafts: %w", err)
	}
	defer rows.Close()

	drafts := make([]model.Draft, 0, limit)
	for rows.Next() {
		d, err := scanDraft(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("can't scan draft: %w", err)
		}
		drafts = append(drafts, d)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating over drafts: %w", err)
	}

	return drafts, total, nil
}

func (dd *DraftDatabase) Update(ctx context.Context, d model.Draft) error {
	attrs, prices, images, err := marshalDraftFields(d)
	if err != nil {
		return err
	}

	q := `
		update drafts
		set title = $1, description = $2,
		    override_category_id = $3, price_model = $4, postcode = $5,
		    images = $6, status = $7, updated_at = $8, attributes = $9
		where draft_id = $10 and user_id = $11
	`
	res, err := dd.DB.ExecContext(ctx, q,
		d.Title, d.Description,
		nullableInt(d.Category.UserOverrideID), prices, d.Postcode,
		images, d.Status, d.UpdatedAt, attrs,
		d.DraftID, d.UserID,
	)
	if err != nil {
		return fmt.Errorf("can't update draft: %w", err)
	}

	if affected, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("can't get affected rows: %w", err)
	} else if affected == 0 {
		return ErrNotFound
	}

	return nil
}

func (dd *DraftDatabase) Delete(ctx context.Context, draftID, userID string) error {
	q := `
		delete from drafts where draft_id = $1 and user_id = $2
	`
	res, err := dd.DB.ExecContext(ctx, q, draftID, userID)
	if err != nil {
		return fmt.Errorf("can't delete draft: %w", err)
	}

	if affected, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("can't get affected rows: %w", err)
	} else if affected == 0 {
		return ErrNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDraft(row rowScanner) (model.Draft, error) {
	var (
		d          model.Draft
		overrideID sql.NullInt64
		attrs      []byte
		prices     []byte
		images     []byte
		created    time.Time
		updated    time.Time
	)

	err := row.Scan(
		&d.DraftID, &d.UserID, &d.Title, &d.Description,
		&d.Category.AISuggestedID, &d.Category.AISuggestedName, &overrideID,
		&attrs, &prices, &d.Postcode, &images,
		&d.SuggestedPricingModel, &d.AIGenerated, &d.Status, &created, &updated,
	)
	if err != nil {
		return model.Draft{}, err
	}

	if overrideID.Valid {
		id := int(overrideID.Int64)
		d.Category.UserOverrideID = &id
	}

	if err := json.Unmarshal(attrs, &d.Attributes); err != nil {
		return model.Draft{}, fmt.Errorf("can't unmarshal attributes: %w", err)
	}
	if err := json.Unmarshal(prices, &d.PriceModel); err != nil {
		return model.Draft{}, fmt.Errorf("can't unmarshal price model: %w", err)
	}
	if err := json.Unmarshal(images, &d.ImageURLs); err != nil {
		return model.Draft{}, fmt.Errorf("can't unmarshal images: %w", err)
	}

	for _, url := range d.ImageURLs {
		d.Images.Refs = append(d.Images.Refs, model.ImageRef{URL: url})
	}

	d.CreatedAt = created
	d.UpdatedAt = updated

	return d, nil
}

func marshalDraftFields(d model.Draft) (attrs, prices, images []byte, err error) {
	if d.Attributes == nil {
		d.Attributes = []model.Attribute{}
	}
	attrs, err = json.Marshal(d.Attributes)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("can't marshal attributes: %w", err)
	}

	prices, err = json.Marshal(d.PriceModel)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("can't marshal price model: %w", err)
	}

	urls := d.Images.URLs()
	images, err = json.Marshal(urls)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("can't marshal images: %w", err)
	}

	return attrs, prices, images, nil
}

func nullableInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}
