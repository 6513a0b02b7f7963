package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/marktplaatser/backend/pkg/database"
	"github.com/marktplaatser/backend/pkg/marktplaats"
	"github.com/marktplaatser/backend/pkg/model"
)

const (
	DefaultPageNum  = 1
	DefaultPageSize = 50
	MaxPageSize     = 100
)

// DraftInput is the payload for creating a draft by hand (as opposed to the
// AI generation path).
type DraftInput struct {
	Title        string            `json:"title"`
	Description  string            `json:"description"`
	CategoryID   int               `json:"categoryId"`
	CategoryName string            `json:"categoryName"`
	Attributes   []model.Attribute `json:"attributes"`
	PriceModel   model.PriceModel  `json:"priceModel"`
	Postcode     string            `json:"postcode"`
	AIGenerated  bool              `json:"aiGenerated"`
}

// DraftUpdate is a partial edit; nil fields are left untouched. CategoryID
// equal to the AI suggestion clears the override, any other value sets it.
type DraftUpdate struct {
	Title       *string           `json:"title,omitempty"`
	Description *string           `json:"description,omitempty"`
	CategoryID  *int              `json:"categoryId,omitempty"`
	PriceModel  *model.PriceModel `json:"priceModel,omitempty"`
	Postcode    *string           `json:"postcode,omitempty"`
}

func (u DraftUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil && u.CategoryID == nil &&
		u.PriceModel == nil && u.Postcode == nil
}

// PublishResult reports the outcome of a publish. Warnings carry best-effort
// steps that failed after the publish itself succeeded; the publish is
// irreversible at that point.
type PublishResult struct {
	AdvertisementID string            `json:"advertisementId"`
	WebsiteLink     string            `json:"websiteLink,omitempty"`
	DraftDeleted    bool              `json:"draftDeleted"`
	Warnings        []model.Violation `json:"warnings,omitempty"`
}

type Draft interface {
	Create(ctx context.Context, userID string, in DraftInput) (model.Draft, error)
	Get(ctx context.Context, draftID, userID string) (model.Draft, error)
	List(ctx context.Context, userID string, pageNum, pageSize int) ([]model.Draft, int, error)
	// Update applies the edit, re-validates, and persists only when no fatal
	// violation was found. The returned draft reflects the applied edit
	// either way; user input is never reverted.
	Update(ctx context.Context, draftID, userID string, upd DraftUpdate) (model.Draft, []model.Violation, error)
	Delete(ctx context.Context, draftID, userID string) error
	Validate(ctx context.Context, draftID, userID string) ([]model.Violation, error)
	Publish(ctx context.Context, draftID, userID string, deleteDraft bool) (PublishResult, []model.Violation, error)
	AddImage(ctx context.Context, draftID, userID string, raw []byte) (string, int, error)
}

// DraftGeneric contains the core draft lifecycle; wrappers in draft_*.go add
// logging around it.
type DraftGeneric struct {
	Drafts database.DraftRepository
	MP     *marktplaats.Client
	Store  *ImageStore
}

func (dg *DraftGeneric) Create(ctx context.Context, userID string, in DraftInput) (model.Draft, error) {
	now := time.Now().UTC()

	d := model.Draft{
		DraftID:     uuid.NewString(),
		UserID:      userID,
		Title:       in.Title,
		Description: in.Description,
		Category: model.CategorySelection{
			AISuggestedID:   in.CategoryID,
			AISuggestedName: in.CategoryName,
		},
		Attributes:  in.Attributes,
		PriceModel:  in.PriceModel,
		Postcode:    in.Postcode,
		AIGenerated: in.AIGenerated,
		Status:      model.StatusDraft,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := dg.Drafts.Create(ctx, d); err != nil {
		return model.Draft{}, err
	}

	return d, nil
}

func (dg *DraftGeneric) Get(ctx context.Context, draftID, userID string) (model.Draft, error) {
	d, err := dg.Drafts.Get(ctx, draftID, userID)
	if err != nil {
		return model.Draft{}, mapDraftErr(err)
	}
	return d, nil
}

func (dg *DraftGeneric) List(ctx context.Context, userID string, pageNum, pageSize int) ([]model.Draft, int, error) {
	if pageNum < 1 {
		pageNum = DefaultPageNum
	}
	if pageSize < 1 || pageSize > MaxPageSize {
		pageSize = DefaultPageSize
	}

	return dg.Drafts.List(ctx, userID, pageSize, (pageNum-1)*pageSize)
}

func (dg *DraftGeneric) Update(ctx context.Context, draftID, userID string, upd DraftUpdate) (model.Draft, []model.Violation, error) {
	d, err := dg.Drafts.Get(ctx, draftID, userID)
	if err != nil {
		return model.Draft{}, nil, mapDraftErr(err)
	}

	applyDraftUpdate(&d, upd)

	// Validation re-runs after every mutation. Fatal violations block the
	// save but the applied edit is returned as-is.
	vs := d.Validate()
	if model.HasFatal(vs) {
		return d, vs, nil
	}

	d.UpdatedAt = time.Now().UTC()
	if err := dg.Drafts.Update(ctx, d); err != nil {
		return model.Draft{}, nil, mapDraftErr(err)
	}

	return d, vs, nil
}

func applyDraftUpdate(d *model.Draft, upd DraftUpdate) {
	if upd.Title != nil {
		d.Title = *upd.Title
	}
	if upd.Description != nil {
		d.Description = *upd.Description
	}

	if upd.CategoryID != nil {
		if *upd.CategoryID == d.Category.AISuggestedID {
			d.Category.SelectAISuggestion()
		} else {
			d.Category.Select(*upd.CategoryID)
		}
	}

	if upd.PriceModel != nil {
		pm := *upd.PriceModel
		if pm.AskingPrice == 0 {
			// Variant switches preserve the asking price.
			pm.AskingPrice = d.PriceModel.AskingPrice
		}

		switch pm.ModelType {
		case model.PriceModelFixed:
			d.PriceModel = pm.ToFixed()
		case model.PriceModelBidding:
			d.PriceModel = pm.ToBidding()
		default:
			d.PriceModel = pm
		}
	}

	if upd.Postcode != nil {
		d.Postcode = *upd.Postcode
	}
}

func (dg *DraftGeneric) Delete(ctx context.Context, draftID, userID string) error {
	return mapDraftErr(dg.Drafts.Delete(ctx, draftID, userID))
}

func (dg *DraftGeneric) Validate(ctx context.Context, draftID, userID string) ([]model.Violation, error) {
	d, err := dg.Drafts.Get(ctx, draftID, userID)
	if err != nil {
		return nil, mapDraftErr(err)
	}

	return d.Validate(), nil
}

// Publish converts the draft into a published advertisement. The sequence is:
// fatal validation gate, upload of any still-pending images, advertisement
// creation, image attachment, then the optional draft delete. Everything
// after the creation call is best-effort: the publish is already irreversible
// and later failures become warnings, never rollbacks.
func (dg *DraftGeneric) Publish(ctx context.Context, draftID, userID string, deleteDraft bool) (PublishResult, []model.Violation, error) {
	d, err := dg.Drafts.Get(ctx, draftID, userID)
	if err != nil {
		return PublishResult{}, nil, mapDraftErr(err)
	}

	vs := d.Validate()
	if model.HasFatal(vs) {
		return PublishResult{}, vs, nil
	}

	d.Status = model.StatusPublishing
	d.UpdatedAt = time.Now().UTC()
	if err := dg.Drafts.Update(ctx, d); err != nil {
		return PublishResult{}, nil, mapDraftErr(err)
	}

	if _, err := d.Images.UploadAll(ctx, dg.Store.Uploader(d.DraftID, d.UserID)); err != nil {
		dg.revertToDraft(ctx, d)
		return PublishResult{}, nil, fmt.Errorf("can't upload draft images: %w", err)
	}

	listing, err := dg.MP.CreateAdvertisement(ctx, userID, marktplaats.CreateAdvertisementRequest{
		Title:       d.Title,
		Description: d.Description,
		CategoryID:  d.EffectiveCategoryID(),
		Location:    marktplaats.Location{Postcode: d.Postcode},
		PriceModel:  d.PriceModel,
		Attributes:  d.Attributes,
	})
	if err != nil {
		dg.revertToDraft(ctx, d)
		return PublishResult{}, nil, err
	}

	res := PublishResult{
		AdvertisementID: listing.ItemID,
		WebsiteLink:     listing.WebsiteLink,
	}

	if urls := d.Images.URLs(); len(urls) > 0 {
		if err := dg.MP.UploadImages(ctx, userID, listing.ItemID, urls, false); err != nil {
			res.Warnings = append(res.Warnings, model.Violation{
				Field:   "images",
				Message: fmt.Sprintf("advertisement was created but image upload failed: %v", err),
			})
		}
	}

	if deleteDraft {
		if err := dg.Drafts.Delete(ctx, d.DraftID, d.UserID); err != nil {
			res.Warnings = append(res.Warnings, model.Violation{
				Field:   "draft",
				Message: fmt.Sprintf("advertisement was created but the draft could not be deleted: %v", err),
			})
		} else {
			res.DraftDeleted = true
		}
	}

	if !res.DraftDeleted {
		d.Status = model.StatusPublished
		d.UpdatedAt = time.Now().UTC()
		if err := dg.Drafts.Update(ctx, d); err != nil {
			slog.Error("can't mark draft as published", slog.String("draft_id", d.DraftID), slog.Any("error", err))
		}
	}

	return res, vs, nil
}

func (dg *DraftGeneric) revertToDraft(ctx context.Context, d model.Draft) {
	d.Status = model.StatusDraft
	d.UpdatedAt = time.Now().UTC()
	if err := dg.Drafts.Update(ctx, d); err != nil {
		slog.Error("can't revert draft status", slog.String("draft_id", d.DraftID), slog.Any("error", err))
	}
}

// AddImage validates and stores one more photo for the draft and returns its
// URL plus the new image count.
func (dg *DraftGeneric) AddImage(ctx context.Context, draftID, userID string, raw []byte) (string, int, error) {
	d, err := dg.Drafts.Get(ctx, draftID, userID)
	if err != nil {
		return "", 0, mapDraftErr(err)
	}

	if err := d.Images.Add(raw); err != nil {
		return "", 0, err
	}

	uploaded, err := d.Images.UploadAll(ctx, dg.Store.Uploader(d.DraftID, d.UserID))
	if err != nil {
		return "", 0, err
	}

	return uploaded[len(uploaded)-1].URL, len(d.Images.Refs), nil
}

func mapDraftErr(err error) error {
	if errors.Is(err, database.ErrNotFound) {
		return model.ErrDraftNotFound
	}
	return err
}
