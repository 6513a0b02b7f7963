package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/marktplaatser/backend/pkg/database"
	"github.com/marktplaatser/backend/pkg/fuzzy"
	"github.com/marktplaatser/backend/pkg/marktplaats"
	"github.com/marktplaatser/backend/pkg/model"
	"github.com/marktplaatser/backend/pkg/vision"
)

const (
	categoryMatchCutoff = 0.6
	attributeCutoff     = 0.6
	enumValueCutoff     = 0.4
)

// ErrCategoryMatch means the vision model suggested a category the catalog
// does not contain, even fuzzily.
var ErrCategoryMatch = errors.New("could not match suggested category")

// VisionClient is the opaque image-to-listing collaborator.
type VisionClient interface {
	GenerateListing(ctx context.Context, images [][]byte, categoryNames []string) (vision.GeneratedListing, error)
}

// AttributeSchema fetches the attribute fields of a level-2 category.
type AttributeSchema interface {
	CategoryAttributes(ctx context.Context, level1ID, level2ID int) ([]marktplaats.AttributeField, error)
}

type Generate interface {
	// FromImages runs the whole generation pipeline for one product:
	// vision call, category reconciliation, attribute mapping, pricing
	// model suggestion, draft creation and image storage.
	FromImages(ctx context.Context, userID, postcode string, images [][]byte) (model.Draft, error)
}

type GenerateGeneric struct {
	Vision     VisionClient
	Categories Category
	Schema     AttributeSchema
	Drafts     database.DraftRepository
	Store      *ImageStore
}

func (gg *GenerateGeneric) FromImages(ctx context.Context, userID, postcode string, images [][]byte) (model.Draft, error) {
	// Validate the photos up front with the same rules as the upload
	// endpoint, so a bad file fails before the expensive vision call.
	var set model.ImageSet
	for _, raw := range images {
		if err := set.Add(raw); err != nil {
			return model.Draft{}, err
		}
	}

	catalog, err := gg.Categories.List(ctx)
	if err != nil {
		return model.Draft{}, fmt.Errorf("can't fetch category catalog: %w", err)
	}

	names := make([]string, len(catalog))
	byName := make(map[string]model.Category, len(catalog))
	for i, c := range catalog {
		names[i] = c.Name
		byName[c.Name] = c
	}

	gl, err := gg.Vision.GenerateListing(ctx, images, names)
	if err != nil {
		return model.Draft{}, err
	}

	matchName, ok := fuzzy.BestMatch(fuzzy.SimplifyPath(gl.Category), names, categoryMatchCutoff)
	if !ok {
		return model.Draft{}, fmt.Errorf("%w: %q", ErrCategoryMatch, gl.Category)
	}
	matched := byName[matchName]

	attrs := gg.mapAttributes(ctx, matched, gl.Attributes)

	asking := gl.EstimatedPrice
	if asking < 1 {
		asking = 1
	}

	now := time.Now().UTC()
	d := model.Draft{
		DraftID:     uuid.NewString(),
		UserID:      userID,
		Title:       truncate(gl.Title, model.DraftTitleMaxLen),
		Description: gl.Description,
		Category: model.CategorySelection{
			AISuggestedID:   matched.ID,
			AISuggestedName: matched.Name,
		},
		Attributes: attrs,
		PriceModel: model.PriceModel{
			ModelType:   model.PriceModelFixed,
			AskingPrice: asking,
		},
		Postcode:              postcode,
		SuggestedPricingModel: suggestPricingModel(matched.Name),
		AIGenerated:           true,
		Status:                model.StatusDraft,
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	if err := gg.Drafts.Create(ctx, d); err != nil {
		return model.Draft{}, err
	}

	d.Images = set
	uploaded, err := d.Images.UploadAll(ctx, gg.Store.Uploader(d.DraftID, d.UserID))
	if err != nil {
		// The draft itself is created and usable; report the partial set.
		d.ImageURLs = refURLs(uploaded)
		return d, err
	}

	d.ImageURLs = refURLs(uploaded)
	return d, nil
}

// mapAttributes reconciles the model's free-form attribute names with the
// category's attribute schema. Unmatchable names and invalid enum values are
// dropped silently; attributes are an enrichment, not a requirement.
func (gg *GenerateGeneric) mapAttributes(ctx context.Context, cat model.Category, aiAttrs map[string]string) []model.Attribute {
	if len(aiAttrs) == 0 {
		return nil
	}

	fields, err := gg.Schema.CategoryAttributes(ctx, cat.ParentID, cat.ID)
	if err != nil || len(fields) == 0 {
		return nil
	}

	labels := make([]string, len(fields))
	byLabel := make(map[string]marktplaats.AttributeField, len(fields))
	for i, f := range fields {
		l := f.DisplayLabel()
		labels[i] = l
		byLabel[l] = f
	}

	var mapped []model.Attribute
	for name, value := range aiAttrs {
		label, ok := fuzzy.BestMatch(name, labels, attributeCutoff)
		if !ok {
			continue
		}
		field := byLabel[label]

		if len(field.Options) > 0 {
			values := make([]string, len(field.Options))
			for i, o := range field.Options {
				values[i] = o.Value
			}

			v, ok := fuzzy.BestMatch(value, values, enumValueCutoff)
			if !ok {
				continue
			}
			value = v
		}

		mapped = append(mapped, model.Attribute{Key: field.Key, Value: value})
	}

	return mapped
}

// Categories observed to do well in auctions score up, commodity goods score
// down twice as hard. Positive total suggests bidding.
var (
	biddingSuitable = []string{
		"antiek", "kunst", "verzamelen", "vintage", "klassiek",
		"zeldzaam", "uniek", "limited", "exclusief", "collector",
		"handgemaakt", "design", "kunstwerk", "sieraden", "munten",
		"postzegels", "boeken", "platen", "vinyl", "memorabilia",
	}
	biddingUnsuitable = []string{
		"telefoon", "computer", "laptop", "tablet", "software",
		"kleding", "schoenen", "voeding", "tickets", "diensten",
		"verhuur", "baan", "stage", "cursus", "training",
	}
)

func suggestPricingModel(categoryName string) string {
	name := strings.ToLower(categoryName)

	score := 0
	for _, kw := range biddingSuitable {
		if strings.Contains(name, kw) {
			score++
		}
	}
	for _, kw := range biddingUnsuitable {
		if strings.Contains(name, kw) {
			score -= 2
		}
	}

	if score > 0 {
		return model.PriceModelBidding
	}
	return model.PriceModelFixed
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func refURLs(refs []model.ImageRef) []string {
	urls := make([]string, 0, len(refs))
	for _, r := range refs {
		if r.Uploaded() {
			urls = append(urls, r.URL)
		}
	}
	return urls
}
