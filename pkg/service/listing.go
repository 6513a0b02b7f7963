package service

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/marktplaatser/backend/pkg/model"
)

// MarketplaceAds is the slice of the marketplace client the listing service
// needs.
type MarketplaceAds interface {
	GetAdvertisement(ctx context.Context, userID, adID string) (model.Listing, error)
	ListAdvertisements(ctx context.Context, userID string, offset, limit int) ([]model.Listing, error)
	UpdateAdvertisement(ctx context.Context, userID, adID string, upd model.ListingUpdate) (model.Listing, error)
	SetReserved(ctx context.Context, userID, adID string, reserved bool, askingPrice int) (model.Listing, error)
	DeleteAdvertisement(ctx context.Context, userID, adID string) error
	GetAdvertisementImages(ctx context.Context, userID, adID string) ([]model.ListingImage, error)
}

type Listing interface {
	List(ctx context.Context, userID string, offset, limit int) ([]model.Listing, error)
	// ListWithImages additionally fetches every listing's display images,
	// in parallel. A failed image fetch leaves that one listing's images
	// empty; the page itself still succeeds.
	ListWithImages(ctx context.Context, userID string, offset, limit int) ([]model.Listing, error)
	Get(ctx context.Context, userID, adID string) (model.Listing, error)
	// Update applies a partial edit. Returned violations are either fatal
	// (the edit was blocked locally) or warnings, notably the
	// reserved-flag mismatch described on ListingUpdate.
	Update(ctx context.Context, userID, adID string, upd model.ListingUpdate) (model.Listing, []model.Violation, error)
	Delete(ctx context.Context, userID, adID string) error
	Images(ctx context.Context, userID, adID string) ([]model.ListingImage, error)
}

type ListingGeneric struct {
	MP MarketplaceAds
}

func (lg *ListingGeneric) List(ctx context.Context, userID string, offset, limit int) ([]model.Listing, error) {
	return lg.MP.ListAdvertisements(ctx, userID, offset, limit)
}

func (lg *ListingGeneric) Get(ctx context.Context, userID, adID string) (model.Listing, error) {
	return lg.MP.GetAdvertisement(ctx, userID, adID)
}

func (lg *ListingGeneric) Delete(ctx context.Context, userID, adID string) error {
	return lg.MP.DeleteAdvertisement(ctx, userID, adID)
}

func (lg *ListingGeneric) Images(ctx context.Context, userID, adID string) ([]model.ListingImage, error) {
	return lg.MP.GetAdvertisementImages(ctx, userID, adID)
}

func (lg *ListingGeneric) ListWithImages(ctx context.Context, userID string, offset, limit int) ([]model.Listing, error) {
	listings, err := lg.MP.ListAdvertisements(ctx, userID, offset, limit)
	if err != nil {
		return nil, err
	}

	// Each goroutine writes only its own element; no ordering guarantee
	// between fetches.
	var wg sync.WaitGroup
	for i := range listings {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			images, err := lg.MP.GetAdvertisementImages(ctx, userID, listings[i].ItemID)
			if err != nil {
				slog.Debug("can't fetch advertisement images",
					slog.String("advertisement_id", listings[i].ItemID), slog.Any("error", err))
				return
			}
			listings[i].Images = images
		}(i)
	}
	wg.Wait()

	return listings, nil
}

func (lg *ListingGeneric) Update(ctx context.Context, userID, adID string, upd model.ListingUpdate) (model.Listing, []model.Violation, error) {
	if vs := validateListingUpdate(upd); model.HasFatal(vs) {
		return model.Listing{}, vs, nil
	}

	var (
		out      model.Listing
		warnings []model.Violation
		updated  bool
	)

	if upd.Reserved != nil {
		res, ws, err := lg.setReserved(ctx, userID, adID, upd)
		if err != nil {
			return model.Listing{}, nil, err
		}
		out = res
		warnings = append(warnings, ws...)
		updated = true
	}

	if upd.Title != nil || upd.Description != nil || upd.PriceModel != nil {
		res, err := lg.MP.UpdateAdvertisement(ctx, userID, adID, upd)
		if err != nil {
			return model.Listing{}, nil, err
		}

		// Keep the reserved flag as the reserve call reported it; the
		// field update response may lag behind.
		if updated {
			res.Reserved = out.Reserved
		}
		out = res
		updated = true
	}

	if !updated {
		return model.Listing{}, []model.Violation{{
			Message: "at least one field must be provided for update",
			Fatal:   true,
		}}, nil
	}

	return out, warnings, nil
}

// setReserved flips the reserved flag. Unreserving is known to be silently
// refused by the marketplace on occasion: the response is 200 OK but the
// stored flag is unchanged. The flag from the response body is authoritative;
// a mismatch is reported as a warning and never hidden.
func (lg *ListingGeneric) setReserved(ctx context.Context, userID, adID string, upd model.ListingUpdate) (model.Listing, []model.Violation, error) {
	want := *upd.Reserved

	asking := 0
	if !want {
		switch {
		case upd.AskingPrice != nil:
			asking = *upd.AskingPrice
		case upd.PriceModel != nil:
			asking = upd.PriceModel.AskingPrice
		}
	}

	res, err := lg.MP.SetReserved(ctx, userID, adID, want, asking)
	if err != nil {
		return model.Listing{}, nil, err
	}

	var warnings []model.Violation
	if !want && res.Reserved != want {
		warnings = append(warnings, model.Violation{
			Field:   "reserved",
			Message: "reserved status may not have been updated",
		})
	}

	return res, warnings, nil
}

func validateListingUpdate(upd model.ListingUpdate) []model.Violation {
	var vs []model.Violation

	if upd.Title != nil {
		title := strings.TrimSpace(*upd.Title)
		switch {
		case title == "":
			vs = append(vs, model.Violation{Field: "title", Message: "title is required", Fatal: true})
		case len([]rune(*upd.Title)) > model.ListingTitleMaxLen:
			vs = append(vs, model.Violation{Field: "title", Message: "title must be 80 characters or less", Fatal: true})
		}
	}

	if upd.Description != nil && strings.TrimSpace(*upd.Description) == "" {
		vs = append(vs, model.Violation{Field: "description", Message: "description is required", Fatal: true})
	}

	if upd.PriceModel != nil {
		vs = append(vs, upd.PriceModel.Validate()...)
	}

	// Unreserving needs a new asking price, from either field.
	if upd.Reserved != nil && !*upd.Reserved {
		asking := 0
		switch {
		case upd.AskingPrice != nil:
			asking = *upd.AskingPrice
		case upd.PriceModel != nil:
			asking = upd.PriceModel.AskingPrice
		}

		if asking <= 0 {
			vs = append(vs, model.Violation{Field: "askingPrice", Message: "unreserving requires a new asking price greater than 0", Fatal: true})
		}
	}

	return vs
}
