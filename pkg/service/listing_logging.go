package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/marktplaatser/backend/pkg/model"
)

type ListingLogging struct {
	Listing
}

func (ll *ListingLogging) Update(ctx context.Context, userID, adID string, upd model.ListingUpdate) (l model.Listing, vs []model.Violation, err error) {
	defer func(t0 time.Time) {
		log := slog.With(
			slog.String("user_id", userID),
			slog.String("advertisement_id", adID),
			slog.String("delay", time.Since(t0).String()),
		)

		switch {
		case err != nil:
			log.Error("failed to update advertisement", slog.Any("error", err))
		case model.HasFatal(vs):
			log.Debug("advertisement update blocked by validation", slog.Int("violations", len(vs)))
		case len(vs) > 0:
			log.Warn("advertisement updated with warnings", slog.Any("warnings", vs))
		default:
			log.Debug("advertisement updated")
		}
	}(time.Now())

	return ll.Listing.Update(ctx, userID, adID, upd)
}

func (ll *ListingLogging) Delete(ctx context.Context, userID, adID string) (err error) {
	defer func(t0 time.Time) {
		log := slog.With(
			slog.String("user_id", userID),
			slog.String("advertisement_id", adID),
			slog.String("delay", time.Since(t0).String()),
		)

		if err != nil {
			log.Error("failed to delete advertisement", slog.Any("error", err))
		} else {
			log.Debug("advertisement deleted")
		}
	}(time.Now())

	return ll.Listing.Delete(ctx, userID, adID)
}
