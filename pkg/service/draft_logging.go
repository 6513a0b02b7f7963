package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/marktplaatser/backend/pkg/model"
)

type DraftLogging struct {
	Draft
}

func (dl *DraftLogging) Update(ctx context.Context, draftID, userID string, upd DraftUpdate) (d model.Draft, vs []model.Violation, err error) {
	defer func(t0 time.Time) {
		log := slog.With(
			slog.String("draft_id", draftID),
			slog.String("user_id", userID),
			slog.String("delay", time.Since(t0).String()),
		)

		switch {
		case err != nil:
			log.Error("failed to update draft", slog.Any("error", err))
		case model.HasFatal(vs):
			log.Debug("draft update blocked by validation", slog.Int("violations", len(vs)))
		default:
			log.Debug("draft updated")
		}
	}(time.Now())

	return dl.Draft.Update(ctx, draftID, userID, upd)
}

func (dl *DraftLogging) Publish(ctx context.Context, draftID, userID string, deleteDraft bool) (res PublishResult, vs []model.Violation, err error) {
	defer func(t0 time.Time) {
		log := slog.With(
			slog.String("draft_id", draftID),
			slog.String("user_id", userID),
			slog.Bool("delete_draft", deleteDraft),
			slog.String("delay", time.Since(t0).String()),
		)

		switch {
		case err != nil:
			log.Error("failed to publish draft", slog.Any("error", err))
		case model.HasFatal(vs):
			log.Debug("publish blocked by validation", slog.Int("violations", len(vs)))
		default:
			log.Info("draft published",
				slog.String("advertisement_id", res.AdvertisementID),
				slog.Bool("draft_deleted", res.DraftDeleted),
				slog.Int("warnings", len(res.Warnings)),
			)
		}
	}(time.Now())

	return dl.Draft.Publish(ctx, draftID, userID, deleteDraft)
}

func (dl *DraftLogging) Delete(ctx context.Context, draftID, userID string) (err error) {
	defer func(t0 time.Time) {
		log := slog.With(
			slog.String("draft_id", draftID),
			slog.String("user_id", userID),
			slog.String("delay", time.Since(t0).String()),
		)

		if err != nil {
			log.Error("failed to delete draft", slog.Any("error", err))
		} else {
			log.Debug("draft deleted")
		}
	}(time.Now())

	return dl.Draft.Delete(ctx, draftID, userID)
}
