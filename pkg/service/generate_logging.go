package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/marktplaatser/backend/pkg/model"
)

type GenerateLogging struct {
	Generate
}

func (gl *GenerateLogging) FromImages(ctx context.Context, userID, postcode string, images [][]byte) (d model.Draft, err error) {
	defer func(t0 time.Time) {
		log := slog.With(
			slog.String("user_id", userID),
			slog.Int("images", len(images)),
			slog.String("delay", time.Since(t0).String()),
		)

		if err != nil {
			log.Error("failed to generate listing", slog.Any("error", err))
		} else {
			log.Info("listing generated",
				slog.String("draft_id", d.DraftID),
				slog.Int("category_id", d.Category.AISuggestedID),
				slog.String("suggested_pricing_model", d.SuggestedPricingModel),
			)
		}
	}(time.Now())

	return gl.Generate.FromImages(ctx, userID, postcode, images)
}
