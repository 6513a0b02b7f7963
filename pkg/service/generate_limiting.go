package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/marktplaatser/backend/pkg/limiter"
	"github.com/marktplaatser/backend/pkg/model"
)

var ErrLimitExceeded = errors.New("generation limit exceeded")

// GenerateLimiting caps generations per user per hour before the costly
// vision call is made. FailOpen controls what happens when the limiter
// itself cannot be reached.
type GenerateLimiting struct {
	Generate

	Limiter  *limiter.Limiter
	FailOpen bool
}

func (gl *GenerateLimiting) FromImages(ctx context.Context, userID, postcode string, images [][]byte) (model.Draft, error) {
	count, err := gl.Limiter.Increment(ctx, userID)
	if err != nil {
		slog.Error("can't check generation limit", slog.String("user_id", userID), slog.Any("error", err))
		if !gl.FailOpen {
			return model.Draft{}, err
		}
	} else if count > gl.Limiter.Limit {
		return model.Draft{}, ErrLimitExceeded
	}

	return gl.Generate.FromImages(ctx, userID, postcode, images)
}
