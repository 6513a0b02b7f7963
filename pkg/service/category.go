package service

import (
	"context"

	"github.com/marktplaatser/backend/pkg/marktplaats"
	"github.com/marktplaatser/backend/pkg/model"
)

type Category interface {
	// List returns the flattened level-2 catalog. A fetch failure is the
	// caller's to handle; the selection UI degrades to empty results.
	List(ctx context.Context) ([]model.Category, error)
}

type CategoryGeneric struct {
	MP *marktplaats.Client
}

func (cg *CategoryGeneric) List(ctx context.Context) ([]model.Category, error) {
	return cg.MP.Categories(ctx)
}
