package server

import (
	"net/http"
	"time"

	"github.com/marktplaatser/backend/pkg/database"
	"github.com/marktplaatser/backend/pkg/server/handler"
	"github.com/marktplaatser/backend/pkg/server/middleware"
	"github.com/marktplaatser/backend/pkg/service"
)

const (
	readTimeout  = 30 * time.Second
	writeTimeout = 60 * time.Second
)

func New(
	addr string,
	generateSvc service.Generate,
	draftSvc service.Draft,
	categorySvc service.Category,
	listingSvc service.Listing,
	images database.ImageRepository,
) (*http.Server, error) {
	mux := http.NewServeMux()

	mux.Handle("/generate-listing", handler.GenerateListing(generateSvc))
	mux.Handle("/categories", handler.CategoryList(categorySvc))

	mux.Handle("/drafts", handler.Drafts(draftSvc))
	mux.Handle("/drafts/{id}", handler.DraftByID(draftSvc))
	mux.Handle("/drafts/{id}/validate", handler.DraftValidate(draftSvc))
	mux.Handle("/drafts/{id}/publish", handler.DraftPublish(draftSvc))

	mux.Handle("/draft-images/upload", handler.ImageUpload(draftSvc))
	mux.Handle("/draft-images/{key}", handler.ImageServe(images))

	mux.Handle("/list-advertisements", handler.ListingListPage(listingSvc))
	mux.Handle("/manage-advertisement/{id}", handler.ListingByID(listingSvc))
	mux.Handle("/advertisement-images/{id}", handler.ListingImages(listingSvc))

	chain := middleware.Chain{
		middleware.Log,
		middleware.Recovery,
	}

	return &http.Server{
		Addr:         addr,
		Handler:      chain.Then(mux),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}, nil
}
