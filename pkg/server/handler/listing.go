package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/marktplaatser/backend/pkg/model"
	"github.com/marktplaatser/backend/pkg/service"
)

const (
	defaultListingLimit = 25
	maxListingLimit     = 100
)

type ListingListResp struct {
	Advertisements []model.Listing `json:"advertisements"`
}

func ListingListPage(svc service.Listing) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w, r)
			return
		}

		uid, ok := userID(w, r)
		if !ok {
			return
		}

		var (
			q      = r.URL.Query()
			offset = 0
			limit  = defaultListingLimit
			err    error
		)

		if o := q.Get("offset"); o != "" {
			offset, err = strconv.Atoi(o)
			if err != nil || offset < 0 {
				writeError(w, http.StatusBadRequest, fmt.Sprintf("can't parse offset: %v", o))
				return
			}
		}

		if l := q.Get("limit"); l != "" {
			limit, err = strconv.Atoi(l)
			if err != nil || limit < 1 || limit > maxListingLimit {
				writeError(w, http.StatusBadRequest, fmt.Sprintf("limit must be between 1 and %d", maxListingLimit))
				return
			}
		}

		list := svc.List
		if q.Get("include_images") == "true" {
			list = svc.ListWithImages
		}

		ads, err := list(r.Context(), uid, offset, limit)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, ListingListResp{Advertisements: ads})
	}
}

type ListingUpdateResp struct {
	Advertisement model.Listing     `json:"advertisement"`
	Warnings      []model.Violation `json:"warnings,omitempty"`
}

// ListingByID serves get, partial update and delete for one published
// advertisement.
func ListingByID(svc service.Listing) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := userID(w, r)
		if !ok {
			return
		}
		adID := r.PathValue("id")

		switch r.Method {
		case http.MethodGet:
			ad, err := svc.Get(r.Context(), uid, adID)
			if err != nil {
				writeServiceError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, ad)

		case http.MethodPatch:
			var upd model.ListingUpdate
			if !decodeBody(w, r, &upd) {
				return
			}

			ad, vs, err := svc.Update(r.Context(), uid, adID, upd)
			if err != nil {
				writeServiceError(w, err)
				return
			}
			if model.HasFatal(vs) {
				writeViolations(w, vs)
				return
			}
			writeJSON(w, http.StatusOK, ListingUpdateResp{Advertisement: ad, Warnings: model.Warnings(vs)})

		case http.MethodDelete:
			if err := svc.Delete(r.Context(), uid, adID); err != nil {
				writeServiceError(w, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)

		default:
			methodNotAllowed(w, r)
		}
	}
}

type ListingImagesResp struct {
	Images []model.ListingImage `json:"images"`
}

func ListingImages(svc service.Listing) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w, r)
			return
		}

		uid, ok := userID(w, r)
		if !ok {
			return
		}

		images, err := svc.Images(r.Context(), uid, r.PathValue("id"))
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, ListingImagesResp{Images: images})
	}
}
