package handler

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"

	"github.com/marktplaatser/backend/pkg/database"
	"github.com/marktplaatser/backend/pkg/service"
)

type ImageUploadReq struct {
	DraftID string `json:"draftId"`
	Image   string `json:"image"`
}

type ImageUploadResp struct {
	URL        string `json:"imageUrl"`
	ImageCount int    `json:"imageCount"`
}

func ImageUpload(svc service.Draft) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			methodNotAllowed(w, r)
			return
		}

		uid, ok := userID(w, r)
		if !ok {
			return
		}

		var req ImageUploadReq
		if !decodeBody(w, r, &req) {
			return
		}
		if req.DraftID == "" {
			writeError(w, http.StatusBadRequest, "draftId is required")
			return
		}

		raw, err := base64.StdEncoding.DecodeString(req.Image)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("can't decode image: %v", err))
			return
		}

		url, count, err := svc.AddImage(r.Context(), req.DraftID, uid, raw)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, ImageUploadResp{URL: url, ImageCount: count})
	}
}

// ImageServe streams a stored image blob by its key. This is the public face
// of the URLs handed out at upload time.
func ImageServe(images database.ImageRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w, r)
			return
		}

		img, err := images.Get(r.Context(), r.PathValue("key"))
		if errors.Is(err, database.ErrNotFound) {
			writeError(w, http.StatusNotFound, "image not found")
			return
		}
		if err != nil {
			writeServiceError(w, err)
			return
		}

		w.Header().Set("Content-Type", img.ContentType)
		w.Header().Set("Cache-Control", "public, max-age=86400")
		if _, err := w.Write(img.Data); err != nil {
			http.Error(w, fmt.Sprintf("can't write response: %v", err), http.StatusInternalServerError)
		}
	}
}
