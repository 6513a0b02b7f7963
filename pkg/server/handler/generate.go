package handler

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"

	"github.com/marktplaatser/backend/pkg/model"
	"github.com/marktplaatser/backend/pkg/service"
)

// GenerateListingReq accepts either a single image or a batch; the two
// shapes are normalized into one slice before processing.
type GenerateListingReq struct {
	Image    string   `json:"image,omitempty"`
	Images   []string `json:"images,omitempty"`
	Postcode string   `json:"postcode,omitempty"`
}

type GenerateListingResp struct {
	Draft   model.Draft `json:"draft"`
	Warning string      `json:"warning,omitempty"`
}

func GenerateListing(svc service.Generate) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			methodNotAllowed(w, r)
			return
		}

		uid, ok := userID(w, r)
		if !ok {
			return
		}

		var req GenerateListingReq
		if !decodeBody(w, r, &req) {
			return
		}

		encoded := req.Images
		if req.Image != "" {
			encoded = append([]string{req.Image}, encoded...)
		}
		if len(encoded) == 0 {
			writeError(w, http.StatusBadRequest, "at least one image is required")
			return
		}
		if len(encoded) > model.MaxImages {
			writeError(w, http.StatusBadRequest, model.ErrImageSetFull.Error())
			return
		}

		images := make([][]byte, len(encoded))
		for i, e := range encoded {
			raw, err := base64.StdEncoding.DecodeString(e)
			if err != nil {
				writeError(w, http.StatusBadRequest, fmt.Sprintf("can't decode image %d: %v", i+1, err))
				return
			}
			images[i] = raw
		}

		draft, err := svc.FromImages(r.Context(), uid, req.Postcode, images)

		// A failed image upload after the draft exists is reported, not
		// rolled back; the client still gets the draft.
		var ue *model.UploadError
		if errors.As(err, &ue) {
			writeJSON(w, http.StatusCreated, GenerateListingResp{Draft: draft, Warning: ue.Error()})
			return
		}
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, GenerateListingResp{Draft: draft})
	}
}
