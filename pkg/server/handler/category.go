package handler

import (
	"net/http"

	"github.com/marktplaatser/backend/pkg/model"
	"github.com/marktplaatser/backend/pkg/service"
)

type CategoryListResp struct {
	Categories []model.Category `json:"categories"`
}

func CategoryList(svc service.Category) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w, r)
			return
		}

		cats, err := svc.List(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, CategoryListResp{Categories: cats})
	}
}
