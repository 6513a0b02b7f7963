package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/marktplaatser/backend/pkg/model"
	"github.com/marktplaatser/backend/pkg/service"
)

func DraftCreate(svc service.Draft) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := userID(w, r)
		if !ok {
			return
		}

		var in service.DraftInput
		if !decodeBody(w, r, &in) {
			return
		}

		d, err := svc.Create(r.Context(), uid, in)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, d)
	}
}

func DraftListPage(svc service.Draft) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := userID(w, r)
		if !ok {
			return
		}

		var (
			q        = r.URL.Query()
			pageNum  = service.DefaultPageNum
			pageSize = service.DefaultPageSize
			err      error
		)

		if pn := q.Get("page_num"); pn != "" {
			pageNum, err = strconv.Atoi(pn)
			if err != nil {
				writeError(w, http.StatusBadRequest, fmt.Sprintf("can't parse page_num: %v", err))
				return
			}
		}

		if ps := q.Get("page_size"); ps != "" {
			pageSize, err = strconv.Atoi(ps)
			if err != nil {
				writeError(w, http.StatusBadRequest, fmt.Sprintf("can't parse page_size: %v", err))
				return
			}
		}

		drafts, total, err := svc.List(r.Context(), uid, pageNum, pageSize)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, ListPageResp[model.Draft]{Page: drafts, Total: total})
	}
}

// Drafts serves the collection endpoint, dispatching on method.
func Drafts(svc service.Draft) http.HandlerFunc {
	create := DraftCreate(svc)
	list := DraftListPage(svc)

	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			create(w, r)
		case http.MethodGet:
			list(w, r)
		default:
			methodNotAllowed(w, r)
		}
	}
}

type DraftUpdateResp struct {
	Draft    model.Draft       `json:"draft"`
	Warnings []model.Violation `json:"warnings,omitempty"`
}

// DraftByID serves get, partial update and delete for a single draft.
func DraftByID(svc service.Draft) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := userID(w, r)
		if !ok {
			return
		}
		draftID := r.PathValue("id")

		switch r.Method {
		case http.MethodGet:
			d, err := svc.Get(r.Context(), draftID, uid)
			if err != nil {
				writeServiceError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, d)

		case http.MethodPatch:
			var upd service.DraftUpdate
			if !decodeBody(w, r, &upd) {
				return
			}
			if upd.Empty() {
				writeError(w, http.StatusBadRequest, "at least one field must be provided for update")
				return
			}

			d, vs, err := svc.Update(r.Context(), draftID, uid, upd)
			if err != nil {
				writeServiceError(w, err)
				return
			}
			if model.HasFatal(vs) {
				writeViolations(w, vs)
				return
			}
			writeJSON(w, http.StatusOK, DraftUpdateResp{Draft: d, Warnings: model.Warnings(vs)})

		case http.MethodDelete:
			if err := svc.Delete(r.Context(), draftID, uid); err != nil {
				writeServiceError(w, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)

		default:
			methodNotAllowed(w, r)
		}
	}
}

type DraftValidateResp struct {
	Valid      bool              `json:"valid"`
	Violations []model.Violation `json:"violations,omitempty"`
}

func DraftValidate(svc service.Draft) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			methodNotAllowed(w, r)
			return
		}

		uid, ok := userID(w, r)
		if !ok {
			return
		}

		vs, err := svc.Validate(r.Context(), r.PathValue("id"), uid)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, DraftValidateResp{Valid: !model.HasFatal(vs), Violations: vs})
	}
}

type DraftPublishReq struct {
	DeleteDraft bool `json:"deleteDraft"`
}

func DraftPublish(svc service.Draft) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			methodNotAllowed(w, r)
			return
		}

		uid, ok := userID(w, r)
		if !ok {
			return
		}

		// The body is optional; publishing without it keeps the draft.
		var req DraftPublishReq
		if r.Body != nil {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
				writeError(w, http.StatusBadRequest, "invalid JSON in request body")
				return
			}
		}
		deleteDraft := req.DeleteDraft

		res, vs, err := svc.Publish(r.Context(), r.PathValue("id"), uid, deleteDraft)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		if model.HasFatal(vs) {
			writeViolations(w, vs)
			return
		}

		writeJSON(w, http.StatusCreated, res)
	}
}
