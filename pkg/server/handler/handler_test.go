package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marktplaatser/backend/pkg/marktplaats"
	"github.com/marktplaatser/backend/pkg/model"
	"github.com/marktplaatser/backend/pkg/server/handler"
	"github.com/marktplaatser/backend/pkg/service"
)

// fakeDraftSvc overrides only the methods a test touches; the rest panic via
// the nil embedded interface.
type fakeDraftSvc struct {
	service.Draft

	validateErr error
	violations  []model.Violation
}

func (f *fakeDraftSvc) Validate(ctx context.Context, draftID, userID string) ([]model.Violation, error) {
	return f.violations, f.validateErr
}

type fakeGenerateSvc struct {
	draft model.Draft
	err   error
}

func (f *fakeGenerateSvc) FromImages(ctx context.Context, userID, postcode string, images [][]byte) (model.Draft, error) {
	return f.draft, f.err
}

type fakeListingSvc struct {
	service.Listing

	updateErr error
}

func (f *fakeListingSvc) Update(ctx context.Context, userID, adID string, upd model.ListingUpdate) (model.Listing, []model.Violation, error) {
	return model.Listing{}, nil, f.updateErr
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) handler.ErrorResp {
	t.Helper()

	var resp handler.ErrorResp
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestUserIDRequired(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodPost, "/drafts/d1/validate", nil)
	req.SetPathValue("id", "d1")
	rec := httptest.NewRecorder()

	handler.DraftValidate(&fakeDraftSvc{}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, errorBody(t, rec).Error, "user_id")
}

func TestDraftValidateStatuses(t *testing.T) {
	t.Parallel()

	t.Run("missing draft is a 404", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodPost, "/drafts/d1/validate?user_id=u1", nil)
		req.SetPathValue("id", "d1")
		rec := httptest.NewRecorder()

		handler.DraftValidate(&fakeDraftSvc{validateErr: model.ErrDraftNotFound}).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("violations come back with the valid flag", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodPost, "/drafts/d1/validate?user_id=u1", nil)
		req.SetPathValue("id", "d1")
		rec := httptest.NewRecorder()

		svc := &fakeDraftSvc{violations: []model.Violation{
			{Field: "title", Message: "title is required", Fatal: true},
		}}
		handler.DraftValidate(svc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var resp handler.DraftValidateResp
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.False(t, resp.Valid)
		require.Len(t, resp.Violations, 1)
		assert.Equal(t, "title", resp.Violations[0].Field)
	})
}

func TestGenerateListingStatuses(t *testing.T) {
	t.Parallel()

	post := func(t *testing.T, svc service.Generate, body string) *httptest.ResponseRecorder {
		t.Helper()

		req := httptest.NewRequest(http.MethodPost, "/generate-listing?user_id=u1", strings.NewReader(body))
		rec := httptest.NewRecorder()
		handler.GenerateListing(svc).ServeHTTP(rec, req)
		return rec
	}

	t.Run("no images", func(t *testing.T) {
		t.Parallel()

		rec := post(t, &fakeGenerateSvc{}, `{}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid base64", func(t *testing.T) {
		t.Parallel()

		rec := post(t, &fakeGenerateSvc{}, `{"image": "%%%not-base64%%%"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rate limited", func(t *testing.T) {
		t.Parallel()

		rec := post(t, &fakeGenerateSvc{err: service.ErrLimitExceeded}, `{"image": "aGVsbG8="}`)
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	})

	t.Run("unmatched category", func(t *testing.T) {
		t.Parallel()

		rec := post(t, &fakeGenerateSvc{err: service.ErrCategoryMatch}, `{"image": "aGVsbG8="}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("partial image upload still returns the draft", func(t *testing.T) {
		t.Parallel()

		svc := &fakeGenerateSvc{
			draft: model.Draft{DraftID: "d1"},
			err:   &model.UploadError{Index: 1, Err: context.DeadlineExceeded},
		}

		rec := post(t, svc, `{"images": ["aGVsbG8=", "aGVsbG8="]}`)
		assert.Equal(t, http.StatusCreated, rec.Code)

		var resp handler.GenerateListingResp
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "d1", resp.Draft.DraftID)
		assert.NotEmpty(t, resp.Warning)
	})
}

func TestListingUpdateRemoteError(t *testing.T) {
	t.Parallel()

	patch := func(t *testing.T, svc service.Listing) *httptest.ResponseRecorder {
		t.Helper()

		req := httptest.NewRequest(http.MethodPatch, "/manage-advertisement/m1?user_id=u1", strings.NewReader(`{"title": "x"}`))
		req.SetPathValue("id", "m1")
		rec := httptest.NewRecorder()
		handler.ListingByID(svc).ServeHTTP(rec, req)
		return rec
	}

	t.Run("remote 4xx keeps its status and message", func(t *testing.T) {
		t.Parallel()

		rec := patch(t, &fakeListingSvc{updateErr: &marktplaats.RemoteError{
			StatusCode: http.StatusConflict,
			Message:    "Advertisement is closed",
		}})

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "Advertisement is closed", errorBody(t, rec).Error)
	})

	t.Run("remote 5xx becomes a bad gateway", func(t *testing.T) {
		t.Parallel()

		rec := patch(t, &fakeListingSvc{updateErr: &marktplaats.RemoteError{
			StatusCode: http.StatusServiceUnavailable,
			Message:    "try again later",
		}})

		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})

	t.Run("missing advertisement is a 404", func(t *testing.T) {
		t.Parallel()

		rec := patch(t, &fakeListingSvc{updateErr: model.ErrListingNotFound})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
