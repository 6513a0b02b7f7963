package marktplaats_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marktplaatser/backend/pkg/database"
	"github.com/marktplaatser/backend/pkg/marktplaats"
	"github.com/marktplaatser/backend/pkg/model"
)

type staticTokens struct{}

func (staticTokens) Get(ctx context.Context, userID string) (database.Token, error) {
	return database.Token{
		UserID:      userID,
		AccessToken: "user-token",
		ExpiresAt:   time.Now().Add(time.Hour),
	}, nil
}

func (staticTokens) Save(ctx context.Context, t database.Token) error { return nil }

func newTestClient(t *testing.T, handler http.Handler) *marktplaats.Client {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token": "client-token", "expires_in": 3600}`))
	})
	mux.Handle("/", handler)

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	return marktplaats.New(ts.URL, ts.URL, "client-id", "client-secret", staticTokens{})
}

func TestRemoteErrorPassthrough(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"message": "Advertisement limit reached"}`))
	}))

	_, err := c.CreateAdvertisement(context.Background(), "u1", marktplaats.CreateAdvertisementRequest{})

	var re *marktplaats.RemoteError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, http.StatusConflict, re.StatusCode)
	assert.Equal(t, "Advertisement limit reached", re.Message)
	assert.Equal(t, "Advertisement limit reached", re.Error())
}

func TestCreateAdvertisement(t *testing.T) {
	t.Parallel()

	t.Run("sends bearer token and parses string id", func(t *testing.T) {
		t.Parallel()

		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer user-token", r.Header.Get("Authorization"))
			assert.Equal(t, "nl-NL", r.Header.Get("Accept-Language"))

			var body marktplaats.CreateAdvertisementRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "1012 AB", body.Location.Postcode)

			w.Write([]byte(`{
				"itemId": "m777",
				"title": "Tafel",
				"_links": {"mp:advertisement-website-link": {"href": "https://marktplaats.nl/a/m777"}}
			}`))
		}))

		l, err := c.CreateAdvertisement(context.Background(), "u1", marktplaats.CreateAdvertisementRequest{
			Title:      "Tafel",
			CategoryID: 91,
			Location:   marktplaats.Location{Postcode: "1012 AB"},
			PriceModel: model.PriceModel{ModelType: model.PriceModelFixed, AskingPrice: 80},
		})

		require.NoError(t, err)
		assert.Equal(t, "m777", l.ItemID)
		assert.Equal(t, "https://marktplaats.nl/a/m777", l.WebsiteLink)
	})

	t.Run("tolerates a numeric id", func(t *testing.T) {
		t.Parallel()

		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"id": 998877}`))
		}))

		l, err := c.CreateAdvertisement(context.Background(), "u1", marktplaats.CreateAdvertisementRequest{})
		require.NoError(t, err)
		assert.Equal(t, "998877", l.ItemID)
	})
}

func TestSetReserved(t *testing.T) {
	t.Parallel()

	t.Run("unreserving sends the new asking price", func(t *testing.T) {
		t.Parallel()

		var got map[string]any
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPatch, r.Method)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.Write([]byte(`{"itemId": "m1", "reserved": false}`))
		}))

		l, err := c.SetReserved(context.Background(), "u1", "m1", false, 60)

		require.NoError(t, err)
		assert.False(t, l.Reserved)
		assert.Equal(t, false, got["reserved"])
		assert.Equal(t, float64(60), got["askingPrice"])
	})

	t.Run("reserving omits the asking price", func(t *testing.T) {
		t.Parallel()

		var got map[string]any
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.Write([]byte(`{"itemId": "m1", "reserved": true}`))
		}))

		l, err := c.SetReserved(context.Background(), "u1", "m1", true, 0)

		require.NoError(t, err)
		assert.True(t, l.Reserved)
		assert.NotContains(t, got, "askingPrice")
	})

	t.Run("reports the stored flag, not the requested one", func(t *testing.T) {
		t.Parallel()

		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"itemId": "m1", "reserved": true}`))
		}))

		l, err := c.SetReserved(context.Background(), "u1", "m1", false, 60)

		require.NoError(t, err)
		assert.True(t, l.Reserved)
	})
}

func TestListAdvertisements(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "10", r.URL.Query().Get("offset"))
		assert.Equal(t, "25", r.URL.Query().Get("limit"))

		w.Write([]byte(`{
			"_embedded": {
				"mp:advertisements": [
					{"itemId": "m1", "title": "Tafel", "reserved": false},
					{"itemId": "m2", "title": "Stoel", "reserved": true}
				]
			}
		}`))
	}))

	ads, err := c.ListAdvertisements(context.Background(), "u1", 10, 25)

	require.NoError(t, err)
	require.Len(t, ads, 2)
	assert.Equal(t, "m1", ads[0].ItemID)
	assert.True(t, ads[1].Reserved)
}

func TestGetAdvertisementNotFound(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message": "not found"}`))
	}))

	_, err := c.GetAdvertisement(context.Background(), "u1", "gone")
	assert.ErrorIs(t, err, model.ErrListingNotFound)
}

func TestCategories(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer client-token", r.Header.Get("Authorization"))

		w.Write([]byte(`{
			"_embedded": {
				"mp:category": [
					{
						"categoryId": 30,
						"name": "Audio, Tv and Photo",
						"labels": {"nl-NL": "Audio, Tv en Foto"},
						"_embedded": {"mp:category": [
							{"categoryId": 31, "name": "Headphones", "labels": {"nl-NL": "Koptelefoons"}},
							{"categoryId": 32, "name": "Televisions"}
						]}
					},
					{
						"categoryId": 90,
						"name": "Antiek en Kunst",
						"_embedded": {"mp:category": [
							{"categoryId": 92, "name": "Schilderijen"}
						]}
					}
				]
			}
		}`))
	}))

	cats, err := c.Categories(context.Background())

	require.NoError(t, err)
	require.Len(t, cats, 3)

	// Dutch labels win over names, top-level entries are dropped, output is
	// sorted by name.
	assert.Equal(t, model.Category{
		ID:          92,
		Name:        "Antiek en Kunst > Schilderijen",
		DisplayName: "Antiek en Kunst → Schilderijen",
		Level1:      "Antiek en Kunst",
		Level2:      "Schilderijen",
		ParentID:    90,
	}, cats[0])

	assert.Equal(t, "Audio, Tv en Foto > Koptelefoons", cats[1].Name)
	assert.Equal(t, 30, cats[1].ParentID)
	assert.Equal(t, "Audio, Tv en Foto > Televisions", cats[2].Name)
}

func TestCategoryAttributes(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/categories/30/31/attributes", r.URL.Path)

		w.Write([]byte(`{
			"fields": [
				{"key": "brand", "labels": {"nl-NL": "Merk"}, "options": [{"value": "Sony"}]},
				{"key": "condition", "label": "Condition"}
			]
		}`))
	}))

	fields, err := c.CategoryAttributes(context.Background(), 30, 31)

	require.NoError(t, err)
	require.Len(t, fields, 2)
	assert.Equal(t, "Merk", fields[0].DisplayLabel())
	assert.Equal(t, "Condition", fields[1].DisplayLabel())
	assert.Equal(t, "Sony", fields[0].Options[0].Value)
}
