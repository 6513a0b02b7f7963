package marktplaats

import (
	"context"
	"errors"
	"net/http"

	"github.com/marktplaatser/backend/pkg/model"
)

// CreateAdvertisementRequest is the advertisement creation payload. Location
// wraps the postcode the way the API expects it.
type CreateAdvertisementRequest struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	CategoryID  int               `json:"categoryId"`
	Location    Location          `json:"location"`
	PriceModel  model.PriceModel  `json:"priceModel"`
	Attributes  []model.Attribute `json:"attributes,omitempty"`
}

type Location struct {
	Postcode string `json:"postcode"`
}

type advertisement struct {
	ItemID      flexID           `json:"itemId"`
	ID          flexID           `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	CategoryID  int              `json:"categoryId"`
	PriceModel  model.PriceModel `json:"priceModel"`
	Reserved    bool             `json:"reserved"`
	Status      string           `json:"status"`
	Links       map[string]struct {
		Href string `json:"href"`
	} `json:"_links"`
}

func (a advertisement) toModel() model.Listing {
	id := a.ItemID.String()
	if id == "" {
		id = a.ID.String()
	}

	return model.Listing{
		ItemID:      id,
		Title:       a.Title,
		Description: a.Description,
		CategoryID:  a.CategoryID,
		PriceModel:  a.PriceModel,
		Reserved:    a.Reserved,
		Status:      a.Status,
		WebsiteLink: a.Links["mp:advertisement-website-link"].Href,
	}
}

// CreateAdvertisement publishes a new advertisement on behalf of the user.
func (c *Client) CreateAdvertisement(ctx context.Context, userID string, ad CreateAdvertisementRequest) (model.Listing, error) {
	token, err := c.userToken(ctx, userID)
	if err != nil {
		return model.Listing{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.APIBase+"/advertisements", nil)
	if err != nil {
		return model.Listing{}, err
	}
	if req, err = c.newRequest(req, ad); err != nil {
		return model.Listing{}, err
	}

	var created advertisement
	if err := c.doJSON(req, token, &created); err != nil {
		return model.Listing{}, err
	}

	return created.toModel(), nil
}

// UploadImages attaches previously uploaded image URLs to an advertisement.
func (c *Client) UploadImages(ctx context.Context, userID, adID string, urls []string, replaceAll bool) error {
	token, err := c.userToken(ctx, userID)
	if err != nil {
		return err
	}

	body := struct {
		URLs       []string `json:"urls"`
		ReplaceAll bool     `json:"replaceAll,omitempty"`
	}{URLs: urls, ReplaceAll: replaceAll}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.APIBase+"/advertisements/"+adID+"/images", nil)
	if err != nil {
		return err
	}
	if req, err = c.newRequest(req, body); err != nil {
		return err
	}

	return c.doJSON(req, token, nil)
}

// GetAdvertisement fetches a single advertisement owned by the user.
func (c *Client) GetAdvertisement(ctx context.Context, userID, adID string) (model.Listing, error) {
	token, err := c.userToken(ctx, userID)
	if err != nil {
		return model.Listing{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.APIBase+"/advertisements/"+adID, nil)
	if err != nil {
		return model.Listing{}, err
	}

	var ad advertisement
	if err := c.doJSON(req, token, &ad); err != nil {
		return model.Listing{}, mapNotFound(err)
	}

	return ad.toModel(), nil
}

// ListAdvertisements pages through the user's advertisements.
func (c *Client) ListAdvertisements(ctx context.Context, userID string, offset, limit int) ([]model.Listing, error) {
	token, err := c.userToken(ctx, userID)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.APIBase+"/advertisements", nil)
	if err != nil {
		return nil, err
	}

	q := req.URL.Query()
	if offset > 0 {
		q.Set("offset", itoa(offset))
	}
	if limit > 0 {
		q.Set("limit", itoa(limit))
	}
	req.URL.RawQuery = q.Encode()

	var resp struct {
		Embedded struct {
			Advertisements []advertisement `json:"mp:advertisements"`
		} `json:"_embedded"`
	}
	if err := c.doJSON(req, token, &resp); err != nil {
		return nil, err
	}

	listings := make([]model.Listing, 0, len(resp.Embedded.Advertisements))
	for _, ad := range resp.Embedded.Advertisements {
		listings = append(listings, ad.toModel())
	}

	return listings, nil
}

// UpdateAdvertisement PATCHes title/description/price changes. Category and
// attributes are immutable after creation and are never sent.
func (c *Client) UpdateAdvertisement(ctx context.Context, userID, adID string, upd model.ListingUpdate) (model.Listing, error) {
	token, err := c.userToken(ctx, userID)
	if err != nil {
		return model.Listing{}, err
	}

	body := struct {
		Title       *string           `json:"title,omitempty"`
		Description *string           `json:"description,omitempty"`
		PriceModel  *model.PriceModel `json:"priceModel,omitempty"`
	}{upd.Title, upd.Description, upd.PriceModel}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, c.APIBase+"/advertisements/"+adID, nil)
	if err != nil {
		return model.Listing{}, err
	}
	if req, err = c.newRequest(req, body); err != nil {
		return model.Listing{}, err
	}

	var ad advertisement
	if err := c.doJSON(req, token, &ad); err != nil {
		return model.Listing{}, mapNotFound(err)
	}

	return ad.toModel(), nil
}

// SetReserved PATCHes the reserved flag. Unreserving requires a new asking
// price. The returned listing carries the reserved flag as stored remotely,
// which the caller MUST compare against the requested value: the marketplace
// is known to answer 200 OK while leaving the flag unchanged.
func (c *Client) SetReserved(ctx context.Context, userID, adID string, reserved bool, askingPrice int) (model.Listing, error) {
	token, err := c.userToken(ctx, userID)
	if err != nil {
		return model.Listing{}, err
	}

	body := map[string]any{"reserved": reserved}
	if !reserved {
		body["askingPrice"] = askingPrice
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, c.APIBase+"/advertisements/"+adID, nil)
	if err != nil {
		return model.Listing{}, err
	}
	if req, err = c.newRequest(req, body); err != nil {
		return model.Listing{}, err
	}

	var ad advertisement
	if err := c.doJSON(req, token, &ad); err != nil {
		return model.Listing{}, mapNotFound(err)
	}

	return ad.toModel(), nil
}

// DeleteAdvertisement removes the advertisement from the marketplace.
func (c *Client) DeleteAdvertisement(ctx context.Context, userID, adID string) error {
	token, err := c.userToken(ctx, userID)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.APIBase+"/advertisements/"+adID, nil)
	if err != nil {
		return err
	}

	return mapNotFound(c.doJSON(req, token, nil))
}

// GetAdvertisementImages fetches the display images of an advertisement.
func (c *Client) GetAdvertisementImages(ctx context.Context, userID, adID string) ([]model.ListingImage, error) {
	token, err := c.userToken(ctx, userID)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.APIBase+"/advertisements/"+adID+"/images", nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Embedded struct {
			Images []model.ListingImage `json:"mp:advertisement-images"`
		} `json:"_embedded"`
		Images []model.ListingImage `json:"images"`
	}
	if err := c.doJSON(req, token, &resp); err != nil {
		return nil, mapNotFound(err)
	}

	if len(resp.Embedded.Images) > 0 {
		return resp.Embedded.Images, nil
	}
	return resp.Images, nil
}

func mapNotFound(err error) error {
	var re *RemoteError
	if errors.As(err, &re) && re.StatusCode == http.StatusNotFound {
		return model.ErrListingNotFound
	}
	return err
}
