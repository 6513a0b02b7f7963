package model

const ListingTitleMaxLen = 80

// Listing is a published advertisement identified by the marketplace's item
// id. Category and attributes are immutable for its whole lifetime; title,
// description and price stay editable regardless of the reserved flag.
type Listing struct {
	ItemID       string      `json:"itemId"`
	Title        string      `json:"title"`
	Description  string      `json:"description"`
	CategoryID   int         `json:"categoryId"`
	CategoryName string      `json:"categoryName,omitempty"`
	Attributes   []Attribute `json:"attributes,omitempty"`
	PriceModel   PriceModel  `json:"priceModel"`
	Reserved     bool        `json:"reserved"`
	Status       string      `json:"status,omitempty"`
	WebsiteLink  string      `json:"websiteLink,omitempty"`

	// Images is display-only and filled on demand; an empty slice may also
	// mean the fetch for this listing failed.
	Images []ListingImage `json:"images,omitempty"`
}

// ListingImage is one display image of a published advertisement.
type ListingImage struct {
	URL    string `json:"url"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// ListingUpdate carries a partial edit of a published advertisement. Nil
// fields are left untouched. Setting Reserved false requires AskingPrice;
// the marketplace is known to sometimes accept the request yet leave the
// stored flag unchanged, which the caller must detect by re-reading the flag
// from the response.
type ListingUpdate struct {
	Title       *string     `json:"title,omitempty"`
	Description *string     `json:"description,omitempty"`
	PriceModel  *PriceModel `json:"priceModel,omitempty"`
	Reserved    *bool       `json:"reserved,omitempty"`
	AskingPrice *int        `json:"askingPrice,omitempty"`
}

// Empty reports whether the update carries no fields at all.
func (u ListingUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil && u.PriceModel == nil &&
		u.Reserved == nil && u.AskingPrice == nil
}
