package model

const (
	PriceModelFixed   = "fixed"
	PriceModelBidding = "bidding"

	DefaultAuctionDurationDays = 7
)

// AuctionDurations lists the durations the marketplace accepts for auctions.
var AuctionDurations = []int{3, 5, 7, 10, 14}

// PriceModel is a tagged union over fixed-price and auction listings.
// Amounts are in whole euros, matching what the marketplace API expects.
type PriceModel struct {
	ModelType           string `json:"modelType"`
	AskingPrice         int    `json:"askingPrice"`
	MinimalBid          int    `json:"minimalBid,omitempty"`
	AuctionDurationDays int    `json:"auctionDuration,omitempty"`
	ReservePrice        *int   `json:"reservePrice,omitempty"`
}

// ToFixed converts the model to a fixed-price one, preserving the asking
// price and dropping all bidding fields.
func (p PriceModel) ToFixed() PriceModel {
	return PriceModel{
		ModelType:   PriceModelFixed,
		AskingPrice: p.AskingPrice,
	}
}

// ToBidding converts the model to an auction. The asking price is preserved.
// Unless the caller had already customized a minimal bid, it is derived as
// 10% of the asking price, floored, with a lower bound of 1.
func (p PriceModel) ToBidding() PriceModel {
	out := PriceModel{
		ModelType:           PriceModelBidding,
		AskingPrice:         p.AskingPrice,
		MinimalBid:          p.MinimalBid,
		AuctionDurationDays: p.AuctionDurationDays,
		ReservePrice:        p.ReservePrice,
	}

	if out.MinimalBid <= 0 {
		out.MinimalBid = max(1, p.AskingPrice/10)
	}

	if !validAuctionDuration(out.AuctionDurationDays) {
		out.AuctionDurationDays = DefaultAuctionDurationDays
	}

	return out
}

// Validate returns the model's violations. Fatal ones (non-positive asking
// price, minimal bid not below the asking price) block submission; the rest
// are advisory.
func (p PriceModel) Validate() []Violation {
	var vs []Violation

	if p.AskingPrice <= 0 {
		vs = append(vs, Violation{Field: "askingPrice", Message: "asking price must be greater than 0", Fatal: true})
	}

	if p.ModelType != PriceModelBidding {
		return vs
	}

	if p.MinimalBid <= 0 {
		vs = append(vs, Violation{Field: "minimalBid", Message: "minimal bid must be greater than 0", Fatal: true})
	} else if p.MinimalBid >= p.AskingPrice {
		vs = append(vs, Violation{Field: "minimalBid", Message: "minimal bid must be below the asking price", Fatal: true})
	} else if p.AskingPrice > 0 && p.MinimalBid > p.AskingPrice/4 {
		vs = append(vs, Violation{Field: "minimalBid", Message: "large bid increments may discourage bidders"})
	}

	if !validAuctionDuration(p.AuctionDurationDays) {
		vs = append(vs, Violation{Field: "auctionDuration", Message: "auction duration must be one of 3, 5, 7, 10 or 14 days"})
	}

	if p.ReservePrice != nil && *p.ReservePrice < p.AskingPrice {
		vs = append(vs, Violation{Field: "reservePrice", Message: "reserve price below the asking price is unlikely to be met"})
	}

	return vs
}

func validAuctionDuration(days int) bool {
	for _, d := range AuctionDurations {
		if d == days {
			return true
		}
	}
	return false
}
