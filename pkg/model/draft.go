package model

import (
	"regexp"
	"strings"
	"time"
)

const (
	DraftTitleMaxLen = 60

	StatusDraft      = "draft"
	StatusPublishing = "publishing"
	StatusPublished  = "published"
)

// Dutch postcode: four digits not starting with 0, optional space, two letters.
var postcodeRe = regexp.MustCompile(`^[1-9][0-9]{3}\s?[A-Za-z]{2}$`)

// ValidPostcode reports whether s is a well-formed Dutch postcode.
func ValidPostcode(s string) bool {
	return postcodeRe.MatchString(s)
}

// Attribute is a category-specific key/value pair. Attributes are set once at
// AI-generation time and are immutable afterwards.
type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Draft is an unpublished, locally editable listing awaiting submission to
// the marketplace. It is owned by the user whose opaque token created it.
type Draft struct {
	DraftID     string            `json:"draftId"`
	UserID      string            `json:"userId"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Category    CategorySelection `json:"category"`
	Attributes  []Attribute       `json:"attributes"`
	PriceModel  PriceModel        `json:"priceModel"`
	Postcode    string            `json:"postcode"`
	Images      ImageSet          `json:"-"`
	ImageURLs   []string          `json:"images"`

	// SuggestedPricingModel is a hint from the generation step, never
	// enforced.
	SuggestedPricingModel string `json:"suggestedPricingModel,omitempty"`

	AIGenerated bool      `json:"aiGenerated"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// EffectiveCategoryID collapses the category selection for submission.
func (d *Draft) EffectiveCategoryID() int {
	return d.Category.EffectiveID()
}

// Validate returns every violation of the draft's invariants. It is re-run
// after each field mutation; a fatal violation blocks save and publish but
// never reverts user input.
func (d *Draft) Validate() []Violation {
	var vs []Violation

	title := strings.TrimSpace(d.Title)
	switch {
	case title == "":
		vs = append(vs, Violation{Field: "title", Message: "title is required", Fatal: true})
	case len([]rune(d.Title)) > DraftTitleMaxLen:
		vs = append(vs, Violation{Field: "title", Message: "title must be 60 characters or less", Fatal: true})
	}

	if strings.TrimSpace(d.Description) == "" {
		vs = append(vs, Violation{Field: "description", Message: "description is required", Fatal: true})
	}

	if d.EffectiveCategoryID() == 0 {
		vs = append(vs, Violation{Field: "category", Message: "category is required", Fatal: true})
	}

	if !ValidPostcode(d.Postcode) {
		vs = append(vs, Violation{Field: "postcode", Message: "postcode must match the Dutch format, e.g. 1234 AB", Fatal: true})
	}

	vs = append(vs, d.PriceModel.Validate()...)

	return vs
}
