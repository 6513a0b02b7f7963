package model

// Category is a single entry of the flattened marketplace catalog, restricted
// to level-2 categories (the only ones that support attributes).
type Category struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Level1      string `json:"level1"`
	Level2      string `json:"level2"`

	// ParentID is the level-1 category id, needed to address the attribute
	// schema endpoint.
	ParentID int `json:"parentId,omitempty"`
}

// CategorySelection resolves a draft's category as either the AI suggestion
// made at generation time or an explicit user override. The suggestion is
// immutable; the override is cleared by selecting the suggestion again.
type CategorySelection struct {
	AISuggestedID   int    `json:"aiSuggestedId"`
	AISuggestedName string `json:"aiSuggestedName"`
	UserOverrideID  *int   `json:"userOverrideId,omitempty"`
}

func (c *CategorySelection) Select(overrideID int) {
	c.UserOverrideID = &overrideID
}

func (c *CategorySelection) SelectAISuggestion() {
	c.UserOverrideID = nil
}

// EffectiveID is the category id actually used for submission.
func (c CategorySelection) EffectiveID() int {
	if c.UserOverrideID != nil {
		return *c.UserOverrideID
	}
	return c.AISuggestedID
}

// ResolveName looks the effective id up in the catalog. A failed lookup
// (including an empty catalog from a failed fetch) falls back to the
// AI-provided name rather than failing.
func (c CategorySelection) ResolveName(catalog []Category) string {
	id := c.EffectiveID()
	for _, cat := range catalog {
		if cat.ID == id {
			return cat.Name
		}
	}
	return c.AISuggestedName
}
