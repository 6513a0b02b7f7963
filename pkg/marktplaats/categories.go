package marktplaats

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/marktplaatser/backend/pkg/model"
)

type rawCategory struct {
	CategoryID int               `json:"categoryId"`
	Name       string            `json:"name"`
	Labels     map[string]string `json:"labels"`
	Embedded   struct {
		Categories []rawCategory `json:"mp:category"`
	} `json:"_embedded"`
}

func (rc rawCategory) label() string {
	if l, ok := rc.Labels["nl-NL"]; ok && l != "" {
		return l
	}
	return rc.Name
}

// Categories fetches the full category tree and returns the flattened level-2
// entries (the only ones that support attributes), sorted by name.
func (c *Client) Categories(ctx context.Context) ([]model.Category, error) {
	token, err := c.clientCredentialsToken(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.APIBase+"/categories", nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Embedded struct {
			Categories []rawCategory `json:"mp:category"`
		} `json:"_embedded"`
	}
	if err := c.doJSON(req, token, &resp); err != nil {
		return nil, fmt.Errorf("can't fetch categories: %w", err)
	}

	var flat []model.Category
	for _, top := range resp.Embedded.Categories {
		level1 := top.label()
		for _, child := range top.Embedded.Categories {
			level2 := child.label()
			name := level1 + " > " + level2
			flat = append(flat, model.Category{
				ID:          child.CategoryID,
				Name:        name,
				DisplayName: strings.ReplaceAll(name, " > ", " → "),
				Level1:      level1,
				Level2:      level2,
				ParentID:    top.CategoryID,
			})
		}
	}

	sort.Slice(flat, func(i, j int) bool { return flat[i].Name < flat[j].Name })

	return flat, nil
}

// AttributeField describes one category-specific attribute the marketplace
// accepts, including the allowed values for enum fields.
type AttributeField struct {
	Key      string            `json:"key"`
	Label    string            `json:"label"`
	Labels   map[string]string `json:"labels"`
	Required bool              `json:"required"`
	Options  []AttributeOption `json:"options"`
}

// AttributeOption is one allowed value of an enum attribute.
type AttributeOption struct {
	Value string `json:"value"`
}

// DisplayLabel prefers the Dutch label.
func (f AttributeField) DisplayLabel() string {
	if l, ok := f.Labels["nl-NL"]; ok && l != "" {
		return l
	}
	return f.Label
}

// CategoryAttributes fetches the attribute schema of a level-2 category. The
// endpoint is addressed by parent and child id.
func (c *Client) CategoryAttributes(ctx context.Context, level1ID, level2ID int) ([]AttributeField, error) {
	token, err := c.clientCredentialsToken(ctx)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/categories/%d/%d/attributes", c.APIBase, level1ID, level2ID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Fields []AttributeField `json:"fields"`
	}
	if err := c.doJSON(req, token, &resp); err != nil {
		return nil, fmt.Errorf("can't fetch category attributes: %w", err)
	}

	return resp.Fields, nil
}
