// Package vision wraps the hosted multimodal model that turns product photos
// into structured listing data. The call is a single attempt: a failure is
// surfaced to the user, never retried.
package vision

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeneratedListing is the structured answer the model is instructed to
// produce. Category is a free-form path that still has to be reconciled with
// the marketplace catalog.
type GeneratedListing struct {
	Title          string            `json:"title"`
	Description    string            `json:"description"`
	Category       string            `json:"category"`
	Attributes     map[string]string `json:"attributes"`
	EstimatedPrice int               `json:"estimatedPrice"`
}

type Client struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewClient(ctx context.Context, apiKey string) (*Client, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	model := client.GenerativeModel("gemini-2.0-flash-001")
	model.ResponseMIMEType = "application/json"

	return &Client{client: client, model: model}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

// GenerateListing sends the photos plus the flattened category names to the
// model and parses its JSON answer. Passing the real catalog keeps the
// suggested category close enough for fuzzy matching to land.
func (c *Client) GenerateListing(ctx context.Context, images [][]byte, categoryNames []string) (GeneratedListing, error) {
	prompt := fmt.Sprintf(`
Je bent een assistent die gebruikers helpt met het maken van Marktplaats-advertenties voor tweedehands producten.

Analyseer de bijgevoegde foto('s) van één product en genereer:
1. Een beknopte Nederlandse titel (maximaal 60 tekens)
2. Een Nederlandse productbeschrijving van 2-4 zinnen
3. De best passende categorie, gekozen uit de onderstaande lijst
4. Relevante attributen als key-value paren (zoals merk, staat, materiaal)
5. Een realistische tweedehands vraagprijs in hele euro's

Beschikbare categorieën:
%s

Geef het resultaat terug als JSON met de sleutels: title, description, category, attributes, estimatedPrice.
`, strings.Join(categoryNames, "\n"))

	parts := make([]genai.Part, 0, len(images)+1)
	for _, img := range images {
		parts = append(parts, genai.ImageData("jpeg", img))
	}
	parts = append(parts, genai.Text(prompt))

	resp, err := c.model.GenerateContent(ctx, parts...)
	if err != nil {
		return GeneratedListing{}, fmt.Errorf("can't generate listing: %w", err)
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return GeneratedListing{}, fmt.Errorf("empty response from vision model")
	}

	txt, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return GeneratedListing{}, fmt.Errorf("unexpected response part type from vision model")
	}

	var gl GeneratedListing
	if err := json.Unmarshal([]byte(txt), &gl); err != nil {
		return GeneratedListing{}, fmt.Errorf("can't parse vision model response: %w", err)
	}

	return gl, nil
}
