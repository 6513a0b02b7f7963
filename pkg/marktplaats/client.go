// Package marktplaats is the REST client for the marketplace API. It is the
// only component that talks to the external advertisement endpoints; every
// call is a single attempt, and remote rejections are surfaced verbatim.
package marktplaats

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/marktplaatser/backend/pkg/database"
)

const (
	DefaultAPIBase  = "https://api.marktplaats.nl/v1"
	DefaultAuthBase = "https://auth.marktplaats.nl/accounts/oauth"

	requestTimeout = 15 * time.Second
)

// RemoteError is a 4xx/5xx answer from the marketplace. The message is kept
// verbatim so handlers can pass it through as a general error without
// translation.
type RemoteError struct {
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("marketplace returned status %d", e.StatusCode)
	}
	return e.Message
}

type Client struct {
	HTTP     *http.Client
	APIBase  string
	AuthBase string

	ClientID     string
	ClientSecret string

	// Tokens stores per-user OAuth tokens obtained by the external redirect
	// flow. Calls without a stored user token fall back to client
	// credentials.
	Tokens database.TokenRepository

	mu          sync.Mutex
	clientToken string
	clientExp   time.Time
}

func New(apiBase, authBase, clientID, clientSecret string, tokens database.TokenRepository) *Client {
	if apiBase == "" {
		apiBase = DefaultAPIBase
	}
	if authBase == "" {
		authBase = DefaultAuthBase
	}

	return &Client{
		HTTP:         &http.Client{Timeout: requestTimeout},
		APIBase:      apiBase,
		AuthBase:     authBase,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Tokens:       tokens,
	}
}

// doJSON performs one authenticated request and decodes the response into out
// (when out is non-nil). Non-2xx answers become *RemoteError with the remote
// message kept as-is.
func (c *Client) doJSON(req *http.Request, token string, out any) error {
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Language", "nl-NL")
	if req.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("can't call marketplace: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("can't read marketplace response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &RemoteError{StatusCode: resp.StatusCode, Message: remoteMessage(body)}
	}

	if out == nil || len(body) == 0 {
		return nil
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("can't decode marketplace response: %w", err)
	}

	return nil
}

func (c *Client) newRequest(req *http.Request, body any) (*http.Request, error) {
	if body == nil {
		return req, nil
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("can't marshal request body: %w", err)
	}

	req.Body = io.NopCloser(bytes.NewReader(raw))
	req.ContentLength = int64(len(raw))
	return req, nil
}

// remoteMessage extracts a human-readable message from an error body,
// falling back to the raw body when it is not the usual JSON shape.
func remoteMessage(body []byte) string {
	var parsed struct {
		Message string `json:"message"`
		Error   string `json:"error"`
		Details []struct {
			Message string `json:"message"`
		} `json:"details"`
	}

	if err := json.Unmarshal(body, &parsed); err == nil {
		switch {
		case parsed.Message != "":
			return parsed.Message
		case parsed.Error != "":
			return parsed.Error
		case len(parsed.Details) > 0 && parsed.Details[0].Message != "":
			return parsed.Details[0].Message
		}
	}

	return string(body)
}

// flexID tolerates the marketplace returning ids as either strings or
// numbers.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexID(n.String())
	return nil
}

func (f flexID) String() string { return string(f) }

func itoa(i int) string { return strconv.Itoa(i) }
