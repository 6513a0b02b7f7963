package marktplaats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/marktplaatser/backend/pkg/database"
	"github.com/marktplaatser/backend/pkg/model"
)

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

// clientToken returns an application access token via the client credentials
// flow, cached until shortly before expiry.
func (c *Client) clientCredentialsToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.clientToken != "" && time.Now().Before(c.clientExp) {
		return c.clientToken, nil
	}

	tr, err := c.tokenGrant(ctx, url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {c.ClientID},
		"client_secret": {c.ClientSecret},
	})
	if err != nil {
		return "", fmt.Errorf("can't obtain client token: %w", err)
	}

	c.clientToken = tr.AccessToken
	c.clientExp = time.Now().Add(time.Duration(tr.ExpiresIn)*time.Second - time.Minute)

	return c.clientToken, nil
}

// userToken returns the stored token for userID, refreshing it when expired.
// When the user has no stored token the client credentials token is used
// instead, so unauthenticated reads still work.
func (c *Client) userToken(ctx context.Context, userID string) (string, error) {
	if userID == "" {
		return c.clientCredentialsToken(ctx)
	}

	t, err := c.Tokens.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, model.ErrNoUserToken) {
			slog.Warn("no stored token for user, falling back to client credentials",
				slog.String("user_id", userID))
			return c.clientCredentialsToken(ctx)
		}
		return "", err
	}

	if !t.Expired(time.Now()) {
		return t.AccessToken, nil
	}

	tr, err := c.tokenGrant(ctx, url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {t.RefreshToken},
		"client_id":     {c.ClientID},
		"client_secret": {c.ClientSecret},
	})
	if err != nil {
		return "", fmt.Errorf("can't refresh user token: %w", err)
	}

	refreshed := database.Token{
		UserID:       userID,
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
		ExpiresAt:    time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second),
	}
	if refreshed.RefreshToken == "" {
		refreshed.RefreshToken = t.RefreshToken
	}

	if err := c.Tokens.Save(ctx, refreshed); err != nil {
		// The refreshed token is still usable for this request.
		slog.Error("can't persist refreshed token", slog.String("user_id", userID), slog.Any("error", err))
	}

	return refreshed.AccessToken, nil
}

func (c *Client) tokenGrant(ctx context.Context, form url.Values) (tokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.AuthBase+"/token", strings.NewReader(form.Encode()))
	if err != nil {
		return tokenResponse{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return tokenResponse{}, fmt.Errorf("can't call token endpoint: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return tokenResponse{}, fmt.Errorf("can't read token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return tokenResponse{}, &RemoteError{StatusCode: resp.StatusCode, Message: remoteMessage(body)}
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return tokenResponse{}, fmt.Errorf("can't decode token response: %w", err)
	}

	return tr, nil
}
