package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/marktplaatser/backend/pkg/model"
)

// Token is a user's marketplace OAuth token pair, obtained by the external
// redirect flow and persisted server-side keyed by the opaque user id.
type Token struct {
	UserID       string
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// Expired reports whether the access token needs a refresh, with a small
// margin so a token never expires mid-request.
func (t Token) Expired(now time.Time) bool {
	return !t.ExpiresAt.After(now.Add(30 * time.Second))
}

type TokenRepository interface {
	Get(ctx context.Context, userID string) (Token, error)
	Save(ctx context.Context, t Token) error
}

type TokenDatabase struct {
	DB *sql.DB
}

func (td *TokenDatabase) Get(ctx context.Context, userID string) (Token, error) {
	q := `
		select user_id, access_token, refresh_token, expires_at
		from user_tokens
		where user_id = $1
	`
	var t Token
	err := td.DB.QueryRowContext(ctx, q, userID).Scan(&t.UserID, &t.AccessToken, &t.RefreshToken, &t.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Token{}, model.ErrNoUserToken
		}
		return Token{}, fmt.Errorf("can't get user token: %w", err)
	}

	return t, nil
}

func (td *TokenDatabase) Save(ctx context.Context, t Token) error {
	q := `
		insert into user_tokens (user_id, access_token, refresh_token, expires_at)
		values ($1, $2, $3, $4)
		on conflict (user_id) do update
		set access_token = excluded.access_token,
		    refresh_token = excluded.refresh_token,
		    expires_at = excluded.expires_at
	`
	if _, err := td.DB.ExecContext(ctx, q, t.UserID, t.AccessToken, t.RefreshToken, t.ExpiresAt); err != nil {
		return fmt.Errorf("can't save user token: %w", err)
	}

	return nil
}
