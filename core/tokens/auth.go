package tokens

import (
	"context"
	"errors"
	"fmt"
	"time"

	"Sonicbar/logger"
	"Sonicbar/model"

	"golang.org/x/oauth2"
)

// ErrNoRefreshToken means a refresh was attempted with nothing to refresh.
var ErrNoRefreshToken = errors.New("no refresh token available")

// Scopes requested at authorization.
var Scopes = []string{
	"user-read-private",
	"user-read-email",
	"user-library-read",
	"user-library-modify",
	"user-read-playback-state",
	"user-modify-playback-state",
	"user-read-currently-playing",
	"user-read-recently-played",
	"playlist-read-private",
	"playlist-read-collaborative",
	"playlist-modify-public",
	"playlist-modify-private",
	"streaming",
}

// Authenticator runs the authorization-code flow and refreshes tokens,
// persisting every result in its Store.
type Authenticator struct {
	config *oauth2.Config
	store  Store
}

// NewAuthenticator builds the OAuth2 client for the catalog's accounts service.
func NewAuthenticator(clientID, clientSecret, redirectURL, authURL, tokenURL string, store Store) *Authenticator {
	return &Authenticator{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint: oauth2.Endpoint{
				AuthURL:   authURL,
				TokenURL:  tokenURL,
				AuthStyle: oauth2.AuthStyleInHeader,
			},
			Scopes: Scopes,
		},
		store: store,
	}
}

// Store returns the backing token store.
func (a *Authenticator) Store() Store { return a.store }

// AuthCodeURL returns the consent page URL. The dialog is always shown so
// switching accounts works.
func (a *Authenticator) AuthCodeURL(state string) string {
	return a.config.AuthCodeURL(state, oauth2.SetAuthURLParam("show_dialog", "true"))
}

// Exchange trades an authorization code for tokens and stores them.
func (a *Authenticator) Exchange(ctx context.Context, code string) (*model.TokenSet, error) {
	tok, err := a.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}
	ts := fromOAuth(tok)
	if err := a.store.Save(ctx, ts); err != nil {
		return nil, err
	}
	logger.Info("[Auth] 授权成功", logger.Any("expiry", ts.Expiry))
	return ts, nil
}

// Refresh obtains a new access token with the stored refresh token. The old
// refresh token is kept when the response carries none. If the refresh is
// rejected the stored tokens are cleared.
func (a *Authenticator) Refresh(ctx context.Context) (*model.TokenSet, error) {
	current, err := a.store.Load(ctx)
	if err != nil && !errors.Is(err, ErrNoTokens) {
		return nil, err
	}
	if current == nil || current.RefreshToken == "" {
		return nil, ErrNoRefreshToken
	}

	// force the token source to hit the endpoint
	stale := &oauth2.Token{
		RefreshToken: current.RefreshToken,
		Expiry:       time.Now().Add(-time.Hour),
	}
	tok, err := a.config.TokenSource(ctx, stale).Token()
	if err != nil {
		logger.Warn("[Auth] 刷新令牌失败，清除本地令牌", logger.ErrorField(err))
		if clearErr := a.store.Clear(ctx); clearErr != nil {
			logger.Error("[Auth] 清除令牌失败", logger.ErrorField(clearErr))
		}
		return nil, fmt.Errorf("refresh token: %w", err)
	}

	ts := fromOAuth(tok)
	if ts.RefreshToken == "" {
		ts.RefreshToken = current.RefreshToken
	}
	if ts.Scope == "" {
		ts.Scope = current.Scope
	}
	if err := a.store.Save(ctx, ts); err != nil {
		return nil, err
	}
	logger.Debug("[Auth] 令牌已刷新", logger.Any("expiry", ts.Expiry))
	return ts, nil
}

// Logout forgets the stored tokens.
func (a *Authenticator) Logout(ctx context.Context) error {
	return a.store.Clear(ctx)
}

func fromOAuth(tok *oauth2.Token) *model.TokenSet {
	ts := &model.TokenSet{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
		Expiry:       tok.Expiry,
	}
	if scope, ok := tok.Extra("scope").(string); ok {
		ts.Scope = scope
	}
	return ts
}
