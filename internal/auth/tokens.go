package auth

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
)

// Storage keys for the token pair.
const (
	AccessTokenKey  = "access_token"
	RefreshTokenKey = "refresh_token"
)

// KV is the key-value persistence port shared with the preference store.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// TokenStore keeps the access/refresh pair in a KV.
type TokenStore struct {
	kv KV
}

// NewTokenStore constructs a new value for this package.
func NewTokenStore(kv KV) *TokenStore {
	return &TokenStore{kv: kv}
}

// Token returns the stored pair. Both fields are empty when signed out.
func (s *TokenStore) Token(ctx context.Context) (*oauth2.Token, error) {
	access, _, err := s.kv.Get(ctx, AccessTokenKey)
	if err != nil {
		return nil, fmt.Errorf("read access token: %w", err)
	}
	refresh, _, err := s.kv.Get(ctx, RefreshTokenKey)
	if err != nil {
		return nil, fmt.Errorf("read refresh token: %w", err)
	}
	return &oauth2.Token{AccessToken: access, TokenType: "Bearer", RefreshToken: refresh}, nil
}

// Save stores both tokens.
func (s *TokenStore) Save(ctx context.Context, token *oauth2.Token) error {
	if token == nil {
		return s.Clear(ctx)
	}
	if err := s.kv.Set(ctx, AccessTokenKey, token.AccessToken); err != nil {
		return fmt.Errorf("write access token: %w", err)
	}
	if err := s.kv.Set(ctx, RefreshTokenKey, token.RefreshToken); err != nil {
		return fmt.Errorf("write refresh token: %w", err)
	}
	return nil
}

// SetAccessToken replaces only the access token.
func (s *TokenStore) SetAccessToken(ctx context.Context, access string) error {
	if err := s.kv.Set(ctx, AccessTokenKey, access); err != nil {
		return fmt.Errorf("write access token: %w", err)
	}
	return nil
}

// Clear removes both tokens.
func (s *TokenStore) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, AccessTokenKey); err != nil {
		return fmt.Errorf("delete access token: %w", err)
	}
	if err := s.kv.Delete(ctx, RefreshTokenKey); err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}
	return nil
}
