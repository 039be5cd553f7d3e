package token_manager

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/oauth2"
)

var ErrTokenExpired = errors.New("token expired and has no refresh token")

type tokenServiceImpl struct {
	TokenFilePath string
	now           func() time.Time
}

// TokenService reads an OAuth token saved by a previous authorization, used
// instead of (or together with) an API key.
type TokenService interface {
	LoadToken() (*oauth2.Token, error)
}

func NewTokenService(tokenFilePath string) TokenService {
	if tokenFilePath == "" {
		tokenFilePath = "token.json"
	}

	return &tokenServiceImpl{
		TokenFilePath: tokenFilePath,
		now:           time.Now,
	}
}

func (t *tokenServiceImpl) LoadToken() (*oauth2.Token, error) {
	data, err := os.ReadFile(t.TokenFilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read token file %s: %w", t.TokenFilePath, err)
	}

	token := &oauth2.Token{}
	if err := json.Unmarshal(data, token); err != nil {
		return nil, fmt.Errorf("failed to decode token file %s: %w", t.TokenFilePath, err)
	}

	if token.AccessToken == "" && token.RefreshToken == "" {
		return nil, fmt.Errorf("invalid token in %s: no access token or refresh token", t.TokenFilePath)
	}

	// An expired token is only usable through its refresh token.
	if token.RefreshToken == "" && !token.Expiry.IsZero() && token.Expiry.Before(t.now()) {
		return nil, fmt.Errorf("token file %s: %w", t.TokenFilePath, ErrTokenExpired)
	}

	return token, nil
}
