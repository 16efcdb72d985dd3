package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/oauth2"
	goauth "golang.org/x/oauth2/google"
	gsheet "google.golang.org/api/sheets/v4"
)

// DefaultTokenFile is where the OAuth token is kept when
// GOOGLE_OAUTH_TOKEN_FILE is not set.
const DefaultTokenFile = "token.json"

// ErrNoOAuthClient means neither GOOGLE_OAUTH_CLIENT_JSON nor
// GOOGLE_OAUTH_CLIENT_FILE is set.
var ErrNoOAuthClient = errors.New("set GOOGLE_OAUTH_CLIENT_JSON or GOOGLE_OAUTH_CLIENT_FILE")

// OAuthConfigFromEnv reads the OAuth client credentials from the environment
// and returns a config scoped to spreadsheets.
func OAuthConfigFromEnv(redirectURL string) (*oauth2.Config, error) {
	var b []byte
	clientJSON := strings.TrimSpace(os.Getenv("GOOGLE_OAUTH_CLIENT_JSON"))
	clientFile := strings.TrimSpace(os.Getenv("GOOGLE_OAUTH_CLIENT_FILE"))
	switch {
	case clientJSON != "":
		b = []byte(clientJSON)
	case clientFile != "":
		data, err := os.ReadFile(clientFile)
		if err != nil {
			return nil, fmt.Errorf("read client file: %w", err)
		}
		b = data
	default:
		return nil, ErrNoOAuthClient
	}

	cfg, err := goauth.ConfigFromJSON(b, gsheet.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("oauth config: %w", err)
	}
	cfg.RedirectURL = redirectURL
	return cfg, nil
}

// TokenFile returns GOOGLE_OAUTH_TOKEN_FILE or DefaultTokenFile.
func TokenFile() string {
	if f := strings.TrimSpace(os.Getenv("GOOGLE_OAUTH_TOKEN_FILE")); f != "" {
		return f
	}
	return DefaultTokenFile
}

// LoadToken reads a token written by SaveToken.
func LoadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read token: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("decode token: %w", err)
	}
	if tok.AccessToken == "" && tok.RefreshToken == "" {
		return nil, errors.New("token file holds no token")
	}
	return &tok, nil
}

// SaveToken writes tok to path, readable by the owner only.
func SaveToken(path string, tok *oauth2.Token) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open token file: %w", err)
	}
	if err := json.NewEncoder(f).Encode(tok); err != nil {
		f.Close()
		return fmt.Errorf("write token: %w", err)
	}
	return f.Close()
}

// oauthTokenSource builds a refreshing token source from the OAuth client
// and the stored token.
func oauthTokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	cfg, err := OAuthConfigFromEnv("")
	if err != nil {
		return nil, err
	}
	tok, err := LoadToken(TokenFile())
	if err != nil {
		return nil, err
	}
	return cfg.TokenSource(ctx, tok), nil
}
