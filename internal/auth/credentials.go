package auth

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// Credentials identify the OAuth client. They are read once and never written.
type Credentials struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Endpoint     oauth2.Endpoint
}

// LoadCredentials reads a Google client secret file (the credentials.json
// downloaded from the Cloud console).
func LoadCredentials(path string) (Credentials, error) {
	data, err := os.ReadFile(filepath.Clean(path)) // #nosec G304 - path chosen by the operator
	if err != nil {
		return Credentials{}, fmt.Errorf("read credentials: %w", err)
	}
	return ParseCredentials(data)
}

// ParseCredentials decodes the "installed" or "web" block of a client secret
// file. The first redirect URI wins.
func ParseCredentials(data []byte) (Credentials, error) {
	cfg, err := google.ConfigFromJSON(data)
	if err != nil {
		return Credentials{}, fmt.Errorf("parse credentials: %w", err)
	}
	if cfg.ClientID == "" {
		return Credentials{}, fmt.Errorf("parse credentials: missing client_id")
	}
	return Credentials{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Endpoint:     cfg.Endpoint,
	}, nil
}

// OAuthConfig builds the oauth2 configuration for the given scopes.
func (c Credentials) OAuthConfig(scopes []string) *oauth2.Config {
	endpoint := c.Endpoint
	if endpoint.AuthURL == "" || endpoint.TokenURL == "" {
		endpoint = google.Endpoint
	}
	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		RedirectURL:  c.RedirectURL,
		Endpoint:     endpoint,
		Scopes:       append([]string(nil), scopes...),
	}
}
