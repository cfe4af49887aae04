package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Scopes are the Google OAuth scopes the server requires.
//
// The scopes provide access to:
//   - Google Calendar: full access (events, calendar list, free/busy)
//   - Google Meet: space lifecycle, settings and conference artifacts
var Scopes = []string{
	"https://www.googleapis.com/auth/calendar",
	"https://www.googleapis.com/auth/meetings.space.created",
	"https://www.googleapis.com/auth/meetings.space.readonly",
	"https://www.googleapis.com/auth/meetings.space.settings",
}

// Environment variables consumed by the env loader.
const (
	EnvClientID     = "GOOGLE_OAUTH_CLIENT_ID"
	EnvClientSecret = "GOOGLE_OAUTH_CLIENT_SECRET"
	EnvRefreshToken = "GOOGLE_OAUTH_REFRESH_TOKEN"
)

// CredentialRecord represents the principal's Google authorization.
// RefreshToken is required and treated as immutable once issued.
// AccessToken and AccessTokenExpiry are a cache derived from the refresh
// token and may be absent or stale.
type CredentialRecord struct {
	ClientID          string
	ClientSecret      string
	RefreshToken      string
	AccessToken       string
	AccessTokenExpiry time.Time
}

func (r *CredentialRecord) validate() error {
	if r.ClientID == "" {
		return fmt.Errorf("credential record is missing a client id")
	}
	if r.ClientSecret == "" {
		return fmt.Errorf("credential record is missing a client secret")
	}
	if r.RefreshToken == "" {
		return fmt.Errorf("credential record is missing a refresh token")
	}
	return nil
}

// Store loads and persists the credential record. Records handed to and
// from the store are always plaintext; any at-rest encryption is the
// store's own concern.
type Store interface {
	Load(ctx context.Context) (*CredentialRecord, error)
	Save(ctx context.Context, record *CredentialRecord) error
}

// EnvStore loads credentials from environment variables. Save is a no-op
// since the refreshed access token cannot be written back to the process
// environment; the in-memory cache inside the Manager covers that.
type EnvStore struct{}

// Load reads the three credential variables. All three must be present.
func (EnvStore) Load(_ context.Context) (*CredentialRecord, error) {
	record := &CredentialRecord{
		ClientID:     os.Getenv(EnvClientID),
		ClientSecret: os.Getenv(EnvClientSecret),
		RefreshToken: os.Getenv(EnvRefreshToken),
	}
	if err := record.validate(); err != nil {
		return nil, fmt.Errorf("incomplete OAuth environment (%s, %s, %s): %w",
			EnvClientID, EnvClientSecret, EnvRefreshToken, err)
	}
	return record, nil
}

// Save is a no-op for environment-backed credentials.
func (EnvStore) Save(_ context.Context, _ *CredentialRecord) error {
	return nil
}

// FileStore loads credentials from a client-credentials JSON file and a
// token cache file holding "accessToken refreshToken" separated by a
// single space. The token cache is rewritten after every successful
// refresh.
type FileStore struct {
	CredentialsPath string
	TokenPath       string
}

// clientCredentials mirrors the JSON produced by the Google Cloud console
// for installed applications. A flat {"client_id", "client_secret"} object
// is accepted as well.
type clientCredentials struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	Installed    *struct {
		ClientID     string `json:"client_id"`
		ClientSecret string `json:"client_secret"`
	} `json:"installed"`
}

// Load reads the credential bundle and the cached token pair.
func (s FileStore) Load(_ context.Context) (*CredentialRecord, error) {
	raw, err := os.ReadFile(s.CredentialsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	var creds clientCredentials
	if err := json.Unmarshal(raw, &creds); err != nil {
		return nil, fmt.Errorf("failed to parse credentials file: %w", err)
	}
	if creds.Installed != nil {
		creds.ClientID = creds.Installed.ClientID
		creds.ClientSecret = creds.Installed.ClientSecret
	}

	slurp, err := os.ReadFile(s.TokenPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}
	fields := strings.Fields(strings.TrimSpace(string(slurp)))
	if len(fields) != 2 {
		return nil, fmt.Errorf("invalid token file format: want \"accessToken refreshToken\"")
	}

	record := &CredentialRecord{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		AccessToken:  fields[0],
		RefreshToken: fields[1],
	}
	if err := record.validate(); err != nil {
		return nil, err
	}
	return record, nil
}

// Save rewrites the token cache file with the refreshed access token. The
// credentials file is never touched.
func (s FileStore) Save(_ context.Context, record *CredentialRecord) error {
	if err := os.MkdirAll(filepath.Dir(s.TokenPath), 0700); err != nil {
		return fmt.Errorf("failed to create token cache directory: %w", err)
	}
	data := record.AccessToken + " " + record.RefreshToken
	if err := os.WriteFile(s.TokenPath, []byte(data), 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

// StoreFromEnvironment picks the credential loader based on what the
// process environment provides: the three direct variables win, then the
// legacy file pair given by credentialsPath and tokenPath. An error means
// neither source is configured, which is fatal at startup.
func StoreFromEnvironment(credentialsPath, tokenPath string) (Store, error) {
	if os.Getenv(EnvClientID) != "" || os.Getenv(EnvClientSecret) != "" || os.Getenv(EnvRefreshToken) != "" {
		return EnvStore{}, nil
	}
	if credentialsPath != "" && tokenPath != "" {
		return FileStore{CredentialsPath: credentialsPath, TokenPath: tokenPath}, nil
	}
	return nil, fmt.Errorf("no OAuth credentials configured: set %s/%s/%s or provide credential and token file paths",
		EnvClientID, EnvClientSecret, EnvRefreshToken)
}
