package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

const (
	githubTokenAccount = "github_token"
	apiTokenAccount    = "api_token"
)

// Keychain reads and writes secrets in the platform secret store.
type Keychain struct{}

func NewKeychain() Keychain { return Keychain{} }

func (Keychain) Get(service, account string) (string, error) {
	out, err := keychainGet(service, account)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

func (Keychain) Set(service, account, value string) error {
	return keychainSet(service, account, value)
}

// SecretStore is the subset of Keychain used for tokens.
type SecretStore interface {
	Get(service, account string) (string, error)
	Set(service, account, value string) error
}

// GetAPIToken returns the bearer token guarding the local HTTP API,
// generating and storing one on first use.
func GetAPIToken(ss SecretStore) (string, error) {
	if tok, err := ss.Get(Service, apiTokenAccount); err == nil && tok != "" {
		return tok, nil
	}
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating API token: %w", err)
	}
	tok := hex.EncodeToString(buf)
	if err := ss.Set(Service, apiTokenAccount, tok); err != nil {
		return "", fmt.Errorf("storing API token: %w", err)
	}
	return tok, nil
}

// SetGitHubToken stores the GitHub token in the secret store.
func SetGitHubToken(ss SecretStore, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("empty GitHub token")
	}
	if err := ss.Set(Service, githubTokenAccount, token); err != nil {
		return fmt.Errorf("storing GitHub token: %w", err)
	}
	return nil
}
