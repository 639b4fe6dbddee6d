// Package settings provides persistent storage for dumploc user
// settings, currently the DeepL API key.
//
// Credentials are stored in the XDG data directory:
//
//	$XDG_DATA_HOME/dumploc/auth.json  (default: ~/.local/share/dumploc/)
//
// The file is a JSON object keyed by provider ID, with 0600 permissions
// (owner read/write only).
//
// Lookup order for the API key (implemented in the config package):
//  1. --api-key flag (highest priority)
//  2. DEEPL_API_KEY environment variable (optionally from a .env file)
//  3. This credential store
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	dataDirName = "dumploc"
	fileName    = "auth.json"

	// ProviderDeepL is the provider ID the translation pipeline uses.
	ProviderDeepL = "deepl"
)

// Info is a stored credential entry.
type Info struct {
	// Key is the provider API key.
	Key string `json:"key"`
	// Endpoint optionally overrides the provider endpoint (e.g. the
	// free-tier DeepL URL).
	Endpoint string `json:"endpoint,omitempty"`
}

// Store holds all provider credentials, keyed by provider ID.
type Store map[string]*Info

// ---------------------------------------------------------------------------
// File path
// ---------------------------------------------------------------------------

// dataDir returns the XDG data directory for dumploc.
// Respects $XDG_DATA_HOME (falls back to ~/.local/share).
func dataDir() (string, error) {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, dataDirName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", dataDirName), nil
}

// DataDir returns the dumploc data directory path.
func DataDir() (string, error) {
	return dataDir()
}

func filePath() (string, error) {
	dir, err := dataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

// FilePath returns the auth.json file path for display purposes.
func FilePath() string {
	p, err := filePath()
	if err != nil {
		return ""
	}
	return p
}

// ---------------------------------------------------------------------------
// Load / Save
// ---------------------------------------------------------------------------

// Load reads the credential store from disk.
// Returns an empty store if the file doesn't exist or is invalid.
func Load() Store {
	path, err := filePath()
	if err != nil {
		return make(Store)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return make(Store)
	}

	var store Store
	if err := json.Unmarshal(data, &store); err != nil || store == nil {
		return make(Store)
	}
	return store
}

// Save writes the credential store to disk with 0600 permissions.
func Save(store Store) error {
	path, err := filePath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(store, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling credentials: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing auth file: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Get / Set / Remove
// ---------------------------------------------------------------------------

// Get returns the auth entry for a provider, or nil if not found.
func Get(providerID string) *Info {
	return Load()[providerID]
}

// Set stores an auth entry for a provider (upsert).
func Set(providerID string, info *Info) error {
	store := Load()
	store[providerID] = info
	return Save(store)
}

// Remove deletes credentials for a provider.
func Remove(providerID string) error {
	store := Load()
	if _, ok := store[providerID]; !ok {
		return nil // Nothing to delete
	}
	delete(store, providerID)
	return Save(store)
}

// SetAPIKey stores the DeepL API key, preserving any endpoint override.
func SetAPIKey(key string) error {
	info := Get(ProviderDeepL)
	if info == nil {
		info = &Info{}
	}
	info.Key = key
	return Set(ProviderDeepL, info)
}

// APIKey returns the stored DeepL API key, or "".
func APIKey() string {
	info := Get(ProviderDeepL)
	if info == nil {
		return ""
	}
	return info.Key
}

// EndpointOverride returns the stored DeepL endpoint override, or "".
func EndpointOverride() string {
	info := Get(ProviderDeepL)
	if info == nil {
		return ""
	}
	return info.Endpoint
}

// MaskKey renders a key safe for display: the first and last four
// characters with the middle elided, or stars for short keys.
func MaskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
