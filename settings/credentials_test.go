package settings

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDataDirAndFilePathUseXDGDataHome(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_DATA_HOME", tmp)

	dir, err := DataDir()
	if err != nil {
		t.Fatalf("DataDir() error: %v", err)
	}
	wantDir := filepath.Join(tmp, "dumploc")
	if dir != wantDir {
		t.Fatalf("DataDir() = %q, want %q", dir, wantDir)
	}

	wantPath := filepath.Join(tmp, "dumploc", "auth.json")
	if got := FilePath(); got != wantPath {
		t.Fatalf("FilePath() = %q, want %q", got, wantPath)
	}
}

func TestSaveLoadRemoveLifecycle(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_DATA_HOME", tmp)

	store := Store{
		ProviderDeepL: {Key: "apikey123456", Endpoint: "https://api-free.deepl.com/v2/translate"},
	}

	if err := Save(store); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	path := filepath.Join(tmp, "dumploc", "auth.json")
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat auth.json: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Fatalf("auth.json mode = %o, want 600", info.Mode().Perm())
	}

	if got := APIKey(); got != "apikey123456" {
		t.Fatalf("APIKey() = %q", got)
	}
	if got := EndpointOverride(); got != "https://api-free.deepl.com/v2/translate" {
		t.Fatalf("EndpointOverride() = %q", got)
	}

	if err := Remove(ProviderDeepL); err != nil {
		t.Fatalf("Remove error: %v", err)
	}
	if got := APIKey(); got != "" {
		t.Fatalf("APIKey after remove = %q, want empty", got)
	}

	if err := Remove("missing-provider"); err != nil {
		t.Fatalf("Remove(missing) should be no-op, got: %v", err)
	}
}

func TestSetAPIKeyPreservesEndpoint(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_DATA_HOME", tmp)

	if err := Set(ProviderDeepL, &Info{Key: "old", Endpoint: "https://example.test/v2/translate"}); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if err := SetAPIKey("new-key"); err != nil {
		t.Fatalf("SetAPIKey error: %v", err)
	}
	if got := APIKey(); got != "new-key" {
		t.Fatalf("APIKey = %q", got)
	}
	if got := EndpointOverride(); got != "https://example.test/v2/translate" {
		t.Fatalf("endpoint override lost: %q", got)
	}
}

func TestLoadMissingOrInvalidFile(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_DATA_HOME", tmp)

	if got := Load(); len(got) != 0 {
		t.Fatalf("Load() with no file = %#v, want empty", got)
	}

	dir := filepath.Join(tmp, "dumploc")
	if err := os.MkdirAll(dir, 0700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "auth.json"), []byte("not json"), 0600); err != nil {
		t.Fatal(err)
	}
	if got := Load(); len(got) != 0 {
		t.Fatalf("Load() with invalid file = %#v, want empty", got)
	}
}

func TestMaskKey(t *testing.T) {
	if got := MaskKey("short"); got != "****" {
		t.Fatalf("MaskKey(short) = %q, want ****", got)
	}
	if got := MaskKey("12345678"); got != "****" {
		t.Fatalf("MaskKey(8 chars) = %q, want ****", got)
	}
	if got := MaskKey("123456789"); got != "1234...6789" {
		t.Fatalf("MaskKey(9 chars) = %q, want 1234...6789", got)
	}
}
