package main

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/dumploc/dumploc/config"
)

func TestSplitList(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "trims and drops empties",
			in:   " en , pt-BR ,, de ",
			want: []string{"en", "pt-BR", "de"},
		},
		{
			name: "single value",
			in:   "EN-US",
			want: []string{"EN-US"},
		},
		{
			name: "empty input",
			in:   "",
			want: nil,
		},
	}

	for _, tc := range tests {
		if got := splitList(tc.in); !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("%s: splitList(%q) = %#v, want %#v", tc.name, tc.in, got, tc.want)
		}
	}
}

func TestTargetLangs(t *testing.T) {
	cfg := &config.File{
		Targets: []config.Target{
			{Locale: "es", Lang: "ES"},
			{Locale: "en", Lang: "EN-US"},
			{Locale: "de", Lang: "DE"},
		},
	}

	// Flag overrides config entirely.
	if got := targetLangs(cfg, "FR, IT"); !reflect.DeepEqual(got, []string{"FR", "IT"}) {
		t.Fatalf("targetLangs(flag) = %#v", got)
	}

	// Config fallback skips the base locale.
	if got := targetLangs(cfg, ""); !reflect.DeepEqual(got, []string{"EN-US", "DE"}) {
		t.Fatalf("targetLangs(config) = %#v", got)
	}
}

func TestWriteOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.sql")
	if err := writeOutput(path, []byte("INSERT INTO t ...")); err != nil {
		t.Fatalf("writeOutput() error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if string(data) != "INSERT INTO t ..." {
		t.Fatalf("output content = %q", data)
	}
}
