// Package deepl is a minimal client for the DeepL v2 translate endpoint.
//
// Requests are form-encoded with one repeated "text" parameter per source
// string; the response carries the translations in submission order. The
// client validates that cardinality and treats any mismatch as a hard
// error, since callers re-zip results onto their sources positionally.
package deepl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultEndpoint is the paid-tier API endpoint. Free-tier keys use
// https://api-free.deepl.com/v2/translate.
const DefaultEndpoint = "https://api.deepl.com/v2/translate"

// DefaultTimeout bounds a single translate call so a hung connection
// cannot stall the pipeline.
const DefaultTimeout = 60 * time.Second

// Client talks to the DeepL HTTP API.
type Client struct {
	// APIKey is the DeepL auth key.
	APIKey string
	// Endpoint is the translate URL (DefaultEndpoint if empty).
	Endpoint string
	// HTTPClient is used for requests. Defaults to a client with
	// DefaultTimeout.
	HTTPClient *http.Client
}

// New returns a Client with the default endpoint and timeout.
func New(apiKey string) *Client {
	return &Client{
		APIKey:     apiKey,
		Endpoint:   DefaultEndpoint,
		HTTPClient: &http.Client{Timeout: DefaultTimeout},
	}
}

func (c *Client) endpoint() string {
	if c.Endpoint != "" {
		return c.Endpoint
	}
	return DefaultEndpoint
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: DefaultTimeout}
}

// apiResponse is the translate endpoint response body.
type apiResponse struct {
	Translations []struct {
		DetectedSourceLanguage string `json:"detected_source_language"`
		Text                   string `json:"text"`
	} `json:"translations"`
}

// TranslateBatch translates texts into targetLang with a single API call.
// sourceLang may be empty to let DeepL detect the source. The returned
// slice has exactly one element per input, in input order.
func (c *Client) TranslateBatch(ctx context.Context, texts []string, targetLang, sourceLang string) ([]string, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	form := url.Values{}
	form.Set("auth_key", c.APIKey)
	form.Set("target_lang", targetLang)
	if sourceLang != "" {
		form.Set("source_lang", sourceLang)
	}
	for _, t := range texts {
		form.Add("text", t)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.endpoint(), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("DeepL request failed: %w", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("DeepL returned status %d: %s", resp.StatusCode, truncate(string(body), 300))
	}

	var parsed apiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parsing DeepL response: %w", err)
	}
	if len(parsed.Translations) != len(texts) {
		return nil, fmt.Errorf("DeepL returned %d translations for %d texts", len(parsed.Translations), len(texts))
	}

	out := make([]string, len(texts))
	for i, tr := range parsed.Translations {
		out[i] = tr.Text
	}
	return out, nil
}

// Suffix converts a DeepL target code into a per-language field suffix
// for JSON output: lowercase with dashes replaced by underscores, and
// zh-hans collapsed to plain zh (so name + EN-US -> name_en_us,
// ZH-HANS -> name_zh).
func Suffix(lang string) string {
	s := strings.ToLower(strings.ReplaceAll(lang, "-", "_"))
	if s == "zh_hans" {
		return "zh"
	}
	return s
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
