// Package suggest provides species-name autocomplete backed by the GBIF
// species suggest endpoint, plus a debouncer that drops superseded queries.
package suggest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"github.com/plantae/plantae/pkg/models"
)

const (
	// minQueryLength is the shortest query worth sending upstream.
	minQueryLength = 2
	// maxSuggestions caps what a single lookup returns.
	maxSuggestions = 8
	// upstreamLimit over-fetches so deduplication still fills the cap.
	upstreamLimit = 10
)

// Config holds suggestion client options.
type Config struct {
	BaseURL string
	// HTTPClient defaults to http.DefaultClient.
	HTTPClient *http.Client
}

// Client queries the species suggest endpoint. Lookups are best-effort:
// failures are logged and surface as an empty result, never as an error.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// NewClient creates a suggestion client.
func NewClient(cfg Config) *Client {
	httpc := cfg.HTTPClient
	if httpc == nil {
		httpc = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		httpc:   httpc,
	}
}

// taxonRecord is the subset of the upstream taxon payload we read.
type taxonRecord struct {
	VernacularName string `json:"vernacularName"`
	CanonicalName  string `json:"canonicalName"`
	ScientificName string `json:"scientificName"`
}

// Suggest returns up to eight suggestions for the query, deduplicated by
// display name in upstream order. Queries shorter than two characters after
// trimming return an empty slice without a network call.
func (c *Client) Suggest(ctx context.Context, query string) []models.Suggestion {
	trimmed := strings.TrimSpace(query)
	if len(trimmed) < minQueryLength {
		return []models.Suggestion{}
	}

	records, err := c.fetch(ctx, trimmed)
	if err != nil {
		log.Warn().Err(err).Str("query", trimmed).Msg("Species suggest lookup failed")
		return []models.Suggestion{}
	}

	suggestions := make([]models.Suggestion, 0, maxSuggestions)
	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		name := displayName(r)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		scientific := r.ScientificName
		if strings.EqualFold(scientific, name) {
			scientific = ""
		}
		suggestions = append(suggestions, models.Suggestion{Name: name, ScientificName: scientific})
		if len(suggestions) == maxSuggestions {
			break
		}
	}
	return suggestions
}

// displayName prefers the vernacular name, then the canonical, then the full
// scientific name.
func displayName(r taxonRecord) string {
	if r.VernacularName != "" {
		return r.VernacularName
	}
	if r.CanonicalName != "" {
		return r.CanonicalName
	}
	return r.ScientificName
}

func (c *Client) fetch(ctx context.Context, query string) ([]taxonRecord, error) {
	u := fmt.Sprintf("%s/v1/species/suggest?q=%s&limit=%d", c.baseURL, url.QueryEscape(query), upstreamLimit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call species service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("species service returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var records []taxonRecord
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	return records, nil
}
