// Package models contains domain models for plantae.
package models

import (
	"net/url"
	"strings"
)

// CareInfo holds the four care fields every identification result carries.
// All values are short free-text phrases produced by the model.
type CareInfo struct {
	Water       string `json:"water"`
	Light       string `json:"light"`
	Temperature string `json:"temperature"`
	Soil        string `json:"soil"`
}

// PlantRecord is the canonical identification result.
// The ID is a name-derived slug and is not guaranteed globally unique across
// independent lookups. Confidence is model-reported and may fall outside
// [0, 1]; callers clamp for display.
type PlantRecord struct {
	ID             string   `json:"id"`
	CommonName     string   `json:"commonName"`
	ScientificName string   `json:"scientificName"`
	Family         string   `json:"family"`
	Confidence     float64  `json:"confidence"`
	Description    string   `json:"description"`
	Care           CareInfo `json:"care"`
	Toxicity       string   `json:"toxicity"`
	Image          string   `json:"image"`
	Tags           []string `json:"tags,omitempty"`
}

// HistoryEntry is a PlantRecord plus the capture time in epoch milliseconds.
type HistoryEntry struct {
	PlantRecord
	Timestamp int64 `json:"timestamp"`
}

// Suggestion is a single species autocomplete result.
type Suggestion struct {
	Name           string `json:"name"`
	ScientificName string `json:"scientificName"`
}

// Slugify derives a URL-safe identifier from a plant name: lowercased,
// non-alphanumeric runs collapsed to single hyphens. Returns "" for names
// with no usable characters.
func Slugify(name string) string {
	var b strings.Builder
	lastHyphen := true // suppress leading hyphen
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// HasInlineImage reports whether the record's image is an inline data URI
// rather than a network URL.
func (p PlantRecord) HasInlineImage() bool {
	return strings.HasPrefix(p.Image, "data:")
}

// FallbackImageURL builds a deterministic stock-photo URL from a common name.
// Used when a captured image is too large to persist inline.
func FallbackImageURL(commonName string) string {
	query := url.QueryEscape(commonName + " plant")
	return "https://images.unsplash.com/search/photos/" + query + "?auto=format&fit=crop&q=80&w=400"
}

// Sanitized returns a copy safe for persistence: an inline data-URI image is
// replaced with a fallback URL built from the common name so stored entries
// stay small. Records with network URLs (or no image) pass through unchanged.
func (p PlantRecord) Sanitized() PlantRecord {
	if p.HasInlineImage() {
		p.Image = FallbackImageURL(p.CommonName)
	}
	return p
}

// ClampConfidence bounds a model-reported confidence into [0, 1] for display.
func ClampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}
