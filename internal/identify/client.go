// Package identify wraps the external generative model behind two
// operations: identify a plant from an image and look one up by name. It
// normalizes the model's free-form output into a PlantRecord and classifies
// failures into a small taxonomy the presentation layer can act on.
package identify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/plantae/plantae/internal/cache"
	"github.com/plantae/plantae/pkg/models"
)

// plantSchema is the fixed output shape requested from the model.
const plantSchema = `Return ONLY a valid JSON object (no markdown, no code fences, no extra text) with this exact shape:
{
  "id": "unique-url-slug",
  "commonName": "string",
  "scientificName": "string",
  "family": "string",
  "confidence": 0.00,
  "description": "3-4 sentence rich, engaging description covering origin, notable traits, and why plant lovers adore it",
  "care": {
    "water": "short actionable phrase",
    "light": "short actionable phrase",
    "temperature": "°C range",
    "soil": "short phrase"
  },
  "toxicity": "short phrase",
  "image": "",
  "tags": ["tag1", "tag2", "tag3"]
}`

// noPlantSentinel is the literal the model is asked to return when the image
// contains no plant.
const noPlantSentinel = "null"

const defaultMimeType = "image/jpeg"

// Config holds identification client options.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	// HTTPClient defaults to http.DefaultClient.
	HTTPClient *http.Client
	// Cache, if set, backs name-based lookups. Image identification never
	// consults it: every photo is assumed distinct.
	Cache *cache.Cache
}

// Client calls the generative model. All methods return either a record or a
// *Error; no other error type escapes.
type Client struct {
	apiKey  string
	model   string
	baseURL string
	httpc   *http.Client
	cache   *cache.Cache
	group   singleflight.Group
}

// NewClient creates an identification client.
func NewClient(cfg Config) *Client {
	httpc := cfg.HTTPClient
	if httpc == nil {
		httpc = http.DefaultClient
	}
	return &Client{
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		httpc:   httpc,
		cache:   cfg.Cache,
	}
}

// IdentifyImage identifies a plant from an inline-encoded image, with or
// without a data-URI prefix. The mime type is inferred from the prefix and
// defaults to JPEG.
func (c *Client) IdentifyImage(ctx context.Context, imageData string) (*models.PlantRecord, error) {
	if c.apiKey == "" {
		return nil, &Error{Kind: KindAPIKeyMissing}
	}

	mimeType, data := splitDataURI(imageData)
	prompt := fmt.Sprintf("Identify this plant. Return JSON only. schema: %s. If no plant, return %q.", plantSchema, noPlantSentinel)

	text, err := c.generate(ctx, []part{
		{InlineData: &inlineData{MimeType: mimeType, Data: data}},
		{Text: prompt},
	})
	if err != nil {
		return nil, classify(err)
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == noPlantSentinel || strings.Contains(strings.ToLower(trimmed), noPlantSentinel) {
		return nil, &Error{Kind: KindNoPlantDetected}
	}

	record, err := parsePlantRecord(text)
	if err != nil {
		return nil, technical(err)
	}

	log.Debug().Str("plant", record.CommonName).Float64("confidence", record.Confidence).Msg("Identified plant from image")
	return record, nil
}

// DetailsByName returns botanical details for the named plant, serving from
// the response cache when possible and collapsing concurrent identical
// lookups into a single upstream call.
func (c *Client) DetailsByName(ctx context.Context, name string) (*models.PlantRecord, error) {
	if c.apiKey == "" {
		return nil, &Error{Kind: KindAPIKeyMissing}
	}

	if c.cache != nil {
		if record, ok := c.cache.Get(ctx, name); ok {
			return record, nil
		}
	}

	v, err, _ := c.group.Do(cache.Normalize(name), func() (interface{}, error) {
		prompt := fmt.Sprintf("Detailed botanical info for: %q. JSON only. schema: %s", name, plantSchema)

		text, err := c.generate(ctx, []part{{Text: prompt}})
		if err != nil {
			return nil, classify(err)
		}

		record, err := parsePlantRecord(text)
		if err != nil {
			return nil, technical(err)
		}

		if c.cache != nil {
			c.cache.Set(ctx, name, *record)
		}
		return record, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.PlantRecord), nil
}

// splitDataURI separates an optional data-URI prefix from the encoded bytes.
func splitDataURI(imageData string) (mimeType, data string) {
	mimeType = defaultMimeType
	data = imageData

	if !strings.HasPrefix(imageData, "data:") {
		return mimeType, data
	}
	parts := strings.SplitN(imageData, ";base64,", 2)
	if len(parts) != 2 {
		return mimeType, data
	}
	if mt := strings.TrimPrefix(parts[0], "data:"); mt != "" {
		mimeType = mt
	}
	return mimeType, parts[1]
}

// Wire types for the generateContent REST endpoint.

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// generate performs one generateContent call and returns the concatenated
// text of the first candidate.
func (c *Client) generate(ctx context.Context, parts []part) (string, error) {
	payload, err := json.Marshal(generateRequest{Contents: []content{{Parts: parts}}})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("call model: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		_ = json.Unmarshal(body, &apiErr)
		return "", fmt.Errorf("model returned status %d %s: %s", resp.StatusCode, apiErr.Error.Status, apiErr.Error.Message)
	}

	var gr generateResponse
	if err := json.Unmarshal(body, &gr); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if len(gr.Candidates) == 0 {
		return "", fmt.Errorf("model returned no candidates")
	}

	var sb strings.Builder
	for _, p := range gr.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String(), nil
}
