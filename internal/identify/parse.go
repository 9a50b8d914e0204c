package identify

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/rs/xid"

	"github.com/plantae/plantae/pkg/models"
)

// extractJSON pulls the first top-level {...} span out of free-form model
// output, tolerating surrounding prose and code fences.
func extractJSON(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

// rawRecord mirrors the requested schema with pointer fields so missing keys
// are distinguishable from empty values. Model output is untrusted; every
// required field is checked before a PlantRecord is built.
type rawRecord struct {
	ID             *string  `json:"id"`
	CommonName     *string  `json:"commonName"`
	ScientificName *string  `json:"scientificName"`
	Family         *string  `json:"family"`
	Confidence     *float64 `json:"confidence"`
	Description    *string  `json:"description"`
	Care           *rawCare `json:"care"`
	Toxicity       *string  `json:"toxicity"`
	Image          *string  `json:"image"`
	Tags           []string `json:"tags"`
}

type rawCare struct {
	Water       *string `json:"water"`
	Light       *string `json:"light"`
	Temperature *string `json:"temperature"`
	Soil        *string `json:"soil"`
}

// parsePlantRecord validates model output against the fixed schema. Any shape
// mismatch is an error; the caller downgrades it to KindTechnicalError.
func parsePlantRecord(text string) (*models.PlantRecord, error) {
	jsonStr, ok := extractJSON(text)
	if !ok {
		return nil, fmt.Errorf("no JSON object in model response")
	}

	var raw rawRecord
	if err := json.Unmarshal([]byte(jsonStr), &raw); err != nil {
		return nil, fmt.Errorf("unmarshal model response: %w", err)
	}

	required := []struct {
		field string
		value *string
	}{
		{"commonName", raw.CommonName},
		{"scientificName", raw.ScientificName},
		{"family", raw.Family},
		{"description", raw.Description},
		{"toxicity", raw.Toxicity},
	}
	for _, r := range required {
		if r.value == nil {
			return nil, fmt.Errorf("model response missing %q", r.field)
		}
	}
	if raw.Confidence == nil {
		return nil, fmt.Errorf("model response missing \"confidence\"")
	}
	if raw.Care == nil {
		return nil, fmt.Errorf("model response missing \"care\"")
	}
	care := []struct {
		field string
		value *string
	}{
		{"care.water", raw.Care.Water},
		{"care.light", raw.Care.Light},
		{"care.temperature", raw.Care.Temperature},
		{"care.soil", raw.Care.Soil},
	}
	for _, r := range care {
		if r.value == nil {
			return nil, fmt.Errorf("model response missing %q", r.field)
		}
	}

	record := &models.PlantRecord{
		CommonName:     *raw.CommonName,
		ScientificName: *raw.ScientificName,
		Family:         *raw.Family,
		Confidence:     *raw.Confidence,
		Description:    *raw.Description,
		Care: models.CareInfo{
			Water:       *raw.Care.Water,
			Light:       *raw.Care.Light,
			Temperature: *raw.Care.Temperature,
			Soil:        *raw.Care.Soil,
		},
		Toxicity: *raw.Toxicity,
		Tags:     raw.Tags,
	}
	if raw.Image != nil {
		record.Image = *raw.Image
	}

	// Prefer the model's slug, fall back to one derived from the common
	// name, and as a last resort mint an opaque ID.
	if raw.ID != nil && *raw.ID != "" {
		record.ID = *raw.ID
	} else if slug := models.Slugify(record.CommonName); slug != "" {
		record.ID = slug
	} else {
		record.ID = xid.New().String()
	}

	return record, nil
}
