package models

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type PlantSuite struct {
	suite.Suite
}

func TestPlantSuite(t *testing.T) {
	suite.Run(t, new(PlantSuite))
}

func (s *PlantSuite) TestSlugify() {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "simple", input: "Pothos", expected: "pothos"},
		{name: "two words", input: "Snake Plant", expected: "snake-plant"},
		{name: "mixed punctuation", input: "Devil's Ivy!", expected: "devil-s-ivy"},
		{name: "surrounding whitespace", input: "  Aloe  Vera  ", expected: "aloe-vera"},
		{name: "unicode stripped", input: "Ficus 🌿 lyrata", expected: "ficus-lyrata"},
		{name: "digits kept", input: "Plant 42", expected: "plant-42"},
		{name: "nothing usable", input: "???", expected: ""},
		{name: "empty", input: "", expected: ""},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.Equal(tt.expected, Slugify(tt.input))
		})
	}
}

func (s *PlantSuite) TestSanitized() {
	tests := []struct {
		name         string
		image        string
		wantFallback bool
	}{
		{name: "data uri replaced", image: "data:image/png;base64,AAAA", wantFallback: true},
		{name: "network url kept", image: "https://example.com/p.jpg", wantFallback: false},
		{name: "empty kept", image: "", wantFallback: false},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			rec := PlantRecord{CommonName: "Pothos", Image: tt.image}
			got := rec.Sanitized()
			if tt.wantFallback {
				s.Equal(FallbackImageURL("Pothos"), got.Image)
				s.False(got.HasInlineImage())
			} else {
				s.Equal(tt.image, got.Image)
			}
			// Original is untouched
			s.Equal(tt.image, rec.Image)
		})
	}
}

func (s *PlantSuite) TestFallbackImageURL_EncodesName() {
	url := FallbackImageURL("Peace Lily")
	s.Contains(url, "Peace+Lily+plant")
	s.Contains(url, "images.unsplash.com")
}

func (s *PlantSuite) TestClampConfidence() {
	tests := []struct {
		name     string
		input    float64
		expected float64
	}{
		{name: "below range", input: -0.3, expected: 0},
		{name: "zero", input: 0, expected: 0},
		{name: "in range", input: 0.87, expected: 0.87},
		{name: "one", input: 1, expected: 1},
		{name: "above range", input: 97.0, expected: 1},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.Equal(tt.expected, ClampConfidence(tt.input))
		})
	}
}
