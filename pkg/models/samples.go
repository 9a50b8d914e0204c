package models

// SamplePlants is a small curated set of well-known houseplants. The dashboard
// uses it to populate an empty first-run screen, and tests use it as fixtures.
var SamplePlants = []PlantRecord{
	{
		ID:             "monstera-deliciosa",
		CommonName:     "Monstera Deliciosa",
		ScientificName: "Monstera deliciosa",
		Family:         "Araceae",
		Confidence:     0.98,
		Description:    "The Swiss Cheese Plant is native to tropical forests of southern Mexico. Famous for its large, glossy leaves with natural holes called fenestrations.",
		Care:           CareInfo{Water: "Every 1-2 weeks", Light: "Bright indirect sunlight", Temperature: "18°C – 30°C", Soil: "Well-draining, peat-based"},
		Toxicity:       "Toxic to cats & dogs",
		Image:          "https://images.unsplash.com/photo-1614594975525-e45190c55d0b?auto=format&fit=crop&q=80&w=800",
		Tags:           []string{"tropical", "indoor", "popular"},
	},
	{
		ID:             "snake-plant",
		CommonName:     "Snake Plant",
		ScientificName: "Dracaena trifasciata",
		Family:         "Asparagaceae",
		Confidence:     0.95,
		Description:    "One of the most tolerant houseplants, the Snake Plant thrives in neglect. Native to West Africa, it is an excellent air purifier.",
		Care:           CareInfo{Water: "Every 2-8 weeks", Light: "Low to bright indirect", Temperature: "15°C – 27°C", Soil: "Well-draining cactus mix"},
		Toxicity:       "Mildly toxic if ingested",
		Image:          "https://images.unsplash.com/photo-1593482892290-f54927ae1b79?auto=format&fit=crop&q=80&w=800",
		Tags:           []string{"low-maintenance", "air-purifier", "indoor"},
	},
	{
		ID:             "pothos",
		CommonName:     "Pothos",
		ScientificName: "Epipremnum aureum",
		Family:         "Araceae",
		Confidence:     0.97,
		Description:    "Often called Devil's Ivy, Pothos is nearly indestructible. Its trailing vines look gorgeous in hanging baskets and it tolerates low light and irregular watering effortlessly.",
		Care:           CareInfo{Water: "Every 1-2 weeks", Light: "Low to bright indirect", Temperature: "15°C – 30°C", Soil: "Any well-draining soil"},
		Toxicity:       "Toxic to cats & dogs",
		Image:          "https://images.unsplash.com/photo-1572688484438-313a6a50be95?auto=format&fit=crop&q=80&w=800",
		Tags:           []string{"trailing", "beginner-friendly", "indoor"},
	},
	{
		ID:             "peace-lily",
		CommonName:     "Peace Lily",
		ScientificName: "Spathiphyllum wallisii",
		Family:         "Araceae",
		Confidence:     0.92,
		Description:    "Renowned for graceful white blooms and air-purifying ability. Peace Lilies thrive in low-light conditions, making them ideal for homes and offices.",
		Care:           CareInfo{Water: "Weekly, keep moist", Light: "Low to partial shade", Temperature: "18°C – 24°C", Soil: "Rich, moist soil"},
		Toxicity:       "Toxic to humans & pets",
		Image:          "https://images.unsplash.com/photo-1597055181300-e3633a207519?auto=format&fit=crop&q=80&w=800",
		Tags:           []string{"flowering", "air-purifier", "indoor"},
	},
	{
		ID:             "aloe-vera",
		CommonName:     "Aloe Vera",
		ScientificName: "Aloe barbadensis miller",
		Family:         "Asphodelaceae",
		Confidence:     0.99,
		Description:    "A succulent plant species widely grown as a houseplant. The gel from its leaves is used in cosmetics, first aid cream, and for soothing sunburns.",
		Care:           CareInfo{Water: "Every 3 weeks", Light: "Bright direct sunlight", Temperature: "13°C – 27°C", Soil: "Sandy, well-draining cactus mix"},
		Toxicity:       "Toxic to cats & dogs",
		Image:          "https://images.unsplash.com/photo-1596547609652-9cf5d8c10616?auto=format&fit=crop&q=80&w=800",
		Tags:           []string{"succulent", "medicinal", "outdoor"},
	},
}
