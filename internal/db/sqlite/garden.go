package sqlite

import (
	"context"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"github.com/plantae/plantae/pkg/models"
)

const gardenKey = "plantae_garden"

// GardenStore owns the saved-plants collection: insertion order, no cap,
// idempotent add by record ID. Same failure semantics as HistoryStore.
type GardenStore struct {
	store *Store
}

// NewGardenStore creates a garden store.
func NewGardenStore(store *Store) *GardenStore {
	return &GardenStore{store: store}
}

// Get returns the persisted garden. Absent or corrupt storage yields an
// empty snapshot, never an error.
func (s *GardenStore) Get(ctx context.Context) []models.PlantRecord {
	raw, ok, err := s.store.GetValue(ctx, gardenKey)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to read garden, returning empty")
		return []models.PlantRecord{}
	}
	if !ok {
		return []models.PlantRecord{}
	}

	var records []models.PlantRecord
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		log.Warn().Err(err).Msg("Corrupt garden payload, returning empty")
		return []models.PlantRecord{}
	}
	return records
}

// Add sanitizes and prepends the record. Adding an ID that is already saved
// is a no-op: the existing entry keeps its position. Returns the updated
// snapshot, or the pre-mutation snapshot if the write fails.
func (s *GardenStore) Add(ctx context.Context, record models.PlantRecord) []models.PlantRecord {
	current := s.Get(ctx)

	sanitized := record.Sanitized()
	for _, r := range current {
		if r.ID == sanitized.ID {
			return current
		}
	}

	updated := make([]models.PlantRecord, 0, len(current)+1)
	updated = append(updated, sanitized)
	updated = append(updated, current...)

	if err := s.persist(ctx, updated); err != nil {
		log.Warn().Err(err).Str("plantId", record.ID).Msg("Failed to persist garden entry")
		return current
	}
	return updated
}

// Remove filters out the entry with the given ID. An absent ID is a no-op.
func (s *GardenStore) Remove(ctx context.Context, id string) []models.PlantRecord {
	current := s.Get(ctx)

	updated := make([]models.PlantRecord, 0, len(current))
	for _, r := range current {
		if r.ID != id {
			updated = append(updated, r)
		}
	}

	if err := s.persist(ctx, updated); err != nil {
		log.Warn().Err(err).Str("plantId", id).Msg("Failed to persist garden removal")
		return current
	}
	return updated
}

// Clear deletes the garden and returns the empty snapshot.
func (s *GardenStore) Clear(ctx context.Context) []models.PlantRecord {
	if err := s.store.DeleteValue(ctx, gardenKey); err != nil {
		log.Warn().Err(err).Msg("Failed to clear garden")
	}
	return []models.PlantRecord{}
}

func (s *GardenStore) persist(ctx context.Context, records []models.PlantRecord) error {
	payload, err := json.Marshal(records)
	if err != nil {
		return err
	}
	return s.store.SetValue(ctx, gardenKey, string(payload))
}
