package sqlite

import (
	"context"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"github.com/plantae/plantae/pkg/models"
)

// MaxHistoryEntries is the hard cap on persisted scan history.
const MaxHistoryEntries = 50

const historyKey = "plantae_history"

// HistoryStore owns the scan history collection: most-recent-first, deduped
// by record ID, capped at MaxHistoryEntries. Storage failures are absorbed —
// reads degrade to an empty snapshot, writes to the prior snapshot.
type HistoryStore struct {
	store *Store
	now   func() time.Time
}

// NewHistoryStore creates a history store.
func NewHistoryStore(store *Store) *HistoryStore {
	return &HistoryStore{store: store, now: time.Now}
}

// Get returns the persisted history, most recent first. Absent or corrupt
// storage yields an empty snapshot, never an error.
func (s *HistoryStore) Get(ctx context.Context) []models.HistoryEntry {
	raw, ok, err := s.store.GetValue(ctx, historyKey)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to read history, returning empty")
		return []models.HistoryEntry{}
	}
	if !ok {
		return []models.HistoryEntry{}
	}

	var entries []models.HistoryEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		log.Warn().Err(err).Msg("Corrupt history payload, returning empty")
		return []models.HistoryEntry{}
	}
	return entries
}

// Add sanitizes the record's image, moves any existing entry with the same ID
// to the front with a fresh timestamp, trims to the cap, and persists.
// Returns the updated snapshot, or the pre-mutation snapshot if the write
// fails.
func (s *HistoryStore) Add(ctx context.Context, record models.PlantRecord) []models.HistoryEntry {
	current := s.Get(ctx)

	entry := models.HistoryEntry{
		PlantRecord: record.Sanitized(),
		Timestamp:   s.now().UnixMilli(),
	}

	updated := make([]models.HistoryEntry, 0, len(current)+1)
	updated = append(updated, entry)
	for _, e := range current {
		if e.ID != record.ID {
			updated = append(updated, e)
		}
	}
	if len(updated) > MaxHistoryEntries {
		updated = updated[:MaxHistoryEntries]
	}

	if err := s.persist(ctx, updated); err != nil {
		log.Warn().Err(err).Str("plantId", record.ID).Msg("Failed to persist history entry")
		return current
	}
	return updated
}

// Clear deletes all history and returns the empty snapshot.
func (s *HistoryStore) Clear(ctx context.Context) []models.HistoryEntry {
	if err := s.store.DeleteValue(ctx, historyKey); err != nil {
		log.Warn().Err(err).Msg("Failed to clear history")
	}
	return []models.HistoryEntry{}
}

func (s *HistoryStore) persist(ctx context.Context, entries []models.HistoryEntry) error {
	payload, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return s.store.SetValue(ctx, historyKey, string(payload))
}
