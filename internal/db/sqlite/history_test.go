package sqlite

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/plantae/plantae/pkg/models"
)

type HistorySuite struct {
	suite.Suite
	store   *Store
	history *HistoryStore
	clock   time.Time
}

func (s *HistorySuite) SetupTest() {
	s.store = testStore(s.T())
	s.history = NewHistoryStore(s.store)

	// Deterministic, strictly increasing clock
	s.clock = time.UnixMilli(1_700_000_000_000)
	s.history.now = func() time.Time {
		s.clock = s.clock.Add(time.Second)
		return s.clock
	}
}

func TestHistorySuite(t *testing.T) {
	suite.Run(t, new(HistorySuite))
}

func (s *HistorySuite) TestGet_Empty() {
	entries := s.history.Get(context.Background())
	s.NotNil(entries)
	s.Empty(entries)
}

func (s *HistorySuite) TestGet_CorruptPayload() {
	ctx := context.Background()
	s.Require().NoError(s.store.SetValue(ctx, historyKey, "{definitely not json"))

	entries := s.history.Get(ctx)
	s.NotNil(entries)
	s.Empty(entries)
}

func (s *HistorySuite) TestAdd_MostRecentFirst() {
	ctx := context.Background()

	s.history.Add(ctx, models.PlantRecord{ID: "pothos", CommonName: "Pothos"})
	s.history.Add(ctx, models.PlantRecord{ID: "aloe-vera", CommonName: "Aloe Vera"})
	entries := s.history.Add(ctx, models.PlantRecord{ID: "snake-plant", CommonName: "Snake Plant"})

	s.Len(entries, 3)
	s.Equal("snake-plant", entries[0].ID)
	s.Equal("aloe-vera", entries[1].ID)
	s.Equal("pothos", entries[2].ID)
	s.Greater(entries[0].Timestamp, entries[1].Timestamp)
}

func (s *HistorySuite) TestAdd_DuplicateMovesToFront() {
	ctx := context.Background()

	s.history.Add(ctx, models.PlantRecord{ID: "pothos", CommonName: "Pothos"})
	first := s.history.Add(ctx, models.PlantRecord{ID: "aloe-vera", CommonName: "Aloe Vera"})
	oldTimestamp := first[1].Timestamp // pothos entry

	entries := s.history.Add(ctx, models.PlantRecord{ID: "pothos", CommonName: "Pothos"})

	s.Len(entries, 2)
	s.Equal("pothos", entries[0].ID)
	s.Equal("aloe-vera", entries[1].ID)
	s.Greater(entries[0].Timestamp, oldTimestamp)
}

func (s *HistorySuite) TestAdd_CapsAtFifty() {
	ctx := context.Background()

	var entries []models.HistoryEntry
	for i := 0; i < MaxHistoryEntries+10; i++ {
		entries = s.history.Add(ctx, models.PlantRecord{ID: fmt.Sprintf("plant-%d", i)})
	}

	s.Len(entries, MaxHistoryEntries)
	// Newest kept, oldest discarded
	s.Equal(fmt.Sprintf("plant-%d", MaxHistoryEntries+9), entries[0].ID)
	s.Equal("plant-10", entries[len(entries)-1].ID)

	// Persisted state matches the returned snapshot
	persisted := s.history.Get(ctx)
	s.Equal(entries, persisted)
}

func (s *HistorySuite) TestAdd_SanitizesInlineImage() {
	ctx := context.Background()

	entries := s.history.Add(ctx, models.PlantRecord{
		ID:         "pothos",
		CommonName: "Pothos",
		Image:      "data:image/jpeg;base64,AAAA",
	})

	s.Len(entries, 1)
	s.Equal(models.FallbackImageURL("Pothos"), entries[0].Image)

	persisted := s.history.Get(ctx)
	s.Equal(entries[0].Image, persisted[0].Image)
}

func (s *HistorySuite) TestAdd_AfterClose_ReturnsPriorSnapshot() {
	ctx := context.Background()
	s.store.Close()

	entries := s.history.Add(ctx, models.PlantRecord{ID: "pothos"})
	s.NotNil(entries)
	s.Empty(entries)
}

func (s *HistorySuite) TestClear() {
	ctx := context.Background()

	s.history.Add(ctx, models.PlantRecord{ID: "pothos"})
	cleared := s.history.Clear(ctx)

	s.Empty(cleared)
	s.Empty(s.history.Get(ctx))
}
