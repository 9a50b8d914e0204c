package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"github.com/plantae/plantae/internal/identify"
	"github.com/plantae/plantae/internal/server/sse"
	"github.com/plantae/plantae/pkg/models"
)

// errorBody is the JSON error envelope for all API failures.
type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// kindStatus maps identification failure kinds to HTTP statuses.
var kindStatus = map[identify.Kind]int{
	identify.KindAPIKeyMissing:   http.StatusServiceUnavailable,
	identify.KindQuotaExceeded:   http.StatusTooManyRequests,
	identify.KindNoPlantDetected: http.StatusUnprocessableEntity,
	identify.KindTechnicalError:  http.StatusBadGateway,
}

// kindMessage is the user-facing message per failure kind.
var kindMessage = map[identify.Kind]string{
	identify.KindAPIKeyMissing:   "No API key configured. Set GEMINI_API_KEY and restart.",
	identify.KindQuotaExceeded:   "API quota exceeded. Please try again later.",
	identify.KindNoPlantDetected: "No plant detected in the image. Try a clearer photo.",
	identify.KindTechnicalError:  "Something went wrong during identification. Please try again.",
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func writeIdentifyError(w http.ResponseWriter, err error) {
	kind := identify.KindOf(err)
	var body errorBody
	body.Error.Code = string(kind)
	body.Error.Message = kindMessage[kind]
	writeJSON(w, kindStatus[kind], body)
}

func writeBadRequest(w http.ResponseWriter, message string) {
	var body errorBody
	body.Error.Code = "BAD_REQUEST"
	body.Error.Message = message
	writeJSON(w, http.StatusBadRequest, body)
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"ready":   s.ready.Load(),
		"version": s.version,
		"uptime":  time.Since(s.startTime).Round(time.Second).String(),
		"clients": s.broadcaster.ClientCount(),
	})
}

type identifyRequest struct {
	Image string `json:"image"`
}

func (s *Service) handleIdentify(w http.ResponseWriter, r *http.Request) {
	var req identifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Image == "" {
		writeBadRequest(w, "image is required")
		return
	}

	record, err := s.identifier.IdentifyImage(r.Context(), req.Image)
	if err != nil {
		writeIdentifyError(w, err)
		return
	}

	// The scanned photo travels with the record so the UI can show it; the
	// history store swaps it for a hosted URL before persisting.
	record.Image = req.Image
	history := s.history.Add(r.Context(), *record)

	s.broadcaster.Publish(sse.Event{Type: sse.EventPlantIdentified, Payload: record.Sanitized()})
	s.broadcaster.Publish(sse.Event{Type: sse.EventHistoryChanged, Payload: len(history)})

	writeJSON(w, http.StatusOK, record)
}

// handlePlantCatalog serves the built-in browse catalog. It needs no
// credential, so the UI has content before any scan happens.
func (s *Service) handlePlantCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]models.PlantRecord{"plants": models.SamplePlants})
}

func (s *Service) handlePlantByName(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" {
		writeBadRequest(w, "plant name is required")
		return
	}

	record, err := s.identifier.DetailsByName(r.Context(), name)
	if err != nil {
		writeIdentifyError(w, err)
		return
	}

	history := s.history.Add(r.Context(), *record)
	s.broadcaster.Publish(sse.Event{Type: sse.EventHistoryChanged, Payload: len(history)})

	writeJSON(w, http.StatusOK, record)
}

func (s *Service) handleSuggest(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	suggestions := s.suggester.Suggest(r.Context(), query)
	writeJSON(w, http.StatusOK, map[string][]models.Suggestion{"suggestions": suggestions})
}

// handleSuggestLive schedules a debounced lookup: rapid queries supersede one
// another and only the last one's results are published on the event stream.
// The lookup outlives the request, so it runs on a detached context.
func (s *Service) handleSuggestLive(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	s.debouncer.Query(context.Background(), query, func(results []models.Suggestion) {
		s.broadcaster.Publish(sse.Event{Type: sse.EventSuggestions, Payload: results})
	})
	w.WriteHeader(http.StatusAccepted)
}

func (s *Service) handleHistoryList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]models.HistoryEntry{"history": s.history.Get(r.Context())})
}

func (s *Service) handleHistoryClear(w http.ResponseWriter, r *http.Request) {
	s.history.Clear(r.Context())
	s.broadcaster.Publish(sse.Event{Type: sse.EventHistoryChanged, Payload: 0})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) handleGardenList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]models.PlantRecord{"garden": s.garden.Get(r.Context())})
}

func (s *Service) handleGardenAdd(w http.ResponseWriter, r *http.Request) {
	var record models.PlantRecord
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if record.ID == "" || record.CommonName == "" {
		writeBadRequest(w, "id and commonName are required")
		return
	}

	garden := s.garden.Add(r.Context(), record)
	s.broadcaster.Publish(sse.Event{Type: sse.EventGardenChanged, Payload: len(garden)})

	writeJSON(w, http.StatusOK, map[string][]models.PlantRecord{"garden": garden})
}

func (s *Service) handleGardenRemove(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	garden := s.garden.Remove(r.Context(), id)
	s.broadcaster.Publish(sse.Event{Type: sse.EventGardenChanged, Payload: len(garden)})

	writeJSON(w, http.StatusOK, map[string][]models.PlantRecord{"garden": garden})
}

func (s *Service) handleGardenClear(w http.ResponseWriter, r *http.Request) {
	s.garden.Clear(r.Context())
	s.broadcaster.Publish(sse.Event{Type: sse.EventGardenChanged, Payload: 0})
	w.WriteHeader(http.StatusNoContent)
}
