package identify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/suite"

	"github.com/plantae/plantae/internal/cache"
)

const validPlantJSON = `{
	"id": "pothos",
	"commonName": "Pothos",
	"scientificName": "Epipremnum aureum",
	"family": "Araceae",
	"confidence": 0.97,
	"description": "Nearly indestructible trailing vine.",
	"care": {"water": "Every 1-2 weeks", "light": "Low to bright indirect", "temperature": "15-30C", "soil": "Any well-draining soil"},
	"toxicity": "Toxic to cats & dogs",
	"image": "",
	"tags": ["trailing", "indoor"]
}`

// memoryKV backs the cache in tests.
type memoryKV struct {
	values map[string]string
}

func (m *memoryKV) GetValue(_ context.Context, key string) (string, bool, error) {
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memoryKV) SetValue(_ context.Context, key, value string) error {
	m.values[key] = value
	return nil
}

func (m *memoryKV) DeleteValue(_ context.Context, key string) error {
	delete(m.values, key)
	return nil
}

// modelText wraps text in the wire shape the model endpoint returns.
func modelText(text string) string {
	quoted, _ := json.Marshal(text)
	return `{"candidates":[{"content":{"parts":[{"text":` + string(quoted) + `}]}}]}`
}

type ClientSuite struct {
	suite.Suite
	requests atomic.Int64
	lastBody generateRequest
	respond  func(w http.ResponseWriter)
	server   *httptest.Server
	client   *Client
	kv       *memoryKV
}

func (s *ClientSuite) SetupTest() {
	s.requests.Store(0)
	s.respond = func(w http.ResponseWriter) {
		w.Write([]byte(modelText(validPlantJSON)))
	}

	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.requests.Add(1)
		s.lastBody = generateRequest{}
		_ = json.NewDecoder(r.Body).Decode(&s.lastBody)
		s.respond(w)
	}))
	s.T().Cleanup(s.server.Close)

	s.kv = &memoryKV{values: make(map[string]string)}
	s.client = NewClient(Config{
		APIKey:  "test-key",
		Model:   "gemini-2.0-flash",
		BaseURL: s.server.URL,
		Cache:   cache.New(s.kv, 24*time.Hour),
	})
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientSuite))
}

func (s *ClientSuite) TestNoAPIKey_NoNetworkCall() {
	client := NewClient(Config{BaseURL: s.server.URL, Model: "gemini-2.0-flash"})
	ctx := context.Background()

	_, err := client.IdentifyImage(ctx, "AAAA")
	s.Equal(KindAPIKeyMissing, KindOf(err))

	_, err = client.DetailsByName(ctx, "Pothos")
	s.Equal(KindAPIKeyMissing, KindOf(err))

	s.Equal(int64(0), s.requests.Load())
}

func (s *ClientSuite) TestIdentifyImage_ParsesWrappedJSON() {
	wrapped := "Sure! Here is the identification you asked for:\n```json\n" + validPlantJSON + "\n```\nLet me know if you need anything else."
	s.respond = func(w http.ResponseWriter) {
		w.Write([]byte(modelText(wrapped)))
	}

	record, err := s.client.IdentifyImage(context.Background(), "AAAA")
	s.Require().NoError(err)
	s.Equal("Pothos", record.CommonName)
	s.Equal("pothos", record.ID)
	s.Equal("Every 1-2 weeks", record.Care.Water)
	s.Equal([]string{"trailing", "indoor"}, record.Tags)
}

func (s *ClientSuite) TestIdentifyImage_SlugFallbackWhenIDMissing() {
	noID := `{"commonName":"Peace Lily","scientificName":"Spathiphyllum wallisii","family":"Araceae","confidence":0.9,"description":"d","care":{"water":"w","light":"l","temperature":"t","soil":"s"},"toxicity":"x","image":""}`
	s.respond = func(w http.ResponseWriter) {
		w.Write([]byte(modelText(noID)))
	}

	record, err := s.client.IdentifyImage(context.Background(), "AAAA")
	s.Require().NoError(err)
	s.Equal("peace-lily", record.ID)
}

func (s *ClientSuite) TestIdentifyImage_NoPlantSentinel() {
	tests := []struct {
		name string
		text string
	}{
		{name: "bare sentinel", text: "null"},
		{name: "sentinel in prose", text: "I looked carefully but the answer is NULL here."},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.respond = func(w http.ResponseWriter) {
				w.Write([]byte(modelText(tt.text)))
			}

			_, err := s.client.IdentifyImage(context.Background(), "AAAA")
			s.Equal(KindNoPlantDetected, KindOf(err))
		})
	}
}

func (s *ClientSuite) TestIdentifyImage_QuotaClassification() {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "http 429", status: http.StatusTooManyRequests, body: `{"error":{"code":429,"message":"Too many requests","status":"RESOURCE_EXHAUSTED"}}`},
		{name: "quota in message", status: http.StatusServiceUnavailable, body: `{"error":{"code":503,"message":"Quota exceeded for requests","status":"UNAVAILABLE"}}`},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.respond = func(w http.ResponseWriter) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}

			_, err := s.client.IdentifyImage(context.Background(), "AAAA")
			s.Equal(KindQuotaExceeded, KindOf(err))
		})
	}
}

func (s *ClientSuite) TestIdentifyImage_TechnicalFailures() {
	tests := []struct {
		name string
		text string
	}{
		{name: "no JSON at all", text: "I could not produce the structure you wanted, sorry."},
		{name: "broken JSON", text: `{"commonName": "Pothos", "confidence": }`},
		{name: "missing required field", text: `{"commonName":"Pothos","confidence":0.9}`},
		{name: "missing care sub-field", text: `{"commonName":"Pothos","scientificName":"E. aureum","family":"Araceae","confidence":0.9,"description":"d","care":{"water":"w"},"toxicity":"x"}`},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.respond = func(w http.ResponseWriter) {
				w.Write([]byte(modelText(tt.text)))
			}

			_, err := s.client.IdentifyImage(context.Background(), "AAAA")
			s.Equal(KindTechnicalError, KindOf(err))
		})
	}
}

func (s *ClientSuite) TestIdentifyImage_MimeInference() {
	tests := []struct {
		name     string
		image    string
		wantMime string
		wantData string
	}{
		{name: "png data uri", image: "data:image/png;base64,XYZA", wantMime: "image/png", wantData: "XYZA"},
		{name: "webp data uri", image: "data:image/webp;base64,QQQQ", wantMime: "image/webp", wantData: "QQQQ"},
		{name: "bare base64 defaults to jpeg", image: "RAWBYTES", wantMime: "image/jpeg", wantData: "RAWBYTES"},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.client.IdentifyImage(context.Background(), tt.image)
			s.Require().NoError(err)

			s.Require().Len(s.lastBody.Contents, 1)
			parts := s.lastBody.Contents[0].Parts
			s.Require().NotEmpty(parts)
			s.Require().NotNil(parts[0].InlineData)
			s.Equal(tt.wantMime, parts[0].InlineData.MimeType)
			s.Equal(tt.wantData, parts[0].InlineData.Data)
		})
	}
}

func (s *ClientSuite) TestDetailsByName_CachesResult() {
	ctx := context.Background()

	first, err := s.client.DetailsByName(ctx, "Pothos")
	s.Require().NoError(err)
	s.Equal(int64(1), s.requests.Load())

	// Second lookup (any casing) is served from the cache.
	second, err := s.client.DetailsByName(ctx, " POTHOS ")
	s.Require().NoError(err)
	s.Equal(int64(1), s.requests.Load())
	s.Equal(first, second)
}

func (s *ClientSuite) TestDetailsByName_FailureNotCached() {
	ctx := context.Background()

	s.respond = func(w http.ResponseWriter) {
		w.Write([]byte(modelText("no structure today")))
	}
	_, err := s.client.DetailsByName(ctx, "Pothos")
	s.Equal(KindTechnicalError, KindOf(err))

	// Next call goes back upstream and succeeds.
	s.respond = func(w http.ResponseWriter) {
		w.Write([]byte(modelText(validPlantJSON)))
	}
	record, err := s.client.DetailsByName(ctx, "Pothos")
	s.Require().NoError(err)
	s.Equal("Pothos", record.CommonName)
	s.Equal(int64(2), s.requests.Load())
}

func (s *ClientSuite) TestDetailsByName_SendsTextOnlyPrompt() {
	_, err := s.client.DetailsByName(context.Background(), "Monstera")
	s.Require().NoError(err)

	s.Require().Len(s.lastBody.Contents, 1)
	parts := s.lastBody.Contents[0].Parts
	s.Require().Len(parts, 1)
	s.Nil(parts[0].InlineData)
	s.Contains(parts[0].Text, "Monstera")
}

func (s *ClientSuite) TestKindOf_UnknownError() {
	s.Equal(KindTechnicalError, KindOf(context.Canceled))
}
