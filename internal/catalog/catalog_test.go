package catalog_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/retroverse-studios/reality-reigns/internal/catalog"
	"github.com/retroverse-studios/reality-reigns/internal/config"
	"github.com/retroverse-studios/reality-reigns/internal/deck"
	"github.com/retroverse-studios/reality-reigns/internal/reality"
)

type CatalogTestSuite struct {
	suite.Suite
	mux    *http.ServeMux
	server *httptest.Server
	client catalog.Client
	ctx    context.Context
}

func TestCatalogSuite(t *testing.T) {
	suite.Run(t, new(CatalogTestSuite))
}

func (s *CatalogTestSuite) SetupTest() {
	s.mux = http.NewServeMux()
	s.server = httptest.NewServer(s.mux)
	s.client = catalog.NewClient(config.CatalogConfig{
		BaseURL: s.server.URL + "/api/v1/",
		Timeout: config.Duration{Duration: 5 * time.Second},
	}, nil)
	s.ctx = context.Background()
}

func (s *CatalogTestSuite) TearDownTest() {
	s.server.Close()
}

func (s *CatalogTestSuite) TestListRealities() {
	s.mux.HandleFunc("/api/v1/realities", func(w http.ResponseWriter, r *http.Request) {
		s.Equal(http.MethodGet, r.Method)
		_, _ = io.WriteString(w, `[
		  {"id": "deep-sea", "name": "Deep Sea Station", "description": "Pressure is rising.",
		   "systemInstruction": "Write about the abyss.",
		   "statNames": {"Power": "Hull", "Wealth": "Oxygen", "People": "Crew", "Knowledge": "Sonar"},
		   "imageSet": ["a.png"], "deckUrl": "https://decks.example/deep-sea.json"}
		]`)
	})

	realities, err := s.client.ListRealities(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(realities, 1)

	r := realities[0]
	s.Equal("deep-sea", r.ID)
	s.Equal("Oxygen", r.StatNames.Wealth)
	s.Equal([]string{"a.png"}, r.ImageSet)
	s.Equal("https://decks.example/deep-sea.json", r.DeckURL)
}

func (s *CatalogTestSuite) TestListDecksSkipsInvalidEntries() {
	s.mux.HandleFunc("/api/v1/decks", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[
		  {"name": "Good", "description": "ok", "cards": [{"prompt": "p", "leftChoice": {"text": "a"}, "rightChoice": {"text": "b"}}]},
		  {"name": "Empty", "cards": []},
		  {"name": "No cards"}
		]`)
	})

	decks, err := s.client.ListDecks(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(decks, 1)
	s.Equal("Good", decks[0].Name)
}

func (s *CatalogTestSuite) TestSubmitReality() {
	var received map[string]interface{}
	s.mux.HandleFunc("/api/v1/realities", func(w http.ResponseWriter, r *http.Request) {
		s.Equal(http.MethodPost, r.Method)
		s.Equal("application/json", r.Header.Get("Content-Type"))
		s.NoError(json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"message": "Queued for review."}`)
	})

	r := reality.Builtin()[0]
	r.DeckFile = "/home/me/secret.json"

	msg, err := s.client.SubmitReality(s.ctx, r)
	s.Require().NoError(err)
	s.Equal("Queued for review.", msg)
	s.Equal("cyberpunk", received["id"])
	s.Contains(received, "statNames")
	s.NotContains(received, "DeckFile", "local paths are never sent")
	s.NotContains(received, "deckFile")
}

func (s *CatalogTestSuite) TestSubmitRealityDefaultMessage() {
	s.mux.HandleFunc("/api/v1/realities", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	msg, err := s.client.SubmitReality(s.ctx, &reality.Reality{ID: "x", Name: "Xanadu", Description: "d"})
	s.Require().NoError(err)
	s.Contains(msg, `"Xanadu" was successfully submitted`)
}

func (s *CatalogTestSuite) TestSubmitRealityRequiresFields() {
	_, err := s.client.SubmitReality(s.ctx, &reality.Reality{Name: "No ID"})
	s.Error(err)
}

func (s *CatalogTestSuite) TestFetchDeck() {
	s.mux.HandleFunc("/decks/legacy.json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[{"prompt": "p", "leftChoice": {"text": "a"}, "rightChoice": {"text": "b"}}]`)
	})
	s.mux.HandleFunc("/decks/empty.json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"cards": []}`)
	})

	d, err := s.client.FetchDeck(s.ctx, s.server.URL+"/decks/legacy.json")
	s.Require().NoError(err)
	s.Equal(1, d.Len())

	_, err = s.client.FetchDeck(s.ctx, s.server.URL+"/decks/empty.json")
	s.ErrorIs(err, deck.ErrEmptyDeck)

	_, err = s.client.FetchDeck(s.ctx, s.server.URL+"/decks/missing.json")
	s.ErrorIs(err, catalog.ErrUnavailable)
	s.Contains(err.Error(), "HTTP error! status: 404")
}

func (s *CatalogTestSuite) TestErrors() {
	s.mux.HandleFunc("/api/v1/realities", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"not": "a list"}`)
	})
	s.mux.HandleFunc("/api/v1/decks", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := s.client.ListRealities(s.ctx)
	s.ErrorIs(err, catalog.ErrUnavailable)

	_, err = s.client.ListDecks(s.ctx)
	s.ErrorIs(err, catalog.ErrUnavailable)

	closed := httptest.NewServer(http.NotFoundHandler())
	closed.Close()
	unreachable := catalog.NewClient(config.CatalogConfig{BaseURL: closed.URL}, nil)
	_, err = unreachable.ListDecks(s.ctx)
	s.ErrorIs(err, catalog.ErrUnavailable)
}

func (s *CatalogTestSuite) TestContextCancellation() {
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()

	_, err := s.client.ListRealities(ctx)
	s.ErrorIs(err, catalog.ErrUnavailable)
}
