// ABOUTME: Embedded vector index for tour similarity search and the
// ABOUTME: training-phrase fallback, built on chromem-go.

package vector

import (
	"context"
	"fmt"
	"hash/fnv"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	chromem "github.com/philippgille/chromem-go"

	"github.com/roamly/roam-gateway/internal/intent"
	"github.com/roamly/roam-gateway/internal/session"
)

const (
	toursCollection   = "tours"
	phrasesCollection = "training_phrases"
)

// Tour is an indexed tour document.
type Tour struct {
	ID          string `yaml:"id"`
	Title       string `yaml:"title"`
	City        string `yaml:"city"`
	Price       string `yaml:"price"`
	Duration    string `yaml:"duration"`
	Description string `yaml:"description"`
}

// TourMatch is one semantic-search hit against the tour collection.
type TourMatch struct {
	Tour  Tour
	Score float32
}

// Index wraps chromem-go with the two collections the assistant needs.
// Queries embed their input behind the scenes via the configured embedding
// function, so callers only ever hand over text.
type Index struct {
	mu      sync.RWMutex
	db      *chromem.DB
	embedFn chromem.EmbeddingFunc
	logger  *slog.Logger
}

// IndexConfig configures the index. Leave DataDir empty for an in-memory
// index (tests); EmbedFunc is required.
type IndexConfig struct {
	DataDir   string
	EmbedFunc chromem.EmbeddingFunc
	Logger    *slog.Logger
}

// NewIndex creates (or reopens) the vector index.
func NewIndex(cfg IndexConfig) (*Index, error) {
	if cfg.EmbedFunc == nil {
		return nil, fmt.Errorf("embedding function is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var db *chromem.DB
	if cfg.DataDir == "" {
		db = chromem.NewDB()
	} else {
		dir := filepath.Join(cfg.DataDir, "vectorindex")
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("creating vector index dir: %w", err)
		}
		var err error
		db, err = chromem.NewPersistentDB(dir, false)
		if err != nil {
			return nil, fmt.Errorf("opening vector index: %w", err)
		}
	}

	return &Index{
		db:      db,
		embedFn: cfg.EmbedFunc,
		logger:  logger.With("component", "vector"),
	}, nil
}

// OpenAICompatEmbedding returns an embedding function for an OpenAI-style
// embeddings endpoint (OpenRouter, Ollama, etc.).
func OpenAICompatEmbedding(baseURL, apiKey, model string) chromem.EmbeddingFunc {
	return chromem.NewEmbeddingFuncOpenAICompat(baseURL, apiKey, model, nil)
}

func (ix *Index) collection(name string) (*chromem.Collection, error) {
	col := ix.db.GetCollection(name, ix.embedFn)
	if col != nil {
		return col, nil
	}
	col, err := ix.db.CreateCollection(name, nil, ix.embedFn)
	if err != nil {
		return nil, fmt.Errorf("creating collection %s: %w", name, err)
	}
	return col, nil
}

// AddTour indexes (or re-indexes) a tour. The embedded content packs title,
// city, and description so both "wine tours" and "Porto" queries land.
func (ix *Index) AddTour(ctx context.Context, tour Tour) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	col, err := ix.collection(toursCollection)
	if err != nil {
		return err
	}

	doc := chromem.Document{
		ID:      tour.ID,
		Content: fmt.Sprintf("%s. %s. %s", tour.Title, tour.City, tour.Description),
		Metadata: map[string]string{
			"title":    tour.Title,
			"city":     tour.City,
			"price":    tour.Price,
			"duration": tour.Duration,
			"summary":  tour.Description,
		},
	}
	return col.AddDocument(ctx, doc)
}

// AddTrainingPhrase indexes one example utterance with its associated city.
func (ix *Index) AddTrainingPhrase(ctx context.Context, phrase, city string) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	col, err := ix.collection(phrasesCollection)
	if err != nil {
		return err
	}

	doc := chromem.Document{
		ID:       fmt.Sprintf("phrase-%x", fnv64(phrase)),
		Content:  phrase,
		Metadata: map[string]string{"city": city},
	}
	return col.AddDocument(ctx, doc)
}

// SearchTours returns up to limit tours similar to the query, dropping hits
// scoring below minScore. Ordered best first.
func (ix *Index) SearchTours(ctx context.Context, query string, limit int, minScore float32) ([]TourMatch, error) {
	results, err := ix.query(ctx, toursCollection, query, limit)
	if err != nil {
		return nil, err
	}

	matches := make([]TourMatch, 0, len(results))
	for _, r := range results {
		if r.Similarity < minScore {
			continue
		}
		matches = append(matches, TourMatch{
			Tour: Tour{
				ID:          r.ID,
				Title:       r.Metadata["title"],
				City:        r.Metadata["city"],
				Price:       r.Metadata["price"],
				Duration:    r.Metadata["duration"],
				Description: r.Metadata["summary"],
			},
			Score: r.Similarity,
		})
	}
	return matches, nil
}

// SearchTrainingPhrases implements intent.PhraseSearcher.
func (ix *Index) SearchTrainingPhrases(ctx context.Context, utterance string, limit int) ([]intent.PhraseMatch, error) {
	results, err := ix.query(ctx, phrasesCollection, utterance, limit)
	if err != nil {
		return nil, err
	}

	matches := make([]intent.PhraseMatch, 0, len(results))
	for _, r := range results {
		matches = append(matches, intent.PhraseMatch{
			Phrase: r.Content,
			City:   r.Metadata["city"],
			Score:  r.Similarity,
		})
	}
	return matches, nil
}

// query runs a similarity search against one collection, clamping the result
// count to the collection size (chromem rejects k > document count).
func (ix *Index) query(ctx context.Context, name, text string, limit int) ([]chromem.Result, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	col := ix.db.GetCollection(name, ix.embedFn)
	if col == nil {
		return nil, nil
	}
	count := col.Count()
	if count == 0 {
		return nil, nil
	}
	if limit > count {
		limit = count
	}
	if limit <= 0 {
		limit = 1
	}

	results, err := col.Query(ctx, text, limit, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", name, err)
	}
	return results, nil
}

// ToSessionResults converts matches to the session's result-list shape.
func ToSessionResults(matches []TourMatch) []session.TourResult {
	out := make([]session.TourResult, 0, len(matches))
	for _, m := range matches {
		out = append(out, session.TourResult{
			ID:       m.Tour.ID,
			Title:    m.Tour.Title,
			City:     m.Tour.City,
			Price:    m.Tour.Price,
			Duration: m.Tour.Duration,
			Summary:  m.Tour.Description,
			Score:    m.Score,
		})
	}
	return out
}

// fnv64 gives phrases stable document IDs so re-seeding upserts in place.
func fnv64(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}
