// ABOUTME: Gateway wires every component together and runs the HTTP server
// ABOUTME: Construction order: store, directory, sessions, index, llm, bot, chat

package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/roamly/roam-gateway/internal/auth"
	"github.com/roamly/roam-gateway/internal/bot"
	"github.com/roamly/roam-gateway/internal/chat"
	"github.com/roamly/roam-gateway/internal/config"
	"github.com/roamly/roam-gateway/internal/dedupe"
	"github.com/roamly/roam-gateway/internal/directory"
	"github.com/roamly/roam-gateway/internal/intent"
	"github.com/roamly/roam-gateway/internal/llm"
	"github.com/roamly/roam-gateway/internal/session"
	"github.com/roamly/roam-gateway/internal/store"
	"github.com/roamly/roam-gateway/internal/transport"
	"github.com/roamly/roam-gateway/internal/vector"
)

const (
	dedupeTTL     = 5 * time.Minute
	dedupeMaxSize = 10000

	shutdownTimeout = 10 * time.Second
)

// Gateway owns every long-lived component and the HTTP server that exposes
// them.
type Gateway struct {
	config     *config.Config
	store      *store.SQLiteStore
	directory  *directory.Directory
	sessions   *session.Store
	index      *vector.Index
	guard      *dedupe.Guard
	httpServer *http.Server
	logger     *slog.Logger
	startedAt  time.Time
}

// New builds a fully wired Gateway from configuration. Nothing listens until
// Run is called.
func New(cfg *config.Config, logger *slog.Logger) (*Gateway, error) {
	if logger == nil {
		logger = slog.Default()
	}

	sqlStore, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("opening message store: %w", err)
	}

	verifier, err := auth.NewJWTVerifier([]byte(cfg.Auth.JWTSecret))
	if err != nil {
		sqlStore.Close()
		return nil, fmt.Errorf("creating token verifier: %w", err)
	}

	index, err := vector.NewIndex(vector.IndexConfig{
		DataDir: cfg.Assistant.DataDir,
		EmbedFunc: vector.OpenAICompatEmbedding(
			cfg.Assistant.EmbeddingsURL,
			cfg.Assistant.OpenRouterAPIKey,
			cfg.Assistant.EmbeddingsModel,
		),
		Logger: logger,
	})
	if err != nil {
		sqlStore.Close()
		return nil, fmt.Errorf("opening vector index: %w", err)
	}

	llmClient := llm.New(llm.Config{
		APIKey:  cfg.Assistant.OpenRouterAPIKey,
		Model:   cfg.Assistant.Model,
		Timeout: cfg.Assistant.GenerateTimeout,
		Logger:  logger,
	})

	pipeline := intent.NewPipeline(intent.Config{
		Phrases:         index,
		Responder:       llmClient,
		SearchTimeout:   cfg.Assistant.SearchTimeout,
		GenerateTimeout: cfg.Assistant.GenerateTimeout,
		Logger:          logger,
	})

	hub := transport.NewHub(logger)
	dir := directory.New(logger)
	sessions := session.NewStore()
	guard := dedupe.New(dedupeTTL, dedupeMaxSize)

	botGW := bot.New(bot.Config{
		Sessions: sessions,
		Resolver: pipeline,
		Tours:    index,
		Feedback: sqlStore,
		Notifier: hub,
		Logger:   logger,
	})

	router := chat.New(dir, sqlStore, verifier, hub, logger)

	gw := &Gateway{
		config:    cfg,
		store:     sqlStore,
		directory: dir,
		sessions:  sessions,
		index:     index,
		guard:     guard,
		logger:    logger.With("component", "gateway"),
		startedAt: time.Now(),
	}

	wsServer := transport.NewServer(transport.Config{
		Hub:      hub,
		Router:   router,
		Bot:      botGW,
		Verifier: verifier,
		Guard:    guard,
		Logger:   logger,
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/health", gw.handleHealth)
	mux.HandleFunc("/health/ready", gw.handleReady)
	wsServer.RegisterRoutes(mux)

	gw.httpServer = &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return gw, nil
}

// LoadSeed fills the vector index from the configured seed file, if any.
func (g *Gateway) LoadSeed(ctx context.Context) error {
	if g.config.Assistant.SeedFile == "" {
		g.logger.Info("no seed file configured, starting with existing index")
		return nil
	}
	return g.index.LoadSeed(ctx, g.config.Assistant.SeedFile)
}

// Run starts the HTTP server and blocks until the context is canceled or
// the server fails. Returns nil on graceful shutdown.
func (g *Gateway) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", g.config.Server.HTTPAddr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", g.config.Server.HTTPAddr, err)
	}

	errCh := make(chan error, 1)
	go func() {
		g.logger.Info("HTTP server listening", "addr", ln.Addr().String())
		if err := g.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	var serverErr error
	select {
	case <-ctx.Done():
		g.logger.Info("context canceled, initiating shutdown")
	case serverErr = <-errCh:
		g.logger.Error("server error", "error", serverErr)
	}

	shutdownErr := g.Shutdown(context.Background())
	if serverErr != nil {
		return serverErr
	}
	return shutdownErr
}

// Shutdown stops the HTTP server and releases every component. Safe to call
// after Run returns.
func (g *Gateway) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	var firstErr error
	if err := g.httpServer.Shutdown(ctx); err != nil {
		g.logger.Error("HTTP shutdown error", "error", err)
		firstErr = err
	}

	g.guard.Close()

	if err := g.store.Close(); err != nil {
		g.logger.Error("store close error", "error", err)
		if firstErr == nil {
			firstErr = err
		}
	}

	g.logger.Info("gateway stopped")
	return firstErr
}

type healthResponse struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
	Online int    `json:"online"`
}

// handleHealth reports liveness: the process is up and serving.
func (g *Gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(healthResponse{
		Status: "ok",
		Uptime: time.Since(g.startedAt).Round(time.Second).String(),
		Online: len(g.directory.OnlineUsers()),
	})
}

// handleReady reports readiness: the store answers queries.
func (g *Gateway) handleReady(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if _, err := g.store.CountUnread(r.Context(), "_health"); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]string{"status": "unavailable", "error": err.Error()})
		return
	}
	json.NewEncoder(w).Encode(map[string]string{"status": "ready"})
}
