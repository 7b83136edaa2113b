// Package candid is the high-level entry point for the interview engine. It
// wires the stores, agents, and knowledge base into a ready-to-serve
// application, while the sub-packages stay usable on their own for embedders
// that want finer control.
package candid

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	backend "github.com/redis/go-redis/v9"

	httpadapter "github.com/candidhq/candid/pkg/adapters/http"
	"github.com/candidhq/candid/pkg/adapters/memory"
	redisadapter "github.com/candidhq/candid/pkg/adapters/redis"
	"github.com/candidhq/candid/pkg/adapters/sqlite"
	"github.com/candidhq/candid/pkg/agents"
	"github.com/candidhq/candid/pkg/engine"
	"github.com/candidhq/candid/pkg/knowledge"
	"github.com/candidhq/candid/pkg/ports"
)

// Version is the release version of the module.
const Version = "0.1.0"

// Config selects the backends the application runs on. Zero values fall back
// to in-process implementations so a bare Config still produces a working
// (if ephemeral) system.
type Config struct {
	// GenAIAPIKey authenticates against the Gemini API. Required.
	GenAIAPIKey string
	// GenAIModel overrides the completion model.
	GenAIModel string
	// EmbeddingModel overrides the embedding model.
	EmbeddingModel string

	// TavilyAPIKey enables the network search fallback for the consultant.
	TavilyAPIKey string

	// RedisAddr selects the Redis checkpoint store and distributed locker.
	// Empty keeps sessions in process memory.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	// SessionTTL expires idle session logs in Redis. Zero keeps them.
	SessionTTL time.Duration

	// SQLitePath selects the SQLite record store. Empty keeps records in
	// process memory.
	SQLitePath string

	// KnowledgeDir seeds the knowledge index from markdown and text files.
	KnowledgeDir string
	// KnowledgeThreshold overrides the retrieval gate's distance cutoff.
	KnowledgeThreshold float64

	// AgentTimeout bounds each capability agent attempt.
	AgentTimeout time.Duration

	Logger *slog.Logger
}

// App is a fully wired interview application.
type App struct {
	Engine *engine.Engine
	Coach  *agents.Coach
	Index  *knowledge.Index

	logger  *slog.Logger
	closers []func() error
}

// New builds an App from the config.
func New(ctx context.Context, cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	llm, err := agents.NewGenAIClient(ctx, cfg.GenAIAPIKey, cfg.GenAIModel)
	if err != nil {
		return nil, fmt.Errorf("init completion client: %w", err)
	}

	app := &App{logger: logger}

	embedder, err := knowledge.NewGenAIEngine(ctx, cfg.GenAIAPIKey, cfg.EmbeddingModel)
	if err != nil {
		return nil, fmt.Errorf("init embedding engine: %w", err)
	}
	app.Index = knowledge.NewIndex(embedder, knowledge.WithIndexLogger(logger))
	if cfg.KnowledgeDir != "" {
		n, err := knowledge.SeedFromDir(ctx, app.Index, cfg.KnowledgeDir)
		if err != nil {
			return nil, fmt.Errorf("seed knowledge base: %w", err)
		}
		logger.Info("knowledge base seeded", "documents", n, "dir", cfg.KnowledgeDir)
	}
	if cfg.SQLitePath != "" {
		if err := loadPersistedKnowledge(ctx, app, cfg.SQLitePath); err != nil {
			return nil, err
		}
	}

	gateOpts := []knowledge.GateOption{knowledge.WithGateLogger(logger)}
	if cfg.KnowledgeThreshold > 0 {
		gateOpts = append(gateOpts, knowledge.WithThreshold(cfg.KnowledgeThreshold))
	}
	gate := knowledge.NewGate(app.Index, gateOpts...)

	var search ports.SearchProvider
	if cfg.TavilyAPIKey != "" {
		search, err = knowledge.NewTavilyClient(cfg.TavilyAPIKey)
		if err != nil {
			return nil, fmt.Errorf("init search client: %w", err)
		}
	} else {
		logger.Warn("no search API key configured, consultant escalation is disabled")
	}

	prompts := agents.DefaultPrompts()
	app.Coach = agents.NewCoach(llm, gate, search, prompts, logger)

	engineOpts := []engine.Option{
		engine.WithLogger(logger),
	}
	if cfg.AgentTimeout > 0 {
		engineOpts = append(engineOpts, engine.WithAgentTimeout(cfg.AgentTimeout))
	}

	var checkpoints ports.CheckpointStore
	if cfg.RedisAddr != "" {
		client := backend.NewClient(&backend.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		store := redisadapter.NewFromClient(client, redisadapter.WithTTL(cfg.SessionTTL))
		checkpoints = store
		app.closers = append(app.closers, store.Close)
		engineOpts = append(engineOpts,
			engine.WithLocker(redisadapter.NewLocker(client, "candid:session:", redisadapter.WithLockLogger(logger))))
		logger.Info("using redis checkpoint store", "addr", cfg.RedisAddr)
	} else {
		store := memory.NewCheckpointStore()
		checkpoints = store
		if cfg.SessionTTL > 0 {
			app.closers = append(app.closers, startPruner(store, cfg.SessionTTL, logger))
		}
		logger.Warn("using in-memory checkpoint store, sessions will not survive restarts")
	}

	var records ports.RecordStore
	if cfg.SQLitePath != "" {
		store, err := sqlite.NewRecordStore(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("init record store: %w", err)
		}
		records = store
		app.closers = append(app.closers, store.Close)
		logger.Info("using sqlite record store", "path", cfg.SQLitePath)
	} else {
		records = memory.NewRecordStore()
	}
	engineOpts = append(engineOpts, engine.WithRecordStore(records))

	eng, err := engine.New(checkpoints, engine.Agents{
		Profiler:    agents.NewProfiler(llm, prompts),
		Interviewer: agents.NewInterviewer(llm, prompts),
		Evaluator:   agents.NewEvaluator(llm, prompts),
		Reporter:    agents.NewReporter(llm, prompts),
		Advisor:     app.Coach,
	}, engineOpts...)
	if err != nil {
		return nil, err
	}
	app.Engine = eng
	return app, nil
}

// loadPersistedKnowledge loads entries previously stored with "candid kb
// seed --sqlite" into the index. Persisted entries layer over the directory
// seed so ops can extend a packaged corpus without editing it.
func loadPersistedKnowledge(ctx context.Context, app *App, path string) error {
	store, err := sqlite.NewKnowledgeStore(path)
	if err != nil {
		return fmt.Errorf("init knowledge store: %w", err)
	}
	app.closers = append(app.closers, store.Close)

	entries, err := store.All(ctx)
	if err != nil {
		return fmt.Errorf("load knowledge entries: %w", err)
	}
	for _, entry := range entries {
		if err := app.Index.Add(ctx, entry.ID, entry.Content); err != nil {
			return fmt.Errorf("index knowledge entry: %w", err)
		}
	}
	if len(entries) > 0 {
		app.logger.Info("knowledge entries loaded", "documents", len(entries), "path", path)
	}
	return nil
}

// startPruner reclaims abandoned in-memory sessions older than the TTL.
// Redis deployments rely on key expiry instead.
func startPruner(store *memory.CheckpointStore, ttl time.Duration, logger *slog.Logger) func() error {
	interval := ttl / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				n, err := store.Prune(context.Background(), time.Now().UTC().Add(-ttl))
				if err != nil {
					logger.Warn("session prune failed", "err", err)
					continue
				}
				if n > 0 {
					logger.Info("pruned abandoned sessions", "count", n)
				}
			}
		}
	}()
	return func() error {
		close(done)
		return nil
	}
}

// Handler returns the HTTP API handler for the app.
func (a *App) Handler() http.Handler {
	return httpadapter.NewHandler(a.Engine,
		httpadapter.WithLogger(a.logger),
		httpadapter.WithConsultant(a.Coach),
	)
}

// Close releases the app's store connections.
func (a *App) Close() error {
	var firstErr error
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
