// Package di wires pulse's components into a dig container.
package di

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/lazypower/pulse/internal/advice"
	"github.com/lazypower/pulse/internal/cache"
	"github.com/lazypower/pulse/internal/composite"
	"github.com/lazypower/pulse/internal/config"
	"github.com/lazypower/pulse/internal/corpus"
	"github.com/lazypower/pulse/internal/engine"
	"github.com/lazypower/pulse/internal/lexicon"
	"github.com/lazypower/pulse/internal/logging"
	"github.com/lazypower/pulse/internal/server"
	"github.com/lazypower/pulse/internal/store"
)

// Flags carries the command line settings that shape the container.
type Flags struct {
	ConfigFile string
	Verbose    bool
	JSONLog    bool
	Version    string
}

// BuildContainer creates and configures a dependency injection container.
func BuildContainer(flags Flags) (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(func() (*config.Config, error) {
		cfg, err := config.Load(flags.ConfigFile)
		if err != nil {
			return nil, err
		}
		if flags.Verbose {
			cfg.Logging.Level = "debug"
		}
		if flags.JSONLog {
			cfg.Logging.Format = "json"
		}
		return cfg, nil
	}); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register database
	if err := container.Provide(OpenDB); err != nil {
		return nil, err
	}

	// Register cache store and profile cache
	if err := container.Provide(func(cfg *config.Config, db *store.DB, logger *zap.Logger) (cache.Store, error) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s, err := cache.NewStore(ctx, cfg.Cache.Type, cfg.Cache.MySQLDSN, db.DB, logger)
		if err != nil {
			return nil, err
		}
		logger.Info("Cache store ready", zap.String("type", cfg.Cache.Type))
		return s, nil
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(cfg *config.Config, s cache.Store, logger *zap.Logger) *cache.ProfileCache {
		return cache.New(s, cfg.CacheTTL(), logger)
	}); err != nil {
		return nil, err
	}

	// Register lexicon overrides, lexicons and composite descriptors
	if err := container.Provide(loadLexiconFile); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *lexicon.File) lexicon.Set {
		return f.Apply(lexicon.Defaults())
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(Descriptors); err != nil {
		return nil, err
	}

	// Register recommendation rules
	if err := container.Provide(loadRules); err != nil {
		return nil, err
	}

	// Register corpus accessor
	if err := container.Provide(func(cfg *config.Config, db *store.DB, logger *zap.Logger) *corpus.Accessor {
		return corpus.NewAccessor(db, cfg.Analysis.QueryTimeout, cfg.Analysis.PageSize, logger)
	}); err != nil {
		return nil, err
	}

	// Register analysis engine
	if err := container.Provide(NewEngine); err != nil {
		return nil, err
	}

	// Register HTTP server
	if err := container.Provide(func(db *store.DB, eng *engine.Engine, logger *zap.Logger) *server.Server {
		return server.New(db, eng, logger, flags.Version)
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// OpenDB opens the configured database, defaulting to ~/.pulse/pulse.db.
func OpenDB(cfg *config.Config, logger *zap.Logger) (*store.DB, error) {
	path := cfg.Database.Path
	if path == "" {
		var err error
		path, err = store.DefaultDBPath()
		if err != nil {
			return nil, fmt.Errorf("resolve db path: %w", err)
		}
	}
	db, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	logger.Info("Database opened", zap.String("path", path))
	return db, nil
}

// Descriptors returns the composite descriptors with each domain's lexicon
// from set as vocabulary and any category overrides from the lexicon file
// applied on top.
func Descriptors(f *lexicon.File, set lexicon.Set) map[string]composite.Descriptor {
	out := composite.Defaults()
	for domain, d := range out {
		out[domain] = d.WithLexicon(set.Get(domain))
	}
	if f == nil {
		return out
	}
	for domain, cats := range f.Categories {
		if d, ok := out[domain]; ok {
			out[domain] = d.WithCategories(cats)
		}
	}
	return out
}

// EngineParams are the engine's injected dependencies.
type EngineParams struct {
	dig.In

	Config      *config.Config
	Logger      *zap.Logger
	Corpus      *corpus.Accessor
	Cache       *cache.ProfileCache
	Lexicons    lexicon.Set
	Descriptors map[string]composite.Descriptor
	Rules       []advice.Rule
}

// NewEngine builds the analysis engine. Analyses read the user's side of
// the conversation only.
func NewEngine(p EngineParams) *engine.Engine {
	a := p.Config.Analysis
	return engine.New(p.Corpus, engine.Options{
		Lexicons:              p.Lexicons,
		Descriptors:           p.Descriptors,
		SignificanceThreshold: a.SignificanceThreshold,
		Severity:              a.Severity,
		Trend:                 a.Trend,
		Rules:                 p.Rules,
		Cache:                 p.Cache,
		Location:              p.Config.Location(),
		TimeframeDays:         a.TimeframeDays,
		MinMessages:           a.MinMessages,
		Sender:                corpus.SenderUser,
		Logger:                p.Logger,
	})
}

func loadLexiconFile(cfg *config.Config, logger *zap.Logger) (*lexicon.File, error) {
	if cfg.Analysis.LexiconFile == "" {
		return nil, nil
	}
	f, err := lexicon.LoadFile(cfg.Analysis.LexiconFile)
	if err != nil {
		return nil, err
	}
	logger.Info("Loaded lexicon overrides", zap.String("path", cfg.Analysis.LexiconFile))
	return f, nil
}

func loadRules(cfg *config.Config, logger *zap.Logger) ([]advice.Rule, error) {
	if cfg.Analysis.RulesFile == "" {
		return advice.DefaultRules(), nil
	}
	rules, err := advice.LoadRules(cfg.Analysis.RulesFile)
	if err != nil {
		return nil, err
	}
	logger.Info("Loaded recommendation rules",
		zap.String("path", cfg.Analysis.RulesFile),
		zap.Int("count", len(rules)))
	return rules, nil
}

// Close releases the database and any cache connection the container opened.
func Close(container *dig.Container) error {
	return container.Invoke(func(db *store.DB, s cache.Store, logger *zap.Logger) {
		if c, ok := s.(io.Closer); ok {
			if err := c.Close(); err != nil {
				logger.Warn("Failed to close cache store", zap.Error(err))
			}
		}
		if err := db.Close(); err != nil {
			logger.Warn("Failed to close database", zap.Error(err))
		}
		_ = logger.Sync()
	})
}
