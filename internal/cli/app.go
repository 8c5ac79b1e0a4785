package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/vijay-prabhu/jobscout/internal/company"
	"github.com/vijay-prabhu/jobscout/internal/config"
	"github.com/vijay-prabhu/jobscout/internal/database"
	"github.com/vijay-prabhu/jobscout/internal/filter"
	"github.com/vijay-prabhu/jobscout/internal/ingest"
	"github.com/vijay-prabhu/jobscout/internal/job"
	"github.com/vijay-prabhu/jobscout/internal/llm"
	"github.com/vijay-prabhu/jobscout/internal/logger"
	"github.com/vijay-prabhu/jobscout/internal/source"
)

const geminiKeyEnv = "GEMINI_API_KEY"

// app holds the resources a command opens from the config file
type app struct {
	cfg    *config.Config
	db     *database.DB
	logger *zap.Logger
	redis  *redis.Client
}

// openApp loads the config, builds the logger and opens the database.
// Profiles are re-read on every call so edits apply to the next command.
func openApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}

	log, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &app{cfg: cfg, db: db, logger: log}, nil
}

// Close releases everything openApp and newIngester acquired
func (a *app) Close() {
	if a.redis != nil {
		a.redis.Close()
	}
	a.db.Close()
	_ = a.logger.Sync()
}

// newIngester wires the classifier cache, filters and enabled profiles
func (a *app) newIngester(ctx context.Context) (*ingest.Ingester, error) {
	cache, err := a.classificationCache(ctx)
	if err != nil {
		return nil, err
	}

	profiles := a.cfg.EnabledProfiles()
	if len(profiles) == 0 {
		return nil, errors.New("no enabled profiles in config")
	}

	classifier := company.NewClassifier(a.cfg.Classifier, cache, a.logger)
	f := filter.New(a.cfg.Filters)

	return ingest.New(a.db, f, classifier, profiles, a.logger, ingest.OptionsFromConfig(a.cfg.Ingest)), nil
}

func (a *app) classificationCache(ctx context.Context) (company.Cache, error) {
	switch a.cfg.Cache.Backend {
	case "redis":
		rdb, err := company.NewRedisClient(ctx, a.cfg.Cache.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		a.redis = rdb
		a.logger.Debug("using redis classification cache", zap.String("url", a.cfg.Cache.RedisURL))
		return company.NewRedisCache(rdb, a.cfg.Cache.TTL()), nil
	default:
		return company.NewMemoryCache(a.cfg.Cache.TTL()), nil
	}
}

// newRegistry returns the built-in producers plus the Gemini fallback when
// it is enabled and an API key is available
func (a *app) newRegistry(ctx context.Context) (*source.Registry, error) {
	registry := source.Default(a.logger)

	if !a.cfg.LLM.Enabled {
		return registry, nil
	}

	apiKey := os.Getenv(geminiKeyEnv)
	if apiKey == "" {
		a.logger.Warn("llm extraction enabled but API key is not set", zap.String("env", geminiKeyEnv))
		return registry, nil
	}

	gen, err := llm.NewGenerator(ctx, apiKey, a.cfg.LLM.Model)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	registry.SetFallback(llm.NewExtractor(gen, a.logger, a.cfg.LLM.MaxLogLength))
	a.logger.Debug("llm fallback enabled", zap.String("model", gen.Model()))

	return registry, nil
}

// resolveJob finds exactly one job by identity hash prefix
func (a *app) resolveJob(ctx context.Context, prefix string) (*job.Job, error) {
	if len(prefix) < 4 {
		return nil, fmt.Errorf("job id prefix %q is too short (need at least 4 characters)", prefix)
	}

	jobs, err := a.db.FindJobsByPrefix(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	switch len(jobs) {
	case 0:
		return nil, fmt.Errorf("job not found: %s", prefix)
	case 1:
		return &jobs[0], nil
	default:
		return nil, fmt.Errorf("job id %s is ambiguous (%d matches), use more characters", prefix, len(jobs))
	}
}

// resolveProfile picks the profile named by id, or the only enabled profile
func (a *app) resolveProfile(id string) (config.Profile, error) {
	if id != "" {
		p, ok := a.cfg.Profile(id)
		if !ok {
			return config.Profile{}, fmt.Errorf("unknown profile: %s", id)
		}
		return p, nil
	}

	enabled := a.cfg.EnabledProfiles()
	if len(enabled) == 1 {
		return enabled[0], nil
	}
	return config.Profile{}, fmt.Errorf("%d profiles enabled, choose one with --profile", len(enabled))
}
