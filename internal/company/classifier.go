package company

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"go.uber.org/zap"

	"github.com/vijay-prabhu/jobscout/internal/config"
	"github.com/vijay-prabhu/jobscout/internal/keyword"
)

// Classifier classifies companies and memoises the results
type Classifier struct {
	cfg         config.ClassifierConfig
	cache       Cache
	logger      *zap.Logger
	fingerprint string
}

// NewClassifier creates a Classifier. A nil cache disables memoisation.
func NewClassifier(cfg config.ClassifierConfig, cache Cache, logger *zap.Logger) *Classifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Classifier{
		cfg:         cfg,
		cache:       cache,
		logger:      logger,
		fingerprint: fingerprint(cfg),
	}
}

// Classify returns the classification for a posting. Cache failures are
// logged and fall back to computing the result directly.
func (c *Classifier) Classify(ctx context.Context, companyName, title, description string) Classification {
	if c.cache == nil {
		return Classify(c.cfg, companyName, title, description)
	}

	key := c.key(companyName, title, description)
	if cached, ok, err := c.cache.Get(ctx, key); err != nil {
		c.logger.Warn("company cache get failed", zap.String("company", companyName), zap.Error(err))
	} else if ok {
		return cached
	}

	result := Classify(c.cfg, companyName, title, description)
	if err := c.cache.Set(ctx, key, result); err != nil {
		c.logger.Warn("company cache set failed", zap.String("company", companyName), zap.Error(err))
	}

	c.logger.Debug("company classified",
		zap.String("company", companyName),
		zap.String("kind", string(result.Kind)),
		zap.Float64("confidence", result.Confidence),
	)
	return result
}

// key includes the keyword-list fingerprint so edited lists miss old entries
func (c *Classifier) key(companyName, title, description string) string {
	h := sha256.New()
	h.Write([]byte(c.fingerprint))
	for _, s := range []string{companyName, title, description} {
		h.Write([]byte{0x1f})
		h.Write([]byte(keyword.Normalize(s)))
	}
	return hex.EncodeToString(h.Sum(nil))
}

func fingerprint(cfg config.ClassifierConfig) string {
	h := sha256.New()
	for _, list := range [][]string{cfg.HardwareKeywords, cfg.SoftwareKeywords, cfg.HardwareCompanies, cfg.SoftwareCompanies} {
		h.Write([]byte(strings.Join(list, "\x1e")))
		h.Write([]byte{0x1f})
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}
