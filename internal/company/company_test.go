package company

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/vijay-prabhu/jobscout/internal/config"
)

func TestClassify(t *testing.T) {
	cfg := config.DefaultClassifier()

	tests := []struct {
		name           string
		company        string
		title          string
		description    string
		wantKind       Kind
		wantConfidence float64
	}{
		{
			name:           "known hardware company",
			company:        "Boston Dynamics",
			title:          "Director of Engineering",
			wantKind:       KindHardware,
			wantConfidence: 0.67,
		},
		{
			name:           "hardware company with software title",
			company:        "Tesla",
			title:          "Software Engineering Manager",
			wantKind:       KindHardware,
			wantConfidence: 0.67,
		},
		{
			name:           "software indicators only",
			company:        "Acme",
			title:          "VP Engineering",
			description:    "We are a SaaS company building a cloud native web application.",
			wantKind:       KindSoftware,
			wantConfidence: 1,
		},
		{
			name:           "single software signal",
			company:        "Acme",
			title:          "VP Engineering",
			description:    "B2B SaaS",
			wantKind:       KindSoftware,
			wantConfidence: 0.33,
		},
		{
			name:           "hardware wins over software",
			company:        "Acme",
			title:          "Head of Engineering",
			description:    "SaaS platform for robotics fleets",
			wantKind:       KindHardware,
			wantConfidence: 0.33,
		},
		{
			name:     "no signals",
			company:  "Acme",
			title:    "Director of Operations",
			wantKind: KindNeutral,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(cfg, tt.company, tt.title, tt.description)
			if got.Kind != tt.wantKind {
				t.Errorf("Kind = %v, want %v (signals %v)", got.Kind, tt.wantKind, got.Signals)
			}
			if got.Confidence != tt.wantConfidence {
				t.Errorf("Confidence = %v, want %v", got.Confidence, tt.wantConfidence)
			}
		})
	}
}

func TestPolicy(t *testing.T) {
	strongSoftware := Classification{Kind: KindSoftware, Confidence: 1}
	weakSoftware := Classification{Kind: KindSoftware, Confidence: 0.33}
	hardware := Classification{Kind: KindHardware, Confidence: 1}

	tests := []struct {
		aggression  Aggression
		c           Classification
		wantPenalty int
		wantBlock   bool
	}{
		{Conservative, strongSoftware, 0, false},
		{Conservative, weakSoftware, 0, false},
		{Moderate, strongSoftware, 5, true},
		{Moderate, weakSoftware, 5, false},
		{Aggressive, weakSoftware, 10, true},
		{Aggressive, hardware, 0, false},
		{Moderate, Classification{Kind: KindNeutral}, 0, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.aggression)+"/"+string(tt.c.Kind), func(t *testing.T) {
			p := PolicyFor(tt.aggression)
			if got := p.Penalty(tt.c); got != tt.wantPenalty {
				t.Errorf("Penalty() = %d, want %d", got, tt.wantPenalty)
			}
			if got := p.Blocks(tt.c); got != tt.wantBlock {
				t.Errorf("Blocks() = %v, want %v", got, tt.wantBlock)
			}
		})
	}
}

func TestParseAggression(t *testing.T) {
	if a, err := ParseAggression(""); err != nil || a != Moderate {
		t.Errorf("ParseAggression(\"\") = %v, %v", a, err)
	}
	if a, err := ParseAggression("Aggressive"); err != nil || a != Aggressive {
		t.Errorf("ParseAggression(Aggressive) = %v, %v", a, err)
	}
	if _, err := ParseAggression("reckless"); err == nil {
		t.Error("expected error")
	}
	if PolicyFor("reckless").Aggression != DefaultAggression {
		t.Error("unknown aggression should fall back to the default policy")
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(time.Hour)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	want := Classification{Kind: KindHardware, Confidence: 1}
	if err := c.Set(ctx, "k", want); err != nil {
		t.Fatal(err)
	}

	got, ok, err := c.Get(ctx, "k")
	if err != nil || !ok || got.Kind != want.Kind {
		t.Fatalf("Get() = %+v, %v, %v", got, ok, err)
	}

	now = now.Add(2 * time.Hour)
	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Error("expected entry to expire")
	}
	if c.Len() != 0 {
		t.Errorf("expected expired entry to be evicted, Len() = %d", c.Len())
	}
}

type countingCache struct {
	*MemoryCache
	gets, sets int
	failGet    bool
}

func (c *countingCache) Get(ctx context.Context, key string) (Classification, bool, error) {
	c.gets++
	if c.failGet {
		return Classification{}, false, errors.New("connection refused")
	}
	return c.MemoryCache.Get(ctx, key)
}

func (c *countingCache) Set(ctx context.Context, key string, v Classification) error {
	c.sets++
	return c.MemoryCache.Set(ctx, key, v)
}

func TestClassifier_Memoises(t *testing.T) {
	ctx := context.Background()
	cache := &countingCache{MemoryCache: NewMemoryCache(0)}
	cl := NewClassifier(config.DefaultClassifier(), cache, zap.NewNop())

	first := cl.Classify(ctx, "Tesla", "Director", "")
	second := cl.Classify(ctx, "  TESLA ", "director", "")

	if first.Kind != KindHardware || second.Kind != KindHardware {
		t.Fatalf("unexpected kinds %v / %v", first.Kind, second.Kind)
	}
	if cache.sets != 1 {
		t.Errorf("expected one cache write, got %d", cache.sets)
	}
	if cache.gets != 2 {
		t.Errorf("expected two cache reads, got %d", cache.gets)
	}
}

func TestClassifier_CacheFailure(t *testing.T) {
	cache := &countingCache{MemoryCache: NewMemoryCache(0), failGet: true}
	cl := NewClassifier(config.DefaultClassifier(), cache, zap.NewNop())

	got := cl.Classify(context.Background(), "Tesla", "Director", "")
	if got.Kind != KindHardware {
		t.Errorf("expected fallback classification, got %v", got.Kind)
	}
}

func TestClassifier_KeyChangesWithConfig(t *testing.T) {
	a := NewClassifier(config.DefaultClassifier(), nil, nil)
	cfg := config.DefaultClassifier()
	cfg.HardwareKeywords = append(cfg.HardwareKeywords, "lidar")
	b := NewClassifier(cfg, nil, nil)

	if a.key("Acme", "VP", "") == b.key("Acme", "VP", "") {
		t.Error("expected keyword list changes to change cache keys")
	}
}

func TestRedisCache(t *testing.T) {
	url := os.Getenv("JOBSCOUT_TEST_REDIS_URL")
	if url == "" {
		t.Skip("JOBSCOUT_TEST_REDIS_URL not set")
	}

	ctx := context.Background()
	rdb, err := NewRedisClient(ctx, url)
	if err != nil {
		t.Fatalf("NewRedisClient() error: %v", err)
	}
	defer rdb.Close()

	cache := NewRedisCache(rdb, time.Minute)
	want := Classification{Kind: KindSoftware, Confidence: 0.67, Signals: []string{"saas"}}

	if err := cache.Set(ctx, "test-key", want); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	got, ok, err := cache.Get(ctx, "test-key")
	if err != nil || !ok {
		t.Fatalf("Get() = %v, %v", ok, err)
	}
	if got.Kind != want.Kind || got.Confidence != want.Confidence {
		t.Errorf("Get() = %+v, want %+v", got, want)
	}

	if _, ok, err := cache.Get(ctx, "missing-key"); ok || err != nil {
		t.Errorf("expected miss, got %v, %v", ok, err)
	}
}
