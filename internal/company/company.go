// Package company labels a posting's employer as hardware-leaning,
// software-leaning or neutral, and turns that label into scoring and
// filtering policy.
package company

import (
	"math"
	"strings"

	"github.com/vijay-prabhu/jobscout/internal/config"
	"github.com/vijay-prabhu/jobscout/internal/keyword"
)

// Kind is the company classification label
type Kind string

const (
	KindHardware Kind = "hardware"
	KindSoftware Kind = "software"
	KindNeutral  Kind = "neutral"
)

// Known company names weigh as much as this many keyword hits
const knownCompanyWeight = 2

// Hits needed for full confidence
const saturation = 3

// Classification is the result of classifying one (company, title, description)
type Classification struct {
	Kind       Kind     `json:"kind"`
	Confidence float64  `json:"confidence"`
	Signals    []string `json:"signals,omitempty"`
}

// IsHardware reports whether the classification is hardware
func (c Classification) IsHardware() bool {
	return c.Kind == KindHardware
}

// IsSoftware reports whether the classification is software
func (c Classification) IsSoftware() bool {
	return c.Kind == KindSoftware
}

// Classify scans company, title and description for hardware and software
// indicators. Any hardware signal wins over software signals; no signal at
// all is neutral.
func Classify(cfg config.ClassifierConfig, company, title, description string) Classification {
	text := strings.Join([]string{company, title, description}, "\n")

	hwSignals, hwWeight := signals(text, company, cfg.HardwareKeywords, cfg.HardwareCompanies)
	if hwWeight > 0 {
		return Classification{Kind: KindHardware, Confidence: confidence(hwWeight), Signals: hwSignals}
	}

	swSignals, swWeight := signals(text, company, cfg.SoftwareKeywords, cfg.SoftwareCompanies)
	if swWeight > 0 {
		return Classification{Kind: KindSoftware, Confidence: confidence(swWeight), Signals: swSignals}
	}

	return Classification{Kind: KindNeutral}
}

func signals(text, company string, keywords, companies []string) ([]string, int) {
	hits := keyword.Matches(text, keywords)
	weight := len(hits)

	if name, ok := keyword.First(company, companies); ok {
		hits = append(hits, "company:"+strings.ToLower(name))
		weight += knownCompanyWeight
	}

	return hits, weight
}

func confidence(weight int) float64 {
	c := float64(weight) / saturation
	if c > 1 {
		c = 1
	}
	return math.Round(c*100) / 100
}
