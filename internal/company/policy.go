package company

import (
	"fmt"
	"strings"
)

// Aggression selects how hard a software classification is punished
type Aggression string

const (
	Conservative Aggression = "conservative"
	Moderate     Aggression = "moderate"
	Aggressive   Aggression = "aggressive"
)

// DefaultAggression applies when a profile does not choose one
const DefaultAggression = Moderate

// ParseAggression resolves a configured aggression name
func ParseAggression(s string) (Aggression, error) {
	switch a := Aggression(strings.ToLower(strings.TrimSpace(s))); a {
	case "":
		return DefaultAggression, nil
	case Conservative, Moderate, Aggressive:
		return a, nil
	default:
		return "", fmt.Errorf("unknown company aggression %q", s)
	}
}

// Policy converts a classification into a company-stage penalty and a
// Stage B block decision
type Policy struct {
	Aggression Aggression
	// SoftwarePenalty is subtracted from the company-stage category
	SoftwarePenalty int
	blocks          bool
	blockConfidence float64
}

var policies = map[Aggression]Policy{
	Conservative: {Aggression: Conservative},
	Moderate:     {Aggression: Moderate, SoftwarePenalty: 5, blocks: true, blockConfidence: 0.67},
	Aggressive:   {Aggression: Aggressive, SoftwarePenalty: 10, blocks: true},
}

// PolicyFor returns the fixed policy for a, falling back to the default
func PolicyFor(a Aggression) Policy {
	if p, ok := policies[a]; ok {
		return p
	}
	return policies[DefaultAggression]
}

// Penalty returns the points a classification costs under this policy
func (p Policy) Penalty(c Classification) int {
	if !c.IsSoftware() {
		return 0
	}
	return p.SoftwarePenalty
}

// Blocks reports whether a classification blocks the job under this policy
func (p Policy) Blocks(c Classification) bool {
	return p.blocks && c.IsSoftware() && c.Confidence >= p.blockConfidence
}
