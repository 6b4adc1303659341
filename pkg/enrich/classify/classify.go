// Package classify provides the vehicle classification and insurance value
// generation collaborators used by the enrichment engine.
//
// Both capabilities are optional dependencies with graceful degradation: a
// remote, generative-model-backed implementation is selected when an API key
// is configured, and a deterministic static implementation otherwise. The
// remote implementation itself falls back to the static one on any call
// failure, so callers never need availability branching.
package classify

import (
	"context"

	"github.com/largefullmoon/backend-excel-ai-modifier/pkg/enrich/models"
	"github.com/largefullmoon/backend-excel-ai-modifier/pkg/enrich/rules"
	"go.uber.org/zap"
)

// Classifier assigns one of the known coverage categories to a vehicle
// description.
type Classifier interface {
	// Classify returns exactly one category name for the description.
	// Implementations must not return a name outside categories.
	Classify(ctx context.Context, description string, categories []string) (string, error)
}

// ValueGenerator produces the limit/deductible pair for one vehicle and
// coverage kind.
type ValueGenerator interface {
	Generate(ctx context.Context, vehicle models.VehicleInfo, coverageKind string) (models.InsuranceValues, error)
}

// Provider bundles the two collaborator capabilities.
type Provider struct {
	// Classifier assigns coverage categories.
	Classifier Classifier
	// Values generates insurance values.
	Values ValueGenerator
	// Remote reports whether a generative backend is in use.
	Remote bool
}

// NewProvider selects the collaborator implementations by configuration
// presence: remote-backed when apiKey is set, static otherwise.
func NewProvider(apiKey, model string, ruleSet *rules.RuleSet, log *zap.Logger) (*Provider, error) {
	static := NewStatic(ruleSet)
	if apiKey == "" {
		log.Warn("generative classifier not configured, using static fallback")
		return &Provider{Classifier: static, Values: static}, nil
	}

	gemini, err := NewGemini(apiKey, model, static, log)
	if err != nil {
		return nil, err
	}
	return &Provider{Classifier: gemini, Values: gemini, Remote: true}, nil
}
