package classify

import (
	"context"
	"fmt"
	"strings"

	"github.com/largefullmoon/backend-excel-ai-modifier/pkg/enrich/models"
	"github.com/largefullmoon/backend-excel-ai-modifier/pkg/enrich/rules"
)

// remolqueKeywords are description tokens indicating towed equipment.
var remolqueKeywords = []string{"TANQUE", "REMOLQUE", "DOLLY", "SEMI"}

// Static is the deterministic collaborator implementation: keyword-based
// classification and a fixed value table. It is used directly when no
// generative backend is configured and as the degradation path when one is.
type Static struct {
	rules *rules.RuleSet
}

// NewStatic creates a Static collaborator bound to a rule set.
func NewStatic(ruleSet *rules.RuleSet) *Static {
	return &Static{rules: ruleSet}
}

// Classify applies keyword rules to the description: a TRACTO token selects
// TRACTOS, towed-equipment tokens select REMOLQUES, and anything else
// defaults to the rule set's default category.
func (s *Static) Classify(_ context.Context, description string, categories []string) (string, error) {
	upper := strings.ToUpper(strings.TrimSpace(description))
	if strings.Contains(upper, "TRACTO") {
		return s.known("TRACTOS", categories), nil
	}
	for _, kw := range remolqueKeywords {
		if strings.Contains(upper, kw) {
			return s.known("REMOLQUES", categories), nil
		}
	}
	return s.rules.DefaultCategory, nil
}

// Generate returns the rule table's configured value pair for the vehicle's
// category and coverage kind. Unknown categories resolve through the default
// category.
func (s *Static) Generate(_ context.Context, vehicle models.VehicleInfo, coverageKind string) (models.InsuranceValues, error) {
	category := vehicle.Category
	if _, ok := s.rules.Categories[category]; !ok {
		category = s.rules.DefaultCategory
	}
	coverage, ok := s.rules.Categories[category].Coverages[coverageKind]
	if !ok {
		return models.InsuranceValues{}, fmt.Errorf("no configured values for category %s coverage %s", category, coverageKind)
	}
	return models.InsuranceValues{Limites: coverage.Limites, Deducibles: coverage.Deducibles}, nil
}

// known guards against a keyword category absent from the configured set.
func (s *Static) known(category string, categories []string) string {
	for _, c := range categories {
		if c == category {
			return category
		}
	}
	return s.rules.DefaultCategory
}
