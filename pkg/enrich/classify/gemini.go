package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/largefullmoon/backend-excel-ai-modifier/pkg/enrich/models"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-2.0-flash"

// generativeBackend is the slice of the genai client used for content
// generation. *genai.Models satisfies it.
type generativeBackend interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Gemini implements Classifier and ValueGenerator against the Google Gemini
// API. Every call degrades to the wrapped static implementation on error or
// timeout, so an unavailable backend slows a request down but never fails it.
type Gemini struct {
	backend  generativeBackend
	model    string
	fallback *Static
	log      *zap.Logger
}

// NewGemini creates a Gemini-backed collaborator.
func NewGemini(apiKey, model string, fallback *Static, log *zap.Logger) (*Gemini, error) {
	if model == "" {
		model = DefaultGeminiModel
	}
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Gemini{
		backend:  client.Models,
		model:    model,
		fallback: fallback,
		log:      log,
	}, nil
}

// Classify asks the model for exactly one category name. Responses outside
// the known set and call failures both resolve through the static fallback.
func (g *Gemini) Classify(ctx context.Context, description string, categories []string) (string, error) {
	prompt := fmt.Sprintf(`You are an expert in vehicle classification for insurance purposes.

Given the following vehicle description: %q

Available vehicle categories are: %s

Based on the description, classify this vehicle into one of the available categories.
Consider the following guidelines:
- TRACTOS: Truck tractors, prime movers, cab units that pull trailers
- REMOLQUES: Trailers, semi-trailers, tankers, dollies, any towed equipment

Respond with ONLY the category name (exactly as provided in the list).`,
		description, strings.Join(categories, ", "))

	resp, err := g.backend.GenerateContent(ctx, g.model, genai.Text(prompt),
		&genai.GenerateContentConfig{
			Temperature:     genai.Ptr[float32](0.1),
			MaxOutputTokens: 50,
		})
	if err != nil {
		g.log.Warn("gemini classification failed, using static fallback", zap.Error(err))
		return g.fallback.Classify(ctx, description, categories)
	}

	category := strings.ToUpper(strings.TrimSpace(resp.Text()))
	for _, c := range categories {
		if category == c {
			return category, nil
		}
	}
	g.log.Warn("gemini returned unknown category",
		zap.String("category", category),
		zap.Strings("known", categories))
	return g.fallback.Classify(ctx, description, categories)
}

// Generate asks the model for a strict-JSON limit/deductible pair for the
// vehicle and coverage kind. Any parse or validation failure resolves
// through the static fallback table.
func (g *Gemini) Generate(ctx context.Context, vehicle models.VehicleInfo, coverageKind string) (models.InsuranceValues, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Vehicle: %s", vehicle.Description)
	if vehicle.Year != "" {
		fmt.Fprintf(&sb, ", Year: %s", vehicle.Year)
	}
	if vehicle.Model != "" {
		fmt.Fprintf(&sb, ", Model: %s", vehicle.Model)
	}

	prompt := fmt.Sprintf(`You are an expert insurance underwriter specializing in commercial vehicle insurance in Latin America.

Vehicle Information:
%s
Vehicle Type: %s
Coverage: %s

Generate realistic insurance values for this vehicle. Consider:
- Vehicle type, age, and value
- Market conditions in Latin America
- Commercial vehicle insurance standards
- Currency should be in USD for limits
- TRACTOS: Limits typically $80,000-$150,000 USD, Deductibles 8-12%%
- REMOLQUES: Limits typically $40,000-$80,000 USD, Deductibles 5-8%%
- Newer vehicles (2020+): Higher limits, lower deductibles
- Older vehicles (pre-2015): Lower limits, higher deductibles

Respond ONLY in this exact JSON format:
{"LIMITES": "$US XXX,XXX", "DEDUCIBLES": "X.X %%"}`,
		sb.String(), vehicle.Category, coverageKind)

	resp, err := g.backend.GenerateContent(ctx, g.model, genai.Text(prompt),
		&genai.GenerateContentConfig{
			Temperature:     genai.Ptr[float32](0.3),
			MaxOutputTokens: 100,
		})
	if err != nil {
		g.log.Warn("gemini value generation failed, using static fallback",
			zap.String("coverage", coverageKind), zap.Error(err))
		return g.fallback.Generate(ctx, vehicle, coverageKind)
	}

	values, err := parseInsuranceValues(resp.Text())
	if err != nil {
		g.log.Warn("gemini returned unparseable insurance values",
			zap.String("coverage", coverageKind), zap.Error(err))
		return g.fallback.Generate(ctx, vehicle, coverageKind)
	}
	return values, nil
}

// Ping issues a minimal generation call to verify API connectivity.
func (g *Gemini) Ping(ctx context.Context) error {
	_, err := g.backend.GenerateContent(ctx, g.model, genai.Text("Hello"),
		&genai.GenerateContentConfig{MaxOutputTokens: 5})
	return err
}

// parseInsuranceValues extracts a LIMITES/DEDUCIBLES pair from a model
// response, tolerating markdown code fences around the JSON body.
func parseInsuranceValues(text string) (models.InsuranceValues, error) {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var values models.InsuranceValues
	if err := json.Unmarshal([]byte(cleaned), &values); err != nil {
		return models.InsuranceValues{}, fmt.Errorf("decode response: %w", err)
	}
	if values.Limites == "" || values.Deducibles == "" {
		return models.InsuranceValues{}, fmt.Errorf("response missing LIMITES or DEDUCIBLES")
	}
	return values, nil
}
