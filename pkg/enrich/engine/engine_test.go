package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/largefullmoon/backend-excel-ai-modifier/pkg/enrich/classify"
	"github.com/largefullmoon/backend-excel-ai-modifier/pkg/enrich/models"
	"github.com/largefullmoon/backend-excel-ai-modifier/pkg/enrich/rules"
	"github.com/largefullmoon/backend-excel-ai-modifier/pkg/enrich/sheet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubClassifier returns a fixed category or error.
type stubClassifier struct {
	category string
	err      error
}

func (s *stubClassifier) Classify(_ context.Context, _ string, _ []string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.category, nil
}

func staticProvider(t *testing.T, ruleSet *rules.RuleSet) *classify.Provider {
	t.Helper()
	provider, err := classify.NewProvider("", "", ruleSet, zap.NewNop())
	require.NoError(t, err)
	return provider
}

func fleetTable() *models.Table {
	return &models.Table{
		HeaderRow: 1,
		Headers:   []string{"TIPO DE UNIDAD", "Desci.", "MOD", "NO.SERIE"},
		Rows: [][]string{
			{"TRACTO", "TR FREIGHTLINER NEW CASCADIA DD16 510 STD", "2022", "3AKJHPDV7NSNC4904"},
			{"TANQUE", "SEMIRREMOLQUE TANQUE 40K LTS", "2019", "1T9SA4520KR740118"},
		},
	}
}

func TestEnrichTractoScenario(t *testing.T) {
	ruleSet := rules.Default()
	eng := New(staticProvider(t, ruleSet), ruleSet, 2, time.Second, zap.NewNop())

	enriched, err := eng.Enrich(context.Background(), fleetTable())
	require.NoError(t, err)
	require.Len(t, enriched, 2)

	// Row order matches input order even with concurrent dispatch.
	assert.Equal(t, "TRACTO", enriched[0]["TIPO DE UNIDAD"])
	assert.Equal(t, "VALOR CONVENIDO", enriched[0]["DANOS MATERIALES LIMITES"])
	assert.Equal(t, "10 %", enriched[0]["DANOS MATERIALES DEDUCIBLES"])
	assert.Equal(t, "VALOR CONVENIDO", enriched[0]["ROBO TOTAL LIMITES"])
	assert.Equal(t, "10 %", enriched[0]["ROBO TOTAL DEDUCIBLES"])

	// The tanker trailer classifies as REMOLQUES via keywords.
	assert.Equal(t, "5 %", enriched[1]["DANOS MATERIALES DEDUCIBLES"])
	assert.Equal(t, "5 %", enriched[1]["ROBO TOTAL DEDUCIBLES"])
}

func TestEnrichSkipsBlankReference(t *testing.T) {
	ruleSet := rules.Default()
	table := &models.Table{
		Headers: []string{"TIPO DE UNIDAD", "MOD"},
		Rows: [][]string{
			{"", "2020"},
			{"nan", "2021"},
			{"TRACTO", "2022"},
		},
	}

	eng := New(staticProvider(t, ruleSet), ruleSet, 1, time.Second, zap.NewNop())
	enriched, err := eng.Enrich(context.Background(), table)
	require.NoError(t, err)
	require.Len(t, enriched, 3)

	// Blank and null-marker rows are skipped with their new columns blank.
	assert.Empty(t, enriched[0]["DANOS MATERIALES LIMITES"])
	assert.Empty(t, enriched[1]["DANOS MATERIALES LIMITES"])
	assert.Equal(t, "VALOR CONVENIDO", enriched[2]["DANOS MATERIALES LIMITES"])
}

func TestEnrichUnknownCategoryFallsBack(t *testing.T) {
	ruleSet := rules.Default()
	provider := &classify.Provider{
		Classifier: &stubClassifier{category: "CAMIONES"},
		Values:     classify.NewStatic(ruleSet),
	}

	eng := New(provider, ruleSet, 1, time.Second, zap.NewNop())
	enriched, err := eng.Enrich(context.Background(), fleetTable())
	require.NoError(t, err)

	// CAMIONES is outside the known set: the default category's values are
	// used, not an error.
	assert.Equal(t, "VALOR CONVENIDO", enriched[0]["DANOS MATERIALES LIMITES"])
	assert.Equal(t, "10 %", enriched[0]["DANOS MATERIALES DEDUCIBLES"])
}

func TestEnrichRowErrorDoesNotAbort(t *testing.T) {
	ruleSet := rules.Default()
	provider := &classify.Provider{
		Classifier: &stubClassifier{err: errors.New("backend down")},
		Values:     classify.NewStatic(ruleSet),
	}

	eng := New(provider, ruleSet, 2, time.Second, zap.NewNop())
	enriched, err := eng.Enrich(context.Background(), fleetTable())
	require.NoError(t, err)
	require.Len(t, enriched, 2)

	// Failed rows keep their original values and blank enrichment columns.
	assert.Equal(t, "TRACTO", enriched[0]["TIPO DE UNIDAD"])
	assert.Empty(t, enriched[0]["DANOS MATERIALES LIMITES"])
}

func TestEnrichMissingReferenceColumnAborts(t *testing.T) {
	ruleSet := rules.Default()
	table := &models.Table{
		Headers: []string{"Desci.", "MOD"},
		Rows:    [][]string{{"TR FREIGHTLINER", "2022"}},
	}

	eng := New(staticProvider(t, ruleSet), ruleSet, 1, time.Second, zap.NewNop())
	_, err := eng.Enrich(context.Background(), table)
	require.Error(t, err)

	var notFound *sheet.ColumnNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Contains(t, notFound.Available, "Desci.")
}

func TestEnrichResolvesReferenceVariant(t *testing.T) {
	ruleSet := rules.Default()
	table := &models.Table{
		Headers: []string{"Tipo_de_Unidad", "MOD"},
		Rows:    [][]string{{"TRACTO", "2022"}},
	}

	eng := New(staticProvider(t, ruleSet), ruleSet, 1, time.Second, zap.NewNop())
	enriched, err := eng.Enrich(context.Background(), table)
	require.NoError(t, err)
	assert.Equal(t, "VALOR CONVENIDO", enriched[0]["DANOS MATERIALES LIMITES"])
}

func TestEnrichZeroRows(t *testing.T) {
	ruleSet := rules.Default()
	table := &models.Table{
		Headers: []string{"TIPO DE UNIDAD", "MOD"},
	}

	eng := New(staticProvider(t, ruleSet), ruleSet, 1, time.Second, zap.NewNop())
	enriched, err := eng.Enrich(context.Background(), table)
	require.NoError(t, err)
	assert.Empty(t, enriched)
}

// deadlineRecorder captures the context deadline of each collaborator call.
type deadlineRecorder struct {
	mu        sync.Mutex
	deadlines []time.Time
}

func (d *deadlineRecorder) record(ctx context.Context) {
	deadline, _ := ctx.Deadline()
	d.mu.Lock()
	d.deadlines = append(d.deadlines, deadline)
	d.mu.Unlock()
}

type slowClassifier struct {
	rec   *deadlineRecorder
	delay time.Duration
}

func (s *slowClassifier) Classify(ctx context.Context, _ string, _ []string) (string, error) {
	s.rec.record(ctx)
	time.Sleep(s.delay)
	return "TRACTOS", nil
}

type recordingGenerator struct {
	rec    *deadlineRecorder
	static *classify.Static
}

func (g *recordingGenerator) Generate(ctx context.Context, vehicle models.VehicleInfo, kind string) (models.InsuranceValues, error) {
	g.rec.record(ctx)
	return g.static.Generate(ctx, vehicle, kind)
}

func TestEnrichTimeoutPerCollaboratorCall(t *testing.T) {
	ruleSet := rules.Default()
	rec := &deadlineRecorder{}
	provider := &classify.Provider{
		Classifier: &slowClassifier{rec: rec, delay: 20 * time.Millisecond},
		Values:     &recordingGenerator{rec: rec, static: classify.NewStatic(ruleSet)},
	}
	table := &models.Table{
		Headers: []string{"TIPO DE UNIDAD"},
		Rows:    [][]string{{"TRACTO"}},
	}

	eng := New(provider, ruleSet, 1, time.Second, zap.NewNop())
	enriched, err := eng.Enrich(context.Background(), table)
	require.NoError(t, err)
	assert.Equal(t, "VALOR CONVENIDO", enriched[0]["DANOS MATERIALES LIMITES"])

	// One classification plus one generation per coverage kind. Each call
	// carries its own deadline, so a slow classification never eats into the
	// generation budget: every generation deadline sits after the
	// classification deadline.
	require.Len(t, rec.deadlines, 1+len(ruleSet.Assignment.CoverageKinds))
	for _, d := range rec.deadlines[1:] {
		assert.True(t, d.After(rec.deadlines[0]))
	}
}

func TestExtractVehicleInfo(t *testing.T) {
	headers := []string{"TIPO DE UNIDAD", "Desci.", "MOD", "NO.SERIE"}
	values := map[string]string{
		"TIPO DE UNIDAD": "TRACTO",
		"Desci.":         "TR FREIGHTLINER NEW CASCADIA",
		"MOD":            "2022",
		"NO.SERIE":       "3AKJHPDV7NSNC4904",
	}

	info := ExtractVehicleInfo(headers, values, "TR FREIGHTLINER NEW CASCADIA")
	assert.Equal(t, "2022", info.Model)
	assert.Empty(t, info.Year, "no year column and no year in description")

	info = ExtractVehicleInfo(headers, values, "TR KENWORTH T680 2018")
	assert.Equal(t, "2018", info.Year, "year extracted from description")
}

func TestExtractVehicleInfoFirstMatchWins(t *testing.T) {
	headers := []string{"MODELO", "MOD ANTIGUO"}
	values := map[string]string{
		"MODELO":      "CASCADIA",
		"MOD ANTIGUO": "VIEJO",
	}

	info := ExtractVehicleInfo(headers, values, "TR FREIGHTLINER")
	assert.Equal(t, "CASCADIA", info.Model, "first matching column in header order wins")
}
