// Package engine implements per-row vehicle enrichment: classification via
// the external collaborator and coverage value lookup/generation.
package engine

import (
	"context"
	"strings"
	"time"

	"github.com/largefullmoon/backend-excel-ai-modifier/pkg/enrich/classify"
	"github.com/largefullmoon/backend-excel-ai-modifier/pkg/enrich/models"
	"github.com/largefullmoon/backend-excel-ai-modifier/pkg/enrich/rules"
	"github.com/largefullmoon/backend-excel-ai-modifier/pkg/enrich/sheet"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Engine enriches the rows of a parsed table using a rule set and the
// classification collaborators.
type Engine struct {
	provider *classify.Provider
	rules    *rules.RuleSet
	// workers bounds the number of concurrent collaborator calls.
	workers int
	// callTimeout bounds each collaborator call; on expiry the call's
	// fallback path produces the static default instead of blocking.
	callTimeout time.Duration
	log         *zap.Logger
}

// New creates an Engine. workers and callTimeout fall back to safe values
// when non-positive.
func New(provider *classify.Provider, ruleSet *rules.RuleSet, workers int, callTimeout time.Duration, log *zap.Logger) *Engine {
	if workers <= 0 {
		workers = 5
	}
	if callTimeout <= 0 {
		callTimeout = 30 * time.Second
	}
	return &Engine{
		provider:    provider,
		rules:       ruleSet,
		workers:     workers,
		callTimeout: callTimeout,
		log:         log,
	}
}

// Enrich classifies every data row of the table and fills in the configured
// coverage columns, returning one value map per input row in input order.
//
// Reference column resolution happens once, upfront; its failure aborts the
// whole enrichment since no row can be processed without it. After that no
// row failure aborts: rows with a blank or null-marker reference value are
// skipped with their new columns left blank, and per-row collaborator errors
// are logged and skipped the same way.
func (e *Engine) Enrich(ctx context.Context, table *models.Table) ([]map[string]string, error) {
	refColumn, err := sheet.ResolveColumn(table.Headers, e.rules.Assignment.ReferenceColumn, sheet.DefaultPartialMatchSets())
	if err != nil {
		return nil, err
	}
	e.log.Info("using reference column for vehicle classification",
		zap.String("column", refColumn))

	categories := e.rules.CategoryNames()

	enriched := make([]map[string]string, len(table.Rows))
	for i := range table.Rows {
		values := table.Row(i)
		for _, col := range e.rules.Assignment.ColumnsToAdd {
			values[col] = ""
		}
		enriched[i] = values
	}

	// Rows are independent and I/O-bound; dispatch them through a bounded
	// pool. Results land in the index-addressed slice so output order always
	// matches input row order.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i := range enriched {
		g.Go(func() error {
			e.enrichRow(gctx, i, refColumn, categories, table.Headers, enriched[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return enriched, nil
}

// enrichRow fills the coverage columns of one row in place. All failures are
// logged and leave the row's new columns blank.
func (e *Engine) enrichRow(ctx context.Context, row int, refColumn string, categories []string, headers []string, values map[string]string) {
	description := strings.TrimSpace(values[refColumn])
	switch strings.ToLower(description) {
	case "", "nan", "none", "null":
		e.log.Warn("empty vehicle description, skipping row", zap.Int("row", row))
		return
	}

	category, err := e.classify(ctx, description, categories)
	if err != nil {
		e.log.Error("classification failed, skipping row",
			zap.Int("row", row), zap.String("description", description), zap.Error(err))
		return
	}
	if _, known := e.rules.Categories[category]; !known {
		e.log.Warn("classifier returned unknown category, using default",
			zap.Int("row", row),
			zap.String("category", category),
			zap.String("default", e.rules.DefaultCategory))
		category = e.rules.DefaultCategory
	}
	e.log.Info("classified vehicle",
		zap.Int("row", row),
		zap.String("description", description),
		zap.String("category", category))

	vehicle := ExtractVehicleInfo(headers, values, description)
	vehicle.Category = category

	coverages := e.rules.Categories[category].Coverages
	for _, kind := range e.rules.Assignment.CoverageKinds {
		if _, ok := coverages[kind]; !ok {
			continue
		}
		generated, err := e.generate(ctx, vehicle, kind)
		if err != nil {
			e.log.Error("value generation failed",
				zap.Int("row", row), zap.String("coverage", kind), zap.Error(err))
			continue
		}
		values[kind+" LIMITES"] = generated.Limites
		values[kind+" DEDUCIBLES"] = generated.Deducibles
	}
}

// classify runs one classification call under its own timeout. Each
// collaborator call gets the full budget: a slow classification must not eat
// into the value-generation calls that follow it.
func (e *Engine) classify(ctx context.Context, description string, categories []string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, e.callTimeout)
	defer cancel()
	return e.provider.Classifier.Classify(callCtx, description, categories)
}

// generate runs one value-generation call under its own timeout.
func (e *Engine) generate(ctx context.Context, vehicle models.VehicleInfo, coverageKind string) (models.InsuranceValues, error) {
	callCtx, cancel := context.WithTimeout(ctx, e.callTimeout)
	defer cancel()
	return e.provider.Values.Generate(callCtx, vehicle, coverageKind)
}
