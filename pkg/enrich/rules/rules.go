// Package rules defines the static coverage rule table driving enrichment.
//
// The rule set is a closed, category-keyed lookup loaded once at process
// start and never mutated afterwards.
package rules

import "sort"

// Coverage is the limit/deductible pair configured for one coverage kind.
type Coverage struct {
	// Limites is the configured coverage limit text.
	Limites string `json:"LIMITES"`
	// Deducibles is the configured deductible text.
	Deducibles string `json:"DEDUCIBLES"`
}

// CategoryRules holds the coverages configured for one vehicle category.
type CategoryRules struct {
	// TipoCobertura is the overall coverage tier name (e.g., AMPLIA).
	TipoCobertura string `json:"tipo_cobertura"`
	// Coverages maps coverage kind (e.g., "DANOS MATERIALES") to its values.
	Coverages map[string]Coverage `json:"coberturas"`
}

// Assignment declares which columns enrichment adds and which logical column
// drives per-row classification.
type Assignment struct {
	// ColumnsToAdd lists the new column labels, in append order.
	ColumnsToAdd []string `json:"columnas_a_agregar"`
	// ReferenceColumn is the logical column whose value is classified.
	ReferenceColumn string `json:"columna_referencia"`
	// CoverageKinds lists the coverage kinds written per row, in order.
	CoverageKinds []string `json:"coverage_kinds"`
}

// RuleSet is the full enrichment rule table.
type RuleSet struct {
	// Categories maps category name to its coverage rules.
	Categories map[string]CategoryRules `json:"coberturas_por_tipo"`
	// Assignment carries the column-mapping configuration.
	Assignment Assignment `json:"reglas_asignacion"`
	// DefaultCategory is used when classification returns a name outside
	// Categories.
	DefaultCategory string `json:"default_category"`
}

// CategoryNames returns the known category names in sorted order.
func (r *RuleSet) CategoryNames() []string {
	names := make([]string, 0, len(r.Categories))
	for name := range r.Categories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Default returns the built-in commercial fleet rule set: truck tractors
// (TRACTOS) and towed equipment (REMOLQUES), each with physical damage and
// total theft coverages.
func Default() *RuleSet {
	return &RuleSet{
		Categories: map[string]CategoryRules{
			"TRACTOS": {
				TipoCobertura: "AMPLIA",
				Coverages: map[string]Coverage{
					"DANOS MATERIALES": {Limites: "VALOR CONVENIDO", Deducibles: "10 %"},
					"ROBO TOTAL":       {Limites: "VALOR CONVENIDO", Deducibles: "10 %"},
					"RESPONSABILIDAD CIVIL POR DANOS A TERCEROS":         {Limites: "$US 6 000 000", Deducibles: "N/A"},
					"RESPONSABILIDAD CIVIL POR FALLECIMIENTO A PERSONAS": {Limites: "$US 2 000 000", Deducibles: "N/A"},
				},
			},
			"REMOLQUES": {
				TipoCobertura: "AMPLIA",
				Coverages: map[string]Coverage{
					"DANOS MATERIALES": {Limites: "VALOR CONVENIDO", Deducibles: "5 %"},
					"ROBO TOTAL":       {Limites: "VALOR CONVENIDO", Deducibles: "5 %"},
				},
			},
		},
		Assignment: Assignment{
			ColumnsToAdd: []string{
				"DANOS MATERIALES LIMITES",
				"DANOS MATERIALES DEDUCIBLES",
				"ROBO TOTAL LIMITES",
				"ROBO TOTAL DEDUCIBLES",
			},
			ReferenceColumn: "TIPO DE UNIDAD",
			CoverageKinds:   []string{"DANOS MATERIALES", "ROBO TOTAL"},
		},
		DefaultCategory: "TRACTOS",
	}
}
