// Package models defines data structures shared across the enrichment pipeline.
package models

// VehicleInfo describes a single fleet vehicle extracted from one data row.
type VehicleInfo struct {
	// Description is the raw reference-column value driving classification.
	Description string `json:"description"`
	// Category is the assigned coverage category (e.g., TRACTOS, REMOLQUES).
	Category string `json:"category"`
	// Year is the vehicle year when one could be extracted, otherwise empty.
	Year string `json:"year,omitempty"`
	// Model is the vehicle model when one could be extracted, otherwise empty.
	Model string `json:"model,omitempty"`
}

// InsuranceValues holds the limit/deductible pair produced for one coverage kind.
type InsuranceValues struct {
	// Limites is the coverage limit, kept as display text (e.g., "$US 120,000").
	Limites string `json:"LIMITES"`
	// Deducibles is the deductible, kept as display text (e.g., "10.0 %").
	Deducibles string `json:"DEDUCIBLES"`
}
