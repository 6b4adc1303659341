package engine

import (
	"regexp"
	"strings"

	"github.com/largefullmoon/backend-excel-ai-modifier/pkg/enrich/models"
)

// modelKeywords mark header labels likely holding the vehicle model or year.
var modelKeywords = []string{"MOD", "YEAR", "AÑO", "MODELO"}

var yearPattern = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// ExtractVehicleInfo pulls auxiliary year/model fields for one row. This is
// a best-effort heuristic: headers are scanned in physical order and the
// first label containing a model/year keyword wins. When no year column is
// found, a four-digit year embedded in the description is used instead.
func ExtractVehicleInfo(headers []string, values map[string]string, description string) models.VehicleInfo {
	info := models.VehicleInfo{Description: description}

	for _, header := range headers {
		upper := strings.ToUpper(header)
		for _, kw := range modelKeywords {
			if strings.Contains(upper, kw) {
				if info.Model == "" {
					info.Model = strings.TrimSpace(values[header])
				}
				break
			}
		}
		if info.Year == "" && (strings.Contains(upper, "YEAR") || strings.Contains(upper, "AÑO")) {
			info.Year = strings.TrimSpace(values[header])
		}
	}

	if info.Year == "" {
		info.Year = yearPattern.FindString(description)
	}
	return info
}
