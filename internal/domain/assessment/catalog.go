package assessment

import (
	"github.com/ehr/healthrisk/internal/platform/scoring"
)

// ModuleType tags. The set is closed; persistence stores these verbatim.
const (
	ModuleCardiovascular = "cardiovascular"
	ModuleDiabetes       = "diabetes"
	ModuleDementia       = "dementia"
	ModuleStroke         = "stroke"
	ModuleCancer         = "cancer"
)

var validModules = map[string]bool{
	ModuleCardiovascular: true,
	ModuleDiabetes:       true,
	ModuleDementia:       true,
	ModuleStroke:         true,
	ModuleCancer:         true,
}

// IsValidModule reports whether tag is a known module type.
func IsValidModule(tag string) bool { return validModules[tag] }

// DefaultRegistry returns a registry with all five modules.
func DefaultRegistry() *scoring.Registry {
	return scoring.NewRegistry(
		CardiovascularModel(),
		DiabetesModel(),
		DementiaModel(),
		StrokeModel(),
		CancerModel(),
	)
}

// Vocabularies shared across module schemas.
var (
	smokingValues  = []string{"never", "former", "current"}
	activityValues = []string{"sedentary", "light", "moderate", "active"}
	alcoholValues  = []string{"none", "moderate", "heavy"}
	sexValues      = []string{"female", "male"}
)

const lifestyleActivity = "Stay physically active with at least 150 minutes of moderate exercise per week."
