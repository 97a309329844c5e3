package assessment

import (
	s "github.com/ehr/healthrisk/internal/platform/scoring"
)

// DementiaModel estimates lifetime dementia risk as a percentage.
func DementiaModel() *s.Model {
	return &s.Model{
		Type:  ModuleDementia,
		Title: "Dementia risk",
		Scale: s.ScalePercent,
		Schema: s.Schema{
			s.Numeric("age", 18, 100, true),
			s.Boolean("familyHistory"),
			s.Count("apoe4Copies", 0, 2, false),
			s.Categorical("education", false, "low", "medium", "high"),
			s.Categorical("smoking", false, smokingValues...),
			s.Categorical("physicalActivity", false, activityValues...),
			s.Categorical("alcohol", false, alcoholValues...),
			s.Boolean("diabetes"),
			s.Boolean("hypertension"),
			s.Boolean("headInjury"),
			s.Boolean("depression"),
			s.Boolean("hearingLoss"),
			s.Boolean("socialIsolation"),
		},
		Table: s.Table{
			Baseline: 2.0,
			Ceiling:  90,
			Rules: []s.Rule{
				s.Add("age-60s", "age", 3, s.Between("age", 60, 70), "age 60-69 raises baseline dementia risk"),
				s.Add("age-70s", "age", 8, s.Between("age", 70, 80), "age 70-79 substantially raises dementia risk"),
				s.Add("age-80plus", "age", 15, s.AtLeast("age", 80), "age 80 and over is the strongest non-genetic risk factor"),
				s.Add("education-low", "education", 3, s.Equals("education", "low"), "fewer years of formal education reduce cognitive reserve").Flagged(),
				s.Add("education-high", "education", -1, s.Equals("education", "high"), "higher education builds cognitive reserve"),
				s.Add("smoking-current", "smoking", 2, s.Equals("smoking", "current"), "current smoking damages cerebral blood vessels").Flagged(),
				s.Add("smoking-former", "smoking", 1, s.Equals("smoking", "former"), "past smoking leaves residual vascular risk"),
				s.Add("activity-sedentary", "physicalActivity", 3, s.Equals("physicalActivity", "sedentary"), "physical inactivity is a modifiable dementia risk factor").Flagged(),
				s.Add("activity-active", "physicalActivity", -1, s.Equals("physicalActivity", "active"), "regular vigorous activity is protective"),
				s.Add("alcohol-heavy", "alcohol", 2, s.Equals("alcohol", "heavy"), "heavy drinking is neurotoxic").Flagged(),
				s.Add("diabetes", "diabetes", 3, s.True("diabetes"), "diabetes accelerates vascular brain injury"),
				s.Add("hypertension", "hypertension", 2, s.True("hypertension"), "midlife hypertension raises dementia risk").Flagged(),
				s.Add("head-injury", "headInjury", 2, s.True("headInjury"), "traumatic brain injury raises dementia risk"),
				s.Add("depression", "depression", 2, s.True("depression"), "depression is associated with later cognitive decline"),
				s.Add("hearing-loss", "hearingLoss", 2, s.True("hearingLoss"), "untreated hearing loss is the largest modifiable risk factor").Flagged(),
				s.Add("social-isolation", "socialIsolation", 2, s.True("socialIsolation"), "social isolation reduces cognitive stimulation"),
				s.Mul("family-history", "familyHistory", 1.5, s.True("familyHistory"), "a first-degree relative with dementia raises risk by half").Flagged(),
				s.Mul("apoe4-heterozygous", "apoe4Copies", 2.5, s.Between("apoe4Copies", 1, 2), "one APOE4 allele roughly 2-3x risk").Flagged(),
				s.Mul("apoe4-homozygous", "apoe4Copies", 5, s.AtLeast("apoe4Copies", 2), "two APOE4 alleles roughly 5x or more risk").Flagged(),
			},
		},
		Classifier: s.MustClassifier(ModuleDementia,
			s.Band{Label: "low", Upper: 10},
			s.Band{Label: "moderate", Upper: 25},
			s.Band{Label: "high"},
		),
		Advice: s.Advice{
			Baseline: []string{
				lifestyleActivity,
				"Keep your mind engaged with reading, puzzles, learning or social activities.",
				"Follow a Mediterranean-style diet rich in vegetables, fish and whole grains.",
			},
			ByRule: map[string]string{
				"education-low":      "Take up a cognitively stimulating hobby such as a course, language or instrument.",
				"smoking-current":    "Quitting smoking lowers dementia risk; ask about a cessation program.",
				"activity-sedentary": "Start with short daily walks and build toward regular moderate exercise.",
				"alcohol-heavy":      "Reduce alcohol to no more than 14 units per week.",
				"hypertension":       "Keep blood pressure under control with regular monitoring and treatment.",
				"hearing-loss":       "Have your hearing assessed and use hearing aids if recommended.",
				"family-history":     "Share your family history of dementia with your doctor for earlier screening.",
				"apoe4-heterozygous": "Consider genetic counseling and a neurological consultation to discuss your APOE4 status.",
				"apoe4-homozygous":   "Consider genetic counseling and a neurological consultation to discuss your APOE4 status.",
			},
			Urgent: map[string][]string{
				"high": {"Schedule a neurological consultation with a memory specialist for a comprehensive cognitive evaluation."},
			},
			UrgentBands: 1,
		},
		Population: s.Population{Mean: 7, SD: 6},
	}
}
