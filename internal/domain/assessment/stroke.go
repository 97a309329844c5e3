package assessment

import (
	s "github.com/ehr/healthrisk/internal/platform/scoring"
)

// StrokeModel estimates 10-year stroke risk as a percentage.
func StrokeModel() *s.Model {
	return &s.Model{
		Type:  ModuleStroke,
		Title: "10-year stroke risk",
		Scale: s.ScalePercent,
		Schema: s.Schema{
			s.Numeric("age", 18, 100, true),
			s.Categorical("sex", false, sexValues...),
			s.Boolean("hypertension"),
			s.Boolean("atrialFibrillation"),
			s.Boolean("diabetes"),
			s.Boolean("priorTIA"),
			s.Boolean("highCholesterol"),
			s.Categorical("smoking", false, smokingValues...),
			s.Categorical("alcohol", false, alcoholValues...),
			s.Categorical("physicalActivity", false, activityValues...),
			s.Numeric("bmi", 12, 70, false),
		},
		Table: s.Table{
			Baseline: 1.0,
			Ceiling:  60,
			Rules: []s.Rule{
				s.Add("age-55-64", "age", 2, s.Between("age", 55, 65), "stroke risk doubles each decade after 55"),
				s.Add("age-65-74", "age", 5, s.Between("age", 65, 75), "age 65-74 adds substantial baseline risk"),
				s.Add("age-75plus", "age", 9, s.AtLeast("age", 75), "age 75 and over adds the most baseline risk"),
				s.Add("prior-tia", "priorTIA", 8, s.True("priorTIA"), "a prior transient ischaemic attack is a warning event").Flagged(),
				s.Add("high-cholesterol", "highCholesterol", 1, s.True("highCholesterol"), "high cholesterol contributes to carotid disease"),
				s.Add("obesity", "bmi", 1, s.AtLeast("bmi", 30), "obesity raises blood pressure"),
				s.Add("activity-sedentary", "physicalActivity", 1, s.Equals("physicalActivity", "sedentary"), "inactivity raises vascular risk"),
				s.Add("alcohol-heavy", "alcohol", 1.5, s.Equals("alcohol", "heavy"), "heavy drinking raises blood pressure and bleeding risk").Flagged(),
				s.Mul("hypertension", "hypertension", 2, s.True("hypertension"), "hypertension is the leading stroke risk factor").Flagged(),
				s.Mul("afib", "atrialFibrillation", 1.5, s.And(s.True("atrialFibrillation"), s.Below("age", 65)), "atrial fibrillation under 65"),
				s.Mul("afib-65plus", "atrialFibrillation", 2.5, s.And(s.True("atrialFibrillation"), s.AtLeast("age", 65)), "atrial fibrillation at 65 or older sharply raises embolic risk").Flagged(),
				s.Mul("diabetes", "diabetes", 1.5, s.True("diabetes"), "diabetes damages small cerebral vessels"),
				s.Mul("smoking-current", "smoking", 1.8, s.Equals("smoking", "current"), "current smoking nearly doubles stroke risk").Flagged(),
			},
		},
		Classifier: s.MustClassifier(ModuleStroke,
			s.Band{Label: "low", Upper: 5},
			s.Band{Label: "moderate", Upper: 15},
			s.Band{Label: "high"},
		),
		Advice: s.Advice{
			Baseline: []string{
				lifestyleActivity,
				"Learn the FAST signs of stroke (Face, Arms, Speech, Time to call emergency services).",
				"Limit salt to under 6 g a day to help control blood pressure.",
			},
			ByRule: map[string]string{
				"prior-tia":       "Make sure you are on secondary prevention treatment after your TIA.",
				"alcohol-heavy":   "Cut down on alcohol to reduce blood pressure and bleeding risk.",
				"hypertension":    "Keep blood pressure below the target agreed with your doctor.",
				"afib-65plus":     "Ask your doctor whether anticoagulation is right for your atrial fibrillation.",
				"smoking-current": "Quitting smoking lowers stroke risk within a few years; ask about support to quit.",
			},
			Urgent: map[string][]string{
				"high": {"Seek a stroke-prevention review with a neurologist or cardiologist."},
			},
			UrgentBands: 1,
		},
		Population: s.Population{Mean: 5, SD: 5},
	}
}
