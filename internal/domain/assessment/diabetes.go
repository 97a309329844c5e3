package assessment

import (
	s "github.com/ehr/healthrisk/internal/platform/scoring"
)

// DiabetesModel estimates 10-year type 2 diabetes risk as a probability in
// [0, 1].
func DiabetesModel() *s.Model {
	return &s.Model{
		Type:  ModuleDiabetes,
		Title: "Type 2 diabetes risk",
		Scale: s.ScaleFraction,
		Schema: s.Schema{
			s.Numeric("age", 18, 100, true),
			s.Numeric("bmi", 12, 70, true),
			s.Categorical("sex", false, sexValues...),
			s.Numeric("waistCm", 40, 200, false),
			s.Boolean("familyHistory"),
			s.Boolean("gestationalDiabetes"),
			s.Boolean("hypertension"),
			s.Boolean("highRiskEthnicity"),
			s.Categorical("physicalActivity", false, activityValues...),
			s.Numeric("fastingGlucose", 50, 300, false),
			s.Numeric("hba1c", 3, 15, false),
		},
		Table: s.Table{
			Baseline: 0.01,
			Ceiling:  0.8,
			Rules: []s.Rule{
				s.Add("age-40s", "age", 0.01, s.Between("age", 40, 50), "insulin sensitivity declines after 40"),
				s.Add("age-50s", "age", 0.03, s.Between("age", 50, 60), "age 50-59 adds baseline risk"),
				s.Add("age-60plus", "age", 0.05, s.AtLeast("age", 60), "age 60 and over adds the most baseline risk"),
				s.Add("waist-male", "waistCm", 0.02, s.And(s.AtLeast("waistCm", 102), s.Equals("sex", "male")), "central obesity in men (waist >= 102 cm)").Flagged(),
				s.Add("waist-female", "waistCm", 0.02, s.And(s.AtLeast("waistCm", 88), s.Equals("sex", "female")), "central obesity in women (waist >= 88 cm)").Flagged(),
				s.Add("hypertension", "hypertension", 0.02, s.True("hypertension"), "hypertension clusters with insulin resistance"),
				s.Add("activity-sedentary", "physicalActivity", 0.02, s.Equals("physicalActivity", "sedentary"), "inactivity reduces glucose uptake").Flagged(),
				s.Add("glucose-impaired", "fastingGlucose", 0.1, s.Between("fastingGlucose", 100, 126), "impaired fasting glucose (prediabetes)").Flagged(),
				s.Add("glucose-diabetic", "fastingGlucose", 0.3, s.AtLeast("fastingGlucose", 126), "fasting glucose in the diabetic range").Flagged(),
				s.Add("hba1c-prediabetes", "hba1c", 0.1, s.Between("hba1c", 5.7, 6.5), "HbA1c in the prediabetes range").Flagged(),
				s.Add("hba1c-diabetic", "hba1c", 0.35, s.AtLeast("hba1c", 6.5), "HbA1c in the diabetic range").Flagged(),
				s.Mul("bmi-overweight", "bmi", 1.5, s.Between("bmi", 25, 30), "overweight raises insulin resistance"),
				s.Mul("bmi-obese", "bmi", 2.2, s.Between("bmi", 30, 35), "obesity strongly raises insulin resistance").Flagged(),
				s.Mul("bmi-severe", "bmi", 3, s.AtLeast("bmi", 35), "severe obesity is the dominant modifiable risk factor").Flagged(),
				s.Mul("family-history", "familyHistory", 1.6, s.True("familyHistory"), "a parent or sibling with type 2 diabetes").Flagged(),
				s.Mul("gestational", "gestationalDiabetes", 1.5, s.True("gestationalDiabetes"), "prior gestational diabetes"),
				s.Mul("ethnicity", "highRiskEthnicity", 1.3, s.True("highRiskEthnicity"), "higher-prevalence population group"),
			},
		},
		Classifier: s.MustClassifier(ModuleDiabetes,
			s.Band{Label: "low", Upper: 0.05},
			s.Band{Label: "elevated", Upper: 0.15},
			s.Band{Label: "moderate", Upper: 0.30},
			s.Band{Label: "high"},
		),
		Advice: s.Advice{
			Baseline: []string{
				lifestyleActivity,
				"Choose whole grains, vegetables and water over refined carbohydrates and sugary drinks.",
			},
			ByRule: map[string]string{
				"waist-male":         "Reducing waist circumference improves insulin sensitivity; focus on diet and activity.",
				"waist-female":       "Reducing waist circumference improves insulin sensitivity; focus on diet and activity.",
				"activity-sedentary": "Break up long periods of sitting with short walks every 30 minutes.",
				"glucose-impaired":   "Repeat fasting glucose testing within a year to track prediabetes.",
				"glucose-diabetic":   "Confirm the elevated fasting glucose with your doctor as soon as possible.",
				"hba1c-prediabetes":  "Join a structured lifestyle program to lower your HbA1c.",
				"hba1c-diabetic":     "Confirm the elevated HbA1c with your doctor as soon as possible.",
				"bmi-obese":          "A 5-7% weight loss can cut diabetes risk by more than half.",
				"bmi-severe":         "Ask about medically supervised weight management options.",
				"family-history":     "Because of your family history, ask for regular blood sugar screening.",
			},
			Urgent: map[string][]string{
				"moderate": {"Ask your provider about a diabetes prevention program and HbA1c testing."},
				"high":     {"Arrange an HbA1c or fasting glucose test with your doctor within the next month."},
			},
			UrgentBands: 2,
		},
		Population: s.Population{Mean: 0.08, SD: 0.07},
	}
}
