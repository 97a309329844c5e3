package assessment

import (
	s "github.com/ehr/healthrisk/internal/platform/scoring"
)

// CardiovascularModel estimates 10-year atherosclerotic cardiovascular risk as
// a percentage.
func CardiovascularModel() *s.Model {
	return &s.Model{
		Type:  ModuleCardiovascular,
		Title: "10-year cardiovascular risk",
		Scale: s.ScalePercent,
		Schema: s.Schema{
			s.Numeric("age", 30, 79, true),
			s.Categorical("sex", true, sexValues...),
			s.Numeric("systolicBP", 80, 220, false),
			s.Boolean("bpTreated"),
			s.Numeric("totalCholesterol", 100, 400, false),
			s.Numeric("hdlCholesterol", 20, 120, false),
			s.Categorical("smoking", false, smokingValues...),
			s.Boolean("diabetes"),
			s.Boolean("familyHistory"),
			s.Numeric("bmi", 12, 70, false),
			s.Categorical("physicalActivity", false, activityValues...),
		},
		Table: s.Table{
			Baseline: 1.0,
			Ceiling:  75,
			Rules: []s.Rule{
				s.Add("age-40s", "age", 1.5, s.Between("age", 40, 50), "risk rises steadily after 40"),
				s.Add("age-50s", "age", 4, s.Between("age", 50, 60), "age 50-59 adds substantial baseline risk"),
				s.Add("age-60s", "age", 8, s.Between("age", 60, 70), "age 60-69 adds high baseline risk"),
				s.Add("age-70plus", "age", 13, s.AtLeast("age", 70), "age 70 and over dominates baseline risk"),
				s.Add("sex-male", "sex", 2, s.Equals("sex", "male"), "men develop atherosclerosis earlier"),
				s.Add("cholesterol-borderline", "totalCholesterol", 1.5, s.Between("totalCholesterol", 200, 240), "borderline-high total cholesterol"),
				s.Add("cholesterol-high", "totalCholesterol", 3, s.AtLeast("totalCholesterol", 240), "high total cholesterol accelerates plaque formation").Flagged(),
				s.Add("hdl-low", "hdlCholesterol", 2, s.Below("hdlCholesterol", 40), "low HDL reduces cholesterol clearance").Flagged(),
				s.Add("hdl-high", "hdlCholesterol", -1, s.AtLeast("hdlCholesterol", 60), "high HDL is protective"),
				s.Add("obesity", "bmi", 2, s.AtLeast("bmi", 30), "obesity raises blood pressure and lipids").Flagged(),
				s.Add("activity-sedentary", "physicalActivity", 1.5, s.Equals("physicalActivity", "sedentary"), "inactivity worsens every metabolic risk factor").Flagged(),
				s.Mul("sbp-elevated", "systolicBP", 1.2, s.Between("systolicBP", 130, 140), "stage 1 systolic hypertension"),
				s.Mul("sbp-high", "systolicBP", 1.5, s.AtLeast("systolicBP", 140), "stage 2 systolic hypertension").Flagged(),
				s.Mul("bp-treated", "bpTreated", 1.2, s.True("bpTreated"), "treated hypertension signals long-standing vascular load"),
				s.Mul("smoking-current", "smoking", 2, s.Equals("smoking", "current"), "current smoking roughly doubles cardiovascular risk").Flagged(),
				s.Mul("smoking-former", "smoking", 1.2, s.Equals("smoking", "former"), "former smokers keep some excess risk"),
				s.Mul("diabetes", "diabetes", 1.8, s.True("diabetes"), "diabetes nearly doubles cardiovascular risk").Flagged(),
				s.Mul("family-history", "familyHistory", 1.4, s.True("familyHistory"), "premature cardiovascular disease in a first-degree relative"),
			},
		},
		Classifier: s.MustClassifier(ModuleCardiovascular,
			s.Band{Label: "low", Upper: 5},
			s.Band{Label: "borderline", Upper: 7.5},
			s.Band{Label: "intermediate", Upper: 20},
			s.Band{Label: "high"},
		),
		Advice: s.Advice{
			Baseline: []string{
				lifestyleActivity,
				"Eat a heart-healthy diet low in saturated fat, salt and added sugar.",
				"Check your blood pressure and cholesterol at least once a year.",
			},
			ByRule: map[string]string{
				"cholesterol-high":   "Discuss lipid-lowering options with your doctor.",
				"hdl-low":            "Raise HDL through regular aerobic exercise and replacing trans fats.",
				"obesity":            "Aim for gradual weight loss of 5-10% of body weight.",
				"activity-sedentary": "Build up to 30 minutes of brisk walking on most days.",
				"sbp-high":           "Have your blood pressure reviewed; treatment may be needed.",
				"smoking-current":    "Stopping smoking is the single most effective way to cut your risk; ask about support to quit.",
				"diabetes":           "Keep blood sugar within target ranges agreed with your care team.",
			},
			Urgent: map[string][]string{
				"intermediate": {"Discuss statin therapy and a coronary calcium score with your doctor."},
				"high":         {"Arrange a cardiology referral for a full cardiovascular risk review."},
			},
			UrgentBands: 2,
		},
		Population: s.Population{Mean: 6, SD: 5},
	}
}
