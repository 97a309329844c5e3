package assessment

import (
	s "github.com/ehr/healthrisk/internal/platform/scoring"
)

// Cancer sub-types reported in the breakdown.
const (
	CancerBreast     = "breast"
	CancerColorectal = "colorectal"
	CancerLung       = "lung"
	CancerSkin       = "skin"
)

const cancerSubTypeCeiling = 40

// CancerModel estimates lifetime cancer risk across four concurrent sub-types.
// Each sub-type is clamped on its own; the overall score is the clamped sum.
func CancerModel() *s.Model {
	return &s.Model{
		Type:  ModuleCancer,
		Title: "Cancer risk",
		Scale: s.ScalePercent,
		Schema: s.Schema{
			s.Numeric("age", 18, 100, true),
			s.Categorical("sex", true, sexValues...),
			s.Categorical("smoking", false, smokingValues...),
			s.Numeric("packYears", 0, 150, false),
			s.Categorical("alcohol", false, alcoholValues...),
			s.Categorical("physicalActivity", false, activityValues...),
			s.Categorical("diet", false, "balanced", "processed"),
			s.Numeric("bmi", 12, 70, false),
			s.Boolean("familyHistoryBreast"),
			s.Boolean("familyHistoryColorectal"),
			s.Boolean("brcaMutation"),
			s.Boolean("hormoneTherapy"),
			s.Boolean("inflammatoryBowelDisease"),
			s.Boolean("radonExposure"),
			s.Boolean("asbestosExposure"),
			s.Categorical("sunExposure", false, "low", "moderate", "high"),
			s.Boolean("sunburnHistory"),
			s.Boolean("fairSkin"),
		},
		Table: s.Table{Ceiling: 100},
		SubTypes: []s.SubModel{
			{Name: CancerBreast, Table: s.Table{
				Baseline: 1,
				Ceiling:  cancerSubTypeCeiling,
				Rules: []s.Rule{
					s.Add("breast-age-50plus", "age", 3, s.AtLeast("age", 50), "breast cancer incidence rises after 50"),
					s.Add("breast-alcohol-heavy", "alcohol", 1.5, s.Equals("alcohol", "heavy"), "alcohol raises estrogen levels"),
					s.Add("breast-hormone-therapy", "hormoneTherapy", 1.5, s.True("hormoneTherapy"), "combined hormone therapy raises breast cancer risk"),
					s.Add("breast-obesity", "bmi", 1, s.And(s.AtLeast("bmi", 30), s.Equals("sex", "female")), "post-menopausal obesity raises estrogen exposure"),
					s.Mul("breast-family-history", "familyHistoryBreast", 2, s.True("familyHistoryBreast"), "a first-degree relative with breast cancer").Flagged(),
					s.Mul("breast-brca", "brcaMutation", 5, s.True("brcaMutation"), "a BRCA1/2 mutation sharply raises breast cancer risk").Flagged(),
					s.Mul("breast-male", "sex", 0.1, s.Equals("sex", "male"), "breast cancer is rare in men"),
				},
			}},
			{Name: CancerColorectal, Table: s.Table{
				Baseline: 1,
				Ceiling:  cancerSubTypeCeiling,
				Rules: []s.Rule{
					s.Add("colorectal-age-50plus", "age", 2, s.AtLeast("age", 50), "colorectal incidence rises after 50"),
					s.Add("colorectal-age-65plus", "age", 2, s.AtLeast("age", 65), "further increase after 65"),
					s.Add("colorectal-diet", "diet", 1.5, s.Equals("diet", "processed"), "processed and red meat intake").Flagged(),
					s.Add("colorectal-sedentary", "physicalActivity", 1, s.Equals("physicalActivity", "sedentary"), "inactivity slows bowel transit"),
					s.Add("colorectal-smoking", "smoking", 1, s.Equals("smoking", "current"), "smoking raises polyp formation"),
					s.Add("colorectal-obesity", "bmi", 1, s.AtLeast("bmi", 30), "obesity is linked to colorectal cancer"),
					s.Mul("colorectal-family-history", "familyHistoryColorectal", 2, s.True("familyHistoryColorectal"), "a first-degree relative with colorectal cancer").Flagged(),
					s.Mul("colorectal-ibd", "inflammatoryBowelDisease", 2.5, s.True("inflammatoryBowelDisease"), "chronic bowel inflammation").Flagged(),
				},
			}},
			{Name: CancerLung, Table: s.Table{
				Baseline: 0.5,
				Ceiling:  cancerSubTypeCeiling,
				Rules: []s.Rule{
					s.Add("lung-pack-years", "packYears", 5, s.AtLeast("packYears", 20), "20 or more pack-years of smoking").Flagged(),
					s.Add("lung-age-55plus", "age", 1.5, s.AtLeast("age", 55), "lung cancer incidence rises after 55"),
					s.Add("lung-radon", "radonExposure", 2, s.True("radonExposure"), "residential radon is the second cause of lung cancer").Flagged(),
					s.Add("lung-asbestos", "asbestosExposure", 3, s.True("asbestosExposure"), "occupational asbestos exposure").Flagged(),
					s.Mul("lung-smoking-current", "smoking", 10, s.Equals("smoking", "current"), "current smoking multiplies lung cancer risk about tenfold").Flagged(),
					s.Mul("lung-smoking-former", "smoking", 3, s.Equals("smoking", "former"), "former smokers keep elevated risk for decades"),
				},
			}},
			{Name: CancerSkin, Table: s.Table{
				Baseline: 1,
				Ceiling:  cancerSubTypeCeiling,
				Rules: []s.Rule{
					s.Add("skin-sun-high", "sunExposure", 3, s.Equals("sunExposure", "high"), "high cumulative UV exposure").Flagged(),
					s.Add("skin-sunburn", "sunburnHistory", 2, s.True("sunburnHistory"), "blistering sunburns raise melanoma risk"),
					s.Add("skin-age-50plus", "age", 1, s.AtLeast("age", 50), "skin cancer accumulates with age"),
					s.Mul("skin-fair", "fairSkin", 2, s.True("fairSkin"), "fair skin burns easily").Flagged(),
				},
			}},
		},
		Classifier: s.MustClassifier(ModuleCancer,
			s.Band{Label: "low", Upper: 10},
			s.Band{Label: "moderate", Upper: 25},
			s.Band{Label: "high", Upper: 45},
			s.Band{Label: "very-high"},
		),
		Advice: s.Advice{
			Baseline: []string{
				"Keep up to date with the cancer screening recommended for your age and sex.",
				"Avoid tobacco and limit alcohol.",
				lifestyleActivity,
			},
			ByRule: map[string]string{
				"breast-family-history":     "Ask whether earlier or more frequent breast screening is appropriate for you.",
				"breast-brca":               "Discuss enhanced breast surveillance and risk-reducing options with a genetics clinic.",
				"colorectal-diet":           "Cut back on processed and red meat and increase dietary fibre.",
				"colorectal-family-history": "Ask about starting colorectal screening earlier because of your family history.",
				"colorectal-ibd":            "Follow the surveillance colonoscopy schedule recommended for inflammatory bowel disease.",
				"lung-pack-years":           "Ask whether you qualify for low-dose CT lung cancer screening.",
				"lung-radon":                "Test your home for radon and mitigate if levels are high.",
				"lung-asbestos":             "Tell your doctor about your asbestos exposure history.",
				"lung-smoking-current":      "Quitting smoking at any age lowers lung cancer risk; ask about cessation support.",
				"skin-sun-high":             "Use broad-spectrum sunscreen and protective clothing, and avoid midday sun.",
				"skin-fair":                 "Check your skin monthly and see a dermatologist about any changing moles.",
			},
			Urgent: map[string][]string{
				"high":      {"Discuss an individualized cancer screening plan with your provider."},
				"very-high": {"Request a referral to a cancer genetics or oncology risk clinic."},
			},
			UrgentBands: 2,
		},
		Population: s.Population{Mean: 12, SD: 8},
	}
}
