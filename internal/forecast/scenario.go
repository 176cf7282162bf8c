package forecast

// Impact labels a scenario's direction relative to the base forecast.
type Impact string

const (
	ImpactPositive Impact = "POSITIVE"
	ImpactNegative Impact = "NEGATIVE"
	ImpactNeutral  Impact = "NEUTRAL"
)

// Scenario is one weighted alternative outcome of a point forecast.
type Scenario struct {
	Name           string             `json:"name"`
	Probability    float64            `json:"probability"`
	PredictedValue float64            `json:"predictedValue"`
	Impact         Impact             `json:"impact"`
	Assumptions    map[string]float64 `json:"assumptions"`
}

// Scenario multipliers and weights are fixed constants, not fitted from
// data. This is an intentional simplification: the three-way split gives
// planners a stable envelope around any forecast, and the probabilities
// always sum to exactly 1.0.
var scenarioTiers = []struct {
	name        string
	multiplier  float64
	probability float64
	impact      Impact
	assumptions map[string]float64
}{
	{
		name:        "Optimistic",
		multiplier:  1.15,
		probability: 0.2,
		impact:      ImpactPositive,
		assumptions: map[string]float64{
			"growthRate":      0.15,
			"retentionRate":   0.95,
			"acquisitionRate": 0.10,
		},
	},
	{
		name:        "Most Likely",
		multiplier:  1.0,
		probability: 0.6,
		impact:      ImpactNeutral,
		assumptions: map[string]float64{
			"growthRate":      0.05,
			"retentionRate":   0.85,
			"acquisitionRate": 0.05,
		},
	},
	{
		name:        "Pessimistic",
		multiplier:  0.8,
		probability: 0.2,
		impact:      ImpactNegative,
		assumptions: map[string]float64{
			"growthRate":      -0.05,
			"retentionRate":   0.70,
			"acquisitionRate": 0.02,
		},
	},
}

// ExpandScenarios widens a forecast into its three scenarios. Each call
// returns fresh copies - callers may mutate the assumption maps freely.
func ExpandScenarios(f *Forecast) []Scenario {
	out := make([]Scenario, 0, len(scenarioTiers))
	for _, tier := range scenarioTiers {
		assumptions := make(map[string]float64, len(tier.assumptions))
		for k, v := range tier.assumptions {
			assumptions[k] = v
		}
		out = append(out, Scenario{
			Name:           tier.name,
			Probability:    tier.probability,
			PredictedValue: f.PredictedValue * tier.multiplier,
			Impact:         tier.impact,
			Assumptions:    assumptions,
		})
	}
	return out
}
