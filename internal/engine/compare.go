package engine

import (
	"fmt"

	"github.com/piwi3910/guillocut/internal/model"
)

// ComparisonScenario defines a named set of settings to compare.
type ComparisonScenario struct {
	Name   string
	Config model.PackConfig
}

// ComparisonResult holds the packing result and computed statistics for a
// single scenario. Err is set when the scenario's run failed.
type ComparisonResult struct {
	Scenario     ComparisonScenario
	Result       model.PackResult
	BinsUsed     int
	Placed       int
	WastePercent float64
	Err          error
}

// CompareScenarios packs the same input once per scenario and returns the
// results in scenario order. Each run is independent.
func CompareScenarios(in model.Input, scenarios []ComparisonScenario) []ComparisonResult {
	results := make([]ComparisonResult, 0, len(scenarios))

	for _, scenario := range scenarios {
		result, err := New(scenario.Config).Pack(in)
		if err != nil {
			results = append(results, ComparisonResult{Scenario: scenario, Err: err})
			continue
		}
		results = append(results, ComparisonResult{
			Scenario:     scenario,
			Result:       result,
			BinsUsed:     len(result.Bins),
			Placed:       result.PlacementCount(),
			WastePercent: 100.0 - result.TotalEfficiency(),
		})
	}

	return results
}

// BestScenario returns the index of the successful result using the fewest
// bins, breaking ties by lower waste and then by scenario order. It returns
// -1 when every scenario failed.
func BestScenario(results []ComparisonResult) int {
	best := -1
	for i, r := range results {
		if r.Err != nil {
			continue
		}
		if best < 0 {
			best = i
			continue
		}
		b := results[best]
		if r.BinsUsed < b.BinsUsed || (r.BinsUsed == b.BinsUsed && r.WastePercent < b.WastePercent) {
			best = i
		}
	}
	return best
}

// BuildDefaultScenarios generates a set of comparison scenarios based on the
// given config, varying one heuristic at a time to show what-if alternatives.
func BuildDefaultScenarios(base model.PackConfig) []ComparisonScenario {
	base, err := base.Normalized()
	if err != nil {
		base = model.DefaultPackConfig()
	}

	scenarios := []ComparisonScenario{
		{Name: "Current Settings", Config: base},
	}

	// Every other sort key, same direction
	for _, s := range model.SortStrategies() {
		if s == base.SortStrategy {
			continue
		}
		alt := base
		alt.SortStrategy = s
		scenarios = append(scenarios, ComparisonScenario{
			Name:   fmt.Sprintf("Sort %s %s", s, alt.SortDirection),
			Config: alt,
		})
	}

	// Reverse direction on the current sort key
	flipped := base
	flipped.SortDirection = model.SortDesc
	if base.SortDirection == model.SortDesc {
		flipped.SortDirection = model.SortAsc
	}
	scenarios = append(scenarios, ComparisonScenario{
		Name:   fmt.Sprintf("Sort %s %s", flipped.SortStrategy, flipped.SortDirection),
		Config: flipped,
	})

	for _, s := range model.SplitStrategies() {
		if s == base.SplitStrategy {
			continue
		}
		alt := base
		alt.SplitStrategy = s
		scenarios = append(scenarios, ComparisonScenario{
			Name:   fmt.Sprintf("Split %s", s),
			Config: alt,
		})
	}

	for _, s := range model.SelectionStrategies() {
		if s == base.SelectionStrategy {
			continue
		}
		alt := base
		alt.SelectionStrategy = s
		scenarios = append(scenarios, ComparisonScenario{
			Name:   fmt.Sprintf("Select %s", s),
			Config: alt,
		})
	}

	return scenarios
}
