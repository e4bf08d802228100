package analysis

import "fmt"

// DefaultConsumptionScale expresses consumption in millions of units.
const DefaultConsumptionScale = 1e6

// Consumption returns perCapita*population/scale. scale 0 means
// DefaultConsumptionScale.
func Consumption(population, perCapita, scale float64) float64 {
	if scale == 0 {
		scale = DefaultConsumptionScale
	}
	return perCapita * population / scale
}

// ConsumptionColumn applies Consumption element-wise.
func ConsumptionColumn(population, perCapita []float64, scale float64) ([]float64, error) {
	if len(population) != len(perCapita) {
		return nil, fmt.Errorf("consumption: %d population vs %d per-capita values: %w", len(population), len(perCapita), ErrLengthMismatch)
	}
	out := make([]float64, len(population))
	for i := range population {
		out[i] = Consumption(population[i], perCapita[i], scale)
	}
	return out, nil
}
