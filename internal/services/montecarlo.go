package services

import (
	"math"
	"math/rand/v2"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/commoditydesk/riskengine/internal/models"
)

// defaultSimulations is the Monte Carlo path count.
const defaultSimulations = 100_000

// monteCarloSeed fixes the random source so repeated runs over identical
// inputs produce identical VaR figures.
const monteCarloSeed = 42

// MonteCarloVaRResult is the simulated currency-scaled VaR of the book.
type MonteCarloVaRResult struct {
	PortfolioValue decimal.Decimal `json:"portfolio_value"`
	Simulations    int             `json:"simulations"`
	VaR95          decimal.Decimal `json:"var_95"`
	VaR99          decimal.Decimal `json:"var_99"`
}

// MonteCarloVaR estimates portfolio VaR by simulating correlated product
// returns from their historical means and covariance, aggregated with the
// book's position-value weights. Sampling is seeded, so identical inputs
// always yield identical results. When the covariance matrix has no Cholesky
// factor the estimate falls back to the historical weighted series.
func (s *VolatilityService) MonteCarloVaR(positions []models.Position, returnsByProduct map[string][]float64, simulations int) MonteCarloVaRResult {
	if simulations <= 0 {
		simulations = defaultSimulations
	}

	portfolioValue := decimal.Zero
	for _, pos := range positions {
		portfolioValue = portfolioValue.Add(positionValue(pos))
	}
	result := MonteCarloVaRResult{
		PortfolioValue: portfolioValue,
		Simulations:    simulations,
		VaR95:          decimal.Zero,
		VaR99:          decimal.Zero,
	}
	if portfolioValue.IsZero() || len(returnsByProduct) == 0 {
		return result
	}

	products := make([]string, 0, len(returnsByProduct))
	minLen := -1
	for product, series := range returnsByProduct {
		products = append(products, product)
		if minLen < 0 || len(series) < minLen {
			minLen = len(series)
		}
	}
	if minLen < 2 {
		return result
	}
	sort.Strings(products)

	series := make([][]float64, len(products))
	means := make([]float64, len(products))
	for i, product := range products {
		series[i] = returnsByProduct[product][:minLen]
		means[i] = mean(series[i])
	}
	cov := covarianceMatrix(series, means)

	lower, ok := cholesky(cov)
	if !ok {
		weighted := s.portfolioReturns(positions, returnsByProduct, portfolioValue)
		result.VaR95 = portfolioValue.Mul(decimal.NewFromFloat(VaRAt(weighted, 0.95)))
		result.VaR99 = portfolioValue.Mul(decimal.NewFromFloat(VaRAt(weighted, 0.99)))
		return result
	}

	weights := productWeights(positions, products, portfolioValue)
	rng := rand.New(rand.NewPCG(monteCarloSeed, monteCarloSeed))
	draws := make([]float64, len(products))
	simulated := make([]float64, simulations)
	for n := 0; n < simulations; n++ {
		for i := range draws {
			draws[i] = rng.NormFloat64()
		}
		total := 0.0
		for i := range products {
			r := means[i]
			for k := 0; k <= i; k++ {
				r += lower[i][k] * draws[k]
			}
			total += weights[i] * r
		}
		simulated[n] = total
	}

	result.VaR95 = portfolioValue.Mul(decimal.NewFromFloat(VaRAt(simulated, 0.95)))
	result.VaR99 = portfolioValue.Mul(decimal.NewFromFloat(VaRAt(simulated, 0.99)))
	return result
}

// productWeights is the signed value weight of each product in the book.
// Short positions carry negative weight.
func productWeights(positions []models.Position, products []string, portfolioValue decimal.Decimal) []float64 {
	index := make(map[string]int, len(products))
	for i, product := range products {
		index[product] = i
	}
	weights := make([]float64, len(products))
	for _, pos := range positions {
		i, ok := index[pos.Product]
		if !ok {
			continue
		}
		weight := positionValue(pos).Div(portfolioValue).InexactFloat64()
		if pos.Direction == models.DirectionShort {
			weight = -weight
		}
		weights[i] += weight
	}
	return weights
}

// covarianceMatrix is the sample covariance of the product return series.
// All series must share the same length.
func covarianceMatrix(series [][]float64, means []float64) [][]float64 {
	n := len(series)
	obs := len(series[0])
	cov := make([][]float64, n)
	for i := range cov {
		cov[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			sum := 0.0
			for t := 0; t < obs; t++ {
				sum += (series[i][t] - means[i]) * (series[j][t] - means[j])
			}
			c := sum / float64(obs-1)
			cov[i][j] = c
			cov[j][i] = c
		}
	}
	return cov
}

// cholesky returns the lower-triangular factor L with m = L Lᵀ, or false
// when m is not positive definite.
func cholesky(m [][]float64) ([][]float64, bool) {
	n := len(m)
	lower := make([][]float64, n)
	for i := range lower {
		lower[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			sum := m[i][j]
			for k := 0; k < j; k++ {
				sum -= lower[i][k] * lower[j][k]
			}
			if i == j {
				if sum <= 0 {
					return nil, false
				}
				lower[i][i] = math.Sqrt(sum)
			} else {
				lower[i][j] = sum / lower[j][j]
			}
		}
	}
	return lower, true
}
