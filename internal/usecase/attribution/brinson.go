package attribution

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/simaogato/wealthflow-analytics/internal/domain"
)

// ReconciliationTolerance bounds |total effect - excess return|
var ReconciliationTolerance = decimal.New(1, -6)

// side holds one group's weight and return on both sides after merging
type side struct {
	portfolio domain.Segment
	benchmark domain.Segment
}

// Attribute decomposes the excess return of a portfolio over its benchmark per group
// Logic:
//  1. Merge portfolio and benchmark segments by group key; a group missing on one side
//     has weight 0 and return 0 there
//  2. Per group g:
//     allocation_g  = (wp_g - wb_g) * rb_g
//     selection_g   = wb_g * (rp_g - rb_g)
//     interaction_g = (wp_g - wb_g) * (rp_g - rb_g)
//  3. Portfolio and benchmark returns are the weighted sums of the segment returns
//  4. Currency effect is 0 (single-currency attribution)
//
// Safety: allocation + selection + interaction + currency must equal the excess return
// within ReconciliationTolerance, otherwise ErrAttributionUnreconciled is returned
func Attribute(dimension domain.AttributionDimension, portfolio, benchmark []domain.Segment) (*domain.AttributionResult, []string, error) {
	groups, err := merge(portfolio, benchmark)
	if err != nil {
		return nil, nil, err
	}

	var warnings []string
	if w := totalWeight(portfolio); len(portfolio) > 0 && !withinTolerance(w, decimal.NewFromInt(1)) {
		warnings = append(warnings, fmt.Sprintf("portfolio %s weights sum to %s, not 1", dimension, w.String()))
	}
	if w := totalWeight(benchmark); len(benchmark) > 0 && !withinTolerance(w, decimal.NewFromInt(1)) {
		warnings = append(warnings, fmt.Sprintf("benchmark %s weights sum to %s, not 1", dimension, w.String()))
	}

	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	result := &domain.AttributionResult{
		Dimension:        dimension,
		Entries:          make([]domain.AttributionEntry, 0, len(keys)),
		AllocationTotal:  decimal.Zero,
		SelectionTotal:   decimal.Zero,
		InteractionTotal: decimal.Zero,
		CurrencyEffect:   decimal.Zero,
		PortfolioReturn:  decimal.Zero,
		BenchmarkReturn:  decimal.Zero,
	}

	for _, key := range keys {
		g := groups[key]
		entry := Effects(key, g.portfolio, g.benchmark)
		result.Entries = append(result.Entries, entry)

		result.AllocationTotal = result.AllocationTotal.Add(entry.AllocationEffect)
		result.SelectionTotal = result.SelectionTotal.Add(entry.SelectionEffect)
		result.InteractionTotal = result.InteractionTotal.Add(entry.InteractionEffect)
		result.PortfolioReturn = result.PortfolioReturn.Add(entry.PortfolioWeight.Mul(entry.PortfolioReturn))
		result.BenchmarkReturn = result.BenchmarkReturn.Add(entry.BenchmarkWeight.Mul(entry.BenchmarkReturn))
	}
	result.ExcessReturn = result.PortfolioReturn.Sub(result.BenchmarkReturn)

	if err := Reconcile(result); err != nil {
		return nil, warnings, err
	}
	return result, warnings, nil
}

// Effects computes the allocation, selection and interaction effects of a single group
func Effects(groupKey string, portfolio, benchmark domain.Segment) domain.AttributionEntry {
	weightDiff := portfolio.Weight.Sub(benchmark.Weight)
	returnDiff := portfolio.Return.Sub(benchmark.Return)

	return domain.AttributionEntry{
		GroupKey:          groupKey,
		AllocationEffect:  weightDiff.Mul(benchmark.Return),
		SelectionEffect:   benchmark.Weight.Mul(returnDiff),
		InteractionEffect: weightDiff.Mul(returnDiff),
		PortfolioWeight:   portfolio.Weight,
		BenchmarkWeight:   benchmark.Weight,
		PortfolioReturn:   portfolio.Return,
		BenchmarkReturn:   benchmark.Return,
	}
}

// Reconcile checks that the effects add up to the excess return
func Reconcile(result *domain.AttributionResult) error {
	if !withinTolerance(result.TotalEffect(), result.ExcessReturn) {
		return fmt.Errorf("%w: effects %s, excess %s", domain.ErrAttributionUnreconciled,
			result.TotalEffect().String(), result.ExcessReturn.String())
	}
	return nil
}

// merge pairs segments by group key
func merge(portfolio, benchmark []domain.Segment) (map[string]*side, error) {
	groups := make(map[string]*side, len(portfolio)+len(benchmark))

	lookup := func(key string) *side {
		g, ok := groups[key]
		if !ok {
			g = &side{
				portfolio: domain.Segment{GroupKey: key, Weight: decimal.Zero, Return: decimal.Zero},
				benchmark: domain.Segment{GroupKey: key, Weight: decimal.Zero, Return: decimal.Zero},
			}
			groups[key] = g
		}
		return g
	}

	seen := make(map[string]bool, len(portfolio))
	for _, s := range portfolio {
		key := strings.TrimSpace(s.GroupKey)
		if key == "" {
			return nil, errors.New("portfolio segment group key cannot be empty")
		}
		if seen[key] {
			return nil, fmt.Errorf("duplicate portfolio segment %q", key)
		}
		seen[key] = true
		lookup(key).portfolio = domain.Segment{GroupKey: key, Weight: s.Weight, Return: s.Return}
	}

	seen = make(map[string]bool, len(benchmark))
	for _, s := range benchmark {
		key := strings.TrimSpace(s.GroupKey)
		if key == "" {
			return nil, errors.New("benchmark segment group key cannot be empty")
		}
		if seen[key] {
			return nil, fmt.Errorf("duplicate benchmark segment %q", key)
		}
		seen[key] = true
		lookup(key).benchmark = domain.Segment{GroupKey: key, Weight: s.Weight, Return: s.Return}
	}

	return groups, nil
}

func totalWeight(segments []domain.Segment) decimal.Decimal {
	total := decimal.Zero
	for _, s := range segments {
		total = total.Add(s.Weight)
	}
	return total
}

func withinTolerance(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(ReconciliationTolerance)
}
