package domain

import (
	"math"
	"sort"
	"strings"

	"github.com/fd1az/solana-price-monitor/internal/apperror"
)

// Selection strategy names.
const (
	StrategyFirst           = "first"
	StrategyWeightedAverage = "weighted_average"
	StrategyMedian          = "median"
)

const defaultMaxDeviationPct = 5.0

// ErrEmptySelection is returned when a selector is handed no records.
var ErrEmptySelection = apperror.Sentinel(apperror.CodeEmptySelection)

// Selector reduces the successful source results of one resolution to a
// single record. Records arrive in configured source order.
type Selector interface {
	Name() string
	Select(records []PriceRecord) (PriceRecord, error)
}

// NewSelector builds the strategy named by strategy.
func NewSelector(strategy string, weights map[string]float64, maxDeviationPct float64) (Selector, error) {
	switch strategy {
	case "", StrategyFirst:
		return FirstSelector{}, nil
	case StrategyWeightedAverage:
		return NewWeightedAverageSelector(weights), nil
	case StrategyMedian:
		return NewMedianSelector(maxDeviationPct), nil
	default:
		return nil, apperror.New(apperror.CodeConfigurationError,
			apperror.WithContextf("unknown selection strategy %q", strategy))
	}
}

// FirstSelector picks the first record in source order.
type FirstSelector struct{}

func (FirstSelector) Name() string { return StrategyFirst }

func (FirstSelector) Select(records []PriceRecord) (PriceRecord, error) {
	if len(records) == 0 {
		return PriceRecord{}, ErrEmptySelection
	}
	return records[0], nil
}

// WeightedAverageSelector blends prices using a weight per source name.
// Sources without a configured weight count as 1; non-positive weights
// exclude a source.
type WeightedAverageSelector struct {
	weights map[string]float64
}

func NewWeightedAverageSelector(weights map[string]float64) *WeightedAverageSelector {
	w := make(map[string]float64, len(weights))
	for k, v := range weights {
		w[strings.ToLower(k)] = v
	}
	return &WeightedAverageSelector{weights: w}
}

func (s *WeightedAverageSelector) Name() string { return StrategyWeightedAverage }

func (s *WeightedAverageSelector) weight(source string) float64 {
	if w, ok := s.weights[strings.ToLower(source)]; ok {
		return w
	}
	return 1
}

func (s *WeightedAverageSelector) Select(records []PriceRecord) (PriceRecord, error) {
	if len(records) == 0 {
		return PriceRecord{}, ErrEmptySelection
	}
	if len(records) == 1 {
		return records[0], nil
	}

	var (
		total, usd, numeraire float64
		names                 []string
		out                   = PriceRecord{Mint: records[0].Mint}
	)
	for _, r := range records {
		w := s.weight(r.Source)
		if w <= 0 {
			continue
		}
		total += w
		usd += w * r.PriceUSD
		numeraire += w * r.PriceNumeraire
		names = append(names, r.Source)
		out.Volume24h = math.Max(out.Volume24h, r.Volume24h)
		out.MarketCap = math.Max(out.MarketCap, r.MarketCap)
		if r.Timestamp > out.Timestamp {
			out.Timestamp = r.Timestamp
		}
	}
	if total == 0 {
		return records[0], nil
	}
	if len(names) == 1 {
		for _, r := range records {
			if r.Source == names[0] {
				return r, nil
			}
		}
	}

	out.PriceUSD = usd / total
	out.PriceNumeraire = numeraire / total
	out.Source = "weighted(" + strings.Join(names, "+") + ")"
	return out, nil
}

// MedianSelector rejects records whose USD price deviates from the median
// by more than maxDeviationPct, then returns the surviving record closest
// to the survivors' median. Ties go to the earlier source.
type MedianSelector struct {
	maxDeviationPct float64
}

func NewMedianSelector(maxDeviationPct float64) *MedianSelector {
	if maxDeviationPct <= 0 {
		maxDeviationPct = defaultMaxDeviationPct
	}
	return &MedianSelector{maxDeviationPct: maxDeviationPct}
}

func (s *MedianSelector) Name() string { return StrategyMedian }

func (s *MedianSelector) Select(records []PriceRecord) (PriceRecord, error) {
	if len(records) == 0 {
		return PriceRecord{}, ErrEmptySelection
	}
	if len(records) < 3 {
		return records[0], nil
	}

	m := median(records)
	survivors := make([]PriceRecord, 0, len(records))
	for _, r := range records {
		if deviationPct(r.PriceUSD, m) <= s.maxDeviationPct {
			survivors = append(survivors, r)
		}
	}
	if len(survivors) == 0 {
		survivors = records
	} else {
		m = median(survivors)
	}

	best := 0
	for i := 1; i < len(survivors); i++ {
		if math.Abs(survivors[i].PriceUSD-m) < math.Abs(survivors[best].PriceUSD-m) {
			best = i
		}
	}
	return survivors[best], nil
}

func median(records []PriceRecord) float64 {
	prices := make([]float64, len(records))
	for i, r := range records {
		prices[i] = r.PriceUSD
	}
	sort.Float64s(prices)
	n := len(prices)
	if n%2 == 1 {
		return prices[n/2]
	}
	return (prices[n/2-1] + prices[n/2]) / 2
}

func deviationPct(price, reference float64) float64 {
	if reference == 0 {
		if price == 0 {
			return 0
		}
		return math.Inf(1)
	}
	return math.Abs(price-reference) / reference * 100
}
