package domain

import (
	"fmt"
	"math"
	"strconv"
)

// PriceLevel is the venue-aggregated offer resting at a single price.
type PriceLevel struct {
	Price    float64
	Quantity float64
}

// OrderBook is the latest known depth for a symbol. Asks are sorted ascending
// and bids descending by price, as the venue delivers them, so index 0 is
// always the best available price on each side. Books are replaced wholesale
// on every feed update; nothing mutates a published book.
type OrderBook struct {
	Symbol     string
	Bids       []PriceLevel
	Asks       []PriceLevel
	ReceivedAt int64
}

// ParsePriceLevels converts venue [price, quantity] string pairs to price
// levels. Levels with zero quantity carry no liquidity and are dropped.
func ParsePriceLevels(rows [][]string) ([]PriceLevel, error) {
	result := make([]PriceLevel, 0, len(rows))

	for _, row := range rows {
		if len(row) < 2 {
			return nil, fmt.Errorf("price level %v has less than two fields", row)
		}

		price, err := strconv.ParseFloat(row[0], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid price %q: %w", row[0], err)
		}
		quantity, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid quantity %q: %w", row[1], err)
		}

		if !isFiniteNonNegative(price) || !isFiniteNonNegative(quantity) {
			return nil, fmt.Errorf("price level [%s %s] is not finite and non-negative", row[0], row[1])
		}

		if quantity == 0 {
			continue
		}

		result = append(result, PriceLevel{Price: price, Quantity: quantity})
	}

	return result, nil
}

func isFiniteNonNegative(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}
