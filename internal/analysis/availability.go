package analysis

import (
	"strings"

	"tirescan-backend/internal/shops"
)

const (
	priceCurrency   = "USD"
	maxSamplePrices = 5
)

// SummarizeMatches aggregates size matches that are already in registry
// order (shop insertion, then tire insertion).
func SummarizeMatches(matches []shops.SizedTire) Availability {
	out := Availability{SamplePrices: []float64{}}
	if len(matches) == 0 {
		return out
	}
	seen := make(map[string]struct{})
	pr := &PriceRange{Currency: priceCurrency, Min: matches[0].Tire.Price, Max: matches[0].Tire.Price}
	for _, m := range matches {
		seen[m.ShopID] = struct{}{}
		out.InventoryCount += m.Tire.Quantity
		pr.Min = min(pr.Min, m.Tire.Price)
		pr.Max = max(pr.Max, m.Tire.Price)
		if len(out.SamplePrices) < maxSamplePrices {
			out.SamplePrices = append(out.SamplePrices, m.Tire.Price)
		}
	}
	out.ShopsWithSize = len(seen)
	out.PriceRange = pr
	return out
}

// MatchInventory scans every tire of every shop for an exact,
// case-sensitive size match.
func MatchInventory(size *string, registry []shops.Shop) Availability {
	if size == nil || strings.TrimSpace(*size) == "" {
		return SummarizeMatches(nil)
	}
	var matches []shops.SizedTire
	for _, s := range registry {
		for _, t := range s.Tires {
			if t.Size == *size {
				matches = append(matches, shops.SizedTire{ShopID: s.ID, ShopName: s.Name, Tire: t})
			}
		}
	}
	return SummarizeMatches(matches)
}
