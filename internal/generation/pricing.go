package generation

import (
	"math"

	"resale_support_backend/internal/ai"
	"resale_support_backend/platform/config"
)

// MinimumPrice computes the floor below which the item would sell at a loss:
// (purchase + shipping + minimum profit) / (1 - fee rate), rounded up to the
// next 10 yen.
func MinimumPrice(cfg config.PricingConfig, purchasePrice int) int {
	raw := float64(purchasePrice+cfg.GetShippingCost()+cfg.GetMinimumProfit()) / (1 - cfg.GetPlatformFeeRate())
	return int(math.Ceil(raw/10)) * 10
}

// clampPricing enforces ordering on the model's proposal: the lowest
// acceptable price never dips under the floor, and the three points stay
// monotonic (start >= expected >= lowest).
func clampPricing(p ai.PricingResult, minimumPrice int) ai.PricingResult {
	if p.LowestAcceptable < minimumPrice {
		p.LowestAcceptable = minimumPrice
	}
	if p.ExpectedPrice < p.LowestAcceptable {
		p.ExpectedPrice = p.LowestAcceptable
	}
	if p.StartPrice < p.ExpectedPrice {
		p.StartPrice = p.ExpectedPrice
	}
	return p
}
