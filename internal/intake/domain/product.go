package domain

// PricingStrategy is the closed set of pricing strategies the user picks
// from during confirmation.
type PricingStrategy int

const (
	StrategyHighProfit PricingStrategy = iota
	StrategyBalanced
	StrategyQuickSale
)

// String returns the strategy label used in messages and the ledger.
func (s PricingStrategy) String() string {
	switch s {
	case StrategyBalanced:
		return "バランス"
	case StrategyQuickSale:
		return "回転重視"
	default:
		return "高利益重視"
	}
}

// PriceSuggestion holds the strategy-dependent price points generated for a
// listing. MinimumPrice is computed locally from the purchase price; the
// remaining points come from the text generation service, already clamped
// so that Lowest >= Minimum, Expected >= Lowest, Start >= Expected.
type PriceSuggestion struct {
	MinimumPrice     int             `json:"minimumPrice"`
	StartPrice       int             `json:"startPrice"`
	ExpectedPrice    int             `json:"expectedPrice"`
	LowestAcceptable int             `json:"lowestAcceptable"`
	Strategy         PricingStrategy `json:"strategy"`
	Reasoning        string          `json:"reasoning,omitempty"`
}

// Product is the finished listing: user input, the confirmed feature
// summary, and the generated marketing copy.
type Product struct {
	ManagementID  string `json:"managementId"`
	PurchasePrice int    `json:"purchasePrice"`

	Measurements Measurements `json:"measurements"`
	Features     Features     `json:"features"`

	Title           string           `json:"title"`
	Description     string           `json:"description"`
	Hashtags        []string         `json:"hashtags"`
	PriceSuggestion *PriceSuggestion `json:"priceSuggestion,omitempty"`

	ImagePaths []string `json:"imagePaths,omitempty"`
	ImageURL   string   `json:"imageUrl,omitempty"`
	RawText    string   `json:"-"`
}
