// Package domain provides the core types for the listing intake bounded
// context: item categories, measurements, AI-estimated features, pricing
// strategies, and the generated product.
package domain

// Category is the garment category detected from the photos. The category
// decides which measurement fields a listing needs and in what order the
// user is asked to supply them.
type Category int

const (
	// CategoryTops covers upper-body garments (Tシャツ, パーカー, ジャケット等).
	CategoryTops Category = iota
	// CategoryPants covers lower-body garments (ジーンズ, スラックス等).
	CategoryPants
	// CategorySetup covers matching top-and-bottom sets.
	CategorySetup
)

// Category labels as they appear in conversation and in the ledger.
const (
	LabelTops  = "トップス"
	LabelPants = "パンツ"
	LabelSetup = "セットアップ"
)

// String returns the Japanese label used in user-facing messages.
func (c Category) String() string {
	switch c {
	case CategoryPants:
		return LabelPants
	case CategorySetup:
		return LabelSetup
	default:
		return LabelTops
	}
}

// ParseCategory maps a label back to a Category. Unknown labels fall back
// to tops, mirroring how the vision service's free-text answer is read.
func ParseCategory(label string) Category {
	switch label {
	case LabelPants:
		return CategoryPants
	case LabelSetup:
		return CategorySetup
	default:
		return CategoryTops
	}
}

// ParseCategoryStrict maps a label to a Category and reports whether the
// label named one of the three known categories.
func ParseCategoryStrict(label string) (Category, bool) {
	switch label {
	case LabelTops:
		return CategoryTops, true
	case LabelPants:
		return CategoryPants, true
	case LabelSetup:
		return CategorySetup, true
	}
	return CategoryTops, false
}

// MeasurementField identifies one of the eight measurement slots.
type MeasurementField int

const (
	FieldLength MeasurementField = iota
	FieldWidth
	FieldShoulder
	FieldSleeve
	FieldWaist
	FieldInseam
	FieldHemWidth
	FieldRise
)

var topsFields = []MeasurementField{FieldLength, FieldWidth, FieldShoulder, FieldSleeve}
var pantsFields = []MeasurementField{FieldWaist, FieldInseam, FieldHemWidth, FieldRise}

// MeasurementLayout returns the measurement fields this category requires,
// in the positional order the user is asked to type them. Setup expects the
// tops fields followed by the pants fields.
func (c Category) MeasurementLayout() []MeasurementField {
	switch c {
	case CategoryPants:
		return pantsFields
	case CategorySetup:
		layout := make([]MeasurementField, 0, len(topsFields)+len(pantsFields))
		layout = append(layout, topsFields...)
		return append(layout, pantsFields...)
	default:
		return topsFields
	}
}

// MeasurementPrompt returns the instruction asking the user for this
// category's measurements, including the expected order and an example.
func (c Category) MeasurementPrompt() string {
	switch c {
	case CategoryPants:
		return "実寸を入力してください（ウエスト 股下 裾幅 股上の順）\n例: 「80 75 20 30」"
	case CategorySetup:
		return "実寸を入力してください\n（着丈 身幅 肩幅 袖丈 ウエスト 股下 裾幅 股上の順）\n例: 「70 55 45 60 80 75 20 30」"
	default:
		return "実寸を入力してください（着丈 身幅 肩幅 袖丈の順）\n例: 「60 50 42 20」"
	}
}

// MeasurementRetryPrompt is the corrective re-prompt sent when the supplied
// measurements are incomplete for the category.
func (c Category) MeasurementRetryPrompt() string {
	switch c {
	case CategoryPants:
		return "実寸が正しく入力されていません。\nウエスト 股下 裾幅 股上の順で数値を入力してください。\n例: 「80 75 20 30」"
	case CategorySetup:
		return "実寸が正しく入力されていません。\n着丈 身幅 肩幅 袖丈 ウエスト 股下 裾幅 股上の順で数値を入力してください。\n例: 「70 55 45 60 80 75 20 30」"
	default:
		return "実寸が正しく入力されていません。\n着丈 身幅 肩幅 袖丈の順で数値を入力してください。\n例: 「60 50 42 20」"
	}
}
