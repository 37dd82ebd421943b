package domain

import (
	"fmt"
	"strings"
)

// Unknown marks a feature attribute the vision service could not determine.
const Unknown = "UNKNOWN"

// DefaultCondition is the stock condition line used when nothing better is
// known; most second-hand listings on the marketplace use this phrasing.
const DefaultCondition = "目立った傷や汚れなし"

// Features is the AI-estimated feature summary of the item, as shown to the
// user in the numbered confirmation list. Free-text attributes default to
// Unknown rather than empty so the user sees what still needs correcting.
type Features struct {
	Brand      string   `json:"brand"`
	Category   Category `json:"category"`
	ItemType   string   `json:"itemType"`
	Gender     string   `json:"gender"`
	Size       string   `json:"size"`
	Color      string   `json:"color"`
	Design     string   `json:"design,omitempty"`
	Material   string   `json:"material,omitempty"`
	Era        string   `json:"era,omitempty"`
	Condition  string   `json:"condition"`
	Confidence float64  `json:"confidence"`

	// DescriptionText is the draft narrative produced by image analysis,
	// carried along until listing generation. Not user-editable.
	DescriptionText string `json:"-"`
}

// NewFeatures returns a feature summary with all attributes unknown.
func NewFeatures() *Features {
	return &Features{
		Brand:     Unknown,
		Category:  CategoryTops,
		ItemType:  Unknown,
		Gender:    Unknown,
		Size:      Unknown,
		Color:     Unknown,
		Condition: DefaultCondition,
	}
}

// ConfirmationSummary renders the numbered attribute list plus the strategy
// menu sent while the session waits for corrections. imageCount is shown in
// the header so the user knows every photo was picked up.
func (f *Features) ConfirmationSummary(imageCount int) string {
	design := f.Design
	if design == "" {
		design = "特になし"
	}

	lines := []string{
		fmt.Sprintf("画像 %d枚を解析しました。", imageCount),
		"",
		"【商品特徴（AI推定）】",
		"1. ブランド：" + f.Brand,
		"2. カテゴリ：" + f.Category.String(),
		"3. アイテム：" + f.ItemType,
		"4. 性別：" + f.Gender,
		"5. サイズ：" + f.Size,
		"6. 色：" + f.Color,
		"7. デザイン：" + design,
	}
	if f.Era != "" {
		lines = append(lines, "8. 年代："+f.Era)
	}

	lines = append(lines,
		"",
		"修正がある場合は番号と内容を送信",
		"例：「1 adidas」「3 パーカー」",
		"",
		"修正完了後、戦略を選択してください：",
		"A. 高利益重視",
		"B. バランス",
		"C. 回転重視",
		"",
		"修正なしの場合は「A」「B」「C」のみ送信",
	)

	return strings.Join(lines, "\n")
}
