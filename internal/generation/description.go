package generation

import (
	"strconv"
	"strings"

	"resale_support_backend/internal/intake/domain"
)

// buildDescription assembles the listing body: heading, narrative, the
// measurement table for the category, condition and shipping notes, the
// hashtag line, and the management number footer.
func buildDescription(f *domain.Features, m *domain.Measurements, managementID, descriptionText string, hashtags []string) string {
	if descriptionText == "" {
		descriptionText = defaultDescriptionText(f)
	}

	var b strings.Builder
	b.WriteString("【" + heading(f) + "】\n\n")
	b.WriteString(descriptionText + "\n\n")

	b.WriteString("【実寸（平置き）】\n")
	switch f.Category {
	case domain.CategoryPants:
		writePantsBlock(&b, m)
	case domain.CategorySetup:
		b.WriteString("■ トップス\n")
		writeTopsBlock(&b, m)
		b.WriteString("■ パンツ\n")
		writePantsBlock(&b, m)
	default:
		writeTopsBlock(&b, m)
	}
	b.WriteString("※素人採寸のため多少の誤差はご了承ください。\n\n")

	b.WriteString("【状態】\n")
	b.WriteString(f.Condition + "\n")
	b.WriteString("古着にご理解のある方のご購入をお願いいたします。\n\n")

	b.WriteString("【発送】\n")
	b.WriteString("簡易梱包にて1〜2日以内に発送いたします。\n\n")

	if len(hashtags) > 0 {
		b.WriteString(strings.Join(hashtags, " ") + "\n\n")
	}

	b.WriteString("管理番号: " + managementID)
	return b.String()
}

// heading builds the first line of the listing, dropping unknown attributes:
// "adidasのネイビーパーカー", "ネイビーパーカー", or just "パーカー".
func heading(f *domain.Features) string {
	brand := f.Brand
	if brand == domain.Unknown {
		brand = ""
	}
	color := f.Color
	if color == domain.Unknown {
		color = ""
	}
	itemType := f.ItemType
	if itemType == domain.Unknown {
		itemType = "アイテム"
	}

	switch {
	case brand != "" && color != "":
		return brand + "の" + color + itemType
	case brand != "":
		return brand + "の" + itemType
	default:
		return color + itemType
	}
}

func defaultDescriptionText(f *domain.Features) string {
	if f.Design != "" {
		return f.Design + "がポイントのアイテムです。"
	}
	return "シンプルで使いやすいアイテムです。"
}

func writeTopsBlock(b *strings.Builder, m *domain.Measurements) {
	writeMeasurement(b, "着丈", m.Length)
	writeMeasurement(b, "身幅", m.Width)
	writeMeasurement(b, "肩幅", m.Shoulder)
	writeMeasurement(b, "袖丈", m.Sleeve)
}

func writePantsBlock(b *strings.Builder, m *domain.Measurements) {
	writeMeasurement(b, "ウエスト", m.Waist)
	writeMeasurement(b, "股下", m.Inseam)
	writeMeasurement(b, "裾幅", m.HemWidth)
	writeMeasurement(b, "股上", m.Rise)
}

func writeMeasurement(b *strings.Builder, label string, v *int) {
	value := "-"
	if v != nil {
		value = strconv.Itoa(*v) + "cm"
	}
	b.WriteString(label + "：" + value + "\n")
}
