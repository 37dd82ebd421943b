// Package parser turns free-form chat messages into typed candidate values.
// Every function is stateless and total: unparseable input yields absent
// values, never an error. Callers decide what absence means.
//
// Messages arrive from phone keyboards, so digits and spaces frequently come
// in full-width form (「８８０　２２２」). All entry points fold input to
// canonical width before matching.
package parser

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/width"

	"resale_support_backend/internal/intake/domain"
)

var digitRun = regexp.MustCompile(`[0-9]+`)

// measurementPatterns maps each measurement slot to its keyword pattern.
// Accepts 「着丈66」「着丈:66cm」「着丈：66」 and newline-separated layouts.
var measurementPatterns = map[domain.MeasurementField]*regexp.Regexp{
	domain.FieldLength:   regexp.MustCompile(`着丈[:：\s]*([0-9]+)`),
	domain.FieldWidth:    regexp.MustCompile(`身幅[:：\s]*([0-9]+)`),
	domain.FieldShoulder: regexp.MustCompile(`肩幅[:：\s]*([0-9]+)`),
	domain.FieldSleeve:   regexp.MustCompile(`袖丈[:：\s]*([0-9]+)`),
	domain.FieldWaist:    regexp.MustCompile(`ウエスト[:：\s]*([0-9]+)`),
	domain.FieldInseam:   regexp.MustCompile(`股下[:：\s]*([0-9]+)`),
	domain.FieldHemWidth: regexp.MustCompile(`裾幅[:：\s]*([0-9]+)`),
	domain.FieldRise:     regexp.MustCompile(`股上[:：\s]*([0-9]+)`),
}

// Purchase-price keyword family. Several spellings are in everyday use.
var purchasePricePatterns = []*regexp.Regexp{
	regexp.MustCompile(`仕入れ?(?:価格)?[:：\s]*([0-9]+)円?`),
	regexp.MustCompile(`購入(?:価格)?[:：\s]*([0-9]+)円?`),
	regexp.MustCompile(`原価[:：\s]*([0-9]+)円?`),
}

var managementIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:商品)?管理番号[:：\s]*([0-9]+)`),
	regexp.MustCompile(`(?i)管理No[.:：\s]*([0-9]+)`),
	regexp.MustCompile(`(?i)ID[:：\s]*([0-9]+)`),
}

// genderPatterns are checked in order; first match wins.
var genderPatterns = []struct {
	label   string
	pattern *regexp.Regexp
}{
	{"メンズ", regexp.MustCompile(`(?i)メンズ|男性|MEN`)},
	{"レディース", regexp.MustCompile(`(?i)レディース|女性|WOMEN|LADIES`)},
	{"ユニセックス", regexp.MustCompile(`(?i)ユニセックス|男女兼用|UNISEX`)},
}

// Size matching checks the free-size keyword first so the bounded code
// pattern cannot swallow 「フリー」.
var (
	freeSizePattern = regexp.MustCompile(`フリーサイズ|フリー`)
	sizeCodePattern = regexp.MustCompile(`(?i)\b(XXS|XS|S|M|L|XL|XXL|2XL|3XL|FREE|F)\b`)
)

// Era patterns in precedence order: 90s, 2000年代, 90年代.
var eraPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)([0-9]{2})s`),
	regexp.MustCompile(`([0-9]{4})年代`),
	regexp.MustCompile(`([0-9]{2})年代`),
}

// normalize folds full-width digits, Latin letters, and spaces to their
// canonical narrow forms. Kana keywords are unaffected.
func normalize(text string) string {
	return width.Fold.String(text)
}

// numbers extracts up to count digit runs left to right. Positions beyond
// the available runs are nil; earlier values are never reused.
func numbers(text string, count int) []*int {
	runs := digitRun.FindAllString(normalize(text), count)
	out := make([]*int, count)
	for i := 0; i < count && i < len(runs); i++ {
		if v, err := strconv.Atoi(runs[i]); err == nil {
			out[i] = &v
		}
	}
	return out
}

// normalizeEra maps a 2-digit capture to the "NNs" form and a 4-digit
// capture to the "NNNN年代" form.
func normalizeEra(digits string) string {
	switch len(digits) {
	case 2:
		return digits + "s"
	case 4:
		return digits + "年代"
	}
	return ""
}

// ParsePriceAndID reads the compact 「仕入れ価格 管理番号 [年代]」 pair,
// e.g. 「880 222」 or 「880 222 90s」. The first digit run is the price, the
// second the management number; a third run counts as the era only when it
// is immediately shaped like one (NNs, NNNN年代, NN年代). Missing slots are
// absent, not zero.
func ParsePriceAndID(text string) (price *int, managementID string, era string) {
	folded := normalize(text)
	runs := digitRun.FindAllStringIndex(folded, 3)

	if len(runs) >= 1 {
		if v, err := strconv.Atoi(folded[runs[0][0]:runs[0][1]]); err == nil {
			price = &v
		}
	}
	if len(runs) >= 2 {
		managementID = folded[runs[1][0]:runs[1][1]]
	}
	if len(runs) >= 3 {
		era = eraAt(folded, runs[2][0])
	}
	return price, managementID, era
}

// eraAt checks whether the text starting at offset matches an era shape
// anchored there, and returns the normalized era if so.
func eraAt(text string, offset int) string {
	rest := text[offset:]
	for _, p := range eraPatterns {
		loc := p.FindStringSubmatchIndex(rest)
		if loc != nil && loc[0] == 0 {
			return normalizeEra(rest[loc[2]:loc[3]])
		}
	}
	return ""
}

// Parsed is the result of the verbose keyworded parse. Zero values mean the
// message did not mention the field.
type Parsed struct {
	Measurements  domain.Measurements
	PurchasePrice *int
	ManagementID  string
	Gender        string
	Size          string
	Era           string
	RawText       string
}

// ParseAll runs every verbose extraction independently over the message:
// measurement keywords, the purchase-price and management-number keyword
// families, gender, size, and era tokens.
func ParseAll(text string) Parsed {
	folded := normalize(text)

	p := Parsed{RawText: text}

	for field, pattern := range measurementPatterns {
		if m := pattern.FindStringSubmatch(folded); m != nil {
			if v, err := strconv.Atoi(m[1]); err == nil {
				p.Measurements.Set(field, &v)
			}
		}
	}

	for _, pattern := range purchasePricePatterns {
		if m := pattern.FindStringSubmatch(folded); m != nil {
			if v, err := strconv.Atoi(m[1]); err == nil {
				p.PurchasePrice = &v
			}
			break
		}
	}

	for _, pattern := range managementIDPatterns {
		if m := pattern.FindStringSubmatch(folded); m != nil {
			p.ManagementID = m[1]
			break
		}
	}

	for _, g := range genderPatterns {
		if g.pattern.MatchString(folded) {
			p.Gender = g.label
			break
		}
	}

	p.Size = parseSize(folded)
	p.Era = parseEra(folded)

	return p
}

func parseSize(folded string) string {
	if freeSizePattern.MatchString(folded) {
		return "フリー"
	}
	if m := sizeCodePattern.FindStringSubmatch(folded); m != nil {
		size := strings.ToUpper(m[1])
		if size == "FREE" || size == "F" {
			return "フリー"
		}
		return size
	}
	return ""
}

func parseEra(folded string) string {
	for _, p := range eraPatterns {
		if m := p.FindStringSubmatch(folded); m != nil {
			if era := normalizeEra(m[1]); era != "" {
				return era
			}
		}
	}
	return ""
}

// ParseMeasurementsSimple reads bare space-separated numbers in the
// positional order the category defines. 「80 75 20 30」 under pants becomes
// waist/inseam/hem-width/rise; the same string under tops becomes
// length/width/shoulder/sleeve. Positions past the supplied numbers stay
// absent.
func ParseMeasurementsSimple(text string, category domain.Category) domain.Measurements {
	layout := category.MeasurementLayout()
	values := numbers(text, len(layout))

	var m domain.Measurements
	for i, field := range layout {
		m.Set(field, values[i])
	}
	return m
}

// SaleInfo is the parsed 「管理番号 販売価格 送料」 triple. All three are
// required together; Complete reports whether the message carried them all.
type SaleInfo struct {
	ManagementID string
	SalePrice    *int
	ShippingCost *int
}

// Complete reports whether every slot was supplied.
func (s SaleInfo) Complete() bool {
	return s.ManagementID != "" && s.SalePrice != nil && s.ShippingCost != nil
}

// ParseSaleInfo extracts the three positional integers of a sale report.
func ParseSaleInfo(text string) SaleInfo {
	values := numbers(text, 3)

	var info SaleInfo
	if values[0] != nil {
		info.ManagementID = strconv.Itoa(*values[0])
	}
	info.SalePrice = values[1]
	info.ShippingCost = values[2]
	return info
}

// strategyPatterns match a letter, a digit, or a Japanese synonym by
// substring. The letter/digit forms must be the whole line.
var strategyPatterns = []struct {
	strategy domain.PricingStrategy
	pattern  *regexp.Regexp
}{
	{domain.StrategyHighProfit, regexp.MustCompile(`^[Aa1]$|高利益`)},
	{domain.StrategyBalanced, regexp.MustCompile(`^[Bb2]$|バランス`)},
	{domain.StrategyQuickSale, regexp.MustCompile(`^[Cc3]$|回転`)},
}

var modificationPattern = regexp.MustCompile(`^([0-9]+)\s+(.+)$`)

// ParseModificationsAndStrategy reads a confirmation-state reply line by
// line. Each line may carry a strategy token and/or a 「番号 内容」 edit
// instruction; a line can be both. A later strategy match overwrites an
// earlier one, and a later edit for the same index overwrites the earlier
// edit. Returns nil edits and nil strategy when nothing was recognized.
func ParseModificationsAndStrategy(text string) (domain.Edits, *domain.PricingStrategy) {
	edits := domain.Edits{}
	var strategy *domain.PricingStrategy

	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		for _, s := range strategyPatterns {
			if s.pattern.MatchString(line) {
				picked := s.strategy
				strategy = &picked
			}
		}

		if m := modificationPattern.FindStringSubmatch(line); m != nil {
			index, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			if field, ok := domain.EditFieldByIndex(index); ok {
				edits[field] = strings.TrimSpace(m[2])
			}
		}
	}

	if len(edits) == 0 {
		edits = nil
	}
	return edits, strategy
}
