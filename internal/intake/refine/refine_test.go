package refine

import (
	"reflect"
	"testing"

	"resale_support_backend/internal/intake/domain"
)

func baseFeatures() *domain.Features {
	f := domain.NewFeatures()
	f.Brand = "NIKE"
	f.Category = domain.CategoryTops
	f.ItemType = "スウェット"
	f.Gender = "メンズ"
	f.Size = "L"
	f.Color = "グレー"
	f.Design = "プリントロゴ"
	f.Era = "90s"
	return f
}

func TestApplyVerbatimFields(t *testing.T) {
	f := baseFeatures()
	Apply(f, domain.Edits{
		domain.EditBrand:    "adidas",
		domain.EditItemType: "パーカー",
		domain.EditGender:   "レディース",
		domain.EditSize:     "M",
		domain.EditColor:    "ネイビー",
		domain.EditEra:      "2000年代",
	})

	if f.Brand != "adidas" || f.ItemType != "パーカー" || f.Gender != "レディース" ||
		f.Size != "M" || f.Color != "ネイビー" || f.Era != "2000年代" {
		t.Errorf("verbatim edits not applied: %+v", f)
	}
}

func TestApplyCategoryWhitelist(t *testing.T) {
	tests := []struct {
		value string
		want  domain.Category
	}{
		{"パンツ", domain.CategoryPants},
		{"セットアップ", domain.CategorySetup},
		{"トップス", domain.CategoryTops},
		{"シューズ", domain.CategoryTops}, // unknown label is ignored, not applied
		{"", domain.CategoryTops},
	}

	for _, tc := range tests {
		f := baseFeatures()
		Apply(f, domain.Edits{domain.EditCategory: tc.value})
		if f.Category != tc.want {
			t.Errorf("category edit %q: got %v, want %v", tc.value, f.Category, tc.want)
		}
	}
}

func TestApplyDesignNoneSynonyms(t *testing.T) {
	for _, value := range []string{"なし", "特になし", "無し", "null", "None"} {
		f := baseFeatures()
		Apply(f, domain.Edits{domain.EditDesign: value})
		if f.Design != "" {
			t.Errorf("design edit %q: got %q, want cleared", value, f.Design)
		}
	}

	f := baseFeatures()
	Apply(f, domain.Edits{domain.EditDesign: "刺繍ロゴ"})
	if f.Design != "刺繍ロゴ" {
		t.Errorf("design edit stored %q, want 刺繍ロゴ", f.Design)
	}
}

func TestApplyIdempotent(t *testing.T) {
	edits := domain.Edits{
		domain.EditBrand:    "adidas",
		domain.EditCategory: "パンツ",
		domain.EditDesign:   "なし",
		domain.EditSize:     "XL",
	}

	once := baseFeatures()
	Apply(once, edits)

	twice := baseFeatures()
	Apply(twice, edits)
	Apply(twice, edits)

	if !reflect.DeepEqual(once, twice) {
		t.Errorf("Apply is not idempotent:\nonce:  %+v\ntwice: %+v", once, twice)
	}
}

func TestApplyNilFeatures(t *testing.T) {
	// Must not panic.
	Apply(nil, domain.Edits{domain.EditBrand: "adidas"})
}
