package ai

import (
	"testing"

	"resale_support_backend/internal/intake/domain"
)

func TestUnmarshalModelJSON(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"bare json", `{"start_price": 4980, "expected_price": 3900, "lowest_acceptable": 2900, "reasoning": "相場中央値"}`},
		{"fenced json", "```json\n{\"start_price\": 4980, \"expected_price\": 3900, \"lowest_acceptable\": 2900, \"reasoning\": \"相場中央値\"}\n```"},
		{"fenced without language", "ご提案します。\n```\n{\"start_price\": 4980, \"expected_price\": 3900, \"lowest_acceptable\": 2900}\n```"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var result PricingResult
			if err := unmarshalModelJSON(tt.text, &result); err != nil {
				t.Fatalf("unmarshalModelJSON: %v", err)
			}
			if result.StartPrice != 4980 || result.ExpectedPrice != 3900 || result.LowestAcceptable != 2900 {
				t.Errorf("result = %+v", result)
			}
		})
	}
}

func TestUnmarshalModelJSONRejectsProse(t *testing.T) {
	var result PricingResult
	if err := unmarshalModelJSON("価格は4980円が妥当だと思います。", &result); err == nil {
		t.Error("expected error for non-JSON answer")
	}
}

func TestParseCategoryAnswer(t *testing.T) {
	tests := []struct {
		answer string
		want   domain.Category
	}{
		{"トップス", domain.CategoryTops},
		{"パンツ", domain.CategoryPants},
		{"セットアップ", domain.CategorySetup},
		{"この衣類はパンツです。", domain.CategoryPants},
		{"判定できません", domain.CategoryTops},
		{"", domain.CategoryTops},
	}

	for _, tt := range tests {
		if got := parseCategoryAnswer(tt.answer); got != tt.want {
			t.Errorf("parseCategoryAnswer(%q) = %v, want %v", tt.answer, got, tt.want)
		}
	}
}

func TestMimeTypeFor(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/tmp/u1/m1.jpg", "image/jpeg"},
		{"/tmp/u1/m1.JPEG", "image/jpeg"},
		{"/tmp/u1/m1.png", "image/png"},
		{"/tmp/u1/m1.webp", "image/webp"},
		{"/tmp/u1/m1", "image/jpeg"},
	}

	for _, tt := range tests {
		if got := mimeTypeFor(tt.path); got != tt.want {
			t.Errorf("mimeTypeFor(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
