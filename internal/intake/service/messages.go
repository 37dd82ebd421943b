package service

import (
	"fmt"
	"strconv"
	"strings"

	"resale_support_backend/internal/intake/domain"
	"resale_support_backend/internal/intake/ports"
)

// Fixed reply texts of the conversation. These strings are the protocol the
// users learned; change them and the bot "breaks" for its regulars.
const (
	msgResetDone = "セッションをリセットしました。\n商品画像と「仕入れ価格 管理番号」を送信してください。\n例: 「880 222」または「880 222 90s」"

	msgSalePrompt = "売却情報を入力してください。\n「管理番号 販売価格 送料」\n例: 「215 3000 700」"

	msgSaleFormat = "入力形式が正しくありません。\n「管理番号 販売価格 送料」の順で入力してください。\n例: 「215 3000 700」"

	msgAccepted = "受け付けました。"

	msgImageRejected = "現在、入力待ち状態です。\n新しい商品を登録する場合は「リセット」と送信してください。"

	msgConfirmUnknown = "入力を認識できませんでした。\n\n修正する場合：「1 adidas」のように番号と内容を送信\n確定する場合：戦略（A/B/C）を送信"
)

func msgError(err error) string {
	return fmt.Sprintf("エラーが発生しました: %v\n「リセット」と送信して最初からやり直してください。", err)
}

func msgGenerationError(err error) string {
	return fmt.Sprintf("生成中にエラーが発生しました: %v\n「リセット」と送信して最初からやり直してください。", err)
}

func msgImageSaveError(err error) string {
	return fmt.Sprintf("画像の保存に失敗しました: %v", err)
}

func msgSaleError(err error) string {
	return fmt.Sprintf("エラーが発生しました: %v\n再度お試しください。", err)
}

func msgSaleNotFound(managementID string) string {
	return fmt.Sprintf("管理番号「%s」の商品が見つかりませんでした。\n管理番号を確認して再度入力してください。", managementID)
}

func msgSaleRecorded(r ports.SaleRecord) string {
	return fmt.Sprintf(
		"売却を記録しました。\n\n管理番号: %s\n販売価格: %s円\n送料: %s円\n手数料: %s円\n利益: %s円\n\n※台帳を更新しました",
		r.ManagementID,
		comma(r.SalePrice),
		comma(r.ShippingCost),
		comma(r.Commission),
		comma(r.Profit),
	)
}

func msgMissingData(missing []string) string {
	return "受け付けました。\n\n不足している情報:\n・" + strings.Join(missing, "\n・") +
		"\n\n画像と「仕入れ価格 管理番号」を送信してください。\n例: 「880 222」または「880 222 90s」"
}

func msgCategoryDetected(imageCount int, category domain.Category) string {
	return fmt.Sprintf("画像%d枚を受け付けました。\n\nカテゴリ: %s\n\n%s",
		imageCount, category, category.MeasurementPrompt())
}

// descriptionSplitAt keeps each generated-result message under the channel's
// message length limit with headroom for the section header.
const descriptionSplitAt = 4500

// resultMessages renders the generation outcome as the message sequence sent
// back in one reply: summary with prices first, then the description, split
// in two when it runs long.
func resultMessages(product *domain.Product) []string {
	var price domain.PriceSuggestion
	if product.PriceSuggestion != nil {
		price = *product.PriceSuggestion
	}

	summary := strings.Join([]string{
		"【生成完了】",
		"",
		"■ 商品名",
		product.Title,
		"",
		"■ 価格提案",
		"・スタート価格：" + comma(price.StartPrice) + "円",
		"・想定販売価格：" + comma(price.ExpectedPrice) + "円",
		"・値下げ許容：" + comma(price.LowestAcceptable) + "円",
		"・最低価格：" + comma(price.MinimumPrice) + "円",
		"",
		"戦略：" + price.Strategy.String(),
		"理由：" + price.Reasoning,
	}, "\n")

	messages := []string{summary}

	description := []rune(product.Description)
	if len(description) > descriptionSplitAt {
		messages = append(messages,
			"■ 商品説明\n"+string(description[:descriptionSplitAt]),
			string(description[descriptionSplitAt:]),
		)
	} else {
		messages = append(messages, "■ 商品説明\n"+product.Description)
	}

	return messages
}

// comma renders an amount with thousands separators (3000 → 「3,000」).
func comma(n int) string {
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}

	digits := strconv.Itoa(n)
	if len(digits) <= 3 {
		return sign + digits
	}

	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return sign + b.String()
}
