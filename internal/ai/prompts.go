package ai

// Prompts sent to the model. All user-visible output of the bot is Japanese,
// so the prompts are too; mixed-language prompts degrade answer quality on
// garment terminology.

const categoryPrompt = `この画像の衣類のカテゴリを判定してください。
以下の3つから1つだけ答えてください：
- トップス（上半身の服：Tシャツ、パーカー、ジャケット等）
- パンツ（下半身の服：ジーンズ、スラックス等）
- セットアップ（上下セット）

回答は「トップス」「パンツ」「セットアップ」のいずれか1語のみで答えてください。`

const analysisPrompt = `あなたは古着販売の専門家です。画像の衣類を解析し、商品特徴を抽出してください。

ユーザーからの補足情報: %s

以下のJSON形式のみで回答してください（コードブロック可）:
{
  "brand": "ブランド名（タグやロゴから判定。不明なら UNKNOWN）",
  "category": "トップス / パンツ / セットアップ のいずれか",
  "item_type": "アイテム種別（パーカー、スウェット、ジーンズ等）",
  "gender": "メンズ / レディース / ユニセックス / UNKNOWN",
  "size": "タグから読み取れたサイズ。不明なら UNKNOWN",
  "color": "主な色（日本語）",
  "design": "デザイン特徴（刺繍ロゴ、プリント、無地等。なければ空文字）",
  "material": "素材（タグから読み取れた場合のみ。なければ空文字）",
  "description_text": "商品の魅力を伝える2〜3文の説明文（日本語）",
  "confidence": 0.0〜1.0の確信度
}

補足情報にブランドやサイズが書かれている場合はそれを優先してください。`

const titlePrompt = `中古衣類のフリマアプリ向け商品名を1つ生成してください。

商品情報:
- ブランド: %s
- カテゴリ: %s
- アイテム: %s
- 性別: %s
- サイズ: %s
- 色: %s
- デザイン: %s
- 年代: %s

条件:
- 40文字以内
- 検索されやすいキーワードを先頭に
- UNKNOWNの項目は含めない
- 商品名のみを出力（説明や記号の装飾は不要）`

const hashtagPrompt = `中古衣類のフリマアプリ出品用ハッシュタグを5〜8個生成してください。

商品情報:
- ブランド: %s
- カテゴリ: %s
- アイテム: %s
- 性別: %s
- 色: %s
- デザイン: %s

条件:
- 各タグは#で始める
- 日本語メイン、ブランド名はそのまま
- UNKNOWNの項目はタグにしない
- タグのみをスペース区切りで出力`

const pricingPrompt = `中古衣類のフリマアプリ出品価格を提案してください。

商品情報:
- ブランド: %s
- カテゴリ: %s
- アイテム: %s
- 性別: %s
- サイズ: %s
- 色: %s
- デザイン: %s
- 状態: %s

価格条件:
- 仕入れ価格: %d円
- 最低販売価格: %d円（これを下回る提案は不可）
- 戦略: %s

戦略の意味:
- 高利益重視: 相場上限を狙い、売れるまで時間がかかっても利益を優先
- バランス: 相場中央値で利益と回転の両立
- 回転重視: 相場下限で早期売却を優先

以下のJSON形式のみで回答してください:
{
  "start_price": スタート価格（整数・円）,
  "expected_price": 想定販売価格（整数・円）,
  "lowest_acceptable": 値下げ許容ライン（整数・円）,
  "reasoning": "価格設定の理由（1〜2文・日本語）"
}`
