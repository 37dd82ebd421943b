// Package ai talks to the Gemini API for image understanding and listing
// copy generation. It implements the vision port of the intake conversation
// and the text generation the listing generator builds on.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"google.golang.org/genai"

	"resale_support_backend/internal/intake/domain"
	"resale_support_backend/platform/config"
	"resale_support_backend/platform/logger"
)

// maxAnalysisImages caps how many photos are sent to a single analysis call.
const maxAnalysisImages = 5

// Client wraps the Gemini SDK with the prompts this system uses.
type Client struct {
	genai       *genai.Client
	model       string
	visionModel string
	log         *logger.Logger
}

// NewClient creates a Gemini client from configuration.
func NewClient(ctx context.Context, cfg config.GeminiConfig, log *logger.Logger) (*Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GetGeminiAPIKey(),
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &Client{
		genai:       client,
		model:       cfg.GetGeminiModel(),
		visionModel: cfg.GetGeminiVisionModel(),
		log:         log,
	}, nil
}

// DetectCategory classifies the garment into tops, pants or setup using only
// the first photo. Runs before measurements are requested, so it is kept
// cheap; the full analysis call later re-confirms the category.
func (c *Client) DetectCategory(ctx context.Context, imagePaths []string) (domain.Category, error) {
	if len(imagePaths) == 0 {
		return domain.CategoryTops, nil
	}

	part, err := imagePart(imagePaths[0])
	if err != nil {
		return domain.CategoryTops, err
	}

	text, err := c.generate(ctx, c.visionModel, []*genai.Part{part, genai.NewPartFromText(categoryPrompt)}, 20)
	if err != nil {
		return domain.CategoryTops, fmt.Errorf("detect category: %w", err)
	}

	return parseCategoryAnswer(text), nil
}

type analysisResult struct {
	Brand           string  `json:"brand"`
	Category        string  `json:"category"`
	ItemType        string  `json:"item_type"`
	Gender          string  `json:"gender"`
	Size            string  `json:"size"`
	Color           string  `json:"color"`
	Design          string  `json:"design"`
	Material        string  `json:"material"`
	DescriptionText string  `json:"description_text"`
	Confidence      float64 `json:"confidence"`
}

// Analyze extracts the feature summary from the photos. supplementaryText is
// whatever free text the user typed while collecting; the model is told to
// prefer it over its own guesses.
func (c *Client) Analyze(ctx context.Context, imagePaths []string, supplementaryText string) (*domain.Features, error) {
	if len(imagePaths) == 0 {
		return nil, fmt.Errorf("analyze: no images")
	}
	if len(imagePaths) > maxAnalysisImages {
		imagePaths = imagePaths[:maxAnalysisImages]
	}

	userText := supplementaryText
	if userText == "" {
		userText = "（補足情報なし）"
	}

	parts := make([]*genai.Part, 0, len(imagePaths)+1)
	parts = append(parts, genai.NewPartFromText(fmt.Sprintf(analysisPrompt, userText)))
	for _, path := range imagePaths {
		part, err := imagePart(path)
		if err != nil {
			return nil, err
		}
		parts = append(parts, part)
	}

	text, err := c.generate(ctx, c.visionModel, parts, 1000)
	if err != nil {
		return nil, fmt.Errorf("analyze images: %w", err)
	}

	var result analysisResult
	if err := unmarshalModelJSON(text, &result); err != nil {
		return nil, fmt.Errorf("analyze images: %w", err)
	}

	features := domain.NewFeatures()
	features.Category = domain.ParseCategory(result.Category)
	features.ItemType = orUnknown(result.ItemType)
	features.Brand = orUnknown(result.Brand)
	features.Gender = orUnknown(result.Gender)
	features.Size = orUnknown(result.Size)
	features.Color = orUnknown(result.Color)
	features.Design = result.Design
	features.Material = result.Material
	features.Confidence = result.Confidence
	features.DescriptionText = result.DescriptionText
	return features, nil
}

// GenerateTitle produces the listing title, capped at 40 characters.
func (c *Client) GenerateTitle(ctx context.Context, f *domain.Features) (string, error) {
	prompt := fmt.Sprintf(titlePrompt,
		f.Brand, f.Category.String(), f.ItemType, f.Gender, f.Size, f.Color,
		orNone(f.Design), orText(f.Era, "不明"))

	text, err := c.generate(ctx, c.model, []*genai.Part{genai.NewPartFromText(prompt)}, 100)
	if err != nil {
		return "", fmt.Errorf("generate title: %w", err)
	}

	title := strings.TrimSpace(text)
	if runes := []rune(title); len(runes) > 40 {
		title = string(runes[:40])
	}
	return title, nil
}

var hashtagPattern = regexp.MustCompile(`#\S+`)

// GenerateHashtags produces the hashtag list for the listing footer.
func (c *Client) GenerateHashtags(ctx context.Context, f *domain.Features) ([]string, error) {
	prompt := fmt.Sprintf(hashtagPrompt,
		f.Brand, f.Category.String(), f.ItemType, f.Gender, f.Color, orNone(f.Design))

	text, err := c.generate(ctx, c.model, []*genai.Part{genai.NewPartFromText(prompt)}, 200)
	if err != nil {
		return nil, fmt.Errorf("generate hashtags: %w", err)
	}

	return hashtagPattern.FindAllString(text, -1), nil
}

// PricingResult is the model's raw price proposal. Consistency against the
// minimum price is enforced by the caller.
type PricingResult struct {
	StartPrice       int    `json:"start_price"`
	ExpectedPrice    int    `json:"expected_price"`
	LowestAcceptable int    `json:"lowest_acceptable"`
	Reasoning        string `json:"reasoning"`
}

// GeneratePricing asks the model for the three strategy-dependent price
// points given the purchase price and the computed floor.
func (c *Client) GeneratePricing(ctx context.Context, f *domain.Features, purchasePrice, minimumPrice int, strategy domain.PricingStrategy) (PricingResult, error) {
	prompt := fmt.Sprintf(pricingPrompt,
		f.Brand, f.Category.String(), f.ItemType, f.Gender, f.Size, f.Color,
		orNone(f.Design), f.Condition,
		purchasePrice, minimumPrice, strategy.String())

	text, err := c.generate(ctx, c.model, []*genai.Part{genai.NewPartFromText(prompt)}, 500)
	if err != nil {
		return PricingResult{}, fmt.Errorf("generate pricing: %w", err)
	}

	var result PricingResult
	if err := unmarshalModelJSON(text, &result); err != nil {
		return PricingResult{}, fmt.Errorf("generate pricing: %w", err)
	}
	return result, nil
}

func (c *Client) generate(ctx context.Context, model string, parts []*genai.Part, maxTokens int32) (string, error) {
	contents := []*genai.Content{{Role: "user", Parts: parts}}
	resp, err := c.genai.Models.GenerateContent(ctx, model, contents, &genai.GenerateContentConfig{
		MaxOutputTokens: maxTokens,
	})
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

func imagePart(path string) (*genai.Part, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image %s: %w", path, err)
	}
	return &genai.Part{
		InlineData: &genai.Blob{
			MIMEType: mimeTypeFor(path),
			Data:     data,
		},
	}, nil
}

func mimeTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}

var jsonFencePattern = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// unmarshalModelJSON parses a model answer that may wrap its JSON in a
// markdown code fence.
func unmarshalModelJSON(text string, v any) error {
	raw := strings.TrimSpace(text)
	if m := jsonFencePattern.FindStringSubmatch(raw); m != nil {
		raw = m[1]
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("parse model json: %w (answer: %s)", err, text)
	}
	return nil
}

// parseCategoryAnswer normalizes the free-text category answer. Anything
// that is not clearly pants or setup is treated as tops.
func parseCategoryAnswer(text string) domain.Category {
	switch {
	case strings.Contains(text, domain.LabelPants):
		return domain.CategoryPants
	case strings.Contains(text, domain.LabelSetup):
		return domain.CategorySetup
	default:
		return domain.CategoryTops
	}
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return domain.Unknown
	}
	return s
}

func orNone(s string) string {
	if s == "" {
		return "特になし"
	}
	return s
}

func orText(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
