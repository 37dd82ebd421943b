// Package generation turns a confirmed feature summary into a finished
// listing: title, hashtags, description body, and the strategy-dependent
// price suggestion.
package generation

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"resale_support_backend/internal/ai"
	"resale_support_backend/internal/intake/domain"
	"resale_support_backend/internal/intake/ports"
	"resale_support_backend/platform/config"
	"resale_support_backend/platform/logger"
)

// TextGen is the slice of the AI client the generator needs.
type TextGen interface {
	GenerateTitle(ctx context.Context, f *domain.Features) (string, error)
	GenerateHashtags(ctx context.Context, f *domain.Features) ([]string, error)
	GeneratePricing(ctx context.Context, f *domain.Features, purchasePrice, minimumPrice int, strategy domain.PricingStrategy) (ai.PricingResult, error)
}

// Compile-time check that Generator satisfies the intake port
var _ ports.Generator = (*Generator)(nil)

// Generator produces the marketing copy and pricing for a product.
type Generator struct {
	textGen TextGen
	cfg     config.PricingConfig
	log     *logger.Logger
}

// New creates a listing generator.
func New(textGen TextGen, cfg config.PricingConfig, log *logger.Logger) *Generator {
	return &Generator{textGen: textGen, cfg: cfg, log: log}
}

// Generate fills in title, hashtags, description and price suggestion on the
// product. Title, hashtags and pricing are independent model calls and run
// concurrently; the description needs the hashtags, so it is built after.
func (g *Generator) Generate(ctx context.Context, product *domain.Product, strategy domain.PricingStrategy) (*domain.Product, error) {
	features := &product.Features
	minimumPrice := MinimumPrice(g.cfg, product.PurchasePrice)

	var (
		title    string
		hashtags []string
		pricing  ai.PricingResult
	)

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		title, err = g.textGen.GenerateTitle(gctx, features)
		return err
	})
	group.Go(func() error {
		var err error
		hashtags, err = g.textGen.GenerateHashtags(gctx, features)
		return err
	})
	group.Go(func() error {
		var err error
		pricing, err = g.textGen.GeneratePricing(gctx, features, product.PurchasePrice, minimumPrice, strategy)
		return err
	})
	if err := group.Wait(); err != nil {
		return nil, fmt.Errorf("generate listing: %w", err)
	}

	pricing = clampPricing(pricing, minimumPrice)

	product.Title = title
	product.Hashtags = hashtags
	product.Description = buildDescription(features, &product.Measurements,
		product.ManagementID, features.DescriptionText, hashtags)
	product.PriceSuggestion = &domain.PriceSuggestion{
		MinimumPrice:     minimumPrice,
		StartPrice:       pricing.StartPrice,
		ExpectedPrice:    pricing.ExpectedPrice,
		LowestAcceptable: pricing.LowestAcceptable,
		Strategy:         strategy,
		Reasoning:        pricing.Reasoning,
	}

	g.log.Info("listing generated",
		"management_id", product.ManagementID,
		"strategy", strategy.String(),
		"start_price", pricing.StartPrice)

	return product, nil
}
