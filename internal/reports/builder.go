package reports

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"resale_support_backend/internal/ledger"
)

// LedgerSource is the slice of the ledger the builder aggregates over.
type LedgerSource interface {
	SalesSummary(ctx context.Context, start, end time.Time) (ledger.SalesSummary, error)
	InventoryStatus(ctx context.Context, start, end time.Time) (ledger.InventoryStatus, error)
	CategoryBreakdown(ctx context.Context, start, end time.Time) ([]ledger.CategorySales, error)
}

// Builder computes reports from the ledger.
type Builder struct {
	source LedgerSource
	now    func() time.Time
}

// NewBuilder creates a report builder.
func NewBuilder(source LedgerSource) *Builder {
	return &Builder{source: source, now: time.Now}
}

// BuildWeekly builds the report for the seven full days before the given
// date. The scheduler runs it Monday morning, so the window is the previous
// Monday through Sunday.
func (b *Builder) BuildWeekly(ctx context.Context, at time.Time) (*Report, error) {
	end := startOfDay(at)
	start := end.AddDate(0, 0, -7)
	return b.build(ctx, TypeWeekly, start, end)
}

// BuildMonthly builds the report for the calendar month before the given
// date.
func (b *Builder) BuildMonthly(ctx context.Context, at time.Time) (*Report, error) {
	end := time.Date(at.Year(), at.Month(), 1, 0, 0, 0, 0, at.Location())
	start := end.AddDate(0, -1, 0)
	return b.build(ctx, TypeMonthly, start, end)
}

// Build runs the builder for the given type, anchored at the given date.
func (b *Builder) Build(ctx context.Context, typ Type, at time.Time) (*Report, error) {
	if typ == TypeMonthly {
		return b.BuildMonthly(ctx, at)
	}
	return b.BuildWeekly(ctx, at)
}

func (b *Builder) build(ctx context.Context, typ Type, start, end time.Time) (*Report, error) {
	report := &Report{
		Type:        typ,
		PeriodStart: start,
		PeriodEnd:   end,
		GeneratedAt: b.now(),
	}

	// The three aggregations are independent queries; run them together.
	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		report.Sales, err = b.source.SalesSummary(gctx, start, end)
		return err
	})
	group.Go(func() error {
		var err error
		report.Inventory, err = b.source.InventoryStatus(gctx, start, end)
		return err
	})
	group.Go(func() error {
		var err error
		report.Categories, err = b.source.CategoryBreakdown(gctx, start, end)
		return err
	})
	if err := group.Wait(); err != nil {
		return nil, fmt.Errorf("build %s report: %w", typ, err)
	}

	return report, nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
