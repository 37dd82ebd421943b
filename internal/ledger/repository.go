// Package ledger persists finished listings and their sale outcomes in
// Postgres. It backs both the conversation flow (save listing, record sale)
// and the periodic report aggregation.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"resale_support_backend/internal/intake/domain"
	"resale_support_backend/internal/intake/ports"
)

// StatusListed and StatusSold are the two lifecycle states of a ledger row.
// The Japanese values match what the operator sees in exports.
const (
	StatusListed = "出品中"
	StatusSold   = "売却済み"
)

// Repo implements the product ledger on a pgx pool.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a ledger repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements the intake port.
var _ ports.Ledger = (*Repo)(nil)

// SaveProduct writes a finished listing. Re-listing under the same
// management number overwrites the previous row; operators reuse numbers
// when they redo a listing.
func (r *Repo) SaveProduct(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (
			management_id, purchase_price,
			brand, category, item_type, gender, size, color, design, era,
			strategy, title, description, hashtags,
			start_price, expected_price, lowest_acceptable, minimum_price,
			length_cm, width_cm, shoulder_cm, sleeve_cm,
			waist_cm, inseam_cm, hem_width_cm, rise_cm,
			image_url, status
		) VALUES (
			$1, $2,
			$3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14,
			$15, $16, $17, $18,
			$19, $20, $21, $22,
			$23, $24, $25, $26,
			$27, $28
		)
		ON CONFLICT (management_id) DO UPDATE SET
			purchase_price = EXCLUDED.purchase_price,
			brand = EXCLUDED.brand, category = EXCLUDED.category,
			item_type = EXCLUDED.item_type, gender = EXCLUDED.gender,
			size = EXCLUDED.size, color = EXCLUDED.color,
			design = EXCLUDED.design, era = EXCLUDED.era,
			strategy = EXCLUDED.strategy, title = EXCLUDED.title,
			description = EXCLUDED.description, hashtags = EXCLUDED.hashtags,
			start_price = EXCLUDED.start_price,
			expected_price = EXCLUDED.expected_price,
			lowest_acceptable = EXCLUDED.lowest_acceptable,
			minimum_price = EXCLUDED.minimum_price,
			length_cm = EXCLUDED.length_cm, width_cm = EXCLUDED.width_cm,
			shoulder_cm = EXCLUDED.shoulder_cm, sleeve_cm = EXCLUDED.sleeve_cm,
			waist_cm = EXCLUDED.waist_cm, inseam_cm = EXCLUDED.inseam_cm,
			hem_width_cm = EXCLUDED.hem_width_cm, rise_cm = EXCLUDED.rise_cm,
			image_url = EXCLUDED.image_url,
			status = EXCLUDED.status,
			registered_at = now(),
			updated_at = now()`

	var strategy string
	var startPrice, expectedPrice, lowestAcceptable, minimumPrice *int
	if price := product.PriceSuggestion; price != nil {
		strategy = price.Strategy.String()
		startPrice = &price.StartPrice
		expectedPrice = &price.ExpectedPrice
		lowestAcceptable = &price.LowestAcceptable
		minimumPrice = &price.MinimumPrice
	}

	features := product.Features
	measurements := product.Measurements

	_, err := r.pool.Exec(ctx, query,
		product.ManagementID, product.PurchasePrice,
		features.Brand, features.Category.String(), features.ItemType,
		features.Gender, features.Size, features.Color, features.Design, features.Era,
		strategy, product.Title, product.Description, strings.Join(product.Hashtags, " "),
		startPrice, expectedPrice, lowestAcceptable, minimumPrice,
		measurements.Length, measurements.Width, measurements.Shoulder, measurements.Sleeve,
		measurements.Waist, measurements.Inseam, measurements.HemWidth, measurements.Rise,
		product.ImageURL, StatusListed,
	)
	if err != nil {
		return fmt.Errorf("save product: %w", err)
	}
	return nil
}

// UpdateSaleInfo marks the product as sold and computes commission and
// profit. Commission is 10% of the sale price, truncated to whole yen;
// profit is what remains after purchase price, shipping and commission.
// An unknown management number reports found=false without an error.
func (r *Repo) UpdateSaleInfo(ctx context.Context, managementID string, salePrice, shippingCost int) (ports.SaleRecord, bool, error) {
	query := `
		UPDATE products
		SET status = $4,
			sale_date = now(),
			sale_price = $2,
			sale_shipping_cost = $3,
			commission = $2 / 10,
			profit = $2 - purchase_price - $3 - ($2 / 10),
			updated_at = now()
		WHERE management_id = $1
		RETURNING commission, profit`

	record := ports.SaleRecord{
		ManagementID: managementID,
		SalePrice:    salePrice,
		ShippingCost: shippingCost,
	}
	err := r.pool.QueryRow(ctx, query, managementID, salePrice, shippingCost, StatusSold).
		Scan(&record.Commission, &record.Profit)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ports.SaleRecord{}, false, nil
		}
		return ports.SaleRecord{}, false, fmt.Errorf("update sale info: %w", err)
	}
	return record, true, nil
}

// SalesSummary aggregates the sales that closed inside the period.
type SalesSummary struct {
	SalesCount       int
	TotalSales       int
	TotalPurchase    int
	TotalShipping    int
	TotalCommission  int
	NetProfit        int
	AvgProfitPerItem int
}

// SalesSummary computes the sales totals for [start, end).
func (r *Repo) SalesSummary(ctx context.Context, start, end time.Time) (SalesSummary, error) {
	query := `
		SELECT COUNT(*),
			COALESCE(SUM(sale_price), 0),
			COALESCE(SUM(purchase_price), 0),
			COALESCE(SUM(sale_shipping_cost), 0),
			COALESCE(SUM(commission), 0),
			COALESCE(SUM(profit), 0)
		FROM products
		WHERE sale_date >= $1 AND sale_date < $2`

	var s SalesSummary
	if err := r.pool.QueryRow(ctx, query, start, end).Scan(
		&s.SalesCount, &s.TotalSales, &s.TotalPurchase,
		&s.TotalShipping, &s.TotalCommission, &s.NetProfit,
	); err != nil {
		return SalesSummary{}, fmt.Errorf("sales summary: %w", err)
	}

	if s.SalesCount > 0 {
		s.AvgProfitPerItem = s.NetProfit / s.SalesCount
	}
	return s, nil
}

// InventoryStatus captures stock movement over the period plus the current
// on-hand position.
type InventoryStatus struct {
	StartInventory   int
	NewRegistrations int
	SoldCount        int
	EndInventory     int
	InventoryValue   int
}

// InventoryStatus computes stock movement for [start, end). End inventory is
// the count of rows still listed right now, valued at purchase price.
func (r *Repo) InventoryStatus(ctx context.Context, start, end time.Time) (InventoryStatus, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE registered_at < $1
				AND (sale_date IS NULL OR sale_date >= $1)),
			COUNT(*) FILTER (WHERE registered_at >= $1 AND registered_at < $2),
			COUNT(*) FILTER (WHERE sale_date >= $1 AND sale_date < $2),
			COUNT(*) FILTER (WHERE status = $3),
			COALESCE(SUM(purchase_price) FILTER (WHERE status = $3), 0)
		FROM products`

	var inv InventoryStatus
	if err := r.pool.QueryRow(ctx, query, start, end, StatusListed).Scan(
		&inv.StartInventory, &inv.NewRegistrations, &inv.SoldCount,
		&inv.EndInventory, &inv.InventoryValue,
	); err != nil {
		return InventoryStatus{}, fmt.Errorf("inventory status: %w", err)
	}
	return inv, nil
}

// CategorySales is one row of the per-category breakdown.
type CategorySales struct {
	Category    string
	SalesCount  int
	SalesAmount int
	Profit      int
	ProfitRate  float64
}

// CategoryBreakdown aggregates the period's sales per category, ordered by
// sales amount descending.
func (r *Repo) CategoryBreakdown(ctx context.Context, start, end time.Time) ([]CategorySales, error) {
	query := `
		SELECT COALESCE(NULLIF(category, ''), 'その他'),
			COUNT(*),
			COALESCE(SUM(sale_price), 0),
			COALESCE(SUM(profit), 0)
		FROM products
		WHERE sale_date >= $1 AND sale_date < $2
		GROUP BY 1
		ORDER BY 3 DESC`

	rows, err := r.pool.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("category breakdown: %w", err)
	}
	defer rows.Close()

	var breakdown []CategorySales
	for rows.Next() {
		var c CategorySales
		if err := rows.Scan(&c.Category, &c.SalesCount, &c.SalesAmount, &c.Profit); err != nil {
			return nil, fmt.Errorf("scan category breakdown: %w", err)
		}
		if c.SalesAmount > 0 {
			c.ProfitRate = float64(c.Profit) / float64(c.SalesAmount) * 100
		}
		breakdown = append(breakdown, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("category breakdown rows: %w", err)
	}
	return breakdown, nil
}
