package reports

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"resale_support_backend/internal/ledger"
)

type fakeSource struct {
	sales      ledger.SalesSummary
	inventory  ledger.InventoryStatus
	categories []ledger.CategorySales
	err        error

	lastStart time.Time
	lastEnd   time.Time
}

func (f *fakeSource) SalesSummary(ctx context.Context, start, end time.Time) (ledger.SalesSummary, error) {
	f.lastStart, f.lastEnd = start, end
	return f.sales, f.err
}

func (f *fakeSource) InventoryStatus(ctx context.Context, start, end time.Time) (ledger.InventoryStatus, error) {
	return f.inventory, f.err
}

func (f *fakeSource) CategoryBreakdown(ctx context.Context, start, end time.Time) ([]ledger.CategorySales, error) {
	return f.categories, f.err
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestBuildWeeklyPeriod(t *testing.T) {
	source := &fakeSource{}
	builder := NewBuilder(source)

	// Monday 2026-01-12 09:00, the scheduler's usual slot.
	at := time.Date(2026, time.January, 12, 9, 0, 0, 0, time.UTC)
	report, err := builder.BuildWeekly(context.Background(), at)
	if err != nil {
		t.Fatalf("BuildWeekly: %v", err)
	}

	if !report.PeriodStart.Equal(date(2026, time.January, 5)) {
		t.Errorf("period start = %v", report.PeriodStart)
	}
	if !report.PeriodEnd.Equal(date(2026, time.January, 12)) {
		t.Errorf("period end = %v", report.PeriodEnd)
	}
	if !source.lastStart.Equal(report.PeriodStart) || !source.lastEnd.Equal(report.PeriodEnd) {
		t.Errorf("queried [%v, %v)", source.lastStart, source.lastEnd)
	}
	if got := report.PeriodLabel(); got != "01/05〜01/11" {
		t.Errorf("period label = %q", got)
	}
}

func TestBuildMonthlyPeriod(t *testing.T) {
	builder := NewBuilder(&fakeSource{})

	at := time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)
	report, err := builder.BuildMonthly(context.Background(), at)
	if err != nil {
		t.Fatalf("BuildMonthly: %v", err)
	}

	if !report.PeriodStart.Equal(date(2026, time.February, 1)) {
		t.Errorf("period start = %v", report.PeriodStart)
	}
	if !report.PeriodEnd.Equal(date(2026, time.March, 1)) {
		t.Errorf("period end = %v", report.PeriodEnd)
	}
	if got := report.PeriodLabel(); got != "2026年2月" {
		t.Errorf("period label = %q", got)
	}
}

func TestBuildPropagatesQueryError(t *testing.T) {
	source := &fakeSource{err: errors.New("connection refused")}
	builder := NewBuilder(source)

	if _, err := builder.BuildWeekly(context.Background(), time.Now()); err == nil {
		t.Error("expected error when an aggregation fails")
	}
}

func TestYen(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, "¥0"},
		{999, "¥999"},
		{1000, "¥1,000"},
		{45600, "¥45,600"},
		{1234567, "¥1,234,567"},
		{-1340, "-¥1,340"},
	}

	for _, tt := range tests {
		if got := yen(tt.n); got != tt.want {
			t.Errorf("yen(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestMessageContent(t *testing.T) {
	report := &Report{
		Type:        TypeWeekly,
		PeriodStart: date(2026, time.January, 5),
		PeriodEnd:   date(2026, time.January, 12),
		Sales: ledger.SalesSummary{
			SalesCount:       12,
			TotalSales:       45600,
			NetProfit:        12340,
			AvgProfitPerItem: 1028,
		},
		Inventory: ledger.InventoryStatus{
			NewRegistrations: 8,
			SoldCount:        12,
			EndInventory:     34,
			InventoryValue:   28900,
		},
		Categories: []ledger.CategorySales{
			{Category: "トップス", SalesCount: 8, SalesAmount: 30000, Profit: 8250, ProfitRate: 27.5},
			{Category: "パンツ", SalesCount: 4, SalesAmount: 15600, Profit: 3450, ProfitRate: 22.1},
		},
	}

	msg := Message(report)
	for _, want := range []string{
		"【週次報告】",
		"01/05〜01/11",
		"売上件数: 12件",
		"総売上高: ¥45,600",
		"純利益: ¥12,340",
		"平均利益/件: ¥1,028",
		"新規登録: 8件 / 売却: 12件",
		"出品中: 34件（在庫金額 ¥28,900）",
		"トップス: 8件 / ¥30,000 / 利益率 27.5%",
		"パンツ: 4件 / ¥15,600 / 利益率 22.1%",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q\n%s", want, msg)
		}
	}
}

func TestMessageWithoutSales(t *testing.T) {
	report := &Report{
		Type:        TypeMonthly,
		PeriodStart: date(2026, time.February, 1),
		PeriodEnd:   date(2026, time.March, 1),
	}

	msg := Message(report)
	if !strings.Contains(msg, "【月次報告】") || !strings.Contains(msg, "2026年2月") {
		t.Errorf("header wrong:\n%s", msg)
	}
	if !strings.Contains(msg, "（期間内の売上なし）") {
		t.Errorf("empty category section missing:\n%s", msg)
	}
	if strings.Contains(msg, "平均利益/件") {
		t.Errorf("average line must be omitted with zero sales:\n%s", msg)
	}
}
