// Package reports builds the periodic sales reports: aggregation over the
// product ledger, a LINE-sized summary message, and the HTTP endpoints and
// task handlers that trigger a run.
package reports

import (
	"time"

	"resale_support_backend/internal/ledger"
)

// Type distinguishes the two report cadences.
type Type string

const (
	TypeWeekly  Type = "weekly"
	TypeMonthly Type = "monthly"
)

// Label returns the Japanese heading for the report type.
func (t Type) Label() string {
	if t == TypeMonthly {
		return "月次報告"
	}
	return "週次報告"
}

// Report is one built report. The period is half-open: [PeriodStart,
// PeriodEnd).
type Report struct {
	Type        Type                   `json:"reportType"`
	PeriodStart time.Time              `json:"periodStart"`
	PeriodEnd   time.Time              `json:"periodEnd"`
	Sales       ledger.SalesSummary    `json:"sales"`
	Inventory   ledger.InventoryStatus `json:"inventory"`
	Categories  []ledger.CategorySales `json:"categories"`
	GeneratedAt time.Time              `json:"generatedAt"`
}

// PeriodLabel renders the covered period for display: day range for weekly,
// year and month for monthly.
func (r *Report) PeriodLabel() string {
	if r.Type == TypeMonthly {
		return r.PeriodStart.Format("2006年1月")
	}
	lastDay := r.PeriodEnd.AddDate(0, 0, -1)
	return r.PeriodStart.Format("01/02") + "〜" + lastDay.Format("01/02")
}
