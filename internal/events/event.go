// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"resale_support_backend/platform/events"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Intake Domain Events
// =============================================================================

// ProductGenerated is published after a listing has been generated and the
// result delivered to the user.
type ProductGenerated struct {
	BaseEvent
	UserID       string `json:"userId"`
	ManagementID string `json:"managementId"`
	Title        string `json:"title"`
	Category     string `json:"category"`
	StartPrice   int    `json:"startPrice"`
}

func (e ProductGenerated) EventName() string { return "intake.product.generated" }

// SaleRecorded is published after a sale has been recorded in the ledger.
type SaleRecorded struct {
	BaseEvent
	UserID       string `json:"userId"`
	ManagementID string `json:"managementId"`
	SalePrice    int    `json:"salePrice"`
	ShippingCost int    `json:"shippingCost"`
	Commission   int    `json:"commission"`
	Profit       int    `json:"profit"`
}

func (e SaleRecorded) EventName() string { return "intake.sale.recorded" }

// =============================================================================
// Reports Domain Events
// =============================================================================

// ReportGenerated is published when a periodic sales report has been built.
type ReportGenerated struct {
	BaseEvent
	ReportType string `json:"reportType"`
	Period     string `json:"period"`
	SalesCount int    `json:"salesCount"`
	NetProfit  int    `json:"netProfit"`
}

func (e ReportGenerated) EventName() string { return "reports.report.generated" }
