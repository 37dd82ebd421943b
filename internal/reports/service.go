package reports

import (
	"context"
	"time"

	"resale_support_backend/internal/events"
	"resale_support_backend/platform/logger"
)

// Pusher delivers the report notification to the admin user.
type Pusher interface {
	PushMessage(ctx context.Context, userID, text string) error
}

// Service builds a report and distributes it: admin push plus a bus event.
type Service struct {
	builder     *Builder
	pusher      Pusher
	adminUserID string
	bus         events.Bus
	log         *logger.Logger
}

// NewService creates the report service. adminUserID may be empty, in which
// case no notification is sent.
func NewService(builder *Builder, pusher Pusher, adminUserID string, bus events.Bus, log *logger.Logger) *Service {
	return &Service{
		builder:     builder,
		pusher:      pusher,
		adminUserID: adminUserID,
		bus:         bus,
		log:         log,
	}
}

// RunWeekly builds and distributes the weekly report anchored at today.
func (s *Service) RunWeekly(ctx context.Context) (*Report, error) {
	return s.RunAt(ctx, TypeWeekly, time.Now())
}

// RunMonthly builds and distributes the monthly report anchored at today.
func (s *Service) RunMonthly(ctx context.Context) (*Report, error) {
	return s.RunAt(ctx, TypeMonthly, time.Now())
}

// RunAt builds and distributes a report anchored at an arbitrary date. Used
// by the HTTP trigger to rebuild past periods.
func (s *Service) RunAt(ctx context.Context, typ Type, at time.Time) (*Report, error) {
	report, err := s.builder.Build(ctx, typ, at)
	if err != nil {
		return nil, err
	}

	s.log.Info("report built",
		"type", string(typ),
		"period", report.PeriodLabel(),
		"sales_count", report.Sales.SalesCount,
		"net_profit", report.Sales.NetProfit)

	// Notification failure does not fail the run; the report itself is the
	// deliverable and stays queryable over HTTP.
	if s.pusher != nil && s.adminUserID != "" {
		if err := s.pusher.PushMessage(ctx, s.adminUserID, Message(report)); err != nil {
			s.log.CollaboratorError("line", "push report notification", err)
		}
	}

	if s.bus != nil {
		s.bus.Publish(ctx, events.ReportGenerated{
			BaseEvent:  events.NewBaseEvent(),
			ReportType: string(typ),
			Period:     report.PeriodLabel(),
			SalesCount: report.Sales.SalesCount,
			NetProfit:  report.Sales.NetProfit,
		})
	}

	return report, nil
}
