package reports

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"resale_support_backend/internal/events"
	"resale_support_backend/internal/ledger"
	"resale_support_backend/platform/logger"
)

type fakePusher struct {
	userID string
	text   string
	calls  int
	err    error
}

func (f *fakePusher) PushMessage(ctx context.Context, userID, text string) error {
	f.userID, f.text = userID, text
	f.calls++
	return f.err
}

type recordingBus struct {
	published []events.Event
}

func (b *recordingBus) Publish(ctx context.Context, event events.Event) {
	b.published = append(b.published, event)
}

func (b *recordingBus) PublishSync(ctx context.Context, event events.Event) error {
	b.published = append(b.published, event)
	return nil
}

func (b *recordingBus) Subscribe(eventName string, handler events.Handler) {}

func TestServicePushesToAdmin(t *testing.T) {
	source := &fakeSource{sales: ledger.SalesSummary{SalesCount: 3, NetProfit: 4500}}
	pusher := &fakePusher{}
	bus := &recordingBus{}
	svc := NewService(NewBuilder(source), pusher, "Uadmin", bus, logger.New("development"))

	report, err := svc.RunWeekly(context.Background())
	if err != nil {
		t.Fatalf("RunWeekly: %v", err)
	}

	if pusher.calls != 1 || pusher.userID != "Uadmin" {
		t.Errorf("push = %d calls to %q", pusher.calls, pusher.userID)
	}
	if !strings.Contains(pusher.text, "【週次報告】") {
		t.Errorf("notification text:\n%s", pusher.text)
	}

	if len(bus.published) != 1 {
		t.Fatalf("published %d events", len(bus.published))
	}
	event, ok := bus.published[0].(events.ReportGenerated)
	if !ok {
		t.Fatalf("event type %T", bus.published[0])
	}
	if event.ReportType != "weekly" || event.SalesCount != 3 || event.NetProfit != 4500 {
		t.Errorf("event = %+v", event)
	}
	if report.Sales.SalesCount != 3 {
		t.Errorf("report = %+v", report.Sales)
	}
}

func TestServicePushFailureDoesNotFailRun(t *testing.T) {
	pusher := &fakePusher{err: errors.New("channel unavailable")}
	svc := NewService(NewBuilder(&fakeSource{}), pusher, "Uadmin", &recordingBus{}, logger.New("development"))

	if _, err := svc.RunMonthly(context.Background()); err != nil {
		t.Errorf("RunMonthly: %v", err)
	}
}

func TestServiceSkipsPushWithoutAdmin(t *testing.T) {
	pusher := &fakePusher{}
	svc := NewService(NewBuilder(&fakeSource{}), pusher, "", &recordingBus{}, logger.New("development"))

	if _, err := svc.RunAt(context.Background(), TypeWeekly, time.Now()); err != nil {
		t.Fatalf("RunAt: %v", err)
	}
	if pusher.calls != 0 {
		t.Errorf("push called %d times without admin user", pusher.calls)
	}
}
