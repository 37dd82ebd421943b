package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"resale_support_backend/internal/intake/domain"
	"resale_support_backend/internal/intake/ports"
	"resale_support_backend/internal/intake/session"
	"resale_support_backend/platform/logger"
)

type fakeMessenger struct {
	replies []string
	multi   [][]string
	pushes  []string
}

func (m *fakeMessenger) ReplyText(_ context.Context, _, text string) error {
	m.replies = append(m.replies, text)
	return nil
}

func (m *fakeMessenger) ReplyMultiple(_ context.Context, _ string, texts []string) error {
	m.multi = append(m.multi, texts)
	return nil
}

func (m *fakeMessenger) PushMessage(_ context.Context, _, text string) error {
	m.pushes = append(m.pushes, text)
	return nil
}

func (m *fakeMessenger) lastReply(t *testing.T) string {
	t.Helper()
	if len(m.replies) == 0 {
		t.Fatal("no reply was sent")
	}
	return m.replies[len(m.replies)-1]
}

type fakeImages struct {
	downloads   int
	downloadErr error
	cleared     []string
}

func (f *fakeImages) DownloadImage(_ context.Context, messageID, userID string) (string, error) {
	if f.downloadErr != nil {
		return "", f.downloadErr
	}
	f.downloads++
	return fmt.Sprintf("/tmp/%s/%s.jpg", userID, messageID), nil
}

func (f *fakeImages) ClearUserImages(userID string) error {
	f.cleared = append(f.cleared, userID)
	return nil
}

type fakeVision struct {
	category    domain.Category
	detectErr   error
	detectCalls int

	features     domain.Features
	analyzeErr   error
	analyzeCalls int
	lastText     string
}

func (f *fakeVision) DetectCategory(_ context.Context, _ []string) (domain.Category, error) {
	f.detectCalls++
	if f.detectErr != nil {
		return domain.CategoryTops, f.detectErr
	}
	return f.category, nil
}

func (f *fakeVision) Analyze(_ context.Context, _ []string, text string) (*domain.Features, error) {
	f.analyzeCalls++
	f.lastText = text
	if f.analyzeErr != nil {
		return nil, f.analyzeErr
	}
	features := f.features
	return &features, nil
}

type fakeGenerator struct {
	err          error
	calls        int
	lastStrategy domain.PricingStrategy
	lastFeatures domain.Features
}

func (f *fakeGenerator) Generate(_ context.Context, product *domain.Product, strategy domain.PricingStrategy) (*domain.Product, error) {
	f.calls++
	f.lastStrategy = strategy
	f.lastFeatures = product.Features
	if f.err != nil {
		return nil, f.err
	}
	product.Title = "90s NIKE スウェット"
	product.Description = "商品説明です。"
	product.Hashtags = []string{"#古着"}
	product.PriceSuggestion = &domain.PriceSuggestion{
		MinimumPrice:     1900,
		StartPrice:       4980,
		ExpectedPrice:    3900,
		LowestAcceptable: 2900,
		Strategy:         strategy,
		Reasoning:        "相場に基づく",
	}
	return product, nil
}

type fakeLedger struct {
	saved   []*domain.Product
	saveErr error

	record    ports.SaleRecord
	found     bool
	updateErr error
	lastID    string
	lastSale  int
	lastShip  int
}

func (f *fakeLedger) SaveProduct(_ context.Context, product *domain.Product) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, product)
	return nil
}

func (f *fakeLedger) UpdateSaleInfo(_ context.Context, managementID string, salePrice, shippingCost int) (ports.SaleRecord, bool, error) {
	f.lastID = managementID
	f.lastSale = salePrice
	f.lastShip = shippingCost
	if f.updateErr != nil {
		return ports.SaleRecord{}, false, f.updateErr
	}
	return f.record, f.found, nil
}

type fixture struct {
	svc       *Service
	store     *session.Store
	messenger *fakeMessenger
	images    *fakeImages
	vision    *fakeVision
	generator *fakeGenerator
	ledger    *fakeLedger
}

func newFixture() *fixture {
	f := &fixture{
		store:     session.NewStore(30 * time.Minute),
		messenger: &fakeMessenger{},
		images:    &fakeImages{},
		vision: &fakeVision{
			category: domain.CategoryTops,
			features: domain.Features{
				Brand:     "NIKE",
				Category:  domain.CategoryTops,
				ItemType:  "スウェット",
				Gender:    "メンズ",
				Size:      "L",
				Color:     "グレー",
				Condition: domain.DefaultCondition,
			},
		},
		generator: &fakeGenerator{},
		ledger:    &fakeLedger{},
	}
	f.svc = New(f.store, f.messenger, f.images, f.vision, f.generator, f.ledger,
		nil, nil, logger.New("development"))
	return f
}

func (f *fixture) text(t *testing.T, userID, text string) {
	t.Helper()
	if err := f.svc.HandleTextMessage(context.Background(), userID, "tok", text); err != nil {
		t.Fatalf("HandleTextMessage(%q): %v", text, err)
	}
}

func (f *fixture) image(t *testing.T, userID, messageID string) {
	t.Helper()
	if err := f.svc.HandleImageMessage(context.Background(), userID, "tok", messageID); err != nil {
		t.Fatalf("HandleImageMessage(%q): %v", messageID, err)
	}
}

func TestMissingImageOnly(t *testing.T) {
	f := newFixture()

	f.text(t, "U1", "880 222")

	sess := f.store.Get("U1")
	if sess.State != session.StateCollecting {
		t.Errorf("state = %q, want collecting", sess.State)
	}
	if sess.PurchasePrice == nil || *sess.PurchasePrice != 880 {
		t.Errorf("purchase price = %v, want 880", sess.PurchasePrice)
	}
	if sess.ManagementID != "222" {
		t.Errorf("management id = %q, want 222", sess.ManagementID)
	}

	reply := f.messenger.lastReply(t)
	if !strings.Contains(reply, "不足している情報") || !strings.Contains(reply, "・画像") {
		t.Errorf("reply must name the missing image:\n%s", reply)
	}
	if strings.Contains(reply, "仕入れ価格\n") || strings.Contains(reply, "・管理番号") {
		t.Errorf("reply must not list fields already supplied:\n%s", reply)
	}
}

func TestFullListingFlow(t *testing.T) {
	f := newFixture()

	// Price and id first, then a photo.
	f.text(t, "U1", "880 222")
	f.image(t, "U1", "m1")

	sess := f.store.Get("U1")
	if sess.State != session.StateWaitingMeasurements {
		t.Fatalf("state after image = %q, want waiting_measurements", sess.State)
	}
	if f.vision.detectCalls != 1 {
		t.Errorf("detectCalls = %d, want 1", f.vision.detectCalls)
	}
	reply := f.messenger.lastReply(t)
	if !strings.Contains(reply, "カテゴリ: トップス") || !strings.Contains(reply, "着丈 身幅 肩幅 袖丈") {
		t.Errorf("reply must name category and measurement order:\n%s", reply)
	}

	// Measurements complete the intake and trigger analysis.
	f.text(t, "U1", "60 50 42 20")
	sess = f.store.Get("U1")
	if sess.State != session.StateConfirming {
		t.Fatalf("state after measurements = %q, want confirming", sess.State)
	}
	if sess.Features == nil {
		t.Fatal("confirming session must have features")
	}
	if f.vision.lastText != "880 222" {
		t.Errorf("analysis supplement = %q, want last contributing text", f.vision.lastText)
	}
	if !strings.Contains(f.messenger.lastReply(t), "【商品特徴（AI推定）】") {
		t.Errorf("reply must be the confirmation summary:\n%s", f.messenger.lastReply(t))
	}

	// Edits plus strategy in one message trigger generation.
	f.text(t, "U1", "1 adidas\n3 パーカー\nB")

	if f.generator.calls != 1 {
		t.Fatalf("generator calls = %d, want 1", f.generator.calls)
	}
	if f.generator.lastStrategy != domain.StrategyBalanced {
		t.Errorf("strategy = %v, want balanced", f.generator.lastStrategy)
	}
	if f.generator.lastFeatures.Brand != "adidas" || f.generator.lastFeatures.ItemType != "パーカー" {
		t.Errorf("edits not applied before generation: %+v", f.generator.lastFeatures)
	}

	if len(f.messenger.multi) != 1 {
		t.Fatalf("multi replies = %d, want 1", len(f.messenger.multi))
	}
	if !strings.Contains(f.messenger.multi[0][0], "【生成完了】") {
		t.Errorf("first result message:\n%s", f.messenger.multi[0][0])
	}
	if len(f.ledger.saved) != 1 || f.ledger.saved[0].ManagementID != "222" {
		t.Errorf("product not archived: %+v", f.ledger.saved)
	}

	// Generation ends the session.
	sess = f.store.Get("U1")
	if sess.State != session.StateIdle || len(sess.ImagePaths) != 0 {
		t.Errorf("session not reset after generation: state=%q images=%v", sess.State, sess.ImagePaths)
	}
	if len(f.images.cleared) == 0 {
		t.Error("stored images were not cleared")
	}
}

func TestTypedFieldsOverrideInference(t *testing.T) {
	f := newFixture()
	f.vision.features.Gender = "UNKNOWN"
	f.vision.features.Size = "UNKNOWN"

	f.text(t, "U1", "880 222 90s")
	f.text(t, "U1", "レディース フリーサイズ")
	f.image(t, "U1", "m1")
	f.text(t, "U1", "60 50 42 20")

	sess := f.store.Get("U1")
	if sess.Features.Gender != "レディース" {
		t.Errorf("gender = %q, want typed value", sess.Features.Gender)
	}
	if sess.Features.Size != "フリー" {
		t.Errorf("size = %q, want typed value", sess.Features.Size)
	}
	if sess.Features.Era != "90s" {
		t.Errorf("era = %q, want typed value", sess.Features.Era)
	}
}

func TestResetFromEveryState(t *testing.T) {
	states := []session.State{
		session.StateIdle,
		session.StateCollecting,
		session.StateWaitingMeasurements,
		session.StateConfirming,
		session.StateGenerating,
		session.StateWaitingSaleInfo,
	}

	for _, command := range []string{"リセット", "reset", "RESET", "キャンセル", "cancel"} {
		for _, state := range states {
			f := newFixture()
			sess := f.store.Get("U1")
			sess.State = state
			sess.ImagePaths = []string{"/tmp/a.jpg"}
			sess.Features = domain.NewFeatures()
			f.store.Update(sess)

			f.text(t, "U1", command)

			sess = f.store.Get("U1")
			if sess.State != session.StateIdle {
				t.Errorf("%q from %q: state = %q, want idle", command, state, sess.State)
			}
			if len(sess.ImagePaths) != 0 {
				t.Errorf("%q from %q: images not discarded", command, state)
			}
			if f.messenger.lastReply(t) != msgResetDone {
				t.Errorf("%q from %q: unexpected reply %q", command, state, f.messenger.lastReply(t))
			}
		}
	}
}

func TestSaleFlow(t *testing.T) {
	f := newFixture()
	f.ledger.found = true
	f.ledger.record = ports.SaleRecord{
		ManagementID: "215",
		SalePrice:    3000,
		ShippingCost: 700,
		Commission:   300,
		Profit:       1120,
	}

	f.text(t, "U1", "売却")
	sess := f.store.Get("U1")
	if sess.State != session.StateWaitingSaleInfo {
		t.Fatalf("state = %q, want waiting_sale_info", sess.State)
	}
	if f.messenger.lastReply(t) != msgSalePrompt {
		t.Errorf("reply = %q", f.messenger.lastReply(t))
	}

	f.text(t, "U1", "215 3000 700")

	if f.ledger.lastID != "215" || f.ledger.lastSale != 3000 || f.ledger.lastShip != 700 {
		t.Errorf("ledger called with (%s, %d, %d)", f.ledger.lastID, f.ledger.lastSale, f.ledger.lastShip)
	}
	reply := f.messenger.lastReply(t)
	for _, want := range []string{"売却を記録しました", "販売価格: 3,000円", "手数料: 300円", "利益: 1,120円"} {
		if !strings.Contains(reply, want) {
			t.Errorf("reply missing %q:\n%s", want, reply)
		}
	}
	if sess := f.store.Get("U1"); sess.State != session.StateIdle {
		t.Errorf("state after sale = %q, want idle", sess.State)
	}
}

func TestSaleUnknownIDStillResets(t *testing.T) {
	f := newFixture()
	f.ledger.found = false

	f.text(t, "U1", "売れた")
	f.text(t, "U1", "999 3000 700")

	reply := f.messenger.lastReply(t)
	if !strings.Contains(reply, "「999」の商品が見つかりませんでした") {
		t.Errorf("reply:\n%s", reply)
	}
	if sess := f.store.Get("U1"); sess.State != session.StateIdle {
		t.Errorf("state = %q, want idle even when the id is unknown", sess.State)
	}
}

func TestSaleLedgerFailureStillResets(t *testing.T) {
	f := newFixture()
	f.ledger.updateErr = errors.New("ledger down")

	f.text(t, "U1", "販売完了")
	f.text(t, "U1", "215 3000 700")

	if !strings.Contains(f.messenger.lastReply(t), "エラーが発生しました") {
		t.Errorf("reply:\n%s", f.messenger.lastReply(t))
	}
	if sess := f.store.Get("U1"); sess.State != session.StateIdle {
		t.Errorf("state = %q, want idle even on ledger failure", sess.State)
	}
}

func TestSaleInfoBadFormatStays(t *testing.T) {
	f := newFixture()

	f.text(t, "U1", "売却")
	f.text(t, "U1", "215 3000")

	if f.messenger.lastReply(t) != msgSaleFormat {
		t.Errorf("reply = %q", f.messenger.lastReply(t))
	}
	if sess := f.store.Get("U1"); sess.State != session.StateWaitingSaleInfo {
		t.Errorf("state = %q, must stay waiting_sale_info", sess.State)
	}
}

func TestImageRejectedWhileFrozen(t *testing.T) {
	for _, state := range []session.State{session.StateConfirming, session.StateWaitingMeasurements} {
		f := newFixture()
		sess := f.store.Get("U1")
		sess.State = state
		sess.Features = domain.NewFeatures()
		f.store.Update(sess)

		f.image(t, "U1", "m1")

		if f.messenger.lastReply(t) != msgImageRejected {
			t.Errorf("state %q: reply = %q", state, f.messenger.lastReply(t))
		}
		sess = f.store.Get("U1")
		if sess.State != state || len(sess.ImagePaths) != 0 {
			t.Errorf("state %q: rejection must not mutate the session", state)
		}
	}
}

func TestMeasurementsIncompleteRetries(t *testing.T) {
	f := newFixture()
	pants := domain.CategoryPants
	sess := f.store.Get("U1")
	sess.State = session.StateWaitingMeasurements
	sess.DetectedCategory = &pants
	f.store.Update(sess)

	f.text(t, "U1", "80 75 20")

	if f.messenger.lastReply(t) != pants.MeasurementRetryPrompt() {
		t.Errorf("reply = %q", f.messenger.lastReply(t))
	}
	sess = f.store.Get("U1")
	if sess.State != session.StateWaitingMeasurements || sess.Measurements != nil {
		t.Errorf("incomplete input must not advance: state=%q measurements=%v",
			sess.State, sess.Measurements)
	}
}

func TestConfirmationUnknownInput(t *testing.T) {
	f := newFixture()
	sess := f.store.Get("U1")
	sess.State = session.StateConfirming
	sess.Features = domain.NewFeatures()
	f.store.Update(sess)

	f.text(t, "U1", "こんにちは")

	if f.messenger.lastReply(t) != msgConfirmUnknown {
		t.Errorf("reply = %q", f.messenger.lastReply(t))
	}
	if sess := f.store.Get("U1"); sess.State != session.StateConfirming {
		t.Errorf("state = %q, must stay confirming", sess.State)
	}
}

func TestConfirmationEditsOnly(t *testing.T) {
	f := newFixture()
	sess := f.store.Get("U1")
	sess.State = session.StateConfirming
	sess.Features = domain.NewFeatures()
	f.store.Update(sess)

	f.text(t, "U1", "1 adidas")

	sess = f.store.Get("U1")
	if sess.Features.Brand != "adidas" {
		t.Errorf("brand = %q, want adidas", sess.Features.Brand)
	}
	if sess.State != session.StateConfirming {
		t.Errorf("state = %q, must stay confirming after edits", sess.State)
	}
	reply := f.messenger.lastReply(t)
	if !strings.HasPrefix(reply, "修正を反映しました。") || !strings.Contains(reply, "1. ブランド：adidas") {
		t.Errorf("reply:\n%s", reply)
	}
	if f.generator.calls != 0 {
		t.Error("edits alone must not trigger generation")
	}
}

func TestAnalysisFailureKeepsState(t *testing.T) {
	f := newFixture()
	f.vision.analyzeErr = errors.New("inference down")
	sess := f.store.Get("U1")
	sess.State = session.StateWaitingMeasurements
	f.store.Update(sess)

	f.text(t, "U1", "60 50 42 20")

	reply := f.messenger.lastReply(t)
	if !strings.Contains(reply, "エラーが発生しました") || !strings.Contains(reply, "リセット") {
		t.Errorf("reply:\n%s", reply)
	}
	sess = f.store.Get("U1")
	if sess.State != session.StateWaitingMeasurements {
		t.Errorf("state = %q, failure must not advance the session", sess.State)
	}
}

func TestGenerationFailureEndsSession(t *testing.T) {
	f := newFixture()
	f.generator.err = errors.New("model unavailable")
	price := 880
	m := domain.Measurements{
		Length: domain.IntPtr(60), Width: domain.IntPtr(50),
		Shoulder: domain.IntPtr(42), Sleeve: domain.IntPtr(20),
	}
	sess := f.store.Get("U1")
	sess.State = session.StateConfirming
	sess.Features = domain.NewFeatures()
	sess.PurchasePrice = &price
	sess.ManagementID = "222"
	sess.Measurements = &m
	f.store.Update(sess)

	f.text(t, "U1", "A")

	if !strings.Contains(f.messenger.lastReply(t), "生成中にエラーが発生しました") {
		t.Errorf("reply:\n%s", f.messenger.lastReply(t))
	}
	if sess := f.store.Get("U1"); sess.State != session.StateIdle {
		t.Errorf("state = %q, generation must end the session either way", sess.State)
	}
}

func TestImageDownloadFailure(t *testing.T) {
	f := newFixture()
	f.images.downloadErr = errors.New("blob fetch failed")

	f.image(t, "U1", "m1")

	if !strings.Contains(f.messenger.lastReply(t), "画像の保存に失敗しました") {
		t.Errorf("reply:\n%s", f.messenger.lastReply(t))
	}
	if sess := f.store.Get("U1"); len(sess.ImagePaths) != 0 {
		t.Error("failed download must not be recorded")
	}
}

func TestImagesAccumulateSilently(t *testing.T) {
	f := newFixture()

	f.image(t, "U1", "m1")
	f.image(t, "U1", "m2")

	if len(f.messenger.replies) != 0 {
		t.Errorf("images without price/id must not be answered, got %v", f.messenger.replies)
	}
	sess := f.store.Get("U1")
	if len(sess.ImagePaths) != 2 || sess.State != session.StateCollecting {
		t.Errorf("session: state=%q images=%v", sess.State, sess.ImagePaths)
	}
}

func TestVerbosePartialMeasurementsIgnored(t *testing.T) {
	f := newFixture()
	existing := domain.Measurements{
		Length: domain.IntPtr(60), Width: domain.IntPtr(50),
		Shoulder: domain.IntPtr(42), Sleeve: domain.IntPtr(20),
	}
	sess := f.store.Get("U1")
	sess.State = session.StateCollecting
	sess.Measurements = &existing
	f.store.Update(sess)

	// Only two of four fields: treated as noise, stored set untouched.
	f.text(t, "U1", "着丈70 身幅55")

	sess = f.store.Get("U1")
	if sess.Measurements == nil || sess.Measurements.Length == nil || *sess.Measurements.Length != 60 {
		t.Errorf("partial verbose measurements overwrote the stored set: %+v", sess.Measurements)
	}
}

func TestCompactEraWinsOverVerbose(t *testing.T) {
	f := newFixture()

	f.text(t, "U1", "880 222 90s")
	sess := f.store.Get("U1")
	if sess.Era != "90s" {
		t.Fatalf("era = %q, want 90s", sess.Era)
	}
}
