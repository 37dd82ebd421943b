// Package service implements the conversation state machine that drives the
// listing intake dialogue. One inbound message comes in, the session decides
// what it means, and exactly one reply goes out telling the user what to do
// next. The machine never leaves a session without an actionable next step.
package service

import (
	"context"
	"strings"
	"time"

	"resale_support_backend/internal/events"
	"resale_support_backend/internal/intake/domain"
	"resale_support_backend/internal/intake/parser"
	"resale_support_backend/internal/intake/ports"
	"resale_support_backend/internal/intake/refine"
	"resale_support_backend/internal/intake/session"
	"resale_support_backend/platform/logger"
)

// Global command words, intercepted before any state-specific handling.
var (
	resetCommands = map[string]bool{
		"リセット":   true,
		"reset":  true,
		"キャンセル":  true,
		"cancel": true,
	}
	saleCommands = map[string]bool{
		"売却":   true,
		"売れた":  true,
		"販売完了": true,
	}
)

// Service is the conversation state machine. All collaborators are injected;
// bus and covers may be nil when the deployment runs without them.
type Service struct {
	sessions  *session.Store
	messenger ports.Messenger
	images    ports.ImageFetcher
	vision    ports.Vision
	generator ports.Generator
	ledger    ports.Ledger
	covers    ports.CoverStore
	bus       events.Bus
	log       *logger.Logger
}

// New wires the state machine to its collaborators.
func New(
	sessions *session.Store,
	messenger ports.Messenger,
	images ports.ImageFetcher,
	vision ports.Vision,
	generator ports.Generator,
	ledger ports.Ledger,
	covers ports.CoverStore,
	bus events.Bus,
	log *logger.Logger,
) *Service {
	return &Service{
		sessions:  sessions,
		messenger: messenger,
		images:    images,
		vision:    vision,
		generator: generator,
		ledger:    ledger,
		covers:    covers,
		bus:       bus,
		log:       log,
	}
}

// HandleTextMessage processes one inbound text message for the user. The
// whole get, mutate, reply cycle runs under the user's session lock.
func (s *Service) HandleTextMessage(ctx context.Context, userID, replyToken, text string) error {
	return s.sessions.Do(userID, func(sess *session.Session) error {
		return s.handleText(ctx, sess, replyToken, text)
	})
}

// HandleImageMessage processes one inbound image message for the user.
func (s *Service) HandleImageMessage(ctx context.Context, userID, replyToken, messageID string) error {
	return s.sessions.Do(userID, func(sess *session.Session) error {
		return s.handleImage(ctx, sess, replyToken, messageID)
	})
}

func (s *Service) handleText(ctx context.Context, sess *session.Session, replyToken, text string) error {
	trimmed := strings.TrimSpace(text)

	if resetCommands[strings.ToLower(trimmed)] {
		sess.Reset(time.Now())
		s.clearImages(sess.UserID)
		s.sessions.Update(sess)
		return s.messenger.ReplyText(ctx, replyToken, msgResetDone)
	}

	if saleCommands[trimmed] {
		sess.Reset(time.Now())
		s.clearImages(sess.UserID)
		sess.State = session.StateWaitingSaleInfo
		s.sessions.Update(sess)
		return s.messenger.ReplyText(ctx, replyToken, msgSalePrompt)
	}

	switch sess.State {
	case session.StateWaitingSaleInfo:
		return s.handleSaleInfo(ctx, sess, replyToken, text)
	case session.StateConfirming:
		return s.handleConfirmation(ctx, sess, replyToken, text)
	case session.StateWaitingMeasurements:
		return s.handleMeasurements(ctx, sess, replyToken, text)
	default:
		return s.collect(ctx, sess, replyToken, text)
	}
}

// collect handles text in the idle and collecting states. The compact
// 「価格 管理番号 [年代]」 parse wins for its fields; the verbose keyworded
// parse only fills what it left open.
func (s *Service) collect(ctx context.Context, sess *session.Session, replyToken, text string) error {
	price, managementID, era := parser.ParsePriceAndID(text)
	if price != nil {
		sess.PurchasePrice = price
	}
	if managementID != "" {
		sess.ManagementID = managementID
	}
	if era != "" {
		sess.Era = era
	}

	parsed := parser.ParseAll(text)
	if parsed.Gender != "" {
		sess.Gender = parsed.Gender
	}
	if parsed.Size != "" {
		sess.Size = parsed.Size
	}
	if parsed.Era != "" && sess.Era == "" {
		sess.Era = parsed.Era
	}
	// A keyworded measurement set only replaces the stored one when it is
	// complete for some category; partial sets are treated as noise.
	if parsed.Measurements.CompleteForAny() {
		m := parsed.Measurements
		sess.Measurements = &m
	}

	sess.TextInput = text
	sess.State = session.StateCollecting
	s.sessions.Update(sess)

	if len(sess.ImagePaths) > 0 && sess.HasPriceAndID() {
		return s.proceed(ctx, sess, replyToken)
	}

	if missing := sess.MissingData(); len(missing) > 0 {
		return s.messenger.ReplyText(ctx, replyToken, msgMissingData(missing))
	}
	return s.messenger.ReplyText(ctx, replyToken, msgAccepted)
}

func (s *Service) handleImage(ctx context.Context, sess *session.Session, replyToken, messageID string) error {
	// Accepting a photo here would desynchronize the frozen feature summary.
	if sess.State == session.StateConfirming || sess.State == session.StateWaitingMeasurements {
		return s.messenger.ReplyText(ctx, replyToken, msgImageRejected)
	}

	path, err := s.images.DownloadImage(ctx, messageID, sess.UserID)
	if err != nil {
		s.log.Error("image download failed",
			"user_id", sess.UserID, "message_id", messageID, "error", err.Error())
		return s.messenger.ReplyText(ctx, replyToken, msgImageSaveError(err))
	}

	sess.ImagePaths = append(sess.ImagePaths, path)
	sess.State = session.StateCollecting
	s.sessions.Update(sess)

	if sess.HasPriceAndID() {
		return s.proceed(ctx, sess, replyToken)
	}

	// Accumulate photos silently; the user gets one combined answer once
	// the price and management number arrive.
	return nil
}

// proceed runs the readiness branch shared by text and image handling: with
// complete measurements analysis starts, otherwise the category is detected
// and measurements are requested.
func (s *Service) proceed(ctx context.Context, sess *session.Session, replyToken string) error {
	if sess.MeasurementsComplete() {
		if err := s.startAnalysis(ctx, sess, replyToken); err != nil {
			s.log.Error("feature analysis failed", "user_id", sess.UserID, "error", err.Error())
			return s.messenger.ReplyText(ctx, replyToken, msgError(err))
		}
		return nil
	}

	if err := s.startCategoryDetection(ctx, sess, replyToken); err != nil {
		s.log.Error("category detection failed", "user_id", sess.UserID, "error", err.Error())
		return s.messenger.ReplyText(ctx, replyToken, msgError(err))
	}
	return nil
}

// startCategoryDetection classifies the garment from the photos and asks for
// that category's measurements.
func (s *Service) startCategoryDetection(ctx context.Context, sess *session.Session, replyToken string) error {
	category, err := s.vision.DetectCategory(ctx, sess.ImagePaths)
	if err != nil {
		return err
	}

	sess.DetectedCategory = &category
	sess.State = session.StateWaitingMeasurements
	s.sessions.Update(sess)

	return s.messenger.ReplyText(ctx, replyToken,
		msgCategoryDetected(len(sess.ImagePaths), category))
}

func (s *Service) handleMeasurements(ctx context.Context, sess *session.Session, replyToken, text string) error {
	category := sess.Category()
	m := parser.ParseMeasurementsSimple(text, category)

	if !m.CompleteFor(category) {
		return s.messenger.ReplyText(ctx, replyToken, category.MeasurementRetryPrompt())
	}

	sess.Measurements = &m
	s.sessions.Update(sess)

	if err := s.startAnalysis(ctx, sess, replyToken); err != nil {
		s.log.Error("feature analysis failed", "user_id", sess.UserID, "error", err.Error())
		return s.messenger.ReplyText(ctx, replyToken, msgError(err))
	}
	return nil
}

// startAnalysis runs feature inference over the photo set and moves the
// session into the confirmation exchange. Fields the user already typed win
// over the inferred ones.
func (s *Service) startAnalysis(ctx context.Context, sess *session.Session, replyToken string) error {
	features, err := s.vision.Analyze(ctx, sess.ImagePaths, sess.TextInput)
	if err != nil {
		return err
	}

	if sess.DetectedCategory != nil {
		features.Category = *sess.DetectedCategory
	}
	if sess.Gender != "" {
		features.Gender = sess.Gender
	}
	if sess.Size != "" {
		features.Size = sess.Size
	}
	if sess.Era != "" {
		features.Era = sess.Era
	}

	sess.Features = features
	sess.DescriptionText = features.DescriptionText
	sess.State = session.StateConfirming
	s.sessions.Update(sess)

	return s.messenger.ReplyText(ctx, replyToken,
		features.ConfirmationSummary(len(sess.ImagePaths)))
}

func (s *Service) handleConfirmation(ctx context.Context, sess *session.Session, replyToken, text string) error {
	edits, strategy := parser.ParseModificationsAndStrategy(text)

	if edits != nil && sess.Features != nil {
		refine.Apply(sess.Features, edits)
		s.sessions.Update(sess)
	}

	if strategy != nil {
		if err := s.generate(ctx, sess, replyToken, *strategy); err != nil {
			s.log.Error("generation failed", "user_id", sess.UserID, "error", err.Error())
			// Generation leaves the session idle whether it succeeded or
			// not; the user restarts rather than being stuck mid-flight.
			sess.Reset(time.Now())
			s.clearImages(sess.UserID)
			s.sessions.Update(sess)
			return s.messenger.ReplyText(ctx, replyToken, msgGenerationError(err))
		}
		return nil
	}

	if edits != nil && sess.Features != nil {
		return s.messenger.ReplyText(ctx, replyToken,
			"修正を反映しました。\n\n"+sess.Features.ConfirmationSummary(len(sess.ImagePaths)))
	}

	return s.messenger.ReplyText(ctx, replyToken, msgConfirmUnknown)
}

func (s *Service) handleSaleInfo(ctx context.Context, sess *session.Session, replyToken, text string) error {
	info := parser.ParseSaleInfo(text)
	if !info.Complete() {
		return s.messenger.ReplyText(ctx, replyToken, msgSaleFormat)
	}

	var reply string
	record, found, err := s.ledger.UpdateSaleInfo(ctx, info.ManagementID, *info.SalePrice, *info.ShippingCost)
	switch {
	case err != nil:
		s.log.Error("sale update failed",
			"user_id", sess.UserID, "management_id", info.ManagementID, "error", err.Error())
		reply = msgSaleError(err)
	case !found:
		reply = msgSaleNotFound(info.ManagementID)
	default:
		reply = msgSaleRecorded(record)
		s.publish(ctx, events.SaleRecorded{
			BaseEvent:    events.NewBaseEvent(),
			UserID:       sess.UserID,
			ManagementID: record.ManagementID,
			SalePrice:    record.SalePrice,
			ShippingCost: record.ShippingCost,
			Commission:   record.Commission,
			Profit:       record.Profit,
		})
	}

	// The session leaves the sale flow no matter how the ledger call went;
	// a downstream outage must not trap the user here.
	sess.Reset(time.Now())
	s.sessions.Update(sess)

	return s.messenger.ReplyText(ctx, replyToken, reply)
}

// generate produces the final listing, replies with it, and archives it.
// Cover upload and ledger save run after the reply and only log on failure.
func (s *Service) generate(ctx context.Context, sess *session.Session, replyToken string, strategy domain.PricingStrategy) error {
	sess.State = session.StateGenerating
	s.sessions.Update(sess)

	product := &domain.Product{
		ManagementID: sess.ManagementID,
		ImagePaths:   sess.ImagePaths,
		RawText:      sess.TextInput,
	}
	if sess.PurchasePrice != nil {
		product.PurchasePrice = *sess.PurchasePrice
	}
	if sess.Measurements != nil {
		product.Measurements = *sess.Measurements
	}
	if sess.Features != nil {
		product.Features = *sess.Features
	}
	if sess.DescriptionText != "" {
		product.Features.DescriptionText = sess.DescriptionText
	}

	product, err := s.generator.Generate(ctx, product, strategy)
	if err != nil {
		return err
	}

	sess.Product = product
	s.sessions.Update(sess)

	if err := s.messenger.ReplyMultiple(ctx, replyToken, resultMessages(product)); err != nil {
		s.log.Error("result reply failed", "user_id", sess.UserID, "error", err.Error())
	}

	if s.covers != nil && len(sess.ImagePaths) > 0 {
		url, err := s.covers.UploadCover(ctx, sess.ImagePaths[0], product.ManagementID)
		if err != nil {
			s.log.Warn("cover upload failed",
				"management_id", product.ManagementID, "error", err.Error())
		} else {
			product.ImageURL = url
		}
	}

	if err := s.ledger.SaveProduct(ctx, product); err != nil {
		s.log.Error("ledger save failed",
			"management_id", product.ManagementID, "error", err.Error())
	}

	startPrice := 0
	if product.PriceSuggestion != nil {
		startPrice = product.PriceSuggestion.StartPrice
	}
	s.publish(ctx, events.ProductGenerated{
		BaseEvent:    events.NewBaseEvent(),
		UserID:       sess.UserID,
		ManagementID: product.ManagementID,
		Title:        product.Title,
		Category:     product.Features.Category.String(),
		StartPrice:   startPrice,
	})

	sess.Reset(time.Now())
	s.clearImages(sess.UserID)
	s.sessions.Update(sess)
	return nil
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.bus != nil {
		s.bus.Publish(ctx, event)
	}
}

func (s *Service) clearImages(userID string) {
	if err := s.images.ClearUserImages(userID); err != nil {
		s.log.Warn("image cleanup failed", "user_id", userID, "error", err.Error())
	}
}
