// Package session keeps the per-user conversation state for the listing
// intake flow. Sessions live in memory only: a process restart starts every
// user over, which the conversation recovers from by design.
package session

import (
	"time"

	"resale_support_backend/internal/intake/domain"
)

// State is the conversation state of a session.
type State string

const (
	// StateIdle waits for a new item to be started.
	StateIdle State = "idle"
	// StateCollecting accumulates images, price, and management number.
	StateCollecting State = "collecting"
	// StateWaitingMeasurements waits for the category's measurement values.
	StateWaitingMeasurements State = "waiting_measurements"
	// StateConfirming waits for corrections or a strategy pick.
	StateConfirming State = "confirming"
	// StateGenerating marks an in-flight listing generation.
	StateGenerating State = "generating"
	// StateWaitingSaleInfo waits for the sale report triple.
	StateWaitingSaleInfo State = "waiting_sale_info"
)

// Session is the mutable per-user record of everything collected and
// derived so far. Fields unrelated to the active state keep their values
// across transitions; only Reset clears them.
type Session struct {
	UserID    string
	State     State
	CreatedAt time.Time
	UpdatedAt time.Time

	// Collected input. ImagePaths keeps insertion order; the first image
	// becomes the listing cover.
	ImagePaths []string
	TextInput  string

	// Parsed fields.
	PurchasePrice *int
	ManagementID  string
	Measurements  *domain.Measurements
	Gender        string
	Size          string
	Era           string

	// Inference results.
	Features         *domain.Features
	DescriptionText  string
	DetectedCategory *domain.Category

	// Final artifact.
	Product *domain.Product
}

// New creates a fresh idle session for the user.
func New(userID string, now time.Time) *Session {
	return &Session{
		UserID:    userID,
		State:     StateIdle,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Reset clears every collected and derived field and returns the session
// to idle. The user identity and creation time are preserved.
func (s *Session) Reset(now time.Time) {
	s.State = StateIdle
	s.ImagePaths = nil
	s.TextInput = ""
	s.PurchasePrice = nil
	s.ManagementID = ""
	s.Measurements = nil
	s.Gender = ""
	s.Size = ""
	s.Era = ""
	s.Features = nil
	s.DescriptionText = ""
	s.DetectedCategory = nil
	s.Product = nil
	s.UpdatedAt = now
}

// HasPriceAndID reports whether both the purchase price and the management
// number have been supplied.
func (s *Session) HasPriceAndID() bool {
	return s.PurchasePrice != nil && s.ManagementID != ""
}

// MeasurementsComplete reports whether a measurement set is present and
// satisfies at least one category's field group.
func (s *Session) MeasurementsComplete() bool {
	return s.Measurements != nil && s.Measurements.CompleteForAny()
}

// HasRequiredData reports whether the session holds everything analysis
// needs: at least one image, price, management number, and measurements.
func (s *Session) HasRequiredData() bool {
	return len(s.ImagePaths) > 0 && s.HasPriceAndID() && s.MeasurementsComplete()
}

// MissingData lists the user-facing names of the inputs still required.
func (s *Session) MissingData() []string {
	var missing []string
	if len(s.ImagePaths) == 0 {
		missing = append(missing, "画像")
	}
	if s.PurchasePrice == nil {
		missing = append(missing, "仕入れ価格")
	}
	if s.ManagementID == "" {
		missing = append(missing, "管理番号")
	}
	return missing
}

// Category returns the detected category, defaulting to tops when category
// detection has not run yet.
func (s *Session) Category() domain.Category {
	if s.DetectedCategory != nil {
		return *s.DetectedCategory
	}
	return domain.CategoryTops
}
