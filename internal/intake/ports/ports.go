// Package ports defines the interfaces the intake conversation requires from
// external systems. The state machine only knows about the data it needs,
// formatted the way it wants; implementations live in the adapter modules and
// are wired in by the composition root.
package ports

import (
	"context"

	"resale_support_backend/internal/intake/domain"
)

// Messenger delivers replies over the chat channel. Implementations own the
// channel's message-length limits; the state machine sends full text.
type Messenger interface {
	// ReplyText answers the inbound event identified by the reply token.
	ReplyText(ctx context.Context, replyToken, text string) error

	// ReplyMultiple answers with up to five messages in one reply.
	ReplyMultiple(ctx context.Context, replyToken string, texts []string) error

	// PushMessage sends an out-of-band message directly to a user.
	PushMessage(ctx context.Context, userID, text string) error
}

// ImageFetcher downloads inbound image content to durable local paths and
// manages the per-user image directory.
type ImageFetcher interface {
	// DownloadImage fetches the image behind a channel message id and returns
	// the local path it was stored at.
	DownloadImage(ctx context.Context, messageID, userID string) (string, error)

	// ClearUserImages removes every stored image for the user.
	ClearUserImages(userID string) error
}

// Vision is the image inference service. Both calls are synchronous and may
// be slow; the state machine treats the results as opaque structured values.
type Vision interface {
	// DetectCategory classifies the garment from the first photo.
	DetectCategory(ctx context.Context, imagePaths []string) (domain.Category, error)

	// Analyze extracts the feature summary from the photo set, using the
	// user's free text as a supplementary hint.
	Analyze(ctx context.Context, imagePaths []string, supplementaryText string) (*domain.Features, error)
}

// Generator turns a confirmed feature summary into the finished listing:
// title, description, hashtags, and the strategy-dependent price suggestion.
type Generator interface {
	Generate(ctx context.Context, product *domain.Product, strategy domain.PricingStrategy) (*domain.Product, error)
}

// SaleRecord is the outcome of recording a sale in the ledger.
type SaleRecord struct {
	ManagementID string
	SalePrice    int
	ShippingCost int
	Commission   int
	Profit       int
}

// Ledger is the product ledger. Failures are reported to the user but never
// retried by the state machine.
type Ledger interface {
	// SaveProduct appends a finished listing to the ledger.
	SaveProduct(ctx context.Context, product *domain.Product) error

	// UpdateSaleInfo marks the product with the given management number as
	// sold and computes commission and profit. An unknown management number
	// is not an error: found is false and the record is empty.
	UpdateSaleInfo(ctx context.Context, managementID string, salePrice, shippingCost int) (record SaleRecord, found bool, err error)
}

// CoverStore uploads the listing's cover image to durable hosting.
type CoverStore interface {
	// UploadCover stores the image under the product's management number and
	// returns its public URL.
	UploadCover(ctx context.Context, localPath, managementID string) (string, error)
}
