package payment

import (
	"context"
)

// Processor is the payment processor capability. Implementations never
// include credentials in returned errors.
type Processor interface {
	// CreateIntent creates a payment intent for an amount in minor units.
	CreateIntent(ctx context.Context, params *CreateIntentParams) (*Intent, error)

	// RetrieveIntent reads an intent; unknown ids yield *domain.NotFoundError.
	RetrieveIntent(ctx context.Context, id string) (*Intent, error)

	// ConstructEvent authenticates a webhook payload against its signature
	// header and parses it; failures yield *domain.SignatureError.
	ConstructEvent(payload []byte, signature string) (*Event, error)
}
