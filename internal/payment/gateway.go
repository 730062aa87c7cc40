package payment

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/iliyamo/event-booking-wizard/internal/clock"
	"github.com/iliyamo/event-booking-wizard/internal/model"
)

// IntentStatusSucceeded marks a recorded intent.
const IntentStatusSucceeded = "SUCCEEDED"

// ErrUnsupportedMethod is returned for an unknown payment method.
var ErrUnsupportedMethod = errors.New("unsupported payment method")

// IntentRequest describes a charge.
type IntentRequest struct {
	Reference   string
	AmountCents uint32
	Method      string
}

// Gateway creates payment intents.
type Gateway interface {
	CreateIntent(ctx context.Context, req IntentRequest) (model.PaymentIntent, error)
}

// IntentStore persists intents.
type IntentStore interface {
	Insert(ctx context.Context, intent model.PaymentIntent) error
}

var supportedMethods = map[string]bool{
	"card":          true,
	"wallet":        true,
	"bank_transfer": true,
}

// LedgerGateway records every confirmed payment as an intent row.  It
// stands in for an external processor: the intent is considered paid as
// soon as it is stored.
type LedgerGateway struct {
	store IntentStore
	clock clock.Clock
}

// NewLedgerGateway returns a gateway writing to store.
func NewLedgerGateway(store IntentStore, clk clock.Clock) *LedgerGateway {
	return &LedgerGateway{store: store, clock: clk}
}

// CreateIntent validates the method and stores a new intent.
func (g *LedgerGateway) CreateIntent(ctx context.Context, req IntentRequest) (model.PaymentIntent, error) {
	method := strings.ToLower(strings.TrimSpace(req.Method))
	if !supportedMethods[method] {
		return model.PaymentIntent{}, ErrUnsupportedMethod
	}
	if req.AmountCents == 0 {
		return model.PaymentIntent{}, ErrZeroAmount
	}
	intent := model.PaymentIntent{
		ID:          "pi_" + uuid.NewString(),
		Reference:   req.Reference,
		AmountCents: req.AmountCents,
		Method:      method,
		Status:      IntentStatusSucceeded,
		CreatedAt:   g.clock.Now(),
	}
	if err := g.store.Insert(ctx, intent); err != nil {
		return model.PaymentIntent{}, err
	}
	return intent, nil
}
