package model

import "time"

// Purchase records a completed ticket checkout.  It is written once the
// wizard commits, either directly for a free order or after the payment
// hand-off confirmed an intent.
//
// Fields:
//  ID            – primary key identifier.
//  UserID        – buyer.
//  EventID       – event purchased.
//  BuyerName     – name entered at checkout.
//  BuyerEmail    – email entered at checkout.
//  SubtotalCents – Σ price × quantity.
//  FeeCents      – platform fee.
//  DiscountCents – loyalty discount applied.
//  TotalCents    – amount charged.
//  PaymentRef    – payment intent id (nil for free orders).
//  Lines         – per-tier quantities.
//  Seats         – seat ids bought, ascending.
//  CreatedAt     – creation timestamp.
type Purchase struct {
    ID            uint64
    UserID        uint64
    EventID       uint64
    BuyerName     string
    BuyerEmail    string
    SubtotalCents uint32
    FeeCents      uint32
    DiscountCents uint32
    TotalCents    uint32
    PaymentRef    *string
    Lines         []PurchaseLine
    Seats         []int
    CreatedAt     time.Time
}

// PurchaseLine is one tier entry within a purchase.
type PurchaseLine struct {
    TierID     uint64 `json:"tier_id"`
    TierName   string `json:"tier_name"`
    Quantity   int    `json:"quantity"`
    PriceCents uint32 `json:"price_cents"`
}

// PaymentIntent is a ledger entry created when a payment is confirmed.
//
// Fields:
//  ID          – uuid of the intent; returned to callers as payment_intent_id.
//  Reference   – what was paid for (e.g. "wizard:<session>").
//  AmountCents – charged amount.
//  Method      – payment method chosen by the user (card, wallet, ...).
//  Status      – SUCCEEDED once recorded.
//  CreatedAt   – creation timestamp.
type PaymentIntent struct {
    ID          string
    Reference   string
    AmountCents uint32
    Method      string
    Status      string
    CreatedAt   time.Time
}
