package wizard

import (
	"net/mail"
	"strings"
)

// Buyer holds the checkout form fields.
type Buyer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

// Normalize trims whitespace and lower-cases the email.
func (b Buyer) Normalize() Buyer {
	return Buyer{
		Name:  strings.TrimSpace(b.Name),
		Email: strings.ToLower(strings.TrimSpace(b.Email)),
		Phone: strings.TrimSpace(b.Phone),
	}
}

// Validate checks the required fields.
func (b Buyer) Validate() error {
	if b.Name == "" {
		return ErrBuyerName
	}
	addr, err := mail.ParseAddress(b.Email)
	if err != nil || addr.Address != b.Email {
		return ErrBuyerEmail
	}
	return nil
}

// LoyaltyDiscount converts a points balance to cents (1 point = 1 cent)
// when the toggle is on.  Capping happens in ComputeTotals.
func LoyaltyDiscount(balancePoints uint32, use bool) uint32 {
	if !use {
		return 0
	}
	return balancePoints
}
