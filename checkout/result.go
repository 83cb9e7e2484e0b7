// Package checkout opens the payment gateway's hosted checkout and reports how
// the session ended.
package checkout

import (
	"context"
	"fmt"
)

// Request configures one checkout session. Amount is in the smallest
// currency unit.
type Request struct {
	Key         string
	OrderID     string
	Amount      int64
	Currency    string
	Name        string
	Description string
}

// Result is exactly one of Success, Cancelled or Failed.
type Result interface {
	result()
}

type Success struct {
	PaymentID string
	Signature string
}

// Cancelled means the user dismissed the checkout without paying.
type Cancelled struct{}

// Failed means the gateway attempted the payment and rejected it.
type Failed struct {
	Code        string
	Description string
	Reason      string
}

func (Success) result()   {}
func (Cancelled) result() {}
func (Failed) result()    {}

// Message is the reason to show the user.
func (f Failed) Message() string {
	switch {
	case f.Description != "" && f.Reason != "":
		return fmt.Sprintf("%s (%s)", f.Description, f.Reason)
	case f.Description != "":
		return f.Description
	case f.Reason != "":
		return f.Reason
	case f.Code != "":
		return "Payment failed: " + f.Code
	}
	return "Payment failed"
}

// Opener runs a checkout session to completion.
type Opener interface {
	Open(ctx context.Context, req Request) (Result, error)
}
