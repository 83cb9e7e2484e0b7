package twilio

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const (
	defaultTimeout = 15 * time.Second

	StatusPending  = "pending"
	StatusApproved = "approved"
)

// Verifier starts and checks phone verifications through Twilio Verify.
type Verifier interface {
	StartVerification(ctx context.Context, to string) (string, error)
	CheckVerification(ctx context.Context, to, code string) (string, error)
}

type verifyClient struct {
	AccountSID string
	AuthToken  string
	URL        string
	HTTPClient *http.Client
}

func NewVerifier(acSID, authToken, verifyURL, serviceSID string) Verifier {
	return &verifyClient{
		AccountSID: acSID,
		AuthToken:  authToken,
		URL:        fmt.Sprintf("%s/%s", verifyURL, serviceSID),
		HTTPClient: &http.Client{Timeout: defaultTimeout},
	}
}

type verification struct {
	SID    string `json:"sid"`
	Status string `json:"status"`
	Valid  bool   `json:"valid"`
}

// StartVerification sends a code by SMS and returns the verification status.
func (v *verifyClient) StartVerification(ctx context.Context, to string) (string, error) {
	values := url.Values{}
	values.Set("To", to)
	values.Set("Channel", "sms")

	var res verification
	if err := postForm(ctx, v.HTTPClient, v.URL+"/Verifications", v.AccountSID, v.AuthToken, values, &res); err != nil {
		return "", fmt.Errorf("startVerification: %w", err)
	}
	return res.Status, nil
}

// CheckVerification returns "approved" when code matches.
func (v *verifyClient) CheckVerification(ctx context.Context, to, code string) (string, error) {
	values := url.Values{}
	values.Set("To", to)
	values.Set("Code", code)

	var res verification
	if err := postForm(ctx, v.HTTPClient, v.URL+"/VerificationCheck", v.AccountSID, v.AuthToken, values, &res); err != nil {
		return "", fmt.Errorf("checkVerification: %w", err)
	}
	return res.Status, nil
}
