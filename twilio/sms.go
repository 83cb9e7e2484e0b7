package twilio

import (
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"strings"
)

type Sender interface {
	Send(ctx context.Context, to, message string) (string, error)
}

type smsSender struct {
	AccountSID string
	AuthToken  string
	URL        string
	From       string
	HTTPClient *http.Client
}

func NewSender(acSID, authToken, url, from string) Sender {
	return &smsSender{
		AccountSID: acSID,
		AuthToken:  authToken,
		URL:        fmt.Sprintf("%s/%s/Messages.json", url, acSID),
		From:       from,
		HTTPClient: &http.Client{Timeout: defaultTimeout},
	}
}

// Send delivers message by SMS and returns the message sid.
func (s *smsSender) Send(ctx context.Context, to, message string) (string, error) {
	v := url.Values{}
	v.Set("To", to)
	v.Set("From", s.From)
	v.Set("Body", message)

	var res struct {
		SID string `json:"sid"`
	}
	if err := postForm(ctx, s.HTTPClient, s.URL, s.AccountSID, s.AuthToken, v, &res); err != nil {
		return "", fmt.Errorf("send: error sending sms: %w", err)
	}
	return res.SID, nil
}

// postForm posts values with basic auth and decodes a 2xx JSON answer into out.
func postForm(ctx context.Context, hc *http.Client, endpoint, user, pass string, values url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(values.Encode()))
	if err != nil {
		return err
	}

	req.SetBasicAuth(user, pass)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := hc.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	bodyBytes, err := ioutil.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("post: error reading body: %w", err)
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		var apiErr struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		}
		json.Unmarshal(bodyBytes, &apiErr)
		return &Error{StatusCode: res.StatusCode, Code: apiErr.Code, Message: apiErr.Message}
	}

	if err := json.Unmarshal(bodyBytes, out); err != nil {
		return fmt.Errorf("post: error unmarshalling response body: %w", err)
	}
	return nil
}

// Error is a non-2xx answer from Twilio.
type Error struct {
	StatusCode int
	Code       int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("twilio: status code: %d: code: %d: %s", e.StatusCode, e.Code, e.Message)
}
