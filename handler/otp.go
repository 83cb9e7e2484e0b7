package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"eventspot/logger"
	"eventspot/otp"
	"eventspot/response"
)

type sendOTPRequest struct {
	PhoneNumber string `json:"phoneNumber"`
}

type verifyOTPRequest struct {
	PhoneNumber string  `json:"phoneNumber"`
	OTP         otpCode `json:"otp"`
}

// otpCode accepts the code as a JSON string or number.
type otpCode string

func (o *otpCode) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*o = otpCode(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*o = otpCode(n.String())
	return nil
}

func SendOTP(svc otp.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req sendOTPRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest("invalid request body", fmt.Sprintf("sendOTP: error unmarshalling request body: %+v", err)).Send(ctx, w)
			return
		}
		if strings.TrimSpace(req.PhoneNumber) == "" {
			response.BadRequest("Phone number required", "").Send(ctx, w)
			return
		}

		status, err := svc.Send(ctx, req.PhoneNumber)
		if errors.Is(err, otp.ErrInvalidPhone) {
			response.BadRequest(err.Error(), "").Send(ctx, w)
			return
		}
		if err != nil {
			logger.Errorf(ctx, "sendOTP: unable to send otp: %+v", err)
			response.OTPNotSent(err.Error()).Send(ctx, w)
			return
		}

		response.OK(map[string]string{"status": status}).Send(w)
	}
}

func VerifyOTP(svc otp.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req verifyOTPRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest("invalid request body", fmt.Sprintf("verifyOTP: error unmarshalling request body: %+v", err)).Send(ctx, w)
			return
		}
		code := strings.TrimSpace(string(req.OTP))
		if strings.TrimSpace(req.PhoneNumber) == "" || code == "" {
			response.BadRequest("Phone number and code are required", "").Send(ctx, w)
			return
		}

		res, err := svc.Verify(ctx, req.PhoneNumber, code)
		if errors.Is(err, otp.ErrInvalidPhone) {
			response.BadRequest(err.Error(), "").Send(ctx, w)
			return
		}
		if err != nil {
			logger.Errorf(ctx, "verifyOTP: verification failed: %+v", err)
			response.SomethingWrong().Send(ctx, w)
			return
		}

		if res.Approved {
			response.OK(map[string]bool{"success": true}).Send(w)
			return
		}
		response.OK(map[string]interface{}{"success": false, "status": res.Status}).Send(w)
	}
}
