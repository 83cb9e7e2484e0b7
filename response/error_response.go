package response

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"eventspot/logger"
)

type ErrorResponse struct {
	StatusCode  int    `json:"-"`
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	Status      string `json:"status"`
	Description string `json:"-"`
}

func (r ErrorResponse) Error() string {
	return fmt.Sprintf("StatusCode: %d, Success: %t, Message: %s, Status: %s, Description: %s", r.StatusCode, r.Success, r.Message, r.Status, r.Description)
}

func (r ErrorResponse) Send(ctx context.Context, w http.ResponseWriter) {
	logger.Errorf(ctx, "%s", r.Error())
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(r.StatusCode)
	json.NewEncoder(w).Encode(struct {
		ErrorResponse
		Err string `json:"error"`
	}{r, r.Message})
}

func BadRequest(message, description string) ErrorResponse {
	return ErrorResponse{
		StatusCode:  http.StatusBadRequest,
		Success:     false,
		Message:     message,
		Status:      "BAD_REQUEST",
		Description: description,
	}
}

func ResourceNotFound(message, description string) ErrorResponse {
	return ErrorResponse{
		StatusCode:  http.StatusNotFound,
		Success:     false,
		Message:     message,
		Status:      "NOT_FOUND",
		Description: description,
	}
}

func Conflict(message string) ErrorResponse {
	return ErrorResponse{
		StatusCode: http.StatusConflict,
		Success:    false,
		Message:    message,
		Status:     "CONFLICT",
	}
}

func SomethingWrong() ErrorResponse {
	return ErrorResponse{
		StatusCode: http.StatusInternalServerError,
		Success:    false,
		Message:    "Sorry, Something went wrong",
		Status:     "SOMETHING_WRONG",
	}
}

func InvalidData(description string) ErrorResponse {
	return ErrorResponse{
		StatusCode:  http.StatusBadRequest,
		Success:     false,
		Message:     "Invalid data passed",
		Status:      "INVALID_DATA",
		Description: description,
	}
}

func OTPNotSent(description string) ErrorResponse {
	return ErrorResponse{
		StatusCode:  http.StatusBadGateway,
		Success:     false,
		Message:     "Failed to send OTP",
		Status:      "OTP_NOT_SENT",
		Description: description,
	}
}

func OTPExpired() ErrorResponse {
	return ErrorResponse{
		Success:    false,
		Message:    "OTP Expired, Please try again",
		Status:     "OTP_EXPIRED",
		StatusCode: http.StatusGone,
	}
}

func OTPMismatch() ErrorResponse {
	return ErrorResponse{
		Success:    false,
		Message:    "Wrong OTP entered",
		Status:     "OTP_MISMATCH",
		StatusCode: http.StatusBadRequest,
	}
}
