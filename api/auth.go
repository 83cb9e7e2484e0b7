package api

import (
	"context"
	"errors"
	"net/http"

	"eventspot/model"
)

// Login registers a signed-in identity with the backend and returns the
// backend's view of the user. A {success:false} answer is returned as an
// APIError carrying the backend's message.
func (cl *Client) Login(ctx context.Context, req model.LoginRequest) (model.LoginResponse, error) {
	var res model.LoginResponse
	if err := cl.do(ctx, request{method: http.MethodPost, path: "/api/users/login", body: req}, &res); err != nil {
		return model.LoginResponse{}, err
	}
	if !res.Success {
		return res, &APIError{Status: http.StatusOK, Message: res.Message, Err: res.Error}
	}
	if res.User.Email == "" {
		return res, errors.New("login: user data not found in response")
	}
	return res, nil
}
