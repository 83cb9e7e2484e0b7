package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"eventspot/model"
)

const DefaultCurrency = "INR"

type rawOrder struct {
	ID       string      `json:"id"`
	Amount   json.Number `json:"amount"`
	Currency string      `json:"currency"`
}

type orderResponse struct {
	Order *rawOrder `json:"order"`
	Key   string    `json:"key"`
	rawOrder
}

// CreateOrder asks the backend for a gateway order covering amount.
func (cl *Client) CreateOrder(ctx context.Context, amount float64) (model.Order, error) {
	var res orderResponse
	err := cl.do(ctx, request{
		method: http.MethodPost,
		path:   "/payment/create-order",
		body:   model.CreateOrderRequest{Amount: amount},
	}, &res)
	if err != nil {
		return model.Order{}, err
	}
	return normalizeOrder(res, cl.defaultKey)
}

// normalizeOrder turns either the wrapped {order:{...},key} or the flat order
// shape into a model.Order.
func normalizeOrder(res orderResponse, defaultKey string) (model.Order, error) {
	src := res.rawOrder
	if res.Order != nil {
		src = *res.Order
	}
	if src.ID == "" {
		return model.Order{}, fmt.Errorf("normalizeOrder: order id missing: %w", ErrMalformedResponse)
	}

	var amount int64
	if src.Amount != "" {
		v, err := src.Amount.Float64()
		if err != nil {
			return model.Order{}, fmt.Errorf("normalizeOrder: bad amount %q: %w", src.Amount, ErrMalformedResponse)
		}
		amount = int64(v)
	}

	order := model.Order{
		ID:       src.ID,
		Amount:   amount,
		Currency: src.Currency,
		Key:      res.Key,
	}
	if order.Currency == "" {
		order.Currency = DefaultCurrency
	}
	if order.Key == "" {
		order.Key = defaultKey
	}
	return order, nil
}

func (cl *Client) VerifyPayment(ctx context.Context, req model.VerifyRequest) (model.Result, error) {
	var res model.Result
	err := cl.do(ctx, request{method: http.MethodPost, path: "/payment/verify", body: req}, &res)
	return res, err
}

// CreateBooking persists a verified booking. A {success:false} answer is not
// an error; callers inspect Result.Success.
func (cl *Client) CreateBooking(ctx context.Context, req model.BookingRequest) (model.Result, error) {
	var res model.Result
	err := cl.do(ctx, request{method: http.MethodPost, path: "/bookings", body: req, protected: true}, &res)
	return res, err
}
