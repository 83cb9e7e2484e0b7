package model

// Order is the normalized payment gateway order. Amount is in the smallest
// currency unit, as the gateway reports it.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Key      string `json:"key"`
}

type CreateOrderRequest struct {
	Amount float64 `json:"amount"`
}

type VerifyRequest struct {
	OrderID   string `json:"orderId"`
	PaymentID string `json:"paymentId"`
	Signature string `json:"signature"`
}

// Result is the {success, message} envelope returned by verify and bookings.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type BookingRequest struct {
	EventID           string  `json:"eventId"`
	Tickets           int     `json:"tickets"`
	TotalAmount       float64 `json:"totalAmount"`
	RazorpayOrderID   string  `json:"razorpayOrderId"`
	RazorpayPaymentID string  `json:"razorpayPaymentId"`
	RazorpaySignature string  `json:"razorpaySignature"`
}
