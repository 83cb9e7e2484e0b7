package booking

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventspot/api"
	"eventspot/checkout"
	"eventspot/journal"
	"eventspot/model"
)

type fakeBackend struct {
	order     model.Order
	orderErr  error
	verify    model.Result
	verifyErr error
	book      model.Result
	bookErr   error

	amounts  []float64
	verifies []model.VerifyRequest
	bookings []model.BookingRequest
}

func (b *fakeBackend) CreateOrder(ctx context.Context, amount float64) (model.Order, error) {
	b.amounts = append(b.amounts, amount)
	return b.order, b.orderErr
}

func (b *fakeBackend) VerifyPayment(ctx context.Context, req model.VerifyRequest) (model.Result, error) {
	b.verifies = append(b.verifies, req)
	return b.verify, b.verifyErr
}

func (b *fakeBackend) CreateBooking(ctx context.Context, req model.BookingRequest) (model.Result, error) {
	b.bookings = append(b.bookings, req)
	return b.book, b.bookErr
}

type fakeAuth struct{ ok bool }

func (a fakeAuth) BuildAuthHeaders(bool) http.Header {
	if !a.ok {
		return nil
	}
	return http.Header{"Authorization": []string{"Bearer t"}}
}

type fakeCheckout struct {
	result     checkout.Result
	err        error
	opened     []checkout.Request
	flow       *Flow
	wasLoading bool
}

func (c *fakeCheckout) Open(ctx context.Context, req checkout.Request) (checkout.Result, error) {
	c.opened = append(c.opened, req)
	if c.flow != nil {
		c.wasLoading = c.flow.Loading()
	}
	return c.result, c.err
}

type notices struct {
	info, success, errors []string
}

func (n *notices) Info(msg string)    { n.info = append(n.info, msg) }
func (n *notices) Success(msg string) { n.success = append(n.success, msg) }
func (n *notices) Error(msg string)   { n.errors = append(n.errors, msg) }

type fakeNav struct{ targets []string }

func (n *fakeNav) Location() string       { return "/events/e1" }
func (n *fakeNav) Navigate(target string) { n.targets = append(n.targets, target) }

type memJournal struct{ rows []journal.Attempt }

func (j *memJournal) Record(ctx context.Context, a journal.Attempt) error {
	j.rows = append(j.rows, a)
	return nil
}

func (j *memJournal) statuses() []journal.Status {
	var s []journal.Status
	for _, r := range j.rows {
		s = append(s, r.Status)
	}
	return s
}

var event = model.Event{ID: "e1", EventName: "Jazz Night", TotalTickets: 10, TicketPrice: 250}

type harness struct {
	backend  *fakeBackend
	checkout *fakeCheckout
	notices  *notices
	nav      *fakeNav
	journal  *memJournal
	flow     *Flow
	waited   []time.Duration
}

func newHarness(result checkout.Result) *harness {
	h := &harness{
		backend: &fakeBackend{
			order:  model.Order{ID: "order_1", Amount: 50000, Currency: "INR", Key: "rzp_test"},
			verify: model.Result{Success: true},
			book:   model.Result{Success: true},
		},
		checkout: &fakeCheckout{result: result},
		notices:  &notices{},
		nav:      &fakeNav{},
		journal:  &memJournal{},
	}
	h.flow = NewFlow(h.backend, fakeAuth{ok: true}, h.checkout, h.notices, h.nav, WithJournal(h.journal))
	h.flow.wait = func(ctx context.Context, d time.Duration) error {
		h.waited = append(h.waited, d)
		return nil
	}
	h.checkout.flow = h.flow
	return h
}

func TestBook_Success(t *testing.T) {
	h := newHarness(checkout.Success{PaymentID: "pay_1", Signature: "sig"})

	outcome, err := h.flow.Book(context.Background(), Request{Event: event, Tickets: 2})
	require.NoError(t, err)
	assert.Equal(t, Booked, outcome)

	assert.Equal(t, []float64{500}, h.backend.amounts)
	require.Len(t, h.checkout.opened, 1)
	assert.Equal(t, checkout.Request{
		Key: "rzp_test", OrderID: "order_1", Amount: 50000, Currency: "INR", Name: "Event Spot", Description: "Booking for Jazz Night",
	}, h.checkout.opened[0])
	assert.True(t, h.checkout.wasLoading)

	assert.Equal(t, []model.VerifyRequest{{OrderID: "order_1", PaymentID: "pay_1", Signature: "sig"}}, h.backend.verifies)
	assert.Equal(t, []model.BookingRequest{{
		EventID: "e1", Tickets: 2, TotalAmount: 500,
		RazorpayOrderID: "order_1", RazorpayPaymentID: "pay_1", RazorpaySignature: "sig",
	}}, h.backend.bookings)

	assert.Equal(t, []string{msgConfirmed}, h.notices.success)
	assert.Empty(t, h.notices.errors)
	assert.Equal(t, []time.Duration{DefaultConfirmDelay}, h.waited)
	assert.Equal(t, []string{DefaultBookingsPath}, h.nav.targets)
	assert.False(t, h.flow.Loading())

	assert.Equal(t, []journal.Status{journal.StatusOrderCreated, journal.StatusVerified, journal.StatusBooked}, h.journal.statuses())
	assert.NotEmpty(t, h.journal.rows[0].ID)
	assert.Equal(t, h.journal.rows[0].ID, h.journal.rows[2].ID)
}

func TestBook_VerifyRejected(t *testing.T) {
	h := newHarness(checkout.Success{PaymentID: "pay_1", Signature: "forged"})
	h.backend.verify = model.Result{Success: false, Message: "Invalid signature"}

	outcome, err := h.flow.Book(context.Background(), Request{Event: event, Tickets: 1})
	assert.Error(t, err)
	assert.Equal(t, Failed, outcome)
	assert.Len(t, h.backend.verifies, 1)
	assert.Empty(t, h.backend.bookings)
	assert.Equal(t, []string{"Invalid signature"}, h.notices.errors)
	assert.Empty(t, h.nav.targets)
	assert.False(t, h.flow.Loading())
}

func TestBook_Dismissed(t *testing.T) {
	h := newHarness(checkout.Cancelled{})

	outcome, err := h.flow.Book(context.Background(), Request{Event: event, Tickets: 1})
	require.NoError(t, err)
	assert.Equal(t, Cancelled, outcome)
	assert.Empty(t, h.backend.verifies)
	assert.Empty(t, h.backend.bookings)
	assert.Equal(t, []string{msgCancelled}, h.notices.info)
	assert.Empty(t, h.notices.errors)
	assert.False(t, h.flow.Loading())
}

func TestBook_GatewayFailure(t *testing.T) {
	h := newHarness(checkout.Failed{Code: "BAD_REQUEST_ERROR", Description: "Card declined", Reason: "payment_failed"})

	outcome, err := h.flow.Book(context.Background(), Request{Event: event, Tickets: 1})
	assert.Error(t, err)
	assert.Equal(t, PaymentFailed, outcome)
	assert.Empty(t, h.backend.verifies)
	assert.Empty(t, h.backend.bookings)
	assert.Equal(t, []string{"Card declined (payment_failed)"}, h.notices.errors)
	assert.False(t, h.flow.Loading())
}

func TestBook_BookingNotSuccessful(t *testing.T) {
	h := newHarness(checkout.Success{PaymentID: "pay_1", Signature: "sig"})
	h.backend.book = model.Result{Success: false, Message: "Tickets sold out"}

	outcome, err := h.flow.Book(context.Background(), Request{Event: event, Tickets: 1})
	assert.Error(t, err)
	assert.Equal(t, Failed, outcome)
	assert.Equal(t, []string{"Tickets sold out"}, h.notices.errors)
	assert.Empty(t, h.notices.success)
	assert.Empty(t, h.nav.targets)
	assert.Equal(t, journal.StatusNotBooked, h.journal.rows[len(h.journal.rows)-1].Status)
}

func TestBook_OrderError(t *testing.T) {
	h := newHarness(checkout.Cancelled{})
	h.backend.orderErr = &api.APIError{Status: 500, Message: "Razorpay unavailable"}

	outcome, err := h.flow.Book(context.Background(), Request{Event: event, Tickets: 1})
	assert.Error(t, err)
	assert.Equal(t, Failed, outcome)
	assert.Empty(t, h.checkout.opened)
	assert.Equal(t, []string{"Razorpay unavailable"}, h.notices.errors)
	assert.Empty(t, h.journal.rows)
}

func TestBook_TransportErrorIsGeneric(t *testing.T) {
	h := newHarness(checkout.Success{PaymentID: "pay_1", Signature: "sig"})
	h.backend.verifyErr = errors.New("dial tcp 127.0.0.1:3001: connect: connection refused")

	_, err := h.flow.Book(context.Background(), Request{Event: event, Tickets: 1})
	assert.Error(t, err)
	assert.Equal(t, []string{msgVerifyFailed}, h.notices.errors)
	assert.Empty(t, h.backend.bookings)
}

func TestBook_Preconditions(t *testing.T) {
	cases := []struct {
		name    string
		tickets int
		auth    bool
		err     error
	}{
		{"zero tickets", 0, true, ErrInvalidTicketCount},
		{"negative tickets", -3, true, ErrInvalidTicketCount},
		{"more than remaining", 11, true, ErrNotEnoughTickets},
		{"not signed in", 1, false, api.ErrUnauthenticated},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(checkout.Cancelled{})
			h.flow.auth = fakeAuth{ok: tc.auth}

			outcome, err := h.flow.Book(context.Background(), Request{Event: event, Tickets: tc.tickets})
			assert.True(t, errors.Is(err, tc.err))
			assert.Equal(t, Rejected, outcome)
			assert.Empty(t, h.backend.amounts)
			assert.Empty(t, h.checkout.opened)
			assert.False(t, h.flow.Loading())
		})
	}
}

func TestBook_OneAttemptInFlight(t *testing.T) {
	h := newHarness(checkout.Cancelled{})
	h.flow.loading = true

	outcome, err := h.flow.Book(context.Background(), Request{Event: event, Tickets: 1})
	assert.Equal(t, ErrAttemptInFlight, err)
	assert.Equal(t, Rejected, outcome)
	assert.Empty(t, h.backend.amounts)
	assert.True(t, h.flow.Loading())
}

func TestBook_NoNavigationWhenContextEnds(t *testing.T) {
	h := newHarness(checkout.Success{PaymentID: "pay_1", Signature: "sig"})
	h.flow.wait = sleep

	ctx, cancel := context.WithCancel(context.Background())
	h.checkout.flow = nil
	h.flow.checkout = openerFunc(func(ctx context.Context, req checkout.Request) (checkout.Result, error) {
		cancel()
		return checkout.Success{PaymentID: "pay_1", Signature: "sig"}, nil
	})

	outcome, err := h.flow.Book(ctx, Request{Event: event, Tickets: 1})
	require.NoError(t, err)
	assert.Equal(t, Booked, outcome)
	assert.Empty(t, h.nav.targets)
}

type openerFunc func(ctx context.Context, req checkout.Request) (checkout.Result, error)

func (f openerFunc) Open(ctx context.Context, req checkout.Request) (checkout.Result, error) {
	return f(ctx, req)
}
