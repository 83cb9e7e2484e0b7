// Package booking drives a ticket purchase from the order request through the
// hosted checkout to a verified, persisted booking.
package booking

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"eventspot/api"
	"eventspot/checkout"
	c "eventspot/context"
	"eventspot/guard"
	"eventspot/journal"
	"eventspot/logger"
	"eventspot/model"
)

const (
	DefaultConfirmDelay = 2 * time.Second
	DefaultBookingsPath = "/profile?tab=bookings"
)

var (
	ErrAttemptInFlight    = errors.New("booking: an attempt is already in progress")
	ErrInvalidTicketCount = errors.New("booking: ticket count must be a positive number")
	ErrNotEnoughTickets   = errors.New("booking: not enough tickets available")
)

// Outcome is how an attempt ended.
type Outcome int

const (
	// Rejected attempts stopped before an order was requested.
	Rejected Outcome = iota
	Booked
	Cancelled
	PaymentFailed
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Booked:
		return "booked"
	case Cancelled:
		return "cancelled"
	case PaymentFailed:
		return "payment_failed"
	case Failed:
		return "failed"
	}
	return "rejected"
}

const (
	msgCancelled    = "Payment cancelled."
	msgConfirmed    = "Booking confirmed! Redirecting to your bookings..."
	msgOrderFailed  = "Could not start the payment. Please try again."
	msgVerifyFailed = "Payment verification failed."
	msgBookFailed   = "Booking failed. Please contact support with your payment id."
	msgGeneric      = "Something went wrong. Please try again."
)

// Backend is the part of the REST API a booking needs.
type Backend interface {
	CreateOrder(ctx context.Context, amount float64) (model.Order, error)
	VerifyPayment(ctx context.Context, req model.VerifyRequest) (model.Result, error)
	CreateBooking(ctx context.Context, req model.BookingRequest) (model.Result, error)
}

type Authorizer interface {
	BuildAuthHeaders(includeJSONContentType bool) http.Header
}

// Notifier shows short messages to the user.
type Notifier interface {
	Info(msg string)
	Success(msg string)
	Error(msg string)
}

type Journal interface {
	Record(ctx context.Context, a journal.Attempt) error
}

type Request struct {
	Event   model.Event
	Tickets int
}

type Flow struct {
	backend      Backend
	auth         Authorizer
	checkout     checkout.Opener
	notify       Notifier
	nav          guard.Navigator
	journal      Journal
	checkoutName string
	bookingsPath string
	confirmDelay time.Duration
	wait         func(ctx context.Context, d time.Duration) error

	mu      sync.Mutex
	loading bool
}

type Option func(*Flow)

func WithJournal(j Journal) Option {
	return func(f *Flow) { f.journal = j }
}

func WithConfirmDelay(d time.Duration) Option {
	return func(f *Flow) { f.confirmDelay = d }
}

func WithBookingsPath(path string) Option {
	return func(f *Flow) { f.bookingsPath = path }
}

// WithCheckoutName sets the merchant name shown in the checkout.
func WithCheckoutName(name string) Option {
	return func(f *Flow) { f.checkoutName = name }
}

func NewFlow(backend Backend, auth Authorizer, co checkout.Opener, notify Notifier, nav guard.Navigator, opts ...Option) *Flow {
	f := &Flow{
		backend:      backend,
		auth:         auth,
		checkout:     co,
		notify:       notify,
		nav:          nav,
		checkoutName: "Event Spot",
		bookingsPath: DefaultBookingsPath,
		confirmDelay: DefaultConfirmDelay,
		wait:         sleep,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Loading reports whether an attempt is in flight.
func (f *Flow) Loading() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loading
}

func (f *Flow) start() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loading {
		return false
	}
	f.loading = true
	return true
}

func (f *Flow) stop() {
	f.mu.Lock()
	f.loading = false
	f.mu.Unlock()
}

// Validate checks the booking preconditions that need no network call.
func Validate(req Request) error {
	if req.Tickets <= 0 {
		return ErrInvalidTicketCount
	}
	if req.Tickets > req.Event.RemainingTickets() {
		return fmt.Errorf("%w: only %d left", ErrNotEnoughTickets, req.Event.RemainingTickets())
	}
	return nil
}

// Book runs one attempt. Every terminal path has already told the user what
// happened through the Notifier; the returned error is for the caller's logs
// and exit status.
func (f *Flow) Book(ctx context.Context, req Request) (Outcome, error) {
	if !f.start() {
		return Rejected, ErrAttemptInFlight
	}
	defer f.stop()

	if err := Validate(req); err != nil {
		f.notify.Error(validationMessage(err, req))
		return Rejected, err
	}
	if f.auth.BuildAuthHeaders(false) == nil {
		return Rejected, api.ErrUnauthenticated
	}

	attempt := journal.Attempt{
		ID:      uuid.New().String(),
		EventID: req.Event.ID,
		Tickets: req.Tickets,
		Amount:  req.Event.TicketPrice * float64(req.Tickets),
	}
	ctx = c.SetContextWithValue(ctx, c.ContextKeyAttemptID, attempt.ID)
	defer logger.LogExecutionTime(ctx, time.Now(), "booking.Book")

	order, err := f.backend.CreateOrder(ctx, attempt.Amount)
	if err != nil {
		logger.Errorf(ctx, "booking: create order failed: %+v", err)
		f.notify.Error(api.Message(err, msgOrderFailed))
		return Failed, err
	}
	attempt.OrderID = order.ID
	f.record(ctx, &attempt, journal.StatusOrderCreated, "")

	res, err := f.checkout.Open(ctx, checkout.Request{
		Key:         order.Key,
		OrderID:     order.ID,
		Amount:      order.Amount,
		Currency:    order.Currency,
		Name:        f.checkoutName,
		Description: "Booking for " + req.Event.EventName,
	})
	if err != nil {
		logger.Errorf(ctx, "booking: checkout did not complete: %+v", err)
		f.record(ctx, &attempt, journal.StatusError, err.Error())
		f.notify.Error(msgGeneric)
		return Failed, err
	}

	switch r := res.(type) {
	case checkout.Cancelled:
		f.record(ctx, &attempt, journal.StatusCancelled, "")
		f.notify.Info(msgCancelled)
		return Cancelled, nil

	case checkout.Failed:
		f.record(ctx, &attempt, journal.StatusFailed, r.Message())
		f.notify.Error(r.Message())
		return PaymentFailed, fmt.Errorf("booking: payment failed: %s", r.Message())

	case checkout.Success:
		attempt.PaymentID = r.PaymentID
		return f.complete(ctx, req, &attempt, order, r)
	}

	return Failed, fmt.Errorf("booking: unexpected checkout result %T", res)
}

func (f *Flow) complete(ctx context.Context, req Request, attempt *journal.Attempt, order model.Order, r checkout.Success) (Outcome, error) {
	verified, err := f.backend.VerifyPayment(ctx, model.VerifyRequest{
		OrderID:   order.ID,
		PaymentID: r.PaymentID,
		Signature: r.Signature,
	})
	if err != nil {
		logger.Errorf(ctx, "booking: verify failed: %+v", err)
		f.record(ctx, attempt, journal.StatusUnverified, err.Error())
		f.notify.Error(api.Message(err, msgVerifyFailed))
		return Failed, err
	}
	if !verified.Success {
		msg := nonEmpty(verified.Message, msgVerifyFailed)
		f.record(ctx, attempt, journal.StatusUnverified, msg)
		f.notify.Error(msg)
		return Failed, errors.New("booking: " + msg)
	}
	f.record(ctx, attempt, journal.StatusVerified, "")

	booked, err := f.backend.CreateBooking(ctx, model.BookingRequest{
		EventID:           req.Event.ID,
		Tickets:           req.Tickets,
		TotalAmount:       attempt.Amount,
		RazorpayOrderID:   order.ID,
		RazorpayPaymentID: r.PaymentID,
		RazorpaySignature: r.Signature,
	})
	if err != nil {
		logger.Errorf(ctx, "booking: create booking failed: %+v", err)
		f.record(ctx, attempt, journal.StatusNotBooked, err.Error())
		if !errors.Is(err, api.ErrUnauthenticated) && !errors.Is(err, api.ErrSessionEnded) {
			f.notify.Error(api.Message(err, msgBookFailed))
		}
		return Failed, err
	}
	if !booked.Success {
		msg := nonEmpty(booked.Message, msgBookFailed)
		f.record(ctx, attempt, journal.StatusNotBooked, msg)
		f.notify.Error(msg)
		return Failed, errors.New("booking: " + msg)
	}

	f.record(ctx, attempt, journal.StatusBooked, "")
	logger.Infof(ctx, "booking: %d ticket(s) booked for event %s", req.Tickets, req.Event.ID)
	f.notify.Success(msgConfirmed)

	if err := f.wait(ctx, f.confirmDelay); err == nil && f.nav != nil {
		f.nav.Navigate(f.bookingsPath)
	}
	return Booked, nil
}

func (f *Flow) record(ctx context.Context, a *journal.Attempt, status journal.Status, msg string) {
	if f.journal == nil {
		return
	}
	a.Status, a.Message = status, msg
	if err := f.journal.Record(ctx, *a); err != nil {
		logger.Warnf(ctx, "booking: attempt %s not journaled: %v", a.ID, err)
	}
}

func validationMessage(err error, req Request) string {
	if errors.Is(err, ErrNotEnoughTickets) {
		return fmt.Sprintf("Only %d tickets available.", req.Event.RemainingTickets())
	}
	return "Please select at least one ticket."
}

func nonEmpty(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
