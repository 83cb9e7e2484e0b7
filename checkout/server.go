package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/codegangsta/negroni"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"eventspot/logger"
	"eventspot/middleware"
	"eventspot/response"
)

const (
	EventSuccess   = "success"
	EventDismissed = "dismissed"
	EventFailed    = "failed"

	DefaultTimeout = 15 * time.Minute

	shutdownTimeout = 5 * time.Second
)

var ErrTimeout = errors.New("checkout: timed out waiting for the payment window")

// Server hosts the gateway checkout page on a loopback port for the length of
// one session and reports the first callback it receives.
type Server struct {
	scriptURL string
	addr      string
	timeout   time.Duration
	announce  func(ctx context.Context, url string)

	shutdownTimeout time.Duration
}

type Option func(*Server)

func WithAddr(addr string) Option {
	return func(s *Server) { s.addr = addr }
}

func WithTimeout(d time.Duration) Option {
	return func(s *Server) { s.timeout = d }
}

// WithAnnounce sets how the page URL reaches the user.
func WithAnnounce(fn func(ctx context.Context, url string)) Option {
	return func(s *Server) { s.announce = fn }
}

func NewServer(scriptURL string, opts ...Option) *Server {
	s := &Server{
		scriptURL: scriptURL,
		addr:      "127.0.0.1:0",
		timeout:   DefaultTimeout,
		announce: func(ctx context.Context, url string) {
			logger.Infof(ctx, "checkout: open %s to complete the payment", url)
		},
		shutdownTimeout: shutdownTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type callback struct {
	Event     string `json:"event"`
	PaymentID string `json:"razorpay_payment_id"`
	OrderID   string `json:"razorpay_order_id"`
	Signature string `json:"razorpay_signature"`
	Error     struct {
		Code        string `json:"code"`
		Description string `json:"description"`
		Reason      string `json:"reason"`
	} `json:"error"`
}

func (cb callback) result() (Result, error) {
	switch cb.Event {
	case EventSuccess:
		if cb.PaymentID == "" || cb.Signature == "" {
			return nil, errors.New("payment id and signature are required")
		}
		return Success{PaymentID: cb.PaymentID, Signature: cb.Signature}, nil
	case EventDismissed:
		return Cancelled{}, nil
	case EventFailed:
		return Failed{Code: cb.Error.Code, Description: cb.Error.Description, Reason: cb.Error.Reason}, nil
	}
	return nil, fmt.Errorf("unknown event %q", cb.Event)
}

// session resolves at most once.
type session struct {
	token string
	req   Request
	once  sync.Once
	done  chan Result
}

func (s *session) resolve(r Result) bool {
	resolved := false
	s.once.Do(func() {
		s.done <- r
		resolved = true
	})
	return resolved
}

// Open serves the checkout page and blocks until the page reports back, ctx
// ends or the timeout passes.
func (s *Server) Open(ctx context.Context, req Request) (Result, error) {
	sess := &session{token: uuid.New().String(), req: req, done: make(chan Result, 1)}

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return nil, fmt.Errorf("open: unable to listen on %s: %w", s.addr, err)
	}

	srv := &http.Server{Handler: s.handler(sess)}
	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			logger.Errorf(ctx, "checkout: server stopped: %+v", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warnf(ctx, "checkout: server did not shut down cleanly: %+v", err)
		}
	}()

	s.announce(ctx, fmt.Sprintf("http://%s/checkout/%s", ln.Addr().String(), sess.token))

	timer := time.NewTimer(s.timeout)
	defer timer.Stop()

	select {
	case r := <-sess.done:
		return r, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("open: %w", ctx.Err())
	case <-timer.C:
		return nil, ErrTimeout
	}
}

func (s *Server) handler(sess *session) http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.SetCorrelationIDHeader)
	r.Use(middleware.PanicHandler)
	r.Use(middleware.RequestLogging)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		response.ResourceNotFound(fmt.Sprintf("no checkout at %s", req.URL.Path), "").Send(req.Context(), w)
	})

	base := r.PathPrefix("/checkout/{token}").Subrouter()
	base.Use(tokenMatches(sess.token))
	base.HandleFunc("", s.page(sess)).Methods(http.MethodGet)
	base.HandleFunc("/callback", s.callback(sess)).Methods(http.MethodPost)

	n := negroni.New()
	n.UseHandler(r)
	return n
}

func tokenMatches(token string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if mux.Vars(req)["token"] != token {
				response.ResourceNotFound("unknown checkout session", "").Send(req.Context(), w)
				return
			}
			next.ServeHTTP(w, req)
		})
	}
}

func (s *Server) page(sess *session) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		data := pageData{
			Request:      sess.req,
			ScriptURL:    s.scriptURL,
			CallbackPath: "/checkout/" + sess.token + "/callback",
		}
		if err := page.Execute(w, data); err != nil {
			logger.Errorf(req.Context(), "checkout: unable to render page: %+v", err)
		}
	}
}

func (s *Server) callback(sess *session) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		var cb callback
		if err := json.NewDecoder(req.Body).Decode(&cb); err != nil {
			response.InvalidData(err.Error()).Send(req.Context(), w)
			return
		}
		result, err := cb.result()
		if err != nil {
			response.InvalidData(err.Error()).Send(req.Context(), w)
			return
		}
		if cb.Event == EventSuccess && cb.OrderID != "" && cb.OrderID != sess.req.OrderID {
			response.InvalidData("callback is for a different order").Send(req.Context(), w)
			return
		}
		if !sess.resolve(result) {
			response.Conflict("checkout session already completed").Send(req.Context(), w)
			return
		}
		logger.Infof(req.Context(), "checkout: session %s ended with %s", sess.token, cb.Event)
		response.OK(map[string]bool{"success": true}).Send(w)
	}
}
