package router

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"eventspot/handler"
	"eventspot/logger"
	"eventspot/middleware"
	"eventspot/otp"
	"eventspot/response"
)

// Services are the backends behind the companion API. A nil service leaves
// its routes unregistered.
type Services struct {
	OTP     otp.Service
	Chat    handler.Replier
	Version string
}

// Router returns the router for all the API handler.
func Router(ctx context.Context, s Services) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.SetCorrelationIDHeader)
	r.Use(middleware.PanicHandler)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		response.ResourceNotFound(fmt.Sprintf("The requested resource was not found: path: %s, method: %s", req.URL.Path, req.Method), "The requested resource was not found!").Send(req.Context(), w)
	})

	r.Use(middleware.ResponseTimeLogging)
	r.Use(middleware.RequestLogging)
	r.Use(middleware.SetContentTypeHeader)

	r.HandleFunc("/healthcheck", handler.Healthcheck(s.Version)).Methods(http.MethodGet)
	apiRouter := r.PathPrefix("/api").Subrouter()

	if s.OTP != nil {
		apiRouter.HandleFunc("/send-otp", handler.SendOTP(s.OTP)).Methods(http.MethodPost)
		apiRouter.HandleFunc("/verify-otp", handler.VerifyOTP(s.OTP)).Methods(http.MethodPost)
	} else {
		logger.Warnf(ctx, "router: otp routes disabled")
	}

	if s.Chat != nil {
		apiRouter.HandleFunc("/chat", handler.Chat(s.Chat)).Methods(http.MethodPost)
	} else {
		logger.Warnf(ctx, "router: chat route disabled")
	}

	return r
}
