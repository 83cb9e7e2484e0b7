package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/codegangsta/negroni"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"eventspot/chat"
	"eventspot/config"
	c "eventspot/context"
	"eventspot/logger"
	"eventspot/otp"
	"eventspot/router"
	"eventspot/twilio"
)

// otpService picks Twilio Verify when a service SID is configured and the
// local TOTP codes otherwise. nil when neither can work.
func (a *App) otpService(ctx context.Context) otp.Service {
	sid := viper.GetString(config.TwilioAccountSID)
	token := viper.GetString(config.TwilioAuthToken)
	if sid == "" || token == "" {
		logger.Warnf(ctx, "cli: twilio credentials missing")
		return nil
	}

	if verifySID := viper.GetString(config.TwilioVerifySID); verifySID != "" {
		return otp.NewVerifyService(twilio.NewVerifier(sid, token, viper.GetString(config.TwilioVerifyURL), verifySID))
	}

	secret := viper.GetString(config.OTPSecret)
	client := a.factory.Redis(ctx)
	if secret == "" || client == nil {
		logger.Warnf(ctx, "cli: otp needs %s and %s without a verify service", config.OTPSecret, config.RedisAddress)
		return nil
	}
	sender := twilio.NewSender(sid, token, viper.GetString(config.TwilioURL), viper.GetString(config.TwilioFrom))
	return otp.NewTOTPService(secret, sender, client)
}

func (a *App) assistant(ctx context.Context) *chat.Assistant {
	key := viper.GetString(config.GeminiAPIKey)
	if key == "" {
		return nil
	}
	gen, err := chat.NewGemini(ctx, key, viper.GetString(config.GeminiModel))
	if err != nil {
		logger.Errorf(ctx, "cli: %+v", err)
		return nil
	}
	return chat.NewAssistant(gen)
}

func (a *App) serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the companion API (OTP and assistant chat)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			s := router.Services{OTP: a.otpService(ctx), Version: a.Version}
			if as := a.assistant(ctx); as != nil {
				s.Chat = as
			}

			n := negroni.New()
			n.UseHandler(router.Router(ctx, s))

			srv := &http.Server{
				Addr:              viper.GetString(config.Port),
				Handler:           n,
				ReadHeaderTimeout: 10 * time.Second,
			}
			go func() {
				<-ctx.Done()
				shutdown, cancel := c.NewContextWithTimeOut(context.Background(), 10*time.Second)
				defer cancel()
				srv.Shutdown(shutdown)
			}()

			logger.Infof(ctx, "cli: listening on %s", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
}
