package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	LogLevel = "log.level"

	BackendURL     = "backend.url"
	BackendTimeout = "backend.timeout"

	LoginURL   = "auth.login_url"
	ExpirySkew = "auth.expiry_skew"

	SessionStore       = "session.store"
	SessionPath        = "session.path"
	SessionSealKey     = "session.seal_key"
	SessionRedisPrefix = "session.redis_prefix"

	DBURL = "database.mysql"

	RedisAddress  = "redis.address"
	RedisPassword = "redis.password"
	RedisDB       = "redis.db"

	VaultAddress    = "vault.address"
	VaultToken      = "vault.token"
	VaultSecretPath = "vault.secret_path"

	Port = "server.port"

	TwilioAccountSID = "twilio.account_sid"
	TwilioAuthToken  = "twilio.auth_token"
	TwilioURL        = "twilio.url"
	TwilioVerifyURL  = "twilio.verify_url"
	TwilioVerifySID  = "twilio.verify_sid"
	TwilioFrom       = "twilio.from"
	OTPSecret        = "otp.secret"

	RazorpayKeyID     = "razorpay.key_id"
	CheckoutName      = "checkout.name"
	CheckoutScriptURL = "checkout.script_url"
	CheckoutTimeout   = "checkout.timeout"

	BookingsPath = "booking.bookings_path"
	ConfirmDelay = "booking.confirm_delay"

	GeminiAPIKey = "gemini.api_key"
	GeminiModel  = "gemini.model"

	GoogleMapsAPIKey = "google.maps_api_key"

	CognitoRegion   = "cognito.region"
	CognitoClientID = "cognito.client_id"
)

// Secrets lists the keys that may be overlaid from vault.
var Secrets = []string{
	TwilioAuthToken,
	OTPSecret,
	GeminiAPIKey,
	GoogleMapsAPIKey,
	SessionSealKey,
	DBURL,
	RedisPassword,
}

func init() {
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault(LogLevel, "info")
	viper.SetDefault(BackendURL, "http://localhost:3001")
	viper.SetDefault(BackendTimeout, 30*time.Second)
	viper.SetDefault(LoginURL, "http://localhost:3000/login")
	viper.SetDefault(ExpirySkew, 30*time.Second)
	viper.SetDefault(SessionStore, "file")
	viper.SetDefault(SessionRedisPrefix, "eventspot:session")
	viper.SetDefault(RedisDB, 0)
	viper.SetDefault(VaultSecretPath, "secret/eventspot")
	viper.SetDefault(Port, ":9000")
	viper.SetDefault(TwilioURL, "https://api.twilio.com/2010-04-01/Accounts")
	viper.SetDefault(TwilioVerifyURL, "https://verify.twilio.com/v2/Services")
	viper.SetDefault(CheckoutName, "Event Spot")
	viper.SetDefault(CheckoutScriptURL, "https://checkout.razorpay.com/v1/checkout.js")
	viper.SetDefault(CheckoutTimeout, 15*time.Minute)
	viper.SetDefault(BookingsPath, "/profile?tab=bookings")
	viper.SetDefault(ConfirmDelay, 2*time.Second)
	viper.SetDefault(GeminiModel, "gemini-2.5-flash")
	viper.SetDefault(CognitoRegion, "ap-south-1")
}
