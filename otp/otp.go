// Package otp sends and checks the SMS codes that verify a user's phone
// number.
//
// With a Twilio Verify service configured, Twilio generates and checks the
// codes. Otherwise a TOTP code is generated locally, sent through the Twilio
// Messages API and held in Redis until it expires.
package otp

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base32"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-redis/redis"
	"github.com/pquerna/otp/totp"

	"eventspot/logger"
	"eventspot/twilio"
)

const (
	DefaultTTL = 5 * time.Minute

	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusExpired  = "expired"

	otpMessage = "Your Event Spot verification code is: %s"
)

var (
	ErrInvalidPhone = errors.New("otp: phone number must be in E.164 format, e.g. +919876543210")
	ErrMissingCode  = errors.New("otp: code is required")
)

var e164 = regexp.MustCompile(`^\+[1-9][0-9]{7,14}$`)

type Result struct {
	Approved bool
	Status   string
}

type Service interface {
	Send(ctx context.Context, phone string) (string, error)
	Verify(ctx context.Context, phone, code string) (Result, error)
}

// NormalizePhone strips spaces and dashes and checks the E.164 shape.
func NormalizePhone(phone string) (string, error) {
	p := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(strings.TrimSpace(phone))
	if !e164.MatchString(p) {
		return "", ErrInvalidPhone
	}
	return p, nil
}

type verifyService struct {
	verifier twilio.Verifier
}

func NewVerifyService(v twilio.Verifier) Service {
	return &verifyService{verifier: v}
}

func (s *verifyService) Send(ctx context.Context, phone string) (string, error) {
	p, err := NormalizePhone(phone)
	if err != nil {
		return "", err
	}
	status, err := s.verifier.StartVerification(ctx, p)
	if err != nil {
		return "", fmt.Errorf("send: %w", err)
	}
	return status, nil
}

func (s *verifyService) Verify(ctx context.Context, phone, code string) (Result, error) {
	p, err := NormalizePhone(phone)
	if err != nil {
		return Result{}, err
	}
	if strings.TrimSpace(code) == "" {
		return Result{}, ErrMissingCode
	}
	status, err := s.verifier.CheckVerification(ctx, p, strings.TrimSpace(code))
	if err != nil {
		return Result{}, fmt.Errorf("verify: %w", err)
	}
	return Result{Approved: status == twilio.StatusApproved, Status: status}, nil
}

type totpService struct {
	secret []byte
	sender twilio.Sender
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

func NewTOTPService(secret string, sender twilio.Sender, client *redis.Client) Service {
	return &totpService{
		secret: []byte(secret),
		sender: sender,
		client: client,
		ttl:    DefaultTTL,
		now:    time.Now,
	}
}

func key(phone string) string {
	return "otp:" + phone
}

// phoneSecret derives a per-number TOTP secret so two numbers never share a code.
func (s *totpService) phoneSecret(phone string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(phone))
	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(mac.Sum(nil))
}

func (s *totpService) Send(ctx context.Context, phone string) (string, error) {
	p, err := NormalizePhone(phone)
	if err != nil {
		return "", err
	}

	code, err := totp.GenerateCode(s.phoneSecret(p), s.now().UTC())
	if err != nil {
		return "", fmt.Errorf("send: unable to generate otp: %w", err)
	}

	sid, err := s.sender.Send(ctx, p, fmt.Sprintf(otpMessage, code))
	if err != nil {
		return "", fmt.Errorf("send: unable to send otp to: %s: %w", p, err)
	}

	if err := s.client.Set(key(p), code, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("send: unable to save otp for mobile: %s, sid: %s: %w", p, sid, err)
	}
	logger.Infof(ctx, "otp: code sent, sid: %s", sid)
	return StatusPending, nil
}

func (s *totpService) Verify(ctx context.Context, phone, code string) (Result, error) {
	p, err := NormalizePhone(phone)
	if err != nil {
		return Result{}, err
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return Result{}, ErrMissingCode
	}

	stored, err := s.client.Get(key(p)).Result()
	if err == redis.Nil {
		return Result{Status: StatusExpired}, nil
	}
	if err != nil {
		return Result{}, fmt.Errorf("verify: unable to read otp: %w", err)
	}

	if !hmac.Equal([]byte(stored), []byte(code)) {
		return Result{Status: StatusPending}, nil
	}

	if err := s.client.Del(key(p)).Err(); err != nil {
		logger.Warnf(ctx, "otp: unable to delete used code: %v", err)
	}
	return Result{Approved: true, Status: StatusApproved}, nil
}
