// Package auth signs users in with Cognito or Google and keeps the resulting
// credential in the session store.
package auth

import (
	"context"
	"errors"
	"fmt"

	"eventspot/logger"
	"eventspot/model"
	"eventspot/session"
)

var ErrNoEmail = errors.New("auth: the identity token carries no email")

type Backend interface {
	Login(ctx context.Context, req model.LoginRequest) (model.LoginResponse, error)
}

// PasswordAuthenticator exchanges an email and password for an ID token.
type PasswordAuthenticator interface {
	Login(ctx context.Context, email, password string) (string, error)
}

type Service struct {
	backend  Backend
	password PasswordAuthenticator
	store    session.Store
}

func NewService(backend Backend, password PasswordAuthenticator, store session.Store) *Service {
	return &Service{backend: backend, password: password, store: store}
}

// LoginWithPassword signs in through Cognito. The Cognito ID token is the
// credential; the backend call registers the user and returns their role.
func (s *Service) LoginWithPassword(ctx context.Context, email, password string) (model.User, error) {
	if s.password == nil {
		return model.User{}, errors.New("auth: password login is not configured")
	}
	idToken, err := s.password.Login(ctx, email, password)
	if err != nil {
		return model.User{}, err
	}

	if err := s.store.Save(session.Credential{Token: idToken, Provider: session.ProviderCognito}); err != nil {
		return model.User{}, fmt.Errorf("loginWithPassword: unable to store credential: %w", err)
	}

	res, err := s.backend.Login(ctx, model.LoginRequest{Email: email})
	if err != nil {
		s.clear(ctx)
		return model.User{}, err
	}
	logger.Infof(ctx, "auth: signed in with cognito as %s", res.User.Role)
	return res.User, nil
}

// LoginWithGoogle registers a Google ID token with the backend and stores the
// backend's own token.
func (s *Service) LoginWithGoogle(ctx context.Context, idToken string) (model.User, error) {
	claims, err := session.DecodeClaims(idToken)
	if err != nil && !errors.Is(err, session.ErrNoExpiry) {
		return model.User{}, fmt.Errorf("loginWithGoogle: %w", err)
	}
	if claims.Email == "" {
		return model.User{}, ErrNoEmail
	}

	res, err := s.backend.Login(ctx, model.LoginRequest{
		Email:    claims.Email,
		Name:     claims.Name,
		Image:    claims.Picture,
		Provider: string(session.ProviderGoogle),
		IDToken:  idToken,
	})
	if err != nil {
		return model.User{}, err
	}

	if res.Token != "" {
		if err := s.store.Save(session.Credential{Token: res.Token, Provider: session.ProviderGoogle}); err != nil {
			return model.User{}, fmt.Errorf("loginWithGoogle: unable to store credential: %w", err)
		}
	}
	logger.Infof(ctx, "auth: signed in with google as %s", res.User.Role)
	return res.User, nil
}

// Logout forgets the stored credential.
func (s *Service) Logout(ctx context.Context) error {
	if err := s.store.Clear(); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

func (s *Service) clear(ctx context.Context) {
	if err := s.store.Clear(); err != nil {
		logger.Errorf(ctx, "auth: unable to clear credential: %+v", err)
	}
}
