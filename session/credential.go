// Package session keeps the signed-in user's bearer credential between runs.
//
// A credential is a token plus the identity provider that issued it. Both
// values are always written and cleared together.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
)

type Provider string

const (
	ProviderGoogle  Provider = "google"
	ProviderCognito Provider = "cognito"
)

var ErrNoExpiry = errors.New("token has no numeric exp claim")

type Credential struct {
	Token    string   `json:"token"`
	Provider Provider `json:"provider,omitempty"`
}

// Store is the persistent key-value storage behind the session guard.
type Store interface {
	Load() (Credential, bool, error)
	Save(Credential) error
	Clear() error
}

// Claims is the decoded, unverified payload of a credential token.
type Claims struct {
	Subject string
	Email   string
	Name    string
	Picture string
	Exp     float64
	HasExp  bool
}

// ExpiresAt reports the exp claim as a time. Zero when the claim is absent.
func (c Claims) ExpiresAt() time.Time {
	if !c.HasExp {
		return time.Time{}
	}
	return time.Unix(int64(c.Exp), 0)
}

// DecodeClaims reads the payload segment of token without checking its
// signature. The backend is the only party that verifies tokens, so the
// header and signature segments are not looked at.
func DecodeClaims(token string) (Claims, error) {
	parts := strings.Split(token, ".")
	if len(parts) < 2 {
		return Claims{}, fmt.Errorf("decodeClaims: token has %d segments", len(parts))
	}

	payload, err := jwt.DecodeSegment(parts[1])
	if err != nil {
		return Claims{}, fmt.Errorf("decodeClaims: unable to decode payload: %w", err)
	}
	var mc jwt.MapClaims
	if err := json.Unmarshal(payload, &mc); err != nil {
		return Claims{}, fmt.Errorf("decodeClaims: payload is not a json object: %w", err)
	}

	var claims Claims
	claims.Subject, _ = mc["sub"].(string)
	claims.Email, _ = mc["email"].(string)
	claims.Name, _ = mc["name"].(string)
	claims.Picture, _ = mc["picture"].(string)

	switch exp := mc["exp"].(type) {
	case float64:
		claims.Exp, claims.HasExp = exp, true
	case json.Number:
		v, err := exp.Float64()
		if err == nil {
			claims.Exp, claims.HasExp = v, true
		}
	}

	if !claims.HasExp {
		return claims, ErrNoExpiry
	}
	return claims, nil
}
