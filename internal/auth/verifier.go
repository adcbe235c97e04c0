package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// Verifier checks bearer tokens issued by the surrounding platform. This
// service never issues tokens itself; it only needs the subject to scope
// order-history reads.
type Verifier struct {
	Secret    []byte
	Issuer    string
	Audience  string
	ClockSkew time.Duration
}

// ParseAndVerify validates the raw token and returns its subject.
func (v Verifier) ParseAndVerify(raw string) (string, error) {
	if len(v.Secret) == 0 {
		return "", errors.New("auth: verifier secret not configured")
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New("auth: empty token")
	}

	options := []jwt.ParseOption{
		jwt.WithKey(jwa.HS256, v.Secret),
		jwt.WithValidate(true),
	}
	if v.Issuer != "" {
		options = append(options, jwt.WithIssuer(v.Issuer))
	}
	if v.Audience != "" {
		options = append(options, jwt.WithAudience(v.Audience))
	}
	if v.ClockSkew > 0 {
		options = append(options, jwt.WithAcceptableSkew(v.ClockSkew))
	}

	tok, err := jwt.Parse([]byte(raw), options...)
	if err != nil {
		return "", fmt.Errorf("auth: invalid token: %w", err)
	}
	subject := strings.TrimSpace(tok.Subject())
	if subject == "" {
		return "", errors.New("auth: token missing subject")
	}
	return subject, nil
}
