package notify

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const unsubscribePurpose = "unsubscribe"

var (
	ErrInvalidToken = errors.New("invalid unsubscribe token")
	// ErrUnsubscribeDisabled is returned by Verify when no signing secret is
	// configured.
	ErrUnsubscribeDisabled = errors.New("unsubscribe links are disabled")
)

type unsubscribeClaims struct {
	Email   string `json:"email"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// Unsubscriber signs and verifies newsletter unsubscribe links. An empty
// secret disables it: no links are issued and every token is refused.
type Unsubscriber struct {
	secret    []byte
	publicURL string
	ttl       time.Duration
	now       func() time.Time
	logger    *slog.Logger
}

func NewUnsubscriber(secret, publicURL string, ttl time.Duration, logger *slog.Logger) *Unsubscriber {
	if logger == nil {
		logger = slog.Default()
	}
	return &Unsubscriber{secret: []byte(secret), publicURL: publicURL, ttl: ttl, now: time.Now, logger: logger}
}

// Enabled reports whether a signing secret is configured.
func (u *Unsubscriber) Enabled() bool {
	return len(u.secret) > 0
}

func (u *Unsubscriber) Token(id int64, email string) (string, error) {
	if !u.Enabled() {
		return "", ErrUnsubscribeDisabled
	}
	now := u.now()
	claims := unsubscribeClaims{
		Email:   email,
		Purpose: unsubscribePurpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(id, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(u.ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(u.secret)
}

// URL returns the unsubscribe link for a recipient, or "" when links are
// disabled, no public URL is configured or signing fails.
func (u *Unsubscriber) URL(id int64, email string) string {
	if u.publicURL == "" || !u.Enabled() {
		return ""
	}
	tok, err := u.Token(id, email)
	if err != nil {
		u.logger.Error("sign unsubscribe token", slog.Int64("candidate_id", id), slog.Any("err", err))
		return ""
	}

	return u.publicURL + "/api/newsletter/unsubscribe?token=" + url.QueryEscape(tok)
}

// Verify checks the token signature, expiry and purpose and returns the
// candidate it was issued for.
func (u *Unsubscriber) Verify(token string) (int64, string, error) {
	if !u.Enabled() {
		return 0, "", ErrUnsubscribeDisabled
	}
	claims := &unsubscribeClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return u.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(u.now))
	if err != nil {
		return 0, "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Purpose != unsubscribePurpose || claims.Email == "" {
		return 0, "", ErrInvalidToken
	}
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, "", ErrInvalidToken
	}

	return id, claims.Email, nil
}
