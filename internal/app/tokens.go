package app

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
	"golang.org/x/crypto/hkdf"
)

// DefaultTokenTTL is how long an issued session token stays valid.
const DefaultTokenTTL = 30 * time.Minute

const tokenKeyInfo = "blueprint session token v1"

// TokenIssuer signs and verifies stateless HS256 session tokens.
type TokenIssuer struct {
	key    []byte
	signer jose.Signer
	now    func() time.Time
}

// NewTokenIssuer derives a signing key from secret.
func NewTokenIssuer(secret string) (*TokenIssuer, error) {
	if secret == "" {
		return nil, errors.New("token secret must not be empty")
	}

	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(tokenKeyInfo)), key); err != nil {
		return nil, fmt.Errorf("derive token key: %w", err)
	}

	signer, err := jose.NewSigner(
		jose.SigningKey{Algorithm: jose.HS256, Key: key},
		(&jose.SignerOptions{}).WithType("JWT"),
	)
	if err != nil {
		return nil, fmt.Errorf("token signer: %w", err)
	}
	return &TokenIssuer{key: key, signer: signer, now: time.Now}, nil
}

// Issue returns a token for subject that expires after ttl.
func (t *TokenIssuer) Issue(subject string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	now := t.now()
	claims := jwt.Claims{
		Subject:  subject,
		IssuedAt: jwt.NewNumericDate(now),
		Expiry:   jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.Signed(t.signer).Claims(claims).Serialize()
}

// Verify checks the token's signature and expiry and returns its subject.
// Failures are *AuthError values.
func (t *TokenIssuer) Verify(raw string) (string, error) {
	tok, err := jwt.ParseSigned(raw, []jose.SignatureAlgorithm{jose.HS256})
	if err != nil {
		return "", &AuthError{Kind: AuthInvalidSignature, Err: err}
	}

	var claims jwt.Claims
	if err := tok.Claims(t.key, &claims); err != nil {
		return "", &AuthError{Kind: AuthInvalidSignature, Err: err}
	}

	if claims.Expiry == nil || claims.Subject == "" {
		return "", &AuthError{Kind: AuthInvalidSignature, Err: errors.New("missing claims")}
	}

	now := t.now()
	// Expired once now reaches exp; jwt.Validate only rejects now > exp.
	if !now.Before(claims.Expiry.Time()) {
		return "", &AuthError{Kind: AuthExpired, Err: jwt.ErrExpired}
	}
	if err := claims.ValidateWithLeeway(jwt.Expected{Time: now}, 0); err != nil {
		return "", &AuthError{Kind: AuthInvalidSignature, Err: err}
	}
	return claims.Subject, nil
}
