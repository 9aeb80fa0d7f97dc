package sso

import (
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	apperrors "github.com/simaris-dev/simaris-auth/internal/errors"
)

// IdentityClaim is the subset of the federated token payload the callback
// handler consumes. It is transient and never persisted.
type IdentityClaim struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type verifiedClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// TokenDecoder extracts an identity claim from the provider's callback
// token: three period-separated segments with a base64url JSON payload in
// the middle. When constructed with a provider public key it additionally
// verifies the RS256 signature before trusting the claims.
type TokenDecoder struct {
	verifyKey *rsa.PublicKey
}

// NewTokenDecoder builds a decoder. providerPublicKey is an optional
// PEM-encoded RSA public key; when empty, tokens are decoded without
// signature verification.
func NewTokenDecoder(providerPublicKey string) (*TokenDecoder, error) {
	if providerPublicKey == "" {
		return &TokenDecoder{}, nil
	}

	key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(providerPublicKey))
	if err != nil {
		return nil, apperrors.Wrapf(err, "[sso NewTokenDecoder] failed to parse provider public key")
	}
	return &TokenDecoder{verifyKey: key}, nil
}

// Verifying reports whether decoded tokens are signature-verified.
func (d *TokenDecoder) Verifying() bool {
	return d.verifyKey != nil
}

// Decode returns the identity claim carried by token, or ErrInvalidToken
// when the token is malformed, fails verification, or lacks an email.
func (d *TokenDecoder) Decode(token string) (IdentityClaim, error) {
	if d.verifyKey != nil {
		return d.decodeVerified(token)
	}
	return decodeUnverified(token)
}

func (d *TokenDecoder) decodeVerified(token string) (IdentityClaim, error) {
	var claims verifiedClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		return d.verifyKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}))
	if err != nil {
		return IdentityClaim{}, apperrors.Wrapf(apperrors.ErrInvalidToken, "[sso Decode] %v", err)
	}

	if claims.Email == "" {
		return IdentityClaim{}, apperrors.Wrapf(apperrors.ErrInvalidToken, "[sso Decode] token missing email claim")
	}

	return IdentityClaim{Email: claims.Email, Name: claims.Name}, nil
}

// decodeUnverified reproduces the reference behavior: only the payload
// segment is decoded, the signature is not checked.
func decodeUnverified(token string) (IdentityClaim, error) {
	segments := strings.Split(token, ".")
	if len(segments) != 3 {
		return IdentityClaim{}, apperrors.Wrapf(apperrors.ErrInvalidToken, "[sso Decode] expected 3 segments, got %d", len(segments))
	}

	payload, err := decodeBase64URL(segments[1])
	if err != nil {
		return IdentityClaim{}, apperrors.Wrapf(apperrors.ErrInvalidToken, "[sso Decode] payload is not base64url")
	}

	var claim IdentityClaim
	if err := json.Unmarshal(payload, &claim); err != nil {
		return IdentityClaim{}, apperrors.Wrapf(apperrors.ErrInvalidToken, "[sso Decode] payload is not JSON")
	}

	if claim.Email == "" {
		return IdentityClaim{}, apperrors.Wrapf(apperrors.ErrInvalidToken, "[sso Decode] token missing email claim")
	}

	return claim, nil
}

func decodeBase64URL(segment string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(strings.TrimRight(segment, "="))
}
