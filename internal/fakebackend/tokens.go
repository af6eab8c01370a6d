// ABOUTME: JWT access and refresh tokens for the fake SafePulse backend
// ABOUTME: HS256 tokens with uuid IDs, revocation and forced access expiry

package fakebackend

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

var errTokenRevoked = errors.New("token is blacklisted")

// claims is the payload of both token types. Generation ties access tokens
// to the issuer's current generation so tests can expire them on demand.
type claims struct {
	OfficerID  int    `json:"user_id"`
	TokenType  string `json:"token_type"`
	Generation int64  `json:"gen,omitempty"`
	jwt.RegisteredClaims
}

type tokenIssuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	generation atomic.Int64
	revoked    *expiringSet
	now        func() time.Time
}

func newTokenIssuer(secret []byte, accessTTL, refreshTTL time.Duration) *tokenIssuer {
	return &tokenIssuer{
		secret:     secret,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		revoked:    newExpiringSet(),
		now:        time.Now,
	}
}

func (t *tokenIssuer) sign(officerID int, tokenType string, ttl time.Duration, gen int64) (string, error) {
	now := t.now()
	c := claims{
		OfficerID:  officerID,
		TokenType:  tokenType,
		Generation: gen,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   fmt.Sprint(officerID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(t.secret)
}

func (t *tokenIssuer) issueAccess(officerID int) (string, error) {
	return t.sign(officerID, tokenTypeAccess, t.accessTTL, t.generation.Load())
}

func (t *tokenIssuer) issuePair(officerID int) (access, refresh string, err error) {
	if access, err = t.issueAccess(officerID); err != nil {
		return "", "", err
	}
	if refresh, err = t.sign(officerID, tokenTypeRefresh, t.refreshTTL, 0); err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func (t *tokenIssuer) parse(raw, tokenType string) (*claims, error) {
	var c claims
	_, err := jwt.ParseWithClaims(raw, &c, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return nil, err
	}
	if c.TokenType != tokenType {
		return nil, fmt.Errorf("token has wrong type %q", c.TokenType)
	}
	return &c, nil
}

// verifyAccess validates an access token against the current generation.
func (t *tokenIssuer) verifyAccess(raw string) (*claims, error) {
	c, err := t.parse(raw, tokenTypeAccess)
	if err != nil {
		return nil, err
	}
	if c.Generation != t.generation.Load() {
		return nil, jwt.ErrTokenExpired
	}
	return c, nil
}

// verifyRefresh validates a refresh token and checks the blacklist.
func (t *tokenIssuer) verifyRefresh(raw string) (*claims, error) {
	c, err := t.parse(raw, tokenTypeRefresh)
	if err != nil {
		return nil, err
	}
	if t.revoked.Has(c.ID) {
		return nil, errTokenRevoked
	}
	return c, nil
}

// revoke blacklists a refresh token until it would have expired anyway.
func (t *tokenIssuer) revoke(c *claims) {
	ttl := time.Until(c.ExpiresAt.Time)
	if ttl <= 0 {
		return
	}
	t.revoked.Add(c.ID, ttl)
}

// expireAccess invalidates every access token issued so far.
func (t *tokenIssuer) expireAccess() {
	t.generation.Add(1)
}
