// Package auth issues and verifies JWT access/refresh tokens and implements
// the register, login, logout and refresh flows.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

var ErrTokenInvalid = errors.New("auth: invalid token")

type Claims struct {
	Type string `json:"type"`
	jwt.RegisteredClaims
}

type TokenInfo struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

type Tokens struct {
	Access  TokenInfo `json:"access"`
	Refresh TokenInfo `json:"refresh"`
}

type Issuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewIssuer(secret string, accessTTL, refreshTTL time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), accessTTL: accessTTL, refreshTTL: refreshTTL, now: time.Now}
}

func (i *Issuer) Sign(userID, typ string, expires time.Time) (string, error) {
	claims := Claims{
		Type: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(i.now()),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

// Pair signs a new access and refresh token for userID.
func (i *Issuer) Pair(userID string) (Tokens, error) {
	now := i.now()
	accessExp := now.Add(i.accessTTL)
	access, err := i.Sign(userID, TypeAccess, accessExp)
	if err != nil {
		return Tokens{}, err
	}
	refreshExp := now.Add(i.refreshTTL)
	refresh, err := i.Sign(userID, TypeRefresh, refreshExp)
	if err != nil {
		return Tokens{}, err
	}
	return Tokens{
		Access:  TokenInfo{Token: access, Expires: accessExp},
		Refresh: TokenInfo{Token: refresh, Expires: refreshExp},
	}, nil
}

// Verify checks signature, expiry and token type and returns the claims.
func (i *Issuer) Verify(token, typ string) (*Claims, error) {
	var c Claims
	_, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(i.now))
	if err != nil {
		return nil, errors.Join(ErrTokenInvalid, err)
	}
	if c.Type != typ || c.Subject == "" {
		return nil, ErrTokenInvalid
	}
	return &c, nil
}
