package auth

import (
	"errors"
	"fmt"

	"hatirlat/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jmhodges/clock"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

const issuer = "hatirlat"

// TokenKind separates access tokens from refresh tokens
type TokenKind string

const (
	AccessToken  TokenKind = "access"
	RefreshToken TokenKind = "refresh"
)

// TokenClaims represents the claims in the JWT token
type TokenClaims struct {
	Username string    `json:"username"`
	Kind     TokenKind `json:"kind"`
	jwt.RegisteredClaims
}

// TokenPair is returned by the token endpoints
type TokenPair struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	Type         string `json:"type"`
	ExpiresIn    int64  `json:"expiresIn"`
}

// TokenIssuer signs and validates HS256 tokens
type TokenIssuer struct {
	secret []byte
	cfg    config.JWTConfig
	clock  clock.Clock
}

func NewTokenIssuer(cfg config.JWTConfig, clk clock.Clock) *TokenIssuer {
	return &TokenIssuer{secret: []byte(cfg.Secret), cfg: cfg, clock: clk}
}

// Issue creates an access and a refresh token for username
func (i *TokenIssuer) Issue(username string) (TokenPair, error) {
	access, err := i.generate(username, AccessToken)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := i.generate(username, RefreshToken)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		Token:        access,
		RefreshToken: refresh,
		Type:         "Bearer",
		ExpiresIn:    int64(i.cfg.Expiry.Seconds()),
	}, nil
}

func (i *TokenIssuer) generate(username string, kind TokenKind) (string, error) {
	expiry := i.cfg.Expiry
	if kind == RefreshToken {
		expiry = i.cfg.RefreshExpiry
	}

	now := i.clock.Now()
	claims := TokenClaims{
		Username: username,
		Kind:     kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    issuer,
			Subject:   username,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signedToken, nil
}

// Validate parses tokenString and checks that it is a token of the given kind
func (i *TokenIssuer) Validate(tokenString string, kind TokenKind) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.clock.Now), jwt.WithIssuer(issuer))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid || claims.Username == "" {
		return nil, ErrInvalidToken
	}
	if claims.Kind != kind {
		return nil, fmt.Errorf("%w: expected %s token", ErrInvalidToken, kind)
	}
	return claims, nil
}
