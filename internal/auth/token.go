package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is returned for malformed or wrongly signed tokens.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken is returned when the token has expired.
	ErrExpiredToken = errors.New("token has expired")
)

const (
	defaultTokenTTL = 24 * time.Hour
	defaultIssuer   = "roomline-dev"
)

// IssuerConfig configures an Issuer. Zero TTL and Issuer take defaults.
type IssuerConfig struct {
	Secret string
	TTL    time.Duration
	Issuer string
}

// Claims identify the user a dev server token was issued to.
type Claims struct {
	UserID   int64  `json:"uid"`
	Nickname string `json:"nickname"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies HS256 bearer tokens.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

func NewIssuer(cfg IssuerConfig) *Issuer {
	iss := &Issuer{
		secret: []byte(cfg.Secret),
		ttl:    cfg.TTL,
		issuer: cfg.Issuer,
		now:    time.Now,
	}
	if iss.ttl <= 0 {
		iss.ttl = defaultTokenTTL
	}
	if iss.issuer == "" {
		iss.issuer = defaultIssuer
	}
	return iss
}

// Issue returns a signed token for the user.
func (iss *Issuer) Issue(userID int64, nickname string) (string, error) {
	now := iss.now()
	claims := Claims{
		UserID:   userID,
		Nickname: nickname,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    iss.issuer,
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(iss.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(iss.secret)
}

// Verify parses token and returns its claims.
func (iss *Issuer) Verify(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return iss.secret, nil
	}, jwt.WithIssuer(iss.issuer), jwt.WithTimeFunc(iss.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.UserID <= 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
