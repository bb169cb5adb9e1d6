package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/noah-isme/course-timetable-api/internal/models"
)

// tokenLeeway absorbs clock skew between replicas.
const tokenLeeway = 30 * time.Second

// accessTokens issues and verifies HS256 staff tokens.
type accessTokens struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func newAccessTokens(secret, issuer string, ttl time.Duration) *accessTokens {
	return &accessTokens{secret: []byte(secret), issuer: issuer, ttl: ttl, now: time.Now}
}

func (t *accessTokens) issue(user *models.User) (string, time.Time, error) {
	issued := t.now().UTC()
	expires := issued.Add(t.ttl)
	claims := &models.JWTClaims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    t.issuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(issued),
			NotBefore: jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	return signed, expires, err
}

func (t *accessTokens) parse(raw string) (*models.JWTClaims, error) {
	claims := &models.JWTClaims{}
	_, err := jwt.ParseWithClaims(raw, claims,
		func(*jwt.Token) (interface{}, error) { return t.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(tokenLeeway),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return nil, err
	}
	return claims, nil
}
