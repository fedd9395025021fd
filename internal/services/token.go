package services

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/websap/backend/internal/models"
)

var (
	ErrTokenMissing = errors.New("token missing")
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

// Claims is the identity carried by an access token.
type Claims struct {
	UserID uint     `json:"id"`
	Email  string   `json:"email"`
	Nombre string   `json:"nombre"`
	Roles  []string `json:"roles"`
	jwt.RegisteredClaims
}

// HasAnyRole reports whether the token grants one of required.
func (c *Claims) HasAnyRole(required ...string) bool {
	return models.HasAnyRole(c.Roles, required...)
}

// TokenVerifier turns a bearer token into Claims. Implementations return
// ErrTokenMissing, ErrTokenExpired or ErrTokenInvalid.
type TokenVerifier interface {
	Verify(token string) (*Claims, error)
}

// JWTManager issues and verifies HS256 tokens.
type JWTManager struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// NewJWTManager returns a manager signing with secret; tokens live for ttl.
func NewJWTManager(secret string, ttl time.Duration) *JWTManager {
	return &JWTManager{secret: []byte(secret), ttl: ttl, issuer: "websap", now: time.Now}
}

// Issue signs a token for user with its current roles.
func (m *JWTManager) Issue(user *models.User) (string, time.Time, error) {
	now := m.now()
	expires := now.Add(m.ttl)
	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		Nombre: user.Nombre,
		Roles:  user.RoleNames(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expires, nil
}

// Verify checks the signature and expiry of tokenString.
func (m *JWTManager) Verify(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrTokenMissing
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithIssuer(m.issuer),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !token.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// DevUser is the identity DevVerifier falls back to.
var DevUser = Claims{
	UserID: 0,
	Email:  "dev@websap.local",
	Nombre: "Desarrollador",
	Roles:  []string{models.RoleAdministrador},
}

// DevVerifier wraps a real verifier and substitutes DevUser whenever the
// token is missing or rejected. Only for local development.
type DevVerifier struct {
	next TokenVerifier
}

// NewDevVerifier wraps next.
func NewDevVerifier(next TokenVerifier) *DevVerifier {
	return &DevVerifier{next: next}
}

// Verify never fails.
func (d *DevVerifier) Verify(token string) (*Claims, error) {
	if d.next != nil {
		if claims, err := d.next.Verify(token); err == nil {
			return claims, nil
		}
	}
	mock := DevUser
	mock.Roles = append([]string(nil), DevUser.Roles...)
	return &mock, nil
}
