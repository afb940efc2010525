package testbackend

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// ErrTokenExpired is returned by ValidateToken for a token past its expiry
var ErrTokenExpired = errors.New("token expired")

// JWTClaims represents the JWT token claims
type JWTClaims struct {
	UserID  uint `json:"user_id"`
	IsAdmin bool `json:"is_admin"`
	jwt.RegisteredClaims
}

// issuer signs and checks tokens. Rotate invalidates every token issued so far.
type issuer struct {
	mu     sync.RWMutex
	secret []byte
	ttl    time.Duration
}

func newIssuer(secret string, ttl time.Duration) *issuer {
	return &issuer{secret: []byte(secret), ttl: ttl}
}

// GenerateToken creates a new JWT token for a user
func (i *issuer) GenerateToken(userID uint, isAdmin bool) (string, error) {
	i.mu.RLock()
	secret, ttl := i.secret, i.ttl
	i.mu.RUnlock()

	now := time.Now()
	claims := JWTClaims{
		UserID:  userID,
		IsAdmin: isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now.Add(-time.Second)),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ValidateToken validates a JWT token and returns the claims
func (i *issuer) ValidateToken(tokenString string) (*JWTClaims, error) {
	i.mu.RLock()
	secret := i.secret
	i.mu.RUnlock()

	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		// Validate signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}

func (i *issuer) rotate(secret string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.secret = []byte(secret)
}

func (i *issuer) setTTL(ttl time.Duration) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.ttl = ttl
}

// HashPassword hashes a password with bcrypt
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches hash
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
