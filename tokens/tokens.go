// Package tokens mints and verifies the scoped access tokens handed to the
// downstream retrieval service.
package tokens

import (
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

const defaultSecret = "activity-studio-secret-change-me"

const defaultTTL = 15 * time.Minute

// ScopeRAGQuery is the only scope minted today: querying the retrieval
// service for one activity's linked documents.
const ScopeRAGQuery = "rag:query"

// Claims is the token payload.
type Claims struct {
	ActivityID string `json:"activityId"`
	Scope      string `json:"scope"`
	jwtlib.RegisteredClaims
}

// Minter signs short-lived HS256 tokens scoped to a single activity.
type Minter struct {
	secret []byte
	ttl    time.Duration
}

// NewMinter builds a Minter. Empty secret and non-positive ttl fall back to
// development defaults.
func NewMinter(secret string, ttl time.Duration) *Minter {
	m := &Minter{secret: []byte(defaultSecret), ttl: defaultTTL}
	if secret != "" {
		m.secret = []byte(secret)
	}
	if ttl > 0 {
		m.ttl = ttl
	}
	return m
}

// Mint creates a signed token granting RAG query access to the activity.
func (m *Minter) Mint(activityID string) (string, error) {
	now := time.Now()
	claims := Claims{
		ActivityID: activityID,
		Scope:      ScopeRAGQuery,
		RegisteredClaims: jwtlib.RegisteredClaims{
			ExpiresAt: jwtlib.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwtlib.NewNumericDate(now),
		},
	}
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Parse validates a token string and returns its claims.
func (m *Minter) Parse(tokenStr string) (*Claims, error) {
	token, err := jwtlib.ParseWithClaims(tokenStr, &Claims{}, func(t *jwtlib.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}
