package network

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/pkg/errors"
	"github.com/thrylos-labs/stakeledger/crypto/address"
)

var errUnauthenticated = errors.New("unauthenticated")

type callerKey struct{}

// IssueToken signs an HS256 token whose subject is principal.
func IssueToken(secret []byte, principal string, ttl time.Duration) (string, error) {
	if !address.Validate(principal) {
		return "", errors.Errorf("%q is not a valid address", principal)
	}
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   principal,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ParseToken verifies tokenString and returns its subject.
func ParseToken(secret []byte, tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return "", errors.Wrap(errUnauthenticated, err.Error())
	}
	if !address.Validate(claims.Subject) {
		return "", errors.Wrap(errUnauthenticated, "token subject is not a valid address")
	}
	return claims.Subject, nil
}

// requireCaller rejects requests without a valid bearer token and stores
// the token subject in the request context.
func (router *Router) requireCaller(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			router.writeError(w, errors.Wrap(errUnauthenticated, "missing bearer token"))
			return
		}
		principal, err := ParseToken(router.secret, strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			router.writeError(w, err)
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), callerKey{}, principal)))
	}
}

func callerFrom(ctx context.Context) string {
	principal, _ := ctx.Value(callerKey{}).(string)
	return principal
}
