// Package auth gates the scanner and management endpoints behind operator
// bearer tokens. Full login/session management lives outside this service;
// callers arrive with an HMAC-signed JWT naming the operator.
package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	dErrors "scanledger/pkg/domain-errors"
	"scanledger/pkg/platform/httputil"
	"scanledger/pkg/requestcontext"
)

// Validator verifies operator bearer tokens.
type Validator struct {
	signingKey []byte
}

// NewValidator builds a validator over an HMAC signing key.
func NewValidator(signingKey string) *Validator {
	return &Validator{signingKey: []byte(signingKey)}
}

// OperatorFromToken parses and verifies a token, returning the operator id
// from the subject claim.
func (v *Validator) OperatorFromToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return v.signingKey, nil
	})
	if err != nil || !token.Valid {
		return "", dErrors.New(dErrors.CodeUnauthorized, "invalid operator token")
	}
	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", dErrors.New(dErrors.CodeUnauthorized, "operator token missing subject")
	}
	return sub, nil
}

// RequireOperator rejects requests without a valid operator bearer token and
// stores the operator id in the request context.
func RequireOperator(validator *Validator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			raw, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || raw == "" {
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "operator token required"))
				return
			}
			operator, err := validator.OperatorFromToken(raw)
			if err != nil {
				logger.WarnContext(r.Context(), "operator auth failed",
					"request_id", requestcontext.RequestID(r.Context()),
					"error", err,
				)
				httputil.WriteError(w, err)
				return
			}
			ctx := requestcontext.WithOperator(r.Context(), operator)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
