package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/boddenberg/leads-crm-go/internal/infra/observability"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

type contextKey string

const operatorKey contextKey = "operator"

const (
	sessionHeader   = "X-Session-ID"
	defaultOperator = "local"
)

// OperatorMiddleware resolves the operator whose view session serves the
// request. With a secret, an HS256 Bearer token is required and its subject
// is the operator; without one, the X-Session-ID header is used.
func OperatorMiddleware(secret string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			operator := strings.TrimSpace(r.Header.Get(sessionHeader))
			if operator == "" {
				operator = defaultOperator
			}

			if secret != "" {
				sub, err := operatorFromToken(r.Header.Get("Authorization"), secret)
				if err != nil {
					logger.Warn("auth: rejected token",
						zap.String("path", r.URL.Path),
						zap.String("remote_addr", r.RemoteAddr),
						zap.Error(err),
					)
					writeError(w, http.StatusUnauthorized, "Token de autenticação inválido")
					return
				}
				operator = sub
			}

			observability.AddRequestFields(r.Context(), zap.String("operator", operator))
			ctx := context.WithValue(r.Context(), operatorKey, operator)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func operatorFromToken(header, secret string) (string, error) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", fmt.Errorf("missing bearer token")
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(parts[1], claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid || claims.Subject == "" {
		return "", fmt.Errorf("token without subject")
	}
	return claims.Subject, nil
}

// OperatorFromContext returns the operator resolved by OperatorMiddleware.
func OperatorFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(operatorKey).(string); ok && v != "" {
		return v
	}
	return defaultOperator
}
