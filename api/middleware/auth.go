package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/stockwise-ai/stockwise-backend/api/responses"
	"github.com/stockwise-ai/stockwise-backend/internal/apikeys"
	pkgauth "github.com/stockwise-ai/stockwise-backend/pkg/auth"
	"github.com/stockwise-ai/stockwise-backend/pkg/config"
	pkgerrors "github.com/stockwise-ai/stockwise-backend/pkg/errors"
	"github.com/stockwise-ai/stockwise-backend/pkg/logger"
)

const apiKeyHeader = "X-API-Key"

// AuthOptions configures credential checking for the query surface.
type AuthOptions struct {
	// StaticKey is the env-configured shared key, if any.
	StaticKey string
	// Keys verifies issued per-client keys; may be nil.
	Keys apikeys.Verifier
	// JWT validates service bearer tokens.
	JWT config.JWTConfig
	// Required rejects anonymous requests. When false (no credentials
	// configured anywhere) all requests pass, matching a fresh deploy
	// before any key has been issued.
	Required bool
}

// Auth accepts either a service bearer token or an API key and seeds
// the context with the caller identity.
func Auth(opts AuthOptions, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if token := bearerToken(r); token != "" {
				claims, err := pkgauth.ParseServiceToken(opts.JWT, token)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
					return
				}
				ctx = WithClientID(ctx, claims.ClientID)
				if logg != nil {
					ctx = logg.WithClientID(ctx, claims.ClientID)
				}
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			if key := strings.TrimSpace(r.Header.Get(apiKeyHeader)); key != "" {
				clientID, ok := verifyKey(r, opts, key)
				if !ok {
					if logg != nil {
						logCtx := logg.WithFields(ctx, map[string]any{"ip": ClientIP(r)})
						logg.Warn(logCtx, "auth.api_key.rejected")
					}
					responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid api key"))
					return
				}
				ctx = WithClientID(ctx, clientID)
				if logg != nil {
					ctx = logg.WithClientID(ctx, clientID)
				}
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			if opts.Required {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func verifyKey(r *http.Request, opts AuthOptions, key string) (string, bool) {
	if opts.StaticKey != "" &&
		subtle.ConstantTimeCompare([]byte(key), []byte(opts.StaticKey)) == 1 {
		return "static", true
	}
	if opts.Keys != nil {
		record, err := opts.Keys.Verify(r.Context(), key)
		if err == nil && record != nil {
			return record.Name, true
		}
	}
	return "", false
}

func bearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(raw), "bearer ") {
		return strings.TrimSpace(raw[7:])
	}
	return ""
}
