package middleware

import (
	"net/http"
	"strconv"

	"github.com/ferrisbrook/cardbinder-backend/pkg/ctxutil"
)

const accountHeader = "X-Account-Id"

// devFallbackAccountID stands in for a real session when the header is
// absent, so local clients work without an auth stack in front.
const devFallbackAccountID int64 = 1

// Account returns middleware that resolves the acting account from the
// X-Account-Id header and stores it in the request context. A malformed
// header is rejected outright; a missing one falls back to the development
// account when the fallback is enabled.
func Account(allowFallback bool) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get(accountHeader)

			var accountID int64
			switch {
			case raw != "":
				id, err := strconv.ParseInt(raw, 10, 64)
				if err != nil || id <= 0 {
					http.Error(w, "invalid "+accountHeader+" header", http.StatusUnauthorized)
					return
				}
				accountID = id
			case allowFallback:
				accountID = devFallbackAccountID
			default:
				next.ServeHTTP(w, r) // Anonymous
				return
			}

			ctx := ctxutil.WithAccountID(r.Context(), accountID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
