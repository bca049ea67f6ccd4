// Package middleware implements the request gate: authenticate first, then
// status, then role, composed per route group so the authorization policy is
// auditable in one place instead of scattered across handlers.
package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/alexiscpa/legal-consultant/internal/apperr"
	"github.com/alexiscpa/legal-consultant/internal/model/account"
	"github.com/alexiscpa/legal-consultant/internal/storage"
	"github.com/alexiscpa/legal-consultant/internal/token"
	"github.com/alexiscpa/legal-consultant/pkg/utils"
)

type contextKey struct{}

var accountKey contextKey

// AccountFromContext returns the authenticated account placed by Authenticate.
func AccountFromContext(ctx context.Context) (*account.Account, bool) {
	a, ok := ctx.Value(accountKey).(*account.Account)
	return a, ok
}

// Gate resolves bearer tokens to accounts for protected routes.
type Gate struct {
	log      *slog.Logger
	codec    *token.Codec
	accounts storage.AccountStore
}

// NewGate builds the gate from the token codec and account store.
func NewGate(log *slog.Logger, codec *token.Codec, accounts storage.AccountStore) *Gate {
	return &Gate{log: log, codec: codec, accounts: accounts}
}

// Authenticate requires a valid bearer token and loads its account into the
// request context before any handler logic runs.
func (g *Gate) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			utils.WriteError(w, apperr.Authentication("no token provided"))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			g.log.WarnContext(ctx, "malformed authorization header")
			utils.WriteError(w, apperr.Authentication("invalid token"))
			return
		}

		subject, err := g.codec.Verify(parts[1])
		if err != nil {
			g.log.WarnContext(ctx, "token verification failed", slog.Any("error", err))
			utils.WriteError(w, apperr.Authentication("invalid token"))
			return
		}

		a, err := g.accounts.GetByID(ctx, subject)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				g.log.WarnContext(ctx, "token subject no longer exists", slog.String("subject", subject))
				utils.WriteError(w, apperr.Authentication("invalid token"))
				return
			}
			g.log.ErrorContext(ctx, "failed to load account", slog.Any("error", err))
			utils.RespondError(w, http.StatusInternalServerError, "authentication failed")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, accountKey, a)))
	})
}

// RequireApproved lets admins through unconditionally and blocks non-admin
// accounts that are not approved, reporting their current status.
func RequireApproved(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a, ok := AccountFromContext(r.Context())
		if !ok {
			utils.WriteError(w, apperr.Authentication("not authenticated"))
			return
		}

		if !a.CanUseConsole() {
			utils.WriteError(w, apperr.Authorization("account not approved", string(a.Status)))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequireAdmin blocks any non-admin account.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a, ok := AccountFromContext(r.Context())
		if !ok {
			utils.WriteError(w, apperr.Authentication("not authenticated"))
			return
		}

		if a.Role != account.RoleAdmin {
			utils.WriteError(w, apperr.Authorization("admin access required", string(a.EffectiveStatus())))
			return
		}

		next.ServeHTTP(w, r)
	})
}
