package middleware

import (
	"net/http"
	"strings"

	"github.com/nkiryanov/salesoffice/internal/apperrors"
	"github.com/nkiryanov/salesoffice/internal/handlers/render"
	"github.com/nkiryanov/salesoffice/internal/handlers/userctx"
	"github.com/nkiryanov/salesoffice/internal/models"
	"github.com/nkiryanov/salesoffice/internal/service/auth"
)

type authenticator interface {
	Authenticate(access string) (models.Identity, error)
}

type errorLogger interface {
	Debug(msg string, args ...any)
	Error(msg string, args ...any)
}

type Auth struct {
	authenticator authenticator
	logger        errorLogger
}

func NewAuth(a authenticator, l errorLogger) *Auth {
	return &Auth{authenticator: a, logger: l}
}

// Require valid bearer access token and put its identity to request context
func (a *Auth) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := auth.BearerToken(r.Header.Get("Authorization"))
		if !ok {
			a.logger.Debug("Access token rejected", "error", apperrors.ErrTokenMissing)
			unauthorized(w)
			return
		}

		identity, err := a.authenticator.Authenticate(token)
		if err != nil {
			a.logger.Debug("Access token rejected", "error", err)
			unauthorized(w)
			return
		}

		next.ServeHTTP(w, r.WithContext(userctx.New(r.Context(), identity)))
	})
}

// Let through only identities with one of the roles
// Has to be applied after Authenticate
func (a *Auth) Authorize(roles ...models.Role) func(http.Handler) http.Handler {
	allowed := make(map[models.Role]struct{}, len(roles))
	names := make([]string, 0, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
		names = append(names, string(role))
	}
	denied := "Permission denied. Required roles: " + strings.Join(names, ", ")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := userctx.FromContext(r.Context())
			if !ok {
				a.logger.Error("Authorize used without Authenticate", "uri", r.RequestURI)
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
				return
			}

			if _, ok := allowed[identity.Role]; !ok {
				a.logger.Debug("Access denied", "error", apperrors.ErrRoleForbidden, "employee_id", identity.EmployeeID, "role", identity.Role)
				render.ServiceError(w, denied, http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
}
