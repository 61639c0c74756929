package handlers

import (
	"context"
	"net/http"

	"github.com/nkiryanov/salesoffice/internal/handlers/middleware"
	"github.com/nkiryanov/salesoffice/internal/logger"
	"github.com/nkiryanov/salesoffice/internal/models"
	"github.com/nkiryanov/salesoffice/internal/service/auth"
	"github.com/nkiryanov/salesoffice/internal/service/employee"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

type RouterConfig struct {
	// Login attempts allowed per minute from one IP. Zero disables the limit
	LoginRatePerMinute int
}

func NewRouter(
	cfg RouterConfig,
	authService authService,
	employeeService employeeService,
	settingsService settingsService,
	logger logger.Logger,
) http.Handler {
	gate := middleware.NewAuth(authService, logger)

	// Authenticate always runs before Authorize
	allow := func(h http.Handler, roles ...models.Role) http.Handler {
		return chain(h, gate.Authenticate, gate.Authorize(roles...))
	}

	login := handleLogin(authService, logger)
	if cfg.LoginRatePerMinute > 0 {
		login = middleware.NewRateLimiter(cfg.LoginRatePerMinute).Middleware(login)
	}

	mux := http.NewServeMux()

	mux.Handle("POST /api/auth/login", login)
	mux.Handle("POST /api/auth/refresh", handleRefresh(authService, logger))
	mux.Handle("POST /api/auth/logout", handleLogout(authService, logger))
	mux.Handle("GET /api/auth/me", gate.Authenticate(handleMe()))

	mux.Handle("POST /api/employees", allow(handleCreateEmployee(employeeService, logger), models.RoleAdmin))
	mux.Handle("GET /api/employees/{id}", allow(handleGetEmployee(employeeService, logger), models.RoleAdmin, models.RoleManager))
	mux.Handle("PATCH /api/employees/{id}/role", allow(handleChangeRole(employeeService, logger), models.RoleAdmin))

	mux.Handle("GET /api/settings", allow(handleGetSettings(settingsService, logger), models.RoleAdmin, models.RoleManager))
	mux.Handle("PUT /api/settings", allow(handleSaveSettings(settingsService, logger), models.RoleAdmin))

	return chain(mux,
		middleware.LoggerMiddleware(logger),
	)
}

type authService interface {
	// Has to return apperrors.ErrInvalidCredentials if email unknown or password wrong
	Login(ctx context.Context, email string, password string) (auth.Session, error)

	// Issue access token for stored refresh token
	// Has to return apperrors.ErrRefreshTokenNotFound if token unknown or expired
	Refresh(ctx context.Context, refresh string) (models.IssuedToken, error)

	// Delete refresh token. Unknown token is not an error
	Logout(ctx context.Context, refresh string) error

	// Return identity of valid access token
	Authenticate(access string) (models.Identity, error)
}

type employeeService interface {
	// Has to return apperrors.ErrEmployeeAlreadyExists if email is taken
	CreateEmployee(ctx context.Context, p employee.CreateParams) (models.Employee, error)

	// Both have to return apperrors.ErrEmployeeNotFound for unknown id
	GetEmployee(ctx context.Context, id int64) (models.Employee, error)
	ChangeRole(ctx context.Context, id int64, role models.Role) (models.Employee, error)
}

type settingsService interface {
	// Has to return apperrors.ErrSettingsNotFound if settings never saved
	Get(ctx context.Context) (models.Settings, error)
	Save(ctx context.Context, s models.Settings, by models.Identity) (models.Settings, error)
}
