package handlers

import (
	"errors"
	"net/http"

	"github.com/nkiryanov/salesoffice/internal/apperrors"
	"github.com/nkiryanov/salesoffice/internal/handlers/render"
	"github.com/nkiryanov/salesoffice/internal/handlers/userctx"
	"github.com/nkiryanov/salesoffice/internal/logger"
	"github.com/nkiryanov/salesoffice/internal/models"
)

const refreshTokenHeader = "Refresh-Token"

type employeeSummary struct {
	ID    int64       `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  models.Role `json:"role"`
}

func handleLogin(authService authService, logger logger.Logger) http.Handler {
	type request struct {
		Email    string `json:"email" validate:"required"`
		Password string `json:"password" validate:"required"`
	}
	type response struct {
		AccessToken  string          `json:"accessToken"`
		RefreshToken string          `json:"refreshToken"`
		Employee     employeeSummary `json:"employee"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		session, err := authService.Login(r.Context(), data.Email, data.Password)
		switch {
		case err == nil:
		case errors.Is(err, apperrors.ErrInvalidCredentials):
			render.ServiceError(w, "Invalid credentials", http.StatusUnauthorized)
			return
		default:
			logger.Error("Login failed", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		e := session.Employee
		render.JSON(w, response{
			AccessToken:  session.Tokens.Access.Value,
			RefreshToken: session.Tokens.Refresh.Value,
			Employee:     employeeSummary{ID: e.ID, Name: e.FullName, Email: e.Email, Role: e.Role},
		})
	})
}

func handleRefresh(authService authService, logger logger.Logger) http.Handler {
	type response struct {
		AccessToken string `json:"accessToken"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		refresh := r.Header.Get(refreshTokenHeader)
		if refresh == "" {
			render.ServiceError(w, "Refresh token required", http.StatusUnauthorized)
			return
		}

		access, err := authService.Refresh(r.Context(), refresh)
		switch {
		case err == nil:
		case errors.Is(err, apperrors.ErrRefreshTokenNotFound):
			render.ServiceError(w, "Invalid refresh token", http.StatusUnauthorized)
			return
		default:
			logger.Error("Token refresh failed", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, response{AccessToken: access.Value})
	})
}

// Always succeeds: client forgets its tokens whatever happened here
func handleLogout(authService authService, logger logger.Logger) http.Handler {
	type response struct {
		Message string `json:"message"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := authService.Logout(r.Context(), r.Header.Get(refreshTokenHeader)); err != nil {
			logger.Error("Logout failed to delete refresh token", "error", err)
		}

		render.JSON(w, response{Message: "Logout successful"})
	})
}

func handleMe() http.Handler {
	type response struct {
		ID    int64       `json:"id"`
		Email string      `json:"email"`
		Role  models.Role `json:"role"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, _ := userctx.FromContext(r.Context())
		render.JSON(w, response{ID: identity.EmployeeID, Email: identity.Email, Role: identity.Role})
	})
}
