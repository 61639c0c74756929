package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/nkiryanov/salesoffice/internal/apperrors"
	"github.com/nkiryanov/salesoffice/internal/handlers/render"
	"github.com/nkiryanov/salesoffice/internal/logger"
	"github.com/nkiryanov/salesoffice/internal/models"
	"github.com/nkiryanov/salesoffice/internal/service/employee"
)

type employeeResponse struct {
	ID        int64       `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Phone     string      `json:"phone"`
	Role      models.Role `json:"role"`
	CreatedAt time.Time   `json:"createdAt"`
}

func toEmployeeResponse(e models.Employee) employeeResponse {
	return employeeResponse{
		ID:        e.ID,
		Name:      e.FullName,
		Email:     e.Email,
		Phone:     e.Phone,
		Role:      e.Role,
		CreatedAt: e.CreatedAt,
	}
}

func handleCreateEmployee(employeeService employeeService, logger logger.Logger) http.Handler {
	type request struct {
		Name     string `json:"name" validate:"required,max=100"`
		Email    string `json:"email" validate:"required,email"`
		Phone    string `json:"phone" validate:"max=32"`
		Role     string `json:"role" validate:"required,role"`
		Password string `json:"password" validate:"required,min=8,max=72"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		created, err := employeeService.CreateEmployee(r.Context(), employee.CreateParams{
			FullName: data.Name,
			Email:    data.Email,
			Phone:    data.Phone,
			Role:     models.Role(data.Role),
			Password: data.Password,
		})
		switch {
		case err == nil:
		case errors.Is(err, apperrors.ErrEmployeeAlreadyExists):
			render.ServiceError(w, "Employee with this email already exists", http.StatusConflict)
			return
		default:
			logger.Error("Employee creation failed", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.JSONWithStatus(w, toEmployeeResponse(created), http.StatusCreated)
	})
}

func handleGetEmployee(employeeService employeeService, logger logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := employeeID(w, r)
		if !ok {
			return
		}

		e, err := employeeService.GetEmployee(r.Context(), id)
		if err != nil {
			renderEmployeeError(w, err, logger)
			return
		}

		render.JSON(w, toEmployeeResponse(e))
	})
}

func handleChangeRole(employeeService employeeService, logger logger.Logger) http.Handler {
	type request struct {
		Role string `json:"role" validate:"required,role"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := employeeID(w, r)
		if !ok {
			return
		}

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		e, err := employeeService.ChangeRole(r.Context(), id, models.Role(data.Role))
		if err != nil {
			renderEmployeeError(w, err, logger)
			return
		}

		render.JSON(w, toEmployeeResponse(e))
	})
}

func employeeID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		render.ServiceError(w, "Invalid employee id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func renderEmployeeError(w http.ResponseWriter, err error, logger logger.Logger) {
	switch {
	case errors.Is(err, apperrors.ErrEmployeeNotFound):
		render.ServiceError(w, "Employee not found", http.StatusNotFound)
	default:
		logger.Error("Employee request failed", "error", err)
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
	}
}
