package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nkiryanov/salesoffice/internal/apperrors"
	"github.com/nkiryanov/salesoffice/internal/handlers/render"
	"github.com/nkiryanov/salesoffice/internal/handlers/userctx"
	"github.com/nkiryanov/salesoffice/internal/logger"
	"github.com/nkiryanov/salesoffice/internal/models"
)

type settingsResponse struct {
	CompanyName       string          `json:"companyName"`
	CompanyAddress    string          `json:"companyAddress"`
	CompanyPhone      string          `json:"companyPhone"`
	CompanyEmail      string          `json:"companyEmail"`
	TaxRate           decimal.Decimal `json:"taxRate"`
	Currency          string          `json:"currency"`
	LowStockThreshold int             `json:"lowStockThreshold"`
	InvoicePrefix     string          `json:"invoicePrefix"`
	UpdatedBy         *int64          `json:"updatedBy"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

func toSettingsResponse(s models.Settings) settingsResponse {
	return settingsResponse{
		CompanyName:       s.CompanyName,
		CompanyAddress:    s.CompanyAddress,
		CompanyPhone:      s.CompanyPhone,
		CompanyEmail:      s.CompanyEmail,
		TaxRate:           s.TaxRate,
		Currency:          s.Currency,
		LowStockThreshold: s.LowStockThreshold,
		InvoicePrefix:     s.InvoicePrefix,
		UpdatedBy:         s.UpdatedBy,
		UpdatedAt:         s.UpdatedAt,
	}
}

func handleGetSettings(settingsService settingsService, logger logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, err := settingsService.Get(r.Context())
		switch {
		case err == nil:
		case errors.Is(err, apperrors.ErrSettingsNotFound):
			render.ServiceError(w, "Settings not found", http.StatusNotFound)
			return
		default:
			logger.Error("Settings read failed", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, toSettingsResponse(s))
	})
}

func handleSaveSettings(settingsService settingsService, logger logger.Logger) http.Handler {
	type request struct {
		CompanyName       string          `json:"companyName" validate:"required,max=200"`
		CompanyAddress    string          `json:"companyAddress" validate:"max=500"`
		CompanyPhone      string          `json:"companyPhone" validate:"max=32"`
		CompanyEmail      string          `json:"companyEmail" validate:"omitempty,email"`
		TaxRate           decimal.Decimal `json:"taxRate"`
		Currency          string          `json:"currency" validate:"required,len=3"`
		LowStockThreshold int             `json:"lowStockThreshold" validate:"min=0"`
		InvoicePrefix     string          `json:"invoicePrefix" validate:"max=16"`
	}

	maxTaxRate := decimal.NewFromInt(100)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		if data.TaxRate.IsNegative() || data.TaxRate.GreaterThan(maxTaxRate) {
			render.ServiceError(w, "Tax rate must be between 0 and 100", http.StatusBadRequest)
			return
		}

		identity, _ := userctx.FromContext(r.Context())
		saved, err := settingsService.Save(r.Context(), models.Settings{
			CompanyName:       data.CompanyName,
			CompanyAddress:    data.CompanyAddress,
			CompanyPhone:      data.CompanyPhone,
			CompanyEmail:      data.CompanyEmail,
			TaxRate:           data.TaxRate,
			Currency:          data.Currency,
			LowStockThreshold: data.LowStockThreshold,
			InvoicePrefix:     data.InvoicePrefix,
		}, identity)
		if err != nil {
			logger.Error("Settings save failed", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, toSettingsResponse(saved))
	})
}
