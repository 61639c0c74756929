package settings

import (
	"context"
	"fmt"

	"github.com/nkiryanov/salesoffice/internal/models"
	"github.com/nkiryanov/salesoffice/internal/repository"
)

type SettingsService struct {
	repo repository.SettingsRepo
}

func NewService(repo repository.SettingsRepo) *SettingsService {
	return &SettingsService{repo: repo}
}

// Return saved settings or apperrors.ErrSettingsNotFound
func (s *SettingsService) Get(ctx context.Context) (models.Settings, error) {
	return s.repo.GetSettings(ctx)
}

// Replace settings and remember who did it
func (s *SettingsService) Save(ctx context.Context, settings models.Settings, by models.Identity) (models.Settings, error) {
	if settings.TaxRate.IsNegative() {
		return models.Settings{}, fmt.Errorf("tax rate must not be negative, got %s", settings.TaxRate)
	}

	settings.UpdatedBy = &by.EmployeeID

	saved, err := s.repo.SaveSettings(ctx, settings)
	if err != nil {
		return saved, fmt.Errorf("can't save settings. Err: %w", err)
	}

	return saved, nil
}
