package db

import (
	"context"
	"errors"

	"github.com/terraincognita07/dentclinic/internal/models"
	"gorm.io/gorm"
)

type ProfileRepository struct {
	database *gorm.DB
}

func NewProfileRepository(database *gorm.DB) *ProfileRepository {
	return &ProfileRepository{database: database}
}

func (repo *ProfileRepository) FindByID(ctx context.Context, profileID string) (models.Profile, bool, error) {
	var profile models.Profile
	err := repo.database.WithContext(ctx).Where("id = ?", profileID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Profile{}, false, nil
	}
	if err != nil {
		return models.Profile{}, false, err
	}
	return profile, true, nil
}

func (repo *ProfileRepository) Create(ctx context.Context, profile *models.Profile) error {
	if profile.Role == "" {
		profile.Role = models.RoleUser
	}
	return repo.database.WithContext(ctx).Create(profile).Error
}

// UpdateRole is used by the operator CLI to promote an existing identity.
func (repo *ProfileRepository) UpdateRole(ctx context.Context, profileID string, role string) error {
	return repo.database.WithContext(ctx).
		Model(&models.Profile{}).
		Where("id = ?", profileID).
		Update("role", role).Error
}
