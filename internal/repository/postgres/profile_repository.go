package postgres

import (
	"context"
	"errors"
	"fmt"

	"freshCart/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProfileRepository struct {
	DB *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{DB: db}
}

// Get returns nil without error when no profile exists yet.
func (r *ProfileRepository) Get(ctx context.Context, userID uint) (*domain.PreferenceProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var profile domain.PreferenceProfile
	err := r.DB.WithContext(ctx).First(&profile, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query preference_profiles: %w", err)
	}

	return &profile, nil
}

// Upsert overwrites any existing profile row. Profiles are derived from
// event history, so last writer wins is safe.
func (r *ProfileRepository) Upsert(ctx context.Context, profile *domain.PreferenceProfile) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Clauses(
		clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			UpdateAll: true,
		},
	).Create(profile).Error; err != nil {
		return fmt.Errorf("failed to upsert preference profile: %w", err)
	}

	return nil
}
