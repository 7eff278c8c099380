package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Shopping styles derived from interaction history.
const (
	StyleExplorer      = "explorer"
	StyleFocused       = "focused"
	StyleBargainHunter = "bargain_hunter"
	StyleUnknown       = "unknown"
)

// PreferenceProfile is a cached summary of a user's interaction history.
// It is a pure function of the most recent event window, so concurrent
// rebuilds may overwrite each other freely (last writer wins).
type PreferenceProfile struct {
	UserID uint `gorm:"primaryKey;column:user_id" json:"user_id"`

	// Most-frequent categories first, capped at 5.
	PreferredCategories datatypes.JSONSlice[uint64] `gorm:"column:preferred_categories;type:jsonb" json:"preferred_categories"`

	// Nil when there is no pricing signal.
	PriceMin *float64 `gorm:"column:price_min;type:numeric" json:"price_min,omitempty"`
	PriceMax *float64 `gorm:"column:price_max;type:numeric" json:"price_max,omitempty"`

	ShoppingStyle string    `gorm:"column:shopping_style" json:"shopping_style"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (PreferenceProfile) TableName() string {
	return "preference_profiles"
}

// HasSignal reports whether the profile carries any personalization signal.
func (p PreferenceProfile) HasSignal() bool {
	return len(p.PreferredCategories) > 0
}

// HasPriceRange reports whether both price bounds are present.
func (p PreferenceProfile) HasPriceRange() bool {
	return p.PriceMin != nil && p.PriceMax != nil
}
