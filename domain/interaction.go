package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Action kinds recorded for user/product interactions.
const (
	ActionView      = "view"
	ActionAddToCart = "add_to_cart"
	ActionPurchase  = "purchase"
)

// ValidAction reports whether kind is one of the recorded action kinds.
func ValidAction(kind string) bool {
	switch kind {
	case ActionView, ActionAddToCart, ActionPurchase:
		return true
	}
	return false
}

// InteractionEvent is one user/product interaction. Rows are append-only:
// nothing in this service updates or deletes them after creation.
type InteractionEvent struct {
	ID         uint              `gorm:"primaryKey" json:"id"`
	UserID     uint              `gorm:"column:user_id;not null;index" json:"user_id"`
	ProductID  uint64            `gorm:"column:product_id;not null;index" json:"product_id"`
	ActionKind string            `gorm:"column:action_kind;not null" json:"action_kind"`
	SessionID  string            `gorm:"column:session_id" json:"session_id,omitempty"`
	DeviceType string            `gorm:"column:device_type" json:"device_type,omitempty"`
	Source     string            `gorm:"column:source" json:"source,omitempty"`
	DurationMs int64             `gorm:"column:duration_ms;default:0" json:"duration_ms,omitempty"`
	Metadata   datatypes.JSONMap `gorm:"column:metadata;type:jsonb" json:"metadata,omitempty"`
	CreatedAt  time.Time         `gorm:"column:created_at;autoCreateTime;index" json:"created_at"`
}

func (InteractionEvent) TableName() string {
	return "interaction_events"
}
