package domain

import (
	"time"

	"gorm.io/datatypes"
)

type StrategyKind string

const (
	StrategyPersonalized    StrategyKind = "personalized"
	StrategyAlsoViewed      StrategyKind = "also_viewed"
	StrategyAlsoBought      StrategyKind = "also_bought"
	StrategySimilarProducts StrategyKind = "similar_products"
	StrategyTrending        StrategyKind = "trending"
	StrategyNewArrivals     StrategyKind = "new_arrivals"
	StrategyPriceDrop       StrategyKind = "price_drop"
	StrategyCartAbandonment StrategyKind = "cart_abandonment"

	// StrategyMixed is the blended default when no explicit strategy is
	// requested. It never appears on a candidate; candidates keep the
	// kind of the strategy that produced them.
	StrategyMixed StrategyKind = "mixed"
)

// ValidStrategy reports whether kind names a runnable strategy.
func ValidStrategy(kind StrategyKind) bool {
	switch kind {
	case StrategyPersonalized, StrategyAlsoViewed, StrategyAlsoBought,
		StrategySimilarProducts, StrategyTrending, StrategyNewArrivals,
		StrategyPriceDrop, StrategyCartAbandonment:
		return true
	}
	return false
}

// RecommendationCandidate is the per-request ranking output. It is never
// persisted as-is; the Feedback Recorder derives StoredRecommendation
// rows from it.
type RecommendationCandidate struct {
	ProductID       uint64       `json:"product_id"`
	RawScore        float64      `json:"raw_score"`
	NormalizedScore float64      `json:"score"`
	Reason          string       `json:"reason"`
	Strategy        StrategyKind `json:"strategy"`
}

// StoredRecommendation is one recommended product persisted for the
// shown/clicked/purchased feedback loop. Rows expire logically 24 hours
// after creation via ExpiresAt.
type StoredRecommendation struct {
	ID        uint              `gorm:"primaryKey" json:"id"`
	UserID    uint              `gorm:"column:user_id;not null;index:idx_reco_user_product,unique" json:"user_id"`
	ProductID uint64            `gorm:"column:product_id;not null;index:idx_reco_user_product,unique" json:"product_id"`
	Strategy  StrategyKind      `gorm:"column:strategy_kind;not null;index:idx_reco_user_product,unique" json:"strategy"`
	BatchID   string            `gorm:"column:batch_id;not null;index:idx_reco_user_product,unique" json:"batch_id"`
	Score     float64           `gorm:"column:score;not null" json:"score"`
	Reason    string            `gorm:"column:reason;type:text" json:"reason"`
	Context   datatypes.JSONMap `gorm:"column:context;type:jsonb" json:"context,omitempty"`

	ExpiresAt time.Time `gorm:"column:expires_at;not null;index" json:"expires_at"`

	IsShown     bool       `gorm:"column:is_shown;default:false" json:"is_shown"`
	ShownAt     *time.Time `gorm:"column:shown_at" json:"shown_at,omitempty"`
	IsClicked   bool       `gorm:"column:is_clicked;default:false" json:"is_clicked"`
	ClickedAt   *time.Time `gorm:"column:clicked_at" json:"clicked_at,omitempty"`
	IsPurchased bool       `gorm:"column:is_purchased;default:false" json:"is_purchased"`
	PurchasedAt *time.Time `gorm:"column:purchased_at" json:"purchased_at,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (StoredRecommendation) TableName() string {
	return "stored_recommendations"
}
