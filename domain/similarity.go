package domain

// Similarity kinds written by the offline similarity job.
const (
	SimilarityCategoryAffinity = "category_affinity"
	SimilarityCoView           = "co_view"
	SimilarityCoPurchase       = "co_purchase"
)

// ProductSimilarity is one directed edge of the precomputed similarity
// table. This service only reads these rows; an external batch process
// owns them, and any product may have none (cold start).
type ProductSimilarity struct {
	ID               uint    `gorm:"primaryKey" json:"id"`
	ProductID        uint64  `gorm:"column:product_id;not null;index" json:"product_id"`
	SimilarProductID uint64  `gorm:"column:similar_product_id;not null" json:"similar_product_id"`
	Score            float64 `gorm:"column:score;not null" json:"score"`
	Kind             string  `gorm:"column:kind;not null" json:"kind"`
}

func (ProductSimilarity) TableName() string {
	return "product_similarities"
}
