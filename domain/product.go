package domain

import (
	"time"
)

// CREATE TABLE public.products (
//     id              BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
//     category_id     BIGINT,
//     is_green_tag    BOOLEAN,
//     product_name    TEXT,
//     unit            TEXT,
//     normal_price    NUMERIC,
//     sale_price      NUMERIC,
//     rating          NUMERIC,
//     review_count    INT,
//     quantity        NUMERIC,
//     created_at      TIMESTAMPTZ DEFAULT NOW()
// );

type Product struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement"`
	CategoryID  uint64    `gorm:"column:category_id;default:0"`
	IsGreenTag  bool      `gorm:"column:is_green_tag;default:false"`
	ProductName string    `gorm:"column:product_name;type:text"`
	Unit        string    `gorm:"column:unit;type:text"`
	NormalPrice float64   `gorm:"column:normal_price;type:numeric"`
	SalePrice   float64   `gorm:"column:sale_price;type:numeric"`
	Rating      float64   `gorm:"column:rating;type:numeric"`
	ReviewCount int       `gorm:"column:review_count;default:0"`
	Quantity    float64   `gorm:"column:quantity;type:numeric"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (Product) TableName() string {
	return "products"
}

// InStock reports whether the product can currently be sold.
func (p Product) InStock() bool {
	return p.Quantity > 0
}

// OnSale reports whether the product has an active discounted price.
func (p Product) OnSale() bool {
	return p.SalePrice > 0 && p.SalePrice < p.NormalPrice
}

// EffectivePrice is the sale price while a discount is active, otherwise
// the normal price.
func (p Product) EffectivePrice() float64 {
	if p.OnSale() {
		return p.SalePrice
	}
	return p.NormalPrice
}

// DiscountFraction is (normal - sale) / normal, 0 when not on sale.
func (p Product) DiscountFraction() float64 {
	if !p.OnSale() || p.NormalPrice <= 0 {
		return 0
	}
	return (p.NormalPrice - p.SalePrice) / p.NormalPrice
}
