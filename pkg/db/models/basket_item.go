package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BasketItem is a line in the device's local basket, keyed by remote product id.
type BasketItem struct {
	ProductID    int64               `gorm:"column:product_id;primaryKey;autoIncrement:false"`
	PartNumber   string              `gorm:"column:part_number;not null;default:''"`
	Name         string              `gorm:"column:name;not null"`
	Price        decimal.NullDecimal `gorm:"column:price;type:text"`
	Quantity     int                 `gorm:"column:quantity;not null"`
	ImageURL     *string             `gorm:"column:image_url"`
	Manufacturer string              `gorm:"column:manufacturer;not null;default:''"`
	CartItemKey  *string             `gorm:"column:cart_item_key"`
	AddedAt      time.Time           `gorm:"column:added_at;not null"`
}

func (BasketItem) TableName() string { return "basket_items" }
