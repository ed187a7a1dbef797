package basket

import (
	"context"
	"errors"

	"github.com/heatparts/storefront/internal/repo"
	"github.com/heatparts/storefront/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository persists the local basket.
type Repository struct {
	repo.Base
}

// NewRepository constructs a basket repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// List returns every basket line in the order it was first added.
func (r *Repository) List(ctx context.Context) ([]models.BasketItem, error) {
	var items []models.BasketItem
	if err := r.DB(ctx).Order("added_at ASC").Order("product_id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Get loads a basket line. Missing lines return gorm.ErrRecordNotFound.
func (r *Repository) Get(ctx context.Context, productID int64) (*models.BasketItem, error) {
	var item models.BasketItem
	if err := r.DB(ctx).Where("product_id = ?", productID).Take(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// Upsert inserts the line or replaces every column of an existing one.
func (r *Repository) Upsert(ctx context.Context, item *models.BasketItem) error {
	return r.DB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "product_id"}},
		UpdateAll: true,
	}).Create(item).Error
}

// SetQuantity updates the quantity of an existing line.
func (r *Repository) SetQuantity(ctx context.Context, productID int64, quantity int) error {
	res := r.DB(ctx).Model(&models.BasketItem{}).
		Where("product_id = ?", productID).
		Update("quantity", quantity)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SetCartItemKey records the remote line key for a product. nil clears it.
func (r *Repository) SetCartItemKey(ctx context.Context, productID int64, key *string) error {
	return r.DB(ctx).Model(&models.BasketItem{}).
		Where("product_id = ?", productID).
		Update("cart_item_key", key).Error
}

// SetCartItemKeys replaces every line's remote key. Lines missing from keys
// are cleared.
func (r *Repository) SetCartItemKeys(ctx context.Context, keys map[int64]string) error {
	return r.InTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Model(&models.BasketItem{}).Where("1 = 1").Update("cart_item_key", nil).Error; err != nil {
			return err
		}
		for productID, key := range keys {
			if err := tx.Model(&models.BasketItem{}).
				Where("product_id = ?", productID).
				Update("cart_item_key", key).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes a line. It reports whether a row was removed.
func (r *Repository) Delete(ctx context.Context, productID int64) (bool, error) {
	res := r.DB(ctx).Where("product_id = ?", productID).Delete(&models.BasketItem{})
	return res.RowsAffected > 0, res.Error
}

// Clear removes every line.
func (r *Repository) Clear(ctx context.Context) error {
	return r.DB(ctx).Where("1 = 1").Delete(&models.BasketItem{}).Error
}

// Count returns the number of distinct lines.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.DB(ctx).Model(&models.BasketItem{}).Count(&n).Error
	return n, err
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
