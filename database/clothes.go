package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/spad0x/smartcloset-server/models"
	"gorm.io/gorm"
)

var ErrItemNotFound = errors.New("item not found")

// ClothesRepository is the GORM-backed store for clothing items. Every query
// is scoped to a user.
type ClothesRepository struct {
	db *gorm.DB
}

func NewClothesRepository(db *gorm.DB) *ClothesRepository {
	return &ClothesRepository{db: db}
}

func (r *ClothesRepository) Create(ctx context.Context, item *models.ClothingItem) error {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

// ListByUser returns the user's items without their color.
func (r *ClothesRepository) ListByUser(ctx context.Context, userID string) ([]models.ClothingItem, error) {
	items := make([]models.ClothingItem, 0)

	err := r.db.WithContext(ctx).
		Select("id", "image_url", "category", "season").
		Where("user_id = ?", userID).
		Order("id").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}

	return items, nil
}

func (r *ClothesRepository) FindByImageURL(ctx context.Context, userID, imageURL string) (*models.ClothingItem, error) {
	var item models.ClothingItem

	result := r.db.WithContext(ctx).
		Where("image_url = ? AND user_id = ?", imageURL, userID).
		First(&item)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("find item: %w", result.Error)
	}

	return &item, nil
}

// DeleteByImageURL removes every row matching the pair and reports how many
// were removed.
func (r *ClothesRepository) DeleteByImageURL(ctx context.Context, userID, imageURL string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("image_url = ? AND user_id = ?", imageURL, userID).
		Delete(&models.ClothingItem{})
	if result.Error != nil {
		return 0, fmt.Errorf("delete item: %w", result.Error)
	}

	return result.RowsAffected, nil
}
