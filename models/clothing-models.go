package models

// ClothingItem is one uploaded garment. The image itself lives in the image
// store; ImageURL is its public address.
type ClothingItem struct {
	ID       uint   `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID   string `json:"user_id" gorm:"type:text;not null;index"`
	ImageURL string `json:"image_url" gorm:"type:text;not null;index"`
	Category string `json:"category" gorm:"type:text;not null"`
	Color    string `json:"color,omitempty" gorm:"type:text"`
	Season   string `json:"season" gorm:"type:text;not null"`
}

func (ClothingItem) TableName() string {
	return "clothes"
}
