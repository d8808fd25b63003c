package model

import "time"

type Product struct {
	ID            int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name          string    `gorm:"type:varchar(255);not null" json:"name"`
	Description   string    `gorm:"type:text" json:"description"`
	Price         Money     `gorm:"not null" json:"price"`
	Category      string    `gorm:"type:varchar(100);index" json:"category"`
	ImageURLs     []string  `gorm:"serializer:json;type:jsonb" json:"image_urls"`
	Keywords      []string  `gorm:"serializer:json;type:jsonb" json:"keywords"`
	StockQuantity int64     `gorm:"not null;default:0" json:"stock_quantity"`
	CreatedAt     time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
