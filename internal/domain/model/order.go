package model

import "time"

type OrderStatus string

const (
	OrderStatusPending OrderStatus = "PENDING"
)

// 確定後は不変。変わるのはstatusのみ。
type Order struct {
	ID            int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID        int64       `gorm:"not null;index" json:"user_id"`
	TotalAmount   Money       `gorm:"not null" json:"total_amount"`
	ShippingInfo  string      `gorm:"type:jsonb;not null" json:"-"`
	PaymentMethod string      `gorm:"type:varchar(50);not null" json:"payment_method"`
	Status        OrderStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	CreatedAt     time.Time   `gorm:"not null;autoCreateTime" json:"created_at"`
}
