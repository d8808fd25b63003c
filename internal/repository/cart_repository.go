package repository

import (
	"context"

	"storefront/internal/domain/model"
)

type CartRepository interface {
	ListByUserID(ctx context.Context, userID int64) ([]model.CartItem, error)
	//同一商品は数量加算
	Upsert(ctx context.Context, userID int64, productID int64, addQty int64) error
	UpdateQuantity(ctx context.Context, userID int64, productID int64, qty int64) error
	DeleteByProduct(ctx context.Context, userID int64, productID int64) error
	//チェックアウト成功時にユーザーの全行を消す
	ClearByUserID(ctx context.Context, userID int64) error
}
