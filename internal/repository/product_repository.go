package repository

import (
	"context"

	"storefront/internal/domain/model"
)

// GET /products の検索条件
type ProductSearchQuery struct {
	Q        string
	Category string
	MinPrice *model.Money
	MaxPrice *model.Money
	Sort     string // "" / "price_asc" / "price_desc" / "newest"
}

type ProductRepository interface {
	FindByID(ctx context.Context, productID int64) (model.Product, error)
	//チェックアウト中の価格・在庫読み取り用（行ロック付き）
	FindByIDForUpdate(ctx context.Context, productID int64) (model.Product, error)
	Search(ctx context.Context, q ProductSearchQuery) ([]model.Product, error)
	ListCategories(ctx context.Context) ([]string, error)
	Create(ctx context.Context, p model.Product) (int64, error)
	Update(ctx context.Context, p model.Product) error
	Delete(ctx context.Context, productID int64) error
}
