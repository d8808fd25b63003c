package usecase

import (
	"context"
	"net/http"
	"strings"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

// ProductUsecase はカタログの検索と管理を担当する。
type ProductUsecase struct {
	products  repo.ProductRepository
	inventory repo.InventoryRepository
}

func NewProductUsecase(products repo.ProductRepository, inventory repo.InventoryRepository) *ProductUsecase {
	return &ProductUsecase{products: products, inventory: inventory}
}

type ProductSearchInput struct {
	Q        string
	Category string
	MinPrice string
	MaxPrice string
	Sort     string
}

type ProductInput struct {
	Name          string   `json:"name" validate:"required"`
	Description   string   `json:"description"`
	Price         string   `json:"price" validate:"required"`
	Category      string   `json:"category"`
	ImageURLs     []string `json:"image_urls"`
	Keywords      []string `json:"keywords"`
	StockQuantity int64    `json:"stock_quantity" validate:"gte=0"`
}

type ProductOutput struct {
	ID            int64       `json:"id"`
	Name          string      `json:"name"`
	Description   string      `json:"description"`
	Price         model.Money `json:"price"`
	Category      string      `json:"category"`
	ImageURLs     []string    `json:"image_urls"`
	Keywords      []string    `json:"keywords"`
	StockQuantity int64       `json:"stock_quantity"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

func (u *ProductUsecase) List(ctx context.Context, in ProductSearchInput) ([]ProductOutput, error) {
	q := repo.ProductSearchQuery{
		Q:        strings.TrimSpace(in.Q),
		Category: strings.TrimSpace(in.Category),
	}

	if s := strings.TrimSpace(in.MinPrice); s != "" {
		m, err := model.ParseMoney(s)
		if err != nil {
			return nil, NewHTTPError(http.StatusBadRequest, "invalid min_price")
		}
		q.MinPrice = &m
	}
	if s := strings.TrimSpace(in.MaxPrice); s != "" {
		m, err := model.ParseMoney(s)
		if err != nil {
			return nil, NewHTTPError(http.StatusBadRequest, "invalid max_price")
		}
		q.MaxPrice = &m
	}

	switch in.Sort {
	case "", "newest", "price_asc", "price_desc":
		q.Sort = in.Sort
	default:
		return nil, NewHTTPError(http.StatusBadRequest, "invalid sort")
	}

	products, err := u.products.Search(ctx, q)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	outs := make([]ProductOutput, 0, len(products))
	for _, p := range products {
		outs = append(outs, toProductOutput(p))
	}
	return outs, nil
}

func (u *ProductUsecase) GetDetail(ctx context.Context, id int64) (ProductOutput, error) {
	if id <= 0 {
		return ProductOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	p, err := u.products.FindByID(ctx, id)
	if err == repo.ErrNotFound {
		return ProductOutput{}, NewHTTPError(http.StatusNotFound, "product not found")
	}
	if err != nil {
		return ProductOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return toProductOutput(p), nil
}

func (u *ProductUsecase) Categories(ctx context.Context) ([]string, error) {
	cats, err := u.products.ListCategories(ctx)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return cats, nil
}

func (u *ProductUsecase) Create(ctx context.Context, in ProductInput) (ProductOutput, error) {
	p, err := buildProduct(in)
	if err != nil {
		return ProductOutput{}, err
	}

	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	id, err := u.products.Create(ctx, p)
	if err != nil {
		return ProductOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	p.ID = id

	return toProductOutput(p), nil
}

func (u *ProductUsecase) Update(ctx context.Context, id int64, in ProductInput) (ProductOutput, error) {
	if id <= 0 {
		return ProductOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	p, err := buildProduct(in)
	if err != nil {
		return ProductOutput{}, err
	}
	p.ID = id
	p.UpdatedAt = time.Now()

	//属性と在庫は別々に更新する。在庫はチェックアウトの
	//条件付き減算と同じ行を触るので、上書きはSetStockに寄せる。
	if err := u.products.Update(ctx, p); err != nil {
		if err == repo.ErrNotFound {
			return ProductOutput{}, NewHTTPError(http.StatusNotFound, "product not found")
		}
		return ProductOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if err := u.inventory.SetStock(ctx, id, in.StockQuantity); err != nil {
		return ProductOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	updated, err := u.products.FindByID(ctx, id)
	if err != nil {
		return ProductOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return toProductOutput(updated), nil
}

func (u *ProductUsecase) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	if err := u.products.Delete(ctx, id); err != nil {
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "product not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

func buildProduct(in ProductInput) (model.Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "name is required")
	}

	price, err := model.ParseMoney(strings.TrimSpace(in.Price))
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid price")
	}
	if price < 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid price")
	}
	if in.StockQuantity < 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid stock_quantity")
	}

	return model.Product{
		Name:          name,
		Description:   in.Description,
		Price:         price,
		Category:      strings.TrimSpace(in.Category),
		ImageURLs:     in.ImageURLs,
		Keywords:      in.Keywords,
		StockQuantity: in.StockQuantity,
	}, nil
}

func toProductOutput(p model.Product) ProductOutput {
	return ProductOutput{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price,
		Category:      p.Category,
		ImageURLs:     p.ImageURLs,
		Keywords:      p.Keywords,
		StockQuantity: p.StockQuantity,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}
