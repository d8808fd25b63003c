package repository_test

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"storefront/internal/domain/model"
	infraRepo "storefront/internal/infra/repository"
	"storefront/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// TEST_DATABASE_URL があるときだけ実PostgreSQLで並行チェックアウトを検証する。
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Product{},
		&model.CartItem{},
		&model.Order{},
		&model.OrderItem{},
	))

	//前回分を掃除
	db.Exec("DELETE FROM order_items")
	db.Exec("DELETE FROM orders")
	db.Exec("DELETE FROM cart_items")
	db.Exec("DELETE FROM products")
	db.Exec("DELETE FROM users")

	return db
}

func seedUser(t *testing.T, db *gorm.DB, name string) int64 {
	t.Helper()
	u := model.User{
		Username:     name,
		Email:        name + "@example.com",
		PasswordHash: "x",
		CreatedAt:    time.Now(),
	}
	require.NoError(t, db.Create(&u).Error)
	return u.ID
}

func checkoutInput() usecase.CheckoutInput {
	return usecase.CheckoutInput{
		ShippingInfo:  json.RawMessage(`{"name":"t","address":"a"}`),
		PaymentMethod: "credit_card",
	}
}

// 残り1個の商品を2人が同時にチェックアウトした場合、
// 成功は1人だけで在庫は負にならない。
func TestCheckout_ConcurrentLastUnit(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	p := model.Product{Name: "限定品", Price: model.Money(1000), StockQuantity: 1, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	require.NoError(t, db.Create(&p).Error)

	userA := seedUser(t, db, "user_a")
	userB := seedUser(t, db, "user_b")

	carts := infraRepo.NewCartGormRepository(db)
	require.NoError(t, carts.Upsert(ctx, userA, p.ID, 1))
	require.NoError(t, carts.Upsert(ctx, userB, p.ID, 1))

	uc := usecase.NewOrderUsecase(infraRepo.NewTxManagerGorm(db))

	type result struct {
		out usecase.CheckoutOutput
		err error
	}
	results := make([]result, 2)

	var wg sync.WaitGroup
	for i, userID := range []int64{userA, userB} {
		wg.Add(1)
		go func(i int, userID int64) {
			defer wg.Done()
			out, err := uc.Checkout(ctx, userID, checkoutInput())
			results[i] = result{out: out, err: err}
		}(i, userID)
	}
	wg.Wait()

	var succeeded, rejected int
	for _, r := range results {
		if r.err == nil {
			succeeded++
			continue
		}
		if _, ok := usecase.AsInsufficientStock(r.err); ok {
			rejected++
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, rejected)

	var stock int64
	require.NoError(t, db.Model(&model.Product{}).Where("id = ?", p.ID).Pluck("stock_quantity", &stock).Error)
	assert.Equal(t, int64(0), stock)

	var orderCount int64
	require.NoError(t, db.Model(&model.Order{}).Count(&orderCount).Error)
	assert.Equal(t, int64(1), orderCount)
}

// 同じ2商品を逆順に持つ2人が同時にチェックアウトしてもデッドロックで
// 両方失敗することはない（ロック順はproduct_id昇順に揃う）。
func TestCheckout_ConcurrentCrossProducts(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	p1 := model.Product{Name: "A", Price: model.Money(500), StockQuantity: 10, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	p2 := model.Product{Name: "B", Price: model.Money(700), StockQuantity: 10, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	require.NoError(t, db.Create(&p1).Error)
	require.NoError(t, db.Create(&p2).Error)

	userA := seedUser(t, db, "cross_a")
	userB := seedUser(t, db, "cross_b")

	carts := infraRepo.NewCartGormRepository(db)
	//入れる順は逆だが、チェックアウト時のロック取得はid順
	require.NoError(t, carts.Upsert(ctx, userA, p1.ID, 1))
	require.NoError(t, carts.Upsert(ctx, userA, p2.ID, 1))
	require.NoError(t, carts.Upsert(ctx, userB, p2.ID, 1))
	require.NoError(t, carts.Upsert(ctx, userB, p1.ID, 1))

	uc := usecase.NewOrderUsecase(infraRepo.NewTxManagerGorm(db))

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i, userID := range []int64{userA, userB} {
		wg.Add(1)
		go func(i int, userID int64) {
			defer wg.Done()
			_, errs[i] = uc.Checkout(ctx, userID, checkoutInput())
		}(i, userID)
	}
	wg.Wait()

	for i, err := range errs {
		assert.NoError(t, err, fmt.Sprintf("checkout %d", i))
	}

	var stock1, stock2 int64
	require.NoError(t, db.Model(&model.Product{}).Where("id = ?", p1.ID).Pluck("stock_quantity", &stock1).Error)
	require.NoError(t, db.Model(&model.Product{}).Where("id = ?", p2.ID).Pluck("stock_quantity", &stock2).Error)
	assert.Equal(t, int64(8), stock1)
	assert.Equal(t, int64(8), stock2)
}
