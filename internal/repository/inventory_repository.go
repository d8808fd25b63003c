package repository

import "context"

type InventoryRepository interface {
	//在庫が足りるときだけ1回のUPDATEで減らす。
	//falseは在庫不足（または商品なし）。errorはシステム障害。
	DecreaseStockIfEnough(ctx context.Context, productID int64, qty int64) (bool, error)
	//カタログ編集用
	SetStock(ctx context.Context, productID int64, newStock int64) error
}
