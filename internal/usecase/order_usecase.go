package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/metrics"
	repo "storefront/internal/repository"
)

// ロック待ちで無限に待たないための上限
const checkoutTimeout = 5 * time.Second

// OrderUsecase はカート→注文のチェックアウトを調停する。
// カート読み取り・在庫減算・注文作成・カート削除を
// 1つのトランザクションで行う。
type OrderUsecase struct {
	tx repo.TransactionManager
}

func NewOrderUsecase(tx repo.TransactionManager) *OrderUsecase {
	return &OrderUsecase{tx: tx}
}

type CheckoutInput struct {
	ShippingInfo  json.RawMessage
	PaymentMethod string
}

type CheckoutOutput struct {
	OrderID int64  `json:"orderId"`
	Message string `json:"message"`
}

type OrderItemOutput struct {
	ProductID int64       `json:"product_id"`
	Name      string      `json:"name"`
	Price     model.Money `json:"price"`
	Quantity  int64       `json:"quantity"`
}

type OrderOutput struct {
	ID            int64             `json:"id"`
	UserID        int64             `json:"user_id"`
	Status        string            `json:"status"`
	TotalAmount   model.Money       `json:"total_amount"`
	ShippingInfo  json.RawMessage   `json:"shipping_info"`
	PaymentMethod string            `json:"payment_method"`
	CreatedAt     time.Time         `json:"created_at"`
	Items         []OrderItemOutput `json:"items"`
}

// Checkout はカート全体を1つの注文に変換する。
// 成功時: 注文1件+明細N件の作成、商品N件の在庫減算、カート全削除。
// 失敗時: どの行も書かれない（全てロールバック）。
func (u *OrderUsecase) Checkout(ctx context.Context, userID int64, in CheckoutInput) (CheckoutOutput, error) {
	if userID <= 0 {
		return CheckoutOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	shipping, err := normalizeShippingInfo(in.ShippingInfo)
	if err != nil {
		return CheckoutOutput{}, NewHTTPError(http.StatusBadRequest, "invalid shipping info")
	}

	payment := strings.TrimSpace(in.PaymentMethod)
	if payment == "" {
		return CheckoutOutput{}, NewHTTPError(http.StatusBadRequest, "invalid payment method")
	}

	start := time.Now()
	defer func() {
		metrics.CheckoutDuration.Observe(time.Since(start).Seconds())
	}()

	out, err := u.checkoutOnce(ctx, userID, shipping, payment)

	//一時障害（デッドロック・切断・タイムアウト）はカートと在庫を
	//読み直して1回だけやり直す。業務エラーはやり直さない。
	if err != nil && !isBusinessError(err) {
		slog.Warn("checkout retry after transient failure",
			"user_id", userID,
			"error", err,
		)
		metrics.CheckoutRetries.Inc()
		out, err = u.checkoutOnce(ctx, userID, shipping, payment)
	}

	if err != nil {
		if isBusinessError(err) {
			metrics.CheckoutTotal.WithLabelValues(resultLabel(err)).Inc()
			return CheckoutOutput{}, err
		}
		slog.Error("checkout failed after retry",
			"user_id", userID,
			"error", err,
		)
		metrics.CheckoutTotal.WithLabelValues("transient_failure").Inc()
		return CheckoutOutput{}, NewHTTPError(http.StatusInternalServerError, "checkout failed")
	}

	metrics.CheckoutTotal.WithLabelValues("success").Inc()
	return out, nil
}

// 1回分のチェックアウト。全手順を1トランザクションで実行する。
func (u *OrderUsecase) checkoutOnce(ctx context.Context, userID int64, shipping string, payment string) (CheckoutOutput, error) {
	ctx, cancel := context.WithTimeout(ctx, checkoutTimeout)
	defer cancel()

	var out CheckoutOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//カート行はproduct_id順 = 商品行のロック取得順も揃う
		lines, err := r.Carts().ListByUserID(ctx, userID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return NewHTTPError(http.StatusBadRequest, "cart is empty")
		}

		items := make([]model.OrderItem, 0, len(lines))
		var total model.Money

		for _, line := range lines {
			//価格と在庫はトランザクション内で読み直す
			p, err := r.Products().FindByIDForUpdate(ctx, line.ProductID)
			if err == repo.ErrNotFound {
				//消えた商品は在庫不足と同じ扱い
				return &InsufficientStockError{ProductID: line.ProductID}
			}
			if err != nil {
				return err
			}

			//在庫減算（足りなければ0行更新）
			ok, err := r.Inventory().DecreaseStockIfEnough(ctx, line.ProductID, line.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return &InsufficientStockError{ProductID: line.ProductID}
			}

			//単価スナップショット
			items = append(items, model.OrderItem{
				ProductID:   line.ProductID,
				ProductName: p.Name,
				UnitPrice:   p.Price,
				Quantity:    line.Quantity,
			})

			total += p.Price.Mul(line.Quantity)
		}

		orderID, err := r.Orders().Create(ctx, model.Order{
			UserID:        userID,
			TotalAmount:   total,
			ShippingInfo:  shipping,
			PaymentMethod: payment,
			Status:        model.OrderStatusPending,
			CreatedAt:     time.Now(),
		})
		if err != nil {
			return err
		}

		if err := r.OrderItems().CreateBulk(ctx, orderID, items); err != nil {
			return err
		}

		//カートを空にする（注文と同じトランザクション）
		if err := r.Carts().ClearByUserID(ctx, userID); err != nil {
			return err
		}

		out = CheckoutOutput{
			OrderID: orderID,
			Message: "Order created successfully",
		}
		return nil
	})

	if err != nil {
		return CheckoutOutput{}, err
	}
	return out, nil
}

func (u *OrderUsecase) ListMyOrders(ctx context.Context, userID int64) ([]OrderOutput, error) {
	if userID <= 0 {
		return []OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var outs []OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, err := r.Orders().ListByUserID(ctx, userID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		outs = make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			outs = append(outs, toOrderOutput(o, items))
		}
		return nil
	})

	if err != nil {
		return []OrderOutput{}, err
	}
	return outs, nil
}

func (u *OrderUsecase) GetMyOrderDetail(ctx context.Context, userID int64, orderID int64) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "order not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if o.UserID != userID {
			//他人の注文は「存在しない扱い」にする
			return NewHTTPError(http.StatusNotFound, "order not found")
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = toOrderOutput(o, items)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// shipping_infoは中身に立ち入らないが、空でないJSONオブジェクトであることだけ確認する
func normalizeShippingInfo(raw json.RawMessage) (string, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return "", err
	}
	if len(obj) == 0 {
		return "", errors.New("empty shipping info")
	}

	compact, err := json.Marshal(obj)
	if err != nil {
		return "", err
	}
	return string(compact), nil
}

// 業務エラー（やり直しても結果が変わらないもの）か判定
func isBusinessError(err error) bool {
	if _, ok := AsHTTPError(err); ok {
		return true
	}
	if _, ok := AsInsufficientStock(err); ok {
		return true
	}
	return false
}

func resultLabel(err error) string {
	if _, ok := AsInsufficientStock(err); ok {
		return "insufficient_stock"
	}
	if he, ok := AsHTTPError(err); ok && he.Status == http.StatusBadRequest {
		return "empty_cart"
	}
	return "rejected"
}

func toOrderOutput(o model.Order, items []model.OrderItem) OrderOutput {
	outItems := make([]OrderItemOutput, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, OrderItemOutput{
			ProductID: it.ProductID,
			Name:      it.ProductName,
			Price:     it.UnitPrice,
			Quantity:  it.Quantity,
		})
	}

	return OrderOutput{
		ID:            o.ID,
		UserID:        o.UserID,
		Status:        string(o.Status),
		TotalAmount:   o.TotalAmount,
		ShippingInfo:  json.RawMessage(o.ShippingInfo),
		PaymentMethod: o.PaymentMethod,
		CreatedAt:     o.CreatedAt,
		Items:         outItems,
	}
}
