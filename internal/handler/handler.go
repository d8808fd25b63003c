package handler

import (
	"net/http"

	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}

// 在庫不足だけはproduct_id付きで返す
type StockErrorResponse struct {
	Error     string `json:"error"`
	ProductID int64  `json:"product_id"`
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if ie, ok := usecase.AsInsufficientStock(err); ok {
		return c.JSON(http.StatusConflict, StockErrorResponse{
			Error:     "insufficient stock",
			ProductID: ie.ProductID,
		})
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, ErrorResponse{Error: he.Message})
	}

	//500
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

//middleware.AuthJWT が c.Set("user_id", int64) した値を取り出す

func getUserIDFromContext(c echo.Context) (int64, bool) {
	v := c.Get("user_id")
	if v == nil {
		return 0, false
	}

	id, ok := v.(int64)
	if !ok {
		return 0, false
	}

	return id, true
}
