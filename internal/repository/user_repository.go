package repository

import (
	"context"

	"storefront/internal/domain/model"
)

type UserRepository interface {
	Create(ctx context.Context, user model.User) (int64, error)
	FindByID(ctx context.Context, userID int64) (model.User, error)
	FindByUsername(ctx context.Context, username string) (model.User, error)
	//登録時の重複チェック用
	ExistsByUsernameOrEmail(ctx context.Context, username string, email string) (bool, error)
}
