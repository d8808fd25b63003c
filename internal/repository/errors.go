package repository

import "errors"

var (
	// 対象の行が存在しない
	ErrNotFound = errors.New("not found")

	// 一意制約違反（username/email、カート行の重複など）
	ErrDuplicate = errors.New("duplicate")
)
