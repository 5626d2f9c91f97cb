package cache

import "context"

// キャッシュを使わないとき用
type NopInvalidator struct{}

func (NopInvalidator) Invalidate(ctx context.Context, ids ...int64) {}
