package usecase

import (
	"context"
	"time"

	"storefront/internal/domain/model"
)

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID() string
}

// ドメインイベントの送信先
type EventPublisher interface {
	Publish(ctx context.Context, topic string, payload any) error
}

// 商品キャッシュの破棄（失敗しても呼び出し側には返さない）
type ProductCacheInvalidator interface {
	Invalidate(ctx context.Context, ids ...int64)
}

type BlobStore interface {
	Put(ctx context.Context, objectPath string, data []byte, contentType string) (string, error)
}

type Thumbnailer interface {
	Thumbnail(data []byte) ([]byte, error)
}

type ReceiptRenderer interface {
	Render(sale model.Sale) ([]byte, error)
}

const (
	TopicCheckoutCreated = "checkout.created"
	TopicSaleCompleted   = "sale.completed"
)
