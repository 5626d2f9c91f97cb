package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const notFoundMarker = "notfound"

// 商品の読み取りキャッシュ。更新系は実repoへ流してキーを消す
type CachedProductRepository struct {
	realRepo repo.ProductRepository
	redis    *redis.Client
	ttl      time.Duration
	log      *zap.Logger
}

func NewCachedProductRepository(realRepo repo.ProductRepository, rdb *redis.Client, log *zap.Logger) *CachedProductRepository {
	return &CachedProductRepository{
		realRepo: realRepo,
		redis:    rdb,
		ttl:      5 * time.Minute,
		log:      log,
	}
}

func productKey(id int64) string {
	return fmt.Sprintf("product:%d", id)
}

// 一覧はフィルタの組み合わせが多いのでキャッシュしない
func (c *CachedProductRepository) List(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	return c.realRepo.List(ctx, q)
}

func (c *CachedProductRepository) FindByID(ctx context.Context, id int64) (model.Product, error) {
	key := productKey(id)

	data, err := c.redis.Get(ctx, key).Bytes()

	switch {
	case err == nil:
		if string(data) == notFoundMarker {
			return model.Product{}, repo.ErrNotFound
		}

		var p model.Product
		if err := json.Unmarshal(data, &p); err != nil {
			c.log.Warn("cached product unmarshal failed, falling back to db", zap.Int64("product_id", id), zap.Error(err))
			break
		}
		return p, nil

	case errors.Is(err, redis.Nil):

	default:
		c.log.Warn("redis get failed, falling back to db", zap.String("key", key), zap.Error(err))
	}

	p, err := c.realRepo.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		if setErr := c.redis.Set(ctx, key, notFoundMarker, time.Minute).Err(); setErr != nil {
			c.log.Warn("cache notfound failed", zap.String("key", key), zap.Error(setErr))
		}
		return model.Product{}, err
	}
	if err != nil {
		return model.Product{}, err
	}

	jsonData, err := json.Marshal(p)
	if err != nil {
		c.log.Warn("marshal product failed", zap.Int64("product_id", id), zap.Error(err))
		return p, nil
	}
	if err := c.redis.Set(ctx, key, jsonData, c.ttl).Err(); err != nil {
		c.log.Warn("cache product failed", zap.String("key", key), zap.Error(err))
	}

	return p, nil
}

func (c *CachedProductRepository) Create(ctx context.Context, p model.Product) (model.Product, error) {
	created, err := c.realRepo.Create(ctx, p)
	if err != nil {
		return model.Product{}, err
	}
	// notfoundマーカーが残っていることがある
	c.Invalidate(ctx, created.ID)
	return created, nil
}

func (c *CachedProductRepository) Update(ctx context.Context, p model.Product) (model.Product, error) {
	defer c.Invalidate(ctx, p.ID)
	return c.realRepo.Update(ctx, p)
}

func (c *CachedProductRepository) Delete(ctx context.Context, id int64) error {
	defer c.Invalidate(ctx, id)
	return c.realRepo.Delete(ctx, id)
}

func (c *CachedProductRepository) UpdatePosition(ctx context.Context, id int64, position int64) error {
	defer c.Invalidate(ctx, id)
	return c.realRepo.UpdatePosition(ctx, id, position)
}

func (c *CachedProductRepository) AppendImageURL(ctx context.Context, id int64, url string) (model.Product, error) {
	defer c.Invalidate(ctx, id)
	return c.realRepo.AppendImageURL(ctx, id, url)
}

// Invalidate は商品キーを消す。失敗はログだけ
func (c *CachedProductRepository) Invalidate(ctx context.Context, ids ...int64) {
	if len(ids) == 0 {
		return
	}
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, productKey(id))
	}
	if err := c.redis.Del(ctx, keys...).Err(); err != nil {
		c.log.Warn("invalidate product cache failed", zap.Strings("keys", keys), zap.Error(err))
	}
}
