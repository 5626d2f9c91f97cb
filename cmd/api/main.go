package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/config"
	"storefront/internal/handler"
	"storefront/internal/infra/blob"
	"storefront/internal/infra/cache"
	"storefront/internal/infra/db"
	"storefront/internal/infra/event"
	"storefront/internal/infra/receipt"
	infraRepo "storefront/internal/infra/repository"
	"storefront/internal/logging"
	"storefront/internal/middleware"
	repo "storefront/internal/repository"
	"storefront/internal/server"
	"storefront/internal/usecase"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type uuidGenerator struct{}

func (g *uuidGenerator) NewID() string {
	return uuid.NewString()
}

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

func main() {
	cfg, err := config.Load(".env", "../.env")
	if err != nil {
		panic(err)
	}

	log, err := logging.New(cfg.IsProd())
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	//DB接続
	gormDB, err := db.Connect(cfg.DSN(), !cfg.IsProd())
	if err != nil {
		return err
	}
	if err := db.Migrate(gormDB); err != nil {
		return err
	}

	//Repository（GORM実装）生成
	var productRepo repo.ProductRepository = infraRepo.NewProductGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	cartRepo := infraRepo.NewCartGormRepository(gormDB)
	cartItemRepo := infraRepo.NewCartItemGormRepository(gormDB)
	discountRepo := infraRepo.NewDiscountGormRepository(gormDB)
	couponRepo := infraRepo.NewCouponGormRepository(gormDB)
	packRepo := infraRepo.NewPackGormRepository(gormDB)
	saleRepo := infraRepo.NewSaleGormRepository(gormDB)
	txm := infraRepo.NewTxManagerGorm(gormDB)

	//Redis（無ければキャッシュ・イベント無しで動く）
	var invalidator usecase.ProductCacheInvalidator = cache.NopInvalidator{}
	var publisher usecase.EventPublisher = event.NopPublisher{}
	if cfg.RedisAddr != "" {
		rdb, err := cache.ConnectRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return err
		}
		defer rdb.Close()

		cached := cache.NewCachedProductRepository(productRepo, rdb, log)
		productRepo = cached
		invalidator = cached
		publisher = event.NewRedisPublisher(rdb)
	} else {
		log.Warn("REDIS_ADDR not set, product cache and events disabled")
	}

	//usecaseに渡す部品
	idGen := &uuidGenerator{}
	clock := &realClock{}
	blobs := blob.NewLocalStore(cfg.BlobRoot, cfg.BlobPublicURL)
	thumbs := blob.NewThumbnailer()
	receipts := receipt.NewPDFRenderer(cfg.StoreName)

	//Usecase生成
	productUC := usecase.NewProductUsecase(txm, productRepo, auditRepo, invalidator, blobs, thumbs, idGen, clock, log)
	auditUC := usecase.NewAuditLogUsecase(auditRepo)
	cartUC := usecase.NewCartUsecase(txm, cartRepo, cartItemRepo)
	checkoutUC := usecase.NewCheckoutUsecase(txm, publisher, clock, log)
	promoUC := usecase.NewPromotionUsecase(txm, discountRepo, couponRepo, cartRepo, cartItemRepo, clock)
	packUC := usecase.NewPackUsecase(txm, packRepo)
	saleUC := usecase.NewSaleUsecase(txm, saleRepo, invalidator, publisher, receipts, idGen, clock, log)

	//Handler生成
	limiter := middleware.NewRateLimiter(cfg.PromoRatePerMin)
	handlers := server.Handlers{
		Products:      handler.NewProductHandler(productUC),
		AdminProducts: handler.NewAdminProductHandler(productUC, auditUC),
		Carts:         handler.NewCartHandler(cartUC, checkoutUC),
		Payments:      handler.NewPaymentHandler(checkoutUC),
		Promotions:    handler.NewPromotionHandler(promoUC, limiter),
		Packs:         handler.NewPackHandler(packUC),
		Sales:         handler.NewSaleHandler(saleUC),
	}

	e := server.New(log)
	server.RegisterRoutes(e, cfg, handlers)

	//Server起動（SIGINT/SIGTERMで止める）
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.Start(ctx, e, cfg.ListenAddr(), log)
}
