package main

import (
	"time"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/handler"
	"app/internal/infra/db"
	infraRepo "app/internal/infra/repository"
	"app/internal/mailer"
	"app/internal/payment"
	"app/internal/server"
	"app/internal/usecase"

	"github.com/golang-jwt/jwt/v4"
	"github.com/joho/godotenv"
	"github.com/labstack/gommon/log"
)

type jwtIssuer struct {
	secret    []byte
	accessTTL time.Duration
}

func (i *jwtIssuer) Issue(userID int64, role model.Role, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(i.accessTTL)

	claims := jwt.MapClaims{
		"sub":  userID,
		"role": string(role),
		"iat":  now.Unix(),
		"exp":  expiresAt.Unix(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

func main() {
	//.envはあれば読む（本番は環境変数直指定）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	//DB接続
	gormDB, err := db.Connect()
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Category{},
		&model.Product{},
		&model.PendingOrder{},
		&model.Order{},
		&model.OrderItem{},
		&model.InventoryAdjustment{},
		&model.AuditLog{},
	); err != nil {
		log.Fatalf("migrate failed: %v", err)
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	inventoryRepo := infraRepo.NewInventoryGormRepository(gormDB)
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	orderItemRepo := infraRepo.NewOrderItemGormRepository(gormDB)
	pendingRepo := infraRepo.NewPendingOrderGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//外部サービスクライアント
	gateway := payment.NewPayPalClient(payment.Config{
		ClientID:     cfg.PayPalClientID,
		ClientSecret: cfg.PayPalClientSecret,
		APIBase:      cfg.PayPalAPIBase,
		WebhookID:    cfg.PayPalWebhookID,
		Currency:     cfg.PayPalCurrency,
	})
	notifier := mailer.New(mailer.Config{
		APIKey: cfg.ResendAPIKey,
		From:   cfg.EmailFrom,
	})

	//JWT issuer
	issuer := &jwtIssuer{
		secret:    []byte(cfg.JWTSecret),
		accessTTL: 15 * time.Minute,
	}

	//Usecase生成
	authUC := usecase.NewAuthUsecase(userRepo, issuer)
	productUC := usecase.NewProductUsecase(productRepo, inventoryRepo, auditRepo)
	checkoutUC := usecase.NewCheckoutUsecase(productRepo, pendingRepo, gateway)
	captureUC := usecase.NewCaptureUsecase(
		txManager, orderRepo, orderItemRepo, pendingRepo, inventoryRepo,
		gateway, notifier, cfg.IsProduction(),
	)
	adminOrderUC := usecase.NewAdminOrderUsecase(txManager, auditRepo, notifier)
	auditUC := usecase.NewAuditLogUsecase(auditRepo)

	//Handler生成
	handlers := server.Handlers{
		Auth:         handler.NewAuthHandler(authUC),
		Product:      handler.NewProductHandler(productUC),
		Checkout:     handler.NewCheckoutHandler(checkoutUC, captureUC),
		Webhook:      handler.NewWebhookHandler(captureUC),
		AdminOrder:   handler.NewAdminOrderHandler(adminOrderUC),
		AdminProduct: handler.NewAdminProductHandler(productUC),
		AdminAudit:   handler.NewAdminAuditHandler(auditUC),
	}

	//Server起動
	addr := cfg.Port
	if addr[0] != ':' {
		addr = ":" + addr
	}

	e := server.New(cfg, handlers)
	if err := server.Start(e, addr); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
