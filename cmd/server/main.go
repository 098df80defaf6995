package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fiveheart_storefront/internal/cache"
	"fiveheart_storefront/internal/cart"
	"fiveheart_storefront/internal/config"
	"fiveheart_storefront/internal/content"
	"fiveheart_storefront/internal/database"
	"fiveheart_storefront/internal/handlers"
	"fiveheart_storefront/internal/logger"
	"fiveheart_storefront/internal/middleware"
	"fiveheart_storefront/internal/proxy"
	"fiveheart_storefront/internal/purchase"
	"fiveheart_storefront/internal/routes"
	"fiveheart_storefront/internal/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	config.Load()

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("❌ Configuration invalide : %v", err)
	}

	logr, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("❌ Logger : %v", err)
	}
	defer func() { _ = logr.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb, err := database.ConnectRedis(ctx, cfg.RedisHost, cfg.RedisPassword, logr)
	if err != nil {
		logr.Fatal("❌ Erreur connexion Redis", zap.Error(err))
	}
	defer rdb.Close()

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	// Panier
	cartStore := cart.NewRedisStore(rdb, cfg.CartTTL)
	cartService, err := cart.NewService(cartStore, cfg.AssetBaseURL, logr)
	if err != nil {
		logr.Fatal("❌ Service panier", zap.Error(err))
	}
	cartService.WithPublisher(cartStore)

	// Contenu CMS
	redisCache := cache.NewRedisCache(rdb, "fiveheart:")
	courses, err := content.NewClient(cfg.APIBaseURL, httpClient, logr)
	if err != nil {
		logr.Fatal("❌ Client contenu", zap.Error(err))
	}
	courses.WithCache(redisCache, content.CourseCacheTTL)

	contentProxy, err := proxy.New(cfg.APIBaseURL, nil, logr)
	if err != nil {
		logr.Fatal("❌ Proxy contenu", zap.Error(err))
	}

	deps := handlers.Deps{
		Cart:      cartService,
		Courses:   courses,
		Purchases: purchase.NewForwarder(cfg.PurchaseLogURL, httpClient, logr),
		Events:    cartStore,
		Origins:   cfg.CORSOrigins,
		Log:       logr,
	}
	if cfg.SMTP.Enabled() {
		mailer, err := utils.NewMailer(cfg.SMTP, logr)
		if err != nil {
			logr.Fatal("❌ Client SMTP", zap.Error(err))
		}
		deps.Notifier = mailer
		logr.Info("✅ E-mails de confirmation activés", zap.String("host", cfg.SMTP.Host))
	} else {
		logr.Warn("⚠️ SMTP non configuré, pas d'e-mail de confirmation")
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(logr))
	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	handler := handlers.New(deps)
	routes.RegisterRoutes(r, routes.Deps{
		Handler:  handler,
		Proxy:    contentProxy,
		Sessions: middleware.NewCookieStore(cfg.SessionSecret, cfg.SessionSecure),
		Limiter:  redisCache,
		Log:      logr,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv.RegisterOnShutdown(handler.CloseStreams)

	go func() {
		logr.Info("🚀 Serveur FiveHeart lancé", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("❌ Serveur arrêté", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("🛑 Arrêt du serveur")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("❌ Arrêt forcé", zap.Error(err))
	}
}
